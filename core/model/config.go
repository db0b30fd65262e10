package model

import (
	"errors"
	"fmt"
)

// ErrConfiguration marks fatal configuration problems detected before the
// first simulated interval. Use errors.Is to test for it.
var ErrConfiguration = errors.New("invalid configuration")

// BatteryConfig describes the storage system. Capacity and power are
// nameplate values; Derate scales both down to the usable range the dispatch
// operates on (the source system reserves 10%, hence the 0.9 default).
type BatteryConfig struct {
	CapacityKWh float64 `json:"capacity_kwh"`
	MaxPowerKW  float64 `json:"max_power_kw"`
	Derate      float64 `json:"derate"`
}

// SetDefaults applies the usable-range derate if unset.
func (c *BatteryConfig) SetDefaults() {
	if c.Derate == 0 {
		c.Derate = 0.9
	}
}

// Validate checks that the battery parameters are physically sound.
// A zero capacity is allowed: every charge and discharge then saturates to
// zero and the simulation degenerates to the no-battery case.
func (c BatteryConfig) Validate() error {
	if c.CapacityKWh < 0 {
		return fmt.Errorf("%w: capacity_kwh must not be negative", ErrConfiguration)
	}
	if c.MaxPowerKW < 0 {
		return fmt.Errorf("%w: max_power_kw must not be negative", ErrConfiguration)
	}
	if c.Derate <= 0 || c.Derate > 1 {
		return fmt.Errorf("%w: derate must be in (0, 1]", ErrConfiguration)
	}
	return nil
}

// UsableCapacityKWh returns the derated capacity the dispatch may use.
func (c BatteryConfig) UsableCapacityKWh() float64 { return c.CapacityKWh * c.Derate }

// UsablePowerKW returns the derated power rating the dispatch may use.
func (c BatteryConfig) UsablePowerKW() float64 { return c.MaxPowerKW * c.Derate }

// PeakShavingConfig gates the two policy layers. The fractions are expressed
// relative to PeakLimitKW: below LoadFractionLow×limit the battery serves
// self-consumption, from LoadFractionHigh×limit upwards it may top up from
// the grid while the import stays under the limit.
type PeakShavingConfig struct {
	PeakLimitKW      float64 `json:"peak_limit_kw"`
	LoadFractionLow  float64 `json:"load_fraction_low"`
	LoadFractionHigh float64 `json:"load_fraction_high"`
}

// SetDefaults applies the operating thresholds of the source system.
func (c *PeakShavingConfig) SetDefaults() {
	if c.LoadFractionLow == 0 {
		c.LoadFractionLow = 0.75
	}
	if c.LoadFractionHigh == 0 {
		c.LoadFractionHigh = 0.70
	}
}

// Validate checks the peak shaving thresholds.
func (c PeakShavingConfig) Validate() error {
	if c.PeakLimitKW <= 0 {
		return fmt.Errorf("%w: peak_limit_kw must be positive", ErrConfiguration)
	}
	if c.LoadFractionLow <= 0 || c.LoadFractionLow > 1 {
		return fmt.Errorf("%w: load_fraction_low must be in (0, 1]", ErrConfiguration)
	}
	if c.LoadFractionHigh <= 0 || c.LoadFractionHigh > 1 {
		return fmt.Errorf("%w: load_fraction_high must be in (0, 1]", ErrConfiguration)
	}
	return nil
}

// Tariffs holds the prices used for the monetary KPI estimate.
type Tariffs struct {
	// CapacityEURPerKW is the yearly demand charge per kW of peak import.
	CapacityEURPerKW float64 `json:"capacity_eur_per_kw"`
	// EnergyEURPerKWh is the net price of a kWh imported from the grid.
	EnergyEURPerKWh float64 `json:"energy_eur_per_kwh"`
}

// Validate checks the tariff values.
func (t Tariffs) Validate() error {
	if t.CapacityEURPerKW < 0 || t.EnergyEURPerKWh < 0 {
		return fmt.Errorf("%w: tariffs must not be negative", ErrConfiguration)
	}
	return nil
}
