// Package dispatch decides, interval by interval, how much energy the
// battery charges or discharges. Two layered policies apply in fixed
// precedence: self-consumption of PV surplus first, then a peak-shaving
// override that always wins when the import cap is at risk.
package dispatch

import (
	"fmt"
	"math"

	"github.com/enoplan/bessim/core/battery"
	"github.com/enoplan/bessim/core/model"
)

// Config holds the validated parameters of a simulation run.
type Config struct {
	Battery     model.BatteryConfig
	PeakShaving model.PeakShavingConfig
	// IntervalHours is the fixed length of one interval, e.g. 0.25.
	IntervalHours float64
}

// Validate checks all parameters up front; nothing fails mid-run.
func (c Config) Validate() error {
	if err := c.Battery.Validate(); err != nil {
		return err
	}
	if err := c.PeakShaving.Validate(); err != nil {
		return err
	}
	if c.IntervalHours <= 0 {
		return fmt.Errorf("%w: interval_hours must be positive", model.ErrConfiguration)
	}
	return nil
}

// Engine runs the dispatch policy over an aligned sample sequence.
type Engine struct {
	cfg Config
}

// New creates an engine from a validated configuration.
func New(cfg Config) (*Engine, error) {
	cfg.Battery.SetDefaults()
	cfg.PeakShaving.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Engine{cfg: cfg}, nil
}

// Run simulates the battery over the aligned samples and returns the trace,
// one result per input interval in input order. The battery starts full.
func (e *Engine) Run(samples []model.TimeSample) model.Trace {
	return e.RunFrom(samples, e.cfg.Battery.UsableCapacityKWh())
}

// RunFrom simulates starting from the given initial energy content, clamped
// to the usable capacity.
//
// The evolution is strictly sequential: each decision depends on the SoC
// left by the previous interval.
func (e *Engine) RunFrom(samples []model.TimeSample, initialSoCKWh float64) model.Trace {
	dt := e.cfg.IntervalHours
	ps := e.cfg.PeakShaving
	maxStepKWh := e.cfg.Battery.UsablePowerKW() * dt
	state := battery.NewState(e.cfg.Battery.UsableCapacityKWh(), initialSoCKWh)

	trace := make(model.Trace, 0, len(samples))
	for _, s := range samples {
		trace = append(trace, e.step(state, s, dt, maxStepKWh, ps))
	}
	return trace
}

// step evaluates one interval against the current battery state.
func (e *Engine) step(state *battery.State, s model.TimeSample, dt, maxStepKWh float64, ps model.PeakShavingConfig) model.IntervalResult {
	pv, load := s.PVKW, s.LoadKW
	usedPV := math.Min(pv, load)

	var chargeKWh, gridChargeKWh, dischargeKW float64

	// Layer 1: self-consumption. Above the low-fraction threshold the
	// battery is reserved for peak shaving and this layer is skipped.
	if load <= ps.LoadFractionLow*ps.PeakLimitKW {
		if excess := pv - load; excess >= 0 {
			chargeKWh = state.Charge(math.Min(excess*dt, maxStepKWh))
		} else {
			applied := state.Discharge(math.Min(-excess*dt, maxStepKWh))
			dischargeKW = applied / dt
		}
	}

	// Layer 2: peak shaving on the net load left after layer 1. Each layer
	// draws from the same per-interval power budget, so the rating holds
	// on the interval total.
	netLoad := load - usedPV - dischargeKW
	if netLoad > ps.PeakLimitKW {
		applied := state.Discharge(math.Min((netLoad-ps.PeakLimitKW)*dt, maxStepKWh-dischargeKW*dt))
		dischargeKW += applied / dt
	} else if load >= ps.LoadFractionHigh*ps.PeakLimitKW && dischargeKW == 0 {
		// Moderate load band below the cap: top the battery up from the
		// grid. Never alongside a discharge; the two are mutually
		// exclusive within an interval.
		applied := state.Charge(maxStepKWh - chargeKWh)
		chargeKWh += applied
		gridChargeKWh = applied
	}

	gridImport := load - usedPV - dischargeKW
	if gridImport < 0 {
		gridImport = 0
	}

	return model.IntervalResult{
		Timestamp:          s.Timestamp,
		PVKW:               pv,
		LoadKW:             load,
		UsedPVKW:           usedPV,
		ExcessPVKW:         pv - usedPV,
		GridImportNoBattKW: load - usedPV,
		ChargeKWh:          chargeKWh,
		GridChargeKWh:      gridChargeKWh,
		DischargeKW:        dischargeKW,
		SoCKWh:             state.SoC(),
		GridImportKW:       gridImport,
	}
}
