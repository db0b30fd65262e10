package model

import "time"

// TimeSample is one aligned interval of PV production and facility load.
// Samples produced by the aligner have strictly increasing, evenly spaced
// timestamps.
type TimeSample struct {
	Timestamp time.Time
	PVKW      float64 // PV production in kW, averaged over the interval
	LoadKW    float64 // facility load in kW, averaged over the interval
}

// IntervalResult records the dispatch decision for a single interval.
type IntervalResult struct {
	Timestamp time.Time

	PVKW   float64
	LoadKW float64

	// UsedPVKW is the PV power consumed directly by the load, min(pv, load).
	UsedPVKW   float64
	ExcessPVKW float64

	// GridImportNoBattKW is the grid import with PV but without the battery.
	GridImportNoBattKW float64

	// ChargeKWh is the total energy charged into the battery this interval,
	// from PV surplus and grid top-ups combined. GridChargeKWh is the
	// grid-sourced portion of it.
	ChargeKWh     float64
	GridChargeKWh float64

	// DischargeKW is the battery output averaged over the interval.
	DischargeKW float64

	SoCKWh float64

	// GridImportKW is the grid import with PV and battery, clipped at zero.
	GridImportKW float64
}

// PVChargeKWh returns the PV-sourced share of the interval's charge energy.
func (r IntervalResult) PVChargeKWh() float64 {
	return r.ChargeKWh - r.GridChargeKWh
}

// Trace is the full simulated dispatch record, one entry per input interval
// in input order.
type Trace []IntervalResult
