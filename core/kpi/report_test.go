package kpi

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/enoplan/bessim/core/model"
)

func traceOf(results ...model.IntervalResult) model.Trace {
	base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	for i := range results {
		results[i].Timestamp = base.Add(time.Duration(i) * 15 * time.Minute)
	}
	return results
}

func TestCompute_EmptyTrace(t *testing.T) {
	if _, err := Compute(nil, 0.25, model.Tariffs{}); !errors.Is(err, ErrEmptyTrace) {
		t.Errorf("got %v, want ErrEmptyTrace", err)
	}
}

func TestCompute_Ratios(t *testing.T) {
	trace := traceOf(
		// PV 100 kW, load 50 kW: half used directly, 10 kWh charged.
		model.IntervalResult{PVKW: 100, LoadKW: 50, UsedPVKW: 50, GridImportNoBattKW: 0, ChargeKWh: 10, GridImportKW: 0, SoCKWh: 10},
		// PV 0, load 100 kW: battery covers 40 kW, grid the rest.
		model.IntervalResult{PVKW: 0, LoadKW: 100, UsedPVKW: 0, GridImportNoBattKW: 100, DischargeKW: 40, GridImportKW: 60, SoCKWh: 0},
	)
	rep, err := Compute(trace, 0.25, model.Tariffs{CapacityEURPerKW: 166.03, EnergyEURPerKWh: 0.08})
	if err != nil {
		t.Fatalf("compute: %v", err)
	}

	// pv = 25 kWh, used = 12.5 kWh, pv charge = 10 kWh.
	if want := (12.5 + 10) / 25.0; math.Abs(rep.SelfConsumptionRatio-want) > 1e-9 {
		t.Errorf("self consumption = %v, want %v", rep.SelfConsumptionRatio, want)
	}
	if want := 12.5 / 25.0; math.Abs(rep.SelfConsumptionRatioNoBatt-want) > 1e-9 {
		t.Errorf("self consumption (no batt) = %v, want %v", rep.SelfConsumptionRatioNoBatt, want)
	}
	// load = 37.5 kWh, import = 15 kWh.
	if want := (37.5 - 15) / 37.5; math.Abs(rep.AutarkyRatio-want) > 1e-9 {
		t.Errorf("autarky = %v, want %v", rep.AutarkyRatio, want)
	}
	if rep.PeakNoBattKW != 100 || rep.PeakWithBattKW != 60 {
		t.Errorf("peaks = %v/%v, want 100/60", rep.PeakNoBattKW, rep.PeakWithBattKW)
	}
	if rep.PeakReductionKW != 40 {
		t.Errorf("peak reduction = %v, want 40", rep.PeakReductionKW)
	}
	if want := 40*166.03 + 10*0.08; math.Abs(rep.TotalSavingsEUR-want) > 1e-9 {
		t.Errorf("total savings = %v, want %v", rep.TotalSavingsEUR, want)
	}
}

func TestCompute_GridChargeDoesNotInflateSelfConsumption(t *testing.T) {
	trace := traceOf(
		model.IntervalResult{PVKW: 10, LoadKW: 145, UsedPVKW: 10, GridImportNoBattKW: 135, ChargeKWh: 25, GridChargeKWh: 25, GridImportKW: 135, SoCKWh: 25},
	)
	rep, err := Compute(trace, 0.25, model.Tariffs{})
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if rep.AdditionalSelfConsumedKWh != 0 {
		t.Errorf("grid top-up counted as self-consumed PV: %v", rep.AdditionalSelfConsumedKWh)
	}
	if want := 1.0; rep.SelfConsumptionRatio != want {
		// 2.5 kWh PV, all used directly.
		t.Errorf("self consumption = %v, want %v", rep.SelfConsumptionRatio, want)
	}
}

func TestCompute_ZeroDenominators(t *testing.T) {
	trace := traceOf(model.IntervalResult{})
	rep, err := Compute(trace, 0.25, model.Tariffs{})
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if rep.SelfConsumptionRatio != 0 || rep.AutarkyRatio != 0 {
		t.Errorf("zero-input ratios must be 0, got %+v", rep)
	}
	if math.IsNaN(rep.TotalSavingsEUR) {
		t.Error("savings is NaN")
	}
}
