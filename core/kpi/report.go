// Package kpi derives scalar summary figures from a completed dispatch
// trace.
package kpi

import (
	"errors"

	"github.com/enoplan/bessim/core/model"
)

// ErrEmptyTrace is returned when a report is requested on a zero-length
// trace; the ratios are undefined without at least one interval.
var ErrEmptyTrace = errors.New("kpi: empty trace")

// Report is the scalar KPI bundle of one simulation run. Ratios are in
// [0, 1], energies in kWh, powers in kW, savings in EUR per year.
type Report struct {
	TotalPVKWh    float64 `json:"total_pv_kwh"`
	TotalLoadKWh  float64 `json:"total_load_kwh"`
	GridImportKWh float64 `json:"grid_import_kwh"`
	GridChargeKWh float64 `json:"grid_charge_kwh"`
	FinalSoCKWh   float64 `json:"final_soc_kwh"`

	SelfConsumptionRatio       float64 `json:"self_consumption_ratio"`
	SelfConsumptionRatioNoBatt float64 `json:"self_consumption_ratio_no_batt"`
	AutarkyRatio               float64 `json:"autarky_ratio"`
	AutarkyRatioNoBatt         float64 `json:"autarky_ratio_no_batt"`

	PeakNoBattKW    float64 `json:"peak_no_batt_kw"`
	PeakWithBattKW  float64 `json:"peak_with_batt_kw"`
	PeakReductionKW float64 `json:"peak_reduction_kw"`

	// AdditionalSelfConsumedKWh is the PV energy the battery made usable on
	// site that would otherwise have been exported.
	AdditionalSelfConsumedKWh float64 `json:"additional_self_consumed_kwh"`

	PeakSavingsEUR   float64 `json:"peak_savings_eur"`
	EnergySavingsEUR float64 `json:"energy_savings_eur"`
	TotalSavingsEUR  float64 `json:"total_savings_eur"`
}

// Compute aggregates the trace into a Report. It is a pure function over the
// completed trace; running it twice yields identical results.
func Compute(trace model.Trace, intervalHours float64, tariffs model.Tariffs) (Report, error) {
	if len(trace) == 0 {
		return Report{}, ErrEmptyTrace
	}

	var (
		pvKWh, loadKWh, usedPVKWh  float64
		importKWh, importNoBattKWh float64
		pvChargeKWh, gridChargeKWh float64
		peakNoBatt, peakWithBatt   float64
	)
	for _, r := range trace {
		pvKWh += r.PVKW * intervalHours
		loadKWh += r.LoadKW * intervalHours
		usedPVKWh += r.UsedPVKW * intervalHours
		importKWh += r.GridImportKW * intervalHours
		importNoBattKWh += r.GridImportNoBattKW * intervalHours
		pvChargeKWh += r.PVChargeKWh()
		gridChargeKWh += r.GridChargeKWh
		if r.GridImportNoBattKW > peakNoBatt {
			peakNoBatt = r.GridImportNoBattKW
		}
		if r.GridImportKW > peakWithBatt {
			peakWithBatt = r.GridImportKW
		}
	}

	rep := Report{
		TotalPVKWh:    pvKWh,
		TotalLoadKWh:  loadKWh,
		GridImportKWh: importKWh,
		GridChargeKWh: gridChargeKWh,
		FinalSoCKWh:   trace[len(trace)-1].SoCKWh,

		PeakNoBattKW:    peakNoBatt,
		PeakWithBattKW:  peakWithBatt,
		PeakReductionKW: peakNoBatt - peakWithBatt,

		AdditionalSelfConsumedKWh: pvChargeKWh,
	}
	rep.SelfConsumptionRatio = ratio(usedPVKWh+pvChargeKWh, pvKWh)
	rep.SelfConsumptionRatioNoBatt = ratio(usedPVKWh, pvKWh)
	rep.AutarkyRatio = ratio(loadKWh-importKWh, loadKWh)
	rep.AutarkyRatioNoBatt = ratio(loadKWh-importNoBattKWh, loadKWh)

	rep.PeakSavingsEUR = rep.PeakReductionKW * tariffs.CapacityEURPerKW
	rep.EnergySavingsEUR = rep.AdditionalSelfConsumedKWh * tariffs.EnergyEURPerKWh
	rep.TotalSavingsEUR = rep.PeakSavingsEUR + rep.EnergySavingsEUR
	return rep, nil
}

// ratio guards the zero-denominator case; a run without any PV or load
// reports 0 rather than NaN.
func ratio(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}
