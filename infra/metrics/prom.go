package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/enoplan/bessim/core/metrics"
)

// PromSink exposes the results of the latest simulation run as Prometheus
// gauges, plus a counter of completed runs.
type PromSink struct {
	runs            prometheus.Counter
	intervals       prometheus.Gauge
	pvKWh           prometheus.Gauge
	loadKWh         prometheus.Gauge
	gridImportKWh   prometheus.Gauge
	selfConsumption prometheus.Gauge
	autarky         prometheus.Gauge
	peakNoBatt      prometheus.Gauge
	peakWithBatt    prometheus.Gauge
	peakReduction   prometheus.Gauge
	totalSavings    prometheus.Gauge
}

// NewPromSink registers simulation metrics on the default Prometheus
// registerer. The HTTP server is started separately via StartPromServer.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PromSink{}
	var err error

	runs := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "simulation_runs_total",
		Help: "Total number of completed simulation runs",
	})
	if s.runs, err = registerCounter(reg, runs); err != nil {
		return nil, err
	}

	gauges := []struct {
		dst  *prometheus.Gauge
		name string
		help string
	}{
		{&s.intervals, "simulation_intervals", "Number of dispatch intervals in the last run"},
		{&s.pvKWh, "simulation_pv_generation_kwh", "PV generation of the last run"},
		{&s.loadKWh, "simulation_load_kwh", "Load consumption of the last run"},
		{&s.gridImportKWh, "simulation_grid_import_kwh", "Grid import of the last run with the battery active"},
		{&s.selfConsumption, "simulation_self_consumption_ratio", "Share of PV generation consumed on site in the last run"},
		{&s.autarky, "simulation_autarky_ratio", "Share of load covered without grid import in the last run"},
		{&s.peakNoBatt, "simulation_peak_no_batt_kw", "Grid peak without the battery"},
		{&s.peakWithBatt, "simulation_peak_with_batt_kw", "Grid peak with the battery"},
		{&s.peakReduction, "simulation_peak_reduction_kw", "Peak reduction achieved by the battery"},
		{&s.totalSavings, "simulation_total_savings_eur", "Combined peak and energy savings"},
	}
	for _, g := range gauges {
		gauge := prometheus.NewGauge(prometheus.GaugeOpts{Name: g.name, Help: g.help})
		if *g.dst, err = registerGauge(reg, gauge); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func registerCounter(reg prometheus.Registerer, c prometheus.Counter) (prometheus.Counter, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return are.ExistingCollector.(prometheus.Counter), nil
		}
		return nil, err
	}
	return c, nil
}

func registerGauge(reg prometheus.Registerer, g prometheus.Gauge) (prometheus.Gauge, error) {
	if err := reg.Register(g); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return are.ExistingCollector.(prometheus.Gauge), nil
		}
		return nil, err
	}
	return g, nil
}

// RecordRun updates the gauges with the run's KPI report.
func (s *PromSink) RecordRun(sum coremetrics.RunSummary) error {
	r := sum.Report
	s.runs.Inc()
	s.intervals.Set(float64(sum.Intervals))
	s.pvKWh.Set(r.TotalPVKWh)
	s.loadKWh.Set(r.TotalLoadKWh)
	s.gridImportKWh.Set(r.GridImportKWh)
	s.selfConsumption.Set(r.SelfConsumptionRatio)
	s.autarky.Set(r.AutarkyRatio)
	s.peakNoBatt.Set(r.PeakNoBattKW)
	s.peakWithBatt.Set(r.PeakWithBattKW)
	s.peakReduction.Set(r.PeakReductionKW)
	s.totalSavings.Set(r.TotalSavingsEUR)
	return nil
}
