// Package app wires configuration, data sources, the dispatch engine and
// the observability stack into a runnable simulation service.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/enoplan/bessim/config"
	"github.com/enoplan/bessim/core/alert"
	"github.com/enoplan/bessim/core/dispatch"
	"github.com/enoplan/bessim/core/kpi"
	"github.com/enoplan/bessim/core/marketprice"
	coremetrics "github.com/enoplan/bessim/core/metrics"
	"github.com/enoplan/bessim/core/timeseries"
	"github.com/enoplan/bessim/infra/csvdata"
	"github.com/enoplan/bessim/infra/logger"
	"github.com/enoplan/bessim/infra/metrics"
	"github.com/enoplan/bessim/infra/mqtt"
	"github.com/enoplan/bessim/internal/eventbus"
)

// Service orchestrates one simulation run from input files to published
// results.
type Service struct {
	cfg      *config.Config
	log      logger.Logger
	sink     coremetrics.Sink
	pub      mqtt.Publisher
	bus      *eventbus.Bus[alert.Alert]
	detector *alert.Detector
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	logger.SetLevel(cfg.Logging.Level)
	log := logger.New("service")

	sink, err := metrics.NewSink(cfg.Metrics)
	if err != nil {
		return nil, fmt.Errorf("metrics sink: %w", err)
	}

	var pub mqtt.Publisher = mqtt.NopPublisher{}
	if cfg.MQTT.Enabled {
		pub, err = mqtt.NewPahoPublisher(cfg.MQTT)
		if err != nil {
			return nil, fmt.Errorf("mqtt publisher: %w", err)
		}
	}

	bus := eventbus.New[alert.Alert]()
	return &Service{
		cfg:      cfg,
		log:      log,
		sink:     sink,
		pub:      pub,
		bus:      bus,
		detector: alert.NewDetector(cfg.Alerts, bus),
	}, nil
}

// Run executes one simulation. With Prometheus enabled it keeps serving
// /metrics until the context is cancelled.
func (s *Service) Run(ctx context.Context) error {
	runID := uuid.NewString()
	s.log.Infow("starting simulation", map[string]any{"run_id": runID})

	sub := s.bus.Subscribe()
	go func() {
		for a := range sub {
			s.log.Warnf("alert %s on %s: value %.2f at %s", a.Rule, a.Metric, a.Value, a.T)
		}
	}()

	report, intervals, err := s.simulate(ctx, runID)
	if err != nil {
		return err
	}
	s.log.Infow("simulation finished", map[string]any{
		"run_id":                 runID,
		"intervals":              intervals,
		"self_consumption_ratio": report.SelfConsumptionRatio,
		"autarky_ratio":          report.AutarkyRatio,
		"peak_reduction_kw":      report.PeakReductionKW,
		"total_savings_eur":      report.TotalSavingsEUR,
	})

	if s.cfg.Metrics.PrometheusEnabled {
		s.log.Infof("serving metrics on %s until interrupted", s.cfg.Metrics.PrometheusPort)
		return metrics.StartPromServer(ctx, s.cfg.Metrics.PrometheusPort)
	}
	return nil
}

func (s *Service) simulate(ctx context.Context, runID string) (kpi.Report, int, error) {
	in := s.cfg.Input
	loc := in.Location()

	pvSrc := csvdata.PVSource{
		Path:       in.PVCSV,
		Location:   loc,
		TimeColumn: in.PVTimeColumn,
		PowerCol:   in.PVPowerCol,
		Layout:     in.PVLayout,
	}
	pv, err := pvSrc.Series(ctx)
	if err != nil {
		return kpi.Report{}, 0, err
	}
	load, err := csvdata.LoadSource{Path: in.LoadCSV, Location: loc}.Series(ctx)
	if err != nil {
		return kpi.Report{}, 0, err
	}

	samples, err := timeseries.Align(pv, load, timeseries.AlignOptions{Step: in.Step(), Location: loc})
	if err != nil {
		return kpi.Report{}, 0, fmt.Errorf("align series: %w", err)
	}
	s.log.Infof("aligned %d intervals from %s to %s",
		len(samples), samples[0].Timestamp, samples[len(samples)-1].Timestamp)

	engine, err := dispatch.New(dispatch.Config{
		Battery:       s.cfg.Battery,
		PeakShaving:   s.cfg.PeakShaving,
		IntervalHours: in.IntervalHours(),
	})
	if err != nil {
		return kpi.Report{}, 0, err
	}
	trace := engine.Run(samples)

	report, err := kpi.Compute(trace, in.IntervalHours(), s.cfg.Tariffs)
	if err != nil {
		return kpi.Report{}, 0, err
	}

	sum := coremetrics.RunSummary{
		RunID:     runID,
		Start:     samples[0].Timestamp,
		End:       samples[len(samples)-1].Timestamp,
		Intervals: len(trace),
		Report:    report,
	}
	if err := s.sink.RecordRun(sum); err != nil {
		s.log.Errorf("record run: %v", err)
	}
	if s.cfg.Metrics.TraceEnabled {
		if rec, ok := s.sink.(coremetrics.TraceRecorder); ok {
			if err := rec.RecordTrace(runID, trace); err != nil {
				s.log.Errorf("record trace: %v", err)
			}
		}
	}
	if err := s.pub.PublishReport(runID, report); err != nil {
		s.log.Errorf("publish report: %v", err)
	}

	if in.TelemetryDir != "" {
		s.checkTelemetry(runID, in.TelemetryDir)
	}
	if in.PriceCSV != "" {
		s.summarizePrices(ctx, in.PriceCSV, loc, in.PriceYear)
	}
	return report, len(trace), nil
}

// checkTelemetry runs the safety rules over a telemetry dump and forwards
// every alert to the sinks and the MQTT publisher.
func (s *Service) checkTelemetry(runID, dir string) {
	readings, err := csvdata.ReadTelemetryDir(dir, s.cfg.Input.Location())
	if err != nil {
		s.log.Errorf("read telemetry: %v", err)
		return
	}
	alerts := s.detector.Check(readings)
	s.log.Infof("checked %d telemetry readings, %d alerts", len(readings), len(alerts))
	rec, canRecord := s.sink.(coremetrics.AlertRecorder)
	for _, a := range alerts {
		if canRecord {
			if err := rec.RecordAlert(runID, a.Rule, a.Metric, a.Value, a.T); err != nil {
				s.log.Errorf("record alert: %v", err)
			}
		}
		if err := s.pub.PublishAlert(runID, a); err != nil {
			s.log.Errorf("publish alert: %v", err)
		}
	}
}

// summarizePrices logs descriptive statistics of the day-ahead price series
// so runs against different market years are comparable.
func (s *Service) summarizePrices(ctx context.Context, path string, loc *time.Location, year int) {
	prices, err := csvdata.SMARDSource{Path: path, Location: loc, TargetYear: year}.Prices(ctx)
	if err != nil {
		s.log.Errorf("read prices: %v", err)
		return
	}
	sum, err := marketprice.Summarize(prices)
	if err != nil {
		s.log.Errorf("summarize prices: %v", err)
		return
	}
	s.log.Infow("market prices", map[string]any{
		"samples":          sum.Samples,
		"mean_eur_per_mwh": sum.Mean,
		"min_eur_per_mwh":  sum.Min,
		"max_eur_per_mwh":  sum.Max,
	})
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	s.bus.Close()
	s.pub.Close()
	return nil
}
