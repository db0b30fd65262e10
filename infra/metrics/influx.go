package metrics

import (
	"context"
	"math"
	"net/http"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/enoplan/bessim/core/metrics"
	"github.com/enoplan/bessim/core/model"
	"github.com/enoplan/bessim/infra/logger"
)

// InfluxSink writes run summaries and dispatch traces to an InfluxDB
// instance using the official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(url, token, org, bucket string) *InfluxSink {
	base := strings.TrimSuffix(url, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and
// returns a NopSink if the health check fails.
func NewInfluxSinkWithFallback(url, token, org, bucket string) coremetrics.Sink {
	sink := NewInfluxSink(url, token, org, bucket)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// RecordRun writes the run's KPI report as a single point.
func (s *InfluxSink) RecordRun(sum coremetrics.RunSummary) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	r := sum.Report
	p := write.NewPointWithMeasurement("simulation_run").
		AddTag("run_id", sum.RunID).
		AddField("intervals", sum.Intervals).
		AddField("pv_kwh", round3(r.TotalPVKWh)).
		AddField("load_kwh", round3(r.TotalLoadKWh)).
		AddField("grid_import_kwh", round3(r.GridImportKWh)).
		AddField("grid_charge_kwh", round3(r.GridChargeKWh)).
		AddField("self_consumption_ratio", round3(r.SelfConsumptionRatio)).
		AddField("autarky_ratio", round3(r.AutarkyRatio)).
		AddField("peak_no_batt_kw", round3(r.PeakNoBattKW)).
		AddField("peak_with_batt_kw", round3(r.PeakWithBattKW)).
		AddField("peak_reduction_kw", round3(r.PeakReductionKW)).
		AddField("peak_savings_eur", round3(r.PeakSavingsEUR)).
		AddField("energy_savings_eur", round3(r.EnergySavingsEUR)).
		AddField("total_savings_eur", round3(r.TotalSavingsEUR)).
		SetTime(sum.End)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordTrace writes one point per dispatch interval.
func (s *InfluxSink) RecordTrace(runID string, trace model.Trace) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	for _, iv := range trace {
		p := write.NewPointWithMeasurement("dispatch_interval").
			AddTag("run_id", runID).
			AddField("pv_kw", round3(iv.PVKW)).
			AddField("load_kw", round3(iv.LoadKW)).
			AddField("charge_kwh", round3(iv.ChargeKWh)).
			AddField("grid_charge_kwh", round3(iv.GridChargeKWh)).
			AddField("discharge_kw", round3(iv.DischargeKW)).
			AddField("soc_kwh", round3(iv.SoCKWh)).
			AddField("grid_import_kw", round3(iv.GridImportKW)).
			SetTime(iv.Timestamp)
		if err := s.writeAPI.WritePoint(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// RecordAlert writes a safety alert raised during a run.
func (s *InfluxSink) RecordAlert(runID, rule, metric string, value float64, t time.Time) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("safety_alert").
		AddTag("run_id", runID).
		AddTag("rule", rule).
		AddTag("metric", metric).
		AddField("value", round3(value)).
		SetTime(t)
	return s.writeAPI.WritePoint(ctx, p)
}

// Close shuts down the underlying client.
func (s *InfluxSink) Close() {
	s.client.Close()
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
