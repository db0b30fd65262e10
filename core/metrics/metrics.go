// Package metrics defines the observability contracts of the simulation.
// Concrete Prometheus and InfluxDB sinks live in infra/metrics.
package metrics

import (
	"time"

	"github.com/enoplan/bessim/core/kpi"
	"github.com/enoplan/bessim/core/model"
)

// RunSummary captures the outcome of one simulation run.
type RunSummary struct {
	RunID     string
	Start     time.Time
	End       time.Time
	Intervals int
	Report    kpi.Report
}

// Sink records run summaries for observability purposes.
type Sink interface {
	RecordRun(sum RunSummary) error
}

// TraceRecorder records the full per-interval dispatch trace. Sinks that
// only care about aggregates need not implement it.
type TraceRecorder interface {
	RecordTrace(runID string, trace model.Trace) error
}

// AlertRecorder records safety alerts raised during a run.
type AlertRecorder interface {
	RecordAlert(runID, rule, metric string, value float64, t time.Time) error
}

// NopSink implements Sink with no-op methods.
type NopSink struct{}

func (NopSink) RecordRun(RunSummary) error { return nil }

func (NopSink) RecordTrace(string, model.Trace) error { return nil }

func (NopSink) RecordAlert(string, string, string, float64, time.Time) error { return nil }
