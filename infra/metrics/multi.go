package metrics

import (
	"time"

	coremetrics "github.com/enoplan/bessim/core/metrics"
	"github.com/enoplan/bessim/core/model"
)

// MultiSink fans run records out to multiple sinks.
type MultiSink struct {
	Sinks []coremetrics.Sink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...coremetrics.Sink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordRun forwards the summary to all sinks, returning the first error
// encountered.
func (m *MultiSink) RecordRun(sum coremetrics.RunSummary) error {
	for _, s := range m.Sinks {
		if err := s.RecordRun(sum); err != nil {
			return err
		}
	}
	return nil
}

// RecordTrace forwards the trace to sinks that record traces.
func (m *MultiSink) RecordTrace(runID string, trace model.Trace) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(coremetrics.TraceRecorder); ok {
			if err := rec.RecordTrace(runID, trace); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordAlert forwards the alert to sinks that record alerts.
func (m *MultiSink) RecordAlert(runID, rule, metric string, value float64, t time.Time) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(coremetrics.AlertRecorder); ok {
			if err := rec.RecordAlert(runID, rule, metric, value, t); err != nil {
				return err
			}
		}
	}
	return nil
}
