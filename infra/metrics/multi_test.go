package metrics

import (
	"testing"
	"time"

	coremetrics "github.com/enoplan/bessim/core/metrics"
	"github.com/enoplan/bessim/core/model"
)

type recordSink struct {
	runs   int
	traces int
	alerts int
}

func (r *recordSink) RecordRun(coremetrics.RunSummary) error { r.runs++; return nil }

func (r *recordSink) RecordTrace(string, model.Trace) error { r.traces++; return nil }

func (r *recordSink) RecordAlert(string, string, string, float64, time.Time) error {
	r.alerts++
	return nil
}

type runOnlySink struct{ runs int }

func (r *runOnlySink) RecordRun(coremetrics.RunSummary) error { r.runs++; return nil }

func TestMultiSink(t *testing.T) {
	s1 := &recordSink{}
	s2 := &recordSink{}
	m := NewMultiSink(s1, s2)
	if err := m.RecordRun(coremetrics.RunSummary{}); err != nil {
		t.Fatalf("record run: %v", err)
	}
	if err := m.RecordTrace("r", nil); err != nil {
		t.Fatalf("record trace: %v", err)
	}
	if s1.runs != 1 || s2.runs != 1 || s1.traces != 1 || s2.traces != 1 {
		t.Fatalf("records not forwarded: %+v %+v", s1, s2)
	}
}

func TestMultiSink_SkipsNonTraceSinks(t *testing.T) {
	full := &recordSink{}
	plain := &runOnlySink{}
	m := NewMultiSink(full, plain)
	if err := m.RecordTrace("r", nil); err != nil {
		t.Fatalf("record trace: %v", err)
	}
	if err := m.RecordAlert("r", "rule", "metric", 1, time.Now()); err != nil {
		t.Fatalf("record alert: %v", err)
	}
	if full.traces != 1 || full.alerts != 1 {
		t.Fatalf("trace recorder skipped: %+v", full)
	}
	if err := m.RecordRun(coremetrics.RunSummary{}); err != nil {
		t.Fatalf("record run: %v", err)
	}
	if plain.runs != 1 {
		t.Fatalf("plain sink missed run record")
	}
}
