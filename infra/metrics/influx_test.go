package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/enoplan/bessim/core/kpi"
	coremetrics "github.com/enoplan/bessim/core/metrics"
	"github.com/enoplan/bessim/core/model"
)

func TestInfluxSink_RecordRun(t *testing.T) {
	var body string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		body = string(data)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	sink := NewInfluxSink(srv.URL, "token", "org", "bucket")
	defer sink.Close()

	sum := coremetrics.RunSummary{
		RunID:     "run-42",
		End:       time.Now(),
		Intervals: 4,
		Report:    kpi.Report{TotalPVKWh: 10.5, PeakReductionKW: 40},
	}
	if err := sink.RecordRun(sum); err != nil {
		t.Fatalf("record run: %v", err)
	}
	if !strings.Contains(body, "simulation_run") {
		t.Errorf("measurement missing from line protocol: %q", body)
	}
	if !strings.Contains(body, "run_id=run-42") {
		t.Errorf("run id tag missing: %q", body)
	}
	if !strings.Contains(body, "peak_reduction_kw=40") {
		t.Errorf("peak reduction field missing: %q", body)
	}
}

func TestInfluxSink_RecordTrace(t *testing.T) {
	var lines []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		lines = append(lines, string(data))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	sink := NewInfluxSink(srv.URL, "token", "org", "bucket")
	defer sink.Close()

	trace := model.Trace{
		{Timestamp: time.Now(), PVKW: 100, LoadKW: 80, SoCKWh: 50},
		{Timestamp: time.Now().Add(15 * time.Minute), PVKW: 90, LoadKW: 85, SoCKWh: 52},
	}
	if err := sink.RecordTrace("run-42", trace); err != nil {
		t.Fatalf("record trace: %v", err)
	}
	if len(lines) != 2 {
		t.Fatalf("expected 2 writes, got %d", len(lines))
	}
	if !strings.Contains(lines[0], "dispatch_interval") {
		t.Errorf("measurement missing: %q", lines[0])
	}
}

func TestInfluxSinkWithFallback_Unreachable(t *testing.T) {
	sink := NewInfluxSinkWithFallback("http://127.0.0.1:1", "token", "org", "bucket")
	if _, ok := sink.(coremetrics.NopSink); !ok {
		t.Fatalf("expected NopSink fallback, got %T", sink)
	}
}
