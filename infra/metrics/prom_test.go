package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/enoplan/bessim/core/kpi"
	coremetrics "github.com/enoplan/bessim/core/metrics"
)

func TestPromSink_RecordRun(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("new sink: %v", err)
	}

	sum := coremetrics.RunSummary{
		RunID:     "run-1",
		Start:     time.Now().Add(-time.Minute),
		End:       time.Now(),
		Intervals: 96,
		Report: kpi.Report{
			TotalPVKWh:           120,
			TotalLoadKWh:         300,
			GridImportKWh:        180,
			SelfConsumptionRatio: 0.8,
			AutarkyRatio:         0.4,
			PeakNoBattKW:         250,
			PeakWithBattKW:       210,
			PeakReductionKW:      40,
			TotalSavingsEUR:      6650,
		},
	}
	if err := sink.RecordRun(sum); err != nil {
		t.Fatalf("record run: %v", err)
	}

	if v := testutil.ToFloat64(sink.runs); v != 1 {
		t.Errorf("runs counter = %v, want 1", v)
	}
	if v := testutil.ToFloat64(sink.peakReduction); v != 40 {
		t.Errorf("peak reduction gauge = %v, want 40", v)
	}
	if v := testutil.ToFloat64(sink.selfConsumption); v != 0.8 {
		t.Errorf("self consumption gauge = %v, want 0.8", v)
	}
}

func TestPromSink_DoubleRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	if _, err := NewPromSinkWithRegistry(reg); err != nil {
		t.Fatalf("first registration: %v", err)
	}
	sink, err := NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("second registration: %v", err)
	}
	if err := sink.RecordRun(coremetrics.RunSummary{Intervals: 1}); err != nil {
		t.Fatalf("record run: %v", err)
	}
}
