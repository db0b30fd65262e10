package alert

import (
	"testing"
	"time"

	"github.com/enoplan/bessim/internal/eventbus"
)

func readings(metric string, values ...float64) []Reading {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]Reading, len(values))
	for i, v := range values {
		out[i] = Reading{T: base.Add(time.Duration(i) * 15 * time.Minute), Metric: metric, Value: v}
	}
	return out
}

func TestAbsoluteCellTemperature(t *testing.T) {
	d := NewDetector(Thresholds{}, nil)
	alerts := d.Check(readings(MetricCellMaxTemp, 55, 61, 58))
	if len(alerts) != 1 {
		t.Fatalf("expected 1 alert, got %d: %+v", len(alerts), alerts)
	}
	if alerts[0].Rule != "cell_over_temperature" || alerts[0].Value != 61 {
		t.Errorf("unexpected alert %+v", alerts[0])
	}
}

func TestSustainedRise(t *testing.T) {
	d := NewDetector(Thresholds{}, nil)
	// Three successive rises of >= 5C below the absolute limit.
	alerts := d.Check(readings(MetricCellMaxTemp, 30, 36, 42, 48))
	if len(alerts) != 1 {
		t.Fatalf("expected 1 alert, got %d: %+v", len(alerts), alerts)
	}
	if alerts[0].Rule != "sustained_temperature_rise" {
		t.Errorf("unexpected rule %s", alerts[0].Rule)
	}
}

func TestRiseRunResets(t *testing.T) {
	d := NewDetector(Thresholds{}, nil)
	alerts := d.Check(readings(MetricCellMaxTemp, 30, 36, 35, 41, 40, 46))
	if len(alerts) != 0 {
		t.Errorf("interrupted rises must not alert, got %+v", alerts)
	}
}

func TestSmokeFlagAndSpread(t *testing.T) {
	d := NewDetector(Thresholds{}, nil)
	rs := append(readings("fire_alarm1_smoke_flag", 0, 1), readings(MetricCellTempDiff, 4, 12)...)
	alerts := d.Check(rs)
	if len(alerts) != 2 {
		t.Fatalf("expected 2 alerts, got %d: %+v", len(alerts), alerts)
	}
	rules := map[string]bool{}
	for _, a := range alerts {
		rules[a.Rule] = true
	}
	if !rules["smoke_flag"] || !rules["cell_temperature_spread"] {
		t.Errorf("missing rules in %+v", alerts)
	}
}

func TestAlertsReachTheBus(t *testing.T) {
	bus := eventbus.New[Alert]()
	defer bus.Close()
	sub := bus.Subscribe()

	d := NewDetector(Thresholds{}, bus)
	d.Check(readings(MetricIGBTTemp, 95))

	select {
	case a := <-sub:
		if a.Rule != "igbt_over_temperature" {
			t.Errorf("unexpected alert %+v", a)
		}
	case <-time.After(time.Second):
		t.Fatal("no alert on the bus")
	}
}

func TestUnknownMetricIgnored(t *testing.T) {
	d := NewDetector(Thresholds{}, nil)
	if alerts := d.Check(readings("soc", 120)); len(alerts) != 0 {
		t.Errorf("unexpected alerts for unrelated metric: %+v", alerts)
	}
}
