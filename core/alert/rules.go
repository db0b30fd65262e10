// Package alert implements threshold rules for thermal-runaway-like
// behaviour on battery telemetry. It operates on BMS/PCS readings, not on
// the dispatch trace.
package alert

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/enoplan/bessim/internal/eventbus"
)

// Thresholds configures the rule set. Zero values disable the matching rule.
type Thresholds struct {
	MaxCellTempC     float64 `json:"max_cell_temp_c"`
	MaxCellTempDiffC float64 `json:"max_cell_temp_diff_c"`
	MaxIGBTTempC     float64 `json:"max_igbt_temp_c"`
	TempRisePerStepC float64 `json:"temp_rise_per_step_c"`
	ConsecutiveRises int     `json:"consecutive_rises"`
	SmokeFlagValue   float64 `json:"smoke_flag_value"`
}

// SetDefaults applies the operating thresholds of the source system.
func (t *Thresholds) SetDefaults() {
	if t.MaxCellTempC == 0 {
		t.MaxCellTempC = 60
	}
	if t.MaxCellTempDiffC == 0 {
		t.MaxCellTempDiffC = 10
	}
	if t.MaxIGBTTempC == 0 {
		t.MaxIGBTTempC = 90
	}
	if t.TempRisePerStepC == 0 {
		t.TempRisePerStepC = 5
	}
	if t.ConsecutiveRises == 0 {
		t.ConsecutiveRises = 3
	}
	if t.SmokeFlagValue == 0 {
		t.SmokeFlagValue = 1
	}
}

// Reading is one telemetry sample of a named metric.
type Reading struct {
	T      time.Time
	Metric string
	Value  float64
}

// Alert reports a rule violation.
type Alert struct {
	T      time.Time `json:"time"`
	Rule   string    `json:"rule"`
	Metric string    `json:"metric"`
	Value  float64   `json:"value"`
	Detail string    `json:"detail"`
}

// Metric name conventions of the telemetry schema.
const (
	MetricCellMaxTemp  = "cell_max_temperature"
	MetricCellTempDiff = "cell_temp_diff"
	MetricIGBTTemp     = "temp_igbt"
	metricSmokePrefix  = "fire_alarm"
)

// Detector evaluates the rule set over telemetry readings. An optional bus
// receives every alert as it is found.
type Detector struct {
	cfg Thresholds
	bus *eventbus.Bus[Alert]
}

// NewDetector creates a detector. bus may be nil.
func NewDetector(cfg Thresholds, bus *eventbus.Bus[Alert]) *Detector {
	cfg.SetDefaults()
	return &Detector{cfg: cfg, bus: bus}
}

// Check runs all rules over the readings and returns the alerts in time
// order. Readings are grouped by metric; each group is evaluated
// independently.
func (d *Detector) Check(readings []Reading) []Alert {
	byMetric := make(map[string][]Reading)
	for _, r := range readings {
		byMetric[r.Metric] = append(byMetric[r.Metric], r)
	}
	var alerts []Alert
	for metric, group := range byMetric {
		sort.Slice(group, func(i, j int) bool { return group[i].T.Before(group[j].T) })
		alerts = append(alerts, d.checkMetric(metric, group)...)
	}
	sort.Slice(alerts, func(i, j int) bool { return alerts[i].T.Before(alerts[j].T) })
	for _, a := range alerts {
		if d.bus != nil {
			d.bus.Publish(a)
		}
	}
	return alerts
}

func (d *Detector) checkMetric(metric string, group []Reading) []Alert {
	var alerts []Alert
	switch {
	case metric == MetricCellMaxTemp || strings.HasPrefix(metric, "pack"):
		alerts = append(alerts, d.absolute(metric, group, d.cfg.MaxCellTempC, "cell_over_temperature")...)
		alerts = append(alerts, d.consecutiveRise(metric, group)...)
	case metric == MetricCellTempDiff:
		alerts = append(alerts, d.absolute(metric, group, d.cfg.MaxCellTempDiffC, "cell_temperature_spread")...)
	case metric == MetricIGBTTemp:
		alerts = append(alerts, d.absolute(metric, group, d.cfg.MaxIGBTTempC, "igbt_over_temperature")...)
	case strings.HasPrefix(metric, metricSmokePrefix):
		for _, r := range group {
			if r.Value >= d.cfg.SmokeFlagValue {
				alerts = append(alerts, Alert{T: r.T, Rule: "smoke_flag", Metric: metric, Value: r.Value})
			}
		}
	}
	return alerts
}

func (d *Detector) absolute(metric string, group []Reading, limit float64, rule string) []Alert {
	if limit <= 0 {
		return nil
	}
	var alerts []Alert
	for _, r := range group {
		if r.Value > limit {
			alerts = append(alerts, Alert{
				T: r.T, Rule: rule, Metric: metric, Value: r.Value,
				Detail: fmt.Sprintf("limit %.1f exceeded", limit),
			})
		}
	}
	return alerts
}

// consecutiveRise flags runs of at least ConsecutiveRises successive
// sample-to-sample increases of TempRisePerStepC or more.
func (d *Detector) consecutiveRise(metric string, group []Reading) []Alert {
	if d.cfg.TempRisePerStepC <= 0 || d.cfg.ConsecutiveRises <= 0 {
		return nil
	}
	var alerts []Alert
	run := 0
	for i := 1; i < len(group); i++ {
		if group[i].Value-group[i-1].Value >= d.cfg.TempRisePerStepC {
			run++
			if run == d.cfg.ConsecutiveRises {
				alerts = append(alerts, Alert{
					T: group[i].T, Rule: "sustained_temperature_rise", Metric: metric, Value: group[i].Value,
					Detail: fmt.Sprintf("%d consecutive rises of >= %.1f", run, d.cfg.TempRisePerStepC),
				})
			}
		} else {
			run = 0
		}
	}
	return alerts
}
