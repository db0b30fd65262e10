package config

import (
	"fmt"
	"time"
)

// InputConfig describes the input data files of a simulation run.
type InputConfig struct {
	PVCSV        string `json:"pv_csv"`
	PVTimeColumn string `json:"pv_time_column"`
	PVPowerCol   string `json:"pv_power_column"`
	PVLayout     string `json:"pv_time_layout"`
	LoadCSV      string `json:"load_csv"`
	PriceCSV     string `json:"price_csv"`
	PriceYear    int    `json:"price_year"`
	TelemetryDir string `json:"telemetry_dir"`
	Timezone     string `json:"timezone"`
	StepMinutes  int    `json:"step_minutes"`
}

// SetDefaults applies default values for unset fields.
func (c *InputConfig) SetDefaults() {
	if c.Timezone == "" {
		c.Timezone = "Europe/Berlin"
	}
	if c.StepMinutes == 0 {
		c.StepMinutes = 15
	}
}

// Validate checks mandatory fields.
func (c *InputConfig) Validate() error {
	if c.PVCSV == "" {
		return fmt.Errorf("input.pv_csv is required")
	}
	if c.LoadCSV == "" {
		return fmt.Errorf("input.load_csv is required")
	}
	if c.StepMinutes <= 0 {
		return fmt.Errorf("input.step_minutes must be positive")
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("input.timezone: %w", err)
	}
	return nil
}

// Location resolves the configured timezone. Validate must have passed.
func (c *InputConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Step returns the target resolution as a duration.
func (c *InputConfig) Step() time.Duration {
	return time.Duration(c.StepMinutes) * time.Minute
}

// IntervalHours returns the interval length in hours, the unit the dispatch
// engine and KPI aggregation work in.
func (c *InputConfig) IntervalHours() float64 {
	return float64(c.StepMinutes) / 60
}
