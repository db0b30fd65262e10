// Package csvdata reads the CSV exports the simulation consumes: metering
// load profiles, PV generation series, day-ahead market prices and battery
// telemetry dumps.
package csvdata

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/enoplan/bessim/core/timeseries"
)

// Column headers of the metering export.
const (
	colDate  = "Datum"
	colTime  = "Zeit"
	colPower = "Wirkleistung [kW]"
)

const loadLayout = "02/01/2006 15:04:05"

// LoadSource reads a metering load profile. Timestamps are day-first and
// interpreted in the given location.
type LoadSource struct {
	Path     string
	Location *time.Location
}

// Series implements timeseries.Source.
func (s LoadSource) Series(ctx context.Context) (timeseries.Series, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("open load profile: %w", err)
	}
	defer f.Close()

	loc := s.Location
	if loc == nil {
		loc = time.Local
	}

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read load profile header: %w", err)
	}
	dateIdx, timeIdx, powerIdx := -1, -1, -1
	for i, h := range header {
		switch strings.TrimSpace(h) {
		case colDate:
			dateIdx = i
		case colTime:
			timeIdx = i
		case colPower:
			powerIdx = i
		}
	}
	if dateIdx < 0 || timeIdx < 0 || powerIdx < 0 {
		return nil, fmt.Errorf("load profile %s: missing columns %q, %q or %q", s.Path, colDate, colTime, colPower)
	}

	var series timeseries.Series
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read load profile: %w", err)
		}
		t, err := time.ParseInLocation(loadLayout, rec[dateIdx]+" "+rec[timeIdx], loc)
		if err != nil {
			return nil, fmt.Errorf("parse load timestamp %q: %w", rec[dateIdx]+" "+rec[timeIdx], err)
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(rec[powerIdx]), 64)
		if err != nil {
			return nil, fmt.Errorf("parse load value %q: %w", rec[powerIdx], err)
		}
		series = append(series, timeseries.Point{T: t, V: v})
	}
	if len(series) == 0 {
		return nil, fmt.Errorf("load profile %s: no samples", s.Path)
	}
	return series, nil
}
