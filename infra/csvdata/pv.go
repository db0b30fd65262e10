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

// PVSource reads a generic two-column PV generation CSV. Column names and
// the timestamp layout are configurable; the zero values match the exports
// of the upstream yield estimator.
type PVSource struct {
	Path       string
	Location   *time.Location
	TimeColumn string // default "time"
	PowerCol   string // default "power"
	Layout     string // default "2006-01-02 15:04:05"
}

// Series implements timeseries.Source.
func (s PVSource) Series(ctx context.Context) (timeseries.Series, error) {
	timeCol := s.TimeColumn
	if timeCol == "" {
		timeCol = "time"
	}
	powerCol := s.PowerCol
	if powerCol == "" {
		powerCol = "power"
	}
	layout := s.Layout
	if layout == "" {
		layout = "2006-01-02 15:04:05"
	}
	loc := s.Location
	if loc == nil {
		loc = time.Local
	}

	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("open pv series: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read pv header: %w", err)
	}
	timeIdx, powerIdx := -1, -1
	for i, h := range header {
		switch strings.TrimSpace(h) {
		case timeCol:
			timeIdx = i
		case powerCol:
			powerIdx = i
		}
	}
	if timeIdx < 0 || powerIdx < 0 {
		return nil, fmt.Errorf("pv series %s: missing columns %q or %q", s.Path, timeCol, powerCol)
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
			return nil, fmt.Errorf("read pv series: %w", err)
		}
		t, err := time.ParseInLocation(layout, strings.TrimSpace(rec[timeIdx]), loc)
		if err != nil {
			return nil, fmt.Errorf("parse pv timestamp %q: %w", rec[timeIdx], err)
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(rec[powerIdx]), 64)
		if err != nil {
			return nil, fmt.Errorf("parse pv value %q: %w", rec[powerIdx], err)
		}
		series = append(series, timeseries.Point{T: t, V: v})
	}
	if len(series) == 0 {
		return nil, fmt.Errorf("pv series %s: no samples", s.Path)
	}
	return series, nil
}
