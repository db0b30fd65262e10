// Package analysis provides operator-facing load statistics used to size
// battery and peak threshold before running a simulation.
package analysis

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/enoplan/bessim/core/timeseries"
)

// ErrEmptySeries is returned when statistics are requested on no data.
var ErrEmptySeries = errors.New("analysis: empty series")

// DailyProfile is the average load per time of day across the whole series.
type DailyProfile struct {
	// Offsets are the time-of-day offsets from midnight, in ascending order.
	Offsets []time.Duration
	// MeanKW is the mean load at the matching offset.
	MeanKW []float64
}

// Profile averages the series by time of day in the timestamps' locations.
func Profile(s timeseries.Series) (DailyProfile, error) {
	if len(s) == 0 {
		return DailyProfile{}, ErrEmptySeries
	}
	byOffset := make(map[time.Duration][]float64)
	for _, p := range s {
		h, m, sec := p.T.Clock()
		off := time.Duration(h)*time.Hour + time.Duration(m)*time.Minute + time.Duration(sec)*time.Second
		byOffset[off] = append(byOffset[off], p.V)
	}
	offsets := make([]time.Duration, 0, len(byOffset))
	for off := range byOffset {
		offsets = append(offsets, off)
	}
	sort.Slice(offsets, func(i, j int) bool { return offsets[i] < offsets[j] })

	prof := DailyProfile{Offsets: offsets, MeanKW: make([]float64, len(offsets))}
	for i, off := range offsets {
		prof.MeanKW[i] = stat.Mean(byOffset[off], nil)
	}
	return prof, nil
}

// Peak returns the timestamp and value of the series maximum.
func Peak(s timeseries.Series) (time.Time, float64, error) {
	if len(s) == 0 {
		return time.Time{}, 0, ErrEmptySeries
	}
	best := s[0]
	for _, p := range s[1:] {
		if p.V > best.V {
			best = p
		}
	}
	return best.T, best.V, nil
}

// HighLoadDays counts the days on which at least minIntervals samples exceed
// thresholdFraction of the series peak. The original sizing analysis uses
// 0.9 and 4 (one hour of 15-minute intervals).
func HighLoadDays(s timeseries.Series, thresholdFraction float64, minIntervals int) (int, error) {
	if len(s) == 0 {
		return 0, ErrEmptySeries
	}
	if thresholdFraction <= 0 || minIntervals <= 0 {
		return 0, fmt.Errorf("analysis: threshold fraction and interval count must be positive")
	}
	_, peak, err := Peak(s)
	if err != nil {
		return 0, err
	}
	threshold := thresholdFraction * peak

	perDay := make(map[string]int)
	for _, p := range s {
		if p.V > threshold {
			perDay[p.T.Format("2006-01-02")]++
		}
	}
	days := 0
	for _, n := range perDay {
		if n >= minIntervals {
			days++
		}
	}
	return days, nil
}

// Quantile returns the q-quantile (0..1) of the series values.
func Quantile(s timeseries.Series, q float64) (float64, error) {
	if len(s) == 0 {
		return 0, ErrEmptySeries
	}
	values := make([]float64, len(s))
	for i, p := range s {
		values[i] = p.V
	}
	sort.Float64s(values)
	return stat.Quantile(q, stat.Empirical, values, nil), nil
}
