// Package marketprice defines the day-ahead electricity price series the
// simulation consumes. Loading from SMARD exports lives in infra/csvdata.
package marketprice

import (
	"context"
	"errors"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"
)

// ErrEmptySeries is returned when a price series holds no samples.
var ErrEmptySeries = errors.New("empty price series")

// Price is one day-ahead price sample.
type Price struct {
	T         time.Time
	EURPerMWh float64
}

// Series is a time-ordered price series.
type Series []Price

// Source provides a price series, typically from a market data export.
type Source interface {
	Prices(ctx context.Context) (Series, error)
}

// At returns the price in effect at t: the sample with the greatest
// timestamp not after t. ok is false before the first sample.
func (s Series) At(t time.Time) (float64, bool) {
	i := sort.Search(len(s), func(i int) bool { return s[i].T.After(t) })
	if i == 0 {
		return 0, false
	}
	return s[i-1].EURPerMWh, true
}

// Summary holds descriptive statistics over a price series.
type Summary struct {
	Samples int     `json:"samples"`
	Mean    float64 `json:"mean_eur_per_mwh"`
	StdDev  float64 `json:"std_dev"`
	Min     float64 `json:"min_eur_per_mwh"`
	Max     float64 `json:"max_eur_per_mwh"`
}

// Summarize computes descriptive statistics over the series.
func Summarize(s Series) (Summary, error) {
	if len(s) == 0 {
		return Summary{}, ErrEmptySeries
	}
	vals := make([]float64, len(s))
	for i, p := range s {
		vals[i] = p.EURPerMWh
	}
	mean, std := stat.MeanStdDev(vals, nil)
	min, max := vals[0], vals[0]
	for _, v := range vals[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return Summary{Samples: len(vals), Mean: mean, StdDev: std, Min: min, Max: max}, nil
}
