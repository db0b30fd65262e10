// Package timeseries reconciles independently sampled power series onto a
// common fixed-interval timeline.
package timeseries

import (
	"context"
	"sort"
	"time"
)

// Point is a single timestamped value.
type Point struct {
	T time.Time
	V float64
}

// Series is an ordered sequence of points. Use Normalize before relying on
// ordering or uniqueness.
type Series []Point

// Source provides a power series from an external collaborator, for example
// a PV yield estimator or a metering archive. The core consumes it as a
// black box.
type Source interface {
	Series(ctx context.Context) (Series, error)
}

// Normalize sorts the series by timestamp and removes duplicate timestamps,
// keeping the first occurrence.
func (s Series) Normalize() Series {
	if len(s) == 0 {
		return s
	}
	out := make(Series, len(s))
	copy(out, s)
	sort.SliceStable(out, func(i, j int) bool { return out[i].T.Before(out[j].T) })
	dedup := out[:1]
	for _, p := range out[1:] {
		if p.T.Equal(dedup[len(dedup)-1].T) {
			continue
		}
		dedup = append(dedup, p)
	}
	return dedup
}

// In returns a copy of the series with every timestamp converted to loc.
func (s Series) In(loc *time.Location) Series {
	out := make(Series, len(s))
	for i, p := range s {
		out[i] = Point{T: p.T.In(loc), V: p.V}
	}
	return out
}

// MapYear returns a copy with every timestamp moved to the given calendar
// year, keeping month, day and time of day. Feb 29 entries of a leap year
// normalize onto Mar 1 in a non-leap target year; the resulting duplicate
// timestamps are dropped keep-first by Normalize.
func (s Series) MapYear(year int) Series {
	out := make(Series, len(s))
	for i, p := range s {
		t := p.T
		out[i] = Point{
			T: time.Date(year, t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location()),
			V: p.V,
		}
	}
	return out.Normalize()
}

// Start returns the first timestamp. The series must not be empty.
func (s Series) Start() time.Time { return s[0].T }

// End returns the last timestamp. The series must not be empty.
func (s Series) End() time.Time { return s[len(s)-1].T }
