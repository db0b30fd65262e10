package timeseries

import (
	"sort"
	"time"
)

// interpolateAt returns the time-weighted linear interpolation of the series
// at t. The series must be normalized. No extrapolation: t outside the
// series span reports ok=false.
func interpolateAt(s Series, t time.Time) (float64, bool) {
	if len(s) == 0 || t.Before(s[0].T) || t.After(s[len(s)-1].T) {
		return 0, false
	}
	// First point at or after t.
	i := sort.Search(len(s), func(i int) bool { return !s[i].T.Before(t) })
	if s[i].T.Equal(t) {
		return s[i].V, true
	}
	prev, next := s[i-1], s[i]
	span := next.T.Sub(prev.T)
	if span <= 0 {
		return prev.V, true
	}
	w := float64(t.Sub(prev.T)) / float64(span)
	return prev.V + (next.V-prev.V)*w, true
}

// binAverage accumulates the mean of the points falling into [start, start+step).
// idx is the sweep cursor into s and is advanced past the bin.
func binAverage(s Series, start time.Time, step time.Duration, idx *int) (float64, bool) {
	end := start.Add(step)
	for *idx < len(s) && s[*idx].T.Before(start) {
		*idx++
	}
	sum, n := 0.0, 0
	for *idx < len(s) && s[*idx].T.Before(end) {
		sum += s[*idx].V
		n++
		*idx++
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}
