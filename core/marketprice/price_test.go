package marketprice

import (
	"errors"
	"math"
	"testing"
	"time"
)

func hourly(values ...float64) Series {
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	s := make(Series, len(values))
	for i, v := range values {
		s[i] = Price{T: base.Add(time.Duration(i) * time.Hour), EURPerMWh: v}
	}
	return s
}

func TestAt(t *testing.T) {
	s := hourly(50, 60, 70)

	if _, ok := s.At(s[0].T.Add(-time.Minute)); ok {
		t.Error("price before the first sample must not resolve")
	}
	if v, ok := s.At(s[1].T.Add(30 * time.Minute)); !ok || v != 60 {
		t.Errorf("At mid-hour = %v, %v; want 60, true", v, ok)
	}
	if v, ok := s.At(s[2].T.Add(24 * time.Hour)); !ok || v != 70 {
		t.Errorf("At after end = %v, %v; want 70, true", v, ok)
	}
}

func TestSummarize(t *testing.T) {
	sum, err := Summarize(hourly(40, 60, 80, 100))
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if sum.Samples != 4 || sum.Min != 40 || sum.Max != 100 {
		t.Errorf("unexpected summary %+v", sum)
	}
	if math.Abs(sum.Mean-70) > 1e-9 {
		t.Errorf("mean = %v, want 70", sum.Mean)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	if _, err := Summarize(nil); !errors.Is(err, ErrEmptySeries) {
		t.Errorf("err = %v, want ErrEmptySeries", err)
	}
}
