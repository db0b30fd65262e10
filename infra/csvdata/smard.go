package csvdata

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/enoplan/bessim/core/marketprice"
)

const smardLayout = "02.01.2006 15:04"

// SMARDSource reads a day-ahead price export from smard.de. The files are
// semicolon separated with decimal commas and day-first timestamps. Missing
// values are linearly interpolated, duplicate timestamps averaged, and leap
// days dropped so that series from different years line up.
type SMARDSource struct {
	Path     string
	Location *time.Location
	// TargetYear remaps every timestamp onto the given year. Zero keeps the
	// original years.
	TargetYear int
}

// Prices implements marketprice.Source.
func (s SMARDSource) Prices(ctx context.Context) (marketprice.Series, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("open price export: %w", err)
	}
	defer f.Close()

	loc := s.Location
	if loc == nil {
		loc = time.Local
	}

	r := csv.NewReader(f)
	r.Comma = ';'
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read price header: %w", err)
	}
	timeIdx, priceIdx := -1, -1
	for i, h := range header {
		h = strings.TrimSpace(h)
		if h == "Datum von" {
			timeIdx = i
		}
		if strings.Contains(h, "€/MWh") && priceIdx < 0 {
			priceIdx = i
		}
	}
	if timeIdx < 0 || priceIdx < 0 {
		return nil, fmt.Errorf("price export %s: no \"Datum von\" or €/MWh column", s.Path)
	}

	type row struct {
		t  time.Time
		v  float64
		ok bool
	}
	var rows []row
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read price export: %w", err)
		}
		t, err := time.ParseInLocation(smardLayout, strings.TrimSpace(rec[timeIdx]), loc)
		if err != nil {
			return nil, fmt.Errorf("parse price timestamp %q: %w", rec[timeIdx], err)
		}
		if t.Month() == time.February && t.Day() == 29 {
			continue
		}
		if s.TargetYear != 0 {
			t = time.Date(s.TargetYear, t.Month(), t.Day(), t.Hour(), t.Minute(), 0, 0, loc)
		}
		v, ok := parseGermanFloat(rec[priceIdx])
		rows = append(rows, row{t: t, v: v, ok: ok})
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("price export %s: no samples", s.Path)
	}

	sort.SliceStable(rows, func(i, j int) bool { return rows[i].t.Before(rows[j].t) })

	// Average duplicate timestamps; a duplicate group counts as present if
	// any member has a value.
	merged := rows[:0]
	for i := 0; i < len(rows); {
		j := i
		sum, n := 0.0, 0
		for j < len(rows) && rows[j].t.Equal(rows[i].t) {
			if rows[j].ok {
				sum += rows[j].v
				n++
			}
			j++
		}
		m := row{t: rows[i].t}
		if n > 0 {
			m.v, m.ok = sum/float64(n), true
		}
		merged = append(merged, m)
		i = j
	}

	// Fill gaps by linear interpolation between the nearest known values.
	prev := -1
	for i := range merged {
		if !merged[i].ok {
			continue
		}
		if prev >= 0 && i-prev > 1 {
			span := merged[i].t.Sub(merged[prev].t).Seconds()
			for k := prev + 1; k < i; k++ {
				frac := merged[k].t.Sub(merged[prev].t).Seconds() / span
				merged[k].v = merged[prev].v + frac*(merged[i].v-merged[prev].v)
				merged[k].ok = true
			}
		}
		prev = i
	}

	var series marketprice.Series
	for _, m := range merged {
		if m.ok {
			series = append(series, marketprice.Price{T: m.t, EURPerMWh: m.v})
		}
	}
	if len(series) == 0 {
		return nil, fmt.Errorf("price export %s: all values missing", s.Path)
	}
	return series, nil
}

// parseGermanFloat parses values like "1.234,56". Empty strings and dashes
// mark missing values.
func parseGermanFloat(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" || s == "-" {
		return 0, false
	}
	s = strings.ReplaceAll(s, ".", "")
	s = strings.ReplaceAll(s, ",", ".")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
