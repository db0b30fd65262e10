package timeseries

import (
	"errors"
	"fmt"
	"time"

	"github.com/enoplan/bessim/core/model"
)

// ErrAlignment marks degenerate or non-overlapping input series. The
// simulation cannot start from such inputs. Use errors.Is to test for it.
var ErrAlignment = errors.New("alignment failed")

// AlignOptions controls the target timeline.
type AlignOptions struct {
	// Step is the target resolution, e.g. 15 minutes.
	Step time.Duration
	// Location is the target time zone. Nil means UTC. Loaders assign it to
	// zone-less inputs; Align converts everything else into it.
	Location *time.Location
}

// Align reconciles a PV production series and a load series onto one dense,
// fixed-step timeline.
//
// Both series are converted into the target zone and normalized. When the PV
// data stems from a different calendar year (typical for TMY-derived yield),
// its timestamps are remapped onto the load's year, dropping leap-day
// collisions keep-first. PV is resampled by time-weighted interpolation,
// load by per-bin averaging. Bins missing a value on either side are dropped
// rather than gap-filled.
func Align(pv, load Series, opts AlignOptions) ([]model.TimeSample, error) {
	if opts.Step <= 0 {
		return nil, fmt.Errorf("%w: step must be positive", model.ErrConfiguration)
	}
	if len(pv) == 0 {
		return nil, fmt.Errorf("%w: empty pv series", ErrAlignment)
	}
	if len(load) == 0 {
		return nil, fmt.Errorf("%w: empty load series", ErrAlignment)
	}
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}

	pv = pv.In(loc).Normalize()
	load = load.In(loc).Normalize()

	if loadYear := load.Start().Year(); pv.Start().Year() != loadYear {
		pv = pv.MapYear(loadYear)
	}

	start := pv.Start()
	if load.Start().After(start) {
		start = load.Start()
	}
	start = start.Truncate(opts.Step)
	end := pv.End()
	if load.End().Before(end) {
		end = load.End()
	}

	var samples []model.TimeSample
	loadIdx := 0
	for t := start; !t.After(end); t = t.Add(opts.Step) {
		pvVal, ok := interpolateAt(pv, t)
		if !ok {
			// Keep the load cursor moving past skipped bins.
			binAverage(load, t, opts.Step, &loadIdx)
			continue
		}
		loadVal, ok := binAverage(load, t, opts.Step, &loadIdx)
		if !ok {
			continue
		}
		samples = append(samples, model.TimeSample{Timestamp: t, PVKW: pvVal, LoadKW: loadVal})
	}
	if len(samples) == 0 {
		return nil, fmt.Errorf("%w: no overlapping samples after resampling", ErrAlignment)
	}
	return samples, nil
}
