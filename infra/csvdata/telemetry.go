package csvdata

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/enoplan/bessim/core/alert"
)

var telemetryLayouts = []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02 15:04"}

// ReadTelemetry reads a two-column telemetry dump (timestamp, value) and
// tags every reading with the metric name. Rows that fail to parse are
// skipped, mirroring how the upstream ingestion treats malformed exports.
func ReadTelemetry(path, metric string, loc *time.Location) ([]alert.Reading, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open telemetry: %w", err)
	}
	defer f.Close()

	if loc == nil {
		loc = time.Local
	}

	r := csv.NewReader(f)
	if _, err := r.Read(); err != nil { // header
		return nil, fmt.Errorf("read telemetry header: %w", err)
	}
	var readings []alert.Reading
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read telemetry: %w", err)
		}
		if len(rec) < 2 {
			continue
		}
		t, ok := parseTelemetryTime(strings.TrimSpace(rec[0]), loc)
		if !ok {
			continue
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(rec[1]), 64)
		if err != nil {
			continue
		}
		readings = append(readings, alert.Reading{T: t, Metric: metric, Value: v})
	}
	return readings, nil
}

// ReadTelemetryDir reads every CSV in dir, using each file's base name
// (without extension) as the metric name.
func ReadTelemetryDir(dir string, loc *time.Location) ([]alert.Reading, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read telemetry dir: %w", err)
	}
	var readings []alert.Reading
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".csv") {
			continue
		}
		metric := strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))
		rs, err := ReadTelemetry(filepath.Join(dir, e.Name()), metric, loc)
		if err != nil {
			return nil, err
		}
		readings = append(readings, rs...)
	}
	return readings, nil
}

func parseTelemetryTime(s string, loc *time.Location) (time.Time, bool) {
	for _, layout := range telemetryLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
