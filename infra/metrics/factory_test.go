package metrics

import (
	"testing"

	"github.com/stretchr/testify/require"

	coremetrics "github.com/enoplan/bessim/core/metrics"
)

func TestNewSink_NothingEnabled(t *testing.T) {
	sink, err := NewSink(coremetrics.Config{})
	require.NoError(t, err)
	require.IsType(t, coremetrics.NopSink{}, sink)
}

func TestNewSink_InfluxUnreachableFallsBack(t *testing.T) {
	cfg := coremetrics.Config{
		InfluxEnabled: true,
		InfluxURL:     "http://127.0.0.1:1",
		InfluxOrg:     "org",
		InfluxBucket:  "bucket",
	}
	sink, err := NewSink(cfg)
	require.NoError(t, err)
	require.IsType(t, coremetrics.NopSink{}, sink)
}
