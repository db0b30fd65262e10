package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/enoplan/bessim/config"
	"github.com/enoplan/bessim/core/analysis"
	"github.com/enoplan/bessim/infra/csvdata"
)

var (
	highLoadFraction  float64
	highLoadIntervals int
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Print load statistics for battery sizing",
	RunE:  analyzeLoad,
}

func init() {
	analyzeCmd.Flags().Float64Var(&highLoadFraction, "high-load-fraction", 0.9,
		"fraction of the annual peak counting as high load")
	analyzeCmd.Flags().IntVar(&highLoadIntervals, "high-load-intervals", 4,
		"intervals above the threshold for a day to count as a high-load day")
	rootCmd.AddCommand(analyzeCmd)
}

func analyzeLoad(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	src := csvdata.LoadSource{Path: cfg.Input.LoadCSV, Location: cfg.Input.Location()}
	series, err := src.Series(context.Background())
	if err != nil {
		return err
	}
	series = series.Normalize()

	peakTime, peakKW, err := analysis.Peak(series)
	if err != nil {
		return err
	}
	p95, err := analysis.Quantile(series, 0.95)
	if err != nil {
		return err
	}
	days, err := analysis.HighLoadDays(series, highLoadFraction, highLoadIntervals)
	if err != nil {
		return err
	}
	profile, err := analysis.Profile(series)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "samples:        %d (%s to %s)\n", len(series), series.Start().Format(time.RFC3339), series.End().Format(time.RFC3339))
	fmt.Fprintf(out, "annual peak:    %.1f kW at %s\n", peakKW, peakTime.Format(time.RFC3339))
	fmt.Fprintf(out, "95th percentile: %.1f kW\n", p95)
	fmt.Fprintf(out, "high-load days: %d (>= %d intervals above %.0f%% of peak)\n",
		days, highLoadIntervals, highLoadFraction*100)
	fmt.Fprintln(out, "average daily profile:")
	for i, off := range profile.Offsets {
		fmt.Fprintf(out, "  %02d:%02d  %8.1f kW\n",
			int(off.Hours()), int(off.Minutes())%60, profile.MeanKW[i])
	}
	return nil
}
