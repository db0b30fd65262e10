package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/enoplan/bessim/config"
	"github.com/enoplan/bessim/core/marketprice"
	"github.com/enoplan/bessim/infra/csvdata"
)

var pricesCmd = &cobra.Command{
	Use:   "prices",
	Short: "Summarize the configured day-ahead price export",
	RunE:  summarizePrices,
}

func init() {
	rootCmd.AddCommand(pricesCmd)
}

func summarizePrices(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.Input.PriceCSV == "" {
		return fmt.Errorf("input.price_csv is not configured")
	}

	src := csvdata.SMARDSource{
		Path:       cfg.Input.PriceCSV,
		Location:   cfg.Input.Location(),
		TargetYear: cfg.Input.PriceYear,
	}
	prices, err := src.Prices(context.Background())
	if err != nil {
		return err
	}
	sum, err := marketprice.Summarize(prices)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "samples: %d\n", sum.Samples)
	fmt.Fprintf(out, "mean:    %.2f EUR/MWh\n", sum.Mean)
	fmt.Fprintf(out, "stddev:  %.2f EUR/MWh\n", sum.StdDev)
	fmt.Fprintf(out, "min:     %.2f EUR/MWh\n", sum.Min)
	fmt.Fprintf(out, "max:     %.2f EUR/MWh\n", sum.Max)
	return nil
}
