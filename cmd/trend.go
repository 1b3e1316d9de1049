package cmd

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/pable/go-fantasy-league/internal/chart"
	"github.com/pable/go-fantasy-league/internal/report"
)

var (
	trendPNG string
	trendGIF string
)

var trendCmd = &cobra.Command{
	Use:   "trend <group>",
	Short: "Day-by-day totals for every manager in a group",
	Args:  cobra.ExactArgs(1),
	RunE:  runTrend,
}

func init() {
	trendCmd.Flags().StringVar(&trendPNG, "png", "", "also render the trend chart to this PNG file")
	trendCmd.Flags().StringVar(&trendGIF, "gif", "", "also render the animated race to this GIF file")
}

func runTrend(cmd *cobra.Command, args []string) error {
	layout, err := groupLayout(args[0])
	if err != nil {
		return err
	}
	series, day, err := latestHistory(layout, currentDay())
	if err != nil {
		return err
	}

	report.PrintTrendTable(cmd.OutOrStdout(), series)

	if trendPNG != "" {
		if err := writeArtifact(trendPNG, func(w io.Writer) error {
			return chart.TrendPNG(w, series, chartTitle(day))
		}); err != nil {
			return err
		}
	}
	if trendGIF != "" {
		if err := writeArtifact(trendGIF, func(w io.Writer) error {
			return chart.TrendGIF(w, series, chartTitle(day))
		}); err != nil {
			return err
		}
	}
	return nil
}
