package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pable/go-fantasy-league/internal/aggregator"
	"github.com/pable/go-fantasy-league/internal/report"
)

var leaderboardMarkdown bool

var leaderboardCmd = &cobra.Command{
	Use:   "leaderboard <group>",
	Short: "Print the standings from the latest results file",
	Args:  cobra.ExactArgs(1),
	RunE:  runLeaderboard,
}

func init() {
	leaderboardCmd.Flags().BoolVar(&leaderboardMarkdown, "markdown", false, "print the chat-ready markdown message instead")
}

func runLeaderboard(cmd *cobra.Command, args []string) error {
	layout, err := groupLayout(args[0])
	if err != nil {
		return err
	}
	series, day, err := latestHistory(layout, currentDay())
	if err != nil {
		return err
	}
	standings := aggregator.RankDeltas(series.Previous(), series.Latest())

	w := cmd.OutOrStdout()
	if leaderboardMarkdown {
		md, err := report.LeaderboardMarkdown(day, standings)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, md)
		return nil
	}
	report.PrintLeaderboard(w, day, standings)
	return nil
}
