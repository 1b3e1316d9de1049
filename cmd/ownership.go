package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pable/go-fantasy-league/internal/aggregator"
	"github.com/pable/go-fantasy-league/internal/ingest"
	"github.com/pable/go-fantasy-league/internal/report"
)

var (
	ownershipUnowned bool
	ownershipOut     string
	ownershipWrite   bool
)

var ownershipCmd = &cobra.Command{
	Use:   "ownership <group>",
	Short: "Show which manager owns each player and what they scored",
	Args:  cobra.ExactArgs(1),
	RunE:  runOwnership,
}

func init() {
	ownershipCmd.Flags().BoolVar(&ownershipUnowned, "unowned", false, "include MVP players nobody drafted")
	ownershipCmd.Flags().StringVarP(&ownershipOut, "out", "o", "", "also write the report to this path")
	ownershipCmd.Flags().BoolVarP(&ownershipWrite, "write", "w", false, "also write the report to <group>/<tournament>_ownership.md")
}

func runOwnership(cmd *cobra.Command, args []string) error {
	layout, err := groupLayout(args[0])
	if err != nil {
		return err
	}
	day := currentDay()
	table, _, err := loadDayMVP(layout, day)
	if err != nil {
		return err
	}
	roster, err := ingest.LoadRoster(layout.RosterFile())
	if err != nil {
		return err
	}
	m, err := newMatcher(table)
	if err != nil {
		return err
	}

	rows := aggregator.Ownership(roster, m, ownershipUnowned)
	md, err := report.OwnershipMarkdown(day, rows)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), md)

	out := ownershipOut
	if out == "" && ownershipWrite {
		out = layout.OwnershipFile()
	}
	if out == "" {
		return nil
	}
	if err := os.WriteFile(out, []byte(md), 0644); err != nil {
		return fmt.Errorf("write ownership: %w", err)
	}
	logger.Info("ownership report written", zap.String("path", out))
	return nil
}
