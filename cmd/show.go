package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/spf13/cobra"

	"github.com/pable/go-fantasy-league/internal/report"
)

var showManager string

var showCmd = &cobra.Command{
	Use:   "show <group> <day>",
	Short: "Show an archived run",
	Args:  cobra.ExactArgs(2),
	RunE:  runShow,
}

func init() {
	showCmd.Flags().StringVar(&showManager, "manager", "", "only show this manager's players")
}

func runShow(cmd *cobra.Command, args []string) error {
	group := args[0]
	day, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("invalid day %q: %w", args[1], err)
	}

	db, err := openArchive()
	if err != nil {
		return err
	}
	defer db.Close()

	run, err := db.GetRun(group, day)
	if err != nil {
		return fmt.Errorf("query run: %w", err)
	}
	if run == nil {
		fmt.Fprintf(os.Stderr, "No run archived for %s day %d\n", group, day)
		return nil
	}

	standings, err := db.ManagerTotals(run.ID)
	if err != nil {
		return fmt.Errorf("get totals: %w", err)
	}
	points, err := db.PlayerPoints(run.ID)
	if err != nil {
		return fmt.Errorf("get player points: %w", err)
	}
	misses, err := db.Misses(run.ID)
	if err != nil {
		return fmt.Errorf("get misses: %w", err)
	}

	fmt.Fprintf(os.Stdout, "Run %s  group=%s  mvp_day=%d  recorded=%s\n",
		run.ID, run.Group, run.MVPDay, run.RecordedAt.Local().Format("2006-01-02 15:04"))
	report.PrintLeaderboard(os.Stdout, run.Day, standings)

	table := tablewriter.NewTable(os.Stdout, tablewriter.WithConfig(tablewriter.Config{
		Row:    tw.CellConfig{Alignment: tw.CellAlignment{Global: tw.AlignRight}},
		Header: tw.CellConfig{Alignment: tw.CellAlignment{Global: tw.AlignCenter}},
	}))
	table.Header("MANAGER", "PLAYER", "POINTS", "MATCHED")
	for _, p := range points {
		if showManager != "" && p.Manager != showManager {
			continue
		}
		matched := "yes"
		if !p.Matched {
			matched = "no"
		}
		table.Append(p.Manager, p.Player, report.FormatPoints(p.Points), matched)
	}
	fmt.Fprintln(os.Stdout)
	table.Render()

	for _, m := range misses {
		if showManager != "" && m.Manager != showManager {
			continue
		}
		fmt.Fprintf(os.Stdout, "  %s: %s not found, closest %q (%d)\n", m.Manager, m.Player, m.Closest, m.Similarity)
	}
	return nil
}
