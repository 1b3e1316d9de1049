package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/pable/go-fantasy-league/internal/aggregator"
	"github.com/pable/go-fantasy-league/internal/ingest"
	"github.com/pable/go-fantasy-league/internal/report"
	"github.com/pable/go-fantasy-league/internal/tournament"
)

var (
	cPrompt   = color.New(color.FgCyan, color.Bold)
	cMuted    = color.New(color.Faint)
	cError    = color.New(color.FgRed, color.Bold)
	cWarn     = color.New(color.FgYellow)
	cCmd      = color.New(color.FgYellow, color.Bold)
	cGreeting = color.New(color.Bold)
)

var shellCmd = &cobra.Command{
	Use:   "shell <group>",
	Short: "Start an interactive session for a group",
	Long:  "Open a persistent session against a group's files. Type 'help' for available commands.",
	Args:  cobra.ExactArgs(1),
	RunE:  runShell,
}

func runShell(cmd *cobra.Command, args []string) error {
	layout, err := groupLayout(args[0])
	if err != nil {
		return err
	}
	return shellLoop(os.Stdin, cmd.OutOrStdout(), args[0], layout)
}

func shellLoop(in io.Reader, out io.Writer, group string, layout tournament.Layout) error {
	cGreeting.Fprintf(out, "fantasy shell: %s\n", group)
	cMuted.Fprintln(out, "type 'help' or 'exit'")
	fmt.Fprintln(out)

	scanner := bufio.NewScanner(in)
	for {
		cPrompt.Fprint(out, group)
		cMuted.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		tokens := strings.Fields(line)
		name, args := tokens[0], tokens[1:]

		switch name {
		case "exit", "quit":
			return nil
		case "help":
			shellHelp(out)
		case "board":
			shellBoard(out, layout)
		case "trend":
			shellTrend(out, layout)
		case "player":
			if len(args) == 0 {
				cError.Fprintln(out, "usage: player <name>")
				continue
			}
			shellPlayer(out, layout, strings.Join(args, " "))
		default:
			cWarn.Fprintf(out, "unknown command %q, type 'help'\n", name)
		}
	}
	return scanner.Err()
}

func shellHelp(out io.Writer) {
	fmt.Fprintln(out)
	type entry struct{ cmd, desc string }
	rows := []entry{
		{"board", "standings from the latest results file"},
		{"trend", "day-by-day totals for every manager"},
		{"player <name>", "look a player up in the day's MVP table"},
		{"help", "show this message"},
		{"exit / quit", "close the session"},
	}
	for _, r := range rows {
		fmt.Fprint(out, "  ")
		cCmd.Fprintf(out, "%-20s", r.cmd)
		fmt.Fprintln(out, r.desc)
	}
	fmt.Fprintln(out)
}

func shellBoard(out io.Writer, layout tournament.Layout) {
	series, day, err := latestHistory(layout, currentDay())
	if err != nil {
		cError.Fprintf(out, "error: %v\n", err)
		return
	}
	report.PrintLeaderboard(out, day, aggregator.RankDeltas(series.Previous(), series.Latest()))
}

func shellTrend(out io.Writer, layout tournament.Layout) {
	series, _, err := latestHistory(layout, currentDay())
	if err != nil {
		cError.Fprintf(out, "error: %v\n", err)
		return
	}
	report.PrintTrendTable(out, series)
}

// shellPlayer reports a player's points and owner, or the closest MVP name
// when the player is not in the table.
func shellPlayer(out io.Writer, layout tournament.Layout, name string) {
	table, mvpDay, err := loadDayMVP(layout, currentDay())
	if err != nil {
		cError.Fprintf(out, "error: %v\n", err)
		return
	}
	m, err := newMatcher(table)
	if err != nil {
		cError.Fprintf(out, "error: %v\n", err)
		return
	}
	entry, ok := m.Lookup(name)
	if !ok {
		closest, sim := m.Closest(name)
		cWarn.Fprintf(out, "%s not in %s, closest match is %q (%d)\n", name, tournament.DayLabel(mvpDay), closest, sim)
		return
	}

	owner := "undrafted"
	if roster, err := ingest.LoadRoster(layout.RosterFile()); err == nil {
		key := m.Key(name)
		for _, t := range roster.Teams {
			for _, p := range t.Players {
				if m.Key(p) == key {
					owner = t.Manager
				}
			}
		}
	}
	fmt.Fprintf(out, "%s: %s pts (%s), owned by %s\n", entry.Player, report.FormatPoints(entry.Points), tournament.DayLabel(mvpDay), owner)
}
