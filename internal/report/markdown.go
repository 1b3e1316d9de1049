package report

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/pable/go-fantasy-league/internal/model"
	"github.com/pable/go-fantasy-league/internal/tournament"
)

// MarkdownTable renders rows as a GitHub-flavoured markdown table.
func MarkdownTable(header []string, rows [][]string) (string, error) {
	var buf bytes.Buffer
	table := tablewriter.NewTable(&buf,
		tablewriter.WithRenderer(renderer.NewMarkdown()),
		tablewriter.WithHeaderAutoFormat(tw.Off),
	)
	h := make([]any, len(header))
	for i, c := range header {
		h[i] = c
	}
	table.Header(h...)
	for _, r := range rows {
		cells := make([]any, len(r))
		for i, c := range r {
			cells[i] = c
		}
		if err := table.Append(cells...); err != nil {
			return "", fmt.Errorf("append row: %w", err)
		}
	}
	if err := table.Render(); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return buf.String(), nil
}

// LeaderboardMarkdown is the chat message written to the leaderboard text
// file: a bold day banner and a fenced Manager/Points table.
func LeaderboardMarkdown(day int, standings model.Standings) (string, error) {
	rows := make([][]string, len(standings))
	for i, s := range standings {
		rows[i] = []string{s.Manager, FormatPoints(s.Points)}
	}
	md, err := MarkdownTable([]string{"Manager", "Points"}, rows)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("*%s*\n```\n%s```", strings.ToUpper(tournament.DayLabel(day)), md), nil
}

// StandingsMarkdown is the leaderboard with rank movement, used as the
// source for the HTML fragment.
func StandingsMarkdown(day int, standings model.Standings) (string, error) {
	rows := make([][]string, len(standings))
	for i, s := range standings {
		rows[i] = []string{fmt.Sprintf("%d", s.Rank), s.Manager, FormatPoints(s.Points), DeltaIndicator(s.Delta)}
	}
	md, err := MarkdownTable([]string{"#", "Manager", "Points", "Move"}, rows)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("### Leaderboard — Day %d\n\n%s", day, md), nil
}

// OwnershipMarkdown renders the ownership report.
func OwnershipMarkdown(day int, rows []model.OwnershipRow) (string, error) {
	out := make([][]string, len(rows))
	for i, r := range rows {
		mgr := r.Manager
		if mgr == "" {
			mgr = "—"
		}
		pts := FormatPoints(r.Points)
		if !r.Matched {
			pts += " (unmatched)"
		}
		out[i] = []string{r.Player, mgr, pts}
	}
	md, err := MarkdownTable([]string{"Player", "Manager", "Points"}, out)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("### Ownership — Day %d\n\n%s", day, md), nil
}
