package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/shopspring/decimal"

	"github.com/pable/go-fantasy-league/internal/history"
	"github.com/pable/go-fantasy-league/internal/ledger"
	"github.com/pable/go-fantasy-league/internal/model"
	"github.com/pable/go-fantasy-league/internal/tournament"
)

var (
	cUp   = color.New(color.FgGreen, color.Bold)
	cDown = color.New(color.FgRed, color.Bold)
	cWarn = color.New(color.FgYellow)
	cOK   = color.New(color.FgGreen)
)

// DeltaIndicator renders a rank change as "▲n", "▼n" or "".
func DeltaIndicator(delta int) string {
	switch {
	case delta > 0:
		return fmt.Sprintf("▲%d", delta)
	case delta < 0:
		return fmt.Sprintf("▼%d", -delta)
	default:
		return ""
	}
}

func coloredDelta(delta int) string {
	s := DeltaIndicator(delta)
	switch {
	case delta > 0:
		return cUp.Sprint(s)
	case delta < 0:
		return cDown.Sprint(s)
	default:
		return s
	}
}

// FormatPoints prints points without trailing zeros.
func FormatPoints(d decimal.Decimal) string {
	return d.String()
}

// newTerminalTable prints headers verbatim so day columns read D1, D2.
func newTerminalTable(w io.Writer) *tablewriter.Table {
	return tablewriter.NewTable(w,
		tablewriter.WithConfig(tablewriter.Config{
			Row: tw.CellConfig{
				Alignment: tw.CellAlignment{Global: tw.AlignRight},
			},
			Header: tw.CellConfig{
				Alignment: tw.CellAlignment{Global: tw.AlignCenter},
			},
		}),
		tablewriter.WithHeaderAutoFormat(tw.Off),
	)
}

// PrintLeaderboard prints the standings with coloured rank movement.
func PrintLeaderboard(w io.Writer, day int, standings model.Standings) {
	fmt.Fprintf(w, "\n%s\n\n", strings.ToUpper(tournament.DayLabel(day)))

	table := newTerminalTable(w)
	table.Header("#", "MANAGER", "POINTS", "MOVE")
	for _, s := range standings {
		table.Append(
			fmt.Sprintf("%d", s.Rank),
			s.Manager,
			FormatPoints(s.Points),
			coloredDelta(s.Delta),
		)
	}
	table.Render()
}

// PrintManagerDay prints one manager's per-player breakdown for a day,
// followed by any misses and their closest MVP names.
func PrintManagerDay(w io.Writer, ms model.ManagerScore) {
	fmt.Fprintf(w, "\n%s — %s\n", ms.Manager, FormatPoints(ms.Total))

	table := newTerminalTable(w)
	table.Header("PLAYER", "POINTS", "MATCHED")
	for _, p := range ms.Players {
		matched := "yes"
		if !p.Matched {
			matched = cWarn.Sprint("no")
		}
		table.Append(p.Player, FormatPoints(p.Points), matched)
	}
	table.Render()

	for _, m := range ms.Misses {
		if m.Closest == "" {
			cWarn.Fprintf(w, "  %s not found in MVP table (table is empty)\n", m.Player)
			continue
		}
		cWarn.Fprintf(w, "  %s not found in MVP table... double check the spelling, closest match is %q (%d)\n",
			m.Player, m.Closest, m.Similarity)
	}
	if ms.AllMatched() {
		cOK.Fprintln(w, "  All players have min fantasy points.")
	}
}

// PrintTrendTable prints a manager × day matrix, rows in current standing order.
func PrintTrendTable(w io.Writer, s *history.Series) {
	if s.Days() == 0 {
		fmt.Fprintln(w, "no history recorded")
		return
	}
	table := newTerminalTable(w)
	header := []any{"MANAGER"}
	for i := 1; i <= s.Days(); i++ {
		header = append(header, fmt.Sprintf("D%d", i))
	}
	header = append(header, "MOVE")
	table.Header(header...)

	latest := s.Latest()
	prev := s.Previous()
	prevPos := prev.Positions()
	for i, st := range latest {
		row := []any{st.Manager}
		for _, v := range s.Values(st.Manager) {
			row = append(row, FormatPoints(v))
		}
		move := ""
		if p, ok := prevPos[st.Manager]; ok {
			move = coloredDelta(p - i)
		}
		row = append(row, move)
		table.Append(row...)
	}
	table.Render()
}

// PrintLedger prints a manager ledger as a markdown table under a day banner,
// the form the group chat receives.
func PrintLedger(w io.Writer, day int, l *ledger.Ledger) error {
	header := []string{l.Manager}
	for _, d := range l.Days() {
		header = append(header, tournament.DayLabel(d))
	}
	rows := make([][]string, 0, len(l.Players))
	for _, p := range l.Players {
		row := []string{p}
		for _, d := range l.Days() {
			if v, ok := l.Points(d, p); ok {
				row = append(row, FormatPoints(v))
			} else {
				row = append(row, "")
			}
		}
		rows = append(rows, row)
	}
	md, err := MarkdownTable(header, rows)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "*%s*\n```\n%s```\n", strings.ToUpper(tournament.DayLabel(day)), md)
	return nil
}
