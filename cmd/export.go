package cmd

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/pable/go-fantasy-league/internal/history"
	"github.com/pable/go-fantasy-league/internal/ingest"
	"github.com/pable/go-fantasy-league/internal/ledger"
	"github.com/pable/go-fantasy-league/internal/storage"
	"github.com/pable/go-fantasy-league/internal/tournament"
)

var (
	exportOut     string
	exportArchive bool
)

var exportCmd = &cobra.Command{
	Use:   "export <group>",
	Short: "Export the results history and ledgers as an XLSX workbook",
	Long: `Writes a workbook with a Leaderboard sheet (one row per manager, one column
per recorded day) and one sheet per manager ledger. With --archive a Season
sheet summarises every archived player's points and misses.

Example:
  fantasy export office --out office.xlsx`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "output path (default: <group>/<tournament>_export.xlsx)")
	exportCmd.Flags().BoolVar(&exportArchive, "archive", false, "add a Season sheet from the SQLite archive")
}

func runExport(cmd *cobra.Command, args []string) error {
	group := args[0]
	layout, err := groupLayout(group)
	if err != nil {
		return err
	}
	series, _, err := latestHistory(layout, currentDay())
	if err != nil {
		return err
	}
	roster, err := ingest.LoadRoster(layout.RosterFile())
	if err != nil {
		return err
	}

	var season []storage.PlayerSeason
	if exportArchive {
		db, err := openArchive()
		if err != nil {
			return err
		}
		season, err = db.SeasonPlayerTotals(group)
		db.Close()
		if err != nil {
			return fmt.Errorf("query season totals: %w", err)
		}
	}

	var ledgers []*ledger.Ledger
	for _, mgr := range roster.Managers() {
		l, err := ledger.Load(layout.LedgerFile(mgr))
		if err != nil {
			logger.Warn("ledger not exported", zap.String("manager", mgr), zap.Error(err))
			continue
		}
		ledgers = append(ledgers, l)
	}

	f, err := buildWorkbook(series, ledgers, season)
	if err != nil {
		return err
	}
	defer f.Close()

	out := exportOut
	if out == "" {
		out = layout.ExportFile()
	}
	if err := f.SaveAs(out); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%d ledgers)\n", out, len(ledgers))
	return nil
}

const seasonSheet = "Season"

// buildWorkbook lays out the export sheets.
func buildWorkbook(series *history.Series, ledgers []*ledger.Ledger, season []storage.PlayerSeason) (*excelize.File, error) {
	f := excelize.NewFile()
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		f.Close()
		return nil, err
	}

	const board = "Leaderboard"
	if err := f.SetSheetName("Sheet1", board); err != nil {
		f.Close()
		return nil, err
	}
	header := append([]any{"Manager"}, lo.Map(lo.Range(series.Days()), func(i int, _ int) any {
		return fmt.Sprintf("D%d", i+1)
	})...)
	rows := [][]any{header}
	for _, st := range series.Latest() {
		row := []any{st.Manager}
		for _, v := range series.Values(st.Manager) {
			row = append(row, v.InexactFloat64())
		}
		rows = append(rows, row)
	}
	if err := writeSheet(f, board, rows, bold); err != nil {
		f.Close()
		return nil, err
	}

	used := map[string]bool{strings.ToLower(board): true, strings.ToLower(seasonSheet): true}
	for _, l := range ledgers {
		sheet := uniqueSheetName(sheetName(l.Manager), used)
		if _, err := f.NewSheet(sheet); err != nil {
			f.Close()
			return nil, fmt.Errorf("add sheet %q: %w", sheet, err)
		}
		header := append([]any{"Player"}, lo.Map(l.Days(), func(d int, _ int) any {
			return tournament.DayLabel(d)
		})...)
		rows := [][]any{header}
		for _, p := range l.Players {
			row := []any{p}
			for _, d := range l.Days() {
				if v, ok := l.Points(d, p); ok {
					row = append(row, v.InexactFloat64())
				} else {
					row = append(row, nil)
				}
			}
			rows = append(rows, row)
		}
		if err := writeSheet(f, sheet, rows, bold); err != nil {
			f.Close()
			return nil, err
		}
	}

	if len(season) > 0 {
		const sheet = seasonSheet
		if _, err := f.NewSheet(sheet); err != nil {
			f.Close()
			return nil, err
		}
		rows := [][]any{{"Player", "Manager", "Total", "Days", "Missed"}}
		for _, ps := range season {
			rows = append(rows, []any{ps.Player, ps.Manager, ps.Total.InexactFloat64(), ps.Days, ps.Missed})
		}
		if err := writeSheet(f, sheet, rows, bold); err != nil {
			f.Close()
			return nil, err
		}
	}
	return f, nil
}

func writeSheet(f *excelize.File, sheet string, rows [][]any, headerStyle int) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+1, err)
		}
	}
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil
	}
	last, err := excelize.CoordinatesToCellName(len(rows[0]), 1)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, "A1", last, headerStyle)
}

// sheetName strips characters Excel rejects and truncates to 31 runes.
func sheetName(s string) string {
	s = strings.Map(func(r rune) rune {
		if strings.ContainsRune(`[]:*?/\`, r) {
			return '_'
		}
		return r
	}, s)
	if r := []rune(s); len(r) > 31 {
		s = string(r[:31])
	}
	return s
}

// uniqueSheetName suffixes name with " (n)" until it is unused, comparing
// case-insensitively as Excel does, and records the result in used.
func uniqueSheetName(name string, used map[string]bool) string {
	candidate := name
	for n := 2; used[strings.ToLower(candidate)]; n++ {
		suffix := fmt.Sprintf(" (%d)", n)
		base := []rune(name)
		if limit := 31 - len(suffix); len(base) > limit {
			base = base[:limit]
		}
		candidate = string(base) + suffix
	}
	used[strings.ToLower(candidate)] = true
	return candidate
}
