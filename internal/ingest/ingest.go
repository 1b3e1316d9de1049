// Package ingest loads the two pipeline inputs: a day's MVP table and the
// auction summary roster.
package ingest

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/pable/go-fantasy-league/internal/model"
)

// Column names required in an MVP table.
const (
	PlayerColumn = "Player"
	PointsColumn = "Pts"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// mvpRow is the subset of MVP table columns the pipeline uses.
type mvpRow struct {
	Player string `csv:"Player"`
	Pts    string `csv:"Pts"`
}

// LoadMVP reads the MVP table for a day.
func LoadMVP(path string, day int) (model.MVPTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.MVPTable{}, fmt.Errorf("read MVP table %s: %w", path, err)
	}
	t, err := ParseMVP(data)
	if err != nil {
		return model.MVPTable{}, fmt.Errorf("parse MVP table %s: %w", path, err)
	}
	t.Day = day
	return t, nil
}

// ParseMVP parses MVP CSV. Extra columns are ignored and rows with an empty
// player name are skipped. An empty points cell counts as zero.
func ParseMVP(data []byte) (model.MVPTable, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	header, err := csv.NewReader(bytes.NewReader(data)).Read()
	if err == io.EOF {
		return model.MVPTable{}, fmt.Errorf("empty file")
	}
	if err != nil {
		return model.MVPTable{}, fmt.Errorf("read header: %w", err)
	}
	if err := requireColumns(header, PlayerColumn, PointsColumn); err != nil {
		return model.MVPTable{}, err
	}

	var rows []mvpRow
	if err := gocsv.UnmarshalBytes(data, &rows); err != nil {
		return model.MVPTable{}, fmt.Errorf("decode rows: %w", err)
	}

	t := model.MVPTable{Entries: make([]model.MVPEntry, 0, len(rows))}
	for i, r := range rows {
		name := strings.TrimSpace(r.Player)
		if name == "" {
			continue
		}
		pts := decimal.Zero
		if s := strings.TrimSpace(r.Pts); s != "" {
			pts, err = decimal.NewFromString(s)
			if err != nil {
				return model.MVPTable{}, fmt.Errorf("row %d (%s): invalid points %q", i+2, name, s)
			}
		}
		t.Entries = append(t.Entries, model.MVPEntry{Player: name, Points: pts})
	}
	return t, nil
}

func requireColumns(header []string, cols ...string) error {
	have := make(map[string]bool, len(header))
	for _, h := range header {
		have[strings.TrimSpace(h)] = true
	}
	for _, c := range cols {
		if !have[c] {
			return fmt.Errorf("missing column %q (have %s)", c, strings.Join(header, ", "))
		}
	}
	return nil
}

// LoadRoster reads an auction summary from .csv or .xlsx.
func LoadRoster(path string) (model.Roster, error) {
	var (
		grid [][]string
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		grid, err = readXLSX(path)
	default:
		grid, err = readCSV(path)
	}
	if err != nil {
		return model.Roster{}, fmt.Errorf("read roster %s: %w", path, err)
	}
	r, err := RosterFromGrid(grid)
	if err != nil {
		return model.Roster{}, fmt.Errorf("parse roster %s: %w", path, err)
	}
	return r, nil
}

func readCSV(path string) ([][]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cr := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, utf8BOM)))
	cr.FieldsPerRecord = -1
	return cr.ReadAll()
}

func readXLSX(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	return rows, nil
}

// RosterFromGrid converts a column-per-manager grid into a roster. The first
// row names the managers; cells below list their players. Blank cells and
// "nan" are skipped so columns may have different lengths.
func RosterFromGrid(grid [][]string) (model.Roster, error) {
	if len(grid) == 0 {
		return model.Roster{}, fmt.Errorf("empty roster")
	}
	header := grid[0]
	teams := make([]model.Team, 0, len(header))
	seen := make(map[string]bool, len(header))
	for col, h := range header {
		mgr := strings.TrimSpace(h)
		if mgr == "" {
			continue
		}
		if seen[mgr] {
			return model.Roster{}, fmt.Errorf("duplicate manager %q", mgr)
		}
		seen[mgr] = true

		t := model.Team{Manager: mgr}
		for _, row := range grid[1:] {
			if col >= len(row) {
				continue
			}
			p := strings.TrimSpace(row[col])
			if p == "" || strings.EqualFold(p, "nan") {
				continue
			}
			t.Players = append(t.Players, p)
		}
		teams = append(teams, t)
	}
	if len(teams) == 0 {
		return model.Roster{}, fmt.Errorf("no managers in header")
	}
	return model.Roster{Teams: teams}, nil
}

// EncodeMVP writes a table back out as Player,Pts CSV.
func EncodeMVP(t model.MVPTable) ([]byte, error) {
	rows := make([]mvpRow, len(t.Entries))
	for i, e := range t.Entries {
		rows[i] = mvpRow{Player: e.Player, Pts: e.Points.String()}
	}
	data, err := gocsv.MarshalBytes(&rows)
	if err != nil {
		return nil, fmt.Errorf("encode MVP table: %w", err)
	}
	return data, nil
}
