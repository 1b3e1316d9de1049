// Package ledger maintains one CSV per manager recording each drafted
// player's points for every processed day.
//
// The header is the manager name followed by day labels ("day_3", "day_4", …);
// each row is a lower-cased player name followed by that player's points.
package ledger

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/pable/go-fantasy-league/internal/model"
	"github.com/pable/go-fantasy-league/internal/tournament"
)

// Ledger is one manager's player × day points table.
type Ledger struct {
	Manager string
	Players []string

	days   []int
	points map[int]map[string]decimal.Decimal
}

// FromTeam starts a ledger from a roster team with no recorded days.
func FromTeam(team model.Team) *Ledger {
	l := &Ledger{Manager: team.Manager, points: make(map[int]map[string]decimal.Decimal)}
	for _, p := range team.Players {
		l.Players = append(l.Players, strings.ToLower(strings.TrimSpace(p)))
	}
	return l
}

// Days returns the recorded day indices in ascending order.
func (l *Ledger) Days() []int {
	out := make([]int, len(l.days))
	copy(out, l.days)
	return out
}

// Points returns a player's points on a day. ok is false for a blank cell.
func (l *Ledger) Points(day int, player string) (decimal.Decimal, bool) {
	p, ok := l.points[day][strings.ToLower(player)]
	return p, ok
}

// SetDay records a day's points, replacing any earlier values for that day.
// Keys are matched case-insensitively against the ledger's players; players
// without an entry are left blank.
func (l *Ledger) SetDay(day int, pts map[string]decimal.Decimal) {
	col := make(map[string]decimal.Decimal, len(pts))
	for name, p := range pts {
		col[strings.ToLower(strings.TrimSpace(name))] = p
	}
	if _, ok := l.points[day]; !ok {
		l.days = append(l.days, day)
		sort.Ints(l.days)
	}
	l.points[day] = col
}

// Total sums every player's points on a day.
func (l *Ledger) Total(day int) decimal.Decimal {
	sum := decimal.Zero
	for _, p := range l.Players {
		if v, ok := l.points[day][p]; ok {
			sum = sum.Add(v)
		}
	}
	return sum
}

// Load reads a ledger file.
func Load(path string) (*Ledger, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open ledger %s: %w", path, err)
	}
	defer f.Close()
	l, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("read ledger %s: %w", path, err)
	}
	return l, nil
}

// LoadOrCreate loads the ledger at path, or starts one from team when the file
// does not exist yet. The on-disk player list wins over the roster so manual
// corrections survive.
func LoadOrCreate(path string, team model.Team) (*Ledger, bool, error) {
	l, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return FromTeam(team), true, nil
	}
	if err != nil {
		return nil, false, err
	}
	return l, false, nil
}

// Read parses a ledger.
func Read(r io.Reader) (*Ledger, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 || len(records[0]) == 0 {
		return nil, fmt.Errorf("missing header")
	}

	header := records[0]
	l := &Ledger{Manager: strings.TrimSpace(header[0]), points: make(map[int]map[string]decimal.Decimal)}
	cols := make([]int, 0, len(header)-1)
	for _, h := range header[1:] {
		day, ok := tournament.ParseDayLabel(strings.TrimSpace(h))
		if !ok {
			return nil, fmt.Errorf("unexpected column %q", h)
		}
		cols = append(cols, day)
		l.days = append(l.days, day)
		l.points[day] = make(map[string]decimal.Decimal)
	}
	sort.Ints(l.days)

	for i, rec := range records[1:] {
		if len(rec) == 0 {
			continue
		}
		player := strings.ToLower(strings.TrimSpace(rec[0]))
		if player == "" || player == "nan" {
			continue
		}
		l.Players = append(l.Players, player)
		for j, day := range cols {
			if j+1 >= len(rec) {
				break
			}
			cell := strings.TrimSpace(rec[j+1])
			if cell == "" || strings.EqualFold(cell, "nan") {
				continue
			}
			v, err := decimal.NewFromString(cell)
			if err != nil {
				return nil, fmt.Errorf("line %d: %s: %w", i+2, tournament.DayLabel(day), err)
			}
			l.points[day][player] = v
		}
	}
	return l, nil
}

// Save writes the ledger to path.
func (l *Ledger) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create ledger dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create ledger %s: %w", path, err)
	}
	if err := l.Write(f); err != nil {
		f.Close()
		return fmt.Errorf("write ledger %s: %w", path, err)
	}
	return f.Close()
}

// Write emits the ledger CSV with day columns in ascending order.
func (l *Ledger) Write(w io.Writer) error {
	cw := csv.NewWriter(w)
	header := []string{l.Manager}
	for _, d := range l.days {
		header = append(header, tournament.DayLabel(d))
	}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, p := range l.Players {
		rec := []string{p}
		for _, d := range l.days {
			v, ok := l.points[d][p]
			if !ok {
				rec = append(rec, "")
				continue
			}
			rec = append(rec, v.String())
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
