// Package history keeps the running per-manager time series of daily totals.
//
// On disk a history is a headerless CSV with one row per manager: the manager
// name followed by one total per recorded day, rows ordered by the most
// recent total descending.
package history

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
)

// Series is a manager × day matrix of totals.
type Series struct {
	managers []string
	values   map[string][]decimal.Decimal
	days     int
}

// New returns an empty series.
func New() *Series {
	return &Series{values: make(map[string][]decimal.Decimal)}
}

// Days returns the number of recorded days.
func (s *Series) Days() int { return s.days }

// Managers returns the managers in the order they were first seen.
func (s *Series) Managers() []string {
	out := make([]string, len(s.managers))
	copy(out, s.managers)
	return out
}

// Values returns a copy of a manager's totals, oldest first.
func (s *Series) Values(manager string) []decimal.Decimal {
	v := s.values[manager]
	out := make([]decimal.Decimal, len(v))
	copy(out, v)
	return out
}

// Append records one more day of totals. Managers new to the series are
// back-filled with zero for earlier days; managers absent from totals carry
// their last value forward.
func (s *Series) Append(order []string, totals map[string]decimal.Decimal) {
	for _, mgr := range order {
		if _, ok := s.values[mgr]; !ok {
			s.addManager(mgr)
		}
	}
	for mgr := range totals {
		if _, ok := s.values[mgr]; !ok {
			s.addManager(mgr)
		}
	}
	for _, mgr := range s.managers {
		v := s.values[mgr]
		next, ok := totals[mgr]
		if !ok {
			next = decimal.Zero
			if len(v) > 0 {
				next = v[len(v)-1]
			}
		}
		s.values[mgr] = append(v, next)
	}
	s.days++
}

func (s *Series) addManager(mgr string) {
	s.managers = append(s.managers, mgr)
	s.values[mgr] = make([]decimal.Decimal, s.days)
	for i := range s.values[mgr] {
		s.values[mgr][i] = decimal.Zero
	}
}

// Column returns every manager's total on recorded day i (0-based).
func (s *Series) Column(i int) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(s.managers))
	if i < 0 || i >= s.days {
		return out
	}
	for _, mgr := range s.managers {
		out[mgr] = s.values[mgr][i]
	}
	return out
}

// Standings ranks managers by their total on recorded day i.
func (s *Series) Standings(i int) model.Standings {
	if i < 0 || i >= s.days {
		return nil
	}
	return model.NewStandings(s.Column(i))
}

// Latest ranks the most recent day. It is nil for an empty series.
func (s *Series) Latest() model.Standings { return s.Standings(s.days - 1) }

// Previous ranks the day before the most recent one, or nil.
func (s *Series) Previous() model.Standings { return s.Standings(s.days - 2) }

// Load reads a results file.
func Load(path string) (*Series, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open results %s: %w", path, err)
	}
	defer f.Close()
	s, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("read results %s: %w", path, err)
	}
	return s, nil
}

// Read parses headerless results CSV. Empty cells read as zero; short rows
// are padded with zero to the widest row.
func Read(r io.Reader) (*Series, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}

	s := New()
	for _, rec := range records {
		if len(rec) > 0 && s.days < len(rec)-1 {
			s.days = len(rec) - 1
		}
	}
	for i, rec := range records {
		if len(rec) == 0 || strings.TrimSpace(rec[0]) == "" {
			continue
		}
		mgr := strings.TrimSpace(rec[0])
		if _, dup := s.values[mgr]; dup {
			return nil, fmt.Errorf("line %d: duplicate manager %q", i+1, mgr)
		}
		vals := make([]decimal.Decimal, s.days)
		for j := range vals {
			vals[j] = decimal.Zero
			if j+1 >= len(rec) {
				continue
			}
			cell := strings.TrimSpace(rec[j+1])
			if cell == "" || strings.EqualFold(cell, "nan") {
				continue
			}
			d, err := decimal.NewFromString(cell)
			if err != nil {
				return nil, fmt.Errorf("line %d: manager %q: %w", i+1, mgr, err)
			}
			vals[j] = d
		}
		s.managers = append(s.managers, mgr)
		s.values[mgr] = vals
	}
	return s, nil
}

// Save writes the series, rows ordered by the latest total descending.
func (s *Series) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create results dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create results %s: %w", path, err)
	}
	if err := s.Write(f); err != nil {
		f.Close()
		return fmt.Errorf("write results %s: %w", path, err)
	}
	return f.Close()
}

// Write emits headerless results CSV.
func (s *Series) Write(w io.Writer) error {
	cw := csv.NewWriter(w)
	for _, st := range s.sortedManagers() {
		rec := make([]string, 0, s.days+1)
		rec = append(rec, st)
		for _, v := range s.values[st] {
			rec = append(rec, v.String())
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func (s *Series) sortedManagers() []string {
	if s.days == 0 {
		out := s.Managers()
		sort.Strings(out)
		return out
	}
	st := s.Latest()
	out := make([]string, len(st))
	for i, x := range st {
		out[i] = x.Manager
	}
	return out
}

// LoadOrNew loads path, returning an empty series when the file does not exist.
func LoadOrNew(path string) (*Series, error) {
	s, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return New(), nil
	}
	return s, err
}
