// Package tournament derives day indices, day labels and on-disk file paths
// for a fantasy tournament.
package tournament

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

// ErrNoDay is returned when no file exists for a day or any earlier day.
var ErrNoDay = errors.New("no file for this or any earlier day")

const dayPrefix = "day_"

// DayIndex returns the whole number of calendar days between start and t.
// The result is never negative.
func DayIndex(start, t time.Time) int {
	s := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	n := int(d.Sub(s).Hours() / 24)
	if n < 0 {
		return -n
	}
	return n
}

// DayLabel formats a day index as "day_<n>".
func DayLabel(n int) string {
	return dayPrefix + strconv.Itoa(n)
}

// ParseDayLabel parses "day_<n>" back to n. ok is false for anything else.
func ParseDayLabel(s string) (int, bool) {
	if !strings.HasPrefix(s, dayPrefix) {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimPrefix(s, dayPrefix))
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// ParseDate resolves a date expression relative to now. It accepts
// YYYY-MM-DD, "today", or natural language such as "yesterday".
func ParseDate(expr string, now time.Time) (time.Time, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" || strings.EqualFold(expr, "today") {
		return now, nil
	}
	if t, err := time.ParseInLocation("2006-01-02", expr, now.Location()); err == nil {
		return t, nil
	}

	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	r, err := w.Parse(expr, now)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", expr, err)
	}
	if r == nil {
		return time.Time{}, fmt.Errorf("parse date %q: unrecognised expression", expr)
	}
	return r.Time, nil
}

// LatestAtOrBefore walks back from day n to 0 and returns the first day for
// which exists reports true.
func LatestAtOrBefore(n int, exists func(day int) bool) (int, error) {
	for d := n; d >= 0; d-- {
		if exists(d) {
			return d, nil
		}
	}
	return 0, ErrNoDay
}

// Layout resolves the file paths used by one group of a tournament.
type Layout struct {
	DataDir    string // shared MVP tables
	GroupDir   string // rosters, ledgers, history and reports for one group
	Tournament string // file name prefix, e.g. "t20_wc_2026"
}

// MVPFile is the MVP table for a day.
func (l Layout) MVPFile(day int) string {
	return filepath.Join(l.DataDir, "mvp_"+DayLabel(day)+".csv")
}

// RosterFile returns the auction summary path. An .xlsx roster takes
// precedence when present.
func (l Layout) RosterFile() string {
	xlsx := filepath.Join(l.GroupDir, "AuctionSummary.xlsx")
	if fileExists(xlsx) {
		return xlsx
	}
	return filepath.Join(l.GroupDir, "AuctionSummary.csv")
}

// LedgerFile is the per-manager ledger.
func (l Layout) LedgerFile(manager string) string {
	return filepath.Join(l.GroupDir, manager+".csv")
}

// ResultsFile is the history snapshot written on a day.
func (l Layout) ResultsFile(day int) string {
	return filepath.Join(l.GroupDir, fmt.Sprintf("%s_results_%s.csv", l.Tournament, DayLabel(day)))
}

// LeaderboardText is the markdown leaderboard message.
func (l Layout) LeaderboardText() string { return l.artifact("leaderboard.txt") }

// LeaderboardPNG is the trend chart.
func (l Layout) LeaderboardPNG() string { return l.artifact("leaderboard.png") }

// LeaderboardGIF is the animated trend chart.
func (l Layout) LeaderboardGIF() string { return l.artifact("leaderboard.gif") }

// LeaderboardHTML is the HTML fragment of the leaderboard.
func (l Layout) LeaderboardHTML() string { return l.artifact("leaderboard.html") }

// TopPlayersPNG is the bar chart of the day's best players.
func (l Layout) TopPlayersPNG() string { return l.artifact("top_players.png") }

// OwnershipFile is the ownership report.
func (l Layout) OwnershipFile() string { return l.artifact("ownership.md") }

// ExportFile is the XLSX workbook of history and ledgers.
func (l Layout) ExportFile() string { return l.artifact("export.xlsx") }

func (l Layout) artifact(suffix string) string {
	return filepath.Join(l.GroupDir, l.Tournament+"_"+suffix)
}

// LatestMVP returns the most recent day at or before n with an MVP table.
func (l Layout) LatestMVP(n int) (int, error) {
	return LatestAtOrBefore(n, func(d int) bool { return fileExists(l.MVPFile(d)) })
}

// LatestResults returns the most recent day at or before n with a results file.
func (l Layout) LatestResults(n int) (int, error) {
	return LatestAtOrBefore(n, func(d int) bool { return fileExists(l.ResultsFile(d)) })
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
