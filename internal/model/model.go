package model

import (
	"sort"

	"github.com/shopspring/decimal"
)

// ---- Inputs ----

// MVPEntry is one row of a day's MVP table.
type MVPEntry struct {
	Player string
	Points decimal.Decimal
}

// MVPTable is the per-day player point table in file order.
type MVPTable struct {
	Day     int
	Entries []MVPEntry
}

// Names returns the player names in file order.
func (t MVPTable) Names() []string {
	names := make([]string, len(t.Entries))
	for i, e := range t.Entries {
		names[i] = e.Player
	}
	return names
}

// Team is one manager's drafted players, in roster order.
type Team struct {
	Manager string
	Players []string
}

// Roster is the auction summary: every manager's team in header order.
type Roster struct {
	Teams []Team
}

// Managers returns the manager names in roster order.
func (r Roster) Managers() []string {
	out := make([]string, len(r.Teams))
	for i, t := range r.Teams {
		out[i] = t.Manager
	}
	return out
}

// Team returns the team for a manager, or nil when the manager is unknown.
func (r Roster) Team(manager string) *Team {
	for i := range r.Teams {
		if r.Teams[i].Manager == manager {
			return &r.Teams[i]
		}
	}
	return nil
}

// ---- Scoring output ----

// PlayerScore is the points attributed to one drafted player on one day.
type PlayerScore struct {
	Player  string
	Points  decimal.Decimal
	Matched bool
}

// Miss is a drafted player that was not found in the MVP table.
// Closest is a diagnostic suggestion only; it never contributes points.
type Miss struct {
	Player     string
	Closest    string
	Similarity int // 0–100
}

// ManagerScore is one manager's result for a day.
type ManagerScore struct {
	Manager string
	Total   decimal.Decimal
	Players []PlayerScore
	Misses  []Miss
}

// AllMatched reports whether every drafted player was found in the MVP table.
func (m ManagerScore) AllMatched() bool { return len(m.Misses) == 0 }

// PointsByPlayer returns the day's points keyed by player name.
func (m ManagerScore) PointsByPlayer() map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(m.Players))
	for _, p := range m.Players {
		out[p.Player] = p.Points
	}
	return out
}

// DayScores is the scoring result for every manager on one day.
type DayScores struct {
	Day      int
	Managers []ManagerScore
}

// Totals returns each manager's total keyed by manager name.
func (d DayScores) Totals() map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(d.Managers))
	for _, m := range d.Managers {
		out[m.Manager] = m.Total
	}
	return out
}

// MissCount returns the number of unmatched drafted players across all managers.
func (d DayScores) MissCount() int {
	n := 0
	for _, m := range d.Managers {
		n += len(m.Misses)
	}
	return n
}

// ---- Standings ----

// Standing is one manager's position in a leaderboard.
type Standing struct {
	Rank    int // 1-based
	Manager string
	Points  decimal.Decimal
	Delta   int // positive = moved up since the previous day
}

// Standings is a leaderboard ordered from first to last.
type Standings []Standing

// Positions returns each manager's zero-based position.
func (s Standings) Positions() map[string]int {
	out := make(map[string]int, len(s))
	for i, st := range s {
		out[st.Manager] = i
	}
	return out
}

// NewStandings ranks totals by points descending, breaking ties by manager name.
func NewStandings(totals map[string]decimal.Decimal) Standings {
	out := make(Standings, 0, len(totals))
	for mgr, pts := range totals {
		out = append(out, Standing{Manager: mgr, Points: pts})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if c := out[i].Points.Cmp(out[j].Points); c != 0 {
			return c > 0
		}
		return out[i].Manager < out[j].Manager
	})
	for i := range out {
		out[i].Rank = i + 1
	}
	return out
}

// OwnershipRow maps a player to the manager that drafted them.
// Manager is empty for MVP players nobody drafted.
type OwnershipRow struct {
	Player  string
	Manager string
	Points  decimal.Decimal
	Matched bool
}
