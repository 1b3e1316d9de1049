package aggregator

import (
	"sort"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/pable/go-fantasy-league/internal/match"
	"github.com/pable/go-fantasy-league/internal/model"
)

// Score computes every manager's points for one day.
//
// Drafted players are looked up with m; a player missing from the MVP table
// scores 0 and is reported as a Miss carrying the closest MVP name.
func Score(day int, roster model.Roster, m *match.Matcher, log *zap.Logger) model.DayScores {
	if log == nil {
		log = zap.NewNop()
	}
	out := model.DayScores{Day: day, Managers: make([]model.ManagerScore, 0, len(roster.Teams))}

	for _, team := range roster.Teams {
		ms := model.ManagerScore{
			Manager: team.Manager,
			Total:   decimal.Zero,
			Players: make([]model.PlayerScore, 0, len(team.Players)),
		}
		for _, player := range team.Players {
			entry, ok := m.Lookup(player)
			if !ok {
				closest, sim := m.Closest(player)
				ms.Players = append(ms.Players, model.PlayerScore{Player: player, Points: decimal.Zero})
				ms.Misses = append(ms.Misses, model.Miss{Player: player, Closest: closest, Similarity: sim})
				log.Warn("player not found in MVP table",
					zap.String("manager", team.Manager),
					zap.String("player", player),
					zap.String("closest", closest),
					zap.Int("similarity", sim))
				continue
			}
			ms.Total = ms.Total.Add(entry.Points)
			ms.Players = append(ms.Players, model.PlayerScore{Player: player, Points: entry.Points, Matched: true})
			log.Debug("player points added",
				zap.String("manager", team.Manager),
				zap.String("player", player),
				zap.String("points", entry.Points.String()),
				zap.String("running_total", ms.Total.String()))
		}
		out.Managers = append(out.Managers, ms)
	}
	return out
}

// Ownership maps every drafted player to their manager and the points they
// earned. With includeUnowned, MVP players nobody drafted are listed with an
// empty manager. Rows are ordered by points descending, then player name.
func Ownership(roster model.Roster, m *match.Matcher, includeUnowned bool) []model.OwnershipRow {
	var rows []model.OwnershipRow
	owned := make(map[string]struct{})

	for _, team := range roster.Teams {
		for _, player := range team.Players {
			row := model.OwnershipRow{Player: player, Manager: team.Manager, Points: decimal.Zero}
			if e, ok := m.Lookup(player); ok {
				row.Points = e.Points
				row.Matched = true
			}
			owned[m.Key(player)] = struct{}{}
			rows = append(rows, row)
		}
	}

	if includeUnowned {
		for _, e := range m.Entries() {
			if _, ok := owned[m.Key(e.Player)]; ok {
				continue
			}
			rows = append(rows, model.OwnershipRow{Player: e.Player, Points: e.Points, Matched: true})
		}
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if c := rows[i].Points.Cmp(rows[j].Points); c != 0 {
			return c > 0
		}
		return rows[i].Player < rows[j].Player
	})
	return rows
}

// TopPlayers returns the n highest-scoring MVP entries, ties broken by name.
func TopPlayers(entries []model.MVPEntry, n int) []model.MVPEntry {
	sorted := make([]model.MVPEntry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		if c := sorted[i].Points.Cmp(sorted[j].Points); c != 0 {
			return c > 0
		}
		return sorted[i].Player < sorted[j].Player
	})
	if n >= 0 && n < len(sorted) {
		sorted = sorted[:n]
	}
	return sorted
}

// RankDeltas fills Delta on cur with prevPosition − curPosition, so a positive
// delta means the manager moved up. Managers absent from prev get 0, and an
// empty prev leaves every delta at 0.
func RankDeltas(prev, cur model.Standings) model.Standings {
	out := make(model.Standings, len(cur))
	copy(out, cur)
	prevPos := prev.Positions()
	for i := range out {
		out[i].Delta = 0
		if p, ok := prevPos[out[i].Manager]; ok {
			out[i].Delta = p - i
		}
	}
	return out
}
