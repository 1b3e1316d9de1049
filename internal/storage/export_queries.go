package storage

import (
	"sort"

	"github.com/shopspring/decimal"
)

// PlayerSeason holds one drafted player's points summed over every archived
// day of a group, used by the workbook export and the commentary prompt.
type PlayerSeason struct {
	Manager string
	Player  string
	Total   decimal.Decimal
	Days    int
	Missed  int
}

// RepeatMiss is a drafted player that went unmatched on more than one day.
type RepeatMiss struct {
	Manager string
	Player  string
	Closest string // most recent suggestion
	Days    int
}

// SeasonPlayerTotals sums archived player points for a group, ordered by
// total descending then player name.
func (db *DB) SeasonPlayerTotals(group string) ([]PlayerSeason, error) {
	rows, err := db.conn.Query(`
		SELECT p.manager, p.player, p.points, p.matched
		FROM player_points p JOIN runs r ON r.id = p.run_id
		WHERE r.group_name = ?
		ORDER BY r.day`, group)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	type key struct{ manager, player string }
	acc := make(map[key]*PlayerSeason)
	for rows.Next() {
		var mgr, player, pts string
		var matched int
		if err := rows.Scan(&mgr, &player, &pts, &matched); err != nil {
			return nil, err
		}
		v, err := decimal.NewFromString(pts)
		if err != nil {
			return nil, err
		}
		k := key{mgr, player}
		ps, ok := acc[k]
		if !ok {
			ps = &PlayerSeason{Manager: mgr, Player: player, Total: decimal.Zero}
			acc[k] = ps
		}
		ps.Total = ps.Total.Add(v)
		ps.Days++
		if matched == 0 {
			ps.Missed++
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]PlayerSeason, 0, len(acc))
	for _, ps := range acc {
		out = append(out, *ps)
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Total.Cmp(out[j].Total); c != 0 {
			return c > 0
		}
		if out[i].Player != out[j].Player {
			return out[i].Player < out[j].Player
		}
		return out[i].Manager < out[j].Manager
	})
	return out, nil
}

// RepeatMisses lists players unmatched on at least minDays archived days of a
// group, most frequent first. These usually need a roster or alias fix.
func (db *DB) RepeatMisses(group string, minDays int) ([]RepeatMiss, error) {
	rows, err := db.conn.Query(`
		SELECT m.manager, m.player, COUNT(1) AS days,
		       (SELECT m2.closest FROM misses m2 JOIN runs r2 ON r2.id = m2.run_id
		        WHERE r2.group_name = ? AND m2.manager = m.manager AND m2.player = m.player
		        ORDER BY r2.day DESC LIMIT 1)
		FROM misses m JOIN runs r ON r.id = m.run_id
		WHERE r.group_name = ?
		GROUP BY m.manager, m.player
		HAVING COUNT(1) >= ?
		ORDER BY days DESC, m.player`, group, group, minDays)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RepeatMiss
	for rows.Next() {
		var m RepeatMiss
		if err := rows.Scan(&m.Manager, &m.Player, &m.Days, &m.Closest); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
