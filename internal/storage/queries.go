package storage

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pable/go-fantasy-league/internal/model"
)

// Run is one archived pipeline execution for a group and day.
type Run struct {
	ID         string
	Group      string
	Tournament string
	Day        int
	MVPDay     int // day of the MVP file actually scored; differs from Day after a fallback
	RecordedAt time.Time
	Managers   int
	Misses     int
}

// RunInput is everything RecordRun stores for one run.
type RunInput struct {
	Group      string
	Tournament string
	MVPDay     int
	Scores     model.DayScores
	Standings  model.Standings
}

// PlayerPoint is one drafted player's archived score.
type PlayerPoint struct {
	Manager string
	Player  string
	Points  decimal.Decimal
	Matched bool
}

// ArchivedMiss is an archived unmatched player.
type ArchivedMiss struct {
	Manager    string
	Player     string
	Closest    string
	Similarity int
}

// RecordRun stores a run, replacing any earlier run for the same group and
// day. It returns the new run id.
func (db *DB) RecordRun(in RunInput) (string, error) {
	tx, err := db.conn.Begin()
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	var oldID string
	err = tx.QueryRow("SELECT id FROM runs WHERE group_name = ? AND day = ?", in.Group, in.Scores.Day).Scan(&oldID)
	switch {
	case err == sql.ErrNoRows:
	case err != nil:
		return "", fmt.Errorf("look up previous run: %w", err)
	default:
		for _, table := range []string{"misses", "player_points", "manager_totals"} {
			if _, err := tx.Exec("DELETE FROM "+table+" WHERE run_id = ?", oldID); err != nil {
				return "", fmt.Errorf("clear %s: %w", table, err)
			}
		}
		if _, err := tx.Exec("DELETE FROM runs WHERE id = ?", oldID); err != nil {
			return "", fmt.Errorf("clear run: %w", err)
		}
	}

	id := uuid.NewString()
	if _, err := tx.Exec(`
		INSERT INTO runs(id, group_name, tournament, day, mvp_day, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		id, in.Group, in.Tournament, in.Scores.Day, in.MVPDay, time.Now().UTC().Format(time.RFC3339),
	); err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}

	totStmt, err := tx.Prepare(`INSERT INTO manager_totals(run_id, manager, points, rank, delta) VALUES (?,?,?,?,?)`)
	if err != nil {
		return "", err
	}
	defer totStmt.Close()
	for _, s := range in.Standings {
		if _, err := totStmt.Exec(id, s.Manager, s.Points.String(), s.Rank, s.Delta); err != nil {
			return "", fmt.Errorf("insert manager_totals for %s: %w", s.Manager, err)
		}
	}

	ptStmt, err := tx.Prepare(`INSERT OR REPLACE INTO player_points(run_id, manager, player, points, matched) VALUES (?,?,?,?,?)`)
	if err != nil {
		return "", err
	}
	defer ptStmt.Close()
	missStmt, err := tx.Prepare(`INSERT OR REPLACE INTO misses(run_id, manager, player, closest, similarity) VALUES (?,?,?,?,?)`)
	if err != nil {
		return "", err
	}
	defer missStmt.Close()

	for _, ms := range in.Scores.Managers {
		for _, p := range ms.Players {
			if _, err := ptStmt.Exec(id, ms.Manager, p.Player, p.Points.String(), boolInt(p.Matched)); err != nil {
				return "", fmt.Errorf("insert player_points for %s: %w", p.Player, err)
			}
		}
		for _, m := range ms.Misses {
			if _, err := missStmt.Exec(id, ms.Manager, m.Player, m.Closest, m.Similarity); err != nil {
				return "", fmt.Errorf("insert misses for %s: %w", m.Player, err)
			}
		}
	}
	if err := tx.Commit(); err != nil {
		return "", err
	}
	return id, nil
}

const runColumns = `
	SELECT r.id, r.group_name, r.tournament, r.day, r.mvp_day, r.recorded_at,
	       (SELECT COUNT(1) FROM manager_totals t WHERE t.run_id = r.id),
	       (SELECT COUNT(1) FROM misses m WHERE m.run_id = r.id)
	FROM runs r`

func scanRun(sc interface{ Scan(...any) error }) (Run, error) {
	var r Run
	var recorded string
	if err := sc.Scan(&r.ID, &r.Group, &r.Tournament, &r.Day, &r.MVPDay, &recorded, &r.Managers, &r.Misses); err != nil {
		return r, err
	}
	t, err := time.Parse(time.RFC3339, recorded)
	if err != nil {
		return r, fmt.Errorf("parse recorded_at %q: %w", recorded, err)
	}
	r.RecordedAt = t
	return r, nil
}

// ListRuns returns archived runs ordered by group then day descending. An
// empty group lists every group.
func (db *DB) ListRuns(group string) ([]Run, error) {
	q := runColumns
	var args []any
	if group != "" {
		q += " WHERE r.group_name = ?"
		args = append(args, group)
	}
	q += " ORDER BY r.group_name, r.day DESC"

	rows, err := db.conn.Query(q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// GetRun returns the run for a group and day, or nil if none was archived.
func (db *DB) GetRun(group string, day int) (*Run, error) {
	r, err := scanRun(db.conn.QueryRow(runColumns+" WHERE r.group_name = ? AND r.day = ?", group, day))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// ManagerTotals returns a run's standings ordered by rank.
func (db *DB) ManagerTotals(runID string) (model.Standings, error) {
	rows, err := db.conn.Query(`
		SELECT manager, points, rank, delta FROM manager_totals
		WHERE run_id = ? ORDER BY rank`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out model.Standings
	for rows.Next() {
		var s model.Standing
		var pts string
		if err := rows.Scan(&s.Manager, &pts, &s.Rank, &s.Delta); err != nil {
			return nil, err
		}
		if s.Points, err = decimal.NewFromString(pts); err != nil {
			return nil, fmt.Errorf("parse points for %s: %w", s.Manager, err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// PlayerPoints returns a run's per-player scores ordered by manager then points descending.
func (db *DB) PlayerPoints(runID string) ([]PlayerPoint, error) {
	rows, err := db.conn.Query(`
		SELECT manager, player, points, matched FROM player_points
		WHERE run_id = ? ORDER BY manager, CAST(points AS REAL) DESC, player`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []PlayerPoint
	for rows.Next() {
		var p PlayerPoint
		var pts string
		var matched int
		if err := rows.Scan(&p.Manager, &p.Player, &pts, &matched); err != nil {
			return nil, err
		}
		if p.Points, err = decimal.NewFromString(pts); err != nil {
			return nil, fmt.Errorf("parse points for %s: %w", p.Player, err)
		}
		p.Matched = matched != 0
		out = append(out, p)
	}
	return out, rows.Err()
}

// Misses returns a run's unmatched players.
func (db *DB) Misses(runID string) ([]ArchivedMiss, error) {
	rows, err := db.conn.Query(`
		SELECT manager, player, closest, similarity FROM misses
		WHERE run_id = ? ORDER BY manager, player`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ArchivedMiss
	for rows.Next() {
		var m ArchivedMiss
		if err := rows.Scan(&m.Manager, &m.Player, &m.Closest, &m.Similarity); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// QueryRaw runs an arbitrary query and returns its columns and stringified rows.
func (db *DB) QueryRaw(query string) ([]string, [][]string, error) {
	rows, err := db.conn.Query(query)
	if err != nil {
		return nil, nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, nil, err
	}
	var out [][]string
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, nil, err
		}
		row := make([]string, len(cols))
		for i, v := range vals {
			switch x := v.(type) {
			case nil:
				row[i] = "NULL"
			case []byte:
				row[i] = string(x)
			default:
				row[i] = fmt.Sprint(x)
			}
		}
		out = append(out, row)
	}
	return cols, out, rows.Err()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
