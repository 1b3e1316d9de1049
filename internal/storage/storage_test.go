package storage

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/pable/go-fantasy-league/internal/model"
)

func openMemDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("open in-memory db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func sampleRun(day int, alicePts int64) RunInput {
	scores := model.DayScores{
		Day: day,
		Managers: []model.ManagerScore{
			{
				Manager: "alice",
				Total:   decimal.NewFromInt(alicePts),
				Players: []model.PlayerScore{
					{Player: "virat kohli", Points: decimal.NewFromInt(alicePts), Matched: true},
					{Player: "jos butler", Points: decimal.Zero},
				},
				Misses: []model.Miss{{Player: "jos butler", Closest: "jos buttler", Similarity: 97}},
			},
			{
				Manager: "bob",
				Total:   decimal.RequireFromString("42.5"),
				Players: []model.PlayerScore{
					{Player: "rashid khan", Points: decimal.RequireFromString("42.5"), Matched: true},
				},
			},
		},
	}
	return RunInput{
		Group:      "office",
		Tournament: "t20wc",
		MVPDay:     day,
		Scores:     scores,
		Standings:  model.NewStandings(scores.Totals()),
	}
}

func TestRecordAndGetRun(t *testing.T) {
	db := openMemDB(t)

	id, err := db.RecordRun(sampleRun(3, 100))
	if err != nil {
		t.Fatalf("RecordRun: %v", err)
	}
	if id == "" {
		t.Fatal("expected a run id")
	}

	run, err := db.GetRun("office", 3)
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if run == nil {
		t.Fatal("expected run to exist")
	}
	if run.ID != id || run.Managers != 2 || run.Misses != 1 || run.Tournament != "t20wc" {
		t.Errorf("run mismatch: %+v", run)
	}

	missing, err := db.GetRun("office", 9)
	if err != nil {
		t.Fatalf("GetRun missing: %v", err)
	}
	if missing != nil {
		t.Errorf("expected nil for an unarchived day, got %+v", missing)
	}
}

func TestRecordRunReplacesSameDay(t *testing.T) {
	db := openMemDB(t)

	first, _ := db.RecordRun(sampleRun(3, 100))
	second, err := db.RecordRun(sampleRun(3, 10))
	if err != nil {
		t.Fatalf("second RecordRun: %v", err)
	}
	if first == second {
		t.Error("expected a fresh run id")
	}

	runs, err := db.ListRuns("office")
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected 1 run after replace, got %d", len(runs))
	}

	totals, err := db.ManagerTotals(second)
	if err != nil {
		t.Fatalf("ManagerTotals: %v", err)
	}
	if len(totals) != 2 || totals[0].Manager != "bob" || !totals[0].Points.Equal(decimal.RequireFromString("42.5")) {
		t.Errorf("unexpected totals: %+v", totals)
	}

	stale, _ := db.PlayerPoints(first)
	if len(stale) != 0 {
		t.Errorf("expected replaced run rows to be removed, got %d", len(stale))
	}
}

func TestListRunsOrder(t *testing.T) {
	db := openMemDB(t)
	for _, d := range []int{1, 3, 2} {
		if _, err := db.RecordRun(sampleRun(d, 50)); err != nil {
			t.Fatalf("RecordRun day %d: %v", d, err)
		}
	}
	other := sampleRun(1, 50)
	other.Group = "family"
	db.RecordRun(other)

	all, _ := db.ListRuns("")
	if len(all) != 4 {
		t.Fatalf("expected 4 runs, got %d", len(all))
	}
	if all[0].Group != "family" {
		t.Errorf("expected family first, got %s", all[0].Group)
	}

	office, _ := db.ListRuns("office")
	if len(office) != 3 || office[0].Day != 3 || office[2].Day != 1 {
		t.Errorf("expected office days 3,2,1, got %+v", office)
	}
}

func TestPlayerPointsAndMisses(t *testing.T) {
	db := openMemDB(t)
	id, _ := db.RecordRun(sampleRun(2, 77))

	pts, err := db.PlayerPoints(id)
	if err != nil {
		t.Fatalf("PlayerPoints: %v", err)
	}
	if len(pts) != 3 {
		t.Fatalf("expected 3 player rows, got %d", len(pts))
	}
	if pts[0].Player != "virat kohli" || !pts[0].Matched || !pts[0].Points.Equal(decimal.NewFromInt(77)) {
		t.Errorf("unexpected first row: %+v", pts[0])
	}
	if pts[1].Matched {
		t.Errorf("expected jos butler to be unmatched")
	}

	misses, err := db.Misses(id)
	if err != nil {
		t.Fatalf("Misses: %v", err)
	}
	if len(misses) != 1 || misses[0].Closest != "jos buttler" || misses[0].Similarity != 97 {
		t.Errorf("unexpected misses: %+v", misses)
	}
}

func TestSeasonQueries(t *testing.T) {
	db := openMemDB(t)
	db.RecordRun(sampleRun(1, 10))
	db.RecordRun(sampleRun(2, 20))

	season, err := db.SeasonPlayerTotals("office")
	if err != nil {
		t.Fatalf("SeasonPlayerTotals: %v", err)
	}
	if len(season) != 3 {
		t.Fatalf("expected 3 players, got %d", len(season))
	}
	if season[0].Player != "rashid khan" || !season[0].Total.Equal(decimal.NewFromInt(85)) || season[0].Days != 2 {
		t.Errorf("unexpected leader: %+v", season[0])
	}
	if season[1].Player != "virat kohli" || !season[1].Total.Equal(decimal.NewFromInt(30)) {
		t.Errorf("unexpected second: %+v", season[1])
	}
	if season[2].Missed != 2 {
		t.Errorf("expected jos butler missed twice, got %d", season[2].Missed)
	}

	repeat, err := db.RepeatMisses("office", 2)
	if err != nil {
		t.Fatalf("RepeatMisses: %v", err)
	}
	if len(repeat) != 1 || repeat[0].Days != 2 || repeat[0].Closest != "jos buttler" {
		t.Errorf("unexpected repeat misses: %+v", repeat)
	}
}

func TestQueryRaw(t *testing.T) {
	db := openMemDB(t)
	db.RecordRun(sampleRun(4, 5))

	cols, rows, err := db.QueryRaw("SELECT manager, rank FROM manager_totals ORDER BY rank")
	if err != nil {
		t.Fatalf("QueryRaw: %v", err)
	}
	if len(cols) != 2 || cols[0] != "manager" {
		t.Errorf("unexpected columns: %v", cols)
	}
	if len(rows) != 2 || rows[0][0] != "bob" || rows[0][1] != "1" {
		t.Errorf("unexpected rows: %v", rows)
	}

	if _, _, err := db.QueryRaw("SELECT nope FROM nowhere"); err == nil {
		t.Error("expected error for a bad query")
	}
}
