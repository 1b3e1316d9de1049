package tournament

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDayIndex(t *testing.T) {
	start := time.Date(2026, 2, 6, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		t    time.Time
		want int
	}{
		{name: "start day", t: start, want: 0},
		{name: "late same day", t: start.Add(23 * time.Hour), want: 0},
		{name: "next day", t: time.Date(2026, 2, 7, 1, 0, 0, 0, time.UTC), want: 1},
		{name: "across month", t: time.Date(2026, 3, 8, 12, 0, 0, 0, time.UTC), want: 30},
		{name: "before start is absolute", t: time.Date(2026, 2, 3, 0, 0, 0, 0, time.UTC), want: 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, DayIndex(start, tt.t))
		})
	}
}

func TestDayLabelRoundTrip(t *testing.T) {
	require.Equal(t, "day_12", DayLabel(12))

	n, ok := ParseDayLabel("day_12")
	require.True(t, ok)
	require.Equal(t, 12, n)

	for _, bad := range []string{"Player", "day_", "day_x", "12", "day_-1"} {
		_, ok := ParseDayLabel(bad)
		require.False(t, ok, bad)
	}
}

func TestParseDate(t *testing.T) {
	now := time.Date(2026, 2, 20, 15, 0, 0, 0, time.UTC)

	got, err := ParseDate("", now)
	require.NoError(t, err)
	require.Equal(t, now, got)

	got, err = ParseDate("2026-02-10", now)
	require.NoError(t, err)
	require.Equal(t, 10, got.Day())

	got, err = ParseDate("yesterday", now)
	require.NoError(t, err)
	require.Equal(t, 19, got.Day())

	_, err = ParseDate("zzzz", now)
	require.Error(t, err)
}

func TestLatestAtOrBefore(t *testing.T) {
	have := map[int]bool{2: true, 5: true}
	exists := func(d int) bool { return have[d] }

	d, err := LatestAtOrBefore(7, exists)
	require.NoError(t, err)
	require.Equal(t, 5, d)

	d, err = LatestAtOrBefore(4, exists)
	require.NoError(t, err)
	require.Equal(t, 2, d)

	_, err = LatestAtOrBefore(1, exists)
	require.True(t, errors.Is(err, ErrNoDay))
}

func TestLayoutPaths(t *testing.T) {
	dir := t.TempDir()
	l := Layout{DataDir: filepath.Join(dir, "data"), GroupDir: filepath.Join(dir, "g1"), Tournament: "t20"}

	require.Equal(t, filepath.Join(dir, "data", "mvp_day_3.csv"), l.MVPFile(3))
	require.Equal(t, filepath.Join(dir, "g1", "t20_results_day_3.csv"), l.ResultsFile(3))
	require.Equal(t, filepath.Join(dir, "g1", "alice.csv"), l.LedgerFile("alice"))
	require.Equal(t, filepath.Join(dir, "g1", "t20_leaderboard.txt"), l.LeaderboardText())
	require.Equal(t, filepath.Join(dir, "g1", "t20_export.xlsx"), l.ExportFile())
	require.Equal(t, filepath.Join(dir, "g1", "AuctionSummary.csv"), l.RosterFile())

	require.NoError(t, os.MkdirAll(l.GroupDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(l.GroupDir, "AuctionSummary.xlsx"), []byte("x"), 0o644))
	require.Equal(t, filepath.Join(dir, "g1", "AuctionSummary.xlsx"), l.RosterFile())
}

func TestLayoutLatestMVP(t *testing.T) {
	dir := t.TempDir()
	l := Layout{DataDir: dir, GroupDir: dir, Tournament: "t20"}
	require.NoError(t, os.WriteFile(l.MVPFile(4), []byte("Player,Pts\n"), 0o644))

	d, err := l.LatestMVP(9)
	require.NoError(t, err)
	require.Equal(t, 4, d)

	_, err = l.LatestResults(9)
	require.ErrorIs(t, err, ErrNoDay)
}
