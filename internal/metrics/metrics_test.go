package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/pable/go-fantasy-league/internal/model"
)

func sample() (model.Standings, model.DayScores) {
	standings := model.Standings{
		{Rank: 1, Manager: "alice", Points: decimal.RequireFromString("165.5"), Delta: 1},
		{Rank: 2, Manager: "bob", Points: decimal.NewFromInt(80), Delta: -1},
	}
	scores := model.DayScores{Day: 4, Managers: []model.ManagerScore{
		{Manager: "alice", Misses: []model.Miss{{Player: "x"}, {Player: "y"}}},
		{Manager: "bob"},
	}}
	return standings, scores
}

func TestObserve(t *testing.T) {
	r := NewRun()
	standings, scores := sample()
	r.Observe("office", 4, standings, scores)

	expected := `
# HELP fantasy_manager_rank_delta Positions gained since the previous day; negative means dropped.
# TYPE fantasy_manager_rank_delta gauge
fantasy_manager_rank_delta{group="office",manager="alice"} 1
fantasy_manager_rank_delta{group="office",manager="bob"} -1
# HELP fantasy_unmatched_players Drafted players missing from the day's MVP table.
# TYPE fantasy_unmatched_players gauge
fantasy_unmatched_players{group="office",manager="alice"} 2
fantasy_unmatched_players{group="office",manager="bob"} 0
`
	require.NoError(t, testutil.GatherAndCompare(r.Gatherer(), strings.NewReader(expected),
		"fantasy_manager_rank_delta", "fantasy_unmatched_players"))
	require.Equal(t, 5, testutil.CollectAndCount(r.points)+testutil.CollectAndCount(r.rank)+testutil.CollectAndCount(r.day))
}

func TestWriteTextfile(t *testing.T) {
	r := NewRun()
	standings, scores := sample()
	r.Observe("office", 4, standings, scores)

	path := filepath.Join(t.TempDir(), "fantasy.prom")
	require.NoError(t, r.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)
	require.Contains(t, out, `fantasy_manager_points{group="office",manager="alice"} 165.5`)
	require.Contains(t, out, `fantasy_manager_rank{group="office",manager="bob"} 2`)
	require.Contains(t, out, `fantasy_tournament_day{group="office"} 4`)
}
