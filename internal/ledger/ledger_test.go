package ledger

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/pable/go-fantasy-league/internal/model"
)

func pts(pairs ...string) map[string]decimal.Decimal {
	out := map[string]decimal.Decimal{}
	for i := 0; i < len(pairs); i += 2 {
		out[pairs[i]] = decimal.RequireFromString(pairs[i+1])
	}
	return out
}

func TestFromTeam_LowercasesPlayers(t *testing.T) {
	l := FromTeam(model.Team{Manager: "Alice", Players: []string{"Virat Kohli ", "Jos Buttler"}})
	require.Equal(t, "Alice", l.Manager)
	require.Equal(t, []string{"virat kohli", "jos buttler"}, l.Players)
	require.Empty(t, l.Days())
}

func TestSetDay_SortsColumnsAndOverwrites(t *testing.T) {
	l := FromTeam(model.Team{Manager: "alice", Players: []string{"a", "b"}})
	l.SetDay(10, pts("a", "5", "b", "0"))
	l.SetDay(2, pts("A", "1"))
	l.SetDay(10, pts("a", "6", "b", "1.5"))

	require.Equal(t, []int{2, 10}, l.Days())
	v, ok := l.Points(10, "a")
	require.True(t, ok)
	require.Equal(t, "6", v.String())
	_, ok = l.Points(2, "b")
	require.False(t, ok, "b has no entry on day 2")
	require.Equal(t, "7.5", l.Total(10).String())

	var buf bytes.Buffer
	require.NoError(t, l.Write(&buf))
	require.Equal(t, "alice,day_2,day_10\na,1,6\nb,,1.5\n", buf.String())
}

func TestRead_SkipsNanRowsAndRejectsUnknownColumns(t *testing.T) {
	l, err := Read(strings.NewReader("bob,day_1\nx,3\nnan,\n,\ny,\n"))
	require.NoError(t, err)
	require.Equal(t, []string{"x", "y"}, l.Players)
	v, ok := l.Points(1, "x")
	require.True(t, ok)
	require.Equal(t, "3", v.String())

	_, err = Read(strings.NewReader("bob,notes\nx,hi\n"))
	require.ErrorContains(t, err, "unexpected column")

	_, err = Read(strings.NewReader(""))
	require.Error(t, err)
}

func TestLoadOrCreate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "g", "alice.csv")
	team := model.Team{Manager: "alice", Players: []string{"A", "B"}}

	l, created, err := LoadOrCreate(path, team)
	require.NoError(t, err)
	require.True(t, created)
	l.SetDay(1, pts("a", "1", "b", "2"))
	require.NoError(t, l.Save(path))

	// A roster change does not override the on-disk player list.
	team.Players = []string{"A", "B", "C"}
	l2, created, err := LoadOrCreate(path, team)
	require.NoError(t, err)
	require.False(t, created)
	require.Equal(t, []string{"a", "b"}, l2.Players)
	require.Equal(t, "3", l2.Total(1).String())
}
