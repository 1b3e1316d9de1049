package report

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/pable/go-fantasy-league/internal/history"
	"github.com/pable/go-fantasy-league/internal/ledger"
	"github.com/pable/go-fantasy-league/internal/model"
)

func init() {
	color.NoColor = true
}

func sampleStandings() model.Standings {
	s := model.NewStandings(map[string]decimal.Decimal{
		"alice": decimal.RequireFromString("165.75"),
		"bob":   decimal.RequireFromString("80"),
	})
	s[0].Delta = 1
	s[1].Delta = -1
	return s
}

func TestDeltaIndicator(t *testing.T) {
	require.Equal(t, "▲2", DeltaIndicator(2))
	require.Equal(t, "▼3", DeltaIndicator(-3))
	require.Equal(t, "", DeltaIndicator(0))
}

func TestLeaderboardMarkdown(t *testing.T) {
	md, err := LeaderboardMarkdown(3, sampleStandings())
	require.NoError(t, err)

	require.True(t, strings.HasPrefix(md, "*DAY_3*\n```\n"), md)
	require.True(t, strings.HasSuffix(md, "```"), md)
	require.Contains(t, md, "Manager")
	require.Contains(t, md, "alice")
	require.Contains(t, md, "165.75")
	require.Less(t, strings.Index(md, "alice"), strings.Index(md, "bob"))
}

func TestStandingsMarkdownToHTML(t *testing.T) {
	md, err := StandingsMarkdown(3, sampleStandings())
	require.NoError(t, err)
	require.Contains(t, md, "▲1")
	require.Contains(t, md, "▼1")

	html, err := HTMLFragment(md)
	require.NoError(t, err)
	require.Contains(t, html, "<h3>")
	require.Contains(t, html, "<table>")
	require.Contains(t, html, "alice</td>")
}

func TestOwnershipMarkdown(t *testing.T) {
	md, err := OwnershipMarkdown(2, []model.OwnershipRow{
		{Player: "x", Manager: "alice", Points: decimal.NewFromInt(5), Matched: true},
		{Player: "y", Points: decimal.NewFromInt(3), Matched: true},
		{Player: "z", Manager: "bob", Points: decimal.Zero},
	})
	require.NoError(t, err)
	require.Contains(t, md, "Ownership — Day 2")
	require.Contains(t, md, "—")
	require.Contains(t, md, "0 (unmatched)")
}

func TestInjectHTML(t *testing.T) {
	page := `<!DOCTYPE html><html><head><title>t</title></head><body><h1>League</h1><div id="leaderboard"><p>old</p></div></body></html>`

	out, err := InjectHTML(page, DefaultSelector, "<p>new</p>")
	require.NoError(t, err)
	require.Contains(t, out, `<div id="leaderboard"><p>new</p></div>`)
	require.NotContains(t, out, "old")
	require.Contains(t, out, "<h1>League</h1>")

	_, err = InjectHTML(page, "#missing", "<p>x</p>")
	require.ErrorContains(t, err, "matched nothing")
}

func TestInjectFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.html")
	require.NoError(t, os.WriteFile(path, []byte(`<html><body><section id="leaderboard"></section></body></html>`), 0o644))

	require.NoError(t, InjectFile(path, DefaultSelector, "<b>hi</b>"))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), `<section id="leaderboard"><b>hi</b></section>`)
}

func TestPrintLeaderboard(t *testing.T) {
	var buf bytes.Buffer
	PrintLeaderboard(&buf, 7, sampleStandings())
	out := buf.String()
	require.Contains(t, out, "DAY_7")
	require.Contains(t, out, "alice")
	require.Contains(t, out, "▲1")
}

func TestPrintManagerDay(t *testing.T) {
	var buf bytes.Buffer
	PrintManagerDay(&buf, model.ManagerScore{
		Manager: "alice",
		Total:   decimal.NewFromInt(10),
		Players: []model.PlayerScore{
			{Player: "x", Points: decimal.NewFromInt(10), Matched: true},
			{Player: "jos butler", Points: decimal.Zero},
		},
		Misses: []model.Miss{{Player: "jos butler", Closest: "jos buttler", Similarity: 97}},
	})
	out := buf.String()
	require.Contains(t, out, `closest match is "jos buttler" (97)`)
	require.NotContains(t, out, "All players have min fantasy points.")

	buf.Reset()
	PrintManagerDay(&buf, model.ManagerScore{Manager: "bob", Total: decimal.Zero})
	require.Contains(t, buf.String(), "All players have min fantasy points.")
}

func TestPrintTrendTable(t *testing.T) {
	s, err := history.Read(strings.NewReader("alice,50,60\nbob,10,80\n"))
	require.NoError(t, err)

	var buf bytes.Buffer
	PrintTrendTable(&buf, s)
	out := buf.String()
	require.Contains(t, out, " D1 ")
	require.Contains(t, out, " D2 ")
	require.NotContains(t, out, "D 2")
	require.Contains(t, out, "▲1")
	require.Contains(t, out, "▼1")

	buf.Reset()
	PrintTrendTable(&buf, history.New())
	require.Contains(t, buf.String(), "no history recorded")
}

func TestPrintLedger(t *testing.T) {
	l := ledger.FromTeam(model.Team{Manager: "alice", Players: []string{"X", "Y"}})
	l.SetDay(4, map[string]decimal.Decimal{"x": decimal.NewFromInt(12)})

	var buf bytes.Buffer
	require.NoError(t, PrintLedger(&buf, 4, l))
	out := buf.String()
	require.True(t, strings.HasPrefix(out, "*DAY_4*\n```\n"), out)
	require.Contains(t, out, "day_4")
	require.Contains(t, out, "12")
}
