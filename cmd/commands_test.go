package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/pable/go-fantasy-league/internal/history"
	"github.com/pable/go-fantasy-league/internal/ledger"
	"github.com/pable/go-fantasy-league/internal/storage"
	"github.com/pable/go-fantasy-league/internal/tournament"
)

func archiveTwoDays(t *testing.T) {
	t.Helper()
	for _, d := range []int{1, 2} {
		setDay(d)
		_, err := runPipeline(&bytes.Buffer{}, "office", pipelineOptions{Archive: true})
		require.NoError(t, err)
	}
}

func TestBuildCommentaryData(t *testing.T) {
	setupLeague(t)
	archiveTwoDays(t)

	db, err := storage.Open(dbPath)
	require.NoError(t, err)
	defer db.Close()

	data, err := buildCommentaryData(db, "office", -1)
	require.NoError(t, err)
	require.Equal(t, 2, data.Day)
	require.Equal(t, cfg.Tournament, data.Tournament)
	require.Len(t, data.Standings, 2)
	require.Equal(t, "alice", data.Standings[0].Manager)
	require.Equal(t, "85", data.Standings[0].Points)
	require.Len(t, data.Misses, 1)
	require.Equal(t, "jos buttler", data.Misses[0].Closest)
	require.Len(t, data.RepeatMisses, 1)
	require.Equal(t, "virat kohli", data.SeasonLeaders[0].Player)
	require.Equal(t, "110", data.SeasonLeaders[0].Points)

	first, err := buildCommentaryData(db, "office", 1)
	require.NoError(t, err)
	require.Equal(t, 1, first.Day)

	_, err = buildCommentaryData(db, "office", 9)
	require.ErrorContains(t, err, "no archived run")
	_, err = buildCommentaryData(db, "family", -1)
	require.ErrorContains(t, err, "no archived runs")
}

func TestBuildWorkbook(t *testing.T) {
	root, _ := setupLeague(t)
	archiveTwoDays(t)
	layout := tournament.Layout{DataDir: cfg.DataDir, GroupDir: filepath.Join(root, "office"), Tournament: cfg.Tournament}

	series, err := history.Load(layout.ResultsFile(2))
	require.NoError(t, err)
	alice, err := ledger.Load(layout.LedgerFile("alice"))
	require.NoError(t, err)

	db, err := storage.Open(dbPath)
	require.NoError(t, err)
	season, err := db.SeasonPlayerTotals("office")
	db.Close()
	require.NoError(t, err)

	f, err := buildWorkbook(series, []*ledger.Ledger{alice}, season)
	require.NoError(t, err)
	defer f.Close()

	require.Equal(t, []string{"Leaderboard", "alice", "Season"}, f.GetSheetList())

	rows, err := f.GetRows("Leaderboard")
	require.NoError(t, err)
	require.Equal(t, []string{"Manager", "D1", "D2"}, rows[0])
	require.Equal(t, []string{"alice", "70", "85"}, rows[1])

	ledgerRows, err := f.GetRows("alice")
	require.NoError(t, err)
	require.Equal(t, []string{"Player", "day_1", "day_2"}, ledgerRows[0])
	require.Equal(t, "virat kohli", ledgerRows[1][0])

	v, err := f.GetCellValue("Season", "A2")
	require.NoError(t, err)
	require.Equal(t, "virat kohli", v)

	out := filepath.Join(t.TempDir(), "x.xlsx")
	require.NoError(t, f.SaveAs(out))
	back, err := excelize.OpenFile(out)
	require.NoError(t, err)
	back.Close()
}

func TestSheetName(t *testing.T) {
	require.Equal(t, "a_b_c", sheetName("a/b:c"))
	require.Len(t, []rune(sheetName(strings.Repeat("x", 40))), 31)
}

func TestUniqueSheetName(t *testing.T) {
	used := map[string]bool{"leaderboard": true}
	require.Equal(t, "Leaderboard (2)", uniqueSheetName("Leaderboard", used))
	require.Equal(t, "Leaderboard (3)", uniqueSheetName("LEADERBOARD", used))

	long := strings.Repeat("x", 31)
	require.Equal(t, long, uniqueSheetName(long, used))
	second := uniqueSheetName(long, used)
	require.Equal(t, strings.Repeat("x", 27)+" (2)", second)
	require.Len(t, []rune(second), 31)
}

func TestBuildWorkbookKeepsClashingLedgerSheets(t *testing.T) {
	root, _ := setupLeague(t)
	archiveTwoDays(t)
	layout := tournament.Layout{DataDir: cfg.DataDir, GroupDir: filepath.Join(root, "office"), Tournament: cfg.Tournament}

	series, err := history.Load(layout.ResultsFile(2))
	require.NoError(t, err)
	alice, err := ledger.Load(layout.LedgerFile("alice"))
	require.NoError(t, err)
	clash := *alice
	clash.Manager = "Leaderboard"

	f, err := buildWorkbook(series, []*ledger.Ledger{alice, &clash}, nil)
	require.NoError(t, err)
	defer f.Close()

	require.Equal(t, []string{"Leaderboard", "alice", "Leaderboard (2)"}, f.GetSheetList())
	rows, err := f.GetRows("Leaderboard")
	require.NoError(t, err)
	require.Equal(t, []string{"Manager", "D1", "D2"}, rows[0])
	ledgerRows, err := f.GetRows("Leaderboard (2)")
	require.NoError(t, err)
	require.Equal(t, "Player", ledgerRows[0][0])
}

func TestShellLoop(t *testing.T) {
	root, _ := setupLeague(t)
	archiveTwoDays(t)
	layout := tournament.Layout{DataDir: cfg.DataDir, GroupDir: filepath.Join(root, "office"), Tournament: cfg.Tournament}

	in := strings.NewReader("help\nboard\nplayer virat kohli\nplayer jos butlr\nbogus\nexit\nboard\n")
	var out bytes.Buffer
	require.NoError(t, shellLoop(in, &out, "office", layout))

	s := out.String()
	require.Contains(t, s, "look a player up")
	require.Contains(t, s, "DAY_2")
	require.Contains(t, s, "virat kohli: 60 pts (day_2), owned by alice")
	require.Contains(t, s, `closest match is "jos buttler"`)
	require.Contains(t, s, `unknown command "bogus"`)
	require.Equal(t, 1, strings.Count(s, "DAY_2"))
}

func TestOwnershipOut(t *testing.T) {
	root, _ := setupLeague(t)
	setDay(2)
	layout := tournament.Layout{DataDir: cfg.DataDir, GroupDir: filepath.Join(root, "office"), Tournament: cfg.Tournament}
	t.Cleanup(func() { ownershipOut, ownershipWrite = "", false })

	var stdout bytes.Buffer
	ownershipCmd.SetOut(&stdout)
	t.Cleanup(func() { ownershipCmd.SetOut(nil) })

	ownershipOut = filepath.Join(t.TempDir(), "owners.md")
	require.NoError(t, runOwnership(ownershipCmd, []string{"office"}))
	data, err := os.ReadFile(ownershipOut)
	require.NoError(t, err)
	require.Contains(t, string(data), "virat kohli")
	require.Contains(t, stdout.String(), "virat kohli")
	require.NoFileExists(t, layout.OwnershipFile())

	ownershipOut, ownershipWrite = "", true
	require.NoError(t, runOwnership(ownershipCmd, []string{"office"}))
	require.FileExists(t, layout.OwnershipFile())
}
