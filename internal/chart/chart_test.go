package chart

import (
	"bytes"
	"errors"
	"image/gif"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/pable/go-fantasy-league/internal/history"
	"github.com/pable/go-fantasy-league/internal/model"
)

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

func sampleSeries(t *testing.T) *history.Series {
	t.Helper()
	s, err := history.Read(strings.NewReader("alice,50,60,90\nbob,10,80,85\ncarol,0,0,0\n"))
	require.NoError(t, err)
	return s
}

func TestLegendLabel(t *testing.T) {
	require.Equal(t, "alice (165) ▲2", LegendLabel(model.Standing{
		Manager: "alice", Points: decimal.RequireFromString("165.9"), Delta: 2,
	}))
	require.Equal(t, "bob (80) ▼1", LegendLabel(model.Standing{
		Manager: "bob", Points: decimal.NewFromInt(80), Delta: -1,
	}))
	require.Equal(t, "carol (0)", LegendLabel(model.Standing{Manager: "carol", Points: decimal.Zero}))
}

func TestTrendPNG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, TrendPNG(&buf, sampleSeries(t), "Leaderboard"))
	require.True(t, bytes.HasPrefix(buf.Bytes(), pngMagic))
}

func TestTrendPNGSingleFlatDay(t *testing.T) {
	s := history.New()
	s.Append([]string{"alice", "bob"}, map[string]decimal.Decimal{
		"alice": decimal.Zero,
		"bob":   decimal.Zero,
	})

	var buf bytes.Buffer
	require.NoError(t, TrendPNG(&buf, s, "Day 1"))
	require.True(t, bytes.HasPrefix(buf.Bytes(), pngMagic))
}

func TestTrendPNGEmpty(t *testing.T) {
	var buf bytes.Buffer
	err := TrendPNG(&buf, history.New(), "empty")
	require.True(t, errors.Is(err, ErrNoData))
	require.Zero(t, buf.Len())
}

func TestTrendGIF(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, TrendGIF(&buf, sampleSeries(t), "Race"))

	anim, err := gif.DecodeAll(&buf)
	require.NoError(t, err)
	require.Len(t, anim.Image, 3)
	require.Equal(t, 300, anim.Delay[2])
}

func TestTopPlayersPNG(t *testing.T) {
	var buf bytes.Buffer
	err := TopPlayersPNG(&buf, []model.MVPEntry{
		{Player: "virat kohli", Points: decimal.NewFromInt(120)},
		{Player: "jos buttler", Points: decimal.RequireFromString("98.5")},
	}, "Top 2")
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(buf.Bytes(), pngMagic))

	require.ErrorIs(t, TopPlayersPNG(&buf, nil, "none"), ErrNoData)
}
