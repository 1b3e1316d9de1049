// Package chart renders the leaderboard trend chart, the top players bar chart
// and an animated GIF of the leaderboard race.
package chart

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color/palette"
	"image/draw"
	"image/gif"
	"image/png"
	"io"
	"math"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/pable/go-fantasy-league/internal/aggregator"
	"github.com/pable/go-fantasy-league/internal/history"
	"github.com/pable/go-fantasy-league/internal/model"
	"github.com/pable/go-fantasy-league/internal/report"
)

// ErrNoData is returned when there is nothing to plot.
var ErrNoData = errors.New("no data to plot")

const (
	width  = 1000
	height = 560
)

// lineColors follows the matplotlib tab10 cycle.
var lineColors = []drawing.Color{
	drawing.ColorFromHex("1f77b4"),
	drawing.ColorFromHex("ff7f0e"),
	drawing.ColorFromHex("2ca02c"),
	drawing.ColorFromHex("d62728"),
	drawing.ColorFromHex("9467bd"),
	drawing.ColorFromHex("8c564b"),
	drawing.ColorFromHex("e377c2"),
	drawing.ColorFromHex("7f7f7f"),
	drawing.ColorFromHex("bcbd22"),
	drawing.ColorFromHex("17becf"),
}

var barColor = drawing.ColorFromHex("87ceeb")

// LegendLabel formats a legend entry as "manager (points) ▲n".
func LegendLabel(s model.Standing) string {
	label := fmt.Sprintf("%s (%d)", s.Manager, s.Points.IntPart())
	if ind := report.DeltaIndicator(s.Delta); ind != "" {
		label += " " + ind
	}
	return label
}

// standingsAt ranks recorded day i with rank movement against day i-1.
func standingsAt(s *history.Series, i int) model.Standings {
	return aggregator.RankDeltas(s.Standings(i-1), s.Standings(i))
}

// trendChart builds the line chart for the first upto recorded days using
// fixed axis ranges so successive frames line up.
func trendChart(s *history.Series, upto int, title string) chart.Chart {
	standings := standingsAt(s, upto-1)
	colorOf := make(map[string]drawing.Color, len(s.Managers()))
	for i, mgr := range s.Managers() {
		colorOf[mgr] = lineColors[i%len(lineColors)]
	}

	series := make([]chart.Series, 0, len(standings))
	for _, st := range standings {
		vals := s.Values(st.Manager)[:upto]
		xs := make([]float64, len(vals))
		ys := make([]float64, len(vals))
		for i, v := range vals {
			xs[i] = float64(i + 1)
			ys[i] = v.InexactFloat64()
		}
		c := colorOf[st.Manager]
		series = append(series, chart.ContinuousSeries{
			Name:    LegendLabel(st),
			XValues: xs,
			YValues: ys,
			Style: chart.Style{
				StrokeColor: c,
				StrokeWidth: 2,
				DotColor:    c,
				DotWidth:    4,
			},
		})
	}

	graph := chart.Chart{
		Title:  title,
		Width:  width,
		Height: height,
		Background: chart.Style{
			Padding: chart.Box{Top: 50, Left: 20, Right: 20, Bottom: 20},
		},
		XAxis: chart.XAxis{
			Name:           "Day",
			Range:          xRange(s.Days()),
			ValueFormatter: func(v interface{}) string { return fmt.Sprintf("%.0f", v) },
		},
		YAxis: chart.YAxis{
			Name:  "Points",
			Range: yRange(s),
		},
		Series: series,
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}
	return graph
}

func xRange(days int) *chart.ContinuousRange {
	if days <= 1 {
		return &chart.ContinuousRange{Min: 0, Max: 2}
	}
	return &chart.ContinuousRange{Min: 1, Max: float64(days)}
}

func yRange(s *history.Series) *chart.ContinuousRange {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, mgr := range s.Managers() {
		for _, v := range s.Values(mgr) {
			f := v.InexactFloat64()
			lo = math.Min(lo, f)
			hi = math.Max(hi, f)
		}
	}
	if math.IsInf(lo, 0) {
		return &chart.ContinuousRange{Min: 0, Max: 1}
	}
	pad := (hi - lo) * 0.05
	if pad == 0 {
		pad = 1
	}
	return &chart.ContinuousRange{Min: lo - pad, Max: hi + pad}
}

// TrendPNG renders every manager's totals over the recorded days, legend
// ordered by the latest standing.
func TrendPNG(w io.Writer, s *history.Series, title string) error {
	if s.Days() == 0 || len(s.Managers()) == 0 {
		return ErrNoData
	}
	graph := trendChart(s, s.Days(), title)
	if err := graph.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("render trend chart: %w", err)
	}
	return nil
}

// TrendGIF renders one frame per recorded day, the last frame held longer.
func TrendGIF(w io.Writer, s *history.Series, title string) error {
	if s.Days() == 0 || len(s.Managers()) == 0 {
		return ErrNoData
	}
	anim := &gif.GIF{}
	for upto := 1; upto <= s.Days(); upto++ {
		var buf bytes.Buffer
		graph := trendChart(s, upto, title)
		if err := graph.Render(chart.PNG, &buf); err != nil {
			return fmt.Errorf("render frame %d: %w", upto, err)
		}
		img, err := png.Decode(&buf)
		if err != nil {
			return fmt.Errorf("decode frame %d: %w", upto, err)
		}
		frame := image.NewPaletted(img.Bounds(), palette.Plan9)
		draw.FloydSteinberg.Draw(frame, img.Bounds(), img, image.Point{})
		anim.Image = append(anim.Image, frame)
		anim.Delay = append(anim.Delay, 80)
	}
	anim.Delay[len(anim.Delay)-1] = 300
	if err := gif.EncodeAll(w, anim); err != nil {
		return fmt.Errorf("encode gif: %w", err)
	}
	return nil
}

// TopPlayersPNG renders a bar chart of the given MVP entries.
func TopPlayersPNG(w io.Writer, entries []model.MVPEntry, title string) error {
	if len(entries) == 0 {
		return ErrNoData
	}
	bars := make([]chart.Value, len(entries))
	lo, hi := 0.0, 0.0
	for i, e := range entries {
		v := e.Points.InexactFloat64()
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
		bars[i] = chart.Value{
			Label: e.Player,
			Value: v,
			Style: chart.Style{FillColor: barColor, StrokeColor: barColor},
		}
	}
	if hi == lo {
		hi = lo + 1
	}

	graph := chart.BarChart{
		Title:  title,
		Width:  width,
		Height: 600,
		Background: chart.Style{
			Padding: chart.Box{Top: 50, Bottom: 120},
		},
		BarWidth: 60,
		XAxis:    chart.Style{TextRotationDegrees: 45.0},
		YAxis: chart.YAxis{
			Name:  "Total Points",
			Range: &chart.ContinuousRange{Min: lo, Max: hi * 1.05},
		},
		Bars: bars,
	}
	if err := graph.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("render bar chart: %w", err)
	}
	return nil
}
