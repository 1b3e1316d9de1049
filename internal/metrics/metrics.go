// Package metrics exports a run's standings as a Prometheus textfile for the
// node_exporter textfile collector.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/pable/go-fantasy-league/internal/model"
)

// Run holds the registry for one pipeline run.
type Run struct {
	registry  *prometheus.Registry
	points    *prometheus.GaugeVec
	rank      *prometheus.GaugeVec
	delta     *prometheus.GaugeVec
	unmatched *prometheus.GaugeVec
	day       *prometheus.GaugeVec
}

// NewRun builds a fresh registry with the league gauges.
func NewRun() *Run {
	r := &Run{
		registry: prometheus.NewRegistry(),
		points: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "fantasy_manager_points",
			Help: "Cumulative fantasy points per manager.",
		}, []string{"group", "manager"}),
		rank: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "fantasy_manager_rank",
			Help: "Current leaderboard position, 1 is first.",
		}, []string{"group", "manager"}),
		delta: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "fantasy_manager_rank_delta",
			Help: "Positions gained since the previous day; negative means dropped.",
		}, []string{"group", "manager"}),
		unmatched: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "fantasy_unmatched_players",
			Help: "Drafted players missing from the day's MVP table.",
		}, []string{"group", "manager"}),
		day: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "fantasy_tournament_day",
			Help: "Tournament day of the last run.",
		}, []string{"group"}),
	}
	r.registry.MustRegister(r.points, r.rank, r.delta, r.unmatched, r.day)
	return r
}

// Observe records the standings and misses for a group.
func (r *Run) Observe(group string, day int, standings model.Standings, scores model.DayScores) {
	r.day.WithLabelValues(group).Set(float64(day))
	for _, s := range standings {
		r.points.WithLabelValues(group, s.Manager).Set(s.Points.InexactFloat64())
		r.rank.WithLabelValues(group, s.Manager).Set(float64(s.Rank))
		r.delta.WithLabelValues(group, s.Manager).Set(float64(s.Delta))
	}
	for _, ms := range scores.Managers {
		r.unmatched.WithLabelValues(group, ms.Manager).Set(float64(len(ms.Misses)))
	}
}

// Gatherer exposes the registry, mainly for tests.
func (r *Run) Gatherer() prometheus.Gatherer { return r.registry }

// WriteTextfile writes the registry to path atomically.
func (r *Run) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
