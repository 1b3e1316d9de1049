package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/pable/go-fantasy-league/internal/history"
	"github.com/pable/go-fantasy-league/internal/ingest"
	"github.com/pable/go-fantasy-league/internal/match"
	"github.com/pable/go-fantasy-league/internal/model"
	"github.com/pable/go-fantasy-league/internal/storage"
	"github.com/pable/go-fantasy-league/internal/tournament"
)

// groupLayout resolves the file layout of a group, failing when the group
// directory does not exist.
func groupLayout(group string) (tournament.Layout, error) {
	l := tournament.Layout{
		DataDir:    cfg.DataDir,
		GroupDir:   filepath.Join(cfg.GroupsDir, group),
		Tournament: cfg.Tournament,
	}
	info, err := os.Stat(l.GroupDir)
	if err != nil {
		return l, fmt.Errorf("group %q: %w", group, err)
	}
	if !info.IsDir() {
		return l, fmt.Errorf("group %q: %s is not a directory", group, l.GroupDir)
	}
	return l, nil
}

// currentDay is the tournament day index of the --date the command runs for.
func currentDay() int {
	return tournament.DayIndex(cfg.Start(), today)
}

// loadDayMVP loads the MVP table for day, falling back to the most recent
// earlier table. The returned day is the one actually loaded.
func loadDayMVP(l tournament.Layout, day int) (model.MVPTable, int, error) {
	mvpDay, err := l.LatestMVP(day)
	if err != nil {
		return model.MVPTable{}, 0, fmt.Errorf("mvp table for %s: %w", tournament.DayLabel(day), err)
	}
	if mvpDay != day {
		logger.Warn("mvp table missing, using most recent earlier table",
			zap.Int("day", day),
			zap.Int("mvp_day", mvpDay),
			zap.String("path", l.MVPFile(mvpDay)))
	}
	t, err := ingest.LoadMVP(l.MVPFile(mvpDay), mvpDay)
	if err != nil {
		return model.MVPTable{}, 0, err
	}
	logger.Debug("mvp table loaded", zap.Int("day", mvpDay), zap.Int("players", len(t.Entries)))
	return t, mvpDay, nil
}

func newMatcher(t model.MVPTable) (*match.Matcher, error) {
	mode, err := match.ParseMode(cfg.MatchMode)
	if err != nil {
		return nil, err
	}
	return match.New(t, mode, cfg.Aliases), nil
}

// priorHistory loads the most recent results file strictly before day, or an
// empty series when there is none.
func priorHistory(l tournament.Layout, day int) (*history.Series, error) {
	prev, err := l.LatestResults(day - 1)
	if errors.Is(err, tournament.ErrNoDay) {
		return history.New(), nil
	}
	if err != nil {
		return nil, err
	}
	logger.Debug("history loaded", zap.String("path", l.ResultsFile(prev)))
	return history.Load(l.ResultsFile(prev))
}

// latestHistory loads the most recent results file at or before day.
func latestHistory(l tournament.Layout, day int) (*history.Series, int, error) {
	d, err := l.LatestResults(day)
	if err != nil {
		return nil, 0, fmt.Errorf("results for %s: %w", tournament.DayLabel(day), err)
	}
	s, err := history.Load(l.ResultsFile(d))
	if err != nil {
		return nil, 0, err
	}
	return s, d, nil
}

func openArchive() (*storage.DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := storage.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	return db, nil
}

// writeArtifact creates path and lets render fill it.
func writeArtifact(path string, render func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := render(f); err != nil {
		f.Close()
		os.Remove(path)
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	logger.Debug("artifact written", zap.String("path", path))
	return nil
}
