package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pable/go-fantasy-league/internal/aggregator"
	"github.com/pable/go-fantasy-league/internal/chart"
	"github.com/pable/go-fantasy-league/internal/history"
	"github.com/pable/go-fantasy-league/internal/ingest"
	"github.com/pable/go-fantasy-league/internal/ledger"
	"github.com/pable/go-fantasy-league/internal/match"
	"github.com/pable/go-fantasy-league/internal/metrics"
	"github.com/pable/go-fantasy-league/internal/model"
	"github.com/pable/go-fantasy-league/internal/report"
	"github.com/pable/go-fantasy-league/internal/storage"
	"github.com/pable/go-fantasy-league/internal/tournament"
)

// run command flags.
var (
	runNoCharts bool
	runSite     string
	runArchive  bool
	runQuiet    bool
)

var runCmd = &cobra.Command{
	Use:   "run <group>",
	Short: "Score a group for the day and write every artifact",
	Long: `Loads the day's MVP table (falling back to the most recent earlier one),
scores every manager in <group>/AuctionSummary.csv, updates the per-manager
ledgers and the results history, and writes the leaderboard text, HTML
fragment and charts.

Example:
  fantasy run office --date 2026-02-14
  fantasy run office --site site/index.html --archive`,
	Args: cobra.ExactArgs(1),
	RunE: runRun,
}

func init() {
	runCmd.Flags().BoolVar(&runNoCharts, "no-charts", false, "skip PNG/GIF charts")
	runCmd.Flags().StringVar(&runSite, "site", "", "inject the leaderboard into this HTML page (default: site.page from config)")
	runCmd.Flags().BoolVar(&runArchive, "archive", false, "record the run in the SQLite archive (always on when archive_db is configured)")
	runCmd.Flags().BoolVarP(&runQuiet, "quiet", "q", false, "only print the leaderboard")
}

func runRun(cmd *cobra.Command, args []string) error {
	opts := pipelineOptions{
		Charts:  cfg.Charts && !runNoCharts,
		Site:    runSite,
		Archive: runArchive || cfg.ArchiveDB != "",
		Verbose: !runQuiet,
	}
	if opts.Site == "" {
		opts.Site = cfg.Site.Page
	}
	_, err := runPipeline(cmd.OutOrStdout(), args[0], opts)
	return err
}

type pipelineOptions struct {
	Charts  bool
	Site    string
	Archive bool
	Verbose bool
}

type pipelineResult struct {
	Day       int
	MVPDay    int
	Scores    model.DayScores
	Standings model.Standings
	RunID     string
}

// runPipeline scores one group for the current day and writes its artifacts.
func runPipeline(w io.Writer, group string, opts pipelineOptions) (*pipelineResult, error) {
	layout, err := groupLayout(group)
	if err != nil {
		return nil, err
	}
	day := currentDay()
	log := logger.With(zap.String("group", group), zap.Int("day", day))

	table, mvpDay, err := loadDayMVP(layout, day)
	if err != nil {
		return nil, err
	}
	roster, err := ingest.LoadRoster(layout.RosterFile())
	if err != nil {
		return nil, err
	}
	m, err := newMatcher(table)
	if err != nil {
		return nil, err
	}

	scores := aggregator.Score(day, roster, m, log)
	log.Info("group scored",
		zap.Int("managers", len(scores.Managers)),
		zap.Int("misses", scores.MissCount()))

	for _, ms := range scores.Managers {
		if err := updateLedger(w, layout, day, roster, ms, opts.Verbose); err != nil {
			return nil, err
		}
	}

	series, err := priorHistory(layout, day)
	if err != nil {
		return nil, err
	}
	series.Append(roster.Managers(), scores.Totals())
	if err := series.Save(layout.ResultsFile(day)); err != nil {
		return nil, err
	}
	standings := aggregator.RankDeltas(series.Previous(), series.Latest())
	report.PrintLeaderboard(w, day, standings)

	md, err := report.LeaderboardMarkdown(day, standings)
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(layout.LeaderboardText(), []byte(md+"\n"), 0644); err != nil {
		return nil, fmt.Errorf("write leaderboard: %w", err)
	}

	smd, err := report.StandingsMarkdown(day, standings)
	if err != nil {
		return nil, err
	}
	fragment, err := report.HTMLFragment(smd)
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(layout.LeaderboardHTML(), []byte(fragment), 0644); err != nil {
		return nil, fmt.Errorf("write leaderboard html: %w", err)
	}
	if opts.Site != "" {
		if err := report.InjectFile(opts.Site, cfg.Site.Selector, fragment); err != nil {
			return nil, err
		}
		log.Info("site updated", zap.String("page", opts.Site))
	}

	if opts.Charts {
		if err := writeCharts(layout, day, series, topPlayers(m)); err != nil {
			return nil, err
		}
	}

	res := &pipelineResult{Day: day, MVPDay: mvpDay, Scores: scores, Standings: standings}

	if opts.Archive {
		db, err := openArchive()
		if err != nil {
			return nil, err
		}
		defer db.Close()
		res.RunID, err = db.RecordRun(storage.RunInput{
			Group:      group,
			Tournament: cfg.Tournament,
			MVPDay:     mvpDay,
			Scores:     scores,
			Standings:  standings,
		})
		if err != nil {
			return nil, fmt.Errorf("archive run: %w", err)
		}
		log.Info("run archived", zap.String("run_id", res.RunID))
	}

	if cfg.Metrics != "" {
		mr := metrics.NewRun()
		mr.Observe(group, day, standings, scores)
		if err := mr.WriteTextfile(cfg.Metrics); err != nil {
			return nil, err
		}
	}
	return res, nil
}

// updateLedger writes the day's column to a manager's ledger and prints it
// along with the manager's misses.
func updateLedger(w io.Writer, l tournament.Layout, day int, roster model.Roster, ms model.ManagerScore, verbose bool) error {
	team := roster.Team(ms.Manager)
	if team == nil {
		return fmt.Errorf("manager %q missing from roster", ms.Manager)
	}
	path := l.LedgerFile(ms.Manager)
	led, created, err := ledger.LoadOrCreate(path, *team)
	if err != nil {
		return err
	}
	if created {
		logger.Info("ledger created", zap.String("manager", ms.Manager), zap.String("path", path))
	}
	led.SetDay(day, ms.PointsByPlayer())
	if err := led.Save(path); err != nil {
		return err
	}
	if !verbose {
		return nil
	}
	if err := report.PrintLedger(w, day, led); err != nil {
		return err
	}
	report.PrintManagerDay(w, ms)
	return nil
}

// writeCharts renders the trend PNG, the race GIF and the top players bar chart.
func writeCharts(l tournament.Layout, day int, series *history.Series, top []model.MVPEntry) error {
	title := chartTitle(day)
	if err := writeArtifact(l.LeaderboardPNG(), func(w io.Writer) error {
		return chart.TrendPNG(w, series, title)
	}); err != nil {
		return err
	}
	if err := writeArtifact(l.LeaderboardGIF(), func(w io.Writer) error {
		return chart.TrendGIF(w, series, title)
	}); err != nil {
		return err
	}

	if len(top) == 0 {
		logger.Warn("mvp table is empty, skipping top players chart")
		return nil
	}
	return writeArtifact(l.TopPlayersPNG(), func(w io.Writer) error {
		return chart.TopPlayersPNG(w, top, fmt.Sprintf("Top %d MVP Players (%s)", len(top), tournament.DayLabel(day)))
	})
}

func chartTitle(day int) string {
	return fmt.Sprintf("%s Leaderboard (%s)", strings.ToUpper(cfg.Tournament), tournament.DayLabel(day))
}

// topPlayers ranks the rows the matcher scored with, so a player listed twice
// in the MVP table is charted once.
func topPlayers(m *match.Matcher) []model.MVPEntry {
	return aggregator.TopPlayers(m.Entries(), cfg.TopN)
}
