package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/pable/go-fantasy-league/internal/config"
	"github.com/pable/go-fantasy-league/internal/tournament"
)

var (
	configPath string
	dataDir    string
	groupsDir  string
	dateExpr   string
	dbPath     string
	verbose    bool

	logger *zap.Logger
	cfg    config.Config
	// today is the date the command runs for, after --date is resolved.
	today time.Time
)

var rootCmd = &cobra.Command{
	Use:   "fantasy",
	Short: "Fantasy cricket leaderboard tool",
	Long: `Score drafted fantasy cricket teams against the day's MVP points table,
keep per-manager ledgers and a day-by-day results history, and publish the
leaderboard as markdown, charts and an HTML fragment.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zcfg := zap.NewProductionConfig()
		if verbose {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zcfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("data-dir") {
			cfg.DataDir = dataDir
		}
		if cmd.Flags().Changed("groups-dir") {
			cfg.GroupsDir = groupsDir
		}
		if !cmd.Flags().Changed("db") {
			dbPath = cfg.ArchiveDB
			if dbPath == "" {
				dbPath = filepath.Join(mustUserHome(), ".fantasy", "archive.db")
			}
		}

		today, err = tournament.ParseDate(dateExpr, time.Now())
		if err != nil {
			return err
		}
		logger.Debug("configuration loaded",
			zap.String("tournament", cfg.Tournament),
			zap.String("start_date", cfg.StartDate),
			zap.String("data_dir", cfg.DataDir),
			zap.Time("date", today))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file (default ./fantasy.yaml if present)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "directory holding mvp_day_<n>.csv tables")
	rootCmd.PersistentFlags().StringVar(&groupsDir, "groups-dir", "", "directory holding one sub-directory per group")
	rootCmd.PersistentFlags().StringVar(&dateExpr, "date", "", `run as of this date (YYYY-MM-DD or e.g. "yesterday")`)
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "path to SQLite archive (default ~/.fantasy/archive.db)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(leaderboardCmd)
	rootCmd.AddCommand(trendCmd)
	rootCmd.AddCommand(ownershipCmd)
	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(publishCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(sqlCmd)
	rootCmd.AddCommand(dropCmd)
	rootCmd.AddCommand(commentaryCmd)
	rootCmd.AddCommand(shellCmd)
}

func mustUserHome() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
