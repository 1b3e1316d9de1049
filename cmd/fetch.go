package cmd

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pable/go-fantasy-league/internal/ingest"
	"github.com/pable/go-fantasy-league/internal/source"
	"github.com/pable/go-fantasy-league/internal/tournament"
)

// fetch command flags.
var (
	// fetchToken overrides fetch.token from the config.
	fetchToken string
	// fetchForce overwrites an existing table for the day.
	fetchForce bool
)

var fetchCmd = &cobra.Command{
	Use:   "fetch [url]",
	Short: "Download the day's MVP table",
	Long: `Downloads an MVP points table and stores it as data/mvp_day_<n>.csv.

The URL defaults to fetch.url from the config, where {day} is replaced with
the day number. CSV and HTML pages are accepted; .gz, .zst and .bz2 bodies
are decompressed.

Example:
  fantasy fetch https://stats.example.com/t20/mvp
  fantasy fetch --date yesterday`,
	Args: cobra.MaximumNArgs(1),
	RunE: runFetch,
}

func init() {
	fetchCmd.Flags().StringVar(&fetchToken, "token", "", "bearer token (default: fetch.token from config)")
	fetchCmd.Flags().BoolVarP(&fetchForce, "force", "f", false, "overwrite an existing table for the day")
}

func runFetch(cmd *cobra.Command, args []string) error {
	day := currentDay()
	url := cfg.Fetch.URL
	if len(args) == 1 {
		url = args[0]
	}
	if url == "" {
		return fmt.Errorf("no url: pass one or set fetch.url in the config")
	}
	url = strings.ReplaceAll(url, "{day}", strconv.Itoa(day))

	layout := tournament.Layout{DataDir: cfg.DataDir, Tournament: cfg.Tournament}
	out := layout.MVPFile(day)
	if _, err := os.Stat(out); err == nil && !fetchForce {
		return fmt.Errorf("%s already exists, use --force to overwrite", out)
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}

	token := fetchToken
	if token == "" {
		token = cfg.Fetch.Token
	}
	table, err := source.NewClient(token, logger).Fetch(cmd.Context(), url)
	if err != nil {
		return err
	}
	if len(table.Entries) == 0 {
		return fmt.Errorf("%s: table has no players", url)
	}
	data, err := ingest.EncodeMVP(table)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	if err := os.WriteFile(out, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}
	logger.Info("mvp table saved",
		zap.Int("day", day),
		zap.Int("players", len(table.Entries)),
		zap.String("path", out))
	fmt.Fprintf(cmd.OutOrStdout(), "Saved %d players to %s\n", len(table.Entries), out)
	return nil
}
