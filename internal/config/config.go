// Package config loads league settings from fantasy.yaml with FANTASY_*
// environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// DefaultFile is read from the working directory when --config is not given.
const DefaultFile = "fantasy.yaml"

// Config is the league configuration.
type Config struct {
	Tournament string            `yaml:"tournament" envconfig:"TOURNAMENT" validate:"required"`
	StartDate  string            `yaml:"start_date" envconfig:"START_DATE" validate:"required,datetime=2006-01-02"`
	DataDir    string            `yaml:"data_dir" envconfig:"DATA_DIR" validate:"required"`
	GroupsDir  string            `yaml:"groups_dir" envconfig:"GROUPS_DIR" validate:"required"`
	MatchMode  string            `yaml:"match_mode" envconfig:"MATCH_MODE" validate:"oneof=exact normalized"`
	Aliases    map[string]string `yaml:"aliases" envconfig:"ALIASES"`
	TopN       int               `yaml:"top_n" envconfig:"TOP_N" validate:"gte=1,lte=50"`
	Charts     bool              `yaml:"charts" envconfig:"CHARTS"`
	ArchiveDB  string            `yaml:"archive_db" envconfig:"ARCHIVE_DB"`
	Metrics    string            `yaml:"metrics_file" envconfig:"METRICS_FILE"`

	Site       SiteConfig       `yaml:"site" envconfig:"SITE"`
	Fetch      FetchConfig      `yaml:"fetch" envconfig:"FETCH"`
	Commentary CommentaryConfig `yaml:"commentary" envconfig:"COMMENTARY"`
}

// SiteConfig points at the static page the leaderboard is published into.
type SiteConfig struct {
	Page     string `yaml:"page" envconfig:"PAGE"`
	Selector string `yaml:"selector" envconfig:"SELECTOR" validate:"required"`
}

// FetchConfig describes where the daily MVP table is downloaded from. URL may
// contain {day}, replaced with the day number.
type FetchConfig struct {
	URL   string `yaml:"url" envconfig:"URL"`
	Token string `yaml:"token" envconfig:"TOKEN"`
}

// CommentaryConfig configures the group chat banter generator.
type CommentaryConfig struct {
	Model     string `yaml:"model" envconfig:"MODEL" validate:"required"`
	MaxTokens int    `yaml:"max_tokens" envconfig:"MAX_TOKENS" validate:"gte=64,lte=4096"`
}

// Default returns the settings used when no file or environment overrides them.
func Default() Config {
	return Config{
		Tournament: "t20_wc_2026",
		StartDate:  "2026-02-06",
		DataDir:    "data",
		GroupsDir:  ".",
		MatchMode:  "exact",
		TopN:       10,
		Charts:     true,
		Site:       SiteConfig{Selector: "#leaderboard"},
		Commentary: CommentaryConfig{Model: "claude-haiku-4-5-20251001", MaxTokens: 600},
	}
}

// Start parses StartDate as a local calendar date.
func (c Config) Start() time.Time {
	t, _ := time.ParseInLocation("2006-01-02", c.StartDate, time.Local)
	return t
}

// Load reads path (or DefaultFile when path is empty and it exists), applies
// FANTASY_* environment variables on top, and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
	default:
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	if err := envconfig.Process("FANTASY", &cfg); err != nil {
		return Config{}, fmt.Errorf("load env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

var validate = validator.New()

// Validate checks field constraints.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("invalid config: %s fails %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value())
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
