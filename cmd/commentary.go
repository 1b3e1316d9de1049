package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/pable/go-fantasy-league/internal/report"
	"github.com/pable/go-fantasy-league/internal/storage"
)

const commentarySystemPrompt = `You write the daily banter message for a fantasy cricket league group chat.
You are given the archived standings for one day as JSON.

Rules:
- Use ONLY the data provided. Never invent scores, players or results.
- Mention the leader, the biggest climber and the biggest faller by name with their numbers.
- If a manager has unmatched players, remind them to check the spelling and quote the closest match.
- Keep it under 120 words, playful, no hashtags.
- Plain text only; the chat does not render markdown.`

var (
	commentaryModel  string
	commentaryAPIKey string
	commentaryDay    int
)

var commentaryCmd = &cobra.Command{
	Use:   "commentary <group>",
	Short: "Write group chat banter from an archived run (requires ANTHROPIC_API_KEY)",
	Args:  cobra.ExactArgs(1),
	RunE:  runCommentary,
}

func init() {
	commentaryCmd.Flags().StringVar(&commentaryModel, "model", "", "Anthropic model to use (default: commentary.model from config)")
	commentaryCmd.Flags().StringVar(&commentaryAPIKey, "api-key", "", "Anthropic API key (falls back to $ANTHROPIC_API_KEY)")
	commentaryCmd.Flags().IntVar(&commentaryDay, "day", -1, "archived day to comment on (default: latest)")
}

type commentaryStanding struct {
	Rank      int    `json:"rank"`
	Manager   string `json:"manager"`
	Points    string `json:"points"`
	RankDelta int    `json:"rank_delta"`
	Move      string `json:"move,omitempty"`
}

type commentaryMiss struct {
	Manager string `json:"manager"`
	Player  string `json:"player"`
	Closest string `json:"closest_match,omitempty"`
}

type commentarySeason struct {
	Player  string `json:"player"`
	Manager string `json:"manager"`
	Points  string `json:"points"`
}

type commentaryData struct {
	Tournament    string               `json:"tournament"`
	Group         string               `json:"group"`
	Day           int                  `json:"day"`
	Standings     []commentaryStanding `json:"standings"`
	Misses        []commentaryMiss     `json:"unmatched_players,omitempty"`
	SeasonLeaders []commentarySeason   `json:"season_top_players,omitempty"`
	RepeatMisses  []commentaryMiss     `json:"repeatedly_unmatched,omitempty"`
}

func runCommentary(cmd *cobra.Command, args []string) error {
	group := args[0]
	db, err := openArchive()
	if err != nil {
		return err
	}
	defer db.Close()

	data, err := buildCommentaryData(db, group, commentaryDay)
	if err != nil {
		return err
	}
	payload, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("encode data: %w", err)
	}

	model := commentaryModel
	if model == "" {
		model = cfg.Commentary.Model
	}
	return callAnthropic(cmd.Context(), cmd.OutOrStdout(), commentaryAPIKey, model, string(payload))
}

// buildCommentaryData gathers one archived run plus season context. day < 0
// selects the latest archived day.
func buildCommentaryData(db *storage.DB, group string, day int) (*commentaryData, error) {
	var run *storage.Run
	if day < 0 {
		runs, err := db.ListRuns(group)
		if err != nil {
			return nil, fmt.Errorf("list runs: %w", err)
		}
		if len(runs) == 0 {
			return nil, fmt.Errorf("no archived runs for %q: run 'fantasy run %s --archive' first", group, group)
		}
		run = &runs[0]
	} else {
		r, err := db.GetRun(group, day)
		if err != nil {
			return nil, fmt.Errorf("query run: %w", err)
		}
		if r == nil {
			return nil, fmt.Errorf("no archived run for %q day %d", group, day)
		}
		run = r
	}

	standings, err := db.ManagerTotals(run.ID)
	if err != nil {
		return nil, fmt.Errorf("get totals: %w", err)
	}
	misses, err := db.Misses(run.ID)
	if err != nil {
		return nil, fmt.Errorf("get misses: %w", err)
	}
	season, err := db.SeasonPlayerTotals(group)
	if err != nil {
		return nil, fmt.Errorf("get season totals: %w", err)
	}
	repeat, err := db.RepeatMisses(group, 2)
	if err != nil {
		return nil, fmt.Errorf("get repeat misses: %w", err)
	}

	out := &commentaryData{Tournament: run.Tournament, Group: run.Group, Day: run.Day}
	for _, s := range standings {
		out.Standings = append(out.Standings, commentaryStanding{
			Rank:      s.Rank,
			Manager:   s.Manager,
			Points:    report.FormatPoints(s.Points),
			RankDelta: s.Delta,
			Move:      report.DeltaIndicator(s.Delta),
		})
	}
	out.Misses = lo.Map(misses, func(m storage.ArchivedMiss, _ int) commentaryMiss {
		return commentaryMiss{Manager: m.Manager, Player: m.Player, Closest: m.Closest}
	})
	matched := lo.Filter(season, func(ps storage.PlayerSeason, _ int) bool { return ps.Missed < ps.Days })
	out.SeasonLeaders = lo.Map(lo.Slice(matched, 0, 5), func(ps storage.PlayerSeason, _ int) commentarySeason {
		return commentarySeason{Player: ps.Player, Manager: ps.Manager, Points: report.FormatPoints(ps.Total)}
	})
	out.RepeatMisses = lo.Map(repeat, func(m storage.RepeatMiss, _ int) commentaryMiss {
		return commentaryMiss{Manager: m.Manager, Player: m.Player, Closest: m.Closest}
	})
	return out, nil
}

// callAnthropic streams the commentary to w.
func callAnthropic(ctx context.Context, w io.Writer, apiKey, modelID, dataJSON string) error {
	if apiKey == "" {
		apiKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	if apiKey == "" {
		return fmt.Errorf("no API key: set ANTHROPIC_API_KEY or use --api-key")
	}

	client := anthropic.NewClient(option.WithAPIKey(apiKey))

	stream := client.Messages.NewStreaming(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(modelID),
		MaxTokens: int64(cfg.Commentary.MaxTokens),
		System: []anthropic.TextBlockParam{
			{Text: commentarySystemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock("DATA:\n" + dataJSON)),
		},
	})

	for stream.Next() {
		evt := stream.Current()
		if evt.Type == "content_block_delta" {
			delta := evt.AsContentBlockDelta()
			if delta.Delta.Type == "text_delta" {
				fmt.Fprint(w, delta.Delta.AsTextDelta().Text)
			}
		}
	}
	fmt.Fprintln(w)

	if err := stream.Err(); err != nil {
		errStr := err.Error()
		if strings.Contains(errStr, "401") || strings.Contains(errStr, "authentication") {
			return fmt.Errorf("API authentication failed, check your API key")
		}
		return fmt.Errorf("streaming error: %w", err)
	}
	return nil
}
