package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pable/go-fantasy-league/internal/report"
)

var (
	publishPage     string
	publishSelector string
)

var publishCmd = &cobra.Command{
	Use:   "publish <group>",
	Short: "Inject the latest leaderboard HTML into a static site page",
	Args:  cobra.ExactArgs(1),
	RunE:  runPublish,
}

func init() {
	publishCmd.Flags().StringVar(&publishPage, "page", "", "HTML page to update (default: site.page from config)")
	publishCmd.Flags().StringVar(&publishSelector, "selector", "", "CSS selector of the target element (default: site.selector from config)")
}

func runPublish(cmd *cobra.Command, args []string) error {
	layout, err := groupLayout(args[0])
	if err != nil {
		return err
	}
	page := publishPage
	if page == "" {
		page = cfg.Site.Page
	}
	if page == "" {
		return fmt.Errorf("no page: pass --page or set site.page in the config")
	}
	selector := publishSelector
	if selector == "" {
		selector = cfg.Site.Selector
	}

	fragment, err := os.ReadFile(layout.LeaderboardHTML())
	if err != nil {
		return fmt.Errorf("read fragment (run the pipeline first): %w", err)
	}
	if err := report.InjectFile(page, selector, string(fragment)); err != nil {
		return err
	}
	logger.Info("site updated", zap.String("page", page), zap.String("selector", selector))
	fmt.Fprintf(cmd.OutOrStdout(), "Updated %s\n", page)
	return nil
}
