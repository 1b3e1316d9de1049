package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var listGroup string

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List archived runs",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func init() {
	listCmd.Flags().StringVar(&listGroup, "group", "", "only list runs for this group")
}

func runList(cmd *cobra.Command, args []string) error {
	db, err := openArchive()
	if err != nil {
		return err
	}
	defer db.Close()

	runs, err := db.ListRuns(listGroup)
	if err != nil {
		return fmt.Errorf("list runs: %w", err)
	}
	if len(runs) == 0 {
		fmt.Fprintln(os.Stdout, "No runs archived yet. Run 'fantasy run <group> --archive' to add one.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-8s  %-14s  %-8s  %-8s  %8s  %6s  %s\n",
		"RUN", "GROUP", "DAY", "MVP DAY", "MANAGERS", "MISSES", "RECORDED")
	fmt.Fprintf(os.Stdout, "%-8s  %-14s  %-8s  %-8s  %8s  %6s  %s\n",
		"────────", "──────────────", "────────", "────────", "────────", "──────", "────────────────")
	for _, r := range runs {
		fmt.Fprintf(os.Stdout, "%-8s  %-14s  %-8d  %-8d  %8d  %6d  %s\n",
			r.ID[:8], r.Group, r.Day, r.MVPDay, r.Managers, r.Misses, r.RecordedAt.Local().Format("2006-01-02 15:04"))
	}
	return nil
}
