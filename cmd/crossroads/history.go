package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/crossroads-cli/crossroads/internal/config"
)

var (
	historyLimit  int
	historySQLite bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List past orchestration runs",
	Long: `List the most recent orchestration runs recorded to the history
file, newest first, including their outcome and any merge conflicts.`,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "maximum number of runs to show")
	historyCmd.Flags().BoolVar(&historySQLite, "sqlite", false, "read history from the SQLite backend instead of the JSON file")
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	store, err := resolveHistoryStore(cfg, historySQLite)
	if err != nil {
		return fmt.Errorf("open history backend: %w", err)
	}
	records := store.All()
	if len(records) == 0 {
		fmt.Println("No past runs recorded.")
		return nil
	}

	limit := historyLimit
	if limit <= 0 || limit > len(records) {
		limit = len(records)
	}

	for _, r := range records[:limit] {
		outcome := "failed"
		if r.Result != nil && r.Result.Success {
			outcome = "merged"
		}
		fmt.Printf("%s  %-10s %-20s started %s finished %s\n",
			r.ID, outcome, r.FeatureName,
			r.StartedAt.Format("2006-01-02 15:04"),
			r.FinishedAt.Format("2006-01-02 15:04"))
		if r.Result != nil && len(r.Result.Conflicts) > 0 {
			for _, c := range r.Result.Conflicts {
				fmt.Printf("    conflict: %s (%s)\n", c.FilePath, c.BranchName)
			}
		}
	}
	return nil
}
