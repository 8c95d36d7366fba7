package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/crossroads-cli/crossroads/internal/config"
	"github.com/crossroads-cli/crossroads/internal/configcheck"
	execpkg "github.com/crossroads-cli/crossroads/internal/exec"
	"github.com/crossroads-cli/crossroads/internal/git"
	"github.com/crossroads-cli/crossroads/internal/history"
	"github.com/crossroads-cli/crossroads/internal/repodetect"
	"github.com/crossroads-cli/crossroads/pkg/models"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show what crossroads knows about the current repository",
	Long: `Display the current repository, which required tools and coding
agents are available on PATH, and the most recent orchestration runs.`,
	RunE: runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("get working directory: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	detector := repodetect.New(git.NewRunner(cwd), filepath.Join(filepath.Dir(config.GetUserConfigPath()), "recent-repos.json"))
	detectResult, err := detector.DetectRepository(cwd)
	if err != nil {
		return fmt.Errorf("detect repository: %w", err)
	}

	if !detectResult.IsGitRepo {
		fmt.Printf("%s is not inside a git repository.\n", cwd)
	} else {
		fmt.Printf("Repository: %s\n", detectResult.RepoInfo.Path)
		fmt.Printf("  Branch: %s\n", detectResult.RepoInfo.CurrentBranch)
	}

	checker := configcheck.New(execpkg.NewRunner())
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	check, err := checker.CheckAll(ctx, false)
	if err != nil {
		return fmt.Errorf("check tooling: %w", err)
	}
	displayToolStatus(check)

	fmt.Println()
	return displayRecentRuns(cfg.History.Path)
}

func displayToolStatus(status configcheck.ConfigStatus) {
	fmt.Println("Tooling:")
	fmt.Printf("  git: %s\n", toolLine(status.Git))
	for _, agentType := range []models.AgentType{models.AgentClaude, models.AgentGemini, models.AgentCodex} {
		tool, ok := status.Agents[agentType]
		if !ok {
			continue
		}
		fmt.Printf("  %s: %s\n", agentType, toolLine(tool))
	}
	if !status.AnyAgentAvailable {
		fmt.Println("  no coding agents found on PATH - crossroads run will fail to launch any agent")
	}
}

func toolLine(t configcheck.ToolStatus) string {
	if !t.Available {
		return "not found"
	}
	if t.Version != "" {
		return fmt.Sprintf("%s (%s)", t.Path, t.Version)
	}
	return t.Path
}

func displayRecentRuns(historyPath string) error {
	svc := history.New(historyPath)
	records := svc.All()

	if len(records) == 0 {
		fmt.Println("No past runs recorded.")
		return nil
	}

	limit := 5
	if len(records) < limit {
		limit = len(records)
	}

	fmt.Println("Recent Runs:")
	for _, r := range records[:limit] {
		elapsed := formatDuration(time.Since(r.FinishedAt))
		outcome := "failed"
		if r.Result != nil && r.Result.Success {
			outcome = "merged"
		}
		fmt.Printf("  %s: %s (%s) - %s ago\n", r.ID, r.FeatureName, outcome, elapsed)
	}
	return nil
}

// formatDuration formats a duration in a human-readable way.
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm", int(d.Minutes()))
	}
	if d < 24*time.Hour {
		h := int(d.Hours())
		m := int(d.Minutes()) % 60
		if m > 0 {
			return fmt.Sprintf("%dh%dm", h, m)
		}
		return fmt.Sprintf("%dh", h)
	}
	days := int(d.Hours()) / 24
	return fmt.Sprintf("%dd", days)
}
