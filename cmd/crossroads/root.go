package main

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/spf13/cobra"

	"github.com/crossroads-cli/crossroads/internal/version"
)

// checkGitCLI verifies that git is available in PATH.
func checkGitCLI() error {
	if _, err := exec.LookPath("git"); err != nil {
		return fmt.Errorf("git not found in PATH\n\ncrossroads requires git to provision worktrees")
	}
	return nil
}

var rootCmd = &cobra.Command{
	Use:   "crossroads",
	Short: "Parallel PRD orchestrator for CLI coding agents",
	Long: `crossroads takes a product requirements document and orchestrates
parallel CLI coding agents (Claude Code, Gemini CLI, Codex CLI) to implement
it, each in its own isolated git worktree.

Core capabilities:
- Parses a PRD into user stories and clusters them by dependency
- Spawns one agent per cluster in its own git worktree and branch
- Streams agent output, lifecycle events, and status snapshots
- Merges completed branches back per a configurable conflict strategy
- Records every run to a bounded history file

Available commands:
  run       Analyze a PRD and run agents in parallel worktrees
  status    Show what crossroads knows about the current repository
  history   List past orchestration runs
  init      Scaffold a PRD template and config in a project
  cleanup   Remove orphaned worktrees
  version   Show version information

Use "crossroads [command] --help" for more information about a command.`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.Version = version.Get()
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(cleanupCmd)
}
