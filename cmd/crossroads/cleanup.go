package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/crossroads-cli/crossroads/internal/git"
	"github.com/crossroads-cli/crossroads/internal/worktree"
)

var (
	cleanupForce   bool
	cleanupVerbose bool
	cleanupDryRun  bool
)

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Remove orphaned worktrees",
	Long: `Remove git worktrees crossroads created under its per-repo worktree
root that are no longer registered with git, then prune stale worktree
metadata.

Use this after a crash or an interrupted run left worktrees behind.

Examples:
  crossroads cleanup              # interactive cleanup with confirmation
  crossroads cleanup --force      # skip the confirmation prompt
  crossroads cleanup --dry-run    # show what would be removed`,
	RunE: runCleanup,
}

func init() {
	cleanupCmd.Flags().BoolVarP(&cleanupForce, "force", "f", false, "skip confirmation prompt")
	cleanupCmd.Flags().BoolVarP(&cleanupVerbose, "verbose", "v", false, "show each worktree as it's removed")
	cleanupCmd.Flags().BoolVar(&cleanupDryRun, "dry-run", false, "show what would be removed without removing")
}

func runCleanup(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("get working directory: %w", err)
	}

	repoPath, err := findGitRoot(cwd)
	if err != nil {
		return fmt.Errorf("find git repository: %w", err)
	}

	runner := git.NewRunner(repoPath)
	root, err := worktree.Root(repoPath)
	if err != nil {
		return fmt.Errorf("resolve worktree root: %w", err)
	}

	registered, err := runner.WorktreeList()
	if err != nil {
		return fmt.Errorf("list worktrees: %w", err)
	}
	known := make(map[string]bool, len(registered))
	for _, path := range registered {
		known[filepath.Clean(path)] = true
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			fmt.Println("No crossroads worktrees found.")
			return runner.WorktreePrune()
		}
		return fmt.Errorf("read worktree root: %w", err)
	}

	var orphans []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		child := filepath.Join(root, entry.Name())
		if containsKnownWorktree(child, known) {
			continue
		}
		orphans = append(orphans, child)
	}

	if len(orphans) == 0 {
		fmt.Println("No orphaned crossroads worktrees found.")
		return runner.WorktreePrune()
	}

	fmt.Printf("Found %d orphaned crossroads worktree(s):\n", len(orphans))
	for _, path := range orphans {
		fmt.Printf("  - %s\n", path)
	}
	fmt.Println()

	if cleanupDryRun {
		fmt.Println("Dry run mode - no worktrees were removed.")
		return nil
	}

	if !cleanupForce {
		fmt.Print("Remove these worktrees? [y/N] ")
		reader := bufio.NewReader(os.Stdin)
		response, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("read confirmation: %w", err)
		}
		response = strings.TrimSpace(strings.ToLower(response))
		if response != "y" && response != "yes" {
			fmt.Println("Worktree cleanup cancelled.")
			return nil
		}
	}

	removed := 0
	for _, path := range orphans {
		if err := os.RemoveAll(path); err != nil {
			fmt.Fprintf(os.Stderr, "failed to remove %s: %v\n", path, err)
			continue
		}
		if cleanupVerbose {
			fmt.Printf("Removed: %s\n", path)
		}
		removed++
	}

	fmt.Printf("Successfully removed %d worktree(s).\n", removed)
	return runner.WorktreePrune()
}

// containsKnownWorktree reports whether child is, or is an ancestor
// directory of, a registered worktree path. Branch names like
// "agent/claude-US-1" nest worktrees one level under the per-repo root, so a
// direct child of the root can itself be the parent of several live
// worktrees.
func containsKnownWorktree(child string, known map[string]bool) bool {
	prefix := child + string(filepath.Separator)
	for path := range known {
		if path == child || strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// findGitRoot finds the root of the git repository starting from the given directory.
func findGitRoot(startDir string) (string, error) {
	dir := startDir
	for {
		gitDir := filepath.Join(dir, ".git")
		if info, err := os.Stat(gitDir); err == nil && info.IsDir() {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("not in a git repository")
		}
		dir = parent
	}
}
