// Package worktree provisions per-agent git worktrees under a deterministic,
// per-repo root.
package worktree

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/crossroads-cli/crossroads/internal/git"
	"github.com/crossroads-cli/crossroads/internal/notes"
	"github.com/crossroads-cli/crossroads/pkg/models"
)

var slugPattern = regexp.MustCompile(`[^a-z0-9-]+`)

// Root returns the deterministic worktree root for a repository, namespaced
// by a sha256 hash of the repo's lowercased, cleaned absolute path. This is
// the only worktree root crossroads ever creates on disk.
func Root(repoPath string) (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	normalized := strings.ToLower(filepath.Clean(repoPath))
	sum := sha256.Sum256([]byte(normalized))
	return filepath.Join(home, ".crossroads", "worktrees", hex.EncodeToString(sum[:])), nil
}

// BranchName derives the agent/<agent>-<slug> branch name for a task group.
func BranchName(agent models.AgentType, groupID string) string {
	slug := slugPattern.ReplaceAllString(strings.ToLower(groupID), "-")
	slug = strings.Trim(slug, "-")
	if slug == "" {
		slug = strings.ReplaceAll(groupID, "/", "-")
	}
	return fmt.Sprintf("agent/%s-%s", agent, slug)
}

// Factory creates and sweeps worktrees for a single repository.
type Factory struct {
	runner   git.Runner
	repoPath string
}

// New returns a Factory bound to the given repo path and git runner.
func New(runner git.Runner, repoPath string) *Factory {
	return &Factory{runner: runner, repoPath: repoPath}
}

// CreateForTasks provisions one worktree per task group, returning a
// WorktreeAssignment for each. It sweeps orphaned worktree directories
// before provisioning new ones. Failures from git propagate verbatim.
func (f *Factory) CreateForTasks(groups []models.TaskGroup) ([]models.WorktreeAssignment, error) {
	root, err := Root(f.repoPath)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create worktree root: %w", err)
	}
	if err := f.sweepOrphans(root); err != nil {
		return nil, err
	}

	assignments := make([]models.WorktreeAssignment, 0, len(groups))
	for _, group := range groups {
		branch := BranchName(group.PreferredAgent, group.ID)
		worktreePath := filepath.Join(root, branch)

		if err := os.MkdirAll(filepath.Dir(worktreePath), 0o755); err != nil {
			return nil, fmt.Errorf("create worktree parent: %w", err)
		}
		if err := f.runner.WorktreeAddNewBranch(worktreePath, branch); err != nil {
			return nil, err
		}

		if err := notes.SyncToWorktree(f.repoPath, worktreePath, branch); err != nil {
			return nil, err
		}

		assignments = append(assignments, models.WorktreeAssignment{
			ID:           uuid.NewString(),
			TaskGroup:    group,
			AgentType:    group.PreferredAgent,
			BranchName:   branch,
			WorktreePath: worktreePath,
		})
	}

	return assignments, nil
}

// sweepOrphans deletes direct child directories of root that are not
// registered as worktrees with git.
func (f *Factory) sweepOrphans(root string) error {
	registered, err := f.runner.WorktreeList()
	if err != nil {
		return err
	}
	known := make(map[string]bool, len(registered))
	for _, path := range registered {
		known[filepath.Clean(path)] = true
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read worktree root: %w", err)
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		child := filepath.Join(root, entry.Name())
		if containsKnownWorktree(child, known) {
			continue
		}
		if err := os.RemoveAll(child); err != nil {
			return fmt.Errorf("sweep orphan worktree %s: %w", child, err)
		}
	}

	return nil
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
