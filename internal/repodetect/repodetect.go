// Package repodetect resolves whether a path is inside a git repository and
// maintains a most-recently-used list of repos crossroads has seen.
package repodetect

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/crossroads-cli/crossroads/internal/git"
	"github.com/crossroads-cli/crossroads/pkg/models"
)

// maxRecentRepos bounds the persisted recent-repos list.
const maxRecentRepos = 10

// RepoInfo identifies a detected repository.
type RepoInfo struct {
	Path          string `json:"path"`
	CurrentBranch string `json:"currentBranch"`
}

// RecentRepo is one entry in the move-to-front recent-repos list.
type RecentRepo struct {
	Path       string    `json:"path"`
	LastOpened time.Time `json:"lastOpened"`
}

// DetectResult is the outcome of DetectRepository.
type DetectResult struct {
	IsGitRepo   bool
	RepoInfo    *RepoInfo
	RecentRepos []RecentRepo
}

// Detector resolves repos and persists the recent-repos list to a JSON file
// acting as its key-value store. It behaves as a single-threaded actor.
type Detector struct {
	mu       sync.Mutex
	runner   git.Runner
	storeFile string
}

// New returns a Detector that persists recent repos to storeFile.
func New(runner git.Runner, storeFile string) *Detector {
	return &Detector{runner: runner, storeFile: storeFile}
}

// DetectRepository resolves a repo root and current branch through the
// Detector's git runner. path is not consulted: the result describes the
// repository the runner is bound to. On success it moves the repo to the front of the recent-repos list,
// deduplicated by path and truncated to maxRecentRepos, and persists the
// result. On failure it returns IsGitRepo=false without mutating state.
func (d *Detector) DetectRepository(path string) (DetectResult, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.runner.IsInsideWorkTree() {
		recents, err := d.loadRecents()
		if err != nil {
			return DetectResult{}, err
		}
		return DetectResult{IsGitRepo: false, RecentRepos: recents}, nil
	}

	root, err := d.runner.RepoRoot()
	if err != nil {
		recents, loadErr := d.loadRecents()
		if loadErr != nil {
			return DetectResult{}, loadErr
		}
		return DetectResult{IsGitRepo: false, RecentRepos: recents}, nil
	}
	root = strings.TrimSpace(root)

	branch, err := d.runner.CurrentBranch()
	if err != nil {
		branch = ""
	}

	recents, err := d.loadRecents()
	if err != nil {
		return DetectResult{}, err
	}
	recents = touch(recents, root)
	if err := d.saveRecents(recents); err != nil {
		return DetectResult{}, err
	}

	return DetectResult{
		IsGitRepo:   true,
		RepoInfo:    &RepoInfo{Path: root, CurrentBranch: strings.TrimSpace(branch)},
		RecentRepos: recents,
	}, nil
}

// touch moves path to the front of repos, deduplicated and truncated to
// maxRecentRepos.
func touch(repos []RecentRepo, path string) []RecentRepo {
	out := make([]RecentRepo, 0, len(repos)+1)
	out = append(out, RecentRepo{Path: path, LastOpened: time.Now()})
	for _, r := range repos {
		if r.Path == path {
			continue
		}
		out = append(out, r)
	}
	if len(out) > maxRecentRepos {
		out = out[:maxRecentRepos]
	}
	return out
}

// loadRecents reads the persisted recent-repos list, filtering out entries
// whose path no longer exists on disk. A missing or corrupt store file is
// treated as an empty list.
func (d *Detector) loadRecents() ([]RecentRepo, error) {
	data, err := os.ReadFile(d.storeFile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read recent repos: %w", err)
	}

	var repos []RecentRepo
	if err := json.Unmarshal(data, &repos); err != nil {
		return nil, nil
	}

	filtered := make([]RecentRepo, 0, len(repos))
	for _, r := range repos {
		if _, statErr := os.Stat(r.Path); statErr == nil {
			filtered = append(filtered, r)
		}
	}
	return filtered, nil
}

func (d *Detector) saveRecents(repos []RecentRepo) error {
	if err := os.MkdirAll(filepath.Dir(d.storeFile), 0o755); err != nil {
		return fmt.Errorf("create recent repos dir: %w", err)
	}
	data, err := json.MarshalIndent(repos, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal recent repos: %w", err)
	}

	tmp := d.storeFile + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write recent repos: %w", err)
	}
	return os.Rename(tmp, d.storeFile)
}

var actionPrefix = map[models.ActionType]string{
	models.ActionImplement:       "feat",
	models.ActionReview:          "review",
	models.ActionIntegrationTest: "test",
	models.ActionWrite:           "docs",
	models.ActionCustom:          "task",
}

var slugPattern = regexp.MustCompile(`[^a-z0-9-]+`)

// GenerateBranchName derives a "<prefix>/<slug>-<ts%10000>" branch name for
// an ad hoc action (not a task-splitter-driven agent assignment).
func GenerateBranchName(actionType models.ActionType, baseName string) string {
	prefix, ok := actionPrefix[actionType]
	if !ok {
		prefix = "task"
	}
	slug := slugPattern.ReplaceAllString(strings.ToLower(baseName), "-")
	slug = strings.Trim(slug, "-")
	return fmt.Sprintf("%s/%s-%d", prefix, slug, time.Now().UnixMilli()%10000)
}

// GenerateWorktreePath is kept only as a deprecated display helper: it
// formats the legacy "~/.xroads/worktrees/..." layout that crossroads no
// longer creates on disk (see the worktree package for the canonical root).
//
// Deprecated: use worktree.Root and worktree.BranchName.
func GenerateWorktreePath(repoPath, branchName string) (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	sanitizedBranch := strings.ReplaceAll(branchName, "/", "-")
	return filepath.Join(home, ".xroads", "worktrees", filepath.Base(repoPath), sanitizedBranch), nil
}
