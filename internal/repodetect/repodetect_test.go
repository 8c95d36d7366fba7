package repodetect

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/crossroads-cli/crossroads/pkg/models"
)

type fakeGitRunner struct {
	insideWorkTree bool
	repoRoot       string
	repoRootErr    error
	branch         string
}

func (f *fakeGitRunner) CurrentBranch() (string, error)                  { return f.branch, nil }
func (f *fakeGitRunner) CreateBranch(string) error                       { return nil }
func (f *fakeGitRunner) CreateAndCheckoutBranch(string) error             { return nil }
func (f *fakeGitRunner) CheckoutBranch(string) error                      { return nil }
func (f *fakeGitRunner) BranchExists(string) (bool, error)                { return false, nil }
func (f *fakeGitRunner) DeleteBranch(string) error                        { return nil }
func (f *fakeGitRunner) Status() (string, error)                          { return "", nil }
func (f *fakeGitRunner) HasChanges() (bool, error)                        { return false, nil }
func (f *fakeGitRunner) Diff(string) (string, error)                      { return "", nil }
func (f *fakeGitRunner) DiffBetween(string, string) (string, error)       { return "", nil }
func (f *fakeGitRunner) ChangedFiles(string) ([]string, error)            { return nil, nil }
func (f *fakeGitRunner) ChangedFilesBetween(string, string) ([]string, error) { return nil, nil }
func (f *fakeGitRunner) ChangedFilesRelative(string, string) ([]string, error) { return nil, nil }
func (f *fakeGitRunner) ConflictedFiles() ([]string, error)               { return nil, nil }
func (f *fakeGitRunner) Add(...string) error                              { return nil }
func (f *fakeGitRunner) Commit(string) error                              { return nil }
func (f *fakeGitRunner) Reset(string) error                               { return nil }
func (f *fakeGitRunner) ResetHard(string) error                           { return nil }
func (f *fakeGitRunner) CheckoutPath(string) error                        { return nil }
func (f *fakeGitRunner) RepoRoot() (string, error)                        { return f.repoRoot, f.repoRootErr }
func (f *fakeGitRunner) IsInsideWorkTree() bool                           { return f.insideWorkTree }
func (f *fakeGitRunner) RevParse(string) (string, error)                  { return "", nil }
func (f *fakeGitRunner) Merge(string) error                               { return nil }
func (f *fakeGitRunner) MergeNoFF(string) error                           { return nil }
func (f *fakeGitRunner) MergeNoFFMessage(string, string) error            { return nil }
func (f *fakeGitRunner) MergeAbort() error                                { return nil }
func (f *fakeGitRunner) MergeBase(string, string) (string, error)         { return "", nil }
func (f *fakeGitRunner) HasConflicts() (bool, error)                      { return false, nil }
func (f *fakeGitRunner) Rebase(string) error                              { return nil }
func (f *fakeGitRunner) RebaseAbort() error                               { return nil }
func (f *fakeGitRunner) WorktreeAdd(string, string) error                 { return nil }
func (f *fakeGitRunner) WorktreeAddNewBranch(string, string) error        { return nil }
func (f *fakeGitRunner) WorktreeRemove(string) error                      { return nil }
func (f *fakeGitRunner) WorktreeRemoveOptionalForce(string, bool) error    { return nil }
func (f *fakeGitRunner) WorktreeUnlock(string) error                      { return nil }
func (f *fakeGitRunner) WorktreeList() ([]string, error)                  { return nil, nil }
func (f *fakeGitRunner) WorktreeListPorcelain() (string, error)           { return "", nil }
func (f *fakeGitRunner) WorktreePrune() error                             { return nil }
func (f *fakeGitRunner) WorktreePruneExpireNow() error                    { return nil }
func (f *fakeGitRunner) PullFFOnly() error                                { return nil }
func (f *fakeGitRunner) ShowFile(string, string) (string, error)          { return "", nil }
func (f *fakeGitRunner) CheckoutOurs(string) error                        { return nil }
func (f *fakeGitRunner) CheckoutTheirs(string) error                      { return nil }
func (f *fakeGitRunner) Run(args ...string) (string, error)               { return "", nil }

func TestDetectRepositoryNotAGitRepo(t *testing.T) {
	store := filepath.Join(t.TempDir(), "recent.json")
	d := New(&fakeGitRunner{insideWorkTree: false}, store)

	result, err := d.DetectRepository("/tmp/not-a-repo")
	if err != nil {
		t.Fatalf("DetectRepository() error = %v", err)
	}
	if result.IsGitRepo {
		t.Error("expected IsGitRepo = false")
	}
	if result.RepoInfo != nil {
		t.Error("expected nil RepoInfo")
	}
}

func TestDetectRepositoryUpdatesRecents(t *testing.T) {
	store := filepath.Join(t.TempDir(), "recent.json")
	repoDir := t.TempDir()
	runner := &fakeGitRunner{insideWorkTree: true, repoRoot: repoDir, branch: "main"}
	d := New(runner, store)

	result, err := d.DetectRepository(repoDir)
	if err != nil {
		t.Fatalf("DetectRepository() error = %v", err)
	}
	if !result.IsGitRepo || result.RepoInfo == nil {
		t.Fatal("expected a detected repo")
	}
	if result.RepoInfo.CurrentBranch != "main" {
		t.Errorf("CurrentBranch = %q, want main", result.RepoInfo.CurrentBranch)
	}
	if len(result.RecentRepos) != 1 || result.RecentRepos[0].Path != repoDir {
		t.Errorf("RecentRepos = %v, want single entry for %s", result.RecentRepos, repoDir)
	}

	if _, err := os.Stat(store); err != nil {
		t.Errorf("expected recents persisted to %s: %v", store, err)
	}
}

func TestDetectRepositoryMoveToFrontDeduplicated(t *testing.T) {
	store := filepath.Join(t.TempDir(), "recent.json")
	repoA := t.TempDir()
	repoB := t.TempDir()

	runnerA := &fakeGitRunner{insideWorkTree: true, repoRoot: repoA, branch: "main"}
	d := New(runnerA, store)
	if _, err := d.DetectRepository(repoA); err != nil {
		t.Fatal(err)
	}

	runnerB := &fakeGitRunner{insideWorkTree: true, repoRoot: repoB, branch: "main"}
	d = New(runnerB, store)
	result, err := d.DetectRepository(repoB)
	if err != nil {
		t.Fatal(err)
	}
	if len(result.RecentRepos) != 2 || result.RecentRepos[0].Path != repoB {
		t.Errorf("RecentRepos = %v, want [repoB, repoA]", result.RecentRepos)
	}

	runnerA2 := &fakeGitRunner{insideWorkTree: true, repoRoot: repoA, branch: "main"}
	d = New(runnerA2, store)
	result, err = d.DetectRepository(repoA)
	if err != nil {
		t.Fatal(err)
	}
	if len(result.RecentRepos) != 2 || result.RecentRepos[0].Path != repoA {
		t.Errorf("RecentRepos = %v, want repoA moved to front without duplication", result.RecentRepos)
	}
}

func TestGenerateBranchNamePrefixesByAction(t *testing.T) {
	name := GenerateBranchName(models.ActionReview, "Add Checkout Flow!")
	if filepath.Dir(name) != "review" {
		t.Errorf("GenerateBranchName() = %q, want review/ prefix", name)
	}
}
