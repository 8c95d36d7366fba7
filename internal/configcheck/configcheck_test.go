package configcheck

import (
	"context"
	"testing"

	"github.com/crossroads-cli/crossroads/pkg/models"
)

// fakeRunner simulates "which"-style resolution and --version probes for a
// fixed set of known executables, all reachable only via PATH (Exists
// always false, forcing findOnPath).
type fakeRunner struct {
	onPath map[string]string // executable -> resolved path
}

func (f *fakeRunner) Run(ctx context.Context, workDir, name string, args ...string) ([]byte, error) {
	if name == "sh" && len(args) == 2 && args[0] == "-c" {
		for exe, path := range f.onPath {
			if containsWord(args[1], exe) {
				return []byte(path), nil
			}
		}
		return nil, errNotFound
	}
	for _, path := range f.onPath {
		if name == path {
			return []byte("git version 2.42.0\nmore text"), nil
		}
	}
	return nil, errNotFound
}

func (f *fakeRunner) RunShell(ctx context.Context, workDir, command string) ([]byte, error) {
	return f.Run(ctx, workDir, "sh", "-c", command)
}

func (f *fakeRunner) Exists(ctx context.Context, workDir, path string) bool { return false }

var errNotFound = fmtErrorf("not found")

func fmtErrorf(s string) error { return &simpleError{s} }

type simpleError struct{ msg string }

func (e *simpleError) Error() string { return e.msg }

func containsWord(haystack, needle string) bool {
	for i := 0; i+len(needle) <= len(haystack); i++ {
		if haystack[i:i+len(needle)] == needle {
			return true
		}
	}
	return false
}

func TestCheckAllReportsGitAndAgents(t *testing.T) {
	runner := &fakeRunner{onPath: map[string]string{"git": "/usr/bin/git"}}
	c := New(runner)

	status, err := c.CheckAll(context.Background(), false)
	if err != nil {
		t.Fatalf("CheckAll() error = %v", err)
	}
	if !status.Git.Available {
		t.Error("expected git available")
	}
	if status.AllRequiredAvailable != true {
		t.Error("expected AllRequiredAvailable = true when git present")
	}
	if status.AnyAgentAvailable {
		t.Error("expected AnyAgentAvailable = false with no agent CLIs resolvable")
	}
}

func TestCheckAllCachesWithinTTL(t *testing.T) {
	runner := &fakeRunner{onPath: map[string]string{"git": "/usr/bin/git"}}
	c := New(runner)

	first, err := c.CheckAll(context.Background(), false)
	if err != nil {
		t.Fatal(err)
	}
	second, err := c.CheckAll(context.Background(), false)
	if err != nil {
		t.Fatal(err)
	}
	if !first.CapturedAt.Equal(second.CapturedAt) {
		t.Error("expected cached CapturedAt to be reused within TTL")
	}
}

func TestCheckAllForceRefreshBypassesCache(t *testing.T) {
	runner := &fakeRunner{onPath: map[string]string{"git": "/usr/bin/git"}}
	c := New(runner)

	first, err := c.CheckAll(context.Background(), false)
	if err != nil {
		t.Fatal(err)
	}
	second, err := c.CheckAll(context.Background(), true)
	if err != nil {
		t.Fatal(err)
	}
	if first.CapturedAt.After(second.CapturedAt) {
		t.Error("expected forceRefresh to produce a new or equal timestamp")
	}
}

func TestIsAgentAvailableFalseWithoutInstall(t *testing.T) {
	runner := &fakeRunner{onPath: map[string]string{"git": "/usr/bin/git"}}
	c := New(runner)

	available, err := c.IsAgentAvailable(context.Background(), models.AgentClaude)
	if err != nil {
		t.Fatal(err)
	}
	if available {
		t.Error("expected claude unavailable")
	}
}
