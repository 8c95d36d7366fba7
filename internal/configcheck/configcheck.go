// Package configcheck probes the host for git and the supported CLI coding
// agents, caching the result for a bounded lifetime.
package configcheck

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	execpkg "github.com/crossroads-cli/crossroads/internal/exec"
	"github.com/crossroads-cli/crossroads/pkg/models"
)

// CacheTTL is how long a ConfigStatus remains valid before CheckAll
// re-probes regardless of forceRefresh.
const CacheTTL = 300 * time.Second

// ToolStatus is the probe result for a single executable.
type ToolStatus struct {
	Available bool   `json:"available"`
	Path      string `json:"path,omitempty"`
	Version   string `json:"version,omitempty"`
}

// ConfigStatus aggregates every probed tool as of CapturedAt.
type ConfigStatus struct {
	Git                  ToolStatus                     `json:"git"`
	Agents               map[models.AgentType]ToolStatus `json:"agents"`
	AllRequiredAvailable bool                            `json:"allRequiredAvailable"`
	AnyAgentAvailable    bool                            `json:"anyAgentAvailable"`
	Summary              string                          `json:"summary"`
	CapturedAt           time.Time                       `json:"capturedAt"`
}

// candidateDirs lists, in probe order, the fixed absolute directories
// checked before falling back to PATH resolution. NVM installs several
// node versions side by side, so a handful of common version dirs are
// checked explicitly.
func candidateDirs(home string) []string {
	dirs := []string{
		"/opt/homebrew/bin",
		"/usr/local/bin",
		"/usr/bin",
		filepath.Join(home, ".local", "bin"),
		filepath.Join(home, "bin"),
	}
	nvmVersionsDir := filepath.Join(home, ".nvm", "versions", "node")
	entries, err := os.ReadDir(nvmVersionsDir)
	if err == nil {
		for _, e := range entries {
			if e.IsDir() {
				dirs = append(dirs, filepath.Join(nvmVersionsDir, e.Name(), "bin"))
			}
		}
	}
	return dirs
}

// Checker probes and caches tool availability. It behaves as a
// single-threaded actor: CheckAll serializes under a mutex so concurrent
// callers never race on the cache.
type Checker struct {
	mu      sync.Mutex
	runner  execpkg.CommandRunner
	cached  *ConfigStatus
	homeDir string
}

// New returns a Checker that shells out via runner.
func New(runner execpkg.CommandRunner) *Checker {
	home, _ := os.UserHomeDir()
	return &Checker{runner: runner, homeDir: home}
}

// CheckAll probes git and every supported agent CLI, returning the cached
// result if it is younger than CacheTTL and forceRefresh is false.
func (c *Checker) CheckAll(ctx context.Context, forceRefresh bool) (ConfigStatus, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !forceRefresh && c.cached != nil && time.Since(c.cached.CapturedAt) < CacheTTL {
		return *c.cached, nil
	}

	dirs := candidateDirs(c.homeDir)

	git := c.probe(ctx, "git", dirs)
	agents := make(map[models.AgentType]ToolStatus, len(models.AllAgentTypes()))
	anyAgent := false
	for _, agentType := range models.AllAgentTypes() {
		status := c.probe(ctx, agentType.Executable(), dirs)
		agents[agentType] = status
		if status.Available {
			anyAgent = true
		}
	}

	status := ConfigStatus{
		Git:                  git,
		Agents:               agents,
		AllRequiredAvailable: git.Available,
		AnyAgentAvailable:    anyAgent,
		CapturedAt:           time.Now(),
	}
	status.Summary = summarize(status)

	c.cached = &status
	return status, nil
}

// IsAgentAvailable reports whether the given agent type was found by the
// most recent CheckAll, refreshing first if nothing has been cached yet.
func (c *Checker) IsAgentAvailable(ctx context.Context, agentType models.AgentType) (bool, error) {
	status, err := c.CheckAll(ctx, false)
	if err != nil {
		return false, err
	}
	return status.Agents[agentType].Available, nil
}

func (c *Checker) probe(ctx context.Context, executable string, dirs []string) ToolStatus {
	path := c.findInCandidates(ctx, executable, dirs)
	if path == "" {
		path = c.findOnPath(ctx, executable, dirs)
	}
	if path == "" {
		return ToolStatus{Available: false}
	}

	version := c.firstVersionLine(ctx, path)
	return ToolStatus{Available: true, Path: path, Version: version}
}

func (c *Checker) findInCandidates(ctx context.Context, executable string, dirs []string) string {
	for _, dir := range dirs {
		candidate := filepath.Join(dir, executable)
		if c.runner.Exists(ctx, "", candidate) && isExecutable(candidate) {
			return candidate
		}
	}
	return ""
}

func (c *Checker) findOnPath(ctx context.Context, executable string, dirs []string) string {
	augmentedPath := os.Getenv("PATH") + string(os.PathListSeparator) + strings.Join(dirs, string(os.PathListSeparator))
	out, err := c.runner.Run(ctx, "", "sh", "-c", fmt.Sprintf("PATH=%q command -v %s", augmentedPath, executable))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(out))
}

func (c *Checker) firstVersionLine(ctx context.Context, path string) string {
	out, err := c.runner.Run(ctx, "", path, "--version")
	if err != nil {
		return ""
	}
	lines := strings.SplitN(strings.TrimSpace(string(out)), "\n", 2)
	if len(lines) == 0 {
		return ""
	}
	return strings.TrimSpace(lines[0])
}

func isExecutable(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode()&0o111 != 0
}

func summarize(status ConfigStatus) string {
	if !status.Git.Available {
		return "git is not installed; crossroads cannot operate"
	}
	available := make([]string, 0, len(status.Agents))
	for _, agentType := range models.AllAgentTypes() {
		if status.Agents[agentType].Available {
			available = append(available, agentType.DisplayName())
		}
	}
	if len(available) == 0 {
		return "git found, but no coding agent CLIs are installed"
	}
	return fmt.Sprintf("git found; %d agent(s) available: %s", len(available), strings.Join(available, ", "))
}
