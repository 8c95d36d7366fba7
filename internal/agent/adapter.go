// Package agent launches CLI coding agents under a pseudo-terminal and
// feeds them an initial instruction line.
package agent

import (
	"fmt"
	"os/exec"
	"strings"

	"github.com/crossroads-cli/crossroads/pkg/models"
)

// Adapter knows how to resolve, invoke, and talk to one CLI coding agent.
// Adapters differ only in executable resolution, launch arguments given the
// worktree, and how instructions are formatted into a single input line —
// the launcher itself never parses agent stdout.
type Adapter interface {
	Executable() string
	LaunchArgs(worktreePath string) []string
	FormatCommand(instructions string) string
}

// ErrAdapterUnavailable indicates the adapter's executable could not be
// found on disk.
type ErrAdapterUnavailable struct {
	AgentType models.AgentType
}

func (e *ErrAdapterUnavailable) Error() string {
	return fmt.Sprintf("adapter unavailable: %s executable not found", e.AgentType)
}

// claudeAdapter drives the Claude Code CLI.
type claudeAdapter struct{}

func (claudeAdapter) Executable() string { return "claude" }

func (claudeAdapter) LaunchArgs(worktreePath string) []string {
	return []string{"--permission-mode", "acceptEdits"}
}

func (claudeAdapter) FormatCommand(instructions string) string {
	return strings.TrimRight(instructions, "\n") + "\n"
}

// geminiAdapter drives the Gemini CLI.
type geminiAdapter struct{}

func (geminiAdapter) Executable() string { return "gemini" }

func (geminiAdapter) LaunchArgs(worktreePath string) []string {
	return []string{"--approval-mode", "yolo"}
}

func (geminiAdapter) FormatCommand(instructions string) string {
	return strings.TrimRight(instructions, "\n") + "\n"
}

// codexAdapter drives the Codex CLI.
type codexAdapter struct{}

func (codexAdapter) Executable() string { return "codex" }

func (codexAdapter) LaunchArgs(worktreePath string) []string {
	return []string{"--full-auto"}
}

func (codexAdapter) FormatCommand(instructions string) string {
	// codex's REPL wraps long single-line input poorly; wrap it for a
	// less overwhelming first prompt.
	return "/prompt\n" + strings.TrimRight(instructions, "\n") + "\n"
}

// Registry maps agent types to their adapters.
var Registry = map[models.AgentType]Adapter{
	models.AgentClaude: claudeAdapter{},
	models.AgentGemini: geminiAdapter{},
	models.AgentCodex:  codexAdapter{},
}

// Resolve returns the adapter for agentType and the absolute path to its
// executable, or ErrAdapterUnavailable if the executable is not on disk.
func Resolve(agentType models.AgentType) (Adapter, string, error) {
	adapter, ok := Registry[agentType]
	if !ok {
		return nil, "", &ErrAdapterUnavailable{AgentType: agentType}
	}
	path, err := exec.LookPath(adapter.Executable())
	if err != nil {
		return nil, "", &ErrAdapterUnavailable{AgentType: agentType}
	}
	return adapter, path, nil
}
