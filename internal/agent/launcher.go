package agent

import (
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/creack/pty"
	"github.com/google/uuid"

	"github.com/crossroads-cli/crossroads/internal/brief"
	"github.com/crossroads-cli/crossroads/internal/notes"
	"github.com/crossroads-cli/crossroads/pkg/models"
)

// ptyWarmup is how long the launcher waits after starting the PTY before
// writing the first instruction line, giving the CLI time to reach its
// input prompt.
const ptyWarmup = 500 * time.Millisecond

// ErrInstructionsWriteFailed indicates AGENT.md could not be written.
type ErrInstructionsWriteFailed struct{ Cause error }

func (e *ErrInstructionsWriteFailed) Error() string {
	return fmt.Sprintf("write AGENT.md: %v", e.Cause)
}
func (e *ErrInstructionsWriteFailed) Unwrap() error { return e.Cause }

// ErrNotesDirectoryFailed indicates the worktree's notes/ directory could
// not be prepared.
type ErrNotesDirectoryFailed struct{ Cause error }

func (e *ErrNotesDirectoryFailed) Error() string {
	return fmt.Sprintf("prepare notes directory: %v", e.Cause)
}
func (e *ErrNotesDirectoryFailed) Unwrap() error { return e.Cause }

// OutputFunc receives raw bytes read from an agent's PTY.
type OutputFunc func(assignmentID string, data []byte)

// ExitFunc is invoked once an agent process terminates.
type ExitFunc func(assignmentID string, err error)

// Launcher launches CLI coding agents under a pseudo-terminal.
type Launcher struct {
	OnOutput OutputFunc
	OnExit   ExitFunc
}

// New returns a Launcher that reports output and exit via the given
// callbacks. Either may be nil.
func New(onOutput OutputFunc, onExit ExitFunc) *Launcher {
	return &Launcher{OnOutput: onOutput, OnExit: onExit}
}

// Launch provisions a worktree's notes and AGENT.md, resolves the
// assignment's adapter, starts it under a PTY at the worktree path with the
// crossroads environment variables set, and feeds it instructions after a
// fixed warmup. Partial success is rolled back only by leaving the worktree
// intact; the caller owns worktree cleanup.
func (l *Launcher) Launch(assignment models.WorktreeAssignment, doc *models.PRDDocument, sessionID, instructions string) (models.AgentSession, error) {
	if err := notes.EnsureWorktreeNotes(assignment.WorktreePath); err != nil {
		return models.AgentSession{}, &ErrNotesDirectoryFailed{Cause: err}
	}

	data := brief.ForAssignment(assignment, doc, instructions)
	rendered, err := brief.Render(data)
	if err != nil {
		return models.AgentSession{}, &ErrInstructionsWriteFailed{Cause: err}
	}
	if err := writeAtomic(filepath.Join(assignment.WorktreePath, "AGENT.md"), rendered); err != nil {
		return models.AgentSession{}, &ErrInstructionsWriteFailed{Cause: err}
	}

	adapter, execPath, err := Resolve(assignment.AgentType)
	if err != nil {
		return models.AgentSession{}, err
	}

	cmd := exec.Command(execPath, adapter.LaunchArgs(assignment.WorktreePath)...)
	cmd.Dir = assignment.WorktreePath
	cmd.Env = append(os.Environ(),
		"CROSSROADS_SESSION_ID="+sessionID,
		"CROSSROADS_AGENT_TYPE="+string(assignment.AgentType),
		"CROSSROADS_BRANCH="+assignment.BranchName,
		"CROSSROADS_ASSIGNED_STORIES="+strings.Join(assignment.TaskGroup.StoryIDs, ","),
		"CROSSROADS_ASSIGNMENT_ID="+assignment.ID,
	)

	ptmx, err := pty.Start(cmd)
	if err != nil {
		return models.AgentSession{}, fmt.Errorf("start pty for %s: %w", assignment.AgentType, err)
	}

	go l.pump(assignment.ID, ptmx)
	go l.awaitExit(assignment.ID, cmd, ptmx)

	time.Sleep(ptyWarmup)
	if _, err := ptmx.Write([]byte(adapter.FormatCommand(instructions))); err != nil {
		log.Printf("[agent] write initial instructions to %s: %v", assignment.ID, err)
	}

	return models.AgentSession{
		ID:           uuid.NewString(),
		ProcessID:    cmd.Process.Pid,
		AgentType:    assignment.AgentType,
		BranchName:   assignment.BranchName,
		WorktreePath: assignment.WorktreePath,
		Stories:      assignment.TaskGroup.StoryIDs,
		StartedAt:    time.Now(),
	}, nil
}

func (l *Launcher) pump(assignmentID string, ptmx *os.File) {
	buf := make([]byte, 32*1024)
	for {
		n, err := ptmx.Read(buf)
		if n > 0 && l.OnOutput != nil {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			l.OnOutput(assignmentID, chunk)
		}
		if err != nil {
			return
		}
	}
}

func (l *Launcher) awaitExit(assignmentID string, cmd *exec.Cmd, ptmx *os.File) {
	err := cmd.Wait()
	ptmx.Close()
	if l.OnExit != nil {
		l.OnExit(assignmentID, err)
	}
}

func writeAtomic(path, content string) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(content), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
