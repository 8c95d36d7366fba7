// Package models defines the data types shared across crossroads: PRDs, task
// groups, worktree assignments, agent sessions and events, and orchestrator
// state.
package models

import "time"

// AgentType is the closed set of CLI coding agents crossroads can drive.
type AgentType string

const (
	AgentClaude AgentType = "claude"
	AgentGemini AgentType = "gemini"
	AgentCodex  AgentType = "codex"
)

// Valid returns true if the agent type is a known value.
func (a AgentType) Valid() bool {
	switch a {
	case AgentClaude, AgentGemini, AgentCodex:
		return true
	default:
		return false
	}
}

// DisplayName returns a human-readable name for the agent type.
func (a AgentType) DisplayName() string {
	switch a {
	case AgentClaude:
		return "Claude Code"
	case AgentGemini:
		return "Gemini CLI"
	case AgentCodex:
		return "Codex CLI"
	default:
		return string(a)
	}
}

// Executable returns the name of the CLI executable for the agent type.
func (a AgentType) Executable() string {
	switch a {
	case AgentClaude:
		return "claude"
	case AgentGemini:
		return "gemini"
	case AgentCodex:
		return "codex"
	default:
		return string(a)
	}
}

// AllAgentTypes returns the closed set of agent types in a stable order.
func AllAgentTypes() []AgentType {
	return []AgentType{AgentClaude, AgentGemini, AgentCodex}
}

// AgentSession describes a launched agent process bound to one worktree.
type AgentSession struct {
	ID           string    `json:"id"`
	ProcessID    int       `json:"processId"`
	AgentType    AgentType `json:"agentType"`
	BranchName   string    `json:"branchName"`
	WorktreePath string    `json:"worktreePath"`
	Stories      []string  `json:"stories"`
	StartedAt    time.Time `json:"startedAt"`
}

// AgentEventKind is the closed set of lifecycle events an agent may emit.
type AgentEventKind string

const (
	EventStoryStarted   AgentEventKind = "storyStarted"
	EventStoryCompleted AgentEventKind = "storyCompleted"
	EventBlocked        AgentEventKind = "blocked"
	EventNeedsHelp      AgentEventKind = "needsHelp"
	EventFileModified   AgentEventKind = "fileModified"
)

// Valid returns true if the event kind is a known value.
func (k AgentEventKind) Valid() bool {
	switch k {
	case EventStoryStarted, EventStoryCompleted, EventBlocked, EventNeedsHelp, EventFileModified:
		return true
	default:
		return false
	}
}

// AgentEvent is one lifecycle event published to the event bus.
type AgentEvent struct {
	ID        string         `json:"id"`
	AgentID   string         `json:"agentId"`
	AgentType AgentType      `json:"agentType,omitempty"`
	Kind      AgentEventKind `json:"kind"`
	StoryID   string         `json:"storyId,omitempty"`
	FilePath  string         `json:"filePath,omitempty"`
	Message   string         `json:"message"`
	Timestamp time.Time      `json:"timestamp"`
}

// AgentState is the closed set of states reported in an AgentStatusSnapshot.
type AgentState string

const (
	AgentIdle       AgentState = "idle"
	AgentWorking    AgentState = "working"
	AgentNeedsInput AgentState = "needsInput"
	AgentBlocked    AgentState = "blocked"
	AgentFinished   AgentState = "finished"
	AgentError      AgentState = "error"
)

// AgentStatusSnapshot is the collaborator-fed status read from an agent's
// status file inside its worktree (see SPEC_FULL.md open question 3).
type AgentStatusSnapshot struct {
	AgentID        string     `json:"agentId"`
	AgentType      AgentType  `json:"agentType,omitempty"`
	WorktreePath   string     `json:"worktreePath,omitempty"`
	State          AgentState `json:"state"`
	CurrentStoryID string     `json:"currentStoryId,omitempty"`
	Progress       float64    `json:"progress"`
	Message        string     `json:"message"`
	Timestamp      time.Time  `json:"timestamp"`
}
