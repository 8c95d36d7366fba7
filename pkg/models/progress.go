package models

import "time"

// PRDAnalysis is the result of analyzing a PRD document into task groups
// ready for worktree provisioning.
type PRDAnalysis struct {
	Document   *PRDDocument `json:"document"`
	TaskGroups []TaskGroup  `json:"taskGroups"`
}

// TaskAssignment binds a worktree assignment to the agent session launched
// for it.
type TaskAssignment struct {
	Assignment WorktreeAssignment `json:"assignment"`
	Session    AgentSession       `json:"session"`
}

// ProgressEventKind is the closed set of entries carried on an
// orchestrator's monitoring stream.
type ProgressEventKind string

const (
	ProgressStatusSnapshot ProgressEventKind = "statusSnapshot"
	ProgressAgentEvent     ProgressEventKind = "agentEvent"
	ProgressStateChange    ProgressEventKind = "stateChange"
	ProgressLog            ProgressEventKind = "log"
)

// ProgressEvent is one entry on the orchestrator's merged monitoring
// stream. Exactly one of Snapshot, Event, or (State, Message) is populated,
// selected by Kind.
type ProgressEvent struct {
	Kind      ProgressEventKind    `json:"kind"`
	Snapshot  *AgentStatusSnapshot `json:"snapshot,omitempty"`
	Event     *AgentEvent          `json:"event,omitempty"`
	State     OrchestratorState    `json:"state,omitempty"`
	Message   string               `json:"message,omitempty"`
	Timestamp time.Time            `json:"timestamp"`
}
