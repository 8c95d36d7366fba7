package models

// TaskGroup is one dependency cluster assigned to a single agent.
type TaskGroup struct {
	ID                  string    `json:"id"`
	PreferredAgent      AgentType `json:"preferredAgent"`
	StoryIDs            []string  `json:"storyIds"`
	EstimatedComplexity int       `json:"estimatedComplexity"`
}

// WorktreeAssignment binds one TaskGroup to one agent, branch and worktree.
// Immutable once created.
type WorktreeAssignment struct {
	ID           string    `json:"id"`
	TaskGroup    TaskGroup `json:"taskGroup"`
	AgentType    AgentType `json:"agentType"`
	BranchName   string    `json:"branchName"`
	WorktreePath string    `json:"worktreePath"`
}

// MergePlanStepStatus is the closed set of states for one step of a merge plan.
type MergePlanStepStatus string

const (
	MergeStepPending MergePlanStepStatus = "pending"
	MergeStepReady   MergePlanStepStatus = "ready"
	MergeStepBlocked MergePlanStepStatus = "blocked"
)

// MergePlanStep is one branch-merge step in a topologically ordered plan.
type MergePlanStep struct {
	Assignment WorktreeAssignment  `json:"assignment"`
	Status     MergePlanStepStatus `json:"status"`
}

// MergeConflict records one file that could not be auto-merged in a step.
type MergeConflict struct {
	BranchName string `json:"branchName"`
	FilePath   string `json:"filePath"`
}

// MergeResult is the outcome of a coordinateMerge run.
type MergeResult struct {
	BaseBranch     string          `json:"baseBranch"`
	Plan           []MergePlanStep `json:"plan,omitempty"`
	MergedBranches []string        `json:"mergedBranches"`
	Conflicts      []MergeConflict `json:"conflicts"`
	Success        bool            `json:"success"`
	RolledBack     bool            `json:"rolledBack"`
}

// ConflictStrategy is the closed set of merge conflict handling policies.
type ConflictStrategy string

const (
	ConflictManualReview  ConflictStrategy = "manualReview"
	ConflictPreferPrimary ConflictStrategy = "preferPrimary"
	ConflictFailFast      ConflictStrategy = "failFast"
)

// Valid returns true if the conflict strategy is a known value.
func (c ConflictStrategy) Valid() bool {
	switch c {
	case ConflictManualReview, ConflictPreferPrimary, ConflictFailFast:
		return true
	default:
		return false
	}
}

// OrchestratorConfig holds the tunables the orchestrator reads on each run.
type OrchestratorConfig struct {
	MaxParallelAgents int              `json:"maxParallelAgents" mapstructure:"max_parallel_agents"`
	AutoMerge         bool             `json:"autoMerge" mapstructure:"auto_merge"`
	ConflictStrategy  ConflictStrategy `json:"conflictStrategy" mapstructure:"conflict_strategy"`
}

// DefaultOrchestratorConfig returns the spec-mandated defaults.
func DefaultOrchestratorConfig() OrchestratorConfig {
	return OrchestratorConfig{
		MaxParallelAgents: 2,
		AutoMerge:         true,
		ConflictStrategy:  ConflictManualReview,
	}
}

// OrchestratorState is the closed set of orchestrator run states.
type OrchestratorState string

const (
	StateIdle         OrchestratorState = "idle"
	StateAnalyzing    OrchestratorState = "analyzing"
	StateDistributing OrchestratorState = "distributing"
	StateMonitoring   OrchestratorState = "monitoring"
	StateMerging      OrchestratorState = "merging"
	StateComplete     OrchestratorState = "complete"
	StateError        OrchestratorState = "error"
)

// Terminal returns true if the state ends a run.
func (s OrchestratorState) Terminal() bool {
	return s == StateComplete || s == StateError
}
