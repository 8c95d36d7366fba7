package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/crossroads-cli/crossroads/internal/action"
	"github.com/crossroads-cli/crossroads/internal/agent"
	"github.com/crossroads-cli/crossroads/internal/config"
	"github.com/crossroads-cli/crossroads/internal/configcheck"
	execpkg "github.com/crossroads-cli/crossroads/internal/exec"
	"github.com/crossroads-cli/crossroads/internal/eventbus"
	"github.com/crossroads-cli/crossroads/internal/git"
	"github.com/crossroads-cli/crossroads/internal/history"
	"github.com/crossroads-cli/crossroads/internal/orchestrator"
	"github.com/crossroads-cli/crossroads/internal/prd"
	"github.com/crossroads-cli/crossroads/internal/skill"
	"github.com/crossroads-cli/crossroads/internal/tui"
	"github.com/crossroads-cli/crossroads/pkg/models"
)

var (
	runPRDPath          string
	runRepoPath         string
	runBaseBranch       string
	runWatch            bool
	runMaxParallel      int
	runAutoMerge        bool
	runNoAutoMerge      bool
	runConflictStrategy string
	runSQLite           bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Analyze a PRD and run agents in parallel worktrees",
	Long: `Parses a PRD, clusters its user stories by dependency, provisions a
git worktree and branch per cluster, launches one CLI coding agent per
worktree, and merges completed branches back into the base branch.

Examples:
  crossroads run --prd prd.json
  crossroads run --prd prd.json --watch
  crossroads run --prd prd.json --conflict-strategy failFast --no-auto-merge`,
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringVar(&runPRDPath, "prd", "", "path to the PRD JSON file (required)")
	runCmd.Flags().StringVar(&runRepoPath, "repo", "", "repository path (defaults to the current directory)")
	runCmd.Flags().StringVar(&runBaseBranch, "base-branch", "", "branch to merge into (defaults to the current branch)")
	runCmd.Flags().BoolVar(&runWatch, "watch", false, "open a live TUI while agents run")
	runCmd.Flags().IntVar(&runMaxParallel, "max-parallel", 0, "override the configured max parallel agents")
	runCmd.Flags().BoolVar(&runAutoMerge, "auto-merge", false, "force auto-merge on")
	runCmd.Flags().BoolVar(&runNoAutoMerge, "no-auto-merge", false, "force auto-merge off (plan only)")
	runCmd.Flags().StringVar(&runConflictStrategy, "conflict-strategy", "", "override the configured conflict strategy (manualReview|preferPrimary|failFast)")
	runCmd.Flags().BoolVar(&runSQLite, "sqlite", false, "record this run's history in the SQLite backend instead of the JSON file")
	runCmd.MarkFlagRequired("prd")
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	applyRunOverrides(&cfg.Orchestrator)

	repoPath := runRepoPath
	if repoPath == "" {
		repoPath, err = os.Getwd()
		if err != nil {
			return fmt.Errorf("get working directory: %w", err)
		}
	}

	runner := git.NewRunner(repoPath)
	if !runner.IsInsideWorkTree() {
		return fmt.Errorf("%s is not inside a git repository", repoPath)
	}

	baseBranch := runBaseBranch
	if baseBranch == "" {
		baseBranch, err = runner.CurrentBranch()
		if err != nil {
			return fmt.Errorf("resolve current branch: %w", err)
		}
	}

	doc, err := prd.ParseFile(runPRDPath)
	if err != nil {
		return fmt.Errorf("parse PRD: %w", err)
	}

	checker := configcheck.New(execpkg.NewRunner())
	bus := eventbus.New()
	launcher := agent.New(nil, nil)

	actions := action.NewRegistry()
	skills := skill.NewRegistry(cfg.Skills.UserDir)
	if err := skills.Initialize(); err != nil {
		return fmt.Errorf("load skills: %w", err)
	}
	for _, loadErr := range skills.GetLoadErrors() {
		fmt.Fprintf(os.Stderr, "warning: skipping malformed skill %s: %v\n", loadErr.Path, loadErr.Err)
	}

	orch := orchestrator.New(runner, checker, bus, launcher, actions, skills)
	orch.UpdateConfig(cfg.Orchestrator)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sessionID := uuid.NewString()
	startedAt := time.Now()

	fmt.Printf("Analyzing %s...\n", runPRDPath)
	analysis, err := orch.AnalyzePRD(ctx, doc)
	if err != nil {
		return fmt.Errorf("analyze PRD: %w", err)
	}
	fmt.Printf("Found %d task group(s) across %d user stories.\n", len(analysis.TaskGroups), len(doc.UserStories))

	assignments, err := orch.CreateWorktrees(analysis, repoPath)
	if err != nil {
		return fmt.Errorf("create worktrees: %w", err)
	}

	fmt.Printf("Launching %d agent(s)...\n", len(assignments))
	taskAssignments, err := orch.AssignTasks(assignments, doc, sessionID)
	if err != nil {
		return fmt.Errorf("assign tasks: %w", err)
	}

	events := orch.MonitorProgress(ctx, taskAssignments)
	if runWatch {
		if err := tui.Run(ctx, events); err != nil {
			fmt.Fprintf(os.Stderr, "tui: %v\n", err)
		}
		cancel()
	} else {
		drainProgress(ctx, events, taskAssignments)
		cancel()
	}

	fmt.Println("Coordinating merge...")
	result, err := orch.CoordinateMerge(taskAssignments, baseBranch)
	if err != nil {
		return fmt.Errorf("coordinate merge: %w", err)
	}

	store, err := resolveHistoryStore(cfg, runSQLite)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to open history backend: %v\n", err)
	} else if err := recordHistory(store, sessionID, doc.FeatureName, startedAt, orch.State(), result); err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to record history: %v\n", err)
	}

	printMergeResult(result)
	if !result.Success {
		return fmt.Errorf("run finished with unresolved conflicts or a failed merge")
	}
	return nil
}

func applyRunOverrides(cfg *models.OrchestratorConfig) {
	if runMaxParallel > 0 {
		cfg.MaxParallelAgents = runMaxParallel
	}
	if runAutoMerge {
		cfg.AutoMerge = true
	}
	if runNoAutoMerge {
		cfg.AutoMerge = false
	}
	if runConflictStrategy != "" {
		cfg.ConflictStrategy = models.ConflictStrategy(runConflictStrategy)
	}
}

// drainProgress prints a one-line summary per event in non-interactive mode,
// stopping once every assignment has reached a terminal status snapshot.
func drainProgress(ctx context.Context, events <-chan models.ProgressEvent, assignments []models.TaskAssignment) {
	pending := make(map[string]bool, len(assignments))
	for _, a := range assignments {
		pending[a.Session.ID] = true
	}

	for len(pending) > 0 {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-events:
			if !ok {
				return
			}
			printProgressLine(e)
			if e.Kind == models.ProgressStatusSnapshot && isTerminal(e.Snapshot.State) {
				delete(pending, e.Snapshot.AgentID)
			}
		}
	}
}

func isTerminal(state models.AgentState) bool {
	return state == models.AgentFinished || state == models.AgentError
}

func printProgressLine(e models.ProgressEvent) {
	switch e.Kind {
	case models.ProgressStateChange:
		fmt.Printf("[state] %s\n", e.State)
	case models.ProgressAgentEvent:
		fmt.Printf("[agent] %s: %s\n", e.Event.Kind, e.Event.Message)
	case models.ProgressStatusSnapshot:
		fmt.Printf("[status] %s: %s (%.0f%%)\n", e.Snapshot.AgentType, e.Snapshot.State, e.Snapshot.Progress*100)
	case models.ProgressLog:
		fmt.Printf("[log] %s\n", e.Message)
	}
}

func recordHistory(store history.HistoryStore, sessionID, featureName string, startedAt time.Time, runState models.OrchestratorState, result models.MergeResult) error {
	return store.Append(history.Record{
		ID:          sessionID,
		FeatureName: featureName,
		State:       runState,
		StartedAt:   startedAt,
		FinishedAt:  time.Now(),
		Result:      &result,
	})
}

func printMergeResult(result models.MergeResult) {
	fmt.Printf("\nMerge result (base: %s)\n", result.BaseBranch)
	if len(result.MergedBranches) == 0 && len(result.Plan) > 0 {
		fmt.Println("  plan (auto-merge disabled, nothing merged):")
		for _, step := range result.Plan {
			fmt.Printf("    %-8s %s\n", step.Status, step.Assignment.BranchName)
		}
	}
	fmt.Printf("  merged:    %v\n", result.MergedBranches)
	if len(result.Conflicts) > 0 {
		fmt.Println("  conflicts:")
		for _, c := range result.Conflicts {
			fmt.Printf("    %s: %s\n", c.BranchName, c.FilePath)
		}
	}
	if result.RolledBack {
		fmt.Println("  rolled back to pre-run state")
	}
	fmt.Printf("  success:   %v\n", result.Success)
}
