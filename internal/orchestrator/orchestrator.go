// Package orchestrator drives a single run end to end: analyzing a PRD,
// provisioning worktrees, launching agents, monitoring their progress, and
// coordinating the final merge. It owns the run's state machine and fans
// events out to any number of listeners (typically a TUI or a CLI
// subscriber).
package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/crossroads-cli/crossroads/internal/action"
	"github.com/crossroads-cli/crossroads/internal/agent"
	"github.com/crossroads-cli/crossroads/internal/configcheck"
	"github.com/crossroads-cli/crossroads/internal/eventbus"
	"github.com/crossroads-cli/crossroads/internal/git"
	"github.com/crossroads-cli/crossroads/internal/merge"
	"github.com/crossroads-cli/crossroads/internal/skill"
	"github.com/crossroads-cli/crossroads/internal/tasksplit"
	"github.com/crossroads-cli/crossroads/internal/worktree"
	"github.com/crossroads-cli/crossroads/pkg/models"
)

// statusPollInterval is how often a monitoring stream re-reads each
// worktree's status file.
const statusPollInterval = 2 * time.Second

// StatusFileName is the file an agent is instructed to write its status
// snapshot to inside its worktree.
const StatusFileName = ".crossroads-status.json"

// Orchestrator coordinates one crossroads run. It is safe for concurrent
// use; State and Config are the only fields read from outside the owning
// goroutine, so they're guarded independently of the run methods, which are
// expected to be called sequentially by a single driver (a CLI command or a
// TUI model).
type Orchestrator struct {
	mu        sync.Mutex
	state     models.OrchestratorState
	config    models.OrchestratorConfig
	listeners map[int]chan models.ProgressEvent
	nextID    int

	runner   git.Runner
	checker  *configcheck.Checker
	bus      *eventbus.Bus
	launcher *agent.Launcher
	merger   *merge.Coordinator
	actions  *action.Registry
	skills   *skill.Registry
}

// New returns an idle Orchestrator wired to the given collaborators, with
// the default configuration. actions and skills drive which actions and
// prompt skills are advertised to a launched agent in instructionsFor; pass
// nil for either to fall back to the built-in action set and no skills.
func New(runner git.Runner, checker *configcheck.Checker, bus *eventbus.Bus, launcher *agent.Launcher, actions *action.Registry, skills *skill.Registry) *Orchestrator {
	if actions == nil {
		actions = action.NewRegistry()
	}
	if skills == nil {
		skills = skill.NewRegistry("")
	}
	return &Orchestrator{
		state:     models.StateIdle,
		config:    models.DefaultOrchestratorConfig(),
		listeners: make(map[int]chan models.ProgressEvent),
		runner:    runner,
		checker:   checker,
		bus:       bus,
		launcher:  launcher,
		merger:    merge.New(runner),
		actions:   actions,
		skills:    skills,
	}
}

// State returns the orchestrator's current run state.
func (o *Orchestrator) State() models.OrchestratorState {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Config returns the orchestrator's current configuration.
func (o *Orchestrator) Config() models.OrchestratorConfig {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.config
}

// UpdateConfig replaces the orchestrator's configuration for subsequent
// runs. It does not affect a run already in progress.
func (o *Orchestrator) UpdateConfig(cfg models.OrchestratorConfig) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.config = cfg
}

func (o *Orchestrator) setState(s models.OrchestratorState) {
	o.mu.Lock()
	o.state = s
	listeners := make([]chan models.ProgressEvent, 0, len(o.listeners))
	for _, ch := range o.listeners {
		listeners = append(listeners, ch)
	}
	o.mu.Unlock()

	event := models.ProgressEvent{Kind: models.ProgressStateChange, State: s, Timestamp: time.Now()}
	for _, ch := range listeners {
		select {
		case ch <- event:
		default:
		}
	}
}

func (o *Orchestrator) broadcastLog(message string) {
	o.mu.Lock()
	listeners := make([]chan models.ProgressEvent, 0, len(o.listeners))
	for _, ch := range o.listeners {
		listeners = append(listeners, ch)
	}
	o.mu.Unlock()

	event := models.ProgressEvent{Kind: models.ProgressLog, Message: message, Timestamp: time.Now()}
	for _, ch := range listeners {
		select {
		case ch <- event:
		default:
		}
	}
}

func (o *Orchestrator) addListener(ch chan models.ProgressEvent) int {
	o.mu.Lock()
	defer o.mu.Unlock()
	id := o.nextID
	o.nextID++
	o.listeners[id] = ch
	return id
}

func (o *Orchestrator) removeListener(id int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.listeners, id)
}

// AnalyzePRD probes installed agent CLIs and clusters the PRD's user
// stories into task groups assignable to them. State moves
// idle -> analyzing -> idle on success, or -> error on failure.
func (o *Orchestrator) AnalyzePRD(ctx context.Context, doc *models.PRDDocument) (models.PRDAnalysis, error) {
	o.setState(models.StateAnalyzing)

	status, err := o.checker.CheckAll(ctx, false)
	if err != nil {
		o.setState(models.StateError)
		return models.PRDAnalysis{}, fmt.Errorf("check tool availability: %w", err)
	}

	available := make([]models.AgentType, 0, len(models.AllAgentTypes()))
	for _, t := range models.AllAgentTypes() {
		if status.Agents[t].Available {
			available = append(available, t)
		}
	}

	groups, err := tasksplit.Split(doc, available)
	if err != nil {
		o.setState(models.StateError)
		return models.PRDAnalysis{}, err
	}

	o.setState(models.StateIdle)
	return models.PRDAnalysis{Document: doc, TaskGroups: groups}, nil
}

// CreateWorktrees provisions one git worktree per task group under repoPath.
// State moves to distributing and remains there; the next step in a normal
// run is AssignTasks.
func (o *Orchestrator) CreateWorktrees(analysis models.PRDAnalysis, repoPath string) ([]models.WorktreeAssignment, error) {
	o.setState(models.StateDistributing)

	factory := worktree.New(o.runner, repoPath)
	assignments, err := factory.CreateForTasks(analysis.TaskGroups)
	if err != nil {
		o.setState(models.StateError)
		return nil, err
	}
	return assignments, nil
}

// AssignTasks launches one agent process per assignment and returns once
// every assignment has either launched or failed. At most
// config.MaxParallelAgents launches are in progress at once; the bound
// covers only the launch step, so every launched agent keeps running
// alongside the others and no assignment waits for an earlier agent to
// finish. State remains distributing; a caller normally follows this with
// MonitorProgress.
func (o *Orchestrator) AssignTasks(assignments []models.WorktreeAssignment, doc *models.PRDDocument, sessionID string) ([]models.TaskAssignment, error) {
	maxParallel := o.Config().MaxParallelAgents
	if maxParallel <= 0 {
		maxParallel = 1
	}
	sem := make(chan struct{}, maxParallel)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		out      = make([]models.TaskAssignment, 0, len(assignments))
		firstErr error
	)

	for _, a := range assignments {
		wg.Add(1)
		sem <- struct{}{}
		go func(a models.WorktreeAssignment) {
			defer wg.Done()
			defer func() { <-sem }()

			instructions := o.instructionsFor(a, doc)
			session, err := o.launcher.Launch(a, doc, sessionID, instructions)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if firstErr == nil {
					firstErr = fmt.Errorf("launch agent for %s: %w", a.BranchName, err)
				}
				return
			}
			out = append(out, models.TaskAssignment{Assignment: a, Session: session})
			o.broadcastLog(fmt.Sprintf("launched %s on %s", a.AgentType, a.BranchName))
		}(a)
	}
	wg.Wait()

	if firstErr != nil {
		o.setState(models.StateError)
		return out, firstErr
	}
	return out, nil
}

// instructionsFor builds the launch instructions for an assignment,
// including only the actions and skills the assignment's agent type can
// actually use, per o.actions and o.skills.
func (o *Orchestrator) instructionsFor(a models.WorktreeAssignment, doc *models.PRDDocument) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Implement the following user stories from %s:\n\n", doc.FeatureName)
	for _, id := range a.TaskGroup.StoryIDs {
		story, ok := doc.StoryByID(id)
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "- %s: %s\n", story.ID, story.Title)
	}

	if actions := o.actions.Actions(a.AgentType); len(actions) > 0 {
		names := make([]string, len(actions))
		for i, act := range actions {
			names[i] = string(act)
		}
		fmt.Fprintf(&b, "\nAvailable actions for %s: %s\n", a.AgentType, strings.Join(names, ", "))
	}
	for _, custom := range o.actions.CustomActions() {
		if custom.CompatibleWith(a.AgentType) {
			fmt.Fprintf(&b, "- custom action %q: %s\n", custom.ID, custom.Description)
		}
	}

	if skills := o.skills.ByCLI(a.AgentType); len(skills) > 0 {
		fmt.Fprintf(&b, "\nSkills available to draw on:\n")
		for _, s := range skills {
			fmt.Fprintf(&b, "- %s: %s\n", s.ID, s.Description)
		}
	}

	return b.String()
}

// MonitorProgress returns a merged, read-only stream of status snapshots
// (polled from each worktree's status file), agent lifecycle events filtered
// to the given assignments, orchestrator state changes, and free-form log
// lines. The stream closes when ctx is canceled. State moves to monitoring
// for the duration.
func (o *Orchestrator) MonitorProgress(ctx context.Context, assignments []models.TaskAssignment) <-chan models.ProgressEvent {
	out := make(chan models.ProgressEvent, 64)
	listenerID := o.addListener(out)

	o.setState(models.StateMonitoring)

	activeAgents := make(map[string]bool, len(assignments))
	for _, a := range assignments {
		activeAgents[a.Session.ID] = true
	}

	sub := o.bus.Subscribe("monitor")

	go func() {
		defer close(out)
		defer sub.Cancel()
		defer o.removeListener(listenerID)

		ticker := time.NewTicker(statusPollInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case evt, ok := <-sub.Events:
				if !ok {
					return
				}
				if !activeAgents[evt.AgentID] {
					continue
				}
				e := evt
				send(ctx, out, models.ProgressEvent{Kind: models.ProgressAgentEvent, Event: &e, Timestamp: time.Now()})
			case <-ticker.C:
				for _, a := range assignments {
					snap, ok := readStatusFile(a.Assignment.WorktreePath, a.Session)
					if !ok {
						continue
					}
					send(ctx, out, models.ProgressEvent{Kind: models.ProgressStatusSnapshot, Snapshot: &snap, Timestamp: time.Now()})
				}
			}
		}
	}()

	return out
}

func send(ctx context.Context, out chan<- models.ProgressEvent, event models.ProgressEvent) {
	select {
	case out <- event:
	case <-ctx.Done():
	}
}

func readStatusFile(worktreePath string, session models.AgentSession) (models.AgentStatusSnapshot, bool) {
	data, err := os.ReadFile(filepath.Join(worktreePath, StatusFileName))
	if err != nil {
		return models.AgentStatusSnapshot{}, false
	}
	var snap models.AgentStatusSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return models.AgentStatusSnapshot{}, false
	}
	snap.AgentID = session.ID
	snap.AgentType = session.AgentType
	snap.WorktreePath = worktreePath
	return snap, true
}

// CoordinateMerge merges every assignment's branch into baseBranch per the
// configured conflict strategy. State moves merging -> complete on a clean
// result, or merging -> error otherwise.
func (o *Orchestrator) CoordinateMerge(assignments []models.TaskAssignment, baseBranch string) (models.MergeResult, error) {
	o.setState(models.StateMerging)

	worktrees := make([]models.WorktreeAssignment, len(assignments))
	for i, a := range assignments {
		worktrees[i] = a.Assignment
	}

	cfg := o.Config()
	result, err := o.merger.Coordinate(worktrees, baseBranch, cfg.ConflictStrategy, cfg.AutoMerge)
	if err != nil {
		o.setState(models.StateError)
		return models.MergeResult{}, err
	}

	if result.Success {
		o.setState(models.StateComplete)
	} else {
		o.setState(models.StateError)
	}
	return result, nil
}
