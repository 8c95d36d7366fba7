// Package tui provides a live terminal display of an orchestration run.
package tui

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/crossroads-cli/crossroads/pkg/models"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// progressMsg wraps a models.ProgressEvent for delivery through bubbletea.
type progressMsg models.ProgressEvent

// doneMsg is sent once the progress channel closes.
type doneMsg struct{}

type agentRow struct {
	agentType models.AgentType
	state     models.AgentState
	storyID   string
	progress  float64
	message   string
}

// app is the bubbletea model driving the run view.
type app struct {
	state    models.OrchestratorState
	agents   map[string]*agentRow
	order    []string
	logs     []string
	quitting bool
	done     bool
}

func newApp() *app {
	return &app{
		state:  models.StateAnalyzing,
		agents: make(map[string]*agentRow),
	}
}

func (a *app) Init() tea.Cmd {
	return nil
}

func (a *app) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			a.quitting = true
			return a, tea.Quit
		}
	case progressMsg:
		a.apply(models.ProgressEvent(msg))
	case doneMsg:
		a.done = true
	}
	return a, nil
}

func (a *app) apply(e models.ProgressEvent) {
	switch e.Kind {
	case models.ProgressStateChange:
		a.state = e.State
		a.appendLog(e.Message)
	case models.ProgressLog:
		a.appendLog(e.Message)
	case models.ProgressAgentEvent:
		row := a.rowFor(e.Event.AgentID, e.Event.AgentType)
		row.storyID = e.Event.StoryID
		if e.Event.Message != "" {
			a.appendLog(fmt.Sprintf("[%s] %s", e.Event.AgentType, e.Event.Message))
		}
	case models.ProgressStatusSnapshot:
		row := a.rowFor(e.Snapshot.AgentID, e.Snapshot.AgentType)
		row.state = e.Snapshot.State
		row.storyID = e.Snapshot.CurrentStoryID
		row.progress = e.Snapshot.Progress
		row.message = e.Snapshot.Message
		a.done = a.allAgentsTerminal()
	}
}

func (a *app) allAgentsTerminal() bool {
	if len(a.order) == 0 {
		return false
	}
	for _, row := range a.agents {
		if row.state != models.AgentFinished && row.state != models.AgentError {
			return false
		}
	}
	return true
}

func (a *app) rowFor(agentID string, agentType models.AgentType) *agentRow {
	row, ok := a.agents[agentID]
	if !ok {
		row = &agentRow{agentType: agentType}
		a.agents[agentID] = row
		a.order = append(a.order, agentID)
	}
	return row
}

func (a *app) appendLog(message string) {
	if message == "" {
		return
	}
	ts := time.Now().Format("15:04:05")
	a.logs = append(a.logs, fmt.Sprintf("%s  %s", ts, message))
	if len(a.logs) > 200 {
		a.logs = a.logs[len(a.logs)-200:]
	}
}

func (a *app) View() string {
	if a.quitting {
		return ""
	}

	stateLabel := fmt.Sprintf("crossroads - %s", a.state)
	if a.state == models.StateError {
		stateLabel = errStyle.Render(stateLabel)
	} else {
		stateLabel = headerStyle.Render(stateLabel)
	}
	out := stateLabel + "\n\n"

	if len(a.order) == 0 {
		out += dimStyle.Render("no agents launched yet") + "\n"
	}
	for _, id := range a.order {
		row := a.agents[id]
		out += fmt.Sprintf("  %-8s %-10s story=%-8s %3.0f%%  %s\n",
			row.agentType, row.state, row.storyID, row.progress*100, row.message)
	}

	out += "\n" + dimStyle.Render("recent activity") + "\n"
	start := 0
	if len(a.logs) > 10 {
		start = len(a.logs) - 10
	}
	for _, line := range a.logs[start:] {
		out += "  " + line + "\n"
	}

	footer := "press q to quit"
	if a.done {
		footer = okStyle.Render("run finished") + " - " + footer
	}
	out += "\n" + dimStyle.Render(footer) + "\n"
	return out
}

// Run drives an interactive display of events. When the channel closes or
// ctx is canceled the view is marked finished and stays open; Run returns
// when the user quits.
func Run(ctx context.Context, events <-chan models.ProgressEvent) error {
	program := tea.NewProgram(newApp())

	go forwardEvents(ctx, program, events)

	_, err := program.Run()
	return err
}

func forwardEvents(ctx context.Context, program *tea.Program, events <-chan models.ProgressEvent) {
	for {
		select {
		case <-ctx.Done():
			program.Send(doneMsg{})
			return
		case e, ok := <-events:
			if !ok {
				program.Send(doneMsg{})
				return
			}
			program.Send(progressMsg(e))
		}
	}
}
