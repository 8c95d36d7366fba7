package main

import (
	"context"
	"testing"
	"time"

	"github.com/crossroads-cli/crossroads/pkg/models"
)

func TestApplyRunOverrides(t *testing.T) {
	tests := []struct {
		name       string
		maxP       int
		autoMerge  bool
		noAuto     bool
		strategy   string
		base       models.OrchestratorConfig
		wantStrat  models.ConflictStrategy
		wantMaxP   int
		wantMerge  bool
	}{
		{
			name:      "no overrides leaves config untouched",
			base:      models.OrchestratorConfig{MaxParallelAgents: 3, AutoMerge: true, ConflictStrategy: models.ConflictManualReview},
			wantStrat: models.ConflictManualReview,
			wantMaxP:  3,
			wantMerge: true,
		},
		{
			name:      "max parallel override applies",
			maxP:      7,
			base:      models.OrchestratorConfig{MaxParallelAgents: 3, ConflictStrategy: models.ConflictManualReview},
			wantStrat: models.ConflictManualReview,
			wantMaxP:  7,
		},
		{
			name:      "auto merge override forces true",
			autoMerge: true,
			base:      models.OrchestratorConfig{AutoMerge: false, ConflictStrategy: models.ConflictManualReview},
			wantStrat: models.ConflictManualReview,
			wantMerge: true,
		},
		{
			name:      "no auto merge override forces false",
			noAuto:    true,
			base:      models.OrchestratorConfig{AutoMerge: true, ConflictStrategy: models.ConflictManualReview},
			wantStrat: models.ConflictManualReview,
			wantMerge: false,
		},
		{
			name:      "conflict strategy override applies",
			strategy:  string(models.ConflictFailFast),
			base:      models.OrchestratorConfig{ConflictStrategy: models.ConflictManualReview},
			wantStrat: models.ConflictFailFast,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runMaxParallel, runAutoMerge, runNoAutoMerge, runConflictStrategy = tt.maxP, tt.autoMerge, tt.noAuto, tt.strategy
			defer func() { runMaxParallel, runAutoMerge, runNoAutoMerge, runConflictStrategy = 0, false, false, "" }()

			cfg := tt.base
			applyRunOverrides(&cfg)

			if cfg.ConflictStrategy != tt.wantStrat {
				t.Errorf("ConflictStrategy = %q, want %q", cfg.ConflictStrategy, tt.wantStrat)
			}
			if tt.wantMaxP != 0 && cfg.MaxParallelAgents != tt.wantMaxP {
				t.Errorf("MaxParallelAgents = %d, want %d", cfg.MaxParallelAgents, tt.wantMaxP)
			}
			if tt.autoMerge || tt.noAuto {
				if cfg.AutoMerge != tt.wantMerge {
					t.Errorf("AutoMerge = %v, want %v", cfg.AutoMerge, tt.wantMerge)
				}
			}
		})
	}
}

func TestIsTerminal(t *testing.T) {
	tests := []struct {
		state models.AgentState
		want  bool
	}{
		{models.AgentIdle, false},
		{models.AgentWorking, false},
		{models.AgentNeedsInput, false},
		{models.AgentBlocked, false},
		{models.AgentFinished, true},
		{models.AgentError, true},
	}

	for _, tt := range tests {
		if got := isTerminal(tt.state); got != tt.want {
			t.Errorf("isTerminal(%q) = %v, want %v", tt.state, got, tt.want)
		}
	}
}

func TestDrainProgressStopsOnceAllAssignmentsTerminal(t *testing.T) {
	assignments := []models.TaskAssignment{
		{Session: models.AgentSession{ID: "a1"}},
		{Session: models.AgentSession{ID: "a2"}},
	}

	events := make(chan models.ProgressEvent, 4)
	events <- models.ProgressEvent{Kind: models.ProgressStatusSnapshot, Snapshot: &models.AgentStatusSnapshot{AgentID: "a1", State: models.AgentFinished}}
	events <- models.ProgressEvent{Kind: models.ProgressStatusSnapshot, Snapshot: &models.AgentStatusSnapshot{AgentID: "a2", State: models.AgentWorking}}
	events <- models.ProgressEvent{Kind: models.ProgressStatusSnapshot, Snapshot: &models.AgentStatusSnapshot{AgentID: "a2", State: models.AgentError}}

	done := make(chan struct{})
	go func() {
		drainProgress(context.Background(), events, assignments)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("drainProgress did not return once all assignments reached a terminal state")
	}
}
