package tasksplit

import (
	"testing"

	"github.com/crossroads-cli/crossroads/pkg/models"
)

func story(id string, priority models.Priority, deps ...string) models.PRDUserStory {
	return models.PRDUserStory{ID: id, Priority: priority, DependsOn: deps}
}

func TestSplitClustersByDependency(t *testing.T) {
	doc := &models.PRDDocument{
		UserStories: []models.PRDUserStory{
			story("US-1", models.PriorityHigh),
			story("US-2", models.PriorityMedium, "US-1"),
			story("US-3", models.PriorityLow),
		},
	}

	groups, err := Split(doc, models.AllAgentTypes())
	if err != nil {
		t.Fatalf("Split() error = %v", err)
	}
	if len(groups) != 2 {
		t.Fatalf("len(groups) = %d, want 2", len(groups))
	}

	byID := make(map[string]models.TaskGroup, len(groups))
	for _, g := range groups {
		byID[g.ID] = g
	}

	clustered, ok := byID["US-1"]
	if !ok {
		t.Fatal("expected a group seeded at US-1")
	}
	if len(clustered.StoryIDs) != 2 {
		t.Errorf("US-1 cluster = %v, want [US-1 US-2]", clustered.StoryIDs)
	}
}

func TestSplitCriticalPrefersClaude(t *testing.T) {
	doc := &models.PRDDocument{UserStories: []models.PRDUserStory{story("US-1", models.PriorityCritical)}}
	groups, err := Split(doc, []models.AgentType{models.AgentGemini, models.AgentClaude, models.AgentCodex})
	if err != nil {
		t.Fatalf("Split() error = %v", err)
	}
	if groups[0].PreferredAgent != models.AgentClaude {
		t.Errorf("PreferredAgent = %v, want claude", groups[0].PreferredAgent)
	}
}

func TestSplitCriticalFallsBackWithoutClaude(t *testing.T) {
	doc := &models.PRDDocument{UserStories: []models.PRDUserStory{story("US-1", models.PriorityCritical)}}
	groups, err := Split(doc, []models.AgentType{models.AgentGemini, models.AgentCodex})
	if err != nil {
		t.Fatalf("Split() error = %v", err)
	}
	if groups[0].PreferredAgent != models.AgentGemini {
		t.Errorf("PreferredAgent = %v, want gemini (first available)", groups[0].PreferredAgent)
	}
}

func TestSplitMediumPrefersCodex(t *testing.T) {
	doc := &models.PRDDocument{UserStories: []models.PRDUserStory{story("US-1", models.PriorityMedium)}}
	groups, err := Split(doc, models.AllAgentTypes())
	if err != nil {
		t.Fatalf("Split() error = %v", err)
	}
	if groups[0].PreferredAgent != models.AgentCodex {
		t.Errorf("PreferredAgent = %v, want codex", groups[0].PreferredAgent)
	}
}

func TestSplitHighRoundRobinsAcrossNonCodex(t *testing.T) {
	doc := &models.PRDDocument{
		UserStories: []models.PRDUserStory{
			story("US-1", models.PriorityHigh),
			story("US-2", models.PriorityHigh),
		},
	}
	agents := []models.AgentType{models.AgentClaude, models.AgentGemini}
	groups, err := Split(doc, agents)
	if err != nil {
		t.Fatalf("Split() error = %v", err)
	}
	if len(groups) != 2 {
		t.Fatalf("len(groups) = %d, want 2", len(groups))
	}
	if groups[0].PreferredAgent == groups[1].PreferredAgent {
		t.Errorf("expected round-robin to alternate agents, got %v twice", groups[0].PreferredAgent)
	}
}

func TestSplitNoAgentsAvailable(t *testing.T) {
	doc := &models.PRDDocument{UserStories: []models.PRDUserStory{story("US-1", models.PriorityLow)}}
	_, err := Split(doc, nil)
	if err == nil {
		t.Fatal("Split() error = nil, want noAgentsAvailable")
	}
}

func TestSplitEstimatedComplexitySumsWeights(t *testing.T) {
	doc := &models.PRDDocument{
		UserStories: []models.PRDUserStory{
			story("US-1", models.PriorityHigh),
			story("US-2", models.PriorityLow, "US-1"),
		},
	}
	groups, err := Split(doc, models.AllAgentTypes())
	if err != nil {
		t.Fatalf("Split() error = %v", err)
	}
	if groups[0].EstimatedComplexity != 11 {
		t.Errorf("EstimatedComplexity = %d, want 11", groups[0].EstimatedComplexity)
	}
}
