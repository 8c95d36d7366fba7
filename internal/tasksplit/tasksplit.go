// Package tasksplit clusters a PRD's user stories into task groups, each
// bound to a preferred agent type.
package tasksplit

import (
	"errors"
	"sort"

	"github.com/crossroads-cli/crossroads/internal/graph"
	"github.com/crossroads-cli/crossroads/pkg/models"
)

// ErrNoAgentsAvailable indicates neither an explicit agent list nor a
// default set had any entries.
var ErrNoAgentsAvailable = errors.New("no agents available")

// Split clusters a PRD document's user stories into task groups. Available
// reports which agent types crossroads may assign (typically the set a
// config check found installed); callers that maintain a separate default
// agent set should merge it in before calling Split, since an empty result
// here always fails with ErrNoAgentsAvailable.
func Split(doc *models.PRDDocument, available []models.AgentType) ([]models.TaskGroup, error) {
	if len(available) == 0 {
		return nil, ErrNoAgentsAvailable
	}
	agents := available

	g := graph.New()
	byID := make(map[string]models.PRDUserStory, len(doc.UserStories))
	dependsOn := make(map[string][]string, len(doc.UserStories))
	for _, s := range doc.UserStories {
		byID[s.ID] = s
		dependsOn[s.ID] = s.DependsOn
	}
	if err := g.Build(dependsOn); err != nil {
		return nil, err
	}

	ordered := append([]models.PRDUserStory(nil), doc.UserStories...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Priority.Weight() > ordered[j].Priority.Weight()
	})

	assigned := make(map[string]bool, len(doc.UserStories))
	var groups []models.TaskGroup
	roundRobin := 0

	for _, seed := range ordered {
		if assigned[seed.ID] {
			continue
		}

		memberIDs := g.TransitiveClosure(seed.ID)
		sort.Strings(memberIDs)

		complexity := 0
		maxPriority := seed.Priority
		for _, id := range memberIDs {
			assigned[id] = true
			member := byID[id]
			complexity += member.Priority.Weight()
			if member.Priority.Weight() > maxPriority.Weight() {
				maxPriority = member.Priority
			}
		}

		preferred := choosePreferredAgent(maxPriority, agents, &roundRobin)

		groups = append(groups, models.TaskGroup{
			ID:                  seed.ID,
			PreferredAgent:      preferred,
			StoryIDs:            memberIDs,
			EstimatedComplexity: complexity,
		})
	}

	return groups, nil
}

func choosePreferredAgent(priority models.Priority, agents []models.AgentType, roundRobin *int) models.AgentType {
	switch priority {
	case models.PriorityCritical:
		if contains(agents, models.AgentClaude) {
			return models.AgentClaude
		}
		return agents[0]
	case models.PriorityHigh:
		highPriorityAgents := without(agents, models.AgentCodex)
		if len(highPriorityAgents) == 0 {
			highPriorityAgents = agents
		}
		agent := highPriorityAgents[*roundRobin%len(highPriorityAgents)]
		*roundRobin++
		return agent
	default: // medium, low
		if contains(agents, models.AgentCodex) {
			return models.AgentCodex
		}
		return agents[0]
	}
}

func contains(agents []models.AgentType, target models.AgentType) bool {
	for _, a := range agents {
		if a == target {
			return true
		}
	}
	return false
}

func without(agents []models.AgentType, exclude models.AgentType) []models.AgentType {
	out := make([]models.AgentType, 0, len(agents))
	for _, a := range agents {
		if a != exclude {
			out = append(out, a)
		}
	}
	return out
}
