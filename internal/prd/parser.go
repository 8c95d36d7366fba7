// Package prd decodes and validates Product Requirements Documents.
package prd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/crossroads-cli/crossroads/internal/graph"
	"github.com/crossroads-cli/crossroads/pkg/models"
)

// ErrFileNotFound indicates the PRD file could not be read.
type ErrFileNotFound struct {
	Path  string
	Cause error
}

func (e *ErrFileNotFound) Error() string {
	return fmt.Sprintf("PRD file not found: %s: %v", e.Path, e.Cause)
}

func (e *ErrFileNotFound) Unwrap() error { return e.Cause }

// ErrInvalidData indicates the PRD file is not valid JSON or does not match
// the expected schema.
type ErrInvalidData struct {
	Cause error
}

func (e *ErrInvalidData) Error() string {
	return fmt.Sprintf("invalid PRD data: %v", e.Cause)
}

func (e *ErrInvalidData) Unwrap() error { return e.Cause }

// ErrDuplicateStoryID indicates two user stories share an id.
type ErrDuplicateStoryID struct {
	ID string
}

func (e *ErrDuplicateStoryID) Error() string {
	return fmt.Sprintf("duplicate story id: %s", e.ID)
}

// ErrMissingDependency indicates a story depends on an id not present in
// the PRD.
type ErrMissingDependency struct {
	Story      string
	Dependency string
}

func (e *ErrMissingDependency) Error() string {
	return fmt.Sprintf("story %s depends on missing story %s", e.Story, e.Dependency)
}

// ErrUnsupportedPriority indicates a story's priority value is not one of
// the closed set.
type ErrUnsupportedPriority struct {
	Value string
}

func (e *ErrUnsupportedPriority) Error() string {
	return fmt.Sprintf("unsupported priority: %q", e.Value)
}

// ErrCircularDependency indicates the dependency graph has a cycle. Cycle
// begins and ends at the re-encountered node.
type ErrCircularDependency struct {
	Cycle []string
}

func (e *ErrCircularDependency) Error() string {
	return fmt.Sprintf("circular dependency: %v", e.Cycle)
}

// rawDocument mirrors the PRD JSON wire format (snake_case keys).
type rawDocument struct {
	FeatureName    string      `json:"feature_name"`
	Description    string      `json:"description"`
	TemplateType   string      `json:"template_type"`
	UserStories    []rawStory  `json:"user_stories"`
	Vision         string      `json:"vision"`
	SuccessMetrics []string    `json:"success_metrics"`
}

type rawStory struct {
	ID                  string   `json:"id"`
	Title               string   `json:"title"`
	Description         string   `json:"description"`
	Priority            string   `json:"priority"`
	DependsOn           []string `json:"depends_on"`
	AcceptanceCriteria  []string `json:"acceptance_criteria"`
	EstimatedComplexity int      `json:"estimated_complexity"`
	UnitTest            string   `json:"unit_test"`
}

// ParseFile reads and validates a PRD document from the given path.
func ParseFile(path string) (*models.PRDDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ErrFileNotFound{Path: path, Cause: err}
	}
	return Parse(data)
}

// Parse decodes and validates a PRD document from raw JSON bytes.
//
// Validation order: first every story's id is checked for uniqueness and
// its priority for parsability; then every dependsOn target is confirmed to
// exist; then a DFS cycle check runs over the full dependency graph. This
// is a pure function: byte-identical input yields equal documents.
func Parse(data []byte) (*models.PRDDocument, error) {
	var raw rawDocument
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &ErrInvalidData{Cause: err}
	}

	seen := make(map[string]bool, len(raw.UserStories))
	stories := make([]models.PRDUserStory, 0, len(raw.UserStories))

	for _, rs := range raw.UserStories {
		if seen[rs.ID] {
			return nil, &ErrDuplicateStoryID{ID: rs.ID}
		}
		seen[rs.ID] = true

		priority, ok := models.ParsePriority(rs.Priority)
		if !ok {
			return nil, &ErrUnsupportedPriority{Value: rs.Priority}
		}

		stories = append(stories, models.PRDUserStory{
			ID:                  rs.ID,
			Title:               rs.Title,
			Description:         rs.Description,
			Priority:            priority,
			DependsOn:           rs.DependsOn,
			AcceptanceCriteria:  rs.AcceptanceCriteria,
			EstimatedComplexity: rs.EstimatedComplexity,
			UnitTest:            rs.UnitTest,
		})
	}

	for _, s := range stories {
		for _, dep := range s.DependsOn {
			if !seen[dep] {
				return nil, &ErrMissingDependency{Story: s.ID, Dependency: dep}
			}
		}
	}

	g := graph.New()
	dependsOn := make(map[string][]string, len(stories))
	for _, s := range stories {
		dependsOn[s.ID] = s.DependsOn
	}
	if err := g.Build(dependsOn); err != nil {
		cycle, _ := g.DetectCycle()
		return nil, &ErrCircularDependency{Cycle: cycle}
	}

	return &models.PRDDocument{
		FeatureName:    raw.FeatureName,
		Description:    raw.Description,
		TemplateType:   raw.TemplateType,
		UserStories:    stories,
		Vision:         raw.Vision,
		SuccessMetrics: raw.SuccessMetrics,
	}, nil
}
