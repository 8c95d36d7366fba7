// Package brief renders the AGENT.md document handed to a launched agent.
package brief

import (
	"strings"
	"text/template"

	"github.com/crossroads-cli/crossroads/pkg/models"
)

const briefTemplate = `# {{.FeatureName}} — Agent Session

## Session Overview
- Feature: {{.FeatureName}}
- Branch: {{.BranchName}}
- Worktree: {{.WorktreePath}}
- Stories: {{.StoryIDList}}

## Stories
{{range .Stories}}
### {{.ID}}: {{.Title}}
- Priority: {{.Priority}}
{{- if .DependsOn}}
- Depends on: {{join .DependsOn}}
{{- end}}
{{if .Description}}
{{.Description}}
{{- end}}
{{end}}
## Coordination
- Log progress and blockers to ` + "`notes/decisions.md`, `notes/learnings.md`, `notes/blockers.md`" + ` in this worktree.
- Write a status snapshot to ` + "`.crossroads-status.json`" + ` in this worktree whenever your state changes.
- Treat files outside your assigned stories as shared: avoid touching them unless a story requires it, and note it in ` + "`notes/decisions.md`" + ` when you do.
- If you are blocked, record it in ` + "`notes/blockers.md`" + ` and set status to blocked rather than guessing.

## Completion Criteria
Every story above satisfies its acceptance criteria and the worktree is in a committed, mergeable state.

{{.Instructions}}
`

// StoryView is the per-story data the template renders.
type StoryView struct {
	ID          string
	Title       string
	Priority    models.Priority
	DependsOn   []string
	Description string
}

// Data is the full set of values the brief template consumes.
type Data struct {
	FeatureName  string
	BranchName   string
	WorktreePath string
	Stories      []StoryView
	Instructions string
}

// StoryIDList renders the session overview's comma-separated story list.
func (d Data) StoryIDList() string {
	ids := make([]string, len(d.Stories))
	for i, s := range d.Stories {
		ids[i] = s.ID
	}
	return strings.Join(ids, ", ")
}

var tmpl = template.Must(template.New("brief").Funcs(template.FuncMap{
	"join": func(ss []string) string { return strings.Join(ss, ", ") },
}).Parse(briefTemplate))

// ForAssignment builds brief Data from a worktree assignment, its PRD and
// caller-supplied launch instructions.
func ForAssignment(assignment models.WorktreeAssignment, doc *models.PRDDocument, instructions string) Data {
	stories := make([]StoryView, 0, len(assignment.TaskGroup.StoryIDs))
	for _, id := range assignment.TaskGroup.StoryIDs {
		story, ok := doc.StoryByID(id)
		if !ok {
			continue
		}
		stories = append(stories, StoryView{
			ID:          story.ID,
			Title:       story.Title,
			Priority:    story.Priority,
			DependsOn:   story.DependsOn,
			Description: story.Description,
		})
	}

	return Data{
		FeatureName:  doc.FeatureName,
		BranchName:   assignment.BranchName,
		WorktreePath: assignment.WorktreePath,
		Stories:      stories,
		Instructions: instructions,
	}
}

// Render executes the brief template and trims surrounding whitespace from
// the result.
func Render(data Data) (string, error) {
	var buf strings.Builder
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return strings.TrimSpace(buf.String()), nil
}
