package models

// SkillOrigin identifies whether a skill came from the bundled set or a
// user-provided override.
type SkillOrigin string

const (
	SkillOriginBundled SkillOrigin = "bundled"
	SkillOriginUser    SkillOrigin = "user"
)

// Skill is a named, versioned prompt template selectable by category and
// per-CLI compatibility. The prompt template contains a {{context}}
// placeholder filled in by the caller.
type Skill struct {
	ID              string      `json:"id"`
	Name            string      `json:"name"`
	Description     string      `json:"description"`
	PromptTemplate  string      `json:"promptTemplate"`
	RequiredTools   []string    `json:"requiredTools,omitempty"`
	Version         string      `json:"version"`
	CompatibleCLIs  []AgentType `json:"compatibleCLIs,omitempty"`
	Category        string      `json:"category,omitempty"`
	Author          string      `json:"author,omitempty"`
	Origin          SkillOrigin `json:"origin"`
}

// CompatibleWith reports whether the skill may be used with the given agent
// type. An empty CompatibleCLIs set means "all agents".
func (s Skill) CompatibleWith(agent AgentType) bool {
	if len(s.CompatibleCLIs) == 0 {
		return true
	}
	for _, a := range s.CompatibleCLIs {
		if a == agent {
			return true
		}
	}
	return false
}
