package models

// ActionType is the closed set of built-in actions a CLI agent can perform.
type ActionType string

const (
	ActionImplement       ActionType = "implement"
	ActionReview          ActionType = "review"
	ActionIntegrationTest ActionType = "integrationTest"
	ActionWrite           ActionType = "write"
	ActionCustom          ActionType = "custom"
)

// Valid returns true if the action type is a known value.
func (a ActionType) Valid() bool {
	switch a {
	case ActionImplement, ActionReview, ActionIntegrationTest, ActionWrite, ActionCustom:
		return true
	default:
		return false
	}
}

// ActionCategory tags an action's general purpose.
type ActionCategory string

const (
	CategoryCode   ActionCategory = "code"
	CategoryReview ActionCategory = "review"
	CategoryTest   ActionCategory = "test"
	CategoryDocs   ActionCategory = "docs"
	CategoryOther  ActionCategory = "other"
)

// Category returns the category tag for a built-in action type.
func (a ActionType) Category() ActionCategory {
	switch a {
	case ActionImplement, ActionWrite:
		return CategoryCode
	case ActionReview:
		return CategoryReview
	case ActionIntegrationTest:
		return CategoryTest
	case ActionCustom:
		return CategoryOther
	default:
		return CategoryOther
	}
}

// BuiltinActionTypes returns the enumerated ActionType values except custom,
// sorted by raw value.
func BuiltinActionTypes() []ActionType {
	return []ActionType{ActionImplement, ActionIntegrationTest, ActionReview, ActionWrite}
}

// CustomAction is a user-registered action not among the built-ins.
type CustomAction struct {
	ID              string      `json:"id"`
	Name            string      `json:"name"`
	Description     string      `json:"description"`
	IconHint        string      `json:"iconHint,omitempty"`
	RequiredSkills  []string    `json:"requiredSkills,omitempty"`
	CompatibleCLIs  []AgentType `json:"compatibleCLIs,omitempty"`
}

// CompatibleWith reports whether the action may run under the given agent
// type. An empty CompatibleCLIs set means "all agents".
func (c CustomAction) CompatibleWith(agent AgentType) bool {
	if len(c.CompatibleCLIs) == 0 {
		return true
	}
	for _, a := range c.CompatibleCLIs {
		if a == agent {
			return true
		}
	}
	return false
}
