// Package action tracks which actions are available per CLI agent,
// including user-registered custom actions.
package action

import (
	"sort"
	"sync"

	"github.com/crossroads-cli/crossroads/pkg/models"
)

// Registry holds per-CLI action overrides and custom action definitions. It
// is safe for concurrent use; all state mutation is serialized under a
// single mutex, matching the rest of crossroads' actor-style components.
type Registry struct {
	mu        sync.Mutex
	overrides map[models.AgentType][]models.ActionType
	custom    map[string]models.CustomAction
}

// NewRegistry returns an empty action registry.
func NewRegistry() *Registry {
	return &Registry{
		overrides: make(map[models.AgentType][]models.ActionType),
		custom:    make(map[string]models.CustomAction),
	}
}

// Actions returns the action set available for a given CLI: its override
// set, sorted by raw value, if one was registered, else every built-in
// action type.
func (r *Registry) Actions(cli models.AgentType) []models.ActionType {
	r.mu.Lock()
	defer r.mu.Unlock()

	if override, ok := r.overrides[cli]; ok {
		out := append([]models.ActionType(nil), override...)
		sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
		return out
	}
	return models.BuiltinActionTypes()
}

// SetActions overrides the action set for a CLI.
func (r *Registry) SetActions(cli models.AgentType, actions []models.ActionType) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.overrides[cli] = append([]models.ActionType(nil), actions...)
}

// IsActionAvailable reports whether the given action type may run under the
// given CLI. For models.ActionCustom this is true iff at least one custom
// action has been registered, regardless of CLI.
func (r *Registry) IsActionAvailable(actionType models.ActionType, cli models.AgentType) bool {
	if actionType == models.ActionCustom {
		r.mu.Lock()
		defer r.mu.Unlock()
		return len(r.custom) > 0
	}
	for _, a := range r.Actions(cli) {
		if a == actionType {
			return true
		}
	}
	return false
}

// RegisterCustomAction adds or replaces a custom action, keyed by id.
// Registration is idempotent: registering the same id again replaces the
// prior definition rather than duplicating it.
func (r *Registry) RegisterCustomAction(a models.CustomAction) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.custom[a.ID] = a
}

// CustomActions returns every registered custom action, sorted by id.
func (r *Registry) CustomActions() []models.CustomAction {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]models.CustomAction, 0, len(r.custom))
	for _, a := range r.custom {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Reset clears both CLI overrides and custom actions.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.overrides = make(map[models.AgentType][]models.ActionType)
	r.custom = make(map[string]models.CustomAction)
}
