// Package skill loads and serves the built-in and user-provided prompt
// skills agents draw on when given an action to perform.
package skill

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/crossroads-cli/crossroads/pkg/models"
)

//go:embed bundled/manifest.yaml
var bundledManifest []byte

// manifestEntry mirrors one skill entry in the bundled YAML manifest.
type manifestEntry struct {
	ID             string            `yaml:"id"`
	Name           string            `yaml:"name"`
	Description    string            `yaml:"description"`
	Category       string            `yaml:"category"`
	RequiredTools  []string          `yaml:"requiredTools"`
	PromptTemplate string            `yaml:"promptTemplate"`
	CompatibleCLIs []models.AgentType `yaml:"compatibleCLIs"`
}

type manifest struct {
	Skills []manifestEntry `yaml:"skills"`
}

// LoadError records one user skill file that failed to parse during
// initialize or reload.
type LoadError struct {
	Path string
	Err  error
}

func (e LoadError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

// Registry serves the merged bundled + user skill set. It behaves as a
// single-threaded actor: Initialize and Reload replace its state wholesale
// under a mutex; queries take a read lock.
type Registry struct {
	mu         sync.RWMutex
	skills     map[string]models.Skill
	loadErrors []LoadError
	userDir    string
}

// NewRegistry returns a registry that will scan userDir for
// "*.skill.json" overrides on Initialize/Reload. userDir is typically
// "~/.xroads/skills".
func NewRegistry(userDir string) *Registry {
	return &Registry{userDir: userDir}
}

// Initialize loads the bundled skill set, then overlays user skill files
// found in the registry's user directory. Malformed user files are
// recorded as load errors but never abort initialization.
func (r *Registry) Initialize() error {
	return r.load()
}

// Reload wipes the current state and re-runs Initialize.
func (r *Registry) Reload() error {
	return r.load()
}

func (r *Registry) load() error {
	var m manifest
	if err := yaml.Unmarshal(bundledManifest, &m); err != nil {
		return fmt.Errorf("parse bundled skill manifest: %w", err)
	}

	skills := make(map[string]models.Skill, len(m.Skills))
	for _, e := range m.Skills {
		skills[e.ID] = models.Skill{
			ID:             e.ID,
			Name:           e.Name,
			Description:    e.Description,
			PromptTemplate: e.PromptTemplate,
			RequiredTools:  e.RequiredTools,
			Version:        "1",
			CompatibleCLIs: e.CompatibleCLIs,
			Category:       e.Category,
			Origin:         models.SkillOriginBundled,
		}
	}

	var loadErrors []LoadError
	matches, _ := filepath.Glob(filepath.Join(r.userDir, "*.skill.json"))
	sort.Strings(matches)
	for _, path := range matches {
		data, err := os.ReadFile(path)
		if err != nil {
			loadErrors = append(loadErrors, LoadError{Path: path, Err: err})
			continue
		}
		var s models.Skill
		if err := json.Unmarshal(data, &s); err != nil {
			loadErrors = append(loadErrors, LoadError{Path: path, Err: err})
			continue
		}
		s.Origin = models.SkillOriginUser
		skills[s.ID] = s
	}

	r.mu.Lock()
	r.skills = skills
	r.loadErrors = loadErrors
	r.mu.Unlock()

	return nil
}

// GetLoadErrors returns the user-skill parse failures from the most recent
// Initialize/Reload.
func (r *Registry) GetLoadErrors() []LoadError {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]LoadError(nil), r.loadErrors...)
}

// ByID returns the skill with the given id.
func (r *Registry) ByID(id string) (models.Skill, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.skills[id]
	return s, ok
}

// ByIDs returns the skills matching the given ids, in id-ascending order,
// skipping any id that is not registered.
func (r *Registry) ByIDs(ids []string) []models.Skill {
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	return filterSorted(r.all(), func(s models.Skill) bool { return want[s.ID] })
}

// ByCLI returns every skill compatible with the given agent type, sorted by
// id.
func (r *Registry) ByCLI(agent models.AgentType) []models.Skill {
	return filterSorted(r.all(), func(s models.Skill) bool { return s.CompatibleWith(agent) })
}

// ByCategory returns every skill in the given category, sorted by id.
func (r *Registry) ByCategory(category string) []models.Skill {
	return filterSorted(r.all(), func(s models.Skill) bool { return s.Category == category })
}

// All returns every registered skill, sorted by id.
func (r *Registry) All() []models.Skill {
	return filterSorted(r.all(), func(models.Skill) bool { return true })
}

func (r *Registry) all() []models.Skill {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.Skill, 0, len(r.skills))
	for _, s := range r.skills {
		out = append(out, s)
	}
	return out
}

func filterSorted(skills []models.Skill, keep func(models.Skill) bool) []models.Skill {
	out := make([]models.Skill, 0, len(skills))
	for _, s := range skills {
		if keep(s) {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
