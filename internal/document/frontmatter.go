package document

import "time"

// Frontmatter is the typed, recognized set of YAML frontmatter keys. Field
// order matches the canonical emission order used when re-serializing
// (frontmatter-only writes and full-document writes preserve this order).
type Frontmatter struct {
	LatticeID      string     `yaml:"lattice-id"`
	Name           string     `yaml:"name"`
	Description    string     `yaml:"description"`
	ParentID       string     `yaml:"parent-id,omitempty"`
	TaskType       string     `yaml:"task-type,omitempty"`
	Priority       *int       `yaml:"priority,omitempty"`
	Labels         []string   `yaml:"labels,omitempty"`
	CreatedAt      *time.Time `yaml:"created-at,omitempty"`
	UpdatedAt      *time.Time `yaml:"updated-at,omitempty"`
	ClosedAt       *time.Time `yaml:"closed-at,omitempty"`
	Skill          *bool      `yaml:"skill,omitempty"`
	BlockedBy      []string   `yaml:"blocked-by,omitempty"`
	Blocking       []string   `yaml:"blocking,omitempty"`
	DiscoveredFrom []string   `yaml:"discovered-from,omitempty"`
}

// knownKeys lists every recognized frontmatter YAML key, used to detect and
// diagnose unknown keys during parse.
var knownKeys = []string{
	"lattice-id", "name", "description", "parent-id", "task-type",
	"priority", "labels", "created-at", "updated-at", "closed-at",
	"skill", "blocked-by", "blocking", "discovered-from",
}

// IsTaskDocument reports whether the frontmatter describes a task document
// (has a non-empty task-type) rather than a knowledge document.
func (f *Frontmatter) IsTaskDocument() bool {
	return f.TaskType != ""
}

var validTaskTypes = map[string]bool{
	"bug": true, "feature": true, "task": true, "chore": true,
}

// ValidTaskType reports whether s is one of the recognized task-type values.
func ValidTaskType(s string) bool {
	return validTaskTypes[s]
}
