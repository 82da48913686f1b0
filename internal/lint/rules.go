package lint

import (
	"context"
	"fmt"
	"strings"

	"github.com/latticehq/lattice/internal/document"
	"github.com/latticehq/lattice/internal/index"
	"github.com/latticehq/lattice/internal/latticeid"
)

// AllRules returns the full set of error-level rules (E001-E012), per
// spec 4.8. Warning-level rules are registered separately by callers that
// want them, since they're advisory and often noisy on legacy trees.
func AllRules() []Rule {
	return []Rule{
		DuplicateIDRule{},
		MissingReferenceRule{},
		InvalidKeyRule{},
		MissingPriorityRule{},
		InvalidFieldValueRule{},
		CircularBlockingRule{},
		InvalidIDFormatRule{},
		NameMismatchRule{},
		MissingNameRule{},
		MissingDescriptionRule{},
		NestedClosedRule{},
		NonTaskInClosedRule{},
	}
}

// DuplicateIDRule is E001: two or more documents share the same Lattice ID.
type DuplicateIDRule struct{}

func (DuplicateIDRule) Codes() []string   { return []string{"E001"} }
func (DuplicateIDRule) Name() string      { return "duplicate-id" }
func (DuplicateIDRule) RequiresBody() bool { return false }

func (DuplicateIDRule) Check(ctx context.Context, doc Document, lctx *Context) []Result {
	rows, err := index.List(ctx, lctx.Queryer, index.DocumentFilter{})
	if err != nil {
		return nil
	}
	var otherPaths []string
	for _, row := range rows {
		if row.ID == doc.Row.ID && row.Path != doc.Row.Path {
			otherPaths = append(otherPaths, row.Path)
		}
	}
	if len(otherPaths) == 0 {
		return nil
	}
	message := fmt.Sprintf("Duplicate Lattice ID %s found in: %s", doc.Row.ID, strings.Join(otherPaths, ", "))
	return []Result{errorResult("E001", doc.Row.Path, message)}
}

// MissingReferenceRule is E002: a link references an ID that doesn't exist.
type MissingReferenceRule struct{}

func (MissingReferenceRule) Codes() []string   { return []string{"E002"} }
func (MissingReferenceRule) Name() string      { return "missing-reference" }
func (MissingReferenceRule) RequiresBody() bool { return false }

func (MissingReferenceRule) Check(ctx context.Context, doc Document, lctx *Context) []Result {
	links, err := index.ForwardLinks(ctx, lctx.Queryer, doc.Row.ID)
	if err != nil {
		return nil
	}
	var results []Result
	for _, link := range links {
		if !lctx.DocumentExists(ctx, link.TargetID) {
			results = append(results, errorResult("E002", doc.Row.Path, fmt.Sprintf("links to unknown ID %s", link.TargetID)))
		}
	}
	return results
}

// InvalidKeyRule is E003: YAML frontmatter contains an unrecognized key.
type InvalidKeyRule struct{}

func (InvalidKeyRule) Codes() []string   { return []string{"E003"} }
func (InvalidKeyRule) Name() string      { return "invalid-key" }
func (InvalidKeyRule) RequiresBody() bool { return true }

func (InvalidKeyRule) Check(_ context.Context, doc Document, _ *Context) []Result {
	if doc.Parsed == nil {
		return nil
	}
	var results []Result
	for _, uk := range doc.Parsed.UnknownKeys {
		message := fmt.Sprintf("has invalid frontmatter key '%s'", uk.Key)
		if uk.Suggestion != "" {
			message = fmt.Sprintf("%s (did you mean '%s'?)", message, uk.Suggestion)
		}
		results = append(results, errorResult("E003", doc.Row.Path, message).WithLine(uk.Line))
	}
	return results
}

// MissingPriorityRule is E004: a task document lacks a priority field.
type MissingPriorityRule struct{}

func (MissingPriorityRule) Codes() []string   { return []string{"E004"} }
func (MissingPriorityRule) Name() string      { return "missing-priority" }
func (MissingPriorityRule) RequiresBody() bool { return false }

func (MissingPriorityRule) Check(_ context.Context, doc Document, _ *Context) []Result {
	if doc.Row.TaskType == "" {
		return nil
	}
	if doc.Row.Priority == nil {
		return []Result{errorResult("E004", doc.Row.Path, "is a task but missing 'priority' field")}
	}
	return nil
}

// InvalidFieldValueRule is E005: a field contains an out-of-range value.
type InvalidFieldValueRule struct{}

func (InvalidFieldValueRule) Codes() []string   { return []string{"E005"} }
func (InvalidFieldValueRule) Name() string      { return "invalid-field-value" }
func (InvalidFieldValueRule) RequiresBody() bool { return false }

func (InvalidFieldValueRule) Check(_ context.Context, doc Document, _ *Context) []Result {
	if doc.Row.Priority == nil {
		return nil
	}
	p := *doc.Row.Priority
	if p < document.MinPriority || p > document.MaxPriority {
		message := fmt.Sprintf("has invalid priority '%d' (allowed: %d-%d)", p, document.MinPriority, document.MaxPriority)
		return []Result{errorResult("E005", doc.Row.Path, message)}
	}
	return nil
}

// CircularBlockingRule is E006: blocked-by dependencies form a cycle.
// Reported once, on the lexicographically-first document in the cycle.
type CircularBlockingRule struct{}

func (CircularBlockingRule) Codes() []string   { return []string{"E006"} }
func (CircularBlockingRule) Name() string      { return "circular-blocking" }
func (CircularBlockingRule) RequiresBody() bool { return false }

func (CircularBlockingRule) Check(ctx context.Context, doc Document, lctx *Context) []Result {
	graph, err := BuildDependencyGraph(ctx, lctx.Queryer)
	if err != nil {
		return nil
	}
	cycle := graph.DetectCycle()
	if !cycle.HasCycle || len(cycle.InvolvedIDs) == 0 {
		return nil
	}
	if cycle.InvolvedIDs[0] != doc.Row.ID {
		return nil
	}
	message := fmt.Sprintf("Circular blocking dependency: %s", cycle.CyclePath)
	return []Result{errorResult("E006", doc.Row.Path, message)}
}

// InvalidIDFormatRule is E007: a document's own Lattice ID is malformed.
type InvalidIDFormatRule struct{}

func (InvalidIDFormatRule) Codes() []string   { return []string{"E007"} }
func (InvalidIDFormatRule) Name() string      { return "invalid-id-format" }
func (InvalidIDFormatRule) RequiresBody() bool { return false }

func (InvalidIDFormatRule) Check(_ context.Context, doc Document, _ *Context) []Result {
	if !latticeid.Valid(doc.Row.ID) {
		return []Result{errorResult("E007", doc.Row.Path, fmt.Sprintf("has malformed lattice-id '%s'", doc.Row.ID))}
	}
	return nil
}

// NameMismatchRule is E008: the name field doesn't match the derived filename.
type NameMismatchRule struct{}

func (NameMismatchRule) Codes() []string   { return []string{"E008"} }
func (NameMismatchRule) Name() string      { return "name-mismatch" }
func (NameMismatchRule) RequiresBody() bool { return false }

func (NameMismatchRule) Check(_ context.Context, doc Document, _ *Context) []Result {
	expected := document.DeriveNameFromPath(doc.Row.Path)
	if expected == "" || doc.Row.Name == expected {
		return nil
	}
	message := fmt.Sprintf("has name '%s' but should be '%s' (derived from filename)", doc.Row.Name, expected)
	return []Result{errorResult("E008", doc.Row.Path, message)}
}

// MissingNameRule is E009: a document lacks a name field.
type MissingNameRule struct{}

func (MissingNameRule) Codes() []string   { return []string{"E009"} }
func (MissingNameRule) Name() string      { return "missing-name" }
func (MissingNameRule) RequiresBody() bool { return false }

func (MissingNameRule) Check(_ context.Context, doc Document, _ *Context) []Result {
	if doc.Row.Name == "" {
		return []Result{errorResult("E009", doc.Row.Path, "is missing required 'name' field")}
	}
	return nil
}

// MissingDescriptionRule is E010: a document lacks a description field.
type MissingDescriptionRule struct{}

func (MissingDescriptionRule) Codes() []string   { return []string{"E010"} }
func (MissingDescriptionRule) Name() string      { return "missing-description" }
func (MissingDescriptionRule) RequiresBody() bool { return false }

func (MissingDescriptionRule) Check(_ context.Context, doc Document, _ *Context) []Result {
	if doc.Row.Description == "" {
		return []Result{errorResult("E010", doc.Row.Path, "is missing required 'description' field")}
	}
	return nil
}

// NestedClosedRule is E011: a .closed/ directory contains a nested .closed/.
type NestedClosedRule struct{}

func (NestedClosedRule) Codes() []string   { return []string{"E011"} }
func (NestedClosedRule) Name() string      { return "nested-closed" }
func (NestedClosedRule) RequiresBody() bool { return false }

func (NestedClosedRule) Check(_ context.Context, doc Document, _ *Context) []Result {
	if strings.Count(doc.Row.Path, "/.closed/") > 1 {
		return []Result{errorResult("E011", doc.Row.Path, "is in a nested closed directory")}
	}
	return nil
}

// NonTaskInClosedRule is E012: a knowledge document (no task-type) is
// filed under a .closed/ directory, which only task documents use.
type NonTaskInClosedRule struct{}

func (NonTaskInClosedRule) Codes() []string   { return []string{"E012"} }
func (NonTaskInClosedRule) Name() string      { return "non-task-in-closed" }
func (NonTaskInClosedRule) RequiresBody() bool { return false }

func (NonTaskInClosedRule) Check(_ context.Context, doc Document, _ *Context) []Result {
	if !strings.Contains(doc.Row.Path, "/.closed/") && !strings.HasPrefix(doc.Row.Path, ".closed/") {
		return nil
	}
	if doc.Row.TaskType == "" {
		return []Result{errorResult("E012", doc.Row.Path, "is a knowledge base document in closed directory")}
	}
	return nil
}
