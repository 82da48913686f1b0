// Package lint implements the rule engine described in spec 4.8: a
// registry of checks that run over indexed documents (and, for rules
// that need it, their parsed body) and produce error/warning findings.
package lint

import (
	"context"

	"github.com/latticehq/lattice/internal/document"
	"github.com/latticehq/lattice/internal/index"
)

// Severity classifies a Result as advisory or blocking.
type Severity string

const (
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// IsError reports whether s blocks operations.
func (s Severity) IsError() bool { return s == SeverityError }

// Result is a single finding from one rule against one document.
type Result struct {
	Code     string
	Severity Severity
	Path     string
	Line     *int
	Message  string
}

// WithLine returns a copy of r annotated with a 1-indexed line number.
func (r Result) WithLine(line int) Result {
	r.Line = &line
	return r
}

func errorResult(code, path, message string) Result {
	return Result{Code: code, Severity: SeverityError, Path: path, Message: message}
}

func warningResult(code, path, message string) Result {
	return Result{Code: code, Severity: SeverityWarning, Path: path, Message: message}
}

// Summary aggregates every Result from a lint run.
type Summary struct {
	DocumentsChecked  int
	ErrorCount        int
	WarningCount      int
	AffectedDocuments int
	Results           []Result
}

// HasErrors reports whether the run found any error-severity issue.
func (s Summary) HasErrors() bool { return s.ErrorCount > 0 }

// IsClean reports whether the run found nothing at all.
func (s Summary) IsClean() bool { return s.ErrorCount == 0 && s.WarningCount == 0 }

// Config controls which documents and severities a run reports.
type Config struct {
	ErrorsOnly bool
	PathPrefix string
}

// Context gives rules read access to the index and the repository root,
// so cross-document checks (duplicate IDs, missing references, cycles)
// can run without each rule re-opening the database.
type Context struct {
	Queryer  index.Queryer
	RepoRoot string
}

// LookupDocument returns id's indexed row, or nil if it isn't known.
// Lookup failures other than "not found" are treated the same way: rules
// need a boolean existence answer, not a reason to abort the whole run.
func (c *Context) LookupDocument(ctx context.Context, id string) *index.DocumentRow {
	row, err := index.GetDocument(ctx, c.Queryer, id)
	if err != nil {
		return nil
	}
	return row
}

func (c *Context) DocumentExists(ctx context.Context, id string) bool {
	return c.LookupDocument(ctx, id) != nil
}

// Document pairs a document's indexed metadata with its optional parsed
// body. Rules that only need metadata run without ever touching the
// filesystem; rules that set RequiresBody get Parsed populated when the
// file could be read.
type Document struct {
	Row      index.DocumentRow
	Parsed   *document.Document
	ReadErr  error
}

// Rule is one lint check.
type Rule interface {
	Codes() []string
	Name() string
	RequiresBody() bool
	Check(ctx context.Context, doc Document, lctx *Context) []Result
}
