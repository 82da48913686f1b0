// Package latticeerr defines the typed error taxonomy shared across the
// Lattice engine. Every engine-level failure is one of these kinds so
// callers (CLI, lint, tests) can branch on errors.Is without parsing
// message text.
package latticeerr

import (
	"errors"
	"fmt"
)

// Kind enumerates the error taxonomy.
type Kind string

const (
	DocumentNotFound     Kind = "document_not_found"
	InvalidArgument      Kind = "invalid_argument"
	ConflictingOptions   Kind = "conflicting_options"
	ReadError            Kind = "read_error"
	WriteError           Kind = "write_error"
	ConfigParseError     Kind = "config_parse_error"
	DatabaseError        Kind = "database_error"
	OperationNotAllowed  Kind = "operation_not_allowed"
	RootDocumentNotFound Kind = "root_document_not_found"
	FmtErrors            Kind = "fmt_errors"
	FmtCheckFailed       Kind = "fmt_check_failed"
)

// Error carries a Kind plus structured context (paths, ids, reasons).
type Error struct {
	Kind    Kind
	Path    string
	ID      string
	Reason  string
	Wrapped error
}

func (e *Error) Error() string {
	msg := string(e.Kind)
	if e.ID != "" {
		msg += fmt.Sprintf(" id=%s", e.ID)
	}
	if e.Path != "" {
		msg += fmt.Sprintf(" path=%s", e.Path)
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Wrapped != nil {
		msg += ": " + e.Wrapped.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Wrapped }

// Is allows errors.Is(err, latticeerr.New(Kind)) to match on Kind alone.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return t.Kind == e.Kind
	}
	return false
}

// New builds a bare sentinel-like error of the given kind, useful with errors.Is.
func New(kind Kind) *Error { return &Error{Kind: kind} }

// Newf builds an error of the given kind with a formatted reason.
func Newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Reason: fmt.Sprintf(format, args...)}
}

// Wrap attaches a kind and reason to an underlying error.
func Wrap(kind Kind, reason string, err error) *Error {
	return &Error{Kind: kind, Reason: reason, Wrapped: err}
}

// WithPath returns a copy of the error annotated with a file path.
func (e *Error) WithPath(path string) *Error {
	c := *e
	c.Path = path
	return &c
}

// WithID returns a copy of the error annotated with a lattice id.
func (e *Error) WithID(id string) *Error {
	c := *e
	c.ID = id
	return &c
}

// KindOf extracts the Kind of err, if it is (or wraps) a *Error.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}
