package index

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/latticehq/lattice/internal/latticeerr"
)

// FieldState is the three-state partial-update semantics described in
// spec 9 ("source uses Option<Option<T>>"): a field is either left
// Unchanged, explicitly Cleared to NULL, or Set to a new value.
type FieldState[T any] struct {
	state fieldState
	value T
}

type fieldState int

const (
	unchanged fieldState = iota
	cleared
	set
)

// Unchanged returns a FieldState that leaves the column untouched.
func Unchanged[T any]() FieldState[T] { return FieldState[T]{state: unchanged} }

// Clear returns a FieldState that sets the column to NULL.
func Clear[T any]() FieldState[T] { return FieldState[T]{state: cleared} }

// Set returns a FieldState that sets the column to v.
func Set[T any](v T) FieldState[T] { return FieldState[T]{state: set, value: v} }

// IsUnchanged reports whether the field should be left alone.
func (f FieldState[T]) IsUnchanged() bool { return f.state == unchanged }

// IsClear reports whether the field should be set to NULL.
func (f FieldState[T]) IsClear() bool { return f.state == cleared }

// Value returns the value to set, valid only when state is Set.
func (f FieldState[T]) Value() T { return f.value }

// UpdateBuilder captures a partial update to a document row: unset fields
// mean "leave unchanged", Clear() fields mean "set to NULL", and Set()
// fields mean "set to this value" (spec 4.3, 9).
type UpdateBuilder struct {
	ID string

	Name        FieldState[string]
	Description FieldState[string]
	ParentID    FieldState[string]
	TaskType    FieldState[string]
	Priority    FieldState[int]
	ClosedAt    FieldState[time.Time]
	Skill       FieldState[bool]
	IsClosed    FieldState[bool]
	Labels      FieldState[[]string]
}

// NewUpdateBuilder starts a partial update for the document with id.
func NewUpdateBuilder(id string) *UpdateBuilder {
	return &UpdateBuilder{ID: id}
}

// Apply executes the accumulated field changes inside tx in a single
// statement (plus a label replace if Labels was touched). Whenever any
// column changes, updated_at is set to now as well; a Labels-only update
// leaves updated_at untouched. Clear on Skill or IsClosed stores 0, since
// those columns are never NULL.
func (b *UpdateBuilder) Apply(ctx context.Context, tx *sql.Tx) error {
	var sets []string
	var args []interface{}

	addSet := func(col string, state fieldState, val interface{}) {
		switch state {
		case cleared:
			sets = append(sets, col+" = NULL")
		case set:
			sets = append(sets, col+" = ?")
			args = append(args, val)
		}
	}

	addSet("name", b.Name.state, b.Name.value)
	addSet("description", b.Description.state, b.Description.value)
	addSet("parent_id", b.ParentID.state, b.ParentID.value)
	addSet("task_type", b.TaskType.state, b.TaskType.value)
	addSet("priority", b.Priority.state, b.Priority.value)
	if !b.ClosedAt.IsUnchanged() {
		if b.ClosedAt.IsClear() {
			sets = append(sets, "closed_at = NULL")
		} else {
			sets = append(sets, "closed_at = ?")
			args = append(args, b.ClosedAt.Value().UTC().Format(tsLayout))
		}
	}
	if !b.Skill.IsUnchanged() {
		sets = append(sets, "skill = ?")
		args = append(args, boolToInt(!b.Skill.IsClear() && b.Skill.Value()))
	}
	if !b.IsClosed.IsUnchanged() {
		sets = append(sets, "is_closed = ?")
		args = append(args, boolToInt(!b.IsClosed.IsClear() && b.IsClosed.Value()))
	}

	if len(sets) > 0 {
		sets = append(sets, "updated_at = ?")
		args = append(args, time.Now().UTC().Format(tsLayout))
		args = append(args, b.ID)
		query := "UPDATE documents SET " + strings.Join(sets, ", ") + " WHERE id = ?"
		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return latticeerr.Wrap(latticeerr.DatabaseError, "apply document update", err).WithID(b.ID)
		}
		n, _ := res.RowsAffected()
		if n == 0 {
			return latticeerr.New(latticeerr.DocumentNotFound).WithID(b.ID)
		}
	}

	if !b.Labels.IsUnchanged() {
		labels := b.Labels.Value()
		if b.Labels.IsClear() {
			labels = nil
		}
		if err := ReplaceLabels(ctx, tx, b.ID, labels); err != nil {
			return err
		}
	}

	return nil
}
