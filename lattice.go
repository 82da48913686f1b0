// Package lattice provides a minimal public API for extending the engine
// with custom orchestration.
//
// Most extensions should query the index database directly, or shell out
// to the lattice CLI. This package exports only the essential types and
// functions needed for Go-based extensions that want to use the index and
// ready-task query programmatically.
package lattice

import (
	"context"
	"os"
	"path/filepath"

	"github.com/latticehq/lattice/internal/index"
	"github.com/latticehq/lattice/internal/ready"
)

// Core types for working with documents.
type (
	Document    = index.DocumentRow
	Filter      = index.DocumentFilter
	ReadyTask   = ready.Task
	ReadyFilter = ready.Filter
	SortPolicy  = ready.SortPolicy
)

// Ready-task sort policies.
const (
	SortHybrid   = ready.SortHybrid
	SortPriority = ready.SortPriority
	SortOldest   = ready.SortOldest
)

// Index provides the minimal interface for extension orchestration against
// a repository's index database.
type Index = index.DB

// OpenIndex opens a repository's index database at <repoRoot>/.lattice/index.sqlite,
// creating and migrating the schema as needed. Most extensions should use
// this to query ready work and read document metadata.
func OpenIndex(repoRoot string) (*Index, error) {
	latticeDir := filepath.Join(repoRoot, ".lattice")
	if err := os.MkdirAll(latticeDir, 0o755); err != nil {
		return nil, err
	}
	return index.Open(context.Background(), filepath.Join(latticeDir, "index.sqlite"))
}

// ReadyTasks returns the tasks in repoRoot that are unblocked and ready to
// work on, per f.
func ReadyTasks(idx *Index, repoRoot string, f ReadyFilter) ([]ReadyTask, error) {
	return ready.Query(context.Background(), idx.Conn(), repoRoot, f)
}
