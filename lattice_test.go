package lattice_test

import (
	"path/filepath"
	"testing"

	"github.com/latticehq/lattice"
)

func TestOpenIndexCreatesSchema(t *testing.T) {
	tmpDir := t.TempDir()

	idx, err := lattice.OpenIndex(tmpDir)
	if err != nil {
		t.Fatalf("OpenIndex failed: %v", err)
	}
	defer idx.Close()

	if idx.Path() != filepath.Join(tmpDir, ".lattice", "index.sqlite") {
		t.Errorf("unexpected index path: %s", idx.Path())
	}
}

func TestReadyTasksOnEmptyRepoReturnsEmpty(t *testing.T) {
	tmpDir := t.TempDir()

	idx, err := lattice.OpenIndex(tmpDir)
	if err != nil {
		t.Fatalf("OpenIndex failed: %v", err)
	}
	defer idx.Close()

	tasks, err := lattice.ReadyTasks(idx, tmpDir, lattice.ReadyFilter{})
	if err != nil {
		t.Fatalf("ReadyTasks failed: %v", err)
	}
	if len(tasks) != 0 {
		t.Errorf("expected no ready tasks in an empty index, got %d", len(tasks))
	}
}
