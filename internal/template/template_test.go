package template

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/latticehq/lattice/internal/index"
	"github.com/stretchr/testify/require"
)

func TestComputeRootDocPath(t *testing.T) {
	require.Equal(t, "api/tasks/tasks.md", ComputeRootDocPath("api/tasks"))
	require.Equal(t, "api/api.md", ComputeRootDocPath("api"))
}

func TestParseLatticeHeadingRecognizesContextAndAcceptanceCriteria(t *testing.T) {
	level, section, ok := parseLatticeHeading("## [Lattice] Context")
	require.True(t, ok)
	require.Equal(t, 2, level)
	require.Equal(t, contextSection, section)

	_, _, ok = parseLatticeHeading("## Something else")
	require.False(t, ok)
}

func TestExtractSectionsStopsAtNextHeadingOfSameLevel(t *testing.T) {
	body := "# [Lattice] Context\n\nShared context here.\n\n# Other Heading\n\nIgnored.\n"
	sections := ExtractSections(body)
	require.Equal(t, "Shared context here.", sections.Context)
	require.Empty(t, sections.AcceptanceCriteria)
}

func TestExtractSectionsHandlesBothSections(t *testing.T) {
	body := "## [Lattice] Context\nContext body.\n\n## [Lattice] Acceptance Criteria\n- must pass tests\n"
	sections := ExtractSections(body)
	require.Equal(t, "Context body.", sections.Context)
	require.Equal(t, "- must pass tests", sections.AcceptanceCriteria)
}

func TestFindAncestorRootsWalksUpToDirectoryWithEntry(t *testing.T) {
	dir := t.TempDir()
	db, err := index.Open(context.Background(), filepath.Join(dir, "index.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	ctx := context.Background()

	require.NoError(t, db.WithWriteTx(ctx, func(tx *sql.Tx) error {
		if err := index.UpsertDirectoryRoot(ctx, tx, index.DirectoryRoot{DirectoryPath: "api", RootID: "AAA2", Depth: 0}); err != nil {
			return err
		}
		return index.UpsertDirectoryRoot(ctx, tx, index.DirectoryRoot{DirectoryPath: "api/tasks", RootID: "BBB2", ParentPath: "api", Depth: 1})
	}))

	ancestors, err := FindAncestorRoots(ctx, db.Conn(), "api/tasks/some-task.md")
	require.NoError(t, err)
	require.Len(t, ancestors, 2)
	require.Equal(t, "api", ancestors[0].DirectoryPath)
	require.Equal(t, "api/tasks", ancestors[1].DirectoryPath)
}

func TestComposeJoinsContextRootFirstAndAcceptanceNearestFirst(t *testing.T) {
	repoRoot := t.TempDir()
	db, err := index.Open(context.Background(), filepath.Join(repoRoot, "index.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	ctx := context.Background()

	require.NoError(t, os.MkdirAll(filepath.Join(repoRoot, "api"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(repoRoot, "api", "api.md"),
		[]byte("# api\n\n## [Lattice] Context\n\nRoot context.\n\n## [Lattice] Acceptance Criteria\n\nRoot criteria.\n"), 0o644))

	require.NoError(t, os.MkdirAll(filepath.Join(repoRoot, "api", "tasks"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(repoRoot, "api", "tasks", "tasks.md"),
		[]byte("# tasks\n\n## [Lattice] Context\n\nTasks context.\n\n## [Lattice] Acceptance Criteria\n\nTasks criteria.\n"), 0o644))

	require.NoError(t, db.WithWriteTx(ctx, func(tx *sql.Tx) error {
		if err := index.UpsertDirectoryRoot(ctx, tx, index.DirectoryRoot{DirectoryPath: "api", RootID: "AAA2", Depth: 0}); err != nil {
			return err
		}
		return index.UpsertDirectoryRoot(ctx, tx, index.DirectoryRoot{DirectoryPath: "api/tasks", RootID: "BBB2", ParentPath: "api", Depth: 1})
	}))

	composed, err := Compose(ctx, db.Conn(), repoRoot, "api/tasks/some-task.md")
	require.NoError(t, err)
	require.Equal(t, "Root context.\n\nTasks context.", composed.Context)
	require.Equal(t, "Tasks criteria.\n\nRoot criteria.", composed.AcceptanceCriteria)
	require.Equal(t, []string{"AAA2", "BBB2"}, composed.ContributorIDs)
}
