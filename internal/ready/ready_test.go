package ready

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/latticehq/lattice/internal/claim"
	"github.com/latticehq/lattice/internal/index"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) (*index.DB, string) {
	t.Helper()
	dir := t.TempDir()
	db, err := index.Open(context.Background(), filepath.Join(dir, "index.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, dir
}

func intPtr(i int) *int { return &i }

func insertTask(t *testing.T, db *index.DB, id, taskType string, priority int, closed bool) {
	t.Helper()
	now := time.Now().UTC()
	require.NoError(t, db.WithWriteTx(context.Background(), func(tx *sql.Tx) error {
		return index.InsertDocument(context.Background(), tx, index.DocumentRow{
			ID: id, Path: id + ".md", Name: id, Description: "d",
			TaskType: taskType, Priority: intPtr(priority), IsClosed: closed,
			CreatedAt: &now,
		}, nil)
	}))
}

func TestQueryExcludesClosedAndBacklogByDefault(t *testing.T) {
	db, repoRoot := openTestDB(t)
	ctx := context.Background()

	insertTask(t, db, "AAA2", "task", 1, false)
	insertTask(t, db, "BBB2", "task", 4, false)  // backlog, excluded by default
	insertTask(t, db, "CCC2", "task", 0, true)   // closed, always excluded

	tasks, err := Query(ctx, db.Conn(), repoRoot, Filter{})
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	require.Equal(t, "AAA2", tasks[0].Document.ID)
}

func TestQueryIncludeBacklogReturnsP4(t *testing.T) {
	db, repoRoot := openTestDB(t)
	ctx := context.Background()

	insertTask(t, db, "AAA2", "task", 4, false)

	tasks, err := Query(ctx, db.Conn(), repoRoot, Filter{IncludeBacklog: true})
	require.NoError(t, err)
	require.Len(t, tasks, 1)
}

func TestQueryExcludesBlockedByOpenDependency(t *testing.T) {
	db, repoRoot := openTestDB(t)
	ctx := context.Background()

	insertTask(t, db, "AAA2", "task", 1, false)
	insertTask(t, db, "BBB2", "task", 1, false)

	require.NoError(t, db.WithWriteTx(ctx, func(tx *sql.Tx) error {
		return index.ReplaceLinks(ctx, tx, "AAA2", []index.Link{{SourceID: "AAA2", TargetID: "BBB2", Type: index.LinkBlockedBy, Position: 0}})
	}))

	tasks, err := Query(ctx, db.Conn(), repoRoot, Filter{})
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	require.Equal(t, "BBB2", tasks[0].Document.ID)
}

func TestQueryExcludesClaimedUnlessIncluded(t *testing.T) {
	db, repoRoot := openTestDB(t)
	ctx := context.Background()
	insertTask(t, db, "AAA2", "task", 1, false)

	latticeDir := filepath.Join(repoRoot, ".lattice")
	require.NoError(t, claim.Claim(latticeDir, "AAA2", "agent-1", time.Hour))

	tasks, err := Query(ctx, db.Conn(), repoRoot, Filter{})
	require.NoError(t, err)
	require.Empty(t, tasks)

	tasks, err = Query(ctx, db.Conn(), repoRoot, Filter{IncludeClaimed: true})
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	require.True(t, tasks[0].Claimed)
}

func TestCountMatchesQueryLength(t *testing.T) {
	db, repoRoot := openTestDB(t)
	ctx := context.Background()
	insertTask(t, db, "AAA2", "task", 1, false)
	insertTask(t, db, "BBB2", "task", 2, false)

	n, err := Count(ctx, db.Conn(), Filter{})
	require.NoError(t, err)
	require.Equal(t, 2, n)

	tasks, err := Query(ctx, db.Conn(), repoRoot, Filter{})
	require.NoError(t, err)
	require.Len(t, tasks, n)
}

func TestSortForPolicy(t *testing.T) {
	col, order := SortForPolicy(SortOldest)
	require.Equal(t, index.SortByCreatedAt, col)
	require.Equal(t, index.Asc, order)

	col, order = SortForPolicy(SortHybrid)
	require.Equal(t, index.SortByPriority, col)
	require.Equal(t, index.Asc, order)
}
