package overview

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/latticehq/lattice/internal/config"
	"github.com/latticehq/lattice/internal/index"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *index.DB {
	t.Helper()
	dir := t.TempDir()
	db, err := index.Open(context.Background(), filepath.Join(dir, "index.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func intPtr(i int) *int { return &i }

func TestRankPrefersHighViewCountAndRecency(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	now := time.Now().UTC()
	old := now.AddDate(0, 0, -30)

	require.NoError(t, db.WithWriteTx(ctx, func(tx *sql.Tx) error {
		if err := index.InsertDocument(ctx, tx, index.DocumentRow{
			ID: "AAA2", Path: "a.md", Name: "a", Description: "d", TaskType: "task",
			Priority: intPtr(1), UpdatedAt: &now,
		}, nil); err != nil {
			return err
		}
		return index.InsertDocument(ctx, tx, index.DocumentRow{
			ID: "BBB2", Path: "b.md", Name: "b", Description: "d", TaskType: "task",
			Priority: intPtr(1), UpdatedAt: &old,
		}, nil)
	}))

	scored, err := Rank(ctx, db.Conn(), Options{Now: now})
	require.NoError(t, err)
	require.Len(t, scored, 2)
	require.Equal(t, "AAA2", scored[0].Document.ID)
}

func TestRankExcludesClosedAndNonTasks(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, db.WithWriteTx(ctx, func(tx *sql.Tx) error {
		if err := index.InsertDocument(ctx, tx, index.DocumentRow{
			ID: "AAA2", Path: "a.md", Name: "a", Description: "d", TaskType: "task",
			Priority: intPtr(1), UpdatedAt: &now, IsClosed: true,
		}, nil); err != nil {
			return err
		}
		return index.InsertDocument(ctx, tx, index.DocumentRow{
			ID: "BBB2", Path: "b.md", Name: "b", Description: "d", UpdatedAt: &now,
		}, nil)
	}))

	scored, err := Rank(ctx, db.Conn(), Options{Now: now})
	require.NoError(t, err)
	require.Empty(t, scored)
}

func TestRankRespectsLimit(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, db.WithWriteTx(ctx, func(tx *sql.Tx) error {
		for _, id := range []string{"AAA2", "BBB2", "CCC2"} {
			if err := index.InsertDocument(ctx, tx, index.DocumentRow{
				ID: id, Path: id + ".md", Name: id, Description: "d", TaskType: "task",
				Priority: intPtr(1), UpdatedAt: &now,
			}, nil); err != nil {
				return err
			}
		}
		return nil
	}))

	scored, err := Rank(ctx, db.Conn(), Options{Now: now, Limit: 2})
	require.NoError(t, err)
	require.Len(t, scored, 2)
}

func TestRankUsesDefaultWeightsWhenUnset(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, db.WithWriteTx(ctx, func(tx *sql.Tx) error {
		return index.InsertDocument(ctx, tx, index.DocumentRow{
			ID: "AAA2", Path: "a.md", Name: "a", Description: "d", TaskType: "task",
			Priority: intPtr(1), UpdatedAt: &now, IsRoot: true,
		}, nil)
	}))

	scored, err := Rank(ctx, db.Conn(), Options{Now: now, Weights: config.DefaultOverviewWeights()})
	require.NoError(t, err)
	require.Len(t, scored, 1)
	require.Greater(t, scored[0].Score, 0.0)
}
