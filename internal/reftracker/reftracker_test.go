package reftracker

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

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

func TestOrphansIncludesRootsWithNoBacklinks(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.WithWriteTx(ctx, func(tx *sql.Tx) error {
		if err := index.InsertDocument(ctx, tx, index.DocumentRow{ID: "AAA2", Path: "a.md", Name: "a", Description: "d", IsRoot: true}, nil); err != nil {
			return err
		}
		if err := index.InsertDocument(ctx, tx, index.DocumentRow{ID: "AAA3", Path: "b.md", Name: "b", Description: "d"}, nil); err != nil {
			return err
		}
		if err := index.InsertDocument(ctx, tx, index.DocumentRow{ID: "AAA4", Path: "c.md", Name: "c", Description: "d"}, nil); err != nil {
			return err
		}
		return index.ReplaceLinks(ctx, tx, "AAA3", []index.Link{{SourceID: "AAA3", TargetID: "AAA4", Type: index.LinkBody, Position: 0}})
	}))

	orphans, err := Orphans(ctx, db.Conn())
	require.NoError(t, err)
	require.Equal(t, []string{"AAA2", "AAA3"}, orphans)
}

func TestBacklinksCountsByType(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.WithWriteTx(ctx, func(tx *sql.Tx) error {
		if err := index.InsertDocument(ctx, tx, index.DocumentRow{ID: "BBB2", Path: "a.md", Name: "a", Description: "d"}, nil); err != nil {
			return err
		}
		if err := index.InsertDocument(ctx, tx, index.DocumentRow{ID: "BBB3", Path: "b.md", Name: "b", Description: "d"}, nil); err != nil {
			return err
		}
		return index.ReplaceLinks(ctx, tx, "BBB3", []index.Link{
			{SourceID: "BBB3", TargetID: "BBB2", Type: index.LinkBlockedBy, Position: 0},
		})
	}))

	counts, err := Backlinks(ctx, db.Conn(), "BBB2")
	require.NoError(t, err)
	require.Equal(t, 1, counts[index.LinkBlockedBy])
}

func TestForwardGroupsLinksWithTargetDocuments(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.WithWriteTx(ctx, func(tx *sql.Tx) error {
		if err := index.InsertDocument(ctx, tx, index.DocumentRow{ID: "CCC2", Path: "a.md", Name: "a", Description: "d"}, nil); err != nil {
			return err
		}
		if err := index.InsertDocument(ctx, tx, index.DocumentRow{ID: "CCC3", Path: "b.md", Name: "target", Description: "d"}, nil); err != nil {
			return err
		}
		return index.ReplaceLinks(ctx, tx, "CCC2", []index.Link{{SourceID: "CCC2", TargetID: "CCC3", Type: index.LinkBody, Position: 0}})
	}))

	edges, err := Forward(ctx, db.Conn(), "CCC2")
	require.NoError(t, err)
	require.Len(t, edges, 1)
	require.Equal(t, "CCC3", edges[0].Document.ID)
	require.Equal(t, "target", edges[0].Document.Name)
}

func TestForwardSkipsMissingTargetDocuments(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.WithWriteTx(ctx, func(tx *sql.Tx) error {
		if err := index.InsertDocument(ctx, tx, index.DocumentRow{ID: "DDD2", Path: "a.md", Name: "a", Description: "d"}, nil); err != nil {
			return err
		}
		return index.ReplaceLinks(ctx, tx, "DDD2", []index.Link{{SourceID: "DDD2", TargetID: "GHOST9", Type: index.LinkBody, Position: 0}})
	}))

	edges, err := Forward(ctx, db.Conn(), "DDD2")
	require.NoError(t, err)
	require.Empty(t, edges)
}

func TestReverseSkipsMissingSourceDocuments(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.WithWriteTx(ctx, func(tx *sql.Tx) error {
		if err := index.InsertDocument(ctx, tx, index.DocumentRow{ID: "EEE2", Path: "a.md", Name: "a", Description: "d"}, nil); err != nil {
			return err
		}
		return index.ReplaceLinks(ctx, tx, "GHOST8", []index.Link{{SourceID: "GHOST8", TargetID: "EEE2", Type: index.LinkBody, Position: 0}})
	}))

	edges, err := Reverse(ctx, db.Conn(), "EEE2")
	require.NoError(t, err)
	require.Empty(t, edges)
}
