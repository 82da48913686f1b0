package index

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	dir := t.TempDir()
	db, err := Open(context.Background(), filepath.Join(dir, "index.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestOpenCreatesSchemaAndMetadataRow(t *testing.T) {
	db := openTestDB(t)
	var version int
	err := db.Conn().QueryRow("SELECT schema_version FROM index_metadata WHERE id = 1").Scan(&version)
	require.NoError(t, err)
	require.Equal(t, schemaVersion, version)
}

func TestInsertAndGetDocument(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	priority := 2
	row := DocumentRow{
		ID:          "K2X2",
		Path:        "api/tasks/foo.md",
		Name:        "foo",
		Description: "Fix the thing",
		TaskType:    "task",
		Priority:    &priority,
	}

	err := db.WithWriteTx(ctx, func(tx *sql.Tx) error {
		return InsertDocument(ctx, tx, row, []string{"backend", "urgent"})
	})
	require.NoError(t, err)

	got, err := GetDocument(ctx, db.Conn(), "K2X2")
	require.NoError(t, err)
	require.Equal(t, "foo", got.Name)
	require.Equal(t, 0, got.LinkCount)

	labels, err := GetLabels(ctx, db.Conn(), "K2X2")
	require.NoError(t, err)
	require.Equal(t, []string{"backend", "urgent"}, labels)
}

func TestLinkTriggersMaintainCounts(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	err := db.WithWriteTx(ctx, func(tx *sql.Tx) error {
		if err := InsertDocument(ctx, tx, DocumentRow{ID: "AAA2", Path: "a.md", Name: "a", Description: "d"}, nil); err != nil {
			return err
		}
		if err := InsertDocument(ctx, tx, DocumentRow{ID: "AAA3", Path: "b.md", Name: "b", Description: "d"}, nil); err != nil {
			return err
		}
		return ReplaceLinks(ctx, tx, "AAA2", []Link{{SourceID: "AAA2", TargetID: "AAA3", Type: LinkBody, Position: 0}})
	})
	require.NoError(t, err)

	source, err := GetDocument(ctx, db.Conn(), "AAA2")
	require.NoError(t, err)
	require.Equal(t, 1, source.LinkCount)

	target, err := GetDocument(ctx, db.Conn(), "AAA3")
	require.NoError(t, err)
	require.Equal(t, 1, target.BacklinkCount)
}

func TestNextCounterMonotonic(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	var first, second uint64
	err := db.WithWriteTx(ctx, func(tx *sql.Tx) error {
		var err error
		first, err = NextCounter(ctx, tx, "K2X")
		return err
	})
	require.NoError(t, err)

	err = db.WithWriteTx(ctx, func(tx *sql.Tx) error {
		var err error
		second, err = NextCounter(ctx, tx, "K2X")
		return err
	})
	require.NoError(t, err)
	require.Equal(t, first+1, second)
}

func TestUpdateBuilderTriState(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.WithWriteTx(ctx, func(tx *sql.Tx) error {
		return InsertDocument(ctx, tx, DocumentRow{ID: "BBB2", Path: "c.md", Name: "c", Description: "d", ParentID: "ZZZ2"}, nil)
	}))

	require.NoError(t, db.WithWriteTx(ctx, func(tx *sql.Tx) error {
		b := NewUpdateBuilder("BBB2")
		b.ParentID = Clear[string]()
		b.Description = Set("new description")
		return b.Apply(ctx, tx)
	}))

	got, err := GetDocument(ctx, db.Conn(), "BBB2")
	require.NoError(t, err)
	require.Equal(t, "", got.ParentID)
	require.Equal(t, "new description", got.Description)
}

func TestDeleteDocumentCleansFTS(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.WithWriteTx(ctx, func(tx *sql.Tx) error {
		if err := InsertDocument(ctx, tx, DocumentRow{ID: "CCC2", Path: "d.md", Name: "d", Description: "d"}, nil); err != nil {
			return err
		}
		return UpsertFTS(ctx, tx, "CCC2", "hello world")
	}))

	require.NoError(t, db.WithWriteTx(ctx, func(tx *sql.Tx) error {
		return DeleteDocument(ctx, tx, "CCC2")
	}))

	results, err := Search(ctx, db.Conn(), "hello", 10)
	require.NoError(t, err)
	require.Empty(t, results)
}

func TestRebuildRecreatesEmptySchema(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	require.NoError(t, db.WithWriteTx(ctx, func(tx *sql.Tx) error {
		return InsertDocument(ctx, tx, DocumentRow{ID: "DDD2", Path: "e.md", Name: "e", Description: "d"}, nil)
	}))

	require.NoError(t, db.Rebuild(ctx))

	_, err := GetDocument(ctx, db.Conn(), "DDD2")
	require.Error(t, err)
}

func TestContentCacheEviction(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.WithWriteTx(ctx, func(tx *sql.Tx) error {
		for i := 0; i < 3; i++ {
			id := string(rune('A' + i))
			if err := TouchContentCache(ctx, tx, id, "hash", time.Now(), 2); err != nil {
				return err
			}
		}
		return nil
	}))

	var count int
	require.NoError(t, db.Conn().QueryRow("SELECT COUNT(*) FROM content_cache").Scan(&count))
	require.LessOrEqual(t, count, 2)
}
