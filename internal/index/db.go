// Package index implements the SQLite-backed document index: schema,
// triggers, FTS5 full text search, typed filters, and CRUD over the
// documents/links/labels/directory_roots/content_cache/views tables
// described in spec 4.2-4.3.
package index

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	_ "modernc.org/sqlite" // pure-Go SQLite driver, registers "sqlite"

	"github.com/latticehq/lattice/internal/latticeerr"
	"github.com/latticehq/lattice/internal/lockfile"
)

// DB wraps a SQLite connection opened against <repo>/.lattice/index.sqlite.
type DB struct {
	conn *sql.DB
	path string
}

// Open opens (creating if absent) the index database at path, enables WAL
// mode so that writers serialize while readers proceed concurrently (spec
// 5 "Cross-process concurrency"), and ensures the schema is current.
func Open(ctx context.Context, path string) (*DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, latticeerr.Wrap(latticeerr.DatabaseError, "open sqlite connection", err)
	}
	conn.SetMaxOpenConns(1) // SQLite serializes writers anyway; avoids driver-level lock thrash

	if _, err := conn.ExecContext(ctx, "PRAGMA journal_mode=WAL;"); err != nil {
		conn.Close()
		return nil, latticeerr.Wrap(latticeerr.DatabaseError, "enable WAL mode", err)
	}
	if _, err := conn.ExecContext(ctx, "PRAGMA foreign_keys=OFF;"); err != nil {
		conn.Close()
		return nil, latticeerr.Wrap(latticeerr.DatabaseError, "set pragma foreign_keys", err)
	}
	if _, err := conn.ExecContext(ctx, "PRAGMA busy_timeout=5000;"); err != nil {
		conn.Close()
		return nil, latticeerr.Wrap(latticeerr.DatabaseError, "set pragma busy_timeout", err)
	}

	db := &DB{conn: conn, path: path}
	// The first process to open a fresh repository races every other
	// concurrent invocation (editor plugin, git hook, a second shell) to
	// create index.sqlite's schema. SQLite's own locking covers writes
	// once the schema exists; it does not cover "does the schema exist
	// yet" checks racing each other before any table is there to lock.
	lockErr := lockfile.WithExclusive(path, func() error {
		return db.ensureSchema(ctx)
	})
	if lockErr != nil {
		conn.Close()
		return nil, lockErr
	}
	return db, nil
}

// Close closes the underlying connection.
func (db *DB) Close() error { return db.conn.Close() }

// Path returns the filesystem path of the opened database.
func (db *DB) Path() string { return db.path }

// ensureSchema creates the schema if this is a fresh database, or checks
// the stored schema_version against the version this build knows, per
// spec 4.2 "Schema version is checked on open; mismatch triggers a full
// rebuild" and spec 6 "refuses to operate on a newer schema than it knows".
func (db *DB) ensureSchema(ctx context.Context) error {
	var exists int
	err := db.conn.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='index_metadata'").Scan(&exists)
	if err != nil {
		return latticeerr.Wrap(latticeerr.DatabaseError, "probe schema presence", err)
	}

	if exists == 0 {
		return db.createSchema(ctx)
	}

	var storedVersion int
	err = db.conn.QueryRowContext(ctx, "SELECT schema_version FROM index_metadata WHERE id = 1").Scan(&storedVersion)
	if errors.Is(err, sql.ErrNoRows) {
		return db.createSchema(ctx)
	}
	if err != nil {
		return latticeerr.Wrap(latticeerr.DatabaseError, "read schema_version", err)
	}

	if storedVersion > schemaVersion {
		return latticeerr.Newf(latticeerr.OperationNotAllowed,
			"index schema_version %d is newer than this build understands (%d); upgrade the engine", storedVersion, schemaVersion)
	}
	if storedVersion < schemaVersion {
		return db.Rebuild(ctx)
	}
	return nil
}

func (db *DB) createSchema(ctx context.Context) error {
	if _, err := db.conn.ExecContext(ctx, schemaDDL); err != nil {
		return latticeerr.Wrap(latticeerr.DatabaseError, "create schema", err)
	}
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := db.conn.ExecContext(ctx,
		`INSERT OR REPLACE INTO index_metadata (id, schema_version, last_commit, last_indexed) VALUES (1, ?, NULL, ?)`,
		schemaVersion, now)
	if err != nil {
		return latticeerr.Wrap(latticeerr.DatabaseError, "initialize index_metadata", err)
	}
	return nil
}

// Rebuild drops and recreates every table, per spec 4.2's "drop+recreate
// from filesystem" recovery path (spec 7's only recovery path from index
// corruption or an out-of-date schema). It does not repopulate documents:
// the index is empty afterwards until documents are re-inserted, and no
// function in this package re-walks the repository to do so.
func (db *DB) Rebuild(ctx context.Context) error {
	tables := []string{
		"documents", "links", "labels", "index_metadata",
		"client_counters", "directory_roots", "content_cache", "views",
	}
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return latticeerr.Wrap(latticeerr.DatabaseError, "begin rebuild transaction", err)
	}
	defer tx.Rollback()

	for _, t := range tables {
		if _, err := tx.ExecContext(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s", t)); err != nil {
			return latticeerr.Wrap(latticeerr.DatabaseError, "drop table "+t, err)
		}
	}
	if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS fts_content"); err != nil {
		return latticeerr.Wrap(latticeerr.DatabaseError, "drop fts_content", err)
	}
	if _, err := tx.ExecContext(ctx, schemaDDL); err != nil {
		return latticeerr.Wrap(latticeerr.DatabaseError, "recreate schema", err)
	}
	now := time.Now().UTC().Format(time.RFC3339)
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO index_metadata (id, schema_version, last_commit, last_indexed) VALUES (1, ?, NULL, ?)`,
		schemaVersion, now); err != nil {
		return latticeerr.Wrap(latticeerr.DatabaseError, "reinitialize index_metadata", err)
	}
	return tx.Commit()
}

// OptimizeFTS runs FTS5's merge-optimize command (spec 4.2's
// optimize_fts). Nothing in this module calls it.
func (db *DB) OptimizeFTS(ctx context.Context) error {
	_, err := db.conn.ExecContext(ctx, `INSERT INTO fts_content(fts_content, rank) VALUES('optimize', 0)`)
	if err != nil {
		return latticeerr.Wrap(latticeerr.DatabaseError, "optimize fts", err)
	}
	return nil
}

// WithWriteTx runs fn inside a single transaction, retrying on
// SQLITE_BUSY with exponential backoff (spec 5's single-transaction-per-
// logical-write-operation rule, combined with cenkalti/backoff/v4 for the
// busy-retry policy named in SPEC_FULL's domain stack).
func (db *DB) WithWriteTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 5), ctx)

	op := func() error {
		tx, err := db.conn.BeginTx(ctx, nil)
		if err != nil {
			if isBusyErr(err) {
				return err // retryable
			}
			return backoff.Permanent(latticeerr.Wrap(latticeerr.DatabaseError, "begin write transaction", err))
		}
		if err := fn(tx); err != nil {
			tx.Rollback()
			if isBusyErr(err) {
				return err // retryable
			}
			return backoff.Permanent(err)
		}
		if err := tx.Commit(); err != nil {
			if isBusyErr(err) {
				return err // retryable
			}
			return backoff.Permanent(latticeerr.Wrap(latticeerr.DatabaseError, "commit write transaction", err))
		}
		return nil
	}

	return backoff.Retry(op, policy)
}

func isBusyErr(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return contains(msg, "SQLITE_BUSY") || contains(msg, "database is locked")
}

func contains(s, sub string) bool {
	return len(s) >= len(sub) && indexOfSub(s, sub) >= 0
}

func indexOfSub(s, sub string) int {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return i
		}
	}
	return -1
}

// Conn exposes the underlying *sql.DB for read-only queries across
// packages that build their own SQL (links, reftracker, ready, lint).
func (db *DB) Conn() *sql.DB { return db.conn }
