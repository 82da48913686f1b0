package index

import (
	"context"
	"database/sql"
	"time"

	"github.com/latticehq/lattice/internal/latticeerr"
)

// DefaultContentCacheSize is the LRU bound from spec 3 "ContentCache".
const DefaultContentCacheSize = 100

// TouchContentCache records that documentID's body (with the given hash
// and source file mtime) was accessed, evicting the least-recently-used
// row if the cache exceeds maxEntries.
func TouchContentCache(ctx context.Context, tx *sql.Tx, documentID, contentHash string, fileMtime time.Time, maxEntries int) error {
	now := time.Now().UTC().Format(tsLayout)
	_, err := tx.ExecContext(ctx, `
		INSERT INTO content_cache (document_id, content_hash, accessed_at, file_mtime)
		VALUES (?,?,?,?)
		ON CONFLICT(document_id) DO UPDATE SET content_hash = excluded.content_hash,
			accessed_at = excluded.accessed_at, file_mtime = excluded.file_mtime
	`, documentID, contentHash, now, fileMtime.UTC().Format(tsLayout))
	if err != nil {
		return latticeerr.Wrap(latticeerr.DatabaseError, "touch content cache", err).WithID(documentID)
	}

	if maxEntries <= 0 {
		maxEntries = DefaultContentCacheSize
	}
	var count int
	if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM content_cache").Scan(&count); err != nil {
		return latticeerr.Wrap(latticeerr.DatabaseError, "count content cache", err)
	}
	if count <= maxEntries {
		return nil
	}
	excess := count - maxEntries
	_, err = tx.ExecContext(ctx, `
		DELETE FROM content_cache WHERE document_id IN (
			SELECT document_id FROM content_cache ORDER BY accessed_at ASC LIMIT ?
		)`, excess)
	if err != nil {
		return latticeerr.Wrap(latticeerr.DatabaseError, "evict content cache", err)
	}
	return nil
}

// GetContentCache returns the cached hash and mtime for a document, or
// found=false with a nil error if absent.
func GetContentCache(ctx context.Context, q Queryer, documentID string) (contentHash string, fileMtime time.Time, found bool, err error) {
	row := q.QueryRowContext(ctx, "SELECT content_hash, file_mtime FROM content_cache WHERE document_id = ?", documentID)
	var mtimeStr string
	scanErr := row.Scan(&contentHash, &mtimeStr)
	if scanErr == sql.ErrNoRows {
		return "", time.Time{}, false, nil
	}
	if scanErr != nil {
		return "", time.Time{}, false, latticeerr.Wrap(latticeerr.DatabaseError, "get content cache", scanErr)
	}
	t, parseErr := time.Parse(tsLayout, mtimeStr)
	if parseErr != nil {
		return "", time.Time{}, false, latticeerr.Wrap(latticeerr.DatabaseError, "parse content cache mtime", parseErr)
	}
	return contentHash, t, true, nil
}
