package index

import (
	"context"
	"database/sql"

	"github.com/latticehq/lattice/internal/latticeerr"
)

// UpsertFTS replaces a document's indexed body text. The source repo
// stores the body directly in the FTS table rather than using
// external-content mode (spec 9), so a filesystem move requires this call
// even when the body itself is unchanged.
func UpsertFTS(ctx context.Context, tx *sql.Tx, documentID, body string) error {
	if _, err := tx.ExecContext(ctx, "DELETE FROM fts_content WHERE document_id = ?", documentID); err != nil {
		return latticeerr.Wrap(latticeerr.DatabaseError, "clear fts row", err).WithID(documentID)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO fts_content (document_id, body) VALUES (?, ?)", documentID, body); err != nil {
		return latticeerr.Wrap(latticeerr.DatabaseError, "insert fts row", err).WithID(documentID)
	}
	return nil
}

// SearchResult is one FTS5 match.
type SearchResult struct {
	DocumentID string
	Rank       float64
}

// Search runs an FTS5 MATCH query over body text, ranked by bm25.
func Search(ctx context.Context, q Queryer, query string, limit int) ([]SearchResult, error) {
	sqlText := "SELECT document_id, bm25(fts_content) AS rank FROM fts_content WHERE fts_content MATCH ? ORDER BY rank"
	args := []interface{}{query}
	if limit > 0 {
		sqlText += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := q.QueryContext(ctx, sqlText, args...)
	if err != nil {
		return nil, latticeerr.Wrap(latticeerr.DatabaseError, "fts search", err)
	}
	defer rows.Close()
	var out []SearchResult
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(&r.DocumentID, &r.Rank); err != nil {
			return nil, latticeerr.Wrap(latticeerr.DatabaseError, "scan fts result", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
