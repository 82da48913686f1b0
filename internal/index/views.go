package index

import (
	"context"
	"database/sql"
	"time"

	"github.com/latticehq/lattice/internal/latticeerr"
)

// RecordView increments a document's view count, inside tx. The
// trg_views_ai/trg_views_au triggers mirror the new count into
// documents.view_count (spec 3 "View", spec 4.2 triggers).
func RecordView(ctx context.Context, tx *sql.Tx, documentID string) error {
	now := time.Now().UTC().Format(tsLayout)
	var current int
	err := tx.QueryRowContext(ctx, "SELECT view_count FROM views WHERE document_id = ?", documentID).Scan(&current)
	if err == sql.ErrNoRows {
		_, err = tx.ExecContext(ctx, "INSERT INTO views (document_id, view_count, last_viewed) VALUES (?, 1, ?)", documentID, now)
		if err != nil {
			return latticeerr.Wrap(latticeerr.DatabaseError, "insert view", err).WithID(documentID)
		}
		return nil
	}
	if err != nil {
		return latticeerr.Wrap(latticeerr.DatabaseError, "read view count", err).WithID(documentID)
	}
	_, err = tx.ExecContext(ctx, "UPDATE views SET view_count = ?, last_viewed = ? WHERE document_id = ?", current+1, now, documentID)
	if err != nil {
		return latticeerr.Wrap(latticeerr.DatabaseError, "update view count", err).WithID(documentID)
	}
	return nil
}
