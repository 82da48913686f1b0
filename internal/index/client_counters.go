package index

import (
	"context"
	"database/sql"

	"github.com/latticehq/lattice/internal/latticeerr"
)

// NextCounter returns the next counter value for clientID and advances the
// stored counter, inside tx. Concurrent creates for the same client
// serialize on SQLite's write lock (spec 9): no sequence generator state
// is held in memory across invocations.
func NextCounter(ctx context.Context, tx *sql.Tx, clientID string) (uint64, error) {
	var next int64
	err := tx.QueryRowContext(ctx, "SELECT next_counter FROM client_counters WHERE client_id = ?", clientID).Scan(&next)
	if err == sql.ErrNoRows {
		next = 0
		if _, err := tx.ExecContext(ctx, "INSERT INTO client_counters (client_id, next_counter) VALUES (?, ?)", clientID, next+1); err != nil {
			return 0, latticeerr.Wrap(latticeerr.DatabaseError, "initialize client counter", err)
		}
		return uint64(next), nil
	}
	if err != nil {
		return 0, latticeerr.Wrap(latticeerr.DatabaseError, "read client counter", err)
	}
	if _, err := tx.ExecContext(ctx, "UPDATE client_counters SET next_counter = ? WHERE client_id = ?", next+1, clientID); err != nil {
		return 0, latticeerr.Wrap(latticeerr.DatabaseError, "advance client counter", err)
	}
	return uint64(next), nil
}
