// Package claim implements advisory, filesystem-based work claims: a
// claim file under .lattice/claims/<id> that another agent can see and
// respect, but that the engine itself never uses to gate writes (spec
// 4.7). Exclusivity comes from O_CREATE|O_EXCL, the same guarantee the
// teacher's database layer got from a unique-assignee constraint, just
// expressed as a file instead of a row.
package claim

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/latticehq/lattice/internal/latticeerr"
)

// Record is the content of a claim file.
type Record struct {
	DocumentID string    `json:"document_id"`
	Claimant   string    `json:"claimant"`
	ClaimedAt  time.Time `json:"claimed_at"`
}

func claimPath(latticeDir, documentID string) string {
	return filepath.Join(latticeDir, "claims", documentID)
}

// Claim creates a claim file for documentID, failing if one already
// exists — stale or not. Stale claims are never auto-released: they are
// reported as such, and the caller must run Release(force=true) to clear
// one explicitly before reclaiming (spec 4.7). O_CREATE|O_EXCL makes the
// creation itself atomic even across processes sharing the filesystem.
func Claim(latticeDir, documentID, claimant string, staleAfter time.Duration) error {
	path := claimPath(latticeDir, documentID)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return latticeerr.Wrap(latticeerr.WriteError, "create claims directory", err).WithPath(filepath.Dir(path))
	}

	if existing, err := Get(latticeDir, documentID); err == nil && existing != nil {
		if IsStale(*existing, staleAfter) {
			return latticeerr.Newf(latticeerr.OperationNotAllowed,
				"%s has a stale claim by %s since %s; run 'lattice release --force %s' before reclaiming",
				documentID, existing.Claimant, existing.ClaimedAt.Format(time.RFC3339), documentID).
				WithID(documentID)
		}
		return latticeerr.Newf(latticeerr.OperationNotAllowed,
			"%s is already claimed by %s since %s", documentID, existing.Claimant, existing.ClaimedAt.Format(time.RFC3339)).
			WithID(documentID)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return latticeerr.Newf(latticeerr.OperationNotAllowed, "%s was claimed concurrently", documentID).WithID(documentID)
		}
		return latticeerr.Wrap(latticeerr.WriteError, "create claim file", err).WithPath(path)
	}
	defer f.Close()

	record := Record{DocumentID: documentID, Claimant: claimant, ClaimedAt: time.Now().UTC()}
	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return latticeerr.Wrap(latticeerr.WriteError, "encode claim record", err).WithPath(path)
	}
	if _, err := f.Write(data); err != nil {
		return latticeerr.Wrap(latticeerr.WriteError, "write claim record", err).WithPath(path)
	}
	return nil
}

// Release removes documentID's claim file, if any. Releasing an absent
// claim is not an error: callers frequently release defensively. Releasing
// a claim that IsStale under staleAfter requires force=true (spec 4.7);
// releasing one that isn't stale (the normal "I'm done" path) never does.
func Release(latticeDir, documentID string, staleAfter time.Duration, force bool) error {
	existing, err := Get(latticeDir, documentID)
	if err != nil {
		return err
	}
	if existing == nil {
		return nil
	}
	if IsStale(*existing, staleAfter) && !force {
		return latticeerr.Newf(latticeerr.OperationNotAllowed,
			"%s has a stale claim by %s since %s; pass --force to release it",
			documentID, existing.Claimant, existing.ClaimedAt.Format(time.RFC3339)).
			WithID(documentID)
	}
	path := claimPath(latticeDir, documentID)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return latticeerr.Wrap(latticeerr.WriteError, "remove claim file", err).WithPath(path)
	}
	return nil
}

// Get reads documentID's claim record, returning (nil, nil) if unclaimed.
func Get(latticeDir, documentID string) (*Record, error) {
	path := claimPath(latticeDir, documentID)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, latticeerr.Wrap(latticeerr.ReadError, "read claim file", err).WithPath(path)
	}
	var record Record
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, latticeerr.Wrap(latticeerr.ConfigParseError, "parse claim file", err).WithPath(path)
	}
	return &record, nil
}

// List returns every active claim record under latticeDir.
func List(latticeDir string) ([]Record, error) {
	dir := filepath.Join(latticeDir, "claims")
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, latticeerr.Wrap(latticeerr.ReadError, "list claims directory", err).WithPath(dir)
	}
	var records []Record
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		record, err := Get(latticeDir, e.Name())
		if err != nil || record == nil {
			continue
		}
		records = append(records, *record)
	}
	return records, nil
}

// IsStale reports whether record's claim is older than staleAfter. A
// non-positive staleAfter disables staleness entirely (claims never
// expire).
func IsStale(record Record, staleAfter time.Duration) bool {
	if staleAfter <= 0 {
		return false
	}
	return time.Since(record.ClaimedAt) > staleAfter
}
