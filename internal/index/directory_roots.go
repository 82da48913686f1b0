package index

import (
	"context"
	"database/sql"
	"strings"

	"github.com/latticehq/lattice/internal/latticeerr"
)

// DirectoryRoot mirrors spec 3's DirectoryRoot mapping.
type DirectoryRoot struct {
	DirectoryPath string
	RootID        string
	ParentPath    string
	Depth         int
}

// UpsertDirectoryRoot inserts or replaces the root document for a
// directory, inside tx. Depth is the count of path separators (spec
// 4.10).
func UpsertDirectoryRoot(ctx context.Context, tx *sql.Tx, dr DirectoryRoot) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO directory_roots (directory_path, root_id, parent_path, depth)
		VALUES (?,?,?,?)
		ON CONFLICT(directory_path) DO UPDATE SET root_id = excluded.root_id,
			parent_path = excluded.parent_path, depth = excluded.depth
	`, dr.DirectoryPath, dr.RootID, nullable(dr.ParentPath), dr.Depth)
	if err != nil {
		return latticeerr.Wrap(latticeerr.DatabaseError, "upsert directory root", err)
	}
	return nil
}

// RemoveDirectoryRoot deletes a directory's root mapping (used when its
// root document is deleted or moved).
func RemoveDirectoryRoot(ctx context.Context, tx *sql.Tx, directoryPath string) error {
	_, err := tx.ExecContext(ctx, "DELETE FROM directory_roots WHERE directory_path = ?", directoryPath)
	if err != nil {
		return latticeerr.Wrap(latticeerr.DatabaseError, "remove directory root", err)
	}
	return nil
}

// GetDirectoryRoot returns the root mapping for a directory, or
// (nil, nil) if the directory has no root document.
func GetDirectoryRoot(ctx context.Context, q Queryer, directoryPath string) (*DirectoryRoot, error) {
	row := q.QueryRowContext(ctx, "SELECT directory_path, root_id, parent_path, depth FROM directory_roots WHERE directory_path = ?", directoryPath)
	var dr DirectoryRoot
	var parentPath sql.NullString
	err := row.Scan(&dr.DirectoryPath, &dr.RootID, &parentPath, &dr.Depth)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, latticeerr.Wrap(latticeerr.DatabaseError, "get directory root", err)
	}
	dr.ParentPath = parentPath.String
	return &dr, nil
}

// Depth returns the number of path separators in p, used when populating
// DirectoryRoot.Depth (spec 4.10).
func Depth(p string) int {
	p = strings.Trim(p, "/")
	if p == "" {
		return 0
	}
	return strings.Count(p, "/")
}

// GetAncestors walks the parent_path chain starting at directoryPath and
// returns the ancestor chain root-first. The chain stops at the first
// missing link: a directory_path with a parent_path that has no
// directory_roots row of its own ends the walk there rather than erroring.
func GetAncestors(ctx context.Context, q Queryer, directoryPath string) ([]DirectoryRoot, error) {
	var chain []DirectoryRoot
	current := directoryPath
	for current != "" {
		dr, err := GetDirectoryRoot(ctx, q, current)
		if err != nil {
			return nil, err
		}
		if dr == nil {
			break
		}
		chain = append(chain, *dr)
		current = dr.ParentPath
	}
	// reverse: chain was built nearest-first, ancestors want root-first
	for i, j := 0, len(chain)-1; i < j; i, j = j, i {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain, nil
}

// GetChildren returns the immediate children of directoryPath, sorted by
// path.
func GetChildren(ctx context.Context, q Queryer, directoryPath string) ([]DirectoryRoot, error) {
	rows, err := q.QueryContext(ctx,
		"SELECT directory_path, root_id, parent_path, depth FROM directory_roots WHERE parent_path = ? ORDER BY directory_path",
		directoryPath)
	if err != nil {
		return nil, latticeerr.Wrap(latticeerr.DatabaseError, "get directory root children", err)
	}
	defer rows.Close()
	return scanDirectoryRoots(rows)
}

// ListAtDepth returns every directory root at the given depth, sorted by
// path.
func ListAtDepth(ctx context.Context, q Queryer, depth int) ([]DirectoryRoot, error) {
	rows, err := q.QueryContext(ctx,
		"SELECT directory_path, root_id, parent_path, depth FROM directory_roots WHERE depth = ? ORDER BY directory_path",
		depth)
	if err != nil {
		return nil, latticeerr.Wrap(latticeerr.DatabaseError, "list directory roots at depth", err)
	}
	defer rows.Close()
	return scanDirectoryRoots(rows)
}

// ListAllDirectoryRoots returns every directory root, ordered by depth then
// path.
func ListAllDirectoryRoots(ctx context.Context, q Queryer) ([]DirectoryRoot, error) {
	rows, err := q.QueryContext(ctx,
		"SELECT directory_path, root_id, parent_path, depth FROM directory_roots ORDER BY depth, directory_path")
	if err != nil {
		return nil, latticeerr.Wrap(latticeerr.DatabaseError, "list all directory roots", err)
	}
	defer rows.Close()
	return scanDirectoryRoots(rows)
}

// ClearAllDirectoryRoots deletes every directory root mapping, returning
// the number of rows removed. Used when a full directory-root rebuild is
// about to repopulate the table from scratch.
func ClearAllDirectoryRoots(ctx context.Context, tx *sql.Tx) (int, error) {
	res, err := tx.ExecContext(ctx, "DELETE FROM directory_roots")
	if err != nil {
		return 0, latticeerr.Wrap(latticeerr.DatabaseError, "clear directory roots", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, latticeerr.Wrap(latticeerr.DatabaseError, "count cleared directory roots", err)
	}
	return int(n), nil
}

func scanDirectoryRoots(rows *sql.Rows) ([]DirectoryRoot, error) {
	var out []DirectoryRoot
	for rows.Next() {
		var dr DirectoryRoot
		var parentPath sql.NullString
		if err := rows.Scan(&dr.DirectoryPath, &dr.RootID, &parentPath, &dr.Depth); err != nil {
			return nil, latticeerr.Wrap(latticeerr.DatabaseError, "scan directory root", err)
		}
		dr.ParentPath = parentPath.String
		out = append(out, dr)
	}
	return out, rows.Err()
}
