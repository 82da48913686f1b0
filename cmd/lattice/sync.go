package main

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	stdpath "path"

	"github.com/latticehq/lattice/internal/document"
	"github.com/latticehq/lattice/internal/index"
	"github.com/latticehq/lattice/internal/links"
	"github.com/latticehq/lattice/internal/template"
)

// hashBody returns the content hash stamped onto documents.body_hash.
func hashBody(body string) string {
	sum := sha256.Sum256([]byte(body))
	return hex.EncodeToString(sum[:])
}

// syncLinksAndFTS recomputes a document's link edges and FTS index entry
// from its current frontmatter and body, inside tx. The create, edit, fmt
// and update commands run this whenever they rewrite frontmatter or body
// content, so the links table and full-text index follow the file on disk.
func syncLinksAndFTS(ctx context.Context, tx *sql.Tx, id string, fm document.Frontmatter, body string) error {
	occurrences := links.ExtractAll(fm, body)
	if err := index.ReplaceLinks(ctx, tx, id, links.ToIndexLinks(id, occurrences)); err != nil {
		return err
	}
	return index.UpsertFTS(ctx, tx, id, body)
}

// isRootDocPath reports whether relPath is the root document for its
// containing directory (spec 4.10: "<dir>/<base(dir)>.md"). Top-level
// files have no directory to root, so they are never root documents.
func isRootDocPath(relPath string) (isRoot bool, dirPath string) {
	dirPath = stdpath.Dir(relPath)
	if dirPath == "." || dirPath == "" {
		return false, dirPath
	}
	return relPath == template.ComputeRootDocPath(dirPath), dirPath
}

// directoryRootFor builds the directory_roots row a new root document at
// dirPath/rootID should own.
func directoryRootFor(dirPath, rootID string) index.DirectoryRoot {
	parentPath := stdpath.Dir(dirPath)
	if parentPath == "." {
		parentPath = ""
	}
	return index.DirectoryRoot{
		DirectoryPath: dirPath,
		RootID:        rootID,
		ParentPath:    parentPath,
		Depth:         index.Depth(dirPath),
	}
}

// indexResolver adapts the index to links.Resolver, resolving a Lattice ID
// to its current indexed display name.
type indexResolver struct {
	ctx context.Context
	q   index.Queryer
}

func (r indexResolver) Resolve(id string) (string, bool) {
	row, err := index.GetDocument(r.ctx, r.q, id)
	if err != nil || row == nil {
		return "", false
	}
	return row.Name, true
}
