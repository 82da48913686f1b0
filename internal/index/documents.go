package index

import (
	"context"
	"database/sql"
	"time"

	"github.com/latticehq/lattice/internal/latticeerr"
)

// DocumentRow is the fully denormalized mirror of frontmatter plus derived
// fields described in spec 3 "DocumentRow (indexed metadata)".
type DocumentRow struct {
	ID            string
	Path          string
	Name          string
	Description   string
	ParentID      string
	TaskType      string
	Priority      *int
	CreatedAt     *time.Time
	UpdatedAt     *time.Time
	ClosedAt      *time.Time
	Skill         bool
	IsClosed      bool
	IsRoot        bool
	InTasksDir    bool
	InDocsDir     bool
	BodyHash      string
	ContentLength int
	IndexedAt     time.Time
	LinkCount     int
	BacklinkCount int
	ViewCount     int
}

const tsLayout = time.RFC3339

func formatTimePtr(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.UTC().Format(tsLayout)
}

func parseTimePtr(s sql.NullString) (*time.Time, error) {
	if !s.Valid || s.String == "" {
		return nil, nil
	}
	t, err := time.Parse(tsLayout, s.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// InsertDocument inserts a new document row (and its labels) inside tx,
// following the write-transaction ordering in spec 5: document row upsert
// first.
func InsertDocument(ctx context.Context, tx *sql.Tx, row DocumentRow, labels []string) error {
	row.IndexedAt = time.Now().UTC()
	_, err := tx.ExecContext(ctx, `
		INSERT INTO documents (
			id, path, name, description, parent_id, task_type, priority,
			created_at, updated_at, closed_at, skill, is_closed, is_root,
			in_tasks_dir, in_docs_dir, body_hash, content_length, indexed_at,
			link_count, backlink_count, view_count
		) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,0,0,0)
	`,
		row.ID, row.Path, row.Name, row.Description, nullable(row.ParentID), nullable(row.TaskType),
		nullableInt(row.Priority), formatTimePtr(row.CreatedAt), formatTimePtr(row.UpdatedAt),
		formatTimePtr(row.ClosedAt), boolToInt(row.Skill), boolToInt(row.IsClosed), boolToInt(row.IsRoot),
		boolToInt(row.InTasksDir), boolToInt(row.InDocsDir), row.BodyHash, row.ContentLength,
		row.IndexedAt.Format(tsLayout),
	)
	if err != nil {
		return latticeerr.Wrap(latticeerr.DatabaseError, "insert document", err).WithID(row.ID).WithPath(row.Path)
	}
	if err := ReplaceLabels(ctx, tx, row.ID, labels); err != nil {
		return err
	}
	return nil
}

func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func nullableInt(i *int) interface{} {
	if i == nil {
		return nil
	}
	return *i
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// GetDocument fetches a document row by id.
func GetDocument(ctx context.Context, q Queryer, id string) (*DocumentRow, error) {
	row := q.QueryRowContext(ctx, documentSelectSQL+" WHERE id = ?", id)
	return scanDocumentRow(row, id)
}

// GetDocumentByPath fetches a document row by its file path.
func GetDocumentByPath(ctx context.Context, q Queryer, path string) (*DocumentRow, error) {
	row := q.QueryRowContext(ctx, documentSelectSQL+" WHERE path = ?", path)
	return scanDocumentRow(row, "")
}

// Queryer abstracts over *sql.DB and *sql.Tx for read paths.
type Queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
}

const documentSelectSQL = `
	SELECT id, path, name, description, parent_id, task_type, priority,
	       created_at, updated_at, closed_at, skill, is_closed, is_root,
	       in_tasks_dir, in_docs_dir, body_hash, content_length, indexed_at,
	       link_count, backlink_count, view_count
	FROM documents`

// DocumentSelectSQL is the base "SELECT ... FROM documents" projection used
// by DocumentRow scans. Callers outside this package that need custom WHERE
// clauses beyond what DocumentFilter expresses (ready-task queries, for
// instance) build on top of this rather than duplicating the column list.
const DocumentSelectSQL = documentSelectSQL

type rowScanner interface {
	Scan(dest ...interface{}) error
}

// RowScanner is the subset of *sql.Row/*sql.Rows that ScanDocumentRow needs.
type RowScanner = rowScanner

// ScanDocumentRow scans one row produced by a DocumentSelectSQL-based query
// into a DocumentRow.
func ScanDocumentRow(row RowScanner, idHint string) (*DocumentRow, error) {
	return scanDocumentRow(row, idHint)
}

func scanDocumentRow(row rowScanner, idHint string) (*DocumentRow, error) {
	var (
		d                                             DocumentRow
		parentID, taskType                            sql.NullString
		priority                                      sql.NullInt64
		createdAt, updatedAt, closedAt                 sql.NullString
		skill, isClosed, isRoot, inTasks, inDocs       int
		indexedAt                                      string
	)
	err := row.Scan(
		&d.ID, &d.Path, &d.Name, &d.Description, &parentID, &taskType, &priority,
		&createdAt, &updatedAt, &closedAt, &skill, &isClosed, &isRoot,
		&inTasks, &inDocs, &d.BodyHash, &d.ContentLength, &indexedAt,
		&d.LinkCount, &d.BacklinkCount, &d.ViewCount,
	)
	if err == sql.ErrNoRows {
		return nil, latticeerr.New(latticeerr.DocumentNotFound).WithID(idHint)
	}
	if err != nil {
		return nil, latticeerr.Wrap(latticeerr.DatabaseError, "scan document row", err)
	}
	d.ParentID = parentID.String
	d.TaskType = taskType.String
	if priority.Valid {
		p := int(priority.Int64)
		d.Priority = &p
	}
	if d.CreatedAt, err = parseTimePtr(createdAt); err != nil {
		return nil, latticeerr.Wrap(latticeerr.DatabaseError, "parse created_at", err)
	}
	if d.UpdatedAt, err = parseTimePtr(updatedAt); err != nil {
		return nil, latticeerr.Wrap(latticeerr.DatabaseError, "parse updated_at", err)
	}
	if d.ClosedAt, err = parseTimePtr(closedAt); err != nil {
		return nil, latticeerr.Wrap(latticeerr.DatabaseError, "parse closed_at", err)
	}
	d.Skill = skill != 0
	d.IsClosed = isClosed != 0
	d.IsRoot = isRoot != 0
	d.InTasksDir = inTasks != 0
	d.InDocsDir = inDocs != 0
	if t, err := time.Parse(tsLayout, indexedAt); err == nil {
		d.IndexedAt = t
	}
	return &d, nil
}

// UpdateContentMetadata stamps a document's body_hash, content_length, and
// updated_at after its body content changes outside a full frontmatter
// rewrite (format, link normalization).
func UpdateContentMetadata(ctx context.Context, tx *sql.Tx, id, bodyHash string, contentLength int) error {
	res, err := tx.ExecContext(ctx,
		"UPDATE documents SET body_hash = ?, content_length = ?, updated_at = ? WHERE id = ?",
		bodyHash, contentLength, time.Now().UTC().Format(tsLayout), id)
	if err != nil {
		return latticeerr.Wrap(latticeerr.DatabaseError, "update content metadata", err).WithID(id)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return latticeerr.New(latticeerr.DocumentNotFound).WithID(id)
	}
	return nil
}

// DeleteDocument removes a document and (via triggers) its fts_content,
// views, and content_cache rows. Link and label rows referencing it are
// removed explicitly since no ON DELETE CASCADE is declared (keeping
// deletion order explicit per spec 5's fixed write-transaction ordering).
func DeleteDocument(ctx context.Context, tx *sql.Tx, id string) error {
	if _, err := tx.ExecContext(ctx, "DELETE FROM links WHERE source_id = ? OR target_id = ?", id, id); err != nil {
		return latticeerr.Wrap(latticeerr.DatabaseError, "delete links for document", err).WithID(id)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM labels WHERE document_id = ?", id); err != nil {
		return latticeerr.Wrap(latticeerr.DatabaseError, "delete labels for document", err).WithID(id)
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM documents WHERE id = ?", id)
	if err != nil {
		return latticeerr.Wrap(latticeerr.DatabaseError, "delete document", err).WithID(id)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return latticeerr.New(latticeerr.DocumentNotFound).WithID(id)
	}
	return nil
}

// ReplaceLabels deletes and reinserts a document's labels, preserving
// frontmatter order via the position column (spec 3 "Label").
func ReplaceLabels(ctx context.Context, tx *sql.Tx, documentID string, labels []string) error {
	if _, err := tx.ExecContext(ctx, "DELETE FROM labels WHERE document_id = ?", documentID); err != nil {
		return latticeerr.Wrap(latticeerr.DatabaseError, "clear labels", err).WithID(documentID)
	}
	for i, l := range labels {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO labels (document_id, label, position) VALUES (?,?,?)", documentID, l, i); err != nil {
			return latticeerr.Wrap(latticeerr.DatabaseError, "insert label "+l, err).WithID(documentID)
		}
	}
	return nil
}

// GetLabels returns a document's labels in frontmatter order.
func GetLabels(ctx context.Context, q Queryer, documentID string) ([]string, error) {
	rows, err := q.QueryContext(ctx, "SELECT label FROM labels WHERE document_id = ? ORDER BY position", documentID)
	if err != nil {
		return nil, latticeerr.Wrap(latticeerr.DatabaseError, "query labels", err).WithID(documentID)
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var l string
		if err := rows.Scan(&l); err != nil {
			return nil, latticeerr.Wrap(latticeerr.DatabaseError, "scan label", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}
