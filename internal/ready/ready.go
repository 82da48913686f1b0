// Package ready implements the "what can I work on" query described in
// spec 4.9: tasks that are open, unblocked, and (by default) not already
// claimed by someone else.
package ready

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/latticehq/lattice/internal/claim"
	"github.com/latticehq/lattice/internal/index"
)

// SortPolicy controls how ready tasks are ordered.
type SortPolicy string

const (
	// SortHybrid orders by priority first (P0 first), then creation date
	// (oldest first) within the same priority. The default.
	SortHybrid SortPolicy = "hybrid"
	// SortPriority orders strictly by priority, ties broken by database order.
	SortPriority SortPolicy = "priority"
	// SortOldest orders by creation date only, ignoring priority.
	SortOldest SortPolicy = "oldest"
)

// Filter narrows a ready-task query. The zero value excludes backlog (P4)
// and claimed tasks, matching spec 4.9's stated defaults.
type Filter struct {
	IncludeBacklog bool
	IncludeClaimed bool
	PathPrefix     string
	TaskType       string
	Priority       *int
	LabelsAll      []string
	LabelsAny      []string
	Limit          int
	SortPolicy     SortPolicy
}

// Task pairs an indexed document with whether it's currently claimed.
// Claimed is always false unless the filter set IncludeClaimed.
type Task struct {
	Document index.DocumentRow
	Claimed  bool
}

const backlogPriority = 4

// Query returns tasks matching the ready criteria from spec 4.9: has a
// task type, not closed, not blocked by an open task, priority below
// backlog unless IncludeBacklog is set, and not claimed unless
// IncludeClaimed is set. Claim filtering happens after the SQL fetch, so
// the SQL-level LIMIT is only safe to apply when IncludeClaimed is true;
// otherwise post-fetch filtering could leave a short page that a client
// would mistake for "no more results".
func Query(ctx context.Context, q index.Queryer, repoRoot string, f Filter) ([]Task, error) {
	sqlText, args := buildQuery(f)

	rows, err := q.QueryContext(ctx, sqlText, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var fetched []*index.DocumentRow
	for rows.Next() {
		d, err := index.ScanDocumentRow(rows, "")
		if err != nil {
			return nil, err
		}
		fetched = append(fetched, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	latticeDir := filepath.Join(repoRoot, ".lattice")

	var out []Task
	for _, doc := range fetched {
		if f.Limit > 0 && len(out) >= f.Limit {
			break
		}

		claimed := false
		if rec, err := claim.Get(latticeDir, doc.ID); err == nil && rec != nil {
			claimed = true
		}

		if claimed && !f.IncludeClaimed {
			continue
		}

		out = append(out, Task{Document: *doc, Claimed: claimed})
	}

	return out, nil
}

// Count returns the number of ready tasks matching f, without fetching
// full documents or checking claims (claim filtering happens post-query,
// so an exact claimed-excluded count would require the full fetch anyway).
func Count(ctx context.Context, q index.Queryer, f Filter) (int, error) {
	sqlText, args := buildCountQuery(f)
	row := q.QueryRowContext(ctx, sqlText, args...)
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// SortForPolicy returns the column and direction a policy sorts by, for
// callers that want to express the same order through index.DocumentFilter.
func SortForPolicy(policy SortPolicy) (index.SortColumn, index.SortOrder) {
	switch policy {
	case SortOldest:
		return index.SortByCreatedAt, index.Asc
	default:
		return index.SortByPriority, index.Asc
	}
}

func buildQuery(f Filter) (string, []interface{}) {
	var sb strings.Builder
	sb.WriteString(index.DocumentSelectSQL)
	sb.WriteString(" WHERE 1=1")
	args := appendReadyConditions(&sb, f)
	appendReadySort(&sb, f)

	if f.IncludeClaimed && f.Limit > 0 {
		sb.WriteString(" LIMIT ?")
		args = append(args, f.Limit)
	}
	return sb.String(), args
}

func buildCountQuery(f Filter) (string, []interface{}) {
	var sb strings.Builder
	sb.WriteString("SELECT COUNT(*) FROM documents WHERE 1=1")
	args := appendReadyConditions(&sb, f)
	return sb.String(), args
}

func appendReadyConditions(sb *strings.Builder, f Filter) []interface{} {
	var args []interface{}

	sb.WriteString(" AND task_type IS NOT NULL")
	sb.WriteString(" AND is_closed = 0")

	sb.WriteString(fmt.Sprintf(
		` AND NOT EXISTS (
			SELECT 1 FROM links l
			JOIN documents d2 ON l.target_id = d2.id
			WHERE l.source_id = documents.id
			AND l.link_type = '%s'
			AND d2.is_closed = 0
		)
		AND NOT EXISTS (
			SELECT 1 FROM links l
			JOIN documents d2 ON l.source_id = d2.id
			WHERE l.target_id = documents.id
			AND l.link_type = '%s'
			AND d2.is_closed = 0
		)`, index.LinkBlockedBy, index.LinkBlocking))

	if !f.IncludeBacklog {
		sb.WriteString(" AND priority < ?")
		args = append(args, backlogPriority)
	}

	if f.PathPrefix != "" {
		sb.WriteString(" AND path LIKE ?")
		args = append(args, f.PathPrefix+"%")
	}

	if f.TaskType != "" {
		sb.WriteString(" AND task_type = ?")
		args = append(args, f.TaskType)
	}

	if f.Priority != nil {
		sb.WriteString(" AND priority = ?")
		args = append(args, *f.Priority)
	}

	for _, l := range f.LabelsAll {
		sb.WriteString(" AND EXISTS (SELECT 1 FROM labels WHERE labels.document_id = documents.id AND labels.label = ?)")
		args = append(args, l)
	}

	if len(f.LabelsAny) > 0 {
		placeholders := make([]string, len(f.LabelsAny))
		for i, l := range f.LabelsAny {
			placeholders[i] = "?"
			args = append(args, l)
		}
		sb.WriteString(fmt.Sprintf(
			" AND EXISTS (SELECT 1 FROM labels WHERE labels.document_id = documents.id AND labels.label IN (%s))",
			strings.Join(placeholders, ", ")))
	}

	return args
}

func appendReadySort(sb *strings.Builder, f Filter) {
	switch f.SortPolicy {
	case SortPriority:
		sb.WriteString(" ORDER BY priority ASC")
	case SortOldest:
		sb.WriteString(" ORDER BY created_at ASC")
	default:
		sb.WriteString(" ORDER BY priority ASC, created_at ASC")
	}
}
