package index

import (
	"context"
	"fmt"
	"strings"

	"github.com/latticehq/lattice/internal/latticeerr"
)

// SortColumn selects the column DocumentFilter results are ordered by.
type SortColumn string

const (
	SortByCreatedAt SortColumn = "created_at"
	SortByUpdatedAt SortColumn = "updated_at"
	SortByPriority  SortColumn = "priority"
	SortByName      SortColumn = "name"
)

// SortOrder selects ascending or descending order.
type SortOrder string

const (
	Asc  SortOrder = "ASC"
	Desc SortOrder = "DESC"
)

// DocumentFilter is the composable filter value described in spec 4.3.
type DocumentFilter struct {
	PathPrefix     string
	TaskType       string
	PriorityMin    *int
	PriorityMax    *int
	Closed         *bool
	RootOnly       bool
	LabelsAll      []string
	LabelsAny      []string
	InTasksDir     *bool
	InDocsDir      *bool
	Skill          *bool
	SortBy         SortColumn
	SortOrder      SortOrder
	Limit          int
}

// List assembles and executes a parameterized query over DocumentFilter,
// per spec 4.3 "Queries assemble parameterized SQL and bind values
// positionally."
func List(ctx context.Context, q Queryer, f DocumentFilter) ([]*DocumentRow, error) {
	var where []string
	var args []interface{}

	if f.PathPrefix != "" {
		where = append(where, "path LIKE ?")
		args = append(args, f.PathPrefix+"%")
	}
	if f.TaskType != "" {
		where = append(where, "task_type = ?")
		args = append(args, f.TaskType)
	}
	if f.PriorityMin != nil {
		where = append(where, "priority >= ?")
		args = append(args, *f.PriorityMin)
	}
	if f.PriorityMax != nil {
		where = append(where, "priority <= ?")
		args = append(args, *f.PriorityMax)
	}
	if f.Closed != nil {
		where = append(where, "is_closed = ?")
		args = append(args, boolToInt(*f.Closed))
	}
	if f.RootOnly {
		where = append(where, "is_root = 1")
	}
	if f.InTasksDir != nil {
		where = append(where, "in_tasks_dir = ?")
		args = append(args, boolToInt(*f.InTasksDir))
	}
	if f.InDocsDir != nil {
		where = append(where, "in_docs_dir = ?")
		args = append(args, boolToInt(*f.InDocsDir))
	}
	if f.Skill != nil {
		where = append(where, "skill = ?")
		args = append(args, boolToInt(*f.Skill))
	}
	for _, l := range f.LabelsAll {
		where = append(where, "EXISTS (SELECT 1 FROM labels WHERE document_id = documents.id AND label = ?)")
		args = append(args, l)
	}
	if len(f.LabelsAny) > 0 {
		placeholders := make([]string, len(f.LabelsAny))
		for i, l := range f.LabelsAny {
			placeholders[i] = "?"
			args = append(args, l)
		}
		where = append(where, fmt.Sprintf(
			"EXISTS (SELECT 1 FROM labels WHERE document_id = documents.id AND label IN (%s))",
			strings.Join(placeholders, ",")))
	}

	query := documentSelectSQL
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}

	sortBy := f.SortBy
	if sortBy == "" {
		sortBy = SortByCreatedAt
	}
	sortOrder := f.SortOrder
	if sortOrder == "" {
		sortOrder = Asc
	}
	query += fmt.Sprintf(" ORDER BY %s %s", sortBy, sortOrder)

	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, latticeerr.Wrap(latticeerr.DatabaseError, "list documents", err)
	}
	defer rows.Close()

	var out []*DocumentRow
	for rows.Next() {
		d, err := scanDocumentRow(rows, "")
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
