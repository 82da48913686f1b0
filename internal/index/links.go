package index

import (
	"context"
	"database/sql"

	"github.com/latticehq/lattice/internal/latticeerr"
)

// LinkType enumerates the edge kinds in spec 3 "Link".
type LinkType string

const (
	LinkBody           LinkType = "Body"
	LinkBlockedBy      LinkType = "BlockedBy"
	LinkBlocking       LinkType = "Blocking"
	LinkDiscoveredFrom LinkType = "DiscoveredFrom"
	LinkParentID       LinkType = "ParentId"
)

// linkTypePriority orders link types for query_forward's
// (link_type_priority, position) sort, per spec 4.5.
var linkTypePriority = map[LinkType]int{
	LinkParentID:       0,
	LinkBlockedBy:      1,
	LinkBlocking:       2,
	LinkDiscoveredFrom: 3,
	LinkBody:           4,
}

// LinkTypePriority returns the sort priority for a link type (lower sorts
// first), defaulting to the priority of LinkBody for unknown types.
func LinkTypePriority(t LinkType) int {
	if p, ok := linkTypePriority[t]; ok {
		return p
	}
	return linkTypePriority[LinkBody]
}

// Link is one row of the links table (spec 3 "Link").
type Link struct {
	SourceID string
	TargetID string
	Type     LinkType
	Position int
}

// ReplaceLinks deletes a source document's existing links and inserts the
// given set, inside tx. Links are always recomputed from source-of-truth
// file content on every write (spec 3): the index never mutates them
// independently.
func ReplaceLinks(ctx context.Context, tx *sql.Tx, sourceID string, links []Link) error {
	if _, err := tx.ExecContext(ctx, "DELETE FROM links WHERE source_id = ?", sourceID); err != nil {
		return latticeerr.Wrap(latticeerr.DatabaseError, "clear links", err).WithID(sourceID)
	}
	for _, l := range links {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO links (source_id, target_id, link_type, position) VALUES (?,?,?,?)",
			sourceID, l.TargetID, string(l.Type), l.Position); err != nil {
			return latticeerr.Wrap(latticeerr.DatabaseError, "insert link", err).WithID(sourceID)
		}
	}
	return nil
}

// ForwardLinks returns sourceID's outgoing links ordered by
// (link_type_priority, position) per spec 4.5's query_forward.
func ForwardLinks(ctx context.Context, q Queryer, sourceID string) ([]Link, error) {
	return queryLinks(ctx, q, "source_id", sourceID)
}

// ReverseLinks returns targetID's incoming links.
func ReverseLinks(ctx context.Context, q Queryer, targetID string) ([]Link, error) {
	return queryLinksBy(ctx, q, "target_id", targetID)
}

func queryLinks(ctx context.Context, q Queryer, col, id string) ([]Link, error) {
	rows, err := q.QueryContext(ctx, "SELECT source_id, target_id, link_type, position FROM links WHERE "+col+" = ?", id)
	if err != nil {
		return nil, latticeerr.Wrap(latticeerr.DatabaseError, "query links", err).WithID(id)
	}
	defer rows.Close()
	links, err := scanLinks(rows)
	if err != nil {
		return nil, err
	}
	sortByTypePriorityThenPosition(links)
	return links, nil
}

func queryLinksBy(ctx context.Context, q Queryer, col, id string) ([]Link, error) {
	return queryLinks(ctx, q, col, id)
}

func scanLinks(rows *sql.Rows) ([]Link, error) {
	var out []Link
	for rows.Next() {
		var l Link
		var lt string
		if err := rows.Scan(&l.SourceID, &l.TargetID, &lt, &l.Position); err != nil {
			return nil, latticeerr.Wrap(latticeerr.DatabaseError, "scan link", err)
		}
		l.Type = LinkType(lt)
		out = append(out, l)
	}
	return out, rows.Err()
}

func sortByTypePriorityThenPosition(links []Link) {
	// Small N per document; insertion sort is fine and keeps this
	// allocation-free relative to sort.Slice's closure.
	for i := 1; i < len(links); i++ {
		j := i
		for j > 0 && less(links[j], links[j-1]) {
			links[j], links[j-1] = links[j-1], links[j]
			j--
		}
	}
}

func less(a, b Link) bool {
	pa, pb := LinkTypePriority(a.Type), LinkTypePriority(b.Type)
	if pa != pb {
		return pa < pb
	}
	return a.Position < b.Position
}
