// Package reftracker answers forward/reverse reference questions over the
// link graph maintained in internal/index, per spec 4.5.
package reftracker

import (
	"context"

	"github.com/latticehq/lattice/internal/index"
	"github.com/latticehq/lattice/internal/latticeerr"
)

// Edge pairs a link row with the document it points at (Forward) or
// originates from (Reverse), grouped per spec 4.5's "results are grouped
// to the target document" requirement rather than left as bare link rows.
type Edge struct {
	Link     index.Link
	Document index.DocumentRow
}

// Forward returns id's outgoing links ordered by (link_type_priority,
// position), i.e. query_forward, each grouped with its target document.
// Links whose target document no longer exists are skipped rather than
// surfaced as a lookup error, matching
// query_forward_skips_missing_target_documents in the reference test
// suite.
func Forward(ctx context.Context, q index.Queryer, id string) ([]Edge, error) {
	links, err := index.ForwardLinks(ctx, q, id)
	if err != nil {
		return nil, err
	}
	return groupWithDocuments(ctx, q, links, func(l index.Link) string { return l.TargetID })
}

// Reverse returns the links that target id (query_reverse, backlinks),
// each grouped with its source document. Links whose source document no
// longer exists are skipped, matching
// query_reverse_skips_missing_source_documents in the reference test
// suite.
func Reverse(ctx context.Context, q index.Queryer, id string) ([]Edge, error) {
	links, err := index.ReverseLinks(ctx, q, id)
	if err != nil {
		return nil, err
	}
	return groupWithDocuments(ctx, q, links, func(l index.Link) string { return l.SourceID })
}

func groupWithDocuments(ctx context.Context, q index.Queryer, links []index.Link, endpoint func(index.Link) string) ([]Edge, error) {
	edges := make([]Edge, 0, len(links))
	for _, l := range links {
		doc, err := index.GetDocument(ctx, q, endpoint(l))
		if err != nil {
			if kind, ok := latticeerr.KindOf(err); ok && kind == latticeerr.DocumentNotFound {
				continue
			}
			return nil, err
		}
		edges = append(edges, Edge{Link: l, Document: *doc})
	}
	return edges, nil
}

// Orphans returns the IDs of every document with a backlink_count of zero,
// per spec 4.5's find_orphans: exactly the set of documents with no row in
// links where they are the target, with no exclusion for root documents.
func Orphans(ctx context.Context, q index.Queryer) ([]string, error) {
	rows, err := q.QueryContext(ctx, "SELECT id FROM documents WHERE backlink_count = 0 ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Backlinks counts targetID's incoming links, broken down by link type.
func Backlinks(ctx context.Context, q index.Queryer, targetID string) (map[index.LinkType]int, error) {
	edges, err := Reverse(ctx, q, targetID)
	if err != nil {
		return nil, err
	}
	counts := make(map[index.LinkType]int)
	for _, e := range edges {
		counts[e.Link.Type]++
	}
	return counts, nil
}
