// Package links implements body and frontmatter link extraction and
// normalization, per spec 4.4.
package links

import (
	"regexp"

	"github.com/latticehq/lattice/internal/document"
	"github.com/latticehq/lattice/internal/index"
	"github.com/latticehq/lattice/internal/latticeid"
)

// Occurrence is one extracted link before it is written to the index.
type Occurrence struct {
	TargetID string
	Type     index.LinkType
	Position int
}

// markdownLinkRe matches [text](dest) inline links ([text][ref] reference
// links are not matched);
// bareIDRe matches a standalone Lattice-ID-shaped token.
var (
	markdownLinkRe = regexp.MustCompile(`\[([^\]]*)\]\(([^)\s]+)\)`)
	bareIDRe       = regexp.MustCompile(`\b[A-Z2-7]{3,10}\b`)
)

// ExtractBody scans body for inline links and bare tokens whose
// destination matches the Lattice ID format, recording each occurrence
// with a monotonic position across the body (spec 4.4 "Body extraction").
func ExtractBody(body string) []Occurrence {
	var occurrences []Occurrence
	position := 0
	consumed := make([]bool, len(body))

	for _, m := range markdownLinkRe.FindAllStringSubmatchIndex(body, -1) {
		dest := body[m[4]:m[5]]
		if latticeid.Valid(dest) {
			occurrences = append(occurrences, Occurrence{TargetID: dest, Type: index.LinkBody, Position: position})
			position++
		}
		for i := m[0]; i < m[1] && i < len(consumed); i++ {
			consumed[i] = true
		}
	}

	for _, m := range bareIDRe.FindAllStringIndex(body, -1) {
		if m[0] < len(consumed) && consumed[m[0]] {
			continue
		}
		candidate := body[m[0]:m[1]]
		if latticeid.Valid(candidate) {
			occurrences = append(occurrences, Occurrence{TargetID: candidate, Type: index.LinkBody, Position: position})
			position++
		}
	}

	return occurrences
}

// ExtractFrontmatter reads the typed link-bearing fields (parent-id,
// blocked-by, blocking, discovered-from) and emits edges with the
// corresponding link_type values (spec 4.4 "Frontmatter extraction").
func ExtractFrontmatter(fm document.Frontmatter) []Occurrence {
	var occurrences []Occurrence
	position := 0

	add := func(ids []string, t index.LinkType) {
		for _, id := range ids {
			if latticeid.Valid(id) {
				occurrences = append(occurrences, Occurrence{TargetID: id, Type: t, Position: position})
				position++
			}
		}
	}

	if fm.ParentID != "" {
		add([]string{fm.ParentID}, index.LinkParentID)
	}
	add(fm.BlockedBy, index.LinkBlockedBy)
	add(fm.Blocking, index.LinkBlocking)
	add(fm.DiscoveredFrom, index.LinkDiscoveredFrom)

	return occurrences
}

// ExtractAll combines frontmatter and body extraction into the link set
// for a single document, used by the write path before ReplaceLinks.
func ExtractAll(fm document.Frontmatter, body string) []Occurrence {
	out := ExtractFrontmatter(fm)
	out = append(out, ExtractBody(body)...)
	return out
}

// ToIndexLinks converts extracted occurrences into index.Link rows for a
// given source document.
func ToIndexLinks(sourceID string, occurrences []Occurrence) []index.Link {
	out := make([]index.Link, 0, len(occurrences))
	for _, o := range occurrences {
		out = append(out, index.Link{SourceID: sourceID, TargetID: o.TargetID, Type: o.Type, Position: o.Position})
	}
	return out
}
