package links

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/latticehq/lattice/internal/latticeid"
)

// Resolver maps a Lattice ID to the document's current canonical link text
// (e.g. its display name), and reports whether the ID is known. Normalize
// uses it to rewrite bare IDs into the project's canonical link form and to
// detect references that no longer resolve.
type Resolver interface {
	Resolve(id string) (display string, ok bool)
}

// NormalizeResult is the outcome of rewriting a document body's links.
type NormalizeResult struct {
	Content       string
	HasChanges    bool
	Unresolvable  []string
}

var (
	bareIDStandaloneRe = regexp.MustCompile(`\[([A-Z2-7]{3,10})\]\(?`)
	whitespaceRunRe    = regexp.MustCompile(`[ \t]{2,}`)
	trailingSpaceRe    = regexp.MustCompile(`[ \t]+\n`)
)

// Normalize rewrites body text so that:
//   - bare Lattice IDs (standalone `[ID]` references) become canonical
//     `[display](ID)` markdown links,
//   - existing `[text](ID)` links whose text no longer matches the
//     resolver's current display name are updated to match it,
//   - duplicate/adjacent horizontal whitespace and trailing line
//     whitespace are collapsed.
//
// It returns the rewritten content, whether any change was made, and the
// set of referenced IDs the resolver could not resolve (left untouched in
// the output, per spec 4.4's non-destructive-on-unresolvable guarantee).
func Normalize(body string, resolver Resolver) NormalizeResult {
	original := body
	var unresolvable []string
	seen := map[string]bool{}

	markBad := func(id string) {
		if !seen[id] {
			seen[id] = true
			unresolvable = append(unresolvable, id)
		}
	}

	rewritten := bareIDStandaloneRe.ReplaceAllStringFunc(body, func(match string) string {
		if strings.HasSuffix(match, "(") {
			// Text of an existing [ID](dest) link, not a standalone reference.
			return match
		}
		id := match[1 : len(match)-1]
		if !latticeid.Valid(id) {
			return match
		}
		display, ok := resolver.Resolve(id)
		if !ok {
			markBad(id)
			return match
		}
		return fmt.Sprintf("[%s](%s)", display, id)
	})

	rewritten = markdownLinkRe.ReplaceAllStringFunc(rewritten, func(match string) string {
		sub := markdownLinkRe.FindStringSubmatch(match)
		text, dest := sub[1], sub[2]
		if !latticeid.Valid(dest) {
			return match
		}
		display, ok := resolver.Resolve(dest)
		if !ok {
			markBad(dest)
			return match
		}
		if text == display {
			return match
		}
		return fmt.Sprintf("[%s](%s)", display, dest)
	})

	rewritten = whitespaceRunRe.ReplaceAllString(rewritten, " ")
	rewritten = trailingSpaceRe.ReplaceAllString(rewritten, "\n")

	return NormalizeResult{
		Content:      rewritten,
		HasChanges:   rewritten != original,
		Unresolvable: unresolvable,
	}
}

// StripTrailingBlankLines removes trailing blank lines, used before
// comparing normalized content for idempotency.
func StripTrailingBlankLines(s string) string {
	return strings.TrimRight(s, "\n") + "\n"
}
