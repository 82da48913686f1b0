// Package template implements ancestor-root template composition
// (spec 4.10): root documents can carry "[Lattice] Context" and
// "[Lattice] Acceptance Criteria" sections that flow down into the tasks
// filed beneath them.
package template

import (
	"context"
	"os"
	gopath "path"
	"path/filepath"
	"strings"

	"github.com/latticehq/lattice/internal/document"
	"github.com/latticehq/lattice/internal/index"
)

const (
	latticeSectionPrefix      = "[Lattice]"
	contextSection            = "Context"
	acceptanceCriteriaSection = "Acceptance Criteria"
)

// Composed holds the template content assembled from a document's ancestor
// root documents.
type Composed struct {
	// Context is composed general-to-specific: the outermost root's
	// context comes first, followed by progressively narrower ancestors.
	Context string
	// AcceptanceCriteria is composed specific-to-general: the nearest
	// ancestor's criteria comes first.
	AcceptanceCriteria string
	// ContributorIDs lists the root documents that contributed content,
	// in the order they were visited (root-first).
	ContributorIDs []string
}

// Sections are the template sections extracted from a single document's
// body.
type Sections struct {
	Context            string
	AcceptanceCriteria string
}

// Compose walks documentPath's ancestor root documents and assembles their
// template sections into Composed. Returns a zero Composed if the document
// has no ancestor roots or none of them carry template sections.
func Compose(ctx context.Context, q index.Queryer, repoRoot, documentPath string) (Composed, error) {
	ancestors, err := FindAncestorRoots(ctx, q, documentPath)
	if err != nil {
		return Composed{}, err
	}
	if len(ancestors) == 0 {
		return Composed{}, nil
	}

	var contextParts, acceptanceParts, contributors []string

	for _, ancestor := range ancestors {
		rootDocPath := ComputeRootDocPath(ancestor.DirectoryPath)
		absolutePath := filepath.Join(repoRoot, rootDocPath)

		raw, err := os.ReadFile(absolutePath)
		if err != nil {
			continue
		}
		doc, err := document.Parse(absolutePath, raw)
		if err != nil {
			continue
		}

		sections := ExtractSections(doc.Body)

		contributed := false
		if sections.Context != "" {
			contextParts = append(contextParts, sections.Context)
			contributed = true
		}
		if sections.AcceptanceCriteria != "" {
			acceptanceParts = append(acceptanceParts, sections.AcceptanceCriteria)
			contributed = true
		}
		if contributed {
			contributors = append(contributors, ancestor.RootID)
		}
	}

	// acceptanceParts was built root-first; reverse for nearest-ancestor-first.
	for i, j := 0, len(acceptanceParts)-1; i < j; i, j = j, i {
		acceptanceParts[i], acceptanceParts[j] = acceptanceParts[j], acceptanceParts[i]
	}

	return Composed{
		Context:            strings.Join(contextParts, "\n\n"),
		AcceptanceCriteria: strings.Join(acceptanceParts, "\n\n"),
		ContributorIDs:     contributors,
	}, nil
}

// FindAncestorRoots walks up from documentPath's parent directory until it
// finds a directory with a directory_roots entry, then returns that
// directory's full ancestor chain (root-first). This handles documents
// filed in a directory, like tasks/, that has no root document of its own.
func FindAncestorRoots(ctx context.Context, q index.Queryer, documentPath string) ([]index.DirectoryRoot, error) {
	dir := gopath.Dir(documentPath)
	for dir != "" && dir != "." {
		ancestors, err := index.GetAncestors(ctx, q, dir)
		if err != nil {
			return nil, err
		}
		if len(ancestors) > 0 {
			return ancestors, nil
		}
		parent := gopath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return nil, nil
}

// ComputeRootDocPath returns the root document path for a directory: for
// "api/tasks" that's "api/tasks/tasks.md".
func ComputeRootDocPath(directoryPath string) string {
	name := gopath.Base(directoryPath)
	if directoryPath == "" {
		return name + ".md"
	}
	return directoryPath + "/" + name + ".md"
}

// ExtractSections scans body for "[Lattice] Context" and
// "[Lattice] Acceptance Criteria" ATX headings and returns their content.
func ExtractSections(body string) Sections {
	lines := strings.Split(body, "\n")
	var sections Sections

	for i := 0; i < len(lines); i++ {
		level, kind, ok := parseLatticeHeading(lines[i])
		if !ok {
			continue
		}
		content := extractSectionContent(lines, i+1, level)
		switch kind {
		case contextSection:
			sections.Context = content
		case acceptanceCriteriaSection:
			sections.AcceptanceCriteria = content
		}
	}

	return sections
}

// parseLatticeHeading reports whether line is a "[Lattice] <Section>" ATX
// heading, returning its level and the recognized section name.
func parseLatticeHeading(line string) (level int, section string, ok bool) {
	trimmed := strings.TrimLeft(line, " \t")
	if !strings.HasPrefix(trimmed, "#") {
		return 0, "", false
	}

	hashCount := 0
	for hashCount < len(trimmed) && trimmed[hashCount] == '#' {
		hashCount++
	}
	if hashCount == 0 || hashCount > 6 {
		return 0, "", false
	}

	afterHashes := strings.TrimSpace(trimmed[hashCount:])
	if !strings.HasPrefix(afterHashes, latticeSectionPrefix) {
		return 0, "", false
	}
	afterPrefix := strings.TrimSpace(afterHashes[len(latticeSectionPrefix):])

	switch {
	case strings.EqualFold(afterPrefix, contextSection):
		return hashCount, contextSection, true
	case strings.EqualFold(afterPrefix, acceptanceCriteriaSection):
		return hashCount, acceptanceCriteriaSection, true
	default:
		return 0, "", false
	}
}

// extractSectionContent collects lines from startIndex until the next
// heading at or above headingLevel, trimming leading/trailing blank lines.
func extractSectionContent(lines []string, startIndex, headingLevel int) string {
	var content []string
	for i := startIndex; i < len(lines); i++ {
		if level, ok := headingLevelOf(lines[i]); ok && level <= headingLevel {
			break
		}
		content = append(content, lines[i])
	}

	for len(content) > 0 && content[0] == "" {
		content = content[1:]
	}
	for len(content) > 0 && content[len(content)-1] == "" {
		content = content[:len(content)-1]
	}

	return strings.Join(content, "\n")
}

// headingLevelOf returns the ATX heading level of line, if it is one.
func headingLevelOf(line string) (int, bool) {
	trimmed := strings.TrimLeft(line, " \t")
	if !strings.HasPrefix(trimmed, "#") {
		return 0, false
	}
	hashCount := 0
	for hashCount < len(trimmed) && trimmed[hashCount] == '#' {
		hashCount++
	}
	if hashCount == 0 || hashCount > 6 {
		return 0, false
	}
	rest := trimmed[hashCount:]
	if rest == "" || strings.HasPrefix(rest, " ") || strings.HasPrefix(rest, "\t") {
		return hashCount, true
	}
	return 0, false
}
