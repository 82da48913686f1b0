// Package document implements the Lattice document model: parsing and
// writing files that are an optional YAML frontmatter block followed by a
// Markdown body, per spec section 4.1.
package document

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

const delimiter = "---"

// UnknownKeyDiagnostic records a frontmatter key the parser did not
// recognize, with a best-effort nearest-known-key suggestion.
type UnknownKeyDiagnostic struct {
	Key        string
	Line       int
	Suggestion string
}

// ParseError carries a file-relative line number alongside the message.
type ParseError struct {
	Path    string
	Line    int
	Message string
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d: %s", e.Path, e.Line, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// Document is the parsed form of an on-disk file: typed frontmatter, the
// verbatim YAML text (for byte-faithful round trip), the body, and the
// line at which the body begins (1-indexed, relative to the original
// file) so callers can report body-relative errors against the real file.
type Document struct {
	Path          string
	Frontmatter   Frontmatter
	HasFrontmatter bool
	VerbatimYAML  string
	Body          string
	BodyStartLine int
	UnknownKeys   []UnknownKeyDiagnostic
}

// Parse recognizes the three shapes described in spec 4.1: frontmatter +
// body, body-only, and empty. CRLF line endings are tolerated and
// normalized to LF before parsing.
func Parse(path string, raw []byte) (*Document, error) {
	text := strings.ReplaceAll(string(raw), "\r\n", "\n")

	if text == "" {
		return &Document{Path: path, BodyStartLine: 1}, nil
	}

	lines := strings.Split(text, "\n")
	if len(lines) == 0 || strings.TrimRight(lines[0], " \t") != delimiter {
		// Shape (b): body only.
		return &Document{Path: path, Body: text, BodyStartLine: 1}, nil
	}

	closeIdx := -1
	for i := 1; i < len(lines); i++ {
		if strings.TrimRight(lines[i], " \t") == delimiter {
			closeIdx = i
			break
		}
	}
	if closeIdx == -1 {
		return nil, &ParseError{Path: path, Line: 1, Message: "unterminated frontmatter block: missing closing '---'"}
	}

	yamlText := strings.Join(lines[1:closeIdx], "\n")
	bodyLines := lines[closeIdx+1:]
	bodyStartLine := closeIdx + 2 // 1-indexed line after the closing delimiter
	// A single leading blank line right after the closing delimiter is
	// conventional and stripped; further blank lines are preserved as body.
	if len(bodyLines) > 0 && bodyLines[0] == "" {
		bodyLines = bodyLines[1:]
		bodyStartLine++ // line after the blank separator
	}
	body := strings.Join(bodyLines, "\n")

	fm, unknown, err := parseFrontmatter(yamlText, path, 2)
	if err != nil {
		return nil, err
	}

	return &Document{
		Path:           path,
		Frontmatter:    fm,
		HasFrontmatter: true,
		VerbatimYAML:   yamlText,
		Body:           body,
		BodyStartLine:  bodyStartLine,
		UnknownKeys:    unknown,
	}, nil
}

// parseFrontmatter decodes yamlText into both the typed Frontmatter struct
// and a raw map, diffing the map's keys against knownKeys to build
// unknown-key diagnostics. lineOffset is the 1-indexed line of the first
// character of yamlText within the original file, used to translate
// yaml.v3 node line numbers (which are 1-indexed within yamlText) into
// file-relative line numbers.
func parseFrontmatter(yamlText, path string, lineOffset int) (Frontmatter, []UnknownKeyDiagnostic, error) {
	var fm Frontmatter
	if strings.TrimSpace(yamlText) == "" {
		return fm, nil, nil
	}

	if err := yaml.Unmarshal([]byte(yamlText), &fm); err != nil {
		return fm, nil, &ParseError{Path: path, Line: lineOffset, Message: "invalid frontmatter YAML: " + err.Error()}
	}

	var node yaml.Node
	if err := yaml.Unmarshal([]byte(yamlText), &node); err != nil {
		return fm, nil, &ParseError{Path: path, Line: lineOffset, Message: "invalid frontmatter YAML: " + err.Error()}
	}

	var unknown []UnknownKeyDiagnostic
	if len(node.Content) > 0 {
		mapping := node.Content[0]
		if mapping.Kind == yaml.MappingNode {
			for i := 0; i+1 < len(mapping.Content); i += 2 {
				keyNode := mapping.Content[i]
				if !isKnownKey(keyNode.Value) {
					unknown = append(unknown, UnknownKeyDiagnostic{
						Key:        keyNode.Value,
						Line:       lineOffset + keyNode.Line - 1,
						Suggestion: suggestKey(keyNode.Value),
					})
				}
			}
		}
	}
	sort.Slice(unknown, func(i, j int) bool { return unknown[i].Line < unknown[j].Line })

	return fm, unknown, nil
}

func isKnownKey(k string) bool {
	for _, kk := range knownKeys {
		if kk == k {
			return true
		}
	}
	return false
}

// DeriveNameFromPath returns the file stem with its extension dropped,
// e.g. "api/tasks/foo.md" -> "foo".
func DeriveNameFromPath(path string) string {
	base := path
	if idx := strings.LastIndexAny(base, "/\\"); idx >= 0 {
		base = base[idx+1:]
	}
	if idx := strings.LastIndex(base, "."); idx > 0 {
		base = base[:idx]
	}
	return base
}

// Bytes re-renders the document in full-document form: the verbatim
// frontmatter YAML (if any) followed by the body.
func (d *Document) Bytes() []byte {
	var buf bytes.Buffer
	if d.HasFrontmatter {
		buf.WriteString(delimiter)
		buf.WriteString("\n")
		buf.WriteString(d.VerbatimYAML)
		if !strings.HasSuffix(d.VerbatimYAML, "\n") {
			buf.WriteString("\n")
		}
		buf.WriteString(delimiter)
		buf.WriteString("\n")
		if d.Body != "" {
			buf.WriteString("\n")
		}
	}
	buf.WriteString(d.Body)
	return buf.Bytes()
}
