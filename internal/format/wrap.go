// Package format implements structure-preserving Markdown text wrapping
// (spec 4.11): paragraphs wrap at a configured width while code blocks,
// tables, headings, and markdown link syntax pass through untouched.
package format

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// DefaultLineWidth is the wrap width used when Config.LineWidth is unset.
const DefaultLineWidth = 80

// Config controls Wrap's behavior.
type Config struct {
	LineWidth int
}

// DefaultConfig returns a Config using DefaultLineWidth.
func DefaultConfig() Config {
	return Config{LineWidth: DefaultLineWidth}
}

// Result is the outcome of a Wrap call.
type Result struct {
	Content  string
	Modified bool
}

// Wrap rewraps content's paragraphs, list items, and blockquotes to
// cfg.LineWidth, leaving code blocks, tables, headings, and HTML blocks
// untouched. Markdown link syntax ([text](url)) is never split across
// lines.
func Wrap(content string, cfg Config) Result {
	if cfg.LineWidth <= 0 {
		cfg.LineWidth = DefaultLineWidth
	}
	hadTrailingNewline := strings.HasSuffix(content, "\n")
	lines := strings.Split(strings.TrimSuffix(content, "\n"), "\n")
	var result []string
	modified := false

	i := 0
	for i < len(lines) {
		line := lines[i]
		if isFencedCodeStart(line) {
			var block []string
			block, i = processFencedCodeBlock(lines, i)
			result = append(result, block...)
			continue
		}
		if shouldPreserveUnchanged(line) {
			result = append(result, line)
			i++
			continue
		}
		wrapped, wasModified := wrapLine(line, cfg)
		result = append(result, wrapped...)
		modified = modified || wasModified
		i++
	}

	out := strings.Join(result, "\n")
	if hadTrailingNewline {
		out += "\n"
	}
	return Result{Content: out, Modified: modified}
}

func processFencedCodeBlock(lines []string, start int) ([]string, int) {
	fence := extractFence(lines[start])
	block := []string{lines[start]}
	i := start + 1
	for i < len(lines) {
		inner := lines[i]
		block = append(block, inner)
		i++
		if isMatchingFenceEnd(inner, fence) {
			break
		}
	}
	return block, i
}

func shouldPreserveUnchanged(line string) bool {
	return isIndentedCode(line) ||
		isTableLine(line) ||
		isHTMLBlock(line) ||
		isHeading(line) ||
		strings.TrimSpace(line) == ""
}

func wrapLine(line string, cfg Config) ([]string, bool) {
	switch {
	case isListItem(line):
		return wrapListItem(line, cfg)
	case isBlockquote(line):
		return wrapBlockquote(line, cfg)
	default:
		return wrapParagraphLine(line, cfg)
	}
}

func isFencedCodeStart(line string) bool {
	trimmed := strings.TrimLeft(line, " \t")
	return strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~")
}

func extractFence(line string) string {
	trimmed := strings.TrimLeft(line, " \t")
	switch {
	case strings.HasPrefix(trimmed, "```"):
		return "```"
	case strings.HasPrefix(trimmed, "~~~"):
		return "~~~"
	default:
		return ""
	}
}

func isMatchingFenceEnd(line, fence string) bool {
	trimmed := strings.TrimSpace(line)
	if trimmed == fence {
		return true
	}
	return strings.HasPrefix(trimmed, fence) && strings.TrimSpace(trimmed[len(fence):]) == ""
}

func isIndentedCode(line string) bool {
	return strings.HasPrefix(line, "    ") || strings.HasPrefix(line, "\t")
}

func isTableLine(line string) bool {
	trimmed := strings.TrimSpace(line)
	return strings.Contains(trimmed, "|") && !strings.HasPrefix(trimmed, "[")
}

func isHTMLBlock(line string) bool {
	trimmed := strings.TrimLeft(line, " \t")
	return strings.HasPrefix(trimmed, "<") && !strings.HasPrefix(trimmed, "<http")
}

func isHeading(line string) bool {
	return strings.HasPrefix(strings.TrimLeft(line, " \t"), "#")
}

func isListItem(line string) bool {
	trimmed := strings.TrimLeft(line, " \t")
	switch trimmed {
	case "-", "*", "+":
		return true
	}
	if strings.HasPrefix(trimmed, "- ") || strings.HasPrefix(trimmed, "* ") || strings.HasPrefix(trimmed, "+ ") {
		return true
	}
	return isOrderedListItem(trimmed)
}

func isOrderedListItem(trimmed string) bool {
	i := 0
	for i < len(trimmed) && trimmed[i] >= '0' && trimmed[i] <= '9' {
		i++
	}
	if i == 0 {
		return false
	}
	if i >= len(trimmed) || (trimmed[i] != '.' && trimmed[i] != ')') {
		return false
	}
	i++
	return i == len(trimmed) || trimmed[i] == ' '
}

func isBlockquote(line string) bool {
	return strings.HasPrefix(strings.TrimLeft(line, " \t"), ">")
}

func wrapListItem(line string, cfg Config) ([]string, bool) {
	indent := len(line) - len(strings.TrimLeft(line, " \t"))
	indentStr := line[:indent]
	trimmed := line[indent:]
	markerEnd := findListMarkerEnd(trimmed)
	marker := trimmed[:markerEnd]
	content := strings.TrimLeft(trimmed[markerEnd:], " \t")

	continuationIndent := indent + runewidth.StringWidth(marker) + 1
	continuationStr := strings.Repeat(" ", continuationIndent)
	firstLineWidth := saturatingSub(cfg.LineWidth, indent+len(marker)+1)

	if content == "" || runewidth.StringWidth(content) <= firstLineWidth {
		return []string{line}, false
	}

	wrapped := wrapTextWithIndent(content, firstLineWidth, saturatingSub(cfg.LineWidth, continuationIndent))
	result := make([]string, len(wrapped))
	for i, w := range wrapped {
		if i == 0 {
			result[i] = indentStr + marker + " " + w
		} else {
			result[i] = continuationStr + w
		}
	}
	return result, len(wrapped) > 1
}

func findListMarkerEnd(line string) int {
	if strings.HasPrefix(line, "- ") || strings.HasPrefix(line, "* ") || strings.HasPrefix(line, "+ ") {
		return 1
	}
	if line == "-" || line == "*" || line == "+" {
		return 1
	}
	i := 0
	for i < len(line) && line[i] >= '0' && line[i] <= '9' {
		i++
	}
	if i < len(line) && (line[i] == '.' || line[i] == ')') {
		return i + 1
	}
	return 0
}

func wrapBlockquote(line string, cfg Config) ([]string, bool) {
	indent := len(line) - len(strings.TrimLeft(line, " \t"))
	indentStr := line[:indent]
	trimmed := line[indent:]

	markerEnd := 0
	for markerEnd < len(trimmed) && (trimmed[markerEnd] == '>' || trimmed[markerEnd] == ' ') {
		markerEnd++
	}
	marker := trimmed[:markerEnd]
	content := trimmed[markerEnd:]

	availableWidth := saturatingSub(cfg.LineWidth, indent+len(marker))
	if content == "" || runewidth.StringWidth(content) <= availableWidth {
		return []string{line}, false
	}

	wrapped := wrapTextWithIndent(content, availableWidth, availableWidth)
	result := make([]string, len(wrapped))
	for i, w := range wrapped {
		result[i] = indentStr + marker + w
	}
	return result, len(wrapped) > 1
}

func wrapParagraphLine(line string, cfg Config) ([]string, bool) {
	indent := len(line) - len(strings.TrimLeft(line, " \t"))
	indentStr := line[:indent]
	content := line[indent:]

	availableWidth := saturatingSub(cfg.LineWidth, indent)
	if content == "" || runewidth.StringWidth(content) <= availableWidth {
		return []string{line}, false
	}

	wrapped := wrapTextWithIndent(content, availableWidth, availableWidth)
	result := make([]string, len(wrapped))
	for i, w := range wrapped {
		result[i] = indentStr + w
	}
	return result, len(wrapped) > 1
}

func wrapTextWithIndent(content string, firstLineWidth, subsequentWidth int) []string {
	tokens := tokenize(content)
	var lines []string
	var current strings.Builder
	currentWidth := 0
	isFirstLine := true

	for _, token := range tokens {
		tokenWidth := runewidth.StringWidth(token)
		maxWidth := subsequentWidth
		if isFirstLine {
			maxWidth = firstLineWidth
		}

		if current.Len() == 0 {
			current.WriteString(token)
			currentWidth = tokenWidth
			continue
		}

		spaceWidth := 1
		cur := current.String()
		if strings.HasSuffix(cur, " ") {
			spaceWidth = 0
		}

		if currentWidth+spaceWidth+tokenWidth > maxWidth {
			lines = append(lines, strings.TrimRight(current.String(), " "))
			current.Reset()
			current.WriteString(token)
			currentWidth = tokenWidth
			isFirstLine = false
		} else {
			if !strings.HasSuffix(cur, " ") && !strings.HasPrefix(token, " ") {
				current.WriteString(" ")
				currentWidth++
			}
			current.WriteString(token)
			currentWidth += tokenWidth
		}
	}
	if current.Len() > 0 {
		lines = append(lines, strings.TrimRight(current.String(), " "))
	}
	return lines
}

// tokenize splits content into words, keeping markdown link syntax
// ([text](url)) as a single atomic token so wrapping never breaks it.
func tokenize(content string) []string {
	var tokens []string
	var current strings.Builder
	runes := []rune(content)
	i := 0
	for i < len(runes) {
		c := runes[i]
		switch {
		case c == '[':
			if current.Len() > 0 {
				tokens = append(tokens, current.String())
				current.Reset()
			}
			link, next := captureMarkdownLink(runes, i)
			tokens = append(tokens, link)
			i = next
		case isSpace(c):
			if current.Len() > 0 {
				tokens = append(tokens, current.String())
				current.Reset()
			}
			i++
		default:
			current.WriteRune(c)
			i++
		}
	}
	if current.Len() > 0 {
		tokens = append(tokens, current.String())
	}
	return tokens
}

func isSpace(c rune) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\v' || c == '\f'
}

// captureMarkdownLink consumes a full "[text](url)" link starting at
// runes[start] == '['. Returns the captured text and the index just past
// the link (or past an unterminated "[" if no closing bracket is found).
func captureMarkdownLink(runes []rune, start int) (string, int) {
	var sb strings.Builder
	sb.WriteRune(runes[start])
	bracketDepth := 1
	inLinkDest := false
	parenDepth := 0

	i := start + 1
	for i < len(runes) {
		c := runes[i]
		sb.WriteRune(c)
		i++

		if !inLinkDest {
			switch c {
			case '[':
				bracketDepth++
			case ']':
				bracketDepth--
				if bracketDepth == 0 {
					if i < len(runes) && runes[i] == '(' {
						inLinkDest = true
						sb.WriteRune('(')
						i++
						parenDepth = 1
					} else {
						return sb.String(), i
					}
				}
			}
		} else {
			switch c {
			case '(':
				parenDepth++
			case ')':
				parenDepth--
				if parenDepth == 0 {
					return sb.String(), i
				}
			}
		}
	}
	return sb.String(), i
}

func saturatingSub(a, b int) int {
	if b >= a {
		return 0
	}
	return a - b
}
