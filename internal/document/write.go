package document

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// WriteMode selects which part of a document a Write call replaces.
type WriteMode int

const (
	// WriteFull overwrites frontmatter and body.
	WriteFull WriteMode = iota
	// WriteBodyOnly replaces the body, preserving the original YAML text
	// byte-for-byte.
	WriteBodyOnly
	// WriteFrontmatterOnly re-serializes the YAML from the typed struct in
	// canonical field order, leaving the body untouched.
	WriteFrontmatterOnly
)

// WriteOptions controls write behavior.
type WriteOptions struct {
	Mode WriteMode
	// WithTimestamp stamps Frontmatter.UpdatedAt to the current UTC time
	// before serialization (only meaningful for modes that re-serialize
	// frontmatter: WriteFull and WriteFrontmatterOnly).
	WithTimestamp bool
}

// Render produces the final bytes for doc under opts without touching disk.
func Render(doc *Document, opts WriteOptions) ([]byte, error) {
	switch opts.Mode {
	case WriteBodyOnly:
		return renderWithYAML(doc, doc.VerbatimYAML), nil
	case WriteFrontmatterOnly, WriteFull:
		if opts.WithTimestamp {
			now := time.Now().UTC()
			doc.Frontmatter.UpdatedAt = &now
		}
		yamlText, err := canonicalYAML(doc.Frontmatter)
		if err != nil {
			return nil, fmt.Errorf("serialize frontmatter: %w", err)
		}
		doc.VerbatimYAML = yamlText
		return renderWithYAML(doc, yamlText), nil
	default:
		return nil, fmt.Errorf("unknown write mode %d", opts.Mode)
	}
}

func renderWithYAML(doc *Document, yamlText string) []byte {
	if !doc.HasFrontmatter && yamlText == "" {
		return []byte(doc.Body)
	}
	var b strings.Builder
	b.WriteString(delimiter)
	b.WriteString("\n")
	b.WriteString(strings.TrimRight(yamlText, "\n"))
	b.WriteString("\n")
	b.WriteString(delimiter)
	b.WriteString("\n")
	if doc.Body != "" {
		b.WriteString("\n")
		b.WriteString(doc.Body)
	}
	return []byte(b.String())
}

// canonicalYAML marshals fm in the struct's declared field order (yaml.v3
// preserves Go struct field order on Marshal), which is the canonical
// emission sequence referenced by spec 4.1.
func canonicalYAML(fm Frontmatter) (string, error) {
	out, err := yaml.Marshal(fm)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(string(out), "\n"), nil
}

// WriteFile atomically writes data to path: write to a ".lattice-tmp-*"
// temp file in the same directory, then rename over the target, per spec
// 4.1/5's write-to-temp+rename rule.
func WriteFile(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".lattice-tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) // no-op once renamed

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, perm); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename temp file onto target: %w", err)
	}
	return nil
}

// WriteDocument renders doc under opts and atomically writes it to
// doc.Path.
func WriteDocument(doc *Document, opts WriteOptions) error {
	data, err := Render(doc, opts)
	if err != nil {
		return err
	}
	return WriteFile(doc.Path, data, 0o644)
}
