package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFrontmatterAndBody(t *testing.T) {
	raw := []byte("---\nlattice-id: K2X2\nname: foo\ndescription: Fix the thing\npriority: 2\ntask-type: task\n---\n\nBody text here.\n")
	doc, err := Parse("api/tasks/foo.md", raw)
	require.NoError(t, err)
	assert.True(t, doc.HasFrontmatter)
	assert.Equal(t, "K2X2", doc.Frontmatter.LatticeID)
	assert.Equal(t, "foo", doc.Frontmatter.Name)
	assert.Equal(t, "Fix the thing", doc.Frontmatter.Description)
	require.NotNil(t, doc.Frontmatter.Priority)
	assert.Equal(t, 2, *doc.Frontmatter.Priority)
	assert.Equal(t, "Body text here.\n", doc.Body)
}

func TestParseBodyOnly(t *testing.T) {
	doc, err := Parse("notes.md", []byte("Just a body, no frontmatter.\n"))
	require.NoError(t, err)
	assert.False(t, doc.HasFrontmatter)
	assert.Equal(t, "Just a body, no frontmatter.\n", doc.Body)
}

func TestParseEmpty(t *testing.T) {
	doc, err := Parse("empty.md", []byte(""))
	require.NoError(t, err)
	assert.False(t, doc.HasFrontmatter)
	assert.Equal(t, "", doc.Body)
}

func TestParseUnterminatedFrontmatterFails(t *testing.T) {
	_, err := Parse("bad.md", []byte("---\nname: foo\n"))
	require.Error(t, err)
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
}

func TestParseUnknownKeySuggestsNearest(t *testing.T) {
	raw := []byte("---\nlattice-id: K2X2\nname: foo\ndescription: x\nnam: typo\n---\nbody\n")
	doc, err := Parse("foo.md", raw)
	require.NoError(t, err)
	require.Len(t, doc.UnknownKeys, 1)
	assert.Equal(t, "nam", doc.UnknownKeys[0].Key)
	assert.Equal(t, "name", doc.UnknownKeys[0].Suggestion)
}

func TestDeriveNameFromPath(t *testing.T) {
	assert.Equal(t, "foo", DeriveNameFromPath("api/tasks/foo.md"))
	assert.Equal(t, "foo", DeriveNameFromPath("foo.md"))
	assert.Equal(t, "foo", DeriveNameFromPath("foo"))
}

func TestParseWriteFixedPointForCanonicalDocument(t *testing.T) {
	raw := "---\nlattice-id: K2X2\nname: foo\ndescription: x\n---\n\nBody.\n"
	doc, err := Parse("foo.md", []byte(raw))
	require.NoError(t, err)
	out, err := Render(doc, WriteOptions{Mode: WriteBodyOnly})
	require.NoError(t, err)
	assert.Equal(t, raw, string(out))
}

func TestRenderFrontmatterOnlyCanonicalOrder(t *testing.T) {
	doc := &Document{
		Path:           "foo.md",
		HasFrontmatter: true,
		Body:           "Body.\n",
		Frontmatter: Frontmatter{
			Description: "x",
			LatticeID:   "K2X2",
			Name:        "foo",
		},
	}
	out, err := Render(doc, WriteOptions{Mode: WriteFrontmatterOnly})
	require.NoError(t, err)
	s := string(out)
	// Canonical order is lattice-id, name, description (struct field order).
	idIdx := indexOf(s, "lattice-id")
	nameIdx := indexOf(s, "name:")
	descIdx := indexOf(s, "description:")
	assert.True(t, idIdx < nameIdx && nameIdx < descIdx, "expected canonical field order, got: %s", s)
}

func indexOf(s, sub string) int {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return i
		}
	}
	return -1
}
