package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func intPtr(i int) *int { return &i }

func TestValidateRequiredFields(t *testing.T) {
	doc := &Document{Frontmatter: Frontmatter{}}
	errs := Validate(doc)
	fields := map[string]bool{}
	for _, e := range errs {
		fields[e.Field] = true
	}
	assert.True(t, fields["lattice-id"])
	assert.True(t, fields["name"])
	assert.True(t, fields["description"])
}

func TestValidateTaskRequiresPriority(t *testing.T) {
	doc := &Document{Frontmatter: Frontmatter{
		LatticeID:   "K2X2",
		Name:        "foo",
		Description: "d",
		TaskType:    "task",
	}}
	errs := Validate(doc)
	found := false
	for _, e := range errs {
		if e.Field == "priority" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestValidatePriorityRange(t *testing.T) {
	doc := &Document{Frontmatter: Frontmatter{
		LatticeID:   "K2X2",
		Name:        "foo",
		Description: "d",
		TaskType:    "task",
		Priority:    intPtr(5),
	}}
	errs := Validate(doc)
	found := false
	for _, e := range errs {
		if e.Field == "priority" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestValidateKnowledgeDocumentNoPriorityNeeded(t *testing.T) {
	doc := &Document{Frontmatter: Frontmatter{
		LatticeID:   "K2X2",
		Name:        "foo",
		Description: "d",
	}}
	errs := Validate(doc)
	assert.Empty(t, errs)
}

func TestValidateNameLength(t *testing.T) {
	long := make([]byte, MaxNameLength+1)
	for i := range long {
		long[i] = 'a'
	}
	doc := &Document{Frontmatter: Frontmatter{
		LatticeID:   "K2X2",
		Name:        string(long),
		Description: "d",
	}}
	errs := Validate(doc)
	found := false
	for _, e := range errs {
		if e.Field == "name" {
			found = true
		}
	}
	assert.True(t, found)
}
