package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetSkillsText_KeepsInProgressTyping(t *testing.T) {
	doc := SetSkillsText(New(), "Go,  Rust , ")

	// Trailing whitespace and the blank last item survive until render time
	assert.Equal(t, []string{"Go", "Rust ", ""}, doc.Skills)
	assert.Equal(t, []string{"Go", "Rust"}, VisibleSkills(doc))
}

func TestSkillsText_RoundTrip(t *testing.T) {
	doc := sampleDocument()
	assert.Equal(t, "Go, PostgreSQL, Kubernetes", SkillsText(doc))
	assert.Equal(t, doc.Skills, SetSkillsText(doc, SkillsText(doc)).Skills)
}

func TestAddSkill(t *testing.T) {
	tests := []struct {
		name     string
		skill    string
		added    bool
		expected []string
	}{
		{name: "new skill", skill: "Docker", added: true, expected: []string{"Go", "PostgreSQL", "Kubernetes", "Docker"}},
		{name: "exact duplicate", skill: "Go", added: false, expected: []string{"Go", "PostgreSQL", "Kubernetes"}},
		{name: "quoted duplicate", skill: `"Go"`, added: false, expected: []string{"Go", "PostgreSQL", "Kubernetes"}},
		{name: "single quoted new", skill: "'Terraform'", added: true, expected: []string{"Go", "PostgreSQL", "Kubernetes", "Terraform"}},
		{name: "case differs is distinct", skill: "go", added: true, expected: []string{"Go", "PostgreSQL", "Kubernetes", "go"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := sampleDocument()
			after, added := AddSkill(before, tt.skill)
			assert.Equal(t, tt.added, added)
			assert.Equal(t, tt.expected, after.Skills)
			assert.Len(t, before.Skills, 3)
		})
	}
}

func TestMergeSkills_Deduplicates(t *testing.T) {
	after := MergeSkills(sampleDocument(), "Docker, Go,  Terraform ,Docker")
	assert.Equal(t, []string{"Go", "PostgreSQL", "Kubernetes", "Docker", "Terraform"}, after.Skills)
}

func TestMergeSkills_SkipsBlankItems(t *testing.T) {
	after := MergeSkills(sampleDocument(), "Rust, , ")
	assert.Equal(t, []string{"Go", "PostgreSQL", "Kubernetes", "Rust"}, after.Skills)
}

func TestRemoveSkill(t *testing.T) {
	doc := sampleDocument()
	after, removed := RemoveSkill(doc, 1)
	assert.True(t, removed)
	assert.Equal(t, []string{"Go", "Kubernetes"}, after.Skills)

	after, removed = RemoveSkill(doc, 7)
	assert.False(t, removed)
	assert.Equal(t, doc.Skills, after.Skills)
}

func TestHasSkill(t *testing.T) {
	doc := sampleDocument()
	assert.True(t, HasSkill(doc, "PostgreSQL"))
	assert.False(t, HasSkill(doc, "postgresql"))
}
