package document

import (
	"strings"

	"github.com/jonathan/hash-resume/internal/types"
)

// SetSkills replaces the skills list.
func SetSkills(doc types.ResumeDocument, skills []string) types.ResumeDocument {
	doc.Skills = append([]string{}, skills...)
	return doc
}

// SetSkillsText replaces the skills list from comma-separated editor text.
// Only leading whitespace is trimmed and blanks are kept, so a trailing
// "Go, " survives while the user is still typing.
func SetSkillsText(doc types.ResumeDocument, text string) types.ResumeDocument {
	parts := strings.Split(text, ",")
	skills := make([]string, len(parts))
	for i, part := range parts {
		skills[i] = strings.TrimLeft(part, " \t\n\r")
	}
	doc.Skills = skills
	return doc
}

// SkillsText renders the skills list the way the editor displays it.
func SkillsText(doc types.ResumeDocument) string {
	return strings.Join(doc.Skills, ", ")
}

// AddSkill appends a suggested skill unless an identical entry already exists.
// One leading and one trailing quote character are stripped first; matching is exact.
func AddSkill(doc types.ResumeDocument, skill string) (types.ResumeDocument, bool) {
	clean := stripQuotes(skill)
	if HasSkill(doc, clean) {
		return doc, false
	}
	doc.Skills = appendItem(doc.Skills, clean)
	return doc, true
}

// HasSkill reports whether skill is already in the list (exact match).
func HasSkill(doc types.ResumeDocument, skill string) bool {
	for _, s := range doc.Skills {
		if s == skill {
			return true
		}
	}
	return false
}

// MergeSkills appends a comma-separated suggestion to the skills list, trimming
// each item and dropping exact duplicates while keeping first occurrences.
func MergeSkills(doc types.ResumeDocument, suggestion string) types.ResumeDocument {
	merged := make([]string, 0, len(doc.Skills))
	seen := make(map[string]bool, len(doc.Skills))
	add := func(s string) {
		if seen[s] {
			return
		}
		seen[s] = true
		merged = append(merged, s)
	}
	for _, s := range doc.Skills {
		add(s)
	}
	for _, part := range strings.Split(suggestion, ",") {
		if part = strings.TrimSpace(part); part != "" {
			add(part)
		}
	}
	doc.Skills = merged
	return doc
}

// RemoveSkill deletes skill i and reports whether it existed.
func RemoveSkill(doc types.ResumeDocument, i int) (types.ResumeDocument, bool) {
	var removed bool
	doc.Skills, removed = removeAt(doc.Skills, i)
	return doc, removed
}

// VisibleSkills returns the trimmed, non-blank skills in order. Blank filtering
// happens only here, at render time.
func VisibleSkills(doc types.ResumeDocument) []string {
	visible := make([]string, 0, len(doc.Skills))
	for _, s := range doc.Skills {
		if t := strings.TrimSpace(s); t != "" {
			visible = append(visible, t)
		}
	}
	return visible
}

func stripQuotes(s string) string {
	if s != "" && (s[0] == '"' || s[0] == '\'') {
		s = s[1:]
	}
	if n := len(s); n > 0 && (s[n-1] == '"' || s[n-1] == '\'') {
		s = s[:n-1]
	}
	return s
}
