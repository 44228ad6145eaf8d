package document

import (
	"strings"

	"github.com/jonathan/hash-resume/internal/types"
)

// appendItem returns a new slice with item at the end. The input is never aliased.
func appendItem[T any](list []T, item T) []T {
	out := make([]T, len(list), len(list)+1)
	copy(out, list)
	return append(out, item)
}

// removeAt returns list without element i, or list itself and false when i is out of range.
func removeAt[T any](list []T, i int) ([]T, bool) {
	if i < 0 || i >= len(list) {
		return list, false
	}
	out := make([]T, 0, len(list)-1)
	out = append(out, list[:i]...)
	return append(out, list[i+1:]...), true
}

// replaceAt returns a copy of list with element i set to item.
func replaceAt[T any](list []T, i int, item T) ([]T, bool) {
	if i < 0 || i >= len(list) {
		return list, false
	}
	out := make([]T, len(list))
	copy(out, list)
	out[i] = item
	return out, true
}

// Move removes the element at from and reinserts it at to, splice style: the
// removal happens first, so to indexes the shortened slice. Both indexes must
// address the original list. A move onto itself is rejected.
func Move[T any](list []T, from, to int) ([]T, bool) {
	if from < 0 || from >= len(list) || to < 0 || to >= len(list) || from == to {
		return list, false
	}
	item := list[from]
	rest, _ := removeAt(list, from)
	out := make([]T, 0, len(list))
	out = append(out, rest[:to]...)
	out = append(out, item)
	return append(out, rest[to:]...), true
}

// AddEntry appends an empty entry with a fresh id to the list named by kind.
func AddEntry(doc types.ResumeDocument, kind types.ListKind) (types.ResumeDocument, string, error) {
	id := newID()
	switch kind {
	case types.ListExperience:
		doc.Experience = appendItem(doc.Experience, types.ExperienceEntry{ID: id})
	case types.ListEducation:
		doc.Education = appendItem(doc.Education, types.EducationEntry{ID: id})
	case types.ListProjects:
		doc.Projects = appendItem(doc.Projects, types.ProjectEntry{ID: id, Technologies: []string{}})
	default:
		return doc, "", &FieldError{Path: string(kind), Message: "unknown list"}
	}
	return doc, id, nil
}

// RemoveEntry deletes entry i of the named list and reports whether anything
// was removed. Out of range indexes are a no-op.
func RemoveEntry(doc types.ResumeDocument, kind types.ListKind, i int) (types.ResumeDocument, bool) {
	var removed bool
	switch kind {
	case types.ListExperience:
		doc.Experience, removed = removeAt(doc.Experience, i)
	case types.ListEducation:
		doc.Education, removed = removeAt(doc.Education, i)
	case types.ListProjects:
		doc.Projects, removed = removeAt(doc.Projects, i)
	}
	return doc, removed
}

// MoveEntry reorders one list. It reports false and returns doc unchanged when
// the move is rejected.
func MoveEntry(doc types.ResumeDocument, kind types.ListKind, from, to int) (types.ResumeDocument, bool) {
	var ok bool
	switch kind {
	case types.ListExperience:
		doc.Experience, ok = Move(doc.Experience, from, to)
	case types.ListEducation:
		doc.Education, ok = Move(doc.Education, from, to)
	case types.ListProjects:
		doc.Projects, ok = Move(doc.Projects, from, to)
	}
	return doc, ok
}

// Len returns the length of the named list, or -1 for an unknown kind.
func Len(doc types.ResumeDocument, kind types.ListKind) int {
	switch kind {
	case types.ListExperience:
		return len(doc.Experience)
	case types.ListEducation:
		return len(doc.Education)
	case types.ListProjects:
		return len(doc.Projects)
	}
	return -1
}

// EntryID returns the id of entry i, or "" when i is out of range.
func EntryID(doc types.ResumeDocument, kind types.ListKind, i int) string {
	if i < 0 || i >= Len(doc, kind) {
		return ""
	}
	switch kind {
	case types.ListExperience:
		return doc.Experience[i].ID
	case types.ListEducation:
		return doc.Education[i].ID
	default:
		return doc.Projects[i].ID
	}
}

// IndexOf returns the position of the entry with id, or -1.
func IndexOf(doc types.ResumeDocument, kind types.ListKind, id string) int {
	for i, n := 0, Len(doc, kind); i < n; i++ {
		if EntryID(doc, kind, i) == id {
			return i
		}
	}
	return -1
}

// SetEntryField replaces one field of entry i. An invalid index is a no-op;
// an unknown field (including "id") is an error.
func SetEntryField(doc types.ResumeDocument, kind types.ListKind, i int, field, value string) (types.ResumeDocument, error) {
	path := string(kind) + "." + field
	switch kind {
	case types.ListExperience:
		if i < 0 || i >= len(doc.Experience) {
			return doc, checkExperienceField(field, path)
		}
		entry := doc.Experience[i]
		if err := setExperienceField(&entry, field, value, path); err != nil {
			return doc, err
		}
		doc.Experience, _ = replaceAt(doc.Experience, i, entry)
	case types.ListEducation:
		if i < 0 || i >= len(doc.Education) {
			return doc, checkEducationField(field, path)
		}
		entry := doc.Education[i]
		if err := setEducationField(&entry, field, value, path); err != nil {
			return doc, err
		}
		doc.Education, _ = replaceAt(doc.Education, i, entry)
	case types.ListProjects:
		if i < 0 || i >= len(doc.Projects) {
			return doc, checkProjectField(field, path)
		}
		entry := doc.Projects[i]
		if err := setProjectField(&entry, field, value, path); err != nil {
			return doc, err
		}
		doc.Projects, _ = replaceAt(doc.Projects, i, entry)
	default:
		return doc, &FieldError{Path: path, Message: "unknown list"}
	}
	return doc, nil
}

// SetProjectTechnologies replaces the technology tags of project i.
func SetProjectTechnologies(doc types.ResumeDocument, i int, technologies []string) types.ResumeDocument {
	if i < 0 || i >= len(doc.Projects) {
		return doc
	}
	entry := doc.Projects[i]
	entry.Technologies = append([]string{}, technologies...)
	doc.Projects, _ = replaceAt(doc.Projects, i, entry)
	return doc
}

func setExperienceField(e *types.ExperienceEntry, field, value, path string) error {
	switch field {
	case "title":
		e.Title = value
	case "company":
		e.Company = value
	case "startDate":
		e.StartDate = value
	case "endDate":
		e.EndDate = value
	case "description":
		e.Description = value
	default:
		return unknownEntryField(field, path)
	}
	return nil
}

func setEducationField(e *types.EducationEntry, field, value, path string) error {
	switch field {
	case "degree":
		e.Degree = value
	case "school":
		e.School = value
	case "startDate":
		e.StartDate = value
	case "endDate":
		e.EndDate = value
	case "description":
		e.Description = value
	default:
		return unknownEntryField(field, path)
	}
	return nil
}

func setProjectField(e *types.ProjectEntry, field, value, path string) error {
	switch field {
	case "name":
		e.Name = value
	case "description":
		e.Description = value
	case "link":
		e.Link = value
	case "technologies":
		e.Technologies = splitTags(value)
	default:
		return unknownEntryField(field, path)
	}
	return nil
}

func checkExperienceField(field, path string) error {
	return setExperienceField(&types.ExperienceEntry{}, field, "", path)
}

func checkEducationField(field, path string) error {
	return setEducationField(&types.EducationEntry{}, field, "", path)
}

func checkProjectField(field, path string) error {
	return setProjectField(&types.ProjectEntry{}, field, "", path)
}

func unknownEntryField(field, path string) error {
	if field == "id" {
		return &FieldError{Path: path, Message: "entry ids are read-only"}
	}
	return &FieldError{Path: path, Message: "unknown entry field"}
}

// splitTags turns "Go, React ,  SQL" into ["Go", "React", "SQL"].
func splitTags(text string) []string {
	tags := []string{}
	for _, part := range strings.Split(text, ",") {
		if tag := strings.TrimSpace(part); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}
