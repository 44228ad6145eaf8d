// Package document implements copy-with-change updates of a ResumeDocument.
// Every function takes a document value and returns a new one; slices that are
// not touched by an edit keep their backing arrays so observers can compare them cheaply.
package document

import (
	"github.com/google/uuid"
	"github.com/jonathan/hash-resume/internal/types"
)

// PersonalField names a field of the personal info block.
type PersonalField string

// Personal info fields, named after their JSON keys
const (
	FieldFullName PersonalField = "fullName"
	FieldJobTitle PersonalField = "jobTitle"
	FieldEmail    PersonalField = "email"
	FieldPhone    PersonalField = "phone"
	FieldLocation PersonalField = "location"
	FieldLinkedIn PersonalField = "linkedin"
)

// newID returns a fresh entry id. UUIDs are never reused within or across sessions.
var newID = func() string {
	return uuid.NewString()
}

// New returns the empty document a session starts from.
func New() types.ResumeDocument {
	return types.ResumeDocument{
		Experience: []types.ExperienceEntry{},
		Education:  []types.EducationEntry{},
		Projects:   []types.ProjectEntry{},
		Skills:     []string{},
	}
}

// Normalize replaces nil lists with empty ones. Decoded documents may carry
// explicit nulls for lists the stored record never had.
func Normalize(doc types.ResumeDocument) types.ResumeDocument {
	if doc.Experience == nil {
		doc.Experience = []types.ExperienceEntry{}
	}
	if doc.Education == nil {
		doc.Education = []types.EducationEntry{}
	}
	if doc.Projects == nil {
		doc.Projects = []types.ProjectEntry{}
	}
	if doc.Skills == nil {
		doc.Skills = []string{}
	}
	for _, p := range doc.Projects {
		if p.Technologies != nil {
			continue
		}
		projects := make([]types.ProjectEntry, len(doc.Projects))
		copy(projects, doc.Projects)
		for i := range projects {
			if projects[i].Technologies == nil {
				projects[i].Technologies = []string{}
			}
		}
		doc.Projects = projects
		break
	}
	return doc
}

// SetPersonalField returns doc with one personal info field replaced.
func SetPersonalField(doc types.ResumeDocument, field PersonalField, value string) (types.ResumeDocument, error) {
	info := doc.PersonalInfo
	switch field {
	case FieldFullName:
		info.FullName = value
	case FieldJobTitle:
		info.JobTitle = value
	case FieldEmail:
		info.Email = value
	case FieldPhone:
		info.Phone = value
	case FieldLocation:
		info.Location = value
	case FieldLinkedIn:
		info.LinkedIn = value
	default:
		return doc, &FieldError{Path: "personalInfo." + string(field), Message: "unknown personal info field"}
	}
	doc.PersonalInfo = info
	return doc, nil
}

// SetSummary returns doc with the summary replaced.
func SetSummary(doc types.ResumeDocument, summary string) types.ResumeDocument {
	doc.Summary = summary
	return doc
}
