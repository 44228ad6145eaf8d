// Package types provides type definitions for structured data used throughout the resume builder.
package types

// ResumeDocument is the root aggregate edited by a session.
// Values are replaced wholesale on every edit; slices are never mutated in place
// once a document has been handed out.
type ResumeDocument struct {
	PersonalInfo PersonalInfo      `json:"personalInfo" yaml:"personalInfo"`
	Summary      string            `json:"summary" yaml:"summary"`
	Experience   []ExperienceEntry `json:"experience" yaml:"experience"`
	Education    []EducationEntry  `json:"education" yaml:"education"`
	Projects     []ProjectEntry    `json:"projects" yaml:"projects"`
	Skills       []string          `json:"skills" yaml:"skills"`
}

// PersonalInfo holds the header block of the resume. All fields are free text.
type PersonalInfo struct {
	FullName string `json:"fullName" yaml:"fullName"`
	JobTitle string `json:"jobTitle" yaml:"jobTitle"`
	Email    string `json:"email" yaml:"email"`
	Phone    string `json:"phone" yaml:"phone"`
	Location string `json:"location" yaml:"location"`
	LinkedIn string `json:"linkedin" yaml:"linkedin"` // profile URL, stored under the historical "linkedin" key
}

// ExperienceEntry is one position in the experience list.
type ExperienceEntry struct {
	ID          string `json:"id" yaml:"id"`
	Title       string `json:"title" yaml:"title"`
	Company     string `json:"company" yaml:"company"`
	StartDate   string `json:"startDate" yaml:"startDate"`
	EndDate     string `json:"endDate" yaml:"endDate"`
	Description string `json:"description" yaml:"description"`
}

// EducationEntry is one degree in the education list.
type EducationEntry struct {
	ID          string `json:"id" yaml:"id"`
	Degree      string `json:"degree" yaml:"degree"`
	School      string `json:"school" yaml:"school"`
	StartDate   string `json:"startDate" yaml:"startDate"`
	EndDate     string `json:"endDate" yaml:"endDate"`
	Description string `json:"description" yaml:"description"`
}

// ProjectEntry is one item in the projects list. Link is optional.
type ProjectEntry struct {
	ID           string   `json:"id" yaml:"id"`
	Name         string   `json:"name" yaml:"name"`
	Description  string   `json:"description" yaml:"description"`
	Technologies []string `json:"technologies" yaml:"technologies"`
	Link         string   `json:"link,omitempty" yaml:"link,omitempty"`
}

// ListKind identifies one of the reorderable entry lists.
type ListKind string

// Reorderable lists
const (
	ListExperience ListKind = "experience"
	ListEducation  ListKind = "education"
	ListProjects   ListKind = "projects"
)

// Valid reports whether k names a known list.
func (k ListKind) Valid() bool {
	switch k {
	case ListExperience, ListEducation, ListProjects:
		return true
	}
	return false
}

// SectionType identifies an editor section. It also selects the drafting prompt.
type SectionType string

// Editor sections
const (
	SectionPersonal   SectionType = "personal"
	SectionSummary    SectionType = "summary"
	SectionExperience SectionType = "experience"
	SectionEducation  SectionType = "education"
	SectionSkills     SectionType = "skills"
	SectionProjects   SectionType = "projects"
	SectionJobMatch   SectionType = "jobMatch"
)
