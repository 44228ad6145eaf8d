// Package rendering renders the resume's export region as printable HTML or LaTeX.
package rendering

import (
	"strings"

	"github.com/jonathan/hash-resume/internal/document"
	"github.com/jonathan/hash-resume/internal/types"
)

// Header placeholders shown until the user fills them in.
const (
	PlaceholderName  = "Your Name"
	PlaceholderTitle = "Job Title"
)

// View is the template data for one rendered resume. Sections with no
// content are left empty and skipped by the templates.
type View struct {
	Name       string
	JobTitle   string
	Contact    []string
	Summary    string
	Experience []ExperienceView
	Education  []EducationView
	Projects   []ProjectView
	Skills     []string
}

// ExperienceView is one rendered experience entry
type ExperienceView struct {
	Title       string
	Company     string
	Dates       string
	Description string
}

// EducationView is one rendered education entry
type EducationView struct {
	School string
	Degree string
	Dates  string
}

// ProjectView is one rendered project entry
type ProjectView struct {
	Name         string
	Description  string
	Technologies string
	Link         string
}

// BuildView prepares doc for rendering. Blank skills are filtered here and
// nowhere earlier.
func BuildView(doc types.ResumeDocument) View {
	doc = document.Normalize(doc)
	info := doc.PersonalInfo

	v := View{
		Name:     orDefault(info.FullName, PlaceholderName),
		JobTitle: orDefault(info.JobTitle, PlaceholderTitle),
		Summary:  doc.Summary,
		Skills:   document.VisibleSkills(doc),
	}
	for _, item := range []string{info.Email, info.Phone, info.Location, info.LinkedIn} {
		if item != "" {
			v.Contact = append(v.Contact, item)
		}
	}

	for _, e := range doc.Experience {
		v.Experience = append(v.Experience, ExperienceView{
			Title:       e.Title,
			Company:     e.Company,
			Dates:       dateRange(e.StartDate, e.EndDate),
			Description: e.Description,
		})
	}
	for _, e := range doc.Education {
		v.Education = append(v.Education, EducationView{
			School: e.School,
			Degree: e.Degree,
			Dates:  dateRange(e.StartDate, e.EndDate),
		})
	}
	for _, p := range doc.Projects {
		v.Projects = append(v.Projects, ProjectView{
			Name:         p.Name,
			Description:  p.Description,
			Technologies: strings.Join(p.Technologies, ", "),
			Link:         p.Link,
		})
	}
	return v
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

// dateRange joins start and end with " - ", omitting missing halves.
func dateRange(start, end string) string {
	start, end = strings.TrimSpace(start), strings.TrimSpace(end)
	switch {
	case start == "" && end == "":
		return ""
	case start == "":
		return end
	case end == "":
		return start
	default:
		return start + " - " + end
	}
}
