package document

import "github.com/jonathan/hash-resume/internal/types"

// sampleDocument returns a populated document used across tests.
func sampleDocument() types.ResumeDocument {
	return types.ResumeDocument{
		PersonalInfo: types.PersonalInfo{
			FullName: "Jane Doe",
			JobTitle: "Backend Engineer",
			Email:    "jane@example.com",
			Phone:    "+20 123 456 7890",
			Location: "Cairo, Egypt",
			LinkedIn: "linkedin.com/in/jane",
		},
		Summary: "Engineer with 8 years of experience.",
		Experience: []types.ExperienceEntry{
			{ID: "exp-1", Title: "Senior Engineer", Company: "Acme", StartDate: "2020", EndDate: "Present", Description: "Led payments"},
			{ID: "exp-2", Title: "Engineer", Company: "Globex", StartDate: "2016", EndDate: "2020", Description: "Built APIs"},
			{ID: "exp-3", Title: "Intern", Company: "Initech", StartDate: "2015", EndDate: "2016"},
		},
		Education: []types.EducationEntry{
			{ID: "edu-1", Degree: "BSc Computer Science", School: "Cairo University", StartDate: "2011", EndDate: "2015"},
		},
		Projects: []types.ProjectEntry{
			{ID: "prj-1", Name: "hash-resume", Description: "Resume builder", Technologies: []string{"Go", "React"}},
			{ID: "prj-2", Name: "ledger", Description: "Double entry ledger", Technologies: []string{"Go"}, Link: "https://example.com"},
		},
		Skills: []string{"Go", "PostgreSQL", "Kubernetes"},
	}
}

func experienceIDs(doc types.ResumeDocument) []string {
	ids := make([]string, len(doc.Experience))
	for i, e := range doc.Experience {
		ids[i] = e.ID
	}
	return ids
}
