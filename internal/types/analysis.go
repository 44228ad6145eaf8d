package types

// ATSAnalysis is the transient result of an ATS compatibility check.
type ATSAnalysis struct {
	Score int      `json:"score"` // 0-100
	Tips  []string `json:"tips"`
}

// JobMatchAnalysis is the transient result of matching the resume against a job description.
type JobMatchAnalysis struct {
	MatchPercentage int      `json:"matchPercentage"` // 0-100
	MissingKeywords []string `json:"missingKeywords"`
	Advice          string   `json:"advice"`
}
