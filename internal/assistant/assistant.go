// Package assistant drafts resume content and scores documents with a
// generative model. Every operation is fail-soft: on any failure it returns a
// displayable fallback value instead of an error.
package assistant

import (
	"context"
	"encoding/json"
	"log"
	"strconv"
	"strings"

	"github.com/jonathan/hash-resume/internal/document"
	"github.com/jonathan/hash-resume/internal/llm"
	"github.com/jonathan/hash-resume/internal/prompts"
	"github.com/jonathan/hash-resume/internal/types"
)

// Fallback values returned when the model cannot be reached or replies badly.
const (
	EmptyDraftFallback  = "Could not generate suggestion."
	FailedDraftFallback = "Error generating suggestions. Please check your connection."
	ATSFallbackTip      = "Could not analyze the resume right now. Please check your connection and try again."
	MatchFallbackAdvice = "Could not compare the resume with the job description right now. Please try again."
)

// Defaults
const (
	DefaultMaxJobDescription = 5000
	DefaultSkillLimit        = 15
	MaxTips                  = 3
)

// Assistant wraps an llm.Client. A nil client means no credential is
// configured; every call then returns its fallback without network traffic.
type Assistant struct {
	client            llm.Client
	maxJobDescription int
	skillLimit        int
}

// Option configures an Assistant
type Option func(*Assistant)

// WithMaxJobDescription bounds the job description prefix sent to the model, in runes.
func WithMaxJobDescription(n int) Option {
	return func(a *Assistant) {
		if n > 0 {
			a.maxJobDescription = n
		}
	}
}

// WithSkillLimit sets how many skills ExtractJobSkills asks for.
func WithSkillLimit(n int) Option {
	return func(a *Assistant) {
		if n > 0 {
			a.skillLimit = n
		}
	}
}

// New returns an Assistant using client, which may be nil.
func New(client llm.Client, opts ...Option) *Assistant {
	a := &Assistant{
		client:            client,
		maxJobDescription: DefaultMaxJobDescription,
		skillLimit:        DefaultSkillLimit,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Available reports whether a model client is configured.
func (a *Assistant) Available() bool {
	return a != nil && a.client != nil
}

// Draft writes or rewrites content for section, guided by a free-text hint.
// The result is always displayable.
func (a *Assistant) Draft(ctx context.Context, section, hint, current string) string {
	if !a.Available() {
		log.Printf("[ASSISTANT] draft %s: %v", section, llm.ErrMissingAPIKey)
		return FailedDraftFallback
	}

	prompt, err := prompts.Render(prompts.ContentFile, draftPromptKey(section), map[string]string{
		"Section": section,
		"Context": hint,
		"Current": current,
	})
	if err != nil {
		log.Printf("[ASSISTANT] draft %s: %v", section, err)
		return FailedDraftFallback
	}

	text, err := a.client.GenerateContent(ctx, prompt, llm.TierDraft)
	if err != nil {
		log.Printf("[ASSISTANT] draft %s: %v", section, err)
		return FailedDraftFallback
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return EmptyDraftFallback
	}
	return text
}

// draftPromptKey selects the template for a section identifier.
func draftPromptKey(section string) string {
	key := strings.ToLower(strings.TrimSpace(section))
	switch types.SectionType(key) {
	case types.SectionExperience, types.SectionSummary, types.SectionSkills,
		types.SectionProjects, types.SectionEducation:
		return "section-" + key
	default:
		return "section-generic"
	}
}

// ExtractJobSkills returns the top skills named in a job description, or an
// empty list on failure.
func (a *Assistant) ExtractJobSkills(ctx context.Context, jobDescription string) []string {
	jobDescription = strings.TrimSpace(jobDescription)
	if jobDescription == "" {
		return []string{}
	}
	if !a.Available() {
		log.Printf("[ASSISTANT] extract skills: %v", llm.ErrMissingAPIKey)
		return []string{}
	}

	prompt, err := prompts.Render(prompts.AnalysisFile, "extract-skills", map[string]string{
		"JobDescription": a.truncate(jobDescription),
		"Limit":          strconv.Itoa(a.skillLimit),
	})
	if err != nil {
		log.Printf("[ASSISTANT] extract skills: %v", err)
		return []string{}
	}

	text, err := a.client.GenerateContent(ctx, prompt, llm.TierDraft)
	if err != nil {
		log.Printf("[ASSISTANT] extract skills: %v", err)
		return []string{}
	}
	skills := llm.SplitList(text)
	if skills == nil {
		return []string{}
	}
	return skills
}

// truncate keeps at most maxJobDescription runes of s.
func (a *Assistant) truncate(s string) string {
	runes := []rune(s)
	if len(runes) <= a.maxJobDescription {
		return s
	}
	return string(runes[:a.maxJobDescription])
}

// resumeJSON renders doc for a prompt. Blank skills are dropped as they are on the page.
func resumeJSON(doc types.ResumeDocument) (string, error) {
	doc = document.Normalize(doc)
	doc.Skills = document.VisibleSkills(doc)
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}
