package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"strings"

	"github.com/google/generative-ai-go/genai"

	"github.com/jonathan/hash-resume/internal/llm"
	"github.com/jonathan/hash-resume/internal/prompts"
	"github.com/jonathan/hash-resume/internal/schemas"
	"github.com/jonathan/hash-resume/internal/types"
)

// Response shapes requested from the model.
var (
	atsResponseSchema = &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"score": {Type: genai.TypeInteger, Description: "ATS compatibility from 0 to 100"},
			"tips": {
				Type:        genai.TypeArray,
				Items:       &genai.Schema{Type: genai.TypeString},
				Description: "up to 3 short improvement tips",
			},
		},
		Required: []string{"score", "tips"},
	}

	jobMatchResponseSchema = &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"matchPercentage": {Type: genai.TypeInteger, Description: "match from 0 to 100"},
			"missingKeywords": {
				Type:  genai.TypeArray,
				Items: &genai.Schema{Type: genai.TypeString},
			},
			"advice": {Type: genai.TypeString},
		},
		Required: []string{"matchPercentage", "missingKeywords", "advice"},
	}
)

type atsResponse struct {
	Score float64  `json:"score"`
	Tips  []string `json:"tips"`
}

type jobMatchResponse struct {
	MatchPercentage float64  `json:"matchPercentage"`
	MissingKeywords []string `json:"missingKeywords"`
	Advice          string   `json:"advice"`
}

// ATSFallback is the analysis returned when scoring fails.
func ATSFallback() types.ATSAnalysis {
	return types.ATSAnalysis{Score: 0, Tips: []string{ATSFallbackTip}}
}

// JobMatchFallback is the analysis returned when matching fails.
func JobMatchFallback() types.JobMatchAnalysis {
	return types.JobMatchAnalysis{MatchPercentage: 0, MissingKeywords: []string{}, Advice: MatchFallbackAdvice}
}

// ScoreATS rates how well doc would fare in an applicant tracking system.
func (a *Assistant) ScoreATS(ctx context.Context, doc types.ResumeDocument) types.ATSAnalysis {
	var resp atsResponse
	if err := a.generateAnalysis(ctx, "ats-score", schemas.ATSAnalysis, atsResponseSchema, map[string]string{}, doc, &resp); err != nil {
		log.Printf("[ASSISTANT] ats score: %v", err)
		return ATSFallback()
	}

	return types.ATSAnalysis{
		Score: clampPercent(resp.Score),
		Tips:  cleanList(resp.Tips, MaxTips),
	}
}

// MatchJob compares doc with a job description. A blank description returns
// the fallback without contacting the model.
func (a *Assistant) MatchJob(ctx context.Context, doc types.ResumeDocument, jobDescription string) types.JobMatchAnalysis {
	jobDescription = strings.TrimSpace(jobDescription)
	if jobDescription == "" {
		log.Printf("[ASSISTANT] job match: empty job description")
		return JobMatchFallback()
	}

	var resp jobMatchResponse
	data := map[string]string{"JobDescription": a.truncate(jobDescription)}
	if err := a.generateAnalysis(ctx, "job-match", schemas.JobMatch, jobMatchResponseSchema, data, doc, &resp); err != nil {
		log.Printf("[ASSISTANT] job match: %v", err)
		return JobMatchFallback()
	}

	advice := strings.TrimSpace(resp.Advice)
	if advice == "" {
		advice = MatchFallbackAdvice
	}
	return types.JobMatchAnalysis{
		MatchPercentage: clampPercent(resp.MatchPercentage),
		MissingKeywords: cleanList(resp.MissingKeywords, 0),
		Advice:          advice,
	}
}

// generateAnalysis runs one JSON-mode analysis prompt and decodes the validated reply into out.
func (a *Assistant) generateAnalysis(ctx context.Context, key, schemaName string, schema *genai.Schema, data map[string]string, doc types.ResumeDocument, out any) error {
	if !a.Available() {
		return llm.ErrMissingAPIKey
	}

	resume, err := resumeJSON(doc)
	if err != nil {
		return fmt.Errorf("failed to encode resume: %w", err)
	}
	data["Resume"] = resume

	prompt, err := prompts.Render(prompts.AnalysisFile, key, data)
	if err != nil {
		return err
	}

	text, err := a.client.GenerateJSON(ctx, prompt, llm.TierAnalysis, schema)
	if err != nil {
		return fmt.Errorf("LLM generation failed: %w", err)
	}
	text = llm.CleanJSONBlock(text)

	if err := schemas.Validate(schemaName, text); err != nil {
		return fmt.Errorf("unexpected response shape: %w", err)
	}
	if err := json.Unmarshal([]byte(text), out); err != nil {
		return fmt.Errorf("failed to parse LLM response: %w (content: %s)", err, text)
	}
	return nil
}

// clampPercent rounds v into 0..100.
func clampPercent(v float64) int {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return int(math.Round(v))
}

// cleanList trims items, drops blanks and keeps at most limit items (0 = all).
func cleanList(items []string, limit int) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		out = append(out, item)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}
