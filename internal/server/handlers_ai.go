package server

import (
	"net/http"

	"github.com/jonathan/hash-resume/internal/types"
)

// DraftResponse carries generated section content. It is a suggestion only;
// the client decides whether to apply it.
type DraftResponse struct {
	Section types.SectionType `json:"section"`
	Text    string            `json:"text"`
}

// JobSkillsResponse lists skills found in the job description.
type JobSkillsResponse struct {
	Skills []string `json:"skills"`
}

// JobDescriptionResponse is the stored job description.
type JobDescriptionResponse struct {
	JobDescription string `json:"jobDescription"`
}

func (s *Server) handleDraft(w http.ResponseWriter, r *http.Request) {
	var req types.DraftRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.failure(w, err)
		return
	}
	text, err := s.session.Draft(r.Context(), string(req.Section), req.Context, req.Current)
	if err != nil {
		s.failure(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, DraftResponse{Section: req.Section, Text: text})
}

func (s *Server) handleATS(w http.ResponseWriter, r *http.Request) {
	analysis, err := s.session.RunATS(r.Context())
	if err != nil {
		s.failure(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, analysis)
}

func (s *Server) handleJobMatch(w http.ResponseWriter, r *http.Request) {
	analysis, err := s.session.RunJobMatch(r.Context())
	if err != nil {
		s.failure(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, analysis)
}

func (s *Server) handleAnalyzeAll(w http.ResponseWriter, r *http.Request) {
	analyses, err := s.session.AnalyzeAll(r.Context())
	if err != nil {
		s.failure(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, analyses)
}

func (s *Server) handleJobSkills(w http.ResponseWriter, r *http.Request) {
	skills, err := s.session.ExtractJobSkills(r.Context())
	if err != nil {
		s.failure(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, JobSkillsResponse{Skills: skills})
}

func (s *Server) handleGetJobDescription(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, JobDescriptionResponse{JobDescription: s.session.JobDescription()})
}

// handleSetJobDescription stores pasted text. An empty string clears it.
func (s *Server) handleSetJobDescription(w http.ResponseWriter, r *http.Request) {
	var req types.JobDescriptionRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.failure(w, err)
		return
	}
	s.session.SetJobDescription(req.JobDescription)
	s.jsonResponse(w, http.StatusOK, s.session.Analyses())
}

func (s *Server) handleFetchJobDescription(w http.ResponseWriter, r *http.Request) {
	var req types.JobURLRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.failure(w, err)
		return
	}
	fetchJob := s.session.FetchJobDescription
	if req.Refresh {
		fetchJob = s.session.RefreshJobDescription
	}
	text, err := fetchJob(r.Context(), req.URL)
	if err != nil {
		s.failure(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, JobDescriptionResponse{JobDescription: text})
}

func (s *Server) handleAnalyses(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, s.session.Analyses())
}
