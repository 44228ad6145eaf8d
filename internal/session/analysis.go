package session

import (
	"context"
	"log"
	"strings"

	"github.com/jonathan/hash-resume/internal/types"
	"golang.org/x/sync/errgroup"
)

// Operation names an AI request kind. At most one request per kind runs at a time.
type Operation string

// AI operations
const (
	OpDraft     Operation = "draft"
	OpATS       Operation = "ats"
	OpJobMatch  Operation = "job-match"
	OpJobSkills Operation = "job-skills"
)

type atsResult struct {
	analysis types.ATSAnalysis
	revision uint64
}

type matchResult struct {
	analysis    types.JobMatchAnalysis
	revision    uint64
	jobRevision uint64
}

// Analyses is the latest result of each analysis. A result is stale once the
// document or job description it was computed from has changed; stale results
// are kept until the user runs the analysis again.
type Analyses struct {
	ATS           *types.ATSAnalysis      `json:"ats"`
	ATSStale      bool                    `json:"atsStale"`
	JobMatch      *types.JobMatchAnalysis `json:"jobMatch"`
	JobMatchStale bool                    `json:"jobMatchStale"`
}

// acquire marks op as running. The returned func releases it.
func (s *Session) acquire(op Operation) (func(), error) {
	s.busyMu.Lock()
	defer s.busyMu.Unlock()
	if s.busy[op] {
		return nil, ErrBusy
	}
	s.busy[op] = true
	return func() {
		s.busyMu.Lock()
		defer s.busyMu.Unlock()
		delete(s.busy, op)
	}, nil
}

// Busy reports whether op is running.
func (s *Session) Busy(op Operation) bool {
	s.busyMu.Lock()
	defer s.busyMu.Unlock()
	return s.busy[op]
}

// Draft asks the assistant for content for section. The suggestion is
// returned to the caller, not written into the document.
func (s *Session) Draft(ctx context.Context, section, hint, current string) (string, error) {
	release, err := s.acquire(OpDraft)
	if err != nil {
		return "", err
	}
	defer release()
	return s.assistant.Draft(ctx, section, hint, current), nil
}

// RunATS scores the current document.
func (s *Session) RunATS(ctx context.Context) (types.ATSAnalysis, error) {
	release, err := s.acquire(OpATS)
	if err != nil {
		return types.ATSAnalysis{}, err
	}
	defer release()

	snap := s.Document()
	analysis := s.assistant.ScoreATS(ctx, snap.Document)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ats == nil || s.ats.revision <= snap.Revision {
		s.ats = &atsResult{analysis: analysis, revision: snap.Revision}
	}
	return analysis, nil
}

// RunJobMatch matches the current document against the job description.
func (s *Session) RunJobMatch(ctx context.Context) (types.JobMatchAnalysis, error) {
	release, err := s.acquire(OpJobMatch)
	if err != nil {
		return types.JobMatchAnalysis{}, err
	}
	defer release()

	s.mu.RLock()
	doc, revision := s.doc, s.revision
	job, jobRevision := s.job, s.jobRevision
	s.mu.RUnlock()

	analysis := s.assistant.MatchJob(ctx, doc, job)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.match == nil || (s.match.revision <= revision && s.match.jobRevision <= jobRevision) {
		s.match = &matchResult{analysis: analysis, revision: revision, jobRevision: jobRevision}
	}
	return analysis, nil
}

// AnalyzeAll runs the ATS check and the job match concurrently.
func (s *Session) AnalyzeAll(ctx context.Context) (Analyses, error) {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		_, err := s.RunATS(gctx)
		return err
	})
	g.Go(func() error {
		_, err := s.RunJobMatch(gctx)
		return err
	})
	err := g.Wait()
	return s.Analyses(), err
}

// ExtractJobSkills lists the skills the job description asks for.
func (s *Session) ExtractJobSkills(ctx context.Context) ([]string, error) {
	release, err := s.acquire(OpJobSkills)
	if err != nil {
		return nil, err
	}
	defer release()
	return s.assistant.ExtractJobSkills(ctx, s.JobDescription()), nil
}

// SetJobDescription replaces the job description text.
func (s *Session) SetJobDescription(text string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if text != s.job {
		s.job = text
		s.jobRevision++
	}
	return s.jobRevision
}

// JobDescription returns the job description text.
func (s *Session) JobDescription() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.job
}

// FetchJobDescription loads a job posting from urlStr and makes its text the
// job description.
func (s *Session) FetchJobDescription(ctx context.Context, urlStr string) (string, error) {
	if s.jobs == nil {
		return "", ErrNoJobFetcher
	}
	result, err := s.jobs.Fetch(ctx, strings.TrimSpace(urlStr))
	if err != nil {
		return "", err
	}
	if result.FromCache {
		log.Printf("[SESSION] Job posting %s served from cache", urlStr)
	}
	s.SetJobDescription(result.Text)
	return result.Text, nil
}

// RefreshJobDescription is FetchJobDescription bypassing any cached copy of
// the posting.
func (s *Session) RefreshJobDescription(ctx context.Context, urlStr string) (string, error) {
	if inv, ok := s.jobs.(interface {
		Invalidate(ctx context.Context, urlStr string) error
	}); ok {
		if err := inv.Invalidate(ctx, strings.TrimSpace(urlStr)); err != nil {
			return "", err
		}
	}
	return s.FetchJobDescription(ctx, urlStr)
}

// Analyses returns the latest analyses and whether each is stale.
func (s *Session) Analyses() Analyses {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out Analyses
	if s.ats != nil {
		ats := s.ats.analysis
		out.ATS = &ats
		out.ATSStale = s.ats.revision != s.revision
	}
	if s.match != nil {
		match := s.match.analysis
		out.JobMatch = &match
		out.JobMatchStale = s.match.revision != s.revision || s.match.jobRevision != s.jobRevision
	}
	return out
}
