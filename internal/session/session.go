// Package session holds the state of one editing session: the current résumé
// document, its autosave, the drag in progress, AI analyses, the payment
// confirmation flow and the export gate.
package session

import (
	"context"
	"errors"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonathan/hash-resume/internal/assistant"
	"github.com/jonathan/hash-resume/internal/document"
	"github.com/jonathan/hash-resume/internal/fetch"
	"github.com/jonathan/hash-resume/internal/payment"
	"github.com/jonathan/hash-resume/internal/reorder"
	"github.com/jonathan/hash-resume/internal/storage"
	"github.com/jonathan/hash-resume/internal/types"
)

var (
	// ErrBusy is returned when the same AI operation is already running.
	ErrBusy = errors.New("operation already in progress")
	// ErrExportLocked is returned by Export until a payment is confirmed.
	ErrExportLocked = errors.New("export is locked until payment is confirmed")
	// ErrNoJobFetcher is returned when fetching a job posting without a fetcher.
	ErrNoJobFetcher = errors.New("job posting fetching is not configured")
)

// JobFetcher loads job posting text from a URL.
type JobFetcher interface {
	Fetch(ctx context.Context, urlStr string) (*fetch.CachedResult, error)
}

// PDFPrinter prints an HTML document to PDF.
type PDFPrinter func(ctx context.Context, html string) ([]byte, error)

// Options wires a Session to its collaborators. Only Gateway is required for
// payments to work; every other field has a usable default.
type Options struct {
	Key         string
	QuietPeriod time.Duration
	Assistant   *assistant.Assistant
	Gateway     payment.Gateway
	Flow        payment.FlowConfig
	Jobs        JobFetcher
	PrintPDF    PDFPrinter
}

// Session is safe for concurrent use.
type Session struct {
	saver     *storage.Saver
	store     storage.Store
	key       string
	drag      reorder.Engine
	assistant *assistant.Assistant
	flow      *payment.Flow
	jobs      JobFetcher
	printPDF  PDFPrinter
	unlocked  atomic.Bool

	mu          sync.RWMutex
	doc         types.ResumeDocument
	revision    uint64
	saveWarning string
	job         string
	jobRevision uint64
	ats         *atsResult
	match       *matchResult

	busyMu sync.Mutex
	busy   map[Operation]bool
}

// Snapshot is the document as seen at one revision.
type Snapshot struct {
	Document    types.ResumeDocument `json:"document"`
	Revision    uint64               `json:"revision"`
	SaveWarning string               `json:"saveWarning,omitempty"`
}

// New returns a session with an empty document. Call Load to restore the
// persisted one.
func New(store storage.Store, opts Options) *Session {
	if opts.Key == "" {
		opts.Key = storage.DefaultKey
	}
	if opts.Assistant == nil {
		opts.Assistant = assistant.New(nil)
	}
	if opts.Gateway == nil {
		opts.Gateway = unconfiguredGateway{}
	}
	if opts.PrintPDF == nil {
		opts.PrintPDF = func(ctx context.Context, html string) ([]byte, error) {
			return fetch.PrintPDF(ctx, html, nil)
		}
	}

	s := &Session{
		saver:     storage.NewSaver(store, opts.Key, opts.QuietPeriod),
		store:     store,
		key:       opts.Key,
		assistant: opts.Assistant,
		flow:      payment.NewFlow(opts.Gateway, opts.Flow),
		jobs:      opts.Jobs,
		printPDF:  opts.PrintPDF,
		doc:       document.New(),
		busy:      make(map[Operation]bool),
	}
	s.saver.OnError(s.recordSaveError)
	s.flow.OnConfirmed(func() {
		s.unlocked.Store(true)
		log.Printf("[SESSION] Export unlocked")
	})
	return s
}

// Load replaces the in-memory document with the persisted one, or the empty
// default when nothing usable is stored. Loading does not schedule a save.
func (s *Session) Load(ctx context.Context) Snapshot {
	doc := storage.Load(ctx, s.store, s.key)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc = doc
	s.revision++
	return s.snapshotLocked()
}

// Document returns the current document.
func (s *Session) Document() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// Update applies fn to the current document. When fn succeeds the result
// becomes the current document and a save is scheduled.
func (s *Session) Update(fn func(types.ResumeDocument) (types.ResumeDocument, error)) (Snapshot, error) {
	return s.change(func(doc types.ResumeDocument) (types.ResumeDocument, bool, error) {
		next, err := fn(doc)
		return next, true, err
	})
}

// change is Update for edits that can be no-ops. When fn reports no change the
// revision, the pending save and the analyses are left alone.
func (s *Session) change(fn func(types.ResumeDocument) (types.ResumeDocument, bool, error)) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, changed, err := fn(s.doc)
	if err != nil {
		return s.snapshotLocked(), err
	}
	if changed {
		s.commitLocked(doc)
	}
	return s.snapshotLocked(), nil
}

// Close stops the payment flow, ends any drag and writes pending edits.
func (s *Session) Close(ctx context.Context) error {
	s.flow.Close()
	s.drag.Cancel()
	err := s.saver.Flush(ctx)
	s.saver.Stop()
	return err
}

func (s *Session) commitLocked(doc types.ResumeDocument) {
	s.doc = doc
	s.revision++
	s.saveWarning = ""
	s.saver.Schedule(doc)
}

func (s *Session) snapshotLocked() Snapshot {
	return Snapshot{Document: s.doc, Revision: s.revision, SaveWarning: s.saveWarning}
}

func (s *Session) recordSaveError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saveWarning = "Changes could not be saved: " + err.Error()
}

type unconfiguredGateway struct{}

var errNoGateway = errors.New("payment endpoint is not configured")

func (unconfiguredGateway) Register(context.Context, string) error { return errNoGateway }

func (unconfiguredGateway) Status(context.Context, string) (string, error) {
	return "", errNoGateway
}
