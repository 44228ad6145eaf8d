package storage

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/jonathan/hash-resume/internal/types"
)

// DefaultQuietPeriod is how long the document must stay unchanged before it is written.
const DefaultQuietPeriod = 500 * time.Millisecond

// Saver writes the latest document to a Store once edits pause.
// Each Schedule restarts the quiet period, so a burst of edits costs one write.
type Saver struct {
	store Store
	key   string
	quiet time.Duration

	mu      sync.Mutex
	timer   *time.Timer
	pending *types.ResumeDocument
	seq     uint64
	onError func(error)
	stopped bool
	// writing counts writes taken off pending but not yet finished; idle is
	// signalled on mu when it drops to zero.
	writing int
	idle    *sync.Cond

	// writeMu serializes writes; written is the seq of the newest stored document.
	writeMu sync.Mutex
	written uint64
}

// NewSaver returns a Saver for key. A non-positive quiet period uses DefaultQuietPeriod.
func NewSaver(store Store, key string, quiet time.Duration) *Saver {
	if quiet <= 0 {
		quiet = DefaultQuietPeriod
	}
	s := &Saver{store: store, key: key, quiet: quiet}
	s.idle = sync.NewCond(&s.mu)
	return s
}

// OnError registers fn to receive write failures. fn runs on the saver's goroutine.
func (s *Saver) OnError(fn func(error)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onError = fn
}

// Schedule replaces any pending write with doc and restarts the quiet period.
func (s *Saver) Schedule(doc types.ResumeDocument) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}

	s.seq++
	seq := s.seq
	s.pending = &doc
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.quiet, func() {
		s.fire(seq)
	})
}

func (s *Saver) fire(seq uint64) {
	s.mu.Lock()
	if seq != s.seq || s.pending == nil {
		// Superseded by a later Schedule or already flushed.
		s.mu.Unlock()
		return
	}
	doc := *s.pending
	s.pending = nil
	s.timer = nil
	s.writing++
	s.mu.Unlock()

	err := s.write(context.Background(), doc, seq)
	s.done()
	if err != nil {
		s.report(err)
	}
}

func (s *Saver) done() {
	s.mu.Lock()
	s.writing--
	if s.writing == 0 {
		s.idle.Broadcast()
	}
	s.mu.Unlock()
}

// Pending reports whether a write is waiting for the quiet period to end.
func (s *Saver) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending != nil
}

// Flush writes any pending document immediately and returns once every write
// already under way has finished.
func (s *Saver) Flush(ctx context.Context) error {
	s.mu.Lock()
	if s.pending == nil {
		s.waitIdleLocked()
		s.mu.Unlock()
		return nil
	}
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	doc := *s.pending
	seq := s.seq
	s.pending = nil
	s.writing++
	s.mu.Unlock()

	err := s.write(ctx, doc, seq)
	s.done()
	if err != nil {
		s.report(err)
	}

	s.mu.Lock()
	s.waitIdleLocked()
	s.mu.Unlock()
	return err
}

func (s *Saver) waitIdleLocked() {
	for s.writing > 0 {
		s.idle.Wait()
	}
}

// Stop cancels the pending write and ignores later Schedule calls.
func (s *Saver) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	s.pending = nil
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

func (s *Saver) write(ctx context.Context, doc types.ResumeDocument, seq uint64) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if seq <= s.written {
		return nil
	}
	data, err := Encode(doc)
	if err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}
	if err := s.store.Put(ctx, s.key, data); err != nil {
		return fmt.Errorf("failed to save document: %w", err)
	}
	s.written = seq
	return nil
}

func (s *Saver) report(err error) {
	log.Printf("[STORAGE] %v", err)
	s.mu.Lock()
	fn := s.onError
	s.mu.Unlock()
	if fn != nil {
		fn(err)
	}
}
