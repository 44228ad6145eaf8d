// Package reorder implements drag-and-drop reordering of the resume's entry lists.
package reorder

import (
	"errors"
	"sync"

	"github.com/jonathan/hash-resume/internal/document"
	"github.com/jonathan/hash-resume/internal/types"
)

// Region is the part of an entry's card where a drag started.
type Region string

// Drag regions
const (
	// RegionHandle is the grip icon; the only region a drag may start from.
	RegionHandle Region = "handle"
	// RegionBody is anywhere else on the card (inputs, buttons, text).
	RegionBody Region = "body"
)

var (
	// ErrNotHandle is returned when a drag starts outside the handle.
	ErrNotHandle = errors.New("drag must start from the entry handle")
	// ErrDragInProgress is returned when a drag starts while another is live.
	ErrDragInProgress = errors.New("another drag is already in progress")
	// ErrUnknownList is returned for a list kind that cannot be reordered.
	ErrUnknownList = errors.New("unknown list")
)

// Gesture describes a completed drag: where it started and where it was dropped.
type Gesture struct {
	SourceKind  types.ListKind
	SourceIndex int
	DestKind    types.ListKind
	DestIndex   int
}

// Reorder applies a gesture to doc. Cross-list drops, drops onto the source
// position and out of range indexes are rejected: doc is returned unchanged with false.
func Reorder(doc types.ResumeDocument, g Gesture) (types.ResumeDocument, bool) {
	if g.SourceKind != g.DestKind || g.SourceIndex == g.DestIndex {
		return doc, false
	}
	return document.MoveEntry(doc, g.SourceKind, g.SourceIndex, g.DestIndex)
}

// Source identifies the entry being dragged. When ID is set the entry is
// tracked by id and Index is resolved again against the document on drop.
type Source struct {
	Kind  types.ListKind `json:"list"`
	Index int            `json:"index"`
	ID    string         `json:"id,omitempty"`
}

// Engine tracks the single live drag of a session. The zero value is ready to use.
type Engine struct {
	mu     sync.Mutex
	active bool
	source Source
}

// Start begins a drag of entry index in kind. Only drags grabbed by the handle are accepted.
func (e *Engine) Start(kind types.ListKind, index int, region Region) error {
	return e.start(Source{Kind: kind, Index: index}, region)
}

// StartEntry begins a drag like Start and pins it to the id of the entry at
// index in doc, so edits made to the list before the drop cannot redirect it.
func (e *Engine) StartEntry(doc types.ResumeDocument, kind types.ListKind, index int, region Region) error {
	return e.start(Source{Kind: kind, Index: index, ID: document.EntryID(doc, kind, index)}, region)
}

func (e *Engine) start(source Source, region Region) error {
	if !source.Kind.Valid() {
		return ErrUnknownList
	}
	if region != RegionHandle {
		return ErrNotHandle
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.active {
		return ErrDragInProgress
	}
	e.active = true
	e.source = source
	return nil
}

// Active returns the entry being dragged, if any.
func (e *Engine) Active() (Source, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.source, e.active
}

// Resolve returns the live drag with its index looked up in doc. A drag whose
// entry no longer exists is cancelled and reported inactive.
func (e *Engine) Resolve(doc types.ResumeDocument) (Source, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.active {
		return Source{}, false
	}
	source, ok := resolve(doc, e.source)
	if !ok {
		e.active = false
		e.source = Source{}
		return Source{}, false
	}
	e.source = source
	return source, true
}

func resolve(doc types.ResumeDocument, source Source) (Source, bool) {
	if source.ID == "" {
		return source, true
	}
	source.Index = document.IndexOf(doc, source.Kind, source.ID)
	return source, source.Index >= 0
}

// IsMoving reports whether the entry at index in kind is the one being dragged.
// The flag is for visual feedback only.
func (e *Engine) IsMoving(kind types.ListKind, index int) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.active && e.source.Kind == kind && e.source.Index == index
}

// Drop ends the drag over entry index of kind and applies the move if accepted.
// The drag state is cleared whether or not the drop is accepted.
func (e *Engine) Drop(doc types.ResumeDocument, kind types.ListKind, index int) (types.ResumeDocument, bool) {
	e.mu.Lock()
	source, active := e.source, e.active
	e.active = false
	e.source = Source{}
	e.mu.Unlock()

	if !active {
		return doc, false
	}
	source, ok := resolve(doc, source)
	if !ok {
		return doc, false
	}
	return Reorder(doc, Gesture{
		SourceKind:  source.Kind,
		SourceIndex: source.Index,
		DestKind:    kind,
		DestIndex:   index,
	})
}

// Cancel abandons the live drag, if any.
func (e *Engine) Cancel() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.active = false
	e.source = Source{}
}
