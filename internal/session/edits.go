package session

import (
	"github.com/jonathan/hash-resume/internal/document"
	"github.com/jonathan/hash-resume/internal/reorder"
	"github.com/jonathan/hash-resume/internal/types"
)

// Replace swaps in a whole document, normalized so lists are never nil.
func (s *Session) Replace(doc types.ResumeDocument) Snapshot {
	snap, _ := s.Update(func(types.ResumeDocument) (types.ResumeDocument, error) {
		return document.Normalize(doc), nil
	})
	return snap
}

// Apply applies a single field edit.
func (s *Session) Apply(edit document.Edit) (Snapshot, error) {
	return s.change(func(doc types.ResumeDocument) (types.ResumeDocument, bool, error) {
		return document.Apply(doc, edit)
	})
}

// AddEntry appends an empty entry to a list and returns its id.
func (s *Session) AddEntry(kind types.ListKind) (Snapshot, string, error) {
	var id string
	snap, err := s.Update(func(doc types.ResumeDocument) (types.ResumeDocument, error) {
		next, newID, err := document.AddEntry(doc, kind)
		id = newID
		return next, err
	})
	return snap, id, err
}

// RemoveEntry deletes the entry at index. An out of range index changes nothing.
func (s *Session) RemoveEntry(kind types.ListKind, index int) (Snapshot, error) {
	if !kind.Valid() {
		return s.Document(), reorder.ErrUnknownList
	}
	return s.change(func(doc types.ResumeDocument) (types.ResumeDocument, bool, error) {
		next, removed := document.RemoveEntry(doc, kind, index)
		return next, removed, nil
	})
}

// AddSkill appends one skill unless it is blank or already present.
func (s *Session) AddSkill(skill string) (Snapshot, bool) {
	var added bool
	snap, _ := s.change(func(doc types.ResumeDocument) (types.ResumeDocument, bool, error) {
		var next types.ResumeDocument
		next, added = document.AddSkill(doc, skill)
		return next, added, nil
	})
	return snap, added
}

// MergeSkills merges a comma separated suggestion into the skills list.
func (s *Session) MergeSkills(suggestion string) Snapshot {
	snap, _ := s.Update(func(doc types.ResumeDocument) (types.ResumeDocument, error) {
		return document.MergeSkills(doc, suggestion), nil
	})
	return snap
}

// RemoveSkill deletes the skill at index. An out of range index changes nothing.
func (s *Session) RemoveSkill(index int) Snapshot {
	snap, _ := s.change(func(doc types.ResumeDocument) (types.ResumeDocument, bool, error) {
		next, removed := document.RemoveSkill(doc, index)
		return next, removed, nil
	})
	return snap
}

// StartDrag begins dragging an entry. Only the handle region starts a drag.
func (s *Session) StartDrag(kind types.ListKind, index int, region reorder.Region) error {
	s.mu.RLock()
	doc := s.doc
	s.mu.RUnlock()

	if kind.Valid() && (index < 0 || index >= document.Len(doc, kind)) {
		return &document.FieldError{Path: string(kind), Message: "entry index out of range"}
	}
	return s.drag.StartEntry(doc, kind, index, region)
}

// ActiveDrag returns the entry being dragged, if any, at its current position.
func (s *Session) ActiveDrag() (reorder.Source, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.drag.Resolve(s.doc)
}

// Drop ends the drag over the entry at index. The document changes only when
// the drop lands on a different entry of the same list.
func (s *Session) Drop(kind types.ListKind, index int) (Snapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, moved := s.drag.Drop(s.doc, kind, index)
	if moved {
		s.commitLocked(doc)
	}
	return s.snapshotLocked(), moved
}

// CancelDrag ends the drag without changing the document.
func (s *Session) CancelDrag() {
	s.drag.Cancel()
}
