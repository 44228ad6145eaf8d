package server

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/jonathan/hash-resume/internal/document"
	"github.com/jonathan/hash-resume/internal/reorder"
	"github.com/jonathan/hash-resume/internal/schemas"
	"github.com/jonathan/hash-resume/internal/session"
	"github.com/jonathan/hash-resume/internal/types"
)

// EntryResponse is returned when an entry is appended.
type EntryResponse struct {
	session.Snapshot
	ID string `json:"id"`
}

// SkillResponse is returned when a single skill is added.
type SkillResponse struct {
	session.Snapshot
	Added bool `json:"added"`
}

// DragResponse describes the live drag, if any.
type DragResponse struct {
	Active bool            `json:"active"`
	Source *reorder.Source `json:"source,omitempty"`
}

// DropResponse is returned when a drag ends.
type DropResponse struct {
	session.Snapshot
	Moved bool `json:"moved"`
}

func (s *Server) handleGetDocument(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, s.session.Document())
}

// handleReplaceDocument accepts a whole document. Missing fields take their
// empty defaults, as when loading from storage.
func (s *Server) handleReplaceDocument(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		s.failure(w, &ErrValidation{Field: "body", Message: err.Error()})
		return
	}
	if !json.Valid(body) {
		s.failure(w, &ErrValidation{Field: "body", Message: "invalid JSON"})
		return
	}
	if err := schemas.Validate(schemas.ResumeDocument, string(body)); err != nil {
		s.failure(w, err)
		return
	}

	doc := document.New()
	if err := json.Unmarshal(body, &doc); err != nil {
		s.failure(w, &ErrValidation{Field: "body", Message: err.Error()})
		return
	}
	s.jsonResponse(w, http.StatusOK, s.session.Replace(doc))
}

func (s *Server) handleEdit(w http.ResponseWriter, r *http.Request) {
	var req types.EditRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.failure(w, err)
		return
	}
	snap, err := s.session.Apply(document.Edit{Path: req.Path, Value: req.Value})
	if err != nil {
		s.failure(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, snap)
}

func (s *Server) handleAddEntry(w http.ResponseWriter, r *http.Request) {
	snap, id, err := s.session.AddEntry(types.ListKind(r.PathValue("list")))
	if err != nil {
		s.failure(w, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, EntryResponse{Snapshot: snap, ID: id})
}

func (s *Server) handleRemoveEntry(w http.ResponseWriter, r *http.Request) {
	index, err := pathIndex(r, "index")
	if err != nil {
		s.failure(w, err)
		return
	}
	snap, err := s.session.RemoveEntry(types.ListKind(r.PathValue("list")), index)
	if err != nil {
		s.failure(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, snap)
}

func (s *Server) handleAddSkill(w http.ResponseWriter, r *http.Request) {
	var req types.SkillRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.failure(w, err)
		return
	}
	snap, added := s.session.AddSkill(req.Skill)
	s.jsonResponse(w, http.StatusOK, SkillResponse{Snapshot: snap, Added: added})
}

func (s *Server) handleMergeSkills(w http.ResponseWriter, r *http.Request) {
	var req types.SkillRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.failure(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, s.session.MergeSkills(req.Skill))
}

func (s *Server) handleRemoveSkill(w http.ResponseWriter, r *http.Request) {
	index, err := pathIndex(r, "index")
	if err != nil {
		s.failure(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, s.session.RemoveSkill(index))
}

func (s *Server) handleGetDrag(w http.ResponseWriter, _ *http.Request) {
	resp := DragResponse{}
	if src, ok := s.session.ActiveDrag(); ok {
		resp.Active = true
		resp.Source = &src
	}
	s.jsonResponse(w, http.StatusOK, resp)
}

func (s *Server) handleDragStart(w http.ResponseWriter, r *http.Request) {
	var req types.DragStartRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.failure(w, err)
		return
	}
	if err := s.session.StartDrag(req.List, req.Index, reorder.Region(req.Region)); err != nil {
		s.failure(w, err)
		return
	}
	s.handleGetDrag(w, r)
}

func (s *Server) handleDragDrop(w http.ResponseWriter, r *http.Request) {
	var req types.DragDropRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.failure(w, err)
		return
	}
	snap, moved := s.session.Drop(req.List, req.Index)
	s.jsonResponse(w, http.StatusOK, DropResponse{Snapshot: snap, Moved: moved})
}

func (s *Server) handleDragCancel(w http.ResponseWriter, r *http.Request) {
	s.session.CancelDrag()
	s.handleGetDrag(w, r)
}
