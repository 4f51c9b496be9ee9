package server

import (
	"net/http"

	"aquascope/internal/model"
)

func (s *Server) handleListNotes(w http.ResponseWriter, r *http.Request) {
	t, err := s.ownTank(r)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	notes, err := s.store.ListNotes(r.Context(), t.UserID, t.ID, queryLimit(r, 0))
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, notes)
}

func (s *Server) handleCreateNote(w http.ResponseWriter, r *http.Request) {
	t, err := s.ownTank(r)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	var n model.Note
	if err := decodeJSON(r, &n); err != nil {
		s.respondErr(w, r, err)
		return
	}
	if n.Content == "" {
		s.respondErr(w, r, badRequestf("note content is required"))
		return
	}
	n.TankID = t.ID
	n.UserID = t.UserID
	if err := s.store.CreateNote(r.Context(), &n); err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusCreated, n)
}

func (s *Server) handleUpdateNote(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	existing, err := s.store.NoteForUser(r.Context(), currentUser(r).ID, id)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	var patch model.Note
	if err := decodeJSON(r, &patch); err != nil {
		s.respondErr(w, r, err)
		return
	}
	if patch.Content == "" {
		s.respondErr(w, r, badRequestf("note content is required"))
		return
	}
	existing.Content = patch.Content
	if err := s.store.UpdateNote(r.Context(), existing); err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, existing)
}

func (s *Server) handleDeleteNote(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	if err := s.store.DeleteNote(r.Context(), currentUser(r).ID, id); err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusNoContent, nil)
}
