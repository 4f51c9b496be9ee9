package server

import (
	"net/http"

	"aquascope/internal/model"
)

func (s *Server) handleListEvents(w http.ResponseWriter, r *http.Request) {
	t, err := s.ownTank(r)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	events, err := s.store.ListTankEvents(r.Context(), t.UserID, t.ID)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, events)
}

func (s *Server) handleCreateEvent(w http.ResponseWriter, r *http.Request) {
	t, err := s.ownTank(r)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	var e model.TankEvent
	if err := decodeJSON(r, &e); err != nil {
		s.respondErr(w, r, err)
		return
	}
	if e.Title == "" {
		s.respondErr(w, r, badRequestf("event title is required"))
		return
	}
	if e.EventDate.IsZero() {
		e.EventDate = model.Today()
	}
	e.TankID = t.ID
	e.UserID = t.UserID
	if err := s.store.CreateTankEvent(r.Context(), &e); err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusCreated, e)
}

func (s *Server) handleUpdateEvent(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	existing, err := s.store.TankEventForUser(r.Context(), currentUser(r).ID, id)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	var patch model.TankEvent
	if err := decodeJSON(r, &patch); err != nil {
		s.respondErr(w, r, err)
		return
	}
	if patch.Title == "" {
		s.respondErr(w, r, badRequestf("event title is required"))
		return
	}
	patch.ID = existing.ID
	patch.TankID = existing.TankID
	patch.UserID = existing.UserID
	patch.CreatedAt = existing.CreatedAt
	if patch.EventDate.IsZero() {
		patch.EventDate = existing.EventDate
	}
	if err := s.store.UpdateTankEvent(r.Context(), &patch); err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, patch)
}

func (s *Server) handleDeleteEvent(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	if err := s.store.DeleteTankEvent(r.Context(), currentUser(r).ID, id); err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusNoContent, nil)
}
