package server

import (
	"net/http"

	"aquascope/internal/model"
)

func (s *Server) handleListLivestock(w http.ResponseWriter, r *http.Request) {
	t, err := s.ownTank(r)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	includeArchived := r.URL.Query().Get("include_archived") == "true"
	items, err := s.store.ListLivestock(r.Context(), t.UserID, t.ID, includeArchived)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, items)
}

func validLivestockStatus(status string) bool {
	switch status {
	case "", model.LivestockAlive, model.LivestockDead, model.LivestockRemoved:
		return true
	}
	return false
}

func (s *Server) handleCreateLivestock(w http.ResponseWriter, r *http.Request) {
	t, err := s.ownTank(r)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	var l model.Livestock
	if err := decodeJSON(r, &l); err != nil {
		s.respondErr(w, r, err)
		return
	}
	if l.SpeciesName == "" {
		s.respondErr(w, r, badRequestf("species name is required"))
		return
	}
	if !validLivestockStatus(l.Status) {
		s.respondErr(w, r, badRequestf("unknown livestock status %q", l.Status))
		return
	}
	l.TankID = t.ID
	l.UserID = t.UserID
	if err := s.store.CreateLivestock(r.Context(), &l); err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusCreated, l)
}

func (s *Server) handleUpdateLivestock(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	existing, err := s.store.LivestockForUser(r.Context(), currentUser(r).ID, id)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	var patch model.Livestock
	if err := decodeJSON(r, &patch); err != nil {
		s.respondErr(w, r, err)
		return
	}
	if patch.SpeciesName == "" {
		s.respondErr(w, r, badRequestf("species name is required"))
		return
	}
	if !validLivestockStatus(patch.Status) {
		s.respondErr(w, r, badRequestf("unknown livestock status %q", patch.Status))
		return
	}
	patch.ID = existing.ID
	patch.TankID = existing.TankID
	patch.UserID = existing.UserID
	patch.CreatedAt = existing.CreatedAt
	if patch.Status == "" {
		patch.Status = existing.Status
	}
	if patch.Quantity <= 0 {
		patch.Quantity = existing.Quantity
	}
	if err := s.store.UpdateLivestock(r.Context(), &patch); err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, patch)
}

func (s *Server) handleDeleteLivestock(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	if err := s.store.DeleteLivestock(r.Context(), currentUser(r).ID, id); err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusNoContent, nil)
}
