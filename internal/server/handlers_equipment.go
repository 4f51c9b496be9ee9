package server

import (
	"net/http"

	"aquascope/internal/model"
)

func (s *Server) handleListEquipment(w http.ResponseWriter, r *http.Request) {
	t, err := s.ownTank(r)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	items, err := s.store.ListEquipment(r.Context(), t.UserID, t.ID)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, items)
}

func (s *Server) handleCreateEquipment(w http.ResponseWriter, r *http.Request) {
	t, err := s.ownTank(r)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	var e model.Equipment
	if err := decodeJSON(r, &e); err != nil {
		s.respondErr(w, r, err)
		return
	}
	if e.Name == "" {
		s.respondErr(w, r, badRequestf("equipment name is required"))
		return
	}
	if e.EquipmentType == "" {
		e.EquipmentType = "other"
	}
	e.TankID = t.ID
	e.UserID = t.UserID
	if err := s.store.CreateEquipment(r.Context(), &e); err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusCreated, e)
}

func (s *Server) handleUpdateEquipment(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	existing, err := s.store.EquipmentForUser(r.Context(), currentUser(r).ID, id)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	var patch model.Equipment
	if err := decodeJSON(r, &patch); err != nil {
		s.respondErr(w, r, err)
		return
	}
	if patch.Name == "" {
		s.respondErr(w, r, badRequestf("equipment name is required"))
		return
	}
	patch.ID = existing.ID
	patch.TankID = existing.TankID
	patch.UserID = existing.UserID
	patch.CreatedAt = existing.CreatedAt
	if patch.EquipmentType == "" {
		patch.EquipmentType = existing.EquipmentType
	}
	if err := s.store.UpdateEquipment(r.Context(), &patch); err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, patch)
}

func (s *Server) handleDeleteEquipment(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	if err := s.store.DeleteEquipment(r.Context(), currentUser(r).ID, id); err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusNoContent, nil)
}
