package server

import (
	"net/http"

	"aquascope/internal/model"
)

func validConsumableStatus(status string) bool {
	switch status {
	case "", model.ConsumableActive, model.ConsumableLowStock,
		model.ConsumableDepleted, model.ConsumableExpired:
		return true
	}
	return false
}

func (s *Server) handleListConsumables(w http.ResponseWriter, r *http.Request) {
	t, err := s.ownTank(r)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	status := r.URL.Query().Get("status")
	if !validConsumableStatus(status) {
		s.respondErr(w, r, badRequestf("unknown consumable status %q", status))
		return
	}
	items, err := s.store.ListConsumables(r.Context(), t.UserID, t.ID, status)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, items)
}

func (s *Server) handleCreateConsumable(w http.ResponseWriter, r *http.Request) {
	t, err := s.ownTank(r)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	var c model.Consumable
	if err := decodeJSON(r, &c); err != nil {
		s.respondErr(w, r, err)
		return
	}
	if c.Name == "" {
		s.respondErr(w, r, badRequestf("consumable name is required"))
		return
	}
	if c.ConsumableType == "" {
		c.ConsumableType = "other"
	}
	if !validConsumableStatus(c.Status) {
		s.respondErr(w, r, badRequestf("unknown consumable status %q", c.Status))
		return
	}
	c.TankID = t.ID
	c.UserID = t.UserID
	if err := s.store.CreateConsumable(r.Context(), &c); err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusCreated, c)
}

func (s *Server) handleUpdateConsumable(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	existing, err := s.store.ConsumableForUser(r.Context(), currentUser(r).ID, id)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	var patch model.Consumable
	if err := decodeJSON(r, &patch); err != nil {
		s.respondErr(w, r, err)
		return
	}
	if patch.Name == "" {
		s.respondErr(w, r, badRequestf("consumable name is required"))
		return
	}
	if !validConsumableStatus(patch.Status) {
		s.respondErr(w, r, badRequestf("unknown consumable status %q", patch.Status))
		return
	}
	patch.ID = existing.ID
	patch.TankID = existing.TankID
	patch.UserID = existing.UserID
	patch.CreatedAt = existing.CreatedAt
	if patch.Status == "" {
		patch.Status = existing.Status
	}
	if patch.ConsumableType == "" {
		patch.ConsumableType = existing.ConsumableType
	}
	if err := s.store.UpdateConsumable(r.Context(), &patch); err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, patch)
}

func (s *Server) handleDeleteConsumable(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	if err := s.store.DeleteConsumable(r.Context(), currentUser(r).ID, id); err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusNoContent, nil)
}

type useConsumableRequest struct {
	QuantityUsed float64     `json:"quantity_used"`
	QuantityUnit *string     `json:"quantity_unit,omitempty"`
	UsageDate    *model.Date `json:"usage_date,omitempty"`
	Notes        *string     `json:"notes,omitempty"`
}

func (s *Server) handleUseConsumable(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	var req useConsumableRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondErr(w, r, err)
		return
	}
	if req.QuantityUsed <= 0 {
		s.respondErr(w, r, badRequestf("quantity used must be positive"))
		return
	}
	usage := &model.ConsumableUsage{
		ConsumableID: id,
		UserID:       currentUser(r).ID,
		QuantityUsed: req.QuantityUsed,
		QuantityUnit: req.QuantityUnit,
		Notes:        req.Notes,
	}
	if req.UsageDate != nil {
		usage.UsageDate = *req.UsageDate
	}
	after, err := s.store.RecordConsumableUsage(r.Context(), usage)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]any{"usage": usage, "consumable": after})
}

func (s *Server) handleListConsumableUsage(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	history, err := s.store.ListConsumableUsage(r.Context(), currentUser(r).ID, id)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, history)
}
