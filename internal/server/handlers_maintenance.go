package server

import (
	"net/http"

	"aquascope/internal/model"
)

func (s *Server) handleListReminders(w http.ResponseWriter, r *http.Request) {
	t, err := s.ownTank(r)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	includeInactive := r.URL.Query().Get("include_inactive") == "true"
	reminders, err := s.store.ListReminders(r.Context(), t.UserID, t.ID, includeInactive)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, reminders)
}

func (s *Server) handleCreateReminder(w http.ResponseWriter, r *http.Request) {
	t, err := s.ownTank(r)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	var m model.MaintenanceReminder
	if err := decodeJSON(r, &m); err != nil {
		s.respondErr(w, r, err)
		return
	}
	if m.Title == "" {
		s.respondErr(w, r, badRequestf("reminder title is required"))
		return
	}
	if m.FrequencyDays <= 0 {
		s.respondErr(w, r, badRequestf("frequency must be at least one day"))
		return
	}
	if m.ReminderType == "" {
		m.ReminderType = "other"
	}
	m.TankID = t.ID
	m.UserID = t.UserID
	m.IsActive = true
	if err := s.store.CreateReminder(r.Context(), &m); err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusCreated, m)
}

func (s *Server) handleUpdateReminder(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	existing, err := s.store.ReminderForUser(r.Context(), currentUser(r).ID, id)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	var patch model.MaintenanceReminder
	if err := decodeJSON(r, &patch); err != nil {
		s.respondErr(w, r, err)
		return
	}
	if patch.Title == "" {
		s.respondErr(w, r, badRequestf("reminder title is required"))
		return
	}
	if patch.FrequencyDays <= 0 {
		s.respondErr(w, r, badRequestf("frequency must be at least one day"))
		return
	}
	patch.ID = existing.ID
	patch.TankID = existing.TankID
	patch.UserID = existing.UserID
	patch.CreatedAt = existing.CreatedAt
	if patch.LastCompleted == nil {
		patch.LastCompleted = existing.LastCompleted
	}
	if patch.NextDue.IsZero() {
		patch.NextDue = existing.NextDue
	}
	if err := s.store.UpdateReminder(r.Context(), &patch); err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, patch)
}

type completeReminderRequest struct {
	CompletedOn *model.Date `json:"completed_on,omitempty"`
}

func (s *Server) handleCompleteReminder(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	var req completeReminderRequest
	if r.ContentLength > 0 {
		if err := decodeJSON(r, &req); err != nil {
			s.respondErr(w, r, err)
			return
		}
	}
	completedOn := model.Today()
	if req.CompletedOn != nil {
		completedOn = *req.CompletedOn
	}
	m, err := s.store.CompleteReminder(r.Context(), currentUser(r).ID, id, completedOn)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, m)
}

func (s *Server) handleDeleteReminder(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	if err := s.store.DeleteReminder(r.Context(), currentUser(r).ID, id); err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleOverdueReminders(w http.ResponseWriter, r *http.Request) {
	reminders, err := s.store.OverdueReminders(r.Context(), currentUser(r).ID, model.Today())
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, reminders)
}
