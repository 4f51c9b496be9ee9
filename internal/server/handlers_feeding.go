package server

import (
	"net/http"

	"aquascope/internal/model"
)

func (s *Server) handleListFeedingSchedules(w http.ResponseWriter, r *http.Request) {
	t, err := s.ownTank(r)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	includeInactive := r.URL.Query().Get("include_inactive") == "true"
	schedules, err := s.store.ListFeedingSchedules(r.Context(), t.UserID, t.ID, includeInactive)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, schedules)
}

func (s *Server) handleCreateFeedingSchedule(w http.ResponseWriter, r *http.Request) {
	t, err := s.ownTank(r)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	var f model.FeedingSchedule
	if err := decodeJSON(r, &f); err != nil {
		s.respondErr(w, r, err)
		return
	}
	if f.FoodName == "" {
		s.respondErr(w, r, badRequestf("food name is required"))
		return
	}
	// A linked consumable must exist and belong to the same user.
	if f.ConsumableID != nil {
		if _, err := s.store.ConsumableForUser(r.Context(), t.UserID, *f.ConsumableID); err != nil {
			s.respondErr(w, r, err)
			return
		}
	}
	f.TankID = t.ID
	f.UserID = t.UserID
	f.IsActive = true
	if err := s.store.CreateFeedingSchedule(r.Context(), &f); err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusCreated, f)
}

func (s *Server) handleUpdateFeedingSchedule(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	existing, err := s.store.FeedingScheduleForUser(r.Context(), currentUser(r).ID, id)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	var patch model.FeedingSchedule
	if err := decodeJSON(r, &patch); err != nil {
		s.respondErr(w, r, err)
		return
	}
	if patch.FoodName == "" {
		s.respondErr(w, r, badRequestf("food name is required"))
		return
	}
	if patch.ConsumableID != nil {
		if _, err := s.store.ConsumableForUser(r.Context(), existing.UserID, *patch.ConsumableID); err != nil {
			s.respondErr(w, r, err)
			return
		}
	}
	patch.ID = existing.ID
	patch.TankID = existing.TankID
	patch.UserID = existing.UserID
	patch.CreatedAt = existing.CreatedAt
	if patch.FrequencyHours <= 0 {
		patch.FrequencyHours = existing.FrequencyHours
	}
	if patch.LastFed == nil {
		patch.LastFed = existing.LastFed
	}
	if patch.NextDue == nil {
		patch.NextDue = existing.NextDue
	}
	if err := s.store.UpdateFeedingSchedule(r.Context(), &patch); err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, patch)
}

func (s *Server) handleDeleteFeedingSchedule(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	if err := s.store.DeleteFeedingSchedule(r.Context(), currentUser(r).ID, id); err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusNoContent, nil)
}

type markFedRequest struct {
	Notes *string `json:"notes,omitempty"`
}

func (s *Server) handleMarkFed(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	var req markFedRequest
	if r.ContentLength > 0 {
		if err := decodeJSON(r, &req); err != nil {
			s.respondErr(w, r, err)
			return
		}
	}
	log, err := s.store.MarkFed(r.Context(), currentUser(r).ID, id, req.Notes)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, log)
}

func (s *Server) handleListFeedingLogs(w http.ResponseWriter, r *http.Request) {
	t, err := s.ownTank(r)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	logs, err := s.store.ListFeedingLogs(r.Context(), t.UserID, t.ID, queryLimit(r, 100))
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, logs)
}

func (s *Server) handleCreateFeedingLog(w http.ResponseWriter, r *http.Request) {
	t, err := s.ownTank(r)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	var l model.FeedingLog
	if err := decodeJSON(r, &l); err != nil {
		s.respondErr(w, r, err)
		return
	}
	if l.FoodName == "" {
		s.respondErr(w, r, badRequestf("food name is required"))
		return
	}
	l.TankID = t.ID
	l.UserID = t.UserID
	l.ScheduleID = nil
	if err := s.store.CreateFeedingLog(r.Context(), &l); err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusCreated, l)
}

func (s *Server) handleDeleteFeedingLog(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	if err := s.store.DeleteFeedingLog(r.Context(), currentUser(r).ID, id); err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusNoContent, nil)
}
