package server

import (
	"encoding/json"
	"net/http"

	"aquascope/internal/model"
)

func (s *Server) handleListLighting(w http.ResponseWriter, r *http.Request) {
	t, err := s.ownTank(r)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	schedules, err := s.store.ListLightingSchedules(r.Context(), t.UserID, t.ID)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, schedules)
}

type lightingRequest struct {
	Name         string          `json:"name"`
	Description  *string         `json:"description,omitempty"`
	Channels     json.RawMessage `json:"channels,omitempty"`
	ScheduleData json.RawMessage `json:"schedule_data,omitempty"`
	IsActive     *bool           `json:"is_active,omitempty"`
	Notes        *string         `json:"notes,omitempty"`
}

func (s *Server) handleCreateLighting(w http.ResponseWriter, r *http.Request) {
	t, err := s.ownTank(r)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	var req lightingRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondErr(w, r, err)
		return
	}
	if req.Name == "" {
		s.respondErr(w, r, badRequestf("schedule name is required"))
		return
	}
	sched := &model.LightingSchedule{
		TankID:       t.ID,
		UserID:       t.UserID,
		Name:         req.Name,
		Description:  req.Description,
		Channels:     req.Channels,
		ScheduleData: req.ScheduleData,
		Notes:        req.Notes,
	}
	if req.IsActive != nil {
		sched.IsActive = *req.IsActive
	}
	if err := s.store.CreateLightingSchedule(r.Context(), sched); err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusCreated, sched)
}

func (s *Server) handleUpdateLighting(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	sched, err := s.store.LightingScheduleForUser(r.Context(), currentUser(r).ID, id)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	var req lightingRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondErr(w, r, err)
		return
	}
	if req.Name != "" {
		sched.Name = req.Name
	}
	sched.Description = req.Description
	if req.Channels != nil {
		sched.Channels = req.Channels
	}
	if req.ScheduleData != nil {
		sched.ScheduleData = req.ScheduleData
	}
	if req.IsActive != nil {
		sched.IsActive = *req.IsActive
	}
	sched.Notes = req.Notes
	if err := s.store.UpdateLightingSchedule(r.Context(), sched); err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, sched)
}

func (s *Server) handleActivateLighting(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	sched, err := s.store.ActivateLightingSchedule(r.Context(), currentUser(r).ID, id)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, sched)
}

func (s *Server) handleDeleteLighting(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	if err := s.store.DeleteLightingSchedule(r.Context(), currentUser(r).ID, id); err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusNoContent, nil)
}
