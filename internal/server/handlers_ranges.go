package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"aquascope/internal/model"
	"aquascope/internal/presets"
)

func (s *Server) handleListRanges(w http.ResponseWriter, r *http.Request) {
	t, err := s.ownTank(r)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	ranges, err := s.store.ListParameterRanges(r.Context(), t.ID)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, ranges)
}

type rangeRequest struct {
	Name       string   `json:"name"`
	Unit       string   `json:"unit"`
	MinValue   float64  `json:"min_value"`
	MaxValue   float64  `json:"max_value"`
	IdealValue *float64 `json:"ideal_value,omitempty"`
}

func (s *Server) handleUpsertRange(w http.ResponseWriter, r *http.Request) {
	t, err := s.ownTank(r)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	pType := chi.URLParam(r, "type")
	if _, ok := presets.KnownParameterTypes[pType]; !ok {
		s.respondErr(w, r, badRequestf("unknown parameter type %q", pType))
		return
	}
	var req rangeRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondErr(w, r, err)
		return
	}
	if req.MinValue > req.MaxValue {
		s.respondErr(w, r, badRequestf("min %g exceeds max %g", req.MinValue, req.MaxValue))
		return
	}
	if req.IdealValue != nil && (*req.IdealValue < req.MinValue || *req.IdealValue > req.MaxValue) {
		s.respondErr(w, r, badRequestf("ideal %g outside [%g, %g]", *req.IdealValue, req.MinValue, req.MaxValue))
		return
	}
	if req.Name == "" || req.Unit == "" {
		name, unit := presets.Metadata(pType)
		if req.Name == "" {
			req.Name = name
		}
		if req.Unit == "" {
			req.Unit = unit
		}
	}

	pr := &model.ParameterRange{
		TankID:        t.ID,
		ParameterType: pType,
		Name:          req.Name,
		Unit:          req.Unit,
		MinValue:      req.MinValue,
		MaxValue:      req.MaxValue,
		IdealValue:    req.IdealValue,
	}
	if err := s.store.UpsertParameterRange(r.Context(), pr); err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, pr)
}

func (s *Server) handleDeleteRange(w http.ResponseWriter, r *http.Request) {
	t, err := s.ownTank(r)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	if err := s.store.DeleteParameterRange(r.Context(), t.ID, chi.URLParam(r, "type")); err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusNoContent, nil)
}

// handleResetRanges throws away custom ranges and reseeds the presets
// for the tank's water type and subtype.
func (s *Server) handleResetRanges(w http.ResponseWriter, r *http.Request) {
	t, err := s.ownTank(r)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	ranges, err := s.store.SeedParameterRanges(r.Context(), t)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, ranges)
}
