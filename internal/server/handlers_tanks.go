package server

import (
	"net/http"
	"time"

	"aquascope/internal/auth"
	"aquascope/internal/maturity"
	"aquascope/internal/model"
	"aquascope/internal/presets"
)

// ownTank resolves the {tankID} route parameter to a tank the current
// user owns. Everything tank-scoped goes through here.
func (s *Server) ownTank(r *http.Request) (*model.Tank, error) {
	tankID, err := uuidParam(r, "tankID")
	if err != nil {
		return nil, err
	}
	return s.store.TankForUser(r.Context(), currentUser(r).ID, tankID)
}

func (s *Server) handleListTanks(w http.ResponseWriter, r *http.Request) {
	includeArchived := r.URL.Query().Get("include_archived") == "true"
	tanks, err := s.store.ListTanks(r.Context(), currentUser(r).ID, includeArchived)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, tanks)
}

func (s *Server) handleCreateTank(w http.ResponseWriter, r *http.Request) {
	var t model.Tank
	if err := decodeJSON(r, &t); err != nil {
		s.respondErr(w, r, err)
		return
	}
	if t.Name == "" {
		s.respondErr(w, r, badRequestf("tank name is required"))
		return
	}
	if t.WaterType != "" && !model.ValidWaterType(t.WaterType) {
		s.respondErr(w, r, badRequestf("unknown water type %q", t.WaterType))
		return
	}
	t.UserID = currentUser(r).ID
	if err := s.store.CreateTank(r.Context(), &t); err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusCreated, t)
}

func (s *Server) handleGetTank(w http.ResponseWriter, r *http.Request) {
	t, err := s.ownTank(r)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, t)
}

func (s *Server) handleUpdateTank(w http.ResponseWriter, r *http.Request) {
	t, err := s.ownTank(r)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	var patch model.Tank
	if err := decodeJSON(r, &patch); err != nil {
		s.respondErr(w, r, err)
		return
	}
	if patch.Name == "" {
		s.respondErr(w, r, badRequestf("tank name is required"))
		return
	}
	if patch.WaterType != "" && !model.ValidWaterType(patch.WaterType) {
		s.respondErr(w, r, badRequestf("unknown water type %q", patch.WaterType))
		return
	}
	// Identity, sharing, and archival are managed by their own routes.
	patch.ID = t.ID
	patch.UserID = t.UserID
	patch.IsArchived = t.IsArchived
	patch.ShareEnabled = t.ShareEnabled
	patch.ShareToken = t.ShareToken
	patch.CreatedAt = t.CreatedAt
	if patch.WaterType == "" {
		patch.WaterType = t.WaterType
	}
	if err := s.store.UpdateTank(r.Context(), &patch); err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, patch)
}

func (s *Server) handleDeleteTank(w http.ResponseWriter, r *http.Request) {
	t, err := s.ownTank(r)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	if err := s.store.DeleteTank(r.Context(), t.UserID, t.ID); err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleArchiveTank(w http.ResponseWriter, r *http.Request) {
	t, err := s.ownTank(r)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	t.IsArchived = !t.IsArchived
	if err := s.store.UpdateTank(r.Context(), t); err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, t)
}

func (s *Server) handleEnableShare(w http.ResponseWriter, r *http.Request) {
	t, err := s.ownTank(r)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	if t.ShareToken == nil {
		token, err := auth.NewShareToken()
		if err != nil {
			s.respondErr(w, r, err)
			return
		}
		t.ShareToken = &token
	}
	t.ShareEnabled = true
	if err := s.store.UpdateTank(r.Context(), t); err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"share_token": *t.ShareToken})
}

func (s *Server) handleDisableShare(w http.ResponseWriter, r *http.Request) {
	t, err := s.ownTank(r)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	t.ShareEnabled = false
	if err := s.store.UpdateTank(r.Context(), t); err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleMaturity(w http.ResponseWriter, r *http.Request) {
	t, err := s.ownTank(r)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}

	now := time.Now().UTC()
	series, err := s.stabilitySeries(r, t, now)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	alive, err := s.store.CountAliveLivestock(r.Context(), t.ID)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}

	var setup time.Time
	if t.SetupDate != nil {
		setup = t.SetupDate.Time
	}
	s.respondJSON(w, http.StatusOK, maturity.Compute(setup, now, series, alive))
}

// stabilitySeries pulls the last 30 days of readings for the parameters
// that matter for the tank's water type.
func (s *Server) stabilitySeries(r *http.Request, t *model.Tank, now time.Time) ([]maturity.Series, error) {
	from := now.AddDate(0, 0, -30)
	var out []maturity.Series
	for _, p := range presets.StabilityParameters(t.WaterType) {
		ms, err := s.store.MeasurementsInWindow(r.Context(), t.ID, p, from, now)
		if err != nil {
			return nil, err
		}
		sr := maturity.Series{ParameterType: p}
		for _, m := range ms {
			sr.Values = append(sr.Values, m.Value)
		}
		out = append(out, sr)
	}
	return out, nil
}
