package server

import (
	"net/http"

	"aquascope/internal/chemistry"
)

func (s *Server) handleListCompounds(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, chemistry.Compounds())
}

type waterChangeRequest struct {
	Current     float64 `json:"current"`
	Replacement float64 `json:"replacement"`
	Fraction    float64 `json:"fraction"`
	Changes     int     `json:"changes,omitempty"`
}

type waterChangeResponse struct {
	After   float64   `json:"after"`
	Series  []float64 `json:"series,omitempty"`
	Changes int       `json:"changes"`
}

// handleWaterChange projects the concentration after one or more water
// changes at a fixed fraction.
func (s *Server) handleWaterChange(w http.ResponseWriter, r *http.Request) {
	var req waterChangeRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondErr(w, r, err)
		return
	}
	n := req.Changes
	if n <= 0 {
		n = 1
	}
	resp := waterChangeResponse{Changes: n}
	for i := 1; i <= n; i++ {
		after, err := chemistry.AfterRepeatedChanges(req.Current, req.Replacement, req.Fraction, i)
		if err != nil {
			s.respondErr(w, r, err)
			return
		}
		resp.After = after
		resp.Series = append(resp.Series, after)
	}
	s.respondJSON(w, http.StatusOK, resp)
}

type waterChangeSolveRequest struct {
	Current     float64  `json:"current"`
	Target      float64  `json:"target"`
	Replacement float64  `json:"replacement"`
	Fraction    *float64 `json:"fraction,omitempty"`
	Tolerance   float64  `json:"tolerance,omitempty"`
}

type waterChangeSolveResponse struct {
	Fraction *float64 `json:"fraction,omitempty"`
	Changes  *int     `json:"changes,omitempty"`
}

// handleWaterChangeSolve answers either "what fraction reaches the
// target in one change" or, when a fraction is given, "how many changes
// at that fraction get within tolerance".
func (s *Server) handleWaterChangeSolve(w http.ResponseWriter, r *http.Request) {
	var req waterChangeSolveRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondErr(w, r, err)
		return
	}

	if req.Fraction == nil {
		f, err := chemistry.FractionForTarget(req.Current, req.Target, req.Replacement)
		if err != nil {
			s.respondErr(w, r, err)
			return
		}
		s.respondJSON(w, http.StatusOK, waterChangeSolveResponse{Fraction: &f})
		return
	}

	tolerance := req.Tolerance
	if tolerance <= 0 {
		tolerance = 0.5
	}
	n, err := chemistry.ChangesToReachTarget(req.Current, req.Target, req.Replacement,
		*req.Fraction, tolerance, 50)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, waterChangeSolveResponse{Fraction: req.Fraction, Changes: &n})
}

type doseRequest struct {
	CompoundID string   `json:"compound_id"`
	Current    float64  `json:"current"`
	Target     float64  `json:"target"`
	TankLiters *float64 `json:"tank_liters,omitempty"`
	TankID     *string  `json:"tank_id,omitempty"`
}

// handleDosePlan computes how much of a compound to dose. The volume
// comes either from the request or from a referenced tank.
func (s *Server) handleDosePlan(w http.ResponseWriter, r *http.Request) {
	var req doseRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondErr(w, r, err)
		return
	}
	compound, ok := chemistry.CompoundByID(req.CompoundID)
	if !ok {
		s.respondErr(w, r, badRequestf("unknown compound %q", req.CompoundID))
		return
	}

	liters := 0.0
	switch {
	case req.TankLiters != nil:
		liters = *req.TankLiters
	case req.TankID != nil:
		tankID, err := parseUUIDString(*req.TankID)
		if err != nil {
			s.respondErr(w, r, err)
			return
		}
		t, err := s.store.TankForUser(r.Context(), currentUser(r).ID, tankID)
		if err != nil {
			s.respondErr(w, r, err)
			return
		}
		liters = t.TotalVolumeLiters()
	}
	if liters <= 0 {
		s.respondErr(w, r, badRequestf("tank volume must be positive"))
		return
	}

	plan, err := chemistry.PlanDose(compound, req.Current, req.Target, liters)
	if err != nil {
		s.respondErr(w, r, badRequestf("%v", err))
		return
	}
	s.respondJSON(w, http.StatusOK, plan)
}
