package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"aquascope/internal/chemistry"
	"aquascope/internal/model"
	"aquascope/internal/presets"
)

type writeParametersRequest struct {
	MeasuredAt *time.Time         `json:"measured_at,omitempty"`
	Values     map[string]float64 `json:"values"`
}

func (s *Server) handleWriteParameters(w http.ResponseWriter, r *http.Request) {
	t, err := s.ownTank(r)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	var req writeParametersRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondErr(w, r, err)
		return
	}
	if len(req.Values) == 0 {
		s.respondErr(w, r, badRequestf("no values to record"))
		return
	}
	at := time.Now().UTC()
	if req.MeasuredAt != nil {
		at = req.MeasuredAt.UTC()
	}

	ms := make([]model.Measurement, 0, len(req.Values))
	for p, v := range req.Values {
		if _, ok := presets.KnownParameterTypes[p]; !ok {
			s.respondErr(w, r, badRequestf("unknown parameter type %q", p))
			return
		}
		if err := validateMeasurement(p, v); err != nil {
			s.respondErr(w, r, err)
			return
		}
		ms = append(ms, model.Measurement{
			TankID:        t.ID,
			ParameterType: p,
			Value:         v,
			MeasuredAt:    at,
		})
	}
	if err := s.store.WriteMeasurements(r.Context(), t.UserID, ms); err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusCreated, ms)
}

// validateMeasurement rejects physically impossible readings. Anything
// inside the plausible band is accepted even when wildly out of range;
// out-of-range is exactly what a user needs to record.
func validateMeasurement(parameterType string, value float64) error {
	switch parameterType {
	case "temperature":
		if value < -10 || value > 50 {
			return badRequestf("temperature %.1f is outside -10..50", value)
		}
	case "ph":
		if value < 0 || value > 14 {
			return badRequestf("ph %.2f is outside 0..14", value)
		}
	default:
		if value < 0 {
			return badRequestf("%s must not be negative, got %.3f", parameterType, value)
		}
	}
	return nil
}

func (s *Server) handleLatestParameters(w http.ResponseWriter, r *http.Request) {
	t, err := s.ownTank(r)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	latest, err := s.store.LatestMeasurements(r.Context(), t.ID)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, latest)
}

func (s *Server) handleParameterHistory(w http.ResponseWriter, r *http.Request) {
	t, err := s.ownTank(r)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	pType := chi.URLParam(r, "type")
	from, to, err := timeWindow(r, 30)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	ms, err := s.store.MeasurementsInWindow(r.Context(), t.ID, pType, from, to)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, ms)
}

func (s *Server) handleDeleteParameterSeries(w http.ResponseWriter, r *http.Request) {
	t, err := s.ownTank(r)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	pType := chi.URLParam(r, "type")
	if raw := r.URL.Query().Get("at"); raw != "" {
		at, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			s.respondErr(w, r, badRequestf("invalid at timestamp %q", raw))
			return
		}
		if err := s.store.DeleteMeasurement(r.Context(), t.ID, pType, at); err != nil {
			s.respondErr(w, r, err)
			return
		}
		s.respondJSON(w, http.StatusNoContent, nil)
		return
	}
	n, err := s.store.DeleteMeasurementSeries(r.Context(), t.ID, pType)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]int64{"deleted": n})
}

// ratioPairs maps the supported ratio endpoints to their numerator and
// denominator parameters.
var ratioPairs = map[string][2]string{
	"nitrate-phosphate": {"nitrate", "phosphate"},
	"magnesium-calcium": {"magnesium", "calcium"},
}

func (s *Server) handleParameterRatio(w http.ResponseWriter, r *http.Request) {
	t, err := s.ownTank(r)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	pair, ok := ratioPairs[chi.URLParam(r, "pair")]
	if !ok {
		s.respondErr(w, r, badRequestf("unknown ratio pair %q", chi.URLParam(r, "pair")))
		return
	}
	from, to, err := timeWindow(r, 90)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}

	nums, err := s.store.MeasurementsInWindow(r.Context(), t.ID, pair[0], from, to)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	dens, err := s.store.MeasurementsInWindow(r.Context(), t.ID, pair[1], from, to)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}

	points := chemistry.PairRatios(toReadings(nums), toReadings(dens), s.cfg.Chemistry.RatioPairWindow)
	s.respondJSON(w, http.StatusOK, map[string]any{
		"numerator":   pair[0],
		"denominator": pair[1],
		"points":      points,
	})
}

func toReadings(ms []model.Measurement) []chemistry.Reading {
	out := make([]chemistry.Reading, len(ms))
	for i, m := range ms {
		out[i] = chemistry.Reading{Time: m.MeasuredAt, Value: m.Value}
	}
	return out
}

// timeWindow reads from/to query parameters, defaulting to the last
// defaultDays days.
func timeWindow(r *http.Request, defaultDays int) (time.Time, time.Time, error) {
	to := time.Now().UTC()
	from := to.AddDate(0, 0, -defaultDays)
	if raw := r.URL.Query().Get("from"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return time.Time{}, time.Time{}, badRequestf("invalid from timestamp %q", raw)
		}
		from = t
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return time.Time{}, time.Time{}, badRequestf("invalid to timestamp %q", raw)
		}
		to = t
	}
	if to.Before(from) {
		return time.Time{}, time.Time{}, badRequestf("window end precedes start")
	}
	return from, to, nil
}
