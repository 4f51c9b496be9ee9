package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"aquascope/internal/maturity"
	"aquascope/internal/model"
)

// sharedTankResponse is the public read-only view of a shared tank.
// Prices, notes, and account identifiers never appear here.
type sharedTankResponse struct {
	Name            string      `json:"name"`
	WaterType       string      `json:"water_type"`
	AquariumSubtype *string     `json:"aquarium_subtype,omitempty"`
	Description     *string     `json:"description,omitempty"`
	SetupDate       *model.Date `json:"setup_date,omitempty"`
	TotalVolume     float64     `json:"total_volume_liters,omitempty"`
	HasRefugium     bool        `json:"has_refugium"`

	Parameters []model.Measurement `json:"parameters"`
	Ranges     []sharedRange       `json:"ranges"`
	Livestock  []sharedLivestock   `json:"livestock"`
	Maturity   maturity.Score      `json:"maturity"`
}

type sharedRange struct {
	ParameterType string   `json:"parameter_type"`
	Name          string   `json:"name"`
	Unit          string   `json:"unit"`
	MinValue      float64  `json:"min_value"`
	MaxValue      float64  `json:"max_value"`
	IdealValue    *float64 `json:"ideal_value,omitempty"`
}

type sharedLivestock struct {
	SpeciesName string  `json:"species_name"`
	CommonName  *string `json:"common_name,omitempty"`
	Type        string  `json:"type"`
	Quantity    int     `json:"quantity"`
}

func (s *Server) handleSharedTank(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	t, err := s.store.TankByShareToken(r.Context(), token)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}

	latest, err := s.store.LatestMeasurements(r.Context(), t.ID)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	ranges, err := s.store.ListParameterRanges(r.Context(), t.ID)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	stock, err := s.store.ListLivestock(r.Context(), t.UserID, t.ID, false)
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

	resp := sharedTankResponse{
		Name:            t.Name,
		WaterType:       t.WaterType,
		AquariumSubtype: t.AquariumSubtype,
		Description:     t.Description,
		SetupDate:       t.SetupDate,
		TotalVolume:     t.TotalVolumeLiters(),
		HasRefugium:     t.HasRefugium,
		Parameters:      latest,
		Ranges:          make([]sharedRange, 0, len(ranges)),
		Livestock:       make([]sharedLivestock, 0, len(stock)),
		Maturity:        maturity.Compute(setup, now, series, alive),
	}
	for _, pr := range ranges {
		resp.Ranges = append(resp.Ranges, sharedRange{
			ParameterType: pr.ParameterType,
			Name:          pr.Name,
			Unit:          pr.Unit,
			MinValue:      pr.MinValue,
			MaxValue:      pr.MaxValue,
			IdealValue:    pr.IdealValue,
		})
	}
	for _, l := range stock {
		if l.Status != model.LivestockAlive {
			continue
		}
		resp.Livestock = append(resp.Livestock, sharedLivestock{
			SpeciesName: l.SpeciesName,
			CommonName:  l.CommonName,
			Type:        l.Type,
			Quantity:    l.Quantity,
		})
	}
	s.respondJSON(w, http.StatusOK, resp)
}
