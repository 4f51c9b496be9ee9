package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"aquascope/internal/auth"
	"aquascope/internal/model"
)

func (s *Server) handleAdminStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.store.Stats(r.Context())
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, stats)
}

func (s *Server) handleAdminListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.store.UserStatsList(r.Context())
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, users)
}

type adminUpdateUserRequest struct {
	Username *string `json:"username,omitempty"`
	Email    *string `json:"email,omitempty"`
	Password *string `json:"password,omitempty"`
	IsAdmin  *bool   `json:"is_admin,omitempty"`
}

func (s *Server) handleAdminUpdateUser(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	u, err := s.store.UserByID(r.Context(), id)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	var req adminUpdateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondErr(w, r, err)
		return
	}
	if req.Username != nil && *req.Username != "" {
		u.Username = *req.Username
	}
	if req.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*req.Email))
		if !strings.Contains(email, "@") {
			s.respondErr(w, r, badRequestf("invalid email %q", email))
			return
		}
		u.Email = email
	}
	if req.Password != nil {
		hash, err := auth.HashPassword(*req.Password)
		if err != nil {
			s.respondErr(w, r, err)
			return
		}
		u.HashedPassword = hash
	}
	if req.IsAdmin != nil {
		// An admin cannot revoke their own flag; that path locks
		// everyone out of this endpoint.
		if !*req.IsAdmin && id == currentUser(r).ID {
			s.respondErr(w, r, badRequestf("cannot remove your own admin role"))
			return
		}
		u.IsAdmin = *req.IsAdmin
	}
	if err := s.store.UpdateUser(r.Context(), u); err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, u)
}

func (s *Server) handleAdminDeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	if id == currentUser(r).ID {
		s.respondErr(w, r, badRequestf("cannot delete your own account"))
		return
	}
	if err := s.store.DeleteUser(r.Context(), id); err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusNoContent, nil)
}

// tankExport bundles one tank with everything hanging off it.
type tankExport struct {
	Tank             *model.Tank                 `json:"tank"`
	Events           []model.TankEvent           `json:"events,omitempty"`
	Ranges           []model.ParameterRange      `json:"ranges,omitempty"`
	Measurements     []model.Measurement         `json:"measurements,omitempty"`
	Reminders        []model.MaintenanceReminder `json:"reminders,omitempty"`
	Livestock        []model.Livestock           `json:"livestock,omitempty"`
	Equipment        []model.Equipment           `json:"equipment,omitempty"`
	Consumables      []model.Consumable          `json:"consumables,omitempty"`
	FeedingSchedules []model.FeedingSchedule     `json:"feeding_schedules,omitempty"`
	FeedingLogs      []model.FeedingLog          `json:"feeding_logs,omitempty"`
	Notes            []model.Note                `json:"notes,omitempty"`
	Photos           []model.Photo               `json:"photos,omitempty"`
	ICPTests         []model.ICPTest             `json:"icp_tests,omitempty"`
	Lighting         []model.LightingSchedule    `json:"lighting,omitempty"`
}

type userExport struct {
	ExportedAt time.Time      `json:"exported_at"`
	User       *model.User    `json:"user"`
	Tanks      []tankExport   `json:"tanks"`
	Budgets    []model.Budget `json:"budgets,omitempty"`
}

// handleAdminExportUser dumps one account's data as a single JSON
// document. Photo files are not inlined; their metadata carries the
// paths.
func (s *Server) handleAdminExportUser(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	u, err := s.store.UserByID(r.Context(), id)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}

	export := userExport{ExportedAt: time.Now().UTC(), User: u}
	tanks, err := s.store.ListTanks(r.Context(), u.ID, true)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	for i := range tanks {
		t := &tanks[i]
		te := tankExport{Tank: t}
		if te.Events, err = s.store.ListTankEvents(r.Context(), u.ID, t.ID); err != nil {
			s.respondErr(w, r, err)
			return
		}
		if te.Ranges, err = s.store.ListParameterRanges(r.Context(), t.ID); err != nil {
			s.respondErr(w, r, err)
			return
		}
		types, err := s.store.MeasuredParameterTypes(r.Context(), t.ID)
		if err != nil {
			s.respondErr(w, r, err)
			return
		}
		for _, pt := range types {
			ms, err := s.store.MeasurementsInWindow(r.Context(), t.ID, pt, time.Time{}, export.ExportedAt)
			if err != nil {
				s.respondErr(w, r, err)
				return
			}
			te.Measurements = append(te.Measurements, ms...)
		}
		if te.Reminders, err = s.store.ListReminders(r.Context(), u.ID, t.ID, true); err != nil {
			s.respondErr(w, r, err)
			return
		}
		if te.Livestock, err = s.store.ListLivestock(r.Context(), u.ID, t.ID, true); err != nil {
			s.respondErr(w, r, err)
			return
		}
		if te.Equipment, err = s.store.ListEquipment(r.Context(), u.ID, t.ID); err != nil {
			s.respondErr(w, r, err)
			return
		}
		if te.Consumables, err = s.store.ListConsumables(r.Context(), u.ID, t.ID, ""); err != nil {
			s.respondErr(w, r, err)
			return
		}
		if te.FeedingSchedules, err = s.store.ListFeedingSchedules(r.Context(), u.ID, t.ID, true); err != nil {
			s.respondErr(w, r, err)
			return
		}
		if te.FeedingLogs, err = s.store.ListFeedingLogs(r.Context(), u.ID, t.ID, 0); err != nil {
			s.respondErr(w, r, err)
			return
		}
		if te.Notes, err = s.store.ListNotes(r.Context(), u.ID, t.ID, 0); err != nil {
			s.respondErr(w, r, err)
			return
		}
		if te.Photos, err = s.store.ListPhotos(r.Context(), u.ID, t.ID); err != nil {
			s.respondErr(w, r, err)
			return
		}
		if te.ICPTests, err = s.store.ListICPTests(r.Context(), u.ID, t.ID); err != nil {
			s.respondErr(w, r, err)
			return
		}
		if te.Lighting, err = s.store.ListLightingSchedules(r.Context(), u.ID, t.ID); err != nil {
			s.respondErr(w, r, err)
			return
		}
		export.Tanks = append(export.Tanks, te)
	}
	if export.Budgets, err = s.store.ListBudgets(r.Context(), u.ID); err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, export)
}

func (s *Server) handleAdminListSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := s.store.AllSettings(r.Context())
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, settings)
}

type setSettingRequest struct {
	Value string `json:"value"`
}

func (s *Server) handleAdminSetSetting(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	if key == "" {
		s.respondErr(w, r, badRequestf("setting key is required"))
		return
	}
	var req setSettingRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondErr(w, r, err)
		return
	}
	if err := s.store.SetSetting(r.Context(), key, req.Value); err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"key": key, "value": req.Value})
}
