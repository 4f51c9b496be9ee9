// Package server is the HTTP API: a chi router over the store, with JWT
// auth, structured request logging, Prometheus metrics, and CORS.
package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"aquascope/internal/auth"
	"aquascope/internal/config"
	"aquascope/internal/finance"
	"aquascope/internal/metrics"
	"aquascope/internal/store"
)

// Server wires handlers to their dependencies.
type Server struct {
	cfg     *config.Config
	store   *store.Store
	tokens  *auth.TokenIssuer
	finance *finance.Service
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// New builds the server. metrics may be nil when the endpoint is
// disabled.
func New(cfg *config.Config, st *store.Store, tokens *auth.TokenIssuer, m *metrics.Metrics, logger *zap.Logger) *Server {
	return &Server{
		cfg:     cfg,
		store:   st,
		tokens:  tokens,
		finance: finance.NewService(st),
		metrics: m,
		logger:  logger.Named("http"),
	}
}

// Router assembles the full route tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(s.requestLogger)
	if s.metrics != nil {
		r.Use(s.observeRequests)
	}
	if len(s.cfg.Server.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   s.cfg.Server.CORSOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	r.Get("/healthz", s.handleHealth)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}

	r.Route("/api/v1", func(r chi.Router) {
		// Public routes.
		r.Post("/auth/register", s.handleRegister)
		r.Post("/auth/login", s.handleLogin)
		r.Get("/shared/{token}", s.handleSharedTank)
		r.Get("/chemistry/compounds", s.handleListCompounds)

		// Authenticated routes.
		r.Group(func(r chi.Router) {
			r.Use(s.requireUser)

			r.Get("/auth/me", s.handleMe)
			r.Post("/auth/change-password", s.handleChangePassword)

			r.Get("/dashboard", s.handleDashboard)
			r.Get("/finances/summary", s.handleFinanceSummary)
			r.Get("/finances/budgets/report", s.handleBudgetReport)
			r.Post("/finances/budgets", s.handleCreateBudget)
			r.Get("/finances/budgets", s.handleListBudgets)
			r.Put("/finances/budgets/{id}", s.handleUpdateBudget)
			r.Delete("/finances/budgets/{id}", s.handleDeleteBudget)

			r.Post("/chemistry/water-change", s.handleWaterChange)
			r.Post("/chemistry/water-change/solve", s.handleWaterChangeSolve)
			r.Post("/chemistry/dose", s.handleDosePlan)

			r.Route("/tanks", func(r chi.Router) {
				r.Get("/", s.handleListTanks)
				r.Post("/", s.handleCreateTank)
				r.Route("/{tankID}", func(r chi.Router) {
					r.Get("/", s.handleGetTank)
					r.Put("/", s.handleUpdateTank)
					r.Delete("/", s.handleDeleteTank)
					r.Post("/archive", s.handleArchiveTank)
					r.Post("/share", s.handleEnableShare)
					r.Delete("/share", s.handleDisableShare)
					r.Get("/maturity", s.handleMaturity)

					r.Get("/events", s.handleListEvents)
					r.Post("/events", s.handleCreateEvent)

					r.Get("/parameters", s.handleLatestParameters)
					r.Post("/parameters", s.handleWriteParameters)
					r.Get("/parameters/{type}", s.handleParameterHistory)
					r.Delete("/parameters/{type}", s.handleDeleteParameterSeries)
					r.Get("/parameters/ratio/{pair}", s.handleParameterRatio)

					r.Get("/ranges", s.handleListRanges)
					r.Put("/ranges/{type}", s.handleUpsertRange)
					r.Delete("/ranges/{type}", s.handleDeleteRange)
					r.Post("/ranges/reset", s.handleResetRanges)

					r.Get("/maintenance", s.handleListReminders)
					r.Post("/maintenance", s.handleCreateReminder)

					r.Get("/livestock", s.handleListLivestock)
					r.Post("/livestock", s.handleCreateLivestock)

					r.Get("/equipment", s.handleListEquipment)
					r.Post("/equipment", s.handleCreateEquipment)

					r.Get("/consumables", s.handleListConsumables)
					r.Post("/consumables", s.handleCreateConsumable)

					r.Get("/feeding/schedules", s.handleListFeedingSchedules)
					r.Post("/feeding/schedules", s.handleCreateFeedingSchedule)
					r.Get("/feeding/logs", s.handleListFeedingLogs)
					r.Post("/feeding/logs", s.handleCreateFeedingLog)

					r.Get("/notes", s.handleListNotes)
					r.Post("/notes", s.handleCreateNote)

					r.Get("/photos", s.handleListPhotos)
					r.Post("/photos", s.handleUploadPhoto)

					r.Get("/icp", s.handleListICPTests)
					r.Post("/icp", s.handleCreateICPTest)

					r.Get("/lighting", s.handleListLighting)
					r.Post("/lighting", s.handleCreateLighting)
				})
			})

			r.Put("/events/{id}", s.handleUpdateEvent)
			r.Delete("/events/{id}", s.handleDeleteEvent)
			r.Put("/maintenance/{id}", s.handleUpdateReminder)
			r.Post("/maintenance/{id}/complete", s.handleCompleteReminder)
			r.Delete("/maintenance/{id}", s.handleDeleteReminder)
			r.Get("/maintenance/overdue", s.handleOverdueReminders)
			r.Put("/livestock/{id}", s.handleUpdateLivestock)
			r.Delete("/livestock/{id}", s.handleDeleteLivestock)
			r.Put("/equipment/{id}", s.handleUpdateEquipment)
			r.Delete("/equipment/{id}", s.handleDeleteEquipment)
			r.Put("/consumables/{id}", s.handleUpdateConsumable)
			r.Delete("/consumables/{id}", s.handleDeleteConsumable)
			r.Post("/consumables/{id}/use", s.handleUseConsumable)
			r.Get("/consumables/{id}/usage", s.handleListConsumableUsage)
			r.Put("/feeding/schedules/{id}", s.handleUpdateFeedingSchedule)
			r.Delete("/feeding/schedules/{id}", s.handleDeleteFeedingSchedule)
			r.Post("/feeding/schedules/{id}/fed", s.handleMarkFed)
			r.Delete("/feeding/logs/{id}", s.handleDeleteFeedingLog)
			r.Put("/notes/{id}", s.handleUpdateNote)
			r.Delete("/notes/{id}", s.handleDeleteNote)
			r.Get("/photos/{id}/file", s.handleServePhoto)
			r.Put("/photos/{id}", s.handleUpdatePhoto)
			r.Delete("/photos/{id}", s.handleDeletePhoto)
			r.Put("/icp/{id}", s.handleUpdateICPTest)
			r.Delete("/icp/{id}", s.handleDeleteICPTest)
			r.Put("/lighting/{id}", s.handleUpdateLighting)
			r.Post("/lighting/{id}/activate", s.handleActivateLighting)
			r.Delete("/lighting/{id}", s.handleDeleteLighting)

			// Admin routes.
			r.Group(func(r chi.Router) {
				r.Use(s.requireAdmin)
				r.Get("/admin/stats", s.handleAdminStats)
				r.Get("/admin/users", s.handleAdminListUsers)
				r.Put("/admin/users/{id}", s.handleAdminUpdateUser)
				r.Get("/admin/users/{id}/export", s.handleAdminExportUser)
				r.Delete("/admin/users/{id}", s.handleAdminDeleteUser)
				r.Get("/admin/settings", s.handleAdminListSettings)
				r.Put("/admin/settings/{key}", s.handleAdminSetSetting)
			})
		})
	})
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
