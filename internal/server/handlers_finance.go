package server

import (
	"net/http"
	"time"

	"aquascope/internal/model"
)

func (s *Server) handleFinanceSummary(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	summary, err := s.finance.Summarize(r.Context(), user.ID)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, summary)
}

func (s *Server) handleBudgetReport(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	report, err := s.finance.BudgetReport(r.Context(), user.ID, time.Now().UTC())
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, report)
}

type budgetRequest struct {
	Name     string  `json:"name"`
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency,omitempty"`
	Period   string  `json:"period,omitempty"`
	Category *string `json:"category,omitempty"`
	TankID   *string `json:"tank_id,omitempty"`
	IsActive *bool   `json:"is_active,omitempty"`
}

func (s *Server) budgetFromRequest(r *http.Request, req budgetRequest, b *model.Budget) error {
	if req.Name == "" {
		return badRequestf("budget name is required")
	}
	if req.Amount <= 0 {
		return badRequestf("budget amount must be positive")
	}
	switch req.Period {
	case "", "monthly", "yearly":
	default:
		return badRequestf("period must be monthly or yearly, got %q", req.Period)
	}
	b.Name = req.Name
	b.Amount = req.Amount
	b.Currency = req.Currency
	b.Period = req.Period
	b.Category = req.Category
	if req.TankID != nil {
		id, err := parseUUIDString(*req.TankID)
		if err != nil {
			return err
		}
		// Scoped budgets must point at a tank the caller owns.
		if _, err := s.store.TankForUser(r.Context(), currentUser(r).ID, id); err != nil {
			return err
		}
		b.TankID = &id
	} else {
		b.TankID = nil
	}
	if req.IsActive != nil {
		b.IsActive = *req.IsActive
	}
	return nil
}

func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	budgets, err := s.store.ListBudgets(r.Context(), currentUser(r).ID)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, budgets)
}

func (s *Server) handleCreateBudget(w http.ResponseWriter, r *http.Request) {
	var req budgetRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondErr(w, r, err)
		return
	}
	b := &model.Budget{UserID: currentUser(r).ID, IsActive: true}
	if err := s.budgetFromRequest(r, req, b); err != nil {
		s.respondErr(w, r, err)
		return
	}
	if err := s.store.CreateBudget(r.Context(), b); err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusCreated, b)
}

func (s *Server) handleUpdateBudget(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	b, err := s.store.BudgetForUser(r.Context(), currentUser(r).ID, id)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	var req budgetRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondErr(w, r, err)
		return
	}
	if err := s.budgetFromRequest(r, req, b); err != nil {
		s.respondErr(w, r, err)
		return
	}
	if err := s.store.UpdateBudget(r.Context(), b); err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, b)
}

func (s *Server) handleDeleteBudget(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	if err := s.store.DeleteBudget(r.Context(), currentUser(r).ID, id); err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusNoContent, nil)
}
