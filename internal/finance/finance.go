// Package finance aggregates spending across equipment, consumables,
// livestock, and lab tests. Purchase prices are stored as the free-form
// strings users typed, so every figure here goes through the price
// parser and unparseable entries are skipped rather than guessed at.
package finance

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"aquascope/internal/model"
	"aquascope/internal/price"
	"aquascope/internal/store"
)

// Expense categories.
const (
	CategoryEquipment   = "equipment"
	CategoryConsumables = "consumables"
	CategoryLivestock   = "livestock"
	CategoryICP         = "icp_tests"
)

// Expense is one parsed purchase.
type Expense struct {
	TankID      uuid.UUID   `json:"tank_id"`
	TankName    string      `json:"tank_name"`
	Category    string      `json:"category"`
	Description string      `json:"description"`
	Amount      float64     `json:"amount"`
	Date        *model.Date `json:"date,omitempty"`
}

// Summary is the aggregate spending view.
type Summary struct {
	Total              float64            `json:"total"`
	ByCategory         map[string]float64 `json:"by_category"`
	ByTank             map[string]float64 `json:"by_tank"`
	ByMonth            map[string]float64 `json:"by_month"`
	ExpenseCount       int                `json:"expense_count"`
	SkippedEntries     int                `json:"skipped_entries"`
	MonthlyElectricity float64            `json:"monthly_electricity"`
	Expenses           []Expense          `json:"expenses"`
}

// BudgetStatus reports spending against one budget's current period.
type BudgetStatus struct {
	Budget      model.Budget `json:"budget"`
	PeriodStart model.Date   `json:"period_start"`
	Spent       float64      `json:"spent"`
	Remaining   float64      `json:"remaining"`
	PercentUsed float64      `json:"percent_used"`
	OverBudget  bool         `json:"over_budget"`
}

// Service computes finance views over the store.
type Service struct {
	store *store.Store
}

func NewService(s *store.Store) *Service {
	return &Service{store: s}
}

// Collect gathers every parseable expense across the user's tanks,
// archived ones included so history stays complete.
func (s *Service) Collect(ctx context.Context, userID uuid.UUID) ([]Expense, int, error) {
	tanks, err := s.store.ListTanks(ctx, userID, true)
	if err != nil {
		return nil, 0, err
	}

	var (
		expenses []Expense
		skipped  int
	)
	add := func(tank model.Tank, category, description string, priceStr *string, date *model.Date) {
		if priceStr == nil || *priceStr == "" {
			return
		}
		amount, ok := price.Parse(*priceStr)
		if !ok {
			skipped++
			return
		}
		expenses = append(expenses, Expense{
			TankID:      tank.ID,
			TankName:    tank.Name,
			Category:    category,
			Description: description,
			Amount:      amount,
			Date:        date,
		})
	}

	for _, tank := range tanks {
		equipment, err := s.store.ListEquipment(ctx, userID, tank.ID)
		if err != nil {
			return nil, 0, fmt.Errorf("collect equipment: %w", err)
		}
		for _, e := range equipment {
			add(tank, CategoryEquipment, e.Name, e.PurchasePrice, e.PurchaseDate)
		}

		consumables, err := s.store.ListConsumables(ctx, userID, tank.ID, "")
		if err != nil {
			return nil, 0, fmt.Errorf("collect consumables: %w", err)
		}
		for _, c := range consumables {
			add(tank, CategoryConsumables, c.Name, c.PurchasePrice, c.PurchaseDate)
		}

		livestock, err := s.store.ListLivestock(ctx, userID, tank.ID, true)
		if err != nil {
			return nil, 0, fmt.Errorf("collect livestock: %w", err)
		}
		for _, l := range livestock {
			add(tank, CategoryLivestock, l.SpeciesName, l.PurchasePrice, l.AddedDate)
		}

		icpTests, err := s.store.ListICPTests(ctx, userID, tank.ID)
		if err != nil {
			return nil, 0, fmt.Errorf("collect icp tests: %w", err)
		}
		for _, t := range icpTests {
			d := t.TestDate
			add(tank, CategoryICP, t.LabName, t.Cost, &d)
		}
	}
	return expenses, skipped, nil
}

// Summarize builds the full spending summary for a user.
func (s *Service) Summarize(ctx context.Context, userID uuid.UUID) (*Summary, error) {
	expenses, skipped, err := s.Collect(ctx, userID)
	if err != nil {
		return nil, err
	}

	sum := &Summary{
		ByCategory:     map[string]float64{},
		ByTank:         map[string]float64{},
		ByMonth:        map[string]float64{},
		ExpenseCount:   len(expenses),
		SkippedEntries: skipped,
		Expenses:       expenses,
	}
	for _, e := range expenses {
		sum.Total += e.Amount
		sum.ByCategory[e.Category] += e.Amount
		sum.ByTank[e.TankName] += e.Amount
		if e.Date != nil {
			sum.ByMonth[e.Date.Format("2006-01")] += e.Amount
		}
	}

	tanks, err := s.store.ListTanks(ctx, userID, false)
	if err != nil {
		return nil, err
	}
	for _, t := range tanks {
		if t.ElectricityCostPerDay != nil {
			sum.MonthlyElectricity += *t.ElectricityCostPerDay * 30.44
		}
	}
	return sum, nil
}

// BudgetReport evaluates every budget of the user against the expenses
// that fall inside its current period.
func (s *Service) BudgetReport(ctx context.Context, userID uuid.UUID, now time.Time) ([]BudgetStatus, error) {
	budgets, err := s.store.ListBudgets(ctx, userID)
	if err != nil {
		return nil, err
	}
	expenses, _, err := s.Collect(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := make([]BudgetStatus, 0, len(budgets))
	for _, b := range budgets {
		if !b.IsActive {
			continue
		}
		out = append(out, EvaluateBudget(b, expenses, now))
	}
	return out, nil
}

// EvaluateBudget sums the matching expenses inside the budget's current
// period. Undated expenses never count against a budget because there is
// no way to place them in a period.
func EvaluateBudget(b model.Budget, expenses []Expense, now time.Time) BudgetStatus {
	start := periodStart(b.Period, now)
	status := BudgetStatus{Budget: b, PeriodStart: start}
	for _, e := range expenses {
		if e.Date == nil || e.Date.Before(start.Time) {
			continue
		}
		if b.TankID != nil && e.TankID != *b.TankID {
			continue
		}
		if b.Category != nil && e.Category != *b.Category {
			continue
		}
		status.Spent += e.Amount
	}
	status.Remaining = b.Amount - status.Spent
	if b.Amount > 0 {
		status.PercentUsed = status.Spent / b.Amount * 100
	}
	status.OverBudget = status.Spent > b.Amount
	return status
}

func periodStart(period string, now time.Time) model.Date {
	now = now.UTC()
	if period == "yearly" {
		return model.NewDate(now.Year(), time.January, 1)
	}
	return model.NewDate(now.Year(), now.Month(), 1)
}
