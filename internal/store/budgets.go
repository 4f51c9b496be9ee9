package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"aquascope/internal/model"
)

const budgetColumns = `id, user_id, tank_id, name, amount, currency, period,
	category, is_active, notes, created_at, updated_at`

// CreateBudget saves a spending cap.
func (s *Store) CreateBudget(ctx context.Context, b *model.Budget) error {
	now := timeNow().UTC()
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	if b.Currency == "" {
		b.Currency = "EUR"
	}
	if b.Period == "" {
		b.Period = "monthly"
	}
	b.CreatedAt = now
	b.UpdatedAt = now
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO budgets (`+budgetColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.ID.String(), b.UserID.String(), bindUUIDPtr(b.TankID), b.Name,
		b.Amount, b.Currency, b.Period, bindStrPtr(b.Category),
		b.IsActive, bindStrPtr(b.Notes), bindTime(now), bindTime(now))
	if err != nil {
		return fmt.Errorf("create budget: %w", err)
	}
	return nil
}

// ListBudgets returns the user's budgets, active first.
func (s *Store) ListBudgets(ctx context.Context, userID uuid.UUID) ([]model.Budget, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+budgetColumns+` FROM budgets WHERE user_id = ?
		ORDER BY is_active DESC, created_at`, userID.String())
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	defer rows.Close()

	var budgets []model.Budget
	for rows.Next() {
		b, err := scanBudgetRow(rows)
		if err != nil {
			return nil, err
		}
		budgets = append(budgets, *b)
	}
	return budgets, rows.Err()
}

// BudgetForUser fetches one budget owned by the user.
func (s *Store) BudgetForUser(ctx context.Context, userID, budgetID uuid.UUID) (*model.Budget, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+budgetColumns+` FROM budgets WHERE id = ? AND user_id = ?`,
		budgetID.String(), userID.String())
	b, err := scanBudgetRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return b, err
}

// UpdateBudget persists all mutable fields.
func (s *Store) UpdateBudget(ctx context.Context, b *model.Budget) error {
	b.UpdatedAt = timeNow().UTC()
	res, err := s.db.ExecContext(ctx,
		`UPDATE budgets SET tank_id = ?, name = ?, amount = ?, currency = ?, period = ?,
			category = ?, is_active = ?, notes = ?, updated_at = ?
		WHERE id = ? AND user_id = ?`,
		bindUUIDPtr(b.TankID), b.Name, b.Amount, b.Currency, b.Period,
		bindStrPtr(b.Category), b.IsActive, bindStrPtr(b.Notes),
		bindTime(b.UpdatedAt), b.ID.String(), b.UserID.String())
	if err != nil {
		return fmt.Errorf("update budget: %w", err)
	}
	return requireRow(res)
}

// DeleteBudget removes one budget.
func (s *Store) DeleteBudget(ctx context.Context, userID, budgetID uuid.UUID) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM budgets WHERE id = ? AND user_id = ?`,
		budgetID.String(), userID.String())
	if err != nil {
		return fmt.Errorf("delete budget: %w", err)
	}
	return requireRow(res)
}

func scanBudgetRow(r rowScanner) (*model.Budget, error) {
	var (
		b                model.Budget
		idStr, userStr   string
		tankID           sql.NullString
		category, notes  sql.NullString
		created, updated timeCol
	)
	err := r.Scan(&idStr, &userStr, &tankID, &b.Name, &b.Amount, &b.Currency,
		&b.Period, &category, &b.IsActive, &notes, &created, &updated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan budget: %w", err)
	}
	if b.ID, err = uuid.Parse(idStr); err != nil {
		return nil, fmt.Errorf("parse budget id: %w", err)
	}
	if b.UserID, err = uuid.Parse(userStr); err != nil {
		return nil, fmt.Errorf("parse budget user id: %w", err)
	}
	if b.TankID, err = uuidPtrFromNull(tankID); err != nil {
		return nil, err
	}
	b.Category = strPtrFromNull(category)
	b.Notes = strPtrFromNull(notes)
	b.CreatedAt = created.t
	b.UpdatedAt = updated.t
	return &b, nil
}
