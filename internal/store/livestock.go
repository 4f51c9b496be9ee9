package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"aquascope/internal/model"
)

const livestockColumns = `id, tank_id, user_id, species_name, common_name, type,
	quantity, status, added_date, purchase_price, notes, is_archived, created_at`

// CreateLivestock adds an inhabitant to a tank.
func (s *Store) CreateLivestock(ctx context.Context, l *model.Livestock) error {
	now := timeNow().UTC()
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	if l.Quantity <= 0 {
		l.Quantity = 1
	}
	if l.Status == "" {
		l.Status = model.LivestockAlive
	}
	l.CreatedAt = now
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO livestock (`+livestockColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		l.ID.String(), l.TankID.String(), l.UserID.String(), l.SpeciesName,
		bindStrPtr(l.CommonName), l.Type, l.Quantity, l.Status,
		bindDatePtr(l.AddedDate), bindStrPtr(l.PurchasePrice), bindStrPtr(l.Notes),
		l.IsArchived, bindTime(now))
	if err != nil {
		return fmt.Errorf("create livestock: %w", err)
	}
	return nil
}

// ListLivestock returns a tank's inhabitants, newest first. Archived
// entries are included only when includeArchived is set.
func (s *Store) ListLivestock(ctx context.Context, userID, tankID uuid.UUID, includeArchived bool) ([]model.Livestock, error) {
	q := `SELECT ` + livestockColumns + ` FROM livestock WHERE tank_id = ? AND user_id = ?`
	if !includeArchived {
		q += ` AND is_archived = 0`
	}
	q += ` ORDER BY created_at DESC`
	rows, err := s.db.QueryContext(ctx, q, tankID.String(), userID.String())
	if err != nil {
		return nil, fmt.Errorf("list livestock: %w", err)
	}
	defer rows.Close()

	var items []model.Livestock
	for rows.Next() {
		l, err := scanLivestockRow(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *l)
	}
	return items, rows.Err()
}

// LivestockForUser fetches one inhabitant owned by the user.
func (s *Store) LivestockForUser(ctx context.Context, userID, livestockID uuid.UUID) (*model.Livestock, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+livestockColumns+` FROM livestock WHERE id = ? AND user_id = ?`,
		livestockID.String(), userID.String())
	l, err := scanLivestockRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return l, err
}

// UpdateLivestock persists all mutable fields.
func (s *Store) UpdateLivestock(ctx context.Context, l *model.Livestock) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE livestock SET species_name = ?, common_name = ?, type = ?, quantity = ?,
			status = ?, added_date = ?, purchase_price = ?, notes = ?, is_archived = ?
		WHERE id = ? AND user_id = ?`,
		l.SpeciesName, bindStrPtr(l.CommonName), l.Type, l.Quantity,
		l.Status, bindDatePtr(l.AddedDate), bindStrPtr(l.PurchasePrice),
		bindStrPtr(l.Notes), l.IsArchived, l.ID.String(), l.UserID.String())
	if err != nil {
		return fmt.Errorf("update livestock: %w", err)
	}
	return requireRow(res)
}

// DeleteLivestock removes one inhabitant.
func (s *Store) DeleteLivestock(ctx context.Context, userID, livestockID uuid.UUID) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM livestock WHERE id = ? AND user_id = ?`,
		livestockID.String(), userID.String())
	if err != nil {
		return fmt.Errorf("delete livestock: %w", err)
	}
	return requireRow(res)
}

// CountAliveLivestock counts living inhabitants (sum of quantities) in a
// tank. Used by the maturity score and dashboard.
func (s *Store) CountAliveLivestock(ctx context.Context, tankID uuid.UUID) (int, error) {
	var n sql.NullInt64
	err := s.db.QueryRowContext(ctx,
		`SELECT SUM(quantity) FROM livestock
		WHERE tank_id = ? AND status = ? AND is_archived = 0`,
		tankID.String(), model.LivestockAlive).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count livestock: %w", err)
	}
	return int(n.Int64), nil
}

func scanLivestockRow(r rowScanner) (*model.Livestock, error) {
	var (
		l                       model.Livestock
		idStr, tankStr, userStr string
		common, price, notes    sql.NullString
		added                   nullableDateCol
		created                 timeCol
	)
	err := r.Scan(&idStr, &tankStr, &userStr, &l.SpeciesName, &common, &l.Type,
		&l.Quantity, &l.Status, &added, &price, &notes, &l.IsArchived, &created)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan livestock: %w", err)
	}
	if l.ID, err = uuid.Parse(idStr); err != nil {
		return nil, fmt.Errorf("parse livestock id: %w", err)
	}
	if l.TankID, err = uuid.Parse(tankStr); err != nil {
		return nil, fmt.Errorf("parse livestock tank id: %w", err)
	}
	if l.UserID, err = uuid.Parse(userStr); err != nil {
		return nil, fmt.Errorf("parse livestock user id: %w", err)
	}
	l.CommonName = strPtrFromNull(common)
	l.AddedDate = added.d
	l.PurchasePrice = strPtrFromNull(price)
	l.Notes = strPtrFromNull(notes)
	l.CreatedAt = created.t
	return &l, nil
}
