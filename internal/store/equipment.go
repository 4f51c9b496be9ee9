package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"aquascope/internal/model"
)

const equipmentColumns = `id, tank_id, user_id, name, equipment_type, manufacturer,
	model, specs, purchase_date, purchase_price, purchase_url, condition, notes,
	created_at, updated_at`

// CreateEquipment adds a piece of hardware to a tank.
func (s *Store) CreateEquipment(ctx context.Context, e *model.Equipment) error {
	now := timeNow().UTC()
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	e.CreatedAt = now
	e.UpdatedAt = now
	specs, err := bindJSON(specsOrNil(e.Specs))
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO equipment (`+equipmentColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID.String(), e.TankID.String(), e.UserID.String(), e.Name, e.EquipmentType,
		bindStrPtr(e.Manufacturer), bindStrPtr(e.Model), specs,
		bindDatePtr(e.PurchaseDate), bindStrPtr(e.PurchasePrice), bindStrPtr(e.PurchaseURL),
		bindStrPtr(e.Condition), bindStrPtr(e.Notes), bindTime(now), bindTime(now))
	if err != nil {
		return fmt.Errorf("create equipment: %w", err)
	}
	return nil
}

// ListEquipment returns a tank's equipment, newest first.
func (s *Store) ListEquipment(ctx context.Context, userID, tankID uuid.UUID) ([]model.Equipment, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+equipmentColumns+` FROM equipment WHERE tank_id = ? AND user_id = ?
		ORDER BY created_at DESC`, tankID.String(), userID.String())
	if err != nil {
		return nil, fmt.Errorf("list equipment: %w", err)
	}
	defer rows.Close()

	var items []model.Equipment
	for rows.Next() {
		e, err := scanEquipmentRow(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *e)
	}
	return items, rows.Err()
}

// EquipmentForUser fetches one item owned by the user.
func (s *Store) EquipmentForUser(ctx context.Context, userID, equipmentID uuid.UUID) (*model.Equipment, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+equipmentColumns+` FROM equipment WHERE id = ? AND user_id = ?`,
		equipmentID.String(), userID.String())
	e, err := scanEquipmentRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return e, err
}

// UpdateEquipment persists all mutable fields.
func (s *Store) UpdateEquipment(ctx context.Context, e *model.Equipment) error {
	e.UpdatedAt = timeNow().UTC()
	specs, err := bindJSON(specsOrNil(e.Specs))
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE equipment SET name = ?, equipment_type = ?, manufacturer = ?, model = ?,
			specs = ?, purchase_date = ?, purchase_price = ?, purchase_url = ?,
			condition = ?, notes = ?, updated_at = ?
		WHERE id = ? AND user_id = ?`,
		e.Name, e.EquipmentType, bindStrPtr(e.Manufacturer), bindStrPtr(e.Model),
		specs, bindDatePtr(e.PurchaseDate), bindStrPtr(e.PurchasePrice),
		bindStrPtr(e.PurchaseURL), bindStrPtr(e.Condition), bindStrPtr(e.Notes),
		bindTime(e.UpdatedAt), e.ID.String(), e.UserID.String())
	if err != nil {
		return fmt.Errorf("update equipment: %w", err)
	}
	return requireRow(res)
}

// DeleteEquipment removes one item.
func (s *Store) DeleteEquipment(ctx context.Context, userID, equipmentID uuid.UUID) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM equipment WHERE id = ? AND user_id = ?`,
		equipmentID.String(), userID.String())
	if err != nil {
		return fmt.Errorf("delete equipment: %w", err)
	}
	return requireRow(res)
}

func specsOrNil(m map[string]string) any {
	if len(m) == 0 {
		return nil
	}
	return m
}

func scanEquipmentRow(r rowScanner) (*model.Equipment, error) {
	var (
		e                       model.Equipment
		idStr, tankStr, userStr string
		manufacturer, mdl       sql.NullString
		specs, price, url       sql.NullString
		condition, notes        sql.NullString
		purchase                nullableDateCol
		created, updated        timeCol
	)
	err := r.Scan(&idStr, &tankStr, &userStr, &e.Name, &e.EquipmentType,
		&manufacturer, &mdl, &specs, &purchase, &price, &url,
		&condition, &notes, &created, &updated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan equipment: %w", err)
	}
	if e.ID, err = uuid.Parse(idStr); err != nil {
		return nil, fmt.Errorf("parse equipment id: %w", err)
	}
	if e.TankID, err = uuid.Parse(tankStr); err != nil {
		return nil, fmt.Errorf("parse equipment tank id: %w", err)
	}
	if e.UserID, err = uuid.Parse(userStr); err != nil {
		return nil, fmt.Errorf("parse equipment user id: %w", err)
	}
	e.Manufacturer = strPtrFromNull(manufacturer)
	e.Model = strPtrFromNull(mdl)
	if specs.Valid && specs.String != "" {
		if err := json.Unmarshal([]byte(specs.String), &e.Specs); err != nil {
			return nil, fmt.Errorf("decode equipment specs: %w", err)
		}
	}
	e.PurchaseDate = purchase.d
	e.PurchasePrice = strPtrFromNull(price)
	e.PurchaseURL = strPtrFromNull(url)
	e.Condition = strPtrFromNull(condition)
	e.Notes = strPtrFromNull(notes)
	e.CreatedAt = created.t
	e.UpdatedAt = updated.t
	return &e, nil
}
