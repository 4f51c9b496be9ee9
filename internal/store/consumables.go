package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"aquascope/internal/model"
)

const consumableColumns = `id, tank_id, user_id, name, consumable_type, brand,
	product_name, quantity_on_hand, quantity_unit, purchase_date, purchase_price,
	purchase_url, expiration_date, status, notes, created_at, updated_at`

// lowStockDoses is how many typical doses must remain before a consumable
// is flagged low_stock.
const lowStockDoses = 3

// CreateConsumable stocks a new supply item.
func (s *Store) CreateConsumable(ctx context.Context, c *model.Consumable) error {
	now := timeNow().UTC()
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.Status == "" {
		c.Status = model.ConsumableActive
	}
	c.CreatedAt = now
	c.UpdatedAt = now
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO consumables (`+consumableColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID.String(), c.TankID.String(), c.UserID.String(), c.Name, c.ConsumableType,
		bindStrPtr(c.Brand), bindStrPtr(c.ProductName),
		bindFloatPtr(c.QuantityOnHand), bindStrPtr(c.QuantityUnit),
		bindDatePtr(c.PurchaseDate), bindStrPtr(c.PurchasePrice), bindStrPtr(c.PurchaseURL),
		bindDatePtr(c.ExpirationDate), c.Status, bindStrPtr(c.Notes),
		bindTime(now), bindTime(now))
	if err != nil {
		return fmt.Errorf("create consumable: %w", err)
	}
	return nil
}

// ListConsumables returns a tank's supplies, newest first. An optional
// status filters the result.
func (s *Store) ListConsumables(ctx context.Context, userID, tankID uuid.UUID, status string) ([]model.Consumable, error) {
	q := `SELECT ` + consumableColumns + ` FROM consumables WHERE tank_id = ? AND user_id = ?`
	args := []any{tankID.String(), userID.String()}
	if status != "" {
		q += ` AND status = ?`
		args = append(args, status)
	}
	q += ` ORDER BY created_at DESC`
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list consumables: %w", err)
	}
	defer rows.Close()

	var items []model.Consumable
	for rows.Next() {
		c, err := scanConsumableRow(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *c)
	}
	return items, rows.Err()
}

// ConsumableForUser fetches one supply item owned by the user.
func (s *Store) ConsumableForUser(ctx context.Context, userID, consumableID uuid.UUID) (*model.Consumable, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+consumableColumns+` FROM consumables WHERE id = ? AND user_id = ?`,
		consumableID.String(), userID.String())
	c, err := scanConsumableRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return c, err
}

// UpdateConsumable persists all mutable fields.
func (s *Store) UpdateConsumable(ctx context.Context, c *model.Consumable) error {
	c.UpdatedAt = timeNow().UTC()
	res, err := s.db.ExecContext(ctx,
		`UPDATE consumables SET name = ?, consumable_type = ?, brand = ?, product_name = ?,
			quantity_on_hand = ?, quantity_unit = ?, purchase_date = ?, purchase_price = ?,
			purchase_url = ?, expiration_date = ?, status = ?, notes = ?, updated_at = ?
		WHERE id = ? AND user_id = ?`,
		c.Name, c.ConsumableType, bindStrPtr(c.Brand), bindStrPtr(c.ProductName),
		bindFloatPtr(c.QuantityOnHand), bindStrPtr(c.QuantityUnit),
		bindDatePtr(c.PurchaseDate), bindStrPtr(c.PurchasePrice), bindStrPtr(c.PurchaseURL),
		bindDatePtr(c.ExpirationDate), c.Status, bindStrPtr(c.Notes),
		bindTime(c.UpdatedAt), c.ID.String(), c.UserID.String())
	if err != nil {
		return fmt.Errorf("update consumable: %w", err)
	}
	return requireRow(res)
}

// DeleteConsumable removes the item and its usage history.
func (s *Store) DeleteConsumable(ctx context.Context, userID, consumableID uuid.UUID) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM consumables WHERE id = ? AND user_id = ?`,
		consumableID.String(), userID.String())
	if err != nil {
		return fmt.Errorf("delete consumable: %w", err)
	}
	return requireRow(res)
}

// RecordConsumableUsage logs a draw against a consumable and deducts it
// from the quantity on hand, re-deriving the stock status, all in one
// transaction.
func (s *Store) RecordConsumableUsage(ctx context.Context, u *model.ConsumableUsage) (*model.Consumable, error) {
	c, err := s.ConsumableForUser(ctx, u.UserID, u.ConsumableID)
	if err != nil {
		return nil, err
	}

	now := timeNow().UTC()
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.UsageDate.IsZero() {
		u.UsageDate = model.DateOf(now)
	}
	u.CreatedAt = now

	err = s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO consumable_usage (id, consumable_id, user_id, usage_date, quantity_used, quantity_unit, notes, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			u.ID.String(), u.ConsumableID.String(), u.UserID.String(), u.UsageDate.String(),
			u.QuantityUsed, bindStrPtr(u.QuantityUnit), bindStrPtr(u.Notes), bindTime(now)); err != nil {
			return fmt.Errorf("record usage: %w", err)
		}

		if c.QuantityOnHand != nil {
			remaining := *c.QuantityOnHand - u.QuantityUsed
			if remaining < 0 {
				remaining = 0
			}
			c.QuantityOnHand = &remaining
			c.Status = deriveStockStatus(remaining, u.QuantityUsed, c.Status)
			c.UpdatedAt = now
			if _, err := tx.ExecContext(ctx,
				`UPDATE consumables SET quantity_on_hand = ?, status = ?, updated_at = ? WHERE id = ?`,
				remaining, c.Status, bindTime(now), c.ID.String()); err != nil {
				return fmt.Errorf("deduct stock: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

// ListConsumableUsage returns the usage history for one item, newest
// first.
func (s *Store) ListConsumableUsage(ctx context.Context, userID, consumableID uuid.UUID) ([]model.ConsumableUsage, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, consumable_id, user_id, usage_date, quantity_used, quantity_unit, notes, created_at
		FROM consumable_usage WHERE consumable_id = ? AND user_id = ?
		ORDER BY usage_date DESC, created_at DESC`,
		consumableID.String(), userID.String())
	if err != nil {
		return nil, fmt.Errorf("list usage: %w", err)
	}
	defer rows.Close()

	var usages []model.ConsumableUsage
	for rows.Next() {
		var (
			u                       model.ConsumableUsage
			idStr, consStr, userStr string
			unit, notes             sql.NullString
			created                 timeCol
		)
		if err := rows.Scan(&idStr, &consStr, &userStr, &u.UsageDate, &u.QuantityUsed,
			&unit, &notes, &created); err != nil {
			return nil, fmt.Errorf("scan usage: %w", err)
		}
		if u.ID, err = uuid.Parse(idStr); err != nil {
			return nil, fmt.Errorf("parse usage id: %w", err)
		}
		if u.ConsumableID, err = uuid.Parse(consStr); err != nil {
			return nil, fmt.Errorf("parse usage consumable id: %w", err)
		}
		if u.UserID, err = uuid.Parse(userStr); err != nil {
			return nil, fmt.Errorf("parse usage user id: %w", err)
		}
		u.QuantityUnit = strPtrFromNull(unit)
		u.Notes = strPtrFromNull(notes)
		u.CreatedAt = created.t
		usages = append(usages, u)
	}
	return usages, rows.Err()
}

// deriveStockStatus recomputes a consumable's status after a deduction.
// Expired stays expired; otherwise zero stock is depleted and fewer than
// lowStockDoses typical doses remaining is low_stock.
func deriveStockStatus(remaining, lastDose float64, current string) string {
	if current == model.ConsumableExpired {
		return current
	}
	if remaining <= 0 {
		return model.ConsumableDepleted
	}
	if lastDose > 0 && remaining < lastDose*lowStockDoses {
		return model.ConsumableLowStock
	}
	return model.ConsumableActive
}

func scanConsumableRow(r rowScanner) (*model.Consumable, error) {
	var (
		c                       model.Consumable
		idStr, tankStr, userStr string
		brand, product          sql.NullString
		unit, price, url, notes sql.NullString
		qty                     sql.NullFloat64
		purchase, expiration    nullableDateCol
		created, updated        timeCol
	)
	err := r.Scan(&idStr, &tankStr, &userStr, &c.Name, &c.ConsumableType,
		&brand, &product, &qty, &unit, &purchase, &price, &url,
		&expiration, &c.Status, &notes, &created, &updated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan consumable: %w", err)
	}
	if c.ID, err = uuid.Parse(idStr); err != nil {
		return nil, fmt.Errorf("parse consumable id: %w", err)
	}
	if c.TankID, err = uuid.Parse(tankStr); err != nil {
		return nil, fmt.Errorf("parse consumable tank id: %w", err)
	}
	if c.UserID, err = uuid.Parse(userStr); err != nil {
		return nil, fmt.Errorf("parse consumable user id: %w", err)
	}
	c.Brand = strPtrFromNull(brand)
	c.ProductName = strPtrFromNull(product)
	c.QuantityOnHand = floatPtrFromNull(qty)
	c.QuantityUnit = strPtrFromNull(unit)
	c.PurchaseDate = purchase.d
	c.PurchasePrice = strPtrFromNull(price)
	c.PurchaseURL = strPtrFromNull(url)
	c.ExpirationDate = expiration.d
	c.Notes = strPtrFromNull(notes)
	c.CreatedAt = created.t
	c.UpdatedAt = updated.t
	return &c, nil
}
