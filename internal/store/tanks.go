package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"aquascope/internal/model"
	"aquascope/internal/presets"
)

const tankColumns = `id, user_id, name, display_volume_liters, sump_volume_liters,
	water_type, aquarium_subtype, description, image_url, setup_date,
	electricity_cost_per_day, has_refugium, refugium_volume_liters, refugium_type,
	refugium_algae, refugium_lighting_hours, refugium_notes,
	is_archived, share_enabled, share_token, created_at, updated_at`

// CreateTank inserts a tank and seeds its parameter ranges from the
// presets for its water type and subtype, in one transaction.
func (s *Store) CreateTank(ctx context.Context, t *model.Tank) error {
	now := timeNow().UTC()
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	if t.WaterType == "" {
		t.WaterType = model.WaterSaltwater
	}
	t.CreatedAt = now
	t.UpdatedAt = now

	return s.inTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO tanks (`+tankColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			t.ID.String(), t.UserID.String(), t.Name,
			bindFloatPtr(t.DisplayVolumeLiters), bindFloatPtr(t.SumpVolumeLiters),
			t.WaterType, bindStrPtr(t.AquariumSubtype), bindStrPtr(t.Description),
			bindStrPtr(t.ImageURL), bindDatePtr(t.SetupDate),
			bindFloatPtr(t.ElectricityCostPerDay),
			t.HasRefugium, bindFloatPtr(t.RefugiumVolumeLiters), bindStrPtr(t.RefugiumType),
			bindStrPtr(t.RefugiumAlgae), bindFloatPtr(t.RefugiumLightingHours), bindStrPtr(t.RefugiumNotes),
			t.IsArchived, t.ShareEnabled, bindStrPtr(t.ShareToken),
			bindTime(t.CreatedAt), bindTime(t.UpdatedAt))
		if err != nil {
			return fmt.Errorf("create tank: %w", err)
		}
		subtype := ""
		if t.AquariumSubtype != nil {
			subtype = *t.AquariumSubtype
		}
		for _, d := range presets.ForTank(t.WaterType, subtype) {
			ideal := d.Ideal
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO parameter_ranges (id, tank_id, parameter_type, name, unit, min_value, max_value, ideal_value, created_at, updated_at)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				uuid.New().String(), t.ID.String(), d.ParameterType, d.Name, d.Unit,
				d.Min, d.Max, ideal, bindTime(now), bindTime(now)); err != nil {
				return fmt.Errorf("seed range %s: %w", d.ParameterType, err)
			}
		}
		return nil
	})
}

// ListTanks returns the user's tanks, oldest first. Archived tanks are
// included when includeArchived is set.
func (s *Store) ListTanks(ctx context.Context, userID uuid.UUID, includeArchived bool) ([]model.Tank, error) {
	q := `SELECT ` + tankColumns + ` FROM tanks WHERE user_id = ?`
	if !includeArchived {
		q += ` AND is_archived = 0`
	}
	q += ` ORDER BY created_at`

	rows, err := s.db.QueryContext(ctx, q, userID.String())
	if err != nil {
		return nil, fmt.Errorf("list tanks: %w", err)
	}
	defer rows.Close()

	var tanks []model.Tank
	for rows.Next() {
		t, err := scanTankRow(rows)
		if err != nil {
			return nil, err
		}
		tanks = append(tanks, *t)
	}
	return tanks, rows.Err()
}

// TankForUser fetches a tank owned by the user. Other users' tanks look
// like ErrNotFound.
func (s *Store) TankForUser(ctx context.Context, userID, tankID uuid.UUID) (*model.Tank, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+tankColumns+` FROM tanks WHERE id = ? AND user_id = ?`,
		tankID.String(), userID.String())
	t, err := scanTankRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return t, err
}

// TankByShareToken fetches a tank by its share token; disabled shares are
// not found.
func (s *Store) TankByShareToken(ctx context.Context, token string) (*model.Tank, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+tankColumns+` FROM tanks WHERE share_token = ? AND share_enabled = 1`, token)
	t, err := scanTankRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return t, err
}

// UpdateTank persists all mutable tank fields.
func (s *Store) UpdateTank(ctx context.Context, t *model.Tank) error {
	t.UpdatedAt = timeNow().UTC()
	res, err := s.db.ExecContext(ctx,
		`UPDATE tanks SET name = ?, display_volume_liters = ?, sump_volume_liters = ?,
			water_type = ?, aquarium_subtype = ?, description = ?, image_url = ?, setup_date = ?,
			electricity_cost_per_day = ?, has_refugium = ?, refugium_volume_liters = ?,
			refugium_type = ?, refugium_algae = ?, refugium_lighting_hours = ?, refugium_notes = ?,
			is_archived = ?, share_enabled = ?, share_token = ?, updated_at = ?
		WHERE id = ? AND user_id = ?`,
		t.Name, bindFloatPtr(t.DisplayVolumeLiters), bindFloatPtr(t.SumpVolumeLiters),
		t.WaterType, bindStrPtr(t.AquariumSubtype), bindStrPtr(t.Description),
		bindStrPtr(t.ImageURL), bindDatePtr(t.SetupDate),
		bindFloatPtr(t.ElectricityCostPerDay), t.HasRefugium, bindFloatPtr(t.RefugiumVolumeLiters),
		bindStrPtr(t.RefugiumType), bindStrPtr(t.RefugiumAlgae), bindFloatPtr(t.RefugiumLightingHours),
		bindStrPtr(t.RefugiumNotes), t.IsArchived, t.ShareEnabled, bindStrPtr(t.ShareToken),
		bindTime(t.UpdatedAt), t.ID.String(), t.UserID.String())
	if isUniqueViolation(err) {
		return fmt.Errorf("share token: %w", ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("update tank: %w", err)
	}
	return requireRow(res)
}

// DeleteTank removes a tank and all child rows.
func (s *Store) DeleteTank(ctx context.Context, userID, tankID uuid.UUID) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM tanks WHERE id = ? AND user_id = ?`, tankID.String(), userID.String())
	if err != nil {
		return fmt.Errorf("delete tank: %w", err)
	}
	return requireRow(res)
}

// SeedParameterRanges writes the preset ranges for the tank's water type,
// replacing any existing rows.
func (s *Store) SeedParameterRanges(ctx context.Context, t *model.Tank) ([]model.ParameterRange, error) {
	subtype := ""
	if t.AquariumSubtype != nil {
		subtype = *t.AquariumSubtype
	}
	defaults := presets.ForTank(t.WaterType, subtype)
	now := timeNow().UTC()

	var out []model.ParameterRange
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM parameter_ranges WHERE tank_id = ?`, t.ID.String()); err != nil {
			return fmt.Errorf("clear ranges: %w", err)
		}
		for _, d := range defaults {
			ideal := d.Ideal
			pr := model.ParameterRange{
				ID:            uuid.New(),
				TankID:        t.ID,
				ParameterType: d.ParameterType,
				Name:          d.Name,
				Unit:          d.Unit,
				MinValue:      d.Min,
				MaxValue:      d.Max,
				IdealValue:    &ideal,
				CreatedAt:     now,
				UpdatedAt:     now,
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO parameter_ranges (id, tank_id, parameter_type, name, unit, min_value, max_value, ideal_value, created_at, updated_at)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				pr.ID.String(), pr.TankID.String(), pr.ParameterType, pr.Name, pr.Unit,
				pr.MinValue, pr.MaxValue, bindFloatPtr(pr.IdealValue),
				bindTime(now), bindTime(now)); err != nil {
				return fmt.Errorf("seed range %s: %w", d.ParameterType, err)
			}
			out = append(out, pr)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func scanTankRow(r rowScanner) (*model.Tank, error) {
	var (
		t                   model.Tank
		idStr, userStr      string
		subtype, desc       sql.NullString
		imageURL, refType   sql.NullString
		refAlgae, refNotes  sql.NullString
		shareToken          sql.NullString
		displayVol, sumpVol sql.NullFloat64
		elecCost, refVol    sql.NullFloat64
		refHours            sql.NullFloat64
		setup               nullableDateCol
		created, updated    timeCol
	)
	err := r.Scan(&idStr, &userStr, &t.Name, &displayVol, &sumpVol,
		&t.WaterType, &subtype, &desc, &imageURL, &setup,
		&elecCost, &t.HasRefugium, &refVol, &refType,
		&refAlgae, &refHours, &refNotes,
		&t.IsArchived, &t.ShareEnabled, &shareToken, &created, &updated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan tank: %w", err)
	}

	if t.ID, err = uuid.Parse(idStr); err != nil {
		return nil, fmt.Errorf("parse tank id: %w", err)
	}
	if t.UserID, err = uuid.Parse(userStr); err != nil {
		return nil, fmt.Errorf("parse tank user id: %w", err)
	}
	t.DisplayVolumeLiters = floatPtrFromNull(displayVol)
	t.SumpVolumeLiters = floatPtrFromNull(sumpVol)
	t.AquariumSubtype = strPtrFromNull(subtype)
	t.Description = strPtrFromNull(desc)
	t.ImageURL = strPtrFromNull(imageURL)
	t.SetupDate = setup.d
	t.ElectricityCostPerDay = floatPtrFromNull(elecCost)
	t.RefugiumVolumeLiters = floatPtrFromNull(refVol)
	t.RefugiumType = strPtrFromNull(refType)
	t.RefugiumAlgae = strPtrFromNull(refAlgae)
	t.RefugiumLightingHours = floatPtrFromNull(refHours)
	t.RefugiumNotes = strPtrFromNull(refNotes)
	t.ShareToken = strPtrFromNull(shareToken)
	t.CreatedAt = created.t
	t.UpdatedAt = updated.t
	return &t, nil
}
