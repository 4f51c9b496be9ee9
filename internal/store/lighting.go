package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"aquascope/internal/model"
)

const lightingColumns = `id, tank_id, user_id, name, description, channels,
	schedule_data, is_active, notes, created_at, updated_at`

// CreateLightingSchedule saves a light program. Activating it deactivates
// the tank's other programs so at most one is live per tank.
func (s *Store) CreateLightingSchedule(ctx context.Context, l *model.LightingSchedule) error {
	now := timeNow().UTC()
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	if len(l.Channels) == 0 {
		l.Channels = []byte("[]")
	}
	if len(l.ScheduleData) == 0 {
		l.ScheduleData = []byte("{}")
	}
	l.CreatedAt = now
	l.UpdatedAt = now
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if l.IsActive {
			if err := deactivateOtherSchedulesTx(ctx, tx, l.TankID, l.ID, now); err != nil {
				return err
			}
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO lighting_schedules (`+lightingColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			l.ID.String(), l.TankID.String(), l.UserID.String(), l.Name,
			bindStrPtr(l.Description), string(l.Channels), string(l.ScheduleData),
			l.IsActive, bindStrPtr(l.Notes), bindTime(now), bindTime(now))
		if err != nil {
			return fmt.Errorf("create lighting schedule: %w", err)
		}
		return nil
	})
}

// ListLightingSchedules returns a tank's light programs, active first.
func (s *Store) ListLightingSchedules(ctx context.Context, userID, tankID uuid.UUID) ([]model.LightingSchedule, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+lightingColumns+` FROM lighting_schedules WHERE tank_id = ? AND user_id = ?
		ORDER BY is_active DESC, created_at DESC`, tankID.String(), userID.String())
	if err != nil {
		return nil, fmt.Errorf("list lighting schedules: %w", err)
	}
	defer rows.Close()

	var schedules []model.LightingSchedule
	for rows.Next() {
		l, err := scanLightingRow(rows)
		if err != nil {
			return nil, err
		}
		schedules = append(schedules, *l)
	}
	return schedules, rows.Err()
}

// LightingScheduleForUser fetches one program owned by the user.
func (s *Store) LightingScheduleForUser(ctx context.Context, userID, scheduleID uuid.UUID) (*model.LightingSchedule, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+lightingColumns+` FROM lighting_schedules WHERE id = ? AND user_id = ?`,
		scheduleID.String(), userID.String())
	l, err := scanLightingRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return l, err
}

// UpdateLightingSchedule persists all mutable fields, keeping the
// one-active-per-tank invariant.
func (s *Store) UpdateLightingSchedule(ctx context.Context, l *model.LightingSchedule) error {
	now := timeNow().UTC()
	l.UpdatedAt = now
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if l.IsActive {
			if err := deactivateOtherSchedulesTx(ctx, tx, l.TankID, l.ID, now); err != nil {
				return err
			}
		}
		res, err := tx.ExecContext(ctx,
			`UPDATE lighting_schedules SET name = ?, description = ?, channels = ?,
				schedule_data = ?, is_active = ?, notes = ?, updated_at = ?
			WHERE id = ? AND user_id = ?`,
			l.Name, bindStrPtr(l.Description), string(l.Channels), string(l.ScheduleData),
			l.IsActive, bindStrPtr(l.Notes), bindTime(now), l.ID.String(), l.UserID.String())
		if err != nil {
			return fmt.Errorf("update lighting schedule: %w", err)
		}
		return requireRow(res)
	})
}

// ActivateLightingSchedule makes one program active and all the tank's
// others inactive.
func (s *Store) ActivateLightingSchedule(ctx context.Context, userID, scheduleID uuid.UUID) (*model.LightingSchedule, error) {
	l, err := s.LightingScheduleForUser(ctx, userID, scheduleID)
	if err != nil {
		return nil, err
	}
	now := timeNow().UTC()
	err = s.inTx(ctx, func(tx *sql.Tx) error {
		if err := deactivateOtherSchedulesTx(ctx, tx, l.TankID, l.ID, now); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx,
			`UPDATE lighting_schedules SET is_active = 1, updated_at = ? WHERE id = ?`,
			bindTime(now), l.ID.String())
		if err != nil {
			return fmt.Errorf("activate lighting schedule: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	l.IsActive = true
	l.UpdatedAt = now
	return l, nil
}

// DeleteLightingSchedule removes one program.
func (s *Store) DeleteLightingSchedule(ctx context.Context, userID, scheduleID uuid.UUID) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM lighting_schedules WHERE id = ? AND user_id = ?`,
		scheduleID.String(), userID.String())
	if err != nil {
		return fmt.Errorf("delete lighting schedule: %w", err)
	}
	return requireRow(res)
}

func deactivateOtherSchedulesTx(ctx context.Context, tx *sql.Tx, tankID, keep uuid.UUID, now time.Time) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE lighting_schedules SET is_active = 0, updated_at = ?
		WHERE tank_id = ? AND id != ? AND is_active = 1`,
		bindTime(now), tankID.String(), keep.String())
	if err != nil {
		return fmt.Errorf("deactivate lighting schedules: %w", err)
	}
	return nil
}

func scanLightingRow(r rowScanner) (*model.LightingSchedule, error) {
	var (
		l                       model.LightingSchedule
		idStr, tankStr, userStr string
		desc, notes             sql.NullString
		channels, scheduleData  string
		created, updated        timeCol
	)
	err := r.Scan(&idStr, &tankStr, &userStr, &l.Name, &desc, &channels,
		&scheduleData, &l.IsActive, &notes, &created, &updated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan lighting schedule: %w", err)
	}
	if l.ID, err = uuid.Parse(idStr); err != nil {
		return nil, fmt.Errorf("parse lighting id: %w", err)
	}
	if l.TankID, err = uuid.Parse(tankStr); err != nil {
		return nil, fmt.Errorf("parse lighting tank id: %w", err)
	}
	if l.UserID, err = uuid.Parse(userStr); err != nil {
		return nil, fmt.Errorf("parse lighting user id: %w", err)
	}
	l.Description = strPtrFromNull(desc)
	l.Channels = []byte(channels)
	l.ScheduleData = []byte(scheduleData)
	l.Notes = strPtrFromNull(notes)
	l.CreatedAt = created.t
	l.UpdatedAt = updated.t
	return &l, nil
}
