package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"aquascope/internal/model"
)

const eventColumns = `id, tank_id, user_id, title, description, event_date, event_type, created_at, updated_at`

// CreateTankEvent records a milestone in a tank's timeline.
func (s *Store) CreateTankEvent(ctx context.Context, e *model.TankEvent) error {
	now := timeNow().UTC()
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	e.CreatedAt = now
	e.UpdatedAt = now
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO tank_events (`+eventColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID.String(), e.TankID.String(), e.UserID.String(), e.Title,
		bindStrPtr(e.Description), e.EventDate.String(), bindStrPtr(e.EventType),
		bindTime(now), bindTime(now))
	if err != nil {
		return fmt.Errorf("create tank event: %w", err)
	}
	return nil
}

// ListTankEvents returns a tank's events, most recent event date first.
func (s *Store) ListTankEvents(ctx context.Context, userID, tankID uuid.UUID) ([]model.TankEvent, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+eventColumns+` FROM tank_events
		WHERE tank_id = ? AND user_id = ?
		ORDER BY event_date DESC, created_at DESC`,
		tankID.String(), userID.String())
	if err != nil {
		return nil, fmt.Errorf("list tank events: %w", err)
	}
	defer rows.Close()

	var events []model.TankEvent
	for rows.Next() {
		e, err := scanEventRow(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, *e)
	}
	return events, rows.Err()
}

// TankEventForUser fetches one event owned by the user.
func (s *Store) TankEventForUser(ctx context.Context, userID, eventID uuid.UUID) (*model.TankEvent, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+eventColumns+` FROM tank_events WHERE id = ? AND user_id = ?`,
		eventID.String(), userID.String())
	e, err := scanEventRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return e, err
}

// UpdateTankEvent persists title, description, date, and type.
func (s *Store) UpdateTankEvent(ctx context.Context, e *model.TankEvent) error {
	e.UpdatedAt = timeNow().UTC()
	res, err := s.db.ExecContext(ctx,
		`UPDATE tank_events SET title = ?, description = ?, event_date = ?, event_type = ?, updated_at = ?
		WHERE id = ? AND user_id = ?`,
		e.Title, bindStrPtr(e.Description), e.EventDate.String(), bindStrPtr(e.EventType),
		bindTime(e.UpdatedAt), e.ID.String(), e.UserID.String())
	if err != nil {
		return fmt.Errorf("update tank event: %w", err)
	}
	return requireRow(res)
}

// DeleteTankEvent removes one event.
func (s *Store) DeleteTankEvent(ctx context.Context, userID, eventID uuid.UUID) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM tank_events WHERE id = ? AND user_id = ?`,
		eventID.String(), userID.String())
	if err != nil {
		return fmt.Errorf("delete tank event: %w", err)
	}
	return requireRow(res)
}

func scanEventRow(r rowScanner) (*model.TankEvent, error) {
	var (
		e                 model.TankEvent
		idStr, tankStr    string
		userStr           string
		desc, eventType   sql.NullString
		created, updated  timeCol
	)
	err := r.Scan(&idStr, &tankStr, &userStr, &e.Title, &desc, &e.EventDate, &eventType, &created, &updated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan tank event: %w", err)
	}
	if e.ID, err = uuid.Parse(idStr); err != nil {
		return nil, fmt.Errorf("parse event id: %w", err)
	}
	if e.TankID, err = uuid.Parse(tankStr); err != nil {
		return nil, fmt.Errorf("parse event tank id: %w", err)
	}
	if e.UserID, err = uuid.Parse(userStr); err != nil {
		return nil, fmt.Errorf("parse event user id: %w", err)
	}
	e.Description = strPtrFromNull(desc)
	e.EventType = strPtrFromNull(eventType)
	e.CreatedAt = created.t
	e.UpdatedAt = updated.t
	return &e, nil
}
