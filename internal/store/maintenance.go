package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"aquascope/internal/model"
)

const reminderColumns = `id, tank_id, user_id, title, description, reminder_type,
	frequency_days, last_completed, next_due, is_active, created_at, updated_at`

// CreateReminder saves a recurring maintenance task. If NextDue is unset
// it starts frequency_days from today.
func (s *Store) CreateReminder(ctx context.Context, m *model.MaintenanceReminder) error {
	now := timeNow().UTC()
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if m.NextDue.IsZero() {
		m.NextDue = model.DateOf(now).AddDays(m.FrequencyDays)
	}
	m.CreatedAt = now
	m.UpdatedAt = now
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO maintenance_reminders (`+reminderColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID.String(), m.TankID.String(), m.UserID.String(), m.Title,
		bindStrPtr(m.Description), m.ReminderType, m.FrequencyDays,
		bindDatePtr(m.LastCompleted), m.NextDue.String(), m.IsActive,
		bindTime(now), bindTime(now))
	if err != nil {
		return fmt.Errorf("create reminder: %w", err)
	}
	return nil
}

// ListReminders returns a tank's reminders ordered by due date. Inactive
// reminders are included only when includeInactive is set.
func (s *Store) ListReminders(ctx context.Context, userID, tankID uuid.UUID, includeInactive bool) ([]model.MaintenanceReminder, error) {
	q := `SELECT ` + reminderColumns + ` FROM maintenance_reminders
		WHERE tank_id = ? AND user_id = ?`
	if !includeInactive {
		q += ` AND is_active = 1`
	}
	q += ` ORDER BY next_due`
	rows, err := s.db.QueryContext(ctx, q, tankID.String(), userID.String())
	if err != nil {
		return nil, fmt.Errorf("list reminders: %w", err)
	}
	defer rows.Close()

	var reminders []model.MaintenanceReminder
	for rows.Next() {
		m, err := scanReminderRow(rows)
		if err != nil {
			return nil, err
		}
		reminders = append(reminders, *m)
	}
	return reminders, rows.Err()
}

// OverdueReminders returns all active reminders across a user's tanks
// whose next_due is on or before the given date.
func (s *Store) OverdueReminders(ctx context.Context, userID uuid.UUID, asOf model.Date) ([]model.MaintenanceReminder, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+reminderColumns+` FROM maintenance_reminders
		WHERE user_id = ? AND is_active = 1 AND next_due <= ?
		ORDER BY next_due`, userID.String(), asOf.String())
	if err != nil {
		return nil, fmt.Errorf("overdue reminders: %w", err)
	}
	defer rows.Close()

	var reminders []model.MaintenanceReminder
	for rows.Next() {
		m, err := scanReminderRow(rows)
		if err != nil {
			return nil, err
		}
		reminders = append(reminders, *m)
	}
	return reminders, rows.Err()
}

// ReminderForUser fetches one reminder owned by the user.
func (s *Store) ReminderForUser(ctx context.Context, userID, reminderID uuid.UUID) (*model.MaintenanceReminder, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+reminderColumns+` FROM maintenance_reminders WHERE id = ? AND user_id = ?`,
		reminderID.String(), userID.String())
	m, err := scanReminderRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return m, err
}

// UpdateReminder persists all mutable reminder fields.
func (s *Store) UpdateReminder(ctx context.Context, m *model.MaintenanceReminder) error {
	m.UpdatedAt = timeNow().UTC()
	res, err := s.db.ExecContext(ctx,
		`UPDATE maintenance_reminders SET title = ?, description = ?, reminder_type = ?,
			frequency_days = ?, last_completed = ?, next_due = ?, is_active = ?, updated_at = ?
		WHERE id = ? AND user_id = ?`,
		m.Title, bindStrPtr(m.Description), m.ReminderType, m.FrequencyDays,
		bindDatePtr(m.LastCompleted), m.NextDue.String(), m.IsActive,
		bindTime(m.UpdatedAt), m.ID.String(), m.UserID.String())
	if err != nil {
		return fmt.Errorf("update reminder: %w", err)
	}
	return requireRow(res)
}

// CompleteReminder marks a reminder done on completedOn and advances
// next_due to completedOn plus the reminder's frequency. Scheduling from
// the completion date rather than the old due date keeps early or late
// runs from drifting the schedule.
func (s *Store) CompleteReminder(ctx context.Context, userID, reminderID uuid.UUID, completedOn model.Date) (*model.MaintenanceReminder, error) {
	m, err := s.ReminderForUser(ctx, userID, reminderID)
	if err != nil {
		return nil, err
	}
	m.LastCompleted = &completedOn
	m.NextDue = completedOn.AddDays(m.FrequencyDays)
	if err := s.UpdateReminder(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// DeleteReminder removes one reminder.
func (s *Store) DeleteReminder(ctx context.Context, userID, reminderID uuid.UUID) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM maintenance_reminders WHERE id = ? AND user_id = ?`,
		reminderID.String(), userID.String())
	if err != nil {
		return fmt.Errorf("delete reminder: %w", err)
	}
	return requireRow(res)
}

func scanReminderRow(r rowScanner) (*model.MaintenanceReminder, error) {
	var (
		m                       model.MaintenanceReminder
		idStr, tankStr, userStr string
		desc                    sql.NullString
		lastCompleted           nullableDateCol
		created, updated        timeCol
	)
	err := r.Scan(&idStr, &tankStr, &userStr, &m.Title, &desc, &m.ReminderType,
		&m.FrequencyDays, &lastCompleted, &m.NextDue, &m.IsActive, &created, &updated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan reminder: %w", err)
	}
	if m.ID, err = uuid.Parse(idStr); err != nil {
		return nil, fmt.Errorf("parse reminder id: %w", err)
	}
	if m.TankID, err = uuid.Parse(tankStr); err != nil {
		return nil, fmt.Errorf("parse reminder tank id: %w", err)
	}
	if m.UserID, err = uuid.Parse(userStr); err != nil {
		return nil, fmt.Errorf("parse reminder user id: %w", err)
	}
	m.Description = strPtrFromNull(desc)
	m.LastCompleted = lastCompleted.d
	m.CreatedAt = created.t
	m.UpdatedAt = updated.t
	return &m, nil
}
