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

const feedingScheduleColumns = `id, tank_id, user_id, consumable_id, food_name,
	quantity, quantity_unit, frequency_hours, last_fed, next_due, is_active, notes,
	created_at, updated_at`

const feedingLogColumns = `id, tank_id, user_id, schedule_id, food_name, quantity,
	quantity_unit, fed_at, notes, created_at`

// CreateFeedingSchedule saves a recurring feeding plan. If NextDue is
// unset it starts one interval from now.
func (s *Store) CreateFeedingSchedule(ctx context.Context, f *model.FeedingSchedule) error {
	now := timeNow().UTC()
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	if f.FrequencyHours <= 0 {
		f.FrequencyHours = 24
	}
	if f.NextDue == nil {
		due := now.Add(time.Duration(f.FrequencyHours) * time.Hour)
		f.NextDue = &due
	}
	f.CreatedAt = now
	f.UpdatedAt = now
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO feeding_schedules (`+feedingScheduleColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		f.ID.String(), f.TankID.String(), f.UserID.String(), bindUUIDPtr(f.ConsumableID),
		f.FoodName, bindFloatPtr(f.Quantity), bindStrPtr(f.QuantityUnit), f.FrequencyHours,
		bindTimePtr(f.LastFed), bindTimePtr(f.NextDue), f.IsActive, bindStrPtr(f.Notes),
		bindTime(now), bindTime(now))
	if err != nil {
		return fmt.Errorf("create feeding schedule: %w", err)
	}
	return nil
}

// ListFeedingSchedules returns a tank's feeding plans ordered by next due
// time, unscheduled plans last.
func (s *Store) ListFeedingSchedules(ctx context.Context, userID, tankID uuid.UUID, includeInactive bool) ([]model.FeedingSchedule, error) {
	q := `SELECT ` + feedingScheduleColumns + ` FROM feeding_schedules
		WHERE tank_id = ? AND user_id = ?`
	if !includeInactive {
		q += ` AND is_active = 1`
	}
	q += ` ORDER BY next_due IS NULL, next_due`
	rows, err := s.db.QueryContext(ctx, q, tankID.String(), userID.String())
	if err != nil {
		return nil, fmt.Errorf("list feeding schedules: %w", err)
	}
	defer rows.Close()

	var schedules []model.FeedingSchedule
	for rows.Next() {
		f, err := scanFeedingScheduleRow(rows)
		if err != nil {
			return nil, err
		}
		schedules = append(schedules, *f)
	}
	return schedules, rows.Err()
}

// FeedingScheduleForUser fetches one plan owned by the user.
func (s *Store) FeedingScheduleForUser(ctx context.Context, userID, scheduleID uuid.UUID) (*model.FeedingSchedule, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+feedingScheduleColumns+` FROM feeding_schedules WHERE id = ? AND user_id = ?`,
		scheduleID.String(), userID.String())
	f, err := scanFeedingScheduleRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return f, err
}

// UpdateFeedingSchedule persists all mutable fields.
func (s *Store) UpdateFeedingSchedule(ctx context.Context, f *model.FeedingSchedule) error {
	f.UpdatedAt = timeNow().UTC()
	res, err := s.db.ExecContext(ctx,
		`UPDATE feeding_schedules SET consumable_id = ?, food_name = ?, quantity = ?,
			quantity_unit = ?, frequency_hours = ?, last_fed = ?, next_due = ?,
			is_active = ?, notes = ?, updated_at = ?
		WHERE id = ? AND user_id = ?`,
		bindUUIDPtr(f.ConsumableID), f.FoodName, bindFloatPtr(f.Quantity),
		bindStrPtr(f.QuantityUnit), f.FrequencyHours, bindTimePtr(f.LastFed),
		bindTimePtr(f.NextDue), f.IsActive, bindStrPtr(f.Notes),
		bindTime(f.UpdatedAt), f.ID.String(), f.UserID.String())
	if err != nil {
		return fmt.Errorf("update feeding schedule: %w", err)
	}
	return requireRow(res)
}

// DeleteFeedingSchedule removes a plan; its logs keep a NULL schedule
// reference.
func (s *Store) DeleteFeedingSchedule(ctx context.Context, userID, scheduleID uuid.UUID) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM feeding_schedules WHERE id = ? AND user_id = ?`,
		scheduleID.String(), userID.String())
	if err != nil {
		return fmt.Errorf("delete feeding schedule: %w", err)
	}
	return requireRow(res)
}

// MarkFed records a feeding against a schedule: last_fed becomes now,
// next_due advances one interval from now, a log row is written, and the
// linked consumable (if any) has the scheduled quantity deducted. All in
// one transaction.
func (s *Store) MarkFed(ctx context.Context, userID, scheduleID uuid.UUID, notes *string) (*model.FeedingLog, error) {
	f, err := s.FeedingScheduleForUser(ctx, userID, scheduleID)
	if err != nil {
		return nil, err
	}

	now := timeNow().UTC()
	due := now.Add(time.Duration(f.FrequencyHours) * time.Hour)
	log := &model.FeedingLog{
		ID:           uuid.New(),
		TankID:       f.TankID,
		UserID:       userID,
		ScheduleID:   &f.ID,
		FoodName:     f.FoodName,
		Quantity:     f.Quantity,
		QuantityUnit: f.QuantityUnit,
		FedAt:        now,
		Notes:        notes,
		CreatedAt:    now,
	}

	err = s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`UPDATE feeding_schedules SET last_fed = ?, next_due = ?, updated_at = ? WHERE id = ?`,
			bindTime(now), bindTime(due), bindTime(now), f.ID.String()); err != nil {
			return fmt.Errorf("advance schedule: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO feeding_logs (`+feedingLogColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			log.ID.String(), log.TankID.String(), log.UserID.String(), bindUUIDPtr(log.ScheduleID),
			log.FoodName, bindFloatPtr(log.Quantity), bindStrPtr(log.QuantityUnit),
			bindTime(now), bindStrPtr(log.Notes), bindTime(now)); err != nil {
			return fmt.Errorf("write feeding log: %w", err)
		}
		if f.ConsumableID != nil && f.Quantity != nil && *f.Quantity > 0 {
			return deductConsumableTx(ctx, tx, *f.ConsumableID, *f.Quantity, now)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	f.LastFed = &now
	f.NextDue = &due
	return log, nil
}

// deductConsumableTx subtracts a dose from a consumable's stock and
// re-derives its status inside an existing transaction.
func deductConsumableTx(ctx context.Context, tx *sql.Tx, consumableID uuid.UUID, dose float64, now time.Time) error {
	var (
		qty    sql.NullFloat64
		status string
	)
	err := tx.QueryRowContext(ctx,
		`SELECT quantity_on_hand, status FROM consumables WHERE id = ?`,
		consumableID.String()).Scan(&qty, &status)
	if errors.Is(err, sql.ErrNoRows) {
		// Linked consumable was deleted between read and feed; nothing
		// to deduct.
		return nil
	}
	if err != nil {
		return fmt.Errorf("read consumable stock: %w", err)
	}
	if !qty.Valid {
		return nil
	}
	remaining := qty.Float64 - dose
	if remaining < 0 {
		remaining = 0
	}
	newStatus := deriveStockStatus(remaining, dose, status)
	if _, err := tx.ExecContext(ctx,
		`UPDATE consumables SET quantity_on_hand = ?, status = ?, updated_at = ? WHERE id = ?`,
		remaining, newStatus, bindTime(now), consumableID.String()); err != nil {
		return fmt.Errorf("deduct consumable: %w", err)
	}
	return nil
}

// CreateFeedingLog records an ad hoc feeding outside any schedule.
func (s *Store) CreateFeedingLog(ctx context.Context, l *model.FeedingLog) error {
	now := timeNow().UTC()
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	if l.FedAt.IsZero() {
		l.FedAt = now
	}
	l.CreatedAt = now
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO feeding_logs (`+feedingLogColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		l.ID.String(), l.TankID.String(), l.UserID.String(), bindUUIDPtr(l.ScheduleID),
		l.FoodName, bindFloatPtr(l.Quantity), bindStrPtr(l.QuantityUnit),
		bindTime(l.FedAt), bindStrPtr(l.Notes), bindTime(now))
	if err != nil {
		return fmt.Errorf("create feeding log: %w", err)
	}
	return nil
}

// ListFeedingLogs returns a tank's feeding history, newest first.
func (s *Store) ListFeedingLogs(ctx context.Context, userID, tankID uuid.UUID, limit int) ([]model.FeedingLog, error) {
	q := `SELECT ` + feedingLogColumns + ` FROM feeding_logs
		WHERE tank_id = ? AND user_id = ? ORDER BY fed_at DESC`
	args := []any{tankID.String(), userID.String()}
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list feeding logs: %w", err)
	}
	defer rows.Close()

	var logs []model.FeedingLog
	for rows.Next() {
		l, err := scanFeedingLogRow(rows)
		if err != nil {
			return nil, err
		}
		logs = append(logs, *l)
	}
	return logs, rows.Err()
}

// DeleteFeedingLog removes one log entry.
func (s *Store) DeleteFeedingLog(ctx context.Context, userID, logID uuid.UUID) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM feeding_logs WHERE id = ? AND user_id = ?`,
		logID.String(), userID.String())
	if err != nil {
		return fmt.Errorf("delete feeding log: %w", err)
	}
	return requireRow(res)
}

func scanFeedingScheduleRow(r rowScanner) (*model.FeedingSchedule, error) {
	var (
		f                       model.FeedingSchedule
		idStr, tankStr, userStr string
		consumable              sql.NullString
		unit, notes             sql.NullString
		qty                     sql.NullFloat64
		lastFed, nextDue        nullableTimeCol
		created, updated        timeCol
	)
	err := r.Scan(&idStr, &tankStr, &userStr, &consumable, &f.FoodName,
		&qty, &unit, &f.FrequencyHours, &lastFed, &nextDue, &f.IsActive, &notes,
		&created, &updated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan feeding schedule: %w", err)
	}
	if f.ID, err = uuid.Parse(idStr); err != nil {
		return nil, fmt.Errorf("parse schedule id: %w", err)
	}
	if f.TankID, err = uuid.Parse(tankStr); err != nil {
		return nil, fmt.Errorf("parse schedule tank id: %w", err)
	}
	if f.UserID, err = uuid.Parse(userStr); err != nil {
		return nil, fmt.Errorf("parse schedule user id: %w", err)
	}
	if f.ConsumableID, err = uuidPtrFromNull(consumable); err != nil {
		return nil, err
	}
	f.Quantity = floatPtrFromNull(qty)
	f.QuantityUnit = strPtrFromNull(unit)
	f.LastFed = lastFed.t
	f.NextDue = nextDue.t
	f.Notes = strPtrFromNull(notes)
	f.CreatedAt = created.t
	f.UpdatedAt = updated.t
	return &f, nil
}

func scanFeedingLogRow(r rowScanner) (*model.FeedingLog, error) {
	var (
		l                       model.FeedingLog
		idStr, tankStr, userStr string
		schedule                sql.NullString
		unit, notes             sql.NullString
		qty                     sql.NullFloat64
		fedAt, created          timeCol
	)
	err := r.Scan(&idStr, &tankStr, &userStr, &schedule, &l.FoodName,
		&qty, &unit, &fedAt, &notes, &created)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan feeding log: %w", err)
	}
	if l.ID, err = uuid.Parse(idStr); err != nil {
		return nil, fmt.Errorf("parse log id: %w", err)
	}
	if l.TankID, err = uuid.Parse(tankStr); err != nil {
		return nil, fmt.Errorf("parse log tank id: %w", err)
	}
	if l.UserID, err = uuid.Parse(userStr); err != nil {
		return nil, fmt.Errorf("parse log user id: %w", err)
	}
	if l.ScheduleID, err = uuidPtrFromNull(schedule); err != nil {
		return nil, err
	}
	l.Quantity = floatPtrFromNull(qty)
	l.QuantityUnit = strPtrFromNull(unit)
	l.FedAt = fedAt.t
	l.Notes = strPtrFromNull(notes)
	l.CreatedAt = created.t
	return &l, nil
}
