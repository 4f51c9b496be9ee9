package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"aquascope/internal/model"
)

// SystemStats is the admin overview of the whole instance.
type SystemStats struct {
	Users            int   `json:"users"`
	Tanks            int   `json:"tanks"`
	Livestock        int   `json:"livestock"`
	Equipment        int   `json:"equipment"`
	Consumables      int   `json:"consumables"`
	Reminders        int   `json:"reminders"`
	Measurements     int   `json:"measurements"`
	Photos           int   `json:"photos"`
	DatabaseSizeByte int64 `json:"database_size_bytes"`
}

// UserStats summarizes one user's footprint for the admin user list.
type UserStats struct {
	User      model.User `json:"user"`
	Tanks     int        `json:"tanks"`
	Livestock int        `json:"livestock"`
	Photos    int        `json:"photos"`
}

// Stats collects instance-wide counts.
func (s *Store) Stats(ctx context.Context) (*SystemStats, error) {
	stats := &SystemStats{DatabaseSizeByte: s.FileSizeBytes()}
	for _, c := range []struct {
		table string
		dest  *int
	}{
		{"users", &stats.Users},
		{"tanks", &stats.Tanks},
		{"livestock", &stats.Livestock},
		{"equipment", &stats.Equipment},
		{"consumables", &stats.Consumables},
		{"maintenance_reminders", &stats.Reminders},
		{"measurements", &stats.Measurements},
		{"photos", &stats.Photos},
	} {
		if err := s.db.QueryRowContext(ctx,
			fmt.Sprintf("SELECT COUNT(*) FROM %s", c.table)).Scan(c.dest); err != nil {
			return nil, fmt.Errorf("count %s: %w", c.table, err)
		}
	}
	return stats, nil
}

// UserStatsList returns per-user counts for the admin user list.
func (s *Store) UserStatsList(ctx context.Context) ([]UserStats, error) {
	users, err := s.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]UserStats, 0, len(users))
	for _, u := range users {
		us := UserStats{User: u}
		for _, c := range []struct {
			table string
			dest  *int
		}{
			{"tanks", &us.Tanks},
			{"livestock", &us.Livestock},
			{"photos", &us.Photos},
		} {
			if err := s.db.QueryRowContext(ctx,
				fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE user_id = ?", c.table),
				u.ID.String()).Scan(c.dest); err != nil {
				return nil, fmt.Errorf("count %s for user: %w", c.table, err)
			}
		}
		out = append(out, us)
	}
	return out, nil
}

// DashboardTank is one tank's summary card.
type DashboardTank struct {
	Tank             model.Tank `json:"tank"`
	LivestockCount   int        `json:"livestock_count"`
	EquipmentCount   int        `json:"equipment_count"`
	ConsumableCount  int        `json:"consumable_count"`
	OverdueReminders int        `json:"overdue_reminders"`
	OverdueFeedings  int        `json:"overdue_feedings"`
}

// Dashboard builds per-tank summary cards for one user. Overdue counts
// are relative to now.
func (s *Store) Dashboard(ctx context.Context, userID uuid.UUID) ([]DashboardTank, error) {
	tanks, err := s.ListTanks(ctx, userID, false)
	if err != nil {
		return nil, err
	}
	now := timeNow().UTC()
	today := model.DateOf(now)

	out := make([]DashboardTank, 0, len(tanks))
	for _, t := range tanks {
		d := DashboardTank{Tank: t}
		id := t.ID.String()

		var alive sql.NullInt64
		if err := s.db.QueryRowContext(ctx,
			`SELECT SUM(quantity) FROM livestock WHERE tank_id = ? AND status = ? AND is_archived = 0`,
			id, model.LivestockAlive).Scan(&alive); err != nil {
			return nil, fmt.Errorf("dashboard livestock: %w", err)
		}
		d.LivestockCount = int(alive.Int64)

		if err := s.db.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM equipment WHERE tank_id = ?`, id).Scan(&d.EquipmentCount); err != nil {
			return nil, fmt.Errorf("dashboard equipment: %w", err)
		}
		if err := s.db.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM consumables WHERE tank_id = ? AND status != ?`,
			id, model.ConsumableDepleted).Scan(&d.ConsumableCount); err != nil {
			return nil, fmt.Errorf("dashboard consumables: %w", err)
		}
		if err := s.db.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM maintenance_reminders
			WHERE tank_id = ? AND is_active = 1 AND next_due <= ?`,
			id, today.String()).Scan(&d.OverdueReminders); err != nil {
			return nil, fmt.Errorf("dashboard reminders: %w", err)
		}
		if err := s.db.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM feeding_schedules
			WHERE tank_id = ? AND is_active = 1 AND next_due IS NOT NULL AND next_due <= ?`,
			id, bindTime(now)).Scan(&d.OverdueFeedings); err != nil {
			return nil, fmt.Errorf("dashboard feedings: %w", err)
		}
		out = append(out, d)
	}
	return out, nil
}
