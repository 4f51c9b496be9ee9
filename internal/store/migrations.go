package store

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"
)

// Schema versions:
// v1: full base schema
// v2: additive column migrations (tracked in columnMigrations)
const currentSchemaVersion = 2

var schemaV1 = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		username TEXT NOT NULL,
		hashed_password TEXT NOT NULL,
		is_admin INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS tanks (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		name TEXT NOT NULL,
		display_volume_liters REAL,
		sump_volume_liters REAL,
		water_type TEXT NOT NULL DEFAULT 'saltwater',
		aquarium_subtype TEXT,
		description TEXT,
		image_url TEXT,
		setup_date TEXT,
		electricity_cost_per_day REAL,
		has_refugium INTEGER NOT NULL DEFAULT 0,
		refugium_volume_liters REAL,
		refugium_type TEXT,
		refugium_algae TEXT,
		refugium_lighting_hours REAL,
		refugium_notes TEXT,
		is_archived INTEGER NOT NULL DEFAULT 0,
		share_enabled INTEGER NOT NULL DEFAULT 0,
		share_token TEXT UNIQUE,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_tanks_user ON tanks(user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_tanks_share_token ON tanks(share_token)`,
	`CREATE TABLE IF NOT EXISTS tank_events (
		id TEXT PRIMARY KEY,
		tank_id TEXT NOT NULL REFERENCES tanks(id) ON DELETE CASCADE,
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		title TEXT NOT NULL,
		description TEXT,
		event_date TEXT NOT NULL,
		event_type TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_tank_events_tank ON tank_events(tank_id)`,
	`CREATE TABLE IF NOT EXISTS notes (
		id TEXT PRIMARY KEY,
		tank_id TEXT NOT NULL REFERENCES tanks(id) ON DELETE CASCADE,
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		content TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_notes_tank_created ON notes(tank_id, created_at)`,
	`CREATE TABLE IF NOT EXISTS photos (
		id TEXT PRIMARY KEY,
		tank_id TEXT NOT NULL REFERENCES tanks(id) ON DELETE CASCADE,
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		filename TEXT NOT NULL,
		file_path TEXT NOT NULL,
		description TEXT,
		taken_at TEXT NOT NULL,
		is_tank_display INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_photos_tank_taken ON photos(tank_id, taken_at)`,
	`CREATE TABLE IF NOT EXISTS maintenance_reminders (
		id TEXT PRIMARY KEY,
		tank_id TEXT NOT NULL REFERENCES tanks(id) ON DELETE CASCADE,
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		title TEXT NOT NULL,
		description TEXT,
		reminder_type TEXT NOT NULL,
		frequency_days INTEGER NOT NULL,
		last_completed TEXT,
		next_due TEXT NOT NULL,
		is_active INTEGER NOT NULL DEFAULT 1,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_reminders_tank_due ON maintenance_reminders(tank_id, next_due)`,
	`CREATE TABLE IF NOT EXISTS livestock (
		id TEXT PRIMARY KEY,
		tank_id TEXT NOT NULL REFERENCES tanks(id) ON DELETE CASCADE,
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		species_name TEXT NOT NULL,
		common_name TEXT,
		type TEXT NOT NULL,
		quantity INTEGER NOT NULL DEFAULT 1,
		status TEXT NOT NULL DEFAULT 'alive',
		added_date TEXT,
		purchase_price TEXT,
		notes TEXT,
		is_archived INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_livestock_tank ON livestock(tank_id)`,
	`CREATE TABLE IF NOT EXISTS equipment (
		id TEXT PRIMARY KEY,
		tank_id TEXT NOT NULL REFERENCES tanks(id) ON DELETE CASCADE,
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		name TEXT NOT NULL,
		equipment_type TEXT NOT NULL,
		manufacturer TEXT,
		model TEXT,
		specs TEXT,
		purchase_date TEXT,
		purchase_price TEXT,
		purchase_url TEXT,
		condition TEXT,
		notes TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_equipment_tank ON equipment(tank_id)`,
	`CREATE TABLE IF NOT EXISTS consumables (
		id TEXT PRIMARY KEY,
		tank_id TEXT NOT NULL REFERENCES tanks(id) ON DELETE CASCADE,
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		name TEXT NOT NULL,
		consumable_type TEXT NOT NULL,
		brand TEXT,
		product_name TEXT,
		quantity_on_hand REAL,
		quantity_unit TEXT,
		purchase_date TEXT,
		purchase_price TEXT,
		purchase_url TEXT,
		expiration_date TEXT,
		status TEXT NOT NULL DEFAULT 'active',
		notes TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_consumables_tank ON consumables(tank_id)`,
	`CREATE TABLE IF NOT EXISTS consumable_usage (
		id TEXT PRIMARY KEY,
		consumable_id TEXT NOT NULL REFERENCES consumables(id) ON DELETE CASCADE,
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		usage_date TEXT NOT NULL,
		quantity_used REAL NOT NULL,
		quantity_unit TEXT,
		notes TEXT,
		created_at TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_usage_consumable ON consumable_usage(consumable_id)`,
	`CREATE TABLE IF NOT EXISTS feeding_schedules (
		id TEXT PRIMARY KEY,
		tank_id TEXT NOT NULL REFERENCES tanks(id) ON DELETE CASCADE,
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		consumable_id TEXT REFERENCES consumables(id) ON DELETE SET NULL,
		food_name TEXT NOT NULL,
		quantity REAL,
		quantity_unit TEXT,
		frequency_hours INTEGER NOT NULL DEFAULT 24,
		last_fed TEXT,
		next_due TEXT,
		is_active INTEGER NOT NULL DEFAULT 1,
		notes TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_feeding_schedules_tank ON feeding_schedules(tank_id)`,
	`CREATE TABLE IF NOT EXISTS feeding_logs (
		id TEXT PRIMARY KEY,
		tank_id TEXT NOT NULL REFERENCES tanks(id) ON DELETE CASCADE,
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		schedule_id TEXT REFERENCES feeding_schedules(id) ON DELETE SET NULL,
		food_name TEXT NOT NULL,
		quantity REAL,
		quantity_unit TEXT,
		fed_at TEXT NOT NULL,
		notes TEXT,
		created_at TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_feeding_logs_tank_fed ON feeding_logs(tank_id, fed_at)`,
	`CREATE TABLE IF NOT EXISTS budgets (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		tank_id TEXT REFERENCES tanks(id) ON DELETE CASCADE,
		name TEXT NOT NULL,
		amount REAL NOT NULL,
		currency TEXT NOT NULL DEFAULT 'EUR',
		period TEXT NOT NULL DEFAULT 'monthly',
		category TEXT,
		is_active INTEGER NOT NULL DEFAULT 1,
		notes TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS parameter_ranges (
		id TEXT PRIMARY KEY,
		tank_id TEXT NOT NULL REFERENCES tanks(id) ON DELETE CASCADE,
		parameter_type TEXT NOT NULL,
		name TEXT NOT NULL,
		unit TEXT NOT NULL,
		min_value REAL NOT NULL,
		max_value REAL NOT NULL,
		ideal_value REAL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		UNIQUE(tank_id, parameter_type)
	)`,
	`CREATE TABLE IF NOT EXISTS measurements (
		tank_id TEXT NOT NULL REFERENCES tanks(id) ON DELETE CASCADE,
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		parameter_type TEXT NOT NULL,
		value REAL NOT NULL,
		measured_at TEXT NOT NULL,
		PRIMARY KEY (tank_id, parameter_type, measured_at)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_measurements_tank_time ON measurements(tank_id, measured_at)`,
	`CREATE TABLE IF NOT EXISTS icp_tests (
		id TEXT PRIMARY KEY,
		tank_id TEXT NOT NULL REFERENCES tanks(id) ON DELETE CASCADE,
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		test_date TEXT NOT NULL,
		lab_name TEXT NOT NULL,
		test_id TEXT,
		water_type TEXT NOT NULL DEFAULT 'saltwater',
		score_major_elements INTEGER,
		score_minor_elements INTEGER,
		score_pollutants INTEGER,
		score_overall INTEGER,
		elements TEXT,
		cost TEXT,
		notes TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_icp_tank_date ON icp_tests(tank_id, test_date)`,
	`CREATE TABLE IF NOT EXISTS lighting_schedules (
		id TEXT PRIMARY KEY,
		tank_id TEXT NOT NULL REFERENCES tanks(id) ON DELETE CASCADE,
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		name TEXT NOT NULL,
		description TEXT,
		channels TEXT NOT NULL,
		schedule_data TEXT NOT NULL,
		is_active INTEGER NOT NULL DEFAULT 0,
		notes TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS app_settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		applied_at TEXT NOT NULL
	)`,
}

// columnMigration adds a column to an existing table when missing. This
// handles databases created before the column existed without rewriting
// tables.
type columnMigration struct {
	Table  string
	Column string
	Def    string
}

var columnMigrations = []columnMigration{
	// Tanks gained running-cost tracking and the refugium block after v1
	// databases were in the wild.
	{"tanks", "electricity_cost_per_day", "REAL"},
	{"tanks", "share_enabled", "INTEGER NOT NULL DEFAULT 0"},
	{"livestock", "purchase_price", "TEXT"},
	{"equipment", "purchase_url", "TEXT"},
	{"consumables", "purchase_url", "TEXT"},
	{"photos", "is_tank_display", "INTEGER NOT NULL DEFAULT 0"},
}

func (s *Store) migrate(ctx context.Context) error {
	for _, stmt := range schemaV1 {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}

	version, err := s.schemaVersion(ctx)
	if err != nil {
		return err
	}

	if version < currentSchemaVersion {
		applied := 0
		for _, m := range columnMigrations {
			if columnExists(s.db, m.Table, m.Column) {
				continue
			}
			stmt := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", m.Table, m.Column, m.Def)
			if _, err := s.db.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("migration %s.%s: %w", m.Table, m.Column, err)
			}
			applied++
		}
		if _, err := s.db.ExecContext(ctx,
			`INSERT OR REPLACE INTO schema_migrations (version, applied_at) VALUES (?, ?)`,
			currentSchemaVersion, fmtTime(timeNow())); err != nil {
			return fmt.Errorf("record schema version: %w", err)
		}
		s.logger.Info("schema migrated",
			zap.Int("from", version),
			zap.Int("to", currentSchemaVersion),
			zap.Int("columns_added", applied))
	}
	return nil
}

func (s *Store) schemaVersion(ctx context.Context) (int, error) {
	var version sql.NullInt64
	err := s.db.QueryRowContext(ctx, `SELECT MAX(version) FROM schema_migrations`).Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	return int(version.Int64), nil
}

func columnExists(db *sql.DB, table, column string) bool {
	rows, err := db.Query(fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return false
	}
	defer rows.Close()
	for rows.Next() {
		var (
			cid     int
			name    string
			ctype   string
			notnull int
			dflt    sql.NullString
			pk      int
		)
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dflt, &pk); err != nil {
			return false
		}
		if name == column {
			return true
		}
	}
	return false
}
