// Package store persists all aquascope data in a single SQLite file via
// database/sql and the modernc driver. One writer connection with WAL
// keeps the concurrency story simple; every method takes a context and
// returns wrapped errors with ErrNotFound/ErrConflict sentinels for the
// HTTP layer to map.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"aquascope/internal/model"
)

var (
	// ErrNotFound is returned when a row does not exist or belongs to a
	// different user. Both cases look identical to callers so ownership
	// checks cannot leak entity existence.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned for unique-constraint violations
	// (duplicate email, duplicate share token, duplicate range type).
	ErrConflict = errors.New("already exists")
)

// Store wraps the SQLite database.
type Store struct {
	db     *sql.DB
	path   string
	logger *zap.Logger
}

// Open opens (creating if needed) the SQLite database at path and brings
// the schema up to date. Use ":memory:" for tests.
func Open(path string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create database directory: %w", err)
			}
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// Single writer: SQLite serializes writes anyway, and one connection
	// sidesteps SQLITE_BUSY under concurrent handlers.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, pragma := range []string{
		"PRAGMA busy_timeout = 5000",
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA foreign_keys = ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			logger.Warn("pragma failed", zap.String("pragma", pragma), zap.Error(err))
		}
	}

	s := &Store{db: db, path: path, logger: logger}
	if err := s.migrate(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	logger.Info("database ready", zap.String("path", path))
	return s, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB exposes the raw handle for admin stats and tests.
func (s *Store) DB() *sql.DB {
	return s.db
}

// FileSizeBytes returns the database file size, 0 for in-memory stores.
func (s *Store) FileSizeBytes() int64 {
	if s.path == ":memory:" {
		return 0
	}
	info, err := os.Stat(s.path)
	if err != nil {
		return 0
	}
	return info.Size()
}

// inTx runs fn inside a transaction, rolling back on error.
func (s *Store) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			s.logger.Warn("rollback failed", zap.Error(rbErr))
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// --- scan/bind helpers ---

// timeNow is swapped out by tests that need deterministic timestamps.
var timeNow = time.Now

const timeLayout = time.RFC3339Nano

func fmtTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	if t, err := time.Parse(timeLayout, s); err == nil {
		return t
	}
	// Older rows may lack sub-second precision.
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	if t, err := time.Parse("2006-01-02 15:04:05", s); err == nil {
		return t.UTC()
	}
	return time.Time{}
}

// timeCol scans a TEXT timestamp column.
type timeCol struct {
	t time.Time
}

func (c *timeCol) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		c.t = time.Time{}
	case time.Time:
		c.t = v.UTC()
	case string:
		c.t = parseTime(v)
	case []byte:
		c.t = parseTime(string(v))
	default:
		return fmt.Errorf("cannot scan %T into time", src)
	}
	return nil
}

// nullableTimeCol scans into *time.Time.
type nullableTimeCol struct {
	t *time.Time
}

func (c *nullableTimeCol) Scan(src any) error {
	if src == nil {
		c.t = nil
		return nil
	}
	var inner timeCol
	if err := inner.Scan(src); err != nil {
		return err
	}
	if inner.t.IsZero() {
		c.t = nil
		return nil
	}
	t := inner.t
	c.t = &t
	return nil
}

// nullableDateCol scans into *model.Date.
type nullableDateCol struct {
	d *model.Date
}

func (c *nullableDateCol) Scan(src any) error {
	if src == nil {
		c.d = nil
		return nil
	}
	var d model.Date
	if err := d.Scan(src); err != nil {
		return err
	}
	if d.IsZero() {
		c.d = nil
		return nil
	}
	c.d = &d
	return nil
}

func bindTime(t time.Time) any {
	return fmtTime(t)
}

func bindTimePtr(t *time.Time) any {
	if t == nil {
		return nil
	}
	return fmtTime(*t)
}

func bindDatePtr(d *model.Date) any {
	if d == nil {
		return nil
	}
	return d.String()
}

func bindStrPtr(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func bindFloatPtr(f *float64) any {
	if f == nil {
		return nil
	}
	return *f
}

func bindIntPtr(i *int) any {
	if i == nil {
		return nil
	}
	return *i
}

func bindUUIDPtr(id *uuid.UUID) any {
	if id == nil {
		return nil
	}
	return id.String()
}

func bindJSON(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal json column: %w", err)
	}
	return string(data), nil
}

func strPtrFromNull(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func floatPtrFromNull(nf sql.NullFloat64) *float64 {
	if !nf.Valid {
		return nil
	}
	f := nf.Float64
	return &f
}

func intPtrFromNull(ni sql.NullInt64) *int {
	if !ni.Valid {
		return nil
	}
	i := int(ni.Int64)
	return &i
}

func uuidPtrFromNull(ns sql.NullString) (*uuid.UUID, error) {
	if !ns.Valid || ns.String == "" {
		return nil, nil
	}
	id, err := uuid.Parse(ns.String)
	if err != nil {
		return nil, fmt.Errorf("parse uuid %q: %w", ns.String, err)
	}
	return &id, nil
}

// isUniqueViolation detects SQLite unique constraint failures without
// depending on driver-specific error types.
func isUniqueViolation(err error) bool {
	return err != nil && (containsAny(err.Error(),
		"UNIQUE constraint failed", "constraint failed: UNIQUE"))
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if sub != "" && strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
