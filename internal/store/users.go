package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"aquascope/internal/model"
)

const userColumns = `id, email, username, hashed_password, is_admin, created_at, updated_at`

// CreateUser inserts a new account. Duplicate emails return ErrConflict.
func (s *Store) CreateUser(ctx context.Context, u *model.User) error {
	now := timeNow().UTC()
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	u.CreatedAt = now
	u.UpdatedAt = now

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (`+userColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		u.ID.String(), u.Email, u.Username, u.HashedPassword, u.IsAdmin,
		bindTime(u.CreatedAt), bindTime(u.UpdatedAt))
	if isUniqueViolation(err) {
		return fmt.Errorf("email %s: %w", u.Email, ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// UserByEmail fetches an account by email.
func (s *Store) UserByEmail(ctx context.Context, email string) (*model.User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, email))
}

// UserByID fetches an account by ID.
func (s *Store) UserByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id.String()))
}

// ListUsers returns all accounts, oldest first. Admin only at the API
// layer.
func (s *Store) ListUsers(ctx context.Context) ([]model.User, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		u, err := scanUserRow(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

// UpdateUser persists username, admin flag, and password hash changes.
func (s *Store) UpdateUser(ctx context.Context, u *model.User) error {
	u.UpdatedAt = timeNow().UTC()
	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET username = ?, hashed_password = ?, is_admin = ?, updated_at = ? WHERE id = ?`,
		u.Username, u.HashedPassword, u.IsAdmin, bindTime(u.UpdatedAt), u.ID.String())
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	return requireRow(res)
}

// DeleteUser removes an account and, via foreign keys, everything it owns.
func (s *Store) DeleteUser(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id.String())
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return requireRow(res)
}

// CountUsers returns the total number of accounts.
func (s *Store) CountUsers(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (s *Store) scanUser(row *sql.Row) (*model.User, error) {
	u, err := scanUserRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return u, err
}

func scanUserRow(r rowScanner) (*model.User, error) {
	var (
		u       model.User
		idStr   string
		created timeCol
		updated timeCol
	)
	if err := r.Scan(&idStr, &u.Email, &u.Username, &u.HashedPassword, &u.IsAdmin, &created, &updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		return nil, fmt.Errorf("parse user id: %w", err)
	}
	u.ID = id
	u.CreatedAt = created.t
	u.UpdatedAt = updated.t
	return &u, nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
