package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"aquascope/internal/model"
)

// CreateNote saves a free-form observation.
func (s *Store) CreateNote(ctx context.Context, n *model.Note) error {
	now := timeNow().UTC()
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	n.CreatedAt = now
	n.UpdatedAt = now
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO notes (id, tank_id, user_id, content, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		n.ID.String(), n.TankID.String(), n.UserID.String(), n.Content,
		bindTime(now), bindTime(now))
	if err != nil {
		return fmt.Errorf("create note: %w", err)
	}
	return nil
}

// ListNotes returns a tank's notes, newest first.
func (s *Store) ListNotes(ctx context.Context, userID, tankID uuid.UUID, limit int) ([]model.Note, error) {
	q := `SELECT id, tank_id, user_id, content, created_at, updated_at FROM notes
		WHERE tank_id = ? AND user_id = ? ORDER BY created_at DESC`
	args := []any{tankID.String(), userID.String()}
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	defer rows.Close()

	var notes []model.Note
	for rows.Next() {
		n, err := scanNoteRow(rows)
		if err != nil {
			return nil, err
		}
		notes = append(notes, *n)
	}
	return notes, rows.Err()
}

// NoteForUser fetches one note owned by the user.
func (s *Store) NoteForUser(ctx context.Context, userID, noteID uuid.UUID) (*model.Note, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, tank_id, user_id, content, created_at, updated_at FROM notes
		WHERE id = ? AND user_id = ?`, noteID.String(), userID.String())
	n, err := scanNoteRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return n, err
}

// UpdateNote rewrites the note content.
func (s *Store) UpdateNote(ctx context.Context, n *model.Note) error {
	n.UpdatedAt = timeNow().UTC()
	res, err := s.db.ExecContext(ctx,
		`UPDATE notes SET content = ?, updated_at = ? WHERE id = ? AND user_id = ?`,
		n.Content, bindTime(n.UpdatedAt), n.ID.String(), n.UserID.String())
	if err != nil {
		return fmt.Errorf("update note: %w", err)
	}
	return requireRow(res)
}

// DeleteNote removes one note.
func (s *Store) DeleteNote(ctx context.Context, userID, noteID uuid.UUID) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM notes WHERE id = ? AND user_id = ?`, noteID.String(), userID.String())
	if err != nil {
		return fmt.Errorf("delete note: %w", err)
	}
	return requireRow(res)
}

func scanNoteRow(r rowScanner) (*model.Note, error) {
	var (
		n                       model.Note
		idStr, tankStr, userStr string
		created, updated        timeCol
	)
	err := r.Scan(&idStr, &tankStr, &userStr, &n.Content, &created, &updated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan note: %w", err)
	}
	if n.ID, err = uuid.Parse(idStr); err != nil {
		return nil, fmt.Errorf("parse note id: %w", err)
	}
	if n.TankID, err = uuid.Parse(tankStr); err != nil {
		return nil, fmt.Errorf("parse note tank id: %w", err)
	}
	if n.UserID, err = uuid.Parse(userStr); err != nil {
		return nil, fmt.Errorf("parse note user id: %w", err)
	}
	n.CreatedAt = created.t
	n.UpdatedAt = updated.t
	return &n, nil
}
