package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"aquascope/internal/model"
)

const photoColumns = `id, tank_id, user_id, filename, file_path, description, taken_at, is_tank_display, created_at`

// CreatePhoto stores photo metadata; the caller has already written the
// file to disk.
func (s *Store) CreatePhoto(ctx context.Context, p *model.Photo) error {
	now := timeNow().UTC()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.TakenAt.IsZero() {
		p.TakenAt = now
	}
	p.CreatedAt = now
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO photos (`+photoColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID.String(), p.TankID.String(), p.UserID.String(), p.Filename, p.FilePath,
		bindStrPtr(p.Description), bindTime(p.TakenAt), p.IsTankDisplay, bindTime(now))
	if err != nil {
		return fmt.Errorf("create photo: %w", err)
	}
	return nil
}

// ListPhotos returns a tank's photos, newest taken first.
func (s *Store) ListPhotos(ctx context.Context, userID, tankID uuid.UUID) ([]model.Photo, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+photoColumns+` FROM photos WHERE tank_id = ? AND user_id = ?
		ORDER BY taken_at DESC`, tankID.String(), userID.String())
	if err != nil {
		return nil, fmt.Errorf("list photos: %w", err)
	}
	defer rows.Close()

	var photos []model.Photo
	for rows.Next() {
		p, err := scanPhotoRow(rows)
		if err != nil {
			return nil, err
		}
		photos = append(photos, *p)
	}
	return photos, rows.Err()
}

// PhotoForUser fetches one photo owned by the user.
func (s *Store) PhotoForUser(ctx context.Context, userID, photoID uuid.UUID) (*model.Photo, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+photoColumns+` FROM photos WHERE id = ? AND user_id = ?`,
		photoID.String(), userID.String())
	p, err := scanPhotoRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return p, err
}

// UpdatePhoto persists the description, taken time, and display flag.
// Setting IsTankDisplay clears the flag on the tank's other photos.
func (s *Store) UpdatePhoto(ctx context.Context, p *model.Photo) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if p.IsTankDisplay {
			if _, err := tx.ExecContext(ctx,
				`UPDATE photos SET is_tank_display = 0 WHERE tank_id = ? AND id != ?`,
				p.TankID.String(), p.ID.String()); err != nil {
				return fmt.Errorf("clear display photos: %w", err)
			}
		}
		res, err := tx.ExecContext(ctx,
			`UPDATE photos SET description = ?, taken_at = ?, is_tank_display = ?
			WHERE id = ? AND user_id = ?`,
			bindStrPtr(p.Description), bindTime(p.TakenAt), p.IsTankDisplay,
			p.ID.String(), p.UserID.String())
		if err != nil {
			return fmt.Errorf("update photo: %w", err)
		}
		return requireRow(res)
	})
}

// DeletePhoto removes the metadata row. Callers delete the file after the
// row is gone so a failed delete never orphans metadata.
func (s *Store) DeletePhoto(ctx context.Context, userID, photoID uuid.UUID) (*model.Photo, error) {
	p, err := s.PhotoForUser(ctx, userID, photoID)
	if err != nil {
		return nil, err
	}
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM photos WHERE id = ? AND user_id = ?`, photoID.String(), userID.String())
	if err != nil {
		return nil, fmt.Errorf("delete photo: %w", err)
	}
	if err := requireRow(res); err != nil {
		return nil, err
	}
	return p, nil
}

func scanPhotoRow(r rowScanner) (*model.Photo, error) {
	var (
		p                       model.Photo
		idStr, tankStr, userStr string
		desc                    sql.NullString
		taken, created          timeCol
	)
	err := r.Scan(&idStr, &tankStr, &userStr, &p.Filename, &p.FilePath,
		&desc, &taken, &p.IsTankDisplay, &created)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan photo: %w", err)
	}
	if p.ID, err = uuid.Parse(idStr); err != nil {
		return nil, fmt.Errorf("parse photo id: %w", err)
	}
	if p.TankID, err = uuid.Parse(tankStr); err != nil {
		return nil, fmt.Errorf("parse photo tank id: %w", err)
	}
	if p.UserID, err = uuid.Parse(userStr); err != nil {
		return nil, fmt.Errorf("parse photo user id: %w", err)
	}
	p.Description = strPtrFromNull(desc)
	p.TakenAt = taken.t
	p.CreatedAt = created.t
	return &p, nil
}
