package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"aquascope/internal/model"
)

const rangeColumns = `id, tank_id, parameter_type, name, unit, min_value, max_value,
	ideal_value, created_at, updated_at`

// ListParameterRanges returns a tank's ranges sorted by parameter type.
func (s *Store) ListParameterRanges(ctx context.Context, tankID uuid.UUID) ([]model.ParameterRange, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+rangeColumns+` FROM parameter_ranges WHERE tank_id = ?
		ORDER BY parameter_type`, tankID.String())
	if err != nil {
		return nil, fmt.Errorf("list ranges: %w", err)
	}
	defer rows.Close()

	var ranges []model.ParameterRange
	for rows.Next() {
		pr, err := scanRangeRow(rows)
		if err != nil {
			return nil, err
		}
		ranges = append(ranges, *pr)
	}
	return ranges, rows.Err()
}

// ParameterRangeByType fetches a tank's range for one parameter.
func (s *Store) ParameterRangeByType(ctx context.Context, tankID uuid.UUID, parameterType string) (*model.ParameterRange, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+rangeColumns+` FROM parameter_ranges WHERE tank_id = ? AND parameter_type = ?`,
		tankID.String(), parameterType)
	pr, err := scanRangeRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return pr, err
}

// UpsertParameterRange creates or replaces the range for one parameter on
// a tank. Min, max, and ideal must already be validated by the caller.
func (s *Store) UpsertParameterRange(ctx context.Context, pr *model.ParameterRange) error {
	now := timeNow().UTC()
	if pr.ID == uuid.Nil {
		pr.ID = uuid.New()
	}
	pr.UpdatedAt = now
	res, err := s.db.ExecContext(ctx,
		`UPDATE parameter_ranges SET name = ?, unit = ?, min_value = ?, max_value = ?,
			ideal_value = ?, updated_at = ?
		WHERE tank_id = ? AND parameter_type = ?`,
		pr.Name, pr.Unit, pr.MinValue, pr.MaxValue, bindFloatPtr(pr.IdealValue),
		bindTime(now), pr.TankID.String(), pr.ParameterType)
	if err != nil {
		return fmt.Errorf("update range: %w", err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return nil
	}
	pr.CreatedAt = now
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO parameter_ranges (`+rangeColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		pr.ID.String(), pr.TankID.String(), pr.ParameterType, pr.Name, pr.Unit,
		pr.MinValue, pr.MaxValue, bindFloatPtr(pr.IdealValue), bindTime(now), bindTime(now))
	if err != nil {
		return fmt.Errorf("insert range: %w", err)
	}
	return nil
}

// DeleteParameterRange removes one parameter's range from a tank.
func (s *Store) DeleteParameterRange(ctx context.Context, tankID uuid.UUID, parameterType string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM parameter_ranges WHERE tank_id = ? AND parameter_type = ?`,
		tankID.String(), parameterType)
	if err != nil {
		return fmt.Errorf("delete range: %w", err)
	}
	return requireRow(res)
}

func scanRangeRow(r rowScanner) (*model.ParameterRange, error) {
	var (
		pr               model.ParameterRange
		idStr, tankStr   string
		ideal            sql.NullFloat64
		created, updated timeCol
	)
	err := r.Scan(&idStr, &tankStr, &pr.ParameterType, &pr.Name, &pr.Unit,
		&pr.MinValue, &pr.MaxValue, &ideal, &created, &updated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan range: %w", err)
	}
	if pr.ID, err = uuid.Parse(idStr); err != nil {
		return nil, fmt.Errorf("parse range id: %w", err)
	}
	if pr.TankID, err = uuid.Parse(tankStr); err != nil {
		return nil, fmt.Errorf("parse range tank id: %w", err)
	}
	pr.IdealValue = floatPtrFromNull(ideal)
	pr.CreatedAt = created.t
	pr.UpdatedAt = updated.t
	return &pr, nil
}
