package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"aquascope/internal/model"
)

// WriteMeasurements inserts a batch of readings in one transaction,
// overwriting any existing point with the same parameter and timestamp.
func (s *Store) WriteMeasurements(ctx context.Context, userID uuid.UUID, ms []model.Measurement) error {
	if len(ms) == 0 {
		return nil
	}
	return s.inTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx,
			`INSERT OR REPLACE INTO measurements (tank_id, user_id, parameter_type, value, measured_at)
			VALUES (?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("prepare measurement insert: %w", err)
		}
		defer stmt.Close()
		for _, m := range ms {
			at := m.MeasuredAt
			if at.IsZero() {
				at = timeNow()
			}
			if _, err := stmt.ExecContext(ctx,
				m.TankID.String(), userID.String(), m.ParameterType, m.Value, bindTime(at)); err != nil {
				return fmt.Errorf("write measurement %s: %w", m.ParameterType, err)
			}
		}
		return nil
	})
}

// MeasurementsInWindow returns a tank's readings for one parameter within
// [from, to], oldest first.
func (s *Store) MeasurementsInWindow(ctx context.Context, tankID uuid.UUID, parameterType string, from, to time.Time) ([]model.Measurement, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT tank_id, parameter_type, value, measured_at FROM measurements
		WHERE tank_id = ? AND parameter_type = ? AND measured_at >= ? AND measured_at <= ?
		ORDER BY measured_at`,
		tankID.String(), parameterType, bindTime(from), bindTime(to))
	if err != nil {
		return nil, fmt.Errorf("query measurements: %w", err)
	}
	defer rows.Close()
	return collectMeasurements(rows)
}

// LatestMeasurements returns the most recent reading per parameter type
// for a tank.
func (s *Store) LatestMeasurements(ctx context.Context, tankID uuid.UUID) ([]model.Measurement, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT m.tank_id, m.parameter_type, m.value, m.measured_at
		FROM measurements m
		JOIN (
			SELECT parameter_type, MAX(measured_at) AS latest
			FROM measurements WHERE tank_id = ?
			GROUP BY parameter_type
		) last ON m.parameter_type = last.parameter_type AND m.measured_at = last.latest
		WHERE m.tank_id = ?
		ORDER BY m.parameter_type`,
		tankID.String(), tankID.String())
	if err != nil {
		return nil, fmt.Errorf("query latest measurements: %w", err)
	}
	defer rows.Close()
	return collectMeasurements(rows)
}

// DeleteMeasurement removes one data point.
func (s *Store) DeleteMeasurement(ctx context.Context, tankID uuid.UUID, parameterType string, at time.Time) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM measurements WHERE tank_id = ? AND parameter_type = ? AND measured_at = ?`,
		tankID.String(), parameterType, bindTime(at))
	if err != nil {
		return fmt.Errorf("delete measurement: %w", err)
	}
	return requireRow(res)
}

// DeleteMeasurementSeries removes all readings of one parameter for a
// tank.
func (s *Store) DeleteMeasurementSeries(ctx context.Context, tankID uuid.UUID, parameterType string) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM measurements WHERE tank_id = ? AND parameter_type = ?`,
		tankID.String(), parameterType)
	if err != nil {
		return 0, fmt.Errorf("delete measurement series: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// MeasuredParameterTypes lists the parameter types a tank has any
// readings for.
func (s *Store) MeasuredParameterTypes(ctx context.Context, tankID uuid.UUID) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT parameter_type FROM measurements WHERE tank_id = ? ORDER BY parameter_type`,
		tankID.String())
	if err != nil {
		return nil, fmt.Errorf("query parameter types: %w", err)
	}
	defer rows.Close()

	var types []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("scan parameter type: %w", err)
		}
		types = append(types, t)
	}
	return types, rows.Err()
}

func collectMeasurements(rows *sql.Rows) ([]model.Measurement, error) {
	var out []model.Measurement
	for rows.Next() {
		var (
			m       model.Measurement
			tankStr string
			at      timeCol
		)
		if err := rows.Scan(&tankStr, &m.ParameterType, &m.Value, &at); err != nil {
			return nil, fmt.Errorf("scan measurement: %w", err)
		}
		id, err := uuid.Parse(tankStr)
		if err != nil {
			return nil, fmt.Errorf("parse measurement tank id: %w", err)
		}
		m.TankID = id
		m.MeasuredAt = at.t
		out = append(out, m)
	}
	return out, rows.Err()
}
