package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"aquascope/internal/model"
)

const icpColumns = `id, tank_id, user_id, test_date, lab_name, test_id, water_type,
	score_major_elements, score_minor_elements, score_pollutants, score_overall,
	elements, cost, notes, created_at, updated_at`

// CreateICPTest saves a lab analysis result.
func (s *Store) CreateICPTest(ctx context.Context, t *model.ICPTest) error {
	now := timeNow().UTC()
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	if t.WaterType == "" {
		t.WaterType = model.WaterSaltwater
	}
	t.CreatedAt = now
	t.UpdatedAt = now
	elements, err := bindJSON(elementsOrNil(t.Elements))
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO icp_tests (`+icpColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID.String(), t.TankID.String(), t.UserID.String(), t.TestDate.String(),
		t.LabName, bindStrPtr(t.TestID), t.WaterType,
		bindIntPtr(t.ScoreMajorElements), bindIntPtr(t.ScoreMinorElements),
		bindIntPtr(t.ScorePollutants), bindIntPtr(t.ScoreOverall),
		elements, bindStrPtr(t.Cost), bindStrPtr(t.Notes),
		bindTime(now), bindTime(now))
	if err != nil {
		return fmt.Errorf("create icp test: %w", err)
	}
	return nil
}

// ListICPTests returns a tank's lab results, most recent test first.
func (s *Store) ListICPTests(ctx context.Context, userID, tankID uuid.UUID) ([]model.ICPTest, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+icpColumns+` FROM icp_tests WHERE tank_id = ? AND user_id = ?
		ORDER BY test_date DESC`, tankID.String(), userID.String())
	if err != nil {
		return nil, fmt.Errorf("list icp tests: %w", err)
	}
	defer rows.Close()

	var tests []model.ICPTest
	for rows.Next() {
		t, err := scanICPRow(rows)
		if err != nil {
			return nil, err
		}
		tests = append(tests, *t)
	}
	return tests, rows.Err()
}

// ICPTestForUser fetches one lab result owned by the user.
func (s *Store) ICPTestForUser(ctx context.Context, userID, testID uuid.UUID) (*model.ICPTest, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+icpColumns+` FROM icp_tests WHERE id = ? AND user_id = ?`,
		testID.String(), userID.String())
	t, err := scanICPRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return t, err
}

// UpdateICPTest persists all mutable fields.
func (s *Store) UpdateICPTest(ctx context.Context, t *model.ICPTest) error {
	t.UpdatedAt = timeNow().UTC()
	elements, err := bindJSON(elementsOrNil(t.Elements))
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE icp_tests SET test_date = ?, lab_name = ?, test_id = ?, water_type = ?,
			score_major_elements = ?, score_minor_elements = ?, score_pollutants = ?,
			score_overall = ?, elements = ?, cost = ?, notes = ?, updated_at = ?
		WHERE id = ? AND user_id = ?`,
		t.TestDate.String(), t.LabName, bindStrPtr(t.TestID), t.WaterType,
		bindIntPtr(t.ScoreMajorElements), bindIntPtr(t.ScoreMinorElements),
		bindIntPtr(t.ScorePollutants), bindIntPtr(t.ScoreOverall),
		elements, bindStrPtr(t.Cost), bindStrPtr(t.Notes),
		bindTime(t.UpdatedAt), t.ID.String(), t.UserID.String())
	if err != nil {
		return fmt.Errorf("update icp test: %w", err)
	}
	return requireRow(res)
}

// DeleteICPTest removes one lab result.
func (s *Store) DeleteICPTest(ctx context.Context, userID, testID uuid.UUID) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM icp_tests WHERE id = ? AND user_id = ?`,
		testID.String(), userID.String())
	if err != nil {
		return fmt.Errorf("delete icp test: %w", err)
	}
	return requireRow(res)
}

func elementsOrNil(m map[string]model.ElementReading) any {
	if len(m) == 0 {
		return nil
	}
	return m
}

func scanICPRow(r rowScanner) (*model.ICPTest, error) {
	var (
		t                             model.ICPTest
		idStr, tankStr, userStr       string
		labTestID, elements           sql.NullString
		cost, notes                   sql.NullString
		scoreMajor, scoreMinor        sql.NullInt64
		scorePollutants, scoreOverall sql.NullInt64
		created, updated              timeCol
	)
	err := r.Scan(&idStr, &tankStr, &userStr, &t.TestDate, &t.LabName, &labTestID,
		&t.WaterType, &scoreMajor, &scoreMinor, &scorePollutants, &scoreOverall,
		&elements, &cost, &notes, &created, &updated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan icp test: %w", err)
	}
	if t.ID, err = uuid.Parse(idStr); err != nil {
		return nil, fmt.Errorf("parse icp id: %w", err)
	}
	if t.TankID, err = uuid.Parse(tankStr); err != nil {
		return nil, fmt.Errorf("parse icp tank id: %w", err)
	}
	if t.UserID, err = uuid.Parse(userStr); err != nil {
		return nil, fmt.Errorf("parse icp user id: %w", err)
	}
	t.TestID = strPtrFromNull(labTestID)
	t.ScoreMajorElements = intPtrFromNull(scoreMajor)
	t.ScoreMinorElements = intPtrFromNull(scoreMinor)
	t.ScorePollutants = intPtrFromNull(scorePollutants)
	t.ScoreOverall = intPtrFromNull(scoreOverall)
	if elements.Valid && elements.String != "" {
		if err := json.Unmarshal([]byte(elements.String), &t.Elements); err != nil {
			return nil, fmt.Errorf("decode icp elements: %w", err)
		}
	}
	t.Cost = strPtrFromNull(cost)
	t.Notes = strPtrFromNull(notes)
	t.CreatedAt = created.t
	t.UpdatedAt = updated.t
	return &t, nil
}
