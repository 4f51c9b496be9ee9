package server

import (
	"net/http"

	"aquascope/internal/model"
)

func (s *Server) handleListICPTests(w http.ResponseWriter, r *http.Request) {
	t, err := s.ownTank(r)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	tests, err := s.store.ListICPTests(r.Context(), t.UserID, t.ID)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, tests)
}

type icpTestRequest struct {
	TestDate model.Date `json:"test_date"`
	LabName  string     `json:"lab_name"`
	TestID   *string    `json:"test_id,omitempty"`

	ScoreMajorElements *int `json:"score_major_elements,omitempty"`
	ScoreMinorElements *int `json:"score_minor_elements,omitempty"`
	ScorePollutants    *int `json:"score_pollutants,omitempty"`
	ScoreOverall       *int `json:"score_overall,omitempty"`

	Elements map[string]model.ElementReading `json:"elements,omitempty"`

	Cost  *string `json:"cost,omitempty"`
	Notes *string `json:"notes,omitempty"`
}

func (s *Server) handleCreateICPTest(w http.ResponseWriter, r *http.Request) {
	t, err := s.ownTank(r)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	var req icpTestRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondErr(w, r, err)
		return
	}
	if req.LabName == "" {
		s.respondErr(w, r, badRequestf("lab_name is required"))
		return
	}
	test := &model.ICPTest{
		TankID:             t.ID,
		UserID:             t.UserID,
		TestDate:           req.TestDate,
		LabName:            req.LabName,
		TestID:             req.TestID,
		WaterType:          t.WaterType,
		ScoreMajorElements: req.ScoreMajorElements,
		ScoreMinorElements: req.ScoreMinorElements,
		ScorePollutants:    req.ScorePollutants,
		ScoreOverall:       req.ScoreOverall,
		Elements:           req.Elements,
		Cost:               req.Cost,
		Notes:              req.Notes,
	}
	if test.TestDate.IsZero() {
		test.TestDate = model.Today()
	}
	if err := s.store.CreateICPTest(r.Context(), test); err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusCreated, test)
}

func (s *Server) handleUpdateICPTest(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	test, err := s.store.ICPTestForUser(r.Context(), currentUser(r).ID, id)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	var req icpTestRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondErr(w, r, err)
		return
	}
	if req.LabName != "" {
		test.LabName = req.LabName
	}
	if !req.TestDate.IsZero() {
		test.TestDate = req.TestDate
	}
	test.TestID = req.TestID
	test.ScoreMajorElements = req.ScoreMajorElements
	test.ScoreMinorElements = req.ScoreMinorElements
	test.ScorePollutants = req.ScorePollutants
	test.ScoreOverall = req.ScoreOverall
	if req.Elements != nil {
		test.Elements = req.Elements
	}
	test.Cost = req.Cost
	test.Notes = req.Notes
	if err := s.store.UpdateICPTest(r.Context(), test); err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, test)
}

func (s *Server) handleDeleteICPTest(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	if err := s.store.DeleteICPTest(r.Context(), currentUser(r).ID, id); err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusNoContent, nil)
}
