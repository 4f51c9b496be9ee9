package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"aquascope/internal/auth"
	"aquascope/internal/config"
	"aquascope/internal/store"
)

func newTestServer(t *testing.T) (*Server, *store.Store) {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Uploads.Dir = t.TempDir()
	st, err := store.Open(":memory:", zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	tokens, err := auth.NewTokenIssuer("server-test-secret", time.Hour)
	require.NoError(t, err)
	return New(cfg, st, tokens, nil, zap.NewNop()), st
}

func doRequest(t *testing.T, h http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(rec.Body).Decode(v))
}

// registerUser creates an account and returns its access token.
func registerUser(t *testing.T, h http.Handler, email string) string {
	t.Helper()
	rec := doRequest(t, h, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"email":    email,
		"password": "correct-horse-battery",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var resp tokenResponse
	decodeBody(t, rec, &resp)
	return resp.AccessToken
}

func createTestTank(t *testing.T, h http.Handler, token, name string) string {
	t.Helper()
	rec := doRequest(t, h, http.MethodPost, "/api/v1/tanks/", token, map[string]any{
		"name":                  name,
		"water_type":            "saltwater",
		"display_volume_liters": 180.0,
		"sump_volume_liters":    20.0,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var tank struct {
		ID string `json:"id"`
	}
	decodeBody(t, rec, &tank)
	return tank.ID
}

func TestRegisterAndLogin(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Router()

	rec := doRequest(t, h, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"email":    "First@Example.com",
		"password": "correct-horse-battery",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var resp tokenResponse
	decodeBody(t, rec, &resp)
	assert.Equal(t, "bearer", resp.TokenType)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, "first@example.com", resp.User.Email)
	assert.Equal(t, "first", resp.User.Username)
	assert.True(t, resp.User.IsAdmin, "first account becomes admin")

	// Second account is a regular user.
	rec = doRequest(t, h, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"email":    "second@example.com",
		"password": "correct-horse-battery",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	decodeBody(t, rec, &resp)
	assert.False(t, resp.User.IsAdmin)

	// Duplicate email conflicts.
	rec = doRequest(t, h, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"email":    "first@example.com",
		"password": "correct-horse-battery",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	// Wrong password and unknown email both yield 401.
	rec = doRequest(t, h, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    "first@example.com",
		"password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	rec = doRequest(t, h, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    "nobody@example.com",
		"password": "correct-horse-battery",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doRequest(t, h, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    "first@example.com",
		"password": "correct-horse-battery",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	decodeBody(t, rec, &resp)

	rec = doRequest(t, h, http.MethodGet, "/api/v1/auth/me", resp.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRegistrationToggle(t *testing.T) {
	srv, st := newTestServer(t)
	h := srv.Router()
	registerUser(t, h, "admin@example.com")

	require.NoError(t, st.SetSetting(t.Context(), "registration_enabled", "false"))
	rec := doRequest(t, h, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"email":    "late@example.com",
		"password": "correct-horse-battery",
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	require.NoError(t, st.SetSetting(t.Context(), "registration_enabled", "true"))
	rec = doRequest(t, h, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"email":    "late@example.com",
		"password": "correct-horse-battery",
	})
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestRequireAuth(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Router()

	rec := doRequest(t, h, http.MethodGet, "/api/v1/tanks/", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doRequest(t, h, http.MethodGet, "/api/v1/tanks/", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestTankOwnershipIsolation(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Router()
	alice := registerUser(t, h, "alice@example.com")
	bob := registerUser(t, h, "bob@example.com")

	tankID := createTestTank(t, h, alice, "Reef")

	rec := doRequest(t, h, http.MethodGet, "/api/v1/tanks/"+tankID+"/", alice, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	// Another user's tank looks like it does not exist.
	rec = doRequest(t, h, http.MethodGet, "/api/v1/tanks/"+tankID+"/", bob, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = doRequest(t, h, http.MethodDelete, "/api/v1/tanks/"+tankID+"/", bob, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestWriteAndReadParameters(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Router()
	token := registerUser(t, h, "reefer@example.com")
	tankID := createTestTank(t, h, token, "Display")
	base := "/api/v1/tanks/" + tankID

	rec := doRequest(t, h, http.MethodPost, base+"/parameters", token, map[string]any{
		"values": map[string]float64{"calcium": 420, "alkalinity_kh": 8.1},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = doRequest(t, h, http.MethodPost, base+"/parameters", token, map[string]any{
		"values": map[string]float64{"unobtainium": 1},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, h, http.MethodGet, base+"/parameters", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var latest []struct {
		ParameterType string  `json:"parameter_type"`
		Value         float64 `json:"value"`
	}
	decodeBody(t, rec, &latest)
	got := make(map[string]float64, len(latest))
	for _, m := range latest {
		got[m.ParameterType] = m.Value
	}
	want := map[string]float64{"calcium": 420, "alkalinity_kh": 8.1}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("latest parameters mismatch (-want +got):\n%s", diff)
	}

	rec = doRequest(t, h, http.MethodGet, base+"/parameters/calcium", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, h, http.MethodDelete, base+"/parameters/calcium", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var deleted map[string]int64
	decodeBody(t, rec, &deleted)
	assert.Equal(t, int64(1), deleted["deleted"])
}

func TestChemistryWaterChange(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Router()
	token := registerUser(t, h, "chem@example.com")

	rec := doRequest(t, h, http.MethodPost, "/api/v1/chemistry/water-change", token, map[string]any{
		"current":     50.0,
		"replacement": 0.0,
		"fraction":    0.3,
		"changes":     2,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp waterChangeResponse
	decodeBody(t, rec, &resp)
	assert.InDelta(t, 24.5, resp.After, 1e-9)
	require.Len(t, resp.Series, 2)
	assert.InDelta(t, 35.0, resp.Series[0], 1e-9)

	// Solve for the fraction reaching the target in one change.
	rec = doRequest(t, h, http.MethodPost, "/api/v1/chemistry/water-change/solve", token, map[string]any{
		"current":     25.0,
		"target":      20.0,
		"replacement": 0.0,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var solve waterChangeSolveResponse
	decodeBody(t, rec, &solve)
	require.NotNil(t, solve.Fraction)
	assert.InDelta(t, 0.2, *solve.Fraction, 1e-9)

	// A target the replacement water cannot reach is unprocessable.
	rec = doRequest(t, h, http.MethodPost, "/api/v1/chemistry/water-change/solve", token, map[string]any{
		"current":     10.0,
		"target":      20.0,
		"replacement": 0.0,
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestDosePlanUsesTankVolume(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Router()
	token := registerUser(t, h, "doser@example.com")
	tankID := createTestTank(t, h, token, "Frag")

	rec := doRequest(t, h, http.MethodPost, "/api/v1/chemistry/dose", token, map[string]any{
		"compound_id": "sodium_bicarbonate",
		"current":     7.0,
		"target":      8.5,
		"tank_id":     tankID,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var plan struct {
		TotalGrams   float64 `json:"total_grams"`
		Doses        int     `json:"doses"`
		GramsPerDose float64 `json:"grams_per_dose"`
	}
	decodeBody(t, rec, &plan)
	assert.Greater(t, plan.TotalGrams, 0.0)
	assert.GreaterOrEqual(t, plan.Doses, 1)

	rec = doRequest(t, h, http.MethodPost, "/api/v1/chemistry/dose", token, map[string]any{
		"compound_id": "unicorn_dust",
		"current":     7.0,
		"target":      8.5,
		"tank_liters": 100.0,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSharedTankView(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Router()
	token := registerUser(t, h, "sharer@example.com")
	tankID := createTestTank(t, h, token, "Showtank")
	base := "/api/v1/tanks/" + tankID

	rec := doRequest(t, h, http.MethodPost, base+"/livestock", token, map[string]any{
		"species_name":   "Amphiprion ocellaris",
		"type":           "fish",
		"quantity":       2,
		"purchase_price": "49.99",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = doRequest(t, h, http.MethodPost, base+"/share", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var share map[string]string
	decodeBody(t, rec, &share)
	shareToken := share["share_token"]
	require.NotEmpty(t, shareToken)

	// The public view needs no auth and hides prices and identifiers.
	rec = doRequest(t, h, http.MethodGet, "/api/v1/shared/"+shareToken, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Amphiprion ocellaris")
	assert.NotContains(t, body, "49.99")
	assert.NotContains(t, body, "user_id")

	rec = doRequest(t, h, http.MethodDelete, base+"/share", token, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
	rec = doRequest(t, h, http.MethodGet, "/api/v1/shared/"+shareToken, "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMaintenanceCompleteFlow(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Router()
	token := registerUser(t, h, "cleaner@example.com")
	tankID := createTestTank(t, h, token, "Nano")

	rec := doRequest(t, h, http.MethodPost, "/api/v1/tanks/"+tankID+"/maintenance", token, map[string]any{
		"title":          "Water change",
		"reminder_type":  "water_change",
		"frequency_days": 7,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var reminder struct {
		ID      string `json:"id"`
		NextDue string `json:"next_due"`
	}
	decodeBody(t, rec, &reminder)

	rec = doRequest(t, h, http.MethodPost, "/api/v1/maintenance/"+reminder.ID+"/complete", token,
		map[string]string{"completed_on": "2026-03-05"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var completed struct {
		LastCompleted *string `json:"last_completed"`
		NextDue       string  `json:"next_due"`
	}
	decodeBody(t, rec, &completed)
	require.NotNil(t, completed.LastCompleted)
	assert.Equal(t, "2026-03-05", *completed.LastCompleted)
	assert.Equal(t, "2026-03-12", completed.NextDue)
}

func TestAdminAccess(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Router()
	admin := registerUser(t, h, "admin@example.com")
	user := registerUser(t, h, "pleb@example.com")

	rec := doRequest(t, h, http.MethodGet, "/api/v1/admin/stats", user, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = doRequest(t, h, http.MethodGet, "/api/v1/admin/stats", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var stats struct {
		Users int `json:"users"`
	}
	decodeBody(t, rec, &stats)
	assert.Equal(t, 2, stats.Users)

	rec = doRequest(t, h, http.MethodPut, "/api/v1/admin/settings/registration_enabled", admin,
		map[string]string{"value": "false"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, h, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"email":    "blocked@example.com",
		"password": "correct-horse-battery",
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := doRequest(t, srv.Router(), http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestUpdatePreservesIdentity(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Router()
	token := registerUser(t, h, "editor@example.com")
	tankID := createTestTank(t, h, token, "Old name")

	rec := doRequest(t, h, http.MethodPut, fmt.Sprintf("/api/v1/tanks/%s/", tankID), token, map[string]any{
		"name":       "New name",
		"water_type": "saltwater",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var tank struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	decodeBody(t, rec, &tank)
	assert.Equal(t, tankID, tank.ID)
	assert.Equal(t, "New name", tank.Name)
}
