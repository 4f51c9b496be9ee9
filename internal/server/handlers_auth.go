package server

import (
	"errors"
	"net/http"
	"strings"

	"aquascope/internal/auth"
	"aquascope/internal/model"
	"aquascope/internal/store"
)

type registerRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken string      `json:"access_token"`
	TokenType   string      `json:"token_type"`
	ExpiresIn   int         `json:"expires_in"`
	User        *model.User `json:"user"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	if !s.registrationEnabled(r) {
		s.respondJSON(w, http.StatusForbidden, errorResponse{Error: "registration is disabled"})
		return
	}

	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondErr(w, r, err)
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		s.respondErr(w, r, badRequestf("invalid email"))
		return
	}
	if req.Username == "" {
		req.Username = strings.SplitN(req.Email, "@", 2)[0]
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		s.respondErr(w, r, badRequestf("%v", err))
		return
	}

	u := &model.User{Email: req.Email, Username: req.Username, HashedPassword: hash}
	// The first account on a fresh instance becomes the admin.
	if n, err := s.store.CountUsers(r.Context()); err == nil && n == 0 {
		u.IsAdmin = true
	}
	if err := s.store.CreateUser(r.Context(), u); err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.issueToken(w, r, u, http.StatusCreated)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondErr(w, r, err)
		return
	}
	u, err := s.store.UserByEmail(r.Context(), strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		// Wrong email and wrong password look identical to callers.
		s.respondErr(w, r, auth.ErrInvalidCredentials)
		return
	}
	if err := auth.VerifyPassword(u.HashedPassword, req.Password); err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.issueToken(w, r, u, http.StatusOK)
}

func (s *Server) issueToken(w http.ResponseWriter, r *http.Request, u *model.User, status int) {
	token, err := s.tokens.Issue(u.Email)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.respondJSON(w, status, tokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresIn:   int(s.tokens.TTL().Seconds()),
		User:        u,
	})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, currentUser(r))
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	var req changePasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondErr(w, r, err)
		return
	}
	u := currentUser(r)
	if err := auth.VerifyPassword(u.HashedPassword, req.CurrentPassword); err != nil {
		s.respondErr(w, r, err)
		return
	}
	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		s.respondErr(w, r, badRequestf("%v", err))
		return
	}
	u.HashedPassword = hash
	if err := s.store.UpdateUser(r.Context(), u); err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "password changed"})
}

// registrationEnabled checks the runtime setting first, falling back to
// the config default.
func (s *Server) registrationEnabled(r *http.Request) bool {
	v, err := s.store.Setting(r.Context(), "registration_enabled")
	if err == nil {
		return v != "false"
	}
	if !errors.Is(err, store.ErrNotFound) {
		s.logger.Warn("read registration setting failed")
	}
	return s.cfg.Auth.RegistrationEnabled
}
