package server

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"aquascope/internal/model"
)

func (s *Server) handleListPhotos(w http.ResponseWriter, r *http.Request) {
	t, err := s.ownTank(r)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	photos, err := s.store.ListPhotos(r.Context(), t.UserID, t.ID)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, photos)
}

// handleUploadPhoto accepts a multipart upload, writes the file under
// the uploads directory keyed by photo id, and records the metadata.
func (s *Server) handleUploadPhoto(w http.ResponseWriter, r *http.Request) {
	t, err := s.ownTank(r)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Uploads.MaxUploadBytes)
	if err := r.ParseMultipartForm(s.cfg.Uploads.MaxUploadBytes); err != nil {
		s.respondErr(w, r, badRequestf("upload too large or malformed: %v", err))
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		s.respondErr(w, r, badRequestf("missing file field"))
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !s.cfg.Uploads.AllowedExtension(ext) {
		s.respondErr(w, r, badRequestf("file type %q not allowed", ext))
		return
	}

	photoID := uuid.New()
	dir := filepath.Join(s.cfg.Uploads.Dir, t.ID.String())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		s.respondErr(w, r, fmt.Errorf("create upload dir: %w", err))
		return
	}
	path := filepath.Join(dir, photoID.String()+ext)
	dst, err := os.Create(path)
	if err != nil {
		s.respondErr(w, r, fmt.Errorf("create upload file: %w", err))
		return
	}
	if _, err := io.Copy(dst, file); err != nil {
		dst.Close()
		os.Remove(path)
		s.respondErr(w, r, fmt.Errorf("write upload: %w", err))
		return
	}
	if err := dst.Close(); err != nil {
		os.Remove(path)
		s.respondErr(w, r, fmt.Errorf("close upload: %w", err))
		return
	}

	p := &model.Photo{
		ID:       photoID,
		TankID:   t.ID,
		UserID:   t.UserID,
		Filename: header.Filename,
		FilePath: path,
	}
	if desc := r.FormValue("description"); desc != "" {
		p.Description = &desc
	}
	if raw := r.FormValue("taken_at"); raw != "" {
		if at, err := time.Parse(time.RFC3339, raw); err == nil {
			p.TakenAt = at.UTC()
		}
	}
	if err := s.store.CreatePhoto(r.Context(), p); err != nil {
		os.Remove(path)
		s.respondErr(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusCreated, p)
}

func (s *Server) handleServePhoto(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	p, err := s.store.PhotoForUser(r.Context(), currentUser(r).ID, id)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	http.ServeFile(w, r, p.FilePath)
}

type updatePhotoRequest struct {
	Description   *string    `json:"description,omitempty"`
	TakenAt       *time.Time `json:"taken_at,omitempty"`
	IsTankDisplay *bool      `json:"is_tank_display,omitempty"`
}

func (s *Server) handleUpdatePhoto(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	p, err := s.store.PhotoForUser(r.Context(), currentUser(r).ID, id)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	var req updatePhotoRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondErr(w, r, err)
		return
	}
	if req.Description != nil {
		p.Description = req.Description
	}
	if req.TakenAt != nil {
		p.TakenAt = req.TakenAt.UTC()
	}
	if req.IsTankDisplay != nil {
		p.IsTankDisplay = *req.IsTankDisplay
	}
	if err := s.store.UpdatePhoto(r.Context(), p); err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, p)
}

func (s *Server) handleDeletePhoto(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	p, err := s.store.DeletePhoto(r.Context(), currentUser(r).ID, id)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	if err := os.Remove(p.FilePath); err != nil && !os.IsNotExist(err) {
		// The row is gone; a stray file is worth a warning, not a 500.
		s.logger.Warn("remove photo file", zap.String("path", p.FilePath), zap.Error(err))
	}
	s.respondJSON(w, http.StatusNoContent, nil)
}
