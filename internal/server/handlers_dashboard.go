package server

import "net/http"

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	tanks, err := s.store.Dashboard(r.Context(), currentUser(r).ID)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]any{"tanks": tanks})
}
