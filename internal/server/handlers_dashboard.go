package server

import "net/http"

func (s *Server) handleAdminDashboard(w http.ResponseWriter, r *http.Request) {
	d, err := s.svc.Dashboard.Admin(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, d)
}

func (s *Server) handleEmployerDashboard(w http.ResponseWriter, r *http.Request) {
	d, err := s.svc.Dashboard.Employer(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, d)
}
