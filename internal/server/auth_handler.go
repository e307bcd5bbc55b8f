package server

import (
	"net/http"

	"github.com/jonathan/job-portal/internal/types"
)

func (s *Server) handleRegisterCandidate(w http.ResponseWriter, r *http.Request) {
	var req types.RegisterCandidateRequest
	if err := decodeJSON(r, &req); err != nil {
		s.badRequest(w, "Invalid request body")
		return
	}
	c, err := s.svc.Accounts.RegisterCandidate(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, c)
}

func (s *Server) handleRegisterEmployer(w http.ResponseWriter, r *http.Request) {
	var req types.RegisterEmployerRequest
	if err := decodeJSON(r, &req); err != nil {
		s.badRequest(w, "Invalid request body")
		return
	}
	e, err := s.svc.Accounts.RegisterEmployer(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, e)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req types.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		s.badRequest(w, "Invalid request body")
		return
	}
	resp, err := s.svc.Accounts.Login(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, resp)
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	p, err := s.svc.Accounts.Profile(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, p)
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req types.UpdateProfileRequest
	if err := decodeJSON(r, &req); err != nil {
		s.badRequest(w, "Invalid request body")
		return
	}
	p, err := s.svc.Accounts.UpdateProfile(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, p)
}

func (s *Server) handleListEmployers(w http.ResponseWriter, r *http.Request) {
	employers, err := s.svc.Accounts.ListEmployers(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, employers)
}

func (s *Server) handleListCandidates(w http.ResponseWriter, r *http.Request) {
	candidates, err := s.svc.Accounts.ListCandidates(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, candidates)
}
