package server

import (
	"net/http"

	"github.com/jonathan/job-portal/internal/types"
)

func (s *Server) handleListOpenJobs(w http.ResponseWriter, r *http.Request) {
	q, err := jobQuery(r)
	if err != nil {
		s.badRequest(w, err.Error())
		return
	}
	page, err := s.svc.Jobs.ListOpenJobs(r.Context(), q)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, page)
}

func (s *Server) handleListCreatedJobs(w http.ResponseWriter, r *http.Request) {
	q, err := jobQuery(r)
	if err != nil {
		s.badRequest(w, err.Error())
		return
	}
	page, err := s.svc.Jobs.ListCreatedJobs(r.Context(), q)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, page)
}

func (s *Server) handleListJobsByEmployer(w http.ResponseWriter, r *http.Request) {
	employerID, err := pathID(r, "id")
	if err != nil {
		s.badRequest(w, err.Error())
		return
	}
	q, err := jobQuery(r)
	if err != nil {
		s.badRequest(w, err.Error())
		return
	}
	page, err := s.svc.Jobs.ListJobsByEmployer(r.Context(), employerID, q)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, page)
}

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.badRequest(w, err.Error())
		return
	}
	job, err := s.svc.Jobs.GetJob(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, job)
}

func (s *Server) handleCreateJob(w http.ResponseWriter, r *http.Request) {
	var in types.JobInput
	if err := decodeJSON(r, &in); err != nil {
		s.badRequest(w, "Invalid request body")
		return
	}
	job, err := s.svc.Jobs.CreateJob(r.Context(), in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, job)
}

func (s *Server) handleUpdateJob(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.badRequest(w, err.Error())
		return
	}
	var in types.JobInput
	if err := decodeJSON(r, &in); err != nil {
		s.badRequest(w, "Invalid request body")
		return
	}
	job, err := s.svc.Jobs.UpdateJob(r.Context(), id, in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, job)
}

func (s *Server) handleDeleteJob(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.badRequest(w, err.Error())
		return
	}
	if err := s.svc.Jobs.DeleteJob(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
