package server

import (
	"net/http"

	"github.com/jonathan/job-portal/internal/types"
)

func (s *Server) handleListPreferences(w http.ResponseWriter, r *http.Request) {
	prefs, err := s.svc.Preferences.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if prefs == nil {
		prefs = []types.JobPreference{}
	}
	s.jsonResponse(w, http.StatusOK, prefs)
}

func (s *Server) handleCreatePreference(w http.ResponseWriter, r *http.Request) {
	var in types.PreferenceInput
	if err := decodeJSON(r, &in); err != nil {
		s.badRequest(w, "Invalid request body")
		return
	}
	pref, err := s.svc.Preferences.Create(r.Context(), in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, pref)
}

func (s *Server) handleGetPreference(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.badRequest(w, err.Error())
		return
	}
	pref, err := s.svc.Preferences.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, pref)
}

func (s *Server) handleUpdatePreference(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.badRequest(w, err.Error())
		return
	}
	var in types.PreferenceInput
	if err := decodeJSON(r, &in); err != nil {
		s.badRequest(w, "Invalid request body")
		return
	}
	pref, err := s.svc.Preferences.Update(r.Context(), id, in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, pref)
}

func (s *Server) handleDeletePreference(w http.ResponseWriter, r *http.Request) {
	s.deleteHandler(s.svc.Preferences.Delete)(w, r)
}
