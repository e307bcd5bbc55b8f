package server

import (
	"context"
	"net/http"

	"github.com/jonathan/job-portal/internal/types"
)

// nameHandler adapts a create or rename operation taking a NameInput.
func (s *Server) nameHandler(status int, withID bool, op func(ctx context.Context, id int64, in types.NameInput) (any, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var id int64
		if withID {
			var err error
			if id, err = pathID(r, "id"); err != nil {
				s.badRequest(w, err.Error())
				return
			}
		}
		var in types.NameInput
		if err := decodeJSON(r, &in); err != nil {
			s.badRequest(w, "Invalid request body")
			return
		}
		out, err := op(r.Context(), id, in)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		s.jsonResponse(w, status, out)
	}
}

func (s *Server) deleteHandler(op func(ctx context.Context, id int64) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "id")
		if err != nil {
			s.badRequest(w, err.Error())
			return
		}
		if err := op(r.Context(), id); err != nil {
			s.writeError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) handleListSkills(w http.ResponseWriter, r *http.Request) {
	skills, err := s.svc.Catalog.ListSkills(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, skills)
}

func (s *Server) handleGetSkill(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.badRequest(w, err.Error())
		return
	}
	skill, err := s.svc.Catalog.GetSkill(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, skill)
}

func (s *Server) handleCreateSkill(w http.ResponseWriter, r *http.Request) {
	s.nameHandler(http.StatusCreated, false, func(ctx context.Context, _ int64, in types.NameInput) (any, error) {
		return s.svc.Catalog.CreateSkill(ctx, in)
	})(w, r)
}

func (s *Server) handleUpdateSkill(w http.ResponseWriter, r *http.Request) {
	s.nameHandler(http.StatusOK, true, func(ctx context.Context, id int64, in types.NameInput) (any, error) {
		return s.svc.Catalog.UpdateSkill(ctx, id, in)
	})(w, r)
}

func (s *Server) handleDeleteSkill(w http.ResponseWriter, r *http.Request) {
	s.deleteHandler(s.svc.Catalog.DeleteSkill)(w, r)
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := s.svc.Catalog.ListCategories(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, categories)
}

func (s *Server) handleGetCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.badRequest(w, err.Error())
		return
	}
	category, err := s.svc.Catalog.GetCategory(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, category)
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	s.nameHandler(http.StatusCreated, false, func(ctx context.Context, _ int64, in types.NameInput) (any, error) {
		return s.svc.Catalog.CreateCategory(ctx, in)
	})(w, r)
}

func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	s.nameHandler(http.StatusOK, true, func(ctx context.Context, id int64, in types.NameInput) (any, error) {
		return s.svc.Catalog.UpdateCategory(ctx, id, in)
	})(w, r)
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	s.deleteHandler(s.svc.Catalog.DeleteCategory)(w, r)
}

func (s *Server) handleListStatuses(w http.ResponseWriter, r *http.Request) {
	statuses, err := s.svc.Catalog.ListStatuses(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, statuses)
}

func (s *Server) handleGetStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.badRequest(w, err.Error())
		return
	}
	status, err := s.svc.Catalog.GetStatus(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, status)
}

func (s *Server) handleCreateStatus(w http.ResponseWriter, r *http.Request) {
	s.nameHandler(http.StatusCreated, false, func(ctx context.Context, _ int64, in types.NameInput) (any, error) {
		return s.svc.Catalog.CreateStatus(ctx, in)
	})(w, r)
}

func (s *Server) handleRenameStatus(w http.ResponseWriter, r *http.Request) {
	s.nameHandler(http.StatusOK, true, func(ctx context.Context, id int64, in types.NameInput) (any, error) {
		return s.svc.Catalog.RenameStatus(ctx, id, in)
	})(w, r)
}
