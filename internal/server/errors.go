package server

import (
	"net/http"

	"github.com/jonathan/job-portal/internal/apperr"
	"github.com/jonathan/job-portal/internal/observability"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// HTTPStatus returns the status code for an error's kind.
func HTTPStatus(err error) int {
	switch apperr.KindOf(err) {
	case apperr.KindUnauthenticated:
		return http.StatusUnauthorized
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindConflict:
		return http.StatusConflict
	case apperr.KindForbidden:
		return http.StatusForbidden
	case apperr.KindValidation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// writeError maps err to a status and body. Infrastructure failures are
// logged with their cause and reported generically.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := HTTPStatus(err)
	if status == http.StatusInternalServerError {
		observability.FromContext(r.Context(), s.logger).Errorw("request failed",
			observability.FieldMethod, r.Method,
			observability.FieldPath, r.URL.Path,
			observability.FieldError, err,
		)
	}
	s.jsonResponse(w, status, ErrorResponse{Error: apperr.Public(err), Code: apperr.CodeOf(err)})
}

// badRequest reports a malformed request the services never saw.
func (s *Server) badRequest(w http.ResponseWriter, message string) {
	s.jsonResponse(w, http.StatusBadRequest, ErrorResponse{Error: message, Code: apperr.CodeInvalidInput})
}
