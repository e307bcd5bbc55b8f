package server

import (
	"net/http"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/jonathan/job-portal/internal/apperr"
	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"unauthenticated", apperr.Unauthenticated(apperr.CodeInvalidCredentials, "bad login"), http.StatusUnauthorized},
		{"not found", apperr.NotFound(apperr.CodeJobNotFound, "job not found: %d", 4), http.StatusNotFound},
		{"conflict", apperr.Conflict(apperr.CodeAlreadyApplied, "already applied"), http.StatusConflict},
		{"forbidden", apperr.Forbidden(apperr.CodeRoleNotPermitted, "nope"), http.StatusForbidden},
		{"validation", apperr.Validation(apperr.CodeInvalidInput, "bad"), http.StatusBadRequest},
		{"wrapped", errors.Wrap(apperr.NotFound(apperr.CodeSkillNotFound, "gone"), "outer"), http.StatusNotFound},
		{"infrastructure", apperr.Infrastructure(errors.New("disk"), "failed"), http.StatusInternalServerError},
		{"plain", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}
