package apperr

import (
	"fmt"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected Kind
	}{
		{"not found", NotFound(CodeJobNotFound, "job %d not found", 7), KindNotFound},
		{"conflict", Conflict(CodeAlreadyApplied, "already applied"), KindConflict},
		{"forbidden", Forbidden(CodeJobNotByEmployer, "not yours"), KindForbidden},
		{"validation", Validation(CodeInvalidInput, "bad"), KindValidation},
		{"unauthenticated", Unauthenticated(CodeUnauthenticated, "no token"), KindUnauthenticated},
		{"wrapped", fmt.Errorf("outer: %w", Conflict(CodeJobAlreadyOpened, "opened")), KindConflict},
		{"cockroach wrapped", errors.Wrap(NotFound(CodeSkillNotFound, "missing"), "lookup"), KindNotFound},
		{"untyped", errors.New("boom"), KindInfrastructure},
		{"infrastructure", Infrastructure(errors.New("conn reset"), "failed to load job"), KindInfrastructure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, KindOf(tt.err))
		})
	}
}

func TestErrorMessageAndCode(t *testing.T) {
	err := NotFound(CodeJobNotFound, "job %d not found", 42)
	assert.Equal(t, "job 42 not found", err.Error())
	assert.Equal(t, CodeJobNotFound, CodeOf(err))
	assert.True(t, Is(fmt.Errorf("ctx: %w", err), CodeJobNotFound))
	assert.False(t, Is(err, CodeAlreadyApplied))
	assert.Equal(t, CodeInternal, CodeOf(errors.New("plain")))
}

func TestPublicHidesInfrastructureDetail(t *testing.T) {
	infra := Infrastructure(errors.New("password=hunter2"), "failed to query jobs")
	assert.Contains(t, infra.Error(), "hunter2")
	assert.Equal(t, "internal server error", Public(infra))
	assert.Equal(t, "internal server error", Public(errors.New("raw")))
	assert.Equal(t, "already applied", Public(Conflict(CodeAlreadyApplied, "already applied")))
}

func TestInfrastructureUnwraps(t *testing.T) {
	cause := errors.New("disk full")
	err := Infrastructure(cause, "failed to store file")
	assert.True(t, errors.Is(err, cause))
}
