package identity

import (
	"context"
	"errors"
	"testing"

	"github.com/jonathan/job-portal/internal/apperr"
	"github.com/jonathan/job-portal/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLookup struct {
	employers  map[string]*types.Employer
	candidates map[string]*types.Candidate
	err        error
}

func (f *fakeLookup) GetEmployerByEmail(_ context.Context, email string) (*types.Employer, error) {
	return f.employers[email], f.err
}

func (f *fakeLookup) GetCandidateByEmail(_ context.Context, email string) (*types.Candidate, error) {
	return f.candidates[email], f.err
}

func TestRequire(t *testing.T) {
	t.Run("missing principal", func(t *testing.T) {
		_, err := Require(context.Background())
		assert.Equal(t, apperr.KindUnauthenticated, apperr.KindOf(err))
	})

	t.Run("wrong role", func(t *testing.T) {
		ctx := WithPrincipal(context.Background(), Principal{Email: "c@x.io", Role: types.RoleCandidate})
		_, err := Require(ctx, types.RoleEmployer, types.RoleAdmin)
		assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
	})

	t.Run("any role", func(t *testing.T) {
		ctx := WithPrincipal(context.Background(), Principal{Email: "a@x.io", Role: types.RoleAdmin})
		p, err := Require(ctx)
		require.NoError(t, err)
		assert.Equal(t, "a@x.io", p.Email)
	})
}

func TestEmployerAndCandidate(t *testing.T) {
	lookup := &fakeLookup{
		employers:  map[string]*types.Employer{"e@x.io": {ID: 3, Email: "e@x.io"}},
		candidates: map[string]*types.Candidate{"c@x.io": {ID: 9, Email: "c@x.io"}},
	}

	ctx := WithPrincipal(context.Background(), Principal{Email: "e@x.io", Role: types.RoleEmployer})
	employer, err := Employer(ctx, lookup)
	require.NoError(t, err)
	assert.Equal(t, int64(3), employer.ID)

	ctx = WithPrincipal(context.Background(), Principal{Email: "ghost@x.io", Role: types.RoleCandidate})
	_, err = Candidate(ctx, lookup)
	assert.True(t, apperr.Is(err, apperr.CodeCandidateNotFound))

	lookup.err = errors.New("db down")
	ctx = WithPrincipal(context.Background(), Principal{Email: "c@x.io", Role: types.RoleCandidate})
	_, err = Candidate(ctx, lookup)
	assert.Equal(t, apperr.KindInfrastructure, apperr.KindOf(err))
}
