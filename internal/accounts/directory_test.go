package accounts

import (
	"context"
	"testing"

	"github.com/jonathan/job-portal/internal/apperr"
	"github.com/jonathan/job-portal/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListEmployersAndCandidates_AdminOnly(t *testing.T) {
	svc, st, _ := newService(t)
	ctx := context.Background()
	_, err := svc.EnsureAdmin(ctx, "root@portal.test", strongPassword)
	require.NoError(t, err)
	adminCtx := login(t, svc, st, "root@portal.test")

	employers, err := svc.ListEmployers(adminCtx)
	require.NoError(t, err)
	assert.NotNil(t, employers)
	assert.Empty(t, employers)

	_, err = svc.RegisterEmployer(ctx, types.RegisterEmployerRequest{
		Name: "HR", CompanyName: "Acme", Email: "hr@acme.test", Password: strongPassword,
	})
	require.NoError(t, err)
	_, err = svc.RegisterCandidate(ctx, types.RegisterCandidateRequest{Name: "Ada", Email: "ada@example.com", Password: strongPassword})
	require.NoError(t, err)

	employers, err = svc.ListEmployers(adminCtx)
	require.NoError(t, err)
	require.Len(t, employers, 1)
	assert.Equal(t, "Acme", employers[0].CompanyName)
	assert.Equal(t, "hr@acme.test", employers[0].Email)

	candidates, err := svc.ListCandidates(adminCtx)
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, "ada@example.com", candidates[0].Email)

	_, err = svc.ListCandidates(login(t, svc, st, "hr@acme.test"))
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
	_, err = svc.ListEmployers(login(t, svc, st, "ada@example.com"))
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
	_, err = svc.ListEmployers(ctx)
	assert.Equal(t, apperr.KindUnauthenticated, apperr.KindOf(err))
}
