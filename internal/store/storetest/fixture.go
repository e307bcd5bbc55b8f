// Package storetest seeds an in-memory store with reference data and
// principals for service tests.
package storetest

import (
	"context"
	"testing"

	"github.com/jonathan/job-portal/internal/identity"
	"github.com/jonathan/job-portal/internal/store/memstore"
	"github.com/jonathan/job-portal/internal/types"
	"github.com/stretchr/testify/require"
)

// Fixture is a seeded store.
type Fixture struct {
	Store *memstore.Store

	Applied   types.Status
	Interview types.Status
	Hired     types.Status
	Rejected  types.Status
	Withdrawn types.Status

	Design      types.Category
	Engineering types.Category

	Skills map[string]types.Skill
}

// New seeds statuses, two categories (Engineering has id 2) and a few skills.
func New(t testing.TB) *Fixture {
	t.Helper()
	ctx := context.Background()
	s := memstore.New()
	f := &Fixture{Store: s, Skills: map[string]types.Skill{}}

	for _, st := range []*types.Status{
		{Name: "Applied", Role: types.StatusRoleApplied},
		{Name: "Interview", Role: types.StatusRoleCustom},
		{Name: "Hired", Role: types.StatusRoleHired},
		{Name: "Rejected", Role: types.StatusRoleRejected},
		{Name: "Withdrawn", Role: types.StatusRoleWithdrawn},
	} {
		require.NoError(t, s.CreateStatus(ctx, st))
	}
	f.Applied = status(t, s, "Applied")
	f.Interview = status(t, s, "Interview")
	f.Hired = status(t, s, "Hired")
	f.Rejected = status(t, s, "Rejected")
	f.Withdrawn = status(t, s, "Withdrawn")

	f.Design = types.Category{Name: "Design"}
	require.NoError(t, s.CreateCategory(ctx, &f.Design))
	f.Engineering = types.Category{Name: "Engineering"}
	require.NoError(t, s.CreateCategory(ctx, &f.Engineering))

	for _, name := range []string{"Go", "SQL", "Figma"} {
		sk := types.Skill{Name: name}
		require.NoError(t, s.CreateSkill(ctx, &sk))
		f.Skills[name] = sk
	}
	return f
}

func status(t testing.TB, s *memstore.Store, name string) types.Status {
	st, err := s.GetStatusByName(context.Background(), name)
	require.NoError(t, err)
	require.NotNil(t, st)
	return *st
}

// Employer creates an employer and returns a context authenticated as it.
func (f *Fixture) Employer(t testing.TB, email, company string) (*types.Employer, context.Context) {
	t.Helper()
	ctx := context.Background()
	u := &types.User{Email: email, Role: types.RoleEmployer}
	require.NoError(t, f.Store.CreateUser(ctx, u))
	e := &types.Employer{UserID: u.ID, Name: company + " HR", CompanyName: company}
	require.NoError(t, f.Store.CreateEmployer(ctx, e))
	return e, identity.WithPrincipal(ctx, identity.Principal{UserID: u.ID, Email: email, Role: types.RoleEmployer})
}

// Candidate creates a candidate and returns a context authenticated as it.
func (f *Fixture) Candidate(t testing.TB, email, name string) (*types.Candidate, context.Context) {
	t.Helper()
	ctx := context.Background()
	u := &types.User{Email: email, Role: types.RoleCandidate}
	require.NoError(t, f.Store.CreateUser(ctx, u))
	c := &types.Candidate{UserID: u.ID, Name: name}
	require.NoError(t, f.Store.CreateCandidate(ctx, c))
	return c, identity.WithPrincipal(ctx, identity.Principal{UserID: u.ID, Email: email, Role: types.RoleCandidate})
}

// Admin returns a context authenticated as an administrator.
func (f *Fixture) Admin(t testing.TB, email string) context.Context {
	t.Helper()
	ctx := context.Background()
	u := &types.User{Email: email, Role: types.RoleAdmin}
	require.NoError(t, f.Store.CreateUser(ctx, u))
	return identity.WithPrincipal(ctx, identity.Principal{UserID: u.ID, Email: email, Role: types.RoleAdmin})
}

// IntPtr returns a pointer to v.
func IntPtr(v int) *int { return &v }
