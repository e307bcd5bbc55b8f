// Package identity carries the authenticated principal through request contexts
// and resolves it to employer and candidate profiles.
package identity

import (
	"context"
	"slices"

	"github.com/jonathan/job-portal/internal/apperr"
	"github.com/jonathan/job-portal/internal/types"
)

type contextKey struct{}

// Principal is the authenticated caller.
type Principal struct {
	UserID int64
	Email  string
	Role   types.Role
}

// WithPrincipal returns a context carrying p.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, contextKey{}, p)
}

// FromContext returns the principal stored in ctx, if any.
func FromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(contextKey{}).(Principal)
	return p, ok && p.Email != ""
}

// Require returns the principal when present and holding one of roles.
// With no roles any authenticated principal passes.
func Require(ctx context.Context, roles ...types.Role) (Principal, error) {
	p, ok := FromContext(ctx)
	if !ok {
		return Principal{}, apperr.Unauthenticated(apperr.CodeUnauthenticated, "authentication required")
	}
	if len(roles) > 0 && !slices.Contains(roles, p.Role) {
		return Principal{}, apperr.Forbidden(apperr.CodeRoleNotPermitted, "role %s may not perform this action", p.Role)
	}
	return p, nil
}

// ProfileLookup resolves principals to their profile rows.
type ProfileLookup interface {
	GetEmployerByEmail(ctx context.Context, email string) (*types.Employer, error)
	GetCandidateByEmail(ctx context.Context, email string) (*types.Candidate, error)
}

// Employer resolves the calling employer.
func Employer(ctx context.Context, lookup ProfileLookup) (*types.Employer, error) {
	p, err := Require(ctx, types.RoleEmployer)
	if err != nil {
		return nil, err
	}
	employer, err := lookup.GetEmployerByEmail(ctx, p.Email)
	if err != nil {
		return nil, apperr.Infrastructure(err, "failed to load employer")
	}
	if employer == nil {
		return nil, apperr.NotFound(apperr.CodeEmployerNotFound, "employer not found: %s", p.Email)
	}
	return employer, nil
}

// Candidate resolves the calling candidate.
func Candidate(ctx context.Context, lookup ProfileLookup) (*types.Candidate, error) {
	p, err := Require(ctx, types.RoleCandidate)
	if err != nil {
		return nil, err
	}
	candidate, err := lookup.GetCandidateByEmail(ctx, p.Email)
	if err != nil {
		return nil, apperr.Infrastructure(err, "failed to load candidate")
	}
	if candidate == nil {
		return nil, apperr.NotFound(apperr.CodeCandidateNotFound, "candidate not found: %s", p.Email)
	}
	return candidate, nil
}
