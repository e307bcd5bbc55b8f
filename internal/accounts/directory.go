package accounts

import (
	"context"

	"github.com/jonathan/job-portal/internal/apperr"
	"github.com/jonathan/job-portal/internal/identity"
	"github.com/jonathan/job-portal/internal/types"
)

// ListEmployers returns every employer profile in id order. Admin only.
func (s *Service) ListEmployers(ctx context.Context) ([]types.Employer, error) {
	if _, err := identity.Require(ctx, types.RoleAdmin); err != nil {
		return nil, err
	}
	employers, err := s.store.ListEmployers(ctx)
	if err != nil {
		return nil, apperr.Infrastructure(err, "failed to list employers")
	}
	if employers == nil {
		employers = []types.Employer{}
	}
	return employers, nil
}

// ListCandidates returns every candidate profile in id order. Admin only.
func (s *Service) ListCandidates(ctx context.Context) ([]types.Candidate, error) {
	if _, err := identity.Require(ctx, types.RoleAdmin); err != nil {
		return nil, err
	}
	candidates, err := s.store.ListCandidates(ctx)
	if err != nil {
		return nil, apperr.Infrastructure(err, "failed to list candidates")
	}
	if candidates == nil {
		candidates = []types.Candidate{}
	}
	return candidates, nil
}
