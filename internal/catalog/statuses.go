package catalog

import (
	"context"

	"github.com/jonathan/job-portal/internal/apperr"
	"github.com/jonathan/job-portal/internal/identity"
	"github.com/jonathan/job-portal/internal/types"
)

// ListStatuses returns the whole status catalog.
func (s *Service) ListStatuses(ctx context.Context) ([]types.Status, error) {
	if _, err := identity.Require(ctx); err != nil {
		return nil, err
	}
	statuses, err := s.store.ListStatuses(ctx)
	if err != nil {
		return nil, apperr.Infrastructure(err, "failed to list statuses")
	}
	return statuses, nil
}

// GetStatus returns one status.
func (s *Service) GetStatus(ctx context.Context, id int64) (*types.Status, error) {
	if _, err := identity.Require(ctx); err != nil {
		return nil, err
	}
	return s.status(ctx, id)
}

// CreateStatus adds a custom pipeline status. Reserved roles only come from
// seeding.
func (s *Service) CreateStatus(ctx context.Context, in types.NameInput) (*types.Status, error) {
	if err := admin(ctx); err != nil {
		return nil, err
	}
	n, err := name(in)
	if err != nil {
		return nil, err
	}
	if err := s.statusNameFree(ctx, n, 0); err != nil {
		return nil, err
	}
	status := &types.Status{Name: n, Role: types.StatusRoleCustom}
	if err := s.store.CreateStatus(ctx, status); err != nil {
		return nil, apperr.Infrastructure(err, "failed to create status")
	}
	s.logger.Infow("status created", "status", n)
	return status, nil
}

// RenameStatus changes a status name. Its role is kept.
func (s *Service) RenameStatus(ctx context.Context, id int64, in types.NameInput) (*types.Status, error) {
	if err := admin(ctx); err != nil {
		return nil, err
	}
	n, err := name(in)
	if err != nil {
		return nil, err
	}
	status, err := s.status(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.statusNameFree(ctx, n, id); err != nil {
		return nil, err
	}
	status.Name = n
	if err := s.store.UpdateStatus(ctx, status); err != nil {
		return nil, apperr.Infrastructure(err, "failed to update status")
	}
	return status, nil
}

func (s *Service) status(ctx context.Context, id int64) (*types.Status, error) {
	status, err := s.store.GetStatus(ctx, id)
	if err != nil {
		return nil, apperr.Infrastructure(err, "failed to load status")
	}
	if status == nil {
		return nil, apperr.NotFound(apperr.CodeStatusNotFound, "status not found: %d", id)
	}
	return status, nil
}

func (s *Service) statusNameFree(ctx context.Context, n string, selfID int64) error {
	existing, err := s.store.GetStatusByName(ctx, n)
	if err != nil {
		return apperr.Infrastructure(err, "failed to look up status")
	}
	if existing != nil && existing.ID != selfID {
		return apperr.Conflict(apperr.CodeStatusExists, "status %q already exists", n)
	}
	return nil
}
