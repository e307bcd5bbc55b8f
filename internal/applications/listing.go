package applications

import (
	"context"

	"github.com/jonathan/job-portal/internal/apperr"
	"github.com/jonathan/job-portal/internal/eligibility"
	"github.com/jonathan/job-portal/internal/identity"
	"github.com/jonathan/job-portal/internal/types"
)

var hideWithdrawn = []types.StatusRole{types.StatusRoleWithdrawn}

// GetApplication returns one application to its candidate, the employer
// owning the job, or an administrator.
func (s *Service) GetApplication(ctx context.Context, id int64) (*types.Application, error) {
	p, err := identity.Require(ctx)
	if err != nil {
		return nil, err
	}
	app, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	switch p.Role {
	case types.RoleCandidate:
		candidate, err := identity.Candidate(ctx, s.store)
		if err != nil {
			return nil, err
		}
		if !eligibility.OwnsApplication(candidate, app) {
			return nil, apperr.Forbidden(apperr.CodeApplicationNotByCandidate, "application %d was not submitted by this candidate", id)
		}
	case types.RoleEmployer:
		employer, err := identity.Employer(ctx, s.store)
		if err != nil {
			return nil, err
		}
		if app.EmployerID != employer.ID {
			return nil, apperr.Forbidden(apperr.CodeJobNotByEmployer, "application %d is not for a job of this employer", id)
		}
	}
	return app, nil
}

// ListByJob lists the live applications on one of the calling employer's
// jobs. Administrators see every application on the job.
func (s *Service) ListByJob(ctx context.Context, jobID int64, q types.ApplicationQuery) (*types.Page[types.Application], error) {
	filter, err := s.jobScope(ctx, jobID)
	if err != nil {
		return nil, err
	}
	filter.ApplicationQuery = q
	return s.list(ctx, filter)
}

// CountForJob counts the live applications on a job.
func (s *Service) CountForJob(ctx context.Context, jobID int64) (int, error) {
	filter, err := s.jobScope(ctx, jobID)
	if err != nil {
		return 0, err
	}
	n, err := s.store.CountApplications(ctx, filter)
	if err != nil {
		return 0, apperr.Infrastructure(err, "failed to count applications")
	}
	return n, nil
}

func (s *Service) jobScope(ctx context.Context, jobID int64) (types.ApplicationFilter, error) {
	p, err := identity.Require(ctx, types.RoleEmployer, types.RoleAdmin)
	if err != nil {
		return types.ApplicationFilter{}, err
	}
	job, err := s.store.GetJob(ctx, jobID)
	if err != nil {
		return types.ApplicationFilter{}, apperr.Infrastructure(err, "failed to load job")
	}
	if job == nil || job.IsDeleted {
		return types.ApplicationFilter{}, apperr.NotFound(apperr.CodeJobNotFound, "job not found: %d", jobID)
	}
	filter := types.ApplicationFilter{JobID: jobID}
	if p.Role == types.RoleEmployer {
		employer, err := identity.Employer(ctx, s.store)
		if err != nil {
			return types.ApplicationFilter{}, err
		}
		if !eligibility.OwnsJob(employer, job) {
			return types.ApplicationFilter{}, apperr.Forbidden(apperr.CodeJobNotByEmployer, "job %d is not created by this employer", jobID)
		}
		filter.ExcludeRoles = hideWithdrawn
	}
	return filter, nil
}

// ListMine lists the calling candidate's applications that are not withdrawn.
func (s *Service) ListMine(ctx context.Context, q types.ApplicationQuery) (*types.Page[types.Application], error) {
	candidate, err := identity.Candidate(ctx, s.store)
	if err != nil {
		return nil, err
	}
	return s.list(ctx, types.ApplicationFilter{
		ApplicationQuery: q,
		CandidateID:      candidate.ID,
		ExcludeRoles:     hideWithdrawn,
	})
}

// ListAll lists every application for an administrator, filtered by free text
// and status name.
func (s *Service) ListAll(ctx context.Context, q types.ApplicationQuery) (*types.Page[types.Application], error) {
	if _, err := identity.Require(ctx, types.RoleAdmin); err != nil {
		return nil, err
	}
	return s.list(ctx, types.ApplicationFilter{ApplicationQuery: q})
}

func (s *Service) list(ctx context.Context, filter types.ApplicationFilter) (*types.Page[types.Application], error) {
	filter.Pagination = filter.Pagination.Normalize(types.DefaultApplicationPageSize)
	items, total, err := s.store.ListApplications(ctx, filter)
	if err != nil {
		return nil, apperr.Infrastructure(err, "failed to list applications")
	}
	if items == nil {
		items = []types.Application{}
	}
	return &types.Page[types.Application]{
		Items:      items,
		Total:      total,
		PageNumber: filter.PageNumber,
		PageSize:   filter.PageSize,
	}, nil
}
