package jobs

import (
	"context"

	"github.com/jonathan/job-portal/internal/apperr"
	"github.com/jonathan/job-portal/internal/eligibility"
	"github.com/jonathan/job-portal/internal/identity"
	"github.com/jonathan/job-portal/internal/types"
)

// GetJob returns one job as the caller may see it. Candidates cannot see
// postings before their opening day; employers see their own early.
func (s *Service) GetJob(ctx context.Context, jobID int64) (*types.Job, error) {
	p, err := identity.Require(ctx)
	if err != nil {
		return nil, err
	}
	job, err := s.load(ctx, jobID)
	if err != nil {
		return nil, err
	}
	today := s.today()

	switch p.Role {
	case types.RoleCandidate:
		if job.OpenFrom.After(today) {
			return nil, apperr.NotFound(apperr.CodeJobNotFound, "job not found: %d", jobID)
		}
		if err := s.markApplied(ctx, []*types.Job{job}); err != nil {
			return nil, err
		}
	case types.RoleEmployer:
		if job.OpenFrom.After(today) {
			employer, err := identity.Employer(ctx, s.store)
			if err != nil {
				return nil, err
			}
			if !eligibility.OwnsJob(employer, job) {
				return nil, apperr.NotFound(apperr.CodeJobNotFound, "job not found: %d", jobID)
			}
		}
	}
	return job, nil
}

// ListOpenJobs lists active postings visible to the caller.
func (s *Service) ListOpenJobs(ctx context.Context, q types.JobQuery) (*types.Page[types.Job], error) {
	p, err := identity.Require(ctx)
	if err != nil {
		return nil, err
	}
	today := s.today()
	filter := types.JobFilter{JobQuery: q, OnlyActive: true}

	switch p.Role {
	case types.RoleCandidate:
		filter.OpenBy = &today
	case types.RoleEmployer:
		employer, err := identity.Employer(ctx, s.store)
		if err != nil {
			return nil, err
		}
		filter.OpenBy = &today
		filter.VisibleTo = employer.ID
	}

	page, err := s.list(ctx, filter)
	if err != nil {
		return nil, err
	}
	if p.Role == types.RoleCandidate {
		jobs := make([]*types.Job, len(page.Items))
		for i := range page.Items {
			jobs[i] = &page.Items[i]
		}
		if err := s.markApplied(ctx, jobs); err != nil {
			return nil, err
		}
	}
	return page, nil
}

// ListCreatedJobs lists every non-deleted job of the calling employer.
func (s *Service) ListCreatedJobs(ctx context.Context, q types.JobQuery) (*types.Page[types.Job], error) {
	employer, err := identity.Employer(ctx, s.store)
	if err != nil {
		return nil, err
	}
	return s.list(ctx, types.JobFilter{JobQuery: q, EmployerID: employer.ID})
}

// ListJobsByEmployer lists one employer's jobs for an administrator.
func (s *Service) ListJobsByEmployer(ctx context.Context, employerID int64, q types.JobQuery) (*types.Page[types.Job], error) {
	if _, err := identity.Require(ctx, types.RoleAdmin); err != nil {
		return nil, err
	}
	employer, err := s.store.GetEmployer(ctx, employerID)
	if err != nil {
		return nil, apperr.Infrastructure(err, "failed to load employer")
	}
	if employer == nil {
		return nil, apperr.NotFound(apperr.CodeEmployerNotFound, "employer not found: %d", employerID)
	}
	return s.list(ctx, types.JobFilter{JobQuery: q, EmployerID: employerID})
}

func (s *Service) list(ctx context.Context, filter types.JobFilter) (*types.Page[types.Job], error) {
	filter.Pagination = filter.Pagination.Normalize(types.DefaultJobPageSize)
	items, total, err := s.store.ListJobs(ctx, filter)
	if err != nil {
		return nil, apperr.Infrastructure(err, "failed to list jobs")
	}
	if items == nil {
		items = []types.Job{}
	}
	return &types.Page[types.Job]{
		Items:      items,
		Total:      total,
		PageNumber: filter.PageNumber,
		PageSize:   filter.PageSize,
	}, nil
}

// markApplied flags jobs the calling candidate holds a live application for.
func (s *Service) markApplied(ctx context.Context, jobs []*types.Job) error {
	candidate, err := identity.Candidate(ctx, s.store)
	if err != nil {
		return err
	}
	for _, job := range jobs {
		existing, err := s.store.ApplicationsFor(ctx, candidate.ID, job.ID)
		if err != nil {
			return apperr.Infrastructure(err, "failed to load applications")
		}
		job.IsApplied = eligibility.HasActiveApplication(existing)
	}
	return nil
}
