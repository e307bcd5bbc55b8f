// Package dashboard aggregates portal and employer summaries.
package dashboard

import (
	"context"

	"github.com/jonathan/job-portal/internal/apperr"
	"github.com/jonathan/job-portal/internal/identity"
	"github.com/jonathan/job-portal/internal/store"
	"github.com/jonathan/job-portal/internal/types"
	"golang.org/x/sync/errgroup"
)

// LatestLimit is how many recent rows each summary carries.
const LatestLimit = 3

var latest = types.Pagination{PageNumber: 1, PageSize: LatestLimit}

// Service builds dashboards. Each summary issues its queries concurrently.
type Service struct {
	store store.Store
}

// NewService creates a dashboard service.
func NewService(st store.Store) *Service {
	return &Service{store: st}
}

// Admin summarizes the whole portal.
func (s *Service) Admin(ctx context.Context) (*types.AdminDashboard, error) {
	if _, err := identity.Require(ctx, types.RoleAdmin); err != nil {
		return nil, err
	}
	var d types.AdminDashboard
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		d.TotalEmployers, err = s.store.CountEmployers(gctx)
		return err
	})
	g.Go(func() (err error) {
		d.TotalCandidates, err = s.store.CountCandidates(gctx)
		return err
	})
	g.Go(func() (err error) {
		d.TotalJobs, err = s.store.CountJobs(gctx, 0)
		return err
	})
	g.Go(func() (err error) {
		d.TotalApplications, err = s.store.CountApplications(gctx, types.ApplicationFilter{})
		return err
	})
	g.Go(func() (err error) {
		d.LatestJobs, _, err = s.store.ListJobs(gctx, types.JobFilter{JobQuery: types.JobQuery{Pagination: latest}})
		return err
	})
	g.Go(func() (err error) {
		d.LatestApplications, _, err = s.store.ListApplications(gctx, types.ApplicationFilter{
			ApplicationQuery: types.ApplicationQuery{Pagination: latest},
		})
		return err
	})
	g.Go(func() (err error) {
		d.LatestUsers, err = s.store.ListLatestUsers(gctx, LatestLimit)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, apperr.Infrastructure(err, "failed to build admin dashboard")
	}
	fillEmpty(&d.LatestJobs, &d.LatestApplications)
	if d.LatestUsers == nil {
		d.LatestUsers = []types.User{}
	}
	return &d, nil
}

// Employer summarizes the calling employer's postings.
func (s *Service) Employer(ctx context.Context) (*types.EmployerDashboard, error) {
	employer, err := identity.Employer(ctx, s.store)
	if err != nil {
		return nil, err
	}
	var d types.EmployerDashboard
	own := types.ApplicationFilter{EmployerID: employer.ID}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		d.TotalJobs, err = s.store.CountJobs(gctx, employer.ID)
		return err
	})
	g.Go(func() (err error) {
		d.TotalApplications, err = s.store.CountApplications(gctx, own)
		return err
	})
	g.Go(func() (err error) {
		fresh := own
		fresh.OnlyRoles = []types.StatusRole{types.StatusRoleApplied}
		d.NewApplications, err = s.store.CountApplications(gctx, fresh)
		return err
	})
	g.Go(func() (err error) {
		d.LatestJobs, _, err = s.store.ListJobs(gctx, types.JobFilter{
			JobQuery:   types.JobQuery{Pagination: latest},
			EmployerID: employer.ID,
		})
		return err
	})
	g.Go(func() (err error) {
		recent := own
		recent.Pagination = latest
		d.LatestApplications, _, err = s.store.ListApplications(gctx, recent)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, apperr.Infrastructure(err, "failed to build employer dashboard")
	}
	fillEmpty(&d.LatestJobs, &d.LatestApplications)
	return &d, nil
}

func fillEmpty(jobs *[]types.Job, apps *[]types.Application) {
	if *jobs == nil {
		*jobs = []types.Job{}
	}
	if *apps == nil {
		*apps = []types.Application{}
	}
}
