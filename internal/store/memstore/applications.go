package memstore

import (
	"context"
	"slices"
	"sort"

	"github.com/jonathan/job-portal/internal/types"
)

func (s *Store) applicationView(a types.Application) types.Application {
	st := s.data.statuses[a.StatusID]
	a.StatusName = st.Name
	a.StatusRole = st.Role
	j := s.data.jobs[a.JobID]
	a.JobTitle = j.Title
	a.JobLocation = j.Location
	a.EmployerID = j.EmployerID
	a.CompanyName = s.data.employers[j.EmployerID].CompanyName
	c := s.candidateView(s.data.candidates[a.CandidateID])
	a.CandidateName = c.Name
	a.CandidateEmail = c.Email
	return a
}

func (s *Store) CreateApplication(_ context.Context, a *types.Application) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a.ID = s.next("applications")
	a.AppliedAt = stamp(a.AppliedAt)
	s.data.applications[a.ID] = *a
	*a = s.applicationView(*a)
	return nil
}

func (s *Store) GetApplication(_ context.Context, id int64) (*types.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.data.applications[id]
	if !ok {
		return nil, nil
	}
	a = s.applicationView(a)
	return &a, nil
}

func (s *Store) ApplicationsFor(_ context.Context, candidateID, jobID int64) ([]types.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []types.Application
	for _, a := range s.data.applications {
		if a.CandidateID == candidateID && a.JobID == jobID {
			out = append(out, s.applicationView(a))
		}
	}
	sortByID(out, func(a types.Application) int64 { return a.ID })
	return out, nil
}

func (s *Store) CompareAndSetStatus(_ context.Context, id, fromStatusID, toStatusID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.data.applications[id]
	if !ok || a.StatusID != fromStatusID {
		return false, nil
	}
	a.StatusID = toStatusID
	s.data.applications[id] = a
	return true, nil
}

func (s *Store) matchesApplication(a types.Application, f types.ApplicationFilter) bool {
	if f.JobID != 0 && a.JobID != f.JobID {
		return false
	}
	if f.CandidateID != 0 && a.CandidateID != f.CandidateID {
		return false
	}
	if f.EmployerID != 0 && a.EmployerID != f.EmployerID {
		return false
	}
	if slices.Contains(f.ExcludeRoles, a.StatusRole) {
		return false
	}
	if len(f.OnlyRoles) > 0 && !slices.Contains(f.OnlyRoles, a.StatusRole) {
		return false
	}
	if f.Status != "" && !sameName(a.StatusName, f.Status) {
		return false
	}
	if f.Search != "" && !containsFold(a.JobTitle, f.Search) && !containsFold(a.CandidateName, f.Search) &&
		!containsFold(a.CompanyName, f.Search) {
		return false
	}
	return true
}

func (s *Store) filterApplications(f types.ApplicationFilter) []types.Application {
	var matched []types.Application
	for _, a := range s.data.applications {
		view := s.applicationView(a)
		if s.matchesApplication(view, f) {
			matched = append(matched, view)
		}
	}
	sort.Slice(matched, func(i, k int) bool {
		if matched[i].AppliedAt.Equal(matched[k].AppliedAt) {
			return matched[i].ID > matched[k].ID
		}
		return matched[i].AppliedAt.After(matched[k].AppliedAt)
	})
	return matched
}

func (s *Store) ListApplications(_ context.Context, f types.ApplicationFilter) ([]types.Application, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	matched := s.filterApplications(f)
	return page(matched, f.Pagination), len(matched), nil
}

func (s *Store) CountApplications(_ context.Context, f types.ApplicationFilter) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.filterApplications(f)), nil
}
