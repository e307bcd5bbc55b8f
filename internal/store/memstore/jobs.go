package memstore

import (
	"context"
	"sort"

	"github.com/jonathan/job-portal/internal/types"
)

func (s *Store) jobView(j types.Job) types.Job {
	j.CompanyName = s.data.employers[j.EmployerID].CompanyName
	j.CategoryName = s.data.categories[j.CategoryID].Name
	j.Skills = []types.Skill{}
	for _, id := range s.data.jobSkills[j.ID] {
		if sk, ok := s.data.skills[id]; ok {
			j.Skills = append(j.Skills, sk)
		}
	}
	return j
}

func (s *Store) CreateJob(_ context.Context, j *types.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	j.ID = s.next("jobs")
	j.CreatedAt = stamp(j.CreatedAt)
	stored := *j
	stored.Skills = nil
	s.data.jobs[j.ID] = stored
	return nil
}

func (s *Store) UpdateJob(_ context.Context, j *types.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.data.jobs[j.ID]
	if !ok {
		return errMissing("job", j.ID)
	}
	existing.Title = j.Title
	existing.Description = j.Description
	existing.Location = j.Location
	existing.ExperienceRequired = j.ExperienceRequired
	existing.CategoryID = j.CategoryID
	existing.OpenFrom = j.OpenFrom
	existing.Vacancy = j.Vacancy
	existing.IsActive = j.IsActive
	s.data.jobs[j.ID] = existing
	return nil
}

func (s *Store) GetJob(_ context.Context, id int64) (*types.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.data.jobs[id]
	if !ok {
		return nil, nil
	}
	j = s.jobView(j)
	return &j, nil
}

func (s *Store) JobTitleExists(_ context.Context, employerID int64, title string, excludeJobID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, j := range s.data.jobs {
		if j.EmployerID == employerID && !j.IsDeleted && j.Title == title && j.ID != excludeJobID {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) SetJobSkills(_ context.Context, jobID int64, skillIDs []int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data.jobs[jobID]; !ok {
		return errMissing("job", jobID)
	}
	s.data.jobSkills[jobID] = append([]int64(nil), skillIDs...)
	return nil
}

func (s *Store) SoftDeleteJob(_ context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.data.jobs[id]
	if !ok || j.IsDeleted {
		return false, nil
	}
	j.IsDeleted = true
	s.data.jobs[id] = j
	return true, nil
}

func (s *Store) DecrementVacancy(_ context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.data.jobs[id]
	if !ok || j.Vacancy <= 0 {
		return false, nil
	}
	j.Vacancy--
	if j.Vacancy == 0 {
		j.IsActive = false
	}
	s.data.jobs[id] = j
	return true, nil
}

func (s *Store) matchesJob(j types.Job, f types.JobFilter) bool {
	if j.IsDeleted {
		return false
	}
	if f.OnlyActive && !j.IsActive {
		return false
	}
	if f.EmployerID != 0 && j.EmployerID != f.EmployerID {
		return false
	}
	if f.OpenBy != nil && j.OpenFrom.After(*f.OpenBy) && (f.VisibleTo == 0 || j.EmployerID != f.VisibleTo) {
		return false
	}
	if f.Search != "" && !containsFold(j.Title, f.Search) && !containsFold(j.Description, f.Search) {
		return false
	}
	if f.Location != "" && !containsFold(j.Location, f.Location) {
		return false
	}
	if f.Category != "" && !sameName(s.data.categories[j.CategoryID].Name, f.Category) {
		return false
	}
	if f.MaxExperience != nil && j.RequiredExperience() > *f.MaxExperience {
		return false
	}
	if f.Skill != "" {
		found := false
		for _, id := range s.data.jobSkills[j.ID] {
			if sameName(s.data.skills[id].Name, f.Skill) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func (s *Store) ListJobs(_ context.Context, f types.JobFilter) ([]types.Job, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var matched []types.Job
	for _, j := range s.data.jobs {
		if s.matchesJob(j, f) {
			matched = append(matched, s.jobView(j))
		}
	}
	sort.Slice(matched, func(i, k int) bool {
		if matched[i].CreatedAt.Equal(matched[k].CreatedAt) {
			return matched[i].ID > matched[k].ID
		}
		return matched[i].CreatedAt.After(matched[k].CreatedAt)
	})
	return page(matched, f.Pagination), len(matched), nil
}

func (s *Store) CountJobs(_ context.Context, employerID int64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, j := range s.data.jobs {
		if !j.IsDeleted && (employerID == 0 || j.EmployerID == employerID) {
			n++
		}
	}
	return n, nil
}
