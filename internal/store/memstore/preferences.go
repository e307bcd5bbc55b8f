package memstore

import (
	"context"

	"github.com/jonathan/job-portal/internal/types"
)

func (s *Store) preferenceView(p types.JobPreference) types.JobPreference {
	p.CategoryName = s.data.categories[p.CategoryID].Name
	c := s.candidateView(s.data.candidates[p.CandidateID])
	p.CandidateName = c.Name
	p.CandidateEmail = c.Email
	return p
}

func (s *Store) CreatePreference(_ context.Context, p *types.JobPreference) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.ID = s.next("preferences")
	p.CreatedAt = stamp(p.CreatedAt)
	s.data.preferences[p.ID] = *p
	*p = s.preferenceView(*p)
	return nil
}

func (s *Store) GetPreference(_ context.Context, id int64) (*types.JobPreference, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.data.preferences[id]
	if !ok {
		return nil, nil
	}
	p = s.preferenceView(p)
	return &p, nil
}

func (s *Store) UpdatePreference(_ context.Context, p *types.JobPreference) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.data.preferences[p.ID]
	if !ok {
		return errMissing("preference", p.ID)
	}
	existing.CategoryID = p.CategoryID
	existing.Experience = p.Experience
	existing.Location = p.Location
	s.data.preferences[p.ID] = existing
	return nil
}

func (s *Store) DeletePreference(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data.preferences[id]; !ok {
		return errMissing("preference", id)
	}
	delete(s.data.preferences, id)
	return nil
}

func (s *Store) ListPreferencesByCandidate(_ context.Context, candidateID int64) ([]types.JobPreference, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []types.JobPreference
	for _, p := range s.data.preferences {
		if p.CandidateID == candidateID {
			out = append(out, s.preferenceView(p))
		}
	}
	sortByID(out, func(p types.JobPreference) int64 { return p.ID })
	return out, nil
}

func (s *Store) ListPreferencesFor(_ context.Context, categoryID int64, location string) ([]types.JobPreference, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []types.JobPreference
	for _, p := range s.data.preferences {
		if p.CategoryID == categoryID && p.Location == location {
			out = append(out, s.preferenceView(p))
		}
	}
	sortByID(out, func(p types.JobPreference) int64 { return p.ID })
	return out, nil
}
