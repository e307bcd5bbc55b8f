package memstore

import (
	"context"
	"sort"

	"github.com/jonathan/job-portal/internal/store"
	"github.com/jonathan/job-portal/internal/types"
)

func (s *Store) CreateUser(_ context.Context, u *types.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.data.users {
		if sameName(existing.Email, u.Email) {
			return store.ErrDuplicate
		}
	}
	u.ID = s.next("users")
	u.CreatedAt = stamp(u.CreatedAt)
	s.data.users[u.ID] = *u
	return nil
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (*types.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.data.users {
		if sameName(u.Email, email) {
			return &u, nil
		}
	}
	return nil, nil
}

func (s *Store) UpdateUserEmail(_ context.Context, userID int64, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.data.users[userID]
	if !ok {
		return errMissing("user", userID)
	}
	for id, other := range s.data.users {
		if id != userID && sameName(other.Email, email) {
			return store.ErrDuplicate
		}
	}
	u.Email = email
	s.data.users[userID] = u
	return nil
}

func (s *Store) ListLatestUsers(_ context.Context, limit int) ([]types.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	users := make([]types.User, 0, len(s.data.users))
	for _, u := range s.data.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool {
		if users[i].CreatedAt.Equal(users[j].CreatedAt) {
			return users[i].ID > users[j].ID
		}
		return users[i].CreatedAt.After(users[j].CreatedAt)
	})
	if limit > 0 && len(users) > limit {
		users = users[:limit]
	}
	return users, nil
}

func (s *Store) employerView(e types.Employer) types.Employer {
	e.Email = s.data.users[e.UserID].Email
	return e
}

func (s *Store) candidateView(c types.Candidate) types.Candidate {
	c.Email = s.data.users[c.UserID].Email
	return c
}

func (s *Store) CreateEmployer(_ context.Context, e *types.Employer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e.ID = s.next("employers")
	s.data.employers[e.ID] = *e
	*e = s.employerView(*e)
	return nil
}

func (s *Store) GetEmployer(_ context.Context, id int64) (*types.Employer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.data.employers[id]
	if !ok {
		return nil, nil
	}
	e = s.employerView(e)
	return &e, nil
}

func (s *Store) GetEmployerByEmail(_ context.Context, email string) (*types.Employer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.data.employers {
		if sameName(s.data.users[e.UserID].Email, email) {
			e = s.employerView(e)
			return &e, nil
		}
	}
	return nil, nil
}

func (s *Store) UpdateEmployer(_ context.Context, e *types.Employer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.data.employers[e.ID]
	if !ok {
		return errMissing("employer", e.ID)
	}
	existing.Name = e.Name
	existing.CompanyName = e.CompanyName
	s.data.employers[e.ID] = existing
	return nil
}

func (s *Store) ListEmployers(_ context.Context) ([]types.Employer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]types.Employer, 0, len(s.data.employers))
	for _, e := range s.data.employers {
		out = append(out, s.employerView(e))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) CountEmployers(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.data.employers), nil
}

func (s *Store) CreateCandidate(_ context.Context, c *types.Candidate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.ID = s.next("candidates")
	s.data.candidates[c.ID] = *c
	*c = s.candidateView(*c)
	return nil
}

func (s *Store) GetCandidate(_ context.Context, id int64) (*types.Candidate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.data.candidates[id]
	if !ok {
		return nil, nil
	}
	c = s.candidateView(c)
	return &c, nil
}

func (s *Store) GetCandidateByEmail(_ context.Context, email string) (*types.Candidate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.data.candidates {
		if sameName(s.data.users[c.UserID].Email, email) {
			c = s.candidateView(c)
			return &c, nil
		}
	}
	return nil, nil
}

func (s *Store) UpdateCandidate(_ context.Context, c *types.Candidate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.data.candidates[c.ID]
	if !ok {
		return errMissing("candidate", c.ID)
	}
	existing.Name = c.Name
	s.data.candidates[c.ID] = existing
	return nil
}

func (s *Store) ListCandidates(_ context.Context) ([]types.Candidate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]types.Candidate, 0, len(s.data.candidates))
	for _, c := range s.data.candidates {
		out = append(out, s.candidateView(c))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) CountCandidates(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.data.candidates), nil
}
