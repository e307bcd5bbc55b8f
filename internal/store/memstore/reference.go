package memstore

import (
	"context"

	"github.com/jonathan/job-portal/internal/store"
	"github.com/jonathan/job-portal/internal/types"
)

func (s *Store) ListSkills(_ context.Context) ([]types.Skill, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]types.Skill, 0, len(s.data.skills))
	for _, sk := range s.data.skills {
		out = append(out, sk)
	}
	sortByID(out, func(sk types.Skill) int64 { return sk.ID })
	return out, nil
}

func (s *Store) GetSkill(_ context.Context, id int64) (*types.Skill, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sk, ok := s.data.skills[id]
	if !ok {
		return nil, nil
	}
	return &sk, nil
}

func (s *Store) GetSkillByName(_ context.Context, name string) (*types.Skill, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sk := range s.data.skills {
		if sameName(sk.Name, name) {
			return &sk, nil
		}
	}
	return nil, nil
}

func (s *Store) GetSkillsByNames(_ context.Context, names []string) ([]types.Skill, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []types.Skill
	for _, sk := range s.data.skills {
		for _, n := range names {
			if sameName(sk.Name, n) {
				out = append(out, sk)
				break
			}
		}
	}
	sortByID(out, func(sk types.Skill) int64 { return sk.ID })
	return out, nil
}

func (s *Store) CreateSkill(_ context.Context, sk *types.Skill) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sk.ID = s.next("skills")
	s.data.skills[sk.ID] = *sk
	return nil
}

func (s *Store) UpdateSkill(_ context.Context, sk *types.Skill) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data.skills[sk.ID]; !ok {
		return errMissing("skill", sk.ID)
	}
	s.data.skills[sk.ID] = *sk
	return nil
}

func (s *Store) DeleteSkill(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data.skills[id]; !ok {
		return errMissing("skill", id)
	}
	delete(s.data.skills, id)
	for jobID, ids := range s.data.jobSkills {
		kept := ids[:0]
		for _, sid := range ids {
			if sid != id {
				kept = append(kept, sid)
			}
		}
		s.data.jobSkills[jobID] = kept
	}
	return nil
}

func (s *Store) ListCategories(_ context.Context) ([]types.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]types.Category, 0, len(s.data.categories))
	for _, c := range s.data.categories {
		out = append(out, c)
	}
	sortByID(out, func(c types.Category) int64 { return c.ID })
	return out, nil
}

func (s *Store) GetCategory(_ context.Context, id int64) (*types.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.data.categories[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (s *Store) GetCategoryByName(_ context.Context, name string) (*types.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.data.categories {
		if sameName(c.Name, name) {
			return &c, nil
		}
	}
	return nil, nil
}

func (s *Store) CreateCategory(_ context.Context, c *types.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.ID = s.next("categories")
	s.data.categories[c.ID] = *c
	return nil
}

func (s *Store) UpdateCategory(_ context.Context, c *types.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data.categories[c.ID]; !ok {
		return errMissing("category", c.ID)
	}
	s.data.categories[c.ID] = *c
	return nil
}

func (s *Store) DeleteCategory(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data.categories[id]; !ok {
		return errMissing("category", id)
	}
	for _, j := range s.data.jobs {
		if j.CategoryID == id {
			return store.ErrReferenced
		}
	}
	for _, p := range s.data.preferences {
		if p.CategoryID == id {
			return store.ErrReferenced
		}
	}
	delete(s.data.categories, id)
	return nil
}

func (s *Store) ListStatuses(_ context.Context) ([]types.Status, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]types.Status, 0, len(s.data.statuses))
	for _, st := range s.data.statuses {
		out = append(out, st)
	}
	sortByID(out, func(st types.Status) int64 { return st.ID })
	return out, nil
}

func (s *Store) GetStatus(_ context.Context, id int64) (*types.Status, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.data.statuses[id]
	if !ok {
		return nil, nil
	}
	return &st, nil
}

func (s *Store) GetStatusByName(_ context.Context, name string) (*types.Status, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, st := range s.data.statuses {
		if sameName(st.Name, name) {
			return &st, nil
		}
	}
	return nil, nil
}

// GetStatusByRole returns the lowest-id status carrying role.
func (s *Store) GetStatusByRole(_ context.Context, role types.StatusRole) (*types.Status, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var found *types.Status
	for _, st := range s.data.statuses {
		if st.Role == role && (found == nil || st.ID < found.ID) {
			found = &st
		}
	}
	return found, nil
}

func (s *Store) CreateStatus(_ context.Context, st *types.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	st.ID = s.next("statuses")
	s.data.statuses[st.ID] = *st
	return nil
}

func (s *Store) UpdateStatus(_ context.Context, st *types.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data.statuses[st.ID]; !ok {
		return errMissing("status", st.ID)
	}
	s.data.statuses[st.ID] = *st
	return nil
}
