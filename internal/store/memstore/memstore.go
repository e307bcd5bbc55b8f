// Package memstore is an in-memory store.Store used by tests and local runs.
//
// WithTx serializes units of work and restores a snapshot when fn fails.
// Writes made outside a transaction while one is rolling back may be lost.
package memstore

import (
	"context"
	"maps"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/jonathan/job-portal/internal/store"
	"github.com/jonathan/job-portal/internal/types"
)

type tables struct {
	seq          map[string]int64
	users        map[int64]types.User
	employers    map[int64]types.Employer
	candidates   map[int64]types.Candidate
	skills       map[int64]types.Skill
	categories   map[int64]types.Category
	statuses     map[int64]types.Status
	jobs         map[int64]types.Job
	jobSkills    map[int64][]int64
	applications map[int64]types.Application
	preferences  map[int64]types.JobPreference
}

func newTables() tables {
	return tables{
		seq:          map[string]int64{},
		users:        map[int64]types.User{},
		employers:    map[int64]types.Employer{},
		candidates:   map[int64]types.Candidate{},
		skills:       map[int64]types.Skill{},
		categories:   map[int64]types.Category{},
		statuses:     map[int64]types.Status{},
		jobs:         map[int64]types.Job{},
		jobSkills:    map[int64][]int64{},
		applications: map[int64]types.Application{},
		preferences:  map[int64]types.JobPreference{},
	}
}

func (t tables) clone() tables {
	c := tables{
		seq:          maps.Clone(t.seq),
		users:        maps.Clone(t.users),
		employers:    maps.Clone(t.employers),
		candidates:   maps.Clone(t.candidates),
		skills:       maps.Clone(t.skills),
		categories:   maps.Clone(t.categories),
		statuses:     maps.Clone(t.statuses),
		jobs:         maps.Clone(t.jobs),
		jobSkills:    make(map[int64][]int64, len(t.jobSkills)),
		applications: maps.Clone(t.applications),
		preferences:  maps.Clone(t.preferences),
	}
	for k, v := range t.jobSkills {
		c.jobSkills[k] = slices.Clone(v)
	}
	return c
}

type state struct {
	mu   sync.Mutex
	txMu sync.Mutex
	data tables
}

// Store is the in-memory implementation.
type Store struct {
	*state
	inTx bool
}

var _ store.Store = (*Store)(nil)

// New returns an empty store.
func New() *Store {
	return &Store{state: &state{data: newTables()}}
}

// WithTx runs fn under the transaction lock.
func (s *Store) WithTx(ctx context.Context, fn func(tx store.Store) error) error {
	if s.inTx {
		return fn(s)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	snapshot := s.data.clone()
	s.mu.Unlock()

	if err := fn(&Store{state: s.state, inTx: true}); err != nil {
		s.mu.Lock()
		s.data = snapshot
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *Store) next(table string) int64 {
	s.data.seq[table]++
	return s.data.seq[table]
}

func sameName(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

func stamp(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now().UTC()
	}
	return t
}

// errMissing mirrors the "not found" failures the SQL store returns for row-targeted writes.
func errMissing(kind string, id int64) error {
	return errors.Newf("%s not found: %d", kind, id)
}

func page[T any](items []T, p types.Pagination) []T {
	if p.PageSize <= 0 {
		return items
	}
	start := p.Offset()
	if start >= len(items) {
		return []T{}
	}
	end := min(start+p.PageSize, len(items))
	return items[start:end]
}

func sortByID[T any](items []T, id func(T) int64) {
	sort.Slice(items, func(i, j int) bool { return id(items[i]) < id(items[j]) })
}
