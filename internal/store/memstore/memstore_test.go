package memstore

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jonathan/job-portal/internal/store"
	"github.com/jonathan/job-portal/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedJob(t *testing.T, s *Store, vacancy int) *types.Job {
	t.Helper()
	ctx := context.Background()
	job := &types.Job{EmployerID: 1, Title: "Backend", Location: "Remote", CategoryID: 2, Vacancy: vacancy, IsActive: true}
	require.NoError(t, s.CreateJob(ctx, job))
	return job
}

func TestWithTxRollsBackOnError(t *testing.T) {
	s := New()
	ctx := context.Background()
	job := seedJob(t, s, 3)

	boom := errors.New("boom")
	err := s.WithTx(ctx, func(tx store.Store) error {
		_, err := tx.DecrementVacancy(ctx, job.ID)
		require.NoError(t, err)
		require.NoError(t, tx.SetJobSkills(ctx, job.ID, []int64{1, 2}))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := s.GetJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.Vacancy)
	assert.Empty(t, got.Skills)
}

func TestWithTxNestedRunsInline(t *testing.T) {
	s := New()
	ctx := context.Background()
	err := s.WithTx(ctx, func(tx store.Store) error {
		return tx.WithTx(ctx, func(inner store.Store) error {
			return inner.CreateSkill(ctx, &types.Skill{Name: "Go"})
		})
	})
	require.NoError(t, err)
	skills, _ := s.ListSkills(ctx)
	assert.Len(t, skills, 1)
}

func TestDecrementVacancyNeverGoesNegative(t *testing.T) {
	s := New()
	ctx := context.Background()
	job := seedJob(t, s, 1)

	var wg sync.WaitGroup
	var mu sync.Mutex
	taken := 0
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := s.DecrementVacancy(ctx, job.ID)
			assert.NoError(t, err)
			if ok {
				mu.Lock()
				taken++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	got, _ := s.GetJob(ctx, job.ID)
	assert.Equal(t, 1, taken)
	assert.Equal(t, 0, got.Vacancy)
	assert.False(t, got.IsActive)
}

func TestListJobsVisibility(t *testing.T) {
	s := New()
	ctx := context.Background()
	today := types.NewDate(time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC))

	open := &types.Job{EmployerID: 1, Title: "Open", Location: "Remote", CategoryID: 1, Vacancy: 1, IsActive: true, OpenFrom: types.NewDate(today.AddDate(0, 0, -1))}
	future := &types.Job{EmployerID: 2, Title: "Future", Location: "Remote", CategoryID: 1, Vacancy: 1, IsActive: true, OpenFrom: types.NewDate(today.AddDate(0, 0, 5))}
	deleted := &types.Job{EmployerID: 1, Title: "Gone", Location: "Remote", CategoryID: 1, Vacancy: 1, IsActive: true, IsDeleted: true}
	for _, j := range []*types.Job{open, future, deleted} {
		require.NoError(t, s.CreateJob(ctx, j))
	}

	jobs, total, err := s.ListJobs(ctx, types.JobFilter{OnlyActive: true, OpenBy: &today})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, "Open", jobs[0].Title)

	_, total, _ = s.ListJobs(ctx, types.JobFilter{OnlyActive: true, OpenBy: &today, VisibleTo: 2})
	assert.Equal(t, 2, total)

	_, total, _ = s.ListJobs(ctx, types.JobFilter{OnlyActive: true})
	assert.Equal(t, 2, total)
}

func TestCompareAndSetStatus(t *testing.T) {
	s := New()
	ctx := context.Background()
	app := &types.Application{CandidateID: 1, JobID: 1, StatusID: 1}
	require.NoError(t, s.CreateApplication(ctx, app))

	ok, err := s.CompareAndSetStatus(ctx, app.ID, 1, 2)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.CompareAndSetStatus(ctx, app.ID, 1, 3)
	require.NoError(t, err)
	assert.False(t, ok)

	got, _ := s.GetApplication(ctx, app.ID)
	assert.Equal(t, int64(2), got.StatusID)
}

func TestListEmployersAndCandidatesCarryEmail(t *testing.T) {
	s := New()
	ctx := context.Background()
	for _, email := range []string{"b@corp.test", "a@corp.test"} {
		u := &types.User{Email: email, Role: types.RoleEmployer}
		require.NoError(t, s.CreateUser(ctx, u))
		require.NoError(t, s.CreateEmployer(ctx, &types.Employer{UserID: u.ID, Name: "E", CompanyName: "Corp"}))
	}
	cu := &types.User{Email: "cand@example.com", Role: types.RoleCandidate}
	require.NoError(t, s.CreateUser(ctx, cu))
	require.NoError(t, s.CreateCandidate(ctx, &types.Candidate{UserID: cu.ID, Name: "Cand"}))

	employers, err := s.ListEmployers(ctx)
	require.NoError(t, err)
	require.Len(t, employers, 2)
	assert.Less(t, employers[0].ID, employers[1].ID)
	assert.Equal(t, "b@corp.test", employers[0].Email)

	candidates, err := s.ListCandidates(ctx)
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, "cand@example.com", candidates[0].Email)
}
