//go:build integration

package db

import (
	"context"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonathan/job-portal/internal/store"
	"github.com/jonathan/job-portal/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// openTestDB connects to TEST_DATABASE_URL, migrates, and truncates every table.
func openTestDB(t *testing.T) *DB {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	cfg := DefaultPoolConfig()
	cfg.ConnectTimeout = 10 * time.Second
	db, err := Connect(ctx, url, cfg, zap.NewNop().Sugar())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = Migrate(ctx, db.SQL(), nil)
	require.NoError(t, err)
	_, err = db.SQL().ExecContext(ctx, `TRUNCATE job_preferences, applications, job_skills, jobs,
		statuses, categories, skills, candidates, employers, users RESTART IDENTITY CASCADE`)
	require.NoError(t, err)
	return db
}

type seeded struct {
	employer  types.Employer
	candidate types.Candidate
	category  types.Category
	applied   types.Status
	hired     types.Status
}

func seed(t *testing.T, db *DB) seeded {
	t.Helper()
	ctx := context.Background()
	var s seeded

	u := &types.User{Email: "hr@acme.test", PasswordHash: "x", Role: types.RoleEmployer}
	require.NoError(t, db.CreateUser(ctx, u))
	s.employer = types.Employer{UserID: u.ID, Name: "Acme HR", CompanyName: "Acme"}
	require.NoError(t, db.CreateEmployer(ctx, &s.employer))

	cu := &types.User{Email: "ada@example.com", PasswordHash: "x", Role: types.RoleCandidate}
	require.NoError(t, db.CreateUser(ctx, cu))
	s.candidate = types.Candidate{UserID: cu.ID, Name: "Ada"}
	require.NoError(t, db.CreateCandidate(ctx, &s.candidate))

	s.category = types.Category{Name: "Engineering"}
	require.NoError(t, db.CreateCategory(ctx, &s.category))
	s.applied = types.Status{Name: "Applied", Role: types.StatusRoleApplied}
	require.NoError(t, db.CreateStatus(ctx, &s.applied))
	s.hired = types.Status{Name: "Hired", Role: types.StatusRoleHired}
	require.NoError(t, db.CreateStatus(ctx, &s.hired))
	return s
}

func TestIntegration_DuplicateEmail(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	require.NoError(t, db.CreateUser(ctx, &types.User{Email: "a@b.test", PasswordHash: "x", Role: types.RoleCandidate}))
	err := db.CreateUser(ctx, &types.User{Email: "A@B.test", PasswordHash: "x", Role: types.RoleCandidate})
	assert.ErrorIs(t, err, store.ErrDuplicate)
}

func TestIntegration_ConcurrentDecrementVacancy(t *testing.T) {
	db := openTestDB(t)
	s := seed(t, db)
	ctx := context.Background()

	job := &types.Job{
		EmployerID: s.employer.ID, Title: "Backend", Location: "Berlin", CategoryID: s.category.ID,
		OpenFrom: types.NewDate(time.Now()), Vacancy: 3, IsActive: true,
	}
	require.NoError(t, db.CreateJob(ctx, job))

	var wg sync.WaitGroup
	var taken atomic.Int32
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := db.DecrementVacancy(ctx, job.ID)
			assert.NoError(t, err)
			if ok {
				taken.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(3), taken.Load())
	got, err := db.GetJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Zero(t, got.Vacancy)
	assert.False(t, got.IsActive)
}

func TestIntegration_CompareAndSetStatusOnce(t *testing.T) {
	db := openTestDB(t)
	s := seed(t, db)
	ctx := context.Background()

	job := &types.Job{
		EmployerID: s.employer.ID, Title: "Frontend", Location: "Berlin", CategoryID: s.category.ID,
		OpenFrom: types.NewDate(time.Now()), Vacancy: 5, IsActive: true,
	}
	require.NoError(t, db.CreateJob(ctx, job))
	app := &types.Application{CandidateID: s.candidate.ID, JobID: job.ID, Experience: 2, StatusID: s.applied.ID}
	require.NoError(t, db.CreateApplication(ctx, app))
	assert.Equal(t, "Acme", app.CompanyName)
	assert.Equal(t, "ada@example.com", app.CandidateEmail)

	var wg sync.WaitGroup
	var wins atomic.Int32
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := db.WithTx(ctx, func(tx store.Store) error {
				ok, err := tx.CompareAndSetStatus(ctx, app.ID, s.applied.ID, s.hired.ID)
				if err != nil || !ok {
					return err
				}
				wins.Add(1)
				_, err = tx.DecrementVacancy(ctx, job.ID)
				return err
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins.Load())
	got, err := db.GetJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, got.Vacancy)
}

func TestIntegration_CategoryInUse(t *testing.T) {
	db := openTestDB(t)
	s := seed(t, db)
	ctx := context.Background()

	pref := &types.JobPreference{CandidateID: s.candidate.ID, CategoryID: s.category.ID, Location: "Berlin"}
	require.NoError(t, db.CreatePreference(ctx, pref))
	assert.Nil(t, pref.Experience)

	assert.ErrorIs(t, db.DeleteCategory(ctx, s.category.ID), store.ErrReferenced)

	var n int
	require.NoError(t, db.SQL().QueryRowContext(ctx, `SELECT COUNT(*) FROM categories`).Scan(&n))
	assert.Equal(t, 1, n)
}
