package eligibility

import (
	"testing"
	"time"

	"github.com/jonathan/job-portal/internal/apperr"
	"github.com/jonathan/job-portal/internal/types"
	"github.com/stretchr/testify/assert"
)

func intPtr(v int) *int { return &v }

func TestCanApply(t *testing.T) {
	candidate := &types.Candidate{ID: 7}
	job := &types.Job{ID: 1, IsActive: true, ExperienceRequired: intPtr(3)}

	tests := []struct {
		name     string
		job      *types.Job
		existing []types.Application
		declared int
		expected Verdict
	}{
		{"eligible", job, nil, 4, Eligible},
		{"exact experience", job, nil, 3, Eligible},
		{"missing job", nil, nil, 5, JobNotOpen},
		{"inactive", &types.Job{ID: 1}, nil, 5, JobNotOpen},
		{"deleted", &types.Job{ID: 1, IsActive: true, IsDeleted: true}, nil, 5, JobNotOpen},
		{"insufficient", job, nil, 2, InsufficientExperience},
		{"no requirement", &types.Job{ID: 1, IsActive: true}, nil, 0, Eligible},
		{
			"already applied",
			job,
			[]types.Application{{CandidateID: 7, JobID: 1, StatusRole: types.StatusRoleApplied}},
			4,
			AlreadyApplied,
		},
		{
			"rejected still blocks",
			job,
			[]types.Application{{CandidateID: 7, JobID: 1, StatusRole: types.StatusRoleRejected}},
			4,
			AlreadyApplied,
		},
		{
			"withdrawn allows reapply",
			job,
			[]types.Application{{CandidateID: 7, JobID: 1, StatusRole: types.StatusRoleWithdrawn}},
			4,
			Eligible,
		},
		{
			"other candidate ignored",
			job,
			[]types.Application{{CandidateID: 8, JobID: 1, StatusRole: types.StatusRoleApplied}},
			4,
			Eligible,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CanApply(candidate, tt.job, tt.existing, tt.declared))
		})
	}
}

func TestVerdictErr(t *testing.T) {
	job := &types.Job{ExperienceRequired: intPtr(3)}
	assert.NoError(t, Eligible.Err(job))
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(JobNotOpen.Err(job)))
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(AlreadyApplied.Err(job)))
	assert.True(t, apperr.Is(InsufficientExperience.Err(job), apperr.CodeNotEnoughExperience))
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(InsufficientExperience.Err(job)))
}

func TestOwnership(t *testing.T) {
	employer := &types.Employer{ID: 2}
	assert.True(t, OwnsJob(employer, &types.Job{EmployerID: 2}))
	assert.False(t, OwnsJob(employer, &types.Job{EmployerID: 3}))
	assert.False(t, OwnsJob(nil, &types.Job{EmployerID: 2}))

	candidate := &types.Candidate{ID: 5}
	assert.True(t, OwnsApplication(candidate, &types.Application{CandidateID: 5}))
	assert.False(t, OwnsApplication(candidate, &types.Application{CandidateID: 6}))
}

func TestJobIsEditable(t *testing.T) {
	now := time.Date(2026, 5, 20, 15, 30, 0, 0, time.UTC)
	tomorrow := &types.Job{OpenFrom: types.NewDate(now.AddDate(0, 0, 1))}
	today := &types.Job{OpenFrom: types.NewDate(now)}
	yesterday := &types.Job{OpenFrom: types.NewDate(now.AddDate(0, 0, -1))}

	assert.True(t, JobIsEditable(tomorrow, now))
	assert.False(t, JobIsEditable(today, now))
	assert.False(t, JobIsEditable(yesterday, now))
	assert.False(t, JobIsEditable(nil, now))
}
