// Package store declares the persistence contract for the job portal.
//
// Lookups return (nil, nil) when the row does not exist. Callers decide
// whether a missing row is an error.
package store

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/jonathan/job-portal/internal/types"
)

var (
	// ErrReferenced is returned when deleting a row other rows still point at.
	ErrReferenced = errors.New("row is still referenced")
	// ErrDuplicate is returned when an insert collides with a unique key.
	ErrDuplicate = errors.New("duplicate key")
)

// Accounts persists users and their profiles.
type Accounts interface {
	// CreateUser fails with ErrDuplicate when the email is taken.
	CreateUser(ctx context.Context, u *types.User) error
	GetUserByEmail(ctx context.Context, email string) (*types.User, error)
	UpdateUserEmail(ctx context.Context, userID int64, email string) error
	ListLatestUsers(ctx context.Context, limit int) ([]types.User, error)

	CreateEmployer(ctx context.Context, e *types.Employer) error
	GetEmployer(ctx context.Context, id int64) (*types.Employer, error)
	GetEmployerByEmail(ctx context.Context, email string) (*types.Employer, error)
	UpdateEmployer(ctx context.Context, e *types.Employer) error
	ListEmployers(ctx context.Context) ([]types.Employer, error)
	CountEmployers(ctx context.Context) (int, error)

	CreateCandidate(ctx context.Context, c *types.Candidate) error
	GetCandidate(ctx context.Context, id int64) (*types.Candidate, error)
	GetCandidateByEmail(ctx context.Context, email string) (*types.Candidate, error)
	UpdateCandidate(ctx context.Context, c *types.Candidate) error
	ListCandidates(ctx context.Context) ([]types.Candidate, error)
	CountCandidates(ctx context.Context) (int, error)
}

// ReferenceData persists skills, categories and statuses.
type ReferenceData interface {
	ListSkills(ctx context.Context) ([]types.Skill, error)
	GetSkill(ctx context.Context, id int64) (*types.Skill, error)
	GetSkillByName(ctx context.Context, name string) (*types.Skill, error)
	GetSkillsByNames(ctx context.Context, names []string) ([]types.Skill, error)
	CreateSkill(ctx context.Context, s *types.Skill) error
	UpdateSkill(ctx context.Context, s *types.Skill) error
	DeleteSkill(ctx context.Context, id int64) error

	ListCategories(ctx context.Context) ([]types.Category, error)
	GetCategory(ctx context.Context, id int64) (*types.Category, error)
	GetCategoryByName(ctx context.Context, name string) (*types.Category, error)
	CreateCategory(ctx context.Context, c *types.Category) error
	UpdateCategory(ctx context.Context, c *types.Category) error
	// DeleteCategory fails with ErrReferenced while jobs or preferences use the category.
	DeleteCategory(ctx context.Context, id int64) error

	ListStatuses(ctx context.Context) ([]types.Status, error)
	GetStatus(ctx context.Context, id int64) (*types.Status, error)
	GetStatusByName(ctx context.Context, name string) (*types.Status, error)
	GetStatusByRole(ctx context.Context, role types.StatusRole) (*types.Status, error)
	CreateStatus(ctx context.Context, s *types.Status) error
	UpdateStatus(ctx context.Context, s *types.Status) error
}

// Jobs persists job postings and their skill links.
type Jobs interface {
	CreateJob(ctx context.Context, j *types.Job) error
	UpdateJob(ctx context.Context, j *types.Job) error
	GetJob(ctx context.Context, id int64) (*types.Job, error)
	JobTitleExists(ctx context.Context, employerID int64, title string, excludeJobID int64) (bool, error)
	SetJobSkills(ctx context.Context, jobID int64, skillIDs []int64) error
	// SoftDeleteJob reports false when the job was already deleted.
	SoftDeleteJob(ctx context.Context, id int64) (bool, error)
	// DecrementVacancy atomically takes one seat and deactivates the job at zero.
	// It reports false when no seat was left.
	DecrementVacancy(ctx context.Context, id int64) (bool, error)
	ListJobs(ctx context.Context, f types.JobFilter) ([]types.Job, int, error)
	CountJobs(ctx context.Context, employerID int64) (int, error)
}

// Applications persists applications.
type Applications interface {
	CreateApplication(ctx context.Context, a *types.Application) error
	GetApplication(ctx context.Context, id int64) (*types.Application, error)
	ApplicationsFor(ctx context.Context, candidateID, jobID int64) ([]types.Application, error)
	// CompareAndSetStatus moves an application only if it still holds fromStatusID.
	CompareAndSetStatus(ctx context.Context, id, fromStatusID, toStatusID int64) (bool, error)
	ListApplications(ctx context.Context, f types.ApplicationFilter) ([]types.Application, int, error)
	CountApplications(ctx context.Context, f types.ApplicationFilter) (int, error)
}

// Preferences persists candidate job preferences.
type Preferences interface {
	CreatePreference(ctx context.Context, p *types.JobPreference) error
	GetPreference(ctx context.Context, id int64) (*types.JobPreference, error)
	UpdatePreference(ctx context.Context, p *types.JobPreference) error
	DeletePreference(ctx context.Context, id int64) error
	ListPreferencesByCandidate(ctx context.Context, candidateID int64) ([]types.JobPreference, error)
	// ListPreferencesFor returns preferences on a category and location with candidate contact fields.
	ListPreferencesFor(ctx context.Context, categoryID int64, location string) ([]types.JobPreference, error)
}

// Store is the full persistence contract.
type Store interface {
	Accounts
	ReferenceData
	Jobs
	Applications
	Preferences

	// WithTx runs fn as one unit of work. A non-nil error from fn rolls it back.
	WithTx(ctx context.Context, fn func(tx Store) error) error
}
