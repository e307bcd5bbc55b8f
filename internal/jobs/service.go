// Package jobs manages the job posting lifecycle: creation, edits while the
// posting has not opened, soft deletion, vacancy countdown and listings.
package jobs

import (
	"context"
	"strings"
	"time"

	"github.com/jonathan/job-portal/internal/apperr"
	"github.com/jonathan/job-portal/internal/eligibility"
	"github.com/jonathan/job-portal/internal/identity"
	"github.com/jonathan/job-portal/internal/observability"
	"github.com/jonathan/job-portal/internal/store"
	"github.com/jonathan/job-portal/internal/types"
	"github.com/jonathan/job-portal/internal/validation"
	"go.uber.org/zap"
)

// Publisher receives committed jobs for asynchronous follow-up.
type Publisher interface {
	JobCreated(ctx context.Context, job types.Job)
}

// Service is the job lifecycle manager.
type Service struct {
	store     store.Store
	publisher Publisher
	logger    *zap.SugaredLogger
	now       func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the wall clock used for opening-date checks.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a job lifecycle manager. publisher may be nil.
func NewService(st store.Store, publisher Publisher, logger *zap.SugaredLogger, opts ...Option) *Service {
	s := &Service{
		store:     st,
		publisher: publisher,
		logger:    observability.Component(logger, "jobs"),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) today() types.Date {
	return types.NewDate(s.now())
}

// CreateJob persists a new posting for the calling employer together with its
// skills, then publishes it for preference matching.
func (s *Service) CreateJob(ctx context.Context, in types.JobInput) (*types.Job, error) {
	employer, err := identity.Employer(ctx, s.store)
	if err != nil {
		return nil, err
	}
	if err := validateInput(&in); err != nil {
		return nil, err
	}

	job := &types.Job{
		EmployerID: employer.ID,
		IsActive:   true,
		CreatedAt:  s.now().UTC(),
	}
	applyInput(job, in)

	err = s.store.WithTx(ctx, func(tx store.Store) error {
		skillIDs, err := s.prepare(ctx, tx, employer.ID, 0, in)
		if err != nil {
			return err
		}
		if err := tx.CreateJob(ctx, job); err != nil {
			return apperr.Infrastructure(err, "failed to create job")
		}
		if err := tx.SetJobSkills(ctx, job.ID, skillIDs); err != nil {
			return apperr.Infrastructure(err, "failed to link job skills")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	created, err := s.load(ctx, job.ID)
	if err != nil {
		return nil, err
	}
	s.logger.Infow("job created",
		observability.FieldJobID, created.ID,
		observability.FieldEmployerID, employer.ID,
	)
	if s.publisher != nil {
		s.publisher.JobCreated(ctx, *created)
	}
	return created, nil
}

// UpdateJob replaces the editable fields and the full skill set of a job that
// has not opened yet.
func (s *Service) UpdateJob(ctx context.Context, jobID int64, in types.JobInput) (*types.Job, error) {
	employer, err := identity.Employer(ctx, s.store)
	if err != nil {
		return nil, err
	}
	if err := validateInput(&in); err != nil {
		return nil, err
	}
	job, err := s.load(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if !eligibility.OwnsJob(employer, job) {
		return nil, apperr.Forbidden(apperr.CodeJobNotByEmployer, "job %d is not created by this employer", jobID)
	}
	if !eligibility.JobIsEditable(job, s.now()) {
		return nil, apperr.Conflict(apperr.CodeJobAlreadyOpened, "job %d is already open and can no longer be edited", jobID)
	}

	applyInput(job, in)
	job.IsActive = job.Vacancy > 0

	err = s.store.WithTx(ctx, func(tx store.Store) error {
		skillIDs, err := s.prepare(ctx, tx, employer.ID, jobID, in)
		if err != nil {
			return err
		}
		if err := tx.UpdateJob(ctx, job); err != nil {
			return apperr.Infrastructure(err, "failed to update job")
		}
		if err := tx.SetJobSkills(ctx, jobID, skillIDs); err != nil {
			return apperr.Infrastructure(err, "failed to replace job skills")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Infow("job updated", observability.FieldJobID, jobID)
	return s.load(ctx, jobID)
}

// DeleteJob soft-deletes a job owned by the calling employer. Existing
// applications are left untouched.
func (s *Service) DeleteJob(ctx context.Context, jobID int64) error {
	employer, err := identity.Employer(ctx, s.store)
	if err != nil {
		return err
	}
	job, err := s.store.GetJob(ctx, jobID)
	if err != nil {
		return apperr.Infrastructure(err, "failed to load job")
	}
	if job == nil {
		return apperr.NotFound(apperr.CodeJobNotFound, "job not found: %d", jobID)
	}
	if !eligibility.OwnsJob(employer, job) {
		return apperr.Forbidden(apperr.CodeJobNotByEmployer, "job %d is not created by this employer", jobID)
	}
	if job.IsDeleted {
		return apperr.Conflict(apperr.CodeJobAlreadyDeleted, "job %d is already deleted", jobID)
	}
	deleted, err := s.store.SoftDeleteJob(ctx, jobID)
	if err != nil {
		return apperr.Infrastructure(err, "failed to delete job")
	}
	if !deleted {
		return apperr.Conflict(apperr.CodeJobAlreadyDeleted, "job %d is already deleted", jobID)
	}
	s.logger.Infow("job deleted", observability.FieldJobID, jobID)
	return nil
}

// ReduceVacancy takes one seat from a job inside the caller's unit of work.
// A job with no seats left is left unchanged.
func (s *Service) ReduceVacancy(ctx context.Context, tx store.Jobs, jobID int64) error {
	taken, err := tx.DecrementVacancy(ctx, jobID)
	if err != nil {
		return apperr.Infrastructure(err, "failed to reduce vacancy")
	}
	if !taken {
		s.logger.Warnw("vacancy already exhausted", observability.FieldJobID, jobID)
	}
	return nil
}

// prepare runs the checks that must hold at commit time and resolves skill names.
func (s *Service) prepare(ctx context.Context, tx store.Store, employerID, jobID int64, in types.JobInput) ([]int64, error) {
	category, err := tx.GetCategory(ctx, in.CategoryID)
	if err != nil {
		return nil, apperr.Infrastructure(err, "failed to load category")
	}
	if category == nil {
		return nil, apperr.NotFound(apperr.CodeCategoryNotFound, "category not found: %d", in.CategoryID)
	}

	title := strings.TrimSpace(in.Title)
	exists, err := tx.JobTitleExists(ctx, employerID, title, jobID)
	if err != nil {
		return nil, apperr.Infrastructure(err, "failed to check job title")
	}
	if exists {
		return nil, apperr.Conflict(apperr.CodeJobTitleDuplicate, "a job titled %q already exists for this employer", title)
	}

	return resolveSkills(ctx, tx, in.Skills)
}

func resolveSkills(ctx context.Context, tx store.ReferenceData, names []string) ([]int64, error) {
	wanted := uniqueNames(names)
	if len(wanted) == 0 {
		return nil, nil
	}
	skills, err := tx.GetSkillsByNames(ctx, wanted)
	if err != nil {
		return nil, apperr.Infrastructure(err, "failed to resolve skills")
	}
	byName := make(map[string]int64, len(skills))
	for _, sk := range skills {
		byName[strings.ToLower(sk.Name)] = sk.ID
	}
	ids := make([]int64, 0, len(wanted))
	var missing []string
	for _, name := range wanted {
		id, ok := byName[strings.ToLower(name)]
		if !ok {
			missing = append(missing, name)
			continue
		}
		ids = append(ids, id)
	}
	if len(missing) > 0 {
		return nil, apperr.Validation(apperr.CodeSkillNotPresent, "skills not present: %s", strings.Join(missing, ", "))
	}
	return ids, nil
}

func uniqueNames(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		key := strings.ToLower(n)
		if n == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, n)
	}
	return out
}

// validateInput trims the free-text fields in place, then validates them.
func validateInput(in *types.JobInput) error {
	in.Title = strings.TrimSpace(in.Title)
	in.Location = strings.TrimSpace(in.Location)
	if err := validation.Struct(*in); err != nil {
		return err
	}
	if in.OpenFrom.IsZero() {
		return apperr.Validation(apperr.CodeInvalidInput, "validation error: open_from - is required")
	}
	return nil
}

func applyInput(job *types.Job, in types.JobInput) {
	job.Title = strings.TrimSpace(in.Title)
	job.Description = in.Description
	job.Location = strings.TrimSpace(in.Location)
	job.ExperienceRequired = in.ExperienceRequired
	job.CategoryID = in.CategoryID
	job.OpenFrom = types.NewDate(in.OpenFrom.Time)
	job.Vacancy = in.Vacancy
}

// load returns a non-deleted job or NotFound.
func (s *Service) load(ctx context.Context, jobID int64) (*types.Job, error) {
	job, err := s.store.GetJob(ctx, jobID)
	if err != nil {
		return nil, apperr.Infrastructure(err, "failed to load job")
	}
	if job == nil || job.IsDeleted {
		return nil, apperr.NotFound(apperr.CodeJobNotFound, "job not found: %d", jobID)
	}
	return job, nil
}
