// Package applications implements the application workflow: applying to a
// job, employer status changes and candidate withdrawal.
package applications

import (
	"context"
	"io"

	"github.com/jonathan/job-portal/internal/apperr"
	"github.com/jonathan/job-portal/internal/eligibility"
	"github.com/jonathan/job-portal/internal/identity"
	"github.com/jonathan/job-portal/internal/notify"
	"github.com/jonathan/job-portal/internal/observability"
	"github.com/jonathan/job-portal/internal/store"
	"github.com/jonathan/job-portal/internal/types"
	"github.com/jonathan/job-portal/internal/validation"
	"go.uber.org/zap"
)

// DefaultMaxAttachmentBytes caps each uploaded document.
const DefaultMaxAttachmentBytes int64 = 5 << 20

// FileStore keeps uploaded documents.
type FileStore interface {
	Save(ctx context.Context, name string, r io.Reader) (string, error)
	Open(ctx context.Context, ref string) (io.ReadCloser, error)
	Remove(ctx context.Context, ref string) error
}

// Notifier queues outbound mail.
type Notifier interface {
	Notify(ctx context.Context, msg notify.Message)
}

// VacancyReducer takes a seat from a job inside a unit of work.
type VacancyReducer interface {
	ReduceVacancy(ctx context.Context, tx store.Jobs, jobID int64) error
}

// Attachment is an uploaded document.
type Attachment struct {
	Name    string
	Size    int64
	Content io.Reader
}

// ApplyRequest is a candidate's submission with optional documents.
type ApplyRequest struct {
	types.ApplicationInput
	CoverLetter *Attachment
	Resume      *Attachment
}

// Service is the application state machine.
type Service struct {
	store     store.Store
	files     FileStore
	vacancies VacancyReducer
	notifier  Notifier
	logger    *zap.SugaredLogger
	maxBytes  int64
}

// Option configures a Service.
type Option func(*Service)

// WithMaxAttachmentBytes overrides the per-document size cap.
func WithMaxAttachmentBytes(n int64) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxBytes = n
		}
	}
}

// NewService creates the application state machine. notifier may be nil.
func NewService(st store.Store, files FileStore, vacancies VacancyReducer, notifier Notifier, logger *zap.SugaredLogger, opts ...Option) *Service {
	s := &Service{
		store:     st,
		files:     files,
		vacancies: vacancies,
		notifier:  notifier,
		logger:    observability.Component(logger, "applications"),
		maxBytes:  DefaultMaxAttachmentBytes,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Apply submits the calling candidate's application to a job. Documents are
// stored before the row is written and removed again if the write fails.
func (s *Service) Apply(ctx context.Context, jobID int64, req ApplyRequest) (*types.Application, error) {
	candidate, err := identity.Candidate(ctx, s.store)
	if err != nil {
		return nil, err
	}
	if err := s.validate(req); err != nil {
		return nil, err
	}

	job, err := s.store.GetJob(ctx, jobID)
	if err != nil {
		return nil, apperr.Infrastructure(err, "failed to load job")
	}
	if err := s.checkEligible(ctx, s.store, candidate, job, req.Experience); err != nil {
		return nil, err
	}
	initial, err := s.statusByRole(ctx, types.StatusRoleApplied)
	if err != nil {
		return nil, err
	}

	app := &types.Application{
		CandidateID: candidate.ID,
		JobID:       job.ID,
		Experience:  req.Experience,
		Note:        req.Note,
		StatusID:    initial.ID,
	}
	stored, err := s.saveAttachments(ctx, app, req)
	if err != nil {
		return nil, err
	}

	err = s.store.WithTx(ctx, func(tx store.Store) error {
		if err := s.checkEligible(ctx, tx, candidate, job, req.Experience); err != nil {
			return err
		}
		if err := tx.CreateApplication(ctx, app); err != nil {
			return apperr.Infrastructure(err, "failed to create application")
		}
		return nil
	})
	if err != nil {
		s.removeAttachments(ctx, stored)
		return nil, err
	}

	created, err := s.load(ctx, app.ID)
	if err != nil {
		return nil, err
	}
	s.logger.Infow("application submitted",
		observability.FieldApplicationID, created.ID,
		observability.FieldJobID, job.ID,
		observability.FieldCandidateID, candidate.ID,
	)
	s.notifyEmployer(ctx, job, created)
	return created, nil
}

func (s *Service) validate(req ApplyRequest) error {
	if err := validation.Struct(req.ApplicationInput); err != nil {
		return err
	}
	if a := req.CoverLetter; a != nil {
		if err := validation.Attachment("cover_letter", a.Name, a.Size, s.maxBytes); err != nil {
			return err
		}
	}
	if a := req.Resume; a != nil {
		if err := validation.Attachment("resume", a.Name, a.Size, s.maxBytes); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) checkEligible(ctx context.Context, st store.Applications, candidate *types.Candidate, job *types.Job, declared int) error {
	var existing []types.Application
	if job != nil {
		var err error
		existing, err = st.ApplicationsFor(ctx, candidate.ID, job.ID)
		if err != nil {
			return apperr.Infrastructure(err, "failed to load applications")
		}
	}
	return eligibility.CanApply(candidate, job, existing, declared).Err(job)
}

func (s *Service) saveAttachments(ctx context.Context, app *types.Application, req ApplyRequest) ([]string, error) {
	var stored []string
	save := func(a *Attachment) (string, error) {
		if a == nil {
			return "", nil
		}
		ref, err := s.files.Save(ctx, a.Name, a.Content)
		if err != nil {
			return "", apperr.Infrastructure(err, "failed to store %s", a.Name)
		}
		stored = append(stored, ref)
		return ref, nil
	}

	var err error
	if app.CoverLetterName, err = save(req.CoverLetter); err != nil {
		s.removeAttachments(ctx, stored)
		return nil, err
	}
	if app.ResumeName, err = save(req.Resume); err != nil {
		s.removeAttachments(ctx, stored)
		return nil, err
	}
	return stored, nil
}

func (s *Service) removeAttachments(ctx context.Context, refs []string) {
	for _, ref := range refs {
		if err := s.files.Remove(ctx, ref); err != nil {
			s.logger.Warnw("failed to remove stored attachment", "ref", ref, observability.FieldError, err)
		}
	}
}

// ChangeStatus moves an application on one of the calling employer's jobs to
// another status. A move to a hired status takes one vacancy from the job in
// the same unit of work.
func (s *Service) ChangeStatus(ctx context.Context, applicationID, statusID int64) (*types.Application, error) {
	employer, err := identity.Employer(ctx, s.store)
	if err != nil {
		return nil, err
	}
	app, err := s.load(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	job, err := s.store.GetJob(ctx, app.JobID)
	if err != nil {
		return nil, apperr.Infrastructure(err, "failed to load job")
	}
	if !eligibility.OwnsJob(employer, job) {
		return nil, apperr.Forbidden(apperr.CodeJobNotByEmployer, "application %d is not for a job of this employer", applicationID)
	}
	target, err := s.status(ctx, statusID)
	if err != nil {
		return nil, err
	}
	current := types.Status{ID: app.StatusID, Name: app.StatusName, Role: app.StatusRole}
	if err := CheckTransition(current, *target); err != nil {
		return nil, err
	}

	err = s.store.WithTx(ctx, func(tx store.Store) error {
		moved, err := tx.CompareAndSetStatus(ctx, app.ID, current.ID, target.ID)
		if err != nil {
			return apperr.Infrastructure(err, "failed to update application status")
		}
		if !moved {
			return apperr.Conflict(apperr.CodeStatusChangedConcurrently, "application %d changed status concurrently", app.ID)
		}
		if target.Role == types.StatusRoleHired {
			return s.vacancies.ReduceVacancy(ctx, tx, job.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	updated, err := s.load(ctx, app.ID)
	if err != nil {
		return nil, err
	}
	s.logger.Infow("application status changed",
		observability.FieldApplicationID, app.ID,
		observability.FieldStatusID, target.ID,
		"from", current.Name,
		"to", target.Name,
	)
	s.notifyCandidate(ctx, updated)
	return updated, nil
}

// Withdraw moves the calling candidate's own application to the withdrawn
// status.
func (s *Service) Withdraw(ctx context.Context, applicationID int64) (*types.Application, error) {
	candidate, err := identity.Candidate(ctx, s.store)
	if err != nil {
		return nil, err
	}
	app, err := s.load(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if !eligibility.OwnsApplication(candidate, app) {
		return nil, apperr.Forbidden(apperr.CodeApplicationNotByCandidate, "application %d was not submitted by this candidate", applicationID)
	}
	current := types.Status{ID: app.StatusID, Name: app.StatusName, Role: app.StatusRole}
	if err := CanWithdraw(current); err != nil {
		return nil, err
	}
	withdrawn, err := s.statusByRole(ctx, types.StatusRoleWithdrawn)
	if err != nil {
		return nil, err
	}

	moved, err := s.store.CompareAndSetStatus(ctx, app.ID, current.ID, withdrawn.ID)
	if err != nil {
		return nil, apperr.Infrastructure(err, "failed to withdraw application")
	}
	if !moved {
		return nil, apperr.Conflict(apperr.CodeStatusChangedConcurrently, "application %d changed status concurrently", app.ID)
	}
	s.logger.Infow("application withdrawn",
		observability.FieldApplicationID, app.ID,
		observability.FieldCandidateID, candidate.ID,
	)
	return s.load(ctx, app.ID)
}

func (s *Service) notifyEmployer(ctx context.Context, job *types.Job, app *types.Application) {
	if s.notifier == nil {
		return
	}
	employer, err := s.store.GetEmployer(ctx, job.EmployerID)
	if err != nil || employer == nil {
		s.logger.Warnw("employer unavailable for notification", observability.FieldJobID, job.ID, observability.FieldError, err)
		return
	}
	msg, err := notify.ApplicationReceived(employer.Email, employer.Name, notify.MailData{
		JobTitle:      job.Title,
		CompanyName:   employer.CompanyName,
		CandidateName: app.CandidateName,
	})
	if err != nil {
		s.logger.Errorw("failed to render mail", observability.FieldError, err)
		return
	}
	s.notifier.Notify(ctx, msg)
}

func (s *Service) notifyCandidate(ctx context.Context, app *types.Application) {
	if s.notifier == nil {
		return
	}
	msg, err := notify.StatusUpdated(app.CandidateEmail, app.CandidateName, notify.MailData{
		JobTitle:    app.JobTitle,
		CompanyName: app.CompanyName,
		StatusName:  app.StatusName,
	})
	if err != nil {
		s.logger.Errorw("failed to render mail", observability.FieldError, err)
		return
	}
	s.notifier.Notify(ctx, msg)
}

func (s *Service) load(ctx context.Context, id int64) (*types.Application, error) {
	app, err := s.store.GetApplication(ctx, id)
	if err != nil {
		return nil, apperr.Infrastructure(err, "failed to load application")
	}
	if app == nil {
		return nil, apperr.NotFound(apperr.CodeApplicationNotFound, "application not found: %d", id)
	}
	return app, nil
}

func (s *Service) status(ctx context.Context, id int64) (*types.Status, error) {
	st, err := s.store.GetStatus(ctx, id)
	if err != nil {
		return nil, apperr.Infrastructure(err, "failed to load status")
	}
	if st == nil {
		return nil, apperr.NotFound(apperr.CodeStatusNotFound, "status not found: %d", id)
	}
	return st, nil
}

func (s *Service) statusByRole(ctx context.Context, role types.StatusRole) (*types.Status, error) {
	st, err := s.store.GetStatusByRole(ctx, role)
	if err != nil {
		return nil, apperr.Infrastructure(err, "failed to load status")
	}
	if st == nil {
		return nil, apperr.NotFound(apperr.CodeStatusNotFound, "no status configured for role %s", role)
	}
	return st, nil
}
