package preferences

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/jonathan/job-portal/internal/notify"
	"github.com/jonathan/job-portal/internal/observability"
	"github.com/jonathan/job-portal/internal/store"
	"github.com/jonathan/job-portal/internal/types"
	"go.uber.org/zap"
)

// Deliverer sends one message, honoring the outbound mail rate.
type Deliverer interface {
	Deliver(ctx context.Context, msg notify.Message) error
}

// Matcher finds candidates interested in a new job and mails them.
type Matcher struct {
	store  store.Preferences
	mail   Deliverer
	logger *zap.SugaredLogger
}

// NewMatcher creates a Matcher reading preferences from st.
func NewMatcher(st store.Preferences, mail Deliverer, logger *zap.SugaredLogger) *Matcher {
	return &Matcher{store: st, mail: mail, logger: observability.Component(logger, "matcher")}
}

// Matches reports whether pref is satisfied by job. Unset experience on
// either side counts as zero.
func Matches(pref types.JobPreference, job types.Job) bool {
	return pref.CategoryID == job.CategoryID &&
		pref.Location == job.Location &&
		pref.MinimumExperience() <= job.RequiredExperience()
}

// FindMatchingCandidates returns each candidate with at least one preference
// matching job, once, in preference order.
func (m *Matcher) FindMatchingCandidates(ctx context.Context, job types.Job) ([]types.Candidate, error) {
	prefs, err := m.store.ListPreferencesFor(ctx, job.CategoryID, job.Location)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load preferences")
	}
	seen := make(map[int64]bool, len(prefs))
	var out []types.Candidate
	for _, p := range prefs {
		if !Matches(p, job) || seen[p.CandidateID] {
			continue
		}
		seen[p.CandidateID] = true
		out = append(out, types.Candidate{ID: p.CandidateID, Name: p.CandidateName, Email: p.CandidateEmail})
	}
	return out, nil
}

// NotifyMatches mails each candidate once. Failures do not stop the
// remaining sends and are returned together.
func (m *Matcher) NotifyMatches(ctx context.Context, job types.Job, candidates []types.Candidate) error {
	var errs error
	for _, c := range candidates {
		msg, err := notify.JobMatch(c.Email, c.Name, notify.MailData{
			JobTitle:      job.Title,
			CompanyName:   job.CompanyName,
			Location:      job.Location,
			CandidateName: c.Name,
		})
		if err == nil {
			err = m.mail.Deliver(ctx, msg)
		}
		if err != nil {
			m.logger.Warnw("job match mail failed",
				observability.FieldJobID, job.ID,
				observability.FieldCandidateID, c.ID,
				observability.FieldError, err,
			)
			errs = errors.CombineErrors(errs, errors.Wrapf(err, "candidate %d", c.ID))
			if ctx.Err() != nil {
				return errors.CombineErrors(errs, ctx.Err())
			}
		}
	}
	return errs
}

// HandleJobCreated is the dispatcher hook for new jobs.
func (m *Matcher) HandleJobCreated(ctx context.Context, job types.Job) error {
	candidates, err := m.FindMatchingCandidates(ctx, job)
	if err != nil {
		return err
	}
	m.logger.Infow("job matched preferences",
		observability.FieldJobID, job.ID,
		observability.FieldCount, len(candidates),
	)
	return m.NotifyMatches(ctx, job, candidates)
}
