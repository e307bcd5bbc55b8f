// Package eligibility holds the side-effect free checks shared by the job and
// application workflows.
package eligibility

import (
	"time"

	"github.com/jonathan/job-portal/internal/apperr"
	"github.com/jonathan/job-portal/internal/types"
)

// Verdict is the outcome of CanApply.
type Verdict int

const (
	Eligible Verdict = iota
	JobNotOpen
	AlreadyApplied
	InsufficientExperience
)

func (v Verdict) String() string {
	switch v {
	case Eligible:
		return "eligible"
	case JobNotOpen:
		return "job_not_open"
	case AlreadyApplied:
		return "already_applied"
	case InsufficientExperience:
		return "insufficient_experience"
	}
	return "unknown"
}

// Err converts a rejecting verdict to its caller-facing error. Eligible yields nil.
func (v Verdict) Err(job *types.Job) error {
	switch v {
	case JobNotOpen:
		return apperr.NotFound(apperr.CodeJobNotOpen, "job not found or not active or deleted")
	case AlreadyApplied:
		return apperr.Conflict(apperr.CodeAlreadyApplied, "already applied for this job")
	case InsufficientExperience:
		return apperr.Forbidden(apperr.CodeNotEnoughExperience,
			"not enough experience: job requires %d years", job.RequiredExperience())
	}
	return nil
}

// IsOpen reports whether job accepts applications.
func IsOpen(job *types.Job) bool {
	return job != nil && !job.IsDeleted && job.IsActive
}

// HasActiveApplication reports whether any of existing is not withdrawn.
func HasActiveApplication(existing []types.Application) bool {
	for _, a := range existing {
		if a.StatusRole != types.StatusRoleWithdrawn {
			return true
		}
	}
	return false
}

// CanApply decides whether candidate may apply to job. existing holds the
// candidate's prior applications for the job.
func CanApply(candidate *types.Candidate, job *types.Job, existing []types.Application, declaredExperience int) Verdict {
	if !IsOpen(job) {
		return JobNotOpen
	}
	mine := existing[:0:0]
	for _, a := range existing {
		if candidate != nil && a.CandidateID == candidate.ID && a.JobID == job.ID {
			mine = append(mine, a)
		}
	}
	if HasActiveApplication(mine) {
		return AlreadyApplied
	}
	if job.ExperienceRequired != nil && declaredExperience < *job.ExperienceRequired {
		return InsufficientExperience
	}
	return Eligible
}

// OwnsJob reports whether employer authored job.
func OwnsJob(employer *types.Employer, job *types.Job) bool {
	return employer != nil && job != nil && job.EmployerID == employer.ID
}

// OwnsApplication reports whether candidate submitted application.
func OwnsApplication(candidate *types.Candidate, application *types.Application) bool {
	return candidate != nil && application != nil && application.CandidateID == candidate.ID
}

// JobIsEditable reports whether job still opens strictly after today.
func JobIsEditable(job *types.Job, today time.Time) bool {
	return job != nil && job.OpenFrom.After(types.NewDate(today))
}
