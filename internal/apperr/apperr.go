// Package apperr defines the caller-facing error taxonomy shared by the portal services.
package apperr

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// Kind classifies a failure for the boundary.
type Kind int

const (
	KindInfrastructure Kind = iota
	KindUnauthenticated
	KindNotFound
	KindConflict
	KindForbidden
	KindValidation
)

func (k Kind) String() string {
	switch k {
	case KindUnauthenticated:
		return "unauthenticated"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindForbidden:
		return "forbidden"
	case KindValidation:
		return "validation"
	default:
		return "infrastructure"
	}
}

// Stable machine codes carried in responses.
const (
	CodeUnauthenticated           = "unauthenticated"
	CodeInvalidCredentials        = "invalid_credentials"
	CodeEmailAlreadyRegistered    = "email_already_registered"
	CodeRoleNotPermitted          = "role_not_permitted"
	CodeEmployerNotFound          = "employer_not_found"
	CodeCandidateNotFound         = "candidate_not_found"
	CodeJobNotFound               = "job_not_found"
	CodeJobNotOpen                = "job_not_found_or_not_applicable"
	CodeJobTitleDuplicate         = "job_title_duplicate"
	CodeJobAlreadyOpened          = "job_already_opened"
	CodeJobAlreadyDeleted         = "job_already_deleted"
	CodeJobNotByEmployer          = "job_not_by_employer"
	CodeSkillNotPresent           = "skill_not_present"
	CodeSkillNotFound             = "skill_not_found"
	CodeSkillExists               = "skill_already_exists"
	CodeCategoryNotFound          = "category_not_found"
	CodeCategoryExists            = "category_already_exists"
	CodeCategoryInUse             = "category_in_use"
	CodeStatusNotFound            = "status_not_found"
	CodeStatusExists              = "status_already_exists"
	CodeApplicationNotFound       = "application_not_found"
	CodeAlreadyApplied            = "already_applied"
	CodeNotEnoughExperience       = "not_enough_experience"
	CodeApplicationNotByCandidate = "application_not_by_candidate"
	CodeStatusChangeNotPermitted  = "status_change_not_permitted"
	CodeApplicationFinalized      = "application_finalized"
	CodeAttachmentNotFound        = "attachment_not_found"
	CodeInvalidStatusTransition   = "invalid_status_transition"
	CodeStatusChangedConcurrently = "status_changed_concurrently"
	CodePreferenceNotFound        = "preference_not_found"
	CodePreferenceAlreadyExists   = "preference_already_exists"
	CodePreferenceNotByCandidate  = "preference_not_belongs_to_candidate"
	CodeInvalidInput              = "invalid_input"
	CodeInternal                  = "internal_error"
)

// Error is a typed, caller-facing failure.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

func newError(kind Kind, code, format string, args ...any) *Error {
	return &Error{Kind: kind, Code: code, Message: fmt.Sprintf(format, args...)}
}

// Unauthenticated reports a missing or invalid identity.
func Unauthenticated(code, format string, args ...any) *Error {
	return newError(KindUnauthenticated, code, format, args...)
}

// NotFound reports a missing or soft-deleted entity.
func NotFound(code, format string, args ...any) *Error {
	return newError(KindNotFound, code, format, args...)
}

// Conflict reports a uniqueness or state invariant violation.
func Conflict(code, format string, args ...any) *Error {
	return newError(KindConflict, code, format, args...)
}

// Forbidden reports an authenticated caller lacking entitlement.
func Forbidden(code, format string, args ...any) *Error {
	return newError(KindForbidden, code, format, args...)
}

// Validation reports caller data that cannot be processed.
func Validation(code, format string, args ...any) *Error {
	return newError(KindValidation, code, format, args...)
}

// Infrastructure wraps a store, mail or file failure.
func Infrastructure(err error, format string, args ...any) *Error {
	return &Error{
		Kind:    KindInfrastructure,
		Code:    CodeInternal,
		Message: fmt.Sprintf(format, args...),
		cause:   errors.WithStack(err),
	}
}

// KindOf returns the kind of the first typed error in err's chain.
// Untyped errors are infrastructure failures.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInfrastructure
}

// CodeOf returns the machine code of err, or CodeInternal when untyped.
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}

// Is reports whether err carries the given code.
func Is(err error, code string) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == code
}

// Public returns the message safe to show a caller.
func Public(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Kind != KindInfrastructure {
		return e.Message
	}
	return "internal server error"
}
