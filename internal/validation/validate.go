// Package validation checks request payloads against their struct tags and
// reports the first failure as a caller-facing validation error.
package validation

import (
	"path/filepath"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"github.com/jonathan/job-portal/internal/apperr"
)

var (
	once     sync.Once
	instance *validator.Validate
)

var (
	lowerRe   = regexp.MustCompile(`[a-z]`)
	upperRe   = regexp.MustCompile(`[A-Z]`)
	digitRe   = regexp.MustCompile(`\d`)
	specialRe = regexp.MustCompile(`[@$!%*?&]`)
	allowedRe = regexp.MustCompile(`^[A-Za-z\d@$!%*?&]{8,}$`)
)

// strongPassword requires lower, upper, digit and one of @$!%*?&.
func strongPassword(fl validator.FieldLevel) bool {
	pw := fl.Field().String()
	return allowedRe.MatchString(pw) && lowerRe.MatchString(pw) && upperRe.MatchString(pw) &&
		digitRe.MatchString(pw) && specialRe.MatchString(pw)
}

// Validator returns the shared validator with portal rules registered.
func Validator() *validator.Validate {
	once.Do(func() {
		instance = validator.New(validator.WithRequiredStructEnabled())
		instance.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})
		_ = instance.RegisterValidation("strongpassword", strongPassword)
	})
	return instance
}

// Struct validates v and converts the first failure to apperr.Validation.
func Struct(v any) error {
	err := Validator().Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		first := verrs[0]
		return apperr.Validation(apperr.CodeInvalidInput, "validation error: %s - %s", first.Field(), describe(first))
	}
	return apperr.Validation(apperr.CodeInvalidInput, "validation error: %v", err)
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		return "must be at most " + fe.Param()
	case "min":
		return "must be at least " + fe.Param()
	case "gt":
		return "must be greater than " + fe.Param()
	case "email":
		return "invalid email format"
	case "strongpassword":
		return "must contain at least 8 characters, including uppercase, lowercase, numbers and special characters"
	}
	return fe.Tag()
}

// Allowed attachment extensions.
var attachmentExtensions = map[string]bool{".pdf": true, ".doc": true, ".docx": true}

// Attachment checks an uploaded document's name and size.
func Attachment(field, name string, size, maxBytes int64) error {
	if name == "" {
		return apperr.Validation(apperr.CodeInvalidInput, "validation error: %s - is required", field)
	}
	if !attachmentExtensions[strings.ToLower(filepath.Ext(name))] {
		return apperr.Validation(apperr.CodeInvalidInput, "validation error: %s - only PDF, DOC and DOCX files are allowed", field)
	}
	if size > maxBytes {
		return apperr.Validation(apperr.CodeInvalidInput, "validation error: %s - file size exceeds %d bytes", field, maxBytes)
	}
	return nil
}
