package schemas

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validDoc = `{
  "statuses": [
    {"name": "Applied", "role": "applied"},
    {"name": "Interview", "role": "custom"}
  ],
  "skills": ["Go", "SQL"],
  "categories": ["Engineering"]
}`

func TestValidateReferenceData_Valid(t *testing.T) {
	assert.NoError(t, ValidateReferenceData([]byte(validDoc)))
}

func TestValidateReferenceData_MissingStatuses(t *testing.T) {
	err := ValidateReferenceData([]byte(`{"skills": ["Go"]}`))
	require.Error(t, err)

	validationErr, ok := err.(*ValidationError)
	require.True(t, ok, "error should be ValidationError type")
	assert.Equal(t, "(root)", validationErr.Errors[0].Field)
}

func TestValidateReferenceData_UnknownRole(t *testing.T) {
	err := ValidateReferenceData([]byte(`{"statuses": [{"name": "Offer", "role": "offered"}]}`))
	require.Error(t, err)

	validationErr, ok := err.(*ValidationError)
	require.True(t, ok, "error should be ValidationError type")
	assert.Contains(t, validationErr.Errors[0].Field, "role")
}

func TestValidateReferenceData_DuplicateSkills(t *testing.T) {
	err := ValidateReferenceData([]byte(`{"statuses": [{"name": "Applied", "role": "applied"}], "skills": ["Go", "Go"]}`))
	assert.Error(t, err)
}

func TestValidateReferenceData_Malformed(t *testing.T) {
	err := ValidateReferenceData([]byte(`{"statuses": [`))
	require.Error(t, err)

	var loadErr *SchemaLoadError
	assert.ErrorAs(t, err, &loadErr)
}

func TestValidateReferenceDataFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "reference.json")
	require.NoError(t, os.WriteFile(path, []byte(validDoc), 0o600))

	doc, err := ValidateReferenceDataFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, validDoc, string(doc))

	_, err = ValidateReferenceDataFile(filepath.Join(dir, "missing.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestValidationError_Error(t *testing.T) {
	err := &ValidationError{Errors: []FieldError{{Field: "statuses.0.role", Message: "must be one of"}}}
	assert.Contains(t, err.Error(), "1. statuses.0.role: must be one of")
}
