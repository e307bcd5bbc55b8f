// Package schemas validates JSON documents against the bundled JSON Schemas.
package schemas

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed reference_data.schema.json
var referenceDataSchema string

// ReferenceDataSchema returns the schema for seed documents.
func ReferenceDataSchema() string {
	return referenceDataSchema
}

// ValidationError represents a schema validation error with field paths
type ValidationError struct {
	Errors []FieldError
}

// FieldError represents a single validation error at a specific field
type FieldError struct {
	Field   string
	Message string
}

// SchemaLoadError represents errors loading or parsing the schema itself
type SchemaLoadError struct {
	Path    string
	Message string
	Cause   error
}

func (e *SchemaLoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to load schema %s: %s: %v", e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("failed to load schema %s: %s", e.Path, e.Message)
}

func (e *SchemaLoadError) Unwrap() error {
	return e.Cause
}

func (ve *ValidationError) Error() string {
	var sb strings.Builder
	sb.WriteString("validation failed:\n")
	for i, err := range ve.Errors {
		sb.WriteString(fmt.Sprintf("  %d. %s: %s\n", i+1, err.Field, err.Message))
	}
	return sb.String()
}

// ValidateReferenceData checks a seed document against the reference data schema.
func ValidateReferenceData(doc []byte) error {
	return validate("reference_data.schema.json",
		gojsonschema.NewStringLoader(referenceDataSchema),
		gojsonschema.NewBytesLoader(doc))
}

// ValidateReferenceDataFile reads and checks a seed document on disk.
func ValidateReferenceDataFile(path string) ([]byte, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve JSON path: %w", err)
	}
	doc, err := os.ReadFile(abs)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("JSON file not found: %s", abs)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", abs, err)
	}
	if err := ValidateReferenceData(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func validate(schemaName string, schema, document gojsonschema.JSONLoader) error {
	result, err := gojsonschema.Validate(schema, document)
	if err != nil {
		return &SchemaLoadError{
			Path:    schemaName,
			Message: "schema validation failed during load",
			Cause:   err,
		}
	}
	if result.Valid() {
		return nil
	}

	validationErr := &ValidationError{
		Errors: make([]FieldError, 0, len(result.Errors())),
	}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		validationErr.Errors = append(validationErr.Errors, FieldError{
			Field:   field,
			Message: desc.Description(),
		})
	}
	return validationErr
}
