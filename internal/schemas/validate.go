// Package schemas provides JSON Schema validation for model responses.
// Every model response must validate against its target schema before being
// decoded; a response that fails validation is a hard error, never a partial
// success.
package schemas

import (
	"embed"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed *.schema.json
var schemaFiles embed.FS

// Schema file names for the two model response shapes.
const (
	ContactDraftSchema     = "contact_draft.schema.json"
	DuplicateVerdictSchema = "duplicate_verdict.schema.json"
)

// compiled caches compiled schemas by filename
var (
	compiled   = make(map[string]*gojsonschema.Schema)
	compiledMu sync.Mutex
)

// ValidationError represents a schema validation error with field paths
type ValidationError struct {
	Schema string
	Errors []FieldError
}

// FieldError represents a single validation error at a specific field
type FieldError struct {
	Field   string
	Message string
}

func (ve *ValidationError) Error() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("response does not match %s:\n", ve.Schema))
	for i, err := range ve.Errors {
		sb.WriteString(fmt.Sprintf("  %d. %s: %s\n", i+1, err.Field, err.Message))
	}
	return sb.String()
}

// SchemaLoadError represents errors loading or parsing the schema itself
type SchemaLoadError struct {
	Schema  string
	Message string
	Cause   error
}

func (e *SchemaLoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to load schema %s: %s: %v", e.Schema, e.Message, e.Cause)
	}
	return fmt.Sprintf("failed to load schema %s: %s", e.Schema, e.Message)
}

func (e *SchemaLoadError) Unwrap() error {
	return e.Cause
}

// ValidateDraftJSON validates a JSON document against the ContactDraft schema.
func ValidateDraftJSON(jsonText string) error {
	return validate(ContactDraftSchema, jsonText)
}

// ValidateVerdictJSON validates a JSON document against the DuplicateVerdict schema.
func ValidateVerdictJSON(jsonText string) error {
	return validate(DuplicateVerdictSchema, jsonText)
}

// validate checks a JSON document against a named embedded schema.
func validate(schemaName, jsonText string) error {
	schema, err := loadSchema(schemaName)
	if err != nil {
		return err
	}

	result, err := schema.Validate(gojsonschema.NewStringLoader(jsonText))
	if err != nil {
		// The document itself could not be parsed as JSON.
		return &ValidationError{
			Schema: schemaName,
			Errors: []FieldError{{Field: "(document)", Message: err.Error()}},
		}
	}

	if result.Valid() {
		return nil
	}

	ve := &ValidationError{Schema: schemaName}
	for _, resultErr := range result.Errors() {
		ve.Errors = append(ve.Errors, FieldError{
			Field:   resultErr.Field(),
			Message: resultErr.Description(),
		})
	}
	return ve
}

// loadSchema compiles and caches an embedded schema.
func loadSchema(name string) (*gojsonschema.Schema, error) {
	compiledMu.Lock()
	defer compiledMu.Unlock()

	if schema, ok := compiled[name]; ok {
		return schema, nil
	}

	data, err := schemaFiles.ReadFile(name)
	if err != nil {
		return nil, &SchemaLoadError{Schema: name, Message: "schema file not embedded", Cause: err}
	}

	schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, &SchemaLoadError{Schema: name, Message: "schema compilation failed", Cause: err}
	}

	compiled[name] = schema
	return schema, nil
}
