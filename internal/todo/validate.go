package todo

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

// Schema is the built-in JSON Schema for tasks files. Due timestamps are
// shaped like ISO 8601 but carry no zone suffix, so the schema checks the
// pattern rather than the date-time format assertion.
const Schema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "title": "Tasks file",
  "type": "array",
  "items": {
    "type": "object",
    "additionalProperties": false,
    "required": ["name", "due"],
    "properties": {
      "id": {"type": "string", "minLength": 1},
      "name": {"type": "string", "minLength": 1, "pattern": "\\S"},
      "due": {"type": "string", "pattern": "^[0-9]{4}-[0-9]{2}-[0-9]{2}[T ][0-9]{2}:[0-9]{2}"}
    }
  }
}
`

// ValidationOptions controls validation behavior.
type ValidationOptions struct {
	// SchemaPath overrides the built-in schema. If the file is missing or
	// unusable, validation falls back to minimal checks with a warning.
	SchemaPath string
}

// ValidationResult contains validation results.
type ValidationResult struct {
	Valid      bool
	Errors     []error
	Warnings   []string
	UsedSchema bool // true if JSON Schema validation was performed
}

// ValidateFile reads and validates the tasks file at path.
func ValidateFile(path string, opts ValidationOptions) (*ValidationResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read tasks file: %w", err)
	}
	return Validate(data, opts), nil
}

// Validate checks raw tasks-file content. Schema validation runs against
// the built-in schema, or the file named by opts.SchemaPath when set; if a
// configured schema file cannot be used, the minimal structural checks run
// instead.
func Validate(data []byte, opts ValidationOptions) *ValidationResult {
	result := &ValidationResult{
		Valid:    true,
		Errors:   make([]error, 0),
		Warnings: make([]string, 0),
	}

	schemaResult := validateWithSchema(data, opts.SchemaPath)
	result.UsedSchema = schemaResult.UsedSchema
	if len(schemaResult.Warnings) > 0 {
		result.Warnings = append(result.Warnings, schemaResult.Warnings...)
	}
	if schemaResult.UsedSchema {
		if !schemaResult.Valid {
			result.Valid = false
			result.Errors = append(result.Errors, schemaResult.Errors...)
		}
		return result
	}

	// Schema validation not available, fall back to minimal checks
	result.Warnings = append(result.Warnings, "JSON Schema validation not available, using minimal checks")
	validateMinimal(data, result)
	return result
}

// validateMinimal performs the structural checks Load enforces, collecting
// every finding instead of stopping at the first.
func validateMinimal(data []byte, result *ValidationResult) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, &MalformedError{
			Err: fmt.Errorf("parse tasks file: %w", err),
		})
		return
	}

	for i, entry := range raw {
		var t Task
		if err := json.Unmarshal(entry, &t); err != nil {
			result.Valid = false
			result.Errors = append(result.Errors, &MalformedError{
				Path: fmt.Sprintf("[%d]", i),
				Err:  err,
			})
			continue
		}
		if err := validateTask(&t, i); err != nil {
			result.Valid = false
			result.Errors = append(result.Errors, err)
		}
	}
}

// validateWithSchema attempts JSON Schema validation.
func validateWithSchema(data []byte, schemaPath string) *ValidationResult {
	result := &ValidationResult{
		Valid:      true,
		Errors:     make([]error, 0),
		Warnings:   make([]string, 0),
		UsedSchema: false,
	}

	compiler := jsonschema.NewCompiler()
	compiler.AssertFormat = true

	var schema *jsonschema.Schema
	if schemaPath != "" {
		absPath, err := filepath.Abs(schemaPath)
		if err != nil {
			result.Warnings = append(result.Warnings, fmt.Sprintf("invalid schema path: %v", err))
			return result
		}
		if _, err := os.Stat(absPath); err != nil {
			if os.IsNotExist(err) {
				result.Warnings = append(result.Warnings, fmt.Sprintf("schema file not found: %s", absPath))
			} else {
				result.Warnings = append(result.Warnings, fmt.Sprintf("failed to read schema file: %v", err))
			}
			return result
		}
		schema, err = compiler.Compile(absPath)
		if err != nil {
			result.Warnings = append(result.Warnings, fmt.Sprintf("invalid schema file: %v", err))
			return result
		}
	} else {
		if err := compiler.AddResource("tasks.schema.json", strings.NewReader(Schema)); err != nil {
			result.Warnings = append(result.Warnings, fmt.Sprintf("built-in schema unavailable: %v", err))
			return result
		}
		var err error
		schema, err = compiler.Compile("tasks.schema.json")
		if err != nil {
			result.Warnings = append(result.Warnings, fmt.Sprintf("built-in schema unavailable: %v", err))
			return result
		}
	}

	result.UsedSchema = true

	var doc interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, &MalformedError{
			Err: fmt.Errorf("parse tasks file: %w", err),
		})
		return result
	}

	if err := schema.Validate(doc); err != nil {
		result.Valid = false
		appendSchemaErrors(result, err)
	}

	return result
}

func appendSchemaErrors(result *ValidationResult, err error) {
	if err == nil {
		return
	}

	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		result.Errors = append(result.Errors, err)
		return
	}

	collectSchemaErrors(result, ve)
}

func collectSchemaErrors(result *ValidationResult, err *jsonschema.ValidationError) {
	if err == nil {
		return
	}

	if len(err.Causes) == 0 {
		result.Errors = append(result.Errors, &MalformedError{
			Path: jsonPointerToPath(err.InstanceLocation),
			Err:  fmt.Errorf("%s", err.Message),
		})
		return
	}

	for _, cause := range err.Causes {
		collectSchemaErrors(result, cause)
	}
}

func jsonPointerToPath(ptr string) string {
	ptr = strings.TrimPrefix(ptr, "#")
	ptr = strings.TrimPrefix(ptr, "/")
	if ptr == "" {
		return ""
	}

	parts := strings.Split(ptr, "/")
	path := ""
	for _, part := range parts {
		part = strings.ReplaceAll(part, "~1", "/")
		part = strings.ReplaceAll(part, "~0", "~")
		if part == "" {
			continue
		}
		if idx, err := strconv.Atoi(part); err == nil {
			path += fmt.Sprintf("[%d]", idx)
			continue
		}
		if path == "" {
			path = part
		} else {
			path += "." + part
		}
	}

	return path
}
