package validation

import (
	"embed"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

const (
	// PipelineSchema describes the prediction pipeline artifact.
	PipelineSchema = "pipeline"
	// PredictionRequestSchema describes the JSON body of a prediction command.
	PredictionRequestSchema = "prediction_request"
)

//go:embed schemas/*.schema.json
var schemaFS embed.FS

var (
	compileOnce sync.Once
	compiled    map[string]*gojsonschema.Schema
	compileErr  error
)

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// Err folds the errors into a single error, or returns nil when valid.
func (r *ValidationResult) Err() error {
	if r.Valid {
		return nil
	}
	parts := make([]string, len(r.Errors))
	for i, e := range r.Errors {
		parts[i] = fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return fmt.Errorf("%s", strings.Join(parts, "; "))
}

func loadSchemas() {
	compiled = make(map[string]*gojsonschema.Schema)
	for _, name := range []string{PipelineSchema, PredictionRequestSchema} {
		raw, err := schemaFS.ReadFile("schemas/" + name + ".schema.json")
		if err != nil {
			compileErr = fmt.Errorf("read schema %s: %w", name, err)
			return
		}
		schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(raw))
		if err != nil {
			compileErr = fmt.Errorf("compile schema %s: %w", name, err)
			return
		}
		compiled[name] = schema
	}
}

func schemaFor(name string) (*gojsonschema.Schema, error) {
	compileOnce.Do(loadSchemas)
	if compileErr != nil {
		return nil, compileErr
	}
	schema, ok := compiled[name]
	if !ok {
		return nil, fmt.Errorf("unknown schema %q", name)
	}
	return schema, nil
}

// ValidateBytes validates a raw JSON document against one of the embedded schemas.
func ValidateBytes(schemaName string, doc []byte) (*ValidationResult, error) {
	return validate(schemaName, gojsonschema.NewBytesLoader(doc))
}

// ValidateGo validates an already decoded document (maps, slices, scalars).
func ValidateGo(schemaName string, doc interface{}) (*ValidationResult, error) {
	return validate(schemaName, gojsonschema.NewGoLoader(doc))
}

func validate(schemaName string, loader gojsonschema.JSONLoader) (*ValidationResult, error) {
	schema, err := schemaFor(schemaName)
	if err != nil {
		return nil, err
	}

	result, err := schema.Validate(loader)
	if err != nil {
		return nil, fmt.Errorf("validation error: %w", err)
	}

	out := &ValidationResult{Valid: result.Valid()}
	for _, desc := range result.Errors() {
		out.Errors = append(out.Errors, ValidationError{
			Field:   desc.Field(),
			Message: desc.Description(),
			Code:    strings.ToUpper(desc.Type()),
		})
	}
	return out, nil
}
