// Package errors provides standardized error handling for the prediction
// service and its BPMN workflow integration.
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeArtifactLoadFailed           ErrorCode = "ARTIFACT_LOAD_FAILED"
	ErrCodeValidationWarning            ErrorCode = "VALIDATION_WARNING"
	ErrCodeValidationHalt               ErrorCode = "VALIDATION_HALT"
	ErrCodePredictionFailed             ErrorCode = "PREDICTION_FAILED"
	ErrCodeModelUnavailable             ErrorCode = "MODEL_UNAVAILABLE"
	ErrCodeFeatureImportanceUnavailable ErrorCode = "FEATURE_IMPORTANCE_UNAVAILABLE"
	ErrCodeInvalidInput                 ErrorCode = "INVALID_INPUT"

	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeQueryExecutionFailed     ErrorCode = "QUERY_EXECUTION_FAILED"
	ErrCodeRemoteModelTimeout       ErrorCode = "REMOTE_MODEL_TIMEOUT"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`

	cause error
}

func (e *StandardError) Error() string {
	if e.Details == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Message, e.Details)
}

func (e *StandardError) Unwrap() error {
	return e.cause
}

// WithMetadata attaches a key/value pair and returns the same error.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// As returns the StandardError in err's chain, if any.
func As(err error) (*StandardError, bool) {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr, true
	}
	return nil, false
}

// HasCode reports whether err's chain carries a StandardError with the given code.
func HasCode(err error, code ErrorCode) bool {
	stdErr, ok := As(err)
	return ok && stdErr.Code == code
}

// CodeOf returns the code of the StandardError in err's chain, or "INTERNAL_ERROR".
func CodeOf(err error) ErrorCode {
	if stdErr, ok := As(err); ok {
		return stdErr.Code
	}
	return "INTERNAL_ERROR"
}

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}

	for k, v := range e.ErrorVariables {
		vars[k] = v
	}

	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

// NewArtifactLoadFailedError wraps a failure to load the reference table or the pipeline.
func NewArtifactLoadFailedError(artifact string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeArtifactLoadFailed,
		Message:   "Error loading data or pipeline",
		Details:   fmt.Sprintf("%s: %s", artifact, err.Error()),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewValidationWarning creates a non-fatal validation message.
func NewValidationWarning(message string) *StandardError {
	return &StandardError{
		Code:      ErrCodeValidationWarning,
		Message:   message,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewValidationHaltError stops the current request before the classifier is invoked.
func NewValidationHaltError(message, details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeValidationHalt,
		Message:   message,
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewPredictionFailedError wraps any failure reported by the classifier.
func NewPredictionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodePredictionFailed,
		Message:   "Prediction failed",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewModelUnavailableError is returned when the pipeline was never loaded.
func NewModelUnavailableError() *StandardError {
	return &StandardError{
		Code:      ErrCodeModelUnavailable,
		Message:   "Prediction failed",
		Details:   "prediction pipeline is not loaded",
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewFeatureImportanceUnavailableError is logged at debug level and never shown.
func NewFeatureImportanceUnavailableError(reason string) *StandardError {
	return &StandardError{
		Code:      ErrCodeFeatureImportanceUnavailable,
		Message:   "Feature importance unavailable",
		Details:   reason,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidInputError rejects a malformed API or job payload.
func NewInvalidInputError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidInput,
		Message:   "Invalid input",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewDatabaseConnectionFailedError creates a retryable database connection error.
func NewDatabaseConnectionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatabaseConnectionFailed,
		Message:   "Database connection error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewQueryExecutionFailedError creates a retryable query execution error.
func NewQueryExecutionFailedError(queryType string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeQueryExecutionFailed,
		Message:   "Database query execution error",
		Details:   fmt.Sprintf("queryType: %s, error: %s", queryType, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewRemoteModelTimeoutError creates an error for a scoring endpoint that did not answer in time.
func NewRemoteModelTimeoutError(endpoint string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeRemoteModelTimeout,
		Message:   "Remote model timeout",
		Details:   fmt.Sprintf("endpoint: %s, error: %s", endpoint, err.Error()),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// ==========================
// 4. BPMN mapping
// ==========================

var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeArtifactLoadFailed:       "ARTIFACT_LOAD_FAILED",
	ErrCodeValidationHalt:           "LOAN_INPUT_REJECTED",
	ErrCodeInvalidInput:             "LOAN_INPUT_REJECTED",
	ErrCodePredictionFailed:         "PREDICTION_FAILED",
	ErrCodeModelUnavailable:         "PREDICTION_FAILED",
	ErrCodeRemoteModelTimeout:       "PREDICTION_FAILED",
	ErrCodeDatabaseConnectionFailed: "DATABASE_CONNECTION_FAILED",
	ErrCodeQueryExecutionFailed:     "QUERY_EXECUTION_FAILED",
}

// GetRetryCount returns how many times a job failing with code may be retried.
// Predictions are never retried.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeDatabaseConnectionFailed,
		ErrCodeQueryExecutionFailed:
		return 3
	default:
		return 0
	}
}

func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code)
	}

	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	vars := map[string]interface{}{
		"originalErrorCode": string(stdErr.Code),
		"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
	}
	for k, v := range stdErr.Metadata {
		vars[k] = v
	}

	return &BPMNError{
		Code:           bpmnCode,
		Message:        stdErr.Message,
		Details:        stdErr.Details,
		Retryable:      stdErr.Retryable,
		Retries:        retries,
		ErrorVariables: vars,
	}
}

func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "ARTIFACT"):
		return "ARTIFACT"
	case strings.Contains(codeStr, "VALIDATION") || strings.Contains(codeStr, "INVALID"):
		return "VALIDATION"
	case strings.Contains(codeStr, "PREDICTION") || strings.Contains(codeStr, "MODEL") || strings.Contains(codeStr, "FEATURE"):
		return "PREDICTION"
	case strings.Contains(codeStr, "DATABASE") || strings.Contains(codeStr, "QUERY"):
		return "DATABASE"
	default:
		return "OTHER"
	}
}
