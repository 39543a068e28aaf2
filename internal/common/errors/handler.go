// internal/common/errors/handler.go
package errors

import (
	"context"
	"encoding/json"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

// ErrorHandler resolves a failed job: transient failures go back to the
// broker with retries, everything else is thrown as a BPMN error so the
// process model can route it.
type ErrorHandler struct {
	logger Logger
}

type Logger interface {
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// HandleJobError fails the job with retries for transient codes and throws a
// BPMN error for everything else.
func (h *ErrorHandler) HandleJobError(ctx context.Context, client worker.JobClient, job entities.Job, err error) {
	stdErr := Normalize(err)
	bpmnErr := ConvertToBPMNError(stdErr)

	h.logError(job, stdErr, bpmnErr)

	var sendErr error
	if bpmnErr.Retries > 0 && job.Retries > 0 {
		sendErr = h.failJobWithRetries(ctx, client, job, bpmnErr)
	} else {
		sendErr = h.throwBPMNError(ctx, client, job, bpmnErr)
	}
	if sendErr != nil {
		h.logger.Error("Failed to report job error to broker", map[string]interface{}{
			"jobKey":        job.Key,
			"bpmnErrorCode": bpmnErr.Code,
			"error":         sendErr,
		})
	}
}

// Normalize ensures we always have a StandardError
func Normalize(err error) *StandardError {
	if stdErr, ok := As(err); ok {
		return stdErr
	}
	return &StandardError{
		Code:      "INTERNAL_ERROR",
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

func (h *ErrorHandler) failJobWithRetries(ctx context.Context, client worker.JobClient, job entities.Job, bpmnErr *BPMNError) error {
	// never raise the broker's remaining retries
	retries := bpmnErr.Retries
	if int(job.Retries) <= retries {
		retries = int(job.Retries) - 1
	}

	cmd := client.NewFailJobCommand().
		JobKey(job.Key).
		Retries(int32(retries)).
		ErrorMessage(bpmnErr.Message)

	if vars, ok := variablesJSON(bpmnErr); ok {
		if withVars, err := cmd.VariablesFromString(vars); err == nil {
			_, err = withVars.Send(ctx)
			return err
		}
	}
	_, err := cmd.Send(ctx)
	return err
}

func (h *ErrorHandler) throwBPMNError(ctx context.Context, client worker.JobClient, job entities.Job, bpmnErr *BPMNError) error {
	cmd := client.NewThrowErrorCommand().
		JobKey(job.Key).
		ErrorCode(bpmnErr.Code).
		ErrorMessage(bpmnErr.Message)

	if vars, ok := variablesJSON(bpmnErr); ok {
		if withVars, err := cmd.VariablesFromString(vars); err == nil {
			_, err = withVars.Send(ctx)
			return err
		}
	}
	_, err := cmd.Send(ctx)
	return err
}

func variablesJSON(bpmnErr *BPMNError) (string, bool) {
	raw, err := json.Marshal(bpmnErr.ToErrorVariables())
	if err != nil {
		return "", false
	}
	return string(raw), true
}

// logError reports rejected applications as warnings; they are expected
// outcomes of the process, not faults.
func (h *ErrorHandler) logError(job entities.Job, stdErr *StandardError, bpmnErr *BPMNError) {
	fields := map[string]interface{}{
		"jobKey":           job.Key,
		"jobType":          job.Type,
		"errorCode":        string(stdErr.Code),
		"bpmnErrorCode":    bpmnErr.Code,
		"message":          bpmnErr.Message,
		"details":          stdErr.Details,
		"retries":          bpmnErr.Retries,
		"errorCategory":    GetErrorCategory(stdErr.Code),
		"workflowInstance": job.ProcessInstanceKey,
	}
	if GetErrorCategory(stdErr.Code) == "VALIDATION" {
		h.logger.Warn("Loan application rejected by worker", fields)
		return
	}
	h.logger.Error("Job failed", fields)
}
