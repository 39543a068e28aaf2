package errors

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loan-approval/internal/common/camunda/camundatest"
)

type recordingLogger struct {
	warns  []string
	errors []string
}

func (l *recordingLogger) Warn(msg string, _ map[string]interface{})  { l.warns = append(l.warns, msg) }
func (l *recordingLogger) Error(msg string, _ map[string]interface{}) { l.errors = append(l.errors, msg) }

func job(retries int32) entities.Job {
	return entities.Job{ActivatedJob: &pb.ActivatedJob{Key: 42, Type: "predict-loan-approval", Retries: retries}}
}

func TestHandleJobError_ThrowsNonRetryable(t *testing.T) {
	client := camundatest.NewJobClient()
	log := &recordingLogger{}

	err := NewValidationHaltError("Please enter valid positive values for all fields", "age 0")
	NewErrorHandler(log).HandleJobError(context.Background(), client, job(3), err)

	thrown := client.Thrown()
	require.Len(t, thrown, 1)
	assert.Equal(t, int64(42), thrown[0].JobKey)
	assert.Equal(t, "LOAN_INPUT_REJECTED", thrown[0].ErrorCode)
	assert.Contains(t, thrown[0].Variables, `"originalErrorCode":"VALIDATION_HALT"`)
	assert.Empty(t, client.Failed())

	assert.Equal(t, []string{"Loan application rejected by worker"}, log.warns)
	assert.Empty(t, log.errors)
}

func TestHandleJobError_FailsRetryable(t *testing.T) {
	tests := []struct {
		name        string
		jobRetries  int32
		wantRetries int32
	}{
		{name: "broker allows more", jobRetries: 5, wantRetries: 3},
		{name: "broker allows exactly", jobRetries: 3, wantRetries: 2},
		{name: "last attempt", jobRetries: 1, wantRetries: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := camundatest.NewJobClient()
			log := &recordingLogger{}

			err := NewDatabaseConnectionFailedError(stderrors.New("connection refused"))
			NewErrorHandler(log).HandleJobError(context.Background(), client, job(tt.jobRetries), err)

			failed := client.Failed()
			require.Len(t, failed, 1)
			assert.Equal(t, tt.wantRetries, failed[0].Retries)
			assert.Equal(t, "Database connection error", failed[0].ErrorMessage)
			assert.Empty(t, client.Thrown())
			assert.Equal(t, []string{"Job failed"}, log.errors)
		})
	}
}

func TestHandleJobError_NoRetriesLeftThrows(t *testing.T) {
	client := camundatest.NewJobClient()

	err := NewDatabaseConnectionFailedError(stderrors.New("connection refused"))
	NewErrorHandler(&recordingLogger{}).HandleJobError(context.Background(), client, job(0), err)

	require.Len(t, client.Thrown(), 1)
	assert.Equal(t, "DATABASE_CONNECTION_FAILED", client.Thrown()[0].ErrorCode)
}

func TestHandleJobError_LogsSendFailure(t *testing.T) {
	client := camundatest.NewJobClient()
	client.FailSends(stderrors.New("gateway unavailable"))
	log := &recordingLogger{}

	NewErrorHandler(log).HandleJobError(context.Background(), client, job(3), NewModelUnavailableError())

	assert.Equal(t, []string{"Job failed", "Failed to report job error to broker"}, log.errors)
}
