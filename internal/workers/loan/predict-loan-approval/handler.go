// internal/workers/loan/predict-loan-approval/handler.go
package predictloanapproval

import (
	"context"
	"encoding/json"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"loan-approval/internal/common/errors"
	"loan-approval/internal/common/logger"
	"loan-approval/internal/common/metrics"
	"loan-approval/internal/common/validation"
	"loan-approval/internal/form"
	"loan-approval/internal/models"
	"loan-approval/internal/prediction"
	"loan-approval/internal/reference"
)

const (
	TaskType = "predict-loan-approval"
)

type Handler struct {
	config       *Config
	svc          *prediction.Service
	choices      reference.CategorySource
	errorHandler *errors.ErrorHandler
	logger       logger.Logger
}

func NewHandler(config *Config, svc *prediction.Service, choices reference.CategorySource, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		svc:          svc,
		choices:      choices,
		errorHandler: errors.NewErrorHandler(log),
		logger:       log,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) error {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	input, err := h.Decode([]byte(job.Variables))
	if err != nil {
		h.failJob(ctx, client, job, err)
		return err
	}

	output, err := h.Execute(ctx, input)
	if err != nil {
		h.failJob(ctx, client, job, err)
		return err
	}

	return h.completeJob(ctx, client, job, output)
}

// Decode validates the job's loanApplication against the request schema and
// lays it over the form defaults.
func (h *Handler) Decode(variables []byte) (models.FormInput, error) {
	var input Input
	if err := json.Unmarshal(variables, &input); err != nil {
		return models.FormInput{}, errors.NewInvalidInputError("parse variables: " + err.Error())
	}
	if len(input.LoanApplication) == 0 || string(input.LoanApplication) == "null" {
		return models.FormInput{}, errors.NewInvalidInputError("loanApplication is required")
	}

	res, err := validation.ValidateBytes(validation.PredictionRequestSchema, input.LoanApplication)
	if err != nil {
		return models.FormInput{}, errors.NewInvalidInputError(err.Error())
	}
	if !res.Valid {
		return models.FormInput{}, errors.NewInvalidInputError(res.Err().Error()).
			WithMetadata("validationErrors", res.Errors)
	}

	in := form.Defaults(h.choices)
	if err := json.Unmarshal(input.LoanApplication, &in); err != nil {
		return models.FormInput{}, errors.NewInvalidInputError(err.Error())
	}
	return in, nil
}

func (h *Handler) Execute(ctx context.Context, in models.FormInput) (*Output, error) {
	result, err := h.svc.Submit(ctx, in)
	if err != nil {
		return nil, err
	}

	warnings := result.Warnings
	if warnings == nil {
		warnings = []string{}
	}

	return &Output{
		LoanDecision: LoanDecision{
			PredictionID:      result.ID,
			Outcome:           result.Outcome,
			Approved:          result.Approved,
			Confidence:        result.Confidence,
			ConfidenceText:    result.ConfidenceText,
			Message:           result.Message,
			Warnings:          warnings,
			MonthlyIncome:     result.Record.PersonIncome,
			MonthlyLoanAmount: result.Record.LoanAmnt,
			LoanPercentIncome: result.Record.LoanPercentIncome,
		},
	}, nil
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output) error {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err,
		})
		return err
	}
	if _, err := cmd.Send(ctx); err != nil {
		h.logger.Error("failed to complete job", map[string]interface{}{
			"error": err,
		})
		return err
	}

	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	h.logger.Info("job completed", map[string]interface{}{
		"jobKey":  job.Key,
		"outcome": output.LoanDecision.Outcome,
	})
	return nil
}

func (h *Handler) failJob(ctx context.Context, client worker.JobClient, job entities.Job, err error) {
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(errors.CodeOf(err))).Inc()
	h.errorHandler.HandleJobError(ctx, client, job, err)
}
