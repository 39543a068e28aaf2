// Package prediction validates a submitted application, invokes the
// classifier and shapes the outcome for display.
package prediction

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"loan-approval/internal/classifier"
	"loan-approval/internal/common/errors"
	"loan-approval/internal/common/logger"
	"loan-approval/internal/common/metrics"
	"loan-approval/internal/common/observability"
	"loan-approval/internal/form"
	"loan-approval/internal/models"
	"loan-approval/internal/reference"
)

const (
	LabelRejected = 0
	LabelApproved = 1
)

// Service is safe for concurrent use; it holds no per-request state.
type Service struct {
	classifier classifier.Classifier
	choices    reference.CategorySource
	obs        *observability.Observability
	logger     logger.Logger
}

// NewService accepts a nil classifier; every prediction then fails with
// MODEL_UNAVAILABLE while validation keeps working.
func NewService(clf classifier.Classifier, choices reference.CategorySource, obs *observability.Observability, log logger.Logger) *Service {
	return &Service{
		classifier: clf,
		choices:    choices,
		obs:        obs,
		logger:     log.WithFields(map[string]interface{}{"component": "prediction"}),
	}
}

// Available reports whether a classifier was loaded.
func (s *Service) Available() bool {
	return s.classifier != nil
}

// Prepare builds the record for in and runs the guard and field checks.
// Warnings are returned even when err is nil.
func (s *Service) Prepare(in models.FormInput) (models.ApplicationRecord, []string, error) {
	rec := form.BuildRecord(in)

	if err := form.Validate(in, rec, s.choices); err != nil {
		metrics.ValidationHalts.Inc()
		s.logger.Info("submission halted", map[string]interface{}{
			"error": err,
		})
		return rec, nil, err
	}

	warnings := form.Warnings(rec)
	for _, w := range warnings {
		metrics.ValidationWarnings.Inc()
		s.logger.WithError(errors.NewValidationWarning(w)).Warn("validation warning", map[string]interface{}{
			"loanAmount":        rec.LoanAmnt,
			"monthlyIncome":     rec.PersonIncome,
			"loanPercentIncome": rec.LoanPercentIncome,
		})
	}
	return rec, warnings, nil
}

// Submit validates in and, if it passes, scores it. A ValidationHalt never
// reaches the classifier.
func (s *Service) Submit(ctx context.Context, in models.FormInput) (*models.PredictionResult, error) {
	rec, warnings, err := s.Prepare(in)
	if err != nil {
		return nil, err
	}

	result, err := s.Predict(ctx, rec)
	if err != nil {
		return nil, err
	}
	result.Warnings = warnings
	return result, nil
}

// Predict invokes PredictProba and Predict on rec. Either failing fails both.
func (s *Service) Predict(ctx context.Context, rec models.ApplicationRecord) (*models.PredictionResult, error) {
	ctx, span := s.obs.StartSpan(ctx, "prediction.predict")
	defer span.End()

	if s.classifier == nil {
		err := errors.NewModelUnavailableError()
		s.recordFailure(ctx, err, 0)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	start := time.Now()
	row := rec.Row()

	proba, err := s.classifier.PredictProba(ctx, row)
	if err == nil {
		var label int
		label, err = s.classifier.Predict(ctx, row)
		if err == nil {
			return s.success(ctx, span, rec, label, proba, time.Since(start))
		}
	}

	stdErr := normalize(err)
	s.recordFailure(ctx, stdErr, time.Since(start))
	span.RecordError(err)
	span.SetStatus(codes.Error, stdErr.Error())
	return nil, stdErr
}

func (s *Service) success(ctx context.Context, span trace.Span, rec models.ApplicationRecord, label int, proba []float64, elapsed time.Duration) (*models.PredictionResult, error) {
	if label != LabelRejected && label != LabelApproved {
		return s.invalidOutput(ctx, span, fmt.Errorf("classifier returned label %d, want 0 or 1", label), elapsed)
	}
	if len(proba) != 2 {
		return s.invalidOutput(ctx, span, fmt.Errorf("classifier returned %d probabilities, want 2", len(proba)), elapsed)
	}

	result := &models.PredictionResult{
		ID:            uuid.New().String(),
		Label:         label,
		Approved:      label == LabelApproved,
		Probabilities: append([]float64(nil), proba...),
		Confidence:    proba[label] * 100,
		Record:        rec,
	}
	result.ConfidenceText = fmt.Sprintf("%.1f%%", result.Confidence)
	if result.Approved {
		result.Outcome = models.OutcomeApproved
		result.Message = "✅ Loan Approved (Confidence: " + result.ConfidenceText + ")"
	} else {
		result.Outcome = models.OutcomeRejected
		result.Message = "❌ Loan Rejected (Confidence: " + result.ConfidenceText + ")"
	}
	result.FeatureImportances = s.featureImportances()

	metrics.PredictionsTotal.WithLabelValues(result.Outcome).Inc()
	metrics.PredictionDuration.Observe(elapsed.Seconds())
	s.obs.RecordPrediction(ctx, result.Outcome)
	s.obs.RecordPredictionDuration(ctx, elapsed, result.Outcome)

	span.SetAttributes(
		attribute.String("prediction.outcome", result.Outcome),
		attribute.Float64("prediction.confidence", result.Confidence),
	)

	s.logger.Info("prediction completed", map[string]interface{}{
		"predictionId": result.ID,
		"outcome":      result.Outcome,
		"confidence":   result.ConfidenceText,
		"durationMs":   elapsed.Milliseconds(),
	})
	return result, nil
}

func (s *Service) invalidOutput(ctx context.Context, span trace.Span, cause error, elapsed time.Duration) (*models.PredictionResult, error) {
	err := errors.NewPredictionFailedError(cause)
	s.recordFailure(ctx, err, elapsed)
	span.SetStatus(codes.Error, err.Error())
	return nil, err
}

func (s *Service) recordFailure(ctx context.Context, err *errors.StandardError, elapsed time.Duration) {
	metrics.PredictionFailures.WithLabelValues(string(err.Code)).Inc()
	s.obs.RecordPrediction(ctx, "failed")
	if elapsed > 0 {
		s.obs.RecordPredictionDuration(ctx, elapsed, "failed")
	}
	s.logger.Error("prediction failed", map[string]interface{}{
		"errorCode": err.Code,
		"error":     err,
	})
}

// normalize keeps classifier errors that already carry a code (remote
// timeouts) and wraps everything else as PREDICTION_FAILED.
func normalize(err error) *errors.StandardError {
	if stdErr, ok := errors.As(err); ok {
		return stdErr
	}
	return errors.NewPredictionFailedError(err)
}

// featureImportances never fails: any problem is logged at debug level and
// the chart is simply omitted.
func (s *Service) featureImportances() (out []models.FeatureImportance) {
	explainable, ok := s.classifier.(classifier.ExplainableClassifier)
	if !ok {
		return nil
	}

	defer func() {
		if r := recover(); r != nil {
			s.debugImportance(fmt.Sprintf("panic: %v", r))
			out = nil
		}
	}()

	values, err := explainable.FeatureImportances()
	if err != nil {
		s.debugImportance(err.Error())
		return nil
	}
	names := explainable.FeatureNames()
	if len(values) == 0 || len(values) != len(names) {
		s.debugImportance(fmt.Sprintf("%d importances for %d features", len(values), len(names)))
		return nil
	}

	out = make([]models.FeatureImportance, len(values))
	for i := range values {
		out[i] = models.FeatureImportance{Feature: names[i], Importance: values[i]}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Importance > out[j].Importance
	})
	return out
}

func (s *Service) debugImportance(reason string) {
	err := errors.NewFeatureImportanceUnavailableError(reason)
	s.logger.Debug("feature importance skipped", map[string]interface{}{
		"error": err,
	})
}

// FailureMessage is the text shown to the user for a failed prediction.
func FailureMessage(err error) string {
	if stdErr, ok := errors.As(err); ok && stdErr.Details != "" {
		return "❌ Prediction failed: " + stdErr.Details
	}
	return "❌ Prediction failed: " + err.Error()
}
