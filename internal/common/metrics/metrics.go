// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PredictionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "loan_predictions_total",
			Help: "Total number of completed predictions by outcome",
		},
		[]string{"outcome"},
	)

	PredictionFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "loan_prediction_failures_total",
			Help: "Total number of failed predictions by error code",
		},
		[]string{"error_code"},
	)

	ValidationHalts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "loan_validation_halts_total",
			Help: "Submissions stopped before the classifier was invoked",
		},
	)

	ValidationWarnings = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "loan_validation_warnings_total",
			Help: "Submissions that raised a non-fatal validation warning",
		},
	)

	PredictionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "loan_prediction_duration_seconds",
			Help:    "Duration of the classifier invocation in seconds",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14),
		},
	)

	ArtifactLoadFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "loan_artifact_load_failures_total",
			Help: "Artifact load failures at start-up",
		},
		[]string{"artifact"},
	)

	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests by route and status",
		},
		[]string{"route", "status"},
	)

	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Number of active jobs per worker",
		},
		[]string{"task_type"},
	)
)
