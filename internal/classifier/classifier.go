// Package classifier defines the classification contract used by the
// prediction page and the implementations that satisfy it.
package classifier

import (
	"context"

	"loan-approval/internal/models"
)

// Classifier scores a single ApplicationRecord row.
type Classifier interface {
	// Predict returns 1 for approved and 0 for rejected.
	Predict(ctx context.Context, row models.Row) (int, error)
	// PredictProba returns [p(rejected), p(approved)].
	PredictProba(ctx context.Context, row models.Row) ([]float64, error)
}

// ExplainableClassifier is a Classifier that also reports per-feature importances.
type ExplainableClassifier interface {
	Classifier
	FeatureNames() []string
	FeatureImportances() ([]float64, error)
}
