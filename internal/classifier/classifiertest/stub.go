// Package classifiertest provides classifier doubles for tests.
package classifiertest

import (
	"context"
	"sync"

	"loan-approval/internal/models"
)

// Stub returns fixed answers and records how often it was called.
type Stub struct {
	Label    int
	Proba    []float64
	PredErr  error
	ProbaErr error

	mu         sync.Mutex
	predicts   int
	probas     int
	LastRecord models.Row
}

func (s *Stub) Predict(_ context.Context, row models.Row) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.predicts++
	s.LastRecord = row
	return s.Label, s.PredErr
}

func (s *Stub) PredictProba(_ context.Context, row models.Row) ([]float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.probas++
	return s.Proba, s.ProbaErr
}

// Calls returns the number of Predict and PredictProba calls.
func (s *Stub) Calls() (predict, proba int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.predicts, s.probas
}

// Explainable adds feature importances to a Stub.
type Explainable struct {
	*Stub
	Names       []string
	Importances []float64
	Err         error
	Panic       bool
}

func (e *Explainable) FeatureNames() []string {
	return e.Names
}

func (e *Explainable) FeatureImportances() ([]float64, error) {
	if e.Panic {
		panic("importances exploded")
	}
	return e.Importances, e.Err
}
