package classifier

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"loan-approval/internal/models"
)

// Artifact is the serialized form of a scaler + one-hot + logistic pipeline.
type Artifact struct {
	Name               string               `json:"name" yaml:"name"`
	Version            string               `json:"version" yaml:"version"`
	Features           []string             `json:"features" yaml:"features"`
	Numeric            []NumericFeature     `json:"numeric,omitempty" yaml:"numeric,omitempty"`
	Categorical        []CategoricalFeature `json:"categorical,omitempty" yaml:"categorical,omitempty"`
	Coefficients       map[string]float64   `json:"coefficients" yaml:"coefficients"`
	Intercept          float64              `json:"intercept" yaml:"intercept"`
	Threshold          float64              `json:"threshold,omitempty" yaml:"threshold,omitempty"`
	FeatureImportances []float64            `json:"feature_importances,omitempty" yaml:"feature_importances,omitempty"`
}

// NumericFeature is standardized as (x - mean) / scale.
type NumericFeature struct {
	Name  string  `json:"name" yaml:"name"`
	Mean  float64 `json:"mean" yaml:"mean"`
	Scale float64 `json:"scale" yaml:"scale"`
}

// CategoricalFeature is one-hot encoded over Categories. Unknown values
// encode to all zeros.
type CategoricalFeature struct {
	Name       string   `json:"name" yaml:"name"`
	Categories []string `json:"categories" yaml:"categories"`
}

// Pipeline is a stateless logistic-regression pipeline, safe for concurrent use.
type Pipeline struct {
	name      string
	version   string
	features  []string
	numeric   map[string]NumericFeature
	onehot    map[string]map[string]bool
	coef      map[string]float64
	intercept float64
	threshold float64
}

// NewPipeline checks the artifact for internal consistency.
func NewPipeline(a Artifact) (*Pipeline, error) {
	if len(a.Features) == 0 {
		return nil, fmt.Errorf("pipeline has no features")
	}

	p := &Pipeline{
		name:      a.Name,
		version:   a.Version,
		features:  append([]string(nil), a.Features...),
		numeric:   make(map[string]NumericFeature, len(a.Numeric)),
		onehot:    make(map[string]map[string]bool, len(a.Categorical)),
		coef:      make(map[string]float64, len(a.Coefficients)),
		intercept: a.Intercept,
		threshold: a.Threshold,
	}
	if p.threshold == 0 {
		p.threshold = 0.5
	}

	known := make(map[string]bool, len(a.Features))
	for _, f := range a.Features {
		known[f] = true
	}

	for _, n := range a.Numeric {
		if !known[n.Name] {
			return nil, fmt.Errorf("numeric feature %q is not in features", n.Name)
		}
		p.numeric[n.Name] = n
	}
	for _, c := range a.Categorical {
		if !known[c.Name] {
			return nil, fmt.Errorf("categorical feature %q is not in features", c.Name)
		}
		if _, dup := p.numeric[c.Name]; dup {
			return nil, fmt.Errorf("feature %q is both numeric and categorical", c.Name)
		}
		cats := make(map[string]bool, len(c.Categories))
		for _, v := range c.Categories {
			cats[v] = true
		}
		p.onehot[c.Name] = cats
	}

	for key, w := range a.Coefficients {
		name, value, isOneHot := strings.Cut(key, "=")
		switch {
		case isOneHot:
			cats, ok := p.onehot[name]
			if !ok || !cats[value] {
				return nil, fmt.Errorf("coefficient %q does not match a categorical level", key)
			}
		default:
			if _, ok := p.numeric[name]; !ok {
				return nil, fmt.Errorf("coefficient %q does not match a numeric feature", key)
			}
		}
		p.coef[key] = w
	}

	return p, nil
}

func (p *Pipeline) Name() string    { return p.name }
func (p *Pipeline) Version() string { return p.version }

// Features returns the input columns in training order.
func (p *Pipeline) Features() []string {
	return append([]string(nil), p.features...)
}

func (p *Pipeline) Predict(ctx context.Context, row models.Row) (int, error) {
	proba, err := p.PredictProba(ctx, row)
	if err != nil {
		return 0, err
	}
	if proba[1] >= p.threshold {
		return 1, nil
	}
	return 0, nil
}

func (p *Pipeline) PredictProba(ctx context.Context, row models.Row) ([]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	z, err := p.decision(row)
	if err != nil {
		return nil, err
	}
	p1 := sigmoid(z)
	return []float64{1 - p1, p1}, nil
}

func (p *Pipeline) decision(row models.Row) (float64, error) {
	var missing []string
	for _, f := range p.features {
		if _, ok := row.Get(f); !ok {
			missing = append(missing, f)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return 0, fmt.Errorf("columns are missing: %s", strings.Join(missing, ", "))
	}

	z := p.intercept
	for _, f := range p.features {
		v, _ := row.Get(f)

		if n, ok := p.numeric[f]; ok {
			x, err := toFloat(v)
			if err != nil {
				return 0, fmt.Errorf("column %s: %w", f, err)
			}
			scale := n.Scale
			if scale == 0 {
				scale = 1
			}
			z += p.coef[f] * (x - n.Mean) / scale
			continue
		}

		if cats, ok := p.onehot[f]; ok {
			level := fmt.Sprint(v)
			if cats[level] {
				z += p.coef[f+"="+level]
			}
		}
	}
	return z, nil
}

func toFloat(v interface{}) (float64, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case float32:
		return float64(x), nil
	case int:
		return float64(x), nil
	case int64:
		return float64(x), nil
	case int32:
		return float64(x), nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, fmt.Errorf("could not convert string to float: %q", x)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("unsupported value type %T", v)
	}
}

func sigmoid(z float64) float64 {
	if z >= 0 {
		return 1 / (1 + math.Exp(-z))
	}
	e := math.Exp(z)
	return e / (1 + e)
}

// ExplainablePipeline is a Pipeline whose artifact carries feature importances.
type ExplainablePipeline struct {
	*Pipeline
	importances []float64
}

func (p *ExplainablePipeline) FeatureNames() []string {
	return p.Features()
}

func (p *ExplainablePipeline) FeatureImportances() ([]float64, error) {
	if len(p.importances) != len(p.features) {
		return nil, fmt.Errorf("have %d importances for %d features", len(p.importances), len(p.features))
	}
	return append([]float64(nil), p.importances...), nil
}
