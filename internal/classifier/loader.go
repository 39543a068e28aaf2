package classifier

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"loan-approval/internal/common/validation"
)

// LoadFile reads a JSON or YAML pipeline artifact, validates it against the
// pipeline schema and builds the classifier. Artifacts that carry feature
// importances yield an *ExplainablePipeline.
func LoadFile(path string) (Classifier, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		raw, err = yamlToJSON(raw)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}

	c, err := Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Parse builds a classifier from a JSON pipeline artifact.
func Parse(raw []byte) (Classifier, error) {
	artifact, err := DecodeArtifact(raw)
	if err != nil {
		return nil, err
	}

	p, err := NewPipeline(*artifact)
	if err != nil {
		return nil, err
	}
	if len(artifact.FeatureImportances) > 0 {
		return &ExplainablePipeline{Pipeline: p, importances: artifact.FeatureImportances}, nil
	}
	return p, nil
}

// DecodeArtifact validates raw against the pipeline schema and decodes it.
func DecodeArtifact(raw []byte) (*Artifact, error) {
	res, err := validation.ValidateBytes(validation.PipelineSchema, raw)
	if err != nil {
		return nil, fmt.Errorf("invalid pipeline artifact: %w", err)
	}
	if !res.Valid {
		return nil, fmt.Errorf("invalid pipeline artifact: %w", res.Err())
	}

	var artifact Artifact
	if err := json.Unmarshal(raw, &artifact); err != nil {
		return nil, fmt.Errorf("decode pipeline artifact: %w", err)
	}
	return &artifact, nil
}

func yamlToJSON(raw []byte) ([]byte, error) {
	var doc interface{}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	out, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("convert yaml: %w", err)
	}
	return out, nil
}
