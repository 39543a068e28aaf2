package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const (
	shippedModel     = "../../../artifacts/loan_approval_pipeline.json"
	shippedReference = "../../../artifacts/reference.csv"
)

func TestInspectModel(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, inspectModel(&buf, shippedModel))

	var got modelSummary
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	assert.Len(t, got.Features, 13)
	assert.True(t, got.Explainable)
	assert.Len(t, got.Importances, 13)

	assert.Error(t, inspectModel(&buf, "../../../internal/classifier/testdata/invalid.json"))
}

func TestListChoices(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, listChoices(&buf, "csv", shippedReference, ""))

	var got map[string][]string
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, []string{"No", "Yes"}, got["previous_loan_defaults_on_file"])
	assert.NotEmpty(t, got["loan_intent"])
	assert.NotContains(t, got["person_home_ownership"], "")

	assert.Error(t, listChoices(&buf, "oracle", shippedReference, ""))
}

func TestScore(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, score(&buf, shippedModel, []byte(`{"age": 35, "creditScore": 720}`)))

	var got scoreOutput
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	assert.Contains(t, []string{"Approved", "Rejected"}, got.Outcome)
	assert.Regexp(t, `^\d+\.\d%$`, got.Confidence)
	assert.Equal(t, 35, got.Record["person_age"])
	assert.Equal(t, 720, got.Record["credit_score"])

	err := score(&buf, shippedModel, []byte(`{"age": 0}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Please enter valid positive values for all fields")
}

func TestHelp(t *testing.T) {
	var buf bytes.Buffer
	help(&buf)

	out := buf.String()
	assert.Contains(t, out, "Usage: artifact-inspector <command> [flags]")
	for _, cmd := range []string{"model", "choices", "score", "help"} {
		assert.Contains(t, out, "\n  "+cmd+" ")
	}
	assert.True(t, strings.HasSuffix(out, "about a command.\n"), "help ends with exactly one newline")
	assert.False(t, strings.HasSuffix(out, "\n\n"))
}
