package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPipelineSchema(t *testing.T) {
	tests := []struct {
		name  string
		doc   string
		valid bool
	}{
		{
			name:  "minimal",
			doc:   `{"features":["person_age"],"coefficients":{"person_age":0.1},"intercept":-1}`,
			valid: true,
		},
		{
			name:  "missing intercept",
			doc:   `{"features":["person_age"],"coefficients":{}}`,
			valid: false,
		},
		{
			name:  "non numeric coefficient",
			doc:   `{"features":["a"],"coefficients":{"a":"high"},"intercept":0}`,
			valid: false,
		},
		{
			name:  "threshold out of range",
			doc:   `{"features":["a"],"coefficients":{},"intercept":0,"threshold":1}`,
			valid: false,
		},
		{
			name:  "unknown top level key",
			doc:   `{"features":["a"],"coefficients":{},"intercept":0,"weights":[]}`,
			valid: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := ValidateBytes(PipelineSchema, []byte(tt.doc))
			require.NoError(t, err)
			assert.Equal(t, tt.valid, res.Valid, "%+v", res.Errors)
			if tt.valid {
				assert.NoError(t, res.Err())
			} else {
				assert.Error(t, res.Err())
			}
		})
	}
}

func TestPredictionRequestSchema(t *testing.T) {
	res, err := ValidateGo(PredictionRequestSchema, map[string]interface{}{
		"age":             30,
		"previousDefault": "No",
		"loanAmount":      120000.5,
	})
	require.NoError(t, err)
	assert.True(t, res.Valid)

	res, err = ValidateBytes(PredictionRequestSchema, []byte(`{"age":"thirty","previousDefault":"Maybe"}`))
	require.NoError(t, err)
	assert.False(t, res.Valid)

	fields := make([]string, 0, len(res.Errors))
	for _, e := range res.Errors {
		fields = append(fields, e.Field)
	}
	assert.ElementsMatch(t, []string{"age", "previousDefault"}, fields)
}

func TestUnknownSchema(t *testing.T) {
	_, err := ValidateBytes("nope", []byte(`{}`))
	assert.Error(t, err)
}

func TestMalformedDocument(t *testing.T) {
	_, err := ValidateBytes(PipelineSchema, []byte(`{"features":`))
	assert.Error(t, err)
}
