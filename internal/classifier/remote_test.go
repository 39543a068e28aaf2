package classifier

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	commonerrors "loan-approval/internal/common/errors"
	commonhttp "loan-approval/internal/common/http"
	"loan-approval/internal/models"
)

func TestRemote_PredictAndProba(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req remoteRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, []string{models.ColPersonIncome, models.ColLoanIntent}, req.Columns)
		require.Len(t, req.Data, 1)

		switch r.URL.Path {
		case "/v1/predict":
			_ = json.NewEncoder(w).Encode(predictResponse{Predictions: []int{1}})
		case "/v1/predict_proba":
			_ = json.NewEncoder(w).Encode(probaResponse{Probabilities: [][]float64{{0.2, 0.8}}})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	remote := NewRemote(commonhttp.NewClient(time.Second), srv.URL+"/v1/")
	r := row(1200.0, "VENTURE")

	label, err := remote.Predict(context.Background(), r)
	require.NoError(t, err)
	assert.Equal(t, 1, label)

	proba, err := remote.PredictProba(context.Background(), r)
	require.NoError(t, err)
	assert.Equal(t, []float64{0.2, 0.8}, proba)

	_, explainable := interface{}(remote).(ExplainableClassifier)
	assert.False(t, explainable)
}

func TestRemote_Errors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/predict":
			_ = json.NewEncoder(w).Encode(predictResponse{Predictions: []int{}})
		case "/predict_proba":
			http.Error(w, "model not loaded", http.StatusServiceUnavailable)
		}
	}))
	defer srv.Close()

	remote := NewRemote(commonhttp.NewClient(time.Second), srv.URL)

	_, err := remote.Predict(context.Background(), row(1.0, "x"))
	assert.ErrorContains(t, err, "0 predictions")

	_, err = remote.PredictProba(context.Background(), row(1.0, "x"))
	assert.ErrorContains(t, err, "model not loaded")
}

func TestRemote_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	remote := NewRemote(commonhttp.NewClient(20*time.Millisecond), srv.URL)

	_, err := remote.Predict(context.Background(), row(1.0, "x"))
	require.Error(t, err)
	assert.True(t, commonerrors.HasCode(err, commonerrors.ErrCodeRemoteModelTimeout))
}
