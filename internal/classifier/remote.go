package classifier

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	commonerrors "loan-approval/internal/common/errors"
	commonhttp "loan-approval/internal/common/http"
	"loan-approval/internal/models"
)

// Remote calls a scoring service that exposes POST /predict and
// POST /predict_proba for a batch of records.
type Remote struct {
	client   *commonhttp.Client
	endpoint string
}

type remoteRequest struct {
	Columns []string        `json:"columns"`
	Data    [][]interface{} `json:"data"`
}

type predictResponse struct {
	Predictions []int `json:"predictions"`
}

type probaResponse struct {
	Probabilities [][]float64 `json:"probabilities"`
}

func NewRemote(client *commonhttp.Client, endpoint string) *Remote {
	return &Remote{client: client, endpoint: strings.TrimRight(endpoint, "/")}
}

func (r *Remote) Predict(ctx context.Context, row models.Row) (int, error) {
	var resp predictResponse
	if err := r.post(ctx, "/predict", row, &resp); err != nil {
		return 0, err
	}
	if len(resp.Predictions) != 1 {
		return 0, fmt.Errorf("remote model returned %d predictions for 1 record", len(resp.Predictions))
	}
	return resp.Predictions[0], nil
}

func (r *Remote) PredictProba(ctx context.Context, row models.Row) ([]float64, error) {
	var resp probaResponse
	if err := r.post(ctx, "/predict_proba", row, &resp); err != nil {
		return nil, err
	}
	if len(resp.Probabilities) != 1 {
		return nil, fmt.Errorf("remote model returned %d probability rows for 1 record", len(resp.Probabilities))
	}
	return resp.Probabilities[0], nil
}

func (r *Remote) post(ctx context.Context, path string, row models.Row, out interface{}) error {
	values := make([]interface{}, len(row))
	for i, c := range row {
		values[i] = c.Value
	}
	req := remoteRequest{Columns: row.Names(), Data: [][]interface{}{values}}

	url := r.endpoint + path
	if err := r.client.PostJSON(ctx, url, req, out); err != nil {
		if isTimeout(err) {
			return commonerrors.NewRemoteModelTimeoutError(url, err)
		}
		return fmt.Errorf("remote model %s: %w", path, err)
	}
	return nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
