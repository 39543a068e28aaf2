package web

import (
	"encoding/json"
	"io"
	"net/http"

	"loan-approval/internal/common/errors"
	"loan-approval/internal/common/validation"
	"loan-approval/internal/form"
	"loan-approval/internal/models"
)

const maxRequestBody = 64 << 10

type choicesResponse struct {
	Choices map[string][]string `json:"choices"`
	Fields  []form.FieldSpec    `json:"fields"`
	Ready   bool                `json:"ready"`
	Error   string              `json:"error,omitempty"`
}

type predictionResponse struct {
	*models.PredictionResult
	Review  []form.ReviewRow `json:"review"`
	Caption string           `json:"caption"`
}

type errorResponse struct {
	Error *errors.StandardError `json:"error"`
}

func (s *Server) handleChoices(w http.ResponseWriter, r *http.Request) {
	resp := choicesResponse{
		Choices: s.artifacts.Choices.All(),
		Fields:  form.Fields,
		Ready:   s.artifacts.Ready(),
	}
	if s.artifacts.Err != nil {
		resp.Error = s.artifacts.Err.Error()
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCreatePrediction(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBody+1))
	if err != nil {
		s.writeError(w, errors.NewInvalidInputError("read body: "+err.Error()))
		return
	}
	if len(body) > maxRequestBody {
		s.writeError(w, errors.NewInvalidInputError("request body too large"))
		return
	}

	res, err := validation.ValidateBytes(validation.PredictionRequestSchema, body)
	if err != nil {
		s.writeError(w, errors.NewInvalidInputError(err.Error()))
		return
	}
	if !res.Valid {
		s.writeError(w, errors.NewInvalidInputError(res.Err().Error()).WithMetadata("errors", res.Errors))
		return
	}

	in := form.Defaults(s.artifacts.Choices)
	if err := json.Unmarshal(body, &in); err != nil {
		s.writeError(w, errors.NewInvalidInputError(err.Error()))
		return
	}

	result, err := s.svc.Submit(r.Context(), in)
	if err != nil {
		s.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, predictionResponse{
		PredictionResult: result,
		Review:           form.ReviewTable(result.Record),
		Caption:          form.RatioCaption(result.Record),
	})
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	stdErr := errors.Normalize(err)
	writeJSON(w, statusFor(stdErr.Code), errorResponse{Error: stdErr})
}

func statusFor(code errors.ErrorCode) int {
	switch code {
	case errors.ErrCodeInvalidInput:
		return http.StatusBadRequest
	case errors.ErrCodeValidationHalt:
		return http.StatusUnprocessableEntity
	case errors.ErrCodeModelUnavailable:
		return http.StatusServiceUnavailable
	case errors.ErrCodeRemoteModelTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
