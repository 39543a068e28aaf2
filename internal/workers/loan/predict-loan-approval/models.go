// internal/workers/loan/predict-loan-approval/models.go
package predictloanapproval

import "encoding/json"

// Input carries the applicant's raw form values under "loanApplication".
type Input struct {
	LoanApplication json.RawMessage `json:"loanApplication"`
}

type Output struct {
	LoanDecision LoanDecision `json:"loanDecision"`
}

type LoanDecision struct {
	PredictionID      string   `json:"predictionId"`
	Outcome           string   `json:"outcome"`
	Approved          bool     `json:"approved"`
	Confidence        float64  `json:"confidence"`
	ConfidenceText    string   `json:"confidenceText"`
	Message           string   `json:"message"`
	Warnings          []string `json:"warnings"`
	MonthlyIncome     float64  `json:"monthlyIncome"`
	MonthlyLoanAmount float64  `json:"monthlyLoanAmount"`
	LoanPercentIncome float64  `json:"loanPercentIncome"`
}
