// internal/models/prediction.go
package models

const (
	OutcomeApproved = "Approved"
	OutcomeRejected = "Rejected"
)

// FormInput holds the values as the applicant entered them. Income and loan
// amount are yearly here and become monthly in the ApplicationRecord.
type FormInput struct {
	Age                int     `json:"age"`
	Gender             string  `json:"gender"`
	Education          string  `json:"education"`
	YearlyIncome       int     `json:"yearlyIncome"`
	EmploymentYears    int     `json:"employmentYears"`
	HomeOwnership      string  `json:"homeOwnership"`
	PreviousDefault    string  `json:"previousDefault"`
	CreditHistoryYears float64 `json:"creditHistoryYears"`
	LoanAmount         float64 `json:"loanAmount"`
	LoanIntent         string  `json:"loanIntent"`
	InterestRate       float64 `json:"interestRate"`
	CreditScore        int     `json:"creditScore"`
}

// PredictionResult is the rendered outcome of one classifier invocation.
type PredictionResult struct {
	ID                 string              `json:"id"`
	Label              int                 `json:"label"`
	Outcome            string              `json:"outcome"`
	Approved           bool                `json:"approved"`
	Probabilities      []float64           `json:"probabilities"`
	Confidence         float64             `json:"confidence"`
	ConfidenceText     string              `json:"confidenceText"`
	Message            string              `json:"message"`
	Warnings           []string            `json:"warnings,omitempty"`
	Record             ApplicationRecord   `json:"record"`
	FeatureImportances []FeatureImportance `json:"featureImportances,omitempty"`
}

// FeatureImportance pairs a pipeline feature with its importance weight.
type FeatureImportance struct {
	Feature    string  `json:"feature"`
	Importance float64 `json:"importance"`
}
