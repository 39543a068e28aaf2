// internal/models/application.go
package models

// Column names the prediction pipeline was trained on, in training order.
const (
	ColPersonAge         = "person_age"
	ColPersonGender      = "person_gender"
	ColPersonEducation   = "person_education"
	ColPersonIncome      = "person_income"
	ColPersonEmpExp      = "person_emp_exp"
	ColHomeOwnership     = "person_home_ownership"
	ColLoanAmount        = "loan_amnt"
	ColLoanIntent        = "loan_intent"
	ColLoanIntRate       = "loan_int_rate"
	ColLoanPercentIncome = "loan_percent_income"
	ColCreditHistory     = "cb_person_cred_hist_length"
	ColCreditScore       = "credit_score"
	ColPreviousDefaults  = "previous_loan_defaults_on_file"
)

// RecordColumns lists the ApplicationRecord columns in order.
var RecordColumns = []string{
	ColPersonAge,
	ColPersonGender,
	ColPersonEducation,
	ColPersonIncome,
	ColPersonEmpExp,
	ColHomeOwnership,
	ColLoanAmount,
	ColLoanIntent,
	ColLoanIntRate,
	ColLoanPercentIncome,
	ColCreditHistory,
	ColCreditScore,
	ColPreviousDefaults,
}

// CategoricalColumns are the columns whose choices come from the reference table.
var CategoricalColumns = []string{
	ColPersonGender,
	ColPersonEducation,
	ColHomeOwnership,
	ColLoanIntent,
}

// PreviousDefaultChoices is fixed and not read from the reference table.
var PreviousDefaultChoices = []string{"No", "Yes"}

// ApplicationRecord is the single-row input handed to the classifier.
// Monetary amounts are monthly.
type ApplicationRecord struct {
	PersonAge              int     `json:"person_age"`
	PersonGender           string  `json:"person_gender"`
	PersonEducation        string  `json:"person_education"`
	PersonIncome           float64 `json:"person_income"`
	PersonEmpExp           int     `json:"person_emp_exp"`
	PersonHomeOwnership    string  `json:"person_home_ownership"`
	LoanAmnt               float64 `json:"loan_amnt"`
	LoanIntent             string  `json:"loan_intent"`
	LoanIntRate            float64 `json:"loan_int_rate"`
	LoanPercentIncome      float64 `json:"loan_percent_income"`
	CbPersonCredHistLength float64 `json:"cb_person_cred_hist_length"`
	CreditScore            int     `json:"credit_score"`
	PreviousLoanDefaults   string  `json:"previous_loan_defaults_on_file"`
}

// Column is one named cell of a Row.
type Column struct {
	Name  string      `json:"name"`
	Value interface{} `json:"value"`
}

// Row is an ordered, named record as seen by a classifier.
type Row []Column

// Row returns the record as an ordered Row.
func (r ApplicationRecord) Row() Row {
	return Row{
		{ColPersonAge, r.PersonAge},
		{ColPersonGender, r.PersonGender},
		{ColPersonEducation, r.PersonEducation},
		{ColPersonIncome, r.PersonIncome},
		{ColPersonEmpExp, r.PersonEmpExp},
		{ColHomeOwnership, r.PersonHomeOwnership},
		{ColLoanAmount, r.LoanAmnt},
		{ColLoanIntent, r.LoanIntent},
		{ColLoanIntRate, r.LoanIntRate},
		{ColLoanPercentIncome, r.LoanPercentIncome},
		{ColCreditHistory, r.CbPersonCredHistLength},
		{ColCreditScore, r.CreditScore},
		{ColPreviousDefaults, r.PreviousLoanDefaults},
	}
}

// Get returns the value of the named column.
func (r Row) Get(name string) (interface{}, bool) {
	for _, c := range r {
		if c.Name == name {
			return c.Value, true
		}
	}
	return nil, false
}

// Names returns the column names in order.
func (r Row) Names() []string {
	names := make([]string, len(r))
	for i, c := range r {
		names[i] = c.Name
	}
	return names
}

// Map returns the row keyed by column name, for JSON transport.
func (r Row) Map() map[string]interface{} {
	m := make(map[string]interface{}, len(r))
	for _, c := range r {
		m[c.Name] = c.Value
	}
	return m
}
