// Package form describes the prediction form fields and turns raw input into
// an ApplicationRecord.
package form

import "loan-approval/internal/models"

const (
	SectionPersonal   = "Personal Details"
	SectionEmployment = "Employment & Housing"
	SectionLoan       = "Loan Details"
)

// Sections lists the form sections in display order.
var Sections = []string{SectionPersonal, SectionEmployment, SectionLoan}

type Kind string

const (
	KindNumber Kind = "number"
	KindSlider Kind = "slider"
	KindSelect Kind = "select"
)

// FieldSpec drives both widget rendering and server-side parsing.
// Max is ignored unless HasMax is set.
type FieldSpec struct {
	Name    string  `json:"name"`
	Column  string  `json:"column"`
	Label   string  `json:"label"`
	Section string  `json:"section"`
	Kind    Kind    `json:"kind"`
	Integer bool    `json:"integer,omitempty"`
	Min     float64 `json:"min,omitempty"`
	Max     float64 `json:"max,omitempty"`
	HasMax  bool    `json:"hasMax,omitempty"`
	Step    float64 `json:"step,omitempty"`
	Default float64 `json:"default,omitempty"`
	Help    string  `json:"help,omitempty"`
}

var Fields = []FieldSpec{
	{
		Name: "age", Column: models.ColPersonAge, Label: "Age of Applicant", Section: SectionPersonal,
		Kind: KindNumber, Integer: true, Min: 18, Max: 100, HasMax: true, Step: 1, Default: 25,
		Help: "The age of the individual applying for the loan.",
	},
	{
		Name: "gender", Column: models.ColPersonGender, Label: "Gender", Section: SectionPersonal,
		Kind: KindSelect, Help: "The gender of the applicant.",
	},
	{
		Name: "education", Column: models.ColPersonEducation, Label: "Education Level", Section: SectionPersonal,
		Kind: KindSelect, Help: "The highest education level attained by the applicant.",
	},
	{
		Name: "yearlyIncome", Column: models.ColPersonIncome, Label: "Yearly Income (₹)", Section: SectionPersonal,
		Kind: KindNumber, Integer: true, Min: 80000, Step: 10000, Default: 250000,
		Help: "Annual income. It is converted to a monthly figure before scoring.",
	},
	{
		Name: "employmentYears", Column: models.ColPersonEmpExp, Label: "Employment Experience (Years)", Section: SectionEmployment,
		Kind: KindNumber, Integer: true, Min: 0, Max: 50, HasMax: true, Step: 1, Default: 2,
		Help: "The total years of employment experience.",
	},
	{
		Name: "homeOwnership", Column: models.ColHomeOwnership, Label: "Home Ownership", Section: SectionEmployment,
		Kind: KindSelect, Help: "Whether the applicant owns a home, rents, or lives with others.",
	},
	{
		Name: "previousDefault", Column: models.ColPreviousDefaults, Label: "Previous Loan Default", Section: SectionEmployment,
		Kind: KindSelect, Help: "Whether the applicant has any prior loan defaults on record.",
	},
	{
		Name: "creditHistoryYears", Column: models.ColCreditHistory, Label: "Credit History Length (Years)", Section: SectionEmployment,
		Kind: KindNumber, Min: 0, Max: 50, HasMax: true, Step: 1, Default: 5,
		Help: "The length of the applicant's credit history in years.",
	},
	{
		Name: "loanAmount", Column: models.ColLoanAmount, Label: "Loan Amount Requested (₹)", Section: SectionLoan,
		Kind: KindNumber, Min: 50000, Step: 1000, Default: 100000,
		Help: "The amount requested. It is converted to a monthly figure before scoring.",
	},
	{
		Name: "loanIntent", Column: models.ColLoanIntent, Label: "Loan Purpose", Section: SectionLoan,
		Kind: KindSelect, Help: "The purpose of the loan.",
	},
	{
		Name: "interestRate", Column: models.ColLoanIntRate, Label: "Interest Rate (%)", Section: SectionLoan,
		Kind: KindSlider, Min: 1, Max: 30, HasMax: true, Step: 0.5, Default: 10,
		Help: "The interest rate applied to the loan.",
	},
	{
		Name: "creditScore", Column: models.ColCreditScore, Label: "Credit Score", Section: SectionLoan,
		Kind: KindSlider, Integer: true, Min: 300, Max: 850, HasMax: true, Step: 10, Default: 650,
		Help: "A numerical score representing the applicant's creditworthiness.",
	},
}

// Field returns the FieldSpec with the given form name.
func Field(name string) (FieldSpec, bool) {
	for _, f := range Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldSpec{}, false
}

// InSection returns the fields of one section in display order.
func InSection(section string) []FieldSpec {
	var out []FieldSpec
	for _, f := range Fields {
		if f.Section == section {
			out = append(out, f)
		}
	}
	return out
}
