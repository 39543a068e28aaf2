package form

import (
	"math"
	"strconv"
	"strings"

	"loan-approval/internal/models"
)

// MonthlyIncome floor-divides a yearly income by twelve.
func MonthlyIncome(yearly int) float64 {
	return float64(floorDiv(yearly, 12))
}

// MonthlyLoanAmount floor-divides a yearly loan amount by twelve.
func MonthlyLoanAmount(amount float64) float64 {
	return math.Floor(amount / 12)
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// LoanPercentIncome returns loan/income*100 rounded to two decimals, or 0
// when income is not positive.
func LoanPercentIncome(monthlyLoan, monthlyIncome float64) float64 {
	if monthlyIncome <= 0 {
		return 0
	}
	return round2(monthlyLoan / monthlyIncome * 100)
}

// round2 rounds to the nearest representable two-decimal value, matching the
// decimal string a formatter would print.
func round2(v float64) float64 {
	r, err := strconv.ParseFloat(strconv.FormatFloat(v, 'f', 2, 64), 64)
	if err != nil {
		return v
	}
	return r
}

// BuildRecord converts form input into the record the pipeline scores.
func BuildRecord(in models.FormInput) models.ApplicationRecord {
	income := MonthlyIncome(in.YearlyIncome)
	loan := MonthlyLoanAmount(in.LoanAmount)

	return models.ApplicationRecord{
		PersonAge:              in.Age,
		PersonGender:           in.Gender,
		PersonEducation:        in.Education,
		PersonIncome:           income,
		PersonEmpExp:           in.EmploymentYears,
		PersonHomeOwnership:    in.HomeOwnership,
		LoanAmnt:               loan,
		LoanIntent:             in.LoanIntent,
		LoanIntRate:            in.InterestRate,
		LoanPercentIncome:      LoanPercentIncome(loan, income),
		CbPersonCredHistLength: in.CreditHistoryYears,
		CreditScore:            in.CreditScore,
		PreviousLoanDefaults:   in.PreviousDefault,
	}
}

// RatioCaption is shown under the loan fields before submission. The ratio is
// printed as a bare "0" when there is no income to compare against.
func RatioCaption(rec models.ApplicationRecord) string {
	ratio := "0"
	if rec.PersonIncome > 0 {
		ratio = FormatFloat(rec.LoanPercentIncome)
	}
	return "Loan amount represents " + ratio + "% of monthly income"
}

// FormatFloat prints the shortest representation that round-trips, keeping a
// trailing ".0" on whole numbers (40 prints as "40.0").
func FormatFloat(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return s
	}
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
