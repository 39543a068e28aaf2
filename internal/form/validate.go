package form

import (
	"loan-approval/internal/common/errors"
	"loan-approval/internal/models"
	"loan-approval/internal/reference"
)

const (
	nonPositiveMessage = "Please enter valid positive values for all fields"
	highLoanMessage    = "Loan amount seems unusually high compared to income"

	// highLoanMultiplier compares the monthly loan against monthly income.
	highLoanMultiplier = 50
)

// Guard blocks prediction when age, income or loan amount is not positive.
func Guard(rec models.ApplicationRecord) error {
	if rec.PersonAge <= 0 || rec.PersonIncome <= 0 || rec.LoanAmnt <= 0 {
		return errors.NewValidationHaltError(nonPositiveMessage, "age, income and loan amount must be positive")
	}
	return nil
}

// Warnings returns non-blocking sanity messages for rec.
func Warnings(rec models.ApplicationRecord) []string {
	var out []string
	if rec.LoanAmnt > rec.PersonIncome*highLoanMultiplier {
		out = append(out, highLoanMessage)
	}
	return out
}

// Validate runs the guard, then the field bounds. A nil error means the
// record may be scored.
func Validate(in models.FormInput, rec models.ApplicationRecord, src reference.CategorySource) error {
	if err := Guard(rec); err != nil {
		return err
	}
	return Check(in, src).Halt()
}
