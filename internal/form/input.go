package form

import (
	"fmt"
	"math"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"loan-approval/internal/common/errors"
	"loan-approval/internal/models"
	"loan-approval/internal/reference"
)

// maxExactNumber is the largest magnitude a float64 holds without losing
// integer precision. Larger entries are not treated as numbers.
const maxExactNumber = 1 << 53

// FieldErrors maps a form field name to a message.
type FieldErrors map[string]string

func (fe FieldErrors) Error() string {
	names := make([]string, 0, len(fe))
	for name := range fe {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = name + ": " + fe[name]
	}
	return strings.Join(parts, "; ")
}

// Halt converts non-empty field errors into a ValidationHalt error.
func (fe FieldErrors) Halt() error {
	if len(fe) == 0 {
		return nil
	}
	return errors.NewValidationHaltError("Please correct the highlighted fields", fe.Error()).
		WithMetadata("fields", map[string]string(fe))
}

// Defaults returns the initial form state. Selects start on their first choice.
func Defaults(src reference.CategorySource) models.FormInput {
	in := models.FormInput{}
	for _, f := range Fields {
		if f.Kind == KindSelect {
			setString(&in, f.Name, firstChoice(src, f.Column))
			continue
		}
		setNumber(&in, f.Name, f.Default)
	}
	return in
}

func firstChoice(src reference.CategorySource, column string) string {
	var choices []string
	if src != nil {
		choices = src.ChoicesFor(column)
	} else if column == models.ColPreviousDefaults {
		choices = models.PreviousDefaultChoices
	}
	if len(choices) == 0 {
		return ""
	}
	return choices[0]
}

// Parse reads submitted form values on top of the defaults. Missing or blank
// values keep their default; unparsable numbers are reported per field.
func Parse(values url.Values, src reference.CategorySource) (models.FormInput, FieldErrors) {
	in := Defaults(src)
	errs := FieldErrors{}

	for _, f := range Fields {
		raw := strings.TrimSpace(values.Get(f.Name))
		if raw == "" {
			continue
		}
		if f.Kind == KindSelect {
			setString(&in, f.Name, raw)
			continue
		}

		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(v) || math.Abs(v) > maxExactNumber {
			errs[f.Name] = "must be a number"
			continue
		}
		if f.Integer && v != math.Trunc(v) {
			errs[f.Name] = "must be a whole number"
			continue
		}
		setNumber(&in, f.Name, v)
	}
	return in, errs
}

// Check applies the widget bounds and, when choices are known, choice membership.
func Check(in models.FormInput, src reference.CategorySource) FieldErrors {
	errs := FieldErrors{}
	for _, f := range Fields {
		if f.Kind == KindSelect {
			var choices []string
			if src != nil {
				choices = src.ChoicesFor(f.Column)
			}
			if len(choices) > 0 && !contains(choices, Value(in, f.Name)) {
				errs[f.Name] = "is not one of the available choices"
			}
			continue
		}

		v := number(in, f.Name)
		if v < f.Min {
			errs[f.Name] = "must be at least " + FormatBound(f.Min)
		} else if f.HasMax && v > f.Max {
			errs[f.Name] = "must be at most " + FormatBound(f.Max)
		}
	}
	return errs
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

// FormatBound prints a widget bound without trailing zeros.
func FormatBound(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Value returns the current value of a field formatted for a form control.
func Value(in models.FormInput, name string) string {
	switch name {
	case "gender":
		return in.Gender
	case "education":
		return in.Education
	case "homeOwnership":
		return in.HomeOwnership
	case "previousDefault":
		return in.PreviousDefault
	case "loanIntent":
		return in.LoanIntent
	}
	if f, ok := Field(name); ok && f.Integer {
		return strconv.Itoa(int(number(in, name)))
	}
	return strconv.FormatFloat(number(in, name), 'f', -1, 64)
}

func number(in models.FormInput, name string) float64 {
	switch name {
	case "age":
		return float64(in.Age)
	case "yearlyIncome":
		return float64(in.YearlyIncome)
	case "employmentYears":
		return float64(in.EmploymentYears)
	case "creditHistoryYears":
		return in.CreditHistoryYears
	case "loanAmount":
		return in.LoanAmount
	case "interestRate":
		return in.InterestRate
	case "creditScore":
		return float64(in.CreditScore)
	default:
		panic(fmt.Sprintf("form: %q is not a numeric field", name))
	}
}

func setNumber(in *models.FormInput, name string, v float64) {
	switch name {
	case "age":
		in.Age = int(v)
	case "yearlyIncome":
		in.YearlyIncome = int(v)
	case "employmentYears":
		in.EmploymentYears = int(v)
	case "creditHistoryYears":
		in.CreditHistoryYears = v
	case "loanAmount":
		in.LoanAmount = v
	case "interestRate":
		in.InterestRate = v
	case "creditScore":
		in.CreditScore = int(v)
	}
}

func setString(in *models.FormInput, name, v string) {
	switch name {
	case "gender":
		in.Gender = v
	case "education":
		in.Education = v
	case "homeOwnership":
		in.HomeOwnership = v
	case "previousDefault":
		in.PreviousDefault = v
	case "loanIntent":
		in.LoanIntent = v
	}
}
