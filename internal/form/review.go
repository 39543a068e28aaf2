package form

import (
	"math"
	"strconv"

	"github.com/dustin/go-humanize"

	"loan-approval/internal/models"
)

// ReviewRow is one line of the "Review Input Details" table.
type ReviewRow struct {
	Column string `json:"column"`
	Value  string `json:"value"`
}

// ReviewTable formats rec column by column in record order.
func ReviewTable(rec models.ApplicationRecord) []ReviewRow {
	row := rec.Row()
	out := make([]ReviewRow, 0, len(row))
	for _, c := range row {
		out = append(out, ReviewRow{Column: c.Name, Value: formatReviewValue(c.Name, c.Value)})
	}
	return out
}

func formatReviewValue(column string, v interface{}) string {
	switch column {
	case models.ColPersonIncome, models.ColLoanAmount:
		return FormatMoney(v.(float64))
	case models.ColLoanIntRate, models.ColLoanPercentIncome:
		return strconv.FormatFloat(v.(float64), 'f', 1, 64) + "%"
	}

	switch val := v.(type) {
	case int:
		return strconv.Itoa(val)
	case float64:
		return FormatFloat(val)
	case string:
		return val
	default:
		return ""
	}
}

// FormatMoney prints v rounded to a whole number with thousands separators,
// followed by the rupee sign.
func FormatMoney(v float64) string {
	r := math.Round(v)
	if r == 0 {
		r = 0 // drop the sign of -0
	}
	return humanize.Commaf(r) + " ₹"
}
