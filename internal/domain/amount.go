package domain

import "github.com/shopspring/decimal"

const (
	// AmountScale is the number of fractional digits stored for money.
	AmountScale = 2
	// amountIntDigits matches the decimal(14,2) columns.
	amountIntDigits = 12
)

var maxAmount = decimal.New(1, amountIntDigits).Sub(decimal.New(1, -AmountScale))

// CheckAmount returns a description of what is wrong with amount, or "" if it can be
// moved: positive, at most two fractional digits and within the column range.
func CheckAmount(amount decimal.Decimal) string {
	switch {
	case !amount.IsPositive():
		return "amount must be a positive number"
	case !amount.Equal(amount.Truncate(AmountScale)):
		return "amount must have at most 2 decimal places"
	case amount.GreaterThan(maxAmount):
		return "amount exceeds the maximum of " + maxAmount.StringFixed(AmountScale)
	}
	return ""
}
