package validation

import "github.com/shopspring/decimal"

// MaxAmount is the first value that no longer fits numeric(12,2).
var MaxAmount = decimal.New(1, 10)

// Amount rounds a money value to cents and checks it is positive and storable.
func Amount(value decimal.Decimal) (decimal.Decimal, error) {
	amount := value.Round(2)
	if !amount.IsPositive() {
		return decimal.Zero, NewFieldError("amount", "must be greater than 0")
	}
	if amount.GreaterThanOrEqual(MaxAmount) {
		return decimal.Zero, NewFieldError("amount", "is too large")
	}
	return amount, nil
}
