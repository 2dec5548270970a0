package wallet

import (
	"errors"
	"math"

	"github.com/shopspring/decimal"
)

// AmountDecimals is the number of fractional digits shown for an amount
const AmountDecimals = 2

// FormatAmount renders d with exactly two decimals. Halves round away from
// zero: 1.005 gives "1.01" and -1.005 gives "-1.01".
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(AmountDecimals)
}

// ErrNotFinite is returned by FormatFloat for NaN and infinities
var ErrNotFinite = errors.New("amount is not a finite number")

// FormatFloat formats f through its shortest decimal representation, so the
// literal 1.005 rounds as 1.005 and not as its binary approximation.
func FormatFloat(f float64) (string, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "", ErrNotFinite
	}
	return FormatAmount(decimal.NewFromFloat(f)), nil
}

// Format derives the display form of b
func Format(b Balance) FormattedBalance {
	return FormattedBalance{Balance: b, Formatted: FormatAmount(b.Amount)}
}
