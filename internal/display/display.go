// Package display renders display rows for terminals and JSON consumers.
package display

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/Rhymond/go-money"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/matrixise/balance-board/internal/wallet"
	"github.com/shopspring/decimal"
)

// Unavailable is shown in place of a USD value that could not be computed
const Unavailable = "n/a"

// USD formats a USD value to cents with a currency symbol and grouping,
// e.g. "$4,000.00".
func USD(v decimal.NullDecimal) string {
	if !v.Valid {
		return Unavailable
	}
	currency := money.New(0, money.USD).Currency()
	cents := v.Decimal.Shift(int32(currency.Fraction)).Round(0)
	if cents.Abs().GreaterThan(maxCents) {
		return bigUSD(v.Decimal, currency)
	}
	return money.New(cents.IntPart(), money.USD).Display()
}

var maxCents = decimal.NewFromInt(math.MaxInt64)

// bigUSD formats values whose cents do not fit in an int64, following the
// currency's grouping and template like money.Display does.
func bigUSD(d decimal.Decimal, c *money.Currency) string {
	fixed := d.Abs().StringFixed(int32(c.Fraction))
	whole, frac, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	for i, r := range whole {
		if i > 0 && c.Thousand != "" && (len(whole)-i)%3 == 0 {
			b.WriteString(c.Thousand)
		}
		b.WriteRune(r)
	}
	if frac != "" {
		b.WriteString(c.Decimal)
		b.WriteString(frac)
	}

	out := strings.Replace(c.Template, "1", b.String(), 1)
	out = strings.Replace(out, "$", c.Grapheme, 1)
	if d.IsNegative() {
		out = "-" + out
	}
	return out
}
