package wallet

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// BuildRow joins a formatted balance with its price. A currency without a
// usable price gets an invalid USDValue instead of a made-up number.
func BuildRow(index int, fb FormattedBalance, prices PriceTable) DisplayRow {
	row := DisplayRow{
		Index:           index,
		Key:             RowKey(fb.Balance),
		Currency:        fb.Currency,
		Blockchain:      fb.Blockchain,
		Amount:          fb.Amount,
		FormattedAmount: fb.Formatted,
	}
	if price, ok := prices.Lookup(fb.Currency); ok {
		row.USDValue = decimal.NewNullDecimal(price.Mul(fb.Amount))
	}
	return row
}

// RowKey is the content key of a balance: chain and currency
func RowKey(b Balance) string {
	return b.Blockchain + "/" + b.Currency
}

// BuildRows builds one row per formatted balance, in order. Repeated content
// keys get a "#n" suffix so keys stay unique within the result.
func BuildRows(formatted []FormattedBalance, prices PriceTable) []DisplayRow {
	rows := make([]DisplayRow, 0, len(formatted))
	seen := make(map[string]int, len(formatted))
	for i, fb := range formatted {
		row := BuildRow(i, fb, prices)
		if n := seen[row.Key]; n > 0 {
			seen[row.Key] = n + 1
			row.Key = fmt.Sprintf("%s#%d", row.Key, n+1)
		} else {
			seen[row.Key] = 1
		}
		rows = append(rows, row)
	}
	return rows
}
