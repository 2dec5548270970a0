// Package wallet turns raw wallet balances and a price table into the ordered,
// filtered and formatted rows a wallet page renders.
//
// Every function in this package is pure: it reads its inputs, allocates its
// own intermediate slices and returns a fresh result. Nothing is shared
// between calls, so the pipeline can run concurrently on different snapshots.
package wallet

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Balance is a single holding as reported by the balance source.
type Balance struct {
	Currency   string          `json:"currency"`
	Amount     decimal.Decimal `json:"amount"`
	Blockchain string          `json:"blockchain"`
}

// Malformed reports whether the record cannot be displayed at all.
// A balance without a currency has nothing to price or label.
func (b Balance) Malformed() bool {
	return b.Currency == ""
}

// FormattedBalance is a Balance with its amount rendered for display.
type FormattedBalance struct {
	Balance
	Formatted string `json:"formatted"`
}

// PriceTable maps a currency code to its unit price in USD.
type PriceTable map[string]decimal.Decimal

// Lookup returns the USD price of currency. Missing and non-positive prices
// are reported as unavailable.
func (p PriceTable) Lookup(currency string) (decimal.Decimal, bool) {
	price, ok := p[currency]
	if !ok || !price.IsPositive() {
		return decimal.Zero, false
	}
	return price, true
}

// DisplayRow is the render-ready record for one balance.
type DisplayRow struct {
	// Index is the position of the row in this run's output.
	Index int `json:"index"`

	// Key identifies the row by content and stays stable across runs.
	Key string `json:"key"`

	Currency        string              `json:"currency"`
	Blockchain      string              `json:"blockchain"`
	Amount          decimal.Decimal     `json:"amount"`
	FormattedAmount string              `json:"formatted_amount"`
	USDValue        decimal.NullDecimal `json:"usd_value"`
}

// ValueAvailable reports whether a USD value could be computed for the row.
func (r DisplayRow) ValueAvailable() bool {
	return r.USDValue.Valid
}

// ExclusionReason says why a balance did not make it into the rows.
type ExclusionReason string

const (
	ReasonMalformed    ExclusionReason = "malformed"
	ReasonUnknownChain ExclusionReason = "unknown_chain"
	ReasonNonPositive  ExclusionReason = "non_positive_amount"
)

// Exclusion records a balance dropped by the filter stage.
type Exclusion struct {
	// Index is the position of the balance in the input slice.
	Index int

	Balance Balance
	Reason  ExclusionReason
}

func (e Exclusion) String() string {
	return fmt.Sprintf("#%d %s on %q: %s", e.Index, e.Balance.Currency, e.Balance.Blockchain, e.Reason)
}
