package wallet

import (
	"cmp"
	"errors"
	"fmt"
	"maps"
	"slices"
)

// UnknownPriority is returned for chains missing from the table. It is lower
// than every configured priority.
const UnknownPriority = -99

// DefaultPriorities is the chain ranking used when the configuration does not
// provide one
var DefaultPriorities = map[string]int{
	"Osmosis":  100,
	"Ethereum": 50,
	"Arbitrum": 30,
	"Zilliqa":  20,
	"Neo":      20,
}

// PriorityTable ranks blockchains for display. The zero value knows no chains.
type PriorityTable struct {
	priorities map[string]int
}

// NewPriorityTable copies priorities into an immutable table
func NewPriorityTable(priorities map[string]int) (PriorityTable, error) {
	var errs []error
	for chain, p := range priorities {
		if chain == "" {
			errs = append(errs, errors.New("empty chain name"))
			continue
		}
		if p <= 0 {
			errs = append(errs, fmt.Errorf("chain %q: priority must be positive, got %d", chain, p))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return PriorityTable{}, fmt.Errorf("invalid priority table: %w", err)
	}
	return PriorityTable{priorities: maps.Clone(priorities)}, nil
}

// DefaultPriorityTable returns the table built from DefaultPriorities
func DefaultPriorityTable() PriorityTable {
	return PriorityTable{priorities: maps.Clone(DefaultPriorities)}
}

// PriorityOf returns the priority of chain, or UnknownPriority.
func (t PriorityTable) PriorityOf(chain string) int {
	if p, ok := t.priorities[chain]; ok {
		return p
	}
	return UnknownPriority
}

// Known reports whether chain ranks above the sentinel
func (t PriorityTable) Known(chain string) bool {
	return t.PriorityOf(chain) > UnknownPriority
}

// IsSignificant reports whether b should be displayed: its chain is known and
// its amount is strictly positive.
func (t PriorityTable) IsSignificant(b Balance) bool {
	return t.Known(b.Blockchain) && b.Amount.IsPositive()
}

// Compare orders balances by descending chain priority. It never breaks ties,
// callers rely on a stable sort to keep the input order of equal chains.
func (t PriorityTable) Compare(a, b Balance) int {
	return cmp.Compare(t.PriorityOf(b.Blockchain), t.PriorityOf(a.Blockchain))
}

// Chains returns the known chains, highest priority first
func (t PriorityTable) Chains() []string {
	chains := slices.Collect(maps.Keys(t.priorities))
	slices.SortFunc(chains, func(a, b string) int {
		if c := cmp.Compare(t.priorities[b], t.priorities[a]); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	})
	return chains
}

// Len returns the number of known chains
func (t PriorityTable) Len() int {
	return len(t.priorities)
}
