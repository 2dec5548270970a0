package wallet

import (
	"slices"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoFormat(t *testing.T) {
	m := NewMemo(NewPipeline(DefaultPriorityTable()))

	balances := []Balance{
		bal("ETH", "2", "Ethereum"),
		bal("OSMO", "5", "Osmosis"),
	}

	first := m.Format(balances)
	second := m.Format(balances)

	hits, misses := m.Stats()
	assert.Equal(t, 1, hits)
	assert.Equal(t, 1, misses)
	assert.Equal(t, first, second)

	t.Run("a copy is a new collection", func(t *testing.T) {
		m.Format(slices.Clone(balances))
		_, misses := m.Stats()
		assert.Equal(t, 2, misses)
	})

	t.Run("a shorter view of the same array is a new collection", func(t *testing.T) {
		got := m.Format(balances[:1])
		require.Len(t, got.Balances, 1)
		assert.Equal(t, "ETH", got.Balances[0].Currency)
	})

	t.Run("empty input is always recomputed", func(t *testing.T) {
		_, before := m.Stats()
		m.Format(nil)
		m.Format(nil)
		_, after := m.Stats()
		assert.Equal(t, before+2, after)
	})
}

func TestMemoRunRebuildsRowsForNewPrices(t *testing.T) {
	m := NewMemo(NewPipeline(DefaultPriorityTable()))
	balances := []Balance{bal("ETH", "2", "Ethereum")}

	r1 := m.Run(balances, prices("ETH", "2000"))
	r2 := m.Run(balances, prices("ETH", "2500"))

	require.Len(t, r1.Rows, 1)
	require.Len(t, r2.Rows, 1)
	assert.Equal(t, "4000", r1.Rows[0].USDValue.Decimal.String())
	assert.Equal(t, "5000", r2.Rows[0].USDValue.Decimal.String())

	hits, misses := m.Stats()
	assert.Equal(t, 1, hits)
	assert.Equal(t, 1, misses)
}

func TestMemoMatchesPipeline(t *testing.T) {
	p := NewPipeline(DefaultPriorityTable())
	m := NewMemo(p)
	balances := []Balance{
		bal("NEO", "1", "Neo"),
		bal("UNK", "1", "Unknown"),
		bal("ARB", "3.333", "Arbitrum"),
	}
	px := prices("NEO", "12", "ARB", "0.8")

	assert.Equal(t, p.Run(balances, px), m.Run(balances, px))
	assert.Equal(t, p.Run(balances, px), m.Run(balances, px))
}

func TestMemoConcurrent(t *testing.T) {
	p := NewPipeline(DefaultPriorityTable())
	m := NewMemo(p)
	a := []Balance{bal("ETH", "2", "Ethereum")}
	b := []Balance{bal("OSMO", "5", "Osmosis"), bal("NEO", "1", "Neo")}
	px := prices("ETH", "2000", "OSMO", "10")

	wantA := p.Run(a, px)
	wantB := p.Run(b, px)

	var wg sync.WaitGroup
	for i := range 32 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				assert.Equal(t, wantA, m.Run(a, px))
			} else {
				assert.Equal(t, wantB, m.Run(b, px))
			}
		}(i)
	}
	wg.Wait()
}
