package wallet

import "sync"

// Memo caches the formatted balances of the last balance slice it was given.
// The cache is keyed by slice identity, so callers must hand over a new slice
// whenever the balances change; editing a slice in place is not detected.
//
// Memo is safe for concurrent use. Returned values are shared with the cache
// and must be treated as read-only.
type Memo struct {
	pipeline Pipeline

	mu     sync.Mutex
	first  *Balance
	length int
	cached Formatted
	hits   int
	misses int
}

// NewMemo returns a Memo formatting with p
func NewMemo(p Pipeline) *Memo {
	return &Memo{pipeline: p}
}

// Format returns p.Format(balances), reusing the previous result when
// balances is the same slice as last time.
func (m *Memo) Format(balances []Balance) Formatted {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(balances) > 0 && m.first == &balances[0] && m.length == len(balances) {
		m.hits++
		return m.cached
	}

	m.misses++
	m.cached = m.pipeline.Format(balances)
	m.first = nil
	if len(balances) > 0 {
		m.first = &balances[0]
	}
	m.length = len(balances)
	return m.cached
}

// Run formats balances through the cache and joins them with prices.
// Rows are always rebuilt, prices change independently of balances.
func (m *Memo) Run(balances []Balance, prices PriceTable) Result {
	return m.pipeline.Rows(m.Format(balances), prices)
}

// Stats returns the number of cache hits and misses so far
func (m *Memo) Stats() (hits, misses int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.hits, m.misses
}
