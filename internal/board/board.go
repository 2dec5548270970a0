// Package board keeps the latest display rows computed from the snapshot
// files and refreshes them on demand.
package board

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/matrixise/balance-board/internal/snapshot"
	"github.com/matrixise/balance-board/internal/wallet"
)

// ErrNotReady is returned before the first successful refresh
var ErrNotReady = errors.New("no snapshot loaded yet")

// Source provides snapshots of balances and prices
type Source interface {
	Load(ctx context.Context) (*snapshot.Snapshot, error)
}

// View is an immutable, published pipeline result
type View struct {
	GeneratedAt    time.Time
	SnapshotAt     time.Time
	BalancesDigest string
	Result         wallet.Result

	// Skipped counts records dropped while decoding the snapshot files.
	Skipped int
}

// Status describes refresh health
type Status struct {
	Ready       bool
	LastAttempt time.Time
	LastSuccess time.Time
	LastError   string
}

// Board recomputes rows from a Source and publishes them atomically
type Board struct {
	source Source
	memo   *wallet.Memo
	logger *slog.Logger

	current atomic.Pointer[View]

	// refreshMu serialises Refresh; balances and digest are only touched under it
	refreshMu sync.Mutex
	balances  []wallet.Balance
	digest    string

	statusMu sync.RWMutex
	status   Status
}

// New creates a board reading from source and ranking chains with pipeline
func New(source Source, pipeline wallet.Pipeline, logger *slog.Logger) *Board {
	if logger == nil {
		logger = slog.Default()
	}
	return &Board{
		source: source,
		memo:   wallet.NewMemo(pipeline),
		logger: logger,
	}
}

// Refresh loads a new snapshot and publishes its rows. On failure the
// previously published view stays in place.
func (b *Board) Refresh(ctx context.Context) (*View, error) {
	b.refreshMu.Lock()
	defer b.refreshMu.Unlock()

	attempt := time.Now().UTC()
	snap, err := b.source.Load(ctx)
	if err != nil {
		b.recordFailure(attempt, err)
		return nil, fmt.Errorf("refresh failed: %w", err)
	}

	for _, p := range snap.BalanceProblems {
		b.logger.Warn("Balance record skipped", "error", p.Error())
	}
	for _, p := range snap.PriceProblems {
		b.logger.Warn("Price record skipped", "error", p.Error())
	}

	// Hand the memo the same slice while the balances file is unchanged
	if snap.BalancesDigest == "" || snap.BalancesDigest != b.digest {
		b.balances = snap.Balances
		b.digest = snap.BalancesDigest
	} else {
		b.logger.Debug("Balances unchanged, reusing formatted balances", "digest", snap.BalancesDigest)
	}

	result := b.memo.Run(b.balances, snap.Prices)

	for _, e := range result.Excluded {
		b.logger.Debug("Balance excluded", "index", e.Index, "currency", e.Balance.Currency,
			"blockchain", e.Balance.Blockchain, "reason", e.Reason)
	}
	unpriced := 0
	for _, r := range result.Rows {
		if !r.ValueAvailable() {
			unpriced++
			b.logger.Warn("No price for currency, usd value unavailable", "currency", r.Currency, "row", r.Key)
		}
	}

	view := &View{
		GeneratedAt:    time.Now().UTC(),
		SnapshotAt:     snap.LoadedAt,
		BalancesDigest: snap.BalancesDigest,
		Result:         result,
		Skipped:        snap.Problems(),
	}
	b.current.Store(view)
	b.recordSuccess(attempt)

	b.logger.Info("Rows refreshed",
		"balances", len(b.balances),
		"rows", len(result.Rows),
		"excluded", len(result.Excluded),
		"unpriced", unpriced,
		"skipped", view.Skipped,
	)
	return view, nil
}

// Current returns the latest published view
func (b *Board) Current() (*View, error) {
	v := b.current.Load()
	if v == nil {
		return nil, ErrNotReady
	}
	return v, nil
}

// Status returns a copy of the refresh status
func (b *Board) Status() Status {
	b.statusMu.RLock()
	defer b.statusMu.RUnlock()
	return b.status
}

// MemoStats exposes the formatted-balance cache counters
func (b *Board) MemoStats() (hits, misses int) {
	return b.memo.Stats()
}

func (b *Board) recordFailure(at time.Time, err error) {
	b.statusMu.Lock()
	defer b.statusMu.Unlock()
	b.status.LastAttempt = at
	b.status.LastError = err.Error()
}

func (b *Board) recordSuccess(at time.Time) {
	b.statusMu.Lock()
	defer b.statusMu.Unlock()
	b.status.Ready = true
	b.status.LastAttempt = at
	b.status.LastSuccess = at
	b.status.LastError = ""
}
