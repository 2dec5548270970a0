// Package snapshot reads the balance and price files written by the balance
// and price collectors.
package snapshot

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"time"

	"github.com/matrixise/balance-board/internal/wallet"
	"golang.org/x/sync/errgroup"
)

// Snapshot is one consistent read of both files
type Snapshot struct {
	LoadedAt time.Time
	Balances []wallet.Balance
	Prices   wallet.PriceTable

	// BalancesDigest identifies the content of the balances file.
	BalancesDigest string

	BalanceProblems []RecordError
	PriceProblems   []RecordError
}

// Problems returns the number of skipped records across both files
func (s *Snapshot) Problems() int {
	return len(s.BalanceProblems) + len(s.PriceProblems)
}

// Loader reads snapshots from disk
type Loader struct {
	BalancesPath string
	PricesPath   string
}

// NewLoader creates a loader for the given files
func NewLoader(balancesPath, pricesPath string) *Loader {
	return &Loader{BalancesPath: balancesPath, PricesPath: pricesPath}
}

// Load reads and decodes both files concurrently
func (l *Loader) Load(ctx context.Context) (*Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	snap := &Snapshot{}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		raw, err := readFile(gctx, l.BalancesPath)
		if err != nil {
			return fmt.Errorf("failed to read balances: %w", err)
		}
		balances, problems, err := DecodeBalances(bytes.NewReader(raw))
		if err != nil {
			return fmt.Errorf("balances file %s: %w", l.BalancesPath, err)
		}
		sum := sha256.Sum256(raw)
		snap.Balances = balances
		snap.BalanceProblems = problems
		snap.BalancesDigest = hex.EncodeToString(sum[:])
		return nil
	})

	g.Go(func() error {
		raw, err := readFile(gctx, l.PricesPath)
		if err != nil {
			return fmt.Errorf("failed to read prices: %w", err)
		}
		prices, problems, err := DecodePrices(bytes.NewReader(raw))
		if err != nil {
			return fmt.Errorf("prices file %s: %w", l.PricesPath, err)
		}
		snap.Prices = prices
		snap.PriceProblems = problems
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	snap.LoadedAt = time.Now().UTC()
	return snap, nil
}

func readFile(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return os.ReadFile(path)
}

// Check verifies both files are readable without decoding them
func (l *Loader) Check(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	for _, path := range []string{l.BalancesPath, l.PricesPath} {
		info, err := os.Stat(path)
		if err != nil {
			return err
		}
		if info.IsDir() {
			return fmt.Errorf("%s is a directory", path)
		}
	}
	return nil
}
