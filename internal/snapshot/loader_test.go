package snapshot

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoaderLoad(t *testing.T) {
	t.Run("loads both files", func(t *testing.T) {
		dir := t.TempDir()
		balances := writeFile(t, dir, "balances.yaml", `
balances:
  - {currency: ETH, amount: 2, blockchain: Ethereum}
  - {currency: OSMO, amount: oops, blockchain: Osmosis}
`)
		prices := writeFile(t, dir, "prices.json", `{"prices": {"ETH": 2000, "OSMO": 0}}`)

		snap, err := NewLoader(balances, prices).Load(context.Background())
		require.NoError(t, err)

		assert.Len(t, snap.Balances, 1)
		assert.Len(t, snap.Prices, 1)
		assert.Len(t, snap.BalanceProblems, 1)
		assert.Len(t, snap.PriceProblems, 1)
		assert.Equal(t, 2, snap.Problems())
		assert.Len(t, snap.BalancesDigest, 64)
		assert.False(t, snap.LoadedAt.IsZero())
	})

	t.Run("digest follows balances content", func(t *testing.T) {
		dir := t.TempDir()
		balances := writeFile(t, dir, "balances.yaml", "[]\n")
		prices := writeFile(t, dir, "prices.yaml", "{}\n")
		loader := NewLoader(balances, prices)

		first, err := loader.Load(context.Background())
		require.NoError(t, err)
		second, err := loader.Load(context.Background())
		require.NoError(t, err)
		assert.Equal(t, first.BalancesDigest, second.BalancesDigest)

		writeFile(t, dir, "balances.yaml", `[{currency: ETH, amount: 1, blockchain: Ethereum}]`)
		third, err := loader.Load(context.Background())
		require.NoError(t, err)
		assert.NotEqual(t, first.BalancesDigest, third.BalancesDigest)
	})

	t.Run("missing balances file", func(t *testing.T) {
		dir := t.TempDir()
		prices := writeFile(t, dir, "prices.yaml", "{}\n")
		_, err := NewLoader(filepath.Join(dir, "nope.yaml"), prices).Load(context.Background())
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to read balances")
	})

	t.Run("broken prices document", func(t *testing.T) {
		dir := t.TempDir()
		balances := writeFile(t, dir, "balances.yaml", "[]\n")
		prices := writeFile(t, dir, "prices.yaml", "prices: [\n")
		_, err := NewLoader(balances, prices).Load(context.Background())
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "prices file")
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := NewLoader("a", "b").Load(ctx)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestLoaderCheck(t *testing.T) {
	dir := t.TempDir()
	balances := writeFile(t, dir, "balances.yaml", "[]\n")
	prices := writeFile(t, dir, "prices.yaml", "{}\n")

	assert.NoError(t, NewLoader(balances, prices).Check(context.Background()))
	assert.Error(t, NewLoader(balances, filepath.Join(dir, "missing.yaml")).Check(context.Background()))
	assert.Error(t, NewLoader(dir, prices).Check(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, NewLoader(balances, prices).Check(ctx), context.Canceled)
}
