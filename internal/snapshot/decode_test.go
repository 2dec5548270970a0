package snapshot

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeBalances(t *testing.T) {
	t.Run("yaml with balances key", func(t *testing.T) {
		doc := `
balances:
  - currency: ETH
    amount: 2
    blockchain: Ethereum
  - currency: OSMO
    amount: "5.25"
    blockchain: Osmosis
`
		balances, problems, err := DecodeBalances(strings.NewReader(doc))
		require.NoError(t, err)
		assert.Empty(t, problems)
		require.Len(t, balances, 2)
		assert.Equal(t, "ETH", balances[0].Currency)
		assert.Equal(t, "2", balances[0].Amount.String())
		assert.Equal(t, "Ethereum", balances[0].Blockchain)
		assert.Equal(t, "5.25", balances[1].Amount.String())
	})

	t.Run("json top-level list", func(t *testing.T) {
		doc := `[
  {"currency": "ETH", "amount": 1.005, "blockchain": "Ethereum"},
  {"currency": "NEO", "amount": -3, "blockchain": "Neo"}
]`
		balances, problems, err := DecodeBalances(strings.NewReader(doc))
		require.NoError(t, err)
		assert.Empty(t, problems)
		require.Len(t, balances, 2)
		assert.Equal(t, "1.005", balances[0].Amount.String())
		assert.Equal(t, "-3", balances[1].Amount.String())
	})

	t.Run("malformed records are skipped one by one", func(t *testing.T) {
		doc := `{"balances": [
  {"currency": "ETH", "amount": 2, "blockchain": "Ethereum"},
  null,
  {"currency": "BAD", "amount": "lots", "blockchain": "Ethereum"},
  {"amount": 4, "blockchain": "Ethereum"},
  {"currency": "NOAMT", "blockchain": "Ethereum"},
  {"currency": "BOOL", "amount": true, "blockchain": "Ethereum"},
  {"currency": "LIST", "amount": [1], "blockchain": "Ethereum"},
  {"currency": "OSMO", "amount": 5, "blockchain": "Osmosis"}
]}`
		balances, problems, err := DecodeBalances(strings.NewReader(doc))
		require.NoError(t, err)

		require.Len(t, balances, 2)
		assert.Equal(t, "ETH", balances[0].Currency)
		assert.Equal(t, "OSMO", balances[1].Currency)

		require.Len(t, problems, 6)
		var indexes []int
		for _, p := range problems {
			indexes = append(indexes, p.Index)
		}
		assert.Equal(t, []int{1, 2, 3, 4, 5, 6}, indexes)
		assert.Contains(t, problems[1].Error(), "BAD")
		assert.Contains(t, problems[2].Error(), "missing currency")
	})

	t.Run("unknown chain is kept for the pipeline to judge", func(t *testing.T) {
		doc := `[{"currency": "UNK", "amount": 3, "blockchain": "UnknownChain"}]`
		balances, problems, err := DecodeBalances(strings.NewReader(doc))
		require.NoError(t, err)
		assert.Empty(t, problems)
		require.Len(t, balances, 1)
		assert.Equal(t, "UnknownChain", balances[0].Blockchain)
	})

	t.Run("empty document", func(t *testing.T) {
		balances, problems, err := DecodeBalances(strings.NewReader(""))
		require.NoError(t, err)
		assert.Empty(t, balances)
		assert.Empty(t, problems)
	})

	t.Run("null balances", func(t *testing.T) {
		balances, _, err := DecodeBalances(strings.NewReader("balances: null\n"))
		require.NoError(t, err)
		assert.Empty(t, balances)
	})

	t.Run("mapping without balances key", func(t *testing.T) {
		_, _, err := DecodeBalances(strings.NewReader("wallets: []\n"))
		assert.ErrorIs(t, err, ErrNoBalances)
	})

	t.Run("balances is not a list", func(t *testing.T) {
		_, _, err := DecodeBalances(strings.NewReader("balances: 3\n"))
		assert.Error(t, err)
	})

	t.Run("syntax error", func(t *testing.T) {
		_, _, err := DecodeBalances(strings.NewReader("[{"))
		assert.Error(t, err)
	})
}

func TestDecodePrices(t *testing.T) {
	t.Run("prices mapping", func(t *testing.T) {
		doc := `
prices:
  ETH: 2000
  OSMO: "10.5"
`
		table, problems, err := DecodePrices(strings.NewReader(doc))
		require.NoError(t, err)
		assert.Empty(t, problems)
		assert.Equal(t, "2000", table["ETH"].String())
		assert.Equal(t, "10.5", table["OSMO"].String())
	})

	t.Run("bare mapping", func(t *testing.T) {
		table, _, err := DecodePrices(strings.NewReader(`{"ETH": 1645.93, "USDC": 1}`))
		require.NoError(t, err)
		assert.Len(t, table, 2)
		assert.Equal(t, "1645.93", table["ETH"].String())
	})

	t.Run("price feed list, last entry wins", func(t *testing.T) {
		doc := `[
  {"currency": "BLUR", "date": "2023-08-29T07:10:40.000Z", "price": 0.20811525423728813},
  {"currency": "ETH", "date": "2023-08-29T07:10:52.000Z", "price": 1645.9337373737374},
  {"currency": "BLUR", "date": "2023-08-29T07:11:40.000Z", "price": 0.21}
]`
		table, problems, err := DecodePrices(strings.NewReader(doc))
		require.NoError(t, err)
		assert.Empty(t, problems)
		assert.Len(t, table, 2)
		assert.Equal(t, "0.21", table["BLUR"].String())
		assert.Equal(t, "1645.9337373737374", table["ETH"].String())
	})

	t.Run("bad prices are reported and skipped", func(t *testing.T) {
		doc := `
prices:
  ETH: 2000
  FREE: 0
  NEG: -4
  TEXT: abc
  NONE: null
`
		table, problems, err := DecodePrices(strings.NewReader(doc))
		require.NoError(t, err)
		assert.Len(t, table, 1)
		assert.Len(t, problems, 4)
		for _, p := range problems {
			assert.Equal(t, -1, p.Index)
			assert.NotEmpty(t, p.Key)
		}
	})

	t.Run("bad list entries are reported with their index", func(t *testing.T) {
		doc := `[{"currency": "ETH", "price": 2}, {"price": 3}, "junk"]`
		table, problems, err := DecodePrices(strings.NewReader(doc))
		require.NoError(t, err)
		assert.Len(t, table, 1)
		require.Len(t, problems, 2)
		assert.Equal(t, 1, problems[0].Index)
		assert.Equal(t, 2, problems[1].Index)
	})

	t.Run("non-scalar and empty keys are reported", func(t *testing.T) {
		doc := `
prices:
  ETH: 2000
  ? [OSMO, ATOM]
  : 10
  ? {code: NEO}
  : 11
  "": 5
  ~: 7
`
		table, problems, err := DecodePrices(strings.NewReader(doc))
		require.NoError(t, err)
		assert.Len(t, table, 1)
		assert.Contains(t, table, "ETH")
		require.Len(t, problems, 4)
		assert.Equal(t, 1, problems[0].Index)
		assert.Contains(t, problems[0].Error(), "got list")
		assert.Equal(t, 2, problems[1].Index)
		assert.Contains(t, problems[1].Error(), "got object")
		assert.Equal(t, 3, problems[2].Index)
		assert.Contains(t, problems[2].Error(), "missing currency")
		assert.Equal(t, 4, problems[3].Index)
		assert.NotContains(t, table, "")
	})

	t.Run("empty document", func(t *testing.T) {
		table, _, err := DecodePrices(strings.NewReader(""))
		require.NoError(t, err)
		assert.Empty(t, table)
	})

	t.Run("scalar document", func(t *testing.T) {
		_, _, err := DecodePrices(strings.NewReader("42"))
		assert.ErrorIs(t, err, ErrNoPrices)
	})
}

func TestRecordErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		err  RecordError
		want string
	}{
		{"list entry with key", RecordError{Index: 2, Key: "ETH", Err: assert.AnError}, "record #2 (ETH): " + assert.AnError.Error()},
		{"list entry without key", RecordError{Index: 0, Err: assert.AnError}, "record #0: " + assert.AnError.Error()},
		{"map entry", RecordError{Index: -1, Key: "ETH", Err: assert.AnError}, `record "ETH": ` + assert.AnError.Error()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
			assert.ErrorIs(t, tt.err, assert.AnError)
		})
	}
}
