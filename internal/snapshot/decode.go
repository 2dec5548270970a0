package snapshot

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/matrixise/balance-board/internal/wallet"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// ErrNoBalances is returned when a balances document has no balance list
var ErrNoBalances = errors.New("no balance list found")

// ErrNoPrices is returned when a prices document has no price table
var ErrNoPrices = errors.New("no price table found")

// RecordError describes one record that could not be decoded. The record is
// skipped; the rest of the document is still used.
type RecordError struct {
	Index int    // position in the document, -1 for entries keyed by currency
	Key   string // currency, when known
	Err   error
}

func (e RecordError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("record %q: %v", e.Key, e.Err)
	}
	if e.Key != "" {
		return fmt.Sprintf("record #%d (%s): %v", e.Index, e.Key, e.Err)
	}
	return fmt.Sprintf("record #%d: %v", e.Index, e.Err)
}

func (e RecordError) Unwrap() error {
	return e.Err
}

type balanceRecord struct {
	Currency   string    `yaml:"currency"`
	Amount     yaml.Node `yaml:"amount"`
	Blockchain string    `yaml:"blockchain"`
}

type priceRecord struct {
	Currency string    `yaml:"currency"`
	Price    yaml.Node `yaml:"price"`
}

// DecodeBalances reads a balances document. Both a top-level list and a
// mapping with a "balances" list are accepted. JSON input works as well.
func DecodeBalances(r io.Reader) ([]wallet.Balance, []RecordError, error) {
	root, err := decodeRoot(r)
	if err != nil {
		return nil, nil, err
	}
	if root == nil {
		return nil, nil, nil
	}

	list := root
	if root.Kind == yaml.MappingNode {
		list = lookup(root, "balances")
		if list == nil {
			return nil, nil, ErrNoBalances
		}
	}
	if isNull(list) {
		return nil, nil, nil
	}
	if list.Kind != yaml.SequenceNode {
		return nil, nil, fmt.Errorf("balances must be a list, got %s", kindName(list))
	}

	balances := make([]wallet.Balance, 0, len(list.Content))
	var problems []RecordError
	for i, item := range list.Content {
		b, err := decodeBalance(item)
		if err != nil {
			problems = append(problems, RecordError{Index: i, Key: b.Currency, Err: err})
			continue
		}
		balances = append(balances, b)
	}
	return balances, problems, nil
}

func decodeBalance(item *yaml.Node) (wallet.Balance, error) {
	if item.Kind != yaml.MappingNode {
		return wallet.Balance{}, fmt.Errorf("expected an object, got %s", kindName(item))
	}

	var rec balanceRecord
	if err := item.Decode(&rec); err != nil {
		return wallet.Balance{}, err
	}

	b := wallet.Balance{
		Currency:   strings.TrimSpace(rec.Currency),
		Blockchain: strings.TrimSpace(rec.Blockchain),
	}
	if b.Currency == "" {
		return b, errors.New("missing currency")
	}

	amount, err := parseNumber(&rec.Amount)
	if err != nil {
		return b, fmt.Errorf("amount: %w", err)
	}
	b.Amount = amount
	return b, nil
}

// DecodePrices reads a prices document: a "prices" mapping or list, a bare
// currency-to-price mapping, or a bare list of {currency, price} entries.
// When a currency is listed twice the last entry wins.
func DecodePrices(r io.Reader) (wallet.PriceTable, []RecordError, error) {
	root, err := decodeRoot(r)
	if err != nil {
		return nil, nil, err
	}
	table := wallet.PriceTable{}
	if root == nil {
		return table, nil, nil
	}

	node := root
	if root.Kind == yaml.MappingNode {
		if inner := lookup(root, "prices"); inner != nil {
			node = inner
		}
	}

	var problems []RecordError
	switch node.Kind {
	case yaml.MappingNode:
		for i := 0; i+1 < len(node.Content); i += 2 {
			key := node.Content[i]
			if key.Kind != yaml.ScalarNode || isNull(key) {
				problems = append(problems, RecordError{Index: i / 2, Err: fmt.Errorf("expected a currency code, got %s", kindName(key))})
				continue
			}
			currency := strings.TrimSpace(key.Value)
			if currency == "" {
				problems = append(problems, RecordError{Index: i / 2, Err: errors.New("missing currency")})
				continue
			}
			price, err := parsePrice(node.Content[i+1])
			if err != nil {
				problems = append(problems, RecordError{Index: -1, Key: currency, Err: err})
				continue
			}
			table[currency] = price
		}
	case yaml.SequenceNode:
		for i, item := range node.Content {
			currency, price, err := decodePriceRecord(item)
			if err != nil {
				problems = append(problems, RecordError{Index: i, Key: currency, Err: err})
				continue
			}
			table[currency] = price
		}
	default:
		if isNull(node) {
			return table, nil, nil
		}
		return nil, nil, ErrNoPrices
	}
	return table, problems, nil
}

func decodePriceRecord(item *yaml.Node) (string, decimal.Decimal, error) {
	if item.Kind != yaml.MappingNode {
		return "", decimal.Zero, fmt.Errorf("expected an object, got %s", kindName(item))
	}
	var rec priceRecord
	if err := item.Decode(&rec); err != nil {
		return "", decimal.Zero, err
	}
	currency := strings.TrimSpace(rec.Currency)
	if currency == "" {
		return "", decimal.Zero, errors.New("missing currency")
	}
	price, err := parsePrice(&rec.Price)
	return currency, price, err
}

func parsePrice(n *yaml.Node) (decimal.Decimal, error) {
	price, err := parseNumber(n)
	if err != nil {
		return decimal.Zero, fmt.Errorf("price: %w", err)
	}
	if !price.IsPositive() {
		return decimal.Zero, fmt.Errorf("price must be positive, got %s", price)
	}
	return price, nil
}

// parseNumber accepts numeric scalars and numeric strings
func parseNumber(n *yaml.Node) (decimal.Decimal, error) {
	if n.Kind == 0 || isNull(n) {
		return decimal.Zero, errors.New("missing value")
	}
	if n.Kind != yaml.ScalarNode {
		return decimal.Zero, fmt.Errorf("expected a number, got %s", kindName(n))
	}
	switch n.Tag {
	case "!!bool", "!!binary", "!!timestamp":
		return decimal.Zero, fmt.Errorf("expected a number, got %q", n.Value)
	}
	d, err := decimal.NewFromString(strings.TrimSpace(n.Value))
	if err != nil {
		return decimal.Zero, fmt.Errorf("not a number: %q", n.Value)
	}
	return d, nil
}

func decodeRoot(r io.Reader) (*yaml.Node, error) {
	var doc yaml.Node
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to parse document: %w", err)
	}
	if doc.Kind == yaml.DocumentNode {
		if len(doc.Content) == 0 {
			return nil, nil
		}
		return doc.Content[0], nil
	}
	return &doc, nil
}

func lookup(m *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return m.Content[i+1]
		}
	}
	return nil
}

func isNull(n *yaml.Node) bool {
	return n.Kind == yaml.ScalarNode && n.Tag == "!!null"
}

func kindName(n *yaml.Node) string {
	switch n.Kind {
	case yaml.ScalarNode:
		if isNull(n) {
			return "null"
		}
		return "scalar"
	case yaml.SequenceNode:
		return "list"
	case yaml.MappingNode:
		return "object"
	case yaml.AliasNode:
		return "alias"
	default:
		return "nothing"
	}
}
