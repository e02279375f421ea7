package goldrush

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// Balances is the subset of the balances_v2 payload chainlens renders.
type Balances struct {
	Address       string        `json:"address"`
	ChainName     string        `json:"chain_name"`
	QuoteCurrency string        `json:"quote_currency"`
	Items         []BalanceItem `json:"items"`
}

// BalanceItem is one token holding. Balance is the raw integer amount in
// the token's smallest unit.
type BalanceItem struct {
	ContractName         string   `json:"contract_name"`
	ContractTickerSymbol string   `json:"contract_ticker_symbol"`
	ContractAddress      string   `json:"contract_address"`
	ContractDecimals     *int32   `json:"contract_decimals"`
	Balance              string   `json:"balance"`
	Quote                *float64 `json:"quote"`
	Type                 string   `json:"type"`
	NativeToken          bool     `json:"native_token"`
}

// DecodeBalances parses the data object returned by GetTokenBalances.
func DecodeBalances(raw json.RawMessage) (*Balances, error) {
	var b Balances
	if err := json.Unmarshal(raw, &b); err != nil {
		return nil, fmt.Errorf("decode balances: %w", err)
	}
	return &b, nil
}

// Quantity is Balance scaled by ContractDecimals. Unparseable balances
// yield zero; missing decimals leave the raw amount unscaled.
func (i BalanceItem) Quantity() decimal.Decimal {
	raw, err := decimal.NewFromString(i.Balance)
	if err != nil {
		return decimal.Zero
	}
	if i.ContractDecimals == nil {
		return raw
	}
	return raw.Shift(-*i.ContractDecimals)
}

// QuoteValue returns the fiat value of the holding, zero when unquoted.
func (i BalanceItem) QuoteValue() decimal.Decimal {
	if i.Quote == nil {
		return decimal.Zero
	}
	return decimal.NewFromFloat(*i.Quote)
}

// NonZero returns the items holding a positive quantity.
func (b *Balances) NonZero() []BalanceItem {
	out := make([]BalanceItem, 0, len(b.Items))
	for _, it := range b.Items {
		if it.Quantity().IsPositive() {
			out = append(out, it)
		}
	}
	return out
}

// TotalQuote sums the fiat value of every holding.
func (b *Balances) TotalQuote() decimal.Decimal {
	total := decimal.Zero
	for _, it := range b.Items {
		total = total.Add(it.QuoteValue())
	}
	return total
}
