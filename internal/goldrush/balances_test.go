package goldrush

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const balancesPayload = `{
	"address": "0xd8da6bf26964af9d7eed9e03e53415d37aa96045",
	"chain_name": "eth-mainnet",
	"quote_currency": "USD",
	"items": [
		{"contract_ticker_symbol": "ETH", "balance": "1234500000000000000", "contract_decimals": 18, "quote": 4000.25, "native_token": true},
		{"contract_ticker_symbol": "USDC", "balance": "10000000", "contract_decimals": 6, "quote": 10},
		{"contract_ticker_symbol": "SPAM", "balance": "0", "contract_decimals": 18, "quote": null},
		{"contract_ticker_symbol": "RAW", "balance": "77", "contract_decimals": null},
		{"contract_ticker_symbol": "BAD", "balance": "not-a-number", "contract_decimals": 18}
	]
}`

func TestDecodeBalances(t *testing.T) {
	b, err := DecodeBalances(json.RawMessage(balancesPayload))
	require.NoError(t, err)

	assert.Equal(t, "eth-mainnet", b.ChainName)
	assert.Equal(t, "USD", b.QuoteCurrency)
	require.Len(t, b.Items, 5)
	assert.True(t, b.Items[0].NativeToken)
}

func TestDecodeBalances_Invalid(t *testing.T) {
	_, err := DecodeBalances(json.RawMessage(`[1,2]`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode balances")
}

func TestBalanceItem_Quantity(t *testing.T) {
	b, err := DecodeBalances(json.RawMessage(balancesPayload))
	require.NoError(t, err)

	assert.Equal(t, "1.2345", b.Items[0].Quantity().String())
	assert.Equal(t, "10", b.Items[1].Quantity().String())
	assert.True(t, b.Items[2].Quantity().IsZero())
	assert.Equal(t, "77", b.Items[3].Quantity().String(), "missing decimals leaves raw amount")
	assert.True(t, b.Items[4].Quantity().IsZero(), "unparseable balance is zero")
}

func TestBalances_NonZeroAndTotal(t *testing.T) {
	b, err := DecodeBalances(json.RawMessage(balancesPayload))
	require.NoError(t, err)

	var symbols []string
	for _, it := range b.NonZero() {
		symbols = append(symbols, it.ContractTickerSymbol)
	}
	assert.Equal(t, []string{"ETH", "USDC", "RAW"}, symbols)

	assert.Equal(t, "4010.25", b.TotalQuote().StringFixed(2))
}
