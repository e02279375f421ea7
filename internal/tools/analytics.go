package tools

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/mbd888/chainlens/internal/goldrush"
	"github.com/mbd888/chainlens/internal/validation"
)

// Analytics is the blockchain-analytics API. *goldrush.Client satisfies it.
type Analytics interface {
	GetTransaction(ctx context.Context, chain goldrush.Chain, txHash string) (json.RawMessage, error)
	GetTokenBalances(ctx context.Context, chain goldrush.Chain, walletAddress string) (json.RawMessage, error)
	GetNFTs(ctx context.Context, chain goldrush.Chain, walletAddress string) (json.RawMessage, error)
	GetTokenDetails(ctx context.Context, chain goldrush.Chain, tokenAddress string) (json.RawMessage, error)
}

// TransactionRequest is the argument shape of get_transaction.
type TransactionRequest struct {
	Chain  string `json:"chain" validate:"required"`
	TxHash string `json:"txHash" validate:"required,txhash"`
}

// WalletRequest is the argument shape of get_wallet_balances and get_wallet_nfts.
type WalletRequest struct {
	Chain   string `json:"chain" validate:"required"`
	Address string `json:"address" validate:"required,addr"`
}

// TokenRequest is the argument shape of get_token_details.
type TokenRequest struct {
	Chain        string `json:"chain" validate:"required"`
	TokenAddress string `json:"tokenAddress" validate:"required,addr"`
}

func (r *TransactionRequest) normalize() {
	r.Chain = strings.TrimSpace(r.Chain)
	r.TxHash = strings.TrimSpace(r.TxHash)
}

func (r *WalletRequest) normalize() {
	r.Chain = strings.TrimSpace(r.Chain)
	r.Address = strings.TrimSpace(r.Address)
}

func (r *TokenRequest) normalize() {
	r.Chain = strings.TrimSpace(r.Chain)
	r.TokenAddress = strings.TrimSpace(r.TokenAddress)
}

func chainOf(s string) goldrush.Chain {
	return goldrush.Chain(strings.ToLower(s))
}

// analyticsTool decodes and validates a T and hands it to fetch.
func analyticsTool[T any](name, description string, fetch func(ctx context.Context, req T) (json.RawMessage, error)) Tool {
	return Tool{
		Name:        name,
		Description: description,
		Run: func(ctx context.Context, args json.RawMessage) Result {
			var req T
			if err := decodeArgs(args, &req); err != nil {
				return Failure(err)
			}
			if err := validation.Struct(req); err != nil {
				return Failure(err)
			}
			data, err := fetch(ctx, req)
			if err != nil {
				return Failure(err)
			}
			return Success(data)
		},
	}
}

// AnalyticsTools returns the transaction, balance, NFT and token lookups.
func AnalyticsTools(a Analytics) []Tool {
	return []Tool{
		analyticsTool(ToolTransaction,
			"Get a transaction with its decoded log events.",
			func(ctx context.Context, r TransactionRequest) (json.RawMessage, error) {
				return a.GetTransaction(ctx, chainOf(r.Chain), r.TxHash)
			}),
		analyticsTool(ToolWalletBalances,
			"Get native and ERC20 token balances held by a wallet, with fiat quotes.",
			func(ctx context.Context, r WalletRequest) (json.RawMessage, error) {
				return a.GetTokenBalances(ctx, chainOf(r.Chain), r.Address)
			}),
		analyticsTool(ToolWalletNFTs,
			"Get the NFTs held by a wallet.",
			func(ctx context.Context, r WalletRequest) (json.RawMessage, error) {
				return a.GetNFTs(ctx, chainOf(r.Chain), r.Address)
			}),
		analyticsTool(ToolTokenDetails,
			"Get details for a token contract.",
			func(ctx context.Context, r TokenRequest) (json.RawMessage, error) {
				return a.GetTokenDetails(ctx, chainOf(r.Chain), r.TokenAddress)
			}),
	}
}
