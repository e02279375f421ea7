package tools

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/mbd888/chainlens/internal/validation"
)

// DefaultPoolLimit is used by get_dex_pools when no limit is given.
const DefaultPoolLimit = 10

// Querier runs a named query template against a named subgraph.
// *graph.Service satisfies it.
type Querier interface {
	QuerySubgraph(ctx context.Context, subgraph, query string, vars map[string]any) (json.RawMessage, error)
}

// SubgraphCall is what a subgraph tool request resolves to.
type SubgraphCall struct {
	Subgraph  string
	Query     string
	Variables map[string]any
}

type subgraphRequest interface {
	Resolve() SubgraphCall
}

var (
	dexSubgraphs = map[string]string{
		"uniswap_v3":  "uniswap-v3",
		"sushiswap":   "sushiswap",
		"pancakeswap": "pancakeswap",
	}
	lendingSubgraphs = map[string]string{
		"aave_v3":     "aave-v3",
		"compound_v3": "compound-v3",
	}
	nftSubgraphs = map[string]string{
		"opensea": "opensea",
		"blur":    "blur",
		"nft20":   "nft20",
	}
)

// DexPoolsRequest is the argument shape of get_dex_pools.
type DexPoolsRequest struct {
	Type     string `json:"type" validate:"required,oneof=top_pools pool_details"`
	Limit    *int   `json:"limit,omitempty" validate:"omitempty,min=1,max=100"`
	PoolID   string `json:"poolId,omitempty" validate:"required_if=Type pool_details"`
	Protocol string `json:"protocol,omitempty" validate:"omitempty,oneof=uniswap_v3 sushiswap pancakeswap"`
}

// normalize trims string arguments and drops the ones type does not use.
func (r *DexPoolsRequest) normalize() {
	r.Type = strings.TrimSpace(r.Type)
	r.Protocol = strings.TrimSpace(r.Protocol)
	r.PoolID = strings.TrimSpace(r.PoolID)
	switch r.Type {
	case "top_pools":
		r.PoolID = ""
	case "pool_details":
		r.Limit = nil
	}
}

func (r DexPoolsRequest) Resolve() SubgraphCall {
	protocol := r.Protocol
	if protocol == "" {
		protocol = "uniswap_v3"
	}
	call := SubgraphCall{Subgraph: dexSubgraphs[protocol]}
	if r.Type == "top_pools" {
		limit := DefaultPoolLimit
		if r.Limit != nil {
			limit = *r.Limit
		}
		call.Query = "getTopPools"
		call.Variables = map[string]any{"limit": limit}
		return call
	}
	call.Query = "getPoolDetails"
	call.Variables = map[string]any{"poolId": validation.NormalizeAddress(r.PoolID)}
	return call
}

// LendingMarketRequest is the argument shape of get_lending_market.
type LendingMarketRequest struct {
	Type         string `json:"type" validate:"required,oneof=market_overview user_positions asset_details"`
	Protocol     string `json:"protocol,omitempty" validate:"omitempty,oneof=aave_v3 compound_v3"`
	UserAddress  string `json:"userAddress,omitempty" validate:"required_if=Type user_positions,addr"`
	AssetAddress string `json:"assetAddress,omitempty" validate:"required_if=Type asset_details,addr"`
}

func (r *LendingMarketRequest) normalize() {
	r.Type = strings.TrimSpace(r.Type)
	r.Protocol = strings.TrimSpace(r.Protocol)
	r.UserAddress = strings.TrimSpace(r.UserAddress)
	r.AssetAddress = strings.TrimSpace(r.AssetAddress)
	if r.Type != "user_positions" {
		r.UserAddress = ""
	}
	if r.Type != "asset_details" {
		r.AssetAddress = ""
	}
}

func (r LendingMarketRequest) Resolve() SubgraphCall {
	protocol := r.Protocol
	if protocol == "" {
		protocol = "aave_v3"
	}
	call := SubgraphCall{Subgraph: lendingSubgraphs[protocol], Variables: map[string]any{}}
	switch r.Type {
	case "market_overview":
		call.Query = "getMarketData"
	case "user_positions":
		call.Query = "getUserData"
		call.Variables["userAddress"] = validation.NormalizeAddress(r.UserAddress)
	case "asset_details":
		call.Query = "getAssetData"
		call.Variables["assetAddress"] = validation.NormalizeAddress(r.AssetAddress)
	}
	return call
}

// NFTMarketRequest is the argument shape of get_nft_market.
type NFTMarketRequest struct {
	Type              string `json:"type" validate:"required,oneof=collection_stats token_details trading_activity"`
	Protocol          string `json:"protocol,omitempty" validate:"omitempty,oneof=opensea blur nft20"`
	CollectionAddress string `json:"collectionAddress,omitempty" validate:"required,addr"`
	TokenID           string `json:"tokenId,omitempty" validate:"required_if=Type token_details"`
	TimeRange         string `json:"timeRange,omitempty" validate:"omitempty,oneof=24h 7d 30d"`
}

func (r *NFTMarketRequest) normalize() {
	r.Type = strings.TrimSpace(r.Type)
	r.Protocol = strings.TrimSpace(r.Protocol)
	r.CollectionAddress = strings.TrimSpace(r.CollectionAddress)
	r.TokenID = strings.TrimSpace(r.TokenID)
	r.TimeRange = strings.TrimSpace(r.TimeRange)
	if r.Type != "token_details" {
		r.TokenID = ""
	}
	if r.Type != "trading_activity" {
		r.TimeRange = ""
	}
}

func (r NFTMarketRequest) Resolve() SubgraphCall {
	protocol := r.Protocol
	if protocol == "" {
		protocol = "opensea"
	}
	call := SubgraphCall{
		Subgraph:  nftSubgraphs[protocol],
		Variables: map[string]any{"collectionAddress": validation.NormalizeAddress(r.CollectionAddress)},
	}
	switch r.Type {
	case "collection_stats":
		call.Query = "getCollectionStats"
	case "token_details":
		call.Query = "getTokenDetails"
		call.Variables["tokenId"] = r.TokenID
	case "trading_activity":
		call.Query = "getTradingActivity"
		if r.TimeRange != "" {
			call.Variables["timeRange"] = r.TimeRange
		}
	}
	return call
}

// subgraphTool builds a tool that decodes and validates a T, resolves it
// and forwards the call to q.
func subgraphTool[T subgraphRequest](name, description string, q Querier) Tool {
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
			call := req.Resolve()
			data, err := q.QuerySubgraph(ctx, call.Subgraph, call.Query, call.Variables)
			if err != nil {
				return Failure(err)
			}
			return Success(data)
		},
	}
}

// SubgraphTools returns get_dex_pools, get_lending_market and get_nft_market.
func SubgraphTools(q Querier) []Tool {
	return []Tool{
		subgraphTool[DexPoolsRequest](ToolDexPools,
			"Get information about DEX liquidity pools: top pools by TVL or a specific pool's details, "+
				"from Uniswap V3, SushiSwap or PancakeSwap.", q),
		subgraphTool[LendingMarketRequest](ToolLendingMarket,
			"Get lending market data from Aave V3 or Compound V3: market statistics, user positions, "+
				"or specific asset details.", q),
		subgraphTool[NFTMarketRequest](ToolNFTMarket,
			"Get NFT market data (collection stats, token details, trading activity) from OpenSea, "+
				"Blur or NFT20.", q),
	}
}
