package mcpserver

import (
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/mbd888/chainlens/internal/tools"
)

// Tool definitions for the chainlens MCP server.
// Descriptions are what the LLM reads to decide which tool to use.

var ToolDexPools = mcp.NewTool(tools.ToolDexPools,
	mcp.WithDescription(
		"Get information about DEX liquidity pools. Can fetch top pools by TVL or a specific "+
			"pool's details from protocols like Uniswap V3, SushiSwap, or PancakeSwap."),
	mcp.WithString("type",
		mcp.Required(),
		mcp.Description("Type of pool data to fetch"),
		mcp.Enum("top_pools", "pool_details")),
	mcp.WithNumber("limit",
		mcp.Description("Number of pools to fetch for top_pools (default 10)"),
		mcp.Min(1),
		mcp.Max(100)),
	mcp.WithString("poolId",
		mcp.Description("Pool ID (the pool contract address) to fetch details for. Required for pool_details.")),
	mcp.WithString("protocol",
		mcp.Description("DEX protocol to query. Defaults to uniswap_v3."),
		mcp.Enum("uniswap_v3", "sushiswap", "pancakeswap")),
)

var ToolLendingMarket = mcp.NewTool(tools.ToolLendingMarket,
	mcp.WithDescription(
		"Get lending market data from protocols like Aave or Compound. "+
			"Can fetch market statistics, user positions, or specific asset details."),
	mcp.WithString("type",
		mcp.Required(),
		mcp.Description("Type of lending data to fetch"),
		mcp.Enum("market_overview", "user_positions", "asset_details")),
	mcp.WithString("protocol",
		mcp.Description("Lending protocol to query. Defaults to aave_v3."),
		mcp.Enum("aave_v3", "compound_v3")),
	mcp.WithString("userAddress",
		mcp.Description("User address (0x...). Required for user_positions.")),
	mcp.WithString("assetAddress",
		mcp.Description("Asset contract address (0x...). Required for asset_details.")),
)

var ToolNFTMarket = mcp.NewTool(tools.ToolNFTMarket,
	mcp.WithDescription("Get NFT market data from various NFT marketplaces and protocols."),
	mcp.WithString("type",
		mcp.Required(),
		mcp.Description("Type of NFT data to fetch"),
		mcp.Enum("collection_stats", "token_details", "trading_activity")),
	mcp.WithString("protocol",
		mcp.Description("NFT protocol to query. Defaults to opensea."),
		mcp.Enum("opensea", "blur", "nft20")),
	mcp.WithString("collectionAddress",
		mcp.Required(),
		mcp.Description("Collection contract address (0x...)")),
	mcp.WithString("tokenId",
		mcp.Description("Token ID. Required for token_details.")),
	mcp.WithString("timeRange",
		mcp.Description("Time range for trading_activity"),
		mcp.Enum("24h", "7d", "30d")),
)

var ToolTransaction = mcp.NewTool(tools.ToolTransaction,
	mcp.WithDescription(
		"Get a single blockchain transaction with its decoded log events, gas and value transfers."),
	mcp.WithString("chain",
		mcp.Required(),
		mcp.Description("Chain name or id, e.g. 'eth-mainnet', 'base-mainnet', '1'")),
	mcp.WithString("txHash",
		mcp.Required(),
		mcp.Description("Transaction hash (0x + 64 hex chars on EVM chains)")),
)

var ToolWalletBalances = mcp.NewTool(tools.ToolWalletBalances,
	mcp.WithDescription(
		"Get the native and ERC20 token balances held by a wallet, with fiat quotes where available."),
	mcp.WithString("chain",
		mcp.Required(),
		mcp.Description("Chain name or id, e.g. 'eth-mainnet'")),
	mcp.WithString("address",
		mcp.Required(),
		mcp.Description("Wallet address (0x...) or ENS name")),
)

var ToolWalletNFTs = mcp.NewTool(tools.ToolWalletNFTs,
	mcp.WithDescription("Get the NFTs held by a wallet, grouped by collection."),
	mcp.WithString("chain",
		mcp.Required(),
		mcp.Description("Chain name or id, e.g. 'eth-mainnet'")),
	mcp.WithString("address",
		mcp.Required(),
		mcp.Description("Wallet address (0x...) or ENS name")),
)

var ToolTokenDetails = mcp.NewTool(tools.ToolTokenDetails,
	mcp.WithDescription("Get details for a token contract: name, symbol, decimals and holdings."),
	mcp.WithString("chain",
		mcp.Required(),
		mcp.Description("Chain name or id, e.g. 'eth-mainnet'")),
	mcp.WithString("tokenAddress",
		mcp.Required(),
		mcp.Description("Token contract address (0x...)")),
)

// definitions indexes the schemas above by tool name.
var definitions = map[string]mcp.Tool{
	tools.ToolDexPools:       ToolDexPools,
	tools.ToolLendingMarket:  ToolLendingMarket,
	tools.ToolNFTMarket:      ToolNFTMarket,
	tools.ToolTransaction:    ToolTransaction,
	tools.ToolWalletBalances: ToolWalletBalances,
	tools.ToolWalletNFTs:     ToolWalletNFTs,
	tools.ToolTokenDetails:   ToolTokenDetails,
}
