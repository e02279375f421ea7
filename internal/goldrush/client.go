// Package goldrush is a small client for the GoldRush (Covalent) blockchain
// analytics REST API: transactions, token balances, NFTs and token lookups.
package goldrush

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mbd888/chainlens/internal/logging"
	"github.com/mbd888/chainlens/internal/metrics"
	"github.com/mbd888/chainlens/internal/traces"
)

// DefaultAPIURL is the public API host.
const DefaultAPIURL = "https://api.covalenthq.com"

// ErrNoData is returned when the API answers successfully with a null data field.
var ErrNoData = errors.New("no data returned from analytics provider")

// Chain is a chain name ("eth-mainnet") or numeric chain id ("1") as
// accepted by the API.
type Chain string

// Frequently used chains.
const (
	EthMainnet     Chain = "eth-mainnet"
	BaseMainnet    Chain = "base-mainnet"
	MaticMainnet   Chain = "matic-mainnet"
	ArbitrumMain   Chain = "arbitrum-mainnet"
	OptimismMain   Chain = "optimism-mainnet"
	BSCMainnet     Chain = "bsc-mainnet"
	AvalancheMain  Chain = "avalanche-mainnet"
	SolanaMainnet  Chain = "solana-mainnet"
	BitcoinMainnet Chain = "btc-mainnet"
)

// Config holds the configuration for connecting to the analytics API.
type Config struct {
	APIURL     string        // Base URL, e.g. "https://api.covalenthq.com"
	APIKey     string        // API key, sent as a Bearer token
	Timeout    time.Duration // defaults to 30s
	HTTPClient *http.Client  // optional, overrides Timeout
	Logger     *slog.Logger
}

// Client is a pure HTTP client for the analytics API.
type Client struct {
	cfg        Config
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a new analytics API client.
func NewClient(cfg Config) *Client {
	if cfg.APIURL == "" {
		cfg.APIURL = DefaultAPIURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: cfg.Timeout}
	}
	return &Client{
		cfg:        cfg,
		httpClient: hc,
		logger:     logging.Component(cfg.Logger, "goldrush"),
	}
}

// envelope is the API's uniform response wrapper.
type envelope struct {
	Data         json.RawMessage `json:"data"`
	Error        bool            `json:"error"`
	ErrorMessage string          `json:"error_message"`
	ErrorCode    int             `json:"error_code"`
}

// APIError is a failure reported by the API, either as an HTTP status or
// through the envelope's error flag.
type APIError struct {
	StatusCode int
	Code       int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("analytics API error (%d): %s", e.StatusCode, e.Message)
}

// doRequest performs a GET against path and returns the envelope's data.
func (c *Client) doRequest(ctx context.Context, operation string, chain Chain, path string) (data json.RawMessage, err error) {
	ctx, span := traces.StartSpan(ctx, "goldrush."+operation,
		traces.Operation(operation), traces.Chain(string(chain)))
	start := time.Now()
	defer func() {
		metrics.ObserveAnalyticsRequest(operation, start, err)
		traces.End(span, err)
	}()

	u, err := url.Parse(strings.TrimRight(c.cfg.APIURL, "/") + path)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var env envelope
	decodeErr := json.Unmarshal(body, &env)

	if resp.StatusCode >= 400 || (decodeErr == nil && env.Error) {
		apiErr := &APIError{StatusCode: resp.StatusCode, Code: env.ErrorCode, Message: env.ErrorMessage}
		if decodeErr != nil || apiErr.Message == "" {
			apiErr.Message = strings.TrimSpace(string(body))
		}
		return nil, apiErr
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("decode response: %w", decodeErr)
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return nil, ErrNoData
	}
	return env.Data, nil
}

// call wraps doRequest with the request/result logging every lookup shares.
func (c *Client) call(ctx context.Context, operation string, chain Chain, path string, attrs ...any) (json.RawMessage, error) {
	logger := logging.Ctx(ctx, c.logger).With("operation", operation, "chain", chain)
	logger.Debug("fetching analytics data", attrs...)

	data, err := c.doRequest(ctx, operation, chain, path)
	if err != nil {
		logger.Warn("analytics request failed", append(attrs, "error", err)...)
		return nil, err
	}
	logger.Debug("analytics data fetched", "bytes", len(data))
	return data, nil
}

// GetTransaction returns a single transaction with its decoded log events.
func (c *Client) GetTransaction(ctx context.Context, chain Chain, txHash string) (json.RawMessage, error) {
	path := "/v1/" + url.PathEscape(string(chain)) + "/transaction_v2/" + url.PathEscape(txHash) + "/"
	return c.call(ctx, "get_transaction", chain, path, "tx_hash", txHash)
}

// GetTokenBalances returns native and ERC20 balances for a wallet.
func (c *Client) GetTokenBalances(ctx context.Context, chain Chain, walletAddress string) (json.RawMessage, error) {
	return c.call(ctx, "get_token_balances", chain, balancesPath(chain, walletAddress),
		"address", walletAddress)
}

// GetNFTs returns the NFTs held by a wallet.
func (c *Client) GetNFTs(ctx context.Context, chain Chain, walletAddress string) (json.RawMessage, error) {
	path := "/v1/" + url.PathEscape(string(chain)) + "/address/" + url.PathEscape(walletAddress) + "/balances_nft/"
	return c.call(ctx, "get_nfts", chain, path, "address", walletAddress)
}

// GetTokenDetails looks a token up through the balances endpoint keyed by
// the token's own contract address.
func (c *Client) GetTokenDetails(ctx context.Context, chain Chain, tokenAddress string) (json.RawMessage, error) {
	return c.call(ctx, "get_token_details", chain, balancesPath(chain, tokenAddress),
		"token_address", tokenAddress)
}

func balancesPath(chain Chain, address string) string {
	return "/v1/" + url.PathEscape(string(chain)) + "/address/" + url.PathEscape(address) + "/balances_v2/"
}
