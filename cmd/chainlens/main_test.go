package main

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbd888/chainlens/internal/config"
	"github.com/mbd888/chainlens/internal/graph"
	"github.com/mbd888/chainlens/internal/journal"
	"github.com/mbd888/chainlens/internal/server"
)

func init() {
	color.NoColor = true
}

func fakeUpstreams(t *testing.T) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.HasPrefix(r.URL.Path, "/gateway/"):
			_, _ = w.Write([]byte(`{"data":{"pools":[{"id":"0xpool"}]}}`))
		case strings.HasSuffix(r.URL.Path, "/balances_v2/"):
			_, _ = w.Write([]byte(`{"data":{"address":"0xd8da6bf26964af9d7eed9e03e53415d37aa96045","chain_name":"eth-mainnet","quote_currency":"USD","items":[
				{"contract_ticker_symbol":"ETH","balance":"1500000000000000000","contract_decimals":18,"quote":3000.5},
				{"contract_ticker_symbol":"USDC","balance":"2500000","contract_decimals":6,"quote":2.5},
				{"contract_ticker_symbol":"DUST","balance":"0","contract_decimals":18,"quote":0}
			]},"error":false}`))
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"data":null,"error":true,"error_message":"not found","error_code":404}`))
		}
	}))
	t.Cleanup(ts.Close)
	return ts
}

func testLoader(t *testing.T) depsLoader {
	upstream := fakeUpstreams(t).URL
	return func(logger *slog.Logger) (*server.Deps, error) {
		cfg := &config.Config{
			GraphAPIKey:     "graph-key",
			GraphGatewayURL: upstream + "/gateway",
			GoldRushAPIKey:  "cqt_key",
			GoldRushAPIURL:  upstream,
			UpstreamTimeout: 5 * time.Second,
		}
		return server.NewDeps(cfg, logger, server.DepsOptions{
			GraphConfig: &graph.Config{Subgraphs: []graph.SubgraphConfig{{
				Name:       "uniswap-v3",
				SubgraphID: "QmUni",
				Queries: map[string]string{
					"getTopPools": "query($limit: Int!) { pools(first: $limit) { id } }",
				},
			}}},
			Journal: journal.NewMemoryStore(10),
		})
	}
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmdWith(testLoader(t))
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestParseVars(t *testing.T) {
	vars, err := parseVars([]string{"limit=5", "poolId=0xabc", "active=true", `tokenId="42"`, "empty="})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"limit":   5,
		"poolId":  "0xabc",
		"active":  true,
		"tokenId": "42",
		"empty":   "",
	}, vars)
}

func TestParseVars_Invalid(t *testing.T) {
	_, err := parseVars([]string{"limit"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected key=value")

	_, err = parseVars([]string{"=5"})
	require.Error(t, err)
}

func TestSubgraphsCmd(t *testing.T) {
	out, err := run(t, "subgraphs")
	require.NoError(t, err)
	assert.Contains(t, out, "uniswap-v3 (QmUni)")
	assert.Contains(t, out, "  - getTopPools")
}

func TestQueryCmd(t *testing.T) {
	out, err := run(t, "query", "uniswap-v3", "getTopPools", "--var", "limit=2")
	require.NoError(t, err)
	assert.Contains(t, out, `"id": "0xpool"`)

	out, err = run(t, "query", "aave-v3", "getMarkets")
	require.NoError(t, err)
	assert.Contains(t, out, "Error fetching data: Subgraph aave-v3 not found in configuration")
}

func TestToolCmd(t *testing.T) {
	out, err := run(t, "tool")
	require.NoError(t, err)
	assert.Contains(t, out, "get_dex_pools")
	assert.Contains(t, out, "get_token_details")

	out, err = run(t, "tool", "get_dex_pools", "--args", `{"type":"top_pools"}`)
	require.NoError(t, err)
	assert.Contains(t, out, `"success": true`)

	out, err = run(t, "tool", "get_dex_pools", "--args", `{"type":"bogus"}`)
	assert.ErrorIs(t, err, errToolFailed)
	assert.Contains(t, out, `"success": false`)

	_, err = run(t, "tool", "get_dex_pools", "--args", `{not json`)
	require.Error(t, err)
}

func TestBalancesCmd(t *testing.T) {
	out, err := run(t, "balances", "ETH-Mainnet", "0xd8da6bf26964af9d7eed9e03e53415d37aa96045")
	require.NoError(t, err)
	assert.Contains(t, out, "ETH")
	assert.Contains(t, out, "1.5")
	assert.Contains(t, out, "3000.50")
	assert.Contains(t, out, "USDC")
	assert.NotContains(t, out, "DUST")
	assert.Contains(t, out, "Total: 3003.00 USD")

	out, err = run(t, "balances", "eth-mainnet", "0xd8da6bf26964af9d7eed9e03e53415d37aa96045", "--all")
	require.NoError(t, err)
	assert.Contains(t, out, "DUST")
}

func TestBalancesCmd_InvalidAddress(t *testing.T) {
	_, err := run(t, "balances", "eth-mainnet", "0x123")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid address")
}

func TestVersionCmd(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "chainlens dev\n", out)
}
