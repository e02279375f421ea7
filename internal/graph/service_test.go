package graph

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Test helpers ---

type gatewayRequest struct {
	Path          string
	Authorization string
	Query         string
	Variables     map[string]any
}

func testConfig() Config {
	return Config{Subgraphs: []SubgraphConfig{
		{
			Name:       "uniswap-v3",
			SubgraphID: "QmUniswap",
			Queries: map[string]string{
				"getTopPools":    "query($limit: Int!) { pools(first: $limit) { id } }",
				"getPoolDetails": "query($poolId: ID!) { pool(id: $poolId) { id } }",
			},
		},
		{
			Name:       "aave-v3",
			SubgraphID: "QmAave",
			Queries:    map[string]string{"getMarketData": "{ markets { id } }"},
		},
	}}
}

// newTestService starts a fake gateway whose reply is produced by respond
// and records every request it sees.
func newTestService(t *testing.T, respond func(w http.ResponseWriter, r gatewayRequest)) (*Service, *[]gatewayRequest) {
	t.Helper()
	var seen []gatewayRequest
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Query     string         `json:"query"`
			Variables map[string]any `json:"variables"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		req := gatewayRequest{
			Path:          r.URL.Path,
			Authorization: r.Header.Get("Authorization"),
			Query:         body.Query,
			Variables:     body.Variables,
		}
		seen = append(seen, req)
		w.Header().Set("Content-Type", "application/json")
		respond(w, req)
	}))
	t.Cleanup(ts.Close)

	svc, err := NewService(testConfig(), Options{
		APIKey:     "test-key",
		GatewayURL: ts.URL + "/api",
	})
	require.NoError(t, err)
	return svc, &seen
}

func replyData(data string) func(http.ResponseWriter, gatewayRequest) {
	return func(w http.ResponseWriter, _ gatewayRequest) {
		_, _ = w.Write([]byte(`{"data":` + data + `}`))
	}
}

// ============================================================
// Construction
// ============================================================

func TestEndpointURL(t *testing.T) {
	assert.Equal(t,
		"https://gateway.thegraph.com/api/abc/subgraphs/id/QmX",
		EndpointURL("https://gateway.thegraph.com/api", "abc", "QmX"))
	assert.Equal(t,
		"http://gw/api/abc/subgraphs/id/QmX",
		EndpointURL("http://gw/api/", "abc", "QmX"))
}

func TestNewService_RequiresAPIKey(t *testing.T) {
	_, err := NewService(testConfig(), Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "THEGRAPH_API_KEY")
}

func TestNewService_RejectsInvalidConfig(t *testing.T) {
	cfg := Config{Subgraphs: []SubgraphConfig{{Name: "a"}}}
	_, err := NewService(cfg, Options{APIKey: "k"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "subgraphId is required")
}

func TestService_ConfigIsImmutable(t *testing.T) {
	cfg := testConfig()
	svc, err := NewService(cfg, Options{APIKey: "k"})
	require.NoError(t, err)

	cfg.Subgraphs[0].Queries["injected"] = "{ x }"
	sg, ok := svc.Subgraph("uniswap-v3")
	require.True(t, ok)
	sg.Queries["injected"] = "{ y }"

	assert.Equal(t, []string{"getPoolDetails", "getTopPools"}, svc.AvailableQueries("uniswap-v3"))
}

// ============================================================
// Dispatch
// ============================================================

func TestQuerySubgraph_Success(t *testing.T) {
	svc, seen := newTestService(t, replyData(`{"pools":[{"id":"0xabc"}]}`))

	data, err := svc.QuerySubgraph(context.Background(), "uniswap-v3", "getTopPools", map[string]any{"limit": 5})
	require.NoError(t, err)
	assert.JSONEq(t, `{"pools":[{"id":"0xabc"}]}`, string(data))

	require.Len(t, *seen, 1)
	got := (*seen)[0]
	assert.Equal(t, "/api/test-key/subgraphs/id/QmUniswap", got.Path)
	assert.Equal(t, "Bearer test-key", got.Authorization)
	assert.Equal(t, testConfig().Subgraphs[0].Queries["getTopPools"], got.Query)
	assert.Equal(t, float64(5), got.Variables["limit"])
}

func TestQuerySubgraph_RoutesBySubgraph(t *testing.T) {
	svc, seen := newTestService(t, replyData(`{"markets":[]}`))

	_, err := svc.QuerySubgraph(context.Background(), "aave-v3", "getMarketData", nil)
	require.NoError(t, err)
	assert.Equal(t, "/api/test-key/subgraphs/id/QmAave", (*seen)[0].Path)
}

func TestQuerySubgraph_UnknownSubgraph(t *testing.T) {
	svc, seen := newTestService(t, replyData(`{}`))

	_, err := svc.QuerySubgraph(context.Background(), "missing", "getTopPools", nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSubgraphNotFound))
	assert.Equal(t, "Subgraph missing not found in configuration", err.Error())
	assert.Empty(t, *seen, "no request should reach the gateway")
}

func TestQuerySubgraph_UnknownQuery(t *testing.T) {
	svc, _ := newTestService(t, replyData(`{}`))

	_, err := svc.QuerySubgraph(context.Background(), "uniswap-v3", "getEverything", nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrQueryNotFound))
	assert.Equal(t, "Query getEverything not found for subgraph uniswap-v3", err.Error())
}

func TestQuerySubgraph_GraphQLError(t *testing.T) {
	svc, _ := newTestService(t, func(w http.ResponseWriter, _ gatewayRequest) {
		_, _ = w.Write([]byte(`{"data":null,"errors":[{"message":"Type Query has no field poolz"},{"message":"second"}]}`))
	})

	_, err := svc.QuerySubgraph(context.Background(), "uniswap-v3", "getTopPools", map[string]any{"limit": 1})
	require.Error(t, err)
	assert.Equal(t, "Failed to query subgraph: Type Query has no field poolz", err.Error())

	var qerr *QueryError
	require.True(t, errors.As(err, &qerr))
	assert.Equal(t, "uniswap-v3", qerr.Subgraph)
	assert.Equal(t, "getTopPools", qerr.Query)
}

func TestQuerySubgraph_NoData(t *testing.T) {
	svc, _ := newTestService(t, replyData(`null`))

	_, err := svc.QuerySubgraph(context.Background(), "uniswap-v3", "getTopPools", nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoData))
	assert.Equal(t, "Failed to query subgraph: No data returned from the subgraph", err.Error())
	assert.Equal(t, "no data returned from the subgraph", ErrNoData.Error())
}

func TestQuerySubgraph_HTTPError(t *testing.T) {
	svc, _ := newTestService(t, func(w http.ResponseWriter, _ gatewayRequest) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`auth error: invalid api key`))
	})

	_, err := svc.QuerySubgraph(context.Background(), "uniswap-v3", "getTopPools", nil)
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "Failed to query subgraph: "))
}

func TestQuerySubgraph_CancelledContext(t *testing.T) {
	svc, _ := newTestService(t, replyData(`{"pools":[]}`))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := svc.QuerySubgraph(ctx, "uniswap-v3", "getTopPools", nil)
	require.Error(t, err)
}

func TestSubgraphData_PrettyPrints(t *testing.T) {
	svc, _ := newTestService(t, replyData(`{"pools":[{"id":"0x1"}]}`))

	text, err := svc.SubgraphData(context.Background(), "uniswap-v3", "getTopPools", nil)
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"pools\": [\n    {\n      \"id\": \"0x1\"\n    }\n  ]\n}", text)
}

func TestSubgraphText_FoldsErrors(t *testing.T) {
	svc, _ := newTestService(t, replyData(`{}`))

	text := svc.SubgraphText(context.Background(), "nope", "getTopPools", nil)
	assert.Equal(t, "Error fetching data: Subgraph nope not found in configuration", text)
}

func TestAvailableSubgraphsAndQueries(t *testing.T) {
	svc, _ := newTestService(t, replyData(`{}`))

	assert.Equal(t, []string{"uniswap-v3", "aave-v3"}, svc.AvailableSubgraphs())
	assert.Equal(t, []string{"getPoolDetails", "getTopPools"}, svc.AvailableQueries("uniswap-v3"))
	assert.Equal(t, []string{}, svc.AvailableQueries("unknown"))
}

// ============================================================
// Config loading
// ============================================================

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "graph-config.json")
	raw, err := json.Marshal(testConfig())
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, raw, 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.Len(t, cfg.Subgraphs, 2)
	assert.Equal(t, "QmUniswap", cfg.Subgraphs[0].SubgraphID)
}

func TestLoadConfig_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadConfig(filepath.Join(dir, "missing.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load graph configuration")

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"subgraphs": [`), 0o600))
	_, err = LoadConfig(bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load graph configuration")
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{"empty is fine", Config{}, ""},
		{"missing name", Config{Subgraphs: []SubgraphConfig{{SubgraphID: "x"}}}, "name is required"},
		{"duplicate", Config{Subgraphs: []SubgraphConfig{
			{Name: "a", SubgraphID: "1"}, {Name: "a", SubgraphID: "2"},
		}}, "duplicate subgraph name"},
		{"empty template", Config{Subgraphs: []SubgraphConfig{
			{Name: "a", SubgraphID: "1", Queries: map[string]string{"q": "  "}},
		}}, "empty template"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestShippedConfigIsValid(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join("..", "..", "config", "graph-config.json"))
	require.NoError(t, err)

	names := map[string]bool{}
	for _, sg := range cfg.Subgraphs {
		names[sg.Name] = true
	}
	for _, want := range []string{"uniswap-v3", "sushiswap", "pancakeswap", "aave-v3", "compound-v3", "opensea", "blur", "nft20"} {
		assert.True(t, names[want], "shipped config should declare %s", want)
	}
}
