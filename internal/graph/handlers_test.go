package graph

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T, respond func(http.ResponseWriter, gatewayRequest)) (*gin.Engine, *[]gatewayRequest) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	svc, seen := newTestService(t, respond)
	r := gin.New()
	NewHandler(svc).RegisterRoutes(r.Group("/v1"))
	return r, seen
}

func serve(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHandler_ListSubgraphs(t *testing.T) {
	r, _ := newTestRouter(t, replyData(`{}`))

	w := serve(r, http.MethodGet, "/v1/subgraphs", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Subgraphs []subgraphSummary `json:"subgraphs"`
		Count     int               `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Count)
	assert.Equal(t, "uniswap-v3", resp.Subgraphs[0].Name)
	assert.Equal(t, "QmUniswap", resp.Subgraphs[0].SubgraphID)
	assert.Equal(t, []string{"getPoolDetails", "getTopPools"}, resp.Subgraphs[0].Queries)
}

func TestHandler_ListQueries(t *testing.T) {
	r, _ := newTestRouter(t, replyData(`{}`))

	w := serve(r, http.MethodGet, "/v1/subgraphs/aave-v3/queries", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "getMarketData")

	w = serve(r, http.MethodGet, "/v1/subgraphs/nope/queries", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "subgraph_not_found")
}

func TestHandler_RunQuery(t *testing.T) {
	r, seen := newTestRouter(t, replyData(`{"pools":[]}`))

	w := serve(r, http.MethodPost, "/v1/subgraphs/uniswap-v3/queries/getTopPools", `{"limit":3}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"subgraph":"uniswap-v3","query":"getTopPools","data":{"pools":[]}}`, w.Body.String())
	assert.Equal(t, float64(3), (*seen)[0].Variables["limit"])
}

func TestHandler_RunQuery_EmptyBody(t *testing.T) {
	r, _ := newTestRouter(t, replyData(`{"markets":[]}`))

	w := serve(r, http.MethodPost, "/v1/subgraphs/aave-v3/queries/getMarketData", "")
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestHandler_RunQuery_Errors(t *testing.T) {
	r, _ := newTestRouter(t, func(w http.ResponseWriter, _ gatewayRequest) {
		_, _ = w.Write([]byte(`{"errors":[{"message":"indexer unavailable"}]}`))
	})

	tests := []struct {
		path, body string
		status     int
		code       string
	}{
		{"/v1/subgraphs/missing/queries/getTopPools", "", http.StatusNotFound, "subgraph_not_found"},
		{"/v1/subgraphs/uniswap-v3/queries/missing", "", http.StatusNotFound, "query_not_found"},
		{"/v1/subgraphs/uniswap-v3/queries/getTopPools", `[1,2]`, http.StatusBadRequest, "invalid_request"},
		{"/v1/subgraphs/uniswap-v3/queries/getTopPools", `{"limit":1}`, http.StatusBadGateway, "query_failed"},
	}
	for _, tt := range tests {
		w := serve(r, http.MethodPost, tt.path, tt.body)
		assert.Equal(t, tt.status, w.Code, tt.path)
		assert.Contains(t, w.Body.String(), tt.code, tt.path)
	}
}
