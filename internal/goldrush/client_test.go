package goldrush

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// --- Test helpers ---

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)
	return NewClient(Config{APIURL: ts.URL, APIKey: "cqt_test"})
}

func okEnvelope(data string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":` + data + `,"error":false,"error_message":null,"error_code":null}`))
	}
}

// ============================================================
// Request shaping
// ============================================================

func TestClient_Paths(t *testing.T) {
	tests := []struct {
		name string
		call func(c *Client) error
		path string
	}{
		{
			name: "transaction",
			call: func(c *Client) error {
				_, err := c.GetTransaction(context.Background(), EthMainnet, "0xabc")
				return err
			},
			path: "/v1/eth-mainnet/transaction_v2/0xabc/",
		},
		{
			name: "balances",
			call: func(c *Client) error {
				_, err := c.GetTokenBalances(context.Background(), BaseMainnet, "0xWALLET")
				return err
			},
			path: "/v1/base-mainnet/address/0xWALLET/balances_v2/",
		},
		{
			name: "nfts",
			call: func(c *Client) error {
				_, err := c.GetNFTs(context.Background(), Chain("1"), "demo.eth")
				return err
			},
			path: "/v1/1/address/demo.eth/balances_nft/",
		},
		{
			name: "token details uses balances endpoint",
			call: func(c *Client) error {
				_, err := c.GetTokenDetails(context.Background(), EthMainnet, "0xTOKEN")
				return err
			},
			path: "/v1/eth-mainnet/address/0xTOKEN/balances_v2/",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotPath, gotAuth string
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				gotPath = r.URL.Path
				gotAuth = r.Header.Get("Authorization")
				okEnvelope(`{"items":[]}`)(w, r)
			})
			require.NoError(t, tt.call(c))
			assert.Equal(t, tt.path, gotPath)
			assert.Equal(t, "Bearer cqt_test", gotAuth)
		})
	}
}

func TestClient_PathEscaping(t *testing.T) {
	var rawPath string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		rawPath = r.URL.EscapedPath()
		okEnvelope(`{}`)(w, r)
	})

	_, err := c.GetNFTs(context.Background(), EthMainnet, "a/b")
	require.NoError(t, err)
	assert.Equal(t, "/v1/eth-mainnet/address/a%2Fb/balances_nft/", rawPath)
}

// ============================================================
// Envelope handling
// ============================================================

func TestClient_ReturnsData(t *testing.T) {
	c := newTestClient(t, okEnvelope(`{"address":"0x1","items":[{"balance":"1"}]}`))

	data, err := c.GetTokenBalances(context.Background(), EthMainnet, "0x1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"address":"0x1","items":[{"balance":"1"}]}`, string(data))
}

func TestClient_HTTPErrorWithEnvelope(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"data":null,"error":true,"error_message":"Invalid API key","error_code":401}`))
	})

	_, err := c.GetTransaction(context.Background(), EthMainnet, "0xabc")
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, 401, apiErr.Code)
	assert.Equal(t, "analytics API error (401): Invalid API key", err.Error())
}

func TestClient_HTTPErrorNonJSON(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream timeout"))
	})

	_, err := c.GetNFTs(context.Background(), EthMainnet, "0x1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
	assert.Contains(t, err.Error(), "upstream timeout")
}

func TestClient_EnvelopeErrorFlagWith200(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"data":null,"error":true,"error_message":"Malformed address provided","error_code":400}`))
	})

	_, err := c.GetTokenBalances(context.Background(), EthMainnet, "nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Malformed address provided")
}

func TestClient_NullData(t *testing.T) {
	c := newTestClient(t, okEnvelope(`null`))

	_, err := c.GetTransaction(context.Background(), EthMainnet, "0xabc")
	assert.True(t, errors.Is(err, ErrNoData))
}

func TestClient_ConnectionRefused(t *testing.T) {
	c := NewClient(Config{APIURL: "http://127.0.0.1:1", APIKey: "k"})
	_, err := c.GetTransaction(context.Background(), EthMainnet, "0xabc")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "request failed")
}

func TestClient_Timeout(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		_, _ = w.Write([]byte(`{"data":{}}`))
	}))
	defer ts.Close()

	c := NewClient(Config{APIURL: ts.URL, APIKey: "k", Timeout: 20 * time.Millisecond})
	_, err := c.GetTransaction(context.Background(), EthMainnet, "0xabc")
	require.Error(t, err)
}

func TestNewClient_Defaults(t *testing.T) {
	c := NewClient(Config{})
	assert.Equal(t, DefaultAPIURL, c.cfg.APIURL)
	assert.Equal(t, 30*time.Second, c.httpClient.Timeout)
}

func TestClient_SpanCarriesChain(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec)))
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	c := newTestClient(t, okEnvelope(`{"items":[]}`))
	_, err := c.GetNFTs(context.Background(), "base-mainnet", "0x1")
	require.NoError(t, err)

	spans := rec.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "goldrush.get_nfts", spans[0].Name())
	assert.Contains(t, spans[0].Attributes(), attribute.String("chain", "base-mainnet"))
	assert.Contains(t, spans[0].Attributes(), attribute.String("analytics.operation", "get_nfts"))
}
