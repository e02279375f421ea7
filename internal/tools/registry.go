package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/mbd888/chainlens/internal/journal"
	"github.com/mbd888/chainlens/internal/logging"
	"github.com/mbd888/chainlens/internal/metrics"
	"github.com/mbd888/chainlens/internal/traces"
)

// Tool names.
const (
	ToolDexPools       = "get_dex_pools"
	ToolLendingMarket  = "get_lending_market"
	ToolNFTMarket      = "get_nft_market"
	ToolTransaction    = "get_transaction"
	ToolWalletBalances = "get_wallet_balances"
	ToolWalletNFTs     = "get_wallet_nfts"
	ToolTokenDetails   = "get_token_details"
)

// Tool is a named operation. Run never returns a Go error: every failure is
// reported through the envelope.
type Tool struct {
	Name        string
	Description string
	Run         func(ctx context.Context, args json.RawMessage) Result
}

// Definition is the public description of a registered tool.
type Definition struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Registry is the tool table shared by the MCP and HTTP surfaces.
type Registry struct {
	mu       sync.RWMutex
	tools    map[string]Tool
	order    []string
	recorder journal.Recorder
	logger   *slog.Logger
}

// NewRegistry creates an empty registry. recorder may be nil.
func NewRegistry(logger *slog.Logger, recorder journal.Recorder) *Registry {
	return &Registry{
		tools:    make(map[string]Tool),
		recorder: recorder,
		logger:   logging.Component(logger, "tools"),
	}
}

// New builds the registry with every chainlens tool: the three subgraph
// tools backed by q and the analytics lookups backed by a.
func New(logger *slog.Logger, recorder journal.Recorder, q Querier, a Analytics) (*Registry, error) {
	r := NewRegistry(logger, recorder)
	if err := r.Register(SubgraphTools(q)...); err != nil {
		return nil, err
	}
	if err := r.Register(AnalyticsTools(a)...); err != nil {
		return nil, err
	}
	return r, nil
}

// Register adds tools in order. Names must be unique.
func (r *Registry) Register(tools ...Tool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range tools {
		if t.Name == "" || t.Run == nil {
			return errors.New("tool needs a name and a run function")
		}
		if _, dup := r.tools[t.Name]; dup {
			return fmt.Errorf("tool %s already registered", t.Name)
		}
		r.tools[t.Name] = t
		r.order = append(r.order, t.Name)
	}
	return nil
}

// Definitions lists registered tools in registration order.
func (r *Registry) Definitions() []Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	defs := make([]Definition, 0, len(r.order))
	for _, name := range r.order {
		defs = append(defs, Definition{Name: name, Description: r.tools[name].Description})
	}
	return defs
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.tools[name]
	return ok
}

// Invoke runs the named tool with raw JSON arguments. The invocation is
// logged, counted, traced and journaled; journal failures never change the
// result.
func (r *Registry) Invoke(ctx context.Context, name string, args json.RawMessage) Result {
	r.mu.RLock()
	tool, ok := r.tools[name]
	r.mu.RUnlock()

	ctx, span := traces.StartSpan(ctx, "tools.Invoke", traces.Tool(name))
	start := time.Now()

	var result Result
	if ok {
		result = tool.Run(ctx, args)
	} else {
		result = Failuref("unknown tool: %s", name)
	}
	took := time.Since(start)

	var runErr error
	if !result.Success {
		runErr = errors.New(result.Error)
	}
	traces.End(span, runErr)
	if ok {
		metrics.ObserveToolInvocation(name, result.Success)
	} else {
		metrics.ObserveToolInvocation("unknown", false)
	}

	logger := logging.Ctx(ctx, r.logger).With("tool", name)
	if result.Success {
		logger.Info("tool invoked", "duration_ms", took.Milliseconds())
	} else {
		logger.Warn("tool failed", "duration_ms", took.Milliseconds(), "error", result.Error)
	}

	if r.recorder != nil {
		entry := journal.NewEntry(name, compact(args), result.Success, result.Error, took)
		if err := r.recorder.Record(ctx, entry); err != nil {
			logger.Warn("failed to journal invocation", "error", err)
		}
	}
	return result
}

// normalizer is implemented by argument types that clean their fields
// before validation.
type normalizer interface {
	normalize()
}

// decodeArgs unmarshals tool arguments and normalizes them. Empty and null
// payloads decode as {}.
func decodeArgs(args json.RawMessage, v any) error {
	trimmed := bytes.TrimSpace(args)
	if len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null")) {
		if err := json.Unmarshal(trimmed, v); err != nil {
			return fmt.Errorf("invalid arguments: %w", err)
		}
	}
	if n, ok := v.(normalizer); ok {
		n.normalize()
	}
	return nil
}

func compact(args json.RawMessage) json.RawMessage {
	var buf bytes.Buffer
	if err := json.Compact(&buf, args); err != nil {
		return args
	}
	return buf.Bytes()
}
