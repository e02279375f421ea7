package graph

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"time"

	graphql "github.com/hasura/go-graphql-client"

	"github.com/mbd888/chainlens/internal/logging"
	"github.com/mbd888/chainlens/internal/metrics"
	"github.com/mbd888/chainlens/internal/traces"
)

// DefaultGatewayURL is the public gateway of the decentralized network.
const DefaultGatewayURL = "https://gateway.thegraph.com/api"

var (
	ErrSubgraphNotFound = errors.New("subgraph not found")
	ErrQueryNotFound    = errors.New("query not found")
	ErrNoData           = errors.New("no data returned from the subgraph")
)

// lookupError carries the user-facing message while still matching the
// package sentinel through errors.Is.
type lookupError struct {
	sentinel error
	msg      string
}

func (e *lookupError) Error() string { return e.msg }
func (e *lookupError) Unwrap() error { return e.sentinel }

// QueryError reports a failed gateway call.
type QueryError struct {
	Subgraph string
	Query    string
	Err      error
}

func (e *QueryError) Error() string {
	return "Failed to query subgraph: " + firstMessage(e.Err)
}

func (e *QueryError) Unwrap() error { return e.Err }

// firstMessage returns the first GraphQL error message when the transport
// reported a list of errors, otherwise the error text. Empty data keeps the
// capitalised message callers show to users.
func firstMessage(err error) string {
	if errors.Is(err, ErrNoData) {
		return "No data returned from the subgraph"
	}
	var gqlErrs graphql.Errors
	if errors.As(err, &gqlErrs) && len(gqlErrs) > 0 {
		return gqlErrs[0].Message
	}
	return err.Error()
}

// Options configures a Service.
type Options struct {
	APIKey     string
	GatewayURL string       // defaults to DefaultGatewayURL
	HTTPClient *http.Client // defaults to a client with a 30s timeout
	Logger     *slog.Logger
}

// Service holds one GraphQL client per configured subgraph. It is built
// once and is safe for concurrent use; nothing is mutated after NewService.
type Service struct {
	subgraphs []SubgraphConfig
	byName    map[string]SubgraphConfig
	clients   map[string]*graphql.Client
	logger    *slog.Logger
}

// EndpointURL builds the gateway URL for a subgraph id.
func EndpointURL(gatewayURL, apiKey, subgraphID string) string {
	return strings.TrimRight(gatewayURL, "/") + "/" + apiKey + "/subgraphs/id/" + subgraphID
}

// NewService builds the client registry for cfg.
func NewService(cfg Config, opts Options) (*Service, error) {
	if opts.APIKey == "" {
		return nil, errors.New("THEGRAPH_API_KEY environment variable is not set")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid graph configuration: %w", err)
	}
	if opts.GatewayURL == "" {
		opts.GatewayURL = DefaultGatewayURL
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}

	s := &Service{
		subgraphs: make([]SubgraphConfig, 0, len(cfg.Subgraphs)),
		byName:    make(map[string]SubgraphConfig, len(cfg.Subgraphs)),
		clients:   make(map[string]*graphql.Client, len(cfg.Subgraphs)),
		logger:    logging.Component(opts.Logger, "graph"),
	}

	bearer := "Bearer " + opts.APIKey
	for _, sg := range cfg.Subgraphs {
		sg = sg.clone()
		url := EndpointURL(opts.GatewayURL, opts.APIKey, sg.SubgraphID)
		client := graphql.NewClient(url, opts.HTTPClient).
			WithRequestModifier(func(r *http.Request) {
				r.Header.Set("Authorization", bearer)
			})

		s.subgraphs = append(s.subgraphs, sg)
		s.byName[sg.Name] = sg
		s.clients[sg.Name] = client
	}

	metrics.ConfiguredSubgraphs.Set(float64(len(s.subgraphs)))
	s.logger.Info("graph clients initialized", "subgraphs", len(s.subgraphs))
	return s, nil
}

// QuerySubgraph runs the named query template of subgraphName with vars as
// GraphQL variables and returns the raw "data" object.
func (s *Service) QuerySubgraph(ctx context.Context, subgraphName, queryName string, vars map[string]any) (json.RawMessage, error) {
	sg, ok := s.byName[subgraphName]
	client := s.clients[subgraphName]
	if !ok || client == nil {
		return nil, &lookupError{
			sentinel: ErrSubgraphNotFound,
			msg:      fmt.Sprintf("Subgraph %s not found in configuration", subgraphName),
		}
	}

	tmpl, ok := sg.Queries[queryName]
	if !ok {
		return nil, &lookupError{
			sentinel: ErrQueryNotFound,
			msg:      fmt.Sprintf("Query %s not found for subgraph %s", queryName, subgraphName),
		}
	}

	if vars == nil {
		vars = map[string]any{}
	}

	ctx, span := traces.StartSpan(ctx, "graph.QuerySubgraph",
		traces.Subgraph(subgraphName), traces.Query(queryName))
	start := time.Now()

	data, err := client.ExecRaw(ctx, tmpl, vars)
	if err == nil && isEmpty(data) {
		err = ErrNoData
	}

	metrics.ObserveSubgraphQuery(subgraphName, queryName, start, err)
	traces.End(span, err)

	if err != nil {
		qerr := &QueryError{Subgraph: subgraphName, Query: queryName, Err: err}
		logging.Ctx(ctx, s.logger).Warn("subgraph query failed",
			"subgraph", subgraphName,
			"query", queryName,
			"error", qerr.Error(),
		)
		return nil, qerr
	}

	return json.RawMessage(data), nil
}

// SubgraphData is QuerySubgraph with the result pretty-printed.
func (s *Service) SubgraphData(ctx context.Context, subgraphName, queryName string, vars map[string]any) (string, error) {
	data, err := s.QuerySubgraph(ctx, subgraphName, queryName, vars)
	if err != nil {
		return "", err
	}
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, data, "", "  "); err != nil {
		return "", fmt.Errorf("format subgraph data: %w", err)
	}
	return pretty.String(), nil
}

// SubgraphText never fails: errors are folded into the returned text as
// "Error fetching data: <message>".
func (s *Service) SubgraphText(ctx context.Context, subgraphName, queryName string, vars map[string]any) string {
	text, err := s.SubgraphData(ctx, subgraphName, queryName, vars)
	if err != nil {
		return "Error fetching data: " + err.Error()
	}
	return text
}

// AvailableSubgraphs lists subgraph names in configuration order.
func (s *Service) AvailableSubgraphs() []string {
	names := make([]string, 0, len(s.subgraphs))
	for _, sg := range s.subgraphs {
		names = append(names, sg.Name)
	}
	return names
}

// AvailableQueries lists the query names of a subgraph, sorted. Unknown
// subgraphs yield an empty list.
func (s *Service) AvailableQueries(subgraphName string) []string {
	sg, ok := s.byName[subgraphName]
	if !ok {
		return []string{}
	}
	names := make([]string, 0, len(sg.Queries))
	for name := range sg.Queries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Subgraph returns a copy of the named subgraph's configuration.
func (s *Service) Subgraph(name string) (SubgraphConfig, bool) {
	sg, ok := s.byName[name]
	if !ok {
		return SubgraphConfig{}, false
	}
	return sg.clone(), true
}

func isEmpty(data []byte) bool {
	trimmed := bytes.TrimSpace(data)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}
