// Package graph dispatches named, templated GraphQL queries to subgraphs
// served by the decentralized indexing gateway.
//
// The set of subgraphs and their query templates comes from a static JSON
// file loaded once at startup:
//
//	{
//	  "subgraphs": [
//	    {
//	      "name": "uniswap-v3",
//	      "subgraphId": "5zvR82...",
//	      "queries": { "getTopPools": "query($limit: Int!) { pools(first: $limit) { id } }" }
//	    }
//	  ]
//	}
package graph

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// SubgraphConfig describes one subgraph and its named query templates.
type SubgraphConfig struct {
	Name       string            `json:"name"`
	SubgraphID string            `json:"subgraphId"`
	Queries    map[string]string `json:"queries"`
}

// Config is the parsed configuration file.
type Config struct {
	Subgraphs []SubgraphConfig `json:"subgraphs"`
}

// LoadConfig reads and validates the configuration file at path.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path comes from operator configuration
	if err != nil {
		return Config{}, fmt.Errorf("failed to load graph configuration: %w", err)
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return Config{}, fmt.Errorf("failed to load graph configuration: %w", err)
	}
	return cfg, nil
}

// ParseConfig parses and validates raw configuration JSON.
func ParseConfig(data []byte) (Config, error) {
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks names are present and unique and templates are non-empty.
func (c Config) Validate() error {
	seen := make(map[string]bool, len(c.Subgraphs))
	for i, sg := range c.Subgraphs {
		if strings.TrimSpace(sg.Name) == "" {
			return fmt.Errorf("subgraphs[%d]: name is required", i)
		}
		if seen[sg.Name] {
			return fmt.Errorf("subgraphs[%d]: duplicate subgraph name %q", i, sg.Name)
		}
		seen[sg.Name] = true
		if strings.TrimSpace(sg.SubgraphID) == "" {
			return fmt.Errorf("subgraph %q: subgraphId is required", sg.Name)
		}
		for name, tmpl := range sg.Queries {
			if strings.TrimSpace(tmpl) == "" {
				return fmt.Errorf("subgraph %q: query %q has an empty template", sg.Name, name)
			}
		}
	}
	return nil
}

// clone returns a deep copy so callers can never mutate the loaded config.
func (s SubgraphConfig) clone() SubgraphConfig {
	queries := make(map[string]string, len(s.Queries))
	for k, v := range s.Queries {
		queries[k] = v
	}
	s.Queries = queries
	return s
}
