// Chainlens MCP Server - exposes the on-chain data tools to LLM clients over stdio
package main

import (
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/server"

	"github.com/mbd888/chainlens/internal/config"
	"github.com/mbd888/chainlens/internal/logging"
	"github.com/mbd888/chainlens/internal/mcpserver"
	chainlens "github.com/mbd888/chainlens/internal/server"
)

// Version is set by ldflags.
var Version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	// stdout carries the protocol, so logs go to stderr
	logger := logging.NewWithWriter(os.Stderr, cfg.LogLevel, cfg.LogFormat)

	deps, err := chainlens.NewDeps(cfg, logger, chainlens.DepsOptions{})
	if err != nil {
		logger.Error("failed to initialize", "error", err)
		os.Exit(1)
	}
	defer func() { _ = deps.Close() }()

	logger.Info("chainlens MCP server started",
		"version", Version,
		"subgraphs", len(deps.Graph.AvailableSubgraphs()),
		"tools", len(deps.Tools.Definitions()),
	)

	s := mcpserver.NewMCPServer(deps.Tools, Version)
	if err := server.ServeStdio(s); err != nil {
		logger.Error("MCP server error", "error", err)
		_ = deps.Close()
		os.Exit(1)
	}
}
