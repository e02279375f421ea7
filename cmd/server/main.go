// Chainlens - HTTP gateway for on-chain data tools
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/mbd888/chainlens/internal/config"
	"github.com/mbd888/chainlens/internal/logging"
	"github.com/mbd888/chainlens/internal/server"
	"github.com/mbd888/chainlens/internal/traces"
)

// Build info - set by ldflags
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func main() {
	// Bootstrap logger until the configured level and format are known
	logger := logging.New("info", "text")

	logger.Info("starting chainlens",
		"version", Version,
		"commit", Commit,
		"build_time", BuildTime,
	)

	if err := run(logger); err != nil {
		logger.Error("chainlens exited", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logger = logging.New(cfg.LogLevel, cfg.LogFormat)

	logger.Info("configuration loaded",
		"env", cfg.Env,
		"graph_gateway", cfg.GraphGatewayURL,
		"graph_config", cfg.GraphConfigPath,
		"goldrush_api", cfg.GoldRushAPIURL,
	)

	ctx := context.Background()

	shutdownTracing, err := traces.Init(ctx, cfg.OTLPEndpoint, "chainlens", logger)
	if err != nil {
		return fmt.Errorf("failed to init tracing: %w", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			logger.Error("tracing shutdown error", "error", err)
		}
	}()

	srv, err := server.New(cfg, server.WithLogger(logger), server.WithVersion(Version))
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Run(ctx)
}
