package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/mbd888/chainlens/internal/config"
	"github.com/mbd888/chainlens/internal/logging"
	"github.com/mbd888/chainlens/internal/server"
)

// Version is set by ldflags.
var Version = "dev"

// depsLoader builds the shared wiring. Tests replace it.
type depsLoader func(logger *slog.Logger) (*server.Deps, error)

func loadDeps(logger *slog.Logger) (*server.Deps, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return server.NewDeps(cfg, logger, server.DepsOptions{})
}

type app struct {
	load    depsLoader
	verbose bool
}

func newRootCmd() *cobra.Command {
	return newRootCmdWith(loadDeps)
}

func newRootCmdWith(load depsLoader) *cobra.Command {
	a := &app{load: load}

	root := &cobra.Command{
		Use:   "chainlens",
		Short: "On-chain data from subgraphs and the analytics API",
		Long: `chainlens runs the same tools the HTTP and MCP servers expose.

Examples:
  chainlens subgraphs                                   # List subgraphs and their queries
  chainlens query uniswap-v3 getTopPools --var limit=5  # Run a stored query
  chainlens tool get_dex_pools --args '{"type":"top_pools"}'
  chainlens balances eth-mainnet 0xd8dA6BF26964aF9D7eEd9e03E53415D37aA96045`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "log upstream calls to stderr")

	root.AddCommand(
		a.subgraphsCmd(),
		a.queryCmd(),
		a.toolCmd(),
		a.balancesCmd(),
		versionCmd(),
	)
	return root
}

// deps loads the wiring with a logger that stays quiet unless --verbose.
func (a *app) deps() (*server.Deps, error) {
	var w io.Writer = io.Discard
	level := "error"
	if a.verbose {
		w, level = os.Stderr, "debug"
	}
	return a.load(logging.NewWithWriter(w, level, "text"))
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "chainlens %s\n", Version)
		},
	}
}
