package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func (a *app) subgraphsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "subgraphs",
		Short: "List configured subgraphs and their queries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			deps, err := a.deps()
			if err != nil {
				return err
			}
			defer func() { _ = deps.Close() }()

			out := cmd.OutOrStdout()
			for _, name := range deps.Graph.AvailableSubgraphs() {
				sg, _ := deps.Graph.Subgraph(name)
				fmt.Fprintf(out, "%s (%s)\n", color.CyanString(name), sg.SubgraphID)
				for _, q := range deps.Graph.AvailableQueries(name) {
					fmt.Fprintf(out, "  - %s\n", q)
				}
			}
			return nil
		},
	}
}

func (a *app) queryCmd() *cobra.Command {
	var vars []string

	cmd := &cobra.Command{
		Use:   "query <subgraph> <query>",
		Short: "Run a stored subgraph query",
		Long: `Run a query from the graph configuration and print the data.

Variables are passed as key=value. Integers and true/false are sent typed,
everything else as a string. Wrap a value in double quotes to force a
string, e.g. --var 'tokenId="1234"'.

Examples:
  chainlens query uniswap-v3 getTopPools --var limit=5
  chainlens query aave-v3 getUserPositions --var userAddress=0xabc...`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed, err := parseVars(vars)
			if err != nil {
				return err
			}

			deps, err := a.deps()
			if err != nil {
				return err
			}
			defer func() { _ = deps.Close() }()

			fmt.Fprintln(cmd.OutOrStdout(), deps.Graph.SubgraphText(cmd.Context(), args[0], args[1], parsed))
			return nil
		},
	}
	cmd.Flags().StringArrayVar(&vars, "var", nil, "query variable as key=value (repeatable)")
	return cmd
}

// parseVars turns key=value pairs into GraphQL variables.
func parseVars(pairs []string) (map[string]any, error) {
	vars := make(map[string]any, len(pairs))
	for _, p := range pairs {
		key, value, ok := strings.Cut(p, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid variable %q: expected key=value", p)
		}
		vars[key] = typedValue(value)
	}
	return vars, nil
}

func typedValue(v string) any {
	if len(v) >= 2 && strings.HasPrefix(v, `"`) && strings.HasSuffix(v, `"`) {
		return v[1 : len(v)-1]
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	switch v {
	case "true":
		return true
	case "false":
		return false
	}
	return v
}
