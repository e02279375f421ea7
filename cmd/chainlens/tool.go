package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var errToolFailed = errors.New("tool reported failure")

func (a *app) toolCmd() *cobra.Command {
	var rawArgs string

	cmd := &cobra.Command{
		Use:   "tool [name]",
		Short: "Invoke a tool, or list tools when no name is given",
		Long: `Invoke a tool by name and print its result envelope.

Examples:
  chainlens tool
  chainlens tool get_dex_pools --args '{"type":"top_pools","limit":5}'
  chainlens tool get_transaction --args '{"chain":"eth-mainnet","txHash":"0x..."}'`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := a.deps()
			if err != nil {
				return err
			}
			defer func() { _ = deps.Close() }()

			out := cmd.OutOrStdout()
			if len(args) == 0 {
				for _, d := range deps.Tools.Definitions() {
					fmt.Fprintf(out, "%s\n  %s\n", color.CyanString(d.Name), d.Description)
				}
				return nil
			}

			if !json.Valid([]byte(rawArgs)) {
				return fmt.Errorf("--args must be valid JSON")
			}

			result := deps.Tools.Invoke(cmd.Context(), args[0], json.RawMessage(rawArgs))

			var pretty bytes.Buffer
			if err := json.Indent(&pretty, result.JSON(), "", "  "); err != nil {
				return err
			}
			fmt.Fprintln(out, pretty.String())

			if !result.Success {
				return errToolFailed
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&rawArgs, "args", "{}", "tool arguments as a JSON object")
	return cmd
}
