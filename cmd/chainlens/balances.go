package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/mbd888/chainlens/internal/goldrush"
	"github.com/mbd888/chainlens/internal/validation"
)

func (a *app) balancesCmd() *cobra.Command {
	var showAll bool

	cmd := &cobra.Command{
		Use:   "balances <chain> <address>",
		Short: "Show token balances for a wallet",
		Long: `Fetch token balances from the analytics API and render them with
decimal-exact quantities and fiat quotes.

Examples:
  chainlens balances eth-mainnet 0xd8dA6BF26964aF9D7eEd9e03E53415D37aA96045
  chainlens balances base-mainnet 0xabc... --all`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			chain := goldrush.Chain(strings.ToLower(strings.TrimSpace(args[0])))
			address := strings.TrimSpace(args[1])
			if strings.HasPrefix(address, "0x") && !validation.IsValidEthAddress(address) {
				return fmt.Errorf("invalid address %q: must be 0x + 40 hex chars", address)
			}

			deps, err := a.deps()
			if err != nil {
				return err
			}
			defer func() { _ = deps.Close() }()

			raw, err := deps.Analytics.GetTokenBalances(cmd.Context(), chain, address)
			if err != nil {
				return err
			}
			balances, err := goldrush.DecodeBalances(raw)
			if err != nil {
				return err
			}

			renderBalances(cmd, balances, showAll)
			return nil
		},
	}
	cmd.Flags().BoolVar(&showAll, "all", false, "include zero balances")
	return cmd
}

func renderBalances(cmd *cobra.Command, b *goldrush.Balances, showAll bool) {
	out := cmd.OutOrStdout()

	items := b.Items
	if !showAll {
		items = b.NonZero()
	}

	currency := strings.ToUpper(b.QuoteCurrency)
	if currency == "" {
		currency = "USD"
	}

	fmt.Fprintf(out, "%s on %s\n\n", color.CyanString(b.Address), b.ChainName)
	if len(items) == 0 {
		fmt.Fprintln(out, color.YellowString("No token balances"))
		return
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "TOKEN\tBALANCE\tVALUE (%s)\n", currency)
	for _, it := range items {
		symbol := it.ContractTickerSymbol
		if symbol == "" {
			symbol = it.ContractAddress
		}
		value := "-"
		if it.Quote != nil {
			value = it.QuoteValue().StringFixed(2)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", symbol, it.Quantity().String(), value)
	}
	_ = tw.Flush()

	fmt.Fprintf(out, "\nTotal: %s %s\n", color.GreenString(b.TotalQuote().StringFixed(2)), currency)
}
