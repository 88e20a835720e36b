package cmd

import (
	"github.com/spf13/cobra"

	dexcli "github.com/paw-chain/pawswap/x/dex/client/cli"
	farmcli "github.com/paw-chain/pawswap/x/farm/client/cli"
)

// QueryCmd groups the read-only client commands of every module.
func QueryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:                        "query",
		Aliases:                    []string{"q"},
		Short:                      "Querying subcommands",
		SuggestionsMinimumDistance: 2,
	}
	cmd.AddCommand(
		dexcli.GetQueryCmd(),
		farmcli.GetQueryCmd(),
	)
	return cmd
}

// TxCmd groups the state-changing client commands of every module.
func TxCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:                        "tx",
		Short:                      "Transactions subcommands",
		SuggestionsMinimumDistance: 2,
	}
	cmd.AddCommand(
		dexcli.GetTxCmd(),
		farmcli.GetTxCmd(),
	)
	return cmd
}
