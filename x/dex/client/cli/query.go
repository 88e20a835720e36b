package cli

import (
	"encoding/json"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/paw-chain/pawswap/api/client"
	"github.com/paw-chain/pawswap/x/dex/types"
)

// GetQueryCmd returns the cli query commands for the dex module
func GetQueryCmd() *cobra.Command {
	dexQueryCmd := &cobra.Command{
		Use:                        types.ModuleName,
		Short:                      "Querying commands for the dex module",
		SuggestionsMinimumDistance: 2,
	}

	dexQueryCmd.AddCommand(
		GetCmdQueryPools(),
		GetCmdQueryPool(),
		GetCmdQueryPositions(),
		GetCmdQueryPosition(),
		GetCmdQueryQuote(),
		GetCmdQueryRoute(),
		GetCmdQueryTokens(),
		GetCmdQueryToken(),
	)

	return dexQueryCmd
}

// getCmd builds a query command that prints the JSON returned for path.
func getCmd(cmd *cobra.Command, path func(args []string) (string, url.Values, error)) *cobra.Command {
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		p, query, err := path(args)
		if err != nil {
			return err
		}
		var res json.RawMessage
		if err := client.FromCmd(cmd).Get(cmd.Context(), p, query, &res); err != nil {
			return err
		}
		return client.PrintJSON(cmd, res)
	}
	client.AddQueryFlagsToCmd(cmd)
	return cmd
}

// GetCmdQueryPools returns the command to list all pools
func GetCmdQueryPools() *cobra.Command {
	return getCmd(&cobra.Command{
		Use:   "pools",
		Short: "Query all liquidity pools",
		Args:  cobra.NoArgs,
	}, func([]string) (string, url.Values, error) {
		return "/pools", nil, nil
	})
}

// GetCmdQueryPool returns the command to query a pool by ID
func GetCmdQueryPool() *cobra.Command {
	return getCmd(&cobra.Command{
		Use:   "pool [pool-id]",
		Short: "Query liquidity pool by ID",
		Long: `Query reserves, fee, share supply and TVL of a liquidity pool.

Example:
  $ pawswapd query dex pool 1`,
		Args: cobra.ExactArgs(1),
	}, func(args []string) (string, url.Values, error) {
		poolID, err := parsePoolID(args[0])
		if err != nil {
			return "", nil, err
		}
		return client.PoolPath(poolID), nil, nil
	})
}

// GetCmdQueryPositions returns the command to list the positions of a pool
func GetCmdQueryPositions() *cobra.Command {
	return getCmd(&cobra.Command{
		Use:   "positions [pool-id]",
		Short: "Query all liquidity positions of a pool",
		Args:  cobra.ExactArgs(1),
	}, func(args []string) (string, url.Values, error) {
		poolID, err := parsePoolID(args[0])
		if err != nil {
			return "", nil, err
		}
		return client.PoolPath(poolID, "positions"), nil, nil
	})
}

// GetCmdQueryPosition returns the command to query one user's position
func GetCmdQueryPosition() *cobra.Command {
	return getCmd(&cobra.Command{
		Use:   "position [pool-id] [user]",
		Short: "Query a user's liquidity position in a pool",
		Args:  cobra.ExactArgs(2),
	}, func(args []string) (string, url.Values, error) {
		poolID, err := parsePoolID(args[0])
		if err != nil {
			return "", nil, err
		}
		return client.PoolPath(poolID, "positions", args[1]), nil, nil
	})
}

// GetCmdQueryQuote returns the command to quote a swap
func GetCmdQueryQuote() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quote [token-in] [token-out] [amount]",
		Short: "Quote a swap without executing it",
		Long: `Quote a swap. The amount is the input amount, or the desired output
amount with --exact-out. Pairs without a direct pool are routed.

Example:
  $ pawswapd query dex quote upaw uatom 1000000
  $ pawswapd query dex quote upaw uatom 500 --exact-out`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := parseAmount("amount", args[2]); err != nil {
				return err
			}
			exactOut, _ := cmd.Flags().GetBool(FlagExactOut)
			q, err := client.FromCmd(cmd).Quote(cmd.Context(), args[0], args[1], args[2], exactOut)
			if err != nil {
				return err
			}
			return client.PrintJSON(cmd, q)
		},
	}
	cmd.Flags().Bool(FlagExactOut, false, "treat the amount as the desired output")
	client.AddQueryFlagsToCmd(cmd)
	return cmd
}

// GetCmdQueryRoute returns the command to find the best route between two tokens
func GetCmdQueryRoute() *cobra.Command {
	return getCmd(&cobra.Command{
		Use:   "route [token-in] [token-out] [amount-in]",
		Short: "Find the best route for an exact-in swap",
		Args:  cobra.ExactArgs(3),
	}, func(args []string) (string, url.Values, error) {
		if _, err := parseAmount("amount-in", args[2]); err != nil {
			return "", nil, err
		}
		return "/swap/route", url.Values{"tokenIn": {args[0]}, "tokenOut": {args[1]}, "amount": {args[2]}}, nil
	})
}

// GetCmdQueryTokens returns the command to list registered tokens
func GetCmdQueryTokens() *cobra.Command {
	return getCmd(&cobra.Command{
		Use:   "tokens",
		Short: "Query all registered tokens",
		Args:  cobra.NoArgs,
	}, func([]string) (string, url.Values, error) {
		return "/tokens", nil, nil
	})
}

// GetCmdQueryToken returns the command to query one token
func GetCmdQueryToken() *cobra.Command {
	return getCmd(&cobra.Command{
		Use:   "token [token-id]",
		Short: "Query a registered token",
		Args:  cobra.ExactArgs(1),
	}, func(args []string) (string, url.Values, error) {
		return "/tokens/" + url.PathEscape(args[0]), nil, nil
	})
}
