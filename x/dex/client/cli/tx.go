package cli

import (
	"encoding/json"
	"fmt"
	"strconv"

	"cosmossdk.io/math"
	"github.com/spf13/cobra"

	"github.com/paw-chain/pawswap/api"
	"github.com/paw-chain/pawswap/api/client"
	"github.com/paw-chain/pawswap/x/dex/types"
)

// GetTxCmd returns the transaction commands for the dex module
func GetTxCmd() *cobra.Command {
	dexTxCmd := &cobra.Command{
		Use:                        types.ModuleName,
		Short:                      "DEX transaction subcommands",
		SuggestionsMinimumDistance: 2,
	}

	dexTxCmd.AddCommand(
		CmdCreatePool(),
		CmdAddLiquidity(),
		CmdRemoveLiquidity(),
		CmdSwap(),
		CmdSwapExactOut(),
		CmdHaltPool(),
		CmdResumePool(),
	)

	return dexTxCmd
}

func parsePoolID(arg string) (uint64, error) {
	poolID, err := strconv.ParseUint(arg, 10, 64)
	if err != nil || poolID == 0 {
		return 0, fmt.Errorf("invalid pool ID: %s", arg)
	}
	return poolID, nil
}

// parseAmount checks that arg is a positive integer amount.
func parseAmount(name, arg string) (math.Int, error) {
	amount, ok := math.NewIntFromString(arg)
	if !ok {
		return math.Int{}, fmt.Errorf("invalid %s: %s (must be integer)", name, arg)
	}
	if !amount.IsPositive() {
		return math.Int{}, fmt.Errorf("%s must be positive", name)
	}
	return amount, nil
}

// parseOptionalAmount accepts an empty or non-negative integer flag value.
func parseOptionalAmount(cmd *cobra.Command, flag string) (string, error) {
	v, _ := cmd.Flags().GetString(flag)
	if v == "" {
		return "", nil
	}
	amount, ok := math.NewIntFromString(v)
	if !ok || amount.IsNegative() {
		return "", fmt.Errorf("invalid --%s: %s", flag, v)
	}
	return v, nil
}

// post sends body to path and prints the response.
func post(cmd *cobra.Command, path string, body interface{}) error {
	var res json.RawMessage
	if err := client.FromCmd(cmd).Post(cmd.Context(), path, body, &res); err != nil {
		return err
	}
	return client.PrintJSON(cmd, res)
}

// CmdCreatePool returns a CLI command handler for creating a liquidity pool
func CmdCreatePool() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create-pool [token-a] [token-b]",
		Short: "Create a new liquidity pool",
		Long: `Create an empty liquidity pool for a token pair. Creating a pool that
already exists returns the existing pool.

Example:
  $ pawswapd tx dex create-pool upaw uatom
  $ pawswapd tx dex create-pool upaw uusdc --fee-bps 5`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if args[0] == args[1] {
				return fmt.Errorf("tokens must be different")
			}
			req := api.CreatePoolRequest{TokenA: args[0], TokenB: args[1]}
			if cmd.Flags().Changed(FlagFeeBps) {
				fee, _ := cmd.Flags().GetUint32(FlagFeeBps)
				req.FeeRateBps = &fee
			}
			return post(cmd, "/pools", req)
		},
	}

	cmd.Flags().Uint32(FlagFeeBps, types.DefaultFeeRateBps, "pool fee in basis points")
	client.AddQueryFlagsToCmd(cmd)
	return cmd
}

// CmdAddLiquidity returns a CLI command handler for adding liquidity to a pool
func CmdAddLiquidity() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add-liquidity [pool-id] [amount0] [amount1]",
		Short: "Add liquidity to an existing pool",
		Long: `Add liquidity to a pool. Amounts are in pool token order (token0, token1).

Deposits must match the pool ratio unless --auto-adjust is set, in which case
the larger side is reduced to fit.

Example:
  $ pawswapd tx dex add-liquidity 1 1000000 2000000 --user alice`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			poolID, err := parsePoolID(args[0])
			if err != nil {
				return err
			}
			for i, name := range []string{"amount0", "amount1"} {
				amount, ok := math.NewIntFromString(args[i+1])
				if !ok || amount.IsNegative() {
					return fmt.Errorf("invalid %s: %s (must be integer)", name, args[i+1])
				}
			}
			user, err := client.UserFromCmd(cmd)
			if err != nil {
				return err
			}
			autoAdjust, _ := cmd.Flags().GetBool(FlagAutoAdjust)

			return post(cmd, "/pool/add-liquidity", api.AddLiquidityRequest{
				PoolID:     poolID,
				UserID:     user,
				Amount0:    args[1],
				Amount1:    args[2],
				AutoAdjust: autoAdjust,
			})
		},
	}

	cmd.Flags().Bool(FlagAutoAdjust, false, "match the deposit to the pool ratio instead of rejecting it")
	client.AddTxFlagsToCmd(cmd)
	return cmd
}

// CmdRemoveLiquidity returns a CLI command handler for removing liquidity from a pool
func CmdRemoveLiquidity() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remove-liquidity [pool-id] [shares]",
		Short: "Remove liquidity from a pool",
		Long: `Burn LP shares and withdraw the proportional reserves.

Example:
  $ pawswapd tx dex remove-liquidity 1 500000 --user alice --min-amount0 1000`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			poolID, err := parsePoolID(args[0])
			if err != nil {
				return err
			}
			if _, err := parseAmount("shares", args[1]); err != nil {
				return err
			}
			min0, err := parseOptionalAmount(cmd, FlagMinAmount0)
			if err != nil {
				return err
			}
			min1, err := parseOptionalAmount(cmd, FlagMinAmount1)
			if err != nil {
				return err
			}
			user, err := client.UserFromCmd(cmd)
			if err != nil {
				return err
			}

			return post(cmd, "/pool/remove-liquidity", api.RemoveLiquidityRequest{
				PoolID:     poolID,
				UserID:     user,
				LpShares:   args[1],
				MinAmount0: min0,
				MinAmount1: min1,
			})
		},
	}

	cmd.Flags().String(FlagMinAmount0, "", "minimum token0 to receive")
	cmd.Flags().String(FlagMinAmount1, "", "minimum token1 to receive")
	client.AddTxFlagsToCmd(cmd)
	return cmd
}

// CmdSwap returns a CLI command handler for an exact-in swap
func CmdSwap() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "swap [token-in] [token-out] [amount-in]",
		Short: "Swap an exact input amount",
		Long: `Swap tokens through the pair's pool.

Example:
  $ pawswapd tx dex swap upaw uatom 1000000 --min-amount-out 90000 --user alice`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := parseAmount("amount-in", args[2]); err != nil {
				return err
			}
			minOut, err := parseOptionalAmount(cmd, FlagMinAmountOut)
			if err != nil {
				return err
			}
			user, err := client.UserFromCmd(cmd)
			if err != nil {
				return err
			}

			res, err := client.FromCmd(cmd).Swap(cmd.Context(), api.SwapRequest{
				TokenIn:      args[0],
				TokenOut:     args[1],
				AmountIn:     args[2],
				MinAmountOut: minOut,
				UserID:       user,
			})
			if err != nil {
				return err
			}
			return client.PrintJSON(cmd, res)
		},
	}

	cmd.Flags().String(FlagMinAmountOut, "", "minimum output amount (slippage protection)")
	client.AddTxFlagsToCmd(cmd)
	return cmd
}

// CmdSwapExactOut returns a CLI command handler for an exact-out swap
func CmdSwapExactOut() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "swap-exact-out [token-in] [token-out] [amount-out]",
		Short: "Buy an exact output amount",
		Long: `Buy exactly amount-out, paying at most --max-amount-in.

Example:
  $ pawswapd tx dex swap-exact-out upaw uatom 500 --max-amount-in 6000 --user alice`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := parseAmount("amount-out", args[2]); err != nil {
				return err
			}
			maxIn, _ := cmd.Flags().GetString(FlagMaxAmountIn)
			if _, err := parseAmount(FlagMaxAmountIn, maxIn); err != nil {
				return err
			}
			user, err := client.UserFromCmd(cmd)
			if err != nil {
				return err
			}

			return post(cmd, "/swap/exact-out", api.SwapExactOutRequest{
				TokenIn:     args[0],
				TokenOut:    args[1],
				AmountOut:   args[2],
				MaxAmountIn: maxIn,
				UserID:      user,
			})
		},
	}

	cmd.Flags().String(FlagMaxAmountIn, "", "maximum input amount")
	_ = cmd.MarkFlagRequired(FlagMaxAmountIn)
	client.AddTxFlagsToCmd(cmd)
	return cmd
}

// CmdHaltPool returns a CLI command handler that trips a pool's circuit breaker
func CmdHaltPool() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "halt-pool [pool-id] [reason]",
		Short: "Halt trading and liquidity changes on a pool",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			poolID, err := parsePoolID(args[0])
			if err != nil {
				return err
			}
			return post(cmd, client.PoolPath(poolID, "halt"), api.HaltPoolRequest{Reason: args[1]})
		},
	}
	client.AddQueryFlagsToCmd(cmd)
	return cmd
}

// CmdResumePool returns a CLI command handler that resumes a halted pool
func CmdResumePool() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resume-pool [pool-id]",
		Short: "Resume a halted pool",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			poolID, err := parsePoolID(args[0])
			if err != nil {
				return err
			}
			return post(cmd, client.PoolPath(poolID, "resume"), nil)
		},
	}
	client.AddQueryFlagsToCmd(cmd)
	return cmd
}
