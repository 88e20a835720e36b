package cli

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"cosmossdk.io/math"
	"github.com/spf13/cobra"

	"github.com/paw-chain/pawswap/api"
	"github.com/paw-chain/pawswap/api/client"
	"github.com/paw-chain/pawswap/x/farm/types"
)

// FlagStartBlock delays reward accrual of a new farm.
const FlagStartBlock = "start-block"

// GetQueryCmd returns the cli query commands for the farm module
func GetQueryCmd() *cobra.Command {
	farmQueryCmd := &cobra.Command{
		Use:                        types.ModuleName,
		Short:                      "Querying commands for the farm module",
		SuggestionsMinimumDistance: 2,
	}

	farmQueryCmd.AddCommand(
		queryCmd("farms", "Query all farms", cobra.NoArgs, func([]string) (string, error) {
			return "/farms", nil
		}),
		queryCmd("farm [farm-id]", "Query a farm by ID", cobra.ExactArgs(1), func(args []string) (string, error) {
			id, err := parseFarmID(args[0])
			return client.FarmPath(id), err
		}),
		queryCmd("positions [farm-id]", "Query all stakes in a farm", cobra.ExactArgs(1), func(args []string) (string, error) {
			id, err := parseFarmID(args[0])
			return client.FarmPath(id, "positions"), err
		}),
		queryCmd("pending [farm-id] [user]", "Query a user's unharvested reward", cobra.ExactArgs(2), func(args []string) (string, error) {
			id, err := parseFarmID(args[0])
			return "/farm/" + strconv.FormatUint(id, 10) + "/pending/" + url.PathEscape(args[1]), err
		}),
	)

	return farmQueryCmd
}

func queryCmd(use, short string, args cobra.PositionalArgs, path func([]string) (string, error)) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  args,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := path(args)
			if err != nil {
				return err
			}
			var res json.RawMessage
			if err := client.FromCmd(cmd).Get(cmd.Context(), p, nil, &res); err != nil {
				return err
			}
			return client.PrintJSON(cmd, res)
		},
	}
	client.AddQueryFlagsToCmd(cmd)
	return cmd
}

// GetTxCmd returns the transaction commands for the farm module
func GetTxCmd() *cobra.Command {
	farmTxCmd := &cobra.Command{
		Use:                        types.ModuleName,
		Short:                      "Farm transaction subcommands",
		SuggestionsMinimumDistance: 2,
	}

	farmTxCmd.AddCommand(
		CmdCreateFarm(),
		CmdFundFarm(),
		CmdSetRewardRate(),
		CmdFarmAction("stake", "Stake tokens in a farm", "/farm/stake", true),
		CmdFarmAction("unstake", "Withdraw staked tokens and pending rewards", "/farm/unstake", true),
		CmdFarmAction("harvest", "Collect pending rewards", "/farm/harvest", false),
		CmdFarmAction("compound", "Restake pending rewards", "/farm/compound", false),
	)

	return farmTxCmd
}

func parseFarmID(arg string) (uint64, error) {
	id, err := strconv.ParseUint(arg, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid farm ID: %s", arg)
	}
	return id, nil
}

func checkAmount(name, arg string, allowZero bool) error {
	amount, ok := math.NewIntFromString(arg)
	if !ok || amount.IsNegative() || (!allowZero && amount.IsZero()) {
		return fmt.Errorf("invalid %s: %s", name, arg)
	}
	return nil
}

func send(cmd *cobra.Command, method, path string, body interface{}) error {
	c := client.FromCmd(cmd)
	var res json.RawMessage
	var err error
	if method == http.MethodPut {
		err = c.Put(cmd.Context(), path, body, &res)
	} else {
		err = c.Post(cmd.Context(), path, body, &res)
	}
	if err != nil {
		return err
	}
	return client.PrintJSON(cmd, res)
}

// CmdCreateFarm returns a CLI command handler for creating a farm
func CmdCreateFarm() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create-farm [stake-token] [reward-token] [reward-per-block] [budget]",
		Short: "Create a reward farm",
		Long: `Create a farm paying reward-per-block of reward-token to stakers of
stake-token, until budget is exhausted. LP tokens are named lp/<pool-id>.

Example:
  $ pawswapd tx farm create-farm lp/1 upaw 100 1000000 --start-block 50`,
		Args: cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkAmount("reward-per-block", args[2], true); err != nil {
				return err
			}
			if err := checkAmount("budget", args[3], true); err != nil {
				return err
			}
			start, _ := cmd.Flags().GetUint64(FlagStartBlock)
			return send(cmd, http.MethodPost, "/farms", api.CreateFarmRequest{
				StakeToken:     args[0],
				RewardToken:    args[1],
				RewardPerBlock: args[2],
				RewardBudget:   args[3],
				StartBlock:     start,
			})
		},
	}
	cmd.Flags().Uint64(FlagStartBlock, 0, "first block that accrues rewards (default current block)")
	client.AddQueryFlagsToCmd(cmd)
	return cmd
}

// CmdFundFarm returns a CLI command handler that tops up a farm's budget
func CmdFundFarm() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fund [farm-id] [amount]",
		Short: "Add to a farm's reward budget",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseFarmID(args[0])
			if err != nil {
				return err
			}
			if err := checkAmount("amount", args[1], false); err != nil {
				return err
			}
			return send(cmd, http.MethodPost, client.FarmPath(id, "fund"), api.FundFarmRequest{Amount: args[1]})
		},
	}
	client.AddQueryFlagsToCmd(cmd)
	return cmd
}

// CmdSetRewardRate returns a CLI command handler that changes a farm's emission rate
func CmdSetRewardRate() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set-rate [farm-id] [reward-per-block]",
		Short: "Change a farm's reward per block",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseFarmID(args[0])
			if err != nil {
				return err
			}
			if err := checkAmount("reward-per-block", args[1], true); err != nil {
				return err
			}
			return send(cmd, http.MethodPut, client.FarmPath(id, "rate"), api.SetRewardRateRequest{RewardPerBlock: args[1]})
		},
	}
	client.AddQueryFlagsToCmd(cmd)
	return cmd
}

// CmdFarmAction returns a user farm command posting to path. Stake and
// unstake take an amount, harvest and compound do not.
func CmdFarmAction(name, short, path string, withAmount bool) *cobra.Command {
	use := name + " [farm-id]"
	nargs := 1
	if withAmount {
		use += " [amount]"
		nargs = 2
	}
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(nargs),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseFarmID(args[0])
			if err != nil {
				return err
			}
			user, err := client.UserFromCmd(cmd)
			if err != nil {
				return err
			}
			req := api.FarmActionRequest{FarmID: id, UserID: user}
			if withAmount {
				if err := checkAmount("amount", args[1], false); err != nil {
					return err
				}
				req.Amount = args[1]
			}
			return send(cmd, http.MethodPost, path, req)
		},
	}
	client.AddTxFlagsToCmd(cmd)
	return cmd
}
