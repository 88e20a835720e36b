package cli_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/paw-chain/pawswap/testutil/network"
	"github.com/paw-chain/pawswap/x/farm/client/cli"
)

func find(t *testing.T, root *cobra.Command, name string) *cobra.Command {
	t.Helper()
	cmd, _, err := root.Find([]string{name})
	require.NoError(t, err)
	return cmd
}

func exec(t *testing.T, root *cobra.Command, args ...string) (map[string]interface{}, error) {
	t.Helper()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		return nil, err
	}
	var res map[string]interface{}
	require.NoError(t, json.Unmarshal(out.Bytes(), &res), out.String())
	return res, nil
}

func TestCommandStructure(t *testing.T) {
	t.Parallel()

	query := cli.GetQueryCmd()
	for _, name := range []string{"farms", "farm", "positions", "pending"} {
		require.Equal(t, name, find(t, query, name).Name())
	}
	tx := cli.GetTxCmd()
	for _, name := range []string{"create-farm", "fund", "set-rate", "stake", "unstake", "harvest", "compound"} {
		require.Equal(t, name, find(t, tx, name).Name())
	}

	require.Error(t, find(t, tx, "harvest").Args(nil, []string{"1", "10"}))
	require.NoError(t, find(t, tx, "stake").Args(nil, []string{"1", "10"}))
}

func TestArgumentValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"bad farm id", []string{"stake", "abc", "10", "--user", "alice"}, "invalid farm ID"},
		{"zero farm id", []string{"harvest", "0", "--user", "alice"}, "invalid farm ID"},
		{"zero stake", []string{"stake", "1", "0", "--user", "alice"}, "invalid amount"},
		{"missing user", []string{"unstake", "1", "10"}, "user"},
		{"bad rate", []string{"create-farm", "uatom", "upaw", "x", "100"}, "invalid reward-per-block"},
		{"bad budget", []string{"create-farm", "uatom", "upaw", "10", "1.5"}, "invalid budget"},
		{"zero fund", []string{"fund", "1", "0"}, "invalid amount"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := exec(t, cli.GetTxCmd(), append(tt.args, "--api", "http://127.0.0.1:1")...)
			require.ErrorContains(t, err, tt.want)
		})
	}
}

func TestFarmLifecycle(t *testing.T) {
	n := network.New(t, network.DefaultConfig())
	api := []string{"--api", n.URL}
	tx := func(args ...string) (map[string]interface{}, error) {
		return exec(t, cli.GetTxCmd(), append(args, api...)...)
	}
	query := func(args ...string) (map[string]interface{}, error) {
		return exec(t, cli.GetQueryCmd(), append(args, api...)...)
	}

	farm, err := tx("create-farm", "uatom", "upaw", "10", "1000")
	require.NoError(t, err)
	require.EqualValues(t, 1, farm["id"])
	require.Equal(t, "uatom", farm["stakeToken"])

	staked, err := tx("stake", "1", "100", "--user", "alice")
	require.NoError(t, err)
	require.Equal(t, "100", staked["stakedAfter"])

	n.AdvanceBlocks(5)

	pending, err := query("pending", "1", "alice")
	require.NoError(t, err)
	require.Equal(t, "50", pending["pending"])

	harvested, err := tx("harvest", "1", "--user", "alice")
	require.NoError(t, err)
	require.Equal(t, "50", harvested["reward"])

	_, err = tx("harvest", "1", "--user", "alice")
	require.ErrorContains(t, err, "NOTHING_TO_HARVEST")

	_, err = tx("compound", "1", "--user", "alice")
	require.ErrorContains(t, err, "COMPOUND_UNSUPPORTED")

	positions, err := query("positions", "1")
	require.NoError(t, err)
	require.EqualValues(t, 1, positions["count"])

	_, err = tx("set-rate", "1", "20")
	require.NoError(t, err)
	_, err = tx("fund", "1", "500")
	require.NoError(t, err)

	farm, err = query("farm", "1")
	require.NoError(t, err)
	require.Equal(t, "20", farm["rewardPerBlock"])
	require.Equal(t, "1500", farm["rewardBudget"])

	_, err = tx("unstake", "1", "100", "--user", "alice")
	require.NoError(t, err)

	_, err = query("pending", "1", "alice")
	require.ErrorContains(t, err, "POSITION_NOT_FOUND")

	farms, err := query("farms")
	require.NoError(t, err)
	require.EqualValues(t, 1, farms["count"])

	_, err = query("farm", "7")
	require.ErrorContains(t, err, "FARM_NOT_FOUND")
}
