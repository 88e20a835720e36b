package client_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/paw-chain/pawswap/api"
	"github.com/paw-chain/pawswap/api/client"
	"github.com/paw-chain/pawswap/testutil/network"
)

func TestClientRoundTrip(t *testing.T) {
	n := network.New(t, network.DefaultConfig())
	c := n.Client()
	ctx := context.Background()

	var pool api.PoolResponse
	require.NoError(t, c.Post(ctx, "/pools", api.CreatePoolRequest{TokenA: "upaw", TokenB: "uatom"}, &pool))
	require.Equal(t, uint64(1), pool.ID)
	require.Equal(t, "uatom", pool.Token0)

	require.NoError(t, c.Post(ctx, "/pool/add-liquidity", api.AddLiquidityRequest{
		PoolID: pool.ID, UserID: "alice", Amount0: "1000", Amount1: "1000",
	}, nil))

	got, err := c.Pool(ctx, pool.ID)
	require.NoError(t, err)
	require.Equal(t, "1000", got.Reserve0.String())

	q, err := c.Quote(ctx, "uatom", "upaw", "100", false)
	require.NoError(t, err)
	require.Equal(t, "90", q.AmountOut.String())
	require.False(t, q.MultiHop)

	raw, err := c.Swap(ctx, api.SwapRequest{TokenIn: "uatom", TokenOut: "upaw", AmountIn: "100", MinAmountOut: "90", UserID: "bob"})
	require.NoError(t, err)
	var tx map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &tx))
	require.Equal(t, "90", tx["amountOut"])
}

func TestClientErrors(t *testing.T) {
	n := network.New(t, network.DefaultConfig())
	c := n.Client()
	ctx := context.Background()

	_, err := c.Pool(ctx, 42)
	require.Error(t, err)
	var apiErr *client.Error
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusNotFound, apiErr.Status)
	require.Equal(t, "POOL_NOT_FOUND", apiErr.Code)
	require.NotEmpty(t, apiErr.RequestID)
	require.True(t, client.IsCode(err, "POOL_NOT_FOUND"))

	_, err = c.Quote(ctx, "uatom", "upaw", "abc", false)
	require.True(t, client.IsCode(err, "VALIDATION_ERROR"), err)

	// unreachable server
	dead := client.New(client.Config{BaseURL: "http://127.0.0.1:1"})
	_, err = dead.Pool(ctx, 1)
	require.ErrorContains(t, err, "send request")
}

func TestPaths(t *testing.T) {
	require.Equal(t, "/pools/3", client.PoolPath(3))
	require.Equal(t, "/pools/3/positions/a%20b", client.PoolPath(3, "positions", "a b"))
	require.Equal(t, "/farms/7/fund", client.FarmPath(7, "fund"))
}
