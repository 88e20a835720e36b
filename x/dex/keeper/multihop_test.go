package keeper_test

import (
	"testing"

	"cosmossdk.io/math"
	"github.com/stretchr/testify/require"

	"github.com/paw-chain/pawswap/pkg/cache"
	keepertest "github.com/paw-chain/pawswap/testutil/keeper"
	"github.com/paw-chain/pawswap/x/dex/keeper"
	"github.com/paw-chain/pawswap/x/dex/types"
)

func routedFixture(t *testing.T) *keepertest.DexFixture {
	t.Helper()
	f := keepertest.DexKeeper(t)
	keepertest.CreateTestPool(t, f, "upaw", "uatom", math.NewInt(1_000_000), math.NewInt(1_000_000))
	keepertest.CreateTestPool(t, f, "uatom", "uusdc", math.NewInt(1_000_000), math.NewInt(1_000_000))
	return f
}

func TestFindBestRoute_TwoHops(t *testing.T) {
	f := routedFixture(t)

	q, err := f.Keeper.FindBestRoute(f.Ctx, "upaw", "uusdc", math.NewInt(1000))
	require.NoError(t, err)
	require.Len(t, q.Route.Hops, 2)
	require.Equal(t, "upaw", q.Route.Hops[0].TokenIn)
	require.Equal(t, "uatom", q.Route.Hops[0].TokenOut)
	require.Equal(t, "996", q.Hops[0].AmountOut.String())
	require.Equal(t, "992", q.AmountOut.String())
	require.Equal(t, uint32(60), q.FeeRateBps)
	require.Equal(t, "3", q.Fee.String())
}

func TestFindBestRoute_PrefersDeeperDirectPool(t *testing.T) {
	f := routedFixture(t)
	direct := keepertest.CreateTestPool(t, f, "upaw", "uusdc", math.NewInt(10_000_000), math.NewInt(10_000_000))

	q, err := f.Keeper.FindBestRoute(f.Ctx, "upaw", "uusdc", math.NewInt(1000))
	require.NoError(t, err)
	require.Equal(t, []uint64{direct.ID}, q.Route.PoolIDs())
	require.Equal(t, "996", q.AmountOut.String())
}

func TestFindBestRoute_ShallowDirectPoolLoses(t *testing.T) {
	f := routedFixture(t)
	keepertest.CreateTestPool(t, f, "upaw", "uusdc", math.NewInt(1000), math.NewInt(1000))

	q, err := f.Keeper.FindBestRoute(f.Ctx, "upaw", "uusdc", math.NewInt(1000))
	require.NoError(t, err)
	require.Len(t, q.Route.Hops, 2)
	require.Equal(t, "992", q.AmountOut.String())
}

func TestFindBestRoute_NoRoute(t *testing.T) {
	f := routedFixture(t)

	_, err := f.Keeper.FindBestRoute(f.Ctx, "upaw", "wei", math.NewInt(1000))
	require.ErrorIs(t, err, types.ErrNoRoute)

	_, err = f.Keeper.FindBestRoute(f.Ctx, "upaw", "upaw", math.NewInt(1000))
	require.ErrorIs(t, err, types.ErrInvalidTokenPair)

	// halted pools are skipped
	require.NoError(t, f.Keeper.HaltPool(f.Ctx, 2, "test"))
	_, err = f.Keeper.FindBestRoute(f.Ctx, "upaw", "uusdc", math.NewInt(1000))
	require.ErrorIs(t, err, types.ErrNoRoute)
}

func TestFindBestRoute_MaxHops(t *testing.T) {
	f := routedFixture(t)
	params := f.Keeper.GetParams(f.Ctx)
	params.MaxHops = 1
	require.NoError(t, f.Keeper.SetParams(f.Ctx, params))

	_, err := f.Keeper.FindBestRoute(f.Ctx, "upaw", "uusdc", math.NewInt(1000))
	require.ErrorIs(t, err, types.ErrNoRoute)
}

func TestFindBestRoute_Cached(t *testing.T) {
	f := routedFixture(t)
	c := cache.NewMemoryCache(16, 0)
	f.Keeper.SetRouteCache(c)

	first, err := f.Keeper.FindBestRoute(f.Ctx, "upaw", "uusdc", math.NewInt(1000))
	require.NoError(t, err)
	require.Equal(t, 1, c.Len())

	second, err := f.Keeper.FindBestRoute(f.Ctx, "upaw", "uusdc", math.NewInt(1000))
	require.NoError(t, err)
	require.Equal(t, first.Route.String(), second.Route.String())
	require.Equal(t, first.AmountOut.String(), second.AmountOut.String())

	// any swap moves the state version and invalidates the key
	_, err = f.Keeper.ExecuteSwap(f.Ctx, "upaw", "uatom", math.NewInt(10), math.ZeroInt(), "alice")
	require.NoError(t, err)
	third, err := f.Keeper.FindBestRoute(f.Ctx, "upaw", "uusdc", math.NewInt(1000))
	require.NoError(t, err)
	require.Equal(t, 2, c.Len())
	require.True(t, third.AmountOut.LTE(first.AmountOut))
}

func TestExecuteRouteSwap(t *testing.T) {
	f := routedFixture(t)

	q, err := f.Keeper.FindBestRoute(f.Ctx, "upaw", "uusdc", math.NewInt(1000))
	require.NoError(t, err)

	tx, err := f.Keeper.ExecuteRouteSwap(f.Ctx, q.Route, math.NewInt(1000), q.AmountOut, "alice")
	require.NoError(t, err)
	require.Equal(t, "992", tx.AmountOut.String())
	require.Equal(t, []uint64{1, 2}, tx.PoolIDs())
	require.Equal(t, "upaw", tx.TokenIn)
	require.Equal(t, "uusdc", tx.TokenOut)

	p1, err := f.Keeper.GetPool(f.Ctx, 1)
	require.NoError(t, err)
	p2, err := f.Keeper.GetPool(f.Ctx, 2)
	require.NoError(t, err)
	// pool 1 is uatom/upaw, pool 2 is uatom/uusdc
	require.Equal(t, "999004", p1.Reserve0.String())
	require.Equal(t, "1001000", p1.Reserve1.String())
	require.Equal(t, "1000996", p2.Reserve0.String())
	require.Equal(t, "999008", p2.Reserve1.String())
	require.NoError(t, f.Keeper.CheckInvariants(f.Ctx))
}

func TestExecuteRouteSwap_Atomic(t *testing.T) {
	f := routedFixture(t)
	q, err := f.Keeper.FindBestRoute(f.Ctx, "upaw", "uusdc", math.NewInt(1000))
	require.NoError(t, err)
	records := f.Audit.Len()

	_, err = f.Keeper.ExecuteRouteSwap(f.Ctx, q.Route, math.NewInt(1000), math.NewInt(993), "alice")
	require.ErrorIs(t, err, types.ErrSlippageExceeded)

	require.NoError(t, f.Keeper.HaltPool(f.Ctx, 2, "test"))
	_, err = f.Keeper.ExecuteRouteSwap(f.Ctx, q.Route, math.NewInt(1000), math.ZeroInt(), "alice")
	require.ErrorIs(t, err, types.ErrPoolHalted)

	p1, err := f.Keeper.GetPool(f.Ctx, 1)
	require.NoError(t, err)
	require.Equal(t, "1000000", p1.Reserve0.String())
	require.Equal(t, "1000000", p1.Reserve1.String())
	require.Equal(t, records, f.Audit.Len())
}

func TestExecuteRouteSwap_InvalidRoute(t *testing.T) {
	f := routedFixture(t)

	broken := types.Route{Hops: []types.Hop{
		{PoolID: 1, TokenIn: "upaw", TokenOut: "uatom"},
		{PoolID: 2, TokenIn: "uusdc", TokenOut: "uatom"},
	}}
	_, err := f.Keeper.ExecuteRouteSwap(f.Ctx, broken, math.NewInt(1000), math.ZeroInt(), "alice")
	require.ErrorIs(t, err, types.ErrInvalidRoute)

	wrongPool := types.Route{Hops: []types.Hop{{PoolID: 2, TokenIn: "upaw", TokenOut: "uatom"}}}
	_, err = f.Keeper.ExecuteRouteSwap(f.Ctx, wrongPool, math.NewInt(1000), math.ZeroInt(), "alice")
	require.ErrorIs(t, err, types.ErrInvalidRoute)

	_, err = f.Keeper.ExecuteRouteSwap(f.Ctx, types.Route{}, math.NewInt(1000), math.ZeroInt(), "alice")
	require.ErrorIs(t, err, types.ErrInvalidRoute)
}

func TestBetterRoute(t *testing.T) {
	quote := func(out int64, fees ...uint32) types.Quote {
		q := types.Quote{AmountOut: math.NewInt(out)}
		for i, f := range fees {
			q.Route.Hops = append(q.Route.Hops, types.Hop{PoolID: uint64(i + 1), FeeRateBps: f})
		}
		return q
	}

	require.True(t, keeper.BetterRouteForTest(quote(100, 30), quote(99, 30)))
	require.True(t, keeper.BetterRouteForTest(quote(100, 10), quote(100, 30)))
	require.True(t, keeper.BetterRouteForTest(quote(100, 30), quote(100, 10, 20)))
	require.False(t, keeper.BetterRouteForTest(quote(100, 30), quote(100, 30)))
}
