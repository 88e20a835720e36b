package keeper

import (
	"context"
	"testing"

	"cosmossdk.io/log"
	"cosmossdk.io/math"
	"github.com/stretchr/testify/require"

	"github.com/paw-chain/pawswap/pkg/audit/memory"
	"github.com/paw-chain/pawswap/pkg/blockclock"
	"github.com/paw-chain/pawswap/x/dex/keeper"
	"github.com/paw-chain/pawswap/x/dex/types"
	"github.com/paw-chain/pawswap/x/shared/events"
	tokenkeeper "github.com/paw-chain/pawswap/x/token/keeper"
	tokentypes "github.com/paw-chain/pawswap/x/token/types"
)

// DexFixture bundles a dex keeper with its in-memory dependencies.
type DexFixture struct {
	Ctx    context.Context
	Keeper *keeper.Keeper
	Tokens *tokenkeeper.Keeper
	Audit  *memory.Store
	Clock  *blockclock.Manual
	Events *events.Recorder
}

// DefaultTestTokens are registered by DexKeeper.
var DefaultTestTokens = []tokentypes.Token{
	{ID: "upaw", Symbol: "PAW", Decimals: 6, Price: math.LegacyMustNewDecFromStr("2")},
	{ID: "uatom", Symbol: "ATOM", Decimals: 6, Price: math.LegacyMustNewDecFromStr("10")},
	{ID: "uusdc", Symbol: "USDC", Decimals: 6, Price: math.LegacyOneDec()},
	{ID: "wei", Symbol: "ETH", Decimals: 18, Price: math.LegacyMustNewDecFromStr("3000")},
}

// DexKeeper creates a dex keeper backed by memory stores with the default
// test tokens registered. MinimumLiquidity is lowered to 10 so small
// reference deposits work.
func DexKeeper(t testing.TB) *DexFixture {
	t.Helper()

	ctx := context.Background()
	tokens := tokenkeeper.NewKeeper(log.NewNopLogger())
	for _, tok := range DefaultTestTokens {
		_, err := tokens.RegisterToken(ctx, tok)
		require.NoError(t, err)
	}

	store := memory.NewStore()
	clock := blockclock.NewManual(1)
	rec := &events.Recorder{}
	k := keeper.NewKeeper(log.NewNopLogger(), tokens, store, clock, rec)

	params := types.DefaultParams()
	params.MinimumLiquidity = math.NewInt(10)
	require.NoError(t, k.SetParams(ctx, params))

	return &DexFixture{Ctx: ctx, Keeper: k, Tokens: tokens, Audit: store, Clock: clock, Events: rec}
}

// CreateTestPool creates a pool and seeds it with the given reserves from "seeder".
func CreateTestPool(t testing.TB, f *DexFixture, tokenA, tokenB string, amountA, amountB math.Int) types.Pool {
	t.Helper()

	pool, _, err := f.Keeper.CreatePool(f.Ctx, tokenA, tokenB, types.DefaultFeeRateBps)
	require.NoError(t, err)

	amount0, amount1 := amountA, amountB
	if pool.Token0 != tokenA {
		amount0, amount1 = amountB, amountA
	}
	_, err = f.Keeper.AddLiquidity(f.Ctx, pool.ID, "seeder", amount0, amount1, false)
	require.NoError(t, err)

	pool, err = f.Keeper.GetPool(f.Ctx, pool.ID)
	require.NoError(t, err)
	return pool
}
