package keeper_test

import (
	"math/big"

	"cosmossdk.io/math"

	"github.com/paw-chain/pawswap/pkg/audit"
	keepertest "github.com/paw-chain/pawswap/testutil/keeper"
	"github.com/paw-chain/pawswap/x/dex/keeper"
	"github.com/paw-chain/pawswap/x/dex/types"
)

func (suite *KeeperTestSuite) seedPool() types.Pool {
	return keepertest.CreateTestPool(suite.T(), suite.f, "upaw", "uatom", math.NewInt(1000), math.NewInt(1000))
}

func (suite *KeeperTestSuite) TestGetQuote() {
	f := suite.f
	suite.seedPool()

	q, err := f.Keeper.GetQuote(f.Ctx, "upaw", "uatom", math.NewInt(100))
	suite.Require().NoError(err)
	suite.Require().Equal("90", q.AmountOut.String())
	suite.Require().Equal(uint32(30), q.FeeRateBps)
	suite.Require().Len(q.Route.Hops, 1)
	suite.Require().True(q.PriceImpact.IsPositive())

	// quoting does not move the pool
	pool, err := f.Keeper.GetPoolByTokens(f.Ctx, "upaw", "uatom")
	suite.Require().NoError(err)
	suite.Require().Equal("1000", pool.Reserve0.String())
	suite.Require().Equal("1000", pool.Reserve1.String())
}

func (suite *KeeperTestSuite) TestExecuteSwap() {
	f := suite.f
	pool := suite.seedPool()
	before := f.Audit.Len()

	tx, err := f.Keeper.ExecuteSwap(f.Ctx, "upaw", "uatom", math.NewInt(100), math.NewInt(90), "alice")
	suite.Require().NoError(err)
	suite.Require().Equal("90", tx.AmountOut.String())
	suite.Require().Equal("100", tx.AmountIn.String())
	suite.Require().Equal(types.SwapExactIn, tx.Kind)
	suite.Require().Equal([]uint64{pool.ID}, tx.PoolIDs())

	after, err := f.Keeper.GetPool(f.Ctx, pool.ID)
	suite.Require().NoError(err)
	// token0 is uatom
	suite.Require().Equal("910", after.Reserve0.String())
	suite.Require().Equal("1100", after.Reserve1.String())
	suite.Require().Positive(after.K().Cmp(pool.K()))

	suite.Require().Equal(before+1, f.Audit.Len())
	rec, err := f.Audit.Get(f.Ctx, tx.ID)
	suite.Require().NoError(err)
	suite.Require().Equal(audit.KindSwap, rec.Kind)
	suite.Require().Equal("alice", rec.UserID)
	suite.Require().Equal(keeper.PoolEntityID(pool.ID), rec.EntityID)

	var decoded types.SwapTransaction
	suite.Require().NoError(rec.Decode(&decoded))
	suite.Require().Equal(tx.AmountOut.String(), decoded.AmountOut.String())

	suite.Require().Len(f.Events.OfType(types.EventTypeSwap), 1)
}

func (suite *KeeperTestSuite) TestExecuteSwap_Slippage() {
	f := suite.f
	pool := suite.seedPool()
	before := f.Audit.Len()

	_, err := f.Keeper.ExecuteSwap(f.Ctx, "upaw", "uatom", math.NewInt(100), math.NewInt(91), "alice")
	suite.Require().ErrorIs(err, types.ErrSlippageExceeded)

	after, err := f.Keeper.GetPool(f.Ctx, pool.ID)
	suite.Require().NoError(err)
	suite.Require().Equal(pool.Reserve0.String(), after.Reserve0.String())
	suite.Require().Equal(pool.Reserve1.String(), after.Reserve1.String())
	suite.Require().Equal(before, f.Audit.Len())
	suite.Require().Empty(f.Events.OfType(types.EventTypeSwap))
}

func (suite *KeeperTestSuite) TestExecuteSwap_Errors() {
	f := suite.f
	suite.seedPool()

	testCases := []struct {
		name     string
		tokenIn  string
		tokenOut string
		amount   math.Int
		user     string
		err      error
	}{
		{"zero amount", "upaw", "uatom", math.ZeroInt(), "alice", types.ErrInvalidAmount},
		{"negative amount", "upaw", "uatom", math.NewInt(-5), "alice", types.ErrInvalidAmount},
		{"same token", "upaw", "upaw", math.NewInt(10), "alice", types.ErrInvalidTokenPair},
		{"missing pair", "upaw", "uusdc", math.NewInt(10), "alice", types.ErrPairNotFound},
		{"empty user", "upaw", "uatom", math.NewInt(10), "", types.ErrInvalidUser},
		{"dust output", "upaw", "uatom", math.NewInt(1), "alice", types.ErrInvalidAmount},
	}
	for _, tc := range testCases {
		suite.Run(tc.name, func() {
			_, err := f.Keeper.ExecuteSwap(f.Ctx, tc.tokenIn, tc.tokenOut, tc.amount, math.ZeroInt(), tc.user)
			suite.Require().ErrorIs(err, tc.err)
		})
	}
}

func (suite *KeeperTestSuite) TestExecuteSwapExactOut() {
	f := suite.f
	pool := suite.seedPool()

	q, err := f.Keeper.GetQuoteExactOut(f.Ctx, "upaw", "uatom", math.NewInt(90))
	suite.Require().NoError(err)
	suite.Require().Equal("100", q.AmountIn.String())

	_, err = f.Keeper.ExecuteSwapExactOut(f.Ctx, "upaw", "uatom", math.NewInt(90), math.NewInt(99), "alice")
	suite.Require().ErrorIs(err, types.ErrSlippageExceeded)

	tx, err := f.Keeper.ExecuteSwapExactOut(f.Ctx, "upaw", "uatom", math.NewInt(90), math.NewInt(100), "alice")
	suite.Require().NoError(err)
	suite.Require().Equal("100", tx.AmountIn.String())
	suite.Require().Equal("90", tx.AmountOut.String())
	suite.Require().Equal(types.SwapExactOut, tx.Kind)

	_, err = f.Keeper.ExecuteSwapExactOut(f.Ctx, "upaw", "uatom", math.NewInt(5000), math.NewInt(1_000_000), "alice")
	suite.Require().ErrorIs(err, types.ErrInsufficientLiquidity)

	after, err := f.Keeper.GetPool(f.Ctx, pool.ID)
	suite.Require().NoError(err)
	suite.Require().Equal("910", after.Reserve0.String())
}

func (suite *KeeperTestSuite) TestSwap_HaltedPool() {
	f := suite.f
	pool := suite.seedPool()

	suite.Require().NoError(f.Keeper.HaltPool(f.Ctx, pool.ID, "maintenance"))
	suite.Require().True(f.Keeper.IsPoolHalted(f.Ctx, pool.ID))

	_, err := f.Keeper.ExecuteSwap(f.Ctx, "upaw", "uatom", math.NewInt(100), math.ZeroInt(), "alice")
	suite.Require().ErrorIs(err, types.ErrPoolHalted)
	suite.Require().False(types.IsRetryable(err))
	suite.Require().True(types.IsFatal(err))

	// quotes still work on halted pools
	_, err = f.Keeper.GetQuote(f.Ctx, "upaw", "uatom", math.NewInt(100))
	suite.Require().NoError(err)

	suite.Require().NoError(f.Keeper.ResumePool(f.Ctx, pool.ID))
	_, err = f.Keeper.ExecuteSwap(f.Ctx, "upaw", "uatom", math.NewInt(100), math.ZeroInt(), "alice")
	suite.Require().NoError(err)
}

func (suite *KeeperTestSuite) TestSwap_WideAmountsFailWithOverflow() {
	f := suite.f
	pool := suite.seedPool()
	before := f.Audit.Len()
	uint256Max := math.NewIntFromBigInt(new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1)))
	overBound := math.NewIntFromBigInt(new(big.Int).Lsh(big.NewInt(1), types.MaxAmountBitLen))

	for _, amount := range []math.Int{uint256Max, overBound} {
		suite.Require().NotPanics(func() {
			_, err := f.Keeper.ExecuteSwap(f.Ctx, "upaw", "uatom", amount, math.OneInt(), "alice")
			suite.Require().ErrorIs(err, types.ErrOverflow)

			_, err = f.Keeper.GetQuote(f.Ctx, "upaw", "uatom", amount)
			suite.Require().ErrorIs(err, types.ErrOverflow)

			_, err = f.Keeper.ExecuteSwapExactOut(f.Ctx, "upaw", "uatom", math.NewInt(10), amount, "alice")
			suite.Require().ErrorIs(err, types.ErrOverflow)
		})
	}

	after, err := f.Keeper.GetPool(f.Ctx, pool.ID)
	suite.Require().NoError(err)
	suite.Require().Equal(pool.Reserve0.String(), after.Reserve0.String())
	suite.Require().False(after.Halted)
	suite.Require().Equal(before, f.Audit.Len())
}

func (suite *KeeperTestSuite) TestSwap_LargestAmountIsQuoted() {
	f := suite.f
	suite.seedPool()
	largest := math.NewIntFromBigInt(new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 120), big.NewInt(1)))

	suite.Require().NotPanics(func() {
		q, err := f.Keeper.GetQuote(f.Ctx, "upaw", "uatom", largest)
		suite.Require().NoError(err)
		suite.Require().Equal("999", q.AmountOut.String())
		suite.Require().False(q.EffectivePrice.IsNegative())
	})
}
