package keeper_test

import (
	"math/big"

	"cosmossdk.io/math"

	"github.com/paw-chain/pawswap/x/dex/types"
)

func (suite *KeeperTestSuite) emptyPool() types.Pool {
	pool, _, err := suite.f.Keeper.CreatePool(suite.f.Ctx, "uatom", "upaw", types.DefaultFeeRateBps)
	suite.Require().NoError(err)
	return pool
}

func (suite *KeeperTestSuite) TestAddLiquidity_Bootstrap() {
	f := suite.f
	pool := suite.emptyPool()

	tx, err := f.Keeper.AddLiquidity(f.Ctx, pool.ID, "alice", math.NewInt(100), math.NewInt(400), false)
	suite.Require().NoError(err)
	suite.Require().Equal("190", tx.LpShares.String())
	suite.Require().Equal("10", tx.Burned.String())
	suite.Require().Equal("200", tx.TotalLpShares.String())

	shares, err := f.Keeper.GetShares(f.Ctx, pool.ID, "alice")
	suite.Require().NoError(err)
	suite.Require().Equal("190", shares.String())

	locked, err := f.Keeper.GetShares(f.Ctx, pool.ID, types.MinimumLiquidityOwner)
	suite.Require().NoError(err)
	suite.Require().Equal("10", locked.String())

	tx, err = f.Keeper.AddLiquidity(f.Ctx, pool.ID, "bob", math.NewInt(50), math.NewInt(200), false)
	suite.Require().NoError(err)
	suite.Require().Equal("100", tx.LpShares.String())
	suite.Require().Equal("150", tx.Reserve0After.String())
	suite.Require().Equal("600", tx.Reserve1After.String())

	suite.Require().Len(f.Events.OfType(types.EventTypeAddLiquidity), 2)
	suite.Require().NoError(f.Keeper.CheckInvariants(f.Ctx))
}

func (suite *KeeperTestSuite) TestAddLiquidity_Errors() {
	f := suite.f
	pool := suite.emptyPool()
	_, err := f.Keeper.AddLiquidity(f.Ctx, pool.ID, "alice", math.NewInt(100), math.NewInt(400), false)
	suite.Require().NoError(err)
	wide := math.NewIntFromBigInt(new(big.Int).Lsh(big.NewInt(1), 200))

	testCases := []struct {
		name    string
		poolID  uint64
		user    string
		amount0 math.Int
		amount1 math.Int
		err     error
	}{
		{"unknown pool", 42, "bob", math.NewInt(1), math.NewInt(4), types.ErrPoolNotFound},
		{"both zero", pool.ID, "bob", math.ZeroInt(), math.ZeroInt(), types.ErrInvalidAmount},
		{"negative", pool.ID, "bob", math.NewInt(-1), math.NewInt(4), types.ErrInvalidAmount},
		{"ratio mismatch", pool.ID, "bob", math.NewInt(50), math.NewInt(150), types.ErrRatioMismatch},
		{"reserved owner", pool.ID, "farm/1", math.NewInt(50), math.NewInt(200), types.ErrInvalidUser},
		{"empty owner", pool.ID, "", math.NewInt(50), math.NewInt(200), types.ErrInvalidUser},
		{"amount beyond bound", pool.ID, "bob", wide, wide, types.ErrOverflow},
	}
	for _, tc := range testCases {
		suite.Run(tc.name, func() {
			_, err := f.Keeper.AddLiquidity(f.Ctx, tc.poolID, tc.user, tc.amount0, tc.amount1, false)
			suite.Require().ErrorIs(err, tc.err)
		})
	}

	after, err := f.Keeper.GetPool(f.Ctx, pool.ID)
	suite.Require().NoError(err)
	suite.Require().Equal("200", after.TotalLpShares.String())
}

func (suite *KeeperTestSuite) TestAddLiquidity_AutoAdjust() {
	f := suite.f
	pool := suite.emptyPool()
	_, err := f.Keeper.AddLiquidity(f.Ctx, pool.ID, "alice", math.NewInt(100), math.NewInt(400), false)
	suite.Require().NoError(err)

	tx, err := f.Keeper.AddLiquidity(f.Ctx, pool.ID, "bob", math.NewInt(50), math.NewInt(150), true)
	suite.Require().NoError(err)
	suite.Require().Equal("38", tx.Amount0.String())
	suite.Require().Equal("150", tx.Amount1.String())
	suite.Require().Equal("75", tx.LpShares.String())
}

func (suite *KeeperTestSuite) TestRemoveLiquidity() {
	f := suite.f
	pool := suite.emptyPool()
	_, err := f.Keeper.AddLiquidity(f.Ctx, pool.ID, "alice", math.NewInt(100), math.NewInt(400), false)
	suite.Require().NoError(err)
	_, err = f.Keeper.AddLiquidity(f.Ctx, pool.ID, "bob", math.NewInt(50), math.NewInt(200), false)
	suite.Require().NoError(err)

	records := f.Audit.Len()
	_, err = f.Keeper.RemoveLiquidity(f.Ctx, pool.ID, "alice", math.NewInt(191), math.ZeroInt(), math.ZeroInt())
	suite.Require().ErrorIs(err, types.ErrInsufficientShares)
	suite.Require().Equal(records, f.Audit.Len())

	_, err = f.Keeper.RemoveLiquidity(f.Ctx, pool.ID, "carol", math.NewInt(1), math.ZeroInt(), math.ZeroInt())
	suite.Require().ErrorIs(err, types.ErrPositionNotFound)

	_, err = f.Keeper.RemoveLiquidity(f.Ctx, pool.ID, "alice", math.NewInt(190), math.NewInt(96), math.ZeroInt())
	suite.Require().ErrorIs(err, types.ErrSlippageExceeded)

	_, err = f.Keeper.RemoveLiquidity(f.Ctx, pool.ID, types.MinimumLiquidityOwner, math.NewInt(10), math.ZeroInt(), math.ZeroInt())
	suite.Require().ErrorIs(err, types.ErrInvalidUser)

	tx, err := f.Keeper.RemoveLiquidity(f.Ctx, pool.ID, "alice", math.NewInt(190), math.NewInt(95), math.NewInt(380))
	suite.Require().NoError(err)
	suite.Require().Equal("95", tx.Amount0.String())
	suite.Require().Equal("380", tx.Amount1.String())
	suite.Require().True(tx.PositionAfter.IsZero())

	_, err = f.Keeper.GetPosition(f.Ctx, pool.ID, "alice")
	suite.Require().ErrorIs(err, types.ErrPositionNotFound)

	after, err := f.Keeper.GetPool(f.Ctx, pool.ID)
	suite.Require().NoError(err)
	suite.Require().Equal("55", after.Reserve0.String())
	suite.Require().Equal("220", after.Reserve1.String())
	suite.Require().Equal("110", after.TotalLpShares.String())
	suite.Require().Len(f.Events.OfType(types.EventTypeRemoveLiquidity), 1)
	suite.Require().NoError(f.Keeper.CheckInvariants(f.Ctx))
}

func (suite *KeeperTestSuite) TestTransferShares() {
	f := suite.f
	pool := suite.emptyPool()
	_, err := f.Keeper.AddLiquidity(f.Ctx, pool.ID, "alice", math.NewInt(100), math.NewInt(400), false)
	suite.Require().NoError(err)

	tx, err := f.Keeper.TransferShares(f.Ctx, pool.ID, "alice", "farm/1", math.NewInt(90))
	suite.Require().NoError(err)
	suite.Require().Equal("100", tx.PositionAfter.String())
	suite.Require().Equal("farm/1", tx.Counterparty)

	escrow, err := f.Keeper.GetShares(f.Ctx, pool.ID, "farm/1")
	suite.Require().NoError(err)
	suite.Require().Equal("90", escrow.String())

	_, err = f.Keeper.TransferShares(f.Ctx, pool.ID, "alice", "bob", math.NewInt(101))
	suite.Require().ErrorIs(err, types.ErrInsufficientShares)
	_, err = f.Keeper.TransferShares(f.Ctx, pool.ID, "alice", "alice", math.NewInt(1))
	suite.Require().ErrorIs(err, types.ErrInvalidUser)
	_, err = f.Keeper.TransferShares(f.Ctx, pool.ID, types.MinimumLiquidityOwner, "bob", math.NewInt(1))
	suite.Require().ErrorIs(err, types.ErrInvalidUser)

	suite.Require().Len(f.Keeper.UserPositions(f.Ctx, "alice"), 1)
	suite.Require().NoError(f.Keeper.CheckInvariants(f.Ctx))

	suite.Require().NoError(f.Keeper.HaltPool(f.Ctx, pool.ID, "test"))
	_, err = f.Keeper.TransferShares(f.Ctx, pool.ID, "farm/1", "alice", math.NewInt(90))
	suite.Require().ErrorIs(err, types.ErrPoolHalted)
}

func (suite *KeeperTestSuite) TestAddRemove_NeverProfits() {
	f := suite.f
	pool := suite.seedPool()
	_, err := f.Keeper.ExecuteSwap(f.Ctx, "upaw", "uatom", math.NewInt(100), math.ZeroInt(), "trader")
	suite.Require().NoError(err)

	pool, err = f.Keeper.GetPool(f.Ctx, pool.ID)
	suite.Require().NoError(err)
	in0, in1 := math.NewInt(91), math.NewInt(110)

	tx, err := f.Keeper.AddLiquidity(f.Ctx, pool.ID, "dave", in0, in1, true)
	suite.Require().NoError(err)
	out, err := f.Keeper.RemoveLiquidity(f.Ctx, pool.ID, "dave", tx.LpShares, math.ZeroInt(), math.ZeroInt())
	suite.Require().NoError(err)

	suite.Require().True(out.Amount0.LTE(tx.Amount0))
	suite.Require().True(out.Amount1.LTE(tx.Amount1))
}
