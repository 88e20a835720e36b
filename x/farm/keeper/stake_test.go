package keeper_test

import (
	"cosmossdk.io/math"

	"github.com/paw-chain/pawswap/pkg/audit"
	keepertest "github.com/paw-chain/pawswap/testutil/keeper"
	dextypes "github.com/paw-chain/pawswap/x/dex/types"
	"github.com/paw-chain/pawswap/x/farm/types"
)

func (suite *KeeperTestSuite) TestStake_SharedRewards() {
	f := suite.f
	farm := keepertest.CreateTestFarm(suite.T(), f, "uatom", "upaw", 10)

	for _, user := range []string{"alice", "bob"} {
		tx, err := f.Farms.Stake(f.Ctx, farm.ID, user, math.NewInt(50))
		suite.Require().NoError(err)
		suite.Require().Equal("50", tx.StakedAfter.String())
	}

	f.Clock.Advance(5)
	for _, user := range []string{"alice", "bob"} {
		pending, err := f.Farms.PendingReward(f.Ctx, farm.ID, user)
		suite.Require().NoError(err)
		suite.Require().Equal("25", pending.String())
	}

	// PendingReward does not accrue stored state
	got, err := f.Farms.GetFarm(f.Ctx, farm.ID)
	suite.Require().NoError(err)
	suite.Require().True(got.AccRewardPerShare.IsZero())
	suite.Require().Equal("100", got.TotalStaked.String())
	suite.Require().Equal("100", f.Vault.Escrowed(f.Ctx, farm.ID, "uatom").String())

	_, err = f.Farms.PendingReward(f.Ctx, farm.ID, "carol")
	suite.Require().ErrorIs(err, types.ErrPositionNotFound)
}

func (suite *KeeperTestSuite) TestStake_LateJoiner() {
	f := suite.f
	farm := keepertest.CreateTestFarm(suite.T(), f, "uatom", "upaw", 10)

	_, err := f.Farms.Stake(f.Ctx, farm.ID, "alice", math.NewInt(100))
	suite.Require().NoError(err)
	f.Clock.Advance(4)
	_, err = f.Farms.Stake(f.Ctx, farm.ID, "bob", math.NewInt(100))
	suite.Require().NoError(err)
	f.Clock.Advance(2)

	alice, err := f.Farms.PendingReward(f.Ctx, farm.ID, "alice")
	suite.Require().NoError(err)
	suite.Require().Equal("50", alice.String())
	bob, err := f.Farms.PendingReward(f.Ctx, farm.ID, "bob")
	suite.Require().NoError(err)
	suite.Require().Equal("10", bob.String())
}

func (suite *KeeperTestSuite) TestStake_KeepsPending() {
	f := suite.f
	farm := keepertest.CreateTestFarm(suite.T(), f, "uatom", "upaw", 10)

	_, err := f.Farms.Stake(f.Ctx, farm.ID, "alice", math.NewInt(100))
	suite.Require().NoError(err)
	f.Clock.Advance(4)
	_, err = f.Farms.Stake(f.Ctx, farm.ID, "alice", math.NewInt(100))
	suite.Require().NoError(err)

	pending, err := f.Farms.PendingReward(f.Ctx, farm.ID, "alice")
	suite.Require().NoError(err)
	suite.Require().Equal("40", pending.String())

	f.Clock.Advance(1)
	pending, err = f.Farms.PendingReward(f.Ctx, farm.ID, "alice")
	suite.Require().NoError(err)
	suite.Require().Equal("50", pending.String())
}

func (suite *KeeperTestSuite) TestStake_Errors() {
	f := suite.f
	farm := keepertest.CreateTestFarm(suite.T(), f, "uatom", "upaw", 10)

	testCases := []struct {
		name   string
		farmID uint64
		user   string
		amount math.Int
		err    error
	}{
		{"unknown farm", 42, "alice", math.NewInt(1), types.ErrFarmNotFound},
		{"empty user", farm.ID, "", math.NewInt(1), types.ErrInvalidUser},
		{"reserved user", farm.ID, types.EscrowOwner(farm.ID), math.NewInt(1), types.ErrInvalidUser},
		{"dex owner", farm.ID, dextypes.MinimumLiquidityOwner, math.NewInt(1), types.ErrInvalidUser},
		{"zero", farm.ID, "alice", math.ZeroInt(), types.ErrInvalidAmount},
		{"negative", farm.ID, "alice", math.NewInt(-5), types.ErrInvalidAmount},
		{"beyond bound", farm.ID, "alice", maxAmount().AddRaw(1), types.ErrOverflow},
	}
	for _, tc := range testCases {
		suite.Run(tc.name, func() {
			_, err := f.Farms.Stake(f.Ctx, tc.farmID, tc.user, tc.amount)
			suite.Require().ErrorIs(err, tc.err)
		})
	}
	suite.Require().Empty(f.Events.OfType(types.EventTypeStake))
}

func (suite *KeeperTestSuite) TestHarvest() {
	f := suite.f
	farm := keepertest.CreateTestFarm(suite.T(), f, "uatom", "upaw", 10)
	_, err := f.Farms.Stake(f.Ctx, farm.ID, "alice", math.NewInt(50))
	suite.Require().NoError(err)

	_, err = f.Farms.Harvest(f.Ctx, farm.ID, "alice")
	suite.Require().ErrorIs(err, types.ErrNothingToHarvest)

	f.Clock.Advance(1)
	tx, err := f.Farms.Harvest(f.Ctx, farm.ID, "alice")
	suite.Require().NoError(err)
	suite.Require().Equal("10", tx.Reward.String())
	suite.Require().Equal("50", tx.StakedAfter.String())

	_, err = f.Farms.Harvest(f.Ctx, farm.ID, "alice")
	suite.Require().ErrorIs(err, types.ErrNothingToHarvest, "same block")

	_, err = f.Farms.Harvest(f.Ctx, farm.ID, "bob")
	suite.Require().ErrorIs(err, types.ErrPositionNotFound)

	got, err := f.Farms.GetFarm(f.Ctx, farm.ID)
	suite.Require().NoError(err)
	suite.Require().Equal("10", got.RewardsAllocated.String())

	recs, err := f.Audit.Query(f.Ctx, audit.Filter{Kind: audit.KindFarm, UserID: "alice"})
	suite.Require().NoError(err)
	suite.Require().Len(recs, 2)
	suite.Require().Equal(string(types.ActionHarvest), recs[0].Action)

	var stored types.FarmTransaction
	suite.Require().NoError(recs[0].Decode(&stored))
	suite.Require().Equal(tx.ID, stored.ID)
	suite.Require().Equal("10", stored.Reward.String())
	suite.Require().Len(f.Events.OfType(types.EventTypeHarvest), 1)
}

func (suite *KeeperTestSuite) TestUnstake() {
	f := suite.f
	farm := keepertest.CreateTestFarm(suite.T(), f, "uatom", "upaw", 10)
	_, err := f.Farms.Stake(f.Ctx, farm.ID, "alice", math.NewInt(100))
	suite.Require().NoError(err)
	f.Clock.Advance(3)

	tx, err := f.Farms.Unstake(f.Ctx, farm.ID, "alice", math.NewInt(40))
	suite.Require().NoError(err)
	suite.Require().Equal("30", tx.Reward.String(), "unstake harvests")
	suite.Require().Equal("60", tx.StakedAfter.String())
	suite.Require().Equal("60", tx.TotalStakedAfter.String())
	suite.Require().Equal("60", f.Vault.Escrowed(f.Ctx, farm.ID, "uatom").String())

	pending, err := f.Farms.PendingReward(f.Ctx, farm.ID, "alice")
	suite.Require().NoError(err)
	suite.Require().True(pending.IsZero())

	_, err = f.Farms.Unstake(f.Ctx, farm.ID, "alice", math.NewInt(61))
	suite.Require().ErrorIs(err, types.ErrInsufficientStake)
	_, err = f.Farms.Unstake(f.Ctx, farm.ID, "bob", math.NewInt(1))
	suite.Require().ErrorIs(err, types.ErrPositionNotFound)
	_, err = f.Farms.Unstake(f.Ctx, farm.ID, "alice", math.ZeroInt())
	suite.Require().ErrorIs(err, types.ErrInvalidAmount)

	_, err = f.Farms.Unstake(f.Ctx, farm.ID, "alice", math.NewInt(60))
	suite.Require().NoError(err)
	_, err = f.Farms.GetPosition(f.Ctx, farm.ID, "alice")
	suite.Require().ErrorIs(err, types.ErrPositionNotFound, "empty positions are removed")
	suite.Require().Empty(f.Farms.UserPositions(f.Ctx, "alice"))
	suite.Require().True(f.Vault.Escrowed(f.Ctx, farm.ID, "uatom").IsZero())
	suite.Require().NoError(f.Farms.CheckInvariants(f.Ctx))
}

func (suite *KeeperTestSuite) TestCompound() {
	f := suite.f
	farm := keepertest.CreateTestFarm(suite.T(), f, "upaw", "upaw", 10)
	_, err := f.Farms.Stake(f.Ctx, farm.ID, "alice", math.NewInt(100))
	suite.Require().NoError(err)

	_, err = f.Farms.Compound(f.Ctx, farm.ID, "alice")
	suite.Require().ErrorIs(err, types.ErrNothingToHarvest)

	f.Clock.Advance(3)
	tx, err := f.Farms.Compound(f.Ctx, farm.ID, "alice")
	suite.Require().NoError(err)
	suite.Require().Equal("30", tx.Reward.String())
	suite.Require().Equal("130", tx.StakedAfter.String())
	suite.Require().Equal("130", tx.TotalStakedAfter.String())
	suite.Require().Equal("130", f.Vault.Escrowed(f.Ctx, farm.ID, "upaw").String())

	pending, err := f.Farms.PendingReward(f.Ctx, farm.ID, "alice")
	suite.Require().NoError(err)
	suite.Require().True(pending.IsZero())

	f.Clock.Advance(13)
	pending, err = f.Farms.PendingReward(f.Ctx, farm.ID, "alice")
	suite.Require().NoError(err)
	suite.Require().Equal("130", pending.String())
	suite.Require().Len(f.Events.OfType(types.EventTypeCompound), 1)
	suite.Require().NoError(f.Farms.CheckInvariants(f.Ctx))
}

func (suite *KeeperTestSuite) TestCompound_Unsupported() {
	f := suite.f
	farm := keepertest.CreateTestFarm(suite.T(), f, "uatom", "upaw", 10)
	_, err := f.Farms.Stake(f.Ctx, farm.ID, "alice", math.NewInt(100))
	suite.Require().NoError(err)
	f.Clock.Advance(3)

	_, err = f.Farms.Compound(f.Ctx, farm.ID, "alice")
	suite.Require().ErrorIs(err, types.ErrCompoundUnsupported)

	pending, err := f.Farms.PendingReward(f.Ctx, farm.ID, "alice")
	suite.Require().NoError(err)
	suite.Require().Equal("30", pending.String(), "failed compound leaves rewards pending")
}

func (suite *KeeperTestSuite) TestLPFarm_EscrowsShares() {
	f := suite.f
	pool, _, err := f.Keeper.CreatePool(f.Ctx, "uatom", "upaw", dextypes.DefaultFeeRateBps)
	suite.Require().NoError(err)
	_, err = f.Keeper.AddLiquidity(f.Ctx, pool.ID, "alice", math.NewInt(100), math.NewInt(400), false)
	suite.Require().NoError(err)

	lp := dextypes.LPTokenID(pool.ID)
	farm := keepertest.CreateTestFarm(suite.T(), f, lp, "upaw", 10)
	escrow := types.EscrowOwner(farm.ID)

	_, err = f.Farms.Stake(f.Ctx, farm.ID, "alice", math.NewInt(100))
	suite.Require().NoError(err)

	shares, err := f.Keeper.GetShares(f.Ctx, pool.ID, "alice")
	suite.Require().NoError(err)
	suite.Require().Equal("90", shares.String())
	held, err := f.Keeper.GetShares(f.Ctx, pool.ID, escrow)
	suite.Require().NoError(err)
	suite.Require().Equal("100", held.String())
	suite.Require().Equal("100", f.Vault.Escrowed(f.Ctx, farm.ID, lp).String())

	_, err = f.Farms.Stake(f.Ctx, farm.ID, "alice", math.NewInt(91))
	suite.Require().ErrorIs(err, dextypes.ErrInsufficientShares)
	pos, err := f.Farms.GetPosition(f.Ctx, farm.ID, "alice")
	suite.Require().NoError(err)
	suite.Require().Equal("100", pos.StakedAmount.String(), "failed lock leaves the position untouched")

	// the escrow cannot withdraw liquidity on its own
	_, err = f.Keeper.RemoveLiquidity(f.Ctx, pool.ID, escrow, math.NewInt(1), math.ZeroInt(), math.ZeroInt())
	suite.Require().ErrorIs(err, dextypes.ErrInvalidUser)

	f.Clock.Advance(2)
	tx, err := f.Farms.Unstake(f.Ctx, farm.ID, "alice", math.NewInt(100))
	suite.Require().NoError(err)
	suite.Require().Equal("20", tx.Reward.String())

	shares, err = f.Keeper.GetShares(f.Ctx, pool.ID, "alice")
	suite.Require().NoError(err)
	suite.Require().Equal("190", shares.String())
	suite.Require().NoError(f.Keeper.CheckInvariants(f.Ctx))
	suite.Require().NoError(f.Farms.CheckInvariants(f.Ctx))
}

func (suite *KeeperTestSuite) TestLPFarm_HaltedPool() {
	f := suite.f
	pool := keepertest.CreateTestPool(suite.T(), f.DexFixture, "uatom", "upaw", math.NewInt(1000), math.NewInt(1000))
	farm := keepertest.CreateTestFarm(suite.T(), f, dextypes.LPTokenID(pool.ID), "upaw", 10)

	_, err := f.Farms.Stake(f.Ctx, farm.ID, "seeder", math.NewInt(100))
	suite.Require().NoError(err)
	suite.Require().NoError(f.Keeper.HaltPool(f.Ctx, pool.ID, "maintenance"))

	_, err = f.Farms.Stake(f.Ctx, farm.ID, "seeder", math.NewInt(1))
	suite.Require().ErrorIs(err, dextypes.ErrPoolHalted)
	_, err = f.Farms.Unstake(f.Ctx, farm.ID, "seeder", math.NewInt(1))
	suite.Require().ErrorIs(err, dextypes.ErrPoolHalted)

	// rewards keep accruing and can be harvested
	f.Clock.Advance(1)
	tx, err := f.Farms.Harvest(f.Ctx, farm.ID, "seeder")
	suite.Require().NoError(err)
	suite.Require().Equal("10", tx.Reward.String())

	suite.Require().NoError(f.Keeper.ResumePool(f.Ctx, pool.ID))
	_, err = f.Farms.Unstake(f.Ctx, farm.ID, "seeder", math.NewInt(100))
	suite.Require().NoError(err)
}

func (suite *KeeperTestSuite) TestStake_TotalStakedBound() {
	f := suite.f
	farm := keepertest.CreateTestFarm(suite.T(), f, "uatom", "upaw", 10)

	_, err := f.Farms.Stake(f.Ctx, farm.ID, "alice", maxAmount())
	suite.Require().NoError(err)
	f.Clock.Advance(3)

	suite.Require().NotPanics(func() {
		_, err = f.Farms.Stake(f.Ctx, farm.ID, "bob", math.OneInt())
	})
	suite.Require().ErrorIs(err, types.ErrOverflow)

	got, err := f.Farms.GetFarm(f.Ctx, farm.ID)
	suite.Require().NoError(err)
	suite.Require().True(got.TotalStaked.Equal(maxAmount()))
	_, err = f.Farms.GetPosition(f.Ctx, farm.ID, "bob")
	suite.Require().ErrorIs(err, types.ErrPositionNotFound)
	suite.Require().Equal(maxAmount().String(), f.Vault.Escrowed(f.Ctx, farm.ID, "uatom").String())
	suite.Require().NoError(f.Farms.CheckInvariants(f.Ctx))
}

func (suite *KeeperTestSuite) TestPendingReward_NeverDecreases() {
	f := suite.f
	farm := keepertest.CreateTestFarm(suite.T(), f, "uatom", "upaw", 7)

	_, err := f.Farms.Stake(f.Ctx, farm.ID, "alice", math.NewInt(3))
	suite.Require().NoError(err)
	_, err = f.Farms.Stake(f.Ctx, farm.ID, "bob", math.NewInt(11))
	suite.Require().NoError(err)

	last := math.ZeroInt()
	for tick := 0; tick < 50; tick++ {
		f.Clock.Advance(1)
		if tick%7 == 3 {
			// bob's activity accrues the stored accumulator between reads
			_, err := f.Farms.Harvest(f.Ctx, farm.ID, "bob")
			suite.Require().NoError(err)
		}
		pending, err := f.Farms.PendingReward(f.Ctx, farm.ID, "alice")
		suite.Require().NoError(err)
		suite.Require().True(pending.GTE(last), "tick %d: pending %s fell below %s", tick, pending, last)
		last = pending
	}
	// 50 blocks at 7 per block split 3:14, floored
	suite.Require().Equal("75", last.String())
}
