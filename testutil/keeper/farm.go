package keeper

import (
	"testing"

	"cosmossdk.io/log"
	"cosmossdk.io/math"
	"github.com/stretchr/testify/require"

	"github.com/paw-chain/pawswap/app"
	farmkeeper "github.com/paw-chain/pawswap/x/farm/keeper"
	farmtypes "github.com/paw-chain/pawswap/x/farm/types"
)

// FarmFixture is a DexFixture with a farm keeper sharing its stores, clock
// and event recorder. LP stakes are escrowed through the dex keeper.
type FarmFixture struct {
	*DexFixture
	Farms *farmkeeper.Keeper
	Vault *app.StakeVault
}

// FarmKeeper creates a farm keeper on top of DexKeeper.
func FarmKeeper(t testing.TB) *FarmFixture {
	t.Helper()

	dex := DexKeeper(t)
	vault := app.NewStakeVault(dex.Keeper)
	k := farmkeeper.NewKeeper(log.NewNopLogger(), dex.Tokens, vault, dex.Audit, dex.Clock, dex.Events)
	return &FarmFixture{DexFixture: dex, Farms: k, Vault: vault}
}

// TestFarmBudget is the reward budget CreateTestFarm funds farms with.
var TestFarmBudget = math.NewInt(1_000_000_000)

// CreateTestFarm creates a farm funded with TestFarmBudget that starts at the
// current block.
func CreateTestFarm(t testing.TB, f *FarmFixture, stakeToken, rewardToken string, rewardPerBlock int64) farmtypes.Farm {
	t.Helper()

	farm, err := f.Farms.CreateFarm(f.Ctx, stakeToken, rewardToken, math.NewInt(rewardPerBlock), 0, TestFarmBudget)
	require.NoError(t, err)
	return farm
}
