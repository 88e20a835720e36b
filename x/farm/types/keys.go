package types

import (
	"fmt"

	"cosmossdk.io/math"
)

const (
	// ModuleName defines the module name
	ModuleName = "farm"

	// PrecisionExponent is the decimal scale of the reward-per-share accumulator.
	PrecisionExponent = 18
)

// Precision scales AccRewardPerShare and RewardDebt.
var Precision = math.NewIntWithDecimal(1, PrecisionExponent)

// EscrowOwner is the dex position that holds LP shares staked in a farm.
func EscrowOwner(farmID uint64) string {
	return fmt.Sprintf("%s/%d", ModuleName, farmID)
}

// RewardsOwner is the vault owner that funds compounded stake.
func RewardsOwner(farmID uint64) string {
	return fmt.Sprintf("%s/%d/rewards", ModuleName, farmID)
}

// FarmEntityID is the audit entity id of a farm.
func FarmEntityID(farmID uint64) string {
	return fmt.Sprintf("farm/%d", farmID)
}
