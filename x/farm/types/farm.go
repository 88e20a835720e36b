package types

import (
	"math/big"
	"time"

	"cosmossdk.io/math"

	dextypes "github.com/paw-chain/pawswap/x/dex/types"
)

// Farm distributes RewardToken to StakeToken stakers at RewardPerBlock,
// bounded by RewardBudget.
type Farm struct {
	ID             uint64   `json:"id"`
	StakeToken     string   `json:"stakeToken"`
	RewardToken    string   `json:"rewardToken"`
	RewardPerBlock math.Int `json:"rewardPerBlock"`
	// AccRewardPerShare is scaled by Precision.
	AccRewardPerShare math.Int  `json:"accRewardPerShare"`
	LastAccrualBlock  uint64    `json:"lastAccrualBlock"`
	StartBlock        uint64    `json:"startBlock"`
	TotalStaked       math.Int  `json:"totalStaked"`
	RewardBudget      math.Int  `json:"rewardBudget"`
	RewardsAllocated  math.Int  `json:"rewardsAllocated"`
	CreatedAt         time.Time `json:"createdAt"`
}

// NewFarm returns an empty farm that starts accruing at startBlock.
func NewFarm(id uint64, stakeToken, rewardToken string, rewardPerBlock, budget math.Int, startBlock uint64, createdAt time.Time) Farm {
	return Farm{
		ID:                id,
		StakeToken:        stakeToken,
		RewardToken:       rewardToken,
		RewardPerBlock:    rewardPerBlock,
		AccRewardPerShare: math.ZeroInt(),
		LastAccrualBlock:  startBlock,
		StartBlock:        startBlock,
		TotalStaked:       math.ZeroInt(),
		RewardBudget:      budget,
		RewardsAllocated:  math.ZeroInt(),
		CreatedAt:         createdAt,
	}
}

// StakesLPShares reports whether the stake token is a pool's LP share token.
func (f Farm) StakesLPShares() (uint64, bool) {
	return dextypes.ParseLPTokenID(f.StakeToken)
}

// CanCompound reports whether harvested rewards can be restaked.
func (f Farm) CanCompound() bool {
	_, lp := f.StakesLPShares()
	return f.RewardToken == f.StakeToken && !lp
}

// RemainingBudget is the reward not yet allocated to stakers.
func (f Farm) RemainingBudget() math.Int {
	r := f.RewardBudget.Sub(f.RewardsAllocated)
	if r.IsNegative() {
		return math.ZeroInt()
	}
	return r
}

// Accrue advances the accumulator to height and returns the reward allocated.
// Nothing accrues before StartBlock or while nothing is staked, and
// LastAccrualBlock still moves forward.
func (f *Farm) Accrue(height uint64) math.Int {
	if height <= f.LastAccrualBlock {
		return math.ZeroInt()
	}
	from := f.LastAccrualBlock
	if from < f.StartBlock {
		from = f.StartBlock
	}
	f.LastAccrualBlock = height
	if height <= from || !f.TotalStaked.IsPositive() {
		return math.ZeroInt()
	}

	product := new(big.Int).Mul(f.RewardPerBlock.BigInt(), new(big.Int).SetUint64(height-from))
	remaining := f.RemainingBudget()
	reward := remaining
	if product.Cmp(remaining.BigInt()) < 0 {
		reward = math.NewIntFromBigInt(product)
	}
	if !reward.IsPositive() {
		return math.ZeroInt()
	}
	f.AccRewardPerShare = f.AccRewardPerShare.Add(reward.Mul(Precision).Quo(f.TotalStaked))
	f.RewardsAllocated = f.RewardsAllocated.Add(reward)
	return reward
}

// Validate checks the farm's structural invariants.
func (f Farm) Validate() error {
	if f.ID == 0 {
		return ErrInvariantViolation.Wrap("farm without id")
	}
	if f.StakeToken == "" || f.RewardToken == "" {
		return ErrInvariantViolation.Wrapf("farm %d has empty tokens", f.ID)
	}
	for name, v := range map[string]math.Int{
		"reward per block":     f.RewardPerBlock,
		"acc reward per share": f.AccRewardPerShare,
		"total staked":         f.TotalStaked,
		"reward budget":        f.RewardBudget,
		"rewards allocated":    f.RewardsAllocated,
	} {
		if v.IsNil() || v.IsNegative() {
			return ErrInvariantViolation.Wrapf("farm %d %s is %s", f.ID, name, v)
		}
	}
	for name, v := range map[string]math.Int{
		"reward per block": f.RewardPerBlock,
		"total staked":     f.TotalStaked,
		"reward budget":    f.RewardBudget,
	} {
		if err := CheckAmountBound(name, v); err != nil {
			return err
		}
	}
	if f.RewardsAllocated.GT(f.RewardBudget) {
		return ErrInvariantViolation.Wrapf("farm %d allocated %s beyond budget %s", f.ID, f.RewardsAllocated, f.RewardBudget)
	}
	if _, lp := dextypes.ParseLPTokenID(f.RewardToken); lp {
		return ErrInvalidRewardToken.Wrapf("farm %d rewards LP token %s", f.ID, f.RewardToken)
	}
	return nil
}
