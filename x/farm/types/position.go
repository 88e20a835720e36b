package types

import "cosmossdk.io/math"

// FarmPosition is a user's stake in a farm. RewardDebt is scaled by Precision.
type FarmPosition struct {
	FarmID       uint64   `json:"farmId"`
	UserID       string   `json:"userId"`
	StakedAmount math.Int `json:"stakedAmount"`
	RewardDebt   math.Int `json:"rewardDebt"`
}

// NewFarmPosition returns an empty position.
func NewFarmPosition(farmID uint64, userID string) FarmPosition {
	return FarmPosition{FarmID: farmID, UserID: userID, StakedAmount: math.ZeroInt(), RewardDebt: math.ZeroInt()}
}

// PendingScaled is the owed reward scaled by Precision at accumulator acc.
func (p FarmPosition) PendingScaled(acc math.Int) math.Int {
	owed := p.StakedAmount.Mul(acc).Sub(p.RewardDebt)
	if owed.IsNegative() {
		return math.ZeroInt()
	}
	return owed
}

// Pending is the whole-unit reward owed at accumulator acc.
func (p FarmPosition) Pending(acc math.Int) math.Int {
	return p.PendingScaled(acc).Quo(Precision)
}

// Stake adds amount without changing the owed reward.
func (p *FarmPosition) Stake(amount, acc math.Int) {
	p.StakedAmount = p.StakedAmount.Add(amount)
	p.RewardDebt = p.RewardDebt.Add(amount.Mul(acc))
}

// Settle pays out the whole-unit pending reward and keeps the sub-unit
// remainder owed.
func (p *FarmPosition) Settle(acc math.Int) math.Int {
	reward := p.Pending(acc)
	p.RewardDebt = p.RewardDebt.Add(reward.Mul(Precision))
	return reward
}

// Validate checks a stored position.
func (p FarmPosition) Validate() error {
	if p.FarmID == 0 || p.UserID == "" {
		return ErrInvariantViolation.Wrap("position without farm or owner")
	}
	if p.StakedAmount.IsNil() || !p.StakedAmount.IsPositive() {
		return ErrInvariantViolation.Wrapf("position %d/%s stakes %s", p.FarmID, p.UserID, p.StakedAmount)
	}
	if p.RewardDebt.IsNil() || p.RewardDebt.IsNegative() {
		return ErrInvariantViolation.Wrapf("position %d/%s has reward debt %s", p.FarmID, p.UserID, p.RewardDebt)
	}
	return nil
}

// Unstake removes amount. Any sub-unit remainder is forfeited.
func (p *FarmPosition) Unstake(amount, acc math.Int) {
	p.StakedAmount = p.StakedAmount.Sub(amount)
	p.RewardDebt = p.StakedAmount.Mul(acc)
}
