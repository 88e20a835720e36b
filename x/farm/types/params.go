package types

import "cosmossdk.io/math"

// Params bound farm creation.
type Params struct {
	// MaxFarms caps the number of farms. Zero means unlimited.
	MaxFarms uint32 `json:"maxFarms" mapstructure:"max_farms"`
	// MaxRewardPerBlock caps the emission rate of a single farm. Zero means unlimited.
	MaxRewardPerBlock math.Int `json:"maxRewardPerBlock"`
}

const DefaultMaxFarms uint32 = 256

// DefaultParams returns default farm parameters
func DefaultParams() Params {
	return Params{
		MaxFarms:          DefaultMaxFarms,
		MaxRewardPerBlock: math.ZeroInt(),
	}
}

// Validate checks parameter bounds.
func (p Params) Validate() error {
	if p.MaxRewardPerBlock.IsNil() || p.MaxRewardPerBlock.IsNegative() {
		return ErrInvalidParams.Wrap("max reward per block must be non-negative")
	}
	return nil
}

// ValidateRate checks a reward rate against the params.
func (p Params) ValidateRate(rate math.Int) error {
	if rate.IsNil() || rate.IsNegative() {
		return ErrInvalidAmount.Wrap("reward per block must be non-negative")
	}
	if p.MaxRewardPerBlock.IsPositive() && rate.GT(p.MaxRewardPerBlock) {
		return ErrRewardRateTooHigh.Wrapf("%s exceeds %s", rate, p.MaxRewardPerBlock)
	}
	return CheckAmountBound("reward per block", rate)
}
