package types

import (
	"cosmossdk.io/math"
)

// Params configures pool creation and liquidity accounting.
type Params struct {
	// DefaultFeeRateBps applies when a pool is created without an explicit fee.
	DefaultFeeRateBps uint32 `json:"defaultFeeRateBps" mapstructure:"default_fee_rate_bps"`
	// MaxFeeRateBps caps per-pool fees.
	MaxFeeRateBps uint32 `json:"maxFeeRateBps" mapstructure:"max_fee_rate_bps"`
	// MinimumLiquidity is burned from the first deposit of every pool.
	MinimumLiquidity math.Int `json:"minimumLiquidity"`
	// RatioToleranceBps is the accepted deviation from the pool ratio for deposits
	// that do not request auto-adjustment.
	RatioToleranceBps uint32 `json:"ratioToleranceBps" mapstructure:"ratio_tolerance_bps"`
	// MaxHops bounds route search.
	MaxHops int `json:"maxHops" mapstructure:"max_hops"`
}

const (
	DefaultFeeRateBps        uint32 = 30
	DefaultMaxFeeRateBps     uint32 = 1_000
	DefaultMinimumLiquidity  int64  = 1_000
	DefaultRatioToleranceBps uint32 = 50
	DefaultMaxHops                  = 3
)

// DefaultParams returns default dex parameters
func DefaultParams() Params {
	return Params{
		DefaultFeeRateBps: DefaultFeeRateBps,
		MaxFeeRateBps:     DefaultMaxFeeRateBps,
		MinimumLiquidity:  math.NewInt(DefaultMinimumLiquidity),
		RatioToleranceBps: DefaultRatioToleranceBps,
		MaxHops:           DefaultMaxHops,
	}
}

// Validate checks parameter bounds.
func (p Params) Validate() error {
	if p.MaxFeeRateBps >= BpsDenominator {
		return ErrInvalidParams.Wrapf("max fee %d bps must be below %d", p.MaxFeeRateBps, BpsDenominator)
	}
	if p.DefaultFeeRateBps > p.MaxFeeRateBps {
		return ErrInvalidParams.Wrapf("default fee %d bps exceeds max %d bps", p.DefaultFeeRateBps, p.MaxFeeRateBps)
	}
	if p.MinimumLiquidity.IsNil() || p.MinimumLiquidity.IsNegative() {
		return ErrInvalidParams.Wrap("minimum liquidity must be non-negative")
	}
	if p.RatioToleranceBps > BpsDenominator {
		return ErrInvalidParams.Wrapf("ratio tolerance %d bps exceeds %d", p.RatioToleranceBps, BpsDenominator)
	}
	if p.MaxHops < 1 || p.MaxHops > DefaultMaxHops {
		return ErrInvalidParams.Wrapf("max hops must be within [1, %d], got %d", DefaultMaxHops, p.MaxHops)
	}
	return nil
}

// ValidateFee checks a pool fee against the params.
func (p Params) ValidateFee(feeRateBps uint32) error {
	if feeRateBps > p.MaxFeeRateBps {
		return ErrInvalidFee.Wrapf("fee %d bps exceeds max %d bps", feeRateBps, p.MaxFeeRateBps)
	}
	return nil
}
