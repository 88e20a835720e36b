package types

import "cosmossdk.io/math"

// LiquidityPosition is a user's share of a pool. Positions with zero shares are deleted.
type LiquidityPosition struct {
	PoolID   uint64   `json:"poolId"`
	UserID   string   `json:"userId"`
	LpShares math.Int `json:"lpShares"`
}

// Validate checks a stored position.
func (p LiquidityPosition) Validate() error {
	if p.PoolID == 0 {
		return ErrPoolNotFound.Wrap("position without pool id")
	}
	if p.UserID == "" {
		return ErrPositionNotFound.Wrap("position without owner")
	}
	if p.LpShares.IsNil() || !p.LpShares.IsPositive() {
		return ErrInvariantViolation.Wrapf("position %d/%s holds %s shares", p.PoolID, p.UserID, p.LpShares)
	}
	return nil
}
