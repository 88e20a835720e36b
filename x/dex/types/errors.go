package types

import (
	"cosmossdk.io/errors"
)

// DEX module sentinel errors
var (
	ErrInvalidAmount         = errors.Register(ModuleName, 2, "invalid amount")
	ErrInsufficientLiquidity = errors.Register(ModuleName, 3, "insufficient liquidity in pool")
	ErrInsufficientShares    = errors.Register(ModuleName, 4, "insufficient liquidity shares")
	ErrSlippageExceeded      = errors.Register(ModuleName, 5, "slippage exceeded")
	ErrPoolEmpty             = errors.Register(ModuleName, 6, "pool has no reserves")
	ErrPositionNotFound      = errors.Register(ModuleName, 7, "liquidity position not found")
	ErrPairNotFound          = errors.Register(ModuleName, 8, "no pool for token pair")
	ErrInvariantViolation    = errors.Register(ModuleName, 9, "pool invariant violated")
	ErrRatioMismatch         = errors.Register(ModuleName, 10, "deposit ratio does not match pool ratio")
	ErrPoolNotFound          = errors.Register(ModuleName, 11, "pool not found")
	ErrInvalidTokenPair      = errors.Register(ModuleName, 12, "invalid token pair")
	ErrInvalidFee            = errors.Register(ModuleName, 13, "invalid fee rate")
	ErrPoolHalted            = errors.Register(ModuleName, 14, "pool halted")
	ErrNoRoute               = errors.Register(ModuleName, 15, "no route between tokens")
	ErrInvalidRoute          = errors.Register(ModuleName, 16, "invalid route")
	ErrInvalidParams         = errors.Register(ModuleName, 17, "invalid params")
	ErrInvalidUser           = errors.Register(ModuleName, 18, "invalid user")
	ErrOverflow              = errors.Register(ModuleName, 19, "amount overflow")
)

// IsRetryable reports whether the caller should re-quote and resubmit.
func IsRetryable(err error) bool {
	return errors.IsOf(err, ErrSlippageExceeded)
}

// IsFatal reports whether err halted a pool.
func IsFatal(err error) bool {
	return errors.IsOf(err, ErrInvariantViolation, ErrPoolHalted)
}
