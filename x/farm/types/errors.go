package types

import (
	"cosmossdk.io/errors"
)

// Farm module sentinel errors
var (
	ErrFarmNotFound        = errors.Register(ModuleName, 2, "farm not found")
	ErrInvalidAmount       = errors.Register(ModuleName, 3, "invalid amount")
	ErrInsufficientStake   = errors.Register(ModuleName, 4, "insufficient stake")
	ErrNothingToHarvest    = errors.Register(ModuleName, 5, "no pending reward")
	ErrCompoundUnsupported = errors.Register(ModuleName, 6, "compound requires reward token equal to stake token")
	ErrPositionNotFound    = errors.Register(ModuleName, 7, "farm position not found")
	ErrInvalidRewardToken  = errors.Register(ModuleName, 8, "invalid reward token")
	ErrInvalidUser         = errors.Register(ModuleName, 9, "invalid user")
	ErrInvalidParams       = errors.Register(ModuleName, 10, "invalid params")
	ErrInvariantViolation  = errors.Register(ModuleName, 11, "farm invariant violated")
	ErrRewardRateTooHigh   = errors.Register(ModuleName, 12, "reward per block above maximum")
	ErrTooManyFarms        = errors.Register(ModuleName, 13, "farm limit reached")
	ErrOverflow            = errors.Register(ModuleName, 14, "amount overflow")
)
