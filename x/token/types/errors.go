package types

import (
	"cosmossdk.io/errors"
)

// Token registry sentinel errors
var (
	ErrTokenNotFound  = errors.Register(ModuleName, 2, "token not found")
	ErrInvalidToken   = errors.Register(ModuleName, 3, "invalid token")
	ErrTokenImmutable = errors.Register(ModuleName, 4, "token metadata is immutable while referenced by a pool")
	ErrInvalidPrice   = errors.Register(ModuleName, 5, "invalid token price")
)
