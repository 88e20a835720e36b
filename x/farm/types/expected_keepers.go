package types

import (
	"context"

	"cosmossdk.io/math"

	tokentypes "github.com/paw-chain/pawswap/x/token/types"
)

// TokenKeeper is the registry view the farm needs.
type TokenKeeper interface {
	GetToken(ctx context.Context, id string) (tokentypes.Token, error)
	MarkReferenced(ctx context.Context, id string) error
}

// StakeVault custodies staked tokens. Lock moves amount of token from owner
// into the farm's escrow; Release moves it back.
type StakeVault interface {
	Lock(ctx context.Context, farmID uint64, token, owner string, amount math.Int) error
	Release(ctx context.Context, farmID uint64, token, owner string, amount math.Int) error
}
