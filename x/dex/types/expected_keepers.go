package types

import (
	"context"

	tokentypes "github.com/paw-chain/pawswap/x/token/types"
)

// TokenKeeper is the registry view the dex needs.
type TokenKeeper interface {
	GetToken(ctx context.Context, id string) (tokentypes.Token, error)
	HasToken(ctx context.Context, id string) bool
	RegisterToken(ctx context.Context, token tokentypes.Token) (tokentypes.Token, error)
	MarkReferenced(ctx context.Context, id string) error
}
