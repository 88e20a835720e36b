package app

import (
	"cosmossdk.io/math"

	tokentypes "github.com/paw-chain/pawswap/x/token/types"
)

const (
	// BondDenom defines the native token denomination.
	BondDenom = "upaw"

	// DisplayDenom defines the display symbol of the native token.
	DisplayDenom = "PAW"

	// NativeDecimals is the number of base units per display unit exponent.
	NativeDecimals = 6
)

// DefaultTokens returns the tokens registered when no genesis file or config
// token list is provided.
func DefaultTokens() []tokentypes.Token {
	return []tokentypes.Token{
		{
			ID:       BondDenom,
			Symbol:   DisplayDenom,
			Name:     "PAW",
			Decimals: NativeDecimals,
			Price:    math.LegacyOneDec(),
		},
	}
}
