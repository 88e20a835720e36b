package types

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	// ModuleName defines the module name
	ModuleName = "dex"

	// BpsDenominator is the basis point scale used for fee rates and tolerances.
	BpsDenominator = 10_000

	// MinimumLiquidityOwner holds the shares withheld on a pool's first deposit.
	// Nothing can withdraw from it.
	MinimumLiquidityOwner = "dex/minimum-liquidity"

	lpTokenPrefix = "lp/"
)

// IsReservedOwner reports whether id names a module-held position rather than
// a user. Reserved owners are "dex/..." and "farm/...".
func IsReservedOwner(id string) bool {
	return strings.HasPrefix(id, ModuleName+"/") || strings.HasPrefix(id, "farm/")
}

// SortTokens orders a pair lexicographically so (a,b) and (b,a) resolve to the same pool.
func SortTokens(tokenA, tokenB string) (string, string) {
	if tokenA > tokenB {
		return tokenB, tokenA
	}
	return tokenA, tokenB
}

// PairKey returns the canonical, order-independent key of a token pair.
func PairKey(tokenA, tokenB string) string {
	t0, t1 := SortTokens(tokenA, tokenB)
	return t0 + "|" + t1
}

// LPTokenID is the registry id of a pool's LP share token.
func LPTokenID(poolID uint64) string {
	return fmt.Sprintf("%s%d", lpTokenPrefix, poolID)
}

// ParseLPTokenID returns the pool id behind an LP token id.
func ParseLPTokenID(tokenID string) (uint64, bool) {
	if !strings.HasPrefix(tokenID, lpTokenPrefix) {
		return 0, false
	}
	id, err := strconv.ParseUint(strings.TrimPrefix(tokenID, lpTokenPrefix), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}
