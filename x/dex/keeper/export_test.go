package keeper

import "github.com/paw-chain/pawswap/x/dex/types"

// MutatePoolForTest edits committed pool state directly, bypassing every check.
func MutatePoolForTest(k *Keeper, poolID uint64, mutate func(*types.Pool)) {
	e, err := k.entry(poolID)
	if err != nil {
		panic(err)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	mutate(&e.pool)
}

// BetterRouteForTest exposes the route ordering.
var BetterRouteForTest = betterRoute
