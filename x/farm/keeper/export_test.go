package keeper

import "github.com/paw-chain/pawswap/x/farm/types"

// MutateFarmForTest edits a stored farm without any validation.
func MutateFarmForTest(k *Keeper, farmID uint64, mutate func(*types.Farm)) {
	e, err := k.entry(farmID)
	if err != nil {
		panic(err)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	mutate(&e.farm)
}
