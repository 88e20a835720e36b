package keeper

import (
	"context"
	"fmt"
	"strings"

	"cosmossdk.io/math"

	"github.com/paw-chain/pawswap/x/dex/types"
)

// CheckInvariants verifies every pool: structural validity, and that the sum
// of its positions equals its share supply. Broken pools are halted.
func (k *Keeper) CheckInvariants(_ context.Context) error {
	var broken []string
	for _, e := range k.entries() {
		e.mu.Lock()
		if err := checkEntryLocked(e); err != nil {
			broken = append(broken, err.Error())
			if !e.pool.Halted {
				_ = k.escalate(e, "invariant_check", err)
			}
		}
		e.mu.Unlock()
	}
	if len(broken) > 0 {
		return types.ErrInvariantViolation.Wrap(strings.Join(broken, "; "))
	}
	return nil
}

// checkEntryLocked runs the per-pool invariants. The caller holds e.mu.
func checkEntryLocked(e *poolEntry) error {
	if err := e.pool.Validate(); err != nil {
		return err
	}
	sum := math.ZeroInt()
	for user, shares := range e.positions {
		if !shares.IsPositive() {
			return types.ErrInvariantViolation.Wrapf("pool %d position %s holds %s shares", e.pool.ID, user, shares)
		}
		sum = sum.Add(shares)
	}
	if !sum.Equal(e.pool.TotalLpShares) {
		return types.ErrInvariantViolation.Wrap(
			fmt.Sprintf("pool %d positions sum to %s, total shares %s", e.pool.ID, sum, e.pool.TotalLpShares))
	}
	return nil
}
