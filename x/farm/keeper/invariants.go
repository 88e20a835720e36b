package keeper

import (
	"context"
	"strings"

	"cosmossdk.io/math"

	"github.com/paw-chain/pawswap/x/farm/types"
)

// CheckInvariants verifies every farm: structural validity, stake sum equal
// to TotalStaked, and rewards allocated within budget.
func (k *Keeper) CheckInvariants(_ context.Context) error {
	var broken []string
	for _, e := range k.entries() {
		e.mu.Lock()
		err := checkEntryLocked(e)
		e.mu.Unlock()
		if err != nil {
			broken = append(broken, err.Error())
			k.metrics.InvariantFailures.Inc()
			k.logger.Error("farm invariant violated", "error", err)
		}
	}
	if len(broken) > 0 {
		return types.ErrInvariantViolation.Wrap(strings.Join(broken, "; "))
	}
	return nil
}

func checkEntryLocked(e *farmEntry) error {
	if err := e.farm.Validate(); err != nil {
		return err
	}
	sum := math.ZeroInt()
	for _, p := range e.positions {
		if err := p.Validate(); err != nil {
			return err
		}
		sum = sum.Add(p.StakedAmount)
	}
	if !sum.Equal(e.farm.TotalStaked) {
		return types.ErrInvariantViolation.Wrapf("farm %d positions stake %s, total staked %s", e.farm.ID, sum, e.farm.TotalStaked)
	}
	return nil
}
