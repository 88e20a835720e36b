package keeper

import (
	"context"
	"strconv"

	"cosmossdk.io/errors"

	"github.com/paw-chain/pawswap/x/dex/types"
	"github.com/paw-chain/pawswap/x/shared/events"
)

// HaltPool stops all writes to a pool until ResumePool is called.
func (k *Keeper) HaltPool(_ context.Context, poolID uint64, reason string) error {
	e, err := k.entry(poolID)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.pool.Halted {
		return types.ErrPoolHalted.Wrapf("pool %d already halted: %s", poolID, e.pool.HaltReason)
	}
	k.haltLocked(e, reason)
	return nil
}

// ResumePool re-opens a halted pool once its invariants hold again.
func (k *Keeper) ResumePool(_ context.Context, poolID uint64) error {
	e, err := k.entry(poolID)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.pool.Halted {
		return nil
	}
	if err := checkEntryLocked(e); err != nil {
		return err
	}
	e.pool.Halted = false
	e.pool.HaltReason = ""
	k.bumpVersion()

	id := strconv.FormatUint(poolID, 10)
	k.metrics.PoolHalted.WithLabelValues(id).Set(0)
	k.logger.Info("pool resumed", "pool_id", poolID)
	k.emitter.Emit(events.NewEvent(types.ModuleName, types.EventTypePoolResumed, e.pool,
		types.AttributeKeyPoolID, id,
	))
	return nil
}

// IsPoolHalted reports whether writes to the pool are rejected.
func (k *Keeper) IsPoolHalted(_ context.Context, poolID uint64) bool {
	e, err := k.entry(poolID)
	if err != nil {
		return false
	}
	return e.snapshot().Halted
}

// haltLocked marks the pool unavailable. The caller holds e.mu.
func (k *Keeper) haltLocked(e *poolEntry, reason string) {
	e.pool.Halted = true
	e.pool.HaltReason = reason
	k.bumpVersion()

	id := strconv.FormatUint(e.pool.ID, 10)
	k.metrics.PoolHalted.WithLabelValues(id).Set(1)
	k.logger.Error("pool halted", "pool_id", e.pool.ID, "reason", reason,
		"reserve0", e.pool.Reserve0.String(), "reserve1", e.pool.Reserve1.String(),
		"total_shares", e.pool.TotalLpShares.String())
	k.emitter.Emit(events.NewEvent(types.ModuleName, types.EventTypePoolHalted, e.pool,
		types.AttributeKeyPoolID, id,
		types.AttributeKeyReason, reason,
	))
}

// escalate halts the pool when err is an invariant violation and returns err
// unchanged. The caller holds e.mu.
func (k *Keeper) escalate(e *poolEntry, operation string, err error) error {
	if err == nil || !errors.IsOf(err, types.ErrInvariantViolation) {
		return err
	}
	k.metrics.InvariantViolations.WithLabelValues(strconv.FormatUint(e.pool.ID, 10), operation).Inc()
	k.emitter.Emit(events.NewEvent(types.ModuleName, types.EventTypeInvariantViolation, nil,
		types.AttributeKeyPoolID, strconv.FormatUint(e.pool.ID, 10),
		types.AttributeKeyReason, err.Error(),
	))
	k.haltLocked(e, operation+": "+err.Error())
	return err
}

func writable(e *poolEntry) error {
	if e.pool.Halted {
		return types.ErrPoolHalted.Wrapf("pool %d: %s", e.pool.ID, e.pool.HaltReason)
	}
	return nil
}
