package app

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	"cosmossdk.io/log"

	dexkeeper "github.com/paw-chain/pawswap/x/dex/keeper"
	dextypes "github.com/paw-chain/pawswap/x/dex/types"
	farmkeeper "github.com/paw-chain/pawswap/x/farm/keeper"
	farmtypes "github.com/paw-chain/pawswap/x/farm/types"
	"github.com/paw-chain/pawswap/x/shared/events"
)

// Circuit breaker coordination event types
const (
	EventTypeCircuitBreakerPropagated = "circuit_breaker_propagated"
	AttributeKeySourceModule          = "sourceModule"
	AttributeKeyTargetModule          = "targetModule"
	AttributeKeyPropagationReason     = "propagationReason"
)

// Module names for circuit breaker coordination
const (
	ModuleDEX  = dextypes.ModuleName
	ModuleFarm = farmtypes.ModuleName
)

// HaltedPool describes one pool whose circuit breaker is open.
type HaltedPool struct {
	PoolID uint64    `json:"poolId"`
	Reason string    `json:"reason"`
	Since  time.Time `json:"since,omitempty"`
}

// CircuitBreakerStatus represents the unified status of all circuit breakers.
type CircuitBreakerStatus struct {
	DEXOpen     bool         `json:"dexOpen"`
	HaltedPools []HaltedPool `json:"haltedPools,omitempty"`
	// FarmOpen is true if any farm stakes the LP token of a halted pool.
	FarmOpen      bool     `json:"farmOpen"`
	AffectedFarms []uint64 `json:"affectedFarms,omitempty"`
	// AnyOpen is true if any circuit breaker is open
	AnyOpen bool `json:"anyOpen"`
}

// CircuitBreakerCoordinator tracks pool halts and tells farm subscribers
// when a farm's stake pool stops accepting writes.
//
// It is registered as an event emitter. Emit runs while the dex keeper holds
// the pool lock, so it only records state and re-emits; the keepers are read
// lazily by GetGlobalStatus.
type CircuitBreakerCoordinator struct {
	logger     log.Logger
	dexKeeper  *dexkeeper.Keeper
	farmKeeper *farmkeeper.Keeper
	downstream events.Emitter

	mu     sync.RWMutex
	halted map[uint64]time.Time
}

// NewCircuitBreakerCoordinator creates a new circuit breaker coordinator.
// Propagation events are sent to downstream, which may be nil.
func NewCircuitBreakerCoordinator(
	logger log.Logger,
	dexKeeper *dexkeeper.Keeper,
	farmKeeper *farmkeeper.Keeper,
	downstream events.Emitter,
) *CircuitBreakerCoordinator {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	if downstream == nil {
		downstream = events.NopEmitter{}
	}
	return &CircuitBreakerCoordinator{
		logger:     logger.With("module", "circuit_breaker"),
		dexKeeper:  dexKeeper,
		farmKeeper: farmKeeper,
		downstream: downstream,
		halted:     make(map[uint64]time.Time),
	}
}

// Emit implements events.Emitter.
func (c *CircuitBreakerCoordinator) Emit(ev events.Event) {
	if ev.Module != dextypes.ModuleName {
		return
	}
	poolID, err := strconv.ParseUint(ev.Attributes[dextypes.AttributeKeyPoolID], 10, 64)
	if err != nil {
		return
	}

	switch ev.Type {
	case dextypes.EventTypePoolHalted:
		reason := ev.Attributes[dextypes.AttributeKeyReason]
		c.mu.Lock()
		c.halted[poolID] = ev.Time
		c.mu.Unlock()
		c.logger.Warn("pool circuit breaker open", "pool_id", poolID, "reason", reason)
		c.downstream.Emit(events.NewEvent(Name, EventTypeCircuitBreakerPropagated, nil,
			AttributeKeySourceModule, ModuleDEX,
			AttributeKeyTargetModule, ModuleFarm,
			AttributeKeyPropagationReason, reason,
			dextypes.AttributeKeyPoolID, strconv.FormatUint(poolID, 10),
		))
	case dextypes.EventTypePoolResumed:
		c.mu.Lock()
		delete(c.halted, poolID)
		c.mu.Unlock()
		c.logger.Info("pool circuit breaker closed", "pool_id", poolID)
	}
}

func (c *CircuitBreakerCoordinator) haltedSince(poolID uint64) time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.halted[poolID]
}

// GetGlobalStatus returns the unified circuit breaker status across all modules.
func (c *CircuitBreakerCoordinator) GetGlobalStatus(ctx context.Context) CircuitBreakerStatus {
	status := CircuitBreakerStatus{}
	if c.dexKeeper == nil {
		return status
	}

	haltedByToken := make(map[string]bool)
	for _, p := range c.dexKeeper.ListPools(ctx) {
		if !p.Halted {
			continue
		}
		status.HaltedPools = append(status.HaltedPools, HaltedPool{
			PoolID: p.ID,
			Reason: p.HaltReason,
			Since:  c.haltedSince(p.ID),
		})
		haltedByToken[dextypes.LPTokenID(p.ID)] = true
	}
	status.DEXOpen = len(status.HaltedPools) > 0

	if c.farmKeeper != nil && status.DEXOpen {
		for _, f := range c.farmKeeper.ListFarms(ctx) {
			if haltedByToken[f.StakeToken] {
				status.AffectedFarms = append(status.AffectedFarms, f.ID)
			}
		}
		sort.Slice(status.AffectedFarms, func(i, j int) bool { return status.AffectedFarms[i] < status.AffectedFarms[j] })
	}
	status.FarmOpen = len(status.AffectedFarms) > 0

	status.AnyOpen = status.DEXOpen || status.FarmOpen
	return status
}

// IsDEXAvailable checks if every pool accepts writes.
func (c *CircuitBreakerCoordinator) IsDEXAvailable(ctx context.Context) bool {
	if c.dexKeeper == nil {
		return true
	}
	for _, p := range c.dexKeeper.ListPools(ctx) {
		if p.Halted {
			return false
		}
	}
	return true
}

// CheckDependenciesForFarm returns ErrPoolHalted when the farm stakes the LP
// token of a halted pool.
func (c *CircuitBreakerCoordinator) CheckDependenciesForFarm(ctx context.Context, farmID uint64) error {
	if c.farmKeeper == nil || c.dexKeeper == nil {
		return nil
	}
	farm, err := c.farmKeeper.GetFarm(ctx, farmID)
	if err != nil {
		return err
	}
	poolID, ok := dextypes.ParseLPTokenID(farm.StakeToken)
	if !ok {
		return nil
	}
	pool, err := c.dexKeeper.GetPool(ctx, poolID)
	if err != nil {
		return err
	}
	if pool.Halted {
		return dextypes.ErrPoolHalted.Wrapf("farm %d stakes shares of pool %d: %s", farmID, poolID, pool.HaltReason)
	}
	return nil
}
