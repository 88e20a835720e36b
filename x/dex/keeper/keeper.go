package keeper

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"cosmossdk.io/log"
	"cosmossdk.io/math"

	"github.com/paw-chain/pawswap/pkg/audit"
	"github.com/paw-chain/pawswap/pkg/blockclock"
	"github.com/paw-chain/pawswap/pkg/cache"
	"github.com/paw-chain/pawswap/x/dex/types"
	"github.com/paw-chain/pawswap/x/shared/events"
)

// Keeper owns every pool and liquidity position.
//
// Locking: k.mu guards the pool table and params and is held only for lookup
// and insert; no pool lock is ever acquired while holding it. Each pool has its
// own RWMutex guarding its reserves and positions. Callers holding several pool
// locks acquire them in ascending pool id order.
type Keeper struct {
	logger      log.Logger
	tokenKeeper types.TokenKeeper
	store       audit.Store
	emitter     events.Emitter
	clock       blockclock.Clock
	routeCache  cache.Cache
	metrics     *DEXMetrics
	now         func() time.Time

	mu         sync.RWMutex
	params     types.Params
	pools      map[uint64]*poolEntry
	pairs      map[string]uint64
	nextPoolID uint64

	// stateVersion changes on every committed pool mutation and keys the route cache.
	stateVersion atomic.Uint64
}

type poolEntry struct {
	mu        sync.RWMutex
	pool      types.Pool
	positions map[string]math.Int
}

// NewKeeper creates a new dex Keeper instance
func NewKeeper(
	logger log.Logger,
	tokenKeeper types.TokenKeeper,
	store audit.Store,
	clock blockclock.Clock,
	emitter events.Emitter,
) *Keeper {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	if emitter == nil {
		emitter = events.NopEmitter{}
	}
	return &Keeper{
		logger:      logger.With("module", "x/"+types.ModuleName),
		tokenKeeper: tokenKeeper,
		store:       store,
		emitter:     emitter,
		clock:       clock,
		metrics:     NewDEXMetrics(),
		now:         time.Now,
		params:      types.DefaultParams(),
		pools:       make(map[uint64]*poolEntry),
		pairs:       make(map[string]uint64),
		nextPoolID:  1,
	}
}

// SetRouteCache enables caching of route searches. Passing nil disables it.
func (k *Keeper) SetRouteCache(c cache.Cache) {
	k.routeCache = c
}

// SetNowFunc overrides the wall clock used for record timestamps.
func (k *Keeper) SetNowFunc(now func() time.Time) {
	k.now = now
}

// Logger returns a module-specific logger.
func (k *Keeper) Logger() log.Logger {
	return k.logger
}

// GetParams returns the current parameters.
func (k *Keeper) GetParams(_ context.Context) types.Params {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return k.params
}

// SetParams validates and replaces the parameters. Existing pools keep their fee.
func (k *Keeper) SetParams(_ context.Context, params types.Params) error {
	if err := params.Validate(); err != nil {
		return err
	}
	k.mu.Lock()
	defer k.mu.Unlock()
	k.params = params
	return nil
}

// StateVersion identifies the current state of all pools.
func (k *Keeper) StateVersion() uint64 {
	return k.stateVersion.Load()
}

func (k *Keeper) bumpVersion() {
	k.stateVersion.Add(1)
}

func (k *Keeper) entry(poolID uint64) (*poolEntry, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	e, ok := k.pools[poolID]
	if !ok {
		return nil, types.ErrPoolNotFound.Wrapf("pool %d", poolID)
	}
	return e, nil
}

func (k *Keeper) entryByPair(tokenA, tokenB string) (*poolEntry, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	id, ok := k.pairs[types.PairKey(tokenA, tokenB)]
	if !ok {
		return nil, types.ErrPairNotFound.Wrapf("%s/%s", tokenA, tokenB)
	}
	return k.pools[id], nil
}

// entries returns every pool entry ordered by id.
func (k *Keeper) entries() []*poolEntry {
	k.mu.RLock()
	ids := make([]uint64, 0, len(k.pools))
	for id := range k.pools {
		ids = append(ids, id)
	}
	out := make([]*poolEntry, 0, len(ids))
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		out = append(out, k.pools[id])
	}
	k.mu.RUnlock()
	return out
}

func (e *poolEntry) snapshot() types.Pool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.pool
}

func (e *poolEntry) position(userID string) math.Int {
	if shares, ok := e.positions[userID]; ok {
		return shares
	}
	return math.ZeroInt()
}

// setPosition stores shares, deleting the position at zero.
func (e *poolEntry) setPosition(userID string, shares math.Int) {
	if shares.IsZero() {
		delete(e.positions, userID)
		return
	}
	e.positions[userID] = shares
}

func validateAmount(amount math.Int, name string) error {
	if amount.IsNil() || !amount.IsPositive() {
		return types.ErrInvalidAmount.Wrapf("%s must be positive", name)
	}
	return types.CheckAmountBound(name, amount)
}

func validateUser(userID string) error {
	if userID == "" {
		return types.ErrInvalidUser.Wrap("user id is required")
	}
	return nil
}
