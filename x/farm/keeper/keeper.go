package keeper

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"cosmossdk.io/log"
	"cosmossdk.io/math"
	"github.com/google/uuid"

	"github.com/paw-chain/pawswap/pkg/audit"
	"github.com/paw-chain/pawswap/pkg/blockclock"
	dextypes "github.com/paw-chain/pawswap/x/dex/types"
	"github.com/paw-chain/pawswap/x/farm/types"
	"github.com/paw-chain/pawswap/x/shared/events"
)

// Keeper owns every farm and stake position.
//
// Locking mirrors the dex keeper: k.mu guards the farm table, each farm has its
// own mutex. A farm lock may be held while the vault takes a pool lock; the
// dex never calls back into the farm.
type Keeper struct {
	logger      log.Logger
	tokenKeeper types.TokenKeeper
	vault       types.StakeVault
	store       audit.Store
	emitter     events.Emitter
	clock       blockclock.Clock
	metrics     *FarmMetrics
	now         func() time.Time

	mu         sync.RWMutex
	params     types.Params
	farms      map[uint64]*farmEntry
	nextFarmID uint64
}

type farmEntry struct {
	mu        sync.Mutex
	farm      types.Farm
	positions map[string]types.FarmPosition
}

// NewKeeper creates a new farm Keeper instance
func NewKeeper(
	logger log.Logger,
	tokenKeeper types.TokenKeeper,
	vault types.StakeVault,
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
		vault:       vault,
		store:       store,
		emitter:     emitter,
		clock:       clock,
		metrics:     NewFarmMetrics(),
		now:         time.Now,
		params:      types.DefaultParams(),
		farms:       make(map[uint64]*farmEntry),
		nextFarmID:  1,
	}
}

// SetNowFunc overrides the wall clock used for timestamps.
func (k *Keeper) SetNowFunc(now func() time.Time) {
	k.now = now
}

// Logger returns a module-specific logger.
func (k *Keeper) Logger() log.Logger {
	return k.logger
}

// GetParams returns the current farm params.
func (k *Keeper) GetParams(_ context.Context) types.Params {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return k.params
}

// SetParams validates and stores params.
func (k *Keeper) SetParams(_ context.Context, params types.Params) error {
	if err := params.Validate(); err != nil {
		return err
	}
	k.mu.Lock()
	k.params = params
	k.mu.Unlock()
	return nil
}

func (k *Keeper) entry(farmID uint64) (*farmEntry, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	e, ok := k.farms[farmID]
	if !ok {
		return nil, types.ErrFarmNotFound.Wrapf("farm %d", farmID)
	}
	return e, nil
}

func (k *Keeper) entries() []*farmEntry {
	k.mu.RLock()
	ids := make([]uint64, 0, len(k.farms))
	for id := range k.farms {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := make([]*farmEntry, 0, len(ids))
	for _, id := range ids {
		out = append(out, k.farms[id])
	}
	k.mu.RUnlock()
	return out
}

func (e *farmEntry) snapshot() types.Farm {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.farm
}

func (e *farmEntry) setPosition(p types.FarmPosition) {
	if p.StakedAmount.IsZero() {
		delete(e.positions, p.UserID)
		return
	}
	e.positions[p.UserID] = p
}

func (k *Keeper) currentBlock() uint64 {
	if k.clock == nil {
		return 0
	}
	return k.clock.CurrentBlock()
}

// appendRecord persists tx. Nothing is committed when it fails.
func (k *Keeper) appendRecord(ctx context.Context, tx types.FarmTransaction) error {
	if k.store == nil {
		return nil
	}
	rec, err := audit.NewRecord(audit.KindFarm, string(tx.Action), tx.UserID, types.FarmEntityID(tx.FarmID), tx.BlockHeight, k.now(), tx)
	if err != nil {
		return err
	}
	rec.ID = tx.ID
	if err := k.store.Append(ctx, rec); err != nil {
		return fmt.Errorf("append farm record: %w", err)
	}
	return nil
}

func (k *Keeper) newTx(action types.FarmAction, farm types.Farm, userID string, amount math.Int, height uint64) types.FarmTransaction {
	return types.FarmTransaction{
		ID:                uuid.NewString(),
		Action:            action,
		FarmID:            farm.ID,
		UserID:            userID,
		Amount:            amount,
		Reward:            math.ZeroInt(),
		StakedAfter:       math.ZeroInt(),
		TotalStakedAfter:  farm.TotalStaked,
		AccRewardPerShare: farm.AccRewardPerShare,
		BlockHeight:       height,
		Timestamp:         k.now().UTC(),
	}
}

func validateUser(userID string) error {
	if userID == "" {
		return types.ErrInvalidUser.Wrap("user id is required")
	}
	if dextypes.IsReservedOwner(userID) {
		return types.ErrInvalidUser.Wrapf("%s is a reserved owner", userID)
	}
	return nil
}

func validateAmount(amount math.Int, name string) error {
	if amount.IsNil() || !amount.IsPositive() {
		return types.ErrInvalidAmount.Wrapf("%s must be positive", name)
	}
	return types.CheckAmountBound(name, amount)
}
