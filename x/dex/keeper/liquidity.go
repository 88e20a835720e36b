package keeper

import (
	"context"
	"sort"
	"strconv"

	"cosmossdk.io/math"

	"github.com/paw-chain/pawswap/app/telemetry"
	"github.com/paw-chain/pawswap/pkg/audit"
	"github.com/paw-chain/pawswap/x/dex/types"
	"github.com/paw-chain/pawswap/x/shared/events"
)

// AddLiquidity deposits into a pool and credits the minted shares to userID.
// Without autoAdjust the amounts must match the pool ratio within the
// configured tolerance.
func (k *Keeper) AddLiquidity(ctx context.Context, poolID uint64, userID string, amount0, amount1 math.Int, autoAdjust bool) (tx types.LiquidityTransaction, err error) {
	ctx, span := telemetry.StartModuleSpan(ctx, types.ModuleName, "add_liquidity")
	defer func() { telemetry.EndSpan(span, err) }()

	if err := validateOwner(userID); err != nil {
		return tx, err
	}
	if amount0.IsNil() {
		amount0 = math.ZeroInt()
	}
	if amount1.IsNil() {
		amount1 = math.ZeroInt()
	}
	if amount0.IsNegative() || amount1.IsNegative() || (amount0.IsZero() && amount1.IsZero()) {
		return tx, types.ErrInvalidAmount.Wrapf("invalid deposit %s/%s", amount0, amount1)
	}

	params := k.GetParams(ctx)
	e, err := k.entry(poolID)
	if err != nil {
		return tx, err
	}
	height := k.currentBlock()

	e.mu.Lock()
	defer e.mu.Unlock()

	if err := writable(e); err != nil {
		return tx, err
	}
	pool := e.pool
	res, err := pool.AddLiquidity(amount0, amount1, types.AddLiquidityOptions{
		AutoAdjust:       autoAdjust,
		ToleranceBps:     params.RatioToleranceBps,
		MinimumLiquidity: params.MinimumLiquidity,
	})
	if err != nil {
		return tx, k.escalate(e, "add_liquidity", err)
	}
	if err := pool.Validate(); err != nil {
		return tx, k.escalate(e, "add_liquidity", err)
	}

	position := e.position(userID).Add(res.Shares)
	tx = types.LiquidityTransaction{
		ID:            newTxID(),
		Action:        types.LiquidityAdd,
		PoolID:        poolID,
		UserID:        userID,
		Amount0:       res.Amount0,
		Amount1:       res.Amount1,
		LpShares:      res.Shares,
		Burned:        res.Burned,
		Reserve0After: pool.Reserve0,
		Reserve1After: pool.Reserve1,
		TotalLpShares: pool.TotalLpShares,
		PositionAfter: position,
		BlockHeight:   height,
		Timestamp:     k.now().UTC(),
	}
	if err := k.appendRecord(ctx, tx.ID, audit.KindLiquidity, string(tx.Action), userID, PoolEntityID(poolID), height, tx); err != nil {
		return types.LiquidityTransaction{}, err
	}

	e.pool = pool
	e.setPosition(userID, position)
	if res.Burned.IsPositive() {
		e.setPosition(types.MinimumLiquidityOwner, e.position(types.MinimumLiquidityOwner).Add(res.Burned))
	}
	k.afterLiquidityLocked(tx, pool)

	id := strconv.FormatUint(poolID, 10)
	a0, _ := res.Amount0.BigInt().Float64()
	a1, _ := res.Amount1.BigInt().Float64()
	k.metrics.LiquidityAdded.WithLabelValues(id, pool.Token0).Add(a0)
	k.metrics.LiquidityAdded.WithLabelValues(id, pool.Token1).Add(a1)
	return tx, nil
}

// RemoveLiquidity burns lpShares of userID's position and returns the
// proportional reserves. The outputs must reach min0 and min1.
func (k *Keeper) RemoveLiquidity(ctx context.Context, poolID uint64, userID string, lpShares, min0, min1 math.Int) (tx types.LiquidityTransaction, err error) {
	ctx, span := telemetry.StartModuleSpan(ctx, types.ModuleName, "remove_liquidity")
	defer func() { telemetry.EndSpan(span, err) }()

	if err := validateOwner(userID); err != nil {
		return tx, err
	}
	if err := validateAmount(lpShares, "lp shares"); err != nil {
		return tx, err
	}
	if min0.IsNil() {
		min0 = math.ZeroInt()
	}
	if min1.IsNil() {
		min1 = math.ZeroInt()
	}

	e, err := k.entry(poolID)
	if err != nil {
		return tx, err
	}
	height := k.currentBlock()

	e.mu.Lock()
	defer e.mu.Unlock()

	if err := writable(e); err != nil {
		return tx, err
	}
	held, ok := e.positions[userID]
	if !ok {
		return tx, types.ErrPositionNotFound.Wrapf("user %s has no position in pool %d", userID, poolID)
	}
	if lpShares.GT(held) {
		return tx, types.ErrInsufficientShares.Wrapf("requested %s, position holds %s", lpShares, held)
	}

	pool := e.pool
	out0, out1, err := pool.RemoveLiquidity(lpShares)
	if err != nil {
		return tx, k.escalate(e, "remove_liquidity", err)
	}
	if out0.LT(min0) || out1.LT(min1) {
		return tx, types.ErrSlippageExceeded.Wrapf("withdrawal %s/%s below minimum %s/%s", out0, out1, min0, min1)
	}
	if err := pool.Validate(); err != nil {
		return tx, k.escalate(e, "remove_liquidity", err)
	}

	position := held.Sub(lpShares)
	tx = types.LiquidityTransaction{
		ID:            newTxID(),
		Action:        types.LiquidityRemove,
		PoolID:        poolID,
		UserID:        userID,
		Amount0:       out0,
		Amount1:       out1,
		LpShares:      lpShares,
		Burned:        math.ZeroInt(),
		Reserve0After: pool.Reserve0,
		Reserve1After: pool.Reserve1,
		TotalLpShares: pool.TotalLpShares,
		PositionAfter: position,
		BlockHeight:   height,
		Timestamp:     k.now().UTC(),
	}
	if err := k.appendRecord(ctx, tx.ID, audit.KindLiquidity, string(tx.Action), userID, PoolEntityID(poolID), height, tx); err != nil {
		return types.LiquidityTransaction{}, err
	}

	e.pool = pool
	e.setPosition(userID, position)
	k.afterLiquidityLocked(tx, pool)

	id := strconv.FormatUint(poolID, 10)
	a0, _ := out0.BigInt().Float64()
	a1, _ := out1.BigInt().Float64()
	k.metrics.LiquidityRemoved.WithLabelValues(id, pool.Token0).Add(a0)
	k.metrics.LiquidityRemoved.WithLabelValues(id, pool.Token1).Add(a1)
	return tx, nil
}

// TransferShares moves LP shares between two owners without touching
// reserves. The farm stake vault uses it to escrow staked shares.
func (k *Keeper) TransferShares(ctx context.Context, poolID uint64, from, to string, amount math.Int) (tx types.LiquidityTransaction, err error) {
	ctx, span := telemetry.StartModuleSpan(ctx, types.ModuleName, "transfer_shares")
	defer func() { telemetry.EndSpan(span, err) }()

	if from == "" || to == "" || from == to {
		return tx, types.ErrInvalidUser.Wrapf("invalid transfer %q -> %q", from, to)
	}
	if from == types.MinimumLiquidityOwner || to == types.MinimumLiquidityOwner {
		return tx, types.ErrInvalidUser.Wrap("minimum liquidity shares cannot move")
	}
	if err := validateAmount(amount, "shares"); err != nil {
		return tx, err
	}

	e, err := k.entry(poolID)
	if err != nil {
		return tx, err
	}
	height := k.currentBlock()

	e.mu.Lock()
	defer e.mu.Unlock()

	if err := writable(e); err != nil {
		return tx, err
	}
	held, ok := e.positions[from]
	if !ok {
		return tx, types.ErrPositionNotFound.Wrapf("user %s has no position in pool %d", from, poolID)
	}
	if amount.GT(held) {
		return tx, types.ErrInsufficientShares.Wrapf("requested %s, position holds %s", amount, held)
	}

	fromAfter := held.Sub(amount)
	toAfter := e.position(to).Add(amount)
	tx = types.LiquidityTransaction{
		ID:            newTxID(),
		Action:        types.LiquidityTransfer,
		PoolID:        poolID,
		UserID:        from,
		Counterparty:  to,
		Amount0:       math.ZeroInt(),
		Amount1:       math.ZeroInt(),
		LpShares:      amount,
		Burned:        math.ZeroInt(),
		Reserve0After: e.pool.Reserve0,
		Reserve1After: e.pool.Reserve1,
		TotalLpShares: e.pool.TotalLpShares,
		PositionAfter: fromAfter,
		BlockHeight:   height,
		Timestamp:     k.now().UTC(),
	}
	if err := k.appendRecord(ctx, tx.ID, audit.KindLiquidity, string(tx.Action), from, PoolEntityID(poolID), height, tx); err != nil {
		return types.LiquidityTransaction{}, err
	}

	e.setPosition(from, fromAfter)
	e.setPosition(to, toAfter)
	k.emitter.Emit(events.NewEvent(types.ModuleName, types.EventTypeTransferShares, tx,
		types.AttributeKeyTxID, tx.ID,
		types.AttributeKeyPoolID, strconv.FormatUint(poolID, 10),
		types.AttributeKeyUser, from,
		types.AttributeKeyShares, amount.String(),
	))
	return tx, nil
}

func (k *Keeper) afterLiquidityLocked(tx types.LiquidityTransaction, pool types.Pool) {
	k.bumpVersion()
	k.recordPoolState(pool)

	eventType := types.EventTypeAddLiquidity
	if tx.Action == types.LiquidityRemove {
		eventType = types.EventTypeRemoveLiquidity
	}
	k.emitter.Emit(events.NewEvent(types.ModuleName, eventType, tx,
		types.AttributeKeyTxID, tx.ID,
		types.AttributeKeyPoolID, strconv.FormatUint(tx.PoolID, 10),
		types.AttributeKeyUser, tx.UserID,
		types.AttributeKeyShares, tx.LpShares.String(),
	))
}

// GetPosition returns userID's position in a pool.
func (k *Keeper) GetPosition(_ context.Context, poolID uint64, userID string) (types.LiquidityPosition, error) {
	e, err := k.entry(poolID)
	if err != nil {
		return types.LiquidityPosition{}, err
	}
	e.mu.RLock()
	defer e.mu.RUnlock()

	shares, ok := e.positions[userID]
	if !ok {
		return types.LiquidityPosition{}, types.ErrPositionNotFound.Wrapf("user %s has no position in pool %d", userID, poolID)
	}
	return types.LiquidityPosition{PoolID: poolID, UserID: userID, LpShares: shares}, nil
}

// GetShares returns userID's shares, zero when there is no position.
func (k *Keeper) GetShares(_ context.Context, poolID uint64, userID string) (math.Int, error) {
	e, err := k.entry(poolID)
	if err != nil {
		return math.ZeroInt(), err
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.position(userID), nil
}

// ListPositions returns all positions of a pool ordered by user.
func (k *Keeper) ListPositions(_ context.Context, poolID uint64) ([]types.LiquidityPosition, error) {
	e, err := k.entry(poolID)
	if err != nil {
		return nil, err
	}
	e.mu.RLock()
	out := make([]types.LiquidityPosition, 0, len(e.positions))
	for user, shares := range e.positions {
		out = append(out, types.LiquidityPosition{PoolID: poolID, UserID: user, LpShares: shares})
	}
	e.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

// UserPositions returns userID's positions across all pools.
func (k *Keeper) UserPositions(_ context.Context, userID string) []types.LiquidityPosition {
	var out []types.LiquidityPosition
	for _, e := range k.entries() {
		e.mu.RLock()
		if shares, ok := e.positions[userID]; ok {
			out = append(out, types.LiquidityPosition{PoolID: e.pool.ID, UserID: userID, LpShares: shares})
		}
		e.mu.RUnlock()
	}
	return out
}

// validateOwner rejects empty and module-reserved owners for user-initiated
// liquidity operations.
func validateOwner(userID string) error {
	if err := validateUser(userID); err != nil {
		return err
	}
	if types.IsReservedOwner(userID) {
		return types.ErrInvalidUser.Wrapf("%s is a reserved owner", userID)
	}
	return nil
}
