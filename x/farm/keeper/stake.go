package keeper

import (
	"context"
	"sort"

	"cosmossdk.io/math"

	"github.com/paw-chain/pawswap/app/telemetry"
	"github.com/paw-chain/pawswap/x/farm/types"
)

// Stake locks amount of the farm's stake token for userID. Reward owed before
// the call stays owed.
func (k *Keeper) Stake(ctx context.Context, farmID uint64, userID string, amount math.Int) (tx types.FarmTransaction, err error) {
	ctx, span := telemetry.StartModuleSpan(ctx, types.ModuleName, "stake")
	defer func() {
		k.observe(types.ActionStake, err)
		telemetry.EndSpan(span, err)
	}()

	if err := validateUser(userID); err != nil {
		return tx, err
	}
	if err := validateAmount(amount, "stake"); err != nil {
		return tx, err
	}
	e, err := k.entry(farmID)
	if err != nil {
		return tx, err
	}
	height := k.currentBlock()

	e.mu.Lock()
	defer e.mu.Unlock()

	farm := e.farm
	total, err := types.SafeAdd("total staked", farm.TotalStaked, amount)
	if err != nil {
		return tx, err
	}
	allocated := farm.Accrue(height)
	pos, ok := e.positions[userID]
	if !ok {
		pos = types.NewFarmPosition(farmID, userID)
	}
	pos.Stake(amount, farm.AccRewardPerShare)
	farm.TotalStaked = total

	if err := k.vault.Lock(ctx, farmID, farm.StakeToken, userID, amount); err != nil {
		return tx, err
	}
	tx = k.newTx(types.ActionStake, farm, userID, amount, height)
	tx.StakedAfter = pos.StakedAmount
	if err := k.appendRecord(ctx, tx); err != nil {
		k.undo(ctx, "stake", func() error { return k.vault.Release(ctx, farmID, farm.StakeToken, userID, amount) })
		return types.FarmTransaction{}, err
	}

	e.farm = farm
	e.setPosition(pos)
	k.afterFarmLocked(types.EventTypeStake, tx, farm, allocated)
	return tx, nil
}

// Unstake releases amount of userID's stake and pays out the pending reward.
func (k *Keeper) Unstake(ctx context.Context, farmID uint64, userID string, amount math.Int) (tx types.FarmTransaction, err error) {
	ctx, span := telemetry.StartModuleSpan(ctx, types.ModuleName, "unstake")
	defer func() {
		k.observe(types.ActionUnstake, err)
		telemetry.EndSpan(span, err)
	}()

	if err := validateUser(userID); err != nil {
		return tx, err
	}
	if err := validateAmount(amount, "unstake"); err != nil {
		return tx, err
	}
	e, err := k.entry(farmID)
	if err != nil {
		return tx, err
	}
	height := k.currentBlock()

	e.mu.Lock()
	defer e.mu.Unlock()

	pos, ok := e.positions[userID]
	if !ok {
		return tx, types.ErrPositionNotFound.Wrapf("user %s has no stake in farm %d", userID, farmID)
	}
	if amount.GT(pos.StakedAmount) {
		return tx, types.ErrInsufficientStake.Wrapf("requested %s, staked %s", amount, pos.StakedAmount)
	}

	farm := e.farm
	allocated := farm.Accrue(height)
	reward := pos.Settle(farm.AccRewardPerShare)
	pos.Unstake(amount, farm.AccRewardPerShare)
	farm.TotalStaked = farm.TotalStaked.Sub(amount)

	if err := k.vault.Release(ctx, farmID, farm.StakeToken, userID, amount); err != nil {
		return tx, err
	}
	tx = k.newTx(types.ActionUnstake, farm, userID, amount, height)
	tx.Reward = reward
	tx.StakedAfter = pos.StakedAmount
	if err := k.appendRecord(ctx, tx); err != nil {
		k.undo(ctx, "unstake", func() error { return k.vault.Lock(ctx, farmID, farm.StakeToken, userID, amount) })
		return types.FarmTransaction{}, err
	}

	e.farm = farm
	e.setPosition(pos)
	k.afterFarmLocked(types.EventTypeUnstake, tx, farm, allocated)
	return tx, nil
}

// Harvest pays out userID's whole-unit pending reward.
func (k *Keeper) Harvest(ctx context.Context, farmID uint64, userID string) (tx types.FarmTransaction, err error) {
	ctx, span := telemetry.StartModuleSpan(ctx, types.ModuleName, "harvest")
	defer func() {
		k.observe(types.ActionHarvest, err)
		telemetry.EndSpan(span, err)
	}()

	if err := validateUser(userID); err != nil {
		return tx, err
	}
	e, err := k.entry(farmID)
	if err != nil {
		return tx, err
	}
	height := k.currentBlock()

	e.mu.Lock()
	defer e.mu.Unlock()

	pos, ok := e.positions[userID]
	if !ok {
		return tx, types.ErrPositionNotFound.Wrapf("user %s has no stake in farm %d", userID, farmID)
	}
	farm := e.farm
	allocated := farm.Accrue(height)
	reward := pos.Settle(farm.AccRewardPerShare)
	if reward.IsZero() {
		return tx, types.ErrNothingToHarvest.Wrapf("farm %d user %s", farmID, userID)
	}

	tx = k.newTx(types.ActionHarvest, farm, userID, math.ZeroInt(), height)
	tx.Reward = reward
	tx.StakedAfter = pos.StakedAmount
	if err := k.appendRecord(ctx, tx); err != nil {
		return types.FarmTransaction{}, err
	}

	e.farm = farm
	e.setPosition(pos)
	k.afterFarmLocked(types.EventTypeHarvest, tx, farm, allocated)
	return tx, nil
}

// Compound harvests and restakes the reward in one step. The reward token must
// be the stake token.
func (k *Keeper) Compound(ctx context.Context, farmID uint64, userID string) (tx types.FarmTransaction, err error) {
	ctx, span := telemetry.StartModuleSpan(ctx, types.ModuleName, "compound")
	defer func() {
		k.observe(types.ActionCompound, err)
		telemetry.EndSpan(span, err)
	}()

	if err := validateUser(userID); err != nil {
		return tx, err
	}
	e, err := k.entry(farmID)
	if err != nil {
		return tx, err
	}
	height := k.currentBlock()

	e.mu.Lock()
	defer e.mu.Unlock()

	farm := e.farm
	if !farm.CanCompound() {
		return tx, types.ErrCompoundUnsupported.Wrapf("farm %d stakes %s and rewards %s", farmID, farm.StakeToken, farm.RewardToken)
	}
	pos, ok := e.positions[userID]
	if !ok {
		return tx, types.ErrPositionNotFound.Wrapf("user %s has no stake in farm %d", userID, farmID)
	}
	allocated := farm.Accrue(height)
	reward := pos.Settle(farm.AccRewardPerShare)
	if reward.IsZero() {
		return tx, types.ErrNothingToHarvest.Wrapf("farm %d user %s", farmID, userID)
	}
	total, err := types.SafeAdd("total staked", farm.TotalStaked, reward)
	if err != nil {
		return tx, err
	}
	pos.Stake(reward, farm.AccRewardPerShare)
	farm.TotalStaked = total

	rewards := types.RewardsOwner(farmID)
	if err := k.vault.Lock(ctx, farmID, farm.StakeToken, rewards, reward); err != nil {
		return tx, err
	}
	tx = k.newTx(types.ActionCompound, farm, userID, reward, height)
	tx.Reward = reward
	tx.StakedAfter = pos.StakedAmount
	if err := k.appendRecord(ctx, tx); err != nil {
		k.undo(ctx, "compound", func() error { return k.vault.Release(ctx, farmID, farm.StakeToken, rewards, reward) })
		return types.FarmTransaction{}, err
	}

	e.farm = farm
	e.setPosition(pos)
	k.afterFarmLocked(types.EventTypeCompound, tx, farm, allocated)
	return tx, nil
}

// PendingReward is the reward userID could harvest at the current block. No
// state is modified.
func (k *Keeper) PendingReward(_ context.Context, farmID uint64, userID string) (math.Int, error) {
	e, err := k.entry(farmID)
	if err != nil {
		return math.Int{}, err
	}
	height := k.currentBlock()

	e.mu.Lock()
	farm := e.farm
	pos, ok := e.positions[userID]
	e.mu.Unlock()

	if !ok {
		return math.Int{}, types.ErrPositionNotFound.Wrapf("user %s has no stake in farm %d", userID, farmID)
	}
	farm.Accrue(height)
	return pos.Pending(farm.AccRewardPerShare), nil
}

// GetPosition returns userID's stake in a farm.
func (k *Keeper) GetPosition(_ context.Context, farmID uint64, userID string) (types.FarmPosition, error) {
	e, err := k.entry(farmID)
	if err != nil {
		return types.FarmPosition{}, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	pos, ok := e.positions[userID]
	if !ok {
		return types.FarmPosition{}, types.ErrPositionNotFound.Wrapf("user %s has no stake in farm %d", userID, farmID)
	}
	return pos, nil
}

// ListPositions returns the positions of a farm ordered by user.
func (k *Keeper) ListPositions(_ context.Context, farmID uint64) ([]types.FarmPosition, error) {
	e, err := k.entry(farmID)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	out := make([]types.FarmPosition, 0, len(e.positions))
	for _, p := range e.positions {
		out = append(out, p)
	}
	e.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

// UserPositions returns every farm position of userID ordered by farm id.
func (k *Keeper) UserPositions(_ context.Context, userID string) []types.FarmPosition {
	var out []types.FarmPosition
	for _, e := range k.entries() {
		e.mu.Lock()
		if p, ok := e.positions[userID]; ok {
			out = append(out, p)
		}
		e.mu.Unlock()
	}
	return out
}

// undo reverts a vault movement after a failed audit write.
func (k *Keeper) undo(_ context.Context, op string, revert func() error) {
	if err := revert(); err != nil {
		k.logger.Error("vault rollback failed", "operation", op, "error", err)
	}
}
