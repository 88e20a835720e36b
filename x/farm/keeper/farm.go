package keeper

import (
	"context"
	"math/big"
	"strconv"

	"cosmossdk.io/math"

	"github.com/paw-chain/pawswap/app/telemetry"
	dextypes "github.com/paw-chain/pawswap/x/dex/types"
	"github.com/paw-chain/pawswap/x/farm/types"
	"github.com/paw-chain/pawswap/x/shared/events"
)

// CreateFarm registers a farm paying rewardPerBlock of rewardToken to
// stakeToken stakers from startBlock on, until budget is exhausted. The budget
// must be positive; FundFarm tops it up later.
func (k *Keeper) CreateFarm(ctx context.Context, stakeToken, rewardToken string, rewardPerBlock math.Int, startBlock uint64, budget math.Int) (farm types.Farm, err error) {
	ctx, span := telemetry.StartModuleSpan(ctx, types.ModuleName, "create_farm")
	defer func() {
		k.observe(types.ActionCreate, err)
		telemetry.EndSpan(span, err)
	}()

	if _, lp := dextypes.ParseLPTokenID(rewardToken); lp {
		return farm, types.ErrInvalidRewardToken.Wrapf("%s is an LP share token", rewardToken)
	}
	if _, err := k.tokenKeeper.GetToken(ctx, stakeToken); err != nil {
		return farm, err
	}
	if _, err := k.tokenKeeper.GetToken(ctx, rewardToken); err != nil {
		return farm, err
	}
	if err := validateAmount(budget, "reward budget"); err != nil {
		return farm, err
	}
	params := k.GetParams(ctx)
	if err := params.ValidateRate(rewardPerBlock); err != nil {
		return farm, err
	}

	height := k.currentBlock()
	if startBlock < height {
		startBlock = height
	}

	k.mu.Lock()
	defer k.mu.Unlock()

	if params.MaxFarms > 0 && uint32(len(k.farms)) >= params.MaxFarms {
		return farm, types.ErrTooManyFarms.Wrapf("%d farms", len(k.farms))
	}

	farm = types.NewFarm(k.nextFarmID, stakeToken, rewardToken, rewardPerBlock, budget, startBlock, k.now().UTC())
	if err := farm.Validate(); err != nil {
		return types.Farm{}, err
	}
	for _, t := range []string{stakeToken, rewardToken} {
		if err := k.tokenKeeper.MarkReferenced(ctx, t); err != nil {
			return types.Farm{}, err
		}
	}

	tx := k.newTx(types.ActionCreate, farm, "", budget, height)
	if err := k.appendRecord(ctx, tx); err != nil {
		return types.Farm{}, err
	}

	k.farms[farm.ID] = &farmEntry{farm: farm, positions: make(map[string]types.FarmPosition)}
	k.nextFarmID++
	k.metrics.FarmsTotal.Set(float64(len(k.farms)))
	k.logger.Info("farm created", "farm_id", farm.ID, "stake_token", stakeToken, "reward_token", rewardToken,
		"reward_per_block", rewardPerBlock.String(), "start_block", startBlock)
	k.emitter.Emit(events.NewEvent(types.ModuleName, types.EventTypeFarmCreated, farm,
		types.AttributeKeyFarmID, strconv.FormatUint(farm.ID, 10),
	))
	return farm, nil
}

// FundFarm adds amount to the farm's reward budget. Blocks that passed while
// the budget was exhausted are not paid retroactively.
func (k *Keeper) FundFarm(ctx context.Context, farmID uint64, amount math.Int) (tx types.FarmTransaction, err error) {
	ctx, span := telemetry.StartModuleSpan(ctx, types.ModuleName, "fund_farm")
	defer func() {
		k.observe(types.ActionFund, err)
		telemetry.EndSpan(span, err)
	}()

	if err := validateAmount(amount, "funding"); err != nil {
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
	allocated := farm.Accrue(height)
	budget, err := types.SafeAdd("reward budget", farm.RewardBudget, amount)
	if err != nil {
		return tx, err
	}
	farm.RewardBudget = budget

	tx = k.newTx(types.ActionFund, farm, "", amount, height)
	if err := k.appendRecord(ctx, tx); err != nil {
		return types.FarmTransaction{}, err
	}
	e.farm = farm
	k.afterFarmLocked(types.EventTypeFarmFunded, tx, farm, allocated)
	return tx, nil
}

// SetRewardPerBlock changes the emission rate. Rewards up to the current
// block accrue at the old rate.
func (k *Keeper) SetRewardPerBlock(ctx context.Context, farmID uint64, rate math.Int) (tx types.FarmTransaction, err error) {
	ctx, span := telemetry.StartModuleSpan(ctx, types.ModuleName, "set_reward_rate")
	defer func() {
		k.observe(types.ActionSetRate, err)
		telemetry.EndSpan(span, err)
	}()

	if err := k.GetParams(ctx).ValidateRate(rate); err != nil {
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
	allocated := farm.Accrue(height)
	farm.RewardPerBlock = rate

	tx = k.newTx(types.ActionSetRate, farm, "", rate, height)
	if err := k.appendRecord(ctx, tx); err != nil {
		return types.FarmTransaction{}, err
	}
	e.farm = farm
	k.afterFarmLocked(types.EventTypeRateChanged, tx, farm, allocated)
	return tx, nil
}

// GetFarm returns a snapshot of a farm as last accrued.
func (k *Keeper) GetFarm(_ context.Context, farmID uint64) (types.Farm, error) {
	e, err := k.entry(farmID)
	if err != nil {
		return types.Farm{}, err
	}
	return e.snapshot(), nil
}

// ListFarms returns snapshots of all farms ordered by id.
func (k *Keeper) ListFarms(_ context.Context) []types.Farm {
	entries := k.entries()
	out := make([]types.Farm, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.snapshot())
	}
	return out
}

// afterFarmLocked publishes a committed farm change. The caller holds e.mu.
func (k *Keeper) afterFarmLocked(eventType string, tx types.FarmTransaction, farm types.Farm, allocated math.Int) {
	id := strconv.FormatUint(farm.ID, 10)
	staked, _ := farm.TotalStaked.BigInt().Float64()
	acc, _ := new(big.Float).Quo(
		new(big.Float).SetInt(farm.AccRewardPerShare.BigInt()),
		new(big.Float).SetInt(types.Precision.BigInt()),
	).Float64()
	k.metrics.TotalStaked.WithLabelValues(id, farm.StakeToken).Set(staked)
	k.metrics.AccRewardPerShare.WithLabelValues(id).Set(acc)
	if allocated.IsPositive() {
		a, _ := allocated.BigInt().Float64()
		k.metrics.RewardsAllocated.WithLabelValues(id, farm.RewardToken).Add(a)
	}
	if tx.Reward.IsPositive() {
		r, _ := tx.Reward.BigInt().Float64()
		k.metrics.RewardsPaid.WithLabelValues(id, farm.RewardToken).Add(r)
	}

	k.emitter.Emit(events.NewEvent(types.ModuleName, eventType, tx,
		types.AttributeKeyTxID, tx.ID,
		types.AttributeKeyFarmID, id,
		types.AttributeKeyUser, tx.UserID,
		types.AttributeKeyAmount, tx.Amount.String(),
		types.AttributeKeyReward, tx.Reward.String(),
	))
}

func (k *Keeper) observe(action types.FarmAction, err error) {
	status := "success"
	if err != nil {
		status = "failed"
	}
	k.metrics.Operations.WithLabelValues(string(action), status).Inc()
}
