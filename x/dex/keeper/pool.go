package keeper

import (
	"context"
	"strconv"

	"cosmossdk.io/math"

	"github.com/paw-chain/pawswap/app/telemetry"
	"github.com/paw-chain/pawswap/x/dex/types"
	"github.com/paw-chain/pawswap/x/shared/events"
	tokentypes "github.com/paw-chain/pawswap/x/token/types"
)

// CreatePool creates the pool for an unordered token pair. Creating an
// existing pair returns the existing pool with created=false.
func (k *Keeper) CreatePool(ctx context.Context, tokenA, tokenB string, feeRateBps uint32) (pool types.Pool, created bool, err error) {
	ctx, span := telemetry.StartModuleSpan(ctx, types.ModuleName, "create_pool")
	defer func() { telemetry.EndSpan(span, err) }()

	if tokenA == tokenB {
		return types.Pool{}, false, types.ErrInvalidTokenPair.Wrap("cannot create pool with identical tokens")
	}
	tok0, err := k.tokenKeeper.GetToken(ctx, tokenA)
	if err != nil {
		return types.Pool{}, false, err
	}
	tok1, err := k.tokenKeeper.GetToken(ctx, tokenB)
	if err != nil {
		return types.Pool{}, false, err
	}
	if tok0.ID > tok1.ID {
		tok0, tok1 = tok1, tok0
	}

	k.mu.Lock()
	if id, ok := k.pairs[types.PairKey(tokenA, tokenB)]; ok {
		existing := k.pools[id]
		k.mu.Unlock()
		return existing.snapshot(), false, nil
	}
	defer k.mu.Unlock()

	if err := k.params.ValidateFee(feeRateBps); err != nil {
		return types.Pool{}, false, err
	}

	id := k.nextPoolID
	pool = types.NewPool(id, tok0.ID, tok1.ID, feeRateBps, k.now().UTC())

	lp, err := k.tokenKeeper.RegisterToken(ctx, lpToken(id, tok0, tok1))
	if err != nil {
		return types.Pool{}, false, err
	}
	for _, t := range []string{tok0.ID, tok1.ID, lp.ID} {
		if err := k.tokenKeeper.MarkReferenced(ctx, t); err != nil {
			return types.Pool{}, false, err
		}
	}

	k.pools[id] = &poolEntry{pool: pool, positions: make(map[string]math.Int)}
	k.pairs[types.PairKey(tok0.ID, tok1.ID)] = id
	k.nextPoolID++
	k.bumpVersion()

	k.metrics.PoolsTotal.Set(float64(len(k.pools)))
	k.logger.Info("pool created", "pool_id", id, "token0", pool.Token0, "token1", pool.Token1, "fee_bps", feeRateBps)
	k.emitter.Emit(events.NewEvent(types.ModuleName, types.EventTypePoolCreated, pool,
		types.AttributeKeyPoolID, strconv.FormatUint(id, 10),
	))
	return pool, true, nil
}

func lpToken(poolID uint64, tok0, tok1 tokentypes.Token) tokentypes.Token {
	return tokentypes.Token{
		ID:       types.LPTokenID(poolID),
		Symbol:   tok0.Symbol + "-" + tok1.Symbol + "-LP",
		Name:     tok0.Symbol + "/" + tok1.Symbol + " liquidity share",
		Decimals: (tok0.Decimals + tok1.Decimals) / 2,
	}
}

// GetPool returns a snapshot of a pool.
func (k *Keeper) GetPool(_ context.Context, poolID uint64) (types.Pool, error) {
	e, err := k.entry(poolID)
	if err != nil {
		return types.Pool{}, err
	}
	return e.snapshot(), nil
}

// GetPoolByTokens resolves a pair in either order.
func (k *Keeper) GetPoolByTokens(_ context.Context, tokenA, tokenB string) (types.Pool, error) {
	e, err := k.entryByPair(tokenA, tokenB)
	if err != nil {
		return types.Pool{}, err
	}
	return e.snapshot(), nil
}

// ListPools returns snapshots of all pools ordered by id.
func (k *Keeper) ListPools(_ context.Context) []types.Pool {
	entries := k.entries()
	out := make([]types.Pool, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.snapshot())
	}
	return out
}

// PoolTVL values both reserves at the registry reference prices.
func (k *Keeper) PoolTVL(ctx context.Context, pool types.Pool) (math.LegacyDec, error) {
	tok0, err := k.tokenKeeper.GetToken(ctx, pool.Token0)
	if err != nil {
		return math.LegacyDec{}, err
	}
	tok1, err := k.tokenKeeper.GetToken(ctx, pool.Token1)
	if err != nil {
		return math.LegacyDec{}, err
	}
	return tok0.Value(pool.Reserve0).Add(tok1.Value(pool.Reserve1)), nil
}

func (k *Keeper) recordPoolState(pool types.Pool) {
	id := strconv.FormatUint(pool.ID, 10)
	r0, _ := pool.Reserve0.BigInt().Float64()
	r1, _ := pool.Reserve1.BigInt().Float64()
	shares, _ := pool.TotalLpShares.BigInt().Float64()
	k.metrics.PoolReserves.WithLabelValues(id, pool.Token0).Set(r0)
	k.metrics.PoolReserves.WithLabelValues(id, pool.Token1).Set(r1)
	k.metrics.LPTokenSupply.WithLabelValues(id).Set(shares)
}
