package keeper

import (
	"context"
	"math/big"
	"strconv"
	"time"

	"cosmossdk.io/errors"
	"cosmossdk.io/math"

	"github.com/paw-chain/pawswap/app/telemetry"
	"github.com/paw-chain/pawswap/pkg/audit"
	"github.com/paw-chain/pawswap/x/dex/types"
	"github.com/paw-chain/pawswap/x/shared/events"
)

// GetQuote quotes selling amountIn of tokenIn on the direct pool of the pair.
// It never mutates state.
func (k *Keeper) GetQuote(ctx context.Context, tokenIn, tokenOut string, amountIn math.Int) (types.Quote, error) {
	if err := validateAmount(amountIn, "amount in"); err != nil {
		return types.Quote{}, err
	}
	if tokenIn == tokenOut {
		return types.Quote{}, types.ErrInvalidTokenPair.Wrap("cannot swap identical tokens")
	}
	e, err := k.entryByPair(tokenIn, tokenOut)
	if err != nil {
		return types.Quote{}, err
	}
	pool := e.snapshot()
	zeroForOne, err := pool.Direction(tokenIn, tokenOut)
	if err != nil {
		return types.Quote{}, err
	}
	amountOut, err := pool.QuoteSwapExactIn(amountIn, zeroForOne)
	if err != nil {
		return types.Quote{}, err
	}
	return k.buildQuote(ctx, pool, zeroForOne, amountIn, amountOut)
}

// GetQuoteExactOut quotes the input required to buy amountOut of tokenOut.
func (k *Keeper) GetQuoteExactOut(ctx context.Context, tokenIn, tokenOut string, amountOut math.Int) (types.Quote, error) {
	if err := validateAmount(amountOut, "amount out"); err != nil {
		return types.Quote{}, err
	}
	if tokenIn == tokenOut {
		return types.Quote{}, types.ErrInvalidTokenPair.Wrap("cannot swap identical tokens")
	}
	e, err := k.entryByPair(tokenIn, tokenOut)
	if err != nil {
		return types.Quote{}, err
	}
	pool := e.snapshot()
	zeroForOne, err := pool.Direction(tokenIn, tokenOut)
	if err != nil {
		return types.Quote{}, err
	}
	amountIn, err := pool.QuoteSwapExactOut(amountOut, zeroForOne)
	if err != nil {
		return types.Quote{}, err
	}
	return k.buildQuote(ctx, pool, zeroForOne, amountIn, amountOut)
}

// buildQuote describes a single-hop trade on the pre-trade pool state.
func (k *Keeper) buildQuote(ctx context.Context, pool types.Pool, zeroForOne bool, amountIn, amountOut math.Int) (types.Quote, error) {
	hop := hopFor(pool, zeroForOne)
	scale, err := k.scaleFor(ctx, hop.TokenIn, hop.TokenOut)
	if err != nil {
		return types.Quote{}, err
	}

	reserveIn, reserveOut := pool.Reserves(zeroForOne)
	spot, err := scale.price(reserveOut.BigInt(), reserveIn.BigInt())
	if err != nil {
		return types.Quote{}, err
	}
	effective, err := scale.price(amountOut.BigInt(), amountIn.BigInt())
	if err != nil {
		return types.Quote{}, err
	}
	hq := types.HopQuote{
		Hop:       hop,
		AmountIn:  amountIn,
		AmountOut: amountOut,
		Fee:       pool.FeeAmount(amountIn),
	}
	hq.Reserve0After, hq.Reserve1After = reservesAfter(zeroForOne, reserveIn.Add(amountIn), reserveOut.Sub(amountOut))

	return types.Quote{
		TokenIn:        hop.TokenIn,
		TokenOut:       hop.TokenOut,
		AmountIn:       amountIn,
		AmountOut:      amountOut,
		Fee:            hq.Fee,
		FeeRateBps:     pool.FeeRateBps,
		SpotPrice:      spot,
		EffectivePrice: effective,
		PriceImpact:    pool.PriceImpact(amountIn, amountOut, zeroForOne),
		Route:          types.Route{Hops: []types.Hop{hop}},
		Hops:           []types.HopQuote{hq},
	}, nil
}

// ExecuteSwap sells exactly amountIn of tokenIn. The output is re-quoted under
// the pool lock and must reach minAmountOut.
func (k *Keeper) ExecuteSwap(ctx context.Context, tokenIn, tokenOut string, amountIn, minAmountOut math.Int, userID string) (tx types.SwapTransaction, err error) {
	ctx, span := telemetry.StartModuleSpan(ctx, types.ModuleName, "swap")
	start := time.Now()
	defer func() {
		k.observeSwap(types.SwapExactIn, start, err)
		telemetry.EndSpan(span, err)
	}()

	if err := validateUser(userID); err != nil {
		return tx, err
	}
	if err := validateAmount(amountIn, "amount in"); err != nil {
		return tx, err
	}
	if minAmountOut.IsNil() {
		minAmountOut = math.ZeroInt()
	}
	if minAmountOut.IsNegative() {
		return tx, types.ErrInvalidAmount.Wrap("min amount out must not be negative")
	}
	if tokenIn == tokenOut {
		return tx, types.ErrInvalidTokenPair.Wrap("cannot swap identical tokens")
	}

	e, err := k.entryByPair(tokenIn, tokenOut)
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
	zeroForOne, err := pool.Direction(tokenIn, tokenOut)
	if err != nil {
		return tx, err
	}
	amountOut, err := pool.QuoteSwapExactIn(amountIn, zeroForOne)
	if err != nil {
		return tx, err
	}
	if amountOut.LT(minAmountOut) {
		return tx, types.ErrSlippageExceeded.Wrapf("amount out %s below minimum %s", amountOut, minAmountOut)
	}
	if !amountOut.IsPositive() {
		return tx, types.ErrInvalidAmount.Wrapf("amount in %s too small to buy any %s", amountIn, tokenOut)
	}

	hop, err := k.applyHop(e, &pool, zeroForOne, amountIn, amountOut)
	if err != nil {
		return tx, err
	}
	tx = k.newSwapTx(types.SwapExactIn, userID, height, hop)
	if err := k.appendRecord(ctx, tx.ID, audit.KindSwap, string(tx.Kind), userID, PoolEntityID(pool.ID), height, tx); err != nil {
		return types.SwapTransaction{}, err
	}

	e.pool = pool
	k.afterSwapLocked(tx, pool)
	return tx, nil
}

// ExecuteSwapExactOut buys exactly amountOut of tokenOut paying at most maxAmountIn.
func (k *Keeper) ExecuteSwapExactOut(ctx context.Context, tokenIn, tokenOut string, amountOut, maxAmountIn math.Int, userID string) (tx types.SwapTransaction, err error) {
	ctx, span := telemetry.StartModuleSpan(ctx, types.ModuleName, "swap_exact_out")
	start := time.Now()
	defer func() {
		k.observeSwap(types.SwapExactOut, start, err)
		telemetry.EndSpan(span, err)
	}()

	if err := validateUser(userID); err != nil {
		return tx, err
	}
	if err := validateAmount(amountOut, "amount out"); err != nil {
		return tx, err
	}
	if err := validateAmount(maxAmountIn, "max amount in"); err != nil {
		return tx, err
	}
	if tokenIn == tokenOut {
		return tx, types.ErrInvalidTokenPair.Wrap("cannot swap identical tokens")
	}

	e, err := k.entryByPair(tokenIn, tokenOut)
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
	zeroForOne, err := pool.Direction(tokenIn, tokenOut)
	if err != nil {
		return tx, err
	}
	amountIn, err := pool.QuoteSwapExactOut(amountOut, zeroForOne)
	if err != nil {
		return tx, err
	}
	if amountIn.GT(maxAmountIn) {
		return tx, types.ErrSlippageExceeded.Wrapf("amount in %s above maximum %s", amountIn, maxAmountIn)
	}

	hop, err := k.applyHop(e, &pool, zeroForOne, amountIn, amountOut)
	if err != nil {
		return tx, err
	}
	tx = k.newSwapTx(types.SwapExactOut, userID, height, hop)
	if err := k.appendRecord(ctx, tx.ID, audit.KindSwap, string(tx.Kind), userID, PoolEntityID(pool.ID), height, tx); err != nil {
		return types.SwapTransaction{}, err
	}

	e.pool = pool
	k.afterSwapLocked(tx, pool)
	return tx, nil
}

// applyHop applies one trade to the working copy of e's pool. An invariant
// violation halts the committed pool. The caller holds e.mu.
func (k *Keeper) applyHop(e *poolEntry, pool *types.Pool, zeroForOne bool, amountIn, amountOut math.Int) (types.HopQuote, error) {
	if err := pool.ApplySwap(amountIn, amountOut, zeroForOne); err != nil {
		return types.HopQuote{}, k.escalate(e, "swap", err)
	}
	return types.HopQuote{
		Hop:           hopFor(*pool, zeroForOne),
		AmountIn:      amountIn,
		AmountOut:     amountOut,
		Fee:           pool.FeeAmount(amountIn),
		Reserve0After: pool.Reserve0,
		Reserve1After: pool.Reserve1,
	}, nil
}

func (k *Keeper) newSwapTx(kind types.SwapKind, userID string, height uint64, hops ...types.HopQuote) types.SwapTransaction {
	first, last := hops[0], hops[len(hops)-1]
	return types.SwapTransaction{
		ID:          newTxID(),
		Kind:        kind,
		UserID:      userID,
		TokenIn:     first.TokenIn,
		TokenOut:    last.TokenOut,
		AmountIn:    first.AmountIn,
		AmountOut:   last.AmountOut,
		Fee:         first.Fee,
		Hops:        hops,
		BlockHeight: height,
		Timestamp:   k.now().UTC(),
	}
}

// afterSwapLocked publishes a committed swap.
func (k *Keeper) afterSwapLocked(tx types.SwapTransaction, pools ...types.Pool) {
	k.bumpVersion()
	for _, p := range pools {
		k.recordPoolState(p)
	}
	for _, h := range tx.Hops {
		id := strconv.FormatUint(h.PoolID, 10)
		in, _ := h.AmountIn.BigInt().Float64()
		fee, _ := h.Fee.BigInt().Float64()
		k.metrics.SwapVolume.WithLabelValues(id, h.TokenIn).Add(in)
		k.metrics.SwapFeesCollected.WithLabelValues(id, h.TokenIn).Add(fee)
	}
	k.emitter.Emit(events.NewEvent(types.ModuleName, types.EventTypeSwap, tx,
		types.AttributeKeyTxID, tx.ID,
		types.AttributeKeyUser, tx.UserID,
		types.AttributeKeyTokenIn, tx.TokenIn,
		types.AttributeKeyTokenOut, tx.TokenOut,
		types.AttributeKeyAmountIn, tx.AmountIn.String(),
		types.AttributeKeyAmountOut, tx.AmountOut.String(),
	))
}

func (k *Keeper) observeSwap(kind types.SwapKind, start time.Time, err error) {
	status := "success"
	switch {
	case err == nil:
		k.metrics.SwapLatency.Observe(time.Since(start).Seconds())
	case errors.IsOf(err, types.ErrSlippageExceeded):
		status = "slippage"
		k.metrics.SlippageRejects.WithLabelValues(string(kind)).Inc()
	default:
		status = "failed"
	}
	k.metrics.SwapsTotal.WithLabelValues(string(kind), status).Inc()
}

// scaleFor returns the decimal scales of a trading pair.
func (k *Keeper) scaleFor(ctx context.Context, tokenIn, tokenOut string) (priceScale, error) {
	in, err := k.tokenKeeper.GetToken(ctx, tokenIn)
	if err != nil {
		return priceScale{}, err
	}
	out, err := k.tokenKeeper.GetToken(ctx, tokenOut)
	if err != nil {
		return priceScale{}, err
	}
	return priceScale{in: in.Scale().BigInt(), out: out.Scale().BigInt()}, nil
}

func hopFor(pool types.Pool, zeroForOne bool) types.Hop {
	hop := types.Hop{PoolID: pool.ID, TokenIn: pool.Token1, TokenOut: pool.Token0, FeeRateBps: pool.FeeRateBps}
	if zeroForOne {
		hop.TokenIn, hop.TokenOut = pool.Token0, pool.Token1
	}
	return hop
}

func reservesAfter(zeroForOne bool, reserveIn, reserveOut math.Int) (math.Int, math.Int) {
	if zeroForOne {
		return reserveIn, reserveOut
	}
	return reserveOut, reserveIn
}

// priceScale converts base-unit ratios into whole-token prices.
type priceScale struct {
	in, out *big.Int
}

// price is (num/den) * 10^decimalsIn / 10^decimalsOut, where num is an amount
// of the output token and den an amount of the input token.
func (s priceScale) price(num, den *big.Int) (math.LegacyDec, error) {
	return types.Ratio(new(big.Int).Mul(num, s.in), new(big.Int).Mul(den, s.out))
}
