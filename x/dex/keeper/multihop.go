package keeper

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"sort"
	"time"

	"cosmossdk.io/math"

	"github.com/paw-chain/pawswap/app/telemetry"
	"github.com/paw-chain/pawswap/pkg/audit"
	"github.com/paw-chain/pawswap/x/dex/types"
)

// MaxRouteCandidates bounds the number of paths evaluated per search.
const MaxRouteCandidates = 256

// tokenGraph is the pool adjacency used for route search.
type tokenGraph struct {
	edges map[string][]poolEdge
	pools map[uint64]types.Pool
}

type poolEdge struct {
	poolID   uint64
	tokenOut string
}

// buildTokenGraph snapshots every tradable pool independently. No pool lock is
// held across pools; execution re-validates each hop.
func (k *Keeper) buildTokenGraph() *tokenGraph {
	g := &tokenGraph{
		edges: make(map[string][]poolEdge),
		pools: make(map[uint64]types.Pool),
	}
	for _, e := range k.entries() {
		p := e.snapshot()
		if p.Halted || p.IsEmpty() {
			continue
		}
		g.pools[p.ID] = p
		g.edges[p.Token0] = append(g.edges[p.Token0], poolEdge{poolID: p.ID, tokenOut: p.Token1})
		g.edges[p.Token1] = append(g.edges[p.Token1], poolEdge{poolID: p.ID, tokenOut: p.Token0})
	}
	return g
}

// FindBestRoute searches every path of at most MaxHops pools from tokenIn to
// tokenOut and returns the quote of the path with the highest output. Ties go
// to the lowest cumulative fee, then fewer hops, then lower pool ids.
func (k *Keeper) FindBestRoute(ctx context.Context, tokenIn, tokenOut string, amountIn math.Int) (q types.Quote, err error) {
	ctx, span := telemetry.StartModuleSpan(ctx, types.ModuleName, "find_route")
	defer func() {
		result := "found"
		if err != nil {
			result = "none"
		}
		k.metrics.RouteSearches.WithLabelValues(result).Inc()
		telemetry.EndSpan(span, err)
	}()

	if err := validateAmount(amountIn, "amount in"); err != nil {
		return q, err
	}
	if tokenIn == "" || tokenOut == "" || tokenIn == tokenOut {
		return q, types.ErrInvalidTokenPair.Wrapf("cannot route %q to %q", tokenIn, tokenOut)
	}

	maxHops := k.GetParams(ctx).MaxHops
	version := k.StateVersion()
	cacheKey := fmt.Sprintf("route:%d:%d:%s:%s:%s", version, maxHops, tokenIn, tokenOut, amountIn)

	g := k.buildTokenGraph()
	if route, ok := k.cachedRoute(ctx, cacheKey); ok {
		if q, err := k.quoteRoute(ctx, g.pools, route, amountIn); err == nil {
			return q, nil
		}
	}

	candidates := findRoutesWithBFS(g, tokenIn, tokenOut, maxHops)
	if len(candidates) == 0 {
		return q, types.ErrNoRoute.Wrapf("no route from %s to %s within %d hops", tokenIn, tokenOut, maxHops)
	}

	var (
		best  types.Quote
		found bool
	)
	for _, route := range candidates {
		candidate, err := k.quoteRoute(ctx, g.pools, route, amountIn)
		if err != nil || !candidate.AmountOut.IsPositive() {
			continue
		}
		if !found || betterRoute(candidate, best) {
			best, found = candidate, true
		}
	}
	if !found {
		return q, types.ErrNoRoute.Wrapf("no route from %s to %s yields output for %s", tokenIn, tokenOut, amountIn)
	}

	k.storeRoute(ctx, cacheKey, best.Route)
	k.metrics.RouteHops.Observe(float64(len(best.Route.Hops)))
	return best, nil
}

// betterRoute orders candidate quotes.
func betterRoute(a, b types.Quote) bool {
	if c := a.AmountOut.BigInt().Cmp(b.AmountOut.BigInt()); c != 0 {
		return c > 0
	}
	if fa, fb := a.Route.TotalFeeBps(), b.Route.TotalFeeBps(); fa != fb {
		return fa < fb
	}
	if la, lb := len(a.Route.Hops), len(b.Route.Hops); la != lb {
		return la < lb
	}
	ia, ib := a.Route.PoolIDs(), b.Route.PoolIDs()
	for i := range ia {
		if ia[i] != ib[i] {
			return ia[i] < ib[i]
		}
	}
	return false
}

// findRoutesWithBFS enumerates simple paths up to maxHops, shorter first.
func findRoutesWithBFS(g *tokenGraph, tokenIn, tokenOut string, maxHops int) []types.Route {
	type node struct {
		token string
		hops  []types.Hop
	}

	var routes []types.Route
	queue := []node{{token: tokenIn}}

	for len(queue) > 0 && len(routes) < MaxRouteCandidates {
		current := queue[0]
		queue = queue[1:]

		if len(current.hops) >= maxHops {
			continue
		}

		visited := map[string]bool{tokenIn: true}
		for _, h := range current.hops {
			visited[h.TokenOut] = true
		}

		edges := g.edges[current.token]
		sort.Slice(edges, func(i, j int) bool { return edges[i].poolID < edges[j].poolID })
		for _, edge := range edges {
			if visited[edge.tokenOut] {
				continue
			}
			hops := make([]types.Hop, len(current.hops)+1)
			copy(hops, current.hops)
			hops[len(current.hops)] = types.Hop{
				PoolID:     edge.poolID,
				TokenIn:    current.token,
				TokenOut:   edge.tokenOut,
				FeeRateBps: g.pools[edge.poolID].FeeRateBps,
			}

			if edge.tokenOut == tokenOut {
				routes = append(routes, types.Route{Hops: hops})
				if len(routes) >= MaxRouteCandidates {
					break
				}
				continue
			}
			queue = append(queue, node{token: edge.tokenOut, hops: hops})
		}
	}
	return routes
}

// quoteRoute simulates a route on pool snapshots.
func (k *Keeper) quoteRoute(ctx context.Context, pools map[uint64]types.Pool, route types.Route, amountIn math.Int) (types.Quote, error) {
	if err := route.ValidateBasic(k.GetParams(ctx).MaxHops); err != nil {
		return types.Quote{}, err
	}
	hops, err := simulateHops(pools, route, amountIn)
	if err != nil {
		return types.Quote{}, err
	}
	amountOut := hops[len(hops)-1].AmountOut

	scale, err := k.scaleFor(ctx, route.TokenIn(), route.TokenOut())
	if err != nil {
		return types.Quote{}, err
	}

	// spot is the product of the hop spot prices. ideal is the output at those
	// prices net of fees, used for price impact. Both stay exact fractions.
	spotNum, spotDen := big.NewInt(1), big.NewInt(1)
	idealNum, idealDen := new(big.Int).Set(amountIn.BigInt()), big.NewInt(1)
	var feeBps uint32
	for _, h := range route.Hops {
		p := pools[h.PoolID]
		reserveIn, reserveOut := p.Reserves(h.TokenIn == p.Token0)
		spotNum.Mul(spotNum, reserveOut.BigInt())
		spotDen.Mul(spotDen, reserveIn.BigInt())
		idealNum.Mul(idealNum, reserveOut.BigInt())
		idealNum.Mul(idealNum, big.NewInt(int64(types.BpsDenominator-p.FeeRateBps)))
		idealDen.Mul(idealDen, reserveIn.BigInt())
		idealDen.Mul(idealDen, big.NewInt(types.BpsDenominator))
		feeBps += p.FeeRateBps
	}
	spot, err := scale.price(spotNum, spotDen)
	if err != nil {
		return types.Quote{}, err
	}
	effective, err := scale.price(amountOut.BigInt(), amountIn.BigInt())
	if err != nil {
		return types.Quote{}, err
	}
	impact := math.LegacyZeroDec()
	if idealNum.Sign() > 0 {
		filled, err := types.Ratio(new(big.Int).Mul(amountOut.BigInt(), idealDen), idealNum)
		if err != nil {
			return types.Quote{}, err
		}
		if impact = math.LegacyOneDec().Sub(filled); impact.IsNegative() {
			impact = math.LegacyZeroDec()
		}
	}

	return types.Quote{
		TokenIn:        route.TokenIn(),
		TokenOut:       route.TokenOut(),
		AmountIn:       amountIn,
		AmountOut:      amountOut,
		Fee:            hops[0].Fee,
		FeeRateBps:     feeBps,
		SpotPrice:      spot,
		EffectivePrice: effective,
		PriceImpact:    impact,
		Route:          route,
		Hops:           hops,
	}, nil
}

// simulateHops chains exact-in quotes through copies of the pools. The input
// map is not modified.
func simulateHops(pools map[uint64]types.Pool, route types.Route, amountIn math.Int) ([]types.HopQuote, error) {
	out := make([]types.HopQuote, 0, len(route.Hops))
	working := make(map[uint64]types.Pool, len(route.Hops))
	amount := amountIn
	for i, h := range route.Hops {
		p, ok := working[h.PoolID]
		if !ok {
			p, ok = pools[h.PoolID]
		}
		if !ok {
			return nil, types.ErrPoolNotFound.Wrapf("hop %d pool %d", i, h.PoolID)
		}
		zeroForOne, err := p.Direction(h.TokenIn, h.TokenOut)
		if err != nil {
			return nil, err
		}
		amountOut, err := p.QuoteSwapExactIn(amount, zeroForOne)
		if err != nil {
			return nil, err
		}
		if !amountOut.IsPositive() {
			return nil, types.ErrInvalidAmount.Wrapf("hop %d yields no output", i)
		}
		if err := p.ApplySwap(amount, amountOut, zeroForOne); err != nil {
			return nil, err
		}
		working[h.PoolID] = p
		out = append(out, types.HopQuote{
			Hop:           hopFor(p, zeroForOne),
			AmountIn:      amount,
			AmountOut:     amountOut,
			Fee:           p.FeeAmount(amount),
			Reserve0After: p.Reserve0,
			Reserve1After: p.Reserve1,
		})
		amount = amountOut
	}
	return out, nil
}

// ExecuteRouteSwap executes a route atomically. The route's pools are locked
// in ascending id order, every hop is re-quoted on current state, and either
// all hops commit or none do.
func (k *Keeper) ExecuteRouteSwap(ctx context.Context, route types.Route, amountIn, minAmountOut math.Int, userID string) (tx types.SwapTransaction, err error) {
	ctx, span := telemetry.StartModuleSpan(ctx, types.ModuleName, "route_swap")
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
	if err := route.ValidateBasic(k.GetParams(ctx).MaxHops); err != nil {
		return tx, err
	}

	ids := route.PoolIDs()
	sorted := append([]uint64(nil), ids...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	locked := make(map[uint64]*poolEntry, len(sorted))
	for _, id := range sorted {
		e, err := k.entry(id)
		if err != nil {
			return tx, err
		}
		locked[id] = e
	}
	for _, id := range sorted {
		locked[id].mu.Lock()
	}
	defer func() {
		for i := len(sorted) - 1; i >= 0; i-- {
			locked[sorted[i]].mu.Unlock()
		}
	}()

	height := k.currentBlock()
	working := make(map[uint64]types.Pool, len(locked))
	for id, e := range locked {
		if err := writable(e); err != nil {
			return tx, err
		}
		working[id] = e.pool
	}

	hops := make([]types.HopQuote, 0, len(route.Hops))
	amount := amountIn
	for i, h := range route.Hops {
		p := working[h.PoolID]
		zeroForOne, err := p.Direction(h.TokenIn, h.TokenOut)
		if err != nil {
			return tx, types.ErrInvalidRoute.Wrapf("hop %d: %s", i, err)
		}
		amountOut, err := p.QuoteSwapExactIn(amount, zeroForOne)
		if err != nil {
			return tx, err
		}
		if !amountOut.IsPositive() {
			return tx, types.ErrInvalidAmount.Wrapf("hop %d yields no output", i)
		}
		hq, err := k.applyHop(locked[h.PoolID], &p, zeroForOne, amount, amountOut)
		if err != nil {
			return tx, err
		}
		working[h.PoolID] = p
		hops = append(hops, hq)
		amount = amountOut
	}

	if amount.LT(minAmountOut) {
		return tx, types.ErrSlippageExceeded.Wrapf("route output %s below minimum %s", amount, minAmountOut)
	}

	tx = k.newSwapTx(types.SwapExactIn, userID, height, hops...)
	if err := k.appendRecord(ctx, tx.ID, audit.KindSwap, "route", userID, PoolEntityID(ids[0]), height, tx); err != nil {
		return types.SwapTransaction{}, err
	}

	committed := make([]types.Pool, 0, len(working))
	for _, id := range sorted {
		locked[id].pool = working[id]
		committed = append(committed, working[id])
	}
	k.afterSwapLocked(tx, committed...)
	return tx, nil
}

func (k *Keeper) cachedRoute(ctx context.Context, key string) (types.Route, bool) {
	if k.routeCache == nil {
		return types.Route{}, false
	}
	bz, err := k.routeCache.Get(ctx, key)
	if err != nil {
		return types.Route{}, false
	}
	var r types.Route
	if err := json.Unmarshal(bz, &r); err != nil {
		return types.Route{}, false
	}
	return r, true
}

func (k *Keeper) storeRoute(ctx context.Context, key string, r types.Route) {
	if k.routeCache == nil {
		return
	}
	bz, err := json.Marshal(r)
	if err != nil {
		return
	}
	if err := k.routeCache.Set(ctx, key, bz, 0); err != nil {
		k.logger.Debug("route cache write failed", "error", err)
	}
}
