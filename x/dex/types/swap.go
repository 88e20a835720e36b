package types

import (
	"strconv"
	"strings"
	"time"

	"cosmossdk.io/math"
)

// SwapKind distinguishes exact-in from exact-out trades.
type SwapKind string

const (
	SwapExactIn  SwapKind = "exact_in"
	SwapExactOut SwapKind = "exact_out"
)

// Hop is one leg of a route.
type Hop struct {
	PoolID     uint64 `json:"poolId"`
	TokenIn    string `json:"tokenIn"`
	TokenOut   string `json:"tokenOut"`
	FeeRateBps uint32 `json:"feeRateBps"`
}

// Route is an ordered path of hops from the first TokenIn to the last TokenOut.
type Route struct {
	Hops []Hop `json:"hops"`
}

// TokenIn returns the token sold by the route.
func (r Route) TokenIn() string {
	if len(r.Hops) == 0 {
		return ""
	}
	return r.Hops[0].TokenIn
}

// TokenOut returns the token bought by the route.
func (r Route) TokenOut() string {
	if len(r.Hops) == 0 {
		return ""
	}
	return r.Hops[len(r.Hops)-1].TokenOut
}

// TotalFeeBps sums hop fees.
func (r Route) TotalFeeBps() uint32 {
	var total uint32
	for _, h := range r.Hops {
		total += h.FeeRateBps
	}
	return total
}

// PoolIDs returns the pools in hop order.
func (r Route) PoolIDs() []uint64 {
	ids := make([]uint64, len(r.Hops))
	for i, h := range r.Hops {
		ids[i] = h.PoolID
	}
	return ids
}

// String renders the route as "a -(1)-> b -(4)-> c".
func (r Route) String() string {
	if len(r.Hops) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(r.Hops[0].TokenIn)
	for _, h := range r.Hops {
		sb.WriteString(" -(")
		sb.WriteString(strconv.FormatUint(h.PoolID, 10))
		sb.WriteString(")-> ")
		sb.WriteString(h.TokenOut)
	}
	return sb.String()
}

// ValidateBasic checks that hops chain, stay within maxHops and do not revisit a pool.
func (r Route) ValidateBasic(maxHops int) error {
	if len(r.Hops) == 0 {
		return ErrInvalidRoute.Wrap("route has no hops")
	}
	if len(r.Hops) > maxHops {
		return ErrInvalidRoute.Wrapf("route has %d hops, max %d", len(r.Hops), maxHops)
	}
	seen := make(map[uint64]struct{}, len(r.Hops))
	for i, h := range r.Hops {
		if h.TokenIn == h.TokenOut {
			return ErrInvalidRoute.Wrapf("hop %d swaps %s for itself", i, h.TokenIn)
		}
		if i > 0 && r.Hops[i-1].TokenOut != h.TokenIn {
			return ErrInvalidRoute.Wrapf("hop %d starts with %s, previous hop ends with %s", i, h.TokenIn, r.Hops[i-1].TokenOut)
		}
		if _, dup := seen[h.PoolID]; dup {
			return ErrInvalidRoute.Wrapf("pool %d used twice", h.PoolID)
		}
		seen[h.PoolID] = struct{}{}
	}
	return nil
}

// HopQuote is the result of one hop of a quote or executed trade.
type HopQuote struct {
	Hop
	AmountIn  math.Int `json:"amountIn"`
	AmountOut math.Int `json:"amountOut"`
	Fee       math.Int `json:"fee"`
	// Reserves after the hop is applied.
	Reserve0After math.Int `json:"reserve0After"`
	Reserve1After math.Int `json:"reserve1After"`
}

// Quote is a read-only trade estimate.
type Quote struct {
	TokenIn   string   `json:"tokenIn"`
	TokenOut  string   `json:"tokenOut"`
	AmountIn  math.Int `json:"amountIn"`
	AmountOut math.Int `json:"amountOut"`
	// Fee is the first hop's fee, denominated in TokenIn.
	Fee            math.Int       `json:"fee"`
	FeeRateBps     uint32         `json:"feeRateBps"`
	SpotPrice      math.LegacyDec `json:"spotPrice"`
	EffectivePrice math.LegacyDec `json:"effectivePrice"`
	PriceImpact    math.LegacyDec `json:"priceImpact"`
	Route          Route          `json:"route"`
	Hops           []HopQuote     `json:"hops"`
}

// SwapTransaction is the audit record of an executed swap.
type SwapTransaction struct {
	ID          string     `json:"id"`
	Kind        SwapKind   `json:"kind"`
	UserID      string     `json:"userId"`
	TokenIn     string     `json:"tokenIn"`
	TokenOut    string     `json:"tokenOut"`
	AmountIn    math.Int   `json:"amountIn"`
	AmountOut   math.Int   `json:"amountOut"`
	Fee         math.Int   `json:"fee"`
	Hops        []HopQuote `json:"hops"`
	BlockHeight uint64     `json:"blockHeight"`
	Timestamp   time.Time  `json:"timestamp"`
}

// PoolIDs lists the pools the swap touched.
func (tx SwapTransaction) PoolIDs() []uint64 {
	ids := make([]uint64, len(tx.Hops))
	for i, h := range tx.Hops {
		ids[i] = h.PoolID
	}
	return ids
}
