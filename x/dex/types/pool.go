package types

import (
	"math/big"
	"time"

	"cosmossdk.io/math"
)

// Pool is a constant-product liquidity pool for one unordered token pair.
//
// State changes go through ApplySwap, AddLiquidity and RemoveLiquidity only.
// Each of them either fully applies or leaves the pool untouched.
type Pool struct {
	ID            uint64    `json:"id"`
	Token0        string    `json:"token0"`
	Token1        string    `json:"token1"`
	Reserve0      math.Int  `json:"reserve0"`
	Reserve1      math.Int  `json:"reserve1"`
	TotalLpShares math.Int  `json:"totalLpShares"`
	FeeRateBps    uint32    `json:"feeRateBps"`
	Version       uint64    `json:"version"`
	Halted        bool      `json:"halted"`
	HaltReason    string    `json:"haltReason,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

// NewPool returns an empty pool for the pair, ordering tokens canonically.
func NewPool(id uint64, tokenA, tokenB string, feeRateBps uint32, createdAt time.Time) Pool {
	t0, t1 := SortTokens(tokenA, tokenB)
	return Pool{
		ID:            id,
		Token0:        t0,
		Token1:        t1,
		Reserve0:      math.ZeroInt(),
		Reserve1:      math.ZeroInt(),
		TotalLpShares: math.ZeroInt(),
		FeeRateBps:    feeRateBps,
		CreatedAt:     createdAt,
	}
}

// IsEmpty reports whether either reserve is zero.
func (p Pool) IsEmpty() bool {
	return !p.Reserve0.IsPositive() || !p.Reserve1.IsPositive()
}

// HasToken reports whether token is one side of the pair.
func (p Pool) HasToken(token string) bool {
	return token == p.Token0 || token == p.Token1
}

// Other returns the counter token of token.
func (p Pool) Other(token string) string {
	if token == p.Token0 {
		return p.Token1
	}
	return p.Token0
}

// Direction resolves a trade direction. zeroForOne is true when token0 is sold.
func (p Pool) Direction(tokenIn, tokenOut string) (zeroForOne bool, err error) {
	switch {
	case tokenIn == p.Token0 && tokenOut == p.Token1:
		return true, nil
	case tokenIn == p.Token1 && tokenOut == p.Token0:
		return false, nil
	default:
		return false, ErrInvalidTokenPair.Wrapf("pool %d trades %s/%s, got %s -> %s", p.ID, p.Token0, p.Token1, tokenIn, tokenOut)
	}
}

// Reserves returns (reserveIn, reserveOut) for a direction.
func (p Pool) Reserves(zeroForOne bool) (math.Int, math.Int) {
	if zeroForOne {
		return p.Reserve0, p.Reserve1
	}
	return p.Reserve1, p.Reserve0
}

// K returns reserve0 * reserve1.
func (p Pool) K() *big.Int {
	return product(p.Reserve0, p.Reserve1)
}

// GetAmountOut is the exact-in constant-product formula with the fee taken on the input side:
//
//	amountOut = floor(amountIn*(10000-fee)*reserveOut / (reserveIn*10000 + amountIn*(10000-fee)))
func GetAmountOut(amountIn, reserveIn, reserveOut math.Int, feeRateBps uint32) (math.Int, error) {
	if amountIn.IsNil() || !amountIn.IsPositive() {
		return math.ZeroInt(), ErrInvalidAmount.Wrap("amount in must be positive")
	}
	if !reserveIn.IsPositive() || !reserveOut.IsPositive() {
		return math.ZeroInt(), ErrPoolEmpty
	}

	inWithFee := new(big.Int).Mul(amountIn.BigInt(), feeComplement(feeRateBps))
	num := new(big.Int).Mul(inWithFee, reserveOut.BigInt())
	den := new(big.Int).Mul(reserveIn.BigInt(), bpsDenominator)
	den.Add(den, inWithFee)

	return math.NewIntFromBigInt(num.Quo(num, den)), nil
}

// GetAmountIn inverts GetAmountOut, rounding the required input up. Inputs
// wider than MaxAmountBitLen fail with ErrOverflow.
func GetAmountIn(amountOut, reserveIn, reserveOut math.Int, feeRateBps uint32) (math.Int, error) {
	if amountOut.IsNil() || !amountOut.IsPositive() {
		return math.ZeroInt(), ErrInvalidAmount.Wrap("amount out must be positive")
	}
	if !reserveIn.IsPositive() || !reserveOut.IsPositive() {
		return math.ZeroInt(), ErrPoolEmpty
	}
	if amountOut.GTE(reserveOut) {
		return math.ZeroInt(), ErrInsufficientLiquidity.Wrapf("amount out %s must be below reserve %s", amountOut, reserveOut)
	}

	num := new(big.Int).Mul(reserveIn.BigInt(), amountOut.BigInt())
	num.Mul(num, bpsDenominator)
	den := new(big.Int).Sub(reserveOut.BigInt(), amountOut.BigInt())
	den.Mul(den, feeComplement(feeRateBps))

	return boundedInt(ceilQuo(num, den))
}

// QuoteSwapExactIn quotes the output of selling amountIn at the pool fee.
func (p Pool) QuoteSwapExactIn(amountIn math.Int, zeroForOne bool) (math.Int, error) {
	if p.IsEmpty() {
		return math.ZeroInt(), ErrPoolEmpty.Wrapf("pool %d", p.ID)
	}
	reserveIn, reserveOut := p.Reserves(zeroForOne)
	return GetAmountOut(amountIn, reserveIn, reserveOut, p.FeeRateBps)
}

// QuoteSwapExactOut quotes the input needed to buy amountOut at the pool fee.
func (p Pool) QuoteSwapExactOut(amountOut math.Int, zeroForOne bool) (math.Int, error) {
	if p.IsEmpty() {
		return math.ZeroInt(), ErrPoolEmpty.Wrapf("pool %d", p.ID)
	}
	reserveIn, reserveOut := p.Reserves(zeroForOne)
	return GetAmountIn(amountOut, reserveIn, reserveOut, p.FeeRateBps)
}

// FeeAmount is the part of amountIn retained as fee, rounded down.
func (p Pool) FeeAmount(amountIn math.Int) math.Int {
	return MulDiv(amountIn, math.NewInt(int64(p.FeeRateBps)), math.NewInt(BpsDenominator))
}

// ApplySwap moves amountIn into and amountOut out of the pool. It checks that k
// grows (strictly when the fee is non-zero) and that the fee-adjusted product
// covers the old k. A failed check returns ErrInvariantViolation and leaves the
// pool unchanged.
func (p *Pool) ApplySwap(amountIn, amountOut math.Int, zeroForOne bool) error {
	if amountIn.IsNil() || !amountIn.IsPositive() {
		return ErrInvalidAmount.Wrap("amount in must be positive")
	}
	if amountOut.IsNil() || amountOut.IsNegative() {
		return ErrInvalidAmount.Wrap("amount out must not be negative")
	}
	if p.IsEmpty() {
		return ErrPoolEmpty.Wrapf("pool %d", p.ID)
	}

	reserveIn, reserveOut := p.Reserves(zeroForOne)
	if amountOut.GTE(reserveOut) {
		return ErrInsufficientLiquidity.Wrapf("amount out %s must be below reserve %s", amountOut, reserveOut)
	}

	newIn, err := SafeAdd(reserveIn, amountIn)
	if err != nil {
		return err
	}
	newOut := reserveOut.Sub(amountOut)

	kOld := product(reserveIn, reserveOut)
	kNew := product(newIn, newOut)
	cmp := kNew.Cmp(kOld)
	if cmp < 0 || (cmp == 0 && p.FeeRateBps > 0) {
		return ErrInvariantViolation.Wrapf("pool %d: k %s -> %s", p.ID, kOld, kNew)
	}

	// (newIn*10000 - amountIn*fee) * newOut >= reserveIn*reserveOut*10000
	adjIn := new(big.Int).Mul(newIn.BigInt(), bpsDenominator)
	adjIn.Sub(adjIn, new(big.Int).Mul(amountIn.BigInt(), big.NewInt(int64(p.FeeRateBps))))
	lhs := adjIn.Mul(adjIn, newOut.BigInt())
	rhs := new(big.Int).Mul(kOld, bpsDenominator)
	if lhs.Cmp(rhs) < 0 {
		return ErrInvariantViolation.Wrapf("pool %d: fee-adjusted k %s below %s", p.ID, lhs, rhs)
	}

	if zeroForOne {
		p.Reserve0, p.Reserve1 = newIn, newOut
	} else {
		p.Reserve1, p.Reserve0 = newIn, newOut
	}
	p.Version++
	return nil
}

// AddLiquidityOptions controls how deposits are matched to the pool ratio.
type AddLiquidityOptions struct {
	// AutoAdjust lets the pool recompute the counter amount instead of rejecting
	// deposits that are off-ratio.
	AutoAdjust bool
	// ToleranceBps is the accepted ratio deviation when AutoAdjust is false.
	ToleranceBps uint32
	// MinimumLiquidity is burned on the first deposit.
	MinimumLiquidity math.Int
}

// AddLiquidityResult describes an applied deposit.
type AddLiquidityResult struct {
	Amount0 math.Int `json:"amount0"`
	Amount1 math.Int `json:"amount1"`
	Shares  math.Int `json:"shares"`
	Burned  math.Int `json:"burned"`
}

// AddLiquidity deposits into the pool and mints shares.
//
// The first deposit uses both amounts as given and mints floor(sqrt(a0*a1))
// shares, of which MinimumLiquidity are burned. Later deposits are matched to
// the current ratio: the counter amount is rounded up and shares are rounded
// down, so a deposit never buys more than it pays for.
func (p *Pool) AddLiquidity(amount0, amount1 math.Int, opts AddLiquidityOptions) (AddLiquidityResult, error) {
	if amount0.IsNil() || amount1.IsNil() || amount0.IsNegative() || amount1.IsNegative() {
		return AddLiquidityResult{}, ErrInvalidAmount.Wrap("deposit amounts must not be negative")
	}
	if err := CheckAmountBound("amount0", amount0); err != nil {
		return AddLiquidityResult{}, err
	}
	if err := CheckAmountBound("amount1", amount1); err != nil {
		return AddLiquidityResult{}, err
	}
	minLiquidity := opts.MinimumLiquidity
	if minLiquidity.IsNil() {
		minLiquidity = math.ZeroInt()
	}

	if p.Reserve0.IsZero() && p.Reserve1.IsZero() {
		if !p.TotalLpShares.IsZero() {
			return AddLiquidityResult{}, ErrInvariantViolation.Wrapf("pool %d has shares but no reserves", p.ID)
		}
		if !amount0.IsPositive() || !amount1.IsPositive() {
			return AddLiquidityResult{}, ErrInvalidAmount.Wrap("initial deposit needs both tokens")
		}
		liquidity := SqrtProduct(amount0, amount1)
		if liquidity.LTE(minLiquidity) {
			return AddLiquidityResult{}, ErrInsufficientLiquidity.Wrapf("initial liquidity %s must exceed minimum %s", liquidity, minLiquidity)
		}

		p.Reserve0 = amount0
		p.Reserve1 = amount1
		p.TotalLpShares = liquidity
		p.Version++
		return AddLiquidityResult{
			Amount0: amount0,
			Amount1: amount1,
			Shares:  liquidity.Sub(minLiquidity),
			Burned:  minLiquidity,
		}, nil
	}

	if p.IsEmpty() || !p.TotalLpShares.IsPositive() {
		return AddLiquidityResult{}, ErrInvariantViolation.Wrapf("pool %d has inconsistent reserves %s/%s with %s shares",
			p.ID, p.Reserve0, p.Reserve1, p.TotalLpShares)
	}
	if amount0.IsZero() && amount1.IsZero() {
		return AddLiquidityResult{}, ErrInvalidAmount.Wrap("deposit amounts must be positive")
	}

	if !opts.AutoAdjust {
		if err := p.checkRatio(amount0, amount1, opts.ToleranceBps); err != nil {
			return AddLiquidityResult{}, err
		}
	}

	var used0, used1, shares math.Int
	optimal1 := math.ZeroInt()
	if amount0.IsPositive() {
		optimal1 = MulDivRoundUp(amount0, p.Reserve1, p.Reserve0)
	}
	if amount0.IsPositive() && (amount1.IsZero() || optimal1.LTE(amount1)) {
		used0, used1 = amount0, optimal1
		shares = MulDiv(p.TotalLpShares, used0, p.Reserve0)
	} else {
		used0, used1 = MulDivRoundUp(amount1, p.Reserve0, p.Reserve1), amount1
		shares = MulDiv(p.TotalLpShares, used1, p.Reserve1)
	}

	if !shares.IsPositive() {
		return AddLiquidityResult{}, ErrInvalidAmount.Wrap("deposit too small to mint shares")
	}

	reserve0, err := SafeAdd(p.Reserve0, used0)
	if err != nil {
		return AddLiquidityResult{}, err
	}
	reserve1, err := SafeAdd(p.Reserve1, used1)
	if err != nil {
		return AddLiquidityResult{}, err
	}
	total, err := SafeAdd(p.TotalLpShares, shares)
	if err != nil {
		return AddLiquidityResult{}, err
	}

	p.Reserve0, p.Reserve1, p.TotalLpShares = reserve0, reserve1, total
	p.Version++
	return AddLiquidityResult{Amount0: used0, Amount1: used1, Shares: shares, Burned: math.ZeroInt()}, nil
}

// checkRatio rejects deposits whose ratio deviates from reserve1/reserve0 by more than toleranceBps.
func (p Pool) checkRatio(amount0, amount1 math.Int, toleranceBps uint32) error {
	if !amount0.IsPositive() || !amount1.IsPositive() {
		return ErrRatioMismatch.Wrap("both amounts are required without auto-adjustment")
	}
	// |a0*r1 - a1*r0| * 10000 <= tolerance * a0*r1
	implied := product(amount0, p.Reserve1)
	given := product(amount1, p.Reserve0)
	diff := new(big.Int).Sub(implied, given)
	diff.Abs(diff).Mul(diff, bpsDenominator)
	limit := new(big.Int).Mul(implied, big.NewInt(int64(toleranceBps)))
	if diff.Cmp(limit) > 0 {
		return ErrRatioMismatch.Wrapf("pool %d ratio %s:%s, deposit %s:%s exceeds tolerance %d bps",
			p.ID, p.Reserve0, p.Reserve1, amount0, amount1, toleranceBps)
	}
	return nil
}

// RemoveLiquidity burns shares and returns the proportional reserves, rounded down.
func (p *Pool) RemoveLiquidity(shares math.Int) (math.Int, math.Int, error) {
	if shares.IsNil() || !shares.IsPositive() {
		return math.ZeroInt(), math.ZeroInt(), ErrInvalidAmount.Wrap("shares must be positive")
	}
	if !p.TotalLpShares.IsPositive() {
		return math.ZeroInt(), math.ZeroInt(), ErrPoolEmpty.Wrapf("pool %d", p.ID)
	}
	if shares.GT(p.TotalLpShares) {
		return math.ZeroInt(), math.ZeroInt(), ErrInsufficientShares.Wrapf("shares %s exceed pool supply %s", shares, p.TotalLpShares)
	}

	out0 := MulDiv(p.Reserve0, shares, p.TotalLpShares)
	out1 := MulDiv(p.Reserve1, shares, p.TotalLpShares)
	if !out0.IsPositive() || !out1.IsPositive() {
		return math.ZeroInt(), math.ZeroInt(), ErrInvalidAmount.Wrapf("burning %s shares returns nothing", shares)
	}

	p.Reserve0 = p.Reserve0.Sub(out0)
	p.Reserve1 = p.Reserve1.Sub(out1)
	p.TotalLpShares = p.TotalLpShares.Sub(shares)
	p.Version++
	return out0, out1, nil
}

// Validate checks the structural pool invariants.
func (p Pool) Validate() error {
	if p.Token0 == "" || p.Token1 == "" || p.Token0 >= p.Token1 {
		return ErrInvariantViolation.Wrapf("pool %d tokens %q/%q are not canonically ordered", p.ID, p.Token0, p.Token1)
	}
	if p.Reserve0.IsNegative() || p.Reserve1.IsNegative() || p.TotalLpShares.IsNegative() {
		return ErrInvariantViolation.Wrapf("pool %d has negative state", p.ID)
	}
	if p.Reserve0.IsZero() != p.Reserve1.IsZero() {
		return ErrInvariantViolation.Wrapf("pool %d has one-sided reserves %s/%s", p.ID, p.Reserve0, p.Reserve1)
	}
	if p.TotalLpShares.IsZero() != p.Reserve0.IsZero() {
		return ErrInvariantViolation.Wrapf("pool %d shares %s inconsistent with reserves %s/%s", p.ID, p.TotalLpShares, p.Reserve0, p.Reserve1)
	}
	if p.FeeRateBps >= BpsDenominator {
		return ErrInvariantViolation.Wrapf("pool %d fee %d bps", p.ID, p.FeeRateBps)
	}
	return nil
}

// SpotPrice is reserveOut/reserveIn in base units.
func (p Pool) SpotPrice(zeroForOne bool) math.LegacyDec {
	reserveIn, reserveOut := p.Reserves(zeroForOne)
	spot, err := Ratio(reserveOut.BigInt(), reserveIn.BigInt())
	if err != nil {
		return math.LegacyZeroDec()
	}
	return spot
}

// PriceImpact is the relative shortfall of amountOut against a fee-adjusted
// trade at the spot price: 1 - out*reserveIn*10000 / (in*(10000-fee)*reserveOut).
func (p Pool) PriceImpact(amountIn, amountOut math.Int, zeroForOne bool) math.LegacyDec {
	reserveIn, reserveOut := p.Reserves(zeroForOne)
	if !amountIn.IsPositive() || !reserveOut.IsPositive() {
		return math.LegacyZeroDec()
	}
	num := new(big.Int).Mul(product(amountOut, reserveIn), bpsDenominator)
	den := new(big.Int).Mul(product(amountIn, reserveOut), feeComplement(p.FeeRateBps))
	filled, err := Ratio(num, den)
	if err != nil {
		return math.LegacyZeroDec()
	}
	impact := math.LegacyOneDec().Sub(filled)
	if impact.IsNegative() {
		return math.LegacyZeroDec()
	}
	return impact
}
