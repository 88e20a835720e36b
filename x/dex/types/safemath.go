package types

import (
	"math/big"

	"cosmossdk.io/math"
)

// Integer helpers computed on big.Int so intermediate products never hit
// math.Int's 256-bit bound.

// MaxAmountBitLen bounds every amount and reserve a pool holds. Products of
// two bounded values stay below math.MaxBitLen.
const MaxAmountBitLen = 128

var (
	bpsDenominator = big.NewInt(BpsDenominator)
	decPrecision   = new(big.Int).Exp(big.NewInt(10), big.NewInt(math.LegacyPrecision), nil)
)

// CheckAmountBound fails with ErrOverflow when a is wider than MaxAmountBitLen.
func CheckAmountBound(name string, a math.Int) error {
	if !a.IsNil() && a.BigInt().BitLen() > MaxAmountBitLen {
		return ErrOverflow.Wrapf("%s %s exceeds %d bits", name, a, MaxAmountBitLen)
	}
	return nil
}

// SafeAdd returns a+b, or ErrOverflow when the sum exceeds MaxAmountBitLen.
func SafeAdd(a, b math.Int) (math.Int, error) {
	sum := new(big.Int).Add(a.BigInt(), b.BigInt())
	if sum.BitLen() > MaxAmountBitLen {
		return math.ZeroInt(), ErrOverflow.Wrapf("%s + %s exceeds %d bits", a, b, MaxAmountBitLen)
	}
	return math.NewIntFromBigInt(sum), nil
}

// Ratio returns num/den truncated to LegacyDec precision, or ErrOverflow when
// the quotient does not fit a math.Int.
func Ratio(num, den *big.Int) (math.LegacyDec, error) {
	if den.Sign() <= 0 {
		return math.LegacyZeroDec(), nil
	}
	q := new(big.Int).Mul(num, decPrecision)
	q.Quo(q, den)
	if q.BitLen() > math.MaxBitLen {
		return math.LegacyDec{}, ErrOverflow.Wrapf("ratio %s/%s out of range", num, den)
	}
	return math.LegacyNewDecFromBigIntWithPrec(q, math.LegacyPrecision), nil
}

// boundedInt converts b, failing with ErrOverflow when it is wider than
// MaxAmountBitLen.
func boundedInt(b *big.Int) (math.Int, error) {
	if b.BitLen() > MaxAmountBitLen {
		return math.ZeroInt(), ErrOverflow.Wrapf("%s exceeds %d bits", b, MaxAmountBitLen)
	}
	return math.NewIntFromBigInt(b), nil
}

// MulDiv returns floor(a*b/c).
func MulDiv(a, b, c math.Int) math.Int {
	num := new(big.Int).Mul(a.BigInt(), b.BigInt())
	return math.NewIntFromBigInt(num.Quo(num, c.BigInt()))
}

// MulDivRoundUp returns ceil(a*b/c) for non-negative operands.
func MulDivRoundUp(a, b, c math.Int) math.Int {
	num := new(big.Int).Mul(a.BigInt(), b.BigInt())
	return math.NewIntFromBigInt(ceilQuo(num, c.BigInt()))
}

// SqrtProduct returns floor(sqrt(a*b)) for non-negative operands.
func SqrtProduct(a, b math.Int) math.Int {
	return math.NewIntFromBigInt(new(big.Int).Sqrt(product(a, b)))
}

func ceilQuo(num, den *big.Int) *big.Int {
	q, r := new(big.Int).QuoRem(num, den, new(big.Int))
	if r.Sign() > 0 {
		q.Add(q, big.NewInt(1))
	}
	return q
}

func product(a, b math.Int) *big.Int {
	return new(big.Int).Mul(a.BigInt(), b.BigInt())
}

func feeComplement(feeRateBps uint32) *big.Int {
	return big.NewInt(int64(BpsDenominator) - int64(feeRateBps))
}
