package types

import (
	"cosmossdk.io/math"
)

// MaxAmountBitLen bounds stakes, budgets and rates. A stake at the bound times
// an accumulator fed by a budget at the bound stays below math.MaxBitLen.
const MaxAmountBitLen = 96

// CheckAmountBound returns ErrOverflow when a exceeds MaxAmountBitLen bits.
func CheckAmountBound(name string, a math.Int) error {
	if a.IsNil() {
		return nil
	}
	if a.BigInt().BitLen() > MaxAmountBitLen {
		return ErrOverflow.Wrapf("%s exceeds %d bits", name, MaxAmountBitLen)
	}
	return nil
}

// SafeAdd returns a+b, or ErrOverflow when the sum leaves the amount bound.
func SafeAdd(name string, a, b math.Int) (math.Int, error) {
	sum := a.Add(b)
	if err := CheckAmountBound(name, sum); err != nil {
		return math.Int{}, err
	}
	return sum, nil
}
