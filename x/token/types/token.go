package types

import (
	"regexp"
	"strings"

	"cosmossdk.io/math"
)

var tokenIDPattern = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9/:._-]{1,127}$`)

// Token is the canonical metadata for a tradable asset.
type Token struct {
	ID       string         `json:"id" mapstructure:"id"`
	Symbol   string         `json:"symbol" mapstructure:"symbol"`
	Name     string         `json:"name,omitempty" mapstructure:"name"`
	Decimals uint32         `json:"decimals" mapstructure:"decimals"`
	Price    math.LegacyDec `json:"price"`
}

// Validate checks the static fields of a token.
func (t Token) Validate() error {
	if !tokenIDPattern.MatchString(t.ID) {
		return ErrInvalidToken.Wrapf("invalid token id %q", t.ID)
	}
	if strings.TrimSpace(t.Symbol) == "" || len(t.Symbol) > MaxSymbolLength {
		return ErrInvalidToken.Wrapf("invalid symbol %q for %s", t.Symbol, t.ID)
	}
	if t.Decimals > MaxDecimals {
		return ErrInvalidToken.Wrapf("decimals %d exceed maximum %d", t.Decimals, MaxDecimals)
	}
	if err := ValidatePrice(t.Price); err != nil {
		return err
	}
	return nil
}

// MaxPrice bounds reference prices so pool valuations fit a LegacyDec.
var MaxPrice = math.LegacyNewDecFromBigInt(pow10(24))

// ValidatePrice rejects negative or out-of-range reference prices. A nil price
// means "unknown".
func ValidatePrice(p math.LegacyDec) error {
	if p.IsNil() {
		return nil
	}
	if p.IsNegative() {
		return ErrInvalidPrice.Wrapf("price %s is negative", p)
	}
	if p.GT(MaxPrice) {
		return ErrInvalidPrice.Wrapf("price %s exceeds %s", p, MaxPrice)
	}
	return nil
}

// SameMetadata reports whether two registrations describe the same token,
// ignoring the price which may change at any time.
func (t Token) SameMetadata(o Token) bool {
	return t.ID == o.ID && t.Symbol == o.Symbol && t.Name == o.Name && t.Decimals == o.Decimals
}

// Scale returns 10^decimals as an integer.
func (t Token) Scale() math.Int {
	return math.NewIntFromBigInt(pow10(t.Decimals))
}

// ToDisplay converts a base-unit amount into whole-token units.
func (t Token) ToDisplay(amount math.Int) math.LegacyDec {
	return math.LegacyNewDecFromInt(amount).Quo(math.LegacyNewDecFromInt(t.Scale()))
}

// Value prices a base-unit amount at the reference price. Unknown prices value at zero.
func (t Token) Value(amount math.Int) math.LegacyDec {
	if t.Price.IsNil() {
		return math.LegacyZeroDec()
	}
	return t.ToDisplay(amount).Mul(t.Price)
}
