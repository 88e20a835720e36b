package api

import (
	"math/big"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	dextypes "github.com/paw-chain/pawswap/x/dex/types"
)

func TestParseAmount(t *testing.T) {
	maxAmount := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), dextypes.MaxAmountBitLen), big.NewInt(1))
	overMax := new(big.Int).Lsh(big.NewInt(1), dextypes.MaxAmountBitLen)

	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"zero", "0", "0", false},
		{"padded", " 42 ", "42", false},
		{"largest accepted", maxAmount.String(), maxAmount.String(), false},
		{"one past the bound", overMax.String(), "", true},
		{"uint256 max", new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1)).String(), "", true},
		{"78 digits", strings.Repeat("9", 78), "", true},
		{"empty", "", "", true},
		{"negative", "-1", "", true},
		{"decimal", "1.5", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAmount(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got.String())
		})
	}
}
