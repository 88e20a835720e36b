package tests

import (
	"testing"

	"github.com/stretchr/testify/require"

	dextypes "github.com/paw-chain/pawswap/x/dex/types"
	farmtypes "github.com/paw-chain/pawswap/x/farm/types"
	tokentypes "github.com/paw-chain/pawswap/x/token/types"
)

// TestModuleNamespaceUniqueness verifies that each module has a unique name
func TestModuleNamespaceUniqueness(t *testing.T) {
	namespaces := map[string]struct{}{
		dextypes.ModuleName:   {},
		farmtypes.ModuleName:  {},
		tokentypes.ModuleName: {},
	}
	require.Len(t, namespaces, 3, "Each module must have a unique namespace")
}

// TestModuleOwnersAreReserved verifies that module-held positions can never
// be claimed by a user id
func TestModuleOwnersAreReserved(t *testing.T) {
	owners := []string{
		dextypes.MinimumLiquidityOwner,
		farmtypes.EscrowOwner(1),
		farmtypes.EscrowOwner(42),
		farmtypes.RewardsOwner(1),
		farmtypes.FarmEntityID(7),
	}
	for _, owner := range owners {
		require.True(t, dextypes.IsReservedOwner(owner), owner)
	}

	for _, user := range []string{"alice", "dexter", "farmer", "lp/1"} {
		require.False(t, dextypes.IsReservedOwner(user), user)
	}
}

// TestOwnersDoNotCollide verifies escrow and reward owners are distinct per farm
func TestOwnersDoNotCollide(t *testing.T) {
	seen := make(map[string]uint64)
	for id := uint64(1); id <= 100; id++ {
		for _, owner := range []string{farmtypes.EscrowOwner(id), farmtypes.RewardsOwner(id)} {
			prev, dup := seen[owner]
			require.False(t, dup, "owner %s of farm %d collides with farm %d", owner, id, prev)
			seen[owner] = id
		}
	}
	require.NotContains(t, seen, dextypes.MinimumLiquidityOwner)
}

// TestLPTokenIDsRoundTrip verifies LP token ids map back to their pool
func TestLPTokenIDsRoundTrip(t *testing.T) {
	for _, id := range []uint64{1, 2, 99, 1 << 40} {
		got, ok := dextypes.ParseLPTokenID(dextypes.LPTokenID(id))
		require.True(t, ok)
		require.Equal(t, id, got)
	}
	for _, bad := range []string{"lp/", "lp/0", "lp/x", "upaw", "LP/1"} {
		_, ok := dextypes.ParseLPTokenID(bad)
		require.False(t, ok, bad)
	}
}
