package app

import (
	"context"
	"sync"

	"cosmossdk.io/math"

	dexkeeper "github.com/paw-chain/pawswap/x/dex/keeper"
	dextypes "github.com/paw-chain/pawswap/x/dex/types"
	farmtypes "github.com/paw-chain/pawswap/x/farm/types"
)

var _ farmtypes.StakeVault = (*StakeVault)(nil)

// StakeVault custodies farm stakes. LP share stakes move between the owner's
// dex position and the farm's escrow position, so the dex share ledger stays
// the single source of truth for LP balances. Other tokens have no ledger in
// pawswap and are tracked per farm here.
type StakeVault struct {
	dex *dexkeeper.Keeper

	mu     sync.Mutex
	escrow map[uint64]map[string]math.Int
}

// NewStakeVault returns a vault backed by the dex keeper.
func NewStakeVault(dex *dexkeeper.Keeper) *StakeVault {
	return &StakeVault{dex: dex, escrow: make(map[uint64]map[string]math.Int)}
}

// Lock moves amount of token from owner into farmID's escrow.
func (v *StakeVault) Lock(ctx context.Context, farmID uint64, token, owner string, amount math.Int) error {
	if poolID, ok := dextypes.ParseLPTokenID(token); ok {
		_, err := v.dex.TransferShares(ctx, poolID, owner, farmtypes.EscrowOwner(farmID), amount)
		return err
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	balances, ok := v.escrow[farmID]
	if !ok {
		balances = make(map[string]math.Int)
		v.escrow[farmID] = balances
	}
	if cur, ok := balances[token]; ok {
		balances[token] = cur.Add(amount)
	} else {
		balances[token] = amount
	}
	return nil
}

// Release moves amount of token from farmID's escrow back to owner.
func (v *StakeVault) Release(ctx context.Context, farmID uint64, token, owner string, amount math.Int) error {
	if poolID, ok := dextypes.ParseLPTokenID(token); ok {
		_, err := v.dex.TransferShares(ctx, poolID, farmtypes.EscrowOwner(farmID), owner, amount)
		return err
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	cur := v.balanceLocked(farmID, token)
	if cur.LT(amount) {
		return farmtypes.ErrInsufficientStake.Wrapf("farm %d escrow holds %s %s, release of %s", farmID, cur, token, amount)
	}
	v.escrow[farmID][token] = cur.Sub(amount)
	return nil
}

// Escrowed returns the amount of token held for farmID.
func (v *StakeVault) Escrowed(ctx context.Context, farmID uint64, token string) math.Int {
	if poolID, ok := dextypes.ParseLPTokenID(token); ok {
		shares, err := v.dex.GetShares(ctx, poolID, farmtypes.EscrowOwner(farmID))
		if err != nil {
			return math.ZeroInt()
		}
		return shares
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	return v.balanceLocked(farmID, token)
}

// Restore seeds a non-LP escrow balance when loading genesis.
func (v *StakeVault) Restore(farmID uint64, token string, amount math.Int) {
	if _, ok := dextypes.ParseLPTokenID(token); ok || !amount.IsPositive() {
		return
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	if _, ok := v.escrow[farmID]; !ok {
		v.escrow[farmID] = make(map[string]math.Int)
	}
	v.escrow[farmID][token] = amount
}

func (v *StakeVault) balanceLocked(farmID uint64, token string) math.Int {
	if balances, ok := v.escrow[farmID]; ok {
		if amt, ok := balances[token]; ok {
			return amt
		}
	}
	return math.ZeroInt()
}
