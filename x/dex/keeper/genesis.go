package keeper

import (
	"context"
	"fmt"

	"cosmossdk.io/math"

	"github.com/paw-chain/pawswap/x/dex/types"
)

// InitGenesis loads pools and positions into an empty keeper.
func (k *Keeper) InitGenesis(ctx context.Context, gs types.GenesisState) error {
	if err := gs.Validate(); err != nil {
		return fmt.Errorf("invalid dex genesis: %w", err)
	}

	for _, p := range gs.Pools {
		for _, t := range []string{p.Token0, p.Token1} {
			if err := k.tokenKeeper.MarkReferenced(ctx, t); err != nil {
				return fmt.Errorf("pool %d: %w", p.ID, err)
			}
		}
		tok0, err := k.tokenKeeper.GetToken(ctx, p.Token0)
		if err != nil {
			return err
		}
		tok1, err := k.tokenKeeper.GetToken(ctx, p.Token1)
		if err != nil {
			return err
		}
		lp, err := k.tokenKeeper.RegisterToken(ctx, lpToken(p.ID, tok0, tok1))
		if err != nil {
			return err
		}
		if err := k.tokenKeeper.MarkReferenced(ctx, lp.ID); err != nil {
			return err
		}
	}

	k.mu.Lock()
	defer k.mu.Unlock()

	if len(k.pools) > 0 {
		return fmt.Errorf("dex genesis loaded into non-empty keeper")
	}
	k.params = gs.Params
	for _, p := range gs.Pools {
		k.pools[p.ID] = &poolEntry{pool: p, positions: make(map[string]math.Int)}
		k.pairs[types.PairKey(p.Token0, p.Token1)] = p.ID
	}
	for _, pos := range gs.Positions {
		k.pools[pos.PoolID].positions[pos.UserID] = pos.LpShares
	}
	k.nextPoolID = gs.NextPoolID
	k.bumpVersion()
	k.metrics.PoolsTotal.Set(float64(len(k.pools)))
	return nil
}

// ExportGenesis returns the current state.
func (k *Keeper) ExportGenesis(ctx context.Context) *types.GenesisState {
	gs := &types.GenesisState{
		Params:    k.GetParams(ctx),
		Pools:     k.ListPools(ctx),
		Positions: []types.LiquidityPosition{},
	}
	for _, p := range gs.Pools {
		positions, err := k.ListPositions(ctx, p.ID)
		if err != nil {
			continue
		}
		gs.Positions = append(gs.Positions, positions...)
	}

	k.mu.RLock()
	gs.NextPoolID = k.nextPoolID
	k.mu.RUnlock()
	return gs
}
