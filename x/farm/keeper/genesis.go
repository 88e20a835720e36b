package keeper

import (
	"context"
	"fmt"

	"github.com/paw-chain/pawswap/x/farm/types"
)

// InitGenesis loads farms and positions into an empty keeper. Staked funds are
// assumed to already sit in the vault.
func (k *Keeper) InitGenesis(ctx context.Context, gs types.GenesisState) error {
	if err := gs.Validate(); err != nil {
		return fmt.Errorf("invalid farm genesis: %w", err)
	}
	for _, f := range gs.Farms {
		for _, t := range []string{f.StakeToken, f.RewardToken} {
			if err := k.tokenKeeper.MarkReferenced(ctx, t); err != nil {
				return fmt.Errorf("farm %d: %w", f.ID, err)
			}
		}
	}

	k.mu.Lock()
	defer k.mu.Unlock()

	if len(k.farms) > 0 {
		return fmt.Errorf("farm genesis loaded into non-empty keeper")
	}
	k.params = gs.Params
	for _, f := range gs.Farms {
		k.farms[f.ID] = &farmEntry{farm: f, positions: make(map[string]types.FarmPosition)}
	}
	for _, p := range gs.Positions {
		k.farms[p.FarmID].positions[p.UserID] = p
	}
	k.nextFarmID = gs.NextFarmID
	k.metrics.FarmsTotal.Set(float64(len(k.farms)))
	return nil
}

// ExportGenesis returns the current state.
func (k *Keeper) ExportGenesis(ctx context.Context) *types.GenesisState {
	gs := &types.GenesisState{
		Params:    k.GetParams(ctx),
		Farms:     k.ListFarms(ctx),
		Positions: []types.FarmPosition{},
	}
	for _, f := range gs.Farms {
		positions, err := k.ListPositions(ctx, f.ID)
		if err != nil {
			continue
		}
		gs.Positions = append(gs.Positions, positions...)
	}

	k.mu.RLock()
	gs.NextFarmID = k.nextFarmID
	k.mu.RUnlock()
	return gs
}
