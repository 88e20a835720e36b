package types

import (
	"fmt"

	"cosmossdk.io/math"
)

// GenesisState is the exported dex state.
type GenesisState struct {
	Params     Params              `json:"params"`
	Pools      []Pool              `json:"pools"`
	Positions  []LiquidityPosition `json:"positions"`
	NextPoolID uint64              `json:"nextPoolId"`
}

// DefaultGenesis returns the default genesis state for the DEX module.
func DefaultGenesis() *GenesisState {
	return &GenesisState{
		Params:     DefaultParams(),
		Pools:      []Pool{},
		Positions:  []LiquidityPosition{},
		NextPoolID: 1,
	}
}

// Validate ensures the genesis state is well-formed.
func (gs GenesisState) Validate() error {
	if err := gs.Params.Validate(); err != nil {
		return err
	}

	pools := make(map[uint64]Pool, len(gs.Pools))
	pairs := make(map[string]uint64, len(gs.Pools))
	for _, p := range gs.Pools {
		if p.ID == 0 || p.ID >= gs.NextPoolID {
			return fmt.Errorf("pool id %d outside [1, %d)", p.ID, gs.NextPoolID)
		}
		if _, dup := pools[p.ID]; dup {
			return fmt.Errorf("duplicate pool id %d", p.ID)
		}
		if other, dup := pairs[PairKey(p.Token0, p.Token1)]; dup {
			return fmt.Errorf("pools %d and %d share pair %s/%s", other, p.ID, p.Token0, p.Token1)
		}
		if err := p.Validate(); err != nil {
			return err
		}
		pools[p.ID] = p
		pairs[PairKey(p.Token0, p.Token1)] = p.ID
	}

	sums := make(map[uint64]math.Int, len(pools))
	seen := make(map[string]struct{}, len(gs.Positions))
	for _, pos := range gs.Positions {
		if err := pos.Validate(); err != nil {
			return err
		}
		if _, ok := pools[pos.PoolID]; !ok {
			return fmt.Errorf("position %s references unknown pool %d", pos.UserID, pos.PoolID)
		}
		key := fmt.Sprintf("%d/%s", pos.PoolID, pos.UserID)
		if _, dup := seen[key]; dup {
			return fmt.Errorf("duplicate position %s", key)
		}
		seen[key] = struct{}{}
		if s, ok := sums[pos.PoolID]; ok {
			sums[pos.PoolID] = s.Add(pos.LpShares)
		} else {
			sums[pos.PoolID] = pos.LpShares
		}
	}
	for id, p := range pools {
		got, ok := sums[id]
		if !ok {
			got = math.ZeroInt()
		}
		if !got.Equal(p.TotalLpShares) {
			return fmt.Errorf("pool %d positions sum to %s, total shares %s", id, got, p.TotalLpShares)
		}
	}
	return nil
}
