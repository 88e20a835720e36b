package types

import (
	"fmt"

	"cosmossdk.io/math"
)

// GenesisState is the exported farm state.
type GenesisState struct {
	Params     Params         `json:"params"`
	Farms      []Farm         `json:"farms"`
	Positions  []FarmPosition `json:"positions"`
	NextFarmID uint64         `json:"nextFarmId"`
}

// DefaultGenesis returns the default genesis state for the farm module.
func DefaultGenesis() *GenesisState {
	return &GenesisState{
		Params:     DefaultParams(),
		Farms:      []Farm{},
		Positions:  []FarmPosition{},
		NextFarmID: 1,
	}
}

// Validate ensures the genesis state is well-formed.
func (gs GenesisState) Validate() error {
	if err := gs.Params.Validate(); err != nil {
		return err
	}

	farms := make(map[uint64]Farm, len(gs.Farms))
	for _, f := range gs.Farms {
		if f.ID == 0 || f.ID >= gs.NextFarmID {
			return fmt.Errorf("farm id %d outside [1, %d)", f.ID, gs.NextFarmID)
		}
		if _, dup := farms[f.ID]; dup {
			return fmt.Errorf("duplicate farm id %d", f.ID)
		}
		if err := f.Validate(); err != nil {
			return err
		}
		farms[f.ID] = f
	}

	staked := make(map[uint64]math.Int, len(farms))
	seen := make(map[string]struct{}, len(gs.Positions))
	for _, pos := range gs.Positions {
		if err := pos.Validate(); err != nil {
			return err
		}
		if _, ok := farms[pos.FarmID]; !ok {
			return fmt.Errorf("position %s references unknown farm %d", pos.UserID, pos.FarmID)
		}
		key := fmt.Sprintf("%d/%s", pos.FarmID, pos.UserID)
		if _, dup := seen[key]; dup {
			return fmt.Errorf("duplicate position %s", key)
		}
		seen[key] = struct{}{}
		if s, ok := staked[pos.FarmID]; ok {
			staked[pos.FarmID] = s.Add(pos.StakedAmount)
		} else {
			staked[pos.FarmID] = pos.StakedAmount
		}
	}
	for id, f := range farms {
		got, ok := staked[id]
		if !ok {
			got = math.ZeroInt()
		}
		if !got.Equal(f.TotalStaked) {
			return fmt.Errorf("farm %d positions stake %s, total staked %s", id, got, f.TotalStaked)
		}
	}
	return nil
}
