package app

import (
	"encoding/json"
	"fmt"
	"os"

	"cosmossdk.io/math"
	"github.com/spf13/cast"

	dextypes "github.com/paw-chain/pawswap/x/dex/types"
	farmtypes "github.com/paw-chain/pawswap/x/farm/types"
	tokentypes "github.com/paw-chain/pawswap/x/token/types"
)

// GenesisState is the initial state of every module.
type GenesisState struct {
	Token tokentypes.GenesisState `json:"token"`
	Dex   dextypes.GenesisState   `json:"dex"`
	Farm  farmtypes.GenesisState  `json:"farm"`
}

// NewDefaultGenesisState returns empty module state with default params.
func NewDefaultGenesisState() GenesisState {
	return GenesisState{
		Token: *tokentypes.DefaultGenesis(),
		Dex:   *dextypes.DefaultGenesis(),
		Farm:  *farmtypes.DefaultGenesis(),
	}
}

// Validate checks every module's genesis.
func (gs GenesisState) Validate() error {
	if err := gs.Token.Validate(); err != nil {
		return fmt.Errorf("token genesis: %w", err)
	}
	if err := gs.Dex.Validate(); err != nil {
		return fmt.Errorf("dex genesis: %w", err)
	}
	if err := gs.Farm.Validate(); err != nil {
		return fmt.Errorf("farm genesis: %w", err)
	}
	return nil
}

// ReadGenesisFile loads a JSON genesis file.
func ReadGenesisFile(path string) (GenesisState, error) {
	bz, err := os.ReadFile(path)
	if err != nil {
		return GenesisState{}, fmt.Errorf("read genesis: %w", err)
	}
	gs := NewDefaultGenesisState()
	if err := json.Unmarshal(bz, &gs); err != nil {
		return GenesisState{}, fmt.Errorf("decode genesis %s: %w", path, err)
	}
	return gs, nil
}

// WriteGenesisFile stores gs as indented JSON.
func WriteGenesisFile(path string, gs GenesisState) error {
	bz, err := json.MarshalIndent(gs, "", "  ")
	if err != nil {
		return fmt.Errorf("encode genesis: %w", err)
	}
	return os.WriteFile(path, bz, 0o600)
}

// TokensFromConfig converts loosely typed token entries, as decoded from a
// YAML or TOML config file, into registry tokens.
func TokensFromConfig(entries []interface{}) ([]tokentypes.Token, error) {
	out := make([]tokentypes.Token, 0, len(entries))
	for i, raw := range entries {
		m, err := cast.ToStringMapE(raw)
		if err != nil {
			return nil, fmt.Errorf("token %d: %w", i, err)
		}
		decimals, err := cast.ToUint32E(m["decimals"])
		if err != nil {
			return nil, fmt.Errorf("token %d decimals: %w", i, err)
		}
		tok := tokentypes.Token{
			ID:       cast.ToString(m["id"]),
			Symbol:   cast.ToString(m["symbol"]),
			Name:     cast.ToString(m["name"]),
			Decimals: decimals,
		}
		if p := cast.ToString(m["price"]); p != "" {
			price, err := math.LegacyNewDecFromStr(p)
			if err != nil {
				return nil, fmt.Errorf("token %s price: %w", tok.ID, err)
			}
			tok.Price = price
		}
		if err := tok.Validate(); err != nil {
			return nil, err
		}
		out = append(out, tok)
	}
	return out, nil
}
