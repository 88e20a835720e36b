package types

import "fmt"

// GenesisState is the initial token list.
type GenesisState struct {
	Tokens []Token `json:"tokens"`
}

// DefaultGenesis returns an empty registry.
func DefaultGenesis() *GenesisState {
	return &GenesisState{Tokens: []Token{}}
}

// Validate checks every token and rejects duplicate ids.
func (gs GenesisState) Validate() error {
	seen := make(map[string]struct{}, len(gs.Tokens))
	for _, t := range gs.Tokens {
		if err := t.Validate(); err != nil {
			return err
		}
		if _, dup := seen[t.ID]; dup {
			return fmt.Errorf("duplicate token %s in genesis", t.ID)
		}
		seen[t.ID] = struct{}{}
	}
	return nil
}
