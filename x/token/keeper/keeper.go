package keeper

import (
	"context"
	"sort"
	"sync"

	"cosmossdk.io/log"
	"cosmossdk.io/math"

	"github.com/paw-chain/pawswap/x/token/types"
)

// Keeper is the token registry. Metadata is read by every other module.
type Keeper struct {
	logger log.Logger

	mu         sync.RWMutex
	tokens     map[string]types.Token
	referenced map[string]int
}

// NewKeeper returns an empty registry.
func NewKeeper(logger log.Logger) *Keeper {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &Keeper{
		logger:     logger.With("module", "x/"+types.ModuleName),
		tokens:     make(map[string]types.Token),
		referenced: make(map[string]int),
	}
}

// InitGenesis registers every token of the genesis state.
func (k *Keeper) InitGenesis(ctx context.Context, gs types.GenesisState) error {
	if err := gs.Validate(); err != nil {
		return err
	}
	for _, t := range gs.Tokens {
		if _, err := k.RegisterToken(ctx, t); err != nil {
			return err
		}
	}
	return nil
}

// ExportGenesis returns the registry content sorted by id.
func (k *Keeper) ExportGenesis(ctx context.Context) *types.GenesisState {
	return &types.GenesisState{Tokens: k.ListTokens(ctx)}
}

// RegisterToken adds a token or updates an unreferenced one. Re-registering
// identical metadata is a no-op apart from the price.
func (k *Keeper) RegisterToken(_ context.Context, token types.Token) (types.Token, error) {
	if err := token.Validate(); err != nil {
		return types.Token{}, err
	}

	k.mu.Lock()
	defer k.mu.Unlock()

	if existing, ok := k.tokens[token.ID]; ok {
		if !existing.SameMetadata(token) && k.referenced[token.ID] > 0 {
			return types.Token{}, types.ErrTokenImmutable.Wrapf("token %s is used by %d pool(s)", token.ID, k.referenced[token.ID])
		}
		if token.Price.IsNil() {
			token.Price = existing.Price
		}
	}

	k.tokens[token.ID] = token
	k.logger.Info("token registered", "id", token.ID, "symbol", token.Symbol, "decimals", token.Decimals)
	return token, nil
}

// GetToken returns a token by id.
func (k *Keeper) GetToken(_ context.Context, id string) (types.Token, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()

	t, ok := k.tokens[id]
	if !ok {
		return types.Token{}, types.ErrTokenNotFound.Wrapf("token %s", id)
	}
	return t, nil
}

// HasToken reports whether id is registered.
func (k *Keeper) HasToken(_ context.Context, id string) bool {
	k.mu.RLock()
	defer k.mu.RUnlock()
	_, ok := k.tokens[id]
	return ok
}

// ListTokens returns all tokens sorted by id.
func (k *Keeper) ListTokens(_ context.Context) []types.Token {
	k.mu.RLock()
	defer k.mu.RUnlock()

	out := make([]types.Token, 0, len(k.tokens))
	for _, t := range k.tokens {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// SetPrice updates the reference price. Allowed at any time.
func (k *Keeper) SetPrice(_ context.Context, id string, price math.LegacyDec) (types.Token, error) {
	if price.IsNil() {
		return types.Token{}, types.ErrInvalidPrice.Wrap("price is required")
	}
	if err := types.ValidatePrice(price); err != nil {
		return types.Token{}, err
	}

	k.mu.Lock()
	defer k.mu.Unlock()

	t, ok := k.tokens[id]
	if !ok {
		return types.Token{}, types.ErrTokenNotFound.Wrapf("token %s", id)
	}
	t.Price = price
	k.tokens[id] = t
	return t, nil
}

// MarkReferenced pins the metadata of id. Called once per pool using it.
func (k *Keeper) MarkReferenced(_ context.Context, id string) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	if _, ok := k.tokens[id]; !ok {
		return types.ErrTokenNotFound.Wrapf("token %s", id)
	}
	k.referenced[id]++
	return nil
}

// IsReferenced reports whether a live pool uses id.
func (k *Keeper) IsReferenced(_ context.Context, id string) bool {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return k.referenced[id] > 0
}
