// Package network runs an in-process pawswapd API server for tests.
package network

import (
	"context"
	"net/http/httptest"
	"testing"

	"cosmossdk.io/log"
	"cosmossdk.io/math"
	"github.com/stretchr/testify/require"

	"github.com/paw-chain/pawswap/api"
	"github.com/paw-chain/pawswap/api/client"
	"github.com/paw-chain/pawswap/app"
	"github.com/paw-chain/pawswap/pkg/blockclock"
	tokentypes "github.com/paw-chain/pawswap/x/token/types"
)

// Config describes the network's genesis and server settings.
type Config struct {
	Genesis app.GenesisState
	API     *api.Config
	// StartHeight is the block the manual clock starts at.
	StartHeight uint64
}

// DefaultConfig registers upaw, uatom and uusdc and lowers the minimum
// liquidity so small test deposits are accepted.
func DefaultConfig() Config {
	gs := app.NewDefaultGenesisState()
	gs.Token.Tokens = append(app.DefaultTokens(),
		tokentypes.Token{ID: "uatom", Symbol: "ATOM", Name: "Cosmos", Decimals: 6, Price: math.LegacyNewDec(10)},
		tokentypes.Token{ID: "uusdc", Symbol: "USDC", Name: "USD Coin", Decimals: 6, Price: math.LegacyOneDec()},
	)
	gs.Dex.Params.MinimumLiquidity = math.NewInt(10)

	apiCfg := api.DefaultConfig()
	apiCfg.RateLimit.Enabled = false
	return Config{Genesis: gs, API: apiCfg, StartHeight: 1}
}

// Network is a running app behind an httptest server.
type Network struct {
	App    *app.App
	Server *api.Server
	Clock  *blockclock.Manual
	HTTP   *httptest.Server
	// URL is the server's base URL, without the /api/v1 prefix.
	URL string
}

// New starts a network that is shut down when the test ends.
func New(t testing.TB, cfg Config) *Network {
	t.Helper()

	ctx := context.Background()
	clock := blockclock.NewManual(cfg.StartHeight)
	a, err := app.New(ctx, log.NewNopLogger(), app.DefaultConfig(), app.WithClock(clock))
	require.NoError(t, err)
	require.NoError(t, a.InitGenesis(ctx, cfg.Genesis))

	srv, err := api.NewServer(log.NewNopLogger(), a, cfg.API)
	require.NoError(t, err)

	hubCtx, cancel := context.WithCancel(ctx)
	go srv.Hub().Run(hubCtx)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		ts.Close()
		cancel()
		_ = a.Close(context.Background())
	})

	return &Network{App: a, Server: srv, Clock: clock, HTTP: ts, URL: ts.URL}
}

// Client returns an API client pointed at the network.
func (n *Network) Client() *client.Client {
	return client.New(client.Config{BaseURL: n.URL})
}

// WaitForNextBlock advances the clock by one block and returns the new height.
func (n *Network) WaitForNextBlock() uint64 {
	n.Clock.Advance(1)
	return n.Clock.CurrentBlock()
}

// AdvanceBlocks moves the clock forward by blocks.
func (n *Network) AdvanceBlocks(blocks uint64) uint64 {
	n.Clock.Advance(blocks)
	return n.Clock.CurrentBlock()
}
