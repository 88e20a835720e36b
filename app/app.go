// Package app wires the pawswap keepers together.
//
// The App owns the token registry, the dex and farm keepers, the audit store,
// the route cache and the event fanout that feeds the websocket stream. It
// integrates:
//   - a logical block clock for farm accrual
//   - an append-only audit log (memory or Postgres)
//   - a route cache (LRU or Redis)
//   - OpenTelemetry tracing
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cosmossdk.io/log"

	"github.com/paw-chain/pawswap/app/health"
	"github.com/paw-chain/pawswap/app/telemetry"
	"github.com/paw-chain/pawswap/pkg/audit"
	"github.com/paw-chain/pawswap/pkg/audit/memory"
	"github.com/paw-chain/pawswap/pkg/audit/postgres"
	"github.com/paw-chain/pawswap/pkg/blockclock"
	"github.com/paw-chain/pawswap/pkg/cache"
	dexkeeper "github.com/paw-chain/pawswap/x/dex/keeper"
	farmkeeper "github.com/paw-chain/pawswap/x/farm/keeper"
	"github.com/paw-chain/pawswap/x/shared/events"
	tokenkeeper "github.com/paw-chain/pawswap/x/token/keeper"
)

const (
	// Name is the application name
	Name = "pawswap"

	AuditBackendMemory   = "memory"
	AuditBackendPostgres = "postgres"
)

// Version is set at build time.
var Version = "dev"

// Config holds the application configuration.
type Config struct {
	Clock     ClockConfig      `mapstructure:"clock"`
	Audit     AuditConfig      `mapstructure:"audit"`
	Cache     cache.Config     `mapstructure:"cache"`
	Telemetry telemetry.Config `mapstructure:"telemetry"`
	Health    health.Config    `mapstructure:"health"`
}

// ClockConfig configures the block clock. One block is produced every
// BlockInterval since GenesisTime.
type ClockConfig struct {
	GenesisTime   time.Time     `mapstructure:"genesis_time"`
	BlockInterval time.Duration `mapstructure:"block_interval"`
}

// AuditConfig selects the audit store.
type AuditConfig struct {
	Backend string `mapstructure:"backend"`
	DSN     string `mapstructure:"dsn"`
}

// DefaultConfig returns a single-process configuration with in-memory stores.
func DefaultConfig() Config {
	return Config{
		Clock:     ClockConfig{BlockInterval: 5 * time.Second},
		Audit:     AuditConfig{Backend: AuditBackendMemory},
		Cache:     cache.DefaultConfig(),
		Telemetry: telemetry.DefaultConfig(),
		Health:    health.DefaultConfig(),
	}
}

// App is the assembled pawswap service.
type App struct {
	Logger log.Logger
	Clock  blockclock.Clock

	TokenKeeper *tokenkeeper.Keeper
	DexKeeper   *dexkeeper.Keeper
	FarmKeeper  *farmkeeper.Keeper
	Vault       *StakeVault

	Audit      audit.Store
	RouteCache cache.Cache
	Events     *events.Fanout
	Breakers   *CircuitBreakerCoordinator
	Health     *health.Checker
	Telemetry  *telemetry.Provider
}

// Option customizes New.
type Option func(*options)

type options struct {
	clock blockclock.Clock
	store audit.Store
}

// WithClock replaces the configured block clock.
func WithClock(c blockclock.Clock) Option {
	return func(o *options) { o.clock = c }
}

// WithAuditStore replaces the configured audit store.
func WithAuditStore(s audit.Store) Option {
	return func(o *options) { o.store = s }
}

// New builds every keeper from cfg.
func New(ctx context.Context, logger log.Logger, cfg Config, opts ...Option) (*App, error) {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	app := &App{Logger: logger, Events: events.NewFanout()}

	cfg.Telemetry.ServiceVersion = Version
	tp, err := telemetry.NewProvider(cfg.Telemetry)
	if err != nil {
		return nil, fmt.Errorf("telemetry: %w", err)
	}
	app.Telemetry = tp

	app.Clock = o.clock
	if app.Clock == nil {
		genesis := cfg.Clock.GenesisTime
		if genesis.IsZero() {
			genesis = time.Now()
		}
		app.Clock = blockclock.NewInterval(genesis, cfg.Clock.BlockInterval)
	}

	app.Audit = o.store
	if app.Audit == nil {
		if app.Audit, err = openAuditStore(ctx, cfg.Audit); err != nil {
			_ = app.Close(ctx)
			return nil, err
		}
	}

	if app.RouteCache, err = cache.New(cfg.Cache); err != nil {
		logger.Error("route cache unavailable, routing uncached", "backend", cfg.Cache.Backend, "error", err)
		app.RouteCache = nil
	}

	app.TokenKeeper = tokenkeeper.NewKeeper(logger)
	app.DexKeeper = dexkeeper.NewKeeper(logger, app.TokenKeeper, app.Audit, app.Clock, app.Events)
	if app.RouteCache != nil {
		app.DexKeeper.SetRouteCache(app.RouteCache)
	}
	app.Vault = NewStakeVault(app.DexKeeper)
	app.FarmKeeper = farmkeeper.NewKeeper(logger, app.TokenKeeper, app.Vault, app.Audit, app.Clock, app.Events)

	app.Breakers = NewCircuitBreakerCoordinator(logger, app.DexKeeper, app.FarmKeeper, app.Events)
	app.Events.Add(app.Breakers)

	app.Health = health.NewChecker(logger, cfg.Health, Version)
	app.Health.Register(app.healthComponents()...)

	logger.Info("app initialized", "audit", cfg.Audit.Backend, "cache", cfg.Cache.Backend, "tracing", cfg.Telemetry.Enabled)
	return app, nil
}

func openAuditStore(ctx context.Context, cfg AuditConfig) (audit.Store, error) {
	switch cfg.Backend {
	case "", AuditBackendMemory:
		return memory.NewStore(), nil
	case AuditBackendPostgres:
		if cfg.DSN == "" {
			return nil, fmt.Errorf("audit backend postgres requires a dsn")
		}
		return postgres.Open(ctx, cfg.DSN)
	default:
		return nil, fmt.Errorf("unknown audit backend %q", cfg.Backend)
	}
}

// InitGenesis loads gs into the keepers.
func (app *App) InitGenesis(ctx context.Context, gs GenesisState) error {
	if err := gs.Validate(); err != nil {
		return err
	}
	if err := app.TokenKeeper.InitGenesis(ctx, gs.Token); err != nil {
		return fmt.Errorf("token genesis: %w", err)
	}
	if err := app.DexKeeper.InitGenesis(ctx, gs.Dex); err != nil {
		return fmt.Errorf("dex genesis: %w", err)
	}
	if err := app.FarmKeeper.InitGenesis(ctx, gs.Farm); err != nil {
		return fmt.Errorf("farm genesis: %w", err)
	}
	for _, f := range gs.Farm.Farms {
		app.Vault.Restore(f.ID, f.StakeToken, f.TotalStaked)
	}
	return nil
}

// ExportGenesis snapshots every module.
func (app *App) ExportGenesis(ctx context.Context) GenesisState {
	return GenesisState{
		Token: *app.TokenKeeper.ExportGenesis(ctx),
		Dex:   *app.DexKeeper.ExportGenesis(ctx),
		Farm:  *app.FarmKeeper.ExportGenesis(ctx),
	}
}

// CheckInvariants runs every module's invariants.
func (app *App) CheckInvariants(ctx context.Context) error {
	return errors.Join(app.DexKeeper.CheckInvariants(ctx), app.FarmKeeper.CheckInvariants(ctx))
}

// Close releases the stores and flushes telemetry.
func (app *App) Close(ctx context.Context) error {
	var errs []error
	if app.RouteCache != nil {
		errs = append(errs, app.RouteCache.Close())
	}
	if app.Audit != nil {
		errs = append(errs, app.Audit.Close())
	}
	if app.Telemetry != nil {
		errs = append(errs, app.Telemetry.Shutdown(ctx))
	}
	return errors.Join(errs...)
}
