package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/paw-chain/pawswap/app/health"
	"github.com/paw-chain/pawswap/pkg/audit"
	"github.com/paw-chain/pawswap/pkg/cache"
	dextypes "github.com/paw-chain/pawswap/x/dex/types"
)

const cacheCheckKey = "pawswap:health:check"

func (app *App) healthComponents() []health.Component {
	return []health.Component{
		{Name: "audit", Fn: app.checkAudit},
		{Name: "cache", Fn: app.checkCache},
		{Name: "dex", Fn: app.checkDex},
		{Name: "farms", Fn: app.checkFarms},
		{Name: "telemetry", Fn: app.checkTelemetry},
		{Name: "invariants", Detailed: true, Fn: app.checkInvariants},
	}
}

func componentStatus(status health.Status, msg string) health.ComponentHealth {
	return health.ComponentHealth{Status: status, Message: msg, Timestamp: time.Now()}
}

func (app *App) checkAudit(ctx context.Context) health.ComponentHealth {
	if _, err := app.Audit.Query(ctx, audit.Filter{Limit: 1}); err != nil {
		return componentStatus(health.StatusUnhealthy, fmt.Sprintf("audit store: %v", err))
	}
	return componentStatus(health.StatusHealthy, "audit store reachable")
}

func (app *App) checkCache(ctx context.Context) health.ComponentHealth {
	if app.RouteCache == nil {
		return componentStatus(health.StatusDegraded, "route cache disabled")
	}
	if _, err := app.RouteCache.Get(ctx, cacheCheckKey); err != nil && !errors.Is(err, cache.ErrCacheMiss) {
		return componentStatus(health.StatusDegraded, fmt.Sprintf("route cache: %v", err))
	}
	return componentStatus(health.StatusHealthy, "route cache reachable")
}

func (app *App) checkDex(ctx context.Context) health.ComponentHealth {
	status := app.Breakers.GetGlobalStatus(ctx)
	pools := app.DexKeeper.ListPools(ctx)
	h := componentStatus(health.StatusHealthy, "all pools open")
	if !app.Breakers.IsDEXAvailable(ctx) {
		h = componentStatus(health.StatusDegraded, fmt.Sprintf("%d pools halted", len(status.HaltedPools)))
	}
	h.Metrics = map[string]interface{}{
		"pools":         len(pools),
		"haltedPools":   len(status.HaltedPools),
		"affectedFarms": len(status.AffectedFarms),
		"blockHeight":   app.Clock.CurrentBlock(),
	}
	return h
}

// checkFarms reports farms whose stake token is the LP share of a halted pool.
// Those farms cannot stake or unstake until the pool resumes.
func (app *App) checkFarms(ctx context.Context) health.ComponentHealth {
	farms := app.FarmKeeper.ListFarms(ctx)
	blocked := make([]uint64, 0)
	for _, f := range farms {
		err := app.Breakers.CheckDependenciesForFarm(ctx, f.ID)
		switch {
		case err == nil:
		case errors.Is(err, dextypes.ErrPoolHalted):
			blocked = append(blocked, f.ID)
		default:
			return componentStatus(health.StatusUnhealthy, fmt.Sprintf("farm %d: %v", f.ID, err))
		}
	}

	h := componentStatus(health.StatusHealthy, "all farms writable")
	if len(blocked) > 0 {
		h = componentStatus(health.StatusDegraded, fmt.Sprintf("%d farms stake shares of halted pools", len(blocked)))
	}
	h.Metrics = map[string]interface{}{
		"farms":        len(farms),
		"blockedFarms": blocked,
	}
	return h
}

func (app *App) checkTelemetry(_ context.Context) health.ComponentHealth {
	if err := app.Telemetry.HealthCheck(); err != nil {
		return componentStatus(health.StatusDegraded, err.Error())
	}
	return componentStatus(health.StatusHealthy, "")
}

func (app *App) checkInvariants(ctx context.Context) health.ComponentHealth {
	if err := app.CheckInvariants(ctx); err != nil {
		return componentStatus(health.StatusUnhealthy, err.Error())
	}
	return componentStatus(health.StatusHealthy, "invariants hold")
}
