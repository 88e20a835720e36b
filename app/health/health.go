// Package health reports the status of pawswap's components.
//
// Every component registers a check. The endpoints are:
// - /health - liveness
// - /health/ready - readiness for load balancers, 503 when a component is unhealthy
// - /health/detailed - every check, including the expensive ones
package health

import (
	"context"
	"net/http"
	"sort"
	"sync"
	"time"

	"cosmossdk.io/log"
	"github.com/gin-gonic/gin"
)

// Status represents the health status of a component
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"
	StatusUnhealthy Status = "unhealthy"
	StatusUnknown   Status = "unknown"
)

// ComponentHealth represents the health status of a single component
type ComponentHealth struct {
	Status    Status                 `json:"status"`
	Message   string                 `json:"message,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	Metrics   map[string]interface{} `json:"metrics,omitempty"`
}

// HealthCheck represents the overall health check response
type HealthCheck struct {
	Status     Status                     `json:"status"`
	Timestamp  time.Time                  `json:"timestamp"`
	Version    string                     `json:"version,omitempty"`
	Components map[string]ComponentHealth `json:"components,omitempty"`
}

// CheckFunc checks one component.
type CheckFunc func(ctx context.Context) ComponentHealth

// Component is a named component check. Detailed checks only run for /health/detailed.
type Component struct {
	Name     string
	Detailed bool
	Fn       CheckFunc
}

// Checker runs checks in parallel and caches the cheap result set.
type Checker struct {
	logger  log.Logger
	version string

	maxResponseTime time.Duration
	cacheDuration   time.Duration

	mu           sync.RWMutex
	checks       []Component
	lastCheck    time.Time
	cachedHealth *HealthCheck
}

// Config holds configuration for the health checker
type Config struct {
	// MaxResponseTime bounds every check.
	MaxResponseTime time.Duration `mapstructure:"max_response_time"`

	// CacheDuration is how long to cache health check results
	CacheDuration time.Duration `mapstructure:"cache_duration"`
}

// DefaultConfig returns the default health check configuration
func DefaultConfig() Config {
	return Config{
		MaxResponseTime: 2 * time.Second,
		CacheDuration:   5 * time.Second,
	}
}

// NewChecker creates a new health checker
func NewChecker(logger log.Logger, cfg Config, version string) *Checker {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	if cfg.MaxResponseTime <= 0 {
		cfg.MaxResponseTime = DefaultConfig().MaxResponseTime
	}
	return &Checker{
		logger:          logger,
		version:         version,
		maxResponseTime: cfg.MaxResponseTime,
		cacheDuration:   cfg.CacheDuration,
	}
}

// Register adds checks. It invalidates the cached result.
func (c *Checker) Register(checks ...Component) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checks = append(c.checks, checks...)
	c.cachedHealth = nil
}

// Check performs a comprehensive health check
func (c *Checker) Check(ctx context.Context, detailed bool) *HealthCheck {
	if !detailed {
		if cached := c.cached(); cached != nil {
			return cached
		}
	}

	health := &HealthCheck{
		Timestamp:  time.Now(),
		Version:    c.version,
		Components: make(map[string]ComponentHealth),
	}

	c.mu.RLock()
	checks := append([]Component(nil), c.checks...)
	c.mu.RUnlock()

	var wg sync.WaitGroup
	var mu sync.Mutex
	for _, p := range checks {
		if p.Detailed && !detailed {
			continue
		}
		wg.Add(1)
		go func(p Component) {
			defer wg.Done()
			result := c.run(ctx, p)
			mu.Lock()
			health.Components[p.Name] = result
			mu.Unlock()
		}(p)
	}
	wg.Wait()

	health.Status = calculateOverallStatus(health.Components)

	if !detailed {
		c.mu.Lock()
		c.lastCheck = time.Now()
		c.cachedHealth = health
		c.mu.Unlock()
	}
	return health
}

func (c *Checker) run(ctx context.Context, p Component) (result ComponentHealth) {
	timeoutCtx, cancel := context.WithTimeout(ctx, c.maxResponseTime)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("health check panicked", "component", p.Name, "panic", r)
			result = ComponentHealth{Status: StatusUnhealthy, Message: "check panicked", Timestamp: time.Now()}
		}
	}()

	start := time.Now()
	result = p.Fn(timeoutCtx)
	if result.Timestamp.IsZero() {
		result.Timestamp = time.Now()
	}
	if result.Metrics == nil {
		result.Metrics = make(map[string]interface{})
	}
	result.Metrics["responseTimeMs"] = time.Since(start).Milliseconds()
	if result.Status == StatusUnhealthy {
		c.logger.Error("component unhealthy", "component", p.Name, "message", result.Message)
	}
	return result
}

// calculateOverallStatus is the worst component status.
func calculateOverallStatus(components map[string]ComponentHealth) Status {
	hasUnhealthy := false
	hasDegraded := false

	for _, component := range components {
		switch component.Status {
		case StatusUnhealthy:
			hasUnhealthy = true
		case StatusDegraded, StatusUnknown:
			hasDegraded = true
		}
	}

	if hasUnhealthy {
		return StatusUnhealthy
	}
	if hasDegraded {
		return StatusDegraded
	}
	return StatusHealthy
}

func (c *Checker) cached() *HealthCheck {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.cachedHealth == nil || time.Since(c.lastCheck) >= c.cacheDuration {
		return nil
	}
	return c.cachedHealth
}

// Names lists the registered checks.
func (c *Checker) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, 0, len(c.checks))
	for _, p := range c.checks {
		out = append(out, p.Name)
	}
	sort.Strings(out)
	return out
}

// RegisterRoutes registers health check endpoints
func (c *Checker) RegisterRoutes(router gin.IRouter) {
	router.GET("/health", c.handleHealth)
	router.GET("/health/ready", c.handleHealthReady)
	router.GET("/health/detailed", c.handleHealthDetailed)
}

func (c *Checker) handleHealth(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

func (c *Checker) handleHealthReady(ctx *gin.Context) {
	c.respond(ctx, c.Check(ctx.Request.Context(), false))
}

func (c *Checker) handleHealthDetailed(ctx *gin.Context) {
	c.respond(ctx, c.Check(ctx.Request.Context(), true))
}

func (c *Checker) respond(ctx *gin.Context, health *HealthCheck) {
	statusCode := http.StatusOK
	if health.Status == StatusUnhealthy {
		statusCode = http.StatusServiceUnavailable
	}
	ctx.JSON(statusCode, health)
}
