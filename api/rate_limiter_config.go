package api

import (
	"fmt"
	"net"
	"strings"
	"time"
)

// RateLimitConfig holds the complete rate limiting configuration
type RateLimitConfig struct {
	Enabled bool `mapstructure:"enabled" json:"enabled"`
	// Per client IP.
	DefaultRPS      int           `mapstructure:"default_rps" json:"default_rps"`
	DefaultBurst    int           `mapstructure:"default_burst" json:"default_burst"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval" json:"cleanup_interval"`
	// IdleTimeout drops the limiter of an IP not seen for this long.
	IdleTimeout time.Duration `mapstructure:"idle_timeout" json:"idle_timeout"`

	// Per-endpoint rate limits, shared by all clients. Keyed by path.
	EndpointLimits map[string]*EndpointLimit `mapstructure:"endpoint_limits" json:"endpoint_limits"`

	WhitelistCIDRs []string `mapstructure:"whitelist_cidrs" json:"whitelist_cidrs"`
}

// EndpointLimit defines rate limits for a specific endpoint
type EndpointLimit struct {
	Path    string `mapstructure:"path" json:"path"`
	Method  string `mapstructure:"method" json:"method"` // GET, POST, etc. Empty means all methods
	RPS     int    `mapstructure:"rps" json:"rps"`
	Burst   int    `mapstructure:"burst" json:"burst"`
	Enabled bool   `mapstructure:"enabled" json:"enabled"`
	// SkipIPLimit exempts the endpoint from the per-IP limit.
	SkipIPLimit   bool   `mapstructure:"skip_ip_limit" json:"skip_ip_limit"`
	CustomMessage string `mapstructure:"custom_message" json:"custom_message"`
}

// DefaultRateLimitConfig returns a default rate limiting configuration
func DefaultRateLimitConfig() *RateLimitConfig {
	return &RateLimitConfig{
		Enabled:         true,
		DefaultRPS:      50,
		DefaultBurst:    100,
		CleanupInterval: 5 * time.Minute,
		IdleTimeout:     10 * time.Minute,
		EndpointLimits: map[string]*EndpointLimit{
			"/api/v1/swap": {
				Path:    "/api/v1/swap",
				Method:  "POST",
				RPS:     200,
				Burst:   400,
				Enabled: true,
			},
			"/api/v1/swap/route": {
				Path:          "/api/v1/swap/route",
				Method:        "GET",
				RPS:           50,
				Burst:         100,
				Enabled:       true,
				CustomMessage: "Route search rate limit exceeded.",
			},
			"/api/v1/pools": {
				Path:    "/api/v1/pools",
				Method:  "POST",
				RPS:     5,
				Burst:   10,
				Enabled: true,
			},
			"/api/v1/farms": {
				Path:    "/api/v1/farms",
				Method:  "POST",
				RPS:     5,
				Burst:   10,
				Enabled: true,
			},
			"/health": {
				Path:        "/health",
				Method:      "GET",
				RPS:         1000,
				Burst:       2000,
				Enabled:     false, // No limit on health checks
				SkipIPLimit: true,
			},
		},
		WhitelistCIDRs: []string{"127.0.0.0/8", "::1/128"}, // Localhost
	}
}

// Validate validates the rate limit configuration
func (c *RateLimitConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.DefaultRPS <= 0 {
		return fmt.Errorf("default_rps must be greater than 0")
	}
	if c.DefaultBurst <= 0 {
		return fmt.Errorf("default_burst must be greater than 0")
	}
	if c.CleanupInterval <= 0 {
		c.CleanupInterval = 5 * time.Minute
	}
	if c.IdleTimeout <= 0 {
		c.IdleTimeout = 10 * time.Minute
	}

	// Validate endpoint limits
	for path, limit := range c.EndpointLimits {
		if limit.Enabled {
			if limit.RPS <= 0 {
				return fmt.Errorf("endpoint %s: rps must be greater than 0", path)
			}
			if limit.Burst <= 0 {
				return fmt.Errorf("endpoint %s: burst must be greater than 0", path)
			}
		}
	}

	for _, cidr := range c.WhitelistCIDRs {
		if _, _, err := net.ParseCIDR(cidr); err != nil {
			return fmt.Errorf("whitelist cidr %q: %w", cidr, err)
		}
	}
	return nil
}

// GetEndpointLimit returns the rate limit for a specific endpoint
func (c *RateLimitConfig) GetEndpointLimit(method, path string) *EndpointLimit {
	if limit, ok := c.EndpointLimits[path]; ok && (limit.Method == "" || limit.Method == method) {
		return limit
	}
	for _, limit := range c.EndpointLimits {
		if matchesPattern(path, limit.Path) && (limit.Method == "" || limit.Method == method) {
			return limit
		}
	}
	return nil
}

// matchesPattern checks if a path matches a pattern. A trailing "*" matches
// any suffix.
func matchesPattern(path, pattern string) bool {
	if pattern == "*" || pattern == path {
		return true
	}
	if prefix, ok := strings.CutSuffix(pattern, "*"); ok {
		return strings.HasPrefix(path, prefix)
	}
	return false
}

// RateLimitHeaders represents the standard rate limit headers
type RateLimitHeaders struct {
	Limit      int   `json:"limit"`
	Remaining  int   `json:"remaining"`
	Reset      int64 `json:"reset"`                // Unix timestamp
	RetryAfter int   `json:"retryAfter,omitempty"` // Seconds
}

// ToHeaders converts to HTTP headers map
func (h *RateLimitHeaders) ToHeaders() map[string]string {
	headers := map[string]string{
		"X-RateLimit-Limit":     fmt.Sprintf("%d", h.Limit),
		"X-RateLimit-Remaining": fmt.Sprintf("%d", h.Remaining),
		"X-RateLimit-Reset":     fmt.Sprintf("%d", h.Reset),
	}
	if h.RetryAfter > 0 {
		headers["Retry-After"] = fmt.Sprintf("%d", h.RetryAfter)
	}
	return headers
}
