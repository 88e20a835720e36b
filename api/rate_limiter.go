package api

import (
	"context"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter enforces per-endpoint and per-IP token buckets.
type RateLimiter struct {
	config *RateLimitConfig

	endpointLimiters map[string]*rate.Limiter
	ipLimiters       *sync.Map // map[string]*IPLimiter
	whitelist        []*net.IPNet

	rejected atomic.Int64
}

// IPLimiter tracks rate limits for an IP address
type IPLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
	mu       sync.Mutex
}

// NewRateLimiter builds the limiters described by config. The config must
// have been validated.
func NewRateLimiter(config *RateLimitConfig) *RateLimiter {
	rl := &RateLimiter{
		config:           config,
		endpointLimiters: make(map[string]*rate.Limiter),
		ipLimiters:       &sync.Map{},
	}
	for path, limit := range config.EndpointLimits {
		if limit.Enabled {
			rl.endpointLimiters[path] = rate.NewLimiter(rate.Limit(limit.RPS), limit.Burst)
		}
	}
	for _, cidr := range config.WhitelistCIDRs {
		if _, n, err := net.ParseCIDR(cidr); err == nil {
			rl.whitelist = append(rl.whitelist, n)
		}
	}
	return rl
}

// CheckLimit reports whether a request from ip to method/path may proceed.
// The endpoint limit applies first, then the IP limit.
func (rl *RateLimiter) CheckLimit(ip, method, path string) (bool, *RateLimitHeaders, string) {
	var endpointHeaders *RateLimitHeaders
	endpointLimit := rl.config.GetEndpointLimit(method, path)
	if endpointLimit != nil && endpointLimit.Enabled {
		if limiter, ok := rl.endpointLimiters[endpointLimit.Path]; ok {
			allowed, headers := reserve(limiter, endpointLimit.RPS, endpointLimit.Burst)
			if !allowed {
				rl.rejected.Add(1)
				return false, headers, endpointLimit.CustomMessage
			}
			endpointHeaders = headers
		}
	}

	if endpointLimit != nil && endpointLimit.SkipIPLimit {
		return true, endpointHeaders, ""
	}
	if rl.isWhitelisted(ip) {
		return true, endpointHeaders, ""
	}

	limiter := rl.getOrCreateIPLimiter(ip)
	limiter.mu.Lock()
	limiter.lastSeen = time.Now()
	allowed, headers := reserve(limiter.limiter, rl.config.DefaultRPS, rl.config.DefaultBurst)
	limiter.mu.Unlock()
	if !allowed {
		rl.rejected.Add(1)
	}
	return allowed, headers, ""
}

func reserve(limiter *rate.Limiter, rps, burst int) (bool, *RateLimitHeaders) {
	reservation := limiter.Reserve()
	if !reservation.OK() {
		return false, &RateLimitHeaders{
			Limit:      rps,
			Reset:      time.Now().Add(time.Second).Unix(),
			RetryAfter: 1,
		}
	}
	if delay := reservation.Delay(); delay > 0 {
		reservation.Cancel()
		return false, &RateLimitHeaders{
			Limit:      rps,
			Reset:      time.Now().Add(delay).Unix(),
			RetryAfter: int(delay.Seconds()) + 1,
		}
	}
	remaining := int(limiter.Tokens())
	if remaining < 0 {
		remaining = 0
	}
	return true, &RateLimitHeaders{
		Limit:     rps,
		Remaining: min(remaining, burst),
		Reset:     time.Now().Add(time.Second).Unix(),
	}
}

func (rl *RateLimiter) getOrCreateIPLimiter(ip string) *IPLimiter {
	if v, ok := rl.ipLimiters.Load(ip); ok {
		return v.(*IPLimiter)
	}
	v, _ := rl.ipLimiters.LoadOrStore(ip, &IPLimiter{
		limiter:  rate.NewLimiter(rate.Limit(rl.config.DefaultRPS), rl.config.DefaultBurst),
		lastSeen: time.Now(),
	})
	return v.(*IPLimiter)
}

func (rl *RateLimiter) isWhitelisted(ip string) bool {
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return false
	}
	for _, n := range rl.whitelist {
		if n.Contains(parsed) {
			return true
		}
	}
	return false
}

// Run drops idle IP limiters every CleanupInterval until ctx is done.
func (rl *RateLimiter) Run(ctx context.Context) {
	ticker := time.NewTicker(rl.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanup(time.Now())
		case <-ctx.Done():
			return
		}
	}
}

func (rl *RateLimiter) cleanup(now time.Time) {
	rl.ipLimiters.Range(func(key, value interface{}) bool {
		limiter := value.(*IPLimiter)
		limiter.mu.Lock()
		lastSeen := limiter.lastSeen
		limiter.mu.Unlock()

		if now.Sub(lastSeen) > rl.config.IdleTimeout {
			rl.ipLimiters.Delete(key)
		}
		return true
	})
}

// GetStats returns statistics about the rate limiter
func (rl *RateLimiter) GetStats() map[string]interface{} {
	ipCount := 0
	rl.ipLimiters.Range(func(_, _ interface{}) bool {
		ipCount++
		return true
	})

	return map[string]interface{}{
		"ipLimiters":       ipCount,
		"endpointLimiters": len(rl.endpointLimiters),
		"rejected":         rl.rejected.Load(),
		"enabled":          rl.config.Enabled,
	}
}
