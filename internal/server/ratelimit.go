package server

import (
	"os"
	"strconv"
	"sync"
	"time"
)

// tokenBucket is a per-client token bucket. Tokens refill at a steady rate up
// to the burst capacity.
type tokenBucket struct {
	capacity   int
	refillRate float64 // tokens per second
	tokens     float64
	lastRefill time.Time
	mu         sync.Mutex
}

func newTokenBucket(capacity int, refillRate float64) *tokenBucket {
	return &tokenBucket{
		capacity:   capacity,
		refillRate: refillRate,
		tokens:     float64(capacity), // Start with full bucket
		lastRefill: time.Now(),
	}
}

// allow checks if a token is available and consumes it if so.
func (tb *tokenBucket) allow() bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	now := time.Now()
	elapsed := now.Sub(tb.lastRefill)
	tb.tokens = min(float64(tb.capacity), tb.tokens+elapsed.Seconds()*tb.refillRate)
	tb.lastRefill = now

	if tb.tokens >= 1.0 {
		tb.tokens -= 1.0
		return true
	}
	return false
}

// RateLimitConfig holds rate limiting configuration. Model-calling endpoints
// get the modelLimit; everything else the defaultLimit, per window.
type RateLimitConfig struct {
	Enabled      bool
	DefaultLimit int
	ModelLimit   int
	Window       time.Duration
}

// LoadRateLimitConfig reads rate limit settings from the environment,
// falling back to permissive defaults.
func LoadRateLimitConfig() *RateLimitConfig {
	cfg := &RateLimitConfig{
		Enabled:      true,
		DefaultLimit: 120,
		ModelLimit:   20,
		Window:       time.Minute,
	}

	if v := os.Getenv("RATE_LIMIT_ENABLED"); v != "" {
		cfg.Enabled = v != "false" && v != "0"
	}
	if v := os.Getenv("RATE_LIMIT_DEFAULT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.DefaultLimit = n
		}
	}
	if v := os.Getenv("RATE_LIMIT_MODEL"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.ModelLimit = n
		}
	}
	return cfg
}

// limiter manages token buckets per client and endpoint class.
type limiter struct {
	config  *RateLimitConfig
	buckets map[string]*tokenBucket
	mu      sync.Mutex
}

func newLimiter(config *RateLimitConfig) *limiter {
	if config == nil {
		config = LoadRateLimitConfig()
	}
	return &limiter{
		config:  config,
		buckets: make(map[string]*tokenBucket),
	}
}

// allow reports whether the client may proceed. Model-calling endpoints are
// throttled harder than read endpoints.
func (l *limiter) allow(clientID string, modelEndpoint bool) bool {
	if !l.config.Enabled {
		return true
	}

	limit := l.config.DefaultLimit
	key := clientID
	if modelEndpoint {
		limit = l.config.ModelLimit
		key = clientID + ":model"
	}

	l.mu.Lock()
	bucket, ok := l.buckets[key]
	if !ok {
		bucket = newTokenBucket(limit, float64(limit)/l.config.Window.Seconds())
		l.buckets[key] = bucket
	}
	l.mu.Unlock()

	return bucket.allow()
}
