package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RateLimitConfig defines rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int
	Burst             int
	IdleTTL           time.Duration // per-IP limiters unused this long are dropped
}

// DefaultRateLimitConfig returns production-ready rate limit configuration.
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		RequestsPerSecond: 100,
		Burst:             200,
		IdleTTL:           10 * time.Minute,
	}
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// ipLimiter holds one token bucket per client IP
type ipLimiter struct {
	mu        sync.Mutex
	cfg       RateLimitConfig
	visitors  map[string]*visitor
	lastSweep time.Time
	now       func() time.Time
}

func newIPLimiter(cfg RateLimitConfig) *ipLimiter {
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = DefaultRateLimitConfig().IdleTTL
	}
	return &ipLimiter{
		cfg:      cfg,
		visitors: make(map[string]*visitor),
		now:      time.Now,
	}
}

func (l *ipLimiter) allow(ip string) bool {
	l.mu.Lock()
	now := l.now()

	if now.Sub(l.lastSweep) > l.cfg.IdleTTL {
		for key, v := range l.visitors {
			if now.Sub(v.lastSeen) > l.cfg.IdleTTL {
				delete(l.visitors, key)
			}
		}
		l.lastSweep = now
	}

	v, ok := l.visitors[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rate.Limit(l.cfg.RequestsPerSecond), l.cfg.Burst)}
		l.visitors[ip] = v
	}
	v.lastSeen = now
	limiter := v.limiter
	l.mu.Unlock()

	return limiter.Allow()
}

func (l *ipLimiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.visitors)
}

// RateLimit creates a per-IP rate limiting middleware.
func RateLimit(cfg RateLimitConfig) gin.HandlerFunc {
	limiter := newIPLimiter(cfg)

	return func(c *gin.Context) {
		if !limiter.allow(c.ClientIP()) {
			abortLimited(c)
			return
		}
		c.Next()
	}
}

func abortLimited(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
		"error": "rate limit exceeded",
	})
}
