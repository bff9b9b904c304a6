package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"

	"cajapos/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

// ── Per-IP token bucket ───────────────────────────────────────────────────────

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// IPRateLimiter keeps one token bucket per client IP. Idle buckets are
// dropped by a background sweep that stops with the context.
type IPRateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*limiterEntry
	rate     rate.Limit
	burst    int
	ttl      time.Duration
}

func NewIPRateLimiter(ctx context.Context, r rate.Limit, burst int) *IPRateLimiter {
	rl := &IPRateLimiter{
		limiters: make(map[string]*limiterEntry),
		rate:     r,
		burst:    burst,
		ttl:      10 * time.Minute,
	}
	go rl.sweep(ctx, 5*time.Minute)
	return rl
}

// Allow consumes one token for ip.
func (rl *IPRateLimiter) Allow(ip string) bool {
	rl.mu.Lock()
	e, ok := rl.limiters[ip]
	if !ok {
		e = &limiterEntry{limiter: rate.NewLimiter(rl.rate, rl.burst)}
		rl.limiters[ip] = e
	}
	e.lastSeen = time.Now()
	rl.mu.Unlock()
	return e.limiter.Allow()
}

// Middleware answers 429 with msg once the caller's bucket is empty.
func (rl *IPRateLimiter) Middleware(msg string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.Allow(c.ClientIP()) {
			c.Header("Retry-After", "60")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New(msg))
			return
		}
		c.Next()
	}
}

func (rl *IPRateLimiter) sweep(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rl.mu.Lock()
			purged := 0
			for ip, e := range rl.limiters {
				if time.Since(e.lastSeen) > rl.ttl {
					delete(rl.limiters, ip)
					purged++
				}
			}
			remaining := len(rl.limiters)
			rl.mu.Unlock()
			if purged > 0 {
				log.Debug().Int("purged", purged).Int("remaining", remaining).Msg("rate limiter purged")
			}
		}
	}
}

// LoginRateLimiter allows 20 login attempts per minute per IP.
func LoginRateLimiter(ctx context.Context) gin.HandlerFunc {
	return NewIPRateLimiter(ctx, rate.Every(3*time.Second), 20).
		Middleware("Demasiados intentos de login. Intente en 1 minuto.")
}

// RateLimiter is the general API limiter.
func RateLimiter(ctx context.Context, rps float64, burst int) gin.HandlerFunc {
	return NewIPRateLimiter(ctx, rate.Limit(rps), burst).
		Middleware("Demasiadas solicitudes. Intente nuevamente en un momento.")
}
