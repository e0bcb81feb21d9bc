package middlewares

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/dropDatabas3/clickauth/internal/http/errors"
	"github.com/dropDatabas3/clickauth/internal/observability/logger"
)

type ipLimiter struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// RateLimiter limita requests por IP con un token bucket por cliente.
type RateLimiter struct {
	name  string
	limit rate.Limit
	burst int

	mu      sync.Mutex
	clients map[string]*ipLimiter
	now     func() time.Time
	proxies *TrustedProxies
}

// NewRateLimiter permite perMinute requests por minuto y por IP, con ráfagas
// de hasta perMinute.
func NewRateLimiter(name string, perMinute int) *RateLimiter {
	if perMinute <= 0 {
		perMinute = 1
	}
	return &RateLimiter{
		name:    name,
		limit:   rate.Limit(float64(perMinute) / 60.0),
		burst:   perMinute,
		clients: make(map[string]*ipLimiter),
		now:     time.Now,
	}
}

// TrustProxies hace que la clave del cliente salga de X-Forwarded-For cuando
// el peer es uno de estos proxies. Sin llamarlo la clave es el peer TCP.
func (rl *RateLimiter) TrustProxies(t *TrustedProxies) *RateLimiter {
	rl.proxies = t
	return rl
}

func (rl *RateLimiter) get(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	c, ok := rl.clients[key]
	if !ok {
		c = &ipLimiter{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.clients[key] = c
	}
	c.lastAccess = rl.now()
	return c.limiter
}

// Allow consume un token para key.
func (rl *RateLimiter) Allow(key string) bool {
	return rl.get(key).Allow()
}

// Len es la cantidad de clientes con limiter vivo.
func (rl *RateLimiter) Len() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.clients)
}

// Prune borra los limiters sin uso hace más de idle.
func (rl *RateLimiter) Prune(idle time.Duration) int {
	cutoff := rl.now().Add(-idle)
	rl.mu.Lock()
	defer rl.mu.Unlock()
	n := 0
	for k, c := range rl.clients {
		if c.lastAccess.Before(cutoff) {
			delete(rl.clients, k)
			n++
		}
	}
	return n
}

// Run poda periódicamente hasta que ctx se cancela.
func (rl *RateLimiter) Run(ctx context.Context, every time.Duration) error {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			rl.Prune(2 * every)
		}
	}
}

// Middleware responde 429 con Retry-After cuando el cliente agota su cupo.
func (rl *RateLimiter) Middleware() Middleware {
	retryAfter := strconv.Itoa(int(math.Max(1, math.Ceil(1.0/float64(rl.limit)))))
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := rl.proxies.ClientIP(r)
			if !rl.Allow(ip) {
				logger.From(r.Context()).Warn("rate limit exceeded",
					logger.String("limiter", rl.name),
					logger.ClientIP(ip),
				)
				w.Header().Set("Retry-After", retryAfter)
				errors.WriteError(w, r, errors.ErrRateLimitExceeded)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
