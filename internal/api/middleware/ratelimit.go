package middleware

import (
	"net"
	"net/http"
	"sync"

	"golang.org/x/time/rate"

	"github.com/daxreyes/bushfire-beacon/internal/api/problem"
	"github.com/daxreyes/bushfire-beacon/internal/config"
)

// RateLimiter throttles requests per client IP, with a tighter budget for
// login attempts.
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	cfg      config.RateLimitConfig
}

func NewRateLimiter(cfg config.RateLimitConfig) *RateLimiter {
	return &RateLimiter{
		limiters: make(map[string]*rate.Limiter),
		cfg:      cfg,
	}
}

// Public throttles at the general per-minute budget.
func (l *RateLimiter) Public(next http.Handler) http.Handler {
	return l.limit(next, "public", l.cfg.PublicPerMinute)
}

// Login throttles credential-guessing at the aggressive per-minute budget.
func (l *RateLimiter) Login(next http.Handler) http.Handler {
	return l.limit(next, "login", l.cfg.LoginPerMinute)
}

func (l *RateLimiter) limit(next http.Handler, tier string, perMinute int) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if perMinute <= 0 {
			next.ServeHTTP(w, r)
			return
		}
		if !l.limiter(tier+"|"+clientIP(r), perMinute).Allow() {
			problem.Write(w, r, http.StatusTooManyRequests, "rate-limited", "Too many requests", nil, "")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (l *RateLimiter) limiter(key string, perMinute int) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	if limiter, ok := l.limiters[key]; ok {
		return limiter
	}
	limiter := rate.NewLimiter(rate.Limit(float64(perMinute)/60.0), perMinute)
	l.limiters[key] = limiter
	return limiter
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
