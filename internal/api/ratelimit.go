package api

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// IPRateLimiter enforces a per-address request budget: maxRequests per
// window, with the full budget available as burst.
type IPRateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
	window   time.Duration
}

func NewIPRateLimiter(window time.Duration, maxRequests int) *IPRateLimiter {
	if window <= 0 || maxRequests <= 0 {
		return nil
	}
	return &IPRateLimiter{
		visitors: make(map[string]*rate.Limiter),
		limit:    rate.Every(window / time.Duration(maxRequests)),
		burst:    maxRequests,
		window:   window,
	}
}

func (l *IPRateLimiter) limiterFor(addr string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	limiter, ok := l.visitors[addr]
	if !ok {
		limiter = rate.NewLimiter(l.limit, l.burst)
		l.visitors[addr] = limiter
	}
	return limiter
}

// Middleware rejects over-budget requests with 429. A nil limiter passes
// everything through, which keeps tests and disabled configs simple.
func (l *IPRateLimiter) Middleware(next http.Handler) http.Handler {
	if l == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.limiterFor(clientAddr(r)).Allow() {
			writeJSON(w, http.StatusTooManyRequests, map[string]string{
				"error":      "too many requests from this address, try again later",
				"retryAfter": l.window.String(),
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientAddr(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		parts := strings.Split(forwarded, ",")
		return strings.TrimSpace(parts[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
