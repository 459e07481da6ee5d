package middleware

import (
	"context"
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const visitorTTL = 10 * time.Minute

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// IPRateLimiter hands out one token bucket per client IP.
type IPRateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	rps      rate.Limit
	burst    int
}

// NewIPRateLimiter creates a limiter allowing rps requests per second with
// the given burst for each IP.
func NewIPRateLimiter(rps float64, burst int) *IPRateLimiter {
	return &IPRateLimiter{
		visitors: make(map[string]*visitor),
		rps:      rate.Limit(rps),
		burst:    burst,
	}
}

// Allow reports whether a request from ip may proceed now.
func (rl *IPRateLimiter) Allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	v, exists := rl.visitors[ip]
	if !exists {
		v = &visitor{limiter: rate.NewLimiter(rl.rps, rl.burst)}
		rl.visitors[ip] = v
	}
	v.lastSeen = time.Now()
	return v.limiter.Allow()
}

// Sweep forgets visitors idle for longer than ttl.
func (rl *IPRateLimiter) Sweep(ttl time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	for ip, v := range rl.visitors {
		if time.Since(v.lastSeen) > ttl {
			delete(rl.visitors, ip)
		}
	}
}

// Run sweeps idle visitors every interval until ctx is done.
func (rl *IPRateLimiter) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rl.Sweep(visitorTTL)
		}
	}
}

// RateLimit returns middleware that limits requests per IP address.
// rps is the allowed requests per second, burst is the maximum burst size.
// Idle visitors are swept in the background until ctx is done.
func RateLimit(ctx context.Context, rps float64, burst int) func(http.Handler) http.Handler {
	limiter := NewIPRateLimiter(rps, burst)
	go limiter.Run(ctx, visitorTTL)
	return RateLimitWith(limiter)
}

// RateLimitWith returns middleware enforcing limiter. Clients are keyed by
// the connection's RemoteAddr; forwarding headers are ignored since any
// client can set them.
func RateLimitWith(limiter *IPRateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				ip = r.RemoteAddr
			}

			if !limiter.Allow(ip) {
				w.Header().Set("Retry-After", "1")
				writeJSONError(w, http.StatusTooManyRequests, "too many requests")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
