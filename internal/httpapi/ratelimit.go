package httpapi

import (
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// limiterIdleTTL is how long an address may stay silent before its bucket is
// dropped.
const limiterIdleTTL = 10 * time.Minute

type ipLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// IPRateLimiter keeps one token bucket per client address. It guards the
// console actions that call the performance service. Buckets idle for
// limiterIdleTTL are swept on a later lookup.
type IPRateLimiter struct {
	ips       map[string]*ipLimiter
	mu        sync.Mutex
	r         rate.Limit
	b         int
	now       func() time.Time
	lastSweep time.Time
}

func NewIPRateLimiter(r rate.Limit, b int) *IPRateLimiter {
	return &IPRateLimiter{
		ips: make(map[string]*ipLimiter),
		r:   r,
		b:   b,
		now: time.Now,
	}
}

func (i *IPRateLimiter) getLimiter(ip string) *rate.Limiter {
	i.mu.Lock()
	defer i.mu.Unlock()

	now := i.now()
	if i.lastSweep.IsZero() {
		i.lastSweep = now
	}
	if now.Sub(i.lastSweep) >= limiterIdleTTL {
		i.evictIdle(now)
		i.lastSweep = now
	}

	entry, ok := i.ips[ip]
	if !ok {
		entry = &ipLimiter{limiter: rate.NewLimiter(i.r, i.b)}
		i.ips[ip] = entry
	}
	entry.lastSeen = now
	return entry.limiter
}

// evictIdle drops buckets not used within limiterIdleTTL of now. Caller holds mu.
func (i *IPRateLimiter) evictIdle(now time.Time) {
	for ip, entry := range i.ips {
		if now.Sub(entry.lastSeen) >= limiterIdleTTL {
			delete(i.ips, ip)
		}
	}
}

func (i *IPRateLimiter) LimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !i.getLimiter(clientIP(r)).Allow() {
			w.Header().Set("HX-Retarget", "#errors")
			w.Header().Set("HX-Reswap", "innerHTML")
			http.Error(w, "Too Many Requests. Try again later.", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientIP strips the port so every connection from one host shares a bucket.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
