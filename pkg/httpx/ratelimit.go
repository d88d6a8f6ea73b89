package httpx

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/aussiebroadwan/washpay/pkg/slogx"
	"golang.org/x/time/rate"
)

// RateLimitConfig allows Requests per Window with bursts of up to Burst.
type RateLimitConfig struct {
	Requests int
	Window   time.Duration
	Burst    int
}

// Profiles used by the checkout routes.
var (
	// ModerateLimit guards routes that sign payment requests or hit the
	// backend: 20 per minute per client.
	ModerateLimit = RateLimitConfig{Requests: 20, Window: time.Minute, Burst: 20}

	// LenientLimit guards cheap reads and gateway callbacks: 100 per minute.
	LenientLimit = RateLimitConfig{Requests: 100, Window: time.Minute, Burst: 100}
)

func (c RateLimitConfig) limit() rate.Limit {
	if c.Requests <= 0 || c.Window <= 0 {
		return rate.Inf
	}
	return rate.Limit(float64(c.Requests) / c.Window.Seconds())
}

// KeyFunc groups requests that share a budget. An empty key is not limited.
type KeyFunc func(*http.Request) string

// ClientIP keys requests by the first X-Forwarded-For hop, then X-Real-IP,
// then the connection's remote address.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter holds one token bucket per key. Buckets idle for longer than
// the window (or a minute, whichever is longer) are dropped.
type RateLimiter struct {
	config RateLimitConfig
	key    KeyFunc
	now    func() time.Time

	// OnReject, if set, is called for every rejected request.
	OnReject func(r *http.Request, key string)

	mu        sync.Mutex
	buckets   map[string]*limiterEntry
	idleAfter time.Duration
	lastSweep time.Time
}

// NewRateLimiter creates a limiter keyed by key.
func NewRateLimiter(config RateLimitConfig, key KeyFunc) *RateLimiter {
	return &RateLimiter{
		config:    config,
		key:       key,
		now:       time.Now,
		buckets:   make(map[string]*limiterEntry),
		idleAfter: max(config.Window, time.Minute),
		lastSweep: time.Now(),
	}
}

// Allow takes one token from key's bucket. When none is available it returns
// false and how long until one will be.
func (rl *RateLimiter) Allow(key string) (bool, time.Duration) {
	now := rl.now()

	rl.mu.Lock()
	entry, ok := rl.buckets[key]
	if !ok {
		entry = &limiterEntry{limiter: rate.NewLimiter(rl.config.limit(), rl.config.Burst)}
		rl.buckets[key] = entry
	}
	entry.lastSeen = now
	rl.sweepLocked(now)
	rl.mu.Unlock()

	res := entry.limiter.ReserveN(now, 1)
	if !res.OK() {
		return false, rl.config.Window
	}
	if delay := res.DelayFrom(now); delay > 0 {
		res.CancelAt(now)
		return false, delay
	}
	return true, 0
}

// Len reports how many buckets are tracked.
func (rl *RateLimiter) Len() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.buckets)
}

func (rl *RateLimiter) sweepLocked(now time.Time) {
	if now.Sub(rl.lastSweep) < rl.idleAfter {
		return
	}
	rl.lastSweep = now
	for k, e := range rl.buckets {
		if now.Sub(e.lastSeen) >= rl.idleAfter {
			delete(rl.buckets, k)
		}
	}
}

// Middleware answers 429 with Retry-After once a key runs out of tokens.
func (rl *RateLimiter) Middleware() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := rl.key(r)
			if key == "" {
				slogx.FromContext(r.Context()).Warn("rate limit: unable to extract key, allowing request")
				next.ServeHTTP(w, r)
				return
			}

			ok, wait := rl.Allow(key)
			if ok {
				next.ServeHTTP(w, r)
				return
			}

			if rl.OnReject != nil {
				rl.OnReject(r, key)
			}
			slogx.FromContext(r.Context()).Warn("rate limit exceeded", "key", key, "retry_after", wait)

			retryAfter := max(int((wait + time.Second - 1) / time.Second), 1)
			w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(rl.config.Requests))
			w.Header().Set("X-RateLimit-Window", rl.config.Window.String())
			WriteError(w, http.StatusTooManyRequests, "rate_limit_exceeded", "Too many requests. Please try again later.")
		})
	}
}

// RateLimitByIP limits by ClientIP.
func RateLimitByIP(config RateLimitConfig) Middleware {
	return NewRateLimiter(config, ClientIP).Middleware()
}
