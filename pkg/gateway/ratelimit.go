package gateway

import (
	"encoding/json"
	"net/http"
	"sync"

	"golang.org/x/time/rate"
)

// Rate-limit tiers, grounded on
// original_source/backend/src/middleware/rate_limit.rs's
// with_defaults/read_heavy/write_heavy/expensive presets.
const (
	rate20PerSecond  = rate.Limit(20)
	rate10PerSecond  = rate.Limit(10)
	rate5PerSecond   = rate.Limit(5)
	rate1Per2Seconds = rate.Limit(0.5)
)

// tokenBucketLimiter is a per-client token-bucket limiter, implemented
// with golang.org/x/time/rate in place of the source's Redis-or-in-memory
// backend (no Redis client survived into this pack's retrieval set for the
// gateway domain). The in-process limiter has no failure mode of its own:
// a request is refused only when its client's bucket is empty.
type tokenBucketLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
}

func newTokenBucketLimiter(limit rate.Limit, burst int) *tokenBucketLimiter {
	return &tokenBucketLimiter{limiters: make(map[string]*rate.Limiter), limit: limit, burst: burst}
}

func (l *tokenBucketLimiter) limiterFor(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	lim, ok := l.limiters[key]
	if !ok {
		lim = rate.NewLimiter(l.limit, l.burst)
		l.limiters[key] = lim
	}
	return lim
}

func (l *tokenBucketLimiter) wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := clientKey(r)
		if !l.limiterFor(key).Allow() {
			writeError(w, newAPIError(KindRateLimited, "rate limit exceeded"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientKey(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return fwd
	}
	return r.RemoteAddr
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func decodeJSON(r *http.Request, v interface{}) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}
