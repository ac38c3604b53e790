package middleware

import (
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"
)

// window is a fixed-window counter for one client.
type window struct {
	count int
	until time.Time
}

type limiter struct {
	limit int
	per   time.Duration

	mu        sync.Mutex
	windows   map[string]*window
	nextSweep time.Time
}

func newLimiter(limit int, per time.Duration) *limiter {
	return &limiter{limit: limit, per: per, windows: make(map[string]*window)}
}

// allow counts one request for key. When the window is exhausted it reports
// how long the caller has to wait.
func (l *limiter) allow(key string, now time.Time) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if now.After(l.nextSweep) {
		for k, w := range l.windows {
			if now.After(w.until) {
				delete(l.windows, k)
			}
		}
		l.nextSweep = now.Add(l.per)
	}

	w, ok := l.windows[key]
	if !ok || now.After(w.until) {
		w = &window{until: now.Add(l.per)}
		l.windows[key] = w
	}
	if w.count >= l.limit {
		return false, w.until.Sub(now)
	}
	w.count++
	return true, 0
}

// RateLimit allows limit requests per client IP in each window of length per.
// It expects chi's RealIP to have already resolved forwarded addresses into
// RemoteAddr. Rejections use the relay's {"error": "..."} body.
func RateLimit(limit int, per time.Duration) func(http.Handler) http.Handler {
	l := newLimiter(limit, per)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ok, wait := l.allow(remoteHost(r.RemoteAddr), time.Now())
			if !ok {
				w.Header().Set("Retry-After", strconv.Itoa(int(wait/time.Second)+1))
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				_, _ = w.Write([]byte(`{"error":"rate limit exceeded"}`))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func remoteHost(addr string) string {
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return addr
}
