// Package ratelimit throttles per-client request rates with a fixed
// one-minute window. The dashboard applies it to mutations only
// (approvals, login, export queueing); report reads are absorbed by the
// cache instead.
package ratelimit

import (
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

// Limiter counts requests per client IP inside a rolling one-minute
// window and drops entries for clients that went quiet.
type Limiter struct {
	mu      sync.Mutex
	windows map[string]*window

	stop         chan struct{}
	shutdownOnce sync.Once

	perMinute     int
	sweepInterval time.Duration
	hits          int64
}

// window is one client's count inside the current minute.
type window struct {
	startedAt time.Time
	count     int
}

type Config struct {
	RequestsPerMinute int
	CleanupInterval   time.Duration
}

// DefaultConfig allows 30 mutations per minute per client. Approval
// clerks work one item at a time; anything past this is a script.
func DefaultConfig() Config {
	return Config{
		RequestsPerMinute: 30,
		CleanupInterval:   5 * time.Minute,
	}
}

func NewLimiter(config Config) *Limiter {
	if config.RequestsPerMinute <= 0 {
		config.RequestsPerMinute = DefaultConfig().RequestsPerMinute
	}
	if config.CleanupInterval <= 0 {
		config.CleanupInterval = DefaultConfig().CleanupInterval
	}

	l := &Limiter{
		windows:       make(map[string]*window),
		stop:          make(chan struct{}),
		perMinute:     config.RequestsPerMinute,
		sweepInterval: config.CleanupInterval,
	}
	go l.sweepLoop()
	return l
}

// Allow reports whether one more request from clientIP fits the window.
// A refused request is counted as a hit.
func (l *Limiter) Allow(clientIP string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	w, ok := l.windows[clientIP]
	if !ok || now.Sub(w.startedAt) > time.Minute {
		l.windows[clientIP] = &window{startedAt: now, count: 1}
		return true
	}

	w.count++
	if w.count > l.perMinute {
		atomic.AddInt64(&l.hits, 1)
		return false
	}
	return true
}

func (l *Limiter) sweepLoop() {
	ticker := time.NewTicker(l.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.sweep()
		case <-l.stop:
			return
		}
	}
}

// sweep drops clients whose window ended well before the last sweep.
func (l *Limiter) sweep() {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := time.Now().Add(-2 * l.sweepInterval)
	for ip, w := range l.windows {
		if w.startedAt.Before(cutoff) {
			delete(l.windows, ip)
		}
	}
}

// ActiveClients returns the number of currently tracked clients.
func (l *Limiter) ActiveClients() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.windows)
}

// Stop ends the sweep goroutine. Safe to call more than once.
func (l *Limiter) Stop() {
	l.shutdownOnce.Do(func() {
		close(l.stop)
	})
}

// Metrics is the limiter's counter snapshot for the metrics endpoint.
type Metrics struct {
	TotalHits   int64
	ClientCount int64
}

func (l *Limiter) GetMetrics() Metrics {
	l.mu.Lock()
	clients := int64(len(l.windows))
	l.mu.Unlock()

	return Metrics{
		TotalHits:   atomic.LoadInt64(&l.hits),
		ClientCount: clients,
	}
}

// Middleware wraps next with the limiter. extractIP resolves the client
// identity; onLimit writes the refusal (a plain 429 when nil).
func (l *Limiter) Middleware(extractIP func(*http.Request) string, onLimit func(http.ResponseWriter, *http.Request)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !l.Allow(extractIP(r)) {
				if onLimit != nil {
					onLimit(w, r)
					return
				}
				w.Header().Set("Retry-After", "60")
				http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
