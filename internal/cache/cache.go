// Package cache holds the in-process caches that sit between the
// dashboard handlers and the portal: normalized report months keyed by
// department+range, and dashboard stats. Entries are TTL-bounded so a
// slow portal never pins stale revenue figures forever.
package cache

import (
	"log/slog"
	"time"
)

// Store is the surface the dashboard caches share. DeletePrefix exists
// for department-scoped invalidation: one approval mutation drops every
// cached range of the affected department at once.
type Store[T any] interface {
	Get(key string) (T, bool)
	Set(key string, value T)
	Delete(key string)
	DeletePrefix(prefix string) int
	Size() int
}

// Sweeper is implemented by caches whose expired entries need periodic
// removal; eviction alone only runs at capacity.
type Sweeper interface {
	CleanExpired() int
}

// Manager owns the sweep goroutine for every registered cache, so the
// server has a single Stop for all of them at shutdown.
type Manager struct {
	sweepers []Sweeper
	stop     chan struct{}
	done     chan struct{}
	started  bool
}

func NewManager() *Manager {
	return &Manager{
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
}

// Register adds a cache to the sweep rotation. Not safe to call after
// StartCleanup.
func (m *Manager) Register(s Sweeper) {
	m.sweepers = append(m.sweepers, s)
}

// StartCleanup begins sweeping every registered cache on the interval.
func (m *Manager) StartCleanup(interval time.Duration) {
	m.started = true
	go m.run(interval)
}

func (m *Manager) run(interval time.Duration) {
	defer close(m.done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			swept := 0
			for _, s := range m.sweepers {
				swept += s.CleanExpired()
			}
			if swept > 0 {
				slog.Debug("Swept expired cache entries", "count", swept)
			}
		case <-m.stop:
			return
		}
	}
}

// Stop ends the sweep goroutine and waits for it to exit. A manager
// that never started is a no-op.
func (m *Manager) Stop() {
	if !m.started {
		return
	}
	close(m.stop)
	<-m.done
}
