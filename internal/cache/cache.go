// Package cache memoizes intent resolutions. Two backends exist: an
// in-process LRU with TTL and a shared Redis store.
package cache

import (
	"context"
	"time"

	"agenda/internal/log"
)

// Cache is a keyed store of values of one type. Misses and backend failures
// both report ok == false; a cache must never fail the caller.
type Cache[T any] interface {
	Get(ctx context.Context, key string) (T, bool)
	Set(ctx context.Context, key string, value T)
	Delete(ctx context.Context, key string)
}

// Cleaner is implemented by caches that hold expired items in memory until
// swept.
type Cleaner interface {
	CleanExpired() int
}

// Manager periodically sweeps the registered caches.
type Manager struct {
	caches []Cleaner
	logger *log.Logger
	stop   chan struct{}
	done   chan struct{}
}

func NewManager(logger *log.Logger) *Manager {
	return &Manager{
		logger: logger.WithComponent(log.ComponentCache),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
}

func (m *Manager) Register(c Cleaner) {
	m.caches = append(m.caches, c)
}

// StartCleanup runs the sweep loop until Stop is called.
func (m *Manager) StartCleanup(interval time.Duration) {
	go m.cleanup(interval)
}

func (m *Manager) cleanup(interval time.Duration) {
	defer close(m.done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if n := m.sweep(); n > 0 {
				m.logger.Debug("Expired cache items removed", "count", n)
			}
		case <-m.stop:
			return
		}
	}
}

func (m *Manager) sweep() int {
	total := 0
	for _, c := range m.caches {
		total += c.CleanExpired()
	}
	return total
}

// Stop ends the sweep loop and waits for it to exit. It must be called at
// most once, and only after StartCleanup.
func (m *Manager) Stop() {
	close(m.stop)
	<-m.done
}
