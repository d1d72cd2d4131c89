// Package cache provides an in-process LRU with TTL for the read models the
// API recomputes often, keyed per user so writes can invalidate narrowly.
package cache

import (
	"fmt"
	"time"
)

// Cache is the read side used by handlers.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, data T)
	Delete(key string)
	Size() int
}

// UserKey builds a cache key scoped to one user; everything cached for a user
// shares the prefix returned by UserPrefix.
func UserKey(userID int64, parts ...any) string {
	key := fmt.Sprintf("u%d", userID)
	for _, p := range parts {
		key += fmt.Sprintf(":%v", p)
	}
	return key
}

// UserPrefix ends with the separator so user 1 never matches user 12.
func UserPrefix(userID int64) string {
	return fmt.Sprintf("u%d:", userID)
}

// Cleaner is implemented by caches that support expired-entry sweeps.
type Cleaner interface {
	CleanExpired() int
}

// Manager runs periodic expired-entry sweeps over registered caches.
type Manager struct {
	caches      []Cleaner
	stopCleanup chan struct{}
	cleanupDone chan struct{}
}

func NewManager() *Manager {
	return &Manager{
		caches:      make([]Cleaner, 0),
		stopCleanup: make(chan struct{}),
		cleanupDone: make(chan struct{}),
	}
}

func (m *Manager) Register(cache Cleaner) {
	m.caches = append(m.caches, cache)
}

func (m *Manager) StartCleanup(interval time.Duration) {
	go m.cleanup(interval)
}

func (m *Manager) cleanup(interval time.Duration) {
	defer close(m.cleanupDone)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			for _, cache := range m.caches {
				cache.CleanExpired()
			}
		case <-m.stopCleanup:
			return
		}
	}
}

func (m *Manager) Stop() {
	if m.stopCleanup != nil {
		close(m.stopCleanup)
		<-m.cleanupDone
	}
}
