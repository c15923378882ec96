// Package cache provides an in-memory TTL cache for folder listings.
package cache

import (
	"sync"
	"time"

	"github.com/DarmsTdiuM27/med-drive-bot/pkg/models"
)

// Cache holds folder listings keyed by folder id. An entry expires a
// fixed TTL after the fetch that produced it; expiry is lazy and
// happens on read, there is no sweeper goroutine.
type Cache struct {
	ttl time.Duration

	mu      sync.RWMutex
	entries map[string]entry
}

type entry struct {
	fetchedAt time.Time
	items     []models.Entry
}

// New creates an empty cache. A zero or negative TTL disables reuse:
// every lookup misses.
func New(ttl time.Duration) *Cache {
	return &Cache{
		ttl:     ttl,
		entries: make(map[string]entry),
	}
}

// Get returns the cached listing for a folder while it is still fresh.
// Callers must not modify the returned slice.
func (c *Cache) Get(folderID string) ([]models.Entry, bool) {
	c.mu.RLock()
	e, ok := c.entries[folderID]
	c.mu.RUnlock()

	if !ok {
		return nil, false
	}
	if time.Since(e.fetchedAt) >= c.ttl {
		c.mu.Lock()
		// Re-check under the write lock; a Put may have refreshed it.
		if cur, ok := c.entries[folderID]; ok && time.Since(cur.fetchedAt) >= c.ttl {
			delete(c.entries, folderID)
		}
		c.mu.Unlock()
		return nil, false
	}
	return e.items, true
}

// Put replaces the cached listing for a folder and restarts its TTL.
func (c *Cache) Put(folderID string, items []models.Entry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[folderID] = entry{fetchedAt: time.Now(), items: items}
}

// Len reports the number of stored listings, fresh or expired.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
