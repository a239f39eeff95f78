// Package cache keeps recently discovered form schemas so starting a crawl
// does not re-fetch the category landing page every time.
package cache

import (
	"sync"
	"time"

	"github.com/archiv-tools/linkliste/schema"
)

// entry holds a cached schema with its creation timestamp.
type entry struct {
	schema    *schema.Schema
	createdAt time.Time
}

// Cache is an in-memory TTL cache for discovered schemas, keyed by
// category+locale. Safe for concurrent use.
//
// The TTL should stay short: the Drupal view_dom_id baked into a schema
// rotates, and the engine only re-bootstraps it when it is missing entirely.
type Cache struct {
	mu         sync.RWMutex
	store      map[string]*entry
	maxEntries int
	ttl        time.Duration
}

// New creates a Cache. A background goroutine evicts expired entries every
// minute.
func New(maxEntries int, ttl time.Duration) *Cache {
	c := &Cache{
		store:      make(map[string]*entry),
		maxEntries: maxEntries,
		ttl:        ttl,
	}
	go c.cleanupLoop()
	return c
}

// Key builds the cache key for a category and locale.
func Key(category, loc string) string {
	return category + "|" + loc
}

// Get retrieves a cached schema if present and younger than the TTL.
func (c *Cache) Get(key string) (*schema.Schema, bool) {
	c.mu.RLock()
	e, ok := c.store[key]
	c.mu.RUnlock()

	if !ok || time.Since(e.createdAt) > c.ttl {
		return nil, false
	}
	return e.schema, true
}

// Set stores a schema. If the cache is at capacity, a random entry is
// evicted to make room (map iteration is random in Go).
func (c *Cache) Set(key string, s *schema.Schema) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.store) >= c.maxEntries {
		for k := range c.store {
			delete(c.store, k)
			break
		}
	}
	c.store[key] = &entry{schema: s, createdAt: time.Now()}
}

// Invalidate drops one entry, e.g. after a crawl start fails against a
// cached schema.
func (c *Cache) Invalidate(key string) {
	c.mu.Lock()
	delete(c.store, key)
	c.mu.Unlock()
}

// cleanupLoop evicts expired entries every minute.
func (c *Cache) cleanupLoop() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		cutoff := time.Now().Add(-c.ttl)
		c.mu.Lock()
		for k, e := range c.store {
			if e.createdAt.Before(cutoff) {
				delete(c.store, k)
			}
		}
		c.mu.Unlock()
	}
}
