package cache

import (
	"sync"
	"time"
)

type entry struct {
	value     interface{}
	expiresAt time.Time
}

// Cache is a TTL cache for read-heavy public endpoints. Writers invalidate
// with Clear; entries otherwise expire on their own.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]entry
	stop    chan struct{}
	stopped bool
}

// New creates a cache whose expired entries are swept every sweepInterval
func New(sweepInterval time.Duration) *Cache {
	c := &Cache{
		entries: make(map[string]entry),
		stop:    make(chan struct{}),
	}
	go c.sweep(sweepInterval)
	return c
}

// Get returns the cached value for key, or false when absent or expired
func (c *Cache) Get(key string) (interface{}, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	if !ok || time.Now().After(e.expiresAt) {
		return nil, false
	}
	return e.value, true
}

// Set stores value under key for ttl
func (c *Cache) Set(key string, value interface{}, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry{value: value, expiresAt: time.Now().Add(ttl)}
}

// GetOrSet returns the cached value or computes, stores and returns it.
// Concurrent callers for a missing key compute once; errors are not cached.
func (c *Cache) GetOrSet(key string, ttl time.Duration, compute func() (interface{}, error)) (interface{}, error) {
	if value, ok := c.Get(key); ok {
		return value, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok && !time.Now().After(e.expiresAt) {
		return e.value, nil
	}

	value, err := compute()
	if err != nil {
		return nil, err
	}
	c.entries[key] = entry{value: value, expiresAt: time.Now().Add(ttl)}
	return value, nil
}

// Clear drops every entry
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]entry)
}

// Len returns the entry count, expired entries included until swept
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *Cache) sweep(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			now := time.Now()
			c.mu.Lock()
			for key, e := range c.entries {
				if now.After(e.expiresAt) {
					delete(c.entries, key)
				}
			}
			c.mu.Unlock()
		case <-c.stop:
			return
		}
	}
}

// Stop ends the background sweep. Safe to call more than once.
func (c *Cache) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.stopped {
		close(c.stop)
		c.stopped = true
	}
}
