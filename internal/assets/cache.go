package assets

import "sync"

// Cache is an in-memory, path-keyed cache of loaded rigs.
type Cache struct {
	data map[string]*Asset
	mu   sync.RWMutex

	hits   int
	misses int
}

// NewCache creates a new cache.
func NewCache() *Cache {
	return &Cache{
		data: make(map[string]*Asset),
	}
}

// Get retrieves the rig cached for path if its fingerprint still matches.
func (c *Cache) Get(path string, fp Fingerprint) (*Asset, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	a, ok := c.data[path]
	if ok && a.Fingerprint == fp {
		c.hits++
		return a, true
	}
	c.misses++
	return nil, false
}

// Set stores a rig and returns the one it replaced, if any.
func (c *Cache) Set(path string, a *Asset) *Asset {
	c.mu.Lock()
	defer c.mu.Unlock()
	old := c.data[path]
	c.data[path] = a
	return old
}

// Delete removes path and returns the removed rig, if any.
func (c *Cache) Delete(path string) *Asset {
	c.mu.Lock()
	defer c.mu.Unlock()
	old := c.data[path]
	delete(c.data, path)
	return old
}

// Len returns the number of cached rigs.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.data)
}

// Clear empties the cache and returns what it held.
func (c *Cache) Clear() []*Asset {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*Asset, 0, len(c.data))
	for _, a := range c.data {
		out = append(out, a)
	}
	c.data = make(map[string]*Asset)
	c.hits = 0
	c.misses = 0
	return out
}

// Stats returns cache statistics.
func (c *Cache) Stats() (hits, misses int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hits, c.misses
}
