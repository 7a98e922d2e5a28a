package scale

import "sync"

type cacheKey struct {
	id      string
	version int
}

// Cache holds compiled templates keyed by (id, version). Entries are
// immutable; a refresh replaces the whole entry with a copy-on-write
// swap so in-flight scorings always see a self-consistent template.
type Cache struct {
	mu      sync.RWMutex
	entries map[cacheKey]*Compiled
}

func NewCache() *Cache {
	return &Cache{entries: make(map[cacheKey]*Compiled)}
}

func (c *Cache) Get(id string, version int) (*Compiled, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	compiled, ok := c.entries[cacheKey{id: id, version: version}]
	return compiled, ok
}

// Put stores a compiled template, replacing any previous entry for the
// same key atomically.
func (c *Cache) Put(compiled *Compiled) {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := compiled.Template
	c.entries[cacheKey{id: t.ID, version: t.Version}] = compiled
}

func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
