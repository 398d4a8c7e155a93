// Package linecache is the in-memory store of the last fetched lines, keyed by service ID.
package linecache

import (
	"sync"

	"github.com/kailas-cloud/aaisp/internal/domain/line"
)

// Cache holds lines in arrival order. Safe for concurrent use.
type Cache struct {
	mu    sync.RWMutex
	byID  map[int]line.Line
	order []int
}

// New creates an empty cache.
func New() *Cache {
	return &Cache{byID: make(map[int]line.Line)}
}

// Replace swaps the cache contents for lines. Duplicate IDs keep the last value
// at the position of the first occurrence.
func (c *Cache) Replace(lines []line.Line) {
	byID := make(map[int]line.Line, len(lines))
	order := make([]int, 0, len(lines))
	for _, l := range lines {
		if _, seen := byID[l.ID()]; !seen {
			order = append(order, l.ID())
		}
		byID[l.ID()] = l
	}

	c.mu.Lock()
	c.byID = byID
	c.order = order
	c.mu.Unlock()
}

// Get returns the cached line for id.
func (c *Cache) Get(id int) (line.Line, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	l, ok := c.byID[id]
	return l, ok
}

// IDs returns the cached service IDs in arrival order.
func (c *Cache) IDs() []int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]int(nil), c.order...)
}

// All returns the cached lines in arrival order.
func (c *Cache) All() []line.Line {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]line.Line, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.byID[id])
	}
	return out
}

// Len returns the number of cached lines.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.order)
}
