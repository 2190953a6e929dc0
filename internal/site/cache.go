package site

import (
	"strconv"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"git.home.luguber.info/inful/docsite/internal/metrics"
	"git.home.luguber.info/inful/docsite/internal/nav"
)

type entryMap[V any] struct {
	mu sync.RWMutex
	m  map[string]V
}

func (e *entryMap[V]) get(key string) (V, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	v, ok := e.m[key]
	return v, ok
}

func (e *entryMap[V]) set(key string, v V) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.m == nil {
		e.m = make(map[string]V)
	}
	e.m[key] = v
}

func (e *entryMap[V]) clear() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.m = nil
}

func (e *entryMap[V]) len() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.m)
}

// Cache memoizes locale indexes, documents and sidebars. Entries are never
// mutated once stored; Reset drops everything and starts a new generation
// so results computed before the reset are discarded.
type Cache struct {
	gen       atomic.Uint64
	flights   singleflight.Group
	indexes   entryMap[*localeIndex]
	documents entryMap[*DocumentBody]
	sidebars  entryMap[[]nav.Item]
}

// NewCache returns an empty cache.
func NewCache() *Cache { return &Cache{} }

// Reset drops every entry.
func (c *Cache) Reset() {
	c.gen.Add(1)
	c.indexes.clear()
	c.documents.clear()
	c.sidebars.clear()
}

// Len reports the number of cached documents.
func (c *Cache) Len() int { return c.documents.len() }

// load returns the cached value for key or computes it once, collapsing
// concurrent misses for the same key.
func load[V any](c *Cache, rec metrics.Recorder, entries *entryMap[V], name, key string, compute func() (V, error)) (V, error) {
	if v, ok := entries.get(key); ok {
		rec.IncCacheLookup(name, true)
		return v, nil
	}
	rec.IncCacheLookup(name, false)

	gen := c.gen.Load()
	flightKey := strconv.FormatUint(gen, 10) + "\x00" + name + "\x00" + key
	v, err, _ := c.flights.Do(flightKey, func() (any, error) {
		if v, ok := entries.get(key); ok {
			return v, nil
		}
		v, err := compute()
		if err != nil {
			return nil, err
		}
		if c.gen.Load() == gen {
			entries.set(key, v)
		}
		return v, nil
	})
	if err != nil {
		var zero V
		return zero, err
	}
	return v.(V), nil
}
