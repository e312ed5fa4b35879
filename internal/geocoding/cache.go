package geocoding

import (
	"container/list"
	"context"
	"fmt"
	"sync"
)

// ReverseGeocoder is the lookup interface the discovery orchestrator consumes.
type ReverseGeocoder interface {
	ReverseGeocode(ctx context.Context, lat, lon float64) (Address, bool)
}

// CachedReverseGeocoder wraps a ReverseGeocoder with an in-memory LRU cache.
// Re-running discovery for the same storm probes many of the same points;
// cache hits also skip the shared rate limiter entirely.
type CachedReverseGeocoder struct {
	inner ReverseGeocoder
	cache *lruCache
}

// NewCachedReverseGeocoder creates a cache decorator around a geocoder.
func NewCachedReverseGeocoder(inner ReverseGeocoder, maxEntries int) *CachedReverseGeocoder {
	return &CachedReverseGeocoder{
		inner: inner,
		cache: newLRUCache(maxEntries),
	}
}

func (c *CachedReverseGeocoder) ReverseGeocode(ctx context.Context, lat, lon float64) (Address, bool) {
	key := fmt.Sprintf("rev:%.5f,%.5f", lat, lon)
	if addr, ok := c.cache.get(key); ok {
		return addr, true
	}

	addr, ok := c.inner.ReverseGeocode(ctx, lat, lon)
	if !ok {
		// Only cache resolved results so transient failures can be retried.
		return Address{}, false
	}

	c.cache.put(key, addr)
	return addr, true
}

// lruCache is a simple thread-safe LRU cache for addresses.
type lruCache struct {
	maxEntries int
	mu         sync.Mutex
	order      *list.List
	entries    map[string]*list.Element
}

type cacheEntry struct {
	key  string
	addr Address
}

func newLRUCache(maxEntries int) *lruCache {
	if maxEntries <= 0 {
		maxEntries = 1
	}
	return &lruCache{
		maxEntries: maxEntries,
		order:      list.New(),
		entries:    make(map[string]*list.Element),
	}
}

func (c *lruCache) get(key string) (Address, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	element, ok := c.entries[key]
	if !ok {
		return Address{}, false
	}
	c.order.MoveToFront(element)
	return element.Value.(*cacheEntry).addr, true
}

func (c *lruCache) put(key string, addr Address) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if element, ok := c.entries[key]; ok {
		element.Value.(*cacheEntry).addr = addr
		c.order.MoveToFront(element)
		return
	}

	c.entries[key] = c.order.PushFront(&cacheEntry{key: key, addr: addr})

	if c.order.Len() > c.maxEntries {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.entries, oldest.Value.(*cacheEntry).key)
	}
}
