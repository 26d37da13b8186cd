package ipgeo

import (
	"container/list"
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/covid-map-service/internal/domain"
)

// CachedGeolocator remembers successful lookups per address for ttl.
// Failures are never cached, so an address that fell back to the default
// center is looked up again on the next request.
type CachedGeolocator struct {
	inner domain.Geolocator
	ttl   time.Duration
	clock clockwork.Clock
	cache *lruCache
}

// NewCachedGeolocator wraps inner with an LRU cache of at most maxEntries
// addresses.
func NewCachedGeolocator(inner domain.Geolocator, maxEntries int, ttl time.Duration) *CachedGeolocator {
	return &CachedGeolocator{
		inner: inner,
		ttl:   ttl,
		clock: domain.Clock(),
		cache: newLRUCache(maxEntries),
	}
}

// Locate returns a cached position or asks the wrapped geolocator.
func (c *CachedGeolocator) Locate(ctx context.Context, ip string) (domain.LatLng, error) {
	now := c.clock.Now()
	if pos, ok := c.cache.get(ip, now); ok {
		return pos, nil
	}
	pos, err := c.inner.Locate(ctx, ip)
	if err != nil {
		return pos, err
	}
	c.cache.put(ip, pos, now.Add(c.ttl))
	return pos, nil
}

// lruCache is a thread-safe LRU of positions with per-entry expiry.
type lruCache struct {
	maxEntries int
	mu         sync.Mutex
	order      *list.List // front is most recently used
	entries    map[string]*list.Element
}

type cacheEntry struct {
	key       string
	pos       domain.LatLng
	expiresAt time.Time
}

func newLRUCache(maxEntries int) *lruCache {
	return &lruCache{
		maxEntries: maxEntries,
		order:      list.New(),
		entries:    make(map[string]*list.Element),
	}
}

func (c *lruCache) get(key string, now time.Time) (domain.LatLng, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[key]
	if !ok {
		return domain.LatLng{}, false
	}
	e := el.Value.(*cacheEntry)
	if !now.Before(e.expiresAt) {
		c.order.Remove(el)
		delete(c.entries, key)
		return domain.LatLng{}, false
	}
	c.order.MoveToFront(el)
	return e.pos, true
}

func (c *lruCache) put(key string, pos domain.LatLng, expiresAt time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[key]; ok {
		e := el.Value.(*cacheEntry)
		e.pos, e.expiresAt = pos, expiresAt
		c.order.MoveToFront(el)
		return
	}

	c.entries[key] = c.order.PushFront(&cacheEntry{key: key, pos: pos, expiresAt: expiresAt})
	for c.order.Len() > c.maxEntries {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.entries, oldest.Value.(*cacheEntry).key)
	}
}

func (c *lruCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}
