package directory

import (
	"container/list"
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"healthnudge/internal/models"
)

// MemoryCache is a bounded, TTL-respecting LRU decorator around a
// Directory. Entries past their TTL are never served; once the cap is
// reached the least recently used entry is evicted. Errors and cancelled
// lookups are never cached.
type MemoryCache struct {
	inner Directory
	ttl   time.Duration
	cap   int

	mu      sync.Mutex
	entries map[string]*list.Element
	lru     *list.List

	now func() time.Time // overridable in tests
}

type cacheEntry struct {
	key      string
	venues   []models.Venue
	storedAt time.Time
}

func NewMemoryCache(inner Directory, capacity int, ttl time.Duration) *MemoryCache {
	if capacity <= 0 {
		capacity = 50
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &MemoryCache{
		inner:   inner,
		ttl:     ttl,
		cap:     capacity,
		entries: make(map[string]*list.Element),
		lru:     list.New(),
		now:     time.Now,
	}
}

func (c *MemoryCache) Search(ctx context.Context, params SearchParams) ([]models.Venue, error) {
	key := params.CacheKey()

	if venues, ok := c.get(key); ok {
		log.Debugf("directory cache: hit for %s", key)
		return venues, nil
	}

	venues, err := c.inner.Search(ctx, params)
	if err != nil {
		return nil, err
	}
	if ctx.Err() != nil {
		// Caller went away; discard rather than cache a partial result.
		return nil, ctx.Err()
	}

	c.put(key, venues)
	return venues, nil
}

func (c *MemoryCache) get(key string) ([]models.Venue, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	entry := elem.Value.(*cacheEntry)
	if c.now().Sub(entry.storedAt) > c.ttl {
		c.lru.Remove(elem)
		delete(c.entries, key)
		return nil, false
	}
	c.lru.MoveToFront(elem)
	return entry.venues, true
}

func (c *MemoryCache) put(key string, venues []models.Venue) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.entries[key]; ok {
		elem.Value.(*cacheEntry).venues = venues
		elem.Value.(*cacheEntry).storedAt = c.now()
		c.lru.MoveToFront(elem)
		return
	}

	elem := c.lru.PushFront(&cacheEntry{key: key, venues: venues, storedAt: c.now()})
	c.entries[key] = elem

	for c.lru.Len() > c.cap {
		oldest := c.lru.Back()
		c.lru.Remove(oldest)
		delete(c.entries, oldest.Value.(*cacheEntry).key)
	}
}

// Len reports the number of live entries, expired or not.
func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}
