package cache

import (
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"marketplace-api/internal/logging"
)

// entry stores a cached value and when it was written.
// Entries are replaced wholesale, never mutated in place.
type entry struct {
	value    any
	storedAt time.Time
}

// Config controls construction of a ResponseCache.
type Config struct {
	// TTL is the freshness window for every entry. If TTL <= 0, entries
	// never expire.
	TTL time.Duration

	// Clock overrides the time source, for deterministic expiry in tests.
	// If nil, time.Now is used.
	Clock func() time.Time
}

// ResponseCache is a mutex-guarded map cache with per-entry lazy expiry.
// Expiry is a predicate evaluated at read time against the injected clock;
// there is no background janitor (cleanup is lazy or via PurgeExpired).
// A ResponseCache is strictly an optimization: it holds response payloads
// keyed by logical resource identity, and the database stays the source
// of truth.
type ResponseCache struct {
	mu    sync.RWMutex
	ttl   time.Duration
	clock func() time.Time
	items map[string]entry
	log   zerolog.Logger
}

// New constructs a ResponseCache with the given options.
func New(cfg Config) *ResponseCache {
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	return &ResponseCache{
		ttl:   cfg.TTL,
		clock: clock,
		items: make(map[string]entry),
		log:   logging.NewLogger("cache"),
	}
}

func (c *ResponseCache) expired(e entry, now time.Time) bool {
	return c.ttl > 0 && now.After(e.storedAt.Add(c.ttl))
}

// Get implements Cache.Get. Expired entries are treated as misses; they are
// removed by the next Set/PurgeExpired rather than here, so Get stays a
// pure read.
func (c *ResponseCache) Get(key string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.items[key]
	if !ok {
		cacheMisses.Inc()
		c.log.Debug().Str("key", key).Msg("cache miss")
		return nil, false
	}
	if c.expired(e, c.clock()) {
		cacheMisses.Inc()
		c.log.Debug().Str("key", key).Msg("cache expired")
		return nil, false
	}
	cacheHits.Inc()
	c.log.Debug().Str("key", key).Msg("cache hit")
	return e.value, true
}

// Set implements Cache.Set.
func (c *ResponseCache) Set(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = entry{value: value, storedAt: c.clock()}
	cacheSets.Inc()
	c.log.Debug().Str("key", key).Msg("cache set")
}

// Delete implements Cache.Delete.
func (c *ResponseCache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.items[key]; ok {
		delete(c.items, key)
		cacheInvalidations.WithLabelValues("delete").Inc()
		c.log.Debug().Str("key", key).Msg("cache delete")
	}
}

// InvalidateByPrefix implements Cache.InvalidateByPrefix. It is used to
// blanket-invalidate every variant of a collection query after a mutation
// to that collection.
func (c *ResponseCache) InvalidateByPrefix(prefix string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	removed := 0
	for k := range c.items {
		if strings.HasPrefix(k, prefix) {
			delete(c.items, k)
			removed++
		}
	}
	if removed > 0 {
		cacheInvalidations.WithLabelValues("prefix").Add(float64(removed))
		c.log.Debug().Str("prefix", prefix).Int("removed", removed).Msg("cache invalidate prefix")
	}
	return removed
}

// Len implements Cache.Len. It counts only non-expired entries.
func (c *ResponseCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	now := c.clock()
	count := 0
	for _, e := range c.items {
		if !c.expired(e, now) {
			count++
		}
	}
	return count
}

// Clear implements Cache.Clear.
func (c *ResponseCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]entry)
	cacheInvalidations.WithLabelValues("clear").Inc()
	c.log.Debug().Msg("cache clear")
}

// PurgeExpired implements Cache.PurgeExpired.
func (c *ResponseCache) PurgeExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.items) == 0 {
		return
	}
	now := c.clock()
	for k, e := range c.items {
		if c.expired(e, now) {
			delete(c.items, k)
		}
	}
}

// Ensure ResponseCache implements Cache at compile time.
var _ Cache = (*ResponseCache)(nil)
