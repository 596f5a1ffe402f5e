// Package cache holds the caches the theme service puts in front of icon
// resolution and document parsing.
package cache

import (
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dgraph-io/ristretto"

	"github.com/adalundhe/producticons/core/icontheme"
)

const (
	defaultNumCounters = 1e5 // 100K counters for admission policy
	defaultMaxCost     = 1e7 // 10MB max cost
	defaultBufferItems = 64  // Buffer items for async writes
	defaultTTL         = 0   // no expiry; entries are invalidated by generation
)

// Resolution is a cached ResolveIcon outcome. Found is false for icons that
// resolved to nothing, so misses are cached too.
type Resolution struct {
	Definition icontheme.IconDefinition
	Found      bool
}

// IconCache caches icon resolutions per theme generation.
type IconCache struct {
	cache  *ristretto.Cache
	ttl    time.Duration
	stats  *CacheStats
	mu     sync.RWMutex
	closed bool
}

// CacheConfig configures the icon cache.
type CacheConfig struct {
	NumCounters int64
	MaxCost     int64
	BufferItems int64
	TTL         time.Duration
}

// NewIconCache creates a new IconCache with the given configuration.
func NewIconCache(config *CacheConfig) (*IconCache, error) {
	cfg := applyDefaults(config)

	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: cfg.NumCounters,
		MaxCost:     cfg.MaxCost,
		BufferItems: cfg.BufferItems,
	})
	if err != nil {
		return nil, err
	}

	return &IconCache{
		cache: cache,
		ttl:   cfg.TTL,
		stats: NewCacheStats(),
	}, nil
}

func applyDefaults(config *CacheConfig) *CacheConfig {
	cfg := &CacheConfig{
		NumCounters: defaultNumCounters,
		MaxCost:     defaultMaxCost,
		BufferItems: defaultBufferItems,
		TTL:         defaultTTL,
	}

	if config == nil {
		return cfg
	}

	if config.NumCounters > 0 {
		cfg.NumCounters = config.NumCounters
	}
	if config.MaxCost > 0 {
		cfg.MaxCost = config.MaxCost
	}
	if config.BufferItems > 0 {
		cfg.BufferItems = config.BufferItems
	}
	if config.TTL > 0 {
		cfg.TTL = config.TTL
	}

	return cfg
}

// IconKey builds the cache key for iconID under a theme generation. A new
// generation makes every older key unreachable.
func IconKey(themeID string, generation uint64, iconID string) string {
	var b strings.Builder
	b.Grow(len(themeID) + len(iconID) + 24)
	b.WriteString("icon:")
	b.WriteString(strconv.FormatUint(generation, 10))
	b.WriteByte(':')
	b.WriteString(strconv.Quote(themeID))
	b.WriteByte(':')
	b.WriteString(iconID)
	return b.String()
}

// Get retrieves a cached resolution.
func (c *IconCache) Get(key string) (Resolution, bool) {
	if c.IsClosed() {
		return Resolution{}, false
	}

	value, found := c.cache.Get(key)
	if !found {
		c.stats.RecordMiss()
		return Resolution{}, false
	}

	res, ok := value.(Resolution)
	if !ok {
		c.stats.RecordMiss()
		return Resolution{}, false
	}

	c.stats.RecordHit()
	return res, true
}

// Set stores a resolution with the default TTL.
func (c *IconCache) Set(key string, res Resolution) bool {
	if c.IsClosed() {
		return false
	}

	stored := c.cache.SetWithTTL(key, res, estimateCost(key, res), c.ttl)
	if stored {
		c.stats.RecordSet()
	}
	return stored
}

func estimateCost(key string, res Resolution) int64 {
	cost := int64(64) + int64(len(key)) + int64(len(res.Definition.FontCharacter))
	if res.Definition.Font != nil {
		cost += 48 + int64(len(res.Definition.Font.ID))
	}
	return cost
}

// Clear removes all entries from the cache.
func (c *IconCache) Clear() {
	if c.IsClosed() {
		return
	}

	c.cache.Clear()
	c.stats.RecordEviction()
}

// Close closes the cache and releases resources.
func (c *IconCache) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}

	c.closed = true
	c.cache.Close()
}

// Stats returns a snapshot of the cache statistics.
func (c *IconCache) Stats() *CacheStats {
	return c.stats.Snapshot()
}

// IsClosed returns whether the cache has been closed.
func (c *IconCache) IsClosed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.closed
}
