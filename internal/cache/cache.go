package cache

import (
	"container/list"
	"errors"
	"fmt"
	"sync"
	"time"

	"canoncache/internal/logs"
	"canoncache/internal/metrics"
)

const (
	DefaultTTL           = 30 * time.Second
	DefaultMaxEntries    = 200
	DefaultQueryOverflow = 300
)

// ErrEmptyKey is returned by Put when called with an empty key.
var ErrEmptyKey = errors.New("cache: empty key")

// Config holds the construction-time tunables of an ExpiringCache.
// Zero or negative fields take the package defaults, and so does a TTL
// under one millisecond, the cache's clock resolution.
type Config struct {
	TTL           time.Duration
	MaxEntries    int
	QueryOverflow int

	// Clock is the wall-clock source. Defaults to time.Now.
	Clock func() time.Time
}

// DefaultConfig returns the configuration used by New.
func DefaultConfig() Config {
	return Config{
		TTL:           DefaultTTL,
		MaxEntries:    DefaultMaxEntries,
		QueryOverflow: DefaultQueryOverflow,
		Clock:         time.Now,
	}
}

// ExpiringCache is a bounded, time-expiring string→string cache.
//
// Design principles:
//   - One exclusive lock serializes Get, Put, Clear and sweeps.
//   - Expiration is lazy (checked on access) plus a full sweep every
//     QueryOverflow operations, so cold stale entries do not linger.
//   - The size bound is strict FIFO by first insertion. Refreshing a key
//     keeps its position, and reads never reorder.
//
// The cache owns no goroutines. See ttl.Cleaner for timer-driven sweeps.
type ExpiringCache struct {
	mu sync.Mutex

	ttlMillis     int64
	maxEntries    int
	queryOverflow int
	queryCount    int

	entries map[string]*list.Element
	order   *list.List // Front = oldest insertion, Back = newest

	now     func() time.Time
	metrics *metrics.Registry
	logger  *logs.Logger
}

// node is the value stored in order list elements.
// The key is kept so eviction can start from the list.
type node struct {
	key   string
	entry Entry
}

// New creates a cache with the given TTL and default bounds.
func New(ttl time.Duration) *ExpiringCache {
	cfg := DefaultConfig()
	cfg.TTL = ttl
	return NewWithConfig(cfg, nil, nil)
}

// NewWithConfig creates a cache from cfg.
// reg and logger may be nil, in which case private instances are used.
func NewWithConfig(cfg Config, reg *metrics.Registry, logger *logs.Logger) *ExpiringCache {
	if cfg.TTL < time.Millisecond {
		cfg.TTL = DefaultTTL
	}
	if cfg.MaxEntries <= 0 {
		cfg.MaxEntries = DefaultMaxEntries
	}
	if cfg.QueryOverflow <= 0 {
		cfg.QueryOverflow = DefaultQueryOverflow
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	if reg == nil {
		reg = metrics.NewRegistry()
	}
	if logger == nil {
		logger = logs.NewLogger(100, logs.WARN)
	}

	return &ExpiringCache{
		ttlMillis:     cfg.TTL.Milliseconds(),
		maxEntries:    cfg.MaxEntries,
		queryOverflow: cfg.QueryOverflow,
		entries:       make(map[string]*list.Element),
		order:         list.New(),
		now:           cfg.Clock,
		metrics:       reg,
		logger:        logger,
	}
}

// TTL returns the configured time-to-live.
func (c *ExpiringCache) TTL() time.Duration {
	return time.Duration(c.ttlMillis) * time.Millisecond
}

// Get returns the value cached for key.
//
// Behavior:
//   - Returns (value, true) if key is present and fresh. The entry is not
//     refreshed or reordered.
//   - A stale or clock-inverted entry is removed and reported as missing.
//   - The empty key is never stored (Put rejects it with ErrEmptyKey), so
//     Get("") always reports missing rather than failing.
func (c *ExpiringCache) Get(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.metrics.Inc(metrics.CacheGetsTotal)
	c.countQueryLocked()

	el := c.entryForLocked(key, c.nowMillis())
	if el == nil {
		c.metrics.Inc(metrics.CacheMissesTotal)
		return "", false
	}

	c.metrics.Inc(metrics.CacheHitsTotal)
	return el.Value.(*node).entry.Value, true
}

// Put caches value under key.
//
// Rules:
//   - A live key is refreshed in place: new value and timestamp, same position.
//   - Otherwise the key is appended. If that pushes the size past MaxEntries,
//     the oldest inserted entry is evicted, whatever its freshness.
func (c *ExpiringCache) Put(key, value string) error {
	if key == "" {
		return ErrEmptyKey
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.metrics.Inc(metrics.CachePutsTotal)
	c.countQueryLocked()

	now := c.nowMillis()

	if el := c.entryForLocked(key, now); el != nil {
		n := el.Value.(*node)
		n.entry.Value = value
		n.entry.Timestamp = now
		return nil
	}

	c.entries[key] = c.order.PushBack(&node{
		key:   key,
		entry: Entry{Value: value, Timestamp: now},
	})
	c.metrics.Inc(metrics.CacheEntries)

	if len(c.entries) > c.maxEntries {
		oldest := c.order.Front()
		c.removeElementLocked(oldest)
		c.metrics.Inc(metrics.CacheEvictedTotal)
		if c.logger.Enabled(logs.DEBUG) {
			c.logger.Debug("cache evicted oldest key " + oldest.Value.(*node).key)
		}
	}

	return nil
}

// Remove drops key if present and reports whether it was there.
func (c *ExpiringCache) Remove(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[key]
	if !ok {
		return false
	}
	c.removeElementLocked(el)
	return true
}

// Clear removes every entry.
func (c *ExpiringCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := len(c.entries)
	c.entries = make(map[string]*list.Element)
	c.order.Init()

	c.metrics.Inc(metrics.CacheClearsTotal)
	c.metrics.Add(metrics.CacheEntries, -int64(n))
}

// RemoveExpired sweeps the whole cache, removing every stale entry, and
// resets the operation counter. It returns the number of entries removed.
//
// The sweep also runs on its own every QueryOverflow operations; ttl.Cleaner
// calls it on a timer.
func (c *ExpiringCache) RemoveExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.sweepLocked()
}

// Len returns the number of stored entries, including stale ones not yet swept.
func (c *ExpiringCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Keys returns the stored keys in insertion order, oldest first.
func (c *ExpiringCache) Keys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]string, 0, c.order.Len())
	for el := c.order.Front(); el != nil; el = el.Next() {
		out = append(out, el.Value.(*node).key)
	}
	return out
}

// Snapshot returns copies of the fresh entries in insertion order.
// Stale entries are skipped but not removed.
func (c *ExpiringCache) Snapshot() []KeyValue {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.nowMillis()
	out := make([]KeyValue, 0, c.order.Len())
	for el := c.order.Front(); el != nil; el = el.Next() {
		n := el.Value.(*node)
		if n.entry.IsExpired(now, c.ttlMillis) {
			continue
		}
		out = append(out, KeyValue{Key: n.key, Value: n.entry.Value})
	}
	return out
}

// KeyValue is one row of a Snapshot.
type KeyValue struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

func (c *ExpiringCache) nowMillis() int64 {
	return c.now().UnixMilli()
}

// countQueryLocked bumps the operation counter and sweeps once it reaches
// the overflow threshold.
func (c *ExpiringCache) countQueryLocked() {
	c.queryCount++
	if c.queryCount >= c.queryOverflow {
		c.sweepLocked()
	}
}

// entryForLocked returns the live element for key, removing it first if stale.
func (c *ExpiringCache) entryForLocked(key string, now int64) *list.Element {
	el, ok := c.entries[key]
	if !ok {
		return nil
	}

	e := el.Value.(*node).entry
	if !e.IsExpired(now, c.ttlMillis) {
		return el
	}

	if e.age(now) < 0 {
		c.metrics.Inc(metrics.CacheClockRegressionsTotal)
	}
	c.removeElementLocked(el)
	c.metrics.Inc(metrics.CacheExpiredTotal)
	return nil
}

func (c *ExpiringCache) sweepLocked() int {
	keys := make([]string, 0, len(c.entries))
	for k := range c.entries {
		keys = append(keys, k)
	}

	now := c.nowMillis()
	before := len(c.entries)
	for _, k := range keys {
		c.entryForLocked(k, now)
	}
	removed := before - len(c.entries)

	c.queryCount = 0
	c.metrics.Inc(metrics.CacheSweepsTotal)
	if removed > 0 && c.logger.Enabled(logs.DEBUG) {
		c.logger.Debug(fmt.Sprintf("cache sweep removed %d expired entries", removed))
	}

	return removed
}

func (c *ExpiringCache) removeElementLocked(el *list.Element) {
	delete(c.entries, el.Value.(*node).key)
	c.order.Remove(el)
	c.metrics.Add(metrics.CacheEntries, -1)
}
