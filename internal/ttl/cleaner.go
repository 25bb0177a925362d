package ttl

import (
	"context"
	"fmt"
	"time"

	"canoncache/internal/logs"
	"canoncache/internal/metrics"
)

// Store defines the minimal contract required by the TTL cleaner
// This keeps the cleaner decoupled from the concrete cache implementation
type Store interface {
	RemoveExpired() int
}

// Cleaner periodically sweeps expired entries out of a cache.
// It complements the cache's own every-N-operations sweep for caches that go idle.
type Cleaner struct {
	store    Store
	interval time.Duration
	logger   *logs.Logger
	metrics  *metrics.Registry
}

// NewCleaner creates a new instance of TTL Cleaner
func NewCleaner(
	store Store,
	interval time.Duration,
	logger *logs.Logger,
	reg *metrics.Registry,
) *Cleaner {
	return &Cleaner{
		store:    store,
		interval: interval,
		logger:   logger,
		metrics:  reg,
	}
}

// Start runs the cleanup loop until the context is cancelled.
// It blocks and should typically be run in a separate goroutine.
func (c *Cleaner) Start(ctx context.Context) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.runOnce()
		case <-ctx.Done():
			c.logger.Debug("ttl cleaner stopped")
			return
		}
	}
}

// runOnce performs a single cleanup cycle
func (c *Cleaner) runOnce() {
	removed := c.store.RemoveExpired()

	c.metrics.Inc(metrics.TTLCleanupRunsTotal)
	c.metrics.Add(metrics.TTLKeysRemovedTotal, int64(removed))

	if removed > 0 {
		c.logger.Info(fmt.Sprintf("ttl cleaner removed %d expired keys", removed))
	}
}
