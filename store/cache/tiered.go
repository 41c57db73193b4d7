package cache

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
)

// TieredCache implements a two-tier caching strategy in front of the database:
// - L1: In-memory cache (fast, small, DEFAULT)
// - L2: Redis cache (moderate, shared, OPTIONAL)
//
// DEFAULT BEHAVIOR (single instance):
//   - L1 memory cache enabled (1000 items, 5min TTL)
//   - L2 Redis disabled
//
// TO ENABLE REDIS (multi-instance):
//   - Set TASKFUCHS_CACHE_REDIS_ADDR environment variable
type TieredCache struct {
	l1        *Cache
	l2        RedisCacheInterface
	l1Enabled bool
	l2Enabled bool
	l2TTL     time.Duration

	l1Evictions atomic.Int64
}

// TieredCacheConfig holds the configuration for the tiered cache.
type TieredCacheConfig struct {
	L1MaxItems int           // Max items in L1 memory cache
	L1TTL      time.Duration // TTL for L1 cache entries
	L2TTL      time.Duration // TTL for L2 Redis cache entries
	EnableL1   bool          // Enable L1 memory cache (default: true)
}

// DefaultTieredConfig returns the default tiered cache configuration.
func DefaultTieredConfig() *TieredCacheConfig {
	return &TieredCacheConfig{
		L1MaxItems: 1000,
		L1TTL:      5 * time.Minute,
		L2TTL:      5 * time.Minute,
		EnableL1:   true,
	}
}

// NewTieredCache creates a new tiered cache. A nil l2 disables the L2 tier.
func NewTieredCache(config *TieredCacheConfig, l2 RedisCacheInterface) *TieredCache {
	if config == nil {
		config = DefaultTieredConfig()
	}

	tc := &TieredCache{
		l1Enabled: config.EnableL1,
		l2:        l2,
		l2Enabled: l2 != nil,
		l2TTL:     config.L2TTL,
	}

	if config.EnableL1 {
		tc.l1 = New(Config{
			DefaultTTL:      config.L1TTL,
			CleanupInterval: 1 * time.Minute,
			MaxItems:        config.L1MaxItems,
			OnEviction: func(string, any) {
				tc.l1Evictions.Add(1)
			},
		})
	}

	return tc
}

// Get retrieves a value from the cache, checking L1, then L2.
func (t *TieredCache) Get(ctx context.Context, key string) ([]byte, bool) {
	if t.l1Enabled && t.l1 != nil {
		if value, found := t.l1.Get(ctx, key); found {
			if data, ok := value.([]byte); ok {
				return data, true
			}
		}
	}

	if t.l2Enabled && t.l2 != nil {
		if data, found := t.l2.Get(ctx, key); found {
			// Promote to L1
			if t.l1Enabled && t.l1 != nil {
				t.l1.Set(ctx, key, data)
			}
			return data, true
		}
	}

	return nil, false
}

// Set stores a value in both L1 and L2.
func (t *TieredCache) Set(ctx context.Context, key string, value []byte) {
	if t.l1Enabled && t.l1 != nil {
		t.l1.Set(ctx, key, value)
	}
	if t.l2Enabled && t.l2 != nil {
		t.l2.SetWithTTL(ctx, key, value, t.l2TTL)
	}
}

// Delete removes a value from both L1 and L2.
func (t *TieredCache) Delete(ctx context.Context, key string) {
	if t.l1Enabled && t.l1 != nil {
		t.l1.Delete(ctx, key)
	}
	if t.l2Enabled && t.l2 != nil {
		t.l2.Delete(ctx, key)
	}
}

// Stats returns cache statistics.
func (t *TieredCache) Stats() map[string]any {
	stats := make(map[string]any)

	if t.l1Enabled && t.l1 != nil {
		stats["l1_size"] = t.l1.Size()
		stats["l1_evictions"] = t.l1Evictions.Load()
		stats["l1_enabled"] = true
	} else {
		stats["l1_enabled"] = false
	}
	stats["l2_enabled"] = t.l2Enabled && t.l2 != nil

	return stats
}

// Close closes all cache connections.
func (t *TieredCache) Close() error {
	var errs []error

	if t.l2 != nil {
		if err := t.l2.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	if t.l1 != nil {
		if err := t.l1.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return errors.Errorf("multiple errors: %v", errs)
	}

	return nil
}
