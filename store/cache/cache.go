package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// Config holds the configuration of an in-memory cache.
type Config struct {
	DefaultTTL      time.Duration // TTL applied by Set
	CleanupInterval time.Duration // How often expired items are swept; 0 disables the janitor
	MaxItems        int           // Upper bound on stored items; 0 means unbounded
	OnEviction      func(key string, value any)
}

type item struct {
	value      any
	expiration time.Time // zero means no expiration
	createdAt  time.Time
}

func (i *item) expired(now time.Time) bool {
	return !i.expiration.IsZero() && now.After(i.expiration)
}

// Cache is a concurrency-safe in-memory cache with per-item TTL.
type Cache struct {
	data      sync.Map
	config    Config
	itemCount atomic.Int64

	stopCh    chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// New creates a cache and starts its cleanup goroutine.
func New(config Config) *Cache {
	c := &Cache{
		config: config,
		stopCh: make(chan struct{}),
	}
	if config.CleanupInterval > 0 {
		c.wg.Add(1)
		go c.cleanupLoop(config.CleanupInterval)
	}
	return c
}

func (c *Cache) Set(ctx context.Context, key string, value any) {
	c.SetWithTTL(ctx, key, value, c.config.DefaultTTL)
}

func (c *Cache) SetWithTTL(_ context.Context, key string, value any, ttl time.Duration) {
	now := time.Now()
	it := &item{value: value, createdAt: now}
	if ttl > 0 {
		it.expiration = now.Add(ttl)
	}

	if _, loaded := c.data.Swap(key, it); !loaded {
		c.itemCount.Add(1)
	}
	for c.config.MaxItems > 0 && c.itemCount.Load() > int64(c.config.MaxItems) {
		if !c.evictOldest(key) {
			break
		}
	}
}

func (c *Cache) Get(_ context.Context, key string) (any, bool) {
	value, ok := c.data.Load(key)
	if !ok {
		return nil, false
	}
	it := value.(*item)
	if it.expired(time.Now()) {
		c.remove(key, it)
		return nil, false
	}
	return it.value, true
}

func (c *Cache) Delete(_ context.Context, key string) {
	if _, loaded := c.data.LoadAndDelete(key); loaded {
		c.itemCount.Add(-1)
	}
}

// Size returns the number of stored items, including expired ones not yet swept.
func (c *Cache) Size() int64 {
	return c.itemCount.Load()
}

// Close stops the cleanup goroutine. It is safe to call more than once.
func (c *Cache) Close() error {
	c.closeOnce.Do(func() {
		close(c.stopCh)
	})
	c.wg.Wait()
	return nil
}

func (c *Cache) cleanupLoop(interval time.Duration) {
	defer c.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.deleteExpired()
		case <-c.stopCh:
			return
		}
	}
}

func (c *Cache) deleteExpired() {
	now := time.Now()
	c.data.Range(func(key, value any) bool {
		it := value.(*item)
		if it.expired(now) {
			c.remove(key.(string), it)
		}
		return true
	})
}

// evictOldest removes the oldest item other than keep. It reports whether a candidate was found.
func (c *Cache) evictOldest(keep string) bool {
	var oldestKey string
	var oldest *item
	c.data.Range(func(key, value any) bool {
		k := key.(string)
		it := value.(*item)
		if k != keep && (oldest == nil || it.createdAt.Before(oldest.createdAt)) {
			oldestKey, oldest = k, it
		}
		return true
	})
	if oldest == nil {
		return false
	}
	c.remove(oldestKey, oldest)
	return true
}

// remove deletes key only if it still maps to it, so a concurrent Set is never lost.
func (c *Cache) remove(key string, it *item) {
	if c.data.CompareAndDelete(key, it) {
		c.itemCount.Add(-1)
		if c.config.OnEviction != nil {
			c.config.OnEviction(key, it.value)
		}
	}
}
