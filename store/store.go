package store

import (
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"github.com/Edelbertschen/taskfuchs-sub005/internal/profile"
	"github.com/Edelbertschen/taskfuchs-sub005/store/cache"
)

// Store provides database access to all raw objects.
type Store struct {
	profile *profile.Profile
	driver  Driver

	l2Cache cache.RedisCacheInterface

	// viewStateCache holds JSON encoded ViewState records keyed by user.
	viewStateCache *cache.TieredCache
	viewStateGroup singleflight.Group

	// viewStateMu orders cache fills against invalidations; viewStateWrites counts them.
	viewStateMu     sync.Mutex
	viewStateWrites atomic.Uint64
}

// Option configures optional Store dependencies.
type Option func(*Store)

// WithL2Cache puts a shared cache (usually Redis) behind the in-memory view state cache.
func WithL2Cache(l2 cache.RedisCacheInterface) Option {
	return func(s *Store) {
		s.l2Cache = l2
	}
}

// New creates a new instance of Store.
func New(driver Driver, profile *profile.Profile, opts ...Option) *Store {
	store := &Store{
		driver:  driver,
		profile: profile,
	}
	for _, opt := range opts {
		opt(store)
	}

	cacheConfig := cache.DefaultTieredConfig()
	if profile.CacheTTL > 0 {
		cacheConfig.L1TTL = profile.CacheTTL
		cacheConfig.L2TTL = profile.CacheTTL
	}
	if profile.CacheMaxItems > 0 {
		cacheConfig.L1MaxItems = profile.CacheMaxItems
	}
	// A per-process L1 cannot see writes made by other instances sharing L2.
	if store.l2Cache != nil {
		cacheConfig.EnableL1 = false
	}
	store.viewStateCache = cache.NewTieredCache(cacheConfig, store.l2Cache)

	return store
}

func (s *Store) GetDriver() Driver {
	return s.driver
}

func (s *Store) Close() error {
	// Stops the L1 cleanup goroutine and closes the L2 connection.
	if err := s.viewStateCache.Close(); err != nil {
		return err
	}
	return s.driver.Close()
}

// CacheStats reports the state of the view state cache.
func (s *Store) CacheStats() map[string]any {
	return s.viewStateCache.Stats()
}
