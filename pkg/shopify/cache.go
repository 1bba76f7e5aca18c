package shopify

import (
	"context"
	"sync"
	"time"

	"shopsync/pkg/logger"
	"shopsync/pkg/models"
)

// DefaultCacheTTL is the default staleness window for the remote snapshot
const DefaultCacheTTL = 300 * time.Second

// ProductCache holds the last-fetched remote product collection. Refreshes
// replace the snapshot wholesale under the write lock, so concurrent readers
// never observe a half-updated collection.
type ProductCache struct {
	fetch func(ctx context.Context) ([]models.RemoteProduct, error)
	ttl   time.Duration

	mu          sync.RWMutex
	products    []models.RemoteProduct
	lastRefresh time.Time
	populated   bool

	now    func() time.Time
	logger logger.Logger
}

// NewProductCache creates a cache over the client's paginated fetcher
func NewProductCache(client *Client, ttl time.Duration, log logger.Logger) *ProductCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if log == nil {
		log = logger.GetLogger()
	}
	return &ProductCache{
		fetch:  client.FetchAllProducts,
		ttl:    ttl,
		now:    time.Now,
		logger: log,
	}
}

// Get returns the cached remote products, refreshing first when forced, when
// the cache has never been populated, or when the snapshot is older than the
// TTL. A refresh failure on a warm cache serves the stale snapshot with a
// warning; a failure on the very first population propagates, since no
// fallback data exists.
func (pc *ProductCache) Get(ctx context.Context, force bool) ([]models.RemoteProduct, error) {
	pc.mu.RLock()
	if !force && pc.populated && pc.now().Sub(pc.lastRefresh) <= pc.ttl {
		snapshot := pc.products
		pc.mu.RUnlock()
		return snapshot, nil
	}
	pc.mu.RUnlock()

	pc.mu.Lock()
	defer pc.mu.Unlock()

	// another caller may have refreshed while we waited for the lock
	if !force && pc.populated && pc.now().Sub(pc.lastRefresh) <= pc.ttl {
		return pc.products, nil
	}

	pc.logger.InfoWithFields("refreshing remote catalog cache", map[string]interface{}{
		"forced": force,
	})

	products, err := pc.fetch(ctx)
	if err != nil {
		if pc.populated {
			pc.logger.WarnWithFields("cache refresh failed, serving stale snapshot", map[string]interface{}{
				"error":        err.Error(),
				"snapshot_age": pc.now().Sub(pc.lastRefresh),
			})
			return pc.products, nil
		}
		return nil, err
	}

	pc.products = products
	pc.lastRefresh = pc.now()
	pc.populated = true

	return pc.products, nil
}

// Invalidate drops the snapshot so the next Get refreshes unconditionally
func (pc *ProductCache) Invalidate() {
	pc.mu.Lock()
	defer pc.mu.Unlock()

	pc.products = nil
	pc.populated = false
	pc.lastRefresh = time.Time{}
}
