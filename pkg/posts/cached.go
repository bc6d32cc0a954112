package posts

import (
	"context"
	"time"

	"github.com/bylinehq/byline/pkg/access"
	"github.com/bylinehq/byline/pkg/observability"
	"github.com/bylinehq/byline/pkg/storage"
)

const cacheKeyType = "post"

// CachedStore wraps a Store with the two-level entity cache and store
// metrics. Listings are not cached; their result sets depend on the
// caller's visibility predicate.
type CachedStore struct {
	store   Store
	cache   *storage.Cache
	metrics *observability.Metrics
}

// NewCachedStore creates a caching, instrumented store wrapper. Both
// cache and metrics may be nil.
func NewCachedStore(store Store, cache *storage.Cache, metrics *observability.Metrics) *CachedStore {
	return &CachedStore{store: store, cache: cache, metrics: metrics}
}

// Create inserts a post and primes the cache
func (s *CachedStore) Create(ctx context.Context, post *Post) error {
	err := s.observe("create", func() error {
		return s.store.Create(ctx, post)
	})
	if err != nil {
		return err
	}

	s.cache.Set(ctx, cacheKeyType, post.ID, post)
	return nil
}

// GetByID fetches a post, serving from cache when possible
func (s *CachedStore) GetByID(ctx context.Context, id string) (*Post, error) {
	var cached Post
	if s.cache.Get(ctx, cacheKeyType, id, &cached) {
		return &cached, nil
	}

	var post *Post
	err := s.observe("get", func() error {
		var err error
		post, err = s.store.GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.cache.Set(ctx, cacheKeyType, id, post)
	return post, nil
}

// List delegates to the underlying store
func (s *CachedStore) List(ctx context.Context, pred access.Predicate, limit, offset int) ([]*Post, int64, error) {
	var (
		result []*Post
		total  int64
	)
	err := s.observe("list", func() error {
		var err error
		result, total, err = s.store.List(ctx, pred, limit, offset)
		return err
	})
	return result, total, err
}

// Update persists the post and invalidates the cached copy
func (s *CachedStore) Update(ctx context.Context, post *Post) error {
	err := s.observe("update", func() error {
		return s.store.Update(ctx, post)
	})
	if err != nil {
		return err
	}

	s.cache.Invalidate(ctx, cacheKeyType, post.ID)
	return nil
}

// Delete removes the post and invalidates the cached copy
func (s *CachedStore) Delete(ctx context.Context, id string) error {
	err := s.observe("delete", func() error {
		return s.store.Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	s.cache.Invalidate(ctx, cacheKeyType, id)
	return nil
}

// CountByStatus delegates to the underlying store
func (s *CachedStore) CountByStatus(ctx context.Context) (int64, int64, error) {
	return s.store.CountByStatus(ctx)
}

func (s *CachedStore) observe(operation string, fn func() error) error {
	start := time.Now()
	err := fn()

	if s.metrics != nil {
		status := "ok"
		if err != nil {
			status = "error"
			s.metrics.StoreErrorsTotal.WithLabelValues(operation, cacheKeyType).Inc()
		}
		s.metrics.StoreOperationsTotal.WithLabelValues(operation, cacheKeyType, status).Inc()
		s.metrics.StoreOperationDuration.WithLabelValues(operation, cacheKeyType).Observe(time.Since(start).Seconds())
	}

	return err
}
