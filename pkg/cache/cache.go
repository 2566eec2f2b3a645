package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/bluele/gcache"
	"golang.org/x/sync/singleflight"
)

// LoaderFunc produces the value for a missing key, typically by
// running the full fetch pipeline.
type LoaderFunc[T any] func(ctx context.Context, key string) (T, error)

// Cache is a bounded TTL cache in front of a loader. It exists to
// bound the request rate against the upstream sites during bursts of
// near-simultaneous requests for the same subject, while keeping
// displayed delays acceptably fresh. Concurrent misses for one key
// collapse into a single loader call.
type Cache[T any] struct {
	store  gcache.Cache
	loader LoaderFunc[T]
	group  singleflight.Group
}

const (
	DefaultCapacity = 100
	DefaultTTL      = 45 * time.Second
)

func New[T any](capacity int, ttl time.Duration, loader LoaderFunc[T]) *Cache[T] {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	return &Cache[T]{
		store:  gcache.New(capacity).LRU().Expiration(ttl).Build(),
		loader: loader,
	}
}

// Key builds the cache key for a subject and optional date.
func Key(subjectID string, date *time.Time) string {
	if date == nil {
		return subjectID
	}

	return fmt.Sprintf("%s@%s", subjectID, date.Format("2006-01-02"))
}

// Get returns the cached value or runs the loader. Loader failures are
// not cached.
func (c *Cache[T]) Get(ctx context.Context, key string) (T, error) {
	if cached, err := c.store.GetIFPresent(key); err == nil {
		return cached.(T), nil
	}

	value, err, _ := c.group.Do(key, func() (any, error) {
		if cached, err := c.store.GetIFPresent(key); err == nil {
			return cached, nil
		}

		loaded, err := c.loader(ctx, key)
		if err != nil {
			return nil, err
		}

		c.store.Set(key, loaded)

		return loaded, nil
	})

	if err != nil {
		var empty T
		return empty, err
	}

	return value.(T), nil
}
