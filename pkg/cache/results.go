package cache

import (
	"context"
	"time"

	gocache "github.com/eko/gocache/lib/v4/cache"
	"github.com/eko/gocache/lib/v4/store"
	redisstore "github.com/eko/gocache/store/redis/v4"

	"github.com/trenvio/trenvio/pkg/redis_client"
)

// Results is the optional cross-process cache for serialized lookup
// results, shared between instances through redis. Nil when redis is
// not configured.
type Results struct {
	Cache *gocache.Cache[string]
}

func SetupResults(ttl time.Duration) *Results {
	if redis_client.Client == nil {
		return nil
	}

	redisStore := redisstore.NewRedis(redis_client.Client, store.WithExpiration(ttl))

	return &Results{
		Cache: gocache.New[string](redisStore),
	}
}

func (r *Results) Get(ctx context.Context, key string) (string, bool) {
	if r == nil {
		return "", false
	}

	payload, err := r.Cache.Get(ctx, key)
	if err != nil || payload == "" {
		return "", false
	}

	return payload, true
}

func (r *Results) Set(ctx context.Context, key string, payload string) {
	if r == nil {
		return
	}

	// Best effort; a failed cache write never fails the request.
	_ = r.Cache.Set(ctx, key, payload)
}
