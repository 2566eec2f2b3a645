package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheHitSkipsLoader(t *testing.T) {
	var calls atomic.Int32

	c := New[string](10, time.Minute, func(ctx context.Context, key string) (string, error) {
		calls.Add(1)
		return "value-" + key, nil
	})

	first, err := c.Get(context.Background(), "IR1621")
	require.NoError(t, err)
	assert.Equal(t, "value-IR1621", first)

	second, err := c.Get(context.Background(), "IR1621")
	require.NoError(t, err)
	assert.Equal(t, first, second)

	assert.Equal(t, int32(1), calls.Load())
}

func TestCacheDoesNotCacheFailures(t *testing.T) {
	var calls atomic.Int32

	c := New[string](10, time.Minute, func(ctx context.Context, key string) (string, error) {
		if calls.Add(1) == 1 {
			return "", errors.New("upstream down")
		}
		return "recovered", nil
	})

	_, err := c.Get(context.Background(), "key")
	require.Error(t, err)

	value, err := c.Get(context.Background(), "key")
	require.NoError(t, err)
	assert.Equal(t, "recovered", value)
}

func TestCacheCollapsesConcurrentMisses(t *testing.T) {
	var calls atomic.Int32
	release := make(chan struct{})

	c := New[string](10, time.Minute, func(ctx context.Context, key string) (string, error) {
		calls.Add(1)
		<-release
		return "shared", nil
	})

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			value, err := c.Get(context.Background(), "same-key")
			assert.NoError(t, err)
			assert.Equal(t, "shared", value)
		}()
	}

	// Give the goroutines time to pile up on the same flight.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
}

func TestKey(t *testing.T) {
	assert.Equal(t, "IR1621", Key("IR1621", nil))

	date := time.Date(2025, 2, 1, 10, 30, 0, 0, time.UTC)
	assert.Equal(t, "IR1621@2025-02-01", Key("IR1621", &date))
}
