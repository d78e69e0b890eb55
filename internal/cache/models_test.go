package cache

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModelCache_NewModelCache(t *testing.T) {
	cache := NewModelCache()

	require.NotNil(t, cache)
	assert.NotNil(t, cache.models)
	assert.Equal(t, 0, cache.Len())
}

func TestModelCache_SetAndGet(t *testing.T) {
	cache := NewModelCache()
	boom := errors.New("boom")

	cache.Set(1, nil)
	cache.Set(2, boom)

	err, ok := cache.Get(1)
	require.True(t, ok)
	assert.NoError(t, err)
	assert.True(t, cache.Loaded(1))

	err, ok = cache.Get(2)
	require.True(t, ok)
	assert.ErrorIs(t, err, boom)
	assert.False(t, cache.Loaded(2))

	_, ok = cache.Get(3)
	assert.False(t, ok, "expected unknown model to be absent")
	assert.Equal(t, 1, cache.Failed())
}

func TestModelCache_EnsureLoadsOnce(t *testing.T) {
	cache := NewModelCache()
	calls := 0
	load := func(context.Context, uint32) error {
		calls++
		return nil
	}

	for i := 0; i < 3; i++ {
		require.NoError(t, cache.Ensure(context.Background(), 7, load))
	}
	assert.Equal(t, 1, calls)
}

func TestModelCache_EnsureCachesFailure(t *testing.T) {
	cache := NewModelCache()
	boom := errors.New("boom")
	calls := 0
	load := func(context.Context, uint32) error {
		calls++
		return boom
	}

	assert.ErrorIs(t, cache.Ensure(context.Background(), 7, load), boom)
	assert.ErrorIs(t, cache.Ensure(context.Background(), 7, load), boom)
	assert.Equal(t, 1, calls)
}

func TestModelCache_EnsureDoesNotCacheCancellation(t *testing.T) {
	cache := NewModelCache()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := cache.Ensure(ctx, 7, func(ctx context.Context, _ uint32) error { return ctx.Err() })
	assert.ErrorIs(t, err, context.Canceled)
	_, ok := cache.Get(7)
	assert.False(t, ok)
}

func TestModelCache_Reset(t *testing.T) {
	cache := NewModelCache()
	cache.Set(1, nil)
	cache.Set(2, nil)

	cache.Reset()

	assert.Equal(t, 0, cache.Len())
}

func TestModelCache_ConcurrentAccess(t *testing.T) {
	cache := NewModelCache()
	var wg sync.WaitGroup

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(id uint32) {
			defer wg.Done()
			cache.Set(id, nil)
		}(uint32(i))
	}

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(id uint32) {
			defer wg.Done()
			cache.Get(id)
		}(uint32(i))
	}

	wg.Wait()
	assert.Equal(t, 100, cache.Len())
}

func TestSafeCounter(t *testing.T) {
	var c SafeCounter
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Inc()
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, c.Value())

	c.Set(3)
	assert.Equal(t, 3, c.Value())
}
