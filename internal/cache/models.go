// Package cache holds small mutex-guarded lookup tables shared between the
// frame loop and background loaders.
package cache

import (
	"context"
	"sync"
)

// ModelCache remembers which models the host has streamed in and which failed,
// so a mission with many copies of one model requests it once.
type ModelCache struct {
	mu     sync.RWMutex
	models map[uint32]error
}

// NewModelCache creates an empty ModelCache.
func NewModelCache() *ModelCache {
	return &ModelCache{
		models: make(map[uint32]error),
	}
}

// Get returns the load result of a model and whether it was requested at all.
func (c *ModelCache) Get(model uint32) (error, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	err, ok := c.models[model]
	return err, ok
}

// Loaded reports whether the model was requested and loaded successfully.
func (c *ModelCache) Loaded(model uint32) bool {
	err, ok := c.Get(model)
	return ok && err == nil
}

// Set stores a load result. A nil error marks the model loaded.
func (c *ModelCache) Set(model uint32, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.models[model] = err
}

// Ensure runs load for a model that has no cached result and caches the
// outcome. Cancellation is returned but not cached.
func (c *ModelCache) Ensure(ctx context.Context, model uint32, load func(context.Context, uint32) error) error {
	if err, ok := c.Get(model); ok {
		return err
	}
	err := load(ctx, model)
	if err != nil && ctx.Err() != nil {
		return err
	}
	c.Set(model, err)
	return err
}

// Failed returns the number of models that could not be loaded.
func (c *ModelCache) Failed() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	n := 0
	for _, err := range c.models {
		if err != nil {
			n++
		}
	}
	return n
}

// Len returns the number of cached models.
func (c *ModelCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.models)
}

// Reset clears all cached results
func (c *ModelCache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.models = make(map[uint32]error)
}

// SafeCounter is a thread-safe counter
type SafeCounter struct {
	mu sync.Mutex
	v  int
}

func (c *SafeCounter) Value() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.v
}

func (c *SafeCounter) Set(v int) {
	c.mu.Lock()
	c.v = v
	c.mu.Unlock()
}

func (c *SafeCounter) Inc() {
	c.mu.Lock()
	c.v++
	c.mu.Unlock()
}
