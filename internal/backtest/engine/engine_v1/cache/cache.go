package cache

import (
	"github.com/moznion/go-optional"
)

// Cache is the per-run state object handed to a strategy on every entry check.
// The engine resets it before each run so no state leaks between runs.
type Cache interface {
	Reset()
	Set(key string, value any)
	Get(key string) (any, bool)
	Delete(key string)
}

type CacheV1 struct {
	data map[string]any
}

func NewCacheV1() Cache {
	return &CacheV1{
		data: make(map[string]any),
	}
}

// Reset implements cache.Cache.
func (c *CacheV1) Reset() {
	c.data = make(map[string]any)
}

// Set cache data by key.
func (c *CacheV1) Set(key string, value any) {
	c.data[key] = value
}

// Get cache data by key.
func (c *CacheV1) Get(key string) (any, bool) {
	value, ok := c.data[key]

	return value, ok
}

func (c *CacheV1) Delete(key string) {
	delete(c.data, key)
}

// GetAs returns the value stored under key when it has type T.
func GetAs[T any](c Cache, key string) optional.Option[T] {
	value, ok := c.Get(key)
	if !ok {
		return optional.None[T]()
	}

	typed, ok := value.(T)
	if !ok {
		return optional.None[T]()
	}

	return optional.Some(typed)
}
