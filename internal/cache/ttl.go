// Package cache is a typed view over go-cache for values that expire after a
// fixed TTL.
package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// TTL is safe for concurrent use.
type TTL[T any] struct {
	items *gocache.Cache
}

// NewTTL stores entries for ttl and sweeps expired ones every cleanup
// interval. A non-positive cleanup disables the background sweep.
func NewTTL[T any](ttl, cleanup time.Duration) *TTL[T] {
	return &TTL[T]{items: gocache.New(ttl, cleanup)}
}

func (c *TTL[T]) Get(key string) (T, bool) {
	var zero T

	v, ok := c.items.Get(key)
	if !ok {
		return zero, false
	}

	value, ok := v.(T)
	if !ok {
		return zero, false
	}

	return value, true
}

func (c *TTL[T]) Set(key string, value T) {
	c.items.SetDefault(key, value)
}

func (c *TTL[T]) Delete(key string) {
	c.items.Delete(key)
}

// Purge drops expired entries.
func (c *TTL[T]) Purge() {
	c.items.DeleteExpired()
}

// Len counts stored entries, including expired ones not yet purged.
func (c *TTL[T]) Len() int {
	return c.items.ItemCount()
}
