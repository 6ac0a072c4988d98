package di

import (
	"context"
	"time"

	"memorylane-backend/application/ports"

	gocache "github.com/patrickmn/go-cache"
)

// GoCache adapts patrickmn/go-cache to the Cache port
type GoCache struct {
	cache *gocache.Cache
}

// NewInMemoryCache creates an in-process cache with a 5 minute default TTL.
// In production this could be Redis behind the same port.
func NewInMemoryCache() ports.Cache {
	return &GoCache{
		cache: gocache.New(5*time.Minute, 10*time.Minute),
	}
}

// Get retrieves a value from cache
func (c *GoCache) Get(ctx context.Context, key string) (interface{}, bool) {
	return c.cache.Get(key)
}

// Set stores a value in cache with TTL in seconds
func (c *GoCache) Set(ctx context.Context, key string, value interface{}, ttl int) error {
	duration := gocache.DefaultExpiration
	if ttl > 0 {
		duration = time.Duration(ttl) * time.Second
	}
	c.cache.Set(key, value, duration)
	return nil
}

// Delete removes a value from cache
func (c *GoCache) Delete(ctx context.Context, key string) error {
	c.cache.Delete(key)
	return nil
}

// Clear removes all values from cache
func (c *GoCache) Clear(ctx context.Context) error {
	c.cache.Flush()
	return nil
}
