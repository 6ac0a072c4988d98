package bus

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testQuery struct {
	Key     string
	invalid bool
}

func (q testQuery) Validate() error {
	if q.invalid {
		return errors.New("invalid test query")
	}
	return nil
}

func TestQueryBus_RegisterAndAsk(t *testing.T) {
	b := NewQueryBus()

	handler := QueryHandlerFunc(func(ctx context.Context, query Query) (interface{}, error) {
		return query.(testQuery).Key + "-result", nil
	})
	require.NoError(t, b.Register(testQuery{}, handler))

	result, err := b.Ask(context.Background(), testQuery{Key: "a"})
	require.NoError(t, err)
	assert.Equal(t, "a-result", result)
}

func TestQueryBus_UnregisteredQuery(t *testing.T) {
	b := NewQueryBus()

	_, err := b.Ask(context.Background(), testQuery{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no handler registered")
}

func TestQueryBus_ValidationFailure(t *testing.T) {
	b := NewQueryBus()

	handler := QueryHandlerFunc(func(ctx context.Context, query Query) (interface{}, error) {
		t.Fatal("handler must not run for an invalid query")
		return nil, nil
	})
	require.NoError(t, b.Register(testQuery{}, handler))

	_, err := b.Ask(context.Background(), testQuery{invalid: true})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
}

// mapCache is a minimal Cache for middleware tests
type mapCache struct {
	mu      sync.Mutex
	entries map[string]interface{}
}

func newMapCache() *mapCache {
	return &mapCache{entries: make(map[string]interface{})}
}

func (c *mapCache) Get(ctx context.Context, key string) (interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	value, found := c.entries[key]
	return value, found
}

func (c *mapCache) Set(ctx context.Context, key string, value interface{}, ttl int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = value
	return nil
}

func TestCachingMiddleware(t *testing.T) {
	cache := newMapCache()
	middleware := NewCachingMiddleware(cache, 5)

	calls := 0
	wrapped := middleware.Wrap(QueryHandlerFunc(func(ctx context.Context, query Query) (interface{}, error) {
		calls++
		return calls, nil
	}))

	ctx := context.Background()

	// First ask computes, second is served from cache
	first, err := wrapped.Handle(ctx, testQuery{Key: "a"})
	require.NoError(t, err)
	second, err := wrapped.Handle(ctx, testQuery{Key: "a"})
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, calls)

	// A different query value is a different cache key
	_, err = wrapped.Handle(ctx, testQuery{Key: "b"})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestCachingMiddleware_ErrorsAreNotCached(t *testing.T) {
	cache := newMapCache()
	middleware := NewCachingMiddleware(cache, 5)

	calls := 0
	wrapped := middleware.Wrap(QueryHandlerFunc(func(ctx context.Context, query Query) (interface{}, error) {
		calls++
		if calls == 1 {
			return nil, errors.New("transient failure")
		}
		return "recovered", nil
	}))

	ctx := context.Background()

	_, err := wrapped.Handle(ctx, testQuery{Key: "a"})
	require.Error(t, err)

	result, err := wrapped.Handle(ctx, testQuery{Key: "a"})
	require.NoError(t, err)
	assert.Equal(t, "recovered", result)
	assert.Equal(t, 2, calls)
}
