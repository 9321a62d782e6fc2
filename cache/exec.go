package cache

import "context"

// CacheConfig configures the Exec helper.
type CacheConfig struct {
	// Key is the cache key. Required.
	Key string
	// TTL is the lifetime for a freshly produced value. The zero value
	// uses the cache's default TTL.
	TTL TTL
}

// Invoker produces a value of type T on a cache miss. The bool return
// distinguishes "not found" from "found a zero value": return false to
// signal absence without caching anything.
type Invoker[T any] func(ctx context.Context) (T, bool, error)

type execResult[T any] struct {
	val   T
	found bool
}

// Exec is a cache-aside helper. It checks the cache for config.Key first;
// on a hit the cached value is returned. On a miss, invoke produces the
// value, which is stored and returned when found. Concurrent callers
// missing on the same key share a single invocation. Cache read errors are
// propagated without calling invoke; a failed Set after a successful invoke
// is swallowed, since the caller already has their value.
func Exec[T any](ctx context.Context, config CacheConfig, c *Cache, invoke Invoker[T]) (bool, T, error) {
	var zero T
	found, val, err := Get[T](ctx, c, config.Key)
	if err != nil {
		return false, zero, err
	}
	if found {
		return true, val, nil
	}

	v, err, _ := c.flight.Do(config.Key, func() (any, error) {
		// An earlier flight may have populated the key while this caller
		// was waiting; check again before invoking.
		if found, val, err := Get[T](ctx, c, config.Key); err != nil || found {
			return execResult[T]{val: val, found: found}, err
		}
		val, ok, err := invoke(ctx)
		if err != nil {
			return nil, err
		}
		if !ok {
			return execResult[T]{}, nil
		}
		_ = c.Set(ctx, config.Key, val, config.TTL)
		return execResult[T]{val: val, found: true}, nil
	})
	if err != nil {
		return false, zero, err
	}
	res := v.(execResult[T])
	return res.found, res.val, nil
}
