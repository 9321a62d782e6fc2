package cache

import (
	"context"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cachekit/cachekit/logger"
)

// testCaches builds one façade per backend so every façade test runs
// against all of them.
func testCaches(t *testing.T) map[string]*Cache {
	t.Helper()
	fs, err := NewFilesystem(t.TempDir(), WithLogger(logger.NewTestLogger()))
	require.NoError(t, err)
	mem, err := NewMemory(WithLogger(logger.NewTestLogger()))
	require.NoError(t, err)
	bdb, err := NewBolt(filepath.Join(t.TempDir(), "cache.db"), WithLogger(logger.NewTestLogger()))
	require.NoError(t, err)
	caches := map[string]*Cache{"filesystem": fs, "memory": mem, "bolt": bdb}
	t.Cleanup(func() {
		for _, c := range caches {
			c.Close()
		}
	})
	return caches
}

func TestSetGetRoundTrip(t *testing.T) {
	ctx := context.Background()
	for name, c := range testCaches(t) {
		t.Run(name, func(t *testing.T) {
			found, val, err := c.Get(ctx, "greeting")
			assert.NoError(t, err)
			assert.False(t, found)
			assert.Nil(t, val)

			assert.NoError(t, c.Set(ctx, "greeting", "hello", TTL{}))
			found, val, err = c.Get(ctx, "greeting")
			assert.NoError(t, err)
			assert.True(t, found)
			assert.Equal(t, "hello", val)
		})
	}
}

func TestOverwrite(t *testing.T) {
	ctx := context.Background()
	for name, c := range testCaches(t) {
		t.Run(name, func(t *testing.T) {
			assert.NoError(t, c.Set(ctx, "page", "first", TTL{}))
			assert.NoError(t, c.Set(ctx, "page", "second", TTL{}))
			found, val, err := c.Get(ctx, "page")
			assert.NoError(t, err)
			assert.True(t, found)
			assert.Equal(t, "second", val)
		})
	}
}

func TestZeroValueIsAHit(t *testing.T) {
	ctx := context.Background()
	for name, c := range testCaches(t) {
		t.Run(name, func(t *testing.T) {
			assert.NoError(t, c.Set(ctx, "empty", "", TTL{}))
			found, val, err := c.Get(ctx, "empty")
			assert.NoError(t, err)
			assert.True(t, found, "a cached zero value is a hit, not a miss")
			assert.Equal(t, "", val)

			assert.NoError(t, c.Set(ctx, "zero", 0, TTL{}))
			foundInt, n, err := Get[int](ctx, c, "zero")
			assert.NoError(t, err)
			assert.True(t, foundInt)
			assert.Equal(t, 0, n)

			// GetOr only substitutes the default on a genuine miss.
			v, err := GetOr(ctx, c, "zero", 99)
			assert.NoError(t, err)
			assert.Equal(t, 0, v)
			v, err = GetOr(ctx, c, "absent", 99)
			assert.NoError(t, err)
			assert.Equal(t, 99, v)
		})
	}
}

func TestHasAndDelete(t *testing.T) {
	ctx := context.Background()
	for name, c := range testCaches(t) {
		t.Run(name, func(t *testing.T) {
			ok, err := c.Has(ctx, "missing")
			assert.NoError(t, err)
			assert.False(t, ok)

			assert.NoError(t, c.Set(ctx, "present", "value", TTL{}))
			ok, err = c.Has(ctx, "present")
			assert.NoError(t, err)
			assert.True(t, ok)

			assert.NoError(t, c.Delete(ctx, "present"))
			ok, err = c.Has(ctx, "present")
			assert.NoError(t, err)
			assert.False(t, ok)

			// Deleting an absent key is a no-op success.
			assert.NoError(t, c.Delete(ctx, "present"))
		})
	}
}

func TestClearRemovesEverything(t *testing.T) {
	ctx := context.Background()
	keys := []string{"index", "about", "blog", "contact"}
	for name, c := range testCaches(t) {
		t.Run(name, func(t *testing.T) {
			for _, key := range keys {
				require.NoError(t, c.Set(ctx, key, "<html>"+key+"</html>", TTL{}))
			}
			assert.NoError(t, c.Clear(ctx))
			for _, key := range keys {
				ok, err := c.Has(ctx, key)
				assert.NoError(t, err)
				assert.False(t, ok, "key %q survived clear", key)
			}
		})
	}
}

func TestTTLExpiry(t *testing.T) {
	ctx := context.Background()
	for name, c := range testCaches(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, c.Set(ctx, "ephemeral", "value", For(time.Second)))
			ok, err := c.Has(ctx, "ephemeral")
			assert.NoError(t, err)
			assert.True(t, ok)

			time.Sleep(1300 * time.Millisecond)

			ok, err = c.Has(ctx, "ephemeral")
			assert.NoError(t, err)
			assert.False(t, ok)
			found, _, err := c.Get(ctx, "ephemeral")
			assert.NoError(t, err)
			assert.False(t, found)
		})
	}
}

func TestInvalidKeysRejected(t *testing.T) {
	ctx := context.Background()
	for name, c := range testCaches(t) {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, c.Set(ctx, "", "v", TTL{}), ErrKeyEmpty)
			assert.ErrorIs(t, c.Set(ctx, "a/b", "v", TTL{}), ErrKeyInvalidChars)

			_, _, err := c.Get(ctx, "a:b")
			assert.ErrorIs(t, err, ErrInvalidKey)
			_, err = c.Has(ctx, "a@b")
			assert.ErrorIs(t, err, ErrInvalidKey)
			assert.ErrorIs(t, c.Delete(ctx, "a;b"), ErrInvalidKey)
		})
	}
}

func TestBulkRoundTrip(t *testing.T) {
	ctx := context.Background()
	for name, c := range testCaches(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, c.SetMultiple(ctx, map[string]any{"a": 1, "b": 2}, TTL{}))

			got, err := GetMultipleOr(ctx, c, []string{"a", "b", "c"}, 0)
			assert.NoError(t, err)
			assert.Equal(t, map[string]int{"a": 1, "b": 2, "c": 0}, got)
		})
	}
}

func TestGetMultiple(t *testing.T) {
	ctx := context.Background()
	for name, c := range testCaches(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, c.Set(ctx, "x", "ex", TTL{}))
			got, err := c.GetMultiple(ctx, []string{"x", "missing"})
			assert.NoError(t, err)
			assert.Equal(t, map[string]any{"x": "ex", "missing": nil}, got)
		})
	}
}

func TestBulkNilCollections(t *testing.T) {
	ctx := context.Background()
	for name, c := range testCaches(t) {
		t.Run(name, func(t *testing.T) {
			_, err := c.GetMultiple(ctx, nil)
			assert.ErrorIs(t, err, ErrInvalidIterable)
			assert.ErrorIs(t, c.SetMultiple(ctx, nil, TTL{}), ErrInvalidIterable)
			assert.ErrorIs(t, c.DeleteMultiple(ctx, nil), ErrInvalidIterable)
			_, err = GetMultipleOr(ctx, c, nil, "")
			assert.ErrorIs(t, err, ErrInvalidIterable)
		})
	}
}

func TestSetMultiplePartialFailure(t *testing.T) {
	ctx := context.Background()
	for name, c := range testCaches(t) {
		t.Run(name, func(t *testing.T) {
			err := c.SetMultiple(ctx, map[string]any{
				"good":    "kept",
				"bad/key": "rejected",
			}, TTL{})
			assert.ErrorIs(t, err, ErrInvalidKey)

			// The valid pair was still attempted and written.
			ok, hasErr := c.Has(ctx, "good")
			assert.NoError(t, hasErr)
			assert.True(t, ok, "valid keys must be written even when a sibling fails")
		})
	}
}

func TestDeleteMultiple(t *testing.T) {
	ctx := context.Background()
	for name, c := range testCaches(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, c.Set(ctx, "one", 1, TTL{}))
			require.NoError(t, c.Set(ctx, "two", 2, TTL{}))

			// The absent key is a no-op success, so the aggregate is nil.
			assert.NoError(t, c.DeleteMultiple(ctx, []string{"one", "two", "never-set"}))
			for _, key := range []string{"one", "two"} {
				ok, err := c.Has(ctx, key)
				assert.NoError(t, err)
				assert.False(t, ok)
			}
		})
	}
}

func TestGetMultipleIndependentErrors(t *testing.T) {
	ctx := context.Background()
	for name, c := range testCaches(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, c.Set(ctx, "valid", "v", TTL{}))
			got, err := c.GetMultiple(ctx, []string{"valid", "bad{key"})
			assert.ErrorIs(t, err, ErrInvalidKey)
			// The valid key was still fetched.
			assert.Equal(t, "v", got["valid"])
		})
	}
}

func TestUnserializableValue(t *testing.T) {
	ctx := context.Background()
	for name, c := range testCaches(t) {
		t.Run(name, func(t *testing.T) {
			err := c.Set(ctx, "fn", func() {}, TTL{})
			assert.Error(t, err)
			ok, hasErr := c.Has(ctx, "fn")
			assert.NoError(t, hasErr)
			assert.False(t, ok, "a failed Set must not leave an entry behind")
		})
	}
}

func TestTypedStructRoundTrip(t *testing.T) {
	ctx := context.Background()
	type page struct {
		Title string `msgpack:"title"`
		Views int    `msgpack:"views"`
	}
	for name, c := range testCaches(t) {
		t.Run(name, func(t *testing.T) {
			want := page{Title: "About", Views: 7}
			require.NoError(t, c.Set(ctx, "about", want, TTL{}))
			found, got, err := Get[page](ctx, c, "about")
			assert.NoError(t, err)
			assert.True(t, found)
			assert.Equal(t, want, got)
		})
	}
}

func TestWithDefaultTTLOption(t *testing.T) {
	ctx := context.Background()
	c, err := NewMemory(WithDefaultTTL(time.Second))
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, c.Set(ctx, "short-lived", "v", TTL{}))
	ok, err := c.Has(ctx, "short-lived")
	assert.NoError(t, err)
	assert.True(t, ok)

	time.Sleep(1300 * time.Millisecond)
	ok, err = c.Has(ctx, "short-lived")
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestGetMultipleKeyOrderIrrelevant(t *testing.T) {
	ctx := context.Background()
	c, err := NewMemory()
	require.NoError(t, err)
	defer c.Close()

	keys := []string{"delta", "alpha", "charlie", "bravo"}
	for _, key := range keys {
		require.NoError(t, c.Set(ctx, key, key, TTL{}))
	}
	got, err := c.GetMultiple(ctx, keys)
	assert.NoError(t, err)
	assert.Len(t, got, len(keys))

	sorted := append([]string(nil), keys...)
	sort.Strings(sorted)
	for _, key := range sorted {
		assert.Equal(t, key, got[key])
	}
}
