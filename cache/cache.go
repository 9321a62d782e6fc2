package cache

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/vmihailenco/msgpack/v5"
	"golang.org/x/sync/singleflight"
)

// Cache is the public façade: raw-key operations built on the key codec,
// the expiration policy, and one Backend selected at construction. Values
// are serialized with msgpack on the way in and out; the backend only ever
// sees opaque payload bytes under hashed tokens.
type Cache struct {
	backend Backend
	cfg     config
	flight  singleflight.Group
}

// New builds a cache façade over the given storage backend.
func New(backend Backend, opts ...Option) *Cache {
	return &Cache{backend: backend, cfg: applyOptions(opts)}
}

// NewFilesystem builds a cache over a filesystem backend rooted at root.
// An empty root selects DefaultRoot.
func NewFilesystem(root string, opts ...Option) (*Cache, error) {
	b, err := NewFilesystemBackend(root, opts...)
	if err != nil {
		return nil, err
	}
	return New(b, opts...), nil
}

// NewMemory builds a cache over an in-process memory backend.
func NewMemory(opts ...Option) (*Cache, error) {
	b, err := NewMemoryBackend(opts...)
	if err != nil {
		return nil, err
	}
	return New(b, opts...), nil
}

// NewBolt builds a cache over a bolt backend stored at path.
func NewBolt(path string, opts ...Option) (*Cache, error) {
	b, err := NewBoltBackend(path, opts...)
	if err != nil {
		return nil, err
	}
	return New(b, opts...), nil
}

// payload validates and hashes key, checks liveness, and returns the raw
// stored bytes. The Exists check performs lazy expiration; an entry that
// vanishes between Exists and Read is reported as a miss, which is the
// accepted race for cache usage.
func (c *Cache) payload(ctx context.Context, key string) ([]byte, bool, error) {
	if err := ValidateKey(key); err != nil {
		return nil, false, err
	}
	hashed := HashKey(key)
	ok, err := c.backend.Exists(ctx, hashed)
	if err != nil || !ok {
		return nil, false, err
	}
	return c.backend.Read(ctx, hashed)
}

// Get retrieves the value stored under key. The bool reports presence:
// absent and expired keys are misses, while a cached zero value is a hit.
// Key validation errors are returned eagerly.
func (c *Cache) Get(ctx context.Context, key string) (bool, any, error) {
	data, ok, err := c.payload(ctx, key)
	if err != nil || !ok {
		return false, nil, err
	}
	var val any
	if err := msgpack.Unmarshal(data, &val); err != nil {
		return false, nil, errors.Wrapf(err, "cache: decoding value for key %q", key)
	}
	return true, val, nil
}

// Set stores val under key. A zero TTL uses the cache's default lifetime.
// A nil error means the value was serialized and durably handed to the
// backend; key validation, serialization, and storage failures are all
// reported as errors.
func (c *Cache) Set(ctx context.Context, key string, val any, ttl TTL) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	data, err := msgpack.Marshal(val)
	if err != nil {
		return errors.Wrapf(err, "cache: encoding value for key %q", key)
	}
	deadline := ttl.Deadline(time.Now(), c.cfg.defaultTTL)
	return c.backend.Write(ctx, HashKey(key), data, deadline)
}

// Delete removes key from the cache. Deleting a key that does not exist is
// a no-op success.
func (c *Cache) Delete(ctx context.Context, key string) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	return c.backend.Remove(ctx, HashKey(key))
}

// Has reports whether key is present and not expired. A present-but-expired
// entry is removed before false is returned.
func (c *Cache) Has(ctx context.Context, key string) (bool, error) {
	if err := ValidateKey(key); err != nil {
		return false, err
	}
	return c.backend.Exists(ctx, HashKey(key))
}

// Clear removes every entry owned by the cache's backend.
func (c *Cache) Clear(ctx context.Context) error {
	return c.backend.Clear(ctx)
}

// Close releases the backend's resources.
func (c *Cache) Close() error {
	return c.backend.Close()
}

// GetMultiple retrieves every key independently. The result maps each
// requested raw key to its value, or nil for misses. Every key is attempted
// regardless of earlier failures; per-key errors are combined into the
// returned error. A nil keys slice is ErrInvalidIterable.
func (c *Cache) GetMultiple(ctx context.Context, keys []string) (map[string]any, error) {
	if keys == nil {
		return nil, ErrInvalidIterable
	}
	out := make(map[string]any, len(keys))
	var errs error
	for _, key := range keys {
		found, val, err := c.Get(ctx, key)
		if err != nil {
			errs = errors.CombineErrors(errs, err)
		}
		if !found {
			out[key] = nil
			continue
		}
		out[key] = val
	}
	return out, errs
}

// SetMultiple stores every entry, attempting each pair regardless of
// earlier failures. The result is nil only when every write succeeded;
// partial effects are a normal outcome, detectable by re-querying. A nil
// entries map is ErrInvalidIterable.
func (c *Cache) SetMultiple(ctx context.Context, entries map[string]any, ttl TTL) error {
	if entries == nil {
		return ErrInvalidIterable
	}
	var errs error
	for key, val := range entries {
		errs = errors.CombineErrors(errs, c.Set(ctx, key, val, ttl))
	}
	return errs
}

// DeleteMultiple removes every key, attempting each regardless of earlier
// failures, and combines per-key errors. A nil keys slice is
// ErrInvalidIterable.
func (c *Cache) DeleteMultiple(ctx context.Context, keys []string) error {
	if keys == nil {
		return ErrInvalidIterable
	}
	var errs error
	for _, key := range keys {
		errs = errors.CombineErrors(errs, c.Delete(ctx, key))
	}
	return errs
}

// Get retrieves a typed value from the cache, decoding the stored msgpack
// payload directly into T.
func Get[T any](ctx context.Context, c *Cache, key string) (bool, T, error) {
	var zero T
	data, ok, err := c.payload(ctx, key)
	if err != nil || !ok {
		return false, zero, err
	}
	var out T
	if err := msgpack.Unmarshal(data, &out); err != nil {
		return false, zero, errors.Wrapf(err, "cache: decoding value for key %q", key)
	}
	return true, out, nil
}

// GetOr returns the value stored under key, or def when the key is absent
// or expired. A cached zero value is a hit and is returned as-is, not def.
func GetOr[T any](ctx context.Context, c *Cache, key string, def T) (T, error) {
	found, val, err := Get[T](ctx, c, key)
	if err != nil || !found {
		return def, err
	}
	return val, nil
}

// GetMultipleOr is the bulk form of GetOr: every requested key appears in
// the result, with def filling misses. Every key is attempted; per-key
// errors are combined. A nil keys slice is ErrInvalidIterable.
func GetMultipleOr[T any](ctx context.Context, c *Cache, keys []string, def T) (map[string]T, error) {
	if keys == nil {
		return nil, ErrInvalidIterable
	}
	out := make(map[string]T, len(keys))
	var errs error
	for _, key := range keys {
		val, err := GetOr(ctx, c, key, def)
		if err != nil {
			errs = errors.CombineErrors(errs, err)
		}
		out[key] = val
	}
	return out, errs
}
