package cache

import (
	"bytes"
	"context"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/dgraph-io/ristretto/v2"

	"github.com/cachekit/cachekit/logger"
)

// memoryBackend stores entries in an in-process ristretto cache, which
// handles per-entry TTL eviction natively. Ristretto does not expose key
// enumeration, so the backend keeps its own registry of written keys for
// Clear. The registry is an index, not the source of truth: entries evicted
// natively while still registered are treated as already deleted.
type memoryBackend struct {
	rc  *ristretto.Cache[string, []byte]
	log logger.Logger

	mu   sync.Mutex
	keys map[string]struct{}
}

var _ Backend = (*memoryBackend)(nil)

// NewMemoryBackend returns a process-local Backend. Use WithMaxEntries to
// bound how many entries it may hold.
func NewMemoryBackend(opts ...Option) (Backend, error) {
	cfg := applyOptions(opts)
	rc, err := ristretto.NewCache(&ristretto.Config[string, []byte]{
		NumCounters: cfg.maxEntries * 10,
		MaxCost:     cfg.maxEntries,
		BufferItems: 64,
	})
	if err != nil {
		return nil, errors.Wrap(err, "cache: creating memory backend")
	}
	return &memoryBackend{
		rc:   rc,
		log:  cfg.log,
		keys: make(map[string]struct{}),
	}, nil
}

func (b *memoryBackend) Write(ctx context.Context, hashedKey string, payload []byte, deadline time.Time) error {
	ttl := time.Until(deadline)
	if ttl <= 0 {
		// A deadline already in the past means there is nothing to keep.
		return b.Remove(ctx, hashedKey)
	}
	b.rc.SetWithTTL(hashedKey, bytes.Clone(payload), 1, ttl)
	b.rc.Wait()
	b.mu.Lock()
	b.keys[hashedKey] = struct{}{}
	b.mu.Unlock()
	return nil
}

func (b *memoryBackend) Read(_ context.Context, hashedKey string) ([]byte, bool, error) {
	v, ok := b.rc.Get(hashedKey)
	if !ok {
		return nil, false, nil
	}
	return bytes.Clone(v), true, nil
}

func (b *memoryBackend) Exists(_ context.Context, hashedKey string) (bool, error) {
	if _, ok := b.rc.Get(hashedKey); ok {
		return true, nil
	}
	// Expired natively or never written; heal the registry either way.
	b.mu.Lock()
	if _, tracked := b.keys[hashedKey]; tracked {
		delete(b.keys, hashedKey)
		b.log.Debug("healing key registry for evicted entry %s", hashedKey)
	}
	b.mu.Unlock()
	return false, nil
}

func (b *memoryBackend) Remove(_ context.Context, hashedKey string) error {
	b.rc.Del(hashedKey)
	b.mu.Lock()
	delete(b.keys, hashedKey)
	b.mu.Unlock()
	return nil
}

func (b *memoryBackend) Clear(_ context.Context) error {
	b.mu.Lock()
	keys := make([]string, 0, len(b.keys))
	for k := range b.keys {
		keys = append(keys, k)
	}
	b.keys = make(map[string]struct{})
	b.mu.Unlock()
	for _, k := range keys {
		// Del is a no-op for entries ristretto already evicted, so
		// registry drift costs nothing here.
		b.rc.Del(k)
	}
	return nil
}

func (b *memoryBackend) Close() error {
	b.rc.Close()
	return nil
}
