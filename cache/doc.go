// Package cache provides a key-value cache with per-entry TTL expiration
// over interchangeable storage backends.
//
// # Façade and Backends
//
// [Cache] is the public surface: [Cache.Get], [Cache.Set], [Cache.Delete],
// [Cache.Has], [Cache.Clear], and the bulk variants [Cache.GetMultiple],
// [Cache.SetMultiple], and [Cache.DeleteMultiple]. It is built over a
// [Backend], selected at construction, so storage can be swapped without
// changing application code.
//
// Three backends are provided:
//
//   - [NewFilesystemBackend] — one file per entry under a storage root. Each
//     file carries an 8-byte header holding the expiration deadline, so
//     expiry survives process restarts and does not depend on filesystem
//     timestamps. Writes go through a temp file and rename, so readers never
//     observe a torn entry.
//
//   - [NewMemoryBackend] — an in-process store backed by
//     [github.com/dgraph-io/ristretto/v2] with native per-entry TTL
//     eviction. Since ristretto does not enumerate keys, the backend keeps
//     its own key registry for Clear; the registry tolerates entries
//     ristretto has already evicted.
//
//   - [NewBoltBackend] — a [go.etcd.io/bbolt] database with one bucket per
//     cache. Persistent like the filesystem backend, but a single file.
//
// The convenience constructors [NewFilesystem], [NewMemory], and [NewBolt]
// build the façade and backend together.
//
// # Keys
//
// Raw keys must be non-empty and must not contain any of the reserved
// characters {}()/\@:;. Invalid keys are rejected eagerly with an error
// matching [ErrInvalidKey]. Internally every raw key is mapped to a
// fixed-length hex digest ([HashKey]) that serves as the physical storage
// token, so arbitrary printable keys are safe regardless of backend.
//
// # Expiration
//
// Every entry has an absolute expiration deadline, derived from a [TTL] at
// write time: a relative duration ([For]), an absolute time ([Until]), a
// parsed duration string ([Parse]), or the zero TTL, which applies the
// cache's default lifetime (DefaultTTL, overridable with [WithDefaultTTL]
// or the CACHEKIT_DEFAULT_TTL environment variable). Expiry is lazy: an
// expired entry is detected and removed when it is next accessed through
// Has or Get — there is no background sweep. An entry expires exactly at
// its deadline, not strictly after it.
//
// # Misses and Zero Values
//
// Get reports presence with an explicit bool, so a cached zero value (an
// empty string, 0, nil slice) is a hit, distinguishable from an absent or
// expired key. Callers wanting a fallback value use [GetOr] or
// [GetMultipleOr], which substitute a default only on a genuine miss.
//
// # Bulk Operations
//
// Bulk operations fan out over the single-key operations. Every element is
// attempted regardless of earlier failures; the combined error is nil only
// when every element succeeded. Partial effects are a normal outcome, not
// an error state — callers detect which keys failed by re-querying.
//
// # Serialization
//
// Values are serialized with msgpack
// ([github.com/vmihailenco/msgpack/v5]). Most Go types work out of the box:
// primitives, structs with exported fields, maps, slices, and pointers.
// Functions and channels cannot be serialized and cause Set to fail.
//
// # Concurrency
//
// Every operation is a blocking call that completes before returning.
// Backends are safe for concurrent use in one process, but the filesystem
// backend's storage root is a shared external resource: concurrent
// processes writing the same key race without coordination, and a key
// observed by Has can expire before a following Get. That window is
// accepted — this cache is for warming reads, not get-after-has
// correctness.
//
// # Cache-Aside
//
// [Exec] combines lookup and population in one call:
//
//	found, user, err := cache.Exec(ctx, cache.CacheConfig{Key: "user:123"}, c,
//	    func(ctx context.Context) (User, bool, error) {
//	        user, err := loadUser(ctx, id)
//	        if errors.Is(err, sql.ErrNoRows) {
//	            return User{}, false, nil // not found — won't be cached
//	        }
//	        return user, true, err
//	    },
//	)
//
// Concurrent callers missing on the same key share a single invocation via
// singleflight.
package cache
