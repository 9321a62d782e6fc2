package cache

import (
	"context"
	"time"
)

// Backend is the storage capability contract shared by every cache backend.
// A backend stores opaque payloads under hashed key tokens; it never sees
// raw application keys or deserialized values. Implementations must be safe
// for concurrent use.
type Backend interface {
	// Write persists payload under hashedKey with an absolute expiration
	// deadline, overwriting any existing entry. Callers never observe a
	// partially written entry.
	Write(ctx context.Context, hashedKey string, payload []byte, deadline time.Time) error

	// Read returns the stored payload without enforcing the deadline —
	// staleness is checked via Exists first. The bool reports presence.
	Read(ctx context.Context, hashedKey string) ([]byte, bool, error)

	// Exists reports whether an entry is present and not expired. A
	// present-but-expired entry is removed as a side effect before false
	// is returned.
	Exists(ctx context.Context, hashedKey string) (bool, error)

	// Remove deletes the entry. Removing a key that does not exist is a
	// no-op success.
	Remove(ctx context.Context, hashedKey string) error

	// Clear removes every entry owned by this backend. Every entry is
	// attempted even when earlier deletions fail; the combined error is
	// returned.
	Clear(ctx context.Context) error

	// Close releases resources held by the backend.
	Close() error
}
