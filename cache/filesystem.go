package cache

import (
	"context"
	"encoding/binary"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/cachekit/cachekit/logger"
	"github.com/cachekit/cachekit/sys"
)

// headerLen is the size of the deadline header prepended to every stored
// payload: the expiration deadline as big-endian unix seconds. An explicit
// header avoids overloading the file modification time, which is subject to
// filesystem clock granularity.
const headerLen = 8

type filesystemBackend struct {
	root string
	log  logger.Logger
}

var _ Backend = (*filesystemBackend)(nil)

// DefaultRoot returns the storage root used when none is supplied:
// a cachekit directory under the user cache dir, or under the system temp
// dir when no user cache dir is available.
func DefaultRoot() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "cachekit")
	}
	return filepath.Join(os.TempDir(), "cachekit")
}

// NewFilesystemBackend returns a Backend storing one file per hashed key
// under root. An empty root selects DefaultRoot. The root is created if
// missing and must be both readable and writable; construction fails with
// ErrInvalidDirectory otherwise. The root is fixed for the lifetime of the
// backend.
func NewFilesystemBackend(root string, opts ...Option) (Backend, error) {
	cfg := applyOptions(opts)
	if root == "" {
		root = DefaultRoot()
	}
	if err := sys.EnsureDir(root); err != nil {
		return nil, errors.Wrapf(ErrInvalidDirectory, "%s: %v", root, err)
	}
	if err := sys.ValidateDir(root); err != nil {
		return nil, errors.Wrapf(ErrInvalidDirectory, "%s: %v", root, err)
	}
	return &filesystemBackend{root: root, log: cfg.log}, nil
}

func (b *filesystemBackend) path(hashedKey string) string {
	return filepath.Join(b.root, hashedKey)
}

func encodeEntry(payload []byte, deadline time.Time) []byte {
	buf := make([]byte, headerLen+len(payload))
	binary.BigEndian.PutUint64(buf[:headerLen], uint64(deadline.Unix()))
	copy(buf[headerLen:], payload)
	return buf
}

func (b *filesystemBackend) Write(_ context.Context, hashedKey string, payload []byte, deadline time.Time) error {
	// Write to a temp file in the same directory and rename over the
	// target so readers never observe a torn entry.
	tmp, err := os.CreateTemp(b.root, hashedKey+".*")
	if err != nil {
		return errors.Wrapf(err, "cache: writing entry %s", hashedKey)
	}
	if _, err := tmp.Write(encodeEntry(payload, deadline)); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return errors.Wrapf(err, "cache: writing entry %s", hashedKey)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return errors.Wrapf(err, "cache: writing entry %s", hashedKey)
	}
	if err := os.Rename(tmp.Name(), b.path(hashedKey)); err != nil {
		os.Remove(tmp.Name())
		return errors.Wrapf(err, "cache: writing entry %s", hashedKey)
	}
	return nil
}

func (b *filesystemBackend) Read(_ context.Context, hashedKey string) ([]byte, bool, error) {
	buf, err := os.ReadFile(b.path(hashedKey))
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrapf(err, "cache: reading entry %s", hashedKey)
	}
	if len(buf) < headerLen {
		return nil, false, nil
	}
	return buf[headerLen:], true, nil
}

func (b *filesystemBackend) Exists(ctx context.Context, hashedKey string) (bool, error) {
	f, err := os.Open(b.path(hashedKey))
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, errors.Wrapf(err, "cache: checking entry %s", hashedKey)
	}
	var header [headerLen]byte
	_, err = io.ReadFull(f, header[:])
	f.Close()
	if err != nil {
		// Too short to carry a deadline; drop the entry.
		b.log.Debug("dropping truncated cache entry %s", hashedKey)
		return false, b.Remove(ctx, hashedKey)
	}
	deadline := time.Unix(int64(binary.BigEndian.Uint64(header[:])), 0)
	if Expired(deadline, time.Now()) {
		b.log.Debug("lazily evicting expired cache entry %s", hashedKey)
		if err := b.Remove(ctx, hashedKey); err != nil {
			return false, err
		}
		return false, nil
	}
	return true, nil
}

func (b *filesystemBackend) Remove(_ context.Context, hashedKey string) error {
	err := os.Remove(b.path(hashedKey))
	if err == nil || errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return errors.Wrapf(err, "cache: removing entry %s", hashedKey)
}

func (b *filesystemBackend) Clear(_ context.Context) error {
	dirEntries, err := os.ReadDir(b.root)
	if err != nil {
		return errors.Wrapf(err, "cache: clearing %s", b.root)
	}
	var errs error
	for _, entry := range dirEntries {
		if entry.IsDir() {
			continue
		}
		if err := os.Remove(filepath.Join(b.root, entry.Name())); err != nil && !errors.Is(err, os.ErrNotExist) {
			b.log.Warn("failed to clear cache entry %s: %v", entry.Name(), err)
			errs = errors.CombineErrors(errs, err)
		}
	}
	return errs
}

func (b *filesystemBackend) Close() error {
	return nil
}
