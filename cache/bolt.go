package cache

import (
	"context"
	"encoding/binary"
	"time"

	"github.com/cockroachdb/errors"
	bolt "go.etcd.io/bbolt"

	"github.com/cachekit/cachekit/logger"
)

// boltBackend persists entries in a bbolt database, one bucket per cache.
// Entries use the same layout as the filesystem backend: an 8-byte
// big-endian deadline header followed by the payload.
type boltBackend struct {
	db     *bolt.DB
	bucket []byte
	log    logger.Logger
}

var _ Backend = (*boltBackend)(nil)

// NewBoltBackend opens (or creates) a bbolt database at path. Use
// WithBucket to namespace multiple caches in the same file.
func NewBoltBackend(path string, opts ...Option) (Backend, error) {
	cfg := applyOptions(opts)
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, errors.Wrapf(err, "cache: opening bolt database %s", path)
	}
	bucket := []byte(cfg.bucket)
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucket)
		return err
	}); err != nil {
		_ = db.Close()
		return nil, errors.Wrapf(err, "cache: creating bucket %s", cfg.bucket)
	}
	return &boltBackend{db: db, bucket: bucket, log: cfg.log}, nil
}

func (b *boltBackend) Write(_ context.Context, hashedKey string, payload []byte, deadline time.Time) error {
	err := b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(b.bucket).Put([]byte(hashedKey), encodeEntry(payload, deadline))
	})
	return errors.Wrapf(err, "cache: writing entry %s", hashedKey)
}

func (b *boltBackend) Read(_ context.Context, hashedKey string) ([]byte, bool, error) {
	var out []byte
	var found bool
	err := b.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(b.bucket).Get([]byte(hashedKey))
		if v == nil || len(v) < headerLen {
			return nil
		}
		found = true
		// Bolt memory is only valid inside the transaction.
		out = append([]byte(nil), v[headerLen:]...)
		return nil
	})
	if err != nil {
		return nil, false, errors.Wrapf(err, "cache: reading entry %s", hashedKey)
	}
	return out, found, nil
}

func (b *boltBackend) Exists(_ context.Context, hashedKey string) (bool, error) {
	var alive bool
	err := b.db.Update(func(tx *bolt.Tx) error {
		bkt := tx.Bucket(b.bucket)
		v := bkt.Get([]byte(hashedKey))
		if v == nil {
			return nil
		}
		if len(v) < headerLen {
			b.log.Debug("dropping truncated cache entry %s", hashedKey)
			return bkt.Delete([]byte(hashedKey))
		}
		deadline := time.Unix(int64(binary.BigEndian.Uint64(v[:headerLen])), 0)
		if Expired(deadline, time.Now()) {
			b.log.Debug("lazily evicting expired cache entry %s", hashedKey)
			return bkt.Delete([]byte(hashedKey))
		}
		alive = true
		return nil
	})
	if err != nil {
		return false, errors.Wrapf(err, "cache: checking entry %s", hashedKey)
	}
	return alive, nil
}

func (b *boltBackend) Remove(_ context.Context, hashedKey string) error {
	// Bolt's Delete is a no-op for missing keys, matching the contract.
	err := b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(b.bucket).Delete([]byte(hashedKey))
	})
	return errors.Wrapf(err, "cache: removing entry %s", hashedKey)
}

func (b *boltBackend) Clear(_ context.Context) error {
	var keys [][]byte
	if err := b.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(b.bucket).ForEach(func(k, _ []byte) error {
			keys = append(keys, append([]byte(nil), k...))
			return nil
		})
	}); err != nil {
		return errors.Wrapf(err, "cache: clearing bucket %s", b.bucket)
	}
	var errs error
	for _, k := range keys {
		err := b.db.Update(func(tx *bolt.Tx) error {
			return tx.Bucket(b.bucket).Delete(k)
		})
		if err != nil {
			b.log.Warn("failed to clear cache entry %s: %v", k, err)
			errs = errors.CombineErrors(errs, err)
		}
	}
	return errs
}

func (b *boltBackend) Close() error {
	return b.db.Close()
}
