package cache

import (
	"time"

	"github.com/cachekit/cachekit/logger"
)

// DefaultMaxEntries bounds the memory backend when WithMaxEntries is not
// given.
const DefaultMaxEntries = 1 << 16

// DefaultBucket is the bolt bucket entries are stored in when WithBucket is
// not given.
const DefaultBucket = "cache"

// config holds the resolved configuration shared by the façade and the
// backends.
type config struct {
	defaultTTL time.Duration
	log        logger.Logger
	maxEntries int64
	bucket     string
}

// Option configures a Cache or a Backend.
type Option func(*config)

func defaultConfig() config {
	return config{
		defaultTTL: defaultTTLFromEnv(),
		log:        logger.NewConsoleLogger(logger.LevelFromEnv()),
		maxEntries: DefaultMaxEntries,
		bucket:     DefaultBucket,
	}
}

func applyOptions(opts []Option) config {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// WithDefaultTTL sets the entry lifetime used when Set is called with a
// zero TTL. Defaults to CACHEKIT_DEFAULT_TTL when set, DefaultTTL (1 hour)
// otherwise.
func WithDefaultTTL(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.defaultTTL = d
		}
	}
}

// WithLogger sets the logger used by backends for eviction and clear
// diagnostics. Defaults to a console logger at the level named by
// CACHEKIT_LOG_LEVEL.
func WithLogger(log logger.Logger) Option {
	return func(c *config) {
		if log != nil {
			c.log = log
		}
	}
}

// WithMaxEntries bounds how many entries the memory backend may hold before
// its admission policy starts evicting. Defaults to DefaultMaxEntries.
func WithMaxEntries(n int64) Option {
	return func(c *config) {
		if n > 0 {
			c.maxEntries = n
		}
	}
}

// WithBucket sets the bolt bucket name, namespacing multiple caches in one
// database file. Defaults to DefaultBucket.
func WithBucket(name string) Option {
	return func(c *config) {
		if name != "" {
			c.bucket = name
		}
	}
}
