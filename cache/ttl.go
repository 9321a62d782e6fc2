package cache

import (
	"os"
	"time"

	"github.com/cockroachdb/errors"
	str2duration "github.com/xhit/go-str2duration/v2"
)

// DefaultTTL is the entry lifetime used when a cache is constructed without
// WithDefaultTTL and CACHEKIT_DEFAULT_TTL is not set.
const DefaultTTL = 3600 * time.Second

// TTL expresses how long a cache entry should live. The zero value means
// "use the cache's default TTL". Construct with For, Until, or Parse.
type TTL struct {
	d  time.Duration
	at time.Time
}

// For returns a TTL lasting d from the moment the entry is written.
func For(d time.Duration) TTL {
	return TTL{d: d}
}

// Until returns a TTL expiring at the absolute time t.
func Until(t time.Time) TTL {
	return TTL{at: t}
}

// Parse converts a duration string such as "90s" or "1h30m" into a TTL.
// It accepts the extended day and week units supported by str2duration
// (e.g. "2d12h").
func Parse(s string) (TTL, error) {
	d, err := str2duration.ParseDuration(s)
	if err != nil {
		return TTL{}, errors.Wrapf(err, "cache: parsing ttl %q", s)
	}
	return TTL{d: d}, nil
}

// Deadline resolves the TTL into an absolute expiration deadline with whole
// second resolution. Absent, sub-second, non-positive, and past-pointing
// inputs all fall back to now + def, so the result is strictly in the
// future for any positive def.
func (t TTL) Deadline(now time.Time, def time.Duration) time.Time {
	if !t.at.IsZero() {
		if at := time.Unix(t.at.Unix(), 0); at.After(now) {
			return at
		}
		return time.Unix(now.Unix()+int64(def/time.Second), 0)
	}
	if secs := int64(t.d / time.Second); secs > 0 {
		return time.Unix(now.Unix()+secs, 0)
	}
	return time.Unix(now.Unix()+int64(def/time.Second), 0)
}

// Expired reports whether a deadline has passed. Expiry is inclusive: an
// entry is expired exactly at its deadline, not strictly after it.
func Expired(deadline, now time.Time) bool {
	return !deadline.After(now)
}

// defaultTTLFromEnv reads CACHEKIT_DEFAULT_TTL. Unset, unparsable, or
// non-positive values fall back to DefaultTTL.
func defaultTTLFromEnv() time.Duration {
	s := os.Getenv("CACHEKIT_DEFAULT_TTL")
	if s == "" {
		return DefaultTTL
	}
	d, err := str2duration.ParseDuration(s)
	if err != nil || d <= 0 {
		return DefaultTTL
	}
	return d
}
