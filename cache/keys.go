package cache

import (
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/cockroachdb/errors"
)

// reservedKeyChars are characters a raw key may never contain.
const reservedKeyChars = `{}()/\@:;`

// ValidateKey checks a raw application key against the key format rules:
// it must be non-empty and must not contain any reserved character.
// Validation always applies to the raw key — the hashed token derived from
// it is what actually touches storage, and hashing would render a character
// check on the token meaningless.
func ValidateKey(key string) error {
	if key == "" {
		return ErrKeyEmpty
	}
	if strings.ContainsAny(key, reservedKeyChars) {
		return errors.Wrapf(ErrKeyInvalidChars, "key %q", key)
	}
	return nil
}

// HashKey derives the physical storage token for a raw key: a 128-bit
// digest rendered as 32 lowercase hex characters. The digest is built from
// two xxhash64 lanes, the second domain-separated, so two distinct raw keys
// collide only with negligible probability. The token is deterministic and
// safe to use as a filename.
func HashKey(key string) string {
	lo := xxhash.Sum64String(key)
	hi := xxhash.Sum64String("\x00cachekit\x00" + key)
	return fmt.Sprintf("%016x%016x", hi, lo)
}
