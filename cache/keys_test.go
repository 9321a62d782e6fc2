package cache

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestValidateKey(t *testing.T) {
	assert.NoError(t, ValidateKey("index"))
	assert.NoError(t, ValidateKey("user.profile-42_v2"))
	assert.NoError(t, ValidateKey("日本語のキー"))

	err := ValidateKey("")
	assert.ErrorIs(t, err, ErrKeyEmpty)
	assert.ErrorIs(t, err, ErrInvalidKey)

	for _, key := range []string{"a/b", `a\b`, "a{b", "a}b", "a(b", "a)b", "a@b", "a:b", "a;b"} {
		err := ValidateKey(key)
		assert.ErrorIs(t, err, ErrKeyInvalidChars, "key %q", key)
		assert.ErrorIs(t, err, ErrInvalidKey, "key %q", key)
	}
}

func TestHashKeyDeterministic(t *testing.T) {
	first := HashKey("blog")
	second := HashKey("blog")
	assert.Equal(t, first, second)
	assert.Len(t, first, 32)
	assert.Regexp(t, "^[0-9a-f]{32}$", first)
}

func TestHashKeyDistinct(t *testing.T) {
	assert.NotEqual(t, HashKey("index"), HashKey("about"))
	assert.NotEqual(t, HashKey("a"), HashKey("aa"))
}

func TestHashKeyCollisions(t *testing.T) {
	const n = 10000
	seen := make(map[string]string, n)
	for i := 0; i < n; i++ {
		key := uuid.NewString()
		hashed := HashKey(key)
		assert.Len(t, hashed, 32)
		if prev, dup := seen[hashed]; dup {
			t.Fatalf("hash collision between %q and %q", prev, key)
		}
		seen[hashed] = key
	}
}
