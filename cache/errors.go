package cache

import "github.com/cockroachdb/errors"

var (
	// ErrInvalidKey marks every key validation failure. Match with
	// errors.Is to catch both ErrKeyEmpty and ErrKeyInvalidChars.
	ErrInvalidKey = errors.New("cache: invalid key")

	// ErrKeyEmpty is returned when a raw key is zero-length.
	ErrKeyEmpty = errors.Mark(errors.New("cache: key is empty"), ErrInvalidKey)

	// ErrKeyInvalidChars is returned when a raw key contains one of the
	// reserved characters {}()/\@:;.
	ErrKeyInvalidChars = errors.Mark(errors.New("cache: key contains a reserved character"), ErrInvalidKey)

	// ErrInvalidDirectory is returned at construction time when the storage
	// root does not exist and cannot be created, or is not both readable
	// and writable.
	ErrInvalidDirectory = errors.New("cache: storage root is not a usable directory")

	// ErrInvalidIterable is returned by bulk operations given a nil
	// collection.
	ErrInvalidIterable = errors.New("cache: nil collection passed to a bulk operation")
)
