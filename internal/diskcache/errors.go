package diskcache

import (
	"errors"
	"fmt"
)

var (
	// ErrCorrupt indicates the cache files do not hold what the index says they hold.
	// There is no recovery from it other than a refresh.
	ErrCorrupt = errors.New("cache storage corrupted")

	// ErrClosed indicates an append to a cache that is not open
	ErrClosed = errors.New("cache is not open")
)

func corrupt(what string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrCorrupt, what, err)
}
