package arena

import "errors"

// Sentinel errors returned by arena operations. Use errors.Is to check them.
var (
	// ErrOutOfMemory is returned by Allocate when no free block of the
	// requested class exists and the bump region is exhausted.
	ErrOutOfMemory = errors.New("arena: out of memory")

	// ErrClosed is returned when allocating from a closed arena or pool.
	ErrClosed = errors.New("arena: closed")

	// ErrInvalidSize is returned for a zero or oversized request, or an
	// arena size that cannot be represented in an Address offset.
	ErrInvalidSize = errors.New("arena: invalid size")
)
