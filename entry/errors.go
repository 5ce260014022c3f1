package entry

import (
	"errors"
	"fmt"
)

// Sentinel errors. Check them with errors.Is.
var (
	// ErrInvalidArgument is the class of caller mistakes this layer detects.
	ErrInvalidArgument = errors.New("entry: invalid argument")

	// ErrSelfLoop is returned by SetNext when an entry would point at itself.
	ErrSelfLoop = fmt.Errorf("%w: hash chain self-loop", ErrInvalidArgument)

	// ErrKeyLength is returned by WriteKey when the key does not match
	// the KEY_LENGTH recorded by Init.
	ErrKeyLength = fmt.Errorf("%w: key length mismatch", ErrInvalidArgument)

	// ErrValueLength is returned by WriteValue when the value does not
	// match the VALUE_LENGTH recorded by Init.
	ErrValueLength = fmt.Errorf("%w: value length mismatch", ErrInvalidArgument)

	// ErrOutOfBounds is returned by View for a range outside the block.
	ErrOutOfBounds = fmt.Errorf("%w: view out of bounds", ErrInvalidArgument)

	// ErrNoViewSupport is the panic value of New when the memory cannot
	// hand out non-owning windows. Such a memory cannot back this cache.
	ErrNoViewSupport = errors.New("entry: memory does not support zero-copy views")
)
