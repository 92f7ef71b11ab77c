// File: arena/errors.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package arena

import "errors"

var (
	// ErrInvalidSize reports a zero, negative or oversized request.
	ErrInvalidSize = errors.New("arena: invalid size")

	// ErrOutOfMemory reports that no arena could satisfy the request and the chain could not grow.
	ErrOutOfMemory = errors.New("arena: out of memory")

	// ErrCorruption reports a block header that failed validation.
	ErrCorruption = errors.New("arena: memory corruption detected")

	// ErrDoubleFree reports a free of a block that is already free.
	ErrDoubleFree = errors.New("arena: double free detected")

	// ErrInvalidPointer reports a span that does not belong to any arena.
	ErrInvalidPointer = errors.New("arena: invalid pointer")

	ErrDuplicateSizeClass = errors.New("arena: size class block size already configured")
	ErrTooManyClasses     = errors.New("arena: too many size classes")
	ErrClosed             = errors.New("arena: allocator is closed")
)
