// File: api/allocator.go
// Author: momentics <momentics@gmail.com>
//
// Allocator contract for arena-backed byte storage.

package api

// Allocator hands out byte spans from memory it owns. Returned slices stay
// valid until they are freed, the allocator is reset or closed.
type Allocator interface {
	// Alloc returns a span of at least size bytes.
	Alloc(size int) ([]byte, error)

	// Free returns a span obtained from Alloc.
	Free(p []byte) error

	// AllocFixed serves size from a fixed size class when one fits.
	AllocFixed(size int) ([]byte, error)

	// FreeFixed returns a span obtained from AllocFixed.
	FreeFixed(p []byte) error

	// Validate checks internal consistency.
	Validate() bool
}
