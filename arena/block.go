// File: arena/block.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// In-region block header layout and flag helpers.

package arena

import "unsafe"

const (
	// Magic marks every live block header.
	Magic uint32 = 0xDEADBEEF

	// DefaultAlignment is the block alignment used when none is configured (CPU cache line).
	DefaultAlignment = 64

	// MinAlignment is the smallest accepted block alignment.
	MinAlignment = 16

	// MinBlockSize is the smallest block, header included.
	MinBlockSize = 64

	// MaxSizeClasses bounds the number of fixed size classes.
	MaxSizeClasses = 16

	// PageSize is the granularity of arena sizes.
	PageSize = 4096

	// MaxAllocSize bounds a single request.
	MaxAllocSize = 1 << 40
)

const (
	flagFree      uint32 = 1 << 0
	flagSizeClass uint32 = 1 << 1
	flagPrevFree  uint32 = 1 << 2

	classShift        = 8
	classMask  uint32 = 0xff << classShift
)

const nilOff = ^uint64(0)

// header precedes every payload. For a FREE block next/aux link the arena
// free list; for a block whose predecessor is free aux holds that
// predecessor's size.
type header struct {
	size  uint64
	magic uint32
	flags uint32
	next  uint64
	aux   uint64
}

// HeaderSize is the per-block overhead in bytes.
const HeaderSize = int(unsafe.Sizeof(header{}))

func (h *header) valid() bool {
	return h.magic == Magic && h.size >= uint64(HeaderSize)
}

// generalFree reports a block owned by the general free structures.
// Blocks parked on a size-class list are FREE but not general-free.
func (h *header) generalFree() bool {
	return h.flags&flagFree != 0 && h.flags&flagSizeClass == 0
}

// classID returns the size class tag or -1.
func (h *header) classID() int {
	if h.flags&flagSizeClass == 0 {
		return -1
	}
	return int((h.flags&classMask)>>classShift) - 1
}

func (h *header) setClass(id int) {
	h.flags = (h.flags &^ classMask) | flagSizeClass | uint32(id+1)<<classShift
}

func (h *header) init(size int) {
	h.size = uint64(size)
	h.magic = Magic
	h.flags = 0
	h.next = nilOff
	h.aux = 0
}

func alignUp(n, alignment int) int {
	return (n + alignment - 1) &^ (alignment - 1)
}

func alignUpPtr(p uintptr, alignment int) uintptr {
	a := uintptr(alignment)
	return (p + a - 1) &^ (a - 1)
}

func isPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}

// BlockSizeFor returns the block size, header included, that a request of
// size bytes occupies under the given alignment.
func BlockSizeFor(size, alignment int) int {
	n := alignUp(size+HeaderSize, alignment)
	if n < MinBlockSize {
		n = MinBlockSize
	}
	return n
}
