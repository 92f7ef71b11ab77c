// File: arena/alloc.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package arena

import (
	"fmt"
	"math/bits"
)

// Alloc returns a span of exactly size bytes. Block sizes and offsets are
// multiples of the configured alignment and the span starts HeaderSize past
// its block, so it is at least MinAlignment aligned. Use AllocAligned for
// stricter placement. The span's capacity extends to the end of its block.
func (a *Allocator) Alloc(size int) ([]byte, error) {
	if size <= 0 || size > MaxAllocSize {
		return nil, ErrInvalidSize
	}
	a.lock()
	defer a.unlock()
	if a.closed {
		return nil, ErrClosed
	}
	return a.allocLocked(size)
}

func (a *Allocator) allocLocked(size int) ([]byte, error) {
	r, off, err := a.allocBlockLocked(BlockSizeFor(size, a.alignment))
	if err != nil {
		return nil, err
	}
	return r.payload(off, size), nil
}

// allocBlockLocked takes a best-fit block of need bytes and splits off the
// remainder when it can form a block of its own.
func (a *Allocator) allocBlockLocked(need int) (*region, int, error) {
	r, off, err := a.takeLocked(need)
	if err != nil {
		return nil, 0, err
	}
	a.carveLocked(r, off, need)
	r.used += int(r.hdr(off).size)
	a.allocCount++
	return r, off, nil
}

// takeLocked unlinks a free block of at least need bytes. On a miss the
// chain is coalesced and searched again before a new arena is mapped.
func (a *Allocator) takeLocked(need int) (*region, int, error) {
	k, ok := a.bestFitLocked(need)
	if !ok {
		if n := a.coalesceAllLocked(); n > 0 {
			k, ok = a.bestFitLocked(need)
		}
	}
	if !ok {
		if err := a.growLocked(need); err != nil {
			a.log.Warn().Int("need", need).Int("arenas", len(a.regions)).Msg("allocation failed")
			return nil, 0, err
		}
		if k, ok = a.bestFitLocked(need); !ok {
			return nil, 0, ErrOutOfMemory
		}
	}
	r := a.regions[k.region]
	if !r.hdr(k.off).generalFree() {
		return nil, 0, a.integrity(ErrCorruption, r, k.off)
	}
	a.unlinkFreeLocked(r, k.off)
	return r, k.off, nil
}

// carveLocked shrinks an unlinked block to need bytes when the remainder
// reaches MinBlockSize and returns the remainder to the free structures.
func (a *Allocator) carveLocked(r *region, off, need int) {
	h := r.hdr(off)
	h.flags &^= flagFree | flagSizeClass | classMask
	h.next = nilOff
	rem := int(h.size) - need
	if rem < MinBlockSize {
		a.markSuccessorLocked(r, off, false)
		return
	}
	h.size = uint64(need)
	tail := off + need
	r.hdr(tail).init(rem)
	a.linkFreeLocked(r, tail)
}

// AllocAligned returns size bytes whose first byte is a multiple of
// alignment. Alignments at or below MinAlignment fall back to Alloc.
func (a *Allocator) AllocAligned(size, alignment int) ([]byte, error) {
	if size <= 0 || size > MaxAllocSize || !isPowerOfTwo(alignment) || alignment > PageSize {
		return nil, ErrInvalidSize
	}
	if alignment <= MinAlignment {
		return a.Alloc(size)
	}
	a.lock()
	defer a.unlock()
	if a.closed {
		return nil, ErrClosed
	}
	need := BlockSizeFor(size, a.alignment)
	r, off, err := a.takeLocked(need + alignment + MinBlockSize)
	if err != nil {
		return nil, err
	}
	start := r.base + uintptr(off+HeaderSize)
	lead := int(alignUpPtr(start, alignment) - start)
	if lead != 0 && lead < MinBlockSize {
		lead = int(alignUpPtr(start+MinBlockSize, alignment) - start)
	}
	if lead > 0 {
		h := r.hdr(off)
		total := int(h.size)
		h.size = uint64(lead)
		r.hdr(off + lead).init(total - lead)
		a.linkFreeLocked(r, off)
		off += lead
	}
	a.carveLocked(r, off, need)
	r.used += int(r.hdr(off).size)
	a.allocCount++
	return r.payload(off, size), nil
}

// Calloc returns count*size zeroed bytes.
func (a *Allocator) Calloc(count, size int) ([]byte, error) {
	if count <= 0 || size <= 0 {
		return nil, ErrInvalidSize
	}
	hi, n := bits.Mul64(uint64(count), uint64(size))
	if hi != 0 || n > MaxAllocSize {
		return nil, fmt.Errorf("%w: %d x %d overflows", ErrInvalidSize, count, size)
	}
	p, err := a.Alloc(int(n))
	if err != nil {
		return nil, err
	}
	clear(p[:cap(p)])
	return p, nil
}

// Realloc resizes p. A nil p allocates; a zero size frees. The block is
// reused in place when it already has room.
func (a *Allocator) Realloc(p []byte, size int) ([]byte, error) {
	if cap(p) == 0 {
		return a.Alloc(size)
	}
	if size == 0 {
		return nil, a.Free(p)
	}
	if size < 0 || size > MaxAllocSize {
		return nil, ErrInvalidSize
	}

	a.lock()
	defer a.unlock()
	if a.closed {
		return nil, ErrClosed
	}
	r, off, err := a.locateLocked(p)
	if err == nil {
		err = a.checkLiveLocked(r, off)
	}
	if err != nil {
		return nil, err
	}
	old := r.mem[off+HeaderSize : off+int(r.hdr(off).size)]
	if size <= len(old) {
		return old[:size:len(old)], nil
	}

	nr, noff, err := a.allocBlockLocked(BlockSizeFor(size, a.alignment))
	if err != nil {
		return nil, err
	}
	q := nr.payload(noff, size)
	copy(q, old)
	if err := a.releaseLocked(r, off); err != nil {
		_ = a.freeBlockLocked(nr, noff)
		return nil, err
	}
	return q, nil
}
