// File: arena/sizeclass.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Fixed size classes: pre-carved blocks recycled through FIFO lists
// without touching the best-fit index.

package arena

import (
	"github.com/eapache/queue"
)

type blockRef struct {
	region int
	off    int
}

type sizeClass struct {
	id        int
	size      int
	blockSize int
	used      int
	fallbacks uint64
	free      *queue.Queue
}

func (c *sizeClass) park(r *region, off int) {
	r.hdr(off).flags |= flagFree
	c.free.Add(blockRef{region: r.id, off: off})
	c.used--
}

// ClassStats describes one size class.
type ClassStats struct {
	Size      int
	BlockSize int
	Free      int
	Used      int
	Fallbacks uint64
}

// AddSizeClass carves count blocks able to hold size bytes and parks them on
// a new class list. It returns the class id.
func (a *Allocator) AddSizeClass(size, count int) (int, error) {
	if size <= 0 || size > MaxAllocSize || count < 0 {
		return -1, ErrInvalidSize
	}
	a.lock()
	defer a.unlock()
	if a.closed {
		return -1, ErrClosed
	}
	if len(a.classes) >= MaxSizeClasses {
		return -1, ErrTooManyClasses
	}
	bs := BlockSizeFor(size, a.alignment)
	for _, c := range a.classes {
		if c.blockSize == bs {
			return -1, ErrDuplicateSizeClass
		}
	}
	c := &sizeClass{id: len(a.classes), size: size, blockSize: bs, free: queue.New()}
	for i := 0; i < count; i++ {
		r, off, err := a.allocBlockLocked(bs)
		if err != nil {
			for c.free.Length() > 0 {
				ref := c.free.Remove().(blockRef)
				rr := a.regions[ref.region]
				rr.hdr(ref.off).flags &^= flagFree
				_ = a.freeBlockLocked(rr, ref.off)
			}
			return -1, err
		}
		r.hdr(off).setClass(c.id)
		c.used++
		c.park(r, off)
	}
	a.classes = append(a.classes, c)
	a.log.Debug().Int("class", c.id).Int("size", size).Int("count", count).Msg("size class added")
	return c.id, nil
}

// classForLocked picks the smallest class able to hold size bytes.
func (a *Allocator) classForLocked(size int) *sizeClass {
	var best *sizeClass
	for _, c := range a.classes {
		if c.size >= size && (best == nil || c.size < best.size) {
			best = c
		}
	}
	return best
}

// AllocFixed serves size bytes from the smallest fitting size class.
// Requests no class can hold go to Alloc; an exhausted class falls back to
// a general block tagged with the class.
func (a *Allocator) AllocFixed(size int) ([]byte, error) {
	if size <= 0 || size > MaxAllocSize {
		return nil, ErrInvalidSize
	}
	a.lock()
	defer a.unlock()
	if a.closed {
		return nil, ErrClosed
	}
	c := a.classForLocked(size)
	if c == nil {
		return a.allocLocked(size)
	}
	if c.free.Length() > 0 {
		ref := c.free.Remove().(blockRef)
		r := a.regions[ref.region]
		h := r.hdr(ref.off)
		if !h.valid() || h.classID() != c.id || h.flags&flagFree == 0 {
			return nil, a.integrity(ErrCorruption, r, ref.off)
		}
		h.flags &^= flagFree
		c.used++
		a.allocCount++
		return r.payload(ref.off, size), nil
	}
	r, off, err := a.allocBlockLocked(c.blockSize)
	if err != nil {
		return nil, err
	}
	r.hdr(off).setClass(c.id)
	c.used++
	c.fallbacks++
	return r.payload(off, size), nil
}

// FreeFixed returns p to its size class, or to the general structures when
// the block carries no class tag.
func (a *Allocator) FreeFixed(p []byte) error {
	return a.Free(p)
}

// SizeClasses reports per-class occupancy in creation order.
func (a *Allocator) SizeClasses() []ClassStats {
	a.lock()
	defer a.unlock()
	out := make([]ClassStats, 0, len(a.classes))
	for _, c := range a.classes {
		out = append(out, ClassStats{
			Size:      c.size,
			BlockSize: c.blockSize,
			Free:      c.free.Length(),
			Used:      c.used,
			Fallbacks: c.fallbacks,
		})
	}
	return out
}
