// File: arena/stats.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package arena

import (
	"unsafe"

	"github.com/eapache/queue"
)

// Stats is a point-in-time snapshot of allocator usage.
type Stats struct {
	Arenas          int
	TotalSize       int
	UsedSize        int
	FreeSize        int
	LargestFree     int
	FreeBlocks      int
	Fragmentation   int
	AllocCount      uint64
	FreeCount       uint64
	MergeCount      uint64
	GrowCount       uint64
	SizeClassCount  int
	SizeClassParked int
}

// Stats returns current usage. Blocks parked on class lists count as used.
func (a *Allocator) Stats() Stats {
	a.lock()
	defer a.unlock()
	s := Stats{
		Arenas:         len(a.regions),
		AllocCount:     a.allocCount,
		FreeCount:      a.freeCount,
		MergeCount:     a.mergeCount,
		GrowCount:      a.growCount,
		SizeClassCount: len(a.classes),
	}
	for _, r := range a.regions {
		s.TotalSize += r.size()
		s.UsedSize += r.used
		s.FreeBlocks += r.freeBlocks
	}
	s.FreeSize = s.TotalSize - s.UsedSize
	if k, ok := a.index.Max(); ok {
		s.LargestFree = k.size
	}
	for _, c := range a.classes {
		s.SizeClassParked += c.free.Length()
	}
	// Many small free blocks score high, few large ones low.
	if s.FreeSize > 0 {
		avg := s.FreeSize / (s.FreeBlocks + 1)
		s.Fragmentation = s.FreeBlocks * 100 / (avg/64 + 1)
	}
	return s
}

// Contains reports whether p lies inside any arena.
func (a *Allocator) Contains(p []byte) bool {
	a.lock()
	defer a.unlock()
	if cap(p) == 0 {
		return false
	}
	addr := uintptr(unsafe.Pointer(unsafe.SliceData(p)))
	for _, r := range a.regions {
		if addr >= r.base && addr < r.base+uintptr(r.size()) {
			return true
		}
	}
	return false
}

// BlockSize returns the usable payload capacity behind p, or 0 when p is not
// a live block.
func (a *Allocator) BlockSize(p []byte) int {
	a.lock()
	defer a.unlock()
	r, off, err := a.locateLocked(p)
	if err != nil {
		return 0
	}
	h := r.hdr(off)
	if !h.valid() || h.flags&flagFree != 0 {
		return 0
	}
	return int(h.size) - HeaderSize
}

// Warmup touches the pages behind every general free block so later
// allocations do not fault. Live spans are never written.
func (a *Allocator) Warmup() {
	a.lock()
	defer a.unlock()
	if a.closed {
		return
	}
	for _, r := range a.regions {
		for off := r.freeHead; off != nilOff; off = r.hdr(int(off)).next {
			start, end := int(off)+HeaderSize, int(off)+int(r.hdr(int(off)).size)
			for p := start; p < end; p = alignUp(p+1, PageSize) {
				r.mem[p] = 0
			}
		}
	}
}

// Reset returns every arena to a single free block and empties all class
// lists. Spans handed out earlier become invalid.
func (a *Allocator) Reset() {
	a.lock()
	defer a.unlock()
	if a.closed {
		return
	}
	a.index.Clear(false)
	for _, r := range a.regions {
		r.reset()
		a.linkFreeLocked(r, 0)
	}
	for _, c := range a.classes {
		c.free = queue.New()
		c.used = 0
		c.fallbacks = 0
	}
	a.allocCount, a.freeCount, a.mergeCount, a.growCount = 0, 0, 0, 0
	a.log.Debug().Int("arenas", len(a.regions)).Msg("allocator reset")
}
