// File: arena/validate.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Structural self-check over every arena, its free list, the shared index
// and the size-class lists.

package arena

import "fmt"

// Validate reports whether every structural invariant holds.
func (a *Allocator) Validate() bool {
	return a.Check() == nil
}

// Check returns a description of the first violated invariant, or nil.
func (a *Allocator) Check() error {
	a.lock()
	defer a.unlock()
	if a.closed {
		return ErrClosed
	}
	indexed := 0
	for _, r := range a.regions {
		if err := a.checkRegionLocked(r); err != nil {
			return err
		}
		indexed += r.freeBlocks
	}
	if a.index.Len() != indexed {
		return fmt.Errorf("%w: index holds %d blocks, arenas list %d", ErrCorruption, a.index.Len(), indexed)
	}
	for _, c := range a.classes {
		for i := 0; i < c.free.Length(); i++ {
			ref := c.free.Get(i).(blockRef)
			h := a.regions[ref.region].hdr(ref.off)
			if !h.valid() || h.classID() != c.id || h.flags&flagFree == 0 {
				return fmt.Errorf("%w: class %d entry %d at arena %d offset %d", ErrCorruption, c.id, i, ref.region, ref.off)
			}
		}
	}
	return nil
}

func (a *Allocator) checkRegionLocked(r *region) error {
	listed, listedBytes := 0, 0
	for off := r.freeHead; off != nilOff; off = r.hdr(int(off)).next {
		if listed > r.freeBlocks {
			return fmt.Errorf("%w: arena %d free list longer than %d", ErrCorruption, r.id, r.freeBlocks)
		}
		o := int(off)
		if o < 0 || o+HeaderSize > r.size() {
			return fmt.Errorf("%w: arena %d free link %d out of range", ErrCorruption, r.id, o)
		}
		h := r.hdr(o)
		if !h.valid() || !h.generalFree() || o+int(h.size) > r.size() {
			return fmt.Errorf("%w: arena %d bad free block at %d", ErrCorruption, r.id, o)
		}
		if !a.index.Has(keyOf(r, o)) {
			return fmt.Errorf("%w: arena %d free block at %d not indexed", ErrCorruption, r.id, o)
		}
		listed++
		listedBytes += int(h.size)
	}
	if listed != r.freeBlocks {
		return fmt.Errorf("%w: arena %d lists %d free blocks, counted %d", ErrCorruption, r.id, listed, r.freeBlocks)
	}
	if r.used+listedBytes != r.size() {
		return fmt.Errorf("%w: arena %d used %d + free %d != size %d", ErrCorruption, r.id, r.used, listedBytes, r.size())
	}

	walkedFree := 0
	prevFree, prevSize := false, 0
	for off := 0; off < r.size(); {
		h := r.hdr(off)
		if !h.valid() || int(h.size)%MinAlignment != 0 || off+int(h.size) > r.size() {
			return fmt.Errorf("%w: arena %d bad header at %d", ErrCorruption, r.id, off)
		}
		free := h.generalFree()
		if free && prevFree {
			return fmt.Errorf("%w: arena %d adjacent free blocks at %d", ErrCorruption, r.id, off)
		}
		if prevFree != (h.flags&flagPrevFree != 0) {
			return fmt.Errorf("%w: arena %d stale PREV_FREE at %d", ErrCorruption, r.id, off)
		}
		if prevFree && int(h.aux) != prevSize {
			return fmt.Errorf("%w: arena %d boundary tag at %d is %d, want %d", ErrCorruption, r.id, off, h.aux, prevSize)
		}
		if free {
			walkedFree++
		}
		prevFree, prevSize = free, int(h.size)
		off += int(h.size)
	}
	if walkedFree != r.freeBlocks {
		return fmt.Errorf("%w: arena %d walk found %d free blocks, list has %d", ErrCorruption, r.id, walkedFree, r.freeBlocks)
	}
	return nil
}
