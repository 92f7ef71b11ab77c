// File: arena/index.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Free-block bookkeeping: the shared ordered index and the per-arena
// intrusive list.

package arena

type freeKey struct {
	size   int
	region int
	off    int
}

func lessFreeKey(a, b freeKey) bool {
	if a.size != b.size {
		return a.size < b.size
	}
	if a.region != b.region {
		return a.region < b.region
	}
	return a.off < b.off
}

func keyOf(r *region, off int) freeKey {
	return freeKey{size: int(r.hdr(off).size), region: r.id, off: off}
}

// bestFitLocked returns the smallest free block of at least need bytes.
func (a *Allocator) bestFitLocked(need int) (freeKey, bool) {
	var (
		found freeKey
		ok    bool
	)
	a.index.AscendGreaterOrEqual(freeKey{size: need}, func(k freeKey) bool {
		found, ok = k, true
		return false
	})
	return found, ok
}

// linkFreeLocked marks the block free, indexes it and tags its successor.
func (a *Allocator) linkFreeLocked(r *region, off int) {
	h := r.hdr(off)
	h.flags = (h.flags | flagFree) &^ (flagSizeClass | classMask | flagPrevFree)
	h.aux = nilOff
	h.next = r.freeHead
	if r.freeHead != nilOff {
		r.hdr(int(r.freeHead)).aux = uint64(off)
	}
	r.freeHead = uint64(off)
	r.freeBlocks++
	a.index.ReplaceOrInsert(keyOf(r, off))
	a.markSuccessorLocked(r, off, true)
}

// unlinkFreeLocked removes the block from the list and the index and
// clears its FREE flag. The successor tag is left to the caller.
func (a *Allocator) unlinkFreeLocked(r *region, off int) {
	h := r.hdr(off)
	a.index.Delete(keyOf(r, off))
	prev, next := h.aux, h.next
	if prev == nilOff {
		r.freeHead = next
	} else {
		r.hdr(int(prev)).next = next
	}
	if next != nilOff {
		r.hdr(int(next)).aux = prev
	}
	r.freeBlocks--
	h.flags &^= flagFree
	h.next = nilOff
	h.aux = 0
}

// markSuccessorLocked records on the physical successor whether the block
// at off is free.
func (a *Allocator) markSuccessorLocked(r *region, off int, free bool) {
	succ := off + int(r.hdr(off).size)
	if succ+HeaderSize > r.size() {
		return
	}
	sh := r.hdr(succ)
	if !sh.valid() || sh.generalFree() {
		return
	}
	if free {
		sh.flags |= flagPrevFree
		sh.aux = r.hdr(off).size
	} else {
		sh.flags &^= flagPrevFree
		sh.aux = 0
	}
}
