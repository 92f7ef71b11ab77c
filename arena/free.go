// File: arena/free.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package arena

// Free returns p to the allocator. Blocks tagged with a size class go back
// to their class list; others merge with free neighbours and are indexed.
func (a *Allocator) Free(p []byte) error {
	a.lock()
	defer a.unlock()
	if a.closed {
		return ErrClosed
	}
	r, off, err := a.locateLocked(p)
	if err != nil {
		return err
	}
	if err := a.checkLiveLocked(r, off); err != nil {
		return err
	}
	return a.releaseLocked(r, off)
}

// releaseLocked routes a checked live block to its class list or to the
// general free structures.
func (a *Allocator) releaseLocked(r *region, off int) error {
	if id := r.hdr(off).classID(); id >= 0 && id < len(a.classes) {
		a.classes[id].park(r, off)
		a.freeCount++
		return nil
	}
	return a.freeBlockLocked(r, off)
}

// freeBlockLocked releases a live block into the general free structures.
// Neighbour headers are checked before anything is modified.
func (a *Allocator) freeBlockLocked(r *region, off int) error {
	h := r.hdr(off)
	size := int(h.size)

	prev := -1
	if h.flags&flagPrevFree != 0 {
		po := off - int(h.aux)
		if h.aux == 0 || po < 0 {
			return a.integrity(ErrCorruption, r, off)
		}
		ph := r.hdr(po)
		if !ph.valid() || !ph.generalFree() || po+int(ph.size) != off {
			return a.integrity(ErrCorruption, r, po)
		}
		prev = po
	}
	if next := off + size; next < r.size() && !r.hdr(next).valid() {
		return a.integrity(ErrCorruption, r, next)
	}

	r.used -= size
	a.freeCount++

	start := off
	if prev >= 0 {
		a.unlinkFreeLocked(r, prev)
		size += int(r.hdr(prev).size)
		h.flags = (h.flags | flagFree) &^ (flagSizeClass | classMask)
		start = prev
		a.mergeCount++
	}
	for {
		next := start + size
		if next >= r.size() {
			break
		}
		nh := r.hdr(next)
		if !nh.valid() || !nh.generalFree() {
			break
		}
		a.unlinkFreeLocked(r, next)
		nh.flags |= flagFree
		size += int(nh.size)
		a.mergeCount++
	}

	sh := r.hdr(start)
	sh.size = uint64(size)
	a.linkFreeLocked(r, start)
	return nil
}

// coalesceAllLocked walks every arena physically and merges runs of
// adjacent free blocks. It returns the number of merges performed.
func (a *Allocator) coalesceAllLocked() int {
	merges := 0
	for _, r := range a.regions {
		for off := 0; off < r.size(); {
			h := r.hdr(off)
			if !h.valid() {
				a.integrity(ErrCorruption, r, off)
				break
			}
			if h.generalFree() {
				for next := off + int(h.size); next < r.size(); next = off + int(h.size) {
					nh := r.hdr(next)
					if !nh.valid() || !nh.generalFree() {
						break
					}
					a.unlinkFreeLocked(r, off)
					a.unlinkFreeLocked(r, next)
					nh.flags |= flagFree
					h.size += nh.size
					a.linkFreeLocked(r, off)
					merges++
				}
			}
			off += int(h.size)
		}
	}
	a.mergeCount += uint64(merges)
	return merges
}

// Defragment merges every run of adjacent free blocks and returns the
// number of merges performed.
func (a *Allocator) Defragment() int {
	a.lock()
	defer a.unlock()
	if a.closed {
		return 0
	}
	n := a.coalesceAllLocked()
	if n > 0 {
		a.log.Debug().Int("merges", n).Msg("defragmented")
	}
	return n
}
