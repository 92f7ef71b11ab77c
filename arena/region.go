// File: arena/region.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package arena

import "unsafe"

// region is one arena of the chain.
type region struct {
	id         int
	mem        []byte
	base       uintptr
	used       int
	freeHead   uint64
	freeBlocks int
	release    func([]byte) error
}

func newRegion(id int, mem []byte, release func([]byte) error) *region {
	return &region{
		id:       id,
		mem:      mem,
		base:     uintptr(unsafe.Pointer(unsafe.SliceData(mem))),
		freeHead: nilOff,
		release:  release,
	}
}

func (r *region) size() int { return len(r.mem) }

func (r *region) hdr(off int) *header {
	return (*header)(unsafe.Pointer(&r.mem[off]))
}

// payload returns n bytes of the block at off, capped at the block end.
func (r *region) payload(off, n int) []byte {
	h := r.hdr(off)
	start := off + HeaderSize
	return r.mem[start : start+n : off+int(h.size)]
}

// reset turns the whole region into one block.
func (r *region) reset() {
	r.used = 0
	r.freeHead = nilOff
	r.freeBlocks = 0
	r.hdr(0).init(len(r.mem))
}

func (r *region) unmap() error {
	if r.release == nil {
		return nil
	}
	return r.release(r.mem)
}
