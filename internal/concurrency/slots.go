// File: internal/concurrency/slots.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Task descriptors live in arena blocks, which the garbage collector does
// not scan. The block records a slot index into a Go-side table holding the
// function and argument, plus a generation guarding against stale slots.

package concurrency

import (
	"encoding/binary"

	"github.com/momentics/hioload-tasks/api"
)

// descriptorSize is the payload a descriptor block needs: slot, generation, sequence.
const descriptorSize = 16

type descriptor []byte

func encodeDescriptor(buf []byte, slot, gen uint32, seq uint64) descriptor {
	binary.NativeEndian.PutUint32(buf[0:], slot)
	binary.NativeEndian.PutUint32(buf[4:], gen)
	binary.NativeEndian.PutUint64(buf[8:], seq)
	return descriptor(buf)
}

func (d descriptor) slot() uint32 { return binary.NativeEndian.Uint32(d[0:]) }
func (d descriptor) gen() uint32 { return binary.NativeEndian.Uint32(d[4:]) }
func (d descriptor) seq() uint64 { return binary.NativeEndian.Uint64(d[8:]) }

type task struct {
	fn   api.TaskFunc
	arg  any
	gen  uint32
	used bool
}

// slotTable is guarded by the pool mutex.
type slotTable struct {
	entries []task
	free    []uint32
}

func (s *slotTable) put(fn api.TaskFunc, arg any) (uint32, uint32) {
	var idx uint32
	if n := len(s.free); n > 0 {
		idx = s.free[n-1]
		s.free = s.free[:n-1]
	} else {
		idx = uint32(len(s.entries))
		s.entries = append(s.entries, task{})
	}
	e := &s.entries[idx]
	e.gen++
	e.fn, e.arg, e.used = fn, arg, true
	return idx, e.gen
}

func (s *slotTable) get(d descriptor) (task, bool) {
	idx := d.slot()
	if int(idx) >= len(s.entries) {
		return task{}, false
	}
	e := s.entries[idx]
	if !e.used || e.gen != d.gen() {
		return task{}, false
	}
	return e, true
}

// release clears the slot so the argument can be collected.
func (s *slotTable) release(d descriptor) {
	idx := d.slot()
	if int(idx) >= len(s.entries) {
		return
	}
	e := &s.entries[idx]
	if !e.used || e.gen != d.gen() {
		return
	}
	e.fn, e.arg, e.used = nil, nil, false
	s.free = append(s.free, idx)
}

func (s *slotTable) live() int {
	return len(s.entries) - len(s.free)
}
