// File: internal/concurrency/ring.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Ring is the task queue: a circular buffer that either rejects on full
// (bounded) or doubles its capacity before inserting (growable).
// Implements api.Ring for cross-package consistency.

package concurrency

import (
	"fmt"

	"github.com/momentics/hioload-tasks/api"
)

// DefaultQueueCapacity is the initial and minimum grown capacity of a growable ring.
const DefaultQueueCapacity = 1024

// Ensure compile-time interface compliance.
var _ api.Ring[any] = (*Ring[any])(nil)

// Ring is not safe for concurrent use; callers serialise access.
type Ring[T any] struct {
	buf      []T
	head     int
	tail     int
	count    int
	growable bool
}

// NewRing allocates a ring of the given capacity. A non-positive capacity
// selects DefaultQueueCapacity.
func NewRing[T any](capacity int, growable bool) *Ring[T] {
	if capacity <= 0 {
		capacity = DefaultQueueCapacity
	}
	return &Ring[T]{buf: make([]T, capacity), growable: growable}
}

// Enqueue adds item at the tail; returns false if full and not growable.
func (r *Ring[T]) Enqueue(item T) bool {
	if r.IsFull() {
		if !r.growable {
			return false
		}
		next := len(r.buf) * 2
		if next == 0 {
			next = DefaultQueueCapacity
		}
		if err := r.Resize(next); err != nil || r.IsFull() {
			return false
		}
	}
	r.buf[r.tail] = item
	r.tail = (r.tail + 1) % len(r.buf)
	r.count++
	return true
}

// Dequeue removes the head item. Disposal is left to the caller.
func (r *Ring[T]) Dequeue() (T, bool) {
	var zero T
	if r.count == 0 {
		return zero, false
	}
	item := r.buf[r.head]
	r.buf[r.head] = zero
	r.head = (r.head + 1) % len(r.buf)
	r.count--
	return item, true
}

// Peek returns the head item without removing it.
func (r *Ring[T]) Peek() (T, bool) {
	if r.count == 0 {
		var zero T
		return zero, false
	}
	return r.buf[r.head], true
}

// Resize moves the items into a buffer of capacity n, head first.
func (r *Ring[T]) Resize(n int) error {
	if n <= 0 || n < r.count {
		return fmt.Errorf("%w: %d < %d", ErrRingTooSmall, n, r.count)
	}
	buf := make([]T, n)
	if r.count > 0 {
		if r.head < r.tail {
			copy(buf, r.buf[r.head:r.tail])
		} else {
			k := copy(buf, r.buf[r.head:])
			copy(buf[k:], r.buf[:r.tail])
		}
	}
	r.buf = buf
	r.head = 0
	r.tail = r.count % n
	return nil
}

// Clear drops every item.
func (r *Ring[T]) Clear() {
	clear(r.buf)
	r.head, r.tail, r.count = 0, 0, 0
}

func (r *Ring[T]) Len() int { return r.count }
func (r *Ring[T]) Cap() int { return len(r.buf) }
func (r *Ring[T]) IsEmpty() bool { return r.count == 0 }
func (r *Ring[T]) IsFull() bool { return r.count == len(r.buf) }
func (r *Ring[T]) Growable() bool { return r.growable }
