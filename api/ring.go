// Package api
// Author: momentics@gmail.com
//
// Circular buffer contract for the task queue.

package api

// Ring is a FIFO circular buffer contract.
type Ring[T any] interface {
	// Enqueue adds an item, returns false if full.
	Enqueue(item T) bool
	// Dequeue removes oldest item, returns false if empty.
	Dequeue() (T, bool)
	// Peek returns the oldest item without removing it.
	Peek() (T, bool)
	// Len returns current number of items.
	Len() int
	// Cap returns buffer capacity.
	Cap() int
}
