// Package api
// Author: momentics
//
// Executor contract for task dispatch over a fixed worker set.

package api

// TaskFunc is a unit of work. It receives exactly the argument supplied at
// submission; ownership of arg stays with the submitter.
type TaskFunc func(arg any)

// Executor abstracts parallel task dispatch.
type Executor interface {
	GracefulShutdown

	// Submit schedules fn(arg) for execution without blocking for queue space.
	Submit(fn TaskFunc, arg any) error

	// NumWorkers returns the number of started workers.
	NumWorkers() int
}
