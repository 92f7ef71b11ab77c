//go:build linux

// hioload-tasks/internal/concurrency/pin_linux.go
// Author: momentics <momentics@gmail.com>
//
// Linux-specific worker pinning via sched_setaffinity.

package concurrency

import (
	"runtime"

	"golang.org/x/sys/unix"
)

// PinCurrentThread locks the calling goroutine to its OS thread and binds
// that thread to the worker's preferred CPU.
func PinCurrentThread(worker int) error {
	runtime.LockOSThread()
	var set unix.CPUSet
	set.Zero()
	set.Set(PreferredCPUID(worker))
	return unix.SchedSetaffinity(0, &set)
}
