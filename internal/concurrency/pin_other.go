//go:build !linux

// hioload-tasks/internal/concurrency/pin_other.go
// Author: momentics <momentics@gmail.com>
//
// Thread locking only; CPU affinity is not applied on this platform.

package concurrency

import "runtime"

func PinCurrentThread(worker int) error {
	runtime.LockOSThread()
	return nil
}
