// File: internal/concurrency/affinity.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Worker to CPU placement.

package concurrency

import "runtime"

// PreferredCPUID returns the CPU a worker is pinned to: workers are spread
// round-robin over the logical CPUs.
func PreferredCPUID(worker int) int {
	if worker < 0 {
		return 0
	}
	return worker % NumCPUs()
}

// NumCPUs returns the number of logical CPUs.
func NumCPUs() int {
	return runtime.NumCPU()
}
