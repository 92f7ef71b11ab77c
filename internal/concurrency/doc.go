// File: internal/concurrency/doc.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Concurrency primitives for hioload-tasks: the growable circular task
// queue, the fixed worker pool with its two-mode shutdown and optional
// CPU pinning of workers.
package concurrency
