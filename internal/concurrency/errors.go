// File: internal/concurrency/errors.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package concurrency

import "errors"

// ErrRingTooSmall is returned by Resize when the new capacity cannot hold the queued items.
var ErrRingTooSmall = errors.New("ring: capacity smaller than queued items")
