// Package arena
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Arena-backed memory manager supplying byte storage for task descriptors.
//
// Memory comes from the OS in page-aligned regions ("arenas"). Each region is
// carved into blocks whose 32-byte header sits immediately before the payload.
// Free blocks of every arena in a chain share one ordered index keyed by
// (size, arena, offset) giving best-fit lookup in O(log n). Frees coalesce
// with both physical neighbours in O(1) using the PREV_FREE boundary tag.
// Fixed size classes bypass the index with a private FIFO free list.
//
// Headers carry a magic value and state flags so that corrupted headers and
// double frees are reported instead of spreading damage. Build with the
// allocdebug tag to turn these reports into panics.
package arena
