//go:build !unix

// File: arena/region_other.go
// Author: momentics <momentics@gmail.com>
//
// Heap-backed page-aligned regions where anonymous mappings are unavailable.

package arena

import "unsafe"

func mapRegion(size int) ([]byte, func([]byte) error, error) {
	buf := make([]byte, size+PageSize)
	addr := uintptr(unsafe.Pointer(&buf[0]))
	shift := int(alignUpPtr(addr, PageSize) - addr)
	return buf[shift : shift+size : shift+size], nil, nil
}
