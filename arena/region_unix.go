//go:build unix

// File: arena/region_unix.go
// Author: momentics <momentics@gmail.com>
//
// Anonymous private mappings for arena regions.

package arena

import "golang.org/x/sys/unix"

func mapRegion(size int) ([]byte, func([]byte) error, error) {
	mem, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, nil, err
	}
	return mem, unix.Munmap, nil
}
