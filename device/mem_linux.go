//go:build linux

package device

import (
	"golang.org/x/sys/unix"
)

// mapMemory backs a device allocation with a private anonymous mapping so
// device memory never shares pages with the Go heap.
func mapMemory(size int) ([]byte, error) {
	return unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
}

func unmapMemory(mem []byte) error {
	return unix.Munmap(mem)
}

// SystemMemory returns the physical memory of the machine in bytes.
func SystemMemory() uint64 {
	var info unix.Sysinfo_t
	if err := unix.Sysinfo(&info); err != nil {
		return DefaultTotalMem
	}
	return uint64(info.Totalram) * uint64(info.Unit)
}
