//go:build !linux

package device

import "unsafe"

// mapMemory falls back to an aligned heap allocation where anonymous
// mappings are not wired up.
func mapMemory(size int) ([]byte, error) {
	buf := make([]byte, size+MemoryAlignment)
	shift := 0
	if rem := int(uintptr(unsafe.Pointer(&buf[0])) % MemoryAlignment); rem != 0 {
		shift = MemoryAlignment - rem
	}
	return buf[shift : shift+size : shift+size], nil
}

func unmapMemory(mem []byte) error {
	return nil
}

// SystemMemory returns the physical memory of the machine in bytes.
func SystemMemory() uint64 {
	return DefaultTotalMem
}
