package hetmem

import (
	"errors"
	"fmt"
	"unsafe"

	"github.com/LynnColeArt/hetmem/device"
)

var (
	// ErrHostAllocation is returned when the host allocator cannot satisfy
	// a request. It is recoverable.
	ErrHostAllocation = errors.New("hetmem: host allocation failed")

	// ErrReleased is returned when a buffer is used or released after Release.
	ErrReleased = errors.New("hetmem: buffer already released")

	// ErrNilBuffer is returned when an operation receives a nil buffer.
	ErrNilBuffer = errors.New("hetmem: nil buffer")

	// ErrOutOfRange is returned when a byte or element count exceeds a buffer.
	ErrOutOfRange = errors.New("hetmem: count exceeds buffer size")
)

// Buffer is an owning handle to size bytes in residency R. It has a single
// owner who must call Release exactly once.
type Buffer[R Residency] struct {
	reg      region
	size     int
	released bool
}

// Allocate returns a buffer of n bytes in residency R. The contents are not
// initialized.
//
// Host failures return an error wrapping ErrHostAllocation. Device failures
// are runtime errors checked at Fatal severity and come back as *FatalError.
func Allocate[R Residency](n int) (*Buffer[R], error) {
	var r R
	reg, err := r.allocate(n)
	if err != nil {
		return nil, err
	}
	return &Buffer[R]{reg: reg, size: n}, nil
}

// Len returns the size of the buffer in bytes.
func (b *Buffer[R]) Len() int {
	return b.size
}

// Space returns the memory space of the buffer.
func (b *Buffer[R]) Space() Space {
	var r R
	return r.Space()
}

// Release frees the buffer's memory.
func (b *Buffer[R]) Release() error {
	if b == nil {
		return ErrNilBuffer
	}
	if b.released {
		return ErrReleased
	}
	var r R
	err := r.release(b.reg)
	b.released = true
	b.reg = region{}
	return err
}

func (b *Buffer[R]) usable() error {
	if b == nil {
		return ErrNilBuffer
	}
	if b.released {
		return ErrReleased
	}
	return nil
}

// HostBytes returns the bytes of a host buffer.
func HostBytes(b *Buffer[Host]) []byte {
	return b.reg.host
}

// HostSlice returns the host buffer viewed as elements of T. Trailing bytes
// that do not fill a whole element are not part of the view.
func HostSlice[T any](b *Buffer[Host]) []T {
	return view[T](b.reg.host, b.size/sizeOf[T]())
}

// DevicePtr returns the runtime pointer of a device buffer, for passing to
// kernels.
func DevicePtr(b *Buffer[Device]) device.Ptr {
	return b.reg.dev
}

func sizeOf[T any]() int {
	var zero T
	return int(unsafe.Sizeof(zero))
}

func view[T any](mem []byte, n int) []T {
	if n == 0 {
		return nil
	}
	if need := n * sizeOf[T](); need > len(mem) {
		panic(fmt.Sprintf("hetmem: view of %d bytes exceeds %d-byte buffer", need, len(mem)))
	}
	return unsafe.Slice((*T)(unsafe.Pointer(&mem[0])), n)
}
