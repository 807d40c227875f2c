package device

import (
	"fmt"
	"sync"
	"unsafe"
)

// MemcpyKind specifies the direction of memory transfer.
type MemcpyKind int

const (
	MemcpyHostToHost     MemcpyKind = iota // Host to host transfer
	MemcpyHostToDevice                     // Host to device transfer
	MemcpyDeviceToHost                     // Device to host transfer
	MemcpyDeviceToDevice                   // Device to device transfer
)

func (k MemcpyKind) String() string {
	switch k {
	case MemcpyHostToHost:
		return "HostToHost"
	case MemcpyHostToDevice:
		return "HostToDevice"
	case MemcpyDeviceToHost:
		return "DeviceToHost"
	case MemcpyDeviceToDevice:
		return "DeviceToDevice"
	default:
		return fmt.Sprintf("MemcpyKind(%d)", int(k))
	}
}

// Ptr is a handle to device memory returned by Malloc. Host code must not
// dereference it; kernels access the memory through Slice.
type Ptr struct {
	base uintptr // start of the owning allocation
	mem  []byte
}

// Size returns the size in bytes of the memory region
func (p Ptr) Size() int {
	return len(p.mem)
}

// IsNil reports whether p is the zero Ptr.
func (p Ptr) IsNil() bool {
	return p.base == 0
}

// Offset returns a Ptr to the sub-region starting bytes into p. The result
// shares memory with p and cannot be passed to Free.
func (p Ptr) Offset(bytes int) Ptr {
	return Ptr{base: p.base, mem: p.mem[bytes:]}
}

// Slice returns a typed view of n elements of device memory. It is meant
// for kernel bodies; it panics if n elements do not fit in p.
func Slice[T any](p Ptr, n int) []T {
	if n == 0 {
		return nil
	}
	var zero T
	if need := n * int(unsafe.Sizeof(zero)); need > len(p.mem) {
		panic(fmt.Sprintf("device: view of %d bytes exceeds %d-byte region", need, len(p.mem)))
	}
	return unsafe.Slice((*T)(unsafe.Pointer(&p.mem[0])), n)
}

// arena accounts device memory against the device capacity. Every
// allocation is its own mapping, released on Free.
type arena struct {
	mu       sync.Mutex
	capacity uint64
	used     uint64
	peak     uint64
	live     map[uintptr][]byte
}

func newArena(capacity uint64) *arena {
	return &arena{
		capacity: capacity,
		live:     make(map[uintptr][]byte),
	}
}

func (a *arena) setCapacity(capacity uint64) {
	a.mu.Lock()
	a.capacity = capacity
	a.mu.Unlock()
}

func (a *arena) allocate(size int) (Ptr, error) {
	if size < 0 {
		return Ptr{}, newInvalidArgError(ErrorInvalidValue, "Malloc", fmt.Sprintf("negative size %d", size))
	}
	if size == 0 {
		return Ptr{}, nil
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if uint64(size) > a.capacity-a.used || a.used > a.capacity {
		return Ptr{}, newMemoryError(ErrorMemoryAllocation, "Malloc",
			fmt.Sprintf("out of memory: requested %d bytes, %d of %d in use", size, a.used, a.capacity), nil)
	}

	mem, err := mapMemory(size)
	if err != nil {
		return Ptr{}, newMemoryError(ErrorMemoryAllocation, "Malloc",
			fmt.Sprintf("cannot map %d bytes", size), err)
	}

	base := uintptr(unsafe.Pointer(&mem[0]))
	a.live[base] = mem
	a.used += uint64(size)
	if a.used > a.peak {
		a.peak = a.used
	}
	return Ptr{base: base, mem: mem}, nil
}

func (a *arena) free(p Ptr) error {
	if p.IsNil() {
		return nil
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	mem, ok := a.live[p.base]
	if !ok || len(p.mem) == 0 || uintptr(unsafe.Pointer(&p.mem[0])) != p.base {
		return ErrInvalidPointer
	}
	delete(a.live, p.base)
	a.used -= uint64(len(mem))
	if err := unmapMemory(mem); err != nil {
		return newMemoryError(ErrorInvalidDevicePointer, "Free", "cannot unmap device memory", err)
	}
	return nil
}

func (a *arena) releaseAll() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	var firstErr error
	for base, mem := range a.live {
		if err := unmapMemory(mem); err != nil && firstErr == nil {
			firstErr = newMemoryError(ErrorInvalidDevicePointer, "DeviceReset", "cannot unmap device memory", err)
		}
		delete(a.live, base)
	}
	a.used = 0
	return firstErr
}

// resolve returns the bytes behind p, or an error if its allocation is gone.
func (a *arena) resolve(op string, p Ptr) ([]byte, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.live[p.base]; !ok {
		return nil, newInvalidArgError(ErrorInvalidDevicePointer, op, "pointer does not reference live device memory")
	}
	return p.mem, nil
}

func (a *arena) stats() (free, total, peak uint64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.used < a.capacity {
		free = a.capacity - a.used
	}
	return free, a.capacity, a.peak
}

// Malloc allocates size bytes of device memory. The contents are not
// initialized.
func (ctx *Context) Malloc(size int) (Ptr, error) {
	return ctx.memory.allocate(size)
}

// Free releases device memory allocated by Malloc.
// It is safe to call Free with a zero Ptr.
func (ctx *Context) Free(p Ptr) error {
	return ctx.memory.free(p)
}

// MemGetInfo returns the free and total device memory in bytes.
func (ctx *Context) MemGetInfo() (free, total uint64) {
	free, total, _ = ctx.memory.stats()
	return free, total
}

// PeakMemory returns the high-water mark of device memory in use.
func (ctx *Context) PeakMemory() uint64 {
	_, _, peak := ctx.memory.stats()
	return peak
}

// Memcpy copies size bytes from src to dst in the direction given by kind.
// Device operands are Ptr values and host operands are []byte; a mismatch
// with kind is an error. The copy is ordered after all previously issued
// work on the default stream and Memcpy returns once it has finished.
func (ctx *Context) Memcpy(dst, src interface{}, size int, kind MemcpyKind) error {
	if size < 0 {
		return newInvalidArgError(ErrorInvalidValue, "Memcpy", fmt.Sprintf("negative size %d", size))
	}

	var dstDevice, srcDevice bool
	switch kind {
	case MemcpyHostToHost:
	case MemcpyHostToDevice:
		dstDevice = true
	case MemcpyDeviceToHost:
		srcDevice = true
	case MemcpyDeviceToDevice:
		dstDevice, srcDevice = true, true
	default:
		return newInvalidArgError(ErrorInvalidMemcpyDirection, "Memcpy", fmt.Sprintf("unknown direction %d", int(kind)))
	}

	d, err := ctx.operand(dst, dstDevice, kind)
	if err != nil {
		return err
	}
	s, err := ctx.operand(src, srcDevice, kind)
	if err != nil {
		return err
	}
	if size > len(d) || size > len(s) {
		return newInvalidArgError(ErrorInvalidValue, "Memcpy",
			fmt.Sprintf("%d bytes exceeds operand sizes (dst %d, src %d)", size, len(d), len(s)))
	}
	if size == 0 {
		return nil
	}

	done := make(chan struct{})
	ctx.stream.Submit(func() {
		copy(d[:size], s[:size])
		close(done)
	})
	<-done
	return ctx.stickyError()
}

func (ctx *Context) operand(v interface{}, onDevice bool, kind MemcpyKind) ([]byte, error) {
	switch o := v.(type) {
	case Ptr:
		if !onDevice {
			return nil, newInvalidArgError(ErrorInvalidMemcpyDirection, "Memcpy",
				fmt.Sprintf("device pointer used as host operand of %s copy", kind))
		}
		return ctx.memory.resolve("Memcpy", o)
	case []byte:
		if onDevice {
			return nil, newInvalidArgError(ErrorInvalidMemcpyDirection, "Memcpy",
				fmt.Sprintf("host slice used as device operand of %s copy", kind))
		}
		return o, nil
	default:
		return nil, newInvalidArgError(ErrorInvalidValue, "Memcpy", fmt.Sprintf("unsupported operand type: %T", v))
	}
}

// Malloc allocates device memory on the default context.
func Malloc(size int) (Ptr, error) {
	return defaultContext.Malloc(size)
}

// Free releases device memory on the default context.
func Free(p Ptr) error {
	return defaultContext.Free(p)
}

// Memcpy copies memory on the default context.
func Memcpy(dst, src interface{}, size int, kind MemcpyKind) error {
	return defaultContext.Memcpy(dst, src, size, kind)
}

// MemGetInfo returns the free and total memory of the active device.
func MemGetInfo() (free, total uint64) {
	return defaultContext.MemGetInfo()
}
