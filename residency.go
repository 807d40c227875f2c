package hetmem

import (
	"fmt"
	"unsafe"

	"github.com/LynnColeArt/hetmem/device"
)

// Space names a memory space at runtime, for reporting and for indexing
// the transfer table.
type Space int

const (
	SpaceHost Space = iota
	SpaceDevice

	numSpaces
)

func (s Space) String() string {
	switch s {
	case SpaceHost:
		return "Host"
	case SpaceDevice:
		return "Device"
	default:
		return fmt.Sprintf("Space(%d)", int(s))
	}
}

// Host marks memory owned by the host allocator.
type Host struct{}

// Device marks memory owned by the active accelerator device.
type Device struct{}

// Residency is the closed set of memory spaces. Operations are generic over
// it and reach per-space behavior through the tag's methods, so a new space
// is a new member of the union plus its methods.
type Residency interface {
	Host | Device

	Space() Space

	allocate(n int) (region, error)
	release(r region) error

	// stage returns a host-readable copy of the first n bytes of r and
	// a func releasing it.
	stage(r region, n int) ([]byte, func(), error)
}

// region is the backing memory of a Buffer. Exactly one field is set,
// according to the residency that allocated it.
type region struct {
	host []byte
	dev  device.Ptr
}

// operand returns the value the device runtime expects for this region.
func (r region) operand() interface{} {
	if r.host != nil {
		return r.host
	}
	return r.dev
}

func (Host) Space() Space { return SpaceHost }

func (Host) allocate(n int) (region, error) {
	if n <= 0 {
		return region{}, fmt.Errorf("%w: %d bytes", ErrHostAllocation, n)
	}
	if uint64(n) > hostLimit() {
		return region{}, fmt.Errorf("%w: %d bytes exceeds %d bytes of host memory", ErrHostAllocation, n, hostLimit())
	}
	return region{host: alignedBytes(n)}, nil
}

func (Host) release(region) error { return nil }

func (Host) stage(r region, n int) ([]byte, func(), error) {
	return r.host[:n], func() {}, nil
}

func (Device) Space() Space { return SpaceDevice }

func (Device) allocate(n int) (region, error) {
	p, err := device.Malloc(n)
	if err := Check(Fatal, err, "device.Malloc(n)"); err != nil {
		return region{}, err
	}
	return region{dev: p}, nil
}

func (Device) release(r region) error {
	return Check(Fatal, device.Free(r.dev), "device.Free(r.dev)")
}

// stage copies device memory into a host buffer, since the host cannot
// read device memory directly.
func (Device) stage(r region, n int) ([]byte, func(), error) {
	st, err := Allocate[Host](n)
	if err != nil {
		return nil, nil, err
	}
	src := &Buffer[Device]{reg: r, size: r.dev.Size()}
	if err := Copy(n, src, st); err != nil {
		st.Release()
		return nil, nil, err
	}
	return st.reg.host, func() { st.Release() }, nil
}

// hostLimit is the largest host request attempted; larger requests fail
// without touching the allocator.
var hostLimit = device.SystemMemory

// alignedBytes returns n bytes from the Go heap aligned to a cache line, so
// typed views of any element type are safe.
func alignedBytes(n int) []byte {
	buf := make([]byte, n+device.MemoryAlignment)
	shift := 0
	if rem := int(uintptr(unsafe.Pointer(&buf[0])) % device.MemoryAlignment); rem != 0 {
		shift = device.MemoryAlignment - rem
	}
	return buf[shift : shift+n : shift+n]
}
