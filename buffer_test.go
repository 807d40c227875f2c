package hetmem

import (
	"errors"
	"testing"
	"unsafe"

	"github.com/LynnColeArt/hetmem/device"
)

func TestAllocate(t *testing.T) {
	for _, n := range []int{1, 63, 64, 4096, 1 << 20} {
		h, err := Allocate[Host](n)
		if err != nil {
			t.Fatalf("Allocate[Host](%d): %v", n, err)
		}
		if h.Len() != n || len(HostBytes(h)) != n {
			t.Errorf("host Len = %d, bytes = %d, want %d", h.Len(), len(HostBytes(h)), n)
		}
		if addr := uintptr(unsafe.Pointer(&HostBytes(h)[0])); addr%device.MemoryAlignment != 0 {
			t.Errorf("host buffer at %#x is not %d-byte aligned", addr, device.MemoryAlignment)
		}

		d, err := Allocate[Device](n)
		if err != nil {
			t.Fatalf("Allocate[Device](%d): %v", n, err)
		}
		if d.Len() != n || DevicePtr(d).Size() != n {
			t.Errorf("device Len = %d, ptr size = %d, want %d", d.Len(), DevicePtr(d).Size(), n)
		}

		if err := h.Release(); err != nil {
			t.Errorf("host Release: %v", err)
		}
		if err := d.Release(); err != nil {
			t.Errorf("device Release: %v", err)
		}
	}
}

func TestHostAllocationFailureIsRecoverable(t *testing.T) {
	out := captureLog(t)

	for _, n := range []int{0, -1, int(device.SystemMemory()) + 1} {
		b, err := Allocate[Host](n)
		if b != nil || !errors.Is(err, ErrHostAllocation) {
			t.Errorf("Allocate[Host](%d) = %v, %v; want nil, ErrHostAllocation", n, b, err)
		}
		var fe *FatalError
		if errors.As(err, &fe) {
			t.Errorf("host failure must not be fatal")
		}
	}
	if out.Len() != 0 {
		t.Errorf("host failures should not emit diagnostics, got %q", out.String())
	}
}

func TestDeviceAllocationFailureIsFatal(t *testing.T) {
	out := captureLog(t)
	_, total := device.MemGetInfo()

	b, err := Allocate[Device](int(total) + 1)
	if b != nil {
		t.Fatal("expected nil buffer")
	}
	var fe *FatalError
	if !errors.As(err, &fe) {
		t.Fatalf("expected *FatalError, got %T: %v", err, err)
	}
	if fe.Diagnostic.Code != device.ErrorMemoryAllocation || fe.Diagnostic.Call != "device.Malloc(n)" {
		t.Errorf("diagnostic = %+v", fe.Diagnostic)
	}
	if !errors.Is(err, device.ErrOutOfMemory) {
		t.Error("runtime error should be reachable through the fatal error")
	}
	if out.Len() == 0 {
		t.Error("fatal allocation failure should emit a diagnostic")
	}
}

func TestReleaseTwice(t *testing.T) {
	for _, release := range []func() error{
		func() error {
			b, _ := Allocate[Host](16)
			b.Release()
			return b.Release()
		},
		func() error {
			b, _ := Allocate[Device](16)
			b.Release()
			return b.Release()
		},
	} {
		if err := release(); !errors.Is(err, ErrReleased) {
			t.Errorf("second Release = %v, want ErrReleased", err)
		}
	}

	var nilBuf *Buffer[Host]
	if err := nilBuf.Release(); !errors.Is(err, ErrNilBuffer) {
		t.Errorf("nil Release = %v", err)
	}
}

func TestDeviceReleaseReturnsMemory(t *testing.T) {
	before, _ := device.MemGetInfo()
	b, err := Allocate[Device](1 << 16)
	if err != nil {
		t.Fatal(err)
	}
	if mid, _ := device.MemGetInfo(); before-mid != 1<<16 {
		t.Errorf("allocation used %d bytes, want %d", before-mid, 1<<16)
	}
	b.Release()
	if after, _ := device.MemGetInfo(); after != before {
		t.Errorf("free memory %d after release, want %d", after, before)
	}
}

func TestHostSlice(t *testing.T) {
	b := allocateOrFail[Host](t, 10*8+3)
	s := HostSlice[float64](b)
	if len(s) != 10 {
		t.Fatalf("len = %d, want 10", len(s))
	}
	s[9] = 2.5
	if HostSlice[float64](b)[9] != 2.5 {
		t.Error("HostSlice does not alias the buffer")
	}
}
