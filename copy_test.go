package hetmem

import (
	"bytes"
	"errors"
	"testing"
)

var copySizes = []int{1, 7, 64, 1000, 4096, 1 << 20}

func TestCopyRoundTripThroughDevice(t *testing.T) {
	for _, n := range copySizes {
		src := hostPattern(t, n, 0x5A)
		orig := append([]byte(nil), HostBytes(src)...)
		dev := allocateOrFail[Device](t, n)
		back := allocateOrFail[Host](t, n)

		if err := Copy(n, src, dev); err != nil {
			t.Fatalf("n=%d host->device: %v", n, err)
		}
		if err := Copy(n, dev, back); err != nil {
			t.Fatalf("n=%d device->host: %v", n, err)
		}
		if !bytes.Equal(HostBytes(back), orig) {
			t.Errorf("n=%d: round trip changed the data", n)
		}
		if !bytes.Equal(HostBytes(src), orig) {
			t.Errorf("n=%d: source modified by copy", n)
		}
	}
}

func TestCopyDeviceToDevice(t *testing.T) {
	const n = 4096
	src := hostPattern(t, n, 0x11)
	a := allocateOrFail[Device](t, n)
	b := allocateOrFail[Device](t, n)
	back := allocateOrFail[Host](t, n)

	for _, err := range []error{Copy(n, src, a), Copy(n, a, b), Copy(n, b, back)} {
		if err != nil {
			t.Fatal(err)
		}
	}
	if !bytes.Equal(HostBytes(back), HostBytes(src)) {
		t.Error("device to device copy mismatch")
	}
}

func TestCopyHostToHost(t *testing.T) {
	const n = 333
	src := hostPattern(t, n, 0x77)
	dst := allocateOrFail[Host](t, n+10)
	tail := HostBytes(dst)[n:]
	for i := range tail {
		tail[i] = 0xEE
	}

	if err := Copy(n, src, dst); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(HostBytes(dst)[:n], HostBytes(src)) {
		t.Error("host to host copy mismatch")
	}
	for i, v := range HostBytes(dst)[n:] {
		if v != 0xEE {
			t.Fatalf("byte %d past the copy was overwritten", n+i)
		}
	}
}

func TestCopyPartial(t *testing.T) {
	src := hostPattern(t, 100, 0x01)
	dev := allocateOrFail[Device](t, 100)
	back := allocateOrFail[Host](t, 100)
	for i := range HostBytes(back) {
		HostBytes(back)[i] = 0
	}

	if err := Copy(40, src, dev); err != nil {
		t.Fatal(err)
	}
	if err := Copy(40, dev, back); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(HostBytes(back)[:40], HostBytes(src)[:40]) {
		t.Error("prefix mismatch")
	}
	if !bytes.Equal(HostBytes(back)[40:], make([]byte, 60)) {
		t.Error("bytes beyond n were written")
	}
}

func TestCopyArgumentErrors(t *testing.T) {
	out := captureLog(t)
	small := allocateOrFail[Host](t, 8)
	big := allocateOrFail[Device](t, 16)

	if err := Copy(16, small, big); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("oversized copy = %v, want ErrOutOfRange", err)
	}
	if err := Copy(-1, small, big); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("negative copy = %v, want ErrOutOfRange", err)
	}
	if err := Copy(0, small, big); err != nil {
		t.Errorf("zero-byte copy = %v", err)
	}

	var nilBuf *Buffer[Host]
	if err := Copy(1, nilBuf, big); !errors.Is(err, ErrNilBuffer) {
		t.Errorf("nil source = %v", err)
	}

	gone, _ := Allocate[Device](8)
	gone.Release()
	if err := Copy(8, small, gone); !errors.Is(err, ErrReleased) {
		t.Errorf("released destination = %v", err)
	}
	if out.Len() != 0 {
		t.Errorf("argument errors never reach the runtime, got diagnostics %q", out.String())
	}
}

func BenchmarkCopyHostToDevice(b *testing.B) {
	const n = 1 << 22
	src := allocateOrFail[Host](b, n)
	dst := allocateOrFail[Device](b, n)
	b.SetBytes(n)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := Copy(n, src, dst); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkCopyDeviceToHost(b *testing.B) {
	const n = 1 << 22
	src := allocateOrFail[Device](b, n)
	dst := allocateOrFail[Host](b, n)
	b.SetBytes(n)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := Copy(n, src, dst); err != nil {
			b.Fatal(err)
		}
	}
}
