package hetmem

import (
	"bytes"
	"testing"

	"github.com/sirupsen/logrus"
)

// captureLog routes diagnostics into a buffer for the rest of the test.
func captureLog(t testing.TB) *bytes.Buffer {
	t.Helper()
	buf := new(bytes.Buffer)
	l := logrus.New()
	l.SetOutput(buf)
	l.SetLevel(logrus.DebugLevel)
	l.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true, DisableColors: true})

	prev := Logger()
	SetLogger(l)
	t.Cleanup(func() { SetLogger(prev) })
	return buf
}

// allocateOrFail allocates a buffer and releases it when the test ends.
func allocateOrFail[R Residency](t testing.TB, n int) *Buffer[R] {
	t.Helper()
	b, err := Allocate[R](n)
	if err != nil {
		t.Fatalf("Allocate[%T](%d) failed: %v", *new(R), n, err)
	}
	t.Cleanup(func() {
		if !b.released {
			b.Release()
		}
	})
	return b
}

// hostPattern returns a host buffer of n bytes holding a deterministic pattern.
func hostPattern(t testing.TB, n int, seed byte) *Buffer[Host] {
	t.Helper()
	b := allocateOrFail[Host](t, n)
	for i, p := 0, HostBytes(b); i < n; i++ {
		p[i] = byte(i*31) ^ seed
	}
	return b
}
