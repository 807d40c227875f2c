package device

import "testing"

// mallocOrFail allocates device memory and fails the test if unsuccessful
func mallocOrFail(t testing.TB, size int) Ptr {
	t.Helper()
	ptr, err := Malloc(size)
	if err != nil {
		t.Fatalf("Failed to allocate %d bytes: %v", size, err)
	}
	t.Cleanup(func() { Free(ptr) })
	return ptr
}

// memcpyOrFail copies data and fails the test if unsuccessful
func memcpyOrFail(t testing.TB, dst, src interface{}, size int, kind MemcpyKind) {
	t.Helper()
	if err := Memcpy(dst, src, size, kind); err != nil {
		t.Fatalf("Memcpy %s failed: %v", kind, err)
	}
}

// resetAfter clears a sticky error left behind by a faulting kernel.
func resetAfter(t testing.TB) {
	t.Helper()
	t.Cleanup(func() {
		Synchronize()
		defaultContext.mu.Lock()
		defaultContext.lastErr = nil
		defaultContext.mu.Unlock()
	})
}
