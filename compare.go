package hetmem

import "fmt"

// Compare reports whether the first n elements of a and b are equal.
// Device buffers are staged to host memory first; if staging fails the
// result is false together with the error.
func Compare[T comparable, R Residency](n int, a, b *Buffer[R]) (bool, error) {
	i, err := FirstMismatch[T](n, a, b)
	if err != nil {
		return false, err
	}
	return i < 0, nil
}

// FirstMismatch returns the index of the first of n elements where a and b
// differ, or -1 if they are equal.
func FirstMismatch[T comparable, R Residency](n int, a, b *Buffer[R]) (int, error) {
	if err := a.usable(); err != nil {
		return -1, err
	}
	if err := b.usable(); err != nil {
		return -1, err
	}
	size := n * sizeOf[T]()
	if n < 0 || size > a.size || size > b.size {
		return -1, fmt.Errorf("%w: compare of %d elements (%d bytes) over %d and %d byte buffers",
			ErrOutOfRange, n, size, a.size, b.size)
	}
	if n == 0 {
		return -1, nil
	}

	var r R
	hostA, releaseA, err := r.stage(a.reg, size)
	if err != nil {
		return -1, err
	}
	defer releaseA()
	hostB, releaseB, err := r.stage(b.reg, size)
	if err != nil {
		return -1, err
	}
	defer releaseB()

	return mismatch(view[T](hostA, n), view[T](hostB, n)), nil
}

func mismatch[T comparable](a, b []T) int {
	for i := range a {
		if a[i] != b[i] {
			return i
		}
	}
	return -1
}
