// Package matrix holds the 4x4 matrix payload used by the array product
// benchmarks, with a host reference implementation and a device kernel.
package matrix

import (
	"fmt"
	"strings"

	"github.com/LynnColeArt/hetmem/device"
)

// Mat4f is a row-major 4x4 float32 matrix. It is plain data, Size bytes.
type Mat4f struct {
	M [16]float32
}

// Size is the byte size of a Mat4f.
const Size = 64

// Identity returns the identity matrix.
func Identity() Mat4f {
	var m Mat4f
	for i := 0; i < 4; i++ {
		m.M[i*4+i] = 1
	}
	return m
}

// Sequence returns a matrix whose elements are start, start+1, ... in row
// order.
func Sequence(start float32) Mat4f {
	var m Mat4f
	for i := range m.M {
		m.M[i] = start + float32(i)
	}
	return m
}

// Mul returns the product a*b.
func (a Mat4f) Mul(b Mat4f) Mat4f {
	var c Mat4f
	for row := 0; row < 4; row++ {
		for col := 0; col < 4; col++ {
			var sum float32
			for k := 0; k < 4; k++ {
				sum += a.M[row*4+k] * b.M[k*4+col]
			}
			c.M[row*4+col] = sum
		}
	}
	return c
}

func (a Mat4f) String() string {
	var sb strings.Builder
	sb.WriteString("Mat4f(")
	for row := 0; row < 4; row++ {
		if row > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "[%g %g %g %g]", a.M[row*4], a.M[row*4+1], a.M[row*4+2], a.M[row*4+3])
	}
	sb.WriteString(")")
	return sb.String()
}

// Fill sets every element of out to m.
func Fill(m Mat4f, out []Mat4f) {
	for i := range out {
		out[i] = m
	}
}

// ArrayProductCPU computes c[i] = a[i]*b[i] on the host.
func ArrayProductCPU(a, b, c []Mat4f) {
	for i := range c {
		c[i] = a[i].Mul(b[i])
	}
}

// ArrayProductNaive computes c[i] = a[i]*b[i] with one thread per element.
// Arguments: a device.Ptr, b device.Ptr, n int, c device.Ptr.
var ArrayProductNaive = device.KernelFunc(func(tid device.ThreadID, args ...interface{}) {
	n := args[2].(int)
	i := tid.Global()
	if i >= n {
		return
	}
	a := device.Slice[Mat4f](args[0].(device.Ptr), n)
	b := device.Slice[Mat4f](args[1].(device.Ptr), n)
	c := device.Slice[Mat4f](args[3].(device.Ptr), n)
	c[i] = a[i].Mul(b[i])
})

// LaunchShape returns a one-dimensional grid covering n elements with
// blockSize threads per block.
func LaunchShape(n, blockSize int) (grid, block device.Dim3) {
	block = device.Dim3{X: blockSize, Y: 1, Z: 1}
	grid = device.Dim3{X: (n + blockSize - 1) / blockSize, Y: 1, Z: 1}
	return grid, block
}

// ProductBytes returns the bytes read and written by one array product over
// n matrices: two operands read, one result written.
func ProductBytes(n int) (read, written int64) {
	size := int64(n) * Size
	return 2 * size, size
}
