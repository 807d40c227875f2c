// Package device provides a CUDA-shaped accelerator runtime executed on the
// CPU. It is the native runtime underneath the hetmem core: device memory
// lives in its own mappings outside the Go heap, transfers name their
// direction, kernels launch over a grid of blocks and run on a single
// default stream, and events timestamp the stream for benchmarking.
//
// Example usage:
//
//	d_a, _ := device.Malloc(n * 4)
//	defer device.Free(d_a)
//
//	device.Memcpy(d_a, h_a, n*4, device.MemcpyHostToDevice)
//
//	grid := device.Dim3{X: (n + 255) / 256, Y: 1, Z: 1}
//	block := device.Dim3{X: 256, Y: 1, Z: 1}
//	device.Launch(myKernel, grid, block, d_a, n)
//	device.Synchronize()
package device

import (
	"fmt"
	"runtime"
	"sync"
)

// Properties describes the active device. Clock rate and bus width are the
// two attributes bandwidth calculations depend on.
type Properties struct {
	Name                string // Human-readable device name
	TotalMem            uint64 // Device memory capacity in bytes
	MemoryClockRate     int    // Peak memory clock in kHz
	MemoryBusWidth      int    // Memory bus width in bits
	MultiProcessorCount int    // Number of CPU cores serving as multiprocessors
	MaxThreadsPerBlock  int
}

// Options overrides the simulated attributes of the device. Zero fields
// keep their current value.
type Options struct {
	Name            string
	TotalMem        uint64
	MemoryClockRate int
	MemoryBusWidth  int
}

// Context owns the device state: properties, the memory arena and the
// default stream. There is one per process.
type Context struct {
	mu     sync.Mutex
	props  Properties
	memory *arena
	stream *Stream

	// sticky error from a faulted kernel, reported by the next
	// synchronizing call
	lastErr error
}

// Dim3 represents 3D dimensions for grid and block configurations.
// This matches CUDA's dim3 structure for kernel launch parameters.
type Dim3 struct {
	X, Y, Z int
}

// ThreadID identifies a thread's position within the execution hierarchy.
type ThreadID struct {
	BlockIdx  Dim3 // Block index within the grid
	ThreadIdx Dim3 // Thread index within the block
	BlockDim  Dim3 // Dimensions of the block
	GridDim   Dim3 // Dimensions of the grid
}

// Kernel represents a compute kernel that can be executed in parallel.
// Implementations should be thread-safe as Execute will be called
// concurrently from multiple goroutines.
type Kernel interface {
	Execute(tid ThreadID, args ...interface{})
}

// KernelFunc is a function that can be launched as a kernel.
type KernelFunc func(tid ThreadID, args ...interface{})

// Execute implements Kernel.
func (fn KernelFunc) Execute(tid ThreadID, args ...interface{}) {
	fn(tid, args...)
}

var (
	defaultContext *Context
	initOnce       sync.Once
)

func init() {
	initOnce.Do(func() {
		defaultContext = newContext(defaultProperties())
	})
}

func defaultProperties() Properties {
	return Properties{
		Name:                deviceName(),
		TotalMem:            SystemMemory(),
		MemoryClockRate:     DefaultMemoryClockRate,
		MemoryBusWidth:      DefaultMemoryBusWidth,
		MultiProcessorCount: runtime.NumCPU(),
		MaxThreadsPerBlock:  MaxThreadsPerBlock,
	}
}

func newContext(props Properties) *Context {
	return &Context{
		props:  props,
		memory: newArena(props.TotalMem),
		stream: newStream(),
	}
}

// Default returns the process-wide device context.
func Default() *Context {
	return defaultContext
}

// Configure replaces the simulated attributes of the device. Pending work is
// drained first; live allocations stay valid and keep counting against the
// new capacity.
func Configure(opts Options) error {
	return defaultContext.Configure(opts)
}

// Configure replaces the simulated attributes of this context's device.
func (ctx *Context) Configure(opts Options) error {
	if opts.MemoryClockRate < 0 || opts.MemoryBusWidth < 0 {
		return newInvalidArgError(ErrorInvalidValue, "Configure",
			fmt.Sprintf("negative clock rate %d or bus width %d", opts.MemoryClockRate, opts.MemoryBusWidth))
	}
	ctx.stream.Synchronize()

	ctx.mu.Lock()
	defer ctx.mu.Unlock()
	if opts.Name != "" {
		ctx.props.Name = opts.Name
	}
	if opts.TotalMem != 0 {
		ctx.props.TotalMem = opts.TotalMem
		ctx.memory.setCapacity(opts.TotalMem)
	}
	if opts.MemoryClockRate != 0 {
		ctx.props.MemoryClockRate = opts.MemoryClockRate
	}
	if opts.MemoryBusWidth != 0 {
		ctx.props.MemoryBusWidth = opts.MemoryBusWidth
	}
	return nil
}

// Properties returns a copy of the device properties.
func (ctx *Context) Properties() Properties {
	ctx.mu.Lock()
	defer ctx.mu.Unlock()
	return ctx.props
}

// Synchronize waits for all work on the default stream to complete and
// returns the sticky launch error, if a kernel faulted.
func (ctx *Context) Synchronize() error {
	ctx.stream.Synchronize()
	return ctx.stickyError()
}

func (ctx *Context) setStickyError(err error) {
	ctx.mu.Lock()
	if ctx.lastErr == nil {
		ctx.lastErr = err
	}
	ctx.mu.Unlock()
}

func (ctx *Context) stickyError() error {
	ctx.mu.Lock()
	defer ctx.mu.Unlock()
	return ctx.lastErr
}

// Reset drains the stream, clears a sticky launch error and releases every
// live device allocation. Pointers obtained before Reset become invalid.
func (ctx *Context) Reset() error {
	ctx.stream.Synchronize()
	ctx.mu.Lock()
	ctx.lastErr = nil
	ctx.mu.Unlock()
	return ctx.memory.releaseAll()
}

// DeviceReset resets the default context.
func DeviceReset() error {
	return defaultContext.Reset()
}

// GetDevice returns the index of the active device. There is a single
// device, so this is always 0.
func GetDevice() (int, error) {
	return 0, nil
}

// SetDevice selects the active device. Only device 0 exists.
func SetDevice(id int) error {
	if id != 0 {
		return ErrInvalidDevice
	}
	return nil
}

// GetDeviceCount returns the number of available devices.
func GetDeviceCount() int {
	return 1
}

// GetDeviceProperties returns the properties of device id.
func GetDeviceProperties(id int) (Properties, error) {
	if id != 0 {
		return Properties{}, &Error{
			Type:    ErrTypeDevice,
			Code:    ErrorInvalidDevice,
			Op:      "GetDeviceProperties",
			Message: fmt.Sprintf("invalid device ID: %d", id),
		}
	}
	return defaultContext.Properties(), nil
}

// Synchronize waits for all operations on the default stream to complete.
func Synchronize() error {
	return defaultContext.Synchronize()
}

// Launch executes a kernel on the default stream.
func Launch(kernel Kernel, grid, block Dim3, args ...interface{}) error {
	return defaultContext.Launch(kernel, grid, block, args...)
}

// LaunchFunc executes a kernel function on the default stream.
func LaunchFunc(fn KernelFunc, grid, block Dim3, args ...interface{}) error {
	return defaultContext.Launch(fn, grid, block, args...)
}

// Global returns the global thread index along X
func (tid ThreadID) Global() int {
	return tid.BlockIdx.X*tid.BlockDim.X + tid.ThreadIdx.X
}

// GlobalY returns the global Y index
func (tid ThreadID) GlobalY() int {
	return tid.BlockIdx.Y*tid.BlockDim.Y + tid.ThreadIdx.Y
}

// GlobalZ returns the global Z index
func (tid ThreadID) GlobalZ() int {
	return tid.BlockIdx.Z*tid.BlockDim.Z + tid.ThreadIdx.Z
}

// Size returns the total number of elements
func (d Dim3) Size() int {
	return d.X * d.Y * d.Z
}

func (d Dim3) String() string {
	return fmt.Sprintf("(%d,%d,%d)", d.X, d.Y, d.Z)
}
