package device

// Thread and block dimensions
const (
	// Default block size for kernels
	DefaultBlockSize = 256

	// Maximum threads per block (CUDA compatibility)
	MaxThreadsPerBlock = 1024
)

// Memory parameters
const (
	// Memory alignment for host-side allocations
	MemoryAlignment = 64

	// Fallback device capacity when the OS cannot report physical memory
	DefaultTotalMem = 16 * 1024 * 1024 * 1024
)

// Simulated memory interface. The defaults describe dual-channel DDR4-3200:
// a 1600 MHz I/O clock over a 128-bit bus, double data rate.
const (
	DefaultMemoryClockRate = 1600000 // kHz
	DefaultMemoryBusWidth  = 128     // bits
)

