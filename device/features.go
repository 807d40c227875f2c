package device

import (
	"strings"

	"golang.org/x/sys/cpu"
)

// simdFeatures lists the vector extensions available to kernels.
func simdFeatures() []string {
	var feats []string
	switch {
	case cpu.X86.HasAVX512F:
		feats = append(feats, "avx512")
	case cpu.X86.HasAVX2:
		feats = append(feats, "avx2")
	case cpu.X86.HasAVX:
		feats = append(feats, "avx")
	}
	if cpu.X86.HasFMA {
		feats = append(feats, "fma")
	}
	if cpu.ARM64.HasASIMD {
		feats = append(feats, "neon")
	}
	if cpu.ARM64.HasSVE {
		feats = append(feats, "sve")
	}
	return feats
}

// deviceName builds the display name of the CPU-backed device.
func deviceName() string {
	feats := simdFeatures()
	if len(feats) == 0 {
		return "GUDA CPU Device"
	}
	return "GUDA CPU Device (" + strings.Join(feats, ", ") + ")"
}
