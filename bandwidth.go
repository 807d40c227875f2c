package hetmem

import (
	"fmt"
	"io"

	"github.com/LynnColeArt/hetmem/device"
)

// TheoreticalBandwidth returns the peak memory bandwidth of the active
// device in GB/s, derived from its memory clock and bus width.
func TheoreticalBandwidth() (float64, error) {
	_, props, err := activeProperties()
	if err != nil {
		return 0, err
	}
	return theoreticalBandwidth(props), nil
}

func theoreticalBandwidth(props device.Properties) float64 {
	hz := float64(props.MemoryClockRate) * 1000
	busBytes := float64(props.MemoryBusWidth) / 8
	// double data rate
	return hz * busBytes * 2 / 1e9
}

// EffectiveBandwidth returns the bandwidth in GB/s achieved by moving
// bytesRead+bytesWritten bytes in elapsedMs milliseconds.
func EffectiveBandwidth(bytesRead, bytesWritten int64, elapsedMs float64) float64 {
	bytesPerSecond := float64(bytesRead+bytesWritten) / (elapsedMs * 1e-3)
	return bytesPerSecond / 1e9
}

// PrintDeviceAttributes writes the name and theoretical bandwidth of the
// active device to w.
func PrintDeviceAttributes(w io.Writer) error {
	id, props, err := activeProperties()
	if err != nil {
		return err
	}
	free, total := device.MemGetInfo()

	_, err = fmt.Fprintf(w, "\n[Device %d: %q]\n"+
		"   Memory Clock Rate:                      %d kHz\n"+
		"   Memory Bus Width:                       %d bits\n"+
		"   Memory Free / Total:                    %d / %d bytes\n"+
		"   Multiprocessors:                        %d\n"+
		"   Theoretical Memory Bandwidth:           %f GB/s\n\n",
		id, props.Name, props.MemoryClockRate, props.MemoryBusWidth,
		free, total, props.MultiProcessorCount, theoreticalBandwidth(props))
	return err
}

func activeProperties() (int, device.Properties, error) {
	id, err := device.GetDevice()
	if err := Check(Fatal, err, "device.GetDevice()"); err != nil {
		return 0, device.Properties{}, err
	}
	props, err := device.GetDeviceProperties(id)
	if err := Check(Fatal, err, "device.GetDeviceProperties(id)"); err != nil {
		return 0, device.Properties{}, err
	}
	return id, props, nil
}
