package hetmem

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/LynnColeArt/hetmem/device"
)

// configureDevice sets simulated memory attributes for the duration of a test.
func configureDevice(t testing.TB, opts device.Options) {
	t.Helper()
	orig, err := device.GetDeviceProperties(0)
	if err != nil {
		t.Fatal(err)
	}
	if err := device.Configure(opts); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		device.Configure(device.Options{
			Name:            orig.Name,
			TotalMem:        orig.TotalMem,
			MemoryClockRate: orig.MemoryClockRate,
			MemoryBusWidth:  orig.MemoryBusWidth,
		})
	})
}

func TestTheoreticalBandwidth(t *testing.T) {
	tests := []struct {
		name     string
		clockKHz int
		busBits  int
		want     float64
	}{
		{"dual channel DDR4-3200", 1600000, 128, 51.2},
		{"GDDR5 on 384-bit bus", 3004000, 384, 288.384},
		{"narrow bus", 1000000, 8, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			configureDevice(t, device.Options{MemoryClockRate: tt.clockKHz, MemoryBusWidth: tt.busBits})
			got, err := TheoreticalBandwidth()
			if err != nil {
				t.Fatal(err)
			}
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("TheoreticalBandwidth() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTheoreticalBandwidthIsDeterministic(t *testing.T) {
	first, err := TheoreticalBandwidth()
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 100; i++ {
		if got, _ := TheoreticalBandwidth(); got != first {
			t.Fatalf("query %d returned %v, first was %v", i, got, first)
		}
	}
}

func TestEffectiveBandwidth(t *testing.T) {
	// 1 GB moved in one second
	if got := EffectiveBandwidth(6e8, 4e8, 1000); math.Abs(got-1) > 1e-12 {
		t.Errorf("EffectiveBandwidth = %v, want 1", got)
	}
	// the matrix scenario: 1.92 MB in 0.5 ms
	read, written := int64(2*10000*64), int64(10000*64)
	if got := EffectiveBandwidth(read, written, 0.5); math.Abs(got-3.84) > 1e-9 {
		t.Errorf("EffectiveBandwidth = %v, want 3.84", got)
	}
}

func TestEffectiveBandwidthMonotonic(t *testing.T) {
	times := []float64{0.001, 0.01, 0.5, 1, 3.7, 100, 1e4}
	for i := 1; i < len(times); i++ {
		slow := EffectiveBandwidth(1<<20, 1<<19, times[i])
		fast := EffectiveBandwidth(1<<20, 1<<19, times[i-1])
		if !(slow < fast) {
			t.Errorf("bandwidth at %v ms (%v) not below %v ms (%v)", times[i], slow, times[i-1], fast)
		}
	}

	moved := []int64{1, 64, 4096, 1 << 20, 1 << 30}
	for i := 1; i < len(moved); i++ {
		less := EffectiveBandwidth(moved[i-1], moved[i-1], 2)
		more := EffectiveBandwidth(moved[i], moved[i], 2)
		if !(more > less) {
			t.Errorf("bandwidth for %d bytes (%v) not above %d bytes (%v)", moved[i], more, moved[i-1], less)
		}
	}
}

func TestPrintDeviceAttributes(t *testing.T) {
	configureDevice(t, device.Options{Name: "bench device", MemoryClockRate: 1600000, MemoryBusWidth: 128})
	var buf bytes.Buffer
	if err := PrintDeviceAttributes(&buf); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{`[Device 0: "bench device"]`, "51.200000 GB/s", "128 bits"} {
		if !strings.Contains(out, want) {
			t.Errorf("output lacks %q:\n%s", want, out)
		}
	}
}
