package hetmem

import (
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/LynnColeArt/hetmem/device"
)

// Launch describes one kernel launch: the kernel, its arguments and the
// grid and block shape.
type Launch struct {
	Name   string
	Kernel device.Kernel
	Args   []interface{}
	Grid   device.Dim3
	Block  device.Dim3
}

// Result is the outcome of one timed kernel launch.
type Result struct {
	Name           string      `json:"name"`
	ElapsedMs      float64     `json:"elapsed_ms"`
	TheoreticalGBs float64     `json:"theoretical_gb_per_sec"`
	EffectiveGBs   float64     `json:"effective_gb_per_sec"`
	BytesRead      int64       `json:"bytes_read"`
	BytesWritten   int64       `json:"bytes_written"`
	Grid           device.Dim3 `json:"grid"`
	Block          device.Dim3 `json:"block"`
	Timestamp      time.Time   `json:"timestamp"`
}

// Benchmark times one launch of l on the default stream between two events
// and reports the elapsed time with the theoretical and effective
// bandwidth. The byte counts are what the kernel reads and writes; they are
// taken on trust. Every runtime call is checked at Fatal severity.
//
// The report block is written to the diagnostics logger's output.
func Benchmark(l Launch, bytesRead, bytesWritten int64) (Result, error) {
	start, err := device.EventCreate()
	if err := Check(Fatal, err, "device.EventCreate()"); err != nil {
		return Result{}, err
	}
	defer func() {
		Check(Continue, device.EventDestroy(start), "device.EventDestroy(start)")
	}()
	stop, err := device.EventCreate()
	if err := Check(Fatal, err, "device.EventCreate()"); err != nil {
		return Result{}, err
	}
	defer func() {
		Check(Continue, device.EventDestroy(stop), "device.EventDestroy(stop)")
	}()

	if err := Check(Fatal, device.EventRecord(start), "device.EventRecord(start)"); err != nil {
		return Result{}, err
	}
	if err := Check(Fatal, device.Launch(l.Kernel, l.Grid, l.Block, l.Args...),
		"device.Launch(l.Kernel, l.Grid, l.Block, l.Args...)"); err != nil {
		return Result{}, err
	}
	if err := Check(Fatal, device.EventRecord(stop), "device.EventRecord(stop)"); err != nil {
		return Result{}, err
	}
	if err := Check(Fatal, device.EventSynchronize(stop), "device.EventSynchronize(stop)"); err != nil {
		return Result{}, err
	}
	ms, err := device.EventElapsedTime(start, stop)
	if err := Check(Fatal, err, "device.EventElapsedTime(start, stop)"); err != nil {
		return Result{}, err
	}

	theoretical, err := TheoreticalBandwidth()
	if err != nil {
		return Result{}, err
	}

	r := Result{
		Name:           l.Name,
		ElapsedMs:      float64(ms),
		TheoreticalGBs: theoretical,
		EffectiveGBs:   EffectiveBandwidth(bytesRead, bytesWritten, float64(ms)),
		BytesRead:      bytesRead,
		BytesWritten:   bytesWritten,
		Grid:           l.Grid,
		Block:          l.Block,
		Timestamp:      time.Now(),
	}

	log.WithFields(logrus.Fields{
		"kernel":     r.Name,
		"elapsed_ms": r.ElapsedMs,
		"effective":  r.EffectiveGBs,
	}).Debug("kernel benchmark complete")
	if err := r.Report(log.Out); err != nil {
		return r, fmt.Errorf("write benchmark report: %w", err)
	}
	return r, nil
}

// Report writes the result as a block headed by the kernel name.
func (r Result) Report(w io.Writer) error {
	_, err := fmt.Fprintf(w, "<<< Kernel Benchmark %q >>>\n"+
		"   Elapsed time:                           %f ms\n"+
		"   Theoretical Bandwidth:                  %f GB/s\n"+
		"   Effective Bandwidth:                    %f GB/s\n",
		r.Name, r.ElapsedMs, r.TheoreticalGBs, r.EffectiveGBs)
	return err
}
