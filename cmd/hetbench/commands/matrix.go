package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/LynnColeArt/hetmem"
	"github.com/LynnColeArt/hetmem/internal/logging"
	"github.com/LynnColeArt/hetmem/internal/matrix"
)

const matrixKernelName = "MatrixArrayProduct_Naive"

func newMatrixCommand(s *session) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "matrix",
		Short: "Benchmark the element-wise product of two 4x4 matrix arrays",
		Long: `Fill two arrays of 4x4 float matrices on the host, upload them, time the
element-wise product kernel on the device and validate the downloaded result
against a host reference. A mismatch is reported with the index of the first
differing element and a non-zero exit status.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMatrix(cmd, s)
		},
	}

	cmd.Flags().IntP("size", "n", 0, "number of matrices per array (default from config, 10000)")
	cmd.Flags().Int("block", 0, "threads per block (default from config, 256)")
	cmd.Flags().String("log-dir", "", "directory for the JSON result log")
	return cmd
}

// matrixRun holds the buffers of one matrix benchmark.
type matrixRun struct {
	n    int
	size int

	a, b, c, ref *hetmem.Buffer[hetmem.Host]
	da, db, dc   *hetmem.Buffer[hetmem.Device]
}

func runMatrix(cmd *cobra.Command, s *session) error {
	n, blockSize := s.cfg.Bench.ArraySize, s.cfg.Bench.BlockSize
	logging.Infof("matrix array product: %d elements, block size %d", n, blockSize)

	out := cmd.OutOrStdout()
	if err := hetmem.PrintDeviceAttributes(out); err != nil {
		return err
	}

	run := &matrixRun{n: n, size: n * matrix.Size}
	defer run.release()
	if err := run.allocate(); err != nil {
		return err
	}

	matrix.Fill(matrix.Sequence(0.5), hetmem.HostSlice[matrix.Mat4f](run.a))
	matrix.Fill(matrix.Identity(), hetmem.HostSlice[matrix.Mat4f](run.b))
	matrix.ArrayProductCPU(hetmem.HostSlice[matrix.Mat4f](run.a),
		hetmem.HostSlice[matrix.Mat4f](run.b), hetmem.HostSlice[matrix.Mat4f](run.ref))

	if err := hetmem.Copy(run.size, run.a, run.da); err != nil {
		return err
	}
	if err := hetmem.Copy(run.size, run.b, run.db); err != nil {
		return err
	}

	grid, block := matrix.LaunchShape(n, blockSize)
	read, written := matrix.ProductBytes(n)
	result, err := hetmem.Benchmark(hetmem.Launch{
		Name:   matrixKernelName,
		Kernel: matrix.ArrayProductNaive,
		Args: []interface{}{
			hetmem.DevicePtr(run.da), hetmem.DevicePtr(run.db), n, hetmem.DevicePtr(run.dc),
		},
		Grid:  grid,
		Block: block,
	}, read, written)
	if err != nil {
		return err
	}

	if err := hetmem.Copy(run.size, run.dc, run.c); err != nil {
		return err
	}
	i, err := hetmem.FirstMismatch[matrix.Mat4f](n, run.c, run.ref)
	if err != nil {
		return err
	}
	if i >= 0 {
		got := hetmem.HostSlice[matrix.Mat4f](run.c)[i]
		want := hetmem.HostSlice[matrix.Mat4f](run.ref)[i]
		return fmt.Errorf("validation failed at element %d:\ngot\n%swant\n%s", i, got, want)
	}
	fmt.Fprintf(out, "Validation passed for %d elements\n", n)

	if dir := s.cfg.Bench.LogDir; dir != "" {
		rl, err := hetmem.NewResultLog(dir, "matrix")
		if err != nil {
			return err
		}
		if err := rl.Record(result); err != nil {
			return err
		}
		fmt.Fprintf(out, "Results written to %s\n", rl.Path())
	}
	return nil
}

func (r *matrixRun) allocate() error {
	var err error
	for _, h := range []**hetmem.Buffer[hetmem.Host]{&r.a, &r.b, &r.c, &r.ref} {
		if *h, err = hetmem.Allocate[hetmem.Host](r.size); err != nil {
			return err
		}
	}
	for _, d := range []**hetmem.Buffer[hetmem.Device]{&r.da, &r.db, &r.dc} {
		if *d, err = hetmem.Allocate[hetmem.Device](r.size); err != nil {
			return err
		}
	}
	return nil
}

// release frees whatever allocate managed to obtain. Host buffers cannot
// fail to release; device failures are reported by the residency itself.
func (r *matrixRun) release() {
	for _, h := range []*hetmem.Buffer[hetmem.Host]{r.a, r.b, r.c, r.ref} {
		if h != nil {
			h.Release()
		}
	}
	for _, d := range []*hetmem.Buffer[hetmem.Device]{r.da, r.db, r.dc} {
		if d != nil {
			d.Release()
		}
	}
}
