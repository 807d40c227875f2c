package device

import (
	"fmt"
	"runtime"
	"sync"
)

// Launch validates the launch shape and enqueues the kernel on the default
// stream. It returns before the kernel runs; a kernel that panics leaves a
// sticky ErrorLaunchFailure on the context.
func (ctx *Context) Launch(kernel Kernel, grid, block Dim3, args ...interface{}) error {
	if kernel == nil {
		return newInvalidArgError(ErrorInvalidValue, "Launch", "nil kernel")
	}
	if err := validateShape(grid, block); err != nil {
		return err
	}
	if err := ctx.stickyError(); err != nil {
		return err
	}
	ctx.launchInternal(kernel.Execute, grid, block, args...)
	return nil
}

func validateShape(grid, block Dim3) error {
	if grid.X <= 0 || grid.Y <= 0 || grid.Z <= 0 || block.X <= 0 || block.Y <= 0 || block.Z <= 0 {
		return newInvalidArgError(ErrorInvalidConfiguration, "Launch",
			fmt.Sprintf("grid %v and block %v must be positive in every dimension", grid, block))
	}
	if block.Size() > MaxThreadsPerBlock {
		return newInvalidArgError(ErrorInvalidConfiguration, "Launch",
			fmt.Sprintf("block %v has %d threads, limit is %d", block, block.Size(), MaxThreadsPerBlock))
	}
	return nil
}

// launchInternal implements the core kernel execution logic
func (ctx *Context) launchInternal(
	kernelFunc func(ThreadID, ...interface{}),
	grid, block Dim3,
	args ...interface{},
) {
	gridSize := grid.Size()
	blockSize := block.Size()

	// Determine parallelism strategy
	numWorkers := runtime.NumCPU()
	if gridSize < numWorkers {
		numWorkers = gridSize
	}

	// Each worker processes a contiguous run of blocks to maximize cache reuse
	blocksPerWorker := (gridSize + numWorkers - 1) / numWorkers

	ctx.stream.Submit(func() {
		var wg sync.WaitGroup
		wg.Add(numWorkers)

		for workerID := 0; workerID < numWorkers; workerID++ {
			startBlock := workerID * blocksPerWorker
			endBlock := startBlock + blocksPerWorker
			if endBlock > gridSize {
				endBlock = gridSize
			}

			go func() {
				defer wg.Done()
				defer func() {
					if r := recover(); r != nil {
						ctx.setStickyError(newExecutionError(ErrorLaunchFailure, "Kernel",
							"kernel execution failed", fmt.Errorf("%v", r)))
					}
				}()

				for blockID := startBlock; blockID < endBlock; blockID++ {
					blockIdx := linearTo3D(blockID, grid)

					// Threads of a block run sequentially on one goroutine
					for threadID := 0; threadID < blockSize; threadID++ {
						kernelFunc(ThreadID{
							BlockIdx:  blockIdx,
							ThreadIdx: linearTo3D(threadID, block),
							BlockDim:  block,
							GridDim:   grid,
						}, args...)
					}
				}
			}()
		}

		wg.Wait()
	})
}

// linearTo3D converts a linear index to 3D coordinates
func linearTo3D(linear int, dim Dim3) Dim3 {
	z := linear / (dim.X * dim.Y)
	y := (linear % (dim.X * dim.Y)) / dim.X
	x := linear % dim.X
	return Dim3{X: x, Y: y, Z: z}
}
