package frame

import (
	"github.com/Carmen-Shannon/vitra/engine/profiler"
	"github.com/Carmen-Shannon/vitra/engine/uniform"
)

// FrameUpdaterBuilderOption is a functional option applied to a FrameUpdater during construction via NewFrameUpdater.
type FrameUpdaterBuilderOption func(*frameUpdater) error

// WithBlocks registers blocks at construction, in the order given.
//
// Parameters:
//   - blocks: the blocks to register
//
// Returns:
//   - FrameUpdaterBuilderOption: a function that adds the blocks
func WithBlocks(blocks ...*uniform.Block) FrameUpdaterBuilderOption {
	return func(f *frameUpdater) error {
		for _, b := range blocks {
			if err := f.AddBlock(b); err != nil {
				return err
			}
		}
		return nil
	}
}

// WithWorkers fills blocks on a pool of n workers. Every supplier reachable from the
// registered blocks must then be safe to call concurrently with the others; a
// supplier shared by two blocks is called from two goroutines. Values below 2 keep
// updates on the calling goroutine.
//
// Parameters:
//   - n: the worker count
//
// Returns:
//   - FrameUpdaterBuilderOption: a function that sets the worker count
func WithWorkers(n int) FrameUpdaterBuilderOption {
	return func(f *frameUpdater) error {
		f.workers = max(n, 1)
		return nil
	}
}

// WithProfiler records per-frame uniform time and upload volume on p.
func WithProfiler(p *profiler.Profiler) FrameUpdaterBuilderOption {
	return func(f *frameUpdater) error {
		f.profiler = p
		return nil
	}
}
