package frame

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/vitra/common"
	"github.com/Carmen-Shannon/vitra/engine/profiler"
	"github.com/Carmen-Shannon/vitra/engine/uniform"
)

var (
	// ErrNilBlock is returned when a nil block is added.
	ErrNilBlock = errors.New("nil uniform block")
	// ErrDuplicateBlock is returned when a block label is already registered.
	ErrDuplicateBlock = errors.New("duplicate uniform block label")
	// ErrSlotInUse is returned when two blocks claim the same slot. A binding holds one
	// buffer whatever the stages, so blocks with disjoint stages still conflict.
	ErrSlotInUse = errors.New("uniform slot already in use")
)

// FrameUpdater refreshes and binds a set of uniform blocks once per frame.
type FrameUpdater interface {
	// AddBlock registers a block for per-frame updates.
	//
	// Parameters:
	//   - b: the block; its label must be unique and its slot must not overlap another block's stages
	//
	// Returns:
	//   - error: ErrNilBlock, ErrDuplicateBlock or ErrSlotInUse
	AddBlock(b *uniform.Block) error

	// RemoveBlock unregisters the block with the given label.
	//
	// Returns:
	//   - bool: true if a block was removed
	RemoveBlock(label string) bool

	// Blocks returns the registered blocks in bind order (slot, then label).
	Blocks() []*uniform.Block

	// Update fills every block from its suppliers and binds them in slot order on the
	// calling goroutine. A block that fails to update is skipped; the others are still
	// bound. All failures are joined into the returned error.
	Update() error

	// Close stops the worker pool, if any.
	Close()
}

type frameUpdater struct {
	binder   uniform.Binder
	blocks   []*uniform.Block
	workers  int
	pool     worker.DynamicWorkerPool
	profiler *profiler.Profiler

	// errs is indexed like blocks and reused across frames.
	errs []error
}

var _ FrameUpdater = &frameUpdater{}

// NewFrameUpdater creates a FrameUpdater that binds through binder.
//
// Parameters:
//   - binder: the GPU collaborator blocks are bound through
//   - options: functional options to configure the updater
//
// Returns:
//   - FrameUpdater: the configured updater
//   - error: ErrNilBinder, or any error from adding the blocks given by WithBlocks
func NewFrameUpdater(binder uniform.Binder, options ...FrameUpdaterBuilderOption) (FrameUpdater, error) {
	if binder == nil {
		return nil, uniform.ErrNilBinder
	}
	f := &frameUpdater{
		binder:  binder,
		workers: 1,
	}
	for _, opt := range options {
		if err := opt(f); err != nil {
			return nil, err
		}
	}

	// Queue sized to the worker count; Update never has more than one task per block in flight.
	if f.workers > 1 {
		f.pool = worker.NewDynamicWorkerPool(f.workers, f.workers*4, time.Second)
	}
	return f, nil
}

func (f *frameUpdater) AddBlock(b *uniform.Block) error {
	if b == nil {
		return ErrNilBlock
	}
	for _, o := range f.blocks {
		if o.Label() == b.Label() {
			return fmt.Errorf("%w: %q", ErrDuplicateBlock, b.Label())
		}
		if o.Slot() == b.Slot() {
			return fmt.Errorf("%w: slot %d (%q and %q)", ErrSlotInUse, b.Slot(), o.Label(), b.Label())
		}
	}

	f.blocks = append(f.blocks, b)
	slices.SortStableFunc(f.blocks, func(x, y *uniform.Block) int {
		return cmp.Or(cmp.Compare(x.Slot(), y.Slot()), cmp.Compare(x.Label(), y.Label()))
	})
	f.errs = make([]error, len(f.blocks))
	return nil
}

func (f *frameUpdater) RemoveBlock(label string) bool {
	i := slices.IndexFunc(f.blocks, func(b *uniform.Block) bool { return b.Label() == label })
	if i < 0 {
		return false
	}
	f.blocks = slices.Delete(f.blocks, i, i+1)
	f.errs = f.errs[:len(f.blocks)]
	return true
}

func (f *frameUpdater) Blocks() []*uniform.Block {
	return slices.Clone(f.blocks)
}

func (f *frameUpdater) Update() error {
	start := time.Now()
	clear(f.errs)

	if f.pool != nil && len(f.blocks) > 1 {
		f.updateParallel()
	} else {
		for i, b := range f.blocks {
			f.errs[i] = b.Update(b.Data())
		}
	}

	// Binding stays on the caller; GPU queues are not shared across goroutines.
	bytes := 0
	for i, b := range f.blocks {
		if f.errs[i] != nil {
			continue
		}
		if err := b.Bind(f.binder); err != nil {
			f.errs[i] = err
			continue
		}
		bytes += b.Size()
	}

	if f.profiler != nil {
		f.profiler.RecordUniforms(time.Since(start), bytes)
	}

	err := errors.Join(f.errs...)
	if err != nil {
		common.Logger().Warn("uniform frame update failed", "error", err)
	}
	return err
}

// updateParallel fills every block's staging buffer on the worker pool. The pool's
// own Wait blocks until workers go idle, so a WaitGroup is the per-frame barrier.
func (f *frameUpdater) updateParallel() {
	var wg sync.WaitGroup
	for i, b := range f.blocks {
		wg.Add(1)
		f.pool.SubmitTask(worker.Task{
			ID: i,
			Do: func() (any, error) {
				defer wg.Done()
				f.errs[i] = b.Update(b.Data())
				return nil, f.errs[i]
			},
		})
	}
	wg.Wait()
}

func (f *frameUpdater) Close() {
	if f.pool != nil {
		f.pool.Stop()
		f.pool = nil
	}
}
