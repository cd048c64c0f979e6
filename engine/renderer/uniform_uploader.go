package renderer

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/Carmen-Shannon/vitra/common"
	"github.com/Carmen-Shannon/vitra/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/vitra/engine/uniform"
)

// ErrUploaderReleased is returned when binding through a released UniformUploader.
var ErrUploaderReleased = errors.New("uniform uploader released")

// uniformBackend is the part of the GPU backend a UniformUploader drives.
type uniformBackend interface {
	// CreateUniformBuffer creates a buffer with Uniform|CopyDst usage.
	CreateUniformBuffer(label string, size uint64) (*wgpu.Buffer, error)

	// CreateUniformBindGroup creates the layout and bind group for provider from
	// descriptor and stores both on the provider.
	CreateUniformBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor) error

	// WriteBuffers queues the writes.
	WriteBuffers(writes []bind_group_provider.BufferWrite)
}

// uniformTarget is the GPU buffer a block slot is uploaded into.
type uniformTarget struct {
	label  string
	size   int
	stages uniform.StageMask
}

// UniformUploader implements uniform.Binder on top of a WebGPU bind group: every block
// slot is a binding in one group, each backed by its own uniform buffer. Buffers are
// created the first time a slot is bound and recreated when the block bound there
// changes size, stages or label; the bind group is rebuilt lazily after such changes.
type UniformUploader struct {
	mu       sync.Mutex
	backend  uniformBackend
	provider bind_group_provider.BindGroupProvider
	targets  map[int]uniformTarget
	// dirty is set when the bind group no longer reflects targets.
	dirty    bool
	released bool
	// write is reused for every upload.
	write [1]bind_group_provider.BufferWrite
}

var _ uniform.Binder = &UniformUploader{}

// newUniformUploader creates an uploader backed by backend.
func newUniformUploader(backend uniformBackend, label string) *UniformUploader {
	return &UniformUploader{
		backend:  backend,
		provider: bind_group_provider.NewBindGroupProvider(label),
		targets:  make(map[int]uniformTarget),
	}
}

// ShaderStages converts a StageMask into WebGPU shader stage flags.
//
// Parameters:
//   - m: the stage mask
//
// Returns:
//   - wgpu.ShaderStage: the equivalent visibility flags
func ShaderStages(m uniform.StageMask) wgpu.ShaderStage {
	var s wgpu.ShaderStage
	if m.Has(uniform.StageVertex) {
		s |= wgpu.ShaderStageVertex
	}
	if m.Has(uniform.StageFragment) {
		s |= wgpu.ShaderStageFragment
	}
	if m.Has(uniform.StageCompute) {
		s |= wgpu.ShaderStageCompute
	}
	return s
}

// Declare creates the buffers for blocks ahead of the first frame so BindGroupLayout
// is available when pipelines are registered.
//
// Parameters:
//   - blocks: the blocks that will be bound through this uploader
//
// Returns:
//   - error: a buffer creation error
func (u *UniformUploader) Declare(blocks ...*uniform.Block) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	for _, b := range blocks {
		if err := u.ensureTarget(b.Label(), b.Slot(), b.Stages(), b.Size()); err != nil {
			return err
		}
	}
	return nil
}

// BindUniformBlock uploads data into the buffer at slot, creating or replacing the
// buffer when the block bound there has changed.
func (u *UniformUploader) BindUniformBlock(label string, slot int, stages uniform.StageMask, data []byte) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.released {
		return ErrUploaderReleased
	}
	if err := u.ensureTarget(label, slot, stages, len(data)); err != nil {
		return err
	}
	u.write[0] = bind_group_provider.BufferWrite{Provider: u.provider, Binding: slot, Data: data}
	u.backend.WriteBuffers(u.write[:])
	u.write[0] = bind_group_provider.BufferWrite{}
	return nil
}

// ensureTarget must be called with mu held.
func (u *UniformUploader) ensureTarget(label string, slot int, stages uniform.StageMask, size int) error {
	want := uniformTarget{label: label, size: size, stages: stages}
	if have, ok := u.targets[slot]; ok && have == want {
		return nil
	}

	buf, err := u.backend.CreateUniformBuffer(fmt.Sprintf("%s %s Uniform Buffer", u.provider.Label(), label), uint64(size))
	if err != nil {
		return fmt.Errorf("create uniform buffer for %q at slot %d: %w", label, slot, err)
	}
	u.provider.SetBuffer(slot, buf)
	u.targets[slot] = want
	u.dirty = true

	common.Logger().Debug("uniform buffer created", "group", u.provider.Label(), "block", label, "slot", slot, "size", size)
	return nil
}

// LayoutDescriptor describes the bind group layout for the slots bound so far, in
// ascending binding order.
//
// Returns:
//   - wgpu.BindGroupLayoutDescriptor: one uniform buffer entry per slot
func (u *UniformUploader) LayoutDescriptor() wgpu.BindGroupLayoutDescriptor {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.layoutDescriptor()
}

func (u *UniformUploader) layoutDescriptor() wgpu.BindGroupLayoutDescriptor {
	slots := make([]int, 0, len(u.targets))
	for slot := range u.targets {
		slots = append(slots, slot)
	}
	slices.Sort(slots)

	entries := make([]wgpu.BindGroupLayoutEntry, 0, len(slots))
	for _, slot := range slots {
		t := u.targets[slot]
		entry := wgpu.BindGroupLayoutEntry{
			Binding:    uint32(slot),
			Visibility: ShaderStages(t.stages),
		}
		entry.Buffer.Type = wgpu.BufferBindingTypeUniform
		entry.Buffer.MinBindingSize = uint64(t.size)
		entries = append(entries, entry)
	}
	return wgpu.BindGroupLayoutDescriptor{
		Label:   u.provider.Label() + " Bind Group Layout",
		Entries: entries,
	}
}

// refresh rebuilds the bind group if slots changed. Must be called with mu held.
func (u *UniformUploader) refresh() error {
	if !u.dirty {
		return nil
	}
	if err := u.backend.CreateUniformBindGroup(u.provider, u.layoutDescriptor()); err != nil {
		return fmt.Errorf("create uniform bind group %q: %w", u.provider.Label(), err)
	}
	u.dirty = false
	return nil
}

// BindGroupLayout returns the layout for the slots declared so far, creating it if needed.
//
// Returns:
//   - *wgpu.BindGroupLayout: the layout
//   - error: a creation error
func (u *UniformUploader) BindGroupLayout() (*wgpu.BindGroupLayout, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if err := u.refresh(); err != nil {
		return nil, err
	}
	return u.provider.BindGroupLayout(), nil
}

// BindGroup returns the bind group to set on a render pass, rebuilding it if the set
// of slots changed since the last call.
//
// Returns:
//   - *wgpu.BindGroup: the bind group
//   - error: a creation error
func (u *UniformUploader) BindGroup() (*wgpu.BindGroup, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if err := u.refresh(); err != nil {
		return nil, err
	}
	return u.provider.BindGroup(), nil
}

// Release frees every GPU resource held by the uploader.
func (u *UniformUploader) Release() {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.provider.Release()
	clear(u.targets)
	u.released = true
}
