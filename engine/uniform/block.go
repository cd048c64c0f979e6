package uniform

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/Carmen-Shannon/vitra/common"
)

// Binder is the GPU collaborator a Block hands its bytes to. Implementations upload
// data to a constant buffer and attach it to slot for the shader stages in stages.
type Binder interface {
	// BindUniformBlock uploads data and binds it.
	//
	// Parameters:
	//   - label: the block's debug label, used to key GPU resources
	//   - slot: the shader-visible binding index
	//   - stages: the shader stages the block is visible to
	//   - data: exactly the block's TotalSize bytes; only valid for the duration of the call
	//
	// Returns:
	//   - error: an upload or bind failure
	BindUniformBlock(label string, slot int, stages StageMask, data []byte) error
}

// Block is a Layout bound to a GPU slot and stage mask, with every field's supplier
// resolved once at construction. Update fills a destination buffer from the suppliers.
//
// A Block is meant to be driven from a single render thread; Update on distinct
// destination buffers may run concurrently, UpdateAndBind may not.
type Block struct {
	label  string
	slot   int
	stages StageMask
	layout Layout
	fields []boundField
	// missing lists the names of fields without a supplier.
	missing []string
	// data is the staging buffer used by UpdateAndBind.
	data []byte
}

// NewBlock binds layout to slot and stages, resolving each field's supplier from registry.
// Fields without a supplier are logged once as a warning and zero-filled on every update.
//
// Parameters:
//   - layout: the block layout
//   - slot: the shader-visible binding index (must not be negative)
//   - stages: the shader stages the block is visible to (at least one)
//   - registry: the supplier directory
//   - options: block options
//
// Returns:
//   - *Block: the bound block
//   - error: ErrInvalidSlot, ErrNoStages or ErrNilRegistry
func NewBlock(layout Layout, slot int, stages StageMask, registry *Registry, options ...BlockOption) (*Block, error) {
	if slot < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSlot, slot)
	}
	if !stages.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrNoStages, stages)
	}
	if registry == nil {
		return nil, ErrNilRegistry
	}

	b := &Block{
		slot:   slot,
		stages: stages,
		layout: layout,
		fields: make([]boundField, 0, len(layout.fields)),
		data:   make([]byte, layout.totalSize),
	}
	for _, opt := range options {
		opt(b)
	}

	for _, f := range layout.fields {
		s, ok := registry.Lookup(f.Type, f.Name)
		if !ok {
			b.missing = append(b.missing, f.Name)
		}
		b.fields = append(b.fields, boundField{FieldDescriptor: f, supplier: s})
	}

	log := common.Logger()
	if len(b.missing) > 0 {
		log.Warn("uniform block has fields without a supplier; they will be zero-filled",
			"block", b.label, "slot", slot, "fields", b.missing)
	}
	log.Debug("uniform block built",
		"block", b.label, "slot", slot, "stages", stages.String(), "size", layout.totalSize, "fields", len(b.fields))

	return b, nil
}

// Label returns the block's debug label.
func (b *Block) Label() string { return b.label }

// Slot returns the shader-visible binding index.
func (b *Block) Slot() int { return b.slot }

// Stages returns the shader stages the block is bound to.
func (b *Block) Stages() StageMask { return b.stages }

// Layout returns the block's layout.
func (b *Block) Layout() Layout { return b.layout }

// Size returns the block size in bytes.
func (b *Block) Size() int { return b.layout.totalSize }

// Data returns the staging buffer last filled by UpdateAndBind.
func (b *Block) Data() []byte { return b.data }

// MissingFields returns the names of fields that had no supplier at construction.
func (b *Block) MissingFields() []string {
	return append([]string(nil), b.missing...)
}

// Update writes the current value of every field into dest. The first Size bytes of
// dest are zeroed first, so padding and fields without a supplier always read as
// zero. Fields are written in declaration order; bytes past Size are untouched.
//
// Parameters:
//   - dest: the destination buffer, at least Size bytes
//
// Returns:
//   - error: ErrBufferTooSmall if dest cannot hold the block
func (b *Block) Update(dest []byte) error {
	size := b.layout.totalSize
	if len(dest) < size {
		return fmt.Errorf("%w: block %q needs %d bytes, got %d", ErrBufferTooSmall, b.label, size, len(dest))
	}
	dest = dest[:size]
	clear(dest)

	for i := range b.fields {
		f := &b.fields[i]
		off := f.ByteOffset()
		switch s := f.supplier.(type) {
		case IntSupplier:
			binary.LittleEndian.PutUint32(dest[off:], uint32(s()))
		case FloatSupplier:
			binary.LittleEndian.PutUint32(dest[off:], math.Float32bits(s()))
		case BufferSupplier:
			// copy stops at the shorter of the two, so a short source leaves zeros
			// and a long one never spills into the next field.
			copy(dest[off:off+f.ByteWidth()], s())
		}
	}
	return nil
}

// Bind hands the staging buffer to binder without refreshing it.
//
// Parameters:
//   - binder: the GPU collaborator
//
// Returns:
//   - error: ErrNilBinder or the binder's error
func (b *Block) Bind(binder Binder) error {
	if binder == nil {
		return ErrNilBinder
	}
	if err := binder.BindUniformBlock(b.label, b.slot, b.stages, b.data); err != nil {
		return fmt.Errorf("bind uniform block %q at slot %d: %w", b.label, b.slot, err)
	}
	return nil
}

// UpdateAndBind refreshes the staging buffer from the suppliers and hands it to binder.
//
// Parameters:
//   - binder: the GPU collaborator
//
// Returns:
//   - error: ErrNilBinder or the binder's error
func (b *Block) UpdateAndBind(binder Binder) error {
	if binder == nil {
		return ErrNilBinder
	}
	if err := b.Update(b.data); err != nil {
		return err
	}
	return b.Bind(binder)
}
