package uniform

import (
	"errors"
	"fmt"
	"slices"

	"github.com/Carmen-Shannon/vitra/common"
)

// minBlockSize is the size of an empty block. Constant buffers cannot be zero sized.
const minBlockSize = 16

// LayoutBuilder accumulates named, typed fields and assigns each one an offset under
// std140-style alignment. A builder is not safe for concurrent use.
type LayoutBuilder struct {
	// label names the block in logs and GPU debug labels.
	label string
	// fields holds the descriptors in declaration order.
	fields []FieldDescriptor
	// names indexes fields by name to reject duplicates.
	names map[string]struct{}
	// currentOffset is the next free unit.
	currentOffset int
	// errs collects failures from construction-time options.
	errs []error
}

// LayoutBuilderOption is a functional option applied to a LayoutBuilder during construction via NewLayoutBuilder.
type LayoutBuilderOption func(*LayoutBuilder)

// WithLabel sets the debug label carried into blocks built from this layout.
//
// Parameters:
//   - label: the debug label
//
// Returns:
//   - LayoutBuilderOption: a function that applies the label to a builder
func WithLabel(label string) LayoutBuilderOption {
	return func(b *LayoutBuilder) {
		b.label = label
	}
}

// WithFields adds fields in order during construction. Any configuration error is
// kept and reported by Err and Build.
//
// Parameters:
//   - fields: the (type, name) pairs to add
//
// Returns:
//   - LayoutBuilderOption: a function that adds the fields to a builder
func WithFields(fields ...FieldSpec) LayoutBuilderOption {
	return func(b *LayoutBuilder) {
		for _, f := range fields {
			if err := b.AddField(f.Type, f.Name); err != nil {
				b.errs = append(b.errs, err)
			}
		}
	}
}

// NewLayoutBuilder creates an empty LayoutBuilder with the provided options.
//
// Parameters:
//   - options: functional options to configure the builder
//
// Returns:
//   - *LayoutBuilder: the configured builder
func NewLayoutBuilder(options ...LayoutBuilderOption) *LayoutBuilder {
	b := &LayoutBuilder{
		names: make(map[string]struct{}),
	}
	for _, opt := range options {
		opt(b)
	}
	return b
}

// AddField appends a field, placing it at the next offset that satisfies the type's alignment.
//
// Parameters:
//   - t: the field type
//   - name: the field name, unique within this builder
//
// Returns:
//   - error: ErrInvalidType, ErrEmptyFieldName or ErrDuplicateField; the builder is unchanged on error
func (b *LayoutBuilder) AddField(t FieldType, name string) error {
	align, width, err := t.Info()
	if err != nil {
		return fmt.Errorf("field %q: %w", name, err)
	}
	if name == "" {
		return ErrEmptyFieldName
	}
	if _, dup := b.names[name]; dup {
		return fmt.Errorf("%w: %q", ErrDuplicateField, name)
	}

	aligned := common.AlignUp(b.currentOffset, align)
	b.fields = append(b.fields, FieldDescriptor{Type: t, Name: name, Offset: aligned})
	b.names[name] = struct{}{}
	b.currentOffset = aligned + width
	return nil
}

// AddFieldByName parses typeName with ParseFieldType and adds the field.
//
// Parameters:
//   - typeName: a type spelling accepted by ParseFieldType
//   - name: the field name
//
// Returns:
//   - error: any error from ParseFieldType or AddField
func (b *LayoutBuilder) AddFieldByName(typeName, name string) error {
	t, err := ParseFieldType(typeName)
	if err != nil {
		return fmt.Errorf("field %q: %w", name, err)
	}
	return b.AddField(t, name)
}

// Label returns the builder's debug label.
func (b *LayoutBuilder) Label() string {
	return b.label
}

// CurrentOffset returns the next free offset in 4-byte units.
func (b *LayoutBuilder) CurrentOffset() int {
	return b.currentOffset
}

// Err returns the configuration errors collected from construction options, if any.
func (b *LayoutBuilder) Err() error {
	return errors.Join(b.errs...)
}

// Layout snapshots the fields added so far. The total size is the running offset in
// bytes rounded up to 16, and never less than 16.
//
// Returns:
//   - Layout: the immutable layout
func (b *LayoutBuilder) Layout() Layout {
	size := common.Ceil16(b.currentOffset * unitSize)
	if size < minBlockSize {
		size = minBlockSize
	}
	return Layout{
		fields:    slices.Clone(b.fields),
		totalSize: size,
	}
}

// Build resolves every field's supplier from registry and returns a Block bound to
// slot and stages. Suppliers are resolved once here; registering a supplier later
// requires building a new Block.
//
// Parameters:
//   - slot: the shader-visible binding index
//   - stages: the shader stages the block is visible to
//   - registry: the supplier directory
//   - options: block options
//
// Returns:
//   - *Block: the bound block
//   - error: any construction error, ErrInvalidSlot, ErrNoStages or ErrNilRegistry
func (b *LayoutBuilder) Build(slot int, stages StageMask, registry *Registry, options ...BlockOption) (*Block, error) {
	if err := b.Err(); err != nil {
		return nil, err
	}
	return NewBlock(b.Layout(), slot, stages, registry, append([]BlockOption{WithBlockLabel(b.label)}, options...)...)
}
