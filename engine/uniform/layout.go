package uniform

import (
	"fmt"
	"slices"
)

// Layout is an ordered, immutable list of field descriptors plus the padded block size.
type Layout struct {
	fields    []FieldDescriptor
	totalSize int
}

// Fields returns a copy of the layout's descriptors in declaration order.
func (l Layout) Fields() []FieldDescriptor {
	return slices.Clone(l.fields)
}

// Len returns the number of fields in the layout.
func (l Layout) Len() int {
	return len(l.fields)
}

// Field looks up a descriptor by name.
//
// Parameters:
//   - name: the field name
//
// Returns:
//   - FieldDescriptor: the descriptor, or the zero value if not found
//   - bool: true if the field exists
func (l Layout) Field(name string) (FieldDescriptor, bool) {
	for _, f := range l.fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldDescriptor{}, false
}

// TotalSize returns the block size in bytes. It is always a positive multiple of 16.
func (l Layout) TotalSize() int {
	return l.totalSize
}

// Validate checks the layout invariants: every offset is a multiple of its type's
// alignment, no two fields overlap, and the total size covers the last field and is
// a positive multiple of 16.
//
// Returns:
//   - error: a description of the first violated invariant, or nil
func (l Layout) Validate() error {
	if l.totalSize <= 0 || l.totalSize%16 != 0 {
		return fmt.Errorf("total size %d is not a positive multiple of 16", l.totalSize)
	}

	// occupied tracks which units have been claimed by an earlier field.
	occupied := make(map[int]string)
	for _, f := range l.fields {
		align, width, err := f.Type.Info()
		if err != nil {
			return fmt.Errorf("field %q: %w", f.Name, err)
		}
		if f.Offset%align != 0 {
			return fmt.Errorf("field %q: offset %d is not a multiple of alignment %d", f.Name, f.Offset, align)
		}
		for u := f.Offset; u < f.Offset+width; u++ {
			if other, ok := occupied[u]; ok {
				return fmt.Errorf("field %q overlaps field %q at unit %d", f.Name, other, u)
			}
			occupied[u] = f.Name
		}
		if end := (f.Offset + width) * unitSize; end > l.totalSize {
			return fmt.Errorf("field %q ends at byte %d past total size %d", f.Name, end, l.totalSize)
		}
	}
	return nil
}
