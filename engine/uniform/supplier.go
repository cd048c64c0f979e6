package uniform

import (
	"slices"

	"github.com/Carmen-Shannon/vitra/common"
)

// supplierKind distinguishes how a supplier's value is written into a block.
type supplierKind int

const (
	supplierKindInt supplierKind = iota + 1
	supplierKindFloat
	supplierKindBuffer
)

// Supplier produces the current value of one engine quantity on demand. The only
// implementations are IntSupplier, FloatSupplier and BufferSupplier.
type Supplier interface {
	kind() supplierKind
}

// IntSupplier yields a scalar int field.
type IntSupplier func() int32

// FloatSupplier yields a scalar float field.
type FloatSupplier func() float32

// BufferSupplier yields the little-endian bytes of a vector or matrix field. The
// returned slice is read, never retained. A nil or short slice leaves the missing
// bytes zero.
type BufferSupplier func() []byte

func (IntSupplier) kind() supplierKind    { return supplierKindInt }
func (FloatSupplier) kind() supplierKind  { return supplierKindFloat }
func (BufferSupplier) kind() supplierKind { return supplierKindBuffer }

// supplierKindFor returns the supplier kind a field type requires.
func supplierKindFor(t FieldType) supplierKind {
	switch t {
	case FieldTypeInt:
		return supplierKindInt
	case FieldTypeFloat:
		return supplierKindFloat
	default:
		return supplierKindBuffer
	}
}

// isNilSupplier reports whether s is nil or wraps a nil function.
func isNilSupplier(s Supplier) bool {
	switch f := s.(type) {
	case nil:
		return true
	case IntSupplier:
		return f == nil
	case FloatSupplier:
		return f == nil
	case BufferSupplier:
		return f == nil
	}
	return false
}

// ConstInt returns a supplier that always yields v.
func ConstInt(v int32) IntSupplier {
	return func() int32 { return v }
}

// ConstFloat returns a supplier that always yields v.
func ConstFloat(v float32) FloatSupplier {
	return func() float32 { return v }
}

// ConstBuffer returns a supplier that always yields a private copy of data.
func ConstBuffer(data []byte) BufferSupplier {
	c := slices.Clone(data)
	return func() []byte { return c }
}

// ConstFloats returns a supplier that always yields values encoded little-endian.
//
// Parameters:
//   - values: the floats, e.g. 4 for a vec4 or 16 for a mat4
//
// Returns:
//   - BufferSupplier: the constant supplier
func ConstFloats(values ...float32) BufferSupplier {
	buf := make([]byte, len(values)*unitSize)
	common.PutFloat32s(buf, values)
	return func() []byte { return buf }
}

// Float32Buffer adapts a function returning floats into a BufferSupplier. Each call
// encodes into a fresh slice, so the supplier is as safe for concurrent use as fn.
//
// Parameters:
//   - fn: the function producing the current values
//
// Returns:
//   - BufferSupplier: the adapting supplier
func Float32Buffer(fn func() []float32) BufferSupplier {
	return func() []byte {
		v := fn()
		if v == nil {
			return nil
		}
		out := make([]byte, len(v)*unitSize)
		common.PutFloat32s(out, v)
		return out
	}
}
