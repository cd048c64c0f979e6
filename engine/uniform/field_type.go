package uniform

import (
	"fmt"
	"strings"
)

// FieldType is the scalar, vector or matrix kind of a uniform block member.
type FieldType int

const (
	// FieldTypeInvalid is the zero value and is rejected everywhere.
	FieldTypeInvalid FieldType = iota
	// FieldTypeInt is a 32-bit signed integer.
	FieldTypeInt
	// FieldTypeFloat is a 32-bit float.
	FieldTypeFloat
	// FieldTypeVec2 is two 32-bit floats.
	FieldTypeVec2
	// FieldTypeVec3 is three 32-bit floats, aligned like a Vec4.
	FieldTypeVec3
	// FieldTypeVec4 is four 32-bit floats.
	FieldTypeVec4
	// FieldTypeMat4 is a column-major 4x4 float matrix.
	FieldTypeMat4
)

// unitSize is the size in bytes of one layout unit.
const unitSize = 4

// fieldTypeInfo holds the alignment and width of a field type in 4-byte units.
type fieldTypeInfo struct {
	name      string
	alignment int
	width     int
}

// fieldTypeTable follows std140: scalars align to 4 bytes, vec2 to 8, vec3/vec4/mat4 to 16.
// vec3 reserves a full 16-byte slot for alignment but only writes 12 bytes.
var fieldTypeTable = map[FieldType]fieldTypeInfo{
	FieldTypeInt:   {"int", 1, 1},
	FieldTypeFloat: {"float", 1, 1},
	FieldTypeVec2:  {"vec2", 2, 2},
	FieldTypeVec3:  {"vec3", 4, 3},
	FieldTypeVec4:  {"vec4", 4, 4},
	FieldTypeMat4:  {"mat4", 4, 16},
}

// fieldTypeAliases maps the spellings used by GLSL, WGSL, HLSL and the host's shader
// program files to field types.
var fieldTypeAliases = map[string]FieldType{
	"int":   FieldTypeInt,
	"float": FieldTypeFloat,
	"vec2":  FieldTypeVec2,
	"vec3":  FieldTypeVec3,
	"vec4":  FieldTypeVec4,
	"mat4":  FieldTypeMat4,

	"i32":         FieldTypeInt,
	"f32":         FieldTypeFloat,
	"vec2f":       FieldTypeVec2,
	"vec2<f32>":   FieldTypeVec2,
	"vec3f":       FieldTypeVec3,
	"vec3<f32>":   FieldTypeVec3,
	"vec4f":       FieldTypeVec4,
	"vec4<f32>":   FieldTypeVec4,
	"mat4x4f":     FieldTypeMat4,
	"mat4x4<f32>": FieldTypeMat4,

	"float2":   FieldTypeVec2,
	"float3":   FieldTypeVec3,
	"float4":   FieldTypeVec4,
	"float4x4": FieldTypeMat4,

	"matrix4x4": FieldTypeMat4,
	"mat4x4":    FieldTypeMat4,
}

// ParseFieldType resolves a type name to a FieldType. Matching ignores case and
// surrounding whitespace.
//
// Parameters:
//   - name: the type name, e.g. "vec3", "vec3<f32>", "float3" or "matrix4x4"
//
// Returns:
//   - FieldType: the resolved type
//   - error: ErrInvalidType if the name is not recognized
func ParseFieldType(name string) (FieldType, error) {
	key := strings.ToLower(strings.Join(strings.Fields(name), ""))
	if t, ok := fieldTypeAliases[key]; ok {
		return t, nil
	}
	return FieldTypeInvalid, fmt.Errorf("%w: %q", ErrInvalidType, name)
}

// Info returns the alignment and width of the type in 4-byte units.
//
// Returns:
//   - int: alignment in units (1, 2 or 4)
//   - int: width in units (1, 2, 3, 4 or 16)
//   - error: ErrInvalidType for an unknown type
func (t FieldType) Info() (int, int, error) {
	info, ok := fieldTypeTable[t]
	if !ok {
		return 0, 0, fmt.Errorf("%w: %d", ErrInvalidType, int(t))
	}
	return info.alignment, info.width, nil
}

// Alignment returns the alignment of the type in 4-byte units.
func (t FieldType) Alignment() (int, error) {
	a, _, err := t.Info()
	return a, err
}

// Width returns the number of 4-byte units the type writes.
func (t FieldType) Width() (int, error) {
	_, w, err := t.Info()
	return w, err
}

// ByteWidth returns the number of bytes the type writes, or 0 for an invalid type.
func (t FieldType) ByteWidth() int {
	return fieldTypeTable[t].width * unitSize
}

// Valid reports whether t is one of the supported field types.
func (t FieldType) Valid() bool {
	_, ok := fieldTypeTable[t]
	return ok
}

// IsScalar reports whether t is written as a single int or float rather than copied from a buffer.
func (t FieldType) IsScalar() bool {
	return t == FieldTypeInt || t == FieldTypeFloat
}

func (t FieldType) String() string {
	if info, ok := fieldTypeTable[t]; ok {
		return info.name
	}
	return fmt.Sprintf("FieldType(%d)", int(t))
}
