package shader

import (
	"fmt"
	"strings"

	"github.com/Carmen-Shannon/vitra/engine/uniform"
)

var wgslTypeNames = map[uniform.FieldType]string{
	uniform.FieldTypeInt:   "i32",
	uniform.FieldTypeFloat: "f32",
	uniform.FieldTypeVec2:  "vec2<f32>",
	uniform.FieldTypeVec3:  "vec3<f32>",
	uniform.FieldTypeVec4:  "vec4<f32>",
	uniform.FieldTypeMat4:  "mat4x4<f32>",
}

var hlslTypeNames = map[uniform.FieldType]string{
	uniform.FieldTypeInt:   "int",
	uniform.FieldTypeFloat: "float",
	uniform.FieldTypeVec2:  "float2",
	uniform.FieldTypeVec3:  "float3",
	uniform.FieldTypeVec4:  "float4",
	uniform.FieldTypeMat4:  "float4x4",
}

// glslTypeNames follows the type names used in the std140 block itself.
var glslTypeNames = map[uniform.FieldType]string{
	uniform.FieldTypeInt:   "int",
	uniform.FieldTypeFloat: "float",
	uniform.FieldTypeVec2:  "vec2",
	uniform.FieldTypeVec3:  "vec3",
	uniform.FieldTypeVec4:  "vec4",
	uniform.FieldTypeMat4:  "mat4",
}

// GenerateWGSLStruct emits a WGSL struct whose member offsets equal the layout's.
// The last member carries an @size attribute when needed so the struct spans exactly
// TotalSize bytes. An empty layout produces a single vec4 padding member.
//
// Parameters:
//   - name: the struct type name
//   - layout: the block layout
//
// Returns:
//   - string: the struct declaration
func GenerateWGSLStruct(name string, layout uniform.Layout) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "struct %s {\n", name)

	fields := layout.Fields()
	if len(fields) == 0 {
		sb.WriteString("    _padding: vec4<f32>,\n")
	}
	for i, f := range fields {
		sb.WriteString("    ")
		if i == len(fields)-1 {
			if size := layout.TotalSize() - f.ByteOffset(); size > f.ByteWidth() {
				fmt.Fprintf(&sb, "@size(%d) ", size)
			}
		}
		fmt.Fprintf(&sb, "%s: %s,\n", f.Name, wgslTypeNames[f.Type])
	}
	sb.WriteString("}\n")
	return sb.String()
}

// GenerateWGSLBinding emits the var<uniform> declaration for a block.
//
// Parameters:
//   - group: the bind group index
//   - binding: the binding index (the block slot)
//   - varName: the variable name
//   - typeName: the struct type name
//
// Returns:
//   - string: the declaration, terminated by a newline
func GenerateWGSLBinding(group, binding int, varName, typeName string) string {
	return fmt.Sprintf("@group(%d) @binding(%d) var<uniform> %s: %s;\n", group, binding, varName, typeName)
}

// GenerateHLSLCBuffer emits a constant buffer with explicit packoffset annotations so
// the D3D packing matches the layout.
//
// Parameters:
//   - name: the cbuffer name
//   - slot: the b register index
//   - layout: the block layout
//
// Returns:
//   - string: the cbuffer declaration
func GenerateHLSLCBuffer(name string, slot int, layout uniform.Layout) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "cbuffer %s : register(b%d)\n{\n", name, slot)
	for _, f := range layout.Fields() {
		fmt.Fprintf(&sb, "    %s %s : packoffset(%s);\n", hlslTypeNames[f.Type], f.Name, packOffset(f))
	}
	sb.WriteString("};\n")
	return sb.String()
}

// packOffset formats a field's unit offset as an HLSL register and component.
func packOffset(f uniform.FieldDescriptor) string {
	reg := fmt.Sprintf("c%d", f.Offset/4)
	if f.Type == uniform.FieldTypeVec4 || f.Type == uniform.FieldTypeMat4 {
		return reg
	}
	return reg + "." + string("xyzw"[f.Offset%4])
}

// GenerateGLSLBlock emits a std140 uniform block declaration.
//
// Parameters:
//   - name: the block name
//   - slot: the binding index
//   - layout: the block layout
//
// Returns:
//   - string: the block declaration
func GenerateGLSLBlock(name string, slot int, layout uniform.Layout) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "layout(std140, binding = %d) uniform %s {\n", slot, name)
	for _, f := range layout.Fields() {
		fmt.Fprintf(&sb, "    %s %s;\n", glslTypeNames[f.Type], f.Name)
	}
	sb.WriteString("};\n")
	return sb.String()
}
