// program_types.go contains the JSON document structures of a shader program file.
package program

// programDocument is the root of a shader program JSON file.
type programDocument struct {
	// Name overrides the program name derived from the file name.
	Name string `json:"name,omitempty"`

	// Vertex names the vertex shader source.
	Vertex string `json:"vertex"`

	// Fragment names the fragment shader source.
	Fragment string `json:"fragment"`

	// Samplers lists the texture samplers the program reads.
	Samplers []samplerDocument `json:"samplers,omitempty"`

	// Uniforms is the legacy flat uniform list. All entries are packed into one block
	// at slot 0 visible to the vertex and fragment stages.
	Uniforms []uniformDocument `json:"uniforms,omitempty"`

	// Blocks declares explicit uniform blocks.
	Blocks []blockDocument `json:"blocks,omitempty"`
}

// samplerDocument names one texture sampler.
type samplerDocument struct {
	Name string `json:"name"`
}

// uniformDocument is one entry of the legacy uniforms list.
type uniformDocument struct {
	// Name is the field name suppliers are looked up by.
	Name string `json:"name"`

	// Type is "int", "float" or "matrix4x4".
	Type string `json:"type"`

	// Count is the number of components: 1 for int, 1 to 4 for float, 16 for matrix4x4.
	Count int `json:"count"`

	// Values are the default component values, used when no supplier is registered.
	Values []float32 `json:"values,omitempty"`
}

// blockDocument declares one explicit uniform block.
type blockDocument struct {
	// Name is the block's debug label.
	Name string `json:"name"`

	// Slot is the shader-visible binding index.
	Slot int `json:"slot"`

	// Stages lists the shader stages, e.g. ["vertex", "fragment"].
	Stages []string `json:"stages"`

	// Fields lists the block members in declaration order.
	Fields []fieldDocument `json:"fields"`
}

// fieldDocument declares one block member.
type fieldDocument struct {
	Name string `json:"name"`
	Type string `json:"type"`
}
