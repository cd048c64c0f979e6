package shader

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/gogpu/naga/ir"

	"github.com/Carmen-Shannon/vitra/engine/uniform"
)

// ReflectedField is one member of a uniform struct as laid out by the shader compiler.
type ReflectedField struct {
	// Name is the member name.
	Name string
	// Type is the member's field type.
	Type uniform.FieldType
	// ByteOffset is the member's start in bytes.
	ByteOffset int
}

// ReflectedBlock is a var<uniform> global whose type is a struct.
type ReflectedBlock struct {
	// VarName is the global variable name.
	VarName string
	// TypeName is the struct type name.
	TypeName string
	// Group is the @group index.
	Group int
	// Binding is the @binding index, used as the block slot.
	Binding int
	// Size is the struct span in bytes.
	Size int
	// Stages lists the entry-point stages that reference the global. A global no entry
	// point uses reports StageNone.
	Stages uniform.StageMask
	// Fields lists the members in declaration order.
	Fields []ReflectedField
}

// LayoutBuilder returns a builder holding the block's members in declaration order.
// The builder computes its own offsets; use VerifyLayout to compare them with the
// shader's.
//
// Returns:
//   - *uniform.LayoutBuilder: the builder, labeled with the variable name
//   - error: any field error
func (rb ReflectedBlock) LayoutBuilder() (*uniform.LayoutBuilder, error) {
	b := uniform.NewLayoutBuilder(uniform.WithLabel(rb.VarName))
	for _, f := range rb.Fields {
		if err := b.AddField(f.Type, f.Name); err != nil {
			return nil, fmt.Errorf("uniform %q: %w", rb.VarName, err)
		}
	}
	return b, nil
}

// EntryPoint is a shader entry point.
type EntryPoint struct {
	Name      string
	Stage     uniform.StageMask
	Workgroup [3]uint32
}

// ReflectUniformBlocks parses WGSL source and returns every struct-typed
// var<uniform> global, ordered by group and binding. The source is not run through
// the IR validator; use ValidateWGSL for that.
//
// Parameters:
//   - source: the WGSL source
//
// Returns:
//   - []ReflectedBlock: the uniform blocks
//   - error: ErrInvalidShader or ErrUnsupportedMember
func ReflectUniformBlocks(source string) ([]ReflectedBlock, error) {
	module, err := lower(source)
	if err != nil {
		return nil, err
	}
	return reflectModule(module)
}

func reflectModule(module *ir.Module) ([]ReflectedBlock, error) {
	stages := globalStages(module)

	var blocks []ReflectedBlock
	for h, gv := range module.GlobalVariables {
		if gv.Space != ir.SpaceUniform || gv.Binding == nil || int(gv.Type) >= len(module.Types) {
			continue
		}
		typ := module.Types[gv.Type]
		st, ok := typ.Inner.(ir.StructType)
		if !ok {
			continue
		}

		rb := ReflectedBlock{
			VarName:  gv.Name,
			TypeName: typ.Name,
			Group:    int(gv.Binding.Group),
			Binding:  int(gv.Binding.Binding),
			Size:     int(st.Span),
			Stages:   stages[h],
			Fields:   make([]ReflectedField, 0, len(st.Members)),
		}
		for _, m := range st.Members {
			ft, err := fieldTypeOf(module, m.Type)
			if err != nil {
				return nil, fmt.Errorf("uniform %q member %q: %w", gv.Name, m.Name, err)
			}
			rb.Fields = append(rb.Fields, ReflectedField{Name: m.Name, Type: ft, ByteOffset: int(m.Offset)})
		}
		blocks = append(blocks, rb)
	}

	slices.SortFunc(blocks, func(a, b ReflectedBlock) int {
		return cmp.Or(cmp.Compare(a.Group, b.Group), cmp.Compare(a.Binding, b.Binding))
	})
	return blocks, nil
}

// fieldTypeOf maps a naga type to a uniform field type.
func fieldTypeOf(module *ir.Module, h ir.TypeHandle) (uniform.FieldType, error) {
	if int(h) >= len(module.Types) {
		return uniform.FieldTypeInvalid, fmt.Errorf("%w: type handle %d", ErrUnsupportedMember, h)
	}
	switch t := module.Types[h].Inner.(type) {
	case ir.ScalarType:
		if t.Width == 4 {
			switch t.Kind {
			case ir.ScalarSint:
				return uniform.FieldTypeInt, nil
			case ir.ScalarFloat:
				return uniform.FieldTypeFloat, nil
			}
		}
	case ir.VectorType:
		if t.Scalar.Kind == ir.ScalarFloat && t.Scalar.Width == 4 {
			switch t.Size {
			case ir.Vec2:
				return uniform.FieldTypeVec2, nil
			case ir.Vec3:
				return uniform.FieldTypeVec3, nil
			case ir.Vec4:
				return uniform.FieldTypeVec4, nil
			}
		}
	case ir.MatrixType:
		if t.Columns == ir.Vec4 && t.Rows == ir.Vec4 && t.Scalar.Kind == ir.ScalarFloat && t.Scalar.Width == 4 {
			return uniform.FieldTypeMat4, nil
		}
	}
	return uniform.FieldTypeInvalid, fmt.Errorf("%w: %T", ErrUnsupportedMember, module.Types[h].Inner)
}

// stageMaskOf converts a naga shader stage.
func stageMaskOf(s ir.ShaderStage) uniform.StageMask {
	switch s {
	case ir.StageVertex:
		return uniform.StageVertex
	case ir.StageFragment:
		return uniform.StageFragment
	case ir.StageCompute:
		return uniform.StageCompute
	}
	return uniform.StageNone
}

// entryPoints lists the module's entry points.
func entryPoints(module *ir.Module) []EntryPoint {
	out := make([]EntryPoint, 0, len(module.EntryPoints))
	for _, ep := range module.EntryPoints {
		out = append(out, EntryPoint{Name: ep.Name, Stage: stageMaskOf(ep.Stage), Workgroup: ep.Workgroup})
	}
	return out
}

// globalStages maps each global variable to the stages of the entry points that
// reference it, directly or through called functions.
func globalStages(module *ir.Module) map[int]uniform.StageMask {
	out := make(map[int]uniform.StageMask)
	for i := range module.EntryPoints {
		ep := &module.EntryPoints[i]
		stage := stageMaskOf(ep.Stage)
		visited := make(map[ir.FunctionHandle]bool)
		var trace func(f *ir.Function)
		trace = func(f *ir.Function) {
			for _, e := range f.Expressions {
				if g, ok := e.Kind.(ir.ExprGlobalVariable); ok {
					out[int(g.Variable)] |= stage
				}
			}
			walkCalls(f.Body, func(h ir.FunctionHandle) {
				if visited[h] || int(h) >= len(module.Functions) {
					return
				}
				visited[h] = true
				trace(&module.Functions[h])
			})
		}
		trace(&ep.Function)
	}
	return out
}

// walkCalls invokes fn for every function called in stmts, including nested blocks.
func walkCalls(stmts []ir.Statement, fn func(ir.FunctionHandle)) {
	for _, stmt := range stmts {
		switch s := stmt.Kind.(type) {
		case ir.StmtCall:
			fn(s.Function)
		case ir.StmtBlock:
			walkCalls(s.Block, fn)
		case ir.StmtIf:
			walkCalls(s.Accept, fn)
			walkCalls(s.Reject, fn)
		case ir.StmtSwitch:
			for _, c := range s.Cases {
				walkCalls(c.Body, fn)
			}
		case ir.StmtLoop:
			walkCalls(s.Body, fn)
			walkCalls(s.Continuing, fn)
		}
	}
}

// VerifyLayout checks that layout places every member of rb at the same byte offset
// and type the shader does, and that the layout is large enough to back the binding.
//
// Parameters:
//   - layout: the host layout
//   - rb: the reflected shader block
//
// Returns:
//   - error: ErrLayoutMismatch describing the first difference, or nil
func VerifyLayout(layout uniform.Layout, rb ReflectedBlock) error {
	fields := layout.Fields()
	if len(fields) != len(rb.Fields) {
		return fmt.Errorf("%w: %q has %d members, layout has %d fields", ErrLayoutMismatch, rb.VarName, len(rb.Fields), len(fields))
	}
	for i, want := range rb.Fields {
		got := fields[i]
		if got.Name != want.Name {
			return fmt.Errorf("%w: %q member %d is %q, layout field is %q", ErrLayoutMismatch, rb.VarName, i, want.Name, got.Name)
		}
		if got.Type != want.Type {
			return fmt.Errorf("%w: %q member %q is %s, layout field is %s", ErrLayoutMismatch, rb.VarName, want.Name, want.Type, got.Type)
		}
		if got.ByteOffset() != want.ByteOffset {
			return fmt.Errorf("%w: %q member %q at byte %d, layout places it at %d", ErrLayoutMismatch, rb.VarName, want.Name, want.ByteOffset, got.ByteOffset())
		}
	}
	if layout.TotalSize() < rb.Size {
		return fmt.Errorf("%w: %q spans %d bytes, layout is %d", ErrLayoutMismatch, rb.VarName, rb.Size, layout.TotalSize())
	}
	return nil
}
