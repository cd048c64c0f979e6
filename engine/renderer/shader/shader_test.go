package shader

import (
	"errors"
	"strings"
	"testing"

	"github.com/Carmen-Shannon/vitra/engine/uniform"
)

const globalsSource = `
struct Globals {
    MVP: mat4x4<f32>,
    Color: vec4<f32>,
    Offset: f32,
}

struct Lighting {
    Light0_Direction: vec3<f32>,
    GlintAlpha: f32,
    ScreenSize: vec2<f32>,
    FogShape: i32,
}

@group(0) @binding(0) var<uniform> globals: Globals;
@group(0) @binding(1) var<uniform> lighting: Lighting;

@vertex
fn vs_main(@location(0) pos: vec3<f32>) -> @builtin(position) vec4<f32> {
    return vec4<f32>(pos.x + globals.Offset, pos.y, pos.z, 1.0);
}

@fragment
fn fs_main() -> @location(0) vec4<f32> {
    return vec4<f32>(lighting.GlintAlpha, 0.0, 0.0, 1.0) * globals.Color;
}
`

func TestReflectUniformBlocks(t *testing.T) {
	blocks, err := ReflectUniformBlocks(globalsSource)
	if err != nil {
		t.Fatalf("ReflectUniformBlocks() error = %v", err)
	}
	if len(blocks) != 2 {
		t.Fatalf("len(blocks) = %d, want 2", len(blocks))
	}

	g := blocks[0]
	if g.VarName != "globals" || g.TypeName != "Globals" || g.Group != 0 || g.Binding != 0 {
		t.Errorf("globals block = %+v", g)
	}
	want := []ReflectedField{
		{"MVP", uniform.FieldTypeMat4, 0},
		{"Color", uniform.FieldTypeVec4, 64},
		{"Offset", uniform.FieldTypeFloat, 80},
	}
	for i, f := range g.Fields {
		if f != want[i] {
			t.Errorf("globals field %d = %+v, want %+v", i, f, want[i])
		}
	}
	if g.Stages != uniform.StageGraphics {
		t.Errorf("globals stages = %v, want vertex|fragment", g.Stages)
	}

	l := blocks[1]
	if l.Binding != 1 || l.Stages != uniform.StageFragment {
		t.Errorf("lighting binding=%d stages=%v", l.Binding, l.Stages)
	}
	wantOffsets := []int{0, 12, 16, 24}
	for i, f := range l.Fields {
		if f.ByteOffset != wantOffsets[i] {
			t.Errorf("lighting %s offset = %d, want %d", f.Name, f.ByteOffset, wantOffsets[i])
		}
	}
}

func TestReflectedLayoutMatchesHostLayout(t *testing.T) {
	blocks, err := ReflectUniformBlocks(globalsSource)
	if err != nil {
		t.Fatal(err)
	}
	for _, rb := range blocks {
		b, err := rb.LayoutBuilder()
		if err != nil {
			t.Fatalf("%s: LayoutBuilder() error = %v", rb.VarName, err)
		}
		if err := VerifyLayout(b.Layout(), rb); err != nil {
			t.Errorf("%s: VerifyLayout() = %v", rb.VarName, err)
		}
	}
}

func TestVerifyLayoutMismatch(t *testing.T) {
	blocks, err := ReflectUniformBlocks(globalsSource)
	if err != nil {
		t.Fatal(err)
	}
	rb := blocks[0]

	tests := []struct {
		name   string
		fields []uniform.FieldSpec
	}{
		{"missing field", []uniform.FieldSpec{
			{Type: uniform.FieldTypeMat4, Name: "MVP"},
			{Type: uniform.FieldTypeVec4, Name: "Color"},
		}},
		{"wrong type", []uniform.FieldSpec{
			{Type: uniform.FieldTypeMat4, Name: "MVP"},
			{Type: uniform.FieldTypeVec3, Name: "Color"},
			{Type: uniform.FieldTypeFloat, Name: "Offset"},
		}},
		{"wrong order", []uniform.FieldSpec{
			{Type: uniform.FieldTypeMat4, Name: "MVP"},
			{Type: uniform.FieldTypeFloat, Name: "Offset"},
			{Type: uniform.FieldTypeVec4, Name: "Color"},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			layout := uniform.NewLayoutBuilder(uniform.WithFields(tt.fields...)).Layout()
			if err := VerifyLayout(layout, rb); !errors.Is(err, ErrLayoutMismatch) {
				t.Errorf("VerifyLayout() = %v, want ErrLayoutMismatch", err)
			}
		})
	}
}

func TestReflectUnsupportedMember(t *testing.T) {
	src := `
struct Params {
    count: u32,
}
@group(0) @binding(0) var<uniform> params: Params;
`
	if _, err := ReflectUniformBlocks(src); !errors.Is(err, ErrUnsupportedMember) {
		t.Errorf("ReflectUniformBlocks() error = %v, want ErrUnsupportedMember", err)
	}
}

func TestReflectInvalidSource(t *testing.T) {
	if _, err := ReflectUniformBlocks("struct { broken"); !errors.Is(err, ErrInvalidShader) {
		t.Errorf("ReflectUniformBlocks() error = %v, want ErrInvalidShader", err)
	}
	if err := ValidateWGSL("fn main( {"); !errors.Is(err, ErrInvalidShader) {
		t.Errorf("ValidateWGSL() error = %v, want ErrInvalidShader", err)
	}
}

func TestNewShaderWithPreProcessor(t *testing.T) {
	layout := uniform.NewLayoutBuilder(uniform.WithFields(
		uniform.FieldSpec{Type: uniform.FieldTypeMat4, Name: "MVP"},
		uniform.FieldSpec{Type: uniform.FieldTypeVec4, Name: "Color"},
		uniform.FieldSpec{Type: uniform.FieldTypeFloat, Name: "Offset"},
	)).Layout()

	pp := NewPreProcessor()
	pp.RegisterLayout("Globals", layout)

	src := `//@vitra:include Globals
//@vitra:block 0 2 globals Globals

@vertex
fn vs_main(@location(0) pos: vec3<f32>) -> @builtin(position) vec4<f32> {
    return vec4<f32>(pos.x + globals.Offset, pos.y, pos.z, 1.0);
}
`
	s, err := NewShader("globals", src, WithPreProcessor(pp))
	if err != nil {
		t.Fatalf("NewShader() error = %v", err)
	}
	if !strings.Contains(s.Source(), "@group(0) @binding(2) var<uniform> globals: Globals;") {
		t.Errorf("Source() missing generated binding:\n%s", s.Source())
	}
	if s.EntryPoint(uniform.StageVertex) != "vs_main" || s.EntryPoint(uniform.StageFragment) != "" {
		t.Errorf("EntryPoints() = %+v", s.EntryPoints())
	}
	decls := s.Declarations()
	if len(decls) != 1 || *decls[0].Binding != 2 || decls[0].LayoutName() != "Globals" {
		t.Errorf("Declarations() = %+v", decls)
	}

	rb, ok := s.UniformBlock(0, 2)
	if !ok {
		t.Fatal("UniformBlock(0, 2) not found")
	}
	if rb.Size != layout.TotalSize() {
		t.Errorf("struct span = %d, want %d", rb.Size, layout.TotalSize())
	}

	reg := uniform.NewRegistry()
	block, err := uniform.NewBlock(layout, 2, uniform.StageVertex, reg, uniform.WithBlockLabel("globals"))
	if err != nil {
		t.Fatal(err)
	}
	if err := s.VerifyBlocks(0, block); err != nil {
		t.Errorf("VerifyBlocks() = %v", err)
	}

	wrongSlot, _ := uniform.NewBlock(layout, 3, uniform.StageVertex, reg)
	if err := s.VerifyBlocks(0, wrongSlot); !errors.Is(err, ErrLayoutMismatch) {
		t.Errorf("VerifyBlocks(wrong slot) = %v, want ErrLayoutMismatch", err)
	}

	fragmentOnly, _ := uniform.NewBlock(layout, 2, uniform.StageFragment, reg)
	if err := s.VerifyBlocks(0, fragmentOnly); !errors.Is(err, ErrLayoutMismatch) {
		t.Errorf("VerifyBlocks(fragment only) = %v, want ErrLayoutMismatch", err)
	}
}

func TestPreProcessorErrors(t *testing.T) {
	pp := NewPreProcessor()
	tests := []struct {
		name string
		src  string
	}{
		{"unknown layout", "//@vitra:include Missing"},
		{"unknown type", "//@vitra:sampler 0 1"},
		{"bad group", "//@vitra:block x 0 g Globals"},
		{"too few args", "//@vitra:block 0 0 Globals"},
		{"empty", "//@vitra:"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := pp.Process(tt.src); err == nil {
				t.Errorf("Process(%q) succeeded", tt.src)
			}
		})
	}

	out, err := pp.Process("// plain comment\nfn f() {}")
	if err != nil || out != "// plain comment\nfn f() {}" {
		t.Errorf("Process() = %q, %v; want source unchanged", out, err)
	}
}

func TestPreProcessorDeclarationsAreSnapshots(t *testing.T) {
	layout := uniform.NewLayoutBuilder(uniform.WithFields(
		uniform.FieldSpec{Type: uniform.FieldTypeVec4, Name: "Color"},
	)).Layout()
	pp := NewPreProcessor()
	pp.RegisterLayout("Globals", layout)

	if _, err := pp.Process("//@vitra:block 0 1 first Globals"); err != nil {
		t.Fatal(err)
	}
	first := pp.Declarations()

	if _, err := pp.Process("//@vitra:block 2 3 second Globals"); err != nil {
		t.Fatal(err)
	}
	second := pp.Declarations()

	if len(first) != 1 || first[0].Args[0] != "first" || *first[0].Binding != 1 {
		t.Errorf("first Declarations() changed after a second Process: %+v", first)
	}
	if len(second) != 1 || second[0].Args[0] != "second" || *second[0].Group != 2 {
		t.Errorf("second Declarations() = %+v", second)
	}

	second[0].Args = nil
	if again := pp.Declarations(); again[0].Args == nil {
		t.Error("Declarations() exposes internal state")
	}
}
