package uniform

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"testing"

	"github.com/Carmen-Shannon/vitra/common"
)

type recordedBind struct {
	label  string
	slot   int
	stages StageMask
	data   []byte
}

type fakeBinder struct {
	binds []recordedBind
	err   error
}

func (f *fakeBinder) BindUniformBlock(label string, slot int, stages StageMask, data []byte) error {
	f.binds = append(f.binds, recordedBind{label, slot, stages, bytes.Clone(data)})
	return f.err
}

func readFloat(b []byte, byteOffset int) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(b[byteOffset:]))
}

func mustBuild(t *testing.T, reg *Registry, slot int, fields ...FieldSpec) *Block {
	t.Helper()
	block, err := NewLayoutBuilder(WithLabel("test"), WithFields(fields...)).Build(slot, StageGraphics, reg)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	return block
}

func TestBlockUpdateWritesFields(t *testing.T) {
	reg := NewRegistry()
	mvp := common.Identity()
	reg.MustRegister(FieldTypeMat4, "MVP", Float32Buffer(func() []float32 { return mvp[:] }))
	reg.MustRegister(FieldTypeVec4, "Color", ConstFloats(1, 0.5, 0.25, 1))
	reg.MustRegister(FieldTypeFloat, "Offset", ConstFloat(2.5))

	block := mustBuild(t, reg, 0,
		FieldSpec{FieldTypeMat4, "MVP"},
		FieldSpec{FieldTypeVec4, "Color"},
		FieldSpec{FieldTypeFloat, "Offset"},
	)
	if block.Size() != 96 {
		t.Fatalf("Size() = %d, want 96", block.Size())
	}

	dest := make([]byte, block.Size())
	if err := block.Update(dest); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	got := common.Float32sFromBytes(dest[:64])
	for i, v := range got {
		if v != mvp[i] {
			t.Errorf("MVP[%d] = %v, want %v", i, v, mvp[i])
		}
	}
	wantColor := []float32{1, 0.5, 0.25, 1}
	for i, w := range wantColor {
		if v := readFloat(dest, 64+i*4); v != w {
			t.Errorf("Color[%d] = %v, want %v", i, v, w)
		}
	}
	if v := readFloat(dest, 80); v != 2.5 {
		t.Errorf("Offset = %v, want 2.5", v)
	}
	if !bytes.Equal(dest[84:], make([]byte, 12)) {
		t.Errorf("padding not zero: %v", dest[84:])
	}
}

func TestBlockUpdateScalarOffsets(t *testing.T) {
	reg := NewRegistry()
	reg.MustRegister(FieldTypeFloat, "A", ConstFloat(1))
	reg.MustRegister(FieldTypeFloat, "B", ConstFloat(2))
	reg.MustRegister(FieldTypeInt, "C", ConstInt(-7))

	block := mustBuild(t, reg, 1,
		FieldSpec{FieldTypeFloat, "A"},
		FieldSpec{FieldTypeFloat, "B"},
		FieldSpec{FieldTypeInt, "C"},
	)
	dest := make([]byte, block.Size())
	if err := block.Update(dest); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if readFloat(dest, 0) != 1 || readFloat(dest, 4) != 2 {
		t.Errorf("floats = %v, %v, want 1, 2", readFloat(dest, 0), readFloat(dest, 4))
	}
	if got := int32(binary.LittleEndian.Uint32(dest[8:])); got != -7 {
		t.Errorf("C = %d, want -7", got)
	}
}

func TestBlockUpdateMissingSupplierZeroFills(t *testing.T) {
	reg := NewRegistry()
	reg.MustRegister(FieldTypeFloat, "Known", ConstFloat(3))

	block := mustBuild(t, reg, 0,
		FieldSpec{FieldTypeVec4, "Unknown"},
		FieldSpec{FieldTypeFloat, "Known"},
	)
	if got := block.MissingFields(); len(got) != 1 || got[0] != "Unknown" {
		t.Errorf("MissingFields() = %v, want [Unknown]", got)
	}

	dest := bytes.Repeat([]byte{0xAB}, block.Size())
	if err := block.Update(dest); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if !bytes.Equal(dest[:16], make([]byte, 16)) {
		t.Errorf("missing field not zeroed: %v", dest[:16])
	}
	if v := readFloat(dest, 16); v != 3 {
		t.Errorf("Known = %v, want 3", v)
	}
	if !bytes.Equal(dest[20:], make([]byte, block.Size()-20)) {
		t.Errorf("trailing padding not zeroed: %v", dest[20:])
	}
}

func TestBlockUpdateKindIsPerType(t *testing.T) {
	// A Float supplier registered under the same name does not serve a Vec2 field.
	reg := NewRegistry()
	reg.MustRegister(FieldTypeFloat, "V", ConstFloat(9))

	block := mustBuild(t, reg, 0, FieldSpec{FieldTypeVec2, "V"})
	if len(block.MissingFields()) != 1 {
		t.Errorf("MissingFields() = %v, want [V]", block.MissingFields())
	}
}

func TestBlockUpdateBufferLengths(t *testing.T) {
	tests := []struct {
		name   string
		src    []byte
		expect []float32
	}{
		{"nil", nil, []float32{0, 0, 0}},
		{"short", floatBytes(1), []float32{1, 0, 0}},
		{"exact", floatBytes(1, 2, 3), []float32{1, 2, 3}},
		{"long", floatBytes(1, 2, 3, 4, 5), []float32{1, 2, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := NewRegistry()
			src := tt.src
			reg.MustRegister(FieldTypeVec3, "P", BufferSupplier(func() []byte { return src }))
			reg.MustRegister(FieldTypeFloat, "After", ConstFloat(7))

			block := mustBuild(t, reg, 0, FieldSpec{FieldTypeVec3, "P"}, FieldSpec{FieldTypeFloat, "After"})
			dest := make([]byte, block.Size())
			if err := block.Update(dest); err != nil {
				t.Fatalf("Update() error = %v", err)
			}
			for i, w := range tt.expect {
				if v := readFloat(dest, i*4); v != w {
					t.Errorf("P[%d] = %v, want %v", i, v, w)
				}
			}
			if v := readFloat(dest, 12); v != 7 {
				t.Errorf("After = %v, want 7 (vec3 overflow must not clobber it)", v)
			}
		})
	}
}

func TestBlockUpdateIdempotent(t *testing.T) {
	reg := NewRegistry()
	reg.MustRegister(FieldTypeVec2, "S", ConstFloats(640, 480))
	reg.MustRegister(FieldTypeInt, "N", ConstInt(3))

	block := mustBuild(t, reg, 0, FieldSpec{FieldTypeInt, "N"}, FieldSpec{FieldTypeVec2, "S"})
	first := make([]byte, block.Size())
	second := make([]byte, block.Size())
	if err := block.Update(first); err != nil {
		t.Fatal(err)
	}
	if err := block.Update(second); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(first, second) {
		t.Errorf("Update() not idempotent:\n%v\n%v", first, second)
	}
}

func TestBlockUpdateSeesChangingValues(t *testing.T) {
	var time float32
	reg := NewRegistry()
	reg.MustRegister(FieldTypeFloat, "GameTime", FloatSupplier(func() float32 { return time }))

	block := mustBuild(t, reg, 0, FieldSpec{FieldTypeFloat, "GameTime"})
	dest := make([]byte, block.Size())
	for _, want := range []float32{0, 0.25, 0.5} {
		time = want
		if err := block.Update(dest); err != nil {
			t.Fatal(err)
		}
		if got := readFloat(dest, 0); got != want {
			t.Errorf("GameTime = %v, want %v", got, want)
		}
	}
}

func TestBlockUpdateBufferTooSmall(t *testing.T) {
	block := mustBuild(t, NewRegistry(), 0, FieldSpec{FieldTypeMat4, "M"})
	if err := block.Update(make([]byte, 63)); !errors.Is(err, ErrBufferTooSmall) {
		t.Errorf("Update() error = %v, want ErrBufferTooSmall", err)
	}
}

func TestBlockUpdateLeavesTailUntouched(t *testing.T) {
	block := mustBuild(t, NewRegistry(), 0, FieldSpec{FieldTypeFloat, "F"})
	dest := bytes.Repeat([]byte{0xFF}, 32)
	if err := block.Update(dest); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(dest[16:], bytes.Repeat([]byte{0xFF}, 16)) {
		t.Errorf("bytes past Size() modified: %v", dest[16:])
	}
}

func TestNewBlockValidation(t *testing.T) {
	layout := NewLayoutBuilder(WithFields(FieldSpec{FieldTypeFloat, "F"})).Layout()
	reg := NewRegistry()

	if _, err := NewBlock(layout, -1, StageVertex, reg); !errors.Is(err, ErrInvalidSlot) {
		t.Errorf("negative slot error = %v, want ErrInvalidSlot", err)
	}
	if _, err := NewBlock(layout, 0, StageNone, reg); !errors.Is(err, ErrNoStages) {
		t.Errorf("no stages error = %v, want ErrNoStages", err)
	}
	if _, err := NewBlock(layout, 0, StageVertex, nil); !errors.Is(err, ErrNilRegistry) {
		t.Errorf("nil registry error = %v, want ErrNilRegistry", err)
	}
}

func TestBlockSuppliersResolvedAtBuild(t *testing.T) {
	reg := NewRegistry()
	reg.MustRegister(FieldTypeFloat, "F", ConstFloat(1))
	block := mustBuild(t, reg, 0, FieldSpec{FieldTypeFloat, "F"})

	reg.MustRegister(FieldTypeFloat, "F", ConstFloat(2))
	reg.Unregister(FieldTypeFloat, "F")

	dest := make([]byte, block.Size())
	if err := block.Update(dest); err != nil {
		t.Fatal(err)
	}
	if got := readFloat(dest, 0); got != 1 {
		t.Errorf("F = %v, want 1 from the supplier resolved at build", got)
	}
}

func TestBlockUpdateAndBind(t *testing.T) {
	reg := NewRegistry()
	reg.MustRegister(FieldTypeFloat, "F", ConstFloat(4))
	block := mustBuild(t, reg, 3, FieldSpec{FieldTypeFloat, "F"})

	binder := &fakeBinder{}
	if err := block.UpdateAndBind(binder); err != nil {
		t.Fatalf("UpdateAndBind() error = %v", err)
	}
	if len(binder.binds) != 1 {
		t.Fatalf("binds = %d, want 1", len(binder.binds))
	}
	got := binder.binds[0]
	if got.label != "test" || got.slot != 3 || got.stages != StageGraphics {
		t.Errorf("bind = (%q, %d, %v), want (test, 3, vertex|fragment)", got.label, got.slot, got.stages)
	}
	if len(got.data) != 16 || readFloat(got.data, 0) != 4 {
		t.Errorf("bind data = %v", got.data)
	}
	if !bytes.Equal(block.Data(), got.data) {
		t.Error("Data() does not match the bound bytes")
	}

	if err := block.UpdateAndBind(nil); !errors.Is(err, ErrNilBinder) {
		t.Errorf("UpdateAndBind(nil) error = %v, want ErrNilBinder", err)
	}

	binder.err = errors.New("device lost")
	if err := block.Bind(binder); err == nil || !errors.Is(err, binder.err) {
		t.Errorf("Bind() error = %v, want wrapped device lost", err)
	}
}

func TestWithBlockLabelOverridesBuilderLabel(t *testing.T) {
	block, err := NewLayoutBuilder(WithLabel("outer")).Build(0, StageFragment, NewRegistry(), WithBlockLabel("inner"))
	if err != nil {
		t.Fatal(err)
	}
	if block.Label() != "inner" {
		t.Errorf("Label() = %q, want inner", block.Label())
	}
}

func floatBytes(values ...float32) []byte {
	b := make([]byte, len(values)*4)
	common.PutFloat32s(b, values)
	return b
}

func BenchmarkBlockUpdate(b *testing.B) {
	reg := NewRegistry()
	mvp := common.Identity()
	reg.MustRegister(FieldTypeMat4, "MVP", Float32Buffer(func() []float32 { return mvp[:] }))
	reg.MustRegister(FieldTypeVec4, "Color", ConstFloats(1, 1, 1, 1))
	reg.MustRegister(FieldTypeFloat, "GameTime", ConstFloat(0.5))

	block, err := NewLayoutBuilder(WithFields(
		FieldSpec{FieldTypeMat4, "MVP"},
		FieldSpec{FieldTypeVec4, "Color"},
		FieldSpec{FieldTypeFloat, "GameTime"},
	)).Build(0, StageGraphics, reg)
	if err != nil {
		b.Fatal(err)
	}
	dest := make([]byte, block.Size())

	b.ReportAllocs()
	for b.Loop() {
		_ = block.Update(dest)
	}
}
