package render_state

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/Carmen-Shannon/vitra/common"
	"github.com/Carmen-Shannon/vitra/engine/uniform"
)

func floatAt(b []byte, byteOffset int) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(b[byteOffset:]))
}

func TestRegisterDefaultsCoversAllNames(t *testing.T) {
	reg := uniform.NewRegistry()
	if err := RegisterDefaults(reg, NewState()); err != nil {
		t.Fatalf("RegisterDefaults() error = %v", err)
	}
	for _, spec := range DefaultNames() {
		if _, ok := reg.Lookup(spec.Type, spec.Name); !ok {
			t.Errorf("no supplier for %s %s", spec.Type, spec.Name)
		}
	}
	if reg.Len() != len(DefaultNames()) {
		t.Errorf("Len() = %d, want %d", reg.Len(), len(DefaultNames()))
	}
}

func TestRegisterDefaultsNilArguments(t *testing.T) {
	if err := RegisterDefaults(nil, NewState()); err == nil {
		t.Error("nil registry should fail")
	}
	if err := RegisterDefaults(uniform.NewRegistry(), nil); err != ErrNilState {
		t.Errorf("nil state error = %v, want ErrNilState", err)
	}
}

func TestDefaultBlockTracksState(t *testing.T) {
	state := NewState()
	reg := uniform.NewRegistry()
	if err := RegisterDefaults(reg, state); err != nil {
		t.Fatal(err)
	}

	block, err := uniform.NewLayoutBuilder(uniform.WithFields(
		uniform.FieldSpec{Type: uniform.FieldTypeMat4, Name: ProjMat},
		uniform.FieldSpec{Type: uniform.FieldTypeVec4, Name: ColorModulator},
		uniform.FieldSpec{Type: uniform.FieldTypeVec2, Name: ScreenSize},
		uniform.FieldSpec{Type: uniform.FieldTypeFloat, Name: GameTime},
		uniform.FieldSpec{Type: uniform.FieldTypeInt, Name: FogShape},
	)).Build(0, uniform.StageGraphics, reg)
	if err != nil {
		t.Fatal(err)
	}
	if missing := block.MissingFields(); len(missing) != 0 {
		t.Fatalf("MissingFields() = %v", missing)
	}

	proj := common.Translate(1, 2, 3)
	state.SetProjection(proj)
	state.SetColorModulator(0.5, 0.25, 1, 1)
	state.SetScreenSize(1920, 1080)
	state.SetGameTime(0.75)
	state.SetFog(0, 64, common.Vec4{}, 1)

	dest := make([]byte, block.Size())
	if err := block.Update(dest); err != nil {
		t.Fatal(err)
	}

	// ProjMat 0..64, ColorModulator 64..80, ScreenSize 80..88, GameTime 88, FogShape 92.
	for i, want := range proj {
		if got := floatAt(dest, i*4); got != want {
			t.Errorf("ProjMat[%d] = %v, want %v", i, got, want)
		}
	}
	if got := floatAt(dest, 64); got != 0.5 {
		t.Errorf("ColorModulator.r = %v, want 0.5", got)
	}
	if got := floatAt(dest, 84); got != 1080 {
		t.Errorf("ScreenSize.y = %v, want 1080", got)
	}
	if got := floatAt(dest, 88); got != 0.75 {
		t.Errorf("GameTime = %v, want 0.75", got)
	}
	if got := int32(binary.LittleEndian.Uint32(dest[92:])); got != 1 {
		t.Errorf("FogShape = %d, want 1", got)
	}
}

func TestStateDerivedMatrices(t *testing.T) {
	s := NewState()
	s.SetModelView(common.Translate(0, 0, -5))
	s.SetProjection(common.Translate(1, 0, 0))

	// Both are translations, so MVP is their sum and the rotation-only inverse is identity.
	mvp := s.MVP()
	if mvp[12] != 1 || mvp[14] != -5 {
		t.Errorf("MVP translation = (%v, %v, %v), want (1, 0, -5)", mvp[12], mvp[13], mvp[14])
	}
	if s.InverseViewRotation() != common.Identity() {
		t.Errorf("InverseViewRotation() = %v, want identity", s.InverseViewRotation())
	}
}

func TestStateOrthographic(t *testing.T) {
	s := NewState()
	s.SetOrthographic(200, 100)

	p := s.Projection()
	// (0,0) maps to the top-left corner of clip space.
	if p[12] != -1 || p[13] != 1 {
		t.Errorf("origin maps to (%v, %v), want (-1, 1)", p[12], p[13])
	}
	if p[0] != 0.01 || p[5] != -0.02 {
		t.Errorf("scale = (%v, %v), want (0.01, -0.02)", p[0], p[5])
	}
}

func TestStateLightDirectionsNormalized(t *testing.T) {
	s := NewState()
	s.SetLightDirections(common.Vec3{0, 2, 0}, common.Vec3{3, 0, 4})
	l0, l1 := s.LightDirections()
	if l0 != (common.Vec3{0, 1, 0}) {
		t.Errorf("light0 = %v, want (0, 1, 0)", l0)
	}
	if math.Abs(float64(l1[0]-0.6)) > 1e-6 || math.Abs(float64(l1[2]-0.8)) > 1e-6 {
		t.Errorf("light1 = %v, want (0.6, 0, 0.8)", l1)
	}
}

func TestNewStateDefaults(t *testing.T) {
	s := NewState()
	if s.ColorModulator() != (common.Vec4{1, 1, 1, 1}) {
		t.Errorf("ColorModulator() = %v", s.ColorModulator())
	}
	if s.LineWidth() != 1 || s.GlintAlpha() != 1 || s.FogEnd() != 1 {
		t.Errorf("scalar defaults = %v %v %v", s.LineWidth(), s.GlintAlpha(), s.FogEnd())
	}
	if s.ModelView() != common.Identity() || s.TextureMatrix() != common.Identity() {
		t.Error("matrices should start as identity")
	}
}
