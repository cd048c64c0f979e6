package render_state

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/vitra/engine/uniform"
)

// Well-known field names served by RegisterDefaults.
const (
	ModelViewMat     = "ModelViewMat"
	ProjMat          = "ProjMat"
	TextureMat       = "TextureMat"
	ColorModulator   = "ColorModulator"
	FogStart         = "FogStart"
	FogEnd           = "FogEnd"
	FogColor         = "FogColor"
	FogShape         = "FogShape"
	LineWidth        = "LineWidth"
	ScreenSize       = "ScreenSize"
	GameTime         = "GameTime"
	Light0Direction  = "Light0_Direction"
	Light1Direction  = "Light1_Direction"
	GlintAlpha       = "GlintAlpha"
	ChunkOffset      = "ChunkOffset"
	IViewRotMat      = "IViewRotMat"
	ModelViewProjMat = "MVP"
)

// ErrNilState is returned by RegisterDefaults when no State is given.
var ErrNilState = errors.New("render state must not be nil")

type defaultBinding struct {
	t    uniform.FieldType
	name string
	s    func(*State) uniform.Supplier
}

var defaultBindings = []defaultBinding{
	{uniform.FieldTypeMat4, ModelViewMat, func(s *State) uniform.Supplier { return matrixSupplier(&s.modelView) }},
	{uniform.FieldTypeMat4, ProjMat, func(s *State) uniform.Supplier { return matrixSupplier(&s.projection) }},
	{uniform.FieldTypeMat4, TextureMat, func(s *State) uniform.Supplier { return matrixSupplier(&s.texture) }},
	{uniform.FieldTypeMat4, IViewRotMat, func(s *State) uniform.Supplier { return matrixSupplier(&s.iViewRot) }},
	{uniform.FieldTypeMat4, ModelViewProjMat, func(s *State) uniform.Supplier { return matrixSupplier(&s.mvp) }},

	{uniform.FieldTypeVec4, ColorModulator, func(s *State) uniform.Supplier { return vectorSupplier(&s.colorModulator) }},
	{uniform.FieldTypeVec4, FogColor, func(s *State) uniform.Supplier { return vectorSupplier(&s.fogColor) }},
	{uniform.FieldTypeVec2, ScreenSize, func(s *State) uniform.Supplier { return vectorSupplier(&s.screenSize) }},
	{uniform.FieldTypeVec3, Light0Direction, func(s *State) uniform.Supplier { return vectorSupplier(&s.light0) }},
	{uniform.FieldTypeVec3, Light1Direction, func(s *State) uniform.Supplier { return vectorSupplier(&s.light1) }},
	{uniform.FieldTypeVec3, ChunkOffset, func(s *State) uniform.Supplier { return vectorSupplier(&s.chunkOffset) }},

	{uniform.FieldTypeFloat, FogStart, func(s *State) uniform.Supplier { return uniform.FloatSupplier(s.FogStart) }},
	{uniform.FieldTypeFloat, FogEnd, func(s *State) uniform.Supplier { return uniform.FloatSupplier(s.FogEnd) }},
	{uniform.FieldTypeFloat, LineWidth, func(s *State) uniform.Supplier { return uniform.FloatSupplier(s.LineWidth) }},
	{uniform.FieldTypeFloat, GameTime, func(s *State) uniform.Supplier { return uniform.FloatSupplier(s.GameTime) }},
	{uniform.FieldTypeFloat, GlintAlpha, func(s *State) uniform.Supplier { return uniform.FloatSupplier(s.GlintAlpha) }},

	{uniform.FieldTypeInt, FogShape, func(s *State) uniform.Supplier { return uniform.IntSupplier(s.FogShape) }},
}

func matrixSupplier(slot *matrixSlot) uniform.BufferSupplier {
	return func() []byte { return slot.b[:] }
}

func vectorSupplier(slot *vectorSlot) uniform.BufferSupplier {
	return slot.bytes
}

// RegisterDefaults binds every well-known name to a supplier reading s. Existing
// registrations under the same (type, name) are replaced.
//
// Parameters:
//   - reg: the registry to populate
//   - s: the state the suppliers read from
//
// Returns:
//   - error: ErrNilState, uniform.ErrNilRegistry or a registration error
func RegisterDefaults(reg *uniform.Registry, s *State) error {
	if reg == nil {
		return uniform.ErrNilRegistry
	}
	if s == nil {
		return ErrNilState
	}
	for _, d := range defaultBindings {
		if err := reg.Register(d.t, d.name, d.s(s)); err != nil {
			return fmt.Errorf("register default %s: %w", d.name, err)
		}
	}
	return nil
}

// DefaultNames returns the well-known field names and their types in registration order.
func DefaultNames() []uniform.FieldSpec {
	out := make([]uniform.FieldSpec, len(defaultBindings))
	for i, d := range defaultBindings {
		out[i] = uniform.FieldSpec{Type: d.t, Name: d.name}
	}
	return out
}
