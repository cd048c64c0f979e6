package render_state

import (
	"github.com/Carmen-Shannon/vitra/common"
)

// matrixSlot is a matrix together with its encoded bytes. The bytes are refreshed on
// every set so suppliers hand out the cache without re-encoding.
type matrixSlot struct {
	m common.Mat4
	b [64]byte
}

func (s *matrixSlot) set(m common.Mat4) {
	s.m = m
	s.m.PutBytes(s.b[:])
}

// vectorSlot holds up to four floats and their encoded bytes.
type vectorSlot struct {
	v [4]float32
	n int
	b [16]byte
}

func (s *vectorSlot) set(values ...float32) {
	s.n = copy(s.v[:], values)
	clear(s.b[:])
	common.PutFloat32s(s.b[:], s.v[:s.n])
}

func (s *vectorSlot) bytes() []byte { return s.b[:s.n*4] }

// State mirrors the renderer's global shader inputs. It is owned by the render thread
// and is not safe for concurrent use; suppliers registered by RegisterDefaults read it
// without locking.
type State struct {
	modelView  matrixSlot
	projection matrixSlot
	texture    matrixSlot
	iViewRot   matrixSlot
	mvp        matrixSlot

	colorModulator vectorSlot
	fogColor       vectorSlot
	screenSize     vectorSlot
	light0         vectorSlot
	light1         vectorSlot
	chunkOffset    vectorSlot

	fogStart   float32
	fogEnd     float32
	fogShape   int32
	lineWidth  float32
	gameTime   float32
	glintAlpha float32
}

// NewState creates a State with identity matrices, a white color modulator, a line
// width and glint alpha of one, and every other value zero.
//
// Returns:
//   - *State: the initialized state
func NewState() *State {
	s := &State{
		fogEnd:     1,
		lineWidth:  1,
		glintAlpha: 1,
	}
	id := common.Identity()
	s.modelView.set(id)
	s.projection.set(id)
	s.texture.set(id)
	s.iViewRot.set(id)
	s.mvp.set(id)
	s.colorModulator.set(1, 1, 1, 1)
	s.fogColor.set(0, 0, 0, 0)
	s.screenSize.set(0, 0)
	s.light0.set(0, 0, 0)
	s.light1.set(0, 0, 0)
	s.chunkOffset.set(0, 0, 0)
	return s
}

// SetModelView sets the model-view matrix and refreshes the derived MVP and inverse
// view rotation.
func (s *State) SetModelView(m common.Mat4) {
	s.modelView.set(m)
	s.refreshDerived()
}

// ModelView returns the model-view matrix.
func (s *State) ModelView() common.Mat4 { return s.modelView.m }

// SetProjection sets the projection matrix and refreshes the derived MVP.
func (s *State) SetProjection(m common.Mat4) {
	s.projection.set(m)
	s.refreshDerived()
}

// Projection returns the projection matrix.
func (s *State) Projection() common.Mat4 { return s.projection.m }

// SetPerspective sets a perspective projection.
//
// Parameters:
//   - fovY: vertical field of view in radians
//   - aspect: width divided by height
//   - near: near plane distance
//   - far: far plane distance
func (s *State) SetPerspective(fovY, aspect, near, far float32) {
	s.SetProjection(common.Perspective(fovY, aspect, near, far))
}

// SetOrthographic sets an orthographic projection covering width x height pixels with
// the origin at the top-left, the projection overlay passes draw with.
func (s *State) SetOrthographic(width, height float32) {
	s.SetProjection(common.Orthographic(0, width, height, 0, -1, 1))
}

// SetLookAt sets the model-view matrix to a camera at eye looking at center.
//
// Parameters:
//   - eye: the camera position
//   - center: the point looked at
//   - up: the world up direction
func (s *State) SetLookAt(eye, center, up common.Vec3) {
	s.SetModelView(common.LookAt(eye, center, up))
}

// SetTextureMatrix sets the texture coordinate transform.
func (s *State) SetTextureMatrix(m common.Mat4) { s.texture.set(m) }

// TextureMatrix returns the texture coordinate transform.
func (s *State) TextureMatrix() common.Mat4 { return s.texture.m }

// MVP returns projection * model-view.
func (s *State) MVP() common.Mat4 { return s.mvp.m }

// InverseViewRotation returns the inverse of the model-view matrix's rotation part.
func (s *State) InverseViewRotation() common.Mat4 { return s.iViewRot.m }

func (s *State) refreshDerived() {
	s.mvp.set(s.projection.m.Mul(s.modelView.m))
	if inv, ok := s.modelView.m.RotationOnly().Invert(); ok {
		s.iViewRot.set(inv)
	}
}

// SetColorModulator sets the RGBA color every fragment is multiplied by.
func (s *State) SetColorModulator(r, g, b, a float32) { s.colorModulator.set(r, g, b, a) }

// ColorModulator returns the RGBA color modulator.
func (s *State) ColorModulator() common.Vec4 { return common.Vec4(s.colorModulator.v) }

// SetFog sets the fog parameters.
//
// Parameters:
//   - start: distance at which fog begins
//   - end: distance at which fog is opaque
//   - color: RGBA fog color
//   - shape: 0 for spherical, 1 for cylindrical fog
func (s *State) SetFog(start, end float32, color common.Vec4, shape int32) {
	s.fogStart = start
	s.fogEnd = end
	s.fogColor.set(color[:]...)
	s.fogShape = shape
}

// FogStart returns the fog start distance.
func (s *State) FogStart() float32 { return s.fogStart }

// FogEnd returns the fog end distance.
func (s *State) FogEnd() float32 { return s.fogEnd }

// FogColor returns the RGBA fog color.
func (s *State) FogColor() common.Vec4 { return common.Vec4(s.fogColor.v) }

// FogShape returns the fog shape index.
func (s *State) FogShape() int32 { return s.fogShape }

// SetLineWidth sets the line width used by line shaders.
func (s *State) SetLineWidth(w float32) { s.lineWidth = w }

// LineWidth returns the line width.
func (s *State) LineWidth() float32 { return s.lineWidth }

// SetScreenSize sets the framebuffer size in pixels.
func (s *State) SetScreenSize(width, height float32) { s.screenSize.set(width, height) }

// ScreenSize returns the framebuffer size in pixels.
func (s *State) ScreenSize() common.Vec2 { return common.Vec2(s.screenSize.v[:2]) }

// SetGameTime sets the game time, a value cycling through [0, 1).
func (s *State) SetGameTime(t float32) { s.gameTime = t }

// GameTime returns the game time.
func (s *State) GameTime() float32 { return s.gameTime }

// SetLightDirections sets the two directional light vectors. Both are normalized.
func (s *State) SetLightDirections(l0, l1 common.Vec3) {
	l0, l1 = l0.Normalize(), l1.Normalize()
	s.light0.set(l0[:]...)
	s.light1.set(l1[:]...)
}

// LightDirections returns the two directional light vectors.
func (s *State) LightDirections() (common.Vec3, common.Vec3) {
	return common.Vec3(s.light0.v[:3]), common.Vec3(s.light1.v[:3])
}

// SetGlintAlpha sets the enchantment glint opacity.
func (s *State) SetGlintAlpha(a float32) { s.glintAlpha = a }

// GlintAlpha returns the glint opacity.
func (s *State) GlintAlpha() float32 { return s.glintAlpha }

// SetChunkOffset sets the world offset of the chunk being drawn.
func (s *State) SetChunkOffset(x, y, z float32) { s.chunkOffset.set(x, y, z) }

// ChunkOffset returns the chunk offset.
func (s *State) ChunkOffset() common.Vec3 { return common.Vec3(s.chunkOffset.v[:3]) }
