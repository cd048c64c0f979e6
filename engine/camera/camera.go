package camera

import (
	"math"
	"sync"

	"github.com/Carmen-Shannon/vitra/common"
	"github.com/Carmen-Shannon/vitra/engine/render_state"
	"github.com/Carmen-Shannon/vitra/engine/uniform"
)

// CameraPosition is the field name RegisterSuppliers serves.
const CameraPosition = "CameraPosition"

// orbitCamera is the implementation of the OrbitCamera interface.
type orbitCamera struct {
	mu *sync.Mutex

	position common.Vec3
	target   common.Vec3

	radius    float32
	azimuth   float32 // horizontal angle around Y
	elevation float32 // vertical angle from the horizontal plane

	minRadius    float32
	maxRadius    float32
	minElevation float32
	maxElevation float32

	mouseSensitivity float32
	zoomSpeed        float32

	// last cursor position for Drag; hasCursor is false until the first sample.
	lastX, lastY float32
	hasCursor    bool
}

// OrbitCamera circles a target point on a sphere and writes its view into a
// render_state.State. Safe for concurrent use; input callbacks may run on a different
// goroutine than Apply.
type OrbitCamera interface {
	// Position returns the eye position.
	Position() common.Vec3

	// Target returns the point the camera looks at.
	Target() common.Vec3

	// SetTarget moves the orbit center, keeping radius and angles.
	SetTarget(target common.Vec3)

	// Orbit rotates the camera by the given angles in radians. Elevation is clamped.
	//
	// Parameters:
	//   - dAzimuth: the horizontal rotation
	//   - dElevation: the vertical rotation
	Orbit(dAzimuth, dElevation float32)

	// Drag orbits by the cursor movement since the previous call, scaled by the
	// mouse sensitivity. The first call only records the position.
	//
	// Parameters:
	//   - x, y: the cursor position in window coordinates
	Drag(x, y float32)

	// Zoom moves the camera toward the target by delta times the zoom speed. Radius is clamped.
	Zoom(delta float32)

	Radius() float32
	Azimuth() float32
	Elevation() float32

	// RegisterSuppliers serves the eye position as the vec3 field CameraPosition.
	//
	// Parameters:
	//   - reg: the registry to register into
	//
	// Returns:
	//   - error: a registration error
	RegisterSuppliers(reg *uniform.Registry) error

	// Apply sets the state's model-view matrix to look from Position at Target, with +Y up.
	//
	// Parameters:
	//   - s: the render state
	Apply(s *render_state.State)
}

var _ OrbitCamera = &orbitCamera{}

// NewOrbitCamera creates an OrbitCamera around the origin.
//
// Parameters:
//   - options: camera options
//
// Returns:
//   - OrbitCamera: the camera
func NewOrbitCamera(options ...OrbitCameraOption) OrbitCamera {
	c := &orbitCamera{
		mu: &sync.Mutex{},

		radius:    10.0,
		elevation: float32(math.Pi / 6),

		minRadius:    1.0,
		maxRadius:    1000.0,
		minElevation: -float32(math.Pi/2 - 0.1),
		maxElevation: float32(math.Pi/2 - 0.1),

		mouseSensitivity: 0.005,
		zoomSpeed:        1.0,
	}
	for _, option := range options {
		option(c)
	}
	c.radius = clamp(c.radius, c.minRadius, c.maxRadius)
	c.elevation = clamp(c.elevation, c.minElevation, c.maxElevation)
	c.updatePosition()
	return c
}

func clamp(v, lo, hi float32) float32 {
	return max(lo, min(v, hi))
}

// updatePosition places the eye on the sphere; mu must be held.
func (c *orbitCamera) updatePosition() {
	cosElev := float32(math.Cos(float64(c.elevation)))
	sinElev := float32(math.Sin(float64(c.elevation)))
	cosAzim := float32(math.Cos(float64(c.azimuth)))
	sinAzim := float32(math.Sin(float64(c.azimuth)))

	c.position = common.Vec3{
		c.target[0] + c.radius*cosElev*sinAzim,
		c.target[1] + c.radius*sinElev,
		c.target[2] + c.radius*cosElev*cosAzim,
	}
}

func (c *orbitCamera) Position() common.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.position
}

func (c *orbitCamera) Target() common.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.target
}

func (c *orbitCamera) SetTarget(target common.Vec3) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.target = target
	c.updatePosition()
}

func (c *orbitCamera) Orbit(dAzimuth, dElevation float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.azimuth += dAzimuth
	c.elevation = clamp(c.elevation+dElevation, c.minElevation, c.maxElevation)
	c.updatePosition()
}

func (c *orbitCamera) Drag(x, y float32) {
	c.mu.Lock()
	dx, dy := x-c.lastX, y-c.lastY
	first := !c.hasCursor
	c.lastX, c.lastY, c.hasCursor = x, y, true
	sens := c.mouseSensitivity
	c.mu.Unlock()

	if first {
		return
	}
	// Dragging right swings the eye left around the target; dragging down raises it.
	c.Orbit(-dx*sens, dy*sens)
}

func (c *orbitCamera) Zoom(delta float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.radius = clamp(c.radius-delta*c.zoomSpeed, c.minRadius, c.maxRadius)
	c.updatePosition()
}

func (c *orbitCamera) Radius() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.radius
}

func (c *orbitCamera) Azimuth() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.azimuth
}

func (c *orbitCamera) Elevation() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.elevation
}

func (c *orbitCamera) RegisterSuppliers(reg *uniform.Registry) error {
	if reg == nil {
		return uniform.ErrNilRegistry
	}
	return reg.Register(uniform.FieldTypeVec3, CameraPosition, uniform.Float32Buffer(func() []float32 {
		p := c.Position()
		return p[:]
	}))
}

func (c *orbitCamera) Apply(s *render_state.State) {
	c.mu.Lock()
	eye, target := c.position, c.target
	c.mu.Unlock()
	s.SetLookAt(eye, target, common.Vec3{0, 1, 0})
}
