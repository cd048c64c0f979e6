package camera

// OrbitCameraOption is a functional option applied to an OrbitCamera during construction via NewOrbitCamera.
type OrbitCameraOption func(*orbitCamera)

// WithRadius sets the initial distance from the target.
//
// Parameters:
//   - radius: the distance, clamped to the radius bounds
//
// Returns:
//   - OrbitCameraOption: a function that applies the radius to a camera
func WithRadius(radius float32) OrbitCameraOption {
	return func(c *orbitCamera) {
		c.radius = radius
	}
}

// WithAngles sets the initial azimuth and elevation in radians.
func WithAngles(azimuth, elevation float32) OrbitCameraOption {
	return func(c *orbitCamera) {
		c.azimuth = azimuth
		c.elevation = elevation
	}
}

// WithTarget sets the initial orbit center.
func WithTarget(x, y, z float32) OrbitCameraOption {
	return func(c *orbitCamera) {
		c.target[0], c.target[1], c.target[2] = x, y, z
	}
}

// WithRadiusBounds limits how close and how far the camera may zoom.
//
// Parameters:
//   - lo: the minimum radius
//   - hi: the maximum radius
//
// Returns:
//   - OrbitCameraOption: a function that applies the bounds to a camera
func WithRadiusBounds(lo, hi float32) OrbitCameraOption {
	return func(c *orbitCamera) {
		c.minRadius, c.maxRadius = lo, hi
	}
}

// WithElevationBounds limits the vertical angle in radians.
func WithElevationBounds(lo, hi float32) OrbitCameraOption {
	return func(c *orbitCamera) {
		c.minElevation, c.maxElevation = lo, hi
	}
}

// WithMouseSensitivity sets radians of rotation per pixel of cursor movement in Drag.
func WithMouseSensitivity(sensitivity float32) OrbitCameraOption {
	return func(c *orbitCamera) {
		c.mouseSensitivity = sensitivity
	}
}

// WithZoomSpeed sets the radius change per unit of Zoom delta.
func WithZoomSpeed(speed float32) OrbitCameraOption {
	return func(c *orbitCamera) {
		c.zoomSpeed = speed
	}
}
