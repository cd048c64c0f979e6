// package common contains common types that are used throughout this engine. They are not interface-wrapped structs, just plain structs that express
// commonly used data-types.
package common

// Vec2 is a two component float vector.
type Vec2 [2]float32

// Vec3 is a three component float vector. In a constant block it occupies 12 bytes
// but is aligned to 16.
type Vec3 [3]float32

// Vec4 is a four component float vector, also used for RGBA colors.
type Vec4 [4]float32

// Normalize returns v scaled to unit length, or v unchanged if it has zero length.
func (v Vec3) Normalize() Vec3 {
	l := v[0]*v[0] + v[1]*v[1] + v[2]*v[2]
	if l == 0 {
		return v
	}
	inv := 1 / sqrt32(l)
	return Vec3{v[0] * inv, v[1] * inv, v[2] * inv}
}
