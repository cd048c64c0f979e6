package shader

import "errors"

var (
	// ErrInvalidShader is returned when WGSL source fails to parse, lower or validate.
	ErrInvalidShader = errors.New("invalid WGSL shader")
	// ErrUnsupportedMember is returned when a uniform struct member has no uniform.FieldType equivalent.
	ErrUnsupportedMember = errors.New("unsupported uniform struct member type")
	// ErrLayoutMismatch is returned when a host layout disagrees with the shader's uniform struct.
	ErrLayoutMismatch = errors.New("uniform layout does not match shader")
	// ErrUnknownLayout is returned by the pre-processor for an annotation naming an unregistered layout.
	ErrUnknownLayout = errors.New("unknown uniform layout")
)
