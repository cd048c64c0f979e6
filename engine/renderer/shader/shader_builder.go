package shader

// ShaderBuilderOption is a functional option applied to a shader during construction via NewShader.
type ShaderBuilderOption func(*shader)

// WithPreProcessor expands @vitra: annotations with pp before compiling.
//
// Parameters:
//   - pp: the pre-processor holding the layouts the source refers to
//
// Returns:
//   - ShaderBuilderOption: a function that applies the pre-processor to a shader
func WithPreProcessor(pp PreProcessor) ShaderBuilderOption {
	return func(s *shader) {
		s.pp = pp
	}
}

// WithValidation toggles the IR validator. Validation is on by default.
//
// Parameters:
//   - enabled: whether to validate the compiled module
//
// Returns:
//   - ShaderBuilderOption: a function that applies the setting to a shader
func WithValidation(enabled bool) ShaderBuilderOption {
	return func(s *shader) {
		s.validate = enabled
	}
}
