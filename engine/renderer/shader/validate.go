package shader

import (
	"errors"
	"fmt"

	"github.com/gogpu/naga"
	"github.com/gogpu/naga/ir"
)

// lower parses WGSL source and lowers it into a naga IR module.
func lower(source string) (*ir.Module, error) {
	ast, err := naga.Parse(source)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidShader, err)
	}
	module, err := naga.LowerWithSource(ast, source)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidShader, err)
	}
	return module, nil
}

// compile lowers WGSL source and runs the IR validator over the result.
func compile(source string) (*ir.Module, error) {
	module, err := lower(source)
	if err != nil {
		return nil, err
	}
	verrs, err := naga.Validate(module)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidShader, err)
	}
	if len(verrs) > 0 {
		errs := make([]error, len(verrs))
		for i := range verrs {
			errs[i] = verrs[i]
		}
		return nil, fmt.Errorf("%w: %w", ErrInvalidShader, errors.Join(errs...))
	}
	return module, nil
}

// ValidateWGSL reports whether source is a valid WGSL module.
//
// Parameters:
//   - source: the WGSL source
//
// Returns:
//   - error: ErrInvalidShader wrapping the parser, lowering or validation errors
func ValidateWGSL(source string) error {
	_, err := compile(source)
	return err
}

// CompileSPIRV compiles WGSL source to a SPIR-V binary.
//
// Parameters:
//   - source: the WGSL source
//
// Returns:
//   - []byte: the SPIR-V words in little-endian byte order
//   - error: ErrInvalidShader wrapping the compiler error
func CompileSPIRV(source string) ([]byte, error) {
	out, err := naga.Compile(source)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidShader, err)
	}
	return out, nil
}
