package shader

import (
	"fmt"
	"os"

	"github.com/gogpu/naga/ir"

	"github.com/Carmen-Shannon/vitra/common"
	"github.com/Carmen-Shannon/vitra/engine/uniform"
)

// shader is the implementation of the Shader interface.
type shader struct {
	key          string
	source       string
	validate     bool
	entryPoints  []EntryPoint
	blocks       []ReflectedBlock
	declarations []Annotation

	pp PreProcessor
}

// Shader is a pre-processed and reflected WGSL module. It exposes the entry points and
// uniform blocks the renderer needs to create pipelines and bind uniform.Block data.
type Shader interface {
	// Key retrieves the unique identifier for this shader, used for caching and lookups.
	//
	// Returns:
	//   - string: the shader's unique key
	Key() string

	// Source retrieves the processed WGSL source code.
	//
	// Returns:
	//   - string: the WGSL source with annotations expanded
	Source() string

	// EntryPoints returns the module's entry points in declaration order.
	//
	// Returns:
	//   - []EntryPoint: the entry points
	EntryPoints() []EntryPoint

	// EntryPoint returns the name of the first entry point for stage.
	//
	// Parameters:
	//   - stage: a single shader stage
	//
	// Returns:
	//   - string: the entry point name, or empty if the module has none for stage
	EntryPoint(stage uniform.StageMask) string

	// UniformBlocks returns the struct-typed var<uniform> globals ordered by group and binding.
	//
	// Returns:
	//   - []ReflectedBlock: the uniform blocks
	UniformBlocks() []ReflectedBlock

	// UniformBlock looks up a uniform block by group and binding.
	//
	// Parameters:
	//   - group: the bind group index
	//   - binding: the binding index
	//
	// Returns:
	//   - ReflectedBlock: the block, or the zero value if not found
	//   - bool: true if found
	UniformBlock(group, binding int) (ReflectedBlock, bool)

	// VerifyBlocks checks each block against the shader's uniform declared at
	// (group, block.Slot()): the layouts must match and the block must be visible to
	// every stage that reads the uniform.
	//
	// Parameters:
	//   - group: the bind group index the blocks are bound in
	//   - blocks: the blocks to check
	//
	// Returns:
	//   - error: ErrLayoutMismatch describing the first failing block, or nil
	VerifyBlocks(group int, blocks ...*uniform.Block) error

	// Declarations returns the block annotations expanded by the pre-processor.
	//
	// Returns:
	//   - []Annotation: the block declarations in source order
	Declarations() []Annotation
}

var _ Shader = &shader{}

// NewShader pre-processes, compiles and reflects WGSL source.
//
// Parameters:
//   - key: a unique identifier for the shader, used for caching and lookups
//   - source: the WGSL source
//   - options: shader options
//
// Returns:
//   - Shader: the reflected shader
//   - error: a pre-processor error, ErrInvalidShader or ErrUnsupportedMember
func NewShader(key, source string, options ...ShaderBuilderOption) (Shader, error) {
	s := &shader{
		key:      key,
		validate: true,
	}
	for _, opt := range options {
		opt(s)
	}

	if s.pp != nil {
		processed, err := s.pp.Process(source)
		if err != nil {
			return nil, fmt.Errorf("shader %s: %w", key, err)
		}
		source = processed
		s.declarations = append([]Annotation(nil), s.pp.Declarations()...)
	}
	s.source = source

	var (
		module *ir.Module
		err    error
	)
	if s.validate {
		module, err = compile(source)
	} else {
		module, err = lower(source)
	}
	if err != nil {
		return nil, fmt.Errorf("shader %s: %w", key, err)
	}

	s.entryPoints = entryPoints(module)
	if s.blocks, err = reflectModule(module); err != nil {
		return nil, fmt.Errorf("shader %s: %w", key, err)
	}

	common.Logger().Debug("shader reflected", "shader", key, "entry_points", len(s.entryPoints), "uniform_blocks", len(s.blocks))
	return s, nil
}

// NewShaderFromPath reads WGSL source from path and calls NewShader.
//
// Parameters:
//   - key: a unique identifier for the shader
//   - path: the file path to read WGSL source from
//   - options: shader options
//
// Returns:
//   - Shader: the reflected shader
//   - error: an I/O error or any NewShader error
func NewShaderFromPath(key, path string, options ...ShaderBuilderOption) (Shader, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("shader %s: read %q: %w", key, path, err)
	}
	return NewShader(key, string(data), options...)
}

func (s *shader) Key() string {
	return s.key
}

func (s *shader) Source() string {
	return s.source
}

func (s *shader) EntryPoints() []EntryPoint {
	return append([]EntryPoint(nil), s.entryPoints...)
}

func (s *shader) EntryPoint(stage uniform.StageMask) string {
	for _, ep := range s.entryPoints {
		if ep.Stage == stage {
			return ep.Name
		}
	}
	return ""
}

func (s *shader) UniformBlocks() []ReflectedBlock {
	return append([]ReflectedBlock(nil), s.blocks...)
}

func (s *shader) UniformBlock(group, binding int) (ReflectedBlock, bool) {
	for _, rb := range s.blocks {
		if rb.Group == group && rb.Binding == binding {
			return rb, true
		}
	}
	return ReflectedBlock{}, false
}

func (s *shader) VerifyBlocks(group int, blocks ...*uniform.Block) error {
	for _, b := range blocks {
		rb, ok := s.UniformBlock(group, b.Slot())
		if !ok {
			return fmt.Errorf("%w: shader %s declares no uniform at group %d binding %d for block %q",
				ErrLayoutMismatch, s.key, group, b.Slot(), b.Label())
		}
		if err := VerifyLayout(b.Layout(), rb); err != nil {
			return fmt.Errorf("shader %s block %q: %w", s.key, b.Label(), err)
		}
		if missing := rb.Stages &^ b.Stages(); missing != uniform.StageNone {
			return fmt.Errorf("%w: shader %s reads %q from %s but block %q is bound to %s",
				ErrLayoutMismatch, s.key, rb.VarName, missing, b.Label(), b.Stages())
		}
	}
	return nil
}

func (s *shader) Declarations() []Annotation {
	return s.declarations
}
