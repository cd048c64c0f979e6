// pre_processor.go implements the Vitra WGSL shader pre-processor. It scans shader
// source for @vitra: annotations, replaces them with declarations generated from
// registered uniform layouts, and collects the block declarations the renderer uses
// to bind each uniform.Block to its group and binding.
package shader

import (
	"fmt"
	"slices"
	"strings"

	"github.com/Carmen-Shannon/vitra/engine/uniform"
)

// preProcessor is the implementation of the PreProcessor interface.
type preProcessor struct {
	// layouts maps layout names to the layouts whose structs are generated.
	layouts map[string]uniform.Layout

	// declarations accumulates block annotations during a Process call.
	declarations []Annotation
}

// PreProcessor replaces @vitra: annotations in WGSL source with generated uniform
// declarations and records the block declarations it emitted.
type PreProcessor interface {
	// RegisterLayout makes a layout available to annotations under name. The name is
	// also the generated WGSL struct name. Registering a name again replaces it.
	//
	// Parameters:
	//   - name: the layout and struct name
	//   - layout: the block layout
	RegisterLayout(name string, layout uniform.Layout)

	// Process replaces annotations in source. Include annotations become struct
	// declarations; block annotations become var<uniform> declarations and are
	// recorded. The declarations list is reset at the start of each call.
	//
	// Parameters:
	//   - source: the raw WGSL source
	//
	// Returns:
	//   - string: the processed source
	//   - error: a malformed annotation or ErrUnknownLayout
	Process(source string) (string, error)

	// Declarations returns the block annotations collected by the last Process call,
	// in source order.
	//
	// Returns:
	//   - []Annotation: the block declarations
	Declarations() []Annotation
}

var _ PreProcessor = &preProcessor{}

// NewPreProcessor creates a PreProcessor with no registered layouts.
//
// Returns:
//   - PreProcessor: a ready-to-use pre-processor instance
func NewPreProcessor() PreProcessor {
	return &preProcessor{
		layouts: make(map[string]uniform.Layout),
	}
}

func (p *preProcessor) RegisterLayout(name string, layout uniform.Layout) {
	p.layouts[name] = layout
}

func (p *preProcessor) Process(source string) (string, error) {
	p.declarations = nil

	lines := strings.Split(source, "\n")
	out := make([]string, 0, len(lines))

	for i, line := range lines {
		a, err := parseAnnotation(line, i+1)
		if err != nil {
			return "", err
		}
		if a == nil {
			out = append(out, line)
			continue
		}

		layout, ok := p.layouts[a.LayoutName()]
		if !ok {
			return "", fmt.Errorf("line %d: %w %q", i+1, ErrUnknownLayout, a.LayoutName())
		}

		switch a.Type {
		case AnnotationTypeInclude:
			out = append(out, strings.TrimSuffix(GenerateWGSLStruct(a.LayoutName(), layout), "\n"))
		case AnnotationTypeBlock:
			decl := GenerateWGSLBinding(*a.Group, *a.Binding, a.Args[0], a.LayoutName())
			out = append(out, strings.TrimSuffix(decl, "\n"))
			p.declarations = append(p.declarations, *a)
		}
	}
	return strings.Join(out, "\n"), nil
}

func (p *preProcessor) Declarations() []Annotation {
	return slices.Clone(p.declarations)
}
