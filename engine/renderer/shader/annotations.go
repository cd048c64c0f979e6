// annotations.go defines the annotation types and parser for the Vitra WGSL shader
// pre-processor. Annotations are single-line WGSL comments prefixed with @vitra: that
// inject generated uniform struct declarations and their var<uniform> bindings, so a
// shader's uniform blocks always match the host layouts they are filled from.
package shader

import (
	"fmt"
	"strconv"
	"strings"
)

// annotationPrefix is the marker that identifies a Vitra annotation within a WGSL comment line.
const annotationPrefix = "@vitra:"

// AnnotationType identifies the kind of annotation parsed from a WGSL comment line.
type AnnotationType string

const (
	// AnnotationTypeInclude injects the WGSL struct generated from a registered layout.
	// The struct is named after the layout.
	//
	// Syntax: //@vitra:include <layout>
	//
	// Example: //@vitra:include Globals
	AnnotationTypeInclude AnnotationType = "include"

	// AnnotationTypeBlock generates a @group/@binding var<uniform> declaration of a
	// registered layout's struct type and records a declaration for the renderer.
	//
	// Syntax: //@vitra:block <group> <binding> <var_name> <layout>
	//
	// Example: //@vitra:block 0 1 globals Globals
	AnnotationTypeBlock AnnotationType = "block"
)

// Annotation represents a single parsed @vitra: annotation from a WGSL shader source line.
type Annotation struct {
	// Type identifies which annotation was parsed.
	Type AnnotationType

	// Args holds the annotation's arguments:
	//   - include: [0] = layout name
	//   - block:   [0] = var name, [1] = layout name
	Args []string

	// Line is the 1-based line number in the original WGSL source.
	Line int

	// Group is the @group index for block annotations. Nil for include annotations.
	Group *int

	// Binding is the @binding index for block annotations. Nil for include annotations.
	Binding *int
}

// LayoutName returns the layout the annotation refers to.
func (a Annotation) LayoutName() string {
	return a.Args[len(a.Args)-1]
}

// parseAnnotation attempts to parse a single line of WGSL source as a @vitra: annotation.
// Returns nil with no error for lines that do not contain the annotation prefix.
//
// Parameters:
//   - line: the raw WGSL source line to parse
//   - lineNum: the 1-based line number for error reporting
//
// Returns:
//   - *Annotation: the parsed annotation, or nil if the line is not an annotation
//   - error: a descriptive error if the annotation is malformed
func parseAnnotation(line string, lineNum int) (*Annotation, error) {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, "//") {
		return nil, nil
	}
	_, after, ok := strings.Cut(trimmed, annotationPrefix)
	if !ok {
		return nil, nil
	}

	args := strings.Fields(after)
	if len(args) == 0 {
		return nil, fmt.Errorf("line %d: empty @vitra annotation", lineNum)
	}

	switch AnnotationType(args[0]) {
	case AnnotationTypeInclude:
		if len(args) != 2 {
			return nil, fmt.Errorf("line %d: @vitra include annotation requires exactly one argument", lineNum)
		}
		return &Annotation{Type: AnnotationTypeInclude, Args: args[1:], Line: lineNum}, nil
	case AnnotationTypeBlock:
		if len(args) != 5 {
			return nil, fmt.Errorf("line %d: @vitra block annotation requires four arguments (group, binding, var name, layout)", lineNum)
		}
		group, err := strconv.Atoi(args[1])
		if err != nil || group < 0 {
			return nil, fmt.Errorf("line %d: invalid group number %q in @vitra block annotation", lineNum, args[1])
		}
		binding, err := strconv.Atoi(args[2])
		if err != nil || binding < 0 {
			return nil, fmt.Errorf("line %d: invalid binding number %q in @vitra block annotation", lineNum, args[2])
		}
		return &Annotation{
			Type:    AnnotationTypeBlock,
			Args:    args[3:],
			Line:    lineNum,
			Group:   &group,
			Binding: &binding,
		}, nil
	default:
		return nil, fmt.Errorf("line %d: unknown @vitra annotation type %q", lineNum, args[0])
	}
}
