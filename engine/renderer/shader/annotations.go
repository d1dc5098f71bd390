// annotations.go defines the annotation types, argument constants, and parser for the
// Oxy GLSL shader pre-processor. Annotations are single-line GLSL comments prefixed
// with @oxy: that inject shared source chunks or generated #define blocks, so the Go
// side and the shader sources agree on attribute locations, texture units and uniform
// block layouts without duplicating the numbers by hand.
package shader

import (
	"fmt"
	"slices"
	"strings"
)

// annotationPrefix is the marker that identifies an Oxy annotation within a GLSL comment line.
// Every annotation must appear on a line beginning with "//" followed by this prefix.
const annotationPrefix = "@oxy:"

// AnnotationType identifies the kind of annotation parsed from a GLSL comment line.
type AnnotationType string

const (
	// annotationTypeInclude injects the GLSL source of a registered chunk at the annotation site.
	//
	// Syntax: //@oxy:include <chunk>
	//
	// Example: //@oxy:include material
	annotationTypeInclude AnnotationType = "include"

	// annotationTypeDefine emits a generated block of #define lines built from Go constants.
	// It must follow the #version directive.
	//
	// Syntax: //@oxy:define <define_set>
	//
	// Example: //@oxy:define layout
	annotationTypeDefine AnnotationType = "define"
)

// Annotation represents a single parsed @oxy: annotation from a GLSL source line.
type Annotation struct {
	// Type identifies which annotation was parsed.
	Type AnnotationType

	// Arg is the chunk or define set named by the annotation.
	Arg AnnotationArg

	// Line is the 1-based line number in the original source, used for error reporting.
	Line int
}

// AnnotationArg is a typed string constant used as the argument of an annotation.
type AnnotationArg string

const (
	// AnnotationArgMaterial identifies the std140 Material uniform block.
	// Source: engine/renderer/shader/assets/material_block.glsl
	AnnotationArgMaterial AnnotationArg = "material"

	// AnnotationArgLayout identifies the attribute location and texture unit defines.
	AnnotationArgLayout AnnotationArg = "layout"
)

var (
	validIncludes = []AnnotationArg{AnnotationArgMaterial}
	validDefines  = []AnnotationArg{AnnotationArgLayout}
)

// parseAnnotation attempts to parse a single line of GLSL source as an @oxy: annotation.
//
// Parameters:
//   - line: the raw source line
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
		return nil, fmt.Errorf("line %d: empty @oxy annotation", lineNum)
	}
	if len(args) != 2 {
		return nil, fmt.Errorf("line %d: @oxy %s annotation requires exactly one argument", lineNum, args[0])
	}

	arg := AnnotationArg(args[1])
	switch AnnotationType(args[0]) {
	case annotationTypeInclude:
		if !slices.Contains(validIncludes, arg) {
			return nil, fmt.Errorf("line %d: unknown chunk %q in @oxy include annotation", lineNum, arg)
		}
		return &Annotation{Type: annotationTypeInclude, Arg: arg, Line: lineNum}, nil
	case annotationTypeDefine:
		if !slices.Contains(validDefines, arg) {
			return nil, fmt.Errorf("line %d: unknown define set %q in @oxy define annotation", lineNum, arg)
		}
		return &Annotation{Type: annotationTypeDefine, Arg: arg, Line: lineNum}, nil
	default:
		return nil, fmt.Errorf("line %d: unknown @oxy annotation type %q", lineNum, args[0])
	}
}
