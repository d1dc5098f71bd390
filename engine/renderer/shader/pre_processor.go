// pre_processor.go implements the Oxy GLSL shader pre-processor. It scans shader
// source code for @oxy: annotations and replaces them with embedded GLSL chunks or
// #define blocks generated from the layout constants in layout.go.
package shader

import (
	"fmt"
	"strings"
)

// preProcessor is the implementation of the PreProcessor interface.
type preProcessor struct {
	// includes maps chunk arguments to their embedded GLSL source.
	includes map[AnnotationArg]string

	// defines maps define set arguments to the generated #define block.
	defines map[AnnotationArg]string

	// processed accumulates every annotation resolved by the last Process call.
	processed []Annotation
}

// PreProcessor resolves @oxy: annotations in GLSL source.
type PreProcessor interface {
	// Process replaces every @oxy: annotation in source with its expansion. Lines that are not
	// annotations are kept as they are.
	//
	// Parameters:
	//   - source: the raw GLSL source
	//
	// Returns:
	//   - string: the expanded source
	//   - error: an error if any annotation is malformed or names an unknown argument
	Process(source string) (string, error)

	// Annotations returns the annotations resolved by the last Process call, in source order.
	//
	// Returns:
	//   - []Annotation: the resolved annotations
	Annotations() []Annotation
}

var _ PreProcessor = &preProcessor{}

// NewPreProcessor creates a PreProcessor with the material block chunk and the layout define set
// registered.
//
// Returns:
//   - PreProcessor: a ready-to-use pre-processor instance
func NewPreProcessor() PreProcessor {
	return &preProcessor{
		includes: map[AnnotationArg]string{
			AnnotationArgMaterial: GPUMaterialUniformSource,
		},
		defines: map[AnnotationArg]string{
			AnnotationArgLayout: layoutDefines(),
		},
	}
}

func (p *preProcessor) Process(source string) (string, error) {
	p.processed = p.processed[:0]

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

		switch a.Type {
		case annotationTypeInclude:
			out = append(out, strings.TrimRight(p.includes[a.Arg], "\n"))
		case annotationTypeDefine:
			out = append(out, strings.TrimRight(p.defines[a.Arg], "\n"))
		default:
			return "", fmt.Errorf("line %d: unknown annotation type %q", i+1, a.Type)
		}
		p.processed = append(p.processed, *a)
	}
	return strings.Join(out, "\n"), nil
}

func (p *preProcessor) Annotations() []Annotation {
	return p.processed
}

// layoutDefines renders the attribute locations, the texture units and the material block binding
// as GLSL #define lines.
func layoutDefines() string {
	var b strings.Builder
	for _, d := range []struct {
		name  string
		value uint32
	}{
		{"ATTRIB_POSITION", AttribPosition},
		{"ATTRIB_NORMAL", AttribNormal},
		{"ATTRIB_TANGENT", AttribTangent},
		{"ATTRIB_TEXCOORD_0", AttribTexCoord0},
		{"ATTRIB_TEXCOORD_1", AttribTexCoord1},
		{"ATTRIB_COLOR_0", AttribColor0},
		{"ATTRIB_MODEL_TRANSFORM", AttribModelTransform},
		{"UNIT_BASE_COLOR", UnitBaseColor},
		{"UNIT_METALLIC_ROUGHNESS", UnitMetallicRoughness},
		{"UNIT_NORMAL", UnitNormal},
		{"UNIT_OCCLUSION", UnitOcclusion},
		{"UNIT_EMISSIVE", UnitEmissive},
		{"MATERIAL_BLOCK_BINDING", MaterialBlockBinding},
	} {
		fmt.Fprintf(&b, "#define %s %d\n", d.name, d.value)
	}
	return b.String()
}
