package shader

import "github.com/Carmen-Shannon/oxy-gl/engine/gpu"

type programConfig struct {
	vertex   string
	fragment string
	ceiling  gpu.Limits
	strict   bool
}

// ProgramBuilderOption is a functional option for configuring a Program via NewProgram.
type ProgramBuilderOption func(*programConfig)

// WithVertexSource is an option builder that replaces the embedded vertex source.
// The source may carry @oxy: annotations.
//
// Parameters:
//   - source: GLSL vertex shader source
//
// Returns:
//   - ProgramBuilderOption: a function that applies the vertex source to a program
func WithVertexSource(source string) ProgramBuilderOption {
	return func(c *programConfig) {
		c.vertex = source
	}
}

// WithFragmentSource is an option builder that replaces the embedded fragment source.
//
// Parameters:
//   - source: GLSL fragment shader source
//
// Returns:
//   - ProgramBuilderOption: a function that applies the fragment source to a program
func WithFragmentSource(source string) ProgramBuilderOption {
	return func(c *programConfig) {
		c.fragment = source
	}
}

// WithPortableCeiling is an option builder that replaces gpu.PortableLimits as the ceiling checked in
// debug builds, and turns the check on or off regardless of the build tag.
//
// Parameters:
//   - ceiling: the limits a program must stay within
//   - strict: whether exceeding the ceiling panics
//
// Returns:
//   - ProgramBuilderOption: a function that applies the ceiling to a program
func WithPortableCeiling(ceiling gpu.Limits, strict bool) ProgramBuilderOption {
	return func(c *programConfig) {
		c.ceiling = ceiling
		c.strict = strict
	}
}
