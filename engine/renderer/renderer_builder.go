package renderer

import (
	"github.com/Carmen-Shannon/oxy-gl/engine/camera"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/arena"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/shader"

	"github.com/go-gl/mathgl/mgl32"
)

// RendererBuilderOption is a functional option applied to a renderer during construction via NewRenderer.
type RendererBuilderOption func(*renderer)

// WithCamera sets the camera the frame is viewed through. Without it the renderer creates a camera with
// the default 74 degree reversed-Z projection and an identity view.
//
// Parameters:
//   - c: the camera to use
//
// Returns:
//   - RendererBuilderOption: a function that applies the camera option to a renderer
func WithCamera(c camera.Camera) RendererBuilderOption {
	return func(r *renderer) {
		r.camera = c
	}
}

// WithClearColor sets the color the framebuffer is cleared to every frame.
//
// Parameters:
//   - color: RGBA clear color
//
// Returns:
//   - RendererBuilderOption: a function that applies the clear color option to a renderer
func WithClearColor(color mgl32.Vec4) RendererBuilderOption {
	return func(r *renderer) {
		r.clearColor = color
	}
}

// WithGrowthPolicy sets the growth policy of the batcher's instance arena.
//
// Parameters:
//   - policy: arena.GrowExact or arena.GrowGeometric
//
// Returns:
//   - RendererBuilderOption: a function that applies the growth policy option to a renderer
func WithGrowthPolicy(policy arena.GrowthPolicy) RendererBuilderOption {
	return func(r *renderer) {
		r.growth = policy
	}
}

// WithProgramOptions passes options through to the mesh program.
//
// Parameters:
//   - options: the shader program options
//
// Returns:
//   - RendererBuilderOption: a function that applies the program options to a renderer
func WithProgramOptions(options ...shader.ProgramBuilderOption) RendererBuilderOption {
	return func(r *renderer) {
		r.programOptions = append(r.programOptions, options...)
	}
}

// WithCullFace enables or disables back-face culling. Culling is enabled by default.
//
// Parameters:
//   - enabled: whether back faces are culled
//
// Returns:
//   - RendererBuilderOption: a function that applies the culling option to a renderer
func WithCullFace(enabled bool) RendererBuilderOption {
	return func(r *renderer) {
		r.cullFace = enabled
	}
}

// WithSpin rotates every asset around the world Y axis at a constant rate.
//
// Parameters:
//   - radiansPerSecond: the spin rate, 0 to disable
//
// Returns:
//   - RendererBuilderOption: a function that applies the spin option to a renderer
func WithSpin(radiansPerSecond float32) RendererBuilderOption {
	return func(r *renderer) {
		r.spin = radiansPerSecond
	}
}
