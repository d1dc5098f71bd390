package loader

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-gl/engine/scene"

	"github.com/go-gl/mathgl/mgl32"
)

// extractAnimations converts the node animations of the document. Channels without a target node and
// morph-weight channels are skipped.
//
// Returns:
//   - []scene.Animation: one animation per document animation
//   - error: error if a channel references missing data or its keyframe counts disagree
func (im *gltfImport) extractAnimations() ([]scene.Animation, error) {
	animations := make([]scene.Animation, 0, len(im.doc.Animations))
	for ai, a := range im.doc.Animations {
		anim := scene.Animation{Name: a.Name}
		for ci, ch := range a.Channels {
			c, ok, err := im.extractChannel(a, ch)
			if err != nil {
				return nil, fmt.Errorf("animation %d channel %d: %w", ai, ci, err)
			}
			if !ok {
				continue
			}
			anim.Duration = max(anim.Duration, c.Times[len(c.Times)-1])
			anim.Channels = append(anim.Channels, c)
		}
		animations = append(animations, anim)
	}
	return animations, nil
}

func (im *gltfImport) extractChannel(a gltfAnimation, ch gltfAnimChannel) (scene.Channel, bool, error) {
	if ch.Target.Node == nil || ch.Target.Path == gltfAnimPathWeights {
		return scene.Channel{}, false, nil
	}
	node := *ch.Target.Node
	if node < 0 || node >= len(im.doc.Nodes) {
		return scene.Channel{}, false, fmt.Errorf("node %d: %w", node, ErrIndexOutOfRange)
	}
	if ch.Sampler < 0 || ch.Sampler >= len(a.Samplers) {
		return scene.Channel{}, false, fmt.Errorf("sampler %d: %w", ch.Sampler, ErrIndexOutOfRange)
	}
	smp := a.Samplers[ch.Sampler]

	c := scene.Channel{Node: node}
	components := 3
	switch ch.Target.Path {
	case gltfAnimPathTranslation:
		c.Path = scene.PathTranslation
	case gltfAnimPathRotation:
		c.Path = scene.PathRotation
		components = 4
	case gltfAnimPathScale:
		c.Path = scene.PathScale
	default:
		return scene.Channel{}, false, nil
	}

	stride := 1
	switch smp.Interpolation {
	case "", gltfAnimInterpolationLinear:
		c.Interpolation = scene.InterpolationLinear
	case gltfAnimInterpolationStep:
		c.Interpolation = scene.InterpolationStep
	case gltfAnimInterpolationCubicSpline:
		c.Interpolation = scene.InterpolationCubicSpline
		stride = 3
	default:
		return scene.Channel{}, false, fmt.Errorf("%w: interpolation %q", ErrUnsupportedAccessor, smp.Interpolation)
	}

	times, err := im.p.readFloats(smp.Input, 1)
	if err != nil {
		return scene.Channel{}, false, fmt.Errorf("input: %w", err)
	}
	if len(times) == 0 {
		return scene.Channel{}, false, fmt.Errorf("input: %w: no keyframes", ErrUnsupportedAccessor)
	}
	raw, err := im.p.readFloats(smp.Output, components)
	if err != nil {
		return scene.Channel{}, false, fmt.Errorf("output: %w", err)
	}
	if len(raw) != len(times)*components*stride {
		return scene.Channel{}, false, fmt.Errorf("output: %w: %d values for %d keyframes", ErrUnsupportedAccessor, len(raw)/components, len(times))
	}

	values := make([]mgl32.Vec4, len(raw)/components)
	for i := range values {
		copy(values[i][:components], raw[i*components:])
	}

	c.Times = times
	if stride == 1 {
		c.Values = values
		return c, true, nil
	}

	// Cubic spline outputs are (in-tangent, value, out-tangent) triplets.
	n := len(times)
	c.InTangents = make([]mgl32.Vec4, n)
	c.Values = make([]mgl32.Vec4, n)
	c.OutTangents = make([]mgl32.Vec4, n)
	for k := range n {
		c.InTangents[k] = values[3*k]
		c.Values[k] = values[3*k+1]
		c.OutTangents[k] = values[3*k+2]
	}
	return c, true, nil
}
