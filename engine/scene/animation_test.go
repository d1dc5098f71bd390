package scene

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func restNodes(n int) []Node {
	nodes := make([]Node, n)
	for i := range nodes {
		nodes[i] = node(NoMesh, mgl32.Ident4())
	}
	return nodes
}

func translationChannel(interp Interpolation) Channel {
	return Channel{
		Node:          0,
		Path:          PathTranslation,
		Interpolation: interp,
		Times:         []float32{0, 1, 2},
		Values:        []mgl32.Vec4{{0, 0, 0, 0}, {2, 0, 0, 0}, {2, 4, 0, 0}},
	}
}

func TestAnimationLinearTranslation(t *testing.T) {
	a := Animation{Channels: []Channel{translationChannel(InterpolationLinear)}, Duration: 2}
	pose := Pose{}

	a.Sample(0.5, restNodes(1), pose)
	require.Contains(t, pose, 0)
	assert.True(t, mgl32.Translate3D(1, 0, 0).ApproxEqual(pose[0]))

	a.Sample(1.5, restNodes(1), pose)
	assert.True(t, mgl32.Translate3D(2, 2, 0).ApproxEqual(pose[0]))
}

func TestAnimationStepHoldsPreviousKey(t *testing.T) {
	a := Animation{Channels: []Channel{translationChannel(InterpolationStep)}, Duration: 2}
	pose := Pose{}

	a.Sample(0.99, restNodes(1), pose)
	assert.True(t, mgl32.Ident4().ApproxEqual(pose[0]))

	a.Sample(1.01, restNodes(1), pose)
	assert.True(t, mgl32.Translate3D(2, 0, 0).ApproxEqual(pose[0]))
}

func TestAnimationLoops(t *testing.T) {
	a := Animation{Channels: []Channel{translationChannel(InterpolationLinear)}, Duration: 2}
	first, looped := Pose{}, Pose{}

	a.Sample(0.5, restNodes(1), first)
	a.Sample(4.5, restNodes(1), looped)
	assert.True(t, first[0].ApproxEqualThreshold(looped[0], 1e-5))
}

func TestAnimationRotationSlerp(t *testing.T) {
	half := math32.Sqrt(0.5)
	a := Animation{
		Channels: []Channel{{
			Node:   0,
			Path:   PathRotation,
			Times:  []float32{0, 1},
			Values: []mgl32.Vec4{{0, 0, 0, 1}, {0, half, 0, half}},
		}},
		Duration: 1,
	}
	pose := Pose{}

	a.Sample(0.5, restNodes(1), pose)
	want := mgl32.HomogRotate3DY(mgl32.DegToRad(45))
	assert.True(t, want.ApproxEqualThreshold(pose[0], 1e-5))
}

func TestAnimationKeepsRestComponents(t *testing.T) {
	nodes := restNodes(2)
	nodes[1].Scale = mgl32.Vec3{3, 3, 3}
	ch := translationChannel(InterpolationLinear)
	ch.Node = 1
	a := Animation{Channels: []Channel{ch}, Duration: 2}
	pose := Pose{}

	a.Sample(1, nodes, pose)
	assert.NotContains(t, pose, 0)
	want := mgl32.Translate3D(2, 0, 0).Mul4(mgl32.Scale3D(3, 3, 3))
	assert.True(t, want.ApproxEqual(pose[1]))
}

func TestAnimationCubicSplinePassesThroughKeys(t *testing.T) {
	ch := translationChannel(InterpolationCubicSpline)
	ch.InTangents = []mgl32.Vec4{{}, {}, {}}
	ch.OutTangents = []mgl32.Vec4{{}, {}, {}}
	a := Animation{Channels: []Channel{ch}, Duration: 2}
	pose := Pose{}

	a.Sample(1, restNodes(1), pose)
	assert.True(t, mgl32.Translate3D(2, 0, 0).ApproxEqual(pose[0]))

	// zero tangents give smoothstep easing, symmetric about the midpoint
	a.Sample(0.5, restNodes(1), pose)
	assert.True(t, mgl32.Translate3D(1, 0, 0).ApproxEqualThreshold(pose[0], 1e-5))
	a.Sample(0.25, restNodes(1), pose)
	assert.InDelta(t, 2*0.15625, pose[0][12], 1e-5)
}

func TestGltfPoseReusesOverrides(t *testing.T) {
	g := NewGltf(nil,
		WithNodes(restNodes(1)),
		WithAnimations([]Animation{{Channels: []Channel{translationChannel(InterpolationLinear)}, Duration: 2}}),
	)

	assert.Nil(t, g.Pose(1, 0))
	first := g.Pose(0, 0.5)
	m, ok := first.LocalTransform(0)
	require.True(t, ok)
	assert.True(t, mgl32.Translate3D(1, 0, 0).ApproxEqual(m))

	second := g.Pose(0, 1)
	m, _ = second.LocalTransform(0)
	assert.True(t, mgl32.Translate3D(2, 0, 0).ApproxEqual(m))
}
