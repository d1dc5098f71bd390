package scene

import (
	"github.com/Carmen-Shannon/oxy-gl/common"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Interpolation selects how a channel blends between keyframes.
type Interpolation int

const (
	InterpolationLinear Interpolation = iota
	InterpolationStep
	InterpolationCubicSpline
)

// Path is the node property a channel animates.
type Path int

const (
	PathTranslation Path = iota
	PathRotation
	PathScale
)

// Channel animates one property of one node. Values hold xyz for translation and scale and an xyzw
// quaternion for rotation. InTangents and OutTangents are only set for cubic spline channels and are
// parallel to Values.
type Channel struct {
	Node          int
	Path          Path
	Interpolation Interpolation
	Times         []float32
	Values        []mgl32.Vec4
	InTangents    []mgl32.Vec4
	OutTangents   []mgl32.Vec4
}

// Animation is a named set of channels sharing one timeline.
type Animation struct {
	Name     string
	Channels []Channel
	// Duration is the largest keyframe time of any channel.
	Duration float32
}

// TransformOverrides supplies replacement local transforms for some nodes during traversal.
type TransformOverrides interface {
	// LocalTransform returns the transform that replaces the local transform of node.
	//
	// Parameters:
	//   - node: the node index
	//
	// Returns:
	//   - mgl32.Mat4: the replacement local transform
	//   - bool: false when node keeps its own transform
	LocalTransform(node int) (mgl32.Mat4, bool)
}

// Pose is a set of local transforms keyed by node index.
type Pose map[int]mgl32.Mat4

func (p Pose) LocalTransform(node int) (mgl32.Mat4, bool) {
	m, ok := p[node]
	return m, ok
}

type trs struct {
	t mgl32.Vec3
	r mgl32.Quat
	s mgl32.Vec3
}

// Sample evaluates every channel at time t, looping over Duration, and writes the composed local transform
// of each animated node into dst. Properties a node has no channel for keep their rest value.
//
// Parameters:
//   - t: the playback time in seconds
//   - rest: the node table providing rest translation, rotation and scale
//   - dst: the pose to fill, cleared first
func (a *Animation) Sample(t float32, rest []Node, dst Pose) {
	clear(dst)
	if a.Duration > 0 {
		t = math32.Mod(t, a.Duration)
		if t < 0 {
			t += a.Duration
		}
	}

	work := make(map[int]*trs, len(a.Channels))
	for i := range a.Channels {
		ch := &a.Channels[i]
		if ch.Node < 0 || ch.Node >= len(rest) || len(ch.Times) == 0 {
			continue
		}
		w, ok := work[ch.Node]
		if !ok {
			n := rest[ch.Node]
			w = &trs{t: n.Translation, r: n.Rotation, s: n.Scale}
			work[ch.Node] = w
		}

		v := ch.sample(t)
		switch ch.Path {
		case PathTranslation:
			w.t = v.Vec3()
		case PathRotation:
			w.r = common.QuatFromXYZW([4]float32(v))
		case PathScale:
			w.s = v.Vec3()
		}
	}

	for node, w := range work {
		dst[node] = common.ComposeTRS(w.t, w.r, w.s)
	}
}

// sample evaluates the channel at t, clamping outside the keyframe range.
func (c *Channel) sample(t float32) mgl32.Vec4 {
	last := len(c.Times) - 1
	if t <= c.Times[0] {
		return c.Values[0]
	}
	if t >= c.Times[last] {
		return c.Values[last]
	}

	k := 0
	for k < last-1 && c.Times[k+1] <= t {
		k++
	}
	t0, t1 := c.Times[k], c.Times[k+1]
	dt := t1 - t0
	u := (t - t0) / dt

	switch c.Interpolation {
	case InterpolationStep:
		return c.Values[k]
	case InterpolationCubicSpline:
		u2 := u * u
		u3 := u2 * u
		p0, p1 := c.Values[k], c.Values[k+1]
		m0 := c.OutTangents[k].Mul(dt)
		m1 := c.InTangents[k+1].Mul(dt)
		v := p0.Mul(2*u3 - 3*u2 + 1).
			Add(m0.Mul(u3 - 2*u2 + u)).
			Add(p1.Mul(-2*u3 + 3*u2)).
			Add(m1.Mul(u3 - u2))
		if c.Path == PathRotation {
			v = v.Normalize()
		}
		return v
	default:
		if c.Path == PathRotation {
			q0 := common.QuatFromXYZW([4]float32(c.Values[k]))
			q1 := common.QuatFromXYZW([4]float32(c.Values[k+1]))
			q := mgl32.QuatSlerp(q0, q1, u)
			return mgl32.Vec4{q.V[0], q.V[1], q.V[2], q.W}
		}
		return c.Values[k].Add(c.Values[k+1].Sub(c.Values[k]).Mul(u))
	}
}
