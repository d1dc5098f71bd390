package camera

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-gl/common"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// windowDepth projects a view-space point and returns its depth after the default [0, 1] depth range.
func windowDepth(proj mgl32.Mat4, viewZ float32) float32 {
	clip := proj.Mul4x1(mgl32.Vec4{0, 0, viewZ, 1})
	return (clip.Z()/clip.W() + 1) / 2
}

func TestCameraDefaultsAreReversedZ(t *testing.T) {
	c := NewCamera(WithAspect(16.0 / 9.0))

	assert.InDelta(t, mgl32.DegToRad(74), c.Fov(), 1e-6)
	assert.InDelta(t, 0.3, c.Near(), 1e-6)
	assert.InDelta(t, 100, c.Far(), 1e-6)
	assert.Equal(t, mgl32.Ident4(), c.ViewMatrix())

	proj := c.ProjectionMatrix()
	assert.InDelta(t, 1, windowDepth(proj, -0.3), 1e-4, "near plane maps to depth 1")
	assert.InDelta(t, 0, windowDepth(proj, -100), 1e-4, "far plane maps to depth 0")
	assert.Greater(t, windowDepth(proj, -1), windowDepth(proj, -2), "closer points have greater depth")
}

func TestCameraSetAspectIgnoresDegenerateRatios(t *testing.T) {
	c := NewCamera()
	before := c.ProjectionMatrix()

	c.SetAspect(0)
	assert.Equal(t, before, c.ProjectionMatrix())

	c.SetAspect(2)
	assert.InDelta(t, 2, c.Aspect(), 1e-6)
	assert.NotEqual(t, before, c.ProjectionMatrix())
}

func TestCameraViewFollowsController(t *testing.T) {
	ctrl := NewOrbitController(WithRadius(5), WithElevation(0))
	c := NewCamera(WithController(ctrl))

	eye := c.ViewMatrix().Mul4x1(ctrl.Position().Vec4(1))
	assert.InDelta(t, 0, eye.Vec3().Len(), 1e-4, "the eye is the view-space origin")

	target := c.ViewMatrix().Mul4x1(ctrl.Target().Vec4(1))
	assert.InDelta(t, -5, target.Z(), 1e-4, "the target lies down -Z")

	ctrl.Orbit(math32.Pi/2, 0)
	c.Update()
	eye = c.ViewMatrix().Mul4x1(ctrl.Position().Vec4(1))
	assert.InDelta(t, 0, eye.Vec3().Len(), 1e-4)

	c.SetController(nil)
	assert.Equal(t, mgl32.Ident4(), c.ViewMatrix())
}

func TestOrbitControllerPositionOnSphere(t *testing.T) {
	ctrl := NewOrbitController(WithTarget(mgl32.Vec3{1, 2, 3}), WithRadius(4), WithElevation(0), WithAzimuth(0))

	assert.True(t, ctrl.Position().ApproxEqual(mgl32.Vec3{1, 2, 7}))

	ctrl.Orbit(math32.Pi/2, 0)
	assert.True(t, ctrl.Position().ApproxEqualThreshold(mgl32.Vec3{5, 2, 3}, 1e-4))
	assert.InDelta(t, 4, ctrl.Position().Sub(ctrl.Target()).Len(), 1e-4)
}

func TestOrbitControllerClampsRadiusAndElevation(t *testing.T) {
	ctrl := NewOrbitController(WithRadiusBounds(1, 10), WithRadius(2), WithZoomSpeed(1))

	ctrl.Zoom(5)
	assert.InDelta(t, 1, ctrl.Radius(), 1e-6)
	ctrl.Zoom(-50)
	assert.InDelta(t, 10, ctrl.Radius(), 1e-6)

	ctrl.Orbit(0, 10)
	assert.Less(t, ctrl.Elevation(), math32.Pi/2)
	ctrl.Orbit(0, -20)
	assert.Greater(t, ctrl.Elevation(), -math32.Pi/2)
}

func TestOrbitControllerHandleKey(t *testing.T) {
	ctrl := NewOrbitController(WithOrbitSpeed(0.1), WithZoomSpeed(0.5), WithRadius(3))

	require.True(t, ctrl.HandleKey(common.KeyD))
	assert.InDelta(t, 0.1, ctrl.Azimuth(), 1e-6)
	require.True(t, ctrl.HandleKey(common.KeyLeft))
	assert.InDelta(t, 0, ctrl.Azimuth(), 1e-6)

	elevation := ctrl.Elevation()
	require.True(t, ctrl.HandleKey(common.KeyUp))
	assert.InDelta(t, elevation+0.1, ctrl.Elevation(), 1e-6)

	require.True(t, ctrl.HandleKey(common.KeyE))
	assert.InDelta(t, 2.5, ctrl.Radius(), 1e-6)

	assert.False(t, ctrl.HandleKey(common.KeySpace))
}
