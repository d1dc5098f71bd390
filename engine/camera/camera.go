// package camera provides the perspective camera the renderer projects through. Projections are
// reversed-Z: the near plane maps to depth 1 and the far plane to depth 0.
package camera

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-gl/common"

	"github.com/go-gl/mathgl/mgl32"
)

type cameraImpl struct {
	mu *sync.Mutex

	up mgl32.Vec3

	fov    float32
	aspect float32
	near   float32
	far    float32

	view       mgl32.Mat4
	projection mgl32.Mat4

	controller OrbitController
}

// Camera defines the interface for the camera system.
// The camera holds perspective settings and computes view and projection matrices. Without a controller
// the view is the identity: the eye sits at the origin looking down -Z.
type Camera interface {
	// Up returns the camera's up vector.
	Up() mgl32.Vec3

	// Fov returns the vertical field of view in radians.
	Fov() float32

	// Aspect returns the aspect ratio (width / height).
	Aspect() float32

	// Near returns the near clipping plane distance.
	Near() float32

	// Far returns the far clipping plane distance.
	Far() float32

	// ViewMatrix returns the current view matrix (column-major).
	//
	// Returns:
	//   - mgl32.Mat4: the view matrix
	ViewMatrix() mgl32.Mat4

	// ProjectionMatrix returns the current reversed-Z projection matrix (column-major).
	//
	// Returns:
	//   - mgl32.Mat4: the projection matrix
	ProjectionMatrix() mgl32.Mat4

	// Controller returns the attached OrbitController, or nil if none is attached.
	Controller() OrbitController

	// Update reads the eye and target from the controller and recomputes the view matrix.
	// Should be called once per frame. Does nothing without a controller.
	Update()

	// SetUp sets the camera's up vector.
	//
	// Parameters:
	//   - up: the up vector
	SetUp(up mgl32.Vec3)

	// SetFov sets the vertical field of view in radians and recomputes the projection.
	//
	// Parameters:
	//   - fov: field of view in radians
	SetFov(fov float32)

	// SetAspect sets the aspect ratio (width / height) and recomputes the projection.
	// Non-positive ratios, as reported for a minimized window, are ignored.
	//
	// Parameters:
	//   - aspect: the aspect ratio
	SetAspect(aspect float32)

	// SetClipPlanes sets the near and far plane distances and recomputes the projection.
	//
	// Parameters:
	//   - near: near plane distance, greater than zero
	//   - far: far plane distance, greater than near
	SetClipPlanes(near, far float32)

	// SetController attaches an OrbitController to the camera.
	//
	// Parameters:
	//   - ctrl: the controller to attach, nil to detach
	SetController(ctrl OrbitController)
}

var _ Camera = &cameraImpl{}

// NewCamera creates a new Camera. The defaults are a 74 degree vertical field of view, a near plane at 0.3
// and a far plane at 100.
//
// Parameters:
//   - options: functional options to configure the camera
//
// Returns:
//   - Camera: the newly created camera
func NewCamera(options ...CameraBuilderOption) Camera {
	c := &cameraImpl{
		mu:     &sync.Mutex{},
		up:     mgl32.Vec3{0, 1, 0},
		fov:    mgl32.DegToRad(74),
		aspect: 1.0,
		near:   0.3,
		far:    100.0,
		view:   mgl32.Ident4(),
	}
	for _, option := range options {
		option(c)
	}
	c.updateProjection()
	c.updateView()
	return c
}

func (c *cameraImpl) Up() mgl32.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.up
}

func (c *cameraImpl) Fov() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fov
}

func (c *cameraImpl) Aspect() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.aspect
}

func (c *cameraImpl) Near() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.near
}

func (c *cameraImpl) Far() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.far
}

func (c *cameraImpl) ViewMatrix() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view
}

func (c *cameraImpl) ProjectionMatrix() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.projection
}

func (c *cameraImpl) Controller() OrbitController {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.controller
}

func (c *cameraImpl) Update() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.updateView()
}

func (c *cameraImpl) SetUp(up mgl32.Vec3) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.up = up
	c.updateView()
}

func (c *cameraImpl) SetFov(fov float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fov = fov
	c.updateProjection()
}

func (c *cameraImpl) SetAspect(aspect float32) {
	if aspect <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.aspect = aspect
	c.updateProjection()
}

func (c *cameraImpl) SetClipPlanes(near, far float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.near = near
	c.far = far
	c.updateProjection()
}

func (c *cameraImpl) SetController(ctrl OrbitController) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.controller = ctrl
	c.updateView()
}

// updateProjection recomputes the projection matrix. Caller must hold the mutex.
func (c *cameraImpl) updateProjection() {
	c.projection = common.ReversedZPerspective(c.fov, c.aspect, c.near, c.far)
}

// updateView recomputes the view matrix from the controller. Caller must hold the mutex.
func (c *cameraImpl) updateView() {
	if c.controller == nil {
		c.view = mgl32.Ident4()
		return
	}
	c.view = mgl32.LookAtV(c.controller.Position(), c.controller.Target(), c.up)
}
