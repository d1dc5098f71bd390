package camera

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-gl/common"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// orbitController is the implementation of OrbitController.
type orbitController struct {
	mu *sync.Mutex

	position mgl32.Vec3
	target   mgl32.Vec3

	radius    float32
	azimuth   float32
	elevation float32

	minRadius    float32
	maxRadius    float32
	minElevation float32
	maxElevation float32

	orbitSpeed       float32
	mouseSensitivity float32
	zoomSpeed        float32
}

var _ OrbitController = &orbitController{}

// NewOrbitController creates an orbit controller looking at the origin from 3 units away, raised by 15
// degrees.
//
// Parameters:
//   - options: functional options to configure the controller
//
// Returns:
//   - OrbitController: the newly created controller
func NewOrbitController(options ...OrbitControllerOption) OrbitController {
	cc := &orbitController{
		mu: &sync.Mutex{},

		radius:    3.0,
		elevation: mgl32.DegToRad(15),

		minRadius:    0.5,
		maxRadius:    50.0,
		minElevation: -math32.Pi/2 + 0.05,
		maxElevation: math32.Pi/2 - 0.05,

		orbitSpeed:       0.05,
		mouseSensitivity: 0.005,
		zoomSpeed:        0.25,
	}
	for _, option := range options {
		option(cc)
	}

	cc.radius = mgl32.Clamp(cc.radius, cc.minRadius, cc.maxRadius)
	cc.elevation = mgl32.Clamp(cc.elevation, cc.minElevation, cc.maxElevation)
	cc.updatePosition()
	return cc
}

// updatePosition recomputes the eye from the spherical coordinates. Caller must hold the mutex.
func (cc *orbitController) updatePosition() {
	sinElev, cosElev := math32.Sincos(cc.elevation)
	sinAzim, cosAzim := math32.Sincos(cc.azimuth)
	cc.position = cc.target.Add(mgl32.Vec3{
		cc.radius * cosElev * sinAzim,
		cc.radius * sinElev,
		cc.radius * cosElev * cosAzim,
	})
}

func (cc *orbitController) Position() mgl32.Vec3 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.position
}

func (cc *orbitController) Target() mgl32.Vec3 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.target
}

func (cc *orbitController) SetTarget(target mgl32.Vec3) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.target = target
	cc.updatePosition()
}

func (cc *orbitController) Radius() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.radius
}

func (cc *orbitController) SetRadius(radius float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.radius = mgl32.Clamp(radius, cc.minRadius, cc.maxRadius)
	cc.updatePosition()
}

func (cc *orbitController) Azimuth() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.azimuth
}

func (cc *orbitController) Elevation() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.elevation
}

func (cc *orbitController) Orbit(dAzimuth, dElevation float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.orbit(dAzimuth, dElevation)
}

// orbit applies an orbit step. Caller must hold the mutex.
func (cc *orbitController) orbit(dAzimuth, dElevation float32) {
	cc.azimuth = math32.Mod(cc.azimuth+dAzimuth, 2*math32.Pi)
	cc.elevation = mgl32.Clamp(cc.elevation+dElevation, cc.minElevation, cc.maxElevation)
	cc.updatePosition()
}

func (cc *orbitController) Zoom(delta float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.zoom(delta)
}

// zoom applies a zoom step. Caller must hold the mutex.
func (cc *orbitController) zoom(delta float32) {
	cc.radius = mgl32.Clamp(cc.radius-delta*cc.zoomSpeed, cc.minRadius, cc.maxRadius)
	cc.updatePosition()
}

func (cc *orbitController) Drag(dx, dy float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.orbit(-dx*cc.mouseSensitivity, dy*cc.mouseSensitivity)
}

func (cc *orbitController) HandleKey(keyCode uint32) bool {
	cc.mu.Lock()
	defer cc.mu.Unlock()

	switch keyCode {
	case common.KeyA, common.KeyLeft:
		cc.orbit(-cc.orbitSpeed, 0)
	case common.KeyD, common.KeyRight:
		cc.orbit(cc.orbitSpeed, 0)
	case common.KeyW, common.KeyUp:
		cc.orbit(0, cc.orbitSpeed)
	case common.KeyS, common.KeyDown:
		cc.orbit(0, -cc.orbitSpeed)
	case common.KeyE:
		cc.zoom(1)
	case common.KeyQ:
		cc.zoom(-1)
	default:
		return false
	}
	return true
}
