package camera

import "github.com/go-gl/mathgl/mgl32"

// OrbitController moves the eye on a sphere around a target point. It owns the eye and target; the camera
// reads them to build its view matrix. Input handlers call it from the window's event callbacks, the camera
// reads it on the render thread, so every method is safe for concurrent use.
type OrbitController interface {
	// Position returns the eye position in world space.
	Position() mgl32.Vec3

	// Target returns the look-at point in world space.
	Target() mgl32.Vec3

	// SetTarget moves the pivot point and recomputes the eye from the spherical coordinates.
	//
	// Parameters:
	//   - target: world-space pivot
	SetTarget(target mgl32.Vec3)

	// Radius returns the distance between eye and target.
	Radius() float32

	// SetRadius sets the orbit radius, clamped to the radius bounds.
	//
	// Parameters:
	//   - radius: new distance from target
	SetRadius(radius float32)

	// Azimuth returns the horizontal angle around the Y axis in radians. Zero places the eye on +Z.
	Azimuth() float32

	// Elevation returns the angle above the horizontal plane in radians.
	Elevation() float32

	// Orbit rotates the eye around the target. The elevation is clamped to its bounds.
	//
	// Parameters:
	//   - dAzimuth: change of the horizontal angle in radians
	//   - dElevation: change of the vertical angle in radians
	Orbit(dAzimuth, dElevation float32)

	// Zoom moves the eye along the view direction. Positive delta moves closer to the target.
	//
	// Parameters:
	//   - delta: zoom amount, scaled by the zoom speed
	Zoom(delta float32)

	// Drag orbits by a pointer movement in pixels, scaled by the mouse sensitivity.
	//
	// Parameters:
	//   - dx: horizontal movement in pixels
	//   - dy: vertical movement in pixels
	Drag(dx, dy float32)

	// HandleKey applies one keyboard orbit step: A/D or Left/Right orbit horizontally, W/S or Up/Down
	// vertically, Q/E zoom.
	//
	// Parameters:
	//   - keyCode: the key code reported by the window
	//
	// Returns:
	//   - bool: true if the key moved the eye
	HandleKey(keyCode uint32) bool
}
