package camera

import "github.com/go-gl/mathgl/mgl32"

// OrbitControllerOption is a functional option for configuring an OrbitController.
type OrbitControllerOption func(*orbitController)

// WithRadius sets the initial orbit radius (distance from target).
//
// Parameters:
//   - radius: distance from the orbit target
//
// Returns:
//   - OrbitControllerOption: functional option to set the radius
func WithRadius(radius float32) OrbitControllerOption {
	return func(cc *orbitController) {
		cc.radius = radius
	}
}

// WithAzimuth sets the initial horizontal angle around the Y axis.
//
// Parameters:
//   - azimuth: horizontal angle in radians (0 = +Z axis)
//
// Returns:
//   - OrbitControllerOption: functional option to set the azimuth
func WithAzimuth(azimuth float32) OrbitControllerOption {
	return func(cc *orbitController) {
		cc.azimuth = azimuth
	}
}

// WithElevation sets the initial vertical angle from the horizontal plane.
//
// Parameters:
//   - elevation: vertical angle in radians (0 = horizontal)
//
// Returns:
//   - OrbitControllerOption: functional option to set the elevation
func WithElevation(elevation float32) OrbitControllerOption {
	return func(cc *orbitController) {
		cc.elevation = elevation
	}
}

// WithTarget sets the look-at/pivot point.
//
// Parameters:
//   - target: world-space pivot
//
// Returns:
//   - OrbitControllerOption: functional option to set the target position
func WithTarget(target mgl32.Vec3) OrbitControllerOption {
	return func(cc *orbitController) {
		cc.target = target
	}
}

// WithRadiusBounds sets the minimum and maximum orbit radius.
//
// Parameters:
//   - min: minimum zoom distance
//   - max: maximum zoom distance
//
// Returns:
//   - OrbitControllerOption: functional option to set radius bounds
func WithRadiusBounds(min, max float32) OrbitControllerOption {
	return func(cc *orbitController) {
		cc.minRadius = min
		cc.maxRadius = max
	}
}

// WithOrbitSpeed sets the keyboard orbit step.
//
// Parameters:
//   - speed: radians per key press
//
// Returns:
//   - OrbitControllerOption: functional option to set orbit speed
func WithOrbitSpeed(speed float32) OrbitControllerOption {
	return func(cc *orbitController) {
		cc.orbitSpeed = speed
	}
}

// WithMouseSensitivity sets the drag sensitivity.
//
// Parameters:
//   - sensitivity: radians per pixel
//
// Returns:
//   - OrbitControllerOption: functional option to set mouse sensitivity
func WithMouseSensitivity(sensitivity float32) OrbitControllerOption {
	return func(cc *orbitController) {
		cc.mouseSensitivity = sensitivity
	}
}

// WithZoomSpeed sets the zoom speed multiplier.
//
// Parameters:
//   - speed: radius change per unit of zoom input
//
// Returns:
//   - OrbitControllerOption: functional option to set zoom speed
func WithZoomSpeed(speed float32) OrbitControllerOption {
	return func(cc *orbitController) {
		cc.zoomSpeed = speed
	}
}
