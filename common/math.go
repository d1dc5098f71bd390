package common

import (
	"unsafe"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// SliceToBytes converts any slice to a byte slice for GPU buffer uploads.
// Uses unsafe pointer operations to create a view into the original data.
// WARNING: The returned slice shares memory with the input - do not modify.
//
// Parameters:
//   - data: source slice of any type
//
// Returns:
//   - []byte: byte slice view of the input data, or nil if input is empty
func SliceToBytes[T any](data []T) []byte {
	if len(data) == 0 {
		return nil
	}
	var zero T
	size := unsafe.Sizeof(zero)
	totalBytes := int(size) * len(data)
	return unsafe.Slice((*byte)(unsafe.Pointer(&data[0])), totalBytes)
}

// ComposeTRS builds a local transform from translation, rotation and scale as T * R * S.
// All matrices are column-major.
//
// Parameters:
//   - t: translation
//   - r: rotation quaternion
//   - s: per-axis scale
//
// Returns:
//   - mgl32.Mat4: the composed transform
func ComposeTRS(t mgl32.Vec3, r mgl32.Quat, s mgl32.Vec3) mgl32.Mat4 {
	return mgl32.Translate3D(t[0], t[1], t[2]).
		Mul4(r.Normalize().Mat4()).
		Mul4(mgl32.Scale3D(s[0], s[1], s[2]))
}

// QuatFromXYZW converts a quaternion stored as (x, y, z, w) into an mgl32.Quat.
func QuatFromXYZW(q [4]float32) mgl32.Quat {
	return mgl32.Quat{W: q[3], V: mgl32.Vec3{q[0], q[1], q[2]}}
}

// ReversedZPerspective creates a right-handed GL perspective projection with the depth range reversed:
// the near plane maps to depth 1 and the far plane to depth 0. Pair it with a depth clear of 0 and a
// GREATER depth test.
//
// Parameters:
//   - fovY: vertical field of view in radians
//   - aspect: viewport aspect ratio (width/height)
//   - near: near clipping plane distance (must be > 0)
//   - far: far clipping plane distance (must be > near)
//
// Returns:
//   - mgl32.Mat4: the projection matrix
func ReversedZPerspective(fovY, aspect, near, far float32) mgl32.Mat4 {
	return mgl32.Perspective(fovY, aspect, far, near)
}

// IsMirrored reports whether m flips handedness, which reverses the winding of every triangle it transforms.
func IsMirrored(m mgl32.Mat4) bool {
	return m.Det() < 0
}

// MipLevelCount returns the number of levels in a full mip chain that halves both sides until the smaller
// side reaches 1.
//
// Parameters:
//   - width: base level width in pixels
//   - height: base level height in pixels
//
// Returns:
//   - int: floor(log2(min(width, height))) + 1, or 1 for degenerate sizes
func MipLevelCount(width, height int) int {
	smaller := min(width, height)
	if smaller <= 1 {
		return 1
	}
	return int(math32.Floor(math32.Log2(float32(smaller)))) + 1
}
