// Package coord converts positions and orientations between the physics
// convention (Z up) and the render convention (Y up).
//
// Positions map (x, y, z) to (x, z, -y). Physics quaternions are stored
// scalar-first as (w, x, y, z) and map to the render quaternion
// (-x, -z, y, -w). Both mappings have exact inverses in this package.
package coord

import "github.com/Faultbox/simscene/pkg/math"

// Position reads the i-th 3-vector of buf and returns it in render space.
// An index outside buf yields the zero vector.
func Position(buf []float64, i int) math.Vec3 {
	if i < 0 || i*3+2 >= len(buf) {
		return math.Vec3{}
	}
	return math.V3(buf[i*3], buf[i*3+2], -buf[i*3+1])
}

// Orientation reads the i-th quaternion of buf and returns it in render space.
// An index outside buf yields the identity rotation.
func Orientation(buf []float64, i int) math.Quat {
	if i < 0 || i*4+3 >= len(buf) {
		return math.QuatIdentity()
	}
	return math.Quat{
		X: float32(-buf[i*4+1]),
		Y: float32(-buf[i*4+3]),
		Z: float32(buf[i*4+2]),
		W: float32(-buf[i*4]),
	}
}

// Vec converts a single physics-space vector.
func Vec(v [3]float64) math.Vec3 {
	return Position(v[:], 0)
}

// Quat converts a single physics-space quaternion stored (w, x, y, z).
func Quat(q [4]float64) math.Quat {
	return Orientation(q[:], 0)
}

// PhysicsPosition is the inverse of Position.
func PhysicsPosition(v math.Vec3) [3]float64 {
	return [3]float64{float64(v.X), float64(-v.Z), float64(v.Y)}
}

// PhysicsOrientation is the inverse of Orientation, returning (w, x, y, z).
func PhysicsOrientation(q math.Quat) [4]float64 {
	return [4]float64{float64(-q.W), float64(-q.X), float64(q.Z), float64(-q.Y)}
}

// Extent swizzles a size vector (box half extents, ellipsoid radii).
// Sizes are unsigned so no axis is negated.
func Extent(size [3]float64) math.Vec3 {
	return math.V3(size[0], size[2], size[1])
}

// Point32 converts a float32 physics-space point or direction, as stored in
// mesh vertex and normal buffers.
func Point32(x, y, z float32) [3]float32 {
	return [3]float32{x, z, -y}
}
