// Package geom holds the small amount of 3D math the dungeon model needs:
// vectors, unit quaternions and axis-aligned boxes.
//
// Vectors and quaternions are aliases of the [mgl32] types so callers can use
// the full mathgl API on them directly.
package geom

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Vec3 is a 3D float vector.
type Vec3 = mgl32.Vec3

// Quat is a rotation quaternion with W the scalar part.
type Quat = mgl32.Quat

// V is shorthand for building a Vec3.
func V(x, y, z float32) Vec3 { return Vec3{x, y, z} }

// Zero returns the origin.
func Zero() Vec3 { return Vec3{} }

// One returns the unit scale (1,1,1).
func One() Vec3 { return Vec3{1, 1, 1} }

// Identity returns the identity rotation.
func Identity() Quat { return mgl32.QuatIdent() }

// Q builds a quaternion from x, y, z, w components, the order used by
// persisted documents.
func Q(x, y, z, w float32) Quat {
	return Quat{W: w, V: Vec3{x, y, z}}
}

// QuatXYZW returns q as an [x, y, z, w] array.
func QuatXYZW(q Quat) [4]float32 {
	return [4]float32{q.V[0], q.V[1], q.V[2], q.W}
}

// Distance returns the Euclidean distance between a and b.
func Distance(a, b Vec3) float32 {
	return a.Sub(b).Len()
}

// Box is an axis-aligned bounding box.
type Box struct {
	Min Vec3
	Max Vec3
}

// BoxFromCenter creates a box from a center point and full size dimensions.
func BoxFromCenter(center, size Vec3) Box {
	half := size.Mul(0.5)
	return Box{
		Min: center.Sub(half),
		Max: center.Add(half),
	}
}

// Intersects reports whether a and b overlap on all three axes. Boxes that
// only touch on a face count as intersecting.
func (a Box) Intersects(b Box) bool {
	return a.Min[0] <= b.Max[0] && a.Max[0] >= b.Min[0] &&
		a.Min[1] <= b.Max[1] && a.Max[1] >= b.Min[1] &&
		a.Min[2] <= b.Max[2] && a.Max[2] >= b.Min[2]
}

// Center returns the midpoint of the box.
func (a Box) Center() Vec3 {
	return a.Min.Add(a.Max).Mul(0.5)
}

// Size returns the full extent of the box on each axis.
func (a Box) Size() Vec3 {
	return a.Max.Sub(a.Min)
}

// Bounds returns the smallest box containing every point. An empty slice
// yields the zero box.
func Bounds(points []Vec3) Box {
	if len(points) == 0 {
		return Box{}
	}
	b := Box{Min: points[0], Max: points[0]}
	for _, p := range points[1:] {
		for i := 0; i < 3; i++ {
			b.Min[i] = min(b.Min[i], p[i])
			b.Max[i] = max(b.Max[i], p[i])
		}
	}
	return b
}
