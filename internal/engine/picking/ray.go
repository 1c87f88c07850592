// Package picking provides gaze ray casting against eye pointees.
package picking

import (
	"errors"
	"fmt"

	"github.com/chewxy/math32"

	"github.com/Faultbox/gazebridge/pkg/math"
)

// ErrPrecondition is returned for malformed picking inputs such as a ray with
// no direction.
var ErrPrecondition = errors.New("picking: precondition violated")

// Forward is the view direction of an unrotated head: -Z, as in OpenGL eye space.
var Forward = math.Vec3{Z: -1}

// Ray represents a ray in 3D space with origin and direction.
type Ray struct {
	Origin    math.Vec3
	Direction math.Vec3 // normalized for world rays; scaled after Transform

	// MaxDistance bounds hits along the ray in world units. 0 means unlimited.
	MaxDistance float32
}

// NewRay builds a world ray with a normalized direction.
func NewRay(origin, direction math.Vec3) (Ray, error) {
	l := direction.Length()
	if l == 0 || math32.IsNaN(l) || math32.IsInf(l, 0) {
		return Ray{}, fmt.Errorf("%w: ray direction %v has no usable length", ErrPrecondition, direction)
	}
	return Ray{Origin: origin, Direction: direction.Scale(1 / l)}, nil
}

// GazeRay returns the ray looking out of an eye at position eye with head
// orientation view. A non-finite view yields a ray that fails Finite and
// never hits.
func GazeRay(eye math.Vec3, view math.Quat) Ray {
	return Ray{Origin: eye, Direction: view.Rotate(Forward).Normalize()}
}

// Finite reports whether the ray can be traced: origin and direction are
// finite and the direction is not zero.
func (r Ray) Finite() bool {
	return r.Origin.IsFinite() && r.Direction.IsFinite() && r.Direction.Dot(r.Direction) > 0
}

// At returns the point at parameter t.
func (r Ray) At(t float32) math.Vec3 {
	return r.Origin.Add(r.Direction.Scale(t))
}

// Transform maps the ray through m. The direction is left
// unnormalized so a parameter t names the same point in both spaces.
func (r Ray) Transform(m math.Mat4) Ray {
	return Ray{
		Origin:      m.TransformPoint(r.Origin),
		Direction:   m.TransformDirection(r.Direction),
		MaxDistance: r.MaxDistance,
	}
}

// paramLimit converts MaxDistance into a limit on t.
func (r Ray) paramLimit() float32 {
	if r.MaxDistance <= 0 {
		return math32.Inf(1)
	}
	return r.MaxDistance / r.Direction.Length()
}

// AABB represents an axis-aligned bounding box.
type AABB struct {
	Min math.Vec3
	Max math.Vec3
}

// NewAABB creates an AABB from two corners in any order.
func NewAABB(a, b math.Vec3) AABB {
	return AABB{Min: a.Min(b), Max: a.Max(b)}
}

// Contains reports whether p lies inside or on the box.
func (b AABB) Contains(p math.Vec3) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y &&
		p.Z >= b.Min.Z && p.Z <= b.Max.Z
}

// IntersectAABB tests ray intersection with an axis-aligned bounding box.
// Returns the parameter of the entry point, or of the exit point if the ray
// starts inside the box.
func (r Ray) IntersectAABB(box AABB) (t float32, hit bool) {
	tmin := float32(-math32.MaxFloat32)
	tmax := float32(math32.MaxFloat32)

	origin := r.Origin.Array()
	dir := r.Direction.Array()
	lo := box.Min.Array()
	hi := box.Max.Array()

	for axis := 0; axis < 3; axis++ {
		if dir[axis] == 0 {
			if origin[axis] < lo[axis] || origin[axis] > hi[axis] {
				return 0, false
			}
			continue
		}
		t1 := (lo[axis] - origin[axis]) / dir[axis]
		t2 := (hi[axis] - origin[axis]) / dir[axis]
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tmin = math32.Max(tmin, t1)
		tmax = math32.Min(tmax, t2)
	}

	if tmax < tmin || tmax < 0 {
		return 0, false
	}
	if tmin < 0 {
		return tmax, true
	}
	return tmin, true
}

// detEpsilon rejects rays (nearly) parallel to a triangle's plane.
const detEpsilon = 1e-8

// IntersectTriangle runs the Möller–Trumbore test against triangle (a, b, c).
// It returns the ray parameter and the barycentric weights of b and c. Both
// faces are hit; hits at t <= 0 are behind the origin and rejected.
func (r Ray) IntersectTriangle(a, b, c math.Vec3) (t, u, v float32, hit bool) {
	e1 := b.Sub(a)
	e2 := c.Sub(a)

	p := r.Direction.Cross(e2)
	det := e1.Dot(p)
	if !(det > detEpsilon || det < -detEpsilon) {
		return 0, 0, 0, false
	}
	inv := 1 / det

	s := r.Origin.Sub(a)
	u = s.Dot(p) * inv
	if !(u >= 0 && u <= 1) {
		return 0, 0, 0, false
	}

	q := s.Cross(e1)
	v = r.Direction.Dot(q) * inv
	if !(v >= 0 && u+v <= 1) {
		return 0, 0, 0, false
	}

	t = e2.Dot(q) * inv
	if !(t > 0) {
		return 0, 0, 0, false
	}
	return t, u, v, true
}

// IntersectSphere returns the nearest positive parameter where the ray meets
// the sphere, or the exit parameter if the ray starts inside it.
func (r Ray) IntersectSphere(center math.Vec3, radius float32) (t float32, hit bool) {
	oc := r.Origin.Sub(center)
	a := r.Direction.Dot(r.Direction)
	if !(a > 0) {
		return 0, false
	}
	halfB := oc.Dot(r.Direction)
	c := oc.Dot(oc) - radius*radius

	disc := halfB*halfB - a*c
	if !(disc >= 0) {
		return 0, false
	}
	sq := math32.Sqrt(disc)

	t = (-halfB - sq) / a
	if !(t > 0) {
		t = (-halfB + sq) / a
	}
	if !(t > 0) {
		return 0, false
	}
	return t, true
}
