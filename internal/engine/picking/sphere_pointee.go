package picking

import (
	"fmt"

	"github.com/Faultbox/gazebridge/internal/bridge"
	"github.com/Faultbox/gazebridge/pkg/math"
)

// SphereEyePointee tests rays against a sphere in its owner's local space.
type SphereEyePointee struct {
	pointeeBase

	center math.Vec3
	radius float32
}

// NewSphereEyePointee creates an enabled sphere pointee. radius must be positive.
func NewSphereEyePointee(center math.Vec3, radius float32, transforms TransformSource) (*SphereEyePointee, error) {
	if !(radius > 0) {
		return nil, fmt.Errorf("%w: sphere radius %v", ErrPrecondition, radius)
	}
	p := &SphereEyePointee{center: center, radius: radius}
	p.init(transforms)
	return p, nil
}

// Kind implements bridge.Object.
func (p *SphereEyePointee) Kind() bridge.Kind {
	return bridge.KindSphereEyePointee
}

// Sphere returns the local-space center and radius.
func (p *SphereEyePointee) Sphere() (math.Vec3, float32) {
	return p.center, p.radius
}

// TestRay implements EyePointee.
func (p *SphereEyePointee) TestRay(ray Ray) (Hit, bool) {
	if !p.Enabled() || !ray.Finite() {
		return Hit{}, false
	}
	world, ok := p.worldTransform()
	if !ok {
		return Hit{}, false
	}
	local, ok := localRay(ray, world)
	if !ok || !local.Finite() {
		return Hit{}, false
	}

	t, hit := local.IntersectSphere(p.center, p.radius)
	if !hit || t > ray.paramLimit() {
		return Hit{}, false
	}
	return Hit{
		Distance: t * ray.Direction.Length(),
		Point:    world.TransformPoint(local.At(t)),
	}, true
}
