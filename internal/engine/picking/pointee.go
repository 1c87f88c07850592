package picking

import (
	"sync/atomic"

	"github.com/Faultbox/gazebridge/internal/bridge"
	"github.com/Faultbox/gazebridge/pkg/math"
)

// Hit is a single ray intersection in world space.
type Hit struct {
	Distance float32
	Point    math.Vec3
}

// EyePointee is anything a gaze ray can be tested against. Each geometry kind
// is its own implementation.
type EyePointee interface {
	bridge.Object

	// TestRay returns the nearest hit in front of the ray origin. It reports
	// false when the pointee is disabled, has no usable geometry, its owner's
	// transform is unavailable, or the ray misses.
	TestRay(ray Ray) (Hit, bool)

	Enabled() bool
	SetEnabled(enabled bool)

	// Owner is a weak back-reference to the entity the pointee belongs to.
	Owner() bridge.Handle
	SetOwner(owner bridge.Handle)
}

// TransformSource supplies owner world transforms at query time.
type TransformSource interface {
	// WorldTransform returns the owner's world model matrix, or false if the
	// owner no longer exists.
	WorldTransform(owner bridge.Handle) (math.Mat4, bool)
}

// TransformFunc adapts a function to TransformSource.
type TransformFunc func(owner bridge.Handle) (math.Mat4, bool)

// WorldTransform implements TransformSource.
func (f TransformFunc) WorldTransform(owner bridge.Handle) (math.Mat4, bool) {
	return f(owner)
}

// pointeeBase carries the state every pointee variant shares.
type pointeeBase struct {
	enabled    atomic.Bool
	owner      atomic.Uint64
	transforms TransformSource
}

func (b *pointeeBase) init(transforms TransformSource) {
	b.enabled.Store(true)
	b.transforms = transforms
}

func (b *pointeeBase) Enabled() bool {
	return b.enabled.Load()
}

func (b *pointeeBase) SetEnabled(enabled bool) {
	b.enabled.Store(enabled)
}

func (b *pointeeBase) Owner() bridge.Handle {
	return bridge.Handle(b.owner.Load())
}

func (b *pointeeBase) SetOwner(owner bridge.Handle) {
	b.owner.Store(uint64(owner))
}

// worldTransform returns the owner's world matrix. Unowned pointees live in
// world space; an owner that cannot be resolved fails closed.
func (b *pointeeBase) worldTransform() (math.Mat4, bool) {
	owner := b.Owner()
	if owner.IsNull() || b.transforms == nil {
		return math.Identity(), true
	}
	return b.transforms.WorldTransform(owner)
}

// localRay maps a world ray into the space described by world. A singular
// transform fails closed.
func localRay(ray Ray, world math.Mat4) (Ray, bool) {
	if world.IsIdentity() {
		return ray, true
	}
	inv, ok := world.Invert()
	if !ok {
		return Ray{}, false
	}
	return ray.Transform(inv), true
}
