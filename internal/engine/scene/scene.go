// Package scene is the host boundary of the bridge. It owns the handle
// registry and the pick engine and exposes every operation a host runtime
// performs on native objects through opaque handles.
package scene

import (
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/Faultbox/gazebridge/internal/bridge"
	"github.com/Faultbox/gazebridge/internal/engine/entity"
	"github.com/Faultbox/gazebridge/internal/engine/mesh"
	"github.com/Faultbox/gazebridge/internal/engine/picking"
	"github.com/Faultbox/gazebridge/pkg/math"
)

// Options contains scene configuration options.
type Options struct {
	Picking picking.Options

	// BoundsPrefilter enables the bounding box rejection on mesh pointees
	// created by the scene.
	BoundsPrefilter bool

	// Eye is the world position gaze rays start from.
	Eye math.Vec3
}

// DefaultOptions returns a default scene configuration.
func DefaultOptions() Options {
	return Options{BoundsPrefilter: true}
}

// Scene manages native objects behind handles.
//
// Mutating calls take the write lock and queries take the read lock, so a
// query never observes an object that is halfway through destruction.
type Scene struct {
	mu sync.RWMutex

	opts     Options
	registry *bridge.Registry
	picker   *picking.PickEngine
	log      *zap.Logger
}

// New creates an empty scene.
func New(opts Options, log *zap.Logger) *Scene {
	if log == nil {
		log = zap.NewNop()
	}
	return &Scene{
		opts:     opts,
		registry: bridge.NewRegistry(log.Named("bridge")),
		picker:   picking.NewPickEngine(opts.Picking, log.Named("picking")),
		log:      log,
	}
}

// Registry exposes the handle table, mainly for diagnostics.
func (s *Scene) Registry() *bridge.Registry {
	return s.registry
}

// WorldTransform implements picking.TransformSource by resolving owner as an
// entity handle.
func (s *Scene) WorldTransform(owner bridge.Handle) (math.Mat4, bool) {
	e, err := bridge.Resolve[*entity.Entity](s.registry, owner)
	if err != nil {
		return math.Mat4{}, false
	}
	return e.WorldModelMatrix(), true
}

// CreateMesh validates and stores immutable geometry.
func (s *Scene) CreateMesh(positions [][3]float32, indices []uint32) (bridge.Handle, error) {
	m, err := mesh.New(positions, indices)
	if err != nil {
		return bridge.Null, err
	}
	return s.addMesh(m), nil
}

func (s *Scene) addMesh(m *mesh.Mesh) bridge.Handle {
	s.mu.Lock()
	defer s.mu.Unlock()
	h := s.registry.Create(m)
	s.log.Debug("mesh created", zap.Stringer("handle", h),
		zap.Int("vertices", m.VertexCount()), zap.Int("triangles", m.TriangleCount()))
	return h
}

// CreateEntity creates a visible entity with an identity transform.
func (s *Scene) CreateEntity() bridge.Handle {
	s.mu.Lock()
	defer s.mu.Unlock()
	h := s.registry.Create(entity.New())
	s.log.Debug("entity created", zap.Stringer("handle", h))
	return h
}

// CreateMeshEyePointee creates an enabled, unregistered pointee bound to
// meshHandle. Null leaves it unbound.
func (s *Scene) CreateMeshEyePointee(meshHandle bridge.Handle) (bridge.Handle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var m *mesh.Mesh
	if !meshHandle.IsNull() {
		var err error
		if m, err = bridge.Resolve[*mesh.Mesh](s.registry, meshHandle); err != nil {
			return bridge.Null, fmt.Errorf("create mesh pointee: %w", err)
		}
	}
	p := picking.NewMeshEyePointee(m, s)
	p.SetBoundsPrefilter(s.opts.BoundsPrefilter)
	return s.registry.Create(p), nil
}

// CreateSphereEyePointee creates an enabled, unregistered sphere pointee.
func (s *Scene) CreateSphereEyePointee(center [3]float32, radius float32) (bridge.Handle, error) {
	p, err := picking.NewSphereEyePointee(math.V3(center), radius, s)
	if err != nil {
		return bridge.Null, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.registry.Create(p), nil
}

// Destroy releases the object behind h. Pointees are deregistered first and
// an entity's picking pointee goes with it. Destroying an unknown or already
// destroyed handle returns false.
func (s *Scene) Destroy(h bridge.Handle) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.destroyLocked(h)
}

func (s *Scene) destroyLocked(h bridge.Handle) bool {
	obj, err := s.registry.Lookup(h)
	if err != nil {
		s.log.Warn("destroy of unknown handle ignored", zap.Stringer("handle", h))
		return false
	}

	switch o := obj.(type) {
	case picking.EyePointee:
		s.picker.Deregister(h)
		s.detachLocked(h, o)
	case *entity.Entity:
		if pp := o.PickPointee(); !pp.IsNull() {
			s.picker.Deregister(pp)
			s.registry.Destroy(pp)
		}
	}
	return s.registry.Destroy(h)
}

// detachLocked clears p's owner and, when p is the owner's picking pointee,
// the owner's record of it.
func (s *Scene) detachLocked(h bridge.Handle, p picking.EyePointee) {
	owner := p.Owner()
	if owner.IsNull() {
		return
	}
	p.SetOwner(bridge.Null)
	if e, err := bridge.Resolve[*entity.Entity](s.registry, owner); err == nil && e.PickPointee() == h {
		e.SetPickPointee(bridge.Null)
	}
}

func (s *Scene) resolveEntity(h bridge.Handle) (*entity.Entity, error) {
	return bridge.Resolve[*entity.Entity](s.registry, h)
}

func (s *Scene) resolvePointee(h bridge.Handle) (picking.EyePointee, error) {
	return bridge.Resolve[picking.EyePointee](s.registry, h)
}

// resolveMeshOrNull resolves a mesh handle, mapping Null to a nil mesh.
func (s *Scene) resolveMeshOrNull(h bridge.Handle) (*mesh.Mesh, error) {
	if h.IsNull() {
		return nil, nil
	}
	return bridge.Resolve[*mesh.Mesh](s.registry, h)
}

// IsNotFound reports whether err came from an absent or destroyed handle.
func IsNotFound(err error) bool {
	return errors.Is(err, bridge.ErrNotFound)
}
