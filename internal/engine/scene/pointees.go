package scene

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/gazebridge/internal/bridge"
	"github.com/Faultbox/gazebridge/internal/engine/picking"
	"github.com/Faultbox/gazebridge/pkg/math"
)

// SetPointeeMesh rebinds mesh pointee p to meshHandle. Null clears the binding.
func (s *Scene) SetPointeeMesh(p, meshHandle bridge.Handle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	mp, err := bridge.Resolve[*picking.MeshEyePointee](s.registry, p)
	if err != nil {
		return fmt.Errorf("set pointee mesh: %w", err)
	}
	m, err := s.resolveMeshOrNull(meshHandle)
	if err != nil {
		return fmt.Errorf("set pointee mesh: %w", err)
	}
	mp.SetMesh(m)
	return nil
}

// SetPointeeEnabled toggles whether p takes part in queries.
func (s *Scene) SetPointeeEnabled(p bridge.Handle, enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	pt, err := s.resolvePointee(p)
	if err != nil {
		return fmt.Errorf("set pointee enabled: %w", err)
	}
	pt.SetEnabled(enabled)
	return nil
}

// AttachPointee makes entity e the owner of p. Hits on p are then computed in
// e's world space and reported with e as owner.
func (s *Scene) AttachPointee(e, p bridge.Handle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.resolveEntity(e); err != nil {
		return fmt.Errorf("attach pointee: %w", err)
	}
	pt, err := s.resolvePointee(p)
	if err != nil {
		return fmt.Errorf("attach pointee: %w", err)
	}
	pt.SetOwner(e)
	return nil
}

// DetachPointee clears the owner of p so it is tested in world space.
func (s *Scene) DetachPointee(p bridge.Handle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	pt, err := s.resolvePointee(p)
	if err != nil {
		return fmt.Errorf("detach pointee: %w", err)
	}
	s.detachLocked(p, pt)
	return nil
}

// RegisterPointee adds p to the pick engine. Registering twice has no effect.
func (s *Scene) RegisterPointee(p bridge.Handle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	pt, err := s.resolvePointee(p)
	if err != nil {
		return fmt.Errorf("register pointee: %w", err)
	}
	s.picker.Register(p, pt)
	return nil
}

// DeregisterPointee removes p from the pick engine. Deregistering a live but
// unregistered pointee is a no-op.
func (s *Scene) DeregisterPointee(p bridge.Handle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.resolvePointee(p); err != nil {
		return fmt.Errorf("deregister pointee: %w", err)
	}
	s.picker.Deregister(p)
	return nil
}

// IsRegistered reports whether p is registered with the pick engine.
func (s *Scene) IsRegistered(p bridge.Handle) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.picker.Registered(p)
}

// QueryAll tests ray against every registered, enabled pointee.
func (s *Scene) QueryAll(ray picking.Ray, sorted bool) []picking.PickResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.picker.QueryAll(ray, sorted)
}

// QueryClosest returns every hit along ray, nearest first.
func (s *Scene) QueryClosest(ray picking.Ray) []picking.PickResult {
	return s.QueryAll(ray, true)
}

// SetPickingEnabled gives entity e a mesh pointee that follows its mesh, is
// owned by e and registered, or destroys that pointee when enabled is false.
func (s *Scene) SetPickingEnabled(e bridge.Handle, enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ent, err := s.resolveEntity(e)
	if err != nil {
		return fmt.Errorf("set picking enabled: %w", err)
	}

	current := ent.PickPointee()
	if !enabled {
		if !current.IsNull() {
			s.destroyLocked(current)
			ent.SetPickPointee(bridge.Null)
		}
		return nil
	}
	if !current.IsNull() {
		return nil
	}

	p := picking.NewMeshEyePointee(ent.Mesh(), s)
	p.SetBoundsPrefilter(s.opts.BoundsPrefilter)
	p.SetOwner(e)
	h := s.registry.Create(p)
	s.picker.Register(h, p)
	ent.SetPickPointee(h)

	s.log.Debug("picking enabled", zap.Stringer("entity", e), zap.Stringer("pointee", h))
	return nil
}

// IsLookingAt reports whether a gaze with head rotation view from the scene
// eye hits entity e's mesh with no other owner's registered pointee strictly
// nearer. Hidden entities, entities without a mesh and non-finite views are
// never looked at.
func (s *Scene) IsLookingAt(e bridge.Handle, view math.Quat) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ent, err := s.resolveEntity(e)
	if err != nil {
		return false, fmt.Errorf("is looking at: %w", err)
	}
	if !ent.Visible() {
		return false, nil
	}

	ray := picking.GazeRay(s.opts.Eye, view)
	ray.MaxDistance = s.opts.Picking.MaxDistance

	hit, ok := picking.IntersectMesh(ent.Mesh(), ent.WorldModelMatrix(), ray, s.opts.BoundsPrefilter)
	if !ok {
		return false, nil
	}

	for _, r := range s.picker.QueryClosest(ray) {
		if r.Distance >= hit.Distance {
			break
		}
		if r.Owner != e {
			return false, nil
		}
	}
	return true, nil
}
