package scene

import (
	"fmt"

	"github.com/Faultbox/gazebridge/internal/bridge"
	"github.com/Faultbox/gazebridge/internal/engine/entity"
	"github.com/Faultbox/gazebridge/internal/engine/picking"
	"github.com/Faultbox/gazebridge/pkg/math"
)

// SetWorldModelMatrix replaces the world transform of entity e.
func (s *Scene) SetWorldModelMatrix(e bridge.Handle, m math.Mat4) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ent, err := s.resolveEntity(e)
	if err != nil {
		return fmt.Errorf("set world matrix: %w", err)
	}
	ent.SetWorldModelMatrix(m)
	return nil
}

// WorldModelMatrix returns the world transform of entity e.
func (s *Scene) WorldModelMatrix(e bridge.Handle) (math.Mat4, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ent, err := s.resolveEntity(e)
	if err != nil {
		return math.Mat4{}, fmt.Errorf("world matrix: %w", err)
	}
	return ent.WorldModelMatrix(), nil
}

// SetEntityMesh binds geometry to entity e. Null clears it. A picking pointee
// created by SetPickingEnabled follows the new mesh.
func (s *Scene) SetEntityMesh(e, meshHandle bridge.Handle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ent, err := s.resolveEntity(e)
	if err != nil {
		return fmt.Errorf("set entity mesh: %w", err)
	}
	m, err := s.resolveMeshOrNull(meshHandle)
	if err != nil {
		return fmt.Errorf("set entity mesh: %w", err)
	}
	ent.SetMesh(m)

	if pp := ent.PickPointee(); !pp.IsNull() {
		if p, err := bridge.Resolve[*picking.MeshEyePointee](s.registry, pp); err == nil {
			p.SetMesh(m)
		}
	}
	return nil
}

// SetEntityMaterial replaces the material of entity e.
func (s *Scene) SetEntityMaterial(e bridge.Handle, mat entity.Material) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ent, err := s.resolveEntity(e)
	if err != nil {
		return fmt.Errorf("set entity material: %w", err)
	}
	ent.SetMaterial(mat)
	return nil
}

// SetEntityVisible shows or hides entity e.
func (s *Scene) SetEntityVisible(e bridge.Handle, visible bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ent, err := s.resolveEntity(e)
	if err != nil {
		return fmt.Errorf("set entity visible: %w", err)
	}
	ent.SetVisible(visible)
	return nil
}

// GetOrCreateSurfaceDef returns the cached surface definition of entity e,
// building it on first use.
func (s *Scene) GetOrCreateSurfaceDef(e bridge.Handle) (*entity.SurfaceDef, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ent, err := s.resolveEntity(e)
	if err != nil {
		return nil, fmt.Errorf("surface def: %w", err)
	}
	return ent.GetOrCreateSurfaceDef(), nil
}

// SurfaceDef returns the cached surface definition of entity e without
// building one.
func (s *Scene) SurfaceDef(e bridge.Handle) (*entity.SurfaceDef, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ent, err := s.resolveEntity(e)
	if err != nil {
		return nil, false, fmt.Errorf("surface def: %w", err)
	}
	def, ok := ent.SurfaceDef()
	return def, ok, nil
}
