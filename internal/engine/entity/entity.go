// Package entity implements scene nodes: a world transform plus the lazily
// built surface definition the renderer draws.
package entity

import (
	"sync"
	"sync/atomic"

	"github.com/Faultbox/gazebridge/internal/bridge"
	"github.com/Faultbox/gazebridge/internal/engine/mesh"
	"github.com/Faultbox/gazebridge/pkg/math"
)

// Material is the shading input for a surface.
type Material struct {
	Name      string     `yaml:"name"`
	Color     [4]float32 `yaml:"color"`
	Opacity   float32    `yaml:"opacity"`
	TextureID int        `yaml:"texture_id"`
}

// DefaultMaterial returns opaque white with no texture.
func DefaultMaterial() Material {
	return Material{
		Name:      "default",
		Color:     [4]float32{1, 1, 1, 1},
		Opacity:   1,
		TextureID: -1,
	}
}

// SurfaceDef is the renderer-facing description of an entity's geometry and
// material. A SurfaceDef is never modified after it is built; changes to the
// entity produce a new one.
type SurfaceDef struct {
	Serial     uint64 // unique per build
	Mesh       *mesh.Mesh
	Material   Material
	IndexCount int
	Bounds     mesh.Bounds
}

// Drawable reports whether the definition has live geometry to submit.
func (s *SurfaceDef) Drawable() bool {
	return s.Mesh != nil && !s.Mesh.Released() && !s.Mesh.Empty()
}

var buildSerial atomic.Uint64

// Entity represents a scene node.
type Entity struct {
	mu sync.Mutex

	modelMatrix math.Mat4
	mesh        *mesh.Mesh
	material    Material
	visible     bool

	surfaceDef *SurfaceDef

	// Default pointee created by picking enable; Null when picking is off.
	pickPointee bridge.Handle
}

// New creates a visible entity with an identity transform and the default material.
func New() *Entity {
	return &Entity{
		modelMatrix: math.Identity(),
		material:    DefaultMaterial(),
		visible:     true,
	}
}

// Kind implements bridge.Object.
func (e *Entity) Kind() bridge.Kind {
	return bridge.KindEntity
}

// Release drops the entity's references when its handle is destroyed.
func (e *Entity) Release() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.mesh = nil
	e.surfaceDef = nil
}

// SetWorldModelMatrix replaces the world transform.
func (e *Entity) SetWorldModelMatrix(m math.Mat4) {
	e.mu.Lock()
	e.modelMatrix = m
	e.mu.Unlock()
}

// WorldModelMatrix returns the current world transform.
func (e *Entity) WorldModelMatrix() math.Mat4 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.modelMatrix
}

// SetMesh associates geometry with the entity. nil clears it.
func (e *Entity) SetMesh(m *mesh.Mesh) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.mesh == m {
		return
	}
	e.mesh = m
	e.surfaceDef = nil
}

// Mesh returns the associated geometry, or nil.
func (e *Entity) Mesh() *mesh.Mesh {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.mesh
}

// SetMaterial replaces the entity's material.
func (e *Entity) SetMaterial(mat Material) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.material == mat {
		return
	}
	e.material = mat
	e.surfaceDef = nil
}

// Material returns the entity's material.
func (e *Entity) Material() Material {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.material
}

// SetVisible shows or hides the entity.
func (e *Entity) SetVisible(v bool) {
	e.mu.Lock()
	e.visible = v
	e.mu.Unlock()
}

// Visible reports whether the entity is shown.
func (e *Entity) Visible() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.visible
}

// InvalidateSurfaceDef drops the cached surface definition so the next
// GetOrCreateSurfaceDef rebuilds it.
func (e *Entity) InvalidateSurfaceDef() {
	e.mu.Lock()
	e.surfaceDef = nil
	e.mu.Unlock()
}

// GetOrCreateSurfaceDef returns the cached surface definition, building it
// from the current mesh and material on first use. It never returns nil.
func (e *Entity) GetOrCreateSurfaceDef() *SurfaceDef {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.surfaceDef == nil {
		def := &SurfaceDef{
			Serial:   buildSerial.Add(1),
			Mesh:     e.mesh,
			Material: e.material,
		}
		if e.mesh != nil {
			def.IndexCount = e.mesh.IndexCount()
			def.Bounds = e.mesh.Bounds()
		}
		e.surfaceDef = def
	}
	return e.surfaceDef
}

// SurfaceDef returns the cached surface definition, if one has been built.
func (e *Entity) SurfaceDef() (*SurfaceDef, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.surfaceDef, e.surfaceDef != nil
}

// PickPointee returns the default pointee handle set by picking enable.
func (e *Entity) PickPointee() bridge.Handle {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pickPointee
}

// SetPickPointee records the default pointee handle.
func (e *Entity) SetPickPointee(h bridge.Handle) {
	e.mu.Lock()
	e.pickPointee = h
	e.mu.Unlock()
}
