// Package mesh provides the immutable triangle geometry that entities draw and
// eye pointees test gaze rays against.
package mesh

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/Faultbox/gazebridge/internal/bridge"
	"github.com/Faultbox/gazebridge/pkg/math"
)

// ErrInvalidGeometry is returned when index data does not describe triangles
// over the given vertices.
var ErrInvalidGeometry = errors.New("mesh: invalid geometry")

// Bounds holds an axis-aligned bounding box in mesh-local space.
type Bounds struct {
	Min [3]float32
	Max [3]float32
}

// Center returns the midpoint of the box.
func (b Bounds) Center() math.Vec3 {
	return math.V3(b.Min).Add(math.V3(b.Max)).Scale(0.5)
}

// Mesh is vertex positions plus a triangle index list. It is never modified
// after New, so concurrent queries may read it freely.
//
// Meshes are owned by whoever created them (normally through the bridge).
// Pointees and entities only reference them; after Release they must treat the
// mesh as absent.
type Mesh struct {
	positions []math.Vec3
	indices   []uint32
	bounds    Bounds
	radius    float32

	released atomic.Bool
}

// New validates and copies the given buffers. An empty index list is allowed
// and produces a mesh that nothing can hit.
func New(positions [][3]float32, indices []uint32) (*Mesh, error) {
	if len(indices)%3 != 0 {
		return nil, fmt.Errorf("%w: index count %d is not a multiple of 3", ErrInvalidGeometry, len(indices))
	}
	for i, idx := range indices {
		if int(idx) >= len(positions) {
			return nil, fmt.Errorf("%w: index %d at %d out of range (%d vertices)", ErrInvalidGeometry, idx, i, len(positions))
		}
	}

	m := &Mesh{
		positions: make([]math.Vec3, len(positions)),
		indices:   append([]uint32(nil), indices...),
	}
	for i, p := range positions {
		m.positions[i] = math.V3(p)
	}
	m.computeBounds()
	return m, nil
}

func (m *Mesh) computeBounds() {
	if len(m.positions) == 0 {
		return
	}
	lo, hi := m.positions[0], m.positions[0]
	for _, p := range m.positions[1:] {
		lo = lo.Min(p)
		hi = hi.Max(p)
	}
	m.bounds = Bounds{Min: lo.Array(), Max: hi.Array()}

	center := m.bounds.Center()
	for _, p := range m.positions {
		if d := p.Distance(center); d > m.radius {
			m.radius = d
		}
	}
}

// Kind implements bridge.Object.
func (m *Mesh) Kind() bridge.Kind {
	return bridge.KindMesh
}

// Release marks the mesh dead. Holders that still reference it stop hitting it.
func (m *Mesh) Release() {
	m.released.Store(true)
}

// Released reports whether the mesh has been destroyed by its owner.
func (m *Mesh) Released() bool {
	return m.released.Load()
}

// VertexCount returns the number of vertex positions.
func (m *Mesh) VertexCount() int {
	return len(m.positions)
}

// IndexCount returns the number of indices.
func (m *Mesh) IndexCount() int {
	return len(m.indices)
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.indices) / 3
}

// Empty reports whether the mesh has no triangles.
func (m *Mesh) Empty() bool {
	return len(m.indices) == 0
}

// Triangle returns the three local-space corners of triangle i.
func (m *Mesh) Triangle(i int) (a, b, c math.Vec3) {
	base := i * 3
	return m.positions[m.indices[base]], m.positions[m.indices[base+1]], m.positions[m.indices[base+2]]
}

// Bounds returns the local-space bounding box.
func (m *Mesh) Bounds() Bounds {
	return m.bounds
}

// BoundingSphere returns a local-space sphere enclosing every vertex.
func (m *Mesh) BoundingSphere() (center math.Vec3, radius float32) {
	return m.bounds.Center(), m.radius
}
