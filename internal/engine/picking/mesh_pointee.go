package picking

import (
	"sync"

	"github.com/Faultbox/gazebridge/internal/bridge"
	"github.com/Faultbox/gazebridge/internal/engine/mesh"
	"github.com/Faultbox/gazebridge/pkg/math"
)

// MeshEyePointee tests rays against the triangles of a mesh it references but
// does not own.
type MeshEyePointee struct {
	pointeeBase

	mu        sync.RWMutex
	mesh      *mesh.Mesh
	prefilter bool
}

// NewMeshEyePointee creates an enabled pointee bound to m (which may be nil).
// transforms resolves the owner's world matrix; nil means world space.
func NewMeshEyePointee(m *mesh.Mesh, transforms TransformSource) *MeshEyePointee {
	p := &MeshEyePointee{mesh: m, prefilter: true}
	p.init(transforms)
	return p
}

// Kind implements bridge.Object.
func (p *MeshEyePointee) Kind() bridge.Kind {
	return bridge.KindMeshEyePointee
}

// SetMesh rebinds the geometry. nil clears the binding.
func (p *MeshEyePointee) SetMesh(m *mesh.Mesh) {
	p.mu.Lock()
	p.mesh = m
	p.mu.Unlock()
}

// Mesh returns the bound geometry, or nil.
func (p *MeshEyePointee) Mesh() *mesh.Mesh {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.mesh
}

// SetBoundsPrefilter toggles the bounding volume rejection run before the
// triangle scan.
func (p *MeshEyePointee) SetBoundsPrefilter(on bool) {
	p.mu.Lock()
	p.prefilter = on
	p.mu.Unlock()
}

// Release drops the mesh reference when the pointee's handle is destroyed.
func (p *MeshEyePointee) Release() {
	p.SetMesh(nil)
	p.SetEnabled(false)
}

// TestRay implements EyePointee.
func (p *MeshEyePointee) TestRay(ray Ray) (Hit, bool) {
	if !p.Enabled() {
		return Hit{}, false
	}

	p.mu.RLock()
	m, prefilter := p.mesh, p.prefilter
	p.mu.RUnlock()

	world, ok := p.worldTransform()
	if !ok {
		return Hit{}, false
	}
	return IntersectMesh(m, world, ray, prefilter)
}

// sphereSlack widens the bounding sphere so vertices lying exactly on it are
// not lost to rounding.
const sphereSlack = 1.0001

// IntersectMesh returns the nearest hit of a world ray on m placed in the
// world by world. nil, released or empty meshes, non-finite rays and singular
// transforms never hit. With prefilter set the local bounding sphere and box
// are tested before the triangle scan.
//
// The ray is moved into mesh-local space once; because the local direction
// keeps its scale, triangle parameters are directly comparable with the world
// ray. When two triangles give exactly the same distance the one earlier in
// the index list wins.
func IntersectMesh(m *mesh.Mesh, world math.Mat4, ray Ray, prefilter bool) (Hit, bool) {
	if m == nil || m.Released() || m.Empty() || !ray.Finite() {
		return Hit{}, false
	}
	local, ok := localRay(ray, world)
	if !ok || !local.Finite() {
		return Hit{}, false
	}
	limit := ray.paramLimit()

	if prefilter && !boundsMayHit(m, local, limit) {
		return Hit{}, false
	}

	best := limit
	bestTri := -1
	var bestU, bestV float32
	for i, n := 0, m.TriangleCount(); i < n; i++ {
		a, b, c := m.Triangle(i)
		t, u, v, hit := local.IntersectTriangle(a, b, c)
		if hit && t < best {
			best, bestTri, bestU, bestV = t, i, u, v
		}
	}
	if bestTri < 0 {
		return Hit{}, false
	}

	a, b, c := m.Triangle(bestTri)
	localPoint := a.Scale(1 - bestU - bestV).Add(b.Scale(bestU)).Add(c.Scale(bestV))
	return Hit{
		Distance: best * ray.Direction.Length(),
		Point:    world.TransformPoint(localPoint),
	}, true
}

// boundsMayHit rejects rays that miss the mesh's bounding sphere, then its
// bounding box, within limit.
func boundsMayHit(m *mesh.Mesh, local Ray, limit float32) bool {
	center, radius := m.BoundingSphere()
	if _, hit := local.IntersectSphere(center, radius*sphereSlack); !hit && radius > 0 {
		return false
	}

	b := m.Bounds()
	box := AABB{Min: math.V3(b.Min), Max: math.V3(b.Max)}
	if box.Contains(local.Origin) {
		return true
	}
	entry, hit := local.IntersectAABB(box)
	return hit && entry <= limit
}
