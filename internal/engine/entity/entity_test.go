package entity

import (
	"sync"
	"testing"

	"github.com/Faultbox/gazebridge/internal/engine/mesh"
	"github.com/Faultbox/gazebridge/pkg/math"
)

func TestNewEntityDefaults(t *testing.T) {
	e := New()
	if !e.WorldModelMatrix().IsIdentity() {
		t.Error("new entity should have identity transform")
	}
	if !e.Visible() {
		t.Error("new entity should be visible")
	}
	if e.Material() != DefaultMaterial() {
		t.Errorf("Material() = %+v, want default", e.Material())
	}
	if _, ok := e.SurfaceDef(); ok {
		t.Error("SurfaceDef() should be absent before first build")
	}
}

func TestSetWorldModelMatrix(t *testing.T) {
	e := New()
	m := math.Translate(1, 2, 3)
	e.SetWorldModelMatrix(m)
	if e.WorldModelMatrix() != m {
		t.Errorf("WorldModelMatrix() = %v, want %v", e.WorldModelMatrix(), m)
	}
}

func TestGetOrCreateSurfaceDefIsIdempotent(t *testing.T) {
	e := New()
	e.SetMesh(mesh.Quad(1, 1, 0))

	first := e.GetOrCreateSurfaceDef()
	if first == nil {
		t.Fatal("GetOrCreateSurfaceDef returned nil")
	}
	for i := 0; i < 5; i++ {
		if got := e.GetOrCreateSurfaceDef(); got != first {
			t.Fatalf("call %d returned a different definition", i+2)
		}
	}
	cached, ok := e.SurfaceDef()
	if !ok || cached != first {
		t.Error("SurfaceDef() should return the built definition")
	}
	if first.IndexCount != 6 || !first.Drawable() {
		t.Errorf("unexpected definition: %+v", first)
	}
}

func TestGetOrCreateSurfaceDefWithoutMesh(t *testing.T) {
	e := New()
	def := e.GetOrCreateSurfaceDef()
	if def == nil {
		t.Fatal("GetOrCreateSurfaceDef must not return nil without a mesh")
	}
	if def.Drawable() {
		t.Error("definition without mesh should not be drawable")
	}
}

func TestSurfaceDefRebuiltOnChange(t *testing.T) {
	e := New()
	quad := mesh.Quad(1, 1, 0)
	e.SetMesh(quad)
	first := e.GetOrCreateSurfaceDef()

	// Same mesh again is not a change.
	e.SetMesh(quad)
	if e.GetOrCreateSurfaceDef() != first {
		t.Error("re-setting the same mesh should keep the cached definition")
	}

	box := mesh.Box(1, 1, 1)
	e.SetMesh(box)
	if _, ok := e.SurfaceDef(); ok {
		t.Error("SetMesh should invalidate the cached definition")
	}
	second := e.GetOrCreateSurfaceDef()
	if second == first || second.Mesh != box || second.Serial == first.Serial {
		t.Errorf("definition was not rebuilt for new mesh: %+v", second)
	}
	if first.Mesh != quad {
		t.Error("previous definition must not be mutated")
	}

	mat := DefaultMaterial()
	mat.Color = [4]float32{1, 0, 0, 1}
	e.SetMaterial(mat)
	third := e.GetOrCreateSurfaceDef()
	if third == second || third.Material.Color != mat.Color {
		t.Errorf("definition was not rebuilt for new material: %+v", third)
	}
	if second.Material.Color == mat.Color {
		t.Error("previous definition's material must not change")
	}
}

func TestTransformDoesNotInvalidateSurfaceDef(t *testing.T) {
	e := New()
	e.SetMesh(mesh.Quad(1, 1, 0))
	def := e.GetOrCreateSurfaceDef()
	e.SetWorldModelMatrix(math.Translate(0, 0, -3))
	if e.GetOrCreateSurfaceDef() != def {
		t.Error("transform change should not rebuild the surface definition")
	}
}

func TestInvalidateSurfaceDef(t *testing.T) {
	e := New()
	first := e.GetOrCreateSurfaceDef()
	e.InvalidateSurfaceDef()
	if _, ok := e.SurfaceDef(); ok {
		t.Error("SurfaceDef() should be absent after invalidation")
	}
	if e.GetOrCreateSurfaceDef() == first {
		t.Error("expected a fresh definition after invalidation")
	}
}

func TestRelease(t *testing.T) {
	e := New()
	e.SetMesh(mesh.Quad(1, 1, 0))
	e.GetOrCreateSurfaceDef()
	e.Release()
	if e.Mesh() != nil {
		t.Error("Release should drop the mesh reference")
	}
	if _, ok := e.SurfaceDef(); ok {
		t.Error("Release should drop the surface definition")
	}
}

func TestConcurrentSurfaceDefBuild(t *testing.T) {
	e := New()
	e.SetMesh(mesh.Quad(1, 1, 0))

	var wg sync.WaitGroup
	defs := make([]*SurfaceDef, 16)
	for i := range defs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			defs[i] = e.GetOrCreateSurfaceDef()
		}(i)
	}
	wg.Wait()

	for i, d := range defs {
		if d != defs[0] {
			t.Fatalf("goroutine %d saw a different definition", i)
		}
	}
}
