package picking

import (
	"testing"

	"github.com/Faultbox/gazebridge/internal/bridge"
	"github.com/Faultbox/gazebridge/internal/engine/mesh"
	"github.com/Faultbox/gazebridge/pkg/math"
)

func TestQueryClosestOrdersByDistance(t *testing.T) {
	e := NewPickEngine(Options{}, nil)
	far := NewMeshEyePointee(mesh.Quad(1, 1, 10), nil)
	near := NewMeshEyePointee(mesh.Quad(1, 1, 5), nil)

	// Register the far one first so ordering has to come from sorting.
	e.Register(bridge.Handle(1), far)
	e.Register(bridge.Handle(2), near)

	results := e.QueryClosest(forwardZ)
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results[0].Pointee != bridge.Handle(2) || !approx(results[0].Distance, 5) {
		t.Errorf("first result = %+v, want pointee 2 at distance 5", results[0])
	}
	if results[1].Pointee != bridge.Handle(1) || !approx(results[1].Distance, 10) {
		t.Errorf("second result = %+v, want pointee 1 at distance 10", results[1])
	}
	for i := 1; i < len(results); i++ {
		if results[i].Distance < results[i-1].Distance {
			t.Errorf("results not sorted: %+v", results)
		}
	}
}

func TestQueryAllUnsortedKeepsRegistrationOrder(t *testing.T) {
	e := NewPickEngine(Options{}, nil)
	e.Register(bridge.Handle(1), NewMeshEyePointee(mesh.Quad(1, 1, 10), nil))
	e.Register(bridge.Handle(2), NewMeshEyePointee(mesh.Quad(1, 1, 5), nil))

	results := e.QueryAll(forwardZ, false)
	if len(results) != 2 || results[0].Pointee != 1 || results[1].Pointee != 2 {
		t.Errorf("QueryAll(unsorted) = %+v", results)
	}
}

func TestQueryEqualDistancesStableByRegistration(t *testing.T) {
	e := NewPickEngine(Options{}, nil)
	for _, h := range []bridge.Handle{5, 3, 9} {
		e.Register(h, NewMeshEyePointee(mesh.Quad(1, 1, 4), nil))
	}
	results := e.QueryClosest(forwardZ)
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	for i, want := range []bridge.Handle{5, 3, 9} {
		if results[i].Pointee != want {
			t.Errorf("result %d = %s, want %s", i, results[i].Pointee, want)
		}
	}
}

func TestQuerySkipsDisabledAndMisses(t *testing.T) {
	e := NewPickEngine(Options{}, nil)
	disabled := NewMeshEyePointee(mesh.Quad(1, 1, 2), nil)
	disabled.SetEnabled(false)
	e.Register(bridge.Handle(1), disabled)
	e.Register(bridge.Handle(2), NewMeshEyePointee(mesh.Quad(1, 1, -2), nil))
	e.Register(bridge.Handle(3), NewMeshEyePointee(nil, nil))
	e.Register(bridge.Handle(4), NewMeshEyePointee(mesh.Quad(1, 1, 6), nil))

	results := e.QueryClosest(forwardZ)
	if len(results) != 1 || results[0].Pointee != 4 {
		t.Errorf("QueryClosest = %+v, want only pointee 4", results)
	}
}

func TestRegisterIdempotent(t *testing.T) {
	e := NewPickEngine(Options{}, nil)
	p := NewMeshEyePointee(mesh.Quad(1, 1, 5), nil)
	h := bridge.Handle(42)

	if !e.Register(h, p) {
		t.Fatal("first Register returned false")
	}
	if e.Register(h, p) {
		t.Error("second Register returned true")
	}
	if e.Len() != 1 {
		t.Errorf("Len() = %d, want 1", e.Len())
	}
	if len(e.QueryClosest(forwardZ)) != 1 {
		t.Error("duplicate registration produced duplicate results")
	}

	if !e.Deregister(h) {
		t.Fatal("Deregister returned false")
	}
	if e.Registered(h) {
		t.Error("pointee still registered after a single Deregister")
	}
	if got := e.QueryClosest(forwardZ); len(got) != 0 {
		t.Errorf("deregistered pointee still returned: %+v", got)
	}
	if e.Deregister(h) {
		t.Error("Deregister of unregistered handle returned true")
	}
}

func TestDeregisterKeepsOthersOrdered(t *testing.T) {
	e := NewPickEngine(Options{}, nil)
	for h := bridge.Handle(1); h <= 4; h++ {
		e.Register(h, NewMeshEyePointee(mesh.Quad(1, 1, 3), nil))
	}
	e.Deregister(2)

	results := e.QueryAll(forwardZ, false)
	want := []bridge.Handle{1, 3, 4}
	if len(results) != len(want) {
		t.Fatalf("got %d results, want %d", len(results), len(want))
	}
	for i, h := range want {
		if results[i].Pointee != h {
			t.Errorf("result %d = %s, want %s", i, results[i].Pointee, h)
		}
	}
	// Index must stay consistent for later removals.
	e.Deregister(4)
	if e.Registered(4) || !e.Registered(3) || e.Len() != 2 {
		t.Errorf("unexpected registrations after second removal: len=%d", e.Len())
	}
}

func TestRegisterRejectsNull(t *testing.T) {
	e := NewPickEngine(Options{}, nil)
	if e.Register(bridge.Null, NewMeshEyePointee(nil, nil)) {
		t.Error("Register(Null) returned true")
	}
	if e.Register(bridge.Handle(1), nil) {
		t.Error("Register(nil pointee) returned true")
	}
}

func TestEngineMaxDistance(t *testing.T) {
	e := NewPickEngine(Options{MaxDistance: 7}, nil)
	e.Register(bridge.Handle(1), NewMeshEyePointee(mesh.Quad(1, 1, 5), nil))
	e.Register(bridge.Handle(2), NewMeshEyePointee(mesh.Quad(1, 1, 10), nil))

	results := e.QueryClosest(forwardZ)
	if len(results) != 1 || results[0].Pointee != 1 {
		t.Errorf("QueryClosest = %+v, want only the hit within 7", results)
	}

	// A tighter ray limit still wins.
	r := forwardZ
	r.MaxDistance = 4
	if got := e.QueryClosest(r); len(got) != 0 {
		t.Errorf("ray limit ignored: %+v", got)
	}
}

func TestClosestReportsOwner(t *testing.T) {
	e := NewPickEngine(Options{}, nil)
	src := TransformFunc(func(bridge.Handle) (math.Mat4, bool) { return math.Translate(0, 0, 5), true })
	sphere, err := NewSphereEyePointee(math.Vec3{}, 1, src)
	if err != nil {
		t.Fatal(err)
	}
	sphere.SetOwner(bridge.Handle(77))
	e.Register(bridge.Handle(8), sphere)

	got, ok := e.Closest(forwardZ)
	if !ok {
		t.Fatal("expected a hit")
	}
	if got.Owner != bridge.Handle(77) || got.Pointee != bridge.Handle(8) || !approx(got.Distance, 4) {
		t.Errorf("Closest = %+v", got)
	}

	if _, ok := e.Closest(Ray{Direction: math.Vec3{X: 0, Y: 1, Z: 0}}); ok {
		t.Error("Closest should report false when nothing is hit")
	}
}

func TestQueryNonFiniteRay(t *testing.T) {
	e := NewPickEngine(Options{MaxDistance: 50}, nil)
	sphere, err := NewSphereEyePointee(math.Vec3{Z: 5}, 1, nil)
	if err != nil {
		t.Fatal(err)
	}
	e.Register(bridge.Handle(1), sphere)
	e.Register(bridge.Handle(2), NewMeshEyePointee(mesh.Quad(2, 2, 5), nil))

	for _, tt := range nonFiniteRays() {
		if got := e.QueryClosest(tt.ray); len(got) != 0 {
			t.Errorf("%s: QueryClosest = %+v, want no hits", tt.name, got)
		}
		if _, ok := e.Closest(tt.ray); ok {
			t.Errorf("%s: Closest reported a hit", tt.name)
		}
	}
}
