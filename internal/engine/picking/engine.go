package picking

import (
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/Faultbox/gazebridge/internal/bridge"
	"github.com/Faultbox/gazebridge/pkg/math"
)

// PickResult is one pointee hit by a query.
type PickResult struct {
	Pointee  bridge.Handle
	Owner    bridge.Handle
	Distance float32
	Point    math.Vec3
}

// Options configures a PickEngine.
type Options struct {
	// MaxDistance caps every query. 0 means unlimited; a ray's own tighter
	// MaxDistance still applies.
	MaxDistance float32
}

type registration struct {
	handle  bridge.Handle
	pointee EyePointee
}

// PickEngine runs per-frame ray queries over registered pointees. It holds
// non-owning references only; callers deregister pointees they destroy.
type PickEngine struct {
	mu    sync.RWMutex
	order []registration
	index map[bridge.Handle]int

	opts Options
	log  *zap.Logger
}

// NewPickEngine creates an engine with no registered pointees.
func NewPickEngine(opts Options, log *zap.Logger) *PickEngine {
	if log == nil {
		log = zap.NewNop()
	}
	return &PickEngine{
		index: make(map[bridge.Handle]int),
		opts:  opts,
		log:   log,
	}
}

// Register adds p under handle h. Registering an already registered handle
// has no effect and returns false.
func (e *PickEngine) Register(h bridge.Handle, p EyePointee) bool {
	if h.IsNull() || p == nil {
		return false
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.index[h]; ok {
		return false
	}
	e.index[h] = len(e.order)
	e.order = append(e.order, registration{handle: h, pointee: p})

	e.log.Debug("pointee registered", zap.Stringer("handle", h), zap.Int("registered", len(e.order)))
	return true
}

// Deregister removes h. Deregistering an unknown handle is a no-op that
// returns false.
func (e *PickEngine) Deregister(h bridge.Handle) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	i, ok := e.index[h]
	if !ok {
		return false
	}
	e.order = append(e.order[:i], e.order[i+1:]...)
	delete(e.index, h)
	for j := i; j < len(e.order); j++ {
		e.index[e.order[j].handle] = j
	}

	e.log.Debug("pointee deregistered", zap.Stringer("handle", h), zap.Int("registered", len(e.order)))
	return true
}

// Registered reports whether h is registered.
func (e *PickEngine) Registered(h bridge.Handle) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	_, ok := e.index[h]
	return ok
}

// Len returns the number of registered pointees.
func (e *PickEngine) Len() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.order)
}

// QueryAll tests ray against every enabled pointee. A non-finite ray hits
// nothing. Unsorted results are in registration order; sorted results are nearest first, with equal distances
// kept in registration order.
func (e *PickEngine) QueryAll(ray Ray, sorted bool) []PickResult {
	if !ray.Finite() {
		e.log.Debug("non-finite ray ignored", zap.Any("origin", ray.Origin), zap.Any("direction", ray.Direction))
		return nil
	}
	ray = e.clamp(ray)

	e.mu.RLock()
	var results []PickResult
	for _, reg := range e.order {
		if !reg.pointee.Enabled() {
			continue
		}
		hit, ok := reg.pointee.TestRay(ray)
		if !ok {
			continue
		}
		results = append(results, PickResult{
			Pointee:  reg.handle,
			Owner:    reg.pointee.Owner(),
			Distance: hit.Distance,
			Point:    hit.Point,
		})
	}
	e.mu.RUnlock()

	if sorted {
		sort.SliceStable(results, func(i, j int) bool {
			return results[i].Distance < results[j].Distance
		})
	}
	return results
}

// QueryClosest returns every hit ordered nearest first.
func (e *PickEngine) QueryClosest(ray Ray) []PickResult {
	return e.QueryAll(ray, true)
}

// Closest returns only the nearest hit.
func (e *PickEngine) Closest(ray Ray) (PickResult, bool) {
	results := e.QueryClosest(ray)
	if len(results) == 0 {
		return PickResult{}, false
	}
	return results[0], true
}

// clamp applies the engine-wide distance cap to ray.
func (e *PickEngine) clamp(ray Ray) Ray {
	if e.opts.MaxDistance > 0 && (ray.MaxDistance <= 0 || ray.MaxDistance > e.opts.MaxDistance) {
		ray.MaxDistance = e.opts.MaxDistance
	}
	return ray
}
