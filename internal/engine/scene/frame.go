package scene

import (
	"go.uber.org/zap"

	"github.com/Faultbox/gazebridge/internal/bridge"
	"github.com/Faultbox/gazebridge/internal/engine/entity"
	"github.com/Faultbox/gazebridge/internal/engine/picking"
	"github.com/Faultbox/gazebridge/pkg/math"
)

// DrawSurface is one entry of the per-frame draw list.
type DrawSurface struct {
	Entity  bridge.Handle
	Surface *entity.SurfaceDef
	World   math.Mat4
}

// CollectSurfaceDefs returns the draw list for this frame: every visible
// entity whose mesh is still live, in handle slot order.
func (s *Scene) CollectSurfaceDefs() []DrawSurface {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []DrawSurface
	for _, h := range s.registry.Handles(bridge.KindEntity) {
		ent, err := s.resolveEntity(h)
		if err != nil || !ent.Visible() {
			continue
		}
		def := ent.GetOrCreateSurfaceDef()
		if !def.Drawable() {
			continue
		}
		out = append(out, DrawSurface{Entity: h, Surface: def, World: ent.WorldModelMatrix()})
	}
	return out
}

// SetEye moves the world position gaze rays start from.
func (s *Scene) SetEye(eye math.Vec3) {
	s.mu.Lock()
	s.opts.Eye = eye
	s.mu.Unlock()
}

// Eye returns the gaze origin.
func (s *Scene) Eye() math.Vec3 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.opts.Eye
}

// EnqueueRelease schedules h for destruction at the start of the next Frame.
// Safe to call from any goroutine, including host finalizers.
func (s *Scene) EnqueueRelease(h bridge.Handle) {
	s.registry.EnqueueRelease(h)
}

// Frame runs one picking pass: queued releases are destroyed, then the gaze
// ray for head rotation view is tested against every registered pointee.
// Results are nearest first; a non-finite view picks nothing.
func (s *Scene) Frame(view math.Quat) []picking.PickResult {
	if n := s.registry.CollectFunc(s.Destroy); n > 0 {
		s.log.Debug("released queued handles", zap.Int("count", n))
	}
	ray := picking.GazeRay(s.Eye(), view)
	if !ray.Finite() {
		s.log.Warn("non-finite gaze ignored", zap.Any("view", view))
		return nil
	}
	return s.QueryClosest(ray)
}
