// Package session runs a headless gaze loop over a scene: each frame the head
// turns a little, the release queue drains and the gaze ray is picked.
package session

import (
	"fmt"
	"time"

	"github.com/chewxy/math32"
	"go.uber.org/zap"

	"github.com/Faultbox/gazebridge/internal/bridge"
	"github.com/Faultbox/gazebridge/internal/config"
	"github.com/Faultbox/gazebridge/internal/engine/camera"
	"github.com/Faultbox/gazebridge/internal/engine/picking"
	"github.com/Faultbox/gazebridge/internal/engine/scene"
	"github.com/Faultbox/gazebridge/pkg/math"
)

// Stats summarizes a run.
type Stats struct {
	Frames        int
	FramesWithHit int
	GazeChanges   int
	Surfaces      int // draw list length of the last frame
}

// Session is one headless gaze run.
type Session struct {
	config  config.SessionConfig
	scene   *scene.Scene
	handles map[string]bridge.Handle
	names   map[bridge.Handle]string
	log     *zap.Logger

	head  *camera.Head
	gazed bridge.Handle
}

// New loads the configured scene file and builds it.
func New(cfg *config.Config, log *zap.Logger) (*Session, error) {
	if log == nil {
		log = zap.NewNop()
	}

	desc, err := scene.LoadFile(cfg.Session.SceneFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load scene %s: %w", cfg.Session.SceneFile, err)
	}
	return NewFromDescription(cfg, desc, log)
}

// NewFromDescription builds a session around an already parsed scene.
func NewFromDescription(cfg *config.Config, desc *scene.Description, log *zap.Logger) (*Session, error) {
	if log == nil {
		log = zap.NewNop()
	}

	opts := scene.DefaultOptions()
	opts.Picking.MaxDistance = cfg.Picking.MaxDistance
	opts.BoundsPrefilter = cfg.Picking.BoundsPrefilter

	sc := scene.New(opts, log.Named("scene"))
	handles, err := sc.Build(desc)
	if err != nil {
		return nil, fmt.Errorf("failed to build scene: %w", err)
	}

	s := &Session{
		config:  cfg.Session,
		scene:   sc,
		handles: handles,
		names:   make(map[bridge.Handle]string, len(handles)),
		log:     log,
		head:    camera.NewHead(),
	}
	s.head.TurnDegrees(0, cfg.Session.PitchDeg)
	sc.SetEye(s.head.Position)
	for name, h := range handles {
		s.names[h] = name
	}

	log.Info("session initialized",
		zap.Int("objects", sc.Registry().Len()),
		zap.Int("frames", cfg.Session.Frames))
	return s, nil
}

// Scene returns the scene the session drives.
func (s *Session) Scene() *scene.Scene {
	return s.scene
}

// Handle returns the handle built for name.
func (s *Session) Handle(name string) (bridge.Handle, bool) {
	h, ok := s.handles[name]
	return h, ok
}

// Head returns the viewpoint the session turns each frame.
func (s *Session) Head() *camera.Head {
	return s.head
}

// View returns the current head rotation.
func (s *Session) View() math.Quat {
	return s.head.Orientation()
}

// Run simulates the configured number of frames.
func (s *Session) Run() (Stats, error) {
	var stats Stats
	start := time.Now()

	s.log.Info("starting gaze loop")
	for i := 0; i < s.config.Frames; i++ {
		results := s.Step()
		stats.Frames++
		if len(results) > 0 {
			stats.FramesWithHit++
		}
		if s.trackGaze(i, results) {
			stats.GazeChanges++
		}
		stats.Surfaces = len(s.scene.CollectSurfaceDefs())
		s.head.TurnDegrees(s.config.YawStepDeg, 0)
	}

	s.log.Info("gaze loop finished",
		zap.Int("frames", stats.Frames),
		zap.Int("frames_with_hit", stats.FramesWithHit),
		zap.Int("gaze_changes", stats.GazeChanges),
		zap.Duration("elapsed", time.Since(start)))
	return stats, nil
}

// Step runs a single frame at the current head rotation.
func (s *Session) Step() []picking.PickResult {
	return s.scene.Frame(s.View())
}

// trackGaze logs when the nearest gazed owner changes and reports whether it did.
func (s *Session) trackGaze(frame int, results []picking.PickResult) bool {
	current := bridge.Null
	var distance float32
	if len(results) > 0 {
		current = results[0].Owner
		if current.IsNull() {
			current = results[0].Pointee
		}
		distance = results[0].Distance
	}
	if current == s.gazed {
		return false
	}

	if !s.gazed.IsNull() {
		s.log.Debug("gaze left", zap.Int("frame", frame), zap.String("target", s.name(s.gazed)))
	}
	if !current.IsNull() {
		s.log.Info("gaze entered",
			zap.Int("frame", frame),
			zap.String("target", s.name(current)),
			zap.Float32("distance", distance),
			zap.Float32("yaw_deg", s.head.Yaw*180/math32.Pi))
	}
	s.gazed = current
	return true
}

func (s *Session) name(h bridge.Handle) string {
	if n, ok := s.names[h]; ok {
		return n
	}
	return h.String()
}

// Close releases every object the session built.
func (s *Session) Close() {
	s.log.Info("closing session")
	reg := s.scene.Registry()
	for _, kind := range []bridge.Kind{bridge.KindMeshEyePointee, bridge.KindSphereEyePointee, bridge.KindEntity, bridge.KindMesh} {
		for _, h := range reg.Handles(kind) {
			s.scene.EnqueueRelease(h)
		}
	}
	s.scene.Frame(s.View())
}
