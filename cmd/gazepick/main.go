// Package main is the entry point for the headless gaze picking driver.
package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/Faultbox/gazebridge/internal/config"
	"github.com/Faultbox/gazebridge/internal/logger"
	"github.com/Faultbox/gazebridge/internal/session"
)

func main() {
	// Parse CLI flags first
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("=== GazeBridge picking session ===")
	logger.Sugar.Debugf("Config: %+v", cfg)
	logger.Debug("session settings",
		zap.String("scene", cfg.Session.SceneFile),
		zap.Int("frames", cfg.Session.Frames),
		zap.Float32("max_distance", cfg.Picking.MaxDistance))

	s, err := session.New(cfg, logger.Named("session"))
	if err != nil {
		logger.Error("failed to create session", zap.Error(err))
		os.Exit(1)
	}
	defer s.Close()

	stats, err := s.Run()
	if err != nil {
		logger.Error("session error", zap.Error(err))
		os.Exit(1)
	}

	logger.Info("session finished",
		zap.Int("frames", stats.Frames),
		zap.Int("frames_with_hit", stats.FramesWithHit),
		zap.Int("gaze_changes", stats.GazeChanges))
	if stats.Frames > 0 && stats.FramesWithHit == 0 {
		logger.Warn("gaze never hit anything", zap.Int("frames", stats.Frames))
	}
}
