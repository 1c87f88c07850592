// Package config handles gaze picking configuration loading and management.
package config

// Config holds all engine settings.
type Config struct {
	Logging LoggingConfig `yaml:"logging"`
	Picking PickingConfig `yaml:"picking"`
	Session SessionConfig `yaml:"session"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// PickingConfig holds gaze query settings.
type PickingConfig struct {
	MaxDistance     float32 `yaml:"max_distance"`     // 0 means unlimited
	BoundsPrefilter bool    `yaml:"bounds_prefilter"` // sphere and AABB rejection before the triangle scan
}

// SessionConfig drives the headless gaze session run by cmd/gazepick.
type SessionConfig struct {
	SceneFile  string  `yaml:"scene_file"`
	Frames     int     `yaml:"frames"`
	YawStepDeg float32 `yaml:"yaw_step_deg"`
	PitchDeg   float32 `yaml:"pitch_deg"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level: "info",
		},
		Picking: PickingConfig{
			MaxDistance:     100,
			BoundsPrefilter: true,
		},
		Session: SessionConfig{
			SceneFile:  "scene.yaml",
			Frames:     90,
			YawStepDeg: 2,
		},
	}
}
