package config

import "flag"

var (
	flagConfig      = flag.String("config", "", "Path to config file")
	flagDebug       = flag.Bool("debug", false, "Enable debug logging")
	flagScene       = flag.String("scene", "", "Scene description file")
	flagFrames      = flag.Int("frames", 0, "Number of frames to simulate")
	flagMaxDistance = flag.Float64("max-distance", 0, "Maximum pick distance")
	flagNoPrefilter = flag.Bool("no-prefilter", false, "Disable bounding box prefilter")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagScene != "" {
		cfg.Session.SceneFile = *flagScene
	}
	if *flagFrames > 0 {
		cfg.Session.Frames = *flagFrames
	}
	if *flagMaxDistance > 0 {
		cfg.Picking.MaxDistance = float32(*flagMaxDistance)
	}
	if *flagNoPrefilter {
		cfg.Picking.BoundsPrefilter = false
	}
}
