package config

import (
	"flag"
	"os"
)

// EnvBaseURL overrides assets.base_url; flags still take priority.
const EnvBaseURL = "SIMSCENE_BASE_URL"

var (
	flagConfig           = flag.String("config", "", "Path to config file")
	flagDebug            = flag.Bool("debug", false, "Enable debug logging")
	flagBaseURL          = flag.String("base-url", "", "Base URL assets are fetched from")
	flagRecomputeNormals = flag.Bool("recompute-normals", false, "Recompute and smooth mesh normals")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyEnv applies environment overrides to the config.
func applyEnv(cfg *Config) {
	if v := os.Getenv(EnvBaseURL); v != "" {
		cfg.Assets.BaseURL = v
	}
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagBaseURL != "" {
		cfg.Assets.BaseURL = *flagBaseURL
	}
	if *flagRecomputeNormals {
		cfg.Scene.RecomputeNormals = true
	}
}
