// Package config handles simscene configuration loading and management.
package config

import "time"

// Config holds all settings.
type Config struct {
	Assets   AssetsConfig   `yaml:"assets"`
	Scene    SceneConfig    `yaml:"scene"`
	Lighting LightingConfig `yaml:"lighting"`
	Export   ExportConfig   `yaml:"export"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// AssetsConfig holds asset staging settings.
type AssetsConfig struct {
	BaseURL       string        `yaml:"base_url"`
	MaxConcurrent int           `yaml:"max_concurrent"`
	Timeout       time.Duration `yaml:"timeout"`
	UserAgent     string        `yaml:"user_agent"`
}

// SceneConfig holds scene assembly settings.
type SceneConfig struct {
	MaxRenderGroup   int     `yaml:"max_render_group"`
	RecomputeNormals bool    `yaml:"recompute_normals"`
	PlaneStyle       string  `yaml:"plane_style"` // textured or reflective
	PlaneSize        float32 `yaml:"plane_size"`
	RadialSegments   int     `yaml:"radial_segments"`
	HeightSegments   int     `yaml:"height_segments"`
	CapSegments      int     `yaml:"cap_segments"`
	LineCapacity     int     `yaml:"line_capacity"`
	PointCapacity    int     `yaml:"point_capacity"`
}

// LightingConfig holds light translation settings.
type LightingConfig struct {
	IntensityScale     float32 `yaml:"intensity_scale"`
	TargetDistance     float32 `yaml:"target_distance"`
	AmbientThreshold   float32 `yaml:"ambient_threshold"`
	FallbackLongitude  float32 `yaml:"fallback_longitude"`
	FallbackLatitude   float32 `yaml:"fallback_latitude"`
	FallbackIntensity  float32 `yaml:"fallback_intensity"`
	FallbackCastShadow bool    `yaml:"fallback_cast_shadow"`
}

// ExportConfig holds debug export settings.
type ExportConfig struct {
	TextureFormat string `yaml:"texture_format"` // png or bmp
	OutputDir     string `yaml:"output_dir"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level      string `yaml:"level"`
	LogFile    string `yaml:"log_file"`
	Format     string `yaml:"format"` // log file encoding: console or json
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Assets: AssetsConfig{
			BaseURL:       "http://localhost:8000",
			MaxConcurrent: 8,
			Timeout:       30 * time.Second,
			UserAgent:     "simscene/1.0",
		},
		Scene: SceneConfig{
			MaxRenderGroup: 3,
			PlaneStyle:     "textured",
			PlaneSize:      100,
			RadialSegments: 32,
			HeightSegments: 16,
			CapSegments:    8,
			LineCapacity:   1000,
			PointCapacity:  1000,
		},
		Lighting: LightingConfig{
			IntensityScale:     3,
			TargetDistance:     10,
			AmbientThreshold:   0.01,
			FallbackLongitude:  45,
			FallbackLatitude:   60,
			FallbackIntensity:  1.5,
			FallbackCastShadow: true,
		},
		Export: ExportConfig{
			TextureFormat: "png",
			OutputDir:     "textures",
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "console",
			MaxSizeMB:  50,
			MaxBackups: 3,
			MaxAgeDays: 7,
			Compress:   true,
		},
	}
}
