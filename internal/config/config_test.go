package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Faultbox/simscene/internal/engine/scene"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	// Test assets defaults
	if cfg.Assets.MaxConcurrent != 8 {
		t.Errorf("expected max_concurrent 8, got %d", cfg.Assets.MaxConcurrent)
	}
	if cfg.Assets.Timeout != 30*time.Second {
		t.Errorf("expected timeout 30s, got %v", cfg.Assets.Timeout)
	}

	// Test scene defaults
	if cfg.Scene.MaxRenderGroup != 3 {
		t.Errorf("expected max render group 3, got %d", cfg.Scene.MaxRenderGroup)
	}
	if cfg.Scene.RecomputeNormals {
		t.Error("expected recompute_normals to be false by default")
	}
	if cfg.Scene.PlaneStyle != "textured" {
		t.Errorf("expected plane style 'textured', got %s", cfg.Scene.PlaneStyle)
	}

	// Test lighting defaults
	if cfg.Lighting.IntensityScale != 3 {
		t.Errorf("expected intensity scale 3, got %f", cfg.Lighting.IntensityScale)
	}
	if !cfg.Lighting.FallbackCastShadow {
		t.Error("expected fallback light to cast shadows")
	}

	// Test export defaults
	if cfg.Export.TextureFormat != "png" {
		t.Errorf("expected texture format 'png', got %s", cfg.Export.TextureFormat)
	}

	// Test logging defaults
	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "" {
		t.Errorf("expected empty log file, got %s", cfg.Logging.LogFile)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	// Create temporary config file
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
assets:
  base_url: "https://assets.example.com/scenes"
  max_concurrent: 4
  timeout: 5s

scene:
  recompute_normals: true
  plane_style: "reflective"
  radial_segments: 16

lighting:
  intensity_scale: 2.5
  fallback_cast_shadow: false

export:
  texture_format: "bmp"
  output_dir: "out"

logging:
  level: "debug"
  log_file: "simscene.log"
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	// Load config
	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	// Verify values were loaded
	if cfg.Assets.BaseURL != "https://assets.example.com/scenes" {
		t.Errorf("expected base url from file, got %s", cfg.Assets.BaseURL)
	}
	if cfg.Assets.MaxConcurrent != 4 {
		t.Errorf("expected max_concurrent 4, got %d", cfg.Assets.MaxConcurrent)
	}
	if cfg.Assets.Timeout != 5*time.Second {
		t.Errorf("expected timeout 5s, got %v", cfg.Assets.Timeout)
	}
	if cfg.Assets.UserAgent != "simscene/1.0" {
		t.Errorf("expected default user agent to survive, got %s", cfg.Assets.UserAgent)
	}

	if !cfg.Scene.RecomputeNormals {
		t.Error("expected recompute_normals to be true")
	}
	if cfg.Scene.RadialSegments != 16 {
		t.Errorf("expected radial segments 16, got %d", cfg.Scene.RadialSegments)
	}
	if cfg.Scene.HeightSegments != 16 {
		t.Errorf("expected default height segments 16, got %d", cfg.Scene.HeightSegments)
	}

	if cfg.Lighting.IntensityScale != 2.5 {
		t.Errorf("expected intensity scale 2.5, got %f", cfg.Lighting.IntensityScale)
	}
	if cfg.Lighting.FallbackCastShadow {
		t.Error("expected fallback_cast_shadow to be false")
	}

	if cfg.Export.TextureFormat != "bmp" {
		t.Errorf("expected texture format 'bmp', got %s", cfg.Export.TextureFormat)
	}

	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "simscene.log" {
		t.Errorf("expected log file 'simscene.log', got %s", cfg.Logging.LogFile)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	// Create temporary config file with invalid YAML
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.yaml")

	invalidYAML := `
scene:
  radial_segments: not a number
  invalid syntax here
`

	if err := os.WriteFile(configPath, []byte(invalidYAML), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	// Try to load - should error
	cfg := Default()
	err := loadFromFile(cfg, configPath)
	if err == nil {
		t.Error("expected error loading invalid YAML, got nil")
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	cfg := Default()
	err := loadFromFile(cfg, "/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("expected error loading missing file, got nil")
	}
}

func TestConfigDir(t *testing.T) {
	dir := ConfigDir()

	// Actual path depends on OS
	if dir == "" {
		t.Error("ConfigDir returned empty string")
	}

	if !filepath.IsAbs(dir) {
		t.Errorf("ConfigDir should return absolute path, got %s", dir)
	}
}

func TestFindConfigFile(t *testing.T) {
	// Save current directory
	origDir, _ := os.Getwd()
	defer os.Chdir(origDir)

	tmpDir := t.TempDir()
	os.Chdir(tmpDir)

	// No config file exists - should return empty
	path := findConfigFile()
	if path != "" {
		t.Errorf("expected empty path when no config exists, got %s", path)
	}

	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("scene:\n  plane_size: 50\n"), 0644); err != nil {
		t.Fatalf("failed to create test config: %v", err)
	}

	path = findConfigFile()
	if path == "" {
		t.Error("expected to find config.yaml in current directory")
	}
}

func TestApplyFlags(t *testing.T) {
	tests := []struct {
		name     string
		setup    func()
		verify   func(*Config)
		teardown func()
	}{
		{
			name: "debug flag",
			setup: func() {
				*flagDebug = true
			},
			verify: func(cfg *Config) {
				if cfg.Logging.Level != "debug" {
					t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
				}
			},
			teardown: func() {
				*flagDebug = false
			},
		},
		{
			name: "base url flag",
			setup: func() {
				*flagBaseURL = "http://mirror.local:9000"
			},
			verify: func(cfg *Config) {
				if cfg.Assets.BaseURL != "http://mirror.local:9000" {
					t.Errorf("expected base url from flag, got %s", cfg.Assets.BaseURL)
				}
			},
			teardown: func() {
				*flagBaseURL = ""
			},
		},
		{
			name: "recompute normals flag",
			setup: func() {
				*flagRecomputeNormals = true
			},
			verify: func(cfg *Config) {
				if !cfg.Scene.RecomputeNormals {
					t.Error("expected recompute_normals with flag")
				}
			},
			teardown: func() {
				*flagRecomputeNormals = false
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()
			defer tt.teardown()

			cfg := Default()
			applyFlags(cfg)

			tt.verify(cfg)
		})
	}
}

func TestLoadPriority(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
assets:
  base_url: "http://from-file"
  max_concurrent: 2
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	*flagConfig = configPath
	defer func() {
		*flagConfig = ""
		*flagBaseURL = ""
	}()

	// env beats file
	t.Setenv(EnvBaseURL, "http://from-env")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.Assets.BaseURL != "http://from-env" {
		t.Errorf("expected base url from env, got %s", cfg.Assets.BaseURL)
	}

	// flag beats env
	*flagBaseURL = "http://from-flag"
	cfg, err = Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.Assets.BaseURL != "http://from-flag" {
		t.Errorf("expected base url from flag, got %s", cfg.Assets.BaseURL)
	}

	// untouched values come from the file
	if cfg.Assets.MaxConcurrent != 2 {
		t.Errorf("expected max_concurrent 2 from file, got %d", cfg.Assets.MaxConcurrent)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"plane style", func(c *Config) { c.Scene.PlaneStyle = "glossy" }},
		{"texture format", func(c *Config) { c.Export.TextureFormat = "tiff" }},
		{"max concurrent", func(c *Config) { c.Assets.MaxConcurrent = -1 }},
		{"render group", func(c *Config) { c.Scene.MaxRenderGroup = -2 }},
		{"zero render group", func(c *Config) { c.Scene.MaxRenderGroup = 0 }},
		{"line capacity", func(c *Config) { c.Scene.LineCapacity = -1 }},
		{"point capacity", func(c *Config) { c.Scene.PointCapacity = -5 }},
		{"log level", func(c *Config) { c.Logging.Level = "verbose" }},
		{"log format", func(c *Config) { c.Logging.Format = "xml" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestSceneOptions(t *testing.T) {
	cfg := Default()
	cfg.Scene.PlaneStyle = "reflective"
	cfg.Scene.RecomputeNormals = true
	cfg.Lighting.FallbackIntensity = 2

	opts, err := cfg.SceneOptions()
	if err != nil {
		t.Fatalf("SceneOptions failed: %v", err)
	}
	if opts.PlaneStyle != scene.PlaneReflective {
		t.Errorf("expected reflective planes, got %v", opts.PlaneStyle)
	}
	if !opts.Mesh.RecomputeNormals {
		t.Error("expected RecomputeNormals")
	}
	if opts.Lighting.FallbackIntensity != 2 {
		t.Errorf("expected fallback intensity 2, got %f", opts.Lighting.FallbackIntensity)
	}

	// the defaults match the packages' own defaults
	cfg = Default()
	opts, err = cfg.SceneOptions()
	if err != nil {
		t.Fatalf("SceneOptions failed: %v", err)
	}
	if opts != scene.DefaultOptions() {
		t.Errorf("default config options %+v differ from scene defaults %+v", opts, scene.DefaultOptions())
	}
}

func TestSaveTo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := Default()
	cfg.Assets.BaseURL = "http://saved"
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo failed: %v", err)
	}

	loaded := Default()
	if err := loadFromFile(loaded, path); err != nil {
		t.Fatalf("reloading saved config: %v", err)
	}
	if loaded.Assets.BaseURL != "http://saved" {
		t.Errorf("expected saved base url, got %s", loaded.Assets.BaseURL)
	}
}

func TestSaveToRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg := Default()
	cfg.Scene.PlaneStyle = "mirror"
	if err := cfg.SaveTo(path); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("invalid config should not be written")
	}
}

func TestLoggerOptions(t *testing.T) {
	cfg := Default()
	opts := cfg.LoggerOptions()
	if opts.File.Path != "" {
		t.Errorf("expected no log file by default, got %s", opts.File.Path)
	}
	if opts.Console == nil {
		t.Error("expected console output")
	}

	cfg.Logging.LogFile = "simscene.log"
	cfg.Logging.Format = "json"
	opts = cfg.LoggerOptions()
	if opts.File.Path != "simscene.log" || opts.File.MaxSizeMB != 50 || !opts.File.Compress {
		t.Errorf("unexpected file config %+v", opts.File)
	}
	if opts.Format != "json" {
		t.Errorf("expected json format, got %s", opts.Format)
	}
}

func TestLoadFromFileUnknownKey(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte("scene:\n  plane_stlye: reflective\n"), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	if err := loadFromFile(Default(), configPath); err == nil {
		t.Error("expected error for misspelled key")
	}
}

func TestLoadFromFileEmpty(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, nil, 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("empty file should load: %v", err)
	}
	if cfg.Assets.MaxConcurrent != 8 {
		t.Errorf("expected defaults to survive, got %d", cfg.Assets.MaxConcurrent)
	}
}
