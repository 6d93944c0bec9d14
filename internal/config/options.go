package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/Faultbox/simscene/internal/engine/lighting"
	"github.com/Faultbox/simscene/internal/engine/mesh"
	"github.com/Faultbox/simscene/internal/engine/scene"
	"github.com/Faultbox/simscene/internal/logger"
)

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("invalid config")

// Validate checks enumerated and bounded settings.
func (c *Config) Validate() error {
	if _, err := scene.ParsePlaneStyle(c.Scene.PlaneStyle); err != nil {
		return fmt.Errorf("%w: scene.plane_style: %w", ErrInvalidConfig, err)
	}
	switch c.Export.TextureFormat {
	case "png", "bmp":
	default:
		return fmt.Errorf("%w: export.texture_format %q (want png or bmp)", ErrInvalidConfig, c.Export.TextureFormat)
	}
	if c.Assets.MaxConcurrent < 0 {
		return fmt.Errorf("%w: assets.max_concurrent %d", ErrInvalidConfig, c.Assets.MaxConcurrent)
	}
	if c.Scene.MaxRenderGroup < 1 {
		return fmt.Errorf("%w: scene.max_render_group %d (want >= 1)", ErrInvalidConfig, c.Scene.MaxRenderGroup)
	}
	if c.Scene.LineCapacity < 0 {
		return fmt.Errorf("%w: scene.line_capacity %d", ErrInvalidConfig, c.Scene.LineCapacity)
	}
	if c.Scene.PointCapacity < 0 {
		return fmt.Errorf("%w: scene.point_capacity %d", ErrInvalidConfig, c.Scene.PointCapacity)
	}
	if _, err := logger.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("%w: logging.level: %w", ErrInvalidConfig, err)
	}
	switch c.Logging.Format {
	case "", logger.FormatConsole, logger.FormatJSON:
	default:
		return fmt.Errorf("%w: logging.format %q (want console or json)", ErrInvalidConfig, c.Logging.Format)
	}
	return nil
}

// LoggerOptions returns logger options for the CLI: colored console output
// on stderr plus the configured rotating file.
func (c *Config) LoggerOptions() logger.Options {
	opts := logger.Options{
		Level:   c.Logging.Level,
		Format:  c.Logging.Format,
		Console: os.Stderr,
	}
	if c.Logging.LogFile != "" {
		opts.File = logger.FileConfig{
			Path:       c.Logging.LogFile,
			MaxSizeMB:  c.Logging.MaxSizeMB,
			MaxBackups: c.Logging.MaxBackups,
			MaxAgeDays: c.Logging.MaxAgeDays,
			Compress:   c.Logging.Compress,
		}
	}
	return opts
}

// SceneOptions returns the scene build options described by the config.
func (c *Config) SceneOptions() (scene.Options, error) {
	style, err := scene.ParsePlaneStyle(c.Scene.PlaneStyle)
	if err != nil {
		return scene.Options{}, err
	}
	return scene.Options{
		Mesh: mesh.Options{
			RecomputeNormals: c.Scene.RecomputeNormals,
			PlaneSize:        c.Scene.PlaneSize,
			RadialSegments:   c.Scene.RadialSegments,
			HeightSegments:   c.Scene.HeightSegments,
			CapSegments:      c.Scene.CapSegments,
		},
		Lighting: lighting.Options{
			IntensityScale:     c.Lighting.IntensityScale,
			TargetDistance:     c.Lighting.TargetDistance,
			AmbientThreshold:   c.Lighting.AmbientThreshold,
			FallbackLongitude:  c.Lighting.FallbackLongitude,
			FallbackLatitude:   c.Lighting.FallbackLatitude,
			FallbackIntensity:  c.Lighting.FallbackIntensity,
			FallbackCastShadow: c.Lighting.FallbackCastShadow,
		},
		PlaneStyle:     style,
		MaxRenderGroup: c.Scene.MaxRenderGroup,
		LineCapacity:   c.Scene.LineCapacity,
		PointCapacity:  c.Scene.PointCapacity,
	}, nil
}
