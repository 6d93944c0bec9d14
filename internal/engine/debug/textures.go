// Package debug provides inspection utilities for built scenes.
package debug

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"sort"

	"go.uber.org/multierr"
	"golang.org/x/image/bmp"

	"github.com/Faultbox/simscene/internal/engine/texture"
)

// Format is a texture dump image format.
type Format string

const (
	FormatPNG Format = "png"
	FormatBMP Format = "bmp"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatPNG, FormatBMP:
		return Format(s), nil
	default:
		return "", fmt.Errorf("unsupported texture format %q", s)
	}
}

// TextureDump writes decoded rasters to disk.
type TextureDump struct {
	outputDir string
	prefix    string
	format    Format
}

// NewTextureDump creates a dump writing "<prefix>_<id>.<format>" files into
// outputDir.
func NewTextureDump(outputDir, prefix string, format Format) *TextureDump {
	if format == "" {
		format = FormatPNG
	}
	return &TextureDump{
		outputDir: outputDir,
		prefix:    prefix,
		format:    format,
	}
}

// Filename returns the output path of texture id.
func (d *TextureDump) Filename(id int) string {
	filename := fmt.Sprintf("%s_%d.%s", d.prefix, id, d.format)
	if d.outputDir != "" {
		filename = filepath.Join(d.outputDir, filename)
	}
	return filename
}

// Encode writes img to w in the dump format.
func (d *TextureDump) Encode(w io.Writer, img image.Image) error {
	switch d.format {
	case FormatBMP:
		return bmp.Encode(w, img)
	default:
		return png.Encode(w, img)
	}
}

// Dump writes every raster, in texture id order, and returns the written
// paths. A failing texture does not stop the others; all failures are
// returned together.
func (d *TextureDump) Dump(rasters map[int]*texture.Raster) ([]string, error) {
	if d.outputDir != "" {
		if err := os.MkdirAll(d.outputDir, 0755); err != nil {
			return nil, fmt.Errorf("creating output dir: %w", err)
		}
	}

	ids := make([]int, 0, len(rasters))
	for id := range rasters {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	var written []string
	var errs error
	for _, id := range ids {
		r := rasters[id]
		if r == nil || r.Image == nil {
			continue
		}
		path, err := d.write(id, r.Image)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		written = append(written, path)
	}
	return written, errs
}

func (d *TextureDump) write(id int, img image.Image) (string, error) {
	filename := d.Filename(id)

	file, err := os.Create(filename)
	if err != nil {
		return "", fmt.Errorf("creating file: %w", err)
	}
	defer file.Close()

	if err := d.Encode(file, img); err != nil {
		return "", fmt.Errorf("encoding texture %d as %s: %w", id, d.format, err)
	}
	return filename, nil
}
