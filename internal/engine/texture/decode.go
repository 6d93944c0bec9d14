// Package texture expands packed model texture records into RGBA8 rasters.
package texture

import (
	"errors"
	"fmt"
	"image"

	"go.uber.org/zap"

	"github.com/Faultbox/simscene/internal/physics"
)

// Texture errors.
var (
	// ErrNoTexture means the record cannot produce a raster: bad channel
	// count, zero dimensions, or an address range outside the source.
	ErrNoTexture = errors.New("no texture")
	// ErrUnsupportedType means the texture layout code is not known.
	ErrUnsupportedType = errors.New("unsupported texture type")
)

// Type is the layout of a decoded texture.
type Type int

const (
	Type2D Type = iota
	TypeCube
	TypeSkybox
	TypeUnsupported
)

// String returns the type name.
func (t Type) String() string {
	switch t {
	case Type2D:
		return "2d"
	case TypeCube:
		return "cube"
	case TypeSkybox:
		return "skybox"
	default:
		return "unsupported"
	}
}

// TypeOf maps a model texture type code onto a Type.
func TypeOf(code physics.TextureType) Type {
	switch code {
	case physics.Texture2D:
		return Type2D
	case physics.TextureCube:
		return TypeCube
	case physics.TextureSkybox:
		return TypeSkybox
	default:
		return TypeUnsupported
	}
}

// ColorSpace is the display color-space hint of a raster.
type ColorSpace int

const (
	ColorSpaceDefault ColorSpace = iota
	ColorSpaceLinear
	ColorSpaceSRGB
)

// String returns the color space name.
func (c ColorSpace) String() string {
	switch c {
	case ColorSpaceLinear:
		return "linear"
	case ColorSpaceSRGB:
		return "srgb"
	default:
		return "default"
	}
}

// ColorSpaceOf maps a source color-space flag onto a display hint.
// Unrecognized flags leave the default.
func ColorSpaceOf(flag physics.ColorSpace) ColorSpace {
	switch flag {
	case physics.ColorSpaceLinear:
		return ColorSpaceLinear
	case physics.ColorSpaceSRGB:
		return ColorSpaceSRGB
	default:
		return ColorSpaceDefault
	}
}

// Descriptor locates one texture inside the packed texel buffer.
type Descriptor struct {
	ID         int
	Width      int
	Height     int
	Address    int
	Channels   int
	ColorSpace physics.ColorSpace
	Type       physics.TextureType
}

// DescriptorFor reads the descriptor of texture id from the texture table.
func DescriptorFor(t *physics.TextureTable, id int) Descriptor {
	d := Descriptor{ID: id, Address: -1}
	if id < 0 || id >= t.Len() {
		return d
	}
	d.Width = int(t.Width[id])
	if id < len(t.Height) {
		d.Height = int(t.Height[id])
	}
	if id < len(t.Adr) {
		d.Address = int(t.Adr[id])
	}
	d.Channels = t.Channels(id)
	d.ColorSpace = t.Space(id)
	d.Type = t.Kind(id)
	return d
}

// Raster is a decoded RGBA8 texture.
type Raster struct {
	ID         int
	Image      *image.RGBA
	ColorSpace ColorSpace
	// Type is the source layout; cube and skybox textures decode as a
	// single 2D strip.
	Type Type
}

// Width returns the raster width in pixels.
func (r *Raster) Width() int { return r.Image.Rect.Dx() }

// Height returns the raster height in pixels.
func (r *Raster) Height() int { return r.Image.Rect.Dy() }

// Pix returns the raw RGBA8 bytes, row-major, top row first.
func (r *Raster) Pix() []byte { return r.Image.Pix }

// Decoder decodes texture records.
type Decoder struct {
	log *zap.Logger
}

// NewDecoder creates a decoder. A nil logger discards diagnostics.
func NewDecoder(log *zap.Logger) *Decoder {
	if log == nil {
		log = zap.NewNop()
	}
	return &Decoder{log: log}
}

// Decode expands the texels of desc from src into an RGBA8 raster.
// It never reads outside src.
func (d *Decoder) Decode(src []byte, desc Descriptor) (*Raster, error) {
	typ := TypeOf(desc.Type)
	switch typ {
	case Type2D:
	case TypeCube, TypeSkybox:
		d.log.Warn("cube texture decoded as 2D",
			zap.Int("texture", desc.ID),
			zap.Stringer("type", typ))
	default:
		d.log.Warn("skipping texture with unknown type",
			zap.Int("texture", desc.ID),
			zap.Int32("code", int32(desc.Type)))
		return nil, fmt.Errorf("texture %d: %w: %d", desc.ID, ErrUnsupportedType, desc.Type)
	}

	w, h, c := desc.Width, desc.Height, desc.Channels
	if c < 1 || c > 4 {
		return nil, fmt.Errorf("texture %d: %w: %d channels", desc.ID, ErrNoTexture, c)
	}
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("texture %d: %w: size %dx%d", desc.ID, ErrNoTexture, w, h)
	}
	n := w * h * c
	if desc.Address < 0 || n/c/h != w || desc.Address > len(src)-n {
		return nil, fmt.Errorf("texture %d: %w: %d bytes at %d exceed source of %d",
			desc.ID, ErrNoTexture, n, desc.Address, len(src))
	}

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	Expand(img.Pix, src[desc.Address:desc.Address+n], c)

	return &Raster{
		ID:         desc.ID,
		Image:      img,
		ColorSpace: ColorSpaceOf(desc.ColorSpace),
		Type:       typ,
	}, nil
}

// Expand converts packed pixels with the given channel count into RGBA8.
// dst must hold len(src)/channels*4 bytes.
func Expand(dst, src []byte, channels int) {
	pixels := len(src) / channels
	for p := 0; p < pixels; p++ {
		i := p * channels
		o := p * 4
		switch channels {
		case 1:
			l := src[i]
			dst[o], dst[o+1], dst[o+2], dst[o+3] = l, l, l, 255
		case 2:
			l := src[i]
			dst[o], dst[o+1], dst[o+2], dst[o+3] = l, l, l, src[i+1]
		case 3:
			dst[o], dst[o+1], dst[o+2], dst[o+3] = src[i], src[i+1], src[i+2], 255
		case 4:
			copy(dst[o:o+4], src[i:i+4])
		}
	}
}
