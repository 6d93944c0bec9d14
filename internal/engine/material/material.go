// Package material derives render materials from the model material table
// and attaches decoded textures.
package material

import (
	"github.com/jinzhu/copier"

	"github.com/Faultbox/simscene/internal/engine/texture"
	"github.com/Faultbox/simscene/pkg/math"
)

// TransparencyThreshold is the opacity below which a material is transparent.
const TransparencyThreshold = 0.999

// OverrideEpsilon is the per-channel difference at which a geometry color
// overrides its material color.
const OverrideEpsilon = 1e-3

// Wrap is the texture addressing mode.
type Wrap int

const (
	WrapClamp Wrap = iota
	WrapRepeat
)

// String returns the wrap mode name.
func (w Wrap) String() string {
	if w == WrapRepeat {
		return "repeat"
	}
	return "clamp"
}

// Texture is a material's view of a decoded raster. The raster is shared
// between all textures cloned from the same decode; tiling is per texture.
type Texture struct {
	Raster   *texture.Raster
	Repeat   math.Vec2
	Offset   math.Vec2
	Rotation float32 // radians
	Wrap     Wrap
}

// Clone returns a copy sharing the same raster.
func (t *Texture) Clone() *Texture {
	out := &Texture{}
	if err := copier.Copy(out, t); err != nil {
		c := *t
		return &c
	}
	// copier allocates fresh pointees; the raster must stay shared.
	out.Raster = t.Raster
	return out
}

// Material is a derived surface appearance.
type Material struct {
	// MaterialID is the source material, or -1 for a flat geometry color.
	MaterialID  int
	Color       [3]float32
	Opacity     float32
	Transparent bool
	Roughness   float32
	Metalness   float32

	Specular    float32
	Reflectance float32
	Shininess   float32

	Emissive          [3]float32
	EmissiveIntensity float32

	Map *Texture
}

// RGBA returns color and opacity as one vector.
func (m *Material) RGBA() [4]float32 {
	return [4]float32{m.Color[0], m.Color[1], m.Color[2], m.Opacity}
}

// Clone returns a shallow copy: the clone shares the texture map.
func (m *Material) Clone() *Material {
	out := &Material{}
	if err := copier.Copy(out, m); err != nil {
		c := *m
		return &c
	}
	out.Map = m.Map
	return out
}

// setColor assigns color and opacity and the transparency flag they imply.
func (m *Material) setColor(rgba [4]float32) {
	m.Color = [3]float32{rgba[0], rgba[1], rgba[2]}
	m.Opacity = rgba[3]
	m.Transparent = rgba[3] < TransparencyThreshold
}

// Differs reports whether two colors differ by more than OverrideEpsilon
// in any channel.
func Differs(a, b [4]float32) bool {
	for i := range a {
		d := a[i] - b[i]
		if d > OverrideEpsilon || d < -OverrideEpsilon {
			return true
		}
	}
	return false
}
