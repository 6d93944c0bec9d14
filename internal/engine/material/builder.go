package material

import (
	"go.uber.org/zap"

	"github.com/Faultbox/simscene/internal/engine/texture"
	"github.com/Faultbox/simscene/internal/physics"
	"github.com/Faultbox/simscene/pkg/math"
)

type overrideKey struct {
	material int
	rgba     [4]float32
}

// Builder resolves materials for one scene build. Base materials are cached
// by material id, decoded textures by texture id, and color overrides by
// (material id, rgba).
type Builder struct {
	model   physics.Model
	decoder *texture.Decoder
	log     *zap.Logger

	materials map[int]*Material
	textures  map[int]*Texture // nil entry = decode failed
	overrides map[overrideKey]*Material
}

// NewBuilder creates a builder over model m.
func NewBuilder(m physics.Model, dec *texture.Decoder, log *zap.Logger) *Builder {
	if log == nil {
		log = zap.NewNop()
	}
	if dec == nil {
		dec = texture.NewDecoder(log)
	}
	return &Builder{
		model:     m,
		decoder:   dec,
		log:       log,
		materials: make(map[int]*Material),
		textures:  make(map[int]*Texture),
		overrides: make(map[overrideKey]*Material),
	}
}

// Resolve returns the material for a geometry with material id matID
// (-1 for none) and its own color rgba.
//
// Without a material the flat geometry color is used. With one, the cached
// base instance is returned unless rgba differs from the base color, in
// which case a clone carrying rgba is returned; the clone keeps the base
// texture map.
func (b *Builder) Resolve(matID int, rgba [4]float32) *Material {
	if matID < 0 || matID >= b.model.Materials().Len() {
		return b.override(-1, rgba, func() *Material { return flat(rgba) })
	}

	base := b.base(matID)
	if !Differs(rgba, base.RGBA()) {
		return base
	}
	return b.override(matID, rgba, func() *Material {
		m := base.Clone()
		m.setColor(rgba)
		return m
	})
}

// Count returns the number of live material instances.
func (b *Builder) Count() int { return len(b.materials) + len(b.overrides) }

// Textures returns the decoded rasters keyed by texture id.
func (b *Builder) Textures() map[int]*texture.Raster {
	out := make(map[int]*texture.Raster, len(b.textures))
	for id, t := range b.textures {
		if t != nil {
			out[id] = t.Raster
		}
	}
	return out
}

func (b *Builder) override(matID int, rgba [4]float32, build func() *Material) *Material {
	key := overrideKey{material: matID, rgba: rgba}
	if m, ok := b.overrides[key]; ok {
		return m
	}
	m := build()
	b.overrides[key] = m
	return m
}

func flat(rgba [4]float32) *Material {
	m := &Material{
		MaterialID: -1,
		Roughness:  0.5,
		Specular:   0.5,
		Shininess:  0.5,
	}
	m.setColor(rgba)
	return m
}

func (b *Builder) base(id int) *Material {
	if m, ok := b.materials[id]; ok {
		return m
	}

	mt := b.model.Materials()
	spec := mt.SpecularOf(id)
	refl := mt.ReflectanceOf(id)
	shin := mt.ShininessOf(id)

	m := &Material{
		MaterialID:  id,
		Specular:    spec,
		Reflectance: refl,
		Shininess:   shin,
		Roughness:   math.Clamp01(1 - shin),
	}
	if refl > 0 {
		m.Metalness = math.Clamp01(refl)
	} else {
		m.Metalness = math.Clamp01(spec)
	}
	m.setColor(mt.Color(id))

	if e := mt.EmissionOf(id); e > 0 {
		m.Emissive = m.Color
		m.EmissiveIntensity = e
	}

	m.Map = b.textureFor(id)

	b.materials[id] = m
	return m
}

// textureFor clones the decoded diffuse texture of material id and applies
// the material's tiling.
func (b *Builder) textureFor(id int) *Texture {
	mt := b.model.Materials()
	texID := mt.Texture(id, physics.TexRoleRGB)
	if texID < 0 {
		texID = mt.Texture(id, physics.TexRoleUser)
	}
	if texID < 0 {
		return nil
	}

	shared := b.decoded(texID)
	if shared == nil {
		return nil
	}

	t := shared.Clone()
	rep := mt.Repeat(id)
	off := mt.Offset(id)
	t.Repeat = math.Vec2{X: rep[0], Y: rep[1]}
	t.Offset = math.Vec2{X: off[0], Y: off[1]}
	t.Rotation = mt.Rotation(id)
	if mt.Uniform(id) {
		t.Wrap = WrapRepeat
	} else {
		t.Wrap = WrapClamp
	}
	return t
}

func (b *Builder) decoded(texID int) *Texture {
	if t, ok := b.textures[texID]; ok {
		return t
	}
	tt := b.model.Textures()
	r, err := b.decoder.Decode(tt.Data, texture.DescriptorFor(tt, texID))
	if err != nil {
		b.log.Warn("texture skipped", zap.Int("texture", texID), zap.Error(err))
		b.textures[texID] = nil
		return nil
	}
	t := &Texture{Raster: r, Repeat: math.Vec2{X: 1, Y: 1}}
	b.textures[texID] = t
	return t
}
