package physics

import (
	"errors"
	"fmt"
)

// ErrInvalidTables is returned when a table's columns disagree on length.
var ErrInvalidTables = errors.New("invalid model tables")

// GeomTable holds per-geometry columns.
type GeomTable struct {
	Type   []int32
	Size   []float64 // 3 per geom
	BodyID []int32
	MatID  []int32 // -1 = none
	DataID []int32 // mesh id, -1 = none
	Group  []int32
	Pos    []float64 // 3 per geom, body frame
	Quat   []float64 // 4 per geom (w, x, y, z), body frame
	RGBA   []float32 // 4 per geom
}

// Len returns the number of geometries.
func (t *GeomTable) Len() int { return len(t.Type) }

// Shape returns the shape code of geom i.
func (t *GeomTable) Shape(i int) GeomType { return GeomType(t.Type[i]) }

// SizeOf returns the size vector of geom i.
func (t *GeomTable) SizeOf(i int) [3]float64 { return vec3(t.Size, i) }

// Body returns the owning body of geom i.
func (t *GeomTable) Body(i int) int { return int(at(t.BodyID, i, 0)) }

// Material returns the material id of geom i, or -1.
func (t *GeomTable) Material(i int) int { return int(at(t.MatID, i, -1)) }

// Mesh returns the mesh id of geom i, or -1.
func (t *GeomTable) Mesh(i int) int { return int(at(t.DataID, i, -1)) }

// GroupOf returns the visibility group of geom i.
func (t *GeomTable) GroupOf(i int) int { return int(at(t.Group, i, 0)) }

// Color returns the rgba color of geom i. A missing column yields mid gray.
func (t *GeomTable) Color(i int) [4]float32 {
	if i*4+3 >= len(t.RGBA) {
		return [4]float32{0.5, 0.5, 0.5, 1}
	}
	return [4]float32{t.RGBA[i*4], t.RGBA[i*4+1], t.RGBA[i*4+2], t.RGBA[i*4+3]}
}

// MeshTable holds per-mesh address/count pairs and the packed mesh buffers.
// Face indices are relative to the mesh's own vertex, normal and texcoord runs.
type MeshTable struct {
	VertAdr     []int32
	VertNum     []int32
	Vert        []float32 // 3 per vertex
	NormalAdr   []int32
	NormalNum   []int32
	Normal      []float32 // 3 per normal
	TexcoordAdr []int32   // -1 = no texcoords
	TexcoordNum []int32
	Texcoord    []float32 // 2 per texcoord
	FaceAdr     []int32
	FaceNum     []int32
	Face        []int32 // 3 vertex indices per face
	// FaceNormal and FaceTexcoord are the optional indirection tables:
	// 3 normal / texcoord indices per face.
	FaceNormal   []int32
	FaceTexcoord []int32
}

// Len returns the number of meshes.
func (t *MeshTable) Len() int { return len(t.VertAdr) }

// MaterialTable holds per-material appearance columns.
type MaterialTable struct {
	RGBA        []float32 // 4 per material
	Specular    []float32
	Reflectance []float32
	Shininess   []float32
	Emission    []float32
	// TexID holds TexRoleCount slots per material, or one slot per material
	// for models compiled without texture roles.
	TexID       []int32
	TexRepeat   []float32 // 2 per material
	TexUniform  []bool
	TexOffset   []float32 // 2 per material, optional
	TexRotation []float32 // radians, optional
}

// Len returns the number of materials.
func (t *MaterialTable) Len() int { return len(t.RGBA) / 4 }

// Color returns the base rgba of material i.
func (t *MaterialTable) Color(i int) [4]float32 {
	if i*4+3 >= len(t.RGBA) {
		return [4]float32{1, 1, 1, 1}
	}
	return [4]float32{t.RGBA[i*4], t.RGBA[i*4+1], t.RGBA[i*4+2], t.RGBA[i*4+3]}
}

// SpecularOf returns the specular weight of material i (default 0.5).
func (t *MaterialTable) SpecularOf(i int) float32 { return at(t.Specular, i, 0.5) }

// ReflectanceOf returns the reflectance of material i (default 0).
func (t *MaterialTable) ReflectanceOf(i int) float32 { return at(t.Reflectance, i, 0) }

// ShininessOf returns the shininess of material i (default 0.5).
func (t *MaterialTable) ShininessOf(i int) float32 { return at(t.Shininess, i, 0.5) }

// EmissionOf returns the emission of material i (default 0).
func (t *MaterialTable) EmissionOf(i int) float32 { return at(t.Emission, i, 0) }

// Repeat returns the texture repeat of material i (default 1,1).
func (t *MaterialTable) Repeat(i int) [2]float32 {
	if i*2+1 >= len(t.TexRepeat) {
		return [2]float32{1, 1}
	}
	return [2]float32{t.TexRepeat[i*2], t.TexRepeat[i*2+1]}
}

// Offset returns the texture offset of material i (default 0,0).
func (t *MaterialTable) Offset(i int) [2]float32 {
	if i*2+1 >= len(t.TexOffset) {
		return [2]float32{}
	}
	return [2]float32{t.TexOffset[i*2], t.TexOffset[i*2+1]}
}

// Rotation returns the texture rotation of material i (default 0).
func (t *MaterialTable) Rotation(i int) float32 { return at(t.TexRotation, i, 0) }

// Uniform reports whether material i uses uniform texture mapping.
func (t *MaterialTable) Uniform(i int) bool { return at(t.TexUniform, i, false) }

// Texture returns the texture id bound to role for material i, or -1.
func (t *MaterialTable) Texture(i, role int) int {
	n := t.Len()
	if n == 0 || len(t.TexID) == 0 {
		return -1
	}
	stride := len(t.TexID) / n
	switch {
	case stride >= TexRoleCount:
		return int(at(t.TexID, i*stride+role, -1))
	case stride == 1:
		// single-slot layout only carries the color texture
		if role == TexRoleRGB || role == TexRoleUser {
			return int(at(t.TexID, i, -1))
		}
	}
	return -1
}

// TextureTable holds per-texture descriptors and the packed texel bytes.
type TextureTable struct {
	Type       []int32
	Width      []int32
	Height     []int32
	Adr        []int32
	NChannel   []int32
	ColorSpace []int32
	Data       []byte
}

// Len returns the number of textures.
func (t *TextureTable) Len() int { return len(t.Width) }

// Kind returns the texture type of texture i (default 2D).
func (t *TextureTable) Kind(i int) TextureType { return TextureType(at(t.Type, i, int32(Texture2D))) }

// Channels returns the channel count of texture i (default 3).
func (t *TextureTable) Channels(i int) int { return int(at(t.NChannel, i, 3)) }

// Space returns the color-space flag of texture i.
func (t *TextureTable) Space(i int) ColorSpace {
	return ColorSpace(at(t.ColorSpace, i, int32(ColorSpaceAuto)))
}

// LightTable holds per-light columns.
type LightTable struct {
	Pos         []float64 // 3 per light, body frame
	Dir         []float64 // 3 per light, body frame
	Diffuse     []float32 // 3 per light
	Ambient     []float32 // 3 per light
	Specular    []float32 // 3 per light
	Attenuation []float32 // 3 per light: constant, linear, quadratic
	Cutoff      []float32 // degrees
	Exponent    []float32
	Directional []bool
	CastShadow  []bool
	BodyID      []int32
}

// Len returns the number of lights.
func (t *LightTable) Len() int { return len(t.Pos) / 3 }

// DiffuseOf returns the diffuse color of light i (default 0.7 gray).
func (t *LightTable) DiffuseOf(i int) [3]float32 { return rgb(t.Diffuse, i, 0.7) }

// AmbientOf returns the ambient color of light i (default black).
func (t *LightTable) AmbientOf(i int) [3]float32 { return rgb(t.Ambient, i, 0) }

// AttenuationOf returns the attenuation polynomial of light i (default 1,0,0).
func (t *LightTable) AttenuationOf(i int) [3]float32 {
	if i*3+2 >= len(t.Attenuation) {
		return [3]float32{1, 0, 0}
	}
	return [3]float32{t.Attenuation[i*3], t.Attenuation[i*3+1], t.Attenuation[i*3+2]}
}

// CutoffOf returns the spot cutoff of light i in degrees (default 0 = none).
func (t *LightTable) CutoffOf(i int) float32 { return at(t.Cutoff, i, 0) }

// ExponentOf returns the spot exponent of light i.
func (t *LightTable) ExponentOf(i int) float32 { return at(t.Exponent, i, 0) }

// IsDirectional reports whether light i is directional.
func (t *LightTable) IsDirectional(i int) bool { return at(t.Directional, i, false) }

// CastsShadow reports whether light i casts shadows.
func (t *LightTable) CastsShadow(i int) bool { return at(t.CastShadow, i, false) }

// Body returns the owning body of light i (default 0 = world).
func (t *LightTable) Body(i int) int { return int(at(t.BodyID, i, 0)) }

// BodyTable holds the kinematic tree and body names.
type BodyTable struct {
	ParentID []int32
	Pos      []float64 // 3 per body, parent frame
	Quat     []float64 // 4 per body (w, x, y, z), parent frame
	NameAdr  []int32
}

// Len returns the number of bodies.
func (t *BodyTable) Len() int { return len(t.ParentID) }

// Parent returns the parent of body i, or -1 for the world body.
func (t *BodyTable) Parent(i int) int {
	if i == 0 {
		return -1
	}
	return int(at(t.ParentID, i, 0))
}

// Tables is an in-memory Model.
type Tables struct {
	Geom     GeomTable
	Mesh     MeshTable
	Material MaterialTable
	Texture  TextureTable
	Light    LightTable
	Body     BodyTable
	NameBlob []byte

	released bool
}

func (t *Tables) Geoms() *GeomTable         { return &t.Geom }
func (t *Tables) Meshes() *MeshTable        { return &t.Mesh }
func (t *Tables) Materials() *MaterialTable { return &t.Material }
func (t *Tables) Textures() *TextureTable   { return &t.Texture }
func (t *Tables) Lights() *LightTable       { return &t.Light }
func (t *Tables) Bodies() *BodyTable        { return &t.Body }
func (t *Tables) Names() []byte             { return t.NameBlob }

// Release drops the table buffers. Releasing twice is an error.
func (t *Tables) Release() error {
	if t.released {
		return fmt.Errorf("model already released")
	}
	t.released = true
	*t = Tables{released: true}
	return nil
}

// Validate checks that required columns agree with the table counts.
func (t *Tables) Validate() error {
	ng := t.Geom.Len()
	if err := stride("geom_size", len(t.Geom.Size), ng, 3); err != nil {
		return err
	}
	if err := stride("geom_bodyid", len(t.Geom.BodyID), ng, 1); err != nil {
		return err
	}
	if len(t.Geom.Pos) != 0 {
		if err := stride("geom_pos", len(t.Geom.Pos), ng, 3); err != nil {
			return err
		}
	}
	if len(t.Geom.Quat) != 0 {
		if err := stride("geom_quat", len(t.Geom.Quat), ng, 4); err != nil {
			return err
		}
	}

	nm := t.Mesh.Len()
	for _, c := range []struct {
		name string
		n    int
	}{
		{"mesh_vertnum", len(t.Mesh.VertNum)},
		{"mesh_faceadr", len(t.Mesh.FaceAdr)},
		{"mesh_facenum", len(t.Mesh.FaceNum)},
	} {
		if err := stride(c.name, c.n, nm, 1); err != nil {
			return err
		}
	}

	nt := t.Texture.Len()
	if err := stride("tex_height", len(t.Texture.Height), nt, 1); err != nil {
		return err
	}
	if err := stride("tex_adr", len(t.Texture.Adr), nt, 1); err != nil {
		return err
	}

	if len(t.Light.Pos)%3 != 0 {
		return fmt.Errorf("%w: light_pos has %d values, not a multiple of 3", ErrInvalidTables, len(t.Light.Pos))
	}

	nb := t.Body.Len()
	if nb == 0 {
		return fmt.Errorf("%w: model has no bodies", ErrInvalidTables)
	}
	for i := 0; i < ng; i++ {
		if b := t.Geom.Body(i); b < 0 || b >= nb {
			return fmt.Errorf("%w: geom %d references body %d of %d", ErrInvalidTables, i, b, nb)
		}
	}
	return nil
}

func stride(name string, got, count, per int) error {
	if got != count*per {
		return fmt.Errorf("%w: %s has %d values, want %d", ErrInvalidTables, name, got, count*per)
	}
	return nil
}

func at[T any](s []T, i int, def T) T {
	if i < 0 || i >= len(s) {
		return def
	}
	return s[i]
}

func vec3(s []float64, i int) [3]float64 {
	if i < 0 || i*3+2 >= len(s) {
		return [3]float64{}
	}
	return [3]float64{s[i*3], s[i*3+1], s[i*3+2]}
}

func rgb(s []float32, i int, def float32) [3]float32 {
	if i < 0 || i*3+2 >= len(s) {
		return [3]float32{def, def, def}
	}
	return [3]float32{s[i*3], s[i*3+1], s[i*3+2]}
}
