package physics

import (
	"fmt"
	"io/fs"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/simscene/pkg/formats"
)

// FileLoader loads compiled SMDL models from a filesystem.
type FileLoader struct {
	FS  fs.FS
	Log *zap.Logger
}

// NewFileLoader creates a loader reading from fsys.
func NewFileLoader(fsys fs.FS, log *zap.Logger) *FileLoader {
	if log == nil {
		log = zap.NewNop()
	}
	return &FileLoader{FS: fsys, Log: log}
}

// LoadModel reads the compiled model at path. A scene path such as
// "robots/arm.xml" resolves to its compiled sibling "robots/arm.smdl".
func (l *FileLoader) LoadModel(path string) (Model, error) {
	p := CompiledPath(path)
	data, err := fs.ReadFile(l.FS, p)
	if err != nil {
		return nil, fmt.Errorf("reading model %s: %w", p, err)
	}
	mf, err := formats.ParseModel(data)
	if err != nil {
		return nil, fmt.Errorf("parsing model %s: %w", p, err)
	}
	t, err := FromModelFile(mf)
	if err != nil {
		return nil, fmt.Errorf("decoding model %s: %w", p, err)
	}
	l.Log.Debug("model loaded",
		zap.String("path", p),
		zap.Int("geoms", t.Geom.Len()),
		zap.Int("meshes", t.Mesh.Len()),
		zap.Int("bodies", t.Body.Len()),
		zap.Int("lights", t.Light.Len()))
	return t, nil
}

// NewState constructs world poses for m.
func (l *FileLoader) NewState(m Model) (State, error) {
	s, err := NewState(m)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// CompiledPath maps a scene path to the path of its compiled model.
func CompiledPath(path string) string {
	if strings.HasSuffix(path, ".smdl") {
		return path
	}
	if i := strings.LastIndexByte(path, '.'); i > strings.LastIndexByte(path, '/') {
		path = path[:i]
	}
	return path + ".smdl"
}

// column binds one SMDL section to one table column.
type column struct {
	name string
	i32  *[]int32
	f32  *[]float32
	f64  *[]float64
	b    *[]byte
	bl   *[]bool
}

func (t *Tables) columns() []column {
	return []column{
		{name: "geom_type", i32: &t.Geom.Type},
		{name: "geom_size", f64: &t.Geom.Size},
		{name: "geom_bodyid", i32: &t.Geom.BodyID},
		{name: "geom_matid", i32: &t.Geom.MatID},
		{name: "geom_dataid", i32: &t.Geom.DataID},
		{name: "geom_group", i32: &t.Geom.Group},
		{name: "geom_pos", f64: &t.Geom.Pos},
		{name: "geom_quat", f64: &t.Geom.Quat},
		{name: "geom_rgba", f32: &t.Geom.RGBA},

		{name: "mesh_vertadr", i32: &t.Mesh.VertAdr},
		{name: "mesh_vertnum", i32: &t.Mesh.VertNum},
		{name: "mesh_vert", f32: &t.Mesh.Vert},
		{name: "mesh_normaladr", i32: &t.Mesh.NormalAdr},
		{name: "mesh_normalnum", i32: &t.Mesh.NormalNum},
		{name: "mesh_normal", f32: &t.Mesh.Normal},
		{name: "mesh_texcoordadr", i32: &t.Mesh.TexcoordAdr},
		{name: "mesh_texcoordnum", i32: &t.Mesh.TexcoordNum},
		{name: "mesh_texcoord", f32: &t.Mesh.Texcoord},
		{name: "mesh_faceadr", i32: &t.Mesh.FaceAdr},
		{name: "mesh_facenum", i32: &t.Mesh.FaceNum},
		{name: "mesh_face", i32: &t.Mesh.Face},
		{name: "mesh_facenormal", i32: &t.Mesh.FaceNormal},
		{name: "mesh_facetexcoord", i32: &t.Mesh.FaceTexcoord},

		{name: "mat_rgba", f32: &t.Material.RGBA},
		{name: "mat_specular", f32: &t.Material.Specular},
		{name: "mat_reflectance", f32: &t.Material.Reflectance},
		{name: "mat_shininess", f32: &t.Material.Shininess},
		{name: "mat_emission", f32: &t.Material.Emission},
		{name: "mat_texid", i32: &t.Material.TexID},
		{name: "mat_texrepeat", f32: &t.Material.TexRepeat},
		{name: "mat_texuniform", bl: &t.Material.TexUniform},
		{name: "mat_texoffset", f32: &t.Material.TexOffset},
		{name: "mat_texrotation", f32: &t.Material.TexRotation},

		{name: "tex_type", i32: &t.Texture.Type},
		{name: "tex_width", i32: &t.Texture.Width},
		{name: "tex_height", i32: &t.Texture.Height},
		{name: "tex_adr", i32: &t.Texture.Adr},
		{name: "tex_nchannel", i32: &t.Texture.NChannel},
		{name: "tex_colorspace", i32: &t.Texture.ColorSpace},
		{name: "tex_data", b: &t.Texture.Data},

		{name: "light_pos", f64: &t.Light.Pos},
		{name: "light_dir", f64: &t.Light.Dir},
		{name: "light_diffuse", f32: &t.Light.Diffuse},
		{name: "light_ambient", f32: &t.Light.Ambient},
		{name: "light_specular", f32: &t.Light.Specular},
		{name: "light_attenuation", f32: &t.Light.Attenuation},
		{name: "light_cutoff", f32: &t.Light.Cutoff},
		{name: "light_exponent", f32: &t.Light.Exponent},
		{name: "light_directional", bl: &t.Light.Directional},
		{name: "light_castshadow", bl: &t.Light.CastShadow},
		{name: "light_bodyid", i32: &t.Light.BodyID},

		{name: "body_parentid", i32: &t.Body.ParentID},
		{name: "body_pos", f64: &t.Body.Pos},
		{name: "body_quat", f64: &t.Body.Quat},
		{name: "body_nameadr", i32: &t.Body.NameAdr},

		{name: "names", b: &t.NameBlob},
	}
}

// FromModelFile decodes the known sections of mf into validated tables.
// Unknown sections are ignored; absent optional columns stay empty.
func FromModelFile(mf *formats.ModelFile) (*Tables, error) {
	t := &Tables{}
	for _, c := range t.columns() {
		var err error
		switch {
		case c.i32 != nil:
			*c.i32, err = mf.Int32s(c.name)
		case c.f32 != nil:
			*c.f32, err = mf.Float32s(c.name)
		case c.f64 != nil:
			*c.f64, err = mf.Float64s(c.name)
		case c.b != nil:
			*c.b, err = mf.Bytes(c.name)
		case c.bl != nil:
			*c.bl, err = mf.Bools(c.name)
		}
		if err != nil {
			return nil, err
		}
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// ToModelFile encodes the populated columns of t.
func (t *Tables) ToModelFile() *formats.ModelFile {
	mf := formats.NewModelFile()
	for _, c := range t.columns() {
		switch {
		case c.i32 != nil && *c.i32 != nil:
			mf.PutInt32s(c.name, *c.i32)
		case c.f32 != nil && *c.f32 != nil:
			mf.PutFloat32s(c.name, *c.f32)
		case c.f64 != nil && *c.f64 != nil:
			mf.PutFloat64s(c.name, *c.f64)
		case c.b != nil && *c.b != nil:
			mf.PutBytes(c.name, *c.b)
		case c.bl != nil && *c.bl != nil:
			mf.PutBools(c.name, *c.bl)
		}
	}
	return mf
}
