// Package physics describes the read-only compiled tables of a loaded physics
// model and the simulation state built from it.
package physics

import "fmt"

// GeomType is the shape code of a geometry descriptor.
type GeomType int32

const (
	GeomPlane GeomType = iota
	GeomHeightField
	GeomSphere
	GeomCapsule
	GeomEllipsoid
	GeomCylinder
	GeomBox
	GeomMesh
	GeomSDF
)

// String returns a human-readable shape name.
func (t GeomType) String() string {
	switch t {
	case GeomPlane:
		return "plane"
	case GeomHeightField:
		return "hfield"
	case GeomSphere:
		return "sphere"
	case GeomCapsule:
		return "capsule"
	case GeomEllipsoid:
		return "ellipsoid"
	case GeomCylinder:
		return "cylinder"
	case GeomBox:
		return "box"
	case GeomMesh:
		return "mesh"
	case GeomSDF:
		return "sdf"
	default:
		return fmt.Sprintf("unknown(%d)", int32(t))
	}
}

// TextureType is the layout code of a texture record.
type TextureType int32

const (
	Texture2D TextureType = iota
	TextureCube
	TextureSkybox
)

// String returns a human-readable texture type name.
func (t TextureType) String() string {
	switch t {
	case Texture2D:
		return "2d"
	case TextureCube:
		return "cube"
	case TextureSkybox:
		return "skybox"
	default:
		return fmt.Sprintf("unknown(%d)", int32(t))
	}
}

// ColorSpace is the source color-space flag of a texture.
type ColorSpace int32

const (
	ColorSpaceAuto ColorSpace = iota
	ColorSpaceLinear
	ColorSpaceSRGB
)

// Texture roles of a material's texture slots.
const (
	TexRoleUser = iota
	TexRoleRGB
	TexRoleOcclusion
	TexRoleRoughness
	TexRoleMetallic
	TexRoleNormal
	TexRoleOpacity
	TexRoleEmissive
	TexRoleRGBA
	TexRoleORM
	TexRoleCount
)

// MaxRenderGroup is the first visibility group excluded from rendering.
const MaxRenderGroup = 3

// Model exposes the typed buffers of one compiled physics model.
// Implementations must be safe for concurrent reads.
type Model interface {
	Geoms() *GeomTable
	Meshes() *MeshTable
	Materials() *MaterialTable
	Textures() *TextureTable
	Lights() *LightTable
	Bodies() *BodyTable
	// Names returns the packed null-terminated name blob.
	Names() []byte
	// Release frees the resources held by the model.
	Release() error
}

// State is the simulation state constructed from a model.
type State interface {
	// BodyPose returns the world pose of a body in physics convention,
	// quaternion stored (w, x, y, z).
	BodyPose(id int) (pos [3]float64, quat [4]float64, ok bool)
	// Release frees the resources held by the state.
	Release() error
}

// Loader is the model-loading capability: it reads compiled models and
// constructs simulation state for them.
type Loader interface {
	LoadModel(path string) (Model, error)
	NewState(m Model) (State, error)
}
