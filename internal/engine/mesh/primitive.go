package mesh

import (
	"fmt"

	"github.com/chewxy/math32"

	"github.com/Faultbox/simscene/internal/physics"
	"github.com/Faultbox/simscene/pkg/coord"
	"github.com/Faultbox/simscene/pkg/math"
)

// Primitive synthesizes the parametric shape for a geometry type and size.
// Height fields, SDFs, meshes and unknown codes return ErrUnsupportedShape.
func Primitive(shape physics.GeomType, size [3]float64, opts Options) (*Geometry, error) {
	radial := max(opts.RadialSegments, 3)
	rings := max(opts.HeightSegments, 2)
	caps := max(opts.CapSegments, 1)
	r := float32(size[0])

	var g *Geometry
	switch shape {
	case physics.GeomPlane:
		w, h := 2*float32(size[0]), 2*float32(size[1])
		if size[0] == 0 || size[1] == 0 {
			ps := opts.PlaneSize
			if ps <= 0 {
				ps = 100
			}
			w, h = ps, ps
		}
		g = Plane(w, h)
	case physics.GeomSphere:
		g = Sphere(r, radial, rings)
	case physics.GeomCapsule:
		g = Capsule(r, 2*float32(size[1]), radial, caps)
	case physics.GeomCylinder:
		g = Cylinder(r, 2*float32(size[1]), radial)
	case physics.GeomBox:
		g = Box(coord.Extent(size))
	case physics.GeomEllipsoid:
		g = Sphere(1, radial, rings)
		g.Kind = KindEllipsoid
		g.Scale = coord.Extent(size)
	case physics.GeomMesh:
		return nil, fmt.Errorf("%w: mesh geometry without a mesh id", ErrUnsupportedShape)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedShape, shape)
	}
	return g, nil
}

// Plane builds a w x h quad in the XY plane facing +Z.
func Plane(w, h float32) *Geometry {
	hw, hh := w/2, h/2
	n := [3]float32{0, 0, 1}
	vertices := []Vertex{
		{Position: [3]float32{-hw, hh, 0}, Normal: n, TexCoord: [2]float32{0, 1}},
		{Position: [3]float32{hw, hh, 0}, Normal: n, TexCoord: [2]float32{1, 1}},
		{Position: [3]float32{-hw, -hh, 0}, Normal: n, TexCoord: [2]float32{0, 0}},
		{Position: [3]float32{hw, -hh, 0}, Normal: n, TexCoord: [2]float32{1, 0}},
	}
	return primitive(KindPlane, vertices, []uint32{0, 2, 1, 2, 3, 1})
}

// Box builds a box from half extents.
func Box(half math.Vec3) *Geometry {
	x, y, z := half.X, half.Y, half.Z
	faces := []struct {
		n      [3]float32
		corner [4][3]float32 // counter-clockwise seen from outside
	}{
		{[3]float32{1, 0, 0}, [4][3]float32{{x, -y, z}, {x, -y, -z}, {x, y, -z}, {x, y, z}}},
		{[3]float32{-1, 0, 0}, [4][3]float32{{-x, -y, -z}, {-x, -y, z}, {-x, y, z}, {-x, y, -z}}},
		{[3]float32{0, 1, 0}, [4][3]float32{{-x, y, z}, {x, y, z}, {x, y, -z}, {-x, y, -z}}},
		{[3]float32{0, -1, 0}, [4][3]float32{{-x, -y, -z}, {x, -y, -z}, {x, -y, z}, {-x, -y, z}}},
		{[3]float32{0, 0, 1}, [4][3]float32{{-x, -y, z}, {x, -y, z}, {x, y, z}, {-x, y, z}}},
		{[3]float32{0, 0, -1}, [4][3]float32{{x, -y, -z}, {-x, -y, -z}, {-x, y, -z}, {x, y, -z}}},
	}
	uvs := [4][2]float32{{0, 0}, {1, 0}, {1, 1}, {0, 1}}

	vertices := make([]Vertex, 0, 24)
	indices := make([]uint32, 0, 36)
	for _, f := range faces {
		base := uint32(len(vertices))
		for k := 0; k < 4; k++ {
			vertices = append(vertices, Vertex{Position: f.corner[k], Normal: f.n, TexCoord: uvs[k]})
		}
		indices = append(indices, base, base+1, base+2, base, base+2, base+3)
	}
	return primitive(KindBox, vertices, indices)
}

// Sphere builds a UV sphere around the Y axis.
func Sphere(radius float32, radial, rings int) *Geometry {
	profile := make([]ring, rings+1)
	for i := range profile {
		phi := float32(i) / float32(rings) * math32.Pi
		s, c := math32.Sincos(phi)
		profile[i] = ring{r: radius * s, y: radius * c, nr: s, ny: c}
	}
	profile[rings] = ring{y: -radius, ny: -1}
	vertices, indices := lathe(profile, radial)
	return primitive(KindSphere, vertices, indices)
}

// Capsule builds a capsule along Y: a cylinder of the given height capped
// by two hemispheres of the given radius.
func Capsule(radius, height float32, radial, capRings int) *Geometry {
	half := height / 2
	profile := make([]ring, 0, 2*(capRings+1))
	for i := 0; i <= capRings; i++ {
		phi := float32(i) / float32(capRings) * math32.Pi / 2
		s, c := math32.Sincos(phi)
		profile = append(profile, ring{r: radius * s, y: half + radius*c, nr: s, ny: c})
	}
	for i := 0; i <= capRings; i++ {
		phi := math32.Pi/2 + float32(i)/float32(capRings)*math32.Pi/2
		s, c := math32.Sincos(phi)
		profile = append(profile, ring{r: radius * s, y: -half + radius*c, nr: s, ny: c})
	}
	profile[len(profile)-1] = ring{y: -half - radius, ny: -1}
	vertices, indices := lathe(profile, radial)
	return primitive(KindCapsule, vertices, indices)
}

// Cylinder builds a capped cylinder along Y.
func Cylinder(radius, height float32, radial int) *Geometry {
	half := height / 2
	profile := []ring{
		{r: 0, y: half, ny: 1},
		{r: radius, y: half, ny: 1},
		{r: radius, y: half, nr: 1},
		{r: radius, y: -half, nr: 1},
		{r: radius, y: -half, ny: -1},
		{r: 0, y: -half, ny: -1},
	}
	vertices, indices := lathe(profile, radial)
	return primitive(KindCylinder, vertices, indices)
}

// ring is one profile point of a surface of revolution: radius and height
// plus the normal in the (radial, up) plane.
type ring struct {
	r, y   float32
	nr, ny float32
}

// lathe revolves a top-to-bottom profile around the Y axis.
func lathe(profile []ring, radial int) ([]Vertex, []uint32) {
	stride := radial + 1
	vertices := make([]Vertex, 0, len(profile)*stride)
	for i, p := range profile {
		v := float32(i) / float32(len(profile)-1)
		for j := 0; j <= radial; j++ {
			u := float32(j) / float32(radial)
			s, c := math32.Sincos(u * 2 * math32.Pi)
			vertices = append(vertices, Vertex{
				Position: [3]float32{p.r * s, p.y, p.r * c},
				Normal:   [3]float32{p.nr * s, p.ny, p.nr * c},
				TexCoord: [2]float32{u, 1 - v},
			})
		}
	}

	var indices []uint32
	for i := 0; i+1 < len(profile); i++ {
		top, bottom := profile[i], profile[i+1]
		// rings sharing a position only switch normals
		if top.r == bottom.r && top.y == bottom.y {
			continue
		}
		for j := 0; j < radial; j++ {
			a := uint32(i*stride + j)
			b := a + uint32(stride)
			c := b + 1
			d := a + 1
			if top.r != 0 {
				indices = append(indices, a, b, d)
			}
			if bottom.r != 0 {
				indices = append(indices, b, c, d)
			}
		}
	}
	return vertices, indices
}

func primitive(kind Kind, vertices []Vertex, indices []uint32) *Geometry {
	return &Geometry{
		Kind:     kind,
		MeshID:   -1,
		Vertices: vertices,
		Indices:  indices,
		HasUV:    true,
		Bounds:   computeBounds(vertices),
		Scale:    math.Vec3{X: 1, Y: 1, Z: 1},
	}
}
