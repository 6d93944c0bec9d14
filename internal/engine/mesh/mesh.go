// Package mesh reconstructs indexed render geometry from model mesh buffers
// and synthesizes the parametric primitive shapes.
package mesh

import (
	"errors"

	"github.com/chewxy/math32"

	"github.com/Faultbox/simscene/pkg/math"
)

// ErrUnsupportedShape is returned for shapes that produce no geometry.
var ErrUnsupportedShape = errors.New("unsupported shape")

// Kind identifies how a geometry was produced.
type Kind int

const (
	KindMesh Kind = iota
	KindPlane
	KindSphere
	KindCapsule
	KindCylinder
	KindBox
	KindEllipsoid
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindMesh:
		return "mesh"
	case KindPlane:
		return "plane"
	case KindSphere:
		return "sphere"
	case KindCapsule:
		return "capsule"
	case KindCylinder:
		return "cylinder"
	case KindBox:
		return "box"
	case KindEllipsoid:
		return "ellipsoid"
	default:
		return "unknown"
	}
}

// Vertex is one render vertex.
type Vertex struct {
	Position [3]float32
	Normal   [3]float32
	TexCoord [2]float32
}

// Bounds holds an axis-aligned bounding box.
type Bounds struct {
	Min [3]float32
	Max [3]float32
}

// Center returns the box center.
func (b Bounds) Center() math.Vec3 {
	return math.Vec3{
		X: (b.Min[0] + b.Max[0]) / 2,
		Y: (b.Min[1] + b.Max[1]) / 2,
		Z: (b.Min[2] + b.Max[2]) / 2,
	}
}

// Size returns the box extent along each axis.
func (b Bounds) Size() math.Vec3 {
	return math.Vec3{X: b.Max[0] - b.Min[0], Y: b.Max[1] - b.Min[1], Z: b.Max[2] - b.Min[2]}
}

// Geometry is indexed render geometry. One index buffer addresses
// positions, normals and texcoords alike.
type Geometry struct {
	Kind     Kind
	MeshID   int // -1 for primitives
	Vertices []Vertex
	Indices  []uint32
	HasUV    bool
	Bounds   Bounds
	// Scale is the node scale the geometry is authored for. It is (1,1,1)
	// except for ellipsoids, which are unit spheres.
	Scale math.Vec3
}

// TriangleCount returns the number of triangles.
func (g *Geometry) TriangleCount() int { return len(g.Indices) / 3 }

// Corners returns the eight corners of b.
func (b Bounds) Corners() [8]math.Vec3 {
	var out [8]math.Vec3
	for i := range out {
		out[i] = math.Vec3{X: b.Min[0], Y: b.Min[1], Z: b.Min[2]}
		if i&1 != 0 {
			out[i].X = b.Max[0]
		}
		if i&2 != 0 {
			out[i].Y = b.Max[1]
		}
		if i&4 != 0 {
			out[i].Z = b.Max[2]
		}
	}
	return out
}

func emptyBounds() Bounds {
	return Bounds{
		Min: [3]float32{1e10, 1e10, 1e10},
		Max: [3]float32{-1e10, -1e10, -1e10},
	}
}

func updateBounds(b *Bounds, p [3]float32) {
	if p[0] < b.Min[0] {
		b.Min[0] = p[0]
	}
	if p[1] < b.Min[1] {
		b.Min[1] = p[1]
	}
	if p[2] < b.Min[2] {
		b.Min[2] = p[2]
	}
	if p[0] > b.Max[0] {
		b.Max[0] = p[0]
	}
	if p[1] > b.Max[1] {
		b.Max[1] = p[1]
	}
	if p[2] > b.Max[2] {
		b.Max[2] = p[2]
	}
}

func computeBounds(vertices []Vertex) Bounds {
	if len(vertices) == 0 {
		return Bounds{}
	}
	b := emptyBounds()
	for i := range vertices {
		updateBounds(&b, vertices[i].Position)
	}
	return b
}

// ComputeNormals replaces vertex normals with area-weighted face normals.
func ComputeNormals(vertices []Vertex, indices []uint32) {
	for i := range vertices {
		vertices[i].Normal = [3]float32{}
	}
	n := uint32(len(vertices))
	for f := 0; f+2 < len(indices); f += 3 {
		a, b, c := indices[f], indices[f+1], indices[f+2]
		if a >= n || b >= n || c >= n {
			continue
		}
		p0 := vertices[a].Position
		p1 := vertices[b].Position
		p2 := vertices[c].Position
		e1 := [3]float32{p1[0] - p0[0], p1[1] - p0[1], p1[2] - p0[2]}
		e2 := [3]float32{p2[0] - p0[0], p2[1] - p0[1], p2[2] - p0[2]}
		fn := cross(e1, e2)
		for _, idx := range [3]uint32{a, b, c} {
			vertices[idx].Normal[0] += fn[0]
			vertices[idx].Normal[1] += fn[1]
			vertices[idx].Normal[2] += fn[2]
		}
	}
	for i := range vertices {
		vertices[i].Normal = normalize(vertices[i].Normal)
	}
}

// SmoothNormals averages normals at shared vertex positions.
// This reduces faceted appearance on models.
func SmoothNormals(vertices []Vertex) {
	const epsilon float32 = 0.001

	// Group vertices by quantized position for O(n) lookup
	posMap := make(map[[3]int32][]int)
	for i := range vertices {
		key := [3]int32{
			int32(vertices[i].Position[0] / epsilon),
			int32(vertices[i].Position[1] / epsilon),
			int32(vertices[i].Position[2] / epsilon),
		}
		posMap[key] = append(posMap[key], i)
	}

	// Average normals for vertices at same position
	for _, idxs := range posMap {
		if len(idxs) < 2 {
			continue
		}

		var sum [3]float32
		for _, idx := range idxs {
			sum[0] += vertices[idx].Normal[0]
			sum[1] += vertices[idx].Normal[1]
			sum[2] += vertices[idx].Normal[2]
		}

		avg := normalize(sum)

		for _, idx := range idxs {
			vertices[idx].Normal = avg
		}
	}
}

func cross(a, b [3]float32) [3]float32 {
	return [3]float32{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}

func normalize(v [3]float32) [3]float32 {
	length := math32.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
	if length < 0.0001 {
		return [3]float32{0, 1, 0}
	}
	return [3]float32{v[0] / length, v[1] / length, v[2] / length}
}
