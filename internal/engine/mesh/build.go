package mesh

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/simscene/internal/physics"
	"github.com/Faultbox/simscene/pkg/coord"
	"github.com/Faultbox/simscene/pkg/math"
)

// Options controls geometry construction.
type Options struct {
	// RecomputeNormals ignores source normals and rebuilds smoothed ones.
	RecomputeNormals bool
	// PlaneSize is the edge length of planes declared with a zero size.
	PlaneSize float32
	// RadialSegments is the segment count around spheres, capsules and cylinders.
	RadialSegments int
	// HeightSegments is the ring count of spheres and ellipsoids.
	HeightSegments int
	// CapSegments is the ring count of each capsule hemisphere.
	CapSegments int
}

// DefaultOptions returns the default tessellation.
func DefaultOptions() Options {
	return Options{
		PlaneSize:      100,
		RadialSegments: 32,
		HeightSegments: 16,
		CapSegments:    8,
	}
}

// Cache builds each model mesh once and returns the same *Geometry for
// every later reference. A Cache belongs to a single scene build.
type Cache struct {
	opts    Options
	log     *zap.Logger
	entries map[int]*Geometry
}

// NewCache creates an empty mesh cache.
func NewCache(opts Options, log *zap.Logger) *Cache {
	if log == nil {
		log = zap.NewNop()
	}
	return &Cache{opts: opts, log: log, entries: make(map[int]*Geometry)}
}

// Len returns the number of cached meshes.
func (c *Cache) Len() int { return len(c.entries) }

// Get returns the geometry of mesh id, building it on first use.
func (c *Cache) Get(m physics.Model, id int) (*Geometry, error) {
	if g, ok := c.entries[id]; ok {
		return g, nil
	}
	g, err := Assemble(m.Meshes(), id, c.opts)
	if err != nil {
		return nil, err
	}
	c.entries[id] = g
	c.log.Debug("mesh built",
		zap.Int("mesh", id),
		zap.Int("vertices", len(g.Vertices)),
		zap.Int("triangles", g.TriangleCount()))
	return g, nil
}

// Assemble reconstructs mesh id from the packed mesh table. Positions and
// normals are converted to render space. When per-face normal or texcoord
// index tables exist, each face corner's value is scattered into the slot
// of that corner's vertex index so one index buffer serves all attributes.
func Assemble(t *physics.MeshTable, id int, opts Options) (*Geometry, error) {
	if id < 0 || id >= t.Len() {
		return nil, fmt.Errorf("mesh %d: %w: id out of range", id, ErrUnsupportedShape)
	}
	vadr, vnum := int(t.VertAdr[id]), int(idx(t.VertNum, id, 0))
	if vadr < 0 || vnum <= 0 || (vadr+vnum)*3 > len(t.Vert) {
		return nil, fmt.Errorf("mesh %d: %w: vertex run %d+%d outside %d vertices",
			id, ErrUnsupportedShape, vadr, vnum, len(t.Vert)/3)
	}

	vertices := make([]Vertex, vnum)
	for i := range vertices {
		o := (vadr + i) * 3
		vertices[i].Position = coord.Point32(t.Vert[o], t.Vert[o+1], t.Vert[o+2])
	}

	fadr, fnum := int(idx(t.FaceAdr, id, 0)), int(idx(t.FaceNum, id, 0))
	if fadr < 0 || (fadr+fnum)*3 > len(t.Face) {
		fnum = 0
	}
	indices := make([]uint32, 0, fnum*3)
	for f := 0; f < fnum; f++ {
		o := (fadr + f) * 3
		a, b, c := t.Face[o], t.Face[o+1], t.Face[o+2]
		if !inRange(a, vnum) || !inRange(b, vnum) || !inRange(c, vnum) {
			continue
		}
		indices = append(indices, uint32(a), uint32(b), uint32(c))
	}

	hasNormals := scatterNormals(t, id, vertices, fadr, fnum)
	hasUV := scatterTexcoords(t, id, vertices, fadr, fnum)

	switch {
	case opts.RecomputeNormals:
		ComputeNormals(vertices, indices)
		SmoothNormals(vertices)
	case !hasNormals:
		ComputeNormals(vertices, indices)
	}

	return &Geometry{
		Kind:     KindMesh,
		MeshID:   id,
		Vertices: vertices,
		Indices:  indices,
		HasUV:    hasUV,
		Bounds:   computeBounds(vertices),
		Scale:    math.Vec3{X: 1, Y: 1, Z: 1},
	}, nil
}

func scatterNormals(t *physics.MeshTable, id int, vertices []Vertex, fadr, fnum int) bool {
	nadr, nnum := int(idx(t.NormalAdr, id, -1)), int(idx(t.NormalNum, id, 0))
	if nadr < 0 || nnum <= 0 || (nadr+nnum)*3 > len(t.Normal) {
		return false
	}
	normal := func(n int) [3]float32 {
		o := (nadr + n) * 3
		return coord.Point32(t.Normal[o], t.Normal[o+1], t.Normal[o+2])
	}

	if fnum > 0 && (fadr+fnum)*3 <= len(t.FaceNormal) {
		for f := 0; f < fnum; f++ {
			o := (fadr + f) * 3
			for k := 0; k < 3; k++ {
				v, n := t.Face[o+k], t.FaceNormal[o+k]
				if !inRange(v, len(vertices)) || !inRange(n, nnum) {
					continue
				}
				vertices[v].Normal = normal(int(n))
			}
		}
		return true
	}

	// vertex-aligned
	if nnum != len(vertices) {
		return false
	}
	for i := range vertices {
		vertices[i].Normal = normal(i)
	}
	return true
}

func scatterTexcoords(t *physics.MeshTable, id int, vertices []Vertex, fadr, fnum int) bool {
	tadr, tnum := int(idx(t.TexcoordAdr, id, -1)), int(idx(t.TexcoordNum, id, 0))
	if tadr < 0 || tnum <= 0 || (tadr+tnum)*2 > len(t.Texcoord) {
		return false
	}
	uv := func(n int) [2]float32 {
		o := (tadr + n) * 2
		return [2]float32{t.Texcoord[o], t.Texcoord[o+1]}
	}

	if fnum > 0 && (fadr+fnum)*3 <= len(t.FaceTexcoord) {
		for f := 0; f < fnum; f++ {
			o := (fadr + f) * 3
			for k := 0; k < 3; k++ {
				v, n := t.Face[o+k], t.FaceTexcoord[o+k]
				if !inRange(v, len(vertices)) || !inRange(n, tnum) {
					continue
				}
				vertices[v].TexCoord = uv(int(n))
			}
		}
		return true
	}

	if tnum != len(vertices) {
		return false
	}
	for i := range vertices {
		vertices[i].TexCoord = uv(i)
	}
	return true
}

func inRange(i int32, n int) bool {
	return i >= 0 && int(i) < n
}

func idx(s []int32, i int, def int32) int32 {
	if i < 0 || i >= len(s) {
		return def
	}
	return s[i]
}
