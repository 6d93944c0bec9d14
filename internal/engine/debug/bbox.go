package debug

import (
	"github.com/Faultbox/simscene/internal/engine/mesh"
	"github.com/Faultbox/simscene/internal/engine/scene"
	"github.com/Faultbox/simscene/pkg/math"
)

// BBoxWireframeVertexCount is the number of vertices for a bbox wireframe (12 edges × 2).
const BBoxWireframeVertexCount = 24

// BBoxWireframe creates line vertices for a wireframe box, format [x, y, z]
// per vertex, two vertices per edge.
func BBoxWireframe(b mesh.Bounds) []float32 {
	minX, minY, minZ := b.Min[0], b.Min[1], b.Min[2]
	maxX, maxY, maxZ := b.Max[0], b.Max[1], b.Max[2]
	return []float32{
		// Bottom face (4 edges)
		minX, minY, minZ, maxX, minY, minZ,
		maxX, minY, minZ, maxX, minY, maxZ,
		maxX, minY, maxZ, minX, minY, maxZ,
		minX, minY, maxZ, minX, minY, minZ,
		// Top face (4 edges)
		minX, maxY, minZ, maxX, maxY, minZ,
		maxX, maxY, minZ, maxX, maxY, maxZ,
		maxX, maxY, maxZ, minX, maxY, maxZ,
		minX, maxY, maxZ, minX, maxY, minZ,
		// Vertical edges (4 edges)
		minX, minY, minZ, minX, maxY, minZ,
		maxX, minY, minZ, maxX, maxY, minZ,
		maxX, minY, maxZ, maxX, maxY, maxZ,
		minX, minY, maxZ, minX, maxY, maxZ,
	}
}

// UnitBox is the wireframe each bounds instance scales: a unit cube
// centered on the origin.
var UnitBox = BBoxWireframe(mesh.Bounds{
	Min: [3]float32{-0.5, -0.5, -0.5},
	Max: [3]float32{0.5, 0.5, 0.5},
})

// OverlayBounds fills the graph's line batch with one instance per mesh
// node: the node's world transform applied to its geometry bounds, padded
// by padding on every side. Instances past the batch capacity are dropped.
// It returns the number of instances written.
func OverlayBounds(g *scene.Graph, padding float32, color [4]float32) int {
	batch := g.Lines
	if batch == nil {
		return 0
	}

	n := 0
	for _, node := range g.Meshes() {
		if n >= batch.Capacity() {
			break
		}
		b := node.Mesh.Geometry.Bounds
		size := b.Size()
		size = math.Vec3{X: size.X + 2*padding, Y: size.Y + 2*padding, Z: size.Z + 2*padding}

		center := b.Center()
		local := math.Translate(center.X, center.Y, center.Z).Mul(math.Scale(size.X, size.Y, size.Z))
		batch.Transforms[n] = node.WorldMatrix().Mul(local)
		batch.Colors[n] = color
		n++
	}
	batch.Count = n
	return n
}
