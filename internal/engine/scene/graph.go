package scene

import (
	"github.com/Faultbox/simscene/internal/engine/lighting"
	"github.com/Faultbox/simscene/internal/engine/material"
	"github.com/Faultbox/simscene/internal/engine/mesh"
	"github.com/Faultbox/simscene/pkg/math"
)

// Node is a scene graph node: a transform plus optional content.
type Node struct {
	Name     string
	Position math.Vec3
	Rotation math.Quat
	Scale    math.Vec3

	Parent   *Node
	Children []*Node

	Mesh  *Mesh
	Light *lighting.Light
	Batch *InstancedBatch
}

// NewGroup creates an empty node with an identity transform.
func NewGroup(name string) *Node {
	return &Node{
		Name:     name,
		Rotation: math.QuatIdentity(),
		Scale:    math.Vec3{X: 1, Y: 1, Z: 1},
	}
}

// Add attaches child to n, detaching it from any previous parent.
func (n *Node) Add(child *Node) {
	if child.Parent != nil {
		child.Parent.remove(child)
	}
	child.Parent = n
	n.Children = append(n.Children, child)
}

func (n *Node) remove(child *Node) {
	for i, c := range n.Children {
		if c == child {
			n.Children = append(n.Children[:i], n.Children[i+1:]...)
			child.Parent = nil
			return
		}
	}
}

// Walk visits n and its descendants depth first. Returning false from fn
// skips the node's children.
func (n *Node) Walk(fn func(*Node) bool) {
	if !fn(n) {
		return
	}
	for _, c := range n.Children {
		c.Walk(fn)
	}
}

// LocalMatrix returns translation * rotation * scale.
func (n *Node) LocalMatrix() math.Mat4 {
	return math.Compose(n.Position, n.Rotation, n.Scale)
}

// WorldMatrix composes the local matrices from the root down to n.
func (n *Node) WorldMatrix() math.Mat4 {
	m := n.LocalMatrix()
	for p := n.Parent; p != nil; p = p.Parent {
		m = p.LocalMatrix().Mul(m)
	}
	return m
}

// Mesh is renderable content: shared geometry plus a material.
type Mesh struct {
	// Geom is the source geometry descriptor index.
	Geom          int
	Geometry      *mesh.Geometry
	Material      *material.Material
	CastShadow    bool
	ReceiveShadow bool
	// Reflective marks ground planes rendered as mirrors.
	Reflective bool
}

// BatchKind is the primitive type of an instanced batch.
type BatchKind int

const (
	BatchLines BatchKind = iota
	BatchPoints
)

// String returns the batch kind name.
func (k BatchKind) String() string {
	if k == BatchPoints {
		return "points"
	}
	return "lines"
}

// InstancedBatch is a fixed-capacity buffer of instance transforms. It is
// allocated empty; other components fill it in.
type InstancedBatch struct {
	Kind       BatchKind
	Transforms []math.Mat4
	Colors     [][4]float32
	Count      int
}

// NewInstancedBatch allocates a zeroed batch of the given capacity.
// Negative capacities yield an empty batch.
func NewInstancedBatch(kind BatchKind, capacity int) *InstancedBatch {
	capacity = max(capacity, 0)
	return &InstancedBatch{
		Kind:       kind,
		Transforms: make([]math.Mat4, capacity),
		Colors:     make([][4]float32, capacity),
	}
}

// Capacity returns the maximum instance count.
func (b *InstancedBatch) Capacity() int { return len(b.Transforms) }

// Body is the side-table record of one kinematic body.
type Body struct {
	ID   int
	Name string
	// Parent is the kinematic parent id, -1 for the world body. Body nodes
	// hold world poses, so the graph itself stays flat under body 0.
	Parent     int
	CustomMesh bool
	Node       *Node
}

// Graph is a built scene.
type Graph struct {
	Root   *Node
	Bodies map[int]*Body
	Lines  *InstancedBatch
	Points *InstancedBatch
	Lights []*Node
}

// Meshes returns every mesh node in depth-first order.
func (g *Graph) Meshes() []*Node {
	var out []*Node
	g.Root.Walk(func(n *Node) bool {
		if n.Mesh != nil {
			out = append(out, n)
		}
		return true
	})
	return out
}

// Body returns the record of body id.
func (g *Graph) Body(id int) (*Body, bool) {
	b, ok := g.Bodies[id]
	return b, ok
}

// Bounds returns the world-space box around every mesh node. ok is false
// when the graph has no meshes.
func (g *Graph) Bounds() (b mesh.Bounds, ok bool) {
	for _, n := range g.Meshes() {
		world := n.WorldMatrix()
		for _, v := range n.Mesh.Geometry.Bounds.Corners() {
			p := world.TransformPoint(v).Array()
			if !ok {
				b = mesh.Bounds{Min: p, Max: p}
				ok = true
				continue
			}
			for k := 0; k < 3; k++ {
				b.Min[k] = min(b.Min[k], p[k])
				b.Max[k] = max(b.Max[k], p[k])
			}
		}
	}
	return b, ok
}
