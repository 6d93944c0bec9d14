// Package scene assembles a render scene graph from a loaded physics model.
package scene

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/chewxy/math32"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Faultbox/simscene/internal/engine/lighting"
	"github.com/Faultbox/simscene/internal/engine/material"
	"github.com/Faultbox/simscene/internal/engine/mesh"
	"github.com/Faultbox/simscene/internal/engine/texture"
	"github.com/Faultbox/simscene/internal/physics"
	"github.com/Faultbox/simscene/pkg/coord"
	"github.com/Faultbox/simscene/pkg/encoding"
	"github.com/Faultbox/simscene/pkg/math"
)

// Build errors.
var (
	ErrResourceNotFound   = errors.New("scene file not found")
	ErrModelConstruction  = errors.New("model construction failed")
	ErrInvalidDestination = errors.New("nil destination")
)

// PlaneStyle selects how ground planes are rendered.
type PlaneStyle int

const (
	PlaneTextured PlaneStyle = iota
	PlaneReflective
)

// ParsePlaneStyle maps a config value onto a PlaneStyle.
func ParsePlaneStyle(s string) (PlaneStyle, error) {
	switch s {
	case "", "textured":
		return PlaneTextured, nil
	case "reflective":
		return PlaneReflective, nil
	default:
		return PlaneTextured, fmt.Errorf("unknown plane style %q", s)
	}
}

// FileSystem is the existence check the builder needs from the staging
// filesystem.
type FileSystem interface {
	Exists(path string) bool
}

// Runtime bundles the collaborators of a build.
type Runtime struct {
	FS     FileSystem
	Loader physics.Loader
	Log    *zap.Logger
}

// Options tunes a build.
type Options struct {
	Mesh       mesh.Options
	Lighting   lighting.Options
	PlaneStyle PlaneStyle
	// MaxRenderGroup excludes geometries in this group and above. Zero
	// means physics.MaxRenderGroup.
	MaxRenderGroup int
	LineCapacity   int
	PointCapacity  int
}

// DefaultOptions returns the default build options.
func DefaultOptions() Options {
	return Options{
		Mesh:           mesh.DefaultOptions(),
		Lighting:       lighting.DefaultOptions(),
		MaxRenderGroup: physics.MaxRenderGroup,
		LineCapacity:   1000,
		PointCapacity:  1000,
	}
}

// Destination holds the model, state and scene of the last successful
// build. Builds targeting one Destination must be serialized.
type Destination struct {
	Scene *Graph
	Model physics.Model
	State physics.State
}

// Release frees the held model and state and clears the destination.
func (d *Destination) Release() error {
	var err error
	if d.State != nil {
		err = multierr.Append(err, d.State.Release())
	}
	if d.Model != nil {
		err = multierr.Append(err, d.Model.Release())
	}
	d.Scene, d.Model, d.State = nil, nil, nil
	return err
}

// Result is the outcome of a successful build.
type Result struct {
	Model  physics.Model
	State  physics.State
	Bodies map[int]*Body
	Lights []*Node
	Graph  *Graph
	// Skipped counts geometries omitted because they produced no geometry.
	Skipped int
	// Materials counts live material instances.
	Materials int
	// Textures holds the decoded rasters keyed by texture id.
	Textures map[int]*texture.Raster
}

// Build loads the model behind scenePath and assembles its scene into dst.
// Any model and state previously held by dst are released first. On error
// dst holds nothing.
func Build(rt Runtime, scenePath string, dst *Destination, opts Options) (*Result, error) {
	if dst == nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidDestination, scenePath)
	}
	log := rt.Log
	if log == nil {
		log = zap.NewNop()
	}
	log = log.With(zap.String("scene", scenePath))

	if err := dst.Release(); err != nil {
		log.Warn("releasing previous model", zap.Error(err))
	}

	if rt.FS == nil || !rt.FS.Exists(scenePath) {
		return nil, fmt.Errorf("%w: %s", ErrResourceNotFound, scenePath)
	}

	m, st, err := load(rt.Loader, scenePath)
	if err != nil {
		return nil, err
	}

	if opts.MaxRenderGroup <= 0 {
		opts.MaxRenderGroup = physics.MaxRenderGroup
	}
	b := &builder{
		model:     m,
		state:     st,
		opts:      opts,
		log:       log,
		meshes:    mesh.NewCache(opts.Mesh, log),
		materials: material.NewBuilder(m, texture.NewDecoder(log), log),
		graph: &Graph{
			Root:   NewGroup("scene"),
			Bodies: make(map[int]*Body),
		},
	}
	b.geometries()
	b.bodyTree()
	b.batches()
	b.lights()

	dst.Scene, dst.Model, dst.State = b.graph, m, st

	log.Info("scene built",
		zap.Int("bodies", len(b.graph.Bodies)),
		zap.Int("meshes", b.meshCount),
		zap.Int("skipped", b.skipped),
		zap.Int("lights", len(b.graph.Lights)),
		zap.Int("materials", b.materials.Count()))

	return &Result{
		Model:     m,
		State:     st,
		Bodies:    b.graph.Bodies,
		Lights:    b.graph.Lights,
		Graph:     b.graph,
		Skipped:   b.skipped,
		Materials: b.materials.Count(),
		Textures:  b.materials.Textures(),
	}, nil
}

// load runs the loader, turning panics and empty results into errors and
// releasing a model whose state could not be built.
func load(l physics.Loader, path string) (m physics.Model, st physics.State, err error) {
	if l == nil {
		return nil, nil, fmt.Errorf("%w: %s: no loader", ErrModelConstruction, path)
	}
	defer func() {
		if r := recover(); r != nil {
			if m != nil {
				_ = m.Release()
			}
			m, st = nil, nil
			err = fmt.Errorf("%w: %s: loader panic: %v", ErrModelConstruction, path, r)
		}
	}()

	m, err = l.LoadModel(path)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: loading %s: %w", ErrModelConstruction, path, err)
	}
	if m == nil {
		return nil, nil, fmt.Errorf("%w: loading %s: empty model", ErrModelConstruction, path)
	}

	st, err = l.NewState(m)
	if err == nil && st == nil {
		err = errors.New("empty state")
	}
	if err != nil {
		err = multierr.Append(err, m.Release())
		return nil, nil, fmt.Errorf("%w: state for %s: %w", ErrModelConstruction, path, err)
	}
	return m, st, nil
}

type builder struct {
	model     physics.Model
	state     physics.State
	opts      Options
	log       *zap.Logger
	meshes    *mesh.Cache
	materials *material.Builder
	graph     *Graph

	meshCount int
	skipped   int
}

// body returns the record of body id, creating it on first use.
func (b *builder) body(id int) *Body {
	if rec, ok := b.graph.Bodies[id]; ok {
		return rec
	}
	bt := b.model.Bodies()
	name := ""
	if id >= 0 && id < len(bt.NameAdr) {
		name = encoding.NameAt(b.model.Names(), int(bt.NameAdr[id]))
	}
	if name == "" {
		name = "body_" + strconv.Itoa(id)
	}
	rec := &Body{
		ID:     id,
		Name:   name,
		Parent: bt.Parent(id),
		Node:   NewGroup(name),
	}
	b.graph.Bodies[id] = rec
	return rec
}

func (b *builder) geometries() {
	gt := b.model.Geoms()
	for i := 0; i < gt.Len(); i++ {
		if gt.GroupOf(i) >= b.opts.MaxRenderGroup {
			continue
		}
		bid := gt.Body(i)
		if bid < 0 {
			b.log.Warn("geometry references negative body, attaching to world",
				zap.Int("geom", i), zap.Int("body", bid))
			bid = 0
		}
		rec := b.body(bid)

		shape := gt.Shape(i)
		g, err := b.geometry(shape, i)
		if err != nil {
			b.skipped++
			b.log.Warn("geometry skipped",
				zap.Int("geom", i),
				zap.Stringer("shape", shape),
				zap.Error(err))
			continue
		}

		node := NewGroup(rec.Name + "_geom_" + strconv.Itoa(i))
		node.Mesh = &Mesh{
			Geom:          i,
			Geometry:      g,
			Material:      b.materials.Resolve(gt.Material(i), gt.Color(i)),
			CastShadow:    i != 0,
			ReceiveShadow: shape != physics.GeomMesh,
		}
		node.Position = coord.Position(gt.Pos, i)
		node.Scale = g.Scale
		if shape == physics.GeomPlane {
			node.Rotation = math.QuatFromAxisAngle(math.Vec3{X: 1}, -math32.Pi/2)
			node.Mesh.Reflective = b.opts.PlaneStyle == PlaneReflective
		} else {
			node.Rotation = coord.Orientation(gt.Quat, i)
		}
		if shape == physics.GeomMesh {
			rec.CustomMesh = true
		}

		rec.Node.Add(node)
		b.meshCount++
	}
}

func (b *builder) geometry(shape physics.GeomType, i int) (*mesh.Geometry, error) {
	gt := b.model.Geoms()
	if shape == physics.GeomMesh && gt.Mesh(i) >= 0 {
		return b.meshes.Get(b.model, gt.Mesh(i))
	}
	return mesh.Primitive(shape, gt.SizeOf(i), b.opts.Mesh)
}

// bodyTree makes the hierarchy total over every body id and poses each
// body node from the simulation state. Body 0 hangs off the root and every
// other body hangs off body 0.
func (b *builder) bodyTree() {
	n := b.model.Bodies().Len()
	world := b.body(0)
	b.graph.Root.Add(world.Node)

	for id := 0; id < n; id++ {
		rec := b.body(id)
		if pos, quat, ok := b.state.BodyPose(id); ok {
			rec.Node.Position = coord.Vec(pos)
			rec.Node.Rotation = coord.Quat(quat)
		}
		if id != 0 {
			world.Node.Add(rec.Node)
		}
	}

	// geometry may reference ids past the body table
	for id, rec := range b.graph.Bodies {
		if id >= n && rec.Node.Parent == nil {
			world.Node.Add(rec.Node)
		}
	}
}

func (b *builder) batches() {
	b.graph.Lines = NewInstancedBatch(BatchLines, b.opts.LineCapacity)
	b.graph.Points = NewInstancedBatch(BatchPoints, b.opts.PointCapacity)

	for _, batch := range []*InstancedBatch{b.graph.Lines, b.graph.Points} {
		node := NewGroup(batch.Kind.String())
		node.Batch = batch
		b.graph.Root.Add(node)
	}
}

func (b *builder) lights() {
	lights := lighting.NewTranslator(b.opts.Lighting, b.log).Translate(b.model)
	for i := range lights {
		l := &lights[i]
		node := NewGroup(l.Kind.String() + "_light_" + strconv.Itoa(i))
		node.Light = l
		node.Position = l.Position

		parent := b.graph.Root
		if l.Body > 0 {
			if rec, ok := b.graph.Bodies[l.Body]; ok {
				parent = rec.Node
			}
		}
		parent.Add(node)
		b.graph.Lights = append(b.graph.Lights, node)
	}

	bounds, ok := b.graph.Bounds()
	if !ok {
		return
	}
	for _, node := range b.graph.Lights {
		from := node.WorldMatrix().TransformPoint(math.Vec3{})
		lighting.FitShadow(node.Light, from, bounds.Min, bounds.Max)
	}
}
