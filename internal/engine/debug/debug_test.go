package debug

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"

	"github.com/Faultbox/simscene/internal/engine/lighting"
	"github.com/Faultbox/simscene/internal/engine/material"
	"github.com/Faultbox/simscene/internal/engine/mesh"
	"github.com/Faultbox/simscene/internal/engine/scene"
	"github.com/Faultbox/simscene/internal/engine/texture"
	"github.com/Faultbox/simscene/pkg/math"
)

func checker() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{255, 0, 0, 255})
	img.Set(1, 1, color.RGBA{0, 0, 255, 255})
	return img
}

func TestTextureDump(t *testing.T) {
	for _, format := range []Format{FormatPNG, FormatBMP} {
		t.Run(string(format), func(t *testing.T) {
			dir := filepath.Join(t.TempDir(), "out")
			d := NewTextureDump(dir, "tex", format)

			paths, err := d.Dump(map[int]*texture.Raster{
				3: {ID: 3, Image: checker()},
				1: {ID: 1, Image: checker()},
				2: nil,
			})
			require.NoError(t, err)
			require.Equal(t, []string{d.Filename(1), d.Filename(3)}, paths)
			assert.True(t, strings.HasSuffix(paths[0], "tex_1."+string(format)))

			f, err := os.Open(paths[1])
			require.NoError(t, err)
			defer f.Close()

			var img image.Image
			if format == FormatBMP {
				img, err = bmp.Decode(f)
			} else {
				img, err = png.Decode(f)
			}
			require.NoError(t, err)

			r, _, _, _ := img.At(0, 0).RGBA()
			assert.Equal(t, uint32(0xffff), r)
			_, _, b, _ := img.At(1, 1).RGBA()
			assert.Equal(t, uint32(0xffff), b)
		})
	}
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("bmp")
	require.NoError(t, err)
	assert.Equal(t, FormatBMP, f)

	_, err = ParseFormat("gif")
	assert.Error(t, err)
}

// twoBoxes builds a graph with two mesh nodes sharing one geometry.
func twoBoxes() *scene.Graph {
	geo := mesh.Box(math.Vec3{X: 0.5, Y: 0.5, Z: 0.5})
	mat := &material.Material{MaterialID: -1}

	g := &scene.Graph{
		Root:   scene.NewGroup("scene"),
		Bodies: map[int]*scene.Body{},
		Lines:  scene.NewInstancedBatch(scene.BatchLines, 1),
	}
	body := scene.NewGroup("world")
	g.Root.Add(body)
	g.Bodies[0] = &scene.Body{ID: 0, Name: "world", Parent: -1, Node: body}

	for i, x := range []float32{0, 4} {
		n := scene.NewGroup("box")
		n.Position = math.Vec3{X: x}
		n.Mesh = &scene.Mesh{Geom: i, Geometry: geo, Material: mat}
		body.Add(n)
	}

	light := scene.NewGroup("sun")
	light.Light = &lighting.Light{Kind: lighting.KindDirectional}
	g.Root.Add(light)
	g.Lights = append(g.Lights, light)
	return g
}

func TestSummarize(t *testing.T) {
	s := Summarize(twoBoxes())

	assert.Equal(t, 1, s.Bodies)
	assert.Equal(t, 2, s.Meshes)
	assert.Equal(t, 1, s.Geometries)
	assert.Equal(t, 1, s.Materials)
	assert.Equal(t, 24, s.Triangles)
	assert.Equal(t, 1, s.Lights[lighting.KindDirectional])

	assert.InDelta(t, -0.5, s.Bounds.Min[0], 1e-6)
	assert.InDelta(t, 4.5, s.Bounds.Max[0], 1e-6)
	assert.InDelta(t, 0.5, s.Bounds.Max[1], 1e-6)

	out := s.String()
	assert.Contains(t, out, "1 directional")
	assert.Contains(t, out, "triangles:  24")
}

func TestOverlayBounds(t *testing.T) {
	g := twoBoxes()

	n := OverlayBounds(g, 0, [4]float32{1, 1, 0, 1})
	assert.Equal(t, 1, n, "capped at batch capacity")
	assert.Equal(t, 1, g.Lines.Count)

	// unit cube corner lands on the first box's corner
	p := g.Lines.Transforms[0].TransformPoint(math.Vec3{X: 0.5, Y: 0.5, Z: 0.5})
	assert.InDelta(t, 0.5, p.X, 1e-6)
	assert.InDelta(t, 0.5, p.Y, 1e-6)
	assert.Equal(t, [4]float32{1, 1, 0, 1}, g.Lines.Colors[0])
}

func TestBBoxWireframe(t *testing.T) {
	v := BBoxWireframe(mesh.Bounds{Max: [3]float32{1, 2, 3}})
	assert.Len(t, v, BBoxWireframeVertexCount*3)
	assert.Len(t, UnitBox, BBoxWireframeVertexCount*3)
}
