package debug

import (
	"fmt"
	"strings"

	"github.com/Faultbox/simscene/internal/engine/lighting"
	"github.com/Faultbox/simscene/internal/engine/material"
	"github.com/Faultbox/simscene/internal/engine/mesh"
	"github.com/Faultbox/simscene/internal/engine/scene"
)

// Summary collects statistics of a built scene.
type Summary struct {
	Bodies     int
	Meshes     int
	Geometries int // distinct geometry buffers
	Materials  int // distinct material instances
	Triangles  int
	Lights     map[lighting.Kind]int
	// Bounds is the world-space box around every mesh, valid when Meshes > 0.
	Bounds mesh.Bounds
}

// Summarize walks g.
func Summarize(g *scene.Graph) Summary {
	s := Summary{
		Bodies: len(g.Bodies),
		Lights: make(map[lighting.Kind]int),
	}
	geoms := make(map[*mesh.Geometry]bool)
	mats := make(map[*material.Material]bool)

	for _, n := range g.Meshes() {
		s.Meshes++
		geo := n.Mesh.Geometry
		s.Triangles += geo.TriangleCount()
		geoms[geo] = true
		mats[n.Mesh.Material] = true
	}
	s.Bounds, _ = g.Bounds()
	s.Geometries = len(geoms)
	s.Materials = len(mats)

	for _, n := range g.Lights {
		s.Lights[n.Light.Kind]++
	}
	return s
}

// String formats the summary for terminal output.
func (s Summary) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "bodies:     %d\n", s.Bodies)
	fmt.Fprintf(&b, "meshes:     %d (%d geometries, %d materials)\n", s.Meshes, s.Geometries, s.Materials)
	fmt.Fprintf(&b, "triangles:  %d\n", s.Triangles)

	var lights []string
	for _, k := range []lighting.Kind{lighting.KindDirectional, lighting.KindSpot, lighting.KindPoint, lighting.KindAmbient} {
		if c := s.Lights[k]; c > 0 {
			lights = append(lights, fmt.Sprintf("%d %s", c, k))
		}
	}
	fmt.Fprintf(&b, "lights:     %s\n", strings.Join(lights, ", "))

	if s.Meshes > 0 {
		fmt.Fprintf(&b, "bounds:     %.3v .. %.3v\n", s.Bounds.Min, s.Bounds.Max)
	}
	return b.String()
}
