package lighting

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/simscene/pkg/math"
)

// ShadowPadding widens shadow volumes by this fraction of the scene radius
// to avoid edge artifacts.
const ShadowPadding = 0.1

// ShadowCamera is the orthographic volume a directional light renders its
// shadow map from, centered on the light's line of sight.
type ShadowCamera struct {
	HalfSize float32
	Near     float32
	Far      float32
}

// FitShadow sizes the shadow volume of l so it encloses the box [lo, hi].
// from is the light's world position. Only shadow-casting directional
// lights get a volume; other lights are left untouched.
func FitShadow(l *Light, from math.Vec3, lo, hi [3]float32) {
	if l.Kind != KindDirectional || !l.CastShadow {
		return
	}

	center := math.Vec3{
		X: (lo[0] + hi[0]) / 2,
		Y: (lo[1] + hi[1]) / 2,
		Z: (lo[2] + hi[2]) / 2,
	}
	radius := math.Vec3{X: hi[0] - lo[0], Y: hi[1] - lo[1], Z: hi[2] - lo[2]}.Length() / 2
	if radius == 0 {
		radius = 1
	}
	padding := radius * ShadowPadding

	dist := from.Distance(center)
	l.Shadow = &ShadowCamera{
		HalfSize: radius + padding,
		Near:     math32.Max(0.1, dist-radius-padding),
		Far:      dist + radius + padding,
	}
}
