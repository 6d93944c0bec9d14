// Package lighting maps model light records onto render light variants.
package lighting

import (
	"github.com/chewxy/math32"
	"go.uber.org/zap"

	"github.com/Faultbox/simscene/internal/physics"
	"github.com/Faultbox/simscene/pkg/coord"
	"github.com/Faultbox/simscene/pkg/math"
)

// Spot cone limits in degrees.
const (
	MinSpotAngle = 1
	MaxSpotAngle = 89
)

// Kind is the render light variant.
type Kind int

const (
	KindDirectional Kind = iota
	KindSpot
	KindPoint
	KindAmbient
)

// String returns the light kind name.
func (k Kind) String() string {
	switch k {
	case KindDirectional:
		return "directional"
	case KindSpot:
		return "spot"
	case KindPoint:
		return "point"
	case KindAmbient:
		return "ambient"
	default:
		return "unknown"
	}
}

// Light is one render light. Position and Target are in the frame of the
// owning body (the world frame for body 0).
type Light struct {
	// Source is the model light record, or -1 for synthesized lights.
	Source    int
	Kind      Kind
	Body      int
	Color     [3]float32
	Intensity float32
	Position  math.Vec3
	Target    math.Vec3

	// Spot only
	Angle    float32 // radians
	Penumbra float32

	// Point and spot
	Decay    float32
	Distance float32 // 0 = unbounded

	CastShadow bool
	// Shadow is set by FitShadow on shadow-casting directional lights.
	Shadow *ShadowCamera
}

// Options tunes the translation.
type Options struct {
	IntensityScale     float32
	TargetDistance     float32
	AmbientThreshold   float32
	FallbackLongitude  float32
	FallbackLatitude   float32
	FallbackIntensity  float32
	FallbackCastShadow bool
}

// DefaultOptions returns the default translation tuning.
func DefaultOptions() Options {
	return Options{
		IntensityScale:     3,
		TargetDistance:     10,
		AmbientThreshold:   0.01,
		FallbackLongitude:  45,
		FallbackLatitude:   60,
		FallbackIntensity:  1.5,
		FallbackCastShadow: true,
	}
}

// Translator converts light tables.
type Translator struct {
	opts Options
	log  *zap.Logger
}

// NewTranslator creates a translator.
func NewTranslator(opts Options, log *zap.Logger) *Translator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Translator{opts: opts, log: log}
}

// Translate returns one light per record, at most one ambient light summing
// the records' ambient terms, and a single fallback directional light when
// the table yields nothing.
func (t *Translator) Translate(m physics.Model) []Light {
	lt := m.Lights()
	n := lt.Len()
	out := make([]Light, 0, n+1)

	var ambient [3]float32
	for i := 0; i < n; i++ {
		out = append(out, t.translate(lt, i))
		a := lt.AmbientOf(i)
		for k := range ambient {
			ambient[k] += a[k]
		}
	}

	for k := range ambient {
		ambient[k] = math.Clamp01(ambient[k])
	}
	if level := mean(ambient); n > 0 && level > t.opts.AmbientThreshold {
		out = append(out, Light{
			Source:    -1,
			Kind:      KindAmbient,
			Color:     ambient,
			Intensity: level * t.opts.IntensityScale,
		})
	}

	if len(out) == 0 {
		t.log.Debug("model has no lights, adding fallback")
		out = append(out, t.Fallback())
	}
	return out
}

// Fallback returns the directional light used for unlit models.
func (t *Translator) Fallback() Light {
	dir := SunDirection(t.opts.FallbackLongitude, t.opts.FallbackLatitude)
	return Light{
		Source:     -1,
		Kind:       KindDirectional,
		Color:      [3]float32{1, 1, 1},
		Intensity:  t.opts.FallbackIntensity,
		Position:   dir.Scale(t.opts.TargetDistance),
		CastShadow: t.opts.FallbackCastShadow,
	}
}

func (t *Translator) translate(lt *physics.LightTable, i int) Light {
	diffuse := lt.DiffuseOf(i)
	l := Light{
		Source:     i,
		Body:       lt.Body(i),
		Color:      diffuse,
		Intensity:  mean(diffuse) * t.opts.IntensityScale,
		Position:   coord.Position(lt.Pos, i),
		CastShadow: lt.CastsShadow(i),
	}

	switch {
	case lt.IsDirectional(i):
		l.Kind = KindDirectional
	case lt.CutoffOf(i) > 0:
		l.Kind = KindSpot
	default:
		l.Kind = KindPoint
	}

	if l.Kind != KindPoint {
		dir := coord.Position(lt.Dir, i).Normalize()
		if dir.Length() == 0 {
			dir = math.Vec3{Y: -1}
		}
		l.Target = l.Position.Add(dir.Scale(t.opts.TargetDistance))
	}

	if l.Kind == KindSpot {
		deg := math.Clamp(lt.CutoffOf(i), MinSpotAngle, MaxSpotAngle)
		l.Angle = deg * math32.Pi / 180
		l.Penumbra = math.Clamp01(lt.ExponentOf(i) / 100)
	}

	if l.Kind != KindDirectional {
		l.Decay, l.Distance = falloff(lt.AttenuationOf(i))
	}
	return l
}

// falloff maps the attenuation polynomial (constant, linear, quadratic)
// onto a decay exponent and a cutoff distance. The mapping is approximate.
func falloff(att [3]float32) (decay, distance float32) {
	switch {
	case att[2] > 0:
		decay = 2
	case att[1] > 0:
		decay = 1
	}
	if att[1] > 0 {
		distance = math32.Max(att[0], 1) / att[1]
	}
	return decay, distance
}

func mean(c [3]float32) float32 {
	return (c[0] + c[1] + c[2]) / 3
}
