package lighting

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/simscene/internal/physics"
	"github.com/Faultbox/simscene/pkg/math"
)

func lightTables(lt physics.LightTable) *physics.Tables {
	return &physics.Tables{
		Light: lt,
		Body:  physics.BodyTable{ParentID: []int32{0, 0}},
	}
}

func TestTranslate_Kinds(t *testing.T) {
	tb := lightTables(physics.LightTable{
		Pos:         []float64{0, 0, 3, 1, 2, 3, 0, 0, 0},
		Dir:         []float64{0, 0, -1, 0, 0, -1, 0, 0, -1},
		Diffuse:     []float32{0.3, 0.6, 0.9, 1, 1, 1, 0.5, 0.5, 0.5},
		Attenuation: []float32{1, 0, 0, 1, 0.5, 0.1, 2, 0.25, 0},
		Cutoff:      []float32{0, 120, 0},
		Exponent:    []float32{0, 250, 0},
		Directional: []bool{true, false, false},
		CastShadow:  []bool{true, false, false},
		BodyID:      []int32{0, 1, 0},
	})

	opts := DefaultOptions()
	lights := NewTranslator(opts, nil).Translate(tb)
	require.Len(t, lights, 3)

	dir := lights[0]
	assert.Equal(t, KindDirectional, dir.Kind)
	assert.InDelta(t, 0.6*opts.IntensityScale, dir.Intensity, 1e-5)
	assert.True(t, dir.CastShadow)
	assert.Equal(t, float32(3), dir.Position.Y, "physics z maps to render y")
	assert.InDelta(t, 3-opts.TargetDistance, dir.Target.Y, 1e-5)
	assert.Zero(t, dir.Decay)

	spot := lights[1]
	assert.Equal(t, KindSpot, spot.Kind)
	assert.Equal(t, 1, spot.Body)
	assert.InDelta(t, 89*math32.Pi/180, spot.Angle, 1e-5, "cutoff clamps to 89 degrees")
	assert.Equal(t, float32(1), spot.Penumbra)
	assert.Equal(t, float32(2), spot.Decay)
	assert.InDelta(t, 2, spot.Distance, 1e-5)

	point := lights[2]
	assert.Equal(t, KindPoint, point.Kind)
	assert.Equal(t, float32(1), point.Decay)
	assert.InDelta(t, 8, point.Distance, 1e-5)
	assert.Equal(t, point.Position, point.Target, "point lights have no target")
}

func TestTranslate_Ambient(t *testing.T) {
	tb := lightTables(physics.LightTable{
		Pos:     []float64{0, 0, 1, 0, 0, 1},
		Ambient: []float32{0.2, 0.2, 0.2, 0.9, 0.9, 0.9},
	})

	lights := NewTranslator(DefaultOptions(), nil).Translate(tb)
	require.Len(t, lights, 3)

	amb := lights[2]
	assert.Equal(t, KindAmbient, amb.Kind)
	assert.Equal(t, -1, amb.Source)
	assert.Equal(t, [3]float32{1, 1, 1}, amb.Color, "summed ambient is clamped")

	tb.Light.Ambient = []float32{0.001, 0, 0, 0, 0, 0}
	assert.Len(t, NewTranslator(DefaultOptions(), nil).Translate(tb), 2)
}

func TestTranslate_Fallback(t *testing.T) {
	lights := NewTranslator(DefaultOptions(), nil).Translate(lightTables(physics.LightTable{}))
	require.Len(t, lights, 1)

	l := lights[0]
	assert.Equal(t, KindDirectional, l.Kind)
	assert.Equal(t, -1, l.Source)
	assert.Equal(t, 0, l.Body)
	assert.Positive(t, l.Position.Y, "fallback shines from above")
}

func TestTranslate_SpotAngleFloor(t *testing.T) {
	tb := lightTables(physics.LightTable{
		Pos:      []float64{0, 0, 1},
		Cutoff:   []float32{0.2},
		Exponent: []float32{-5},
	})

	l := NewTranslator(DefaultOptions(), nil).Translate(tb)[0]
	assert.Equal(t, KindSpot, l.Kind)
	assert.InDelta(t, math32.Pi/180, l.Angle, 1e-6)
	assert.Zero(t, l.Penumbra)
	// default attenuation (1,0,0) is unbounded
	assert.Zero(t, l.Decay)
	assert.Zero(t, l.Distance)
	// missing direction points down
	assert.InDelta(t, -DefaultOptions().TargetDistance, l.Target.Y-l.Position.Y, 1e-5)
}

func TestSunDirection(t *testing.T) {
	tests := []struct {
		name     string
		lon, lat float32
		want     [3]float32
	}{
		{"zenith", 0, 90, [3]float32{0, 1, 0}},
		{"south horizon", 0, 0, [3]float32{0, 0, 1}},
		{"east horizon", 90, 0, [3]float32{1, 0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SunDirection(tt.lon, tt.lat).Array()
			for i := range got {
				assert.InDelta(t, tt.want[i], got[i], 1e-5)
			}
		})
	}
}

func TestFitShadow(t *testing.T) {
	l := NewTranslator(DefaultOptions(), nil).Fallback()
	require.True(t, l.CastShadow)

	lo, hi := [3]float32{-1, -1, -1}, [3]float32{1, 1, 1}
	FitShadow(&l, math.Vec3{Y: 10}, lo, hi)
	require.NotNil(t, l.Shadow)

	radius := math32.Sqrt(3)
	assert.InDelta(t, radius*1.1, l.Shadow.HalfSize, 1e-5)
	assert.InDelta(t, 10-radius*1.1, l.Shadow.Near, 1e-5)
	assert.InDelta(t, 10+radius*1.1, l.Shadow.Far, 1e-5)

	// light inside the box clamps the near plane
	FitShadow(&l, math.Vec3{}, lo, hi)
	assert.InDelta(t, 0.1, l.Shadow.Near, 1e-6)

	point := Light{Kind: KindPoint, CastShadow: true}
	FitShadow(&point, math.Vec3{}, lo, hi)
	assert.Nil(t, point.Shadow)
}
