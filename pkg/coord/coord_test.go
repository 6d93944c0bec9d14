package coord

import (
	"math"
	"testing"

	smath "github.com/Faultbox/simscene/pkg/math"
)

func TestPositionSwizzle(t *testing.T) {
	buf := []float64{0, 0, 0, 1, 2, 3}
	got := Position(buf, 1)
	want := smath.Vec3{X: 1, Y: 3, Z: -2}
	if got != want {
		t.Errorf("Position = %v, want %v", got, want)
	}
}

func TestPositionOutOfRange(t *testing.T) {
	buf := []float64{1, 2, 3}
	if got := Position(buf, 1); got != (smath.Vec3{}) {
		t.Errorf("expected zero vector for index past end, got %v", got)
	}
	if got := Position(buf, -1); got != (smath.Vec3{}) {
		t.Errorf("expected zero vector for negative index, got %v", got)
	}
	if got := Orientation(buf, 0); got != smath.QuatIdentity() {
		t.Errorf("expected identity for short buffer, got %v", got)
	}
}

func TestPositionRoundTrip(t *testing.T) {
	in := [3]float64{0.25, -1.5, 3.75}
	back := PhysicsPosition(Vec(in))
	for i := range in {
		if math.Abs(back[i]-in[i]) > 1e-6 {
			t.Errorf("component %d: got %v, want %v", i, back[i], in[i])
		}
	}
}

func TestOrientationRoundTrip(t *testing.T) {
	// 40 degrees about a skewed axis
	axis := [3]float64{0.2, -0.7, 0.4}
	n := math.Sqrt(axis[0]*axis[0] + axis[1]*axis[1] + axis[2]*axis[2])
	s, c := math.Sincos(math.Pi / 9)
	in := [4]float64{c, s * axis[0] / n, s * axis[1] / n, s * axis[2] / n}

	back := PhysicsOrientation(Quat(in))
	for i := range in {
		if math.Abs(back[i]-in[i]) > 1e-6 {
			t.Errorf("component %d: got %v, want %v", i, back[i], in[i])
		}
	}
}

func TestOrientationMatchesPositionMapping(t *testing.T) {
	// Rotating a physics vector then converting must equal converting both
	// the rotation and the vector.
	s, c := math.Sincos(math.Pi / 4)
	q := [4]float64{c, 0, 0, s} // 90 degrees about physics Z (up)
	v := [3]float64{1, 0, 0}

	// physics result: X rotated about Z gives +Y
	want := Vec([3]float64{0, 1, 0})
	got := Quat(q).Rotate(Vec(v))

	if math.Abs(float64(got.X-want.X)) > 1e-5 ||
		math.Abs(float64(got.Y-want.Y)) > 1e-5 ||
		math.Abs(float64(got.Z-want.Z)) > 1e-5 {
		t.Errorf("rotated %v, want %v", got, want)
	}
}

func TestExtent(t *testing.T) {
	got := Extent([3]float64{1, 2, 3})
	want := smath.Vec3{X: 1, Y: 3, Z: 2}
	if got != want {
		t.Errorf("Extent = %v, want %v", got, want)
	}
}
